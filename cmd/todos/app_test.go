package main

import (
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/fluxorio/todos/pkg/core"
	natssrv "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travisjeffery/go-dynaport"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func testConfig(t *testing.T) AppConfig {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Database.DSN = filepath.Join(t.TempDir(), "todos.db")
	cfg.Server.Addr = "127.0.0.1:" + strconv.Itoa(dynaport.Get(1)[0])
	return cfg
}

func startApp(t *testing.T, cfg AppConfig) *fasthttp.Client {
	t.Helper()

	app, err := newApplication(cfg, core.NewNopLogger())
	require.NoError(t, err)

	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = app.serve(ln) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		assert.NoError(t, app.shutdown(ctx))
	})

	return &fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }}
}

func call(t *testing.T, client *fasthttp.Client, method, uri, body string) *fasthttp.Response {
	t.Helper()

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.Header.SetMethod(method)
	req.SetRequestURI("http://todos" + uri)
	if body != "" {
		req.SetBodyString(body)
	}
	resp := &fasthttp.Response{}
	require.NoError(t, client.DoTimeout(req, resp, 2*time.Second))
	return resp
}

func TestApplication_Endpoints(t *testing.T) {
	client := startApp(t, testConfig(t))

	resp := call(t, client, "GET", "/health", "")
	assert.Equal(t, 200, resp.StatusCode())
	assert.JSONEq(t, `{"status":"UP","service":"todos"}`, string(resp.Body()))

	resp = call(t, client, "GET", "/ready", "")
	assert.Equal(t, 200, resp.StatusCode())

	resp = call(t, client, "POST", "/addtodo", `{"task":"Buy milk"}`)
	require.Equal(t, 201, resp.StatusCode())
	assert.Equal(t, "nosniff", string(resp.Header.Peek("X-Content-Type-Options")))

	resp = call(t, client, "GET", "/todos", "")
	assert.Equal(t, 200, resp.StatusCode())
	assert.JSONEq(t, `[{"id":1,"task":"Buy milk","completed":false}]`, string(resp.Body()))

	resp = call(t, client, "OPTIONS", "/todos/1/complete", "")
	assert.Equal(t, 204, resp.StatusCode())
	assert.Equal(t, "*", string(resp.Header.Peek("Access-Control-Allow-Origin")))

	resp = call(t, client, "GET", "/metrics", "")
	assert.Equal(t, 200, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), `todos_operations_total{operation="create",outcome="success"} 1`)
	assert.Contains(t, string(resp.Body()), "todos_database_query_duration_seconds")
}

func TestApplication_MetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = false
	client := startApp(t, cfg)

	resp := call(t, client, "GET", "/metrics", "")
	assert.Equal(t, 404, resp.StatusCode())
}

func TestApplication_PublishesEvents(t *testing.T) {
	s, err := natssrv.NewServer(&natssrv.Options{Port: -1})
	require.NoError(t, err)
	go s.Start()
	require.True(t, s.ReadyForConnections(5*time.Second))
	t.Cleanup(s.Shutdown)

	sub, err := nats.Connect(s.ClientURL())
	require.NoError(t, err)
	defer sub.Close()
	msgs := make(chan *nats.Msg, 4)
	_, err = sub.ChanSubscribe("todos.>", msgs)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	cfg := testConfig(t)
	cfg.Events.NATSURL = s.ClientURL()
	client := startApp(t, cfg)

	resp := call(t, client, "POST", "/addtodo", `{"task":"a"}`)
	require.Equal(t, 201, resp.StatusCode())
	resp = call(t, client, "PUT", "/todos/1/complete", `{}`)
	require.Equal(t, 400, resp.StatusCode())
	resp = call(t, client, "PUT", "/todos/1/complete", `{"completed":true}`)
	require.Equal(t, 200, resp.StatusCode())

	var subjects []string
	for len(subjects) < 2 {
		select {
		case msg := <-msgs:
			subjects = append(subjects, msg.Subject)
			var e map[string]interface{}
			require.NoError(t, json.Unmarshal(msg.Data, &e))
			assert.NotEmpty(t, e["timestamp"])
		case <-time.After(2 * time.Second):
			t.Fatalf("received %v, want 2 events", subjects)
		}
	}
	assert.Equal(t, []string{"todos.todo.created", "todos.todo.completed"}, subjects)
}

func TestApplication_StartupFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.DSN = filepath.Join(t.TempDir(), "missing", "dir", "todos.db")

	_, err := newApplication(cfg, core.NewNopLogger())
	assert.Error(t, err)
}

func TestApplication_ListensOnAddr(t *testing.T) {
	cfg := testConfig(t)
	app, err := newApplication(cfg, core.NewNopLogger())
	require.NoError(t, err)

	errs := make(chan error, 1)
	go func() { errs <- app.serve(nil) }()

	client := &fasthttp.Client{}
	var status int
	for i := 0; i < 50; i++ {
		code, _, err := client.Get(nil, "http://"+cfg.Server.Addr+"/health")
		if err == nil {
			status = code
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	assert.Equal(t, 200, status)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, app.shutdown(ctx))
	assert.NoError(t, <-errs)
}
