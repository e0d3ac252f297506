package events

import (
	"context"
	"time"

	"github.com/fluxorio/todos/pkg/core"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

// NATSConfig configures the NATS publisher
type NATSConfig struct {
	// URL is the NATS server URL, e.g. "nats://127.0.0.1:4222".
	URL string

	// Prefix is prepended to all subjects. Default: "todos".
	Prefix string

	// Name is an optional NATS connection name.
	Name string

	// ConnectTimeout bounds the initial dial. Default: 2s.
	ConnectTimeout time.Duration

	// Logger receives connection state changes.
	Logger core.Logger
}

// NATSPublisher publishes events on <prefix>.<event type>.
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
}

// NewNATSPublisher connects to NATS
func NewNATSPublisher(cfg NATSConfig) (*NATSPublisher, error) {
	url := cfg.URL
	if url == "" {
		url = nats.DefaultURL
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "todos"
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = core.NewNopLogger()
	}

	opts := []nats.Option{
		nats.Timeout(timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	}
	if cfg.Name != "" {
		opts = append(opts, nats.Name(cfg.Name))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "connect to nats at %s", url)
	}

	return &NATSPublisher{nc: nc, prefix: prefix}, nil
}

// Subject returns the subject events of eventType are published on
func (p *NATSPublisher) Subject(eventType string) string {
	return p.prefix + "." + eventType
}

// Publish implements Publisher. The request ID in ctx, if any, travels as a header.
func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	data, err := core.JSONEncode(event)
	if err != nil {
		return err
	}

	msg := &nats.Msg{
		Subject: p.Subject(event.Type),
		Data:    data,
		Header:  nats.Header{},
	}
	if rid := core.GetRequestID(ctx); rid != "" {
		msg.Header.Set(core.RequestIDHeader, rid)
	}

	return errors.Wrapf(p.nc.PublishMsg(msg), "publish %s", msg.Subject)
}

// Close flushes pending messages and closes the connection
func (p *NATSPublisher) Close() error {
	if p.nc.IsClosed() {
		return nil
	}
	err := p.nc.Drain()
	return errors.Wrap(err, "drain nats connection")
}
