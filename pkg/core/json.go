package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// JSONEncode encodes a value to JSON bytes (fail-fast)
func JSONEncode(v interface{}) ([]byte, error) {
	if v == nil {
		return nil, &Error{Code: CodeInvalidInput, Message: "cannot encode nil value"}
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json encode failed: %w", err)
	}
	return data, nil
}

// JSONDecode decodes a single JSON value into v (fail-fast).
// Trailing data after the value is rejected.
func JSONDecode(data []byte, v interface{}) error {
	if len(data) == 0 {
		return &Error{Code: CodeInvalidInput, Message: "cannot decode empty data"}
	}
	if v == nil {
		return &Error{Code: CodeInvalidInput, Message: "cannot decode into nil value"}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("json decode failed: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("json decode failed: unexpected data after value")
	}
	return nil
}
