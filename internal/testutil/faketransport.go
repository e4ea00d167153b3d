package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"tasksync/internal/transport"
)

// Call records one request seen by FakeTransport.
type Call struct {
	Method  string
	Path    string
	Body    any
	Headers map[string]string
}

// Authorization returns the Authorization header sent with the call.
func (c Call) Authorization() string {
	return c.Headers["Authorization"]
}

// FakeTransport is an in-memory transport.Doer. Handler decides every
// response; requests are recorded in order.
type FakeTransport struct {
	mu      sync.Mutex
	calls   []Call
	Handler func(ctx context.Context, call Call) (*transport.Response, error)
}

// Request implements transport.Doer.
func (f *FakeTransport) Request(ctx context.Context, method, path string, body any, headers map[string]string) (*transport.Response, error) {
	call := Call{Method: method, Path: path, Body: body, Headers: copyHeaders(headers)}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	handler := f.Handler
	f.mu.Unlock()

	if handler == nil {
		return &transport.Response{Status: http.StatusNotFound}, nil
	}
	return handler(ctx, call)
}

// Calls returns a copy of the recorded calls.
func (f *FakeTransport) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Count returns how many calls hit path.
func (f *FakeTransport) Count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Path == path {
			n++
		}
	}
	return n
}

// JSONResponse builds a response with v encoded as the body. A string is
// used verbatim.
func JSONResponse(status int, v any) *transport.Response {
	var body []byte
	switch b := v.(type) {
	case nil:
	case string:
		body = []byte(b)
	case []byte:
		body = b
	default:
		var err error
		body, err = json.Marshal(v)
		if err != nil {
			panic(err)
		}
	}
	return &transport.Response{Status: status, Body: body, Header: http.Header{}}
}

func copyHeaders(h map[string]string) map[string]string {
	if h == nil {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
