package service

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/and161185/roommaster/internal/httpclient"
)

// fakeAPI is a scripted httpclient.Doer keyed by "METHOD path".
type fakeAPI struct {
	mu     sync.Mutex
	routes map[string]func(req *httpclient.Request) (*httpclient.Response, error)
	calls  []*httpclient.Request
}

var _ httpclient.Doer = (*fakeAPI)(nil)

func newFakeAPI() *fakeAPI {
	return &fakeAPI{routes: map[string]func(*httpclient.Request) (*httpclient.Response, error){}}
}

func (f *fakeAPI) on(method, path string, h func(req *httpclient.Request) (*httpclient.Response, error)) {
	f.mu.Lock()
	f.routes[method+" "+path] = h
	f.mu.Unlock()
}

// data answers every matching call with {"data": v}.
func (f *fakeAPI) data(method, path string, v any) {
	f.on(method, path, func(*httpclient.Request) (*httpclient.Response, error) {
		return dataResponse(v), nil
	})
}

func (f *fakeAPI) Do(_ context.Context, req *httpclient.Request) (*httpclient.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	h, ok := f.routes[req.Method+" "+req.Path]
	f.mu.Unlock()
	if !ok {
		return nil, &httpclient.StatusError{Method: req.Method, Path: req.Path, StatusCode: http.StatusNotFound}
	}
	return h(req)
}

func (f *fakeAPI) requests() []*httpclient.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*httpclient.Request, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeAPI) last() *httpclient.Request {
	reqs := f.requests()
	if len(reqs) == 0 {
		return nil
	}
	return reqs[len(reqs)-1]
}

func dataResponse(v any) *httpclient.Response {
	b, err := json.Marshal(map[string]any{"data": v})
	if err != nil {
		panic(err)
	}
	return &httpclient.Response{StatusCode: http.StatusOK, Body: b}
}

// bodyJSON round-trips a request body into a generic map.
func bodyJSON(req *httpclient.Request) map[string]any {
	b, err := json.Marshal(req.Body)
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	return m
}
