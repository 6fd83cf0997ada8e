package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/yama/internal/client/client"
	"github.com/dmitrijs2005/yama/internal/client/tokens"
)

var testBase = &url.URL{Scheme: "http", Host: "api.test", Path: "/"}

type call struct {
	Method string
	URL    string
	Body   any
}

// fakeAPI records calls with their resolved URL and answers with canned
// results.
type fakeAPI struct {
	calls []call

	getOut      string
	content     string
	contentType string
	err         error
	authErr     error
	unauthN     int
	authUser    string
	authPass    string
}

func (f *fakeAPI) record(method string, target client.Target, body any) error {
	u, err := target.Resolve(testBase)
	if err != nil {
		return err
	}
	f.calls = append(f.calls, call{Method: method, URL: u.String(), Body: body})
	return nil
}

func (f *fakeAPI) fill(out any) error {
	if f.getOut == "" || out == nil {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = []byte(f.getOut)
		return nil
	}
	return json.Unmarshal([]byte(f.getOut), out)
}

func (f *fakeAPI) Get(_ context.Context, target client.Target, out any) error {
	if err := f.record(http.MethodGet, target, nil); err != nil {
		return err
	}
	if f.err != nil {
		return f.err
	}
	return f.fill(out)
}

func (f *fakeAPI) GetResponse(_ context.Context, target client.Target) (*http.Response, error) {
	if err := f.record(http.MethodGet, target, nil); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	h := http.Header{}
	if f.contentType != "" {
		h.Set("Content-Type", f.contentType)
	}
	return &http.Response{StatusCode: 200, Header: h, Body: io.NopCloser(strings.NewReader(f.content))}, nil
}

func (f *fakeAPI) Put(_ context.Context, target client.Target, body, out any) error {
	if err := f.record(http.MethodPut, target, body); err != nil {
		return err
	}
	if f.err != nil {
		return f.err
	}
	return f.fill(out)
}

func (f *fakeAPI) Delete(_ context.Context, target client.Target, out any) error {
	if err := f.record(http.MethodDelete, target, nil); err != nil {
		return err
	}
	if f.err != nil {
		return f.err
	}
	return f.fill(out)
}

func (f *fakeAPI) Auth(_ context.Context, username, password string) error {
	f.authUser, f.authPass = username, password
	return f.authErr
}

func (f *fakeAPI) Unauth(context.Context) error {
	f.unauthN++
	return f.err
}

type fakeTokens struct {
	pair tokens.Pair
}

func (f *fakeTokens) Tokens() tokens.Pair { return f.pair }
