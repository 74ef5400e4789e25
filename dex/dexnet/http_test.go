package dexnet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGet(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			http.Error(w, `{"msg": "bad accept header"}`, http.StatusNotAcceptable)
			return
		}
		w.Write([]byte(`{"data":{"currency":"BTC","rates":{"USD":"65000.12"}}}`))
	}))
	defer ts.Close()

	var resp struct {
		Data struct {
			Currency string            `json:"currency"`
			Rates    map[string]string `json:"rates"`
		} `json:"data"`
	}
	var status int
	err := Get(context.Background(), ts.URL, &resp,
		WithRequestHeader("Accept", "application/json"),
		WithStatusFunc(func(code int) { status = code }))
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("wrong status %d", status)
	}
	if resp.Data.Rates["USD"] != "65000.12" {
		t.Fatalf("wrong USD rate %q", resp.Data.Rates["USD"])
	}

	// Missing header gets the error response.
	if err := Get(context.Background(), ts.URL, &resp); err == nil {
		t.Fatal("no error for 406 response")
	}
}

func TestErrorParsing(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code": -150, "msg": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer ts.Close()

	var errPayload struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := Get(context.Background(), ts.URL, nil, WithErrorParsing(&errPayload)); err == nil {
		t.Fatal("didn't get an http error")
	}
	if errPayload.Code != -150 || errPayload.Msg != "rate limited" {
		t.Fatalf("unexpected error body %+v", errPayload)
	}
}

func TestSizeLimit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rate": 65000.12, "padding": "xxxxxxxxxxxxxxxxxxxxxxxx"}`))
	}))
	defer ts.Close()

	var resp map[string]any
	if err := Get(context.Background(), ts.URL, &resp, WithSizeLimit(10)); err == nil {
		t.Fatal("truncated body decoded without error")
	}
	if err := Get(context.Background(), ts.URL, &resp); err != nil {
		t.Fatalf("error with default limit: %v", err)
	}
}

type tRoundTripper struct {
	calls int
}

func (rt *tRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.calls++
	return http.DefaultTransport.RoundTrip(req)
}

func TestWithClient(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	rt := new(tRoundTripper)
	client := &http.Client{Transport: rt}
	if err := Get(context.Background(), ts.URL, nil, WithClient(client)); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rt.calls != 1 {
		t.Fatalf("custom client used %d times", rt.calls)
	}
	// A nil client keeps the default.
	if err := Get(context.Background(), ts.URL, nil, WithClient(nil)); err != nil {
		t.Fatalf("Get error with nil client: %v", err)
	}
	if rt.calls != 1 {
		t.Fatalf("custom client used after nil override")
	}
}
