package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(attempts int) *Client {
	return NewClient(ClientConfig{
		Timeout:     2 * time.Second,
		MinInterval: 0,
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
	})
}

func TestFetchRetriesTransientThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	body, err := testClient(3).Fetch(context.Background(), srv.URL, KindStatic)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if body != "<html>ok</html>" {
		t.Errorf("body = %q", body)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
}

func TestFetchGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(3).Fetch(context.Background(), srv.URL, KindStatic)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
	if fe.Kind != ErrKindHTTPStatus || fe.Status != 500 {
		t.Errorf("error = %+v, want http_status 500", fe)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := testClient(3).Fetch(context.Background(), srv.URL, KindStatic)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
	if fe.Kind != ErrKindHTTPStatus || fe.Status != 404 {
		t.Errorf("error = %+v, want http_status 404", fe)
	}
	if fe.Transient() {
		t.Errorf("404 reported transient")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("server saw %d calls, want 1 (4xx must not retry)", got)
	}
}

func TestFetchClassifiesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{
		Timeout:     30 * time.Millisecond,
		MaxAttempts: 1,
		BaseDelay:   time.Millisecond,
	})
	_, err := c.Fetch(context.Background(), srv.URL, KindStatic)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
	if fe.Kind != ErrKindTimeout {
		t.Errorf("kind = %s, want timeout", fe.Kind)
	}
	if !fe.Transient() {
		t.Errorf("timeout must be transient")
	}
}

func TestFetchSetsUserAgent(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{MaxAttempts: 1, UserAgent: "CatalogTest/0.1"})
	if _, err := c.Fetch(context.Background(), srv.URL, KindStatic); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if ua != "CatalogTest/0.1" {
		t.Errorf("user agent = %q", ua)
	}
}

type stubRenderer struct {
	html string
	err  error
}

func (s stubRenderer) Render(_ context.Context, _ string) (string, error) {
	return s.html, s.err
}

func TestRenderedKindUsesRenderer(t *testing.T) {
	c := NewClient(ClientConfig{
		MaxAttempts: 1,
		Renderer:    stubRenderer{html: "<html>hydrated</html>"},
	})

	body, err := c.Fetch(context.Background(), "https://example.test/board", KindRendered)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if body != "<html>hydrated</html>" {
		t.Errorf("body = %q", body)
	}
}

func TestRenderedKindFallsBackToStaticWithoutRenderer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("static markup"))
	}))
	defer srv.Close()

	body, err := testClient(1).Fetch(context.Background(), srv.URL, KindRendered)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if body != "static markup" {
		t.Errorf("body = %q", body)
	}
}

func TestRenderFailureClassification(t *testing.T) {
	c := NewClient(ClientConfig{
		MaxAttempts: 1,
		Renderer:    stubRenderer{err: errors.New("browser crashed")},
	})

	_, err := c.Fetch(context.Background(), "https://example.test/board", KindRendered)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
	if fe.Kind != ErrKindRenderFailure {
		t.Errorf("kind = %s, want render_failure", fe.Kind)
	}
	if fe.Transient() {
		t.Errorf("render failure must not be transient")
	}
}
