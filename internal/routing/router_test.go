package routing

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := NewClassifier(serverAllowlist(), "server")
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestRouter_PanicBecomes500JSON(t *testing.T) {
	t.Parallel()

	r := NewRouter(testClassifier(t))
	r.Handle(RouteClassPublicAPI, http.MethodGet, "/api/v1/panic", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/panic", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("content-type=%q", rec.Header().Get("Content-Type"))
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	r := NewRouter(testClassifier(t))
	r.Handle(RouteClassUI, http.MethodGet, "/search", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/search", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestRouter_NotFound(t *testing.T) {
	t.Parallel()

	r := NewRouter(testClassifier(t))

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestRouter_PatternParams(t *testing.T) {
	t.Parallel()

	r := NewRouter(testClassifier(t))
	var gotDataset, gotRef string
	r.Handle(RouteClassUI, http.MethodGet, "/browse/{dataset_id}/{ref}", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotDataset = Param(req, "dataset_id")
		gotRef = Param(req, "ref")
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/browse/rfcs/RFC0001", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	if gotDataset != "rfcs" || gotRef != "RFC0001" {
		t.Fatalf("params=%q,%q", gotDataset, gotRef)
	}
}

func TestRouter_PatternKeepsEncodedSegment(t *testing.T) {
	t.Parallel()

	r := NewRouter(testClassifier(t))
	var gotRef string
	r.Handle(RouteClassUI, http.MethodGet, "/browse/{dataset_id}/{ref}", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotRef = Param(req, "ref")
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/browse/doi/10.1000%2F182", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	if gotRef != "10.1000%2F182" {
		t.Fatalf("ref=%q", gotRef)
	}
}

func TestRouter_PatternMethodRegistration(t *testing.T) {
	t.Parallel()

	r := NewRouter(testClassifier(t))
	r.Handle(RouteClassUI, http.MethodGet, "/external/{dataset_id}", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	r.Handle(RouteClassUI, http.MethodPost, "/external/{dataset_id}", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	if len(r.patterns) != 1 {
		t.Fatalf("patterns=%d", len(r.patterns))
	}

	req := httptest.NewRequest(http.MethodPost, "/external/doi", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestParam_MissingIsEmpty(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if got := Param(req, "dataset_id"); got != "" {
		t.Fatalf("got=%q", got)
	}
}

func TestEntrypointClass_Fallback(t *testing.T) {
	t.Parallel()

	if got := entrypointClass(map[string]routeEntry{}, RouteClassUI); got != RouteClassUI {
		t.Fatalf("got=%q", got)
	}
}
