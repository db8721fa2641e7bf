package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

type fakeRefStore struct {
	listDatasetsFn func(ctx context.Context) ([]string, error)
	countRefsFn    func(ctx context.Context) (int64, error)
	listDoctypesFn func(ctx context.Context) ([]string, error)
	getRefFn       func(ctx context.Context, dataset string, ref string) (RefData, error)
	listRefsFn     func(ctx context.Context, dataset string, offset int, limit int) ([]RefData, int64, error)
	searchDocIDFn  func(ctx context.Context, doctype string, docid string) ([]RefData, error)
	searchRefsFn   func(ctx context.Context, query string, limit int) ([]RefData, error)
}

func (s fakeRefStore) ListDatasets(ctx context.Context) ([]string, error) {
	if s.listDatasetsFn == nil {
		return nil, nil
	}
	return s.listDatasetsFn(ctx)
}

func (s fakeRefStore) CountRefs(ctx context.Context) (int64, error) {
	if s.countRefsFn == nil {
		return 0, nil
	}
	return s.countRefsFn(ctx)
}

func (s fakeRefStore) ListDoctypes(ctx context.Context) ([]string, error) {
	if s.listDoctypesFn == nil {
		return nil, nil
	}
	return s.listDoctypesFn(ctx)
}

func (s fakeRefStore) GetRef(ctx context.Context, dataset string, ref string) (RefData, error) {
	if s.getRefFn == nil {
		return RefData{}, errors.New("not implemented")
	}
	return s.getRefFn(ctx, dataset, ref)
}

func (s fakeRefStore) ListRefs(ctx context.Context, dataset string, offset int, limit int) ([]RefData, int64, error) {
	if s.listRefsFn == nil {
		return nil, 0, errors.New("not implemented")
	}
	return s.listRefsFn(ctx, dataset, offset, limit)
}

func (s fakeRefStore) SearchDocID(ctx context.Context, doctype string, docid string) ([]RefData, error) {
	if s.searchDocIDFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.searchDocIDFn(ctx, doctype, docid)
}

func (s fakeRefStore) SearchRefs(ctx context.Context, query string, limit int) ([]RefData, error) {
	if s.searchRefsFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.searchRefsFn(ctx, query, limit)
}

type fakeResolver struct {
	getRefFn func(ctx context.Context, ref string) ([]byte, error)
}

func (r fakeResolver) GetRef(ctx context.Context, ref string) ([]byte, error) {
	if r.getRefFn == nil {
		return nil, errors.New("not implemented")
	}
	return r.getRefFn(ctx, ref)
}

func testDatasets() *DatasetConfig {
	return &DatasetConfig{
		KnownDatasets:         []string{"rfcs", "w3c", "doi"},
		ExternalDatasets:      []string{"doi"},
		AuthoritativeDatasets: []string{"rfcs"},
		Snapshot:              "test",
	}
}

func flashCookieValue(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == flashCookieName {
			v, err := url.QueryUnescape(c.Value)
			if err != nil {
				t.Fatalf("flash cookie: %v", err)
			}
			return v
		}
	}
	t.Fatal("flash cookie not set")
	return ""
}

func newTestHandler(t *testing.T, store RefStore, resolver DOIResolver) http.Handler {
	t.Helper()
	h, err := NewHandlerWithOptions(HandlerOptions{
		RefStore: store,
		Resolver: resolver,
		Datasets: testDatasets(),
	})
	if err != nil {
		t.Fatal(err)
	}
	return h
}
