package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ribose/bibxml-browse/internal/doi"
	"github.com/ribose/bibxml-browse/internal/routing"
)

func NewHandler() (http.Handler, error) {
	return NewHandlerWithOptions(HandlerOptions{})
}

type HandlerOptions struct {
	RefStore RefStore
	Resolver DOIResolver
	Datasets *DatasetConfig
}

func NewHandlerWithOptions(opts HandlerOptions) (http.Handler, error) {
	allowlistPath := os.Getenv("ALLOWLIST_PATH")
	if allowlistPath == "" {
		p, err := defaultAllowlistPath()
		if err != nil {
			return nil, err
		}
		allowlistPath = p
	}

	a, err := routing.LoadAllowlist(allowlistPath)
	if err != nil {
		return nil, err
	}

	classifier, err := routing.NewClassifier(a, "server")
	if err != nil {
		return nil, err
	}

	var cfg DatasetConfig
	if opts.Datasets != nil {
		cfg = *opts.Datasets
	} else {
		path := os.Getenv("DATASETS_PATH")
		if path == "" {
			p, err := defaultDatasetConfigPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		cfg, err = LoadDatasetConfig(path)
		if err != nil {
			return nil, err
		}
	}

	store := opts.RefStore
	if store == nil {
		switch {
		case dbConfigured():
			pool, err := pgxpool.New(context.Background(), dbDSNFromEnv())
			if err != nil {
				return nil, err
			}
			store = newRefPGStore(pool)
		case os.Getenv("REFS_JSONL") != "":
			store, err = newRefMemoryStoreFromJSONL(os.Getenv("REFS_JSONL"))
			if err != nil {
				return nil, err
			}
		default:
			store = newRefMemoryStore(nil)
		}
	}

	resolver := opts.Resolver
	if resolver == nil {
		resolver = doi.NewClient()
	}

	router := routing.NewRouter(classifier)

	router.Handle(routing.RouteClassUI, http.MethodGet, "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleHome(w, r, store, cfg)
	}))

	router.Handle(routing.RouteClassOps, http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}))
	router.Handle(routing.RouteClassOps, http.MethodGet, "/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}))

	router.Handle(routing.RouteClassUI, http.MethodGet, "/search", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleSearch(w, r, store, cfg)
	}))

	router.Handle(routing.RouteClassUI, http.MethodGet, "/browse/doctype", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleDocIDLookup(w, r, store)
	}))

	// Pattern routes match in registration order; the doctype route must be
	// registered before the generic /browse/{dataset_id}/{ref} route, which
	// would otherwise swallow it.
	router.Handle(routing.RouteClassUI, http.MethodGet, "/browse/doctype/{doctype}/{docid}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleDocIDCitation(w, r, store, cfg)
	}))
	router.Handle(routing.RouteClassUI, http.MethodGet, "/browse/{dataset_id}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleDatasetList(w, r, store, cfg)
	}))
	router.Handle(routing.RouteClassUI, http.MethodGet, "/browse/{dataset_id}/{ref}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleCitation(w, r, store, resolver, cfg)
	}))

	router.Handle(routing.RouteClassUI, http.MethodGet, "/external/{dataset_id}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleExternalDataset(w, r, cfg)
	}))
	router.Handle(routing.RouteClassUI, http.MethodGet, "/external/{dataset_id}/lookup", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleExternalLookup(w, r, resolver, cfg)
	}))

	return withAccessLog(router), nil
}

func NewMux() http.Handler {
	return MustNewHandler()
}

func MustNewHandler() http.Handler {
	h, err := NewHandler()
	if err != nil {
		panic(errors.New("server: failed to build handler: " + err.Error()))
	}
	return h
}

func defaultAllowlistPath() (string, error) {
	path := "config/routing/allowlist.yaml"
	for range 8 {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		path = filepath.Join("..", path)
	}
	return "", errors.New("server: allowlist not found")
}
