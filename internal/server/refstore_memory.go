package server

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/ribose/bibxml-browse/internal/relaton"
	"github.com/ribose/bibxml-browse/pkg/httperr"
)

// refMemoryStore serves citations from memory. It backs tests and DB-less
// deployments seeded from a JSONL snapshot. The ref slice is sorted once at
// construction and treated as read-only afterwards.
type refMemoryStore struct {
	refs []RefData
}

func newRefMemoryStore(refs []RefData) RefStore {
	sorted := append([]RefData(nil), refs...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Dataset != sorted[j].Dataset {
			return sorted[i].Dataset < sorted[j].Dataset
		}
		return sorted[i].Ref < sorted[j].Ref
	})
	return &refMemoryStore{refs: sorted}
}

type refJSONLine struct {
	Dataset string          `json:"dataset"`
	Ref     string          `json:"ref"`
	Body    json.RawMessage `json:"body"`
}

// newRefMemoryStoreFromJSONL seeds a memory store from a file of one JSON
// citation per line: {"dataset": ..., "ref": ..., "body": {...}}.
func newRefMemoryStoreFromJSONL(path string) (RefStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var refs []RefData
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec refJSONLine
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, err
		}
		refs = append(refs, RefData{Dataset: rec.Dataset, Ref: rec.Ref, Body: rec.Body})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return newRefMemoryStore(refs), nil
}

func (s *refMemoryStore) ListDatasets(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, d := range s.refs {
		if !seen[d.Dataset] {
			seen[d.Dataset] = true
			out = append(out, d.Dataset)
		}
	}
	return out, nil
}

func (s *refMemoryStore) CountRefs(_ context.Context) (int64, error) {
	return int64(len(s.refs)), nil
}

func (s *refMemoryStore) ListDoctypes(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, d := range s.refs {
		for _, id := range relaton.FromJSON(d.Body).DocIDs {
			if id.Type == "" || seen[id.Type] {
				continue
			}
			seen[id.Type] = true
			out = append(out, id.Type)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *refMemoryStore) GetRef(_ context.Context, dataset string, ref string) (RefData, error) {
	for _, d := range s.refs {
		if d.Dataset == dataset && strings.EqualFold(d.Ref, ref) {
			return d, nil
		}
	}
	return RefData{}, httperr.NewNotFound("reference " + ref + " not found in dataset " + dataset)
}

func (s *refMemoryStore) ListRefs(_ context.Context, dataset string, offset int, limit int) ([]RefData, int64, error) {
	var matched []RefData
	for _, d := range s.refs {
		if d.Dataset == dataset {
			matched = append(matched, d)
		}
	}
	total := int64(len(matched))

	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (s *refMemoryStore) SearchDocID(_ context.Context, doctype string, docid string) ([]RefData, error) {
	var out []RefData
	for _, d := range s.refs {
		if relaton.HasDocID(d.Body, doctype, docid) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *refMemoryStore) SearchRefs(_ context.Context, query string, limit int) ([]RefData, error) {
	q := strings.ToLower(query)
	var out []RefData
	for _, d := range s.refs {
		if len(out) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(string(d.Body)), q) {
			out = append(out, d)
		}
	}
	return out, nil
}
