package server

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ribose/bibxml-browse/pkg/httperr"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLikePattern neutralizes LIKE wildcards so a user query matches as a
// plain substring, same as the memory store.
func escapeLikePattern(query string) string {
	return likeEscaper.Replace(query)
}

// RefData is one indexed citation: the dataset it came from, its reference
// string within that dataset, and the Relaton JSON body.
type RefData struct {
	Dataset string
	Ref     string
	Body    []byte
}

type RefStore interface {
	RefDatasetLister
	RefCounter
	DoctypeLister
	RefGetter
	RefLister
	DocIDSearcher
	RefSearcher
}

type RefDatasetLister interface {
	// ListDatasets returns the dataset ids that hold at least one citation.
	ListDatasets(ctx context.Context) ([]string, error)
}

type RefCounter interface {
	CountRefs(ctx context.Context) (int64, error)
}

type DoctypeLister interface {
	// ListDoctypes enumerates the document identifier types present in the
	// index, e.g. "IETF", "DOI", "W3C".
	ListDoctypes(ctx context.Context) ([]string, error)
}

type RefGetter interface {
	// GetRef fetches one citation by dataset and reference string. The
	// reference comparison is case-insensitive. Absent citations yield a
	// httperr not-found error.
	GetRef(ctx context.Context, dataset string, ref string) (RefData, error)
}

type RefLister interface {
	// ListRefs pages through a dataset ordered by reference string and
	// reports the dataset's total citation count.
	ListRefs(ctx context.Context, dataset string, offset int, limit int) ([]RefData, int64, error)
}

type DocIDSearcher interface {
	// SearchDocID finds citations carrying the given typed document
	// identifier, in either docid shape (array of identifiers or a single
	// identifier object).
	SearchDocID(ctx context.Context, doctype string, docid string) ([]RefData, error)
}

type RefSearcher interface {
	// SearchRefs matches query as a substring anywhere in the citation body.
	SearchRefs(ctx context.Context, query string, limit int) ([]RefData, error)
}

type refPGStore struct {
	pool pgQuerier
}

type pgQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func newRefPGStore(pool pgQuerier) RefStore {
	return &refPGStore{pool: pool}
}

func (s *refPGStore) ListDatasets(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT dataset FROM refdata ORDER BY dataset;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var ds string
		if err := rows.Scan(&ds); err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, rows.Err()
}

func (s *refPGStore) CountRefs(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM refdata;`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *refPGStore) ListDoctypes(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
SELECT DISTINCT t.doctype
FROM (
  SELECT jsonb_array_elements(body->'docid')->>'type' AS doctype
  FROM refdata
  WHERE jsonb_typeof(body->'docid') = 'array'
  UNION
  SELECT body->'docid'->>'type'
  FROM refdata
  WHERE jsonb_typeof(body->'docid') = 'object'
) t
WHERE t.doctype IS NOT NULL AND t.doctype <> ''
ORDER BY t.doctype;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var dt string
		if err := rows.Scan(&dt); err != nil {
			return nil, err
		}
		out = append(out, dt)
	}
	return out, rows.Err()
}

func (s *refPGStore) GetRef(ctx context.Context, dataset string, ref string) (RefData, error) {
	var d RefData
	err := s.pool.QueryRow(ctx, `
SELECT dataset, ref, body
FROM refdata
WHERE dataset = $1 AND lower(ref) = lower($2)
LIMIT 1;
`, dataset, ref).Scan(&d.Dataset, &d.Ref, &d.Body)
	if err == pgx.ErrNoRows {
		return RefData{}, httperr.NewNotFound("reference " + ref + " not found in dataset " + dataset)
	}
	if err != nil {
		return RefData{}, err
	}
	return d, nil
}

func (s *refPGStore) ListRefs(ctx context.Context, dataset string, offset int, limit int) ([]RefData, int64, error) {
	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM refdata WHERE dataset = $1;`, dataset).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, `
SELECT dataset, ref, body
FROM refdata
WHERE dataset = $1
ORDER BY ref
LIMIT $2 OFFSET $3;
`, dataset, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []RefData
	for rows.Next() {
		var d RefData
		if err := rows.Scan(&d.Dataset, &d.Ref, &d.Body); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

func (s *refPGStore) SearchDocID(ctx context.Context, doctype string, docid string) ([]RefData, error) {
	// Containment over both docid shapes Relaton sources produce.
	rows, err := s.pool.Query(ctx, `
SELECT dataset, ref, body
FROM refdata
WHERE body @> jsonb_build_object('docid', jsonb_build_array(jsonb_build_object('type', $1::text, 'id', $2::text)))
   OR body @> jsonb_build_object('docid', jsonb_build_object('type', $1::text, 'id', $2::text))
ORDER BY dataset, ref;
`, doctype, docid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RefData
	for rows.Next() {
		var d RefData
		if err := rows.Scan(&d.Dataset, &d.Ref, &d.Body); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *refPGStore) SearchRefs(ctx context.Context, query string, limit int) ([]RefData, error) {
	rows, err := s.pool.Query(ctx, `
SELECT dataset, ref, body
FROM refdata
WHERE body::text ILIKE '%' || $1 || '%'
ORDER BY dataset, ref
LIMIT $2;
`, escapeLikePattern(query), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RefData
	for rows.Next() {
		var d RefData
		if err := rows.Scan(&d.Dataset, &d.Ref, &d.Body); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
