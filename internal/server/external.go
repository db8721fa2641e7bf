package server

import (
	"context"
	"html"
	"net/http"
	"net/url"
	"strings"

	"github.com/ribose/bibxml-browse/internal/routing"
)

const datasetDOI = "doi"

// DOIResolver fetches citation bodies for DOI references from the external
// resolver.
type DOIResolver interface {
	GetRef(ctx context.Context, ref string) ([]byte, error)
}

// handleExternalDataset renders the landing page of an external dataset with
// its lookup form.
func handleExternalDataset(w http.ResponseWriter, r *http.Request, cfg DatasetConfig) {
	dataset, err := url.QueryUnescape(routing.Param(r, "dataset_id"))
	if err != nil {
		routing.WriteError(w, r, routing.RouteClassUI, http.StatusBadRequest, "bad_request", "Malformed dataset ID")
		return
	}
	writePage(w, r, cfg, renderExternalDataset(dataset))
}

// handleExternalLookup backs the external lookup form. A successful resolve
// redirects to the canonical citation URL; failures flash and return the user
// to the referring page.
func handleExternalLookup(w http.ResponseWriter, r *http.Request, resolver DOIResolver, cfg DatasetConfig) {
	dataset, err := url.QueryUnescape(routing.Param(r, "dataset_id"))
	if err != nil {
		routing.WriteError(w, r, routing.RouteClassUI, http.StatusBadRequest, "bad_request", "Malformed dataset ID")
		return
	}
	ref := r.URL.Query().Get("ref")

	if ref == "" {
		routing.WriteError(w, r, routing.RouteClassUI, http.StatusBadRequest, "bad_request", "Missing dataset ID and/or reference")
		return
	}

	if dataset != datasetDOI || !cfg.IsExternal(dataset) {
		setFlash(w, "Unsupported external dataset "+dataset)
		redirectBack(w, r)
		return
	}

	if _, err := resolver.GetRef(r.Context(), ref); err != nil {
		setFlash(w, "Couldn’t retrieve citation: "+err.Error())
		redirectBack(w, r)
		return
	}

	http.Redirect(w, r, "/browse/"+url.PathEscape(dataset)+"/"+url.QueryEscape(ref), http.StatusFound)
}

func renderExternalDataset(dataset string) string {
	var b strings.Builder
	b.WriteString("<h1>" + html.EscapeString(dataset) + "</h1>")
	b.WriteString("<p>Citations in this dataset are fetched from an external service on demand.</p>")
	b.WriteString(`<form method="GET" action="/external/` + url.PathEscape(dataset) + `/lookup">`)
	b.WriteString(`<label>Reference <input name="ref" /></label> `)
	b.WriteString(`<button type="submit">Fetch</button>`)
	b.WriteString(`</form>`)
	return b.String()
}
