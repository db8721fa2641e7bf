package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"

	"github.com/ribose/bibxml-browse/internal/relaton"
	"github.com/ribose/bibxml-browse/internal/routing"
	"github.com/ribose/bibxml-browse/pkg/httperr"
)

// handleCitation serves the citation details page at /browse/{dataset_id}/{ref}.
// The doi dataset resolves through the external client; other external
// dataset ids are rejected; everything else goes through the index.
func handleCitation(w http.ResponseWriter, r *http.Request, store RefGetter, resolver DOIResolver, cfg DatasetConfig) {
	dataset, err := url.QueryUnescape(routing.Param(r, "dataset_id"))
	if err != nil {
		routing.WriteError(w, r, routing.RouteClassUI, http.StatusBadRequest, "bad_request", "Malformed dataset ID")
		return
	}
	ref, err := url.QueryUnescape(routing.Param(r, "ref"))
	if err != nil {
		routing.WriteError(w, r, routing.RouteClassUI, http.StatusBadRequest, "bad_request", "Malformed reference")
		return
	}

	if dataset == datasetDOI {
		body, err := resolver.GetRef(r.Context(), ref)
		if err != nil {
			// Resolver failures, not-found included, surface as the
			// generic server error page.
			routing.WriteError(w, r, routing.RouteClassUI, http.StatusInternalServerError, "upstream_error", "external source unavailable")
			return
		}
		writePage(w, r, cfg, renderCitationDetails(dataset, ref, body))
		return
	}

	if cfg.IsExternal(dataset) {
		routing.WriteError(w, r, routing.RouteClassUI, http.StatusBadRequest, "bad_request", "Unsupported external dataset ID")
		return
	}

	data, err := store.GetRef(r.Context(), dataset, ref)
	if httperr.IsNotFound(err) {
		routing.WriteError(w, r, routing.RouteClassUI, http.StatusNotFound, "not_found",
			fmt.Sprintf("Requested reference “%s” could not be found in dataset “%s” (or external source is unavailable)", ref, dataset))
		return
	}
	if err != nil {
		routing.WriteError(w, r, routing.RouteClassUI, http.StatusInternalServerError, "index_error", "citation index unavailable")
		return
	}

	writePage(w, r, cfg, renderCitationDetails(data.Dataset, data.Ref, data.Body))
}

func renderCitationDetails(dataset string, ref string, body []byte) string {
	item := relaton.FromJSON(body)

	var b strings.Builder
	if item.Title != "" {
		b.WriteString("<h1>" + html.EscapeString(item.Title) + "</h1>")
	} else {
		b.WriteString("<h1>" + html.EscapeString(ref) + "</h1>")
	}
	b.WriteString(`<p><a href="/browse/` + url.PathEscape(dataset) + `">` + html.EscapeString(dataset) + `</a>`)
	b.WriteString(` / <code>` + html.EscapeString(ref) + `</code></p>`)

	if len(item.DocIDs) > 0 {
		b.WriteString("<h2>Document IDs</h2><ul>")
		for _, id := range item.DocIDs {
			b.WriteString("<li>")
			b.WriteString(html.EscapeString(id.Type) + ": ")
			b.WriteString(`<a href="/browse/doctype/` + url.QueryEscape(id.Type) + `/` + url.QueryEscape(id.ID) + `">`)
			b.WriteString(html.EscapeString(id.ID))
			b.WriteString("</a>")
			if id.Primary {
				b.WriteString(" <em>(primary)</em>")
			}
			b.WriteString("</li>")
		}
		b.WriteString("</ul>")
	}

	b.WriteString("<h2>Citation data</h2>")
	b.WriteString("<pre><code>" + html.EscapeString(prettyJSON(body)) + "</code></pre>")
	return b.String()
}

func prettyJSON(body []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return string(body)
	}
	return buf.String()
}
