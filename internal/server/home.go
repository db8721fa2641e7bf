package server

import (
	"html"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/ribose/bibxml-browse/internal/routing"
)

func handleHome(w http.ResponseWriter, r *http.Request, store RefStore, cfg DatasetConfig) {
	nonEmpty, err := store.ListDatasets(r.Context())
	if err != nil {
		routing.WriteError(w, r, routing.RouteClassUI, http.StatusInternalServerError, "index_error", "citation index unavailable")
		return
	}
	total, err := store.CountRefs(r.Context())
	if err != nil {
		routing.WriteError(w, r, routing.RouteClassUI, http.StatusInternalServerError, "index_error", "citation index unavailable")
		return
	}
	doctypes, err := store.ListDoctypes(r.Context())
	if err != nil {
		routing.WriteError(w, r, routing.RouteClassUI, http.StatusInternalServerError, "index_error", "citation index unavailable")
		return
	}

	var browsable []string
	for _, ds := range cfg.IndexedDatasets() {
		if slices.Contains(nonEmpty, ds) {
			browsable = append(browsable, ds)
		}
	}

	writePage(w, r, cfg, renderHome(cfg, browsable, total, doctypes))
}

func renderHome(cfg DatasetConfig, browsable []string, total int64, doctypes []string) string {
	var b strings.Builder
	b.WriteString("<h1>Citation browser</h1>")
	b.WriteString("<p>" + strconv.FormatInt(total, 10) + " indexed citations</p>")

	b.WriteString("<h2>Browsable datasets</h2>")
	if len(browsable) == 0 {
		b.WriteString("<p>(none indexed yet)</p>")
	} else {
		b.WriteString("<ul>")
		for _, ds := range browsable {
			b.WriteString(`<li><a href="/browse/` + url.PathEscape(ds) + `">` + html.EscapeString(ds) + `</a></li>`)
		}
		b.WriteString("</ul>")
	}

	if len(cfg.ExternalDatasets) > 0 {
		b.WriteString("<h2>External datasets</h2><ul>")
		for _, ds := range cfg.ExternalDatasets {
			b.WriteString(`<li><a href="/external/` + url.PathEscape(ds) + `">` + html.EscapeString(ds) + `</a></li>`)
		}
		b.WriteString("</ul>")
	}

	b.WriteString("<h2>Find by document ID</h2>")
	b.WriteString(`<form method="GET" action="/browse/doctype">`)
	b.WriteString(`<label>Type <select name="doctype">`)
	for _, dt := range doctypes {
		b.WriteString(`<option value="` + html.EscapeString(dt) + `">` + html.EscapeString(dt) + `</option>`)
	}
	b.WriteString(`</select></label> `)
	b.WriteString(`<label>ID <input name="docid" /></label> `)
	b.WriteString(`<button type="submit">Find</button>`)
	b.WriteString(`</form>`)

	b.WriteString("<h2>Search</h2>")
	b.WriteString(`<form method="GET" action="/search">`)
	b.WriteString(`<label>Query <input name="query" /></label> `)
	b.WriteString(`<button type="submit">Search</button>`)
	b.WriteString(`</form>`)

	return b.String()
}
