package server

import (
	"html"
	"net/http"
	"net/url"
	"strings"
)

func isHX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func renderNav(cfg DatasetConfig) string {
	var b strings.Builder
	b.WriteString(`<nav><ul>`)
	b.WriteString(`<li><a href="/">Home</a></li>`)
	b.WriteString(`<li><a href="/search">Search</a></li>`)
	for _, ds := range cfg.IndexedDatasets() {
		b.WriteString(`<li><a href="/browse/` + url.PathEscape(ds) + `">` + html.EscapeString(ds) + `</a></li>`)
	}
	for _, ds := range cfg.ExternalDatasets {
		b.WriteString(`<li><a href="/external/` + url.PathEscape(ds) + `">` + html.EscapeString(ds) + ` (external)</a></li>`)
	}
	b.WriteString(`</ul></nav>`)
	return b.String()
}

func writeShellWithStatus(w http.ResponseWriter, r *http.Request, cfg DatasetConfig, status int, bodyHTML string) {
	flash := popFlash(w, r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(renderShell(cfg, flash, bodyHTML)))
}

func writeContentWithStatus(w http.ResponseWriter, r *http.Request, status int, bodyHTML string) {
	flash := popFlash(w, r)
	if flash != "" {
		bodyHTML = renderFlash(flash) + bodyHTML
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(bodyHTML))
}

func writePage(w http.ResponseWriter, r *http.Request, cfg DatasetConfig, bodyHTML string) {
	writePageWithStatus(w, r, cfg, http.StatusOK, bodyHTML)
}

func writePageWithStatus(w http.ResponseWriter, r *http.Request, cfg DatasetConfig, status int, bodyHTML string) {
	if isHX(r) {
		writeContentWithStatus(w, r, status, bodyHTML)
		return
	}
	writeShellWithStatus(w, r, cfg, status, bodyHTML)
}

func renderShell(cfg DatasetConfig, flash string, bodyHTML string) string {
	var b strings.Builder
	b.WriteString("<!doctype html><html><head>")
	b.WriteString(`<meta charset="utf-8">`)
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	b.WriteString("<title>Citation browser</title>")
	b.WriteString("</head><body>")
	b.WriteString(renderNav(cfg))
	if flash != "" {
		b.WriteString(renderFlash(flash))
	}
	b.WriteString(`<main id="content">`)
	b.WriteString(bodyHTML)
	b.WriteString("</main>")
	if cfg.Snapshot != "" {
		b.WriteString(`<footer><small>snapshot ` + html.EscapeString(cfg.Snapshot) + `</small></footer>`)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func renderFlash(msg string) string {
	return `<div class="flash" style="padding:8px;border:1px solid #c00;color:#c00">` + html.EscapeString(msg) + `</div>`
}

func redirectBack(w http.ResponseWriter, r *http.Request) {
	ref := r.Header.Get("Referer")
	if ref == "" {
		ref = "/"
	}
	http.Redirect(w, r, ref, http.StatusFound)
}
