package server

import (
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ribose/bibxml-browse/internal/relaton"
	"github.com/ribose/bibxml-browse/internal/routing"
)

// searchResultCap bounds how many matches a single free-text query pulls from
// the index.
const searchResultCap = 500

// handleSearch serves the citation search results page. Without an explicit
// page_size all matches are shown on one page.
func handleSearch(w http.ResponseWriter, r *http.Request, store RefSearcher, cfg DatasetConfig) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("query"))
	if query == "" {
		writePage(w, r, cfg, renderSearch(query, nil, 0, 1, 0))
		return
	}

	results, err := store.SearchRefs(r.Context(), query, searchResultCap)
	if err != nil {
		routing.WriteError(w, r, routing.RouteClassUI, http.StatusInternalServerError, "index_error", "citation index unavailable")
		return
	}
	totalMatches := len(results)

	page := pageParam(r)
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	if pageSize > 0 {
		pages := (totalMatches + pageSize - 1) / pageSize
		if pages > 0 && page > pages {
			page = pages
		}
		offset := (page - 1) * pageSize
		if offset > len(results) {
			offset = len(results)
		}
		results = results[offset:]
		if pageSize < len(results) {
			results = results[:pageSize]
		}
	} else {
		pageSize = 0
		page = 1
	}

	writePage(w, r, cfg, renderSearch(query, results, totalMatches, page, pageSize))
}

// renderSearch renders the form plus one page of results. pageSize zero means
// everything is on this page.
func renderSearch(query string, results []RefData, totalMatches int, page int, pageSize int) string {
	var b strings.Builder
	b.WriteString("<h1>Search citations</h1>")
	b.WriteString(`<form method="GET" action="/search">`)
	b.WriteString(`<label>Query <input name="query" value="` + html.EscapeString(query) + `" /></label> `)
	b.WriteString(`<button type="submit">Search</button>`)
	b.WriteString(`</form>`)

	if query == "" {
		return b.String()
	}

	b.WriteString("<p>" + strconv.Itoa(totalMatches) + " matches</p>")
	if len(results) > 0 {
		b.WriteString("<ul>")
		for _, d := range results {
			title := relaton.FromJSON(d.Body).Title
			b.WriteString(`<li><a href="/browse/` + url.PathEscape(d.Dataset) + `/` + url.QueryEscape(d.Ref) + `">`)
			b.WriteString(html.EscapeString(d.Ref))
			b.WriteString("</a> <small>" + html.EscapeString(d.Dataset) + "</small>")
			if title != "" {
				b.WriteString(" " + html.EscapeString(title))
			}
			b.WriteString("</li>")
		}
		b.WriteString("</ul>")
	}

	if pageSize > 0 && totalMatches > pageSize {
		pages := (totalMatches + pageSize - 1) / pageSize
		base := "/search?query=" + url.QueryEscape(query) + "&page_size=" + strconv.Itoa(pageSize)
		b.WriteString("<p>")
		if page > 1 {
			b.WriteString(fmt.Sprintf(`<a href="%s&page=%d">previous</a> `, base, page-1))
		}
		b.WriteString(fmt.Sprintf("page %d of %d", page, pages))
		if page < pages {
			b.WriteString(fmt.Sprintf(` <a href="%s&page=%d">next</a>`, base, page+1))
		}
		b.WriteString("</p>")
	}
	return b.String()
}
