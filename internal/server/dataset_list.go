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

const datasetPageSize = 20

// handleDatasetList pages through an indexed dataset's citations.
func handleDatasetList(w http.ResponseWriter, r *http.Request, store RefLister, cfg DatasetConfig) {
	dataset, err := url.QueryUnescape(routing.Param(r, "dataset_id"))
	if err != nil {
		routing.WriteError(w, r, routing.RouteClassUI, http.StatusBadRequest, "bad_request", "Malformed dataset ID")
		return
	}

	if cfg.IsExternal(dataset) {
		http.Redirect(w, r, "/external/"+url.PathEscape(dataset), http.StatusFound)
		return
	}

	page := pageParam(r)
	offset := (page - 1) * datasetPageSize
	refs, total, err := store.ListRefs(r.Context(), dataset, offset, datasetPageSize)
	if err != nil {
		routing.WriteError(w, r, routing.RouteClassUI, http.StatusInternalServerError, "index_error", "citation index unavailable")
		return
	}

	writePage(w, r, cfg, renderDatasetList(dataset, refs, total, page))
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func renderDatasetList(dataset string, refs []RefData, total int64, page int) string {
	var b strings.Builder
	b.WriteString("<h1>" + html.EscapeString(dataset) + "</h1>")
	b.WriteString("<p>" + strconv.FormatInt(total, 10) + " citations</p>")

	if len(refs) == 0 {
		b.WriteString("<p>(no citations on this page)</p>")
	} else {
		b.WriteString("<ul>")
		for _, d := range refs {
			title := relaton.FromJSON(d.Body).Title
			b.WriteString(`<li><a href="/browse/` + url.PathEscape(d.Dataset) + `/` + url.QueryEscape(d.Ref) + `">`)
			b.WriteString(html.EscapeString(d.Ref))
			b.WriteString("</a>")
			if title != "" {
				b.WriteString(": " + html.EscapeString(title))
			}
			b.WriteString("</li>")
		}
		b.WriteString("</ul>")
	}

	pages := int((total + datasetPageSize - 1) / datasetPageSize)
	if pages > 1 {
		b.WriteString("<p>")
		if page > 1 {
			b.WriteString(fmt.Sprintf(`<a href="/browse/%s?page=%d">previous</a> `, url.PathEscape(dataset), page-1))
		}
		b.WriteString(fmt.Sprintf("page %d of %d", page, pages))
		if page < pages {
			b.WriteString(fmt.Sprintf(` <a href="/browse/%s?page=%d">next</a>`, url.PathEscape(dataset), page+1))
		}
		b.WriteString("</p>")
	}
	return b.String()
}
