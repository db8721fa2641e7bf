package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ribose/bibxml-browse/internal/routing"
	"github.com/ribose/bibxml-browse/pkg/httperr"
)

// findByDocID wraps SearchDocID with the exactly-one contract: zero matches
// yield a not-found error, several an ambiguous-match error carrying the
// match count.
func findByDocID(ctx context.Context, store DocIDSearcher, doctype string, docid string) (RefData, error) {
	citations, err := store.SearchDocID(ctx, doctype, docid)
	if err != nil {
		return RefData{}, err
	}
	switch len(citations) {
	case 1:
		return citations[0], nil
	case 0:
		return RefData{}, httperr.NewNotFound("no citation with docid.type " + doctype + " and docid.id " + docid)
	default:
		return RefData{}, httperr.NewAmbiguousMatch(
			fmt.Sprintf("%d citations with docid.type %s and docid.id %s", len(citations), doctype, docid),
			len(citations))
	}
}

// handleDocIDCitation serves the canonical per-document-ID citation page:
// exactly one indexed match renders details, zero or several are 404s with a
// descriptive message.
func handleDocIDCitation(w http.ResponseWriter, r *http.Request, store DocIDSearcher, cfg DatasetConfig) {
	doctype, err := url.QueryUnescape(routing.Param(r, "doctype"))
	if err != nil {
		routing.WriteError(w, r, routing.RouteClassUI, http.StatusBadRequest, "bad_request", "Malformed document type")
		return
	}
	docid, err := url.QueryUnescape(routing.Param(r, "docid"))
	if err != nil {
		routing.WriteError(w, r, routing.RouteClassUI, http.StatusBadRequest, "bad_request", "Malformed document ID")
		return
	}

	c, err := findByDocID(r.Context(), store, doctype, docid)
	switch {
	case err == nil:
		writePage(w, r, cfg, renderCitationDetails(c.Dataset, c.Ref, c.Body))
	case httperr.IsNotFound(err):
		routing.WriteError(w, r, routing.RouteClassUI, http.StatusNotFound, "not_found",
			fmt.Sprintf("Citation with docid.type %s and docid.id %s was not found in indexed sources", doctype, docid))
	case httperr.IsAmbiguousMatch(err):
		routing.WriteError(w, r, routing.RouteClassUI, http.StatusNotFound, "ambiguous_match",
			fmt.Sprintf("Multiple citations with docid.type %s and docid.id %s were found in indexed sources", doctype, docid))
	default:
		routing.WriteError(w, r, routing.RouteClassUI, http.StatusInternalServerError, "index_error", "citation index unavailable")
	}
}

// handleDocIDLookup backs the HTML lookup form. An unambiguous match
// redirects to the canonical URL; anything else flashes and sends the user
// back where they came from.
func handleDocIDLookup(w http.ResponseWriter, r *http.Request, store DocIDSearcher) {
	doctype := r.URL.Query().Get("doctype")
	docid := r.URL.Query().Get("docid")

	if doctype == "" || docid == "" {
		routing.WriteError(w, r, routing.RouteClassUI, http.StatusBadRequest, "bad_request", "Missing document type and/or ID")
		return
	}

	_, err := findByDocID(r.Context(), store, doctype, docid)
	if err == nil {
		http.Redirect(w, r, "/browse/doctype/"+url.QueryEscape(doctype)+"/"+url.QueryEscape(docid), http.StatusFound)
		return
	}
	if !httperr.IsNotFound(err) && !httperr.IsAmbiguousMatch(err) {
		routing.WriteError(w, r, routing.RouteClassUI, http.StatusInternalServerError, "index_error", "citation index unavailable")
		return
	}

	matches := 0
	if ambiguous, ok := errors.AsType[*httperr.AmbiguousMatchError](err); ok {
		matches = ambiguous.Matches
	}
	setFlash(w, fmt.Sprintf(
		"No reliable match for a citation matching doctype “%s” and ID “%s” among indexed datasets (%d matches).",
		doctype, docid, matches))
	redirectBack(w, r)
}
