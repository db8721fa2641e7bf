package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFlashRoundTrip(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	setFlash(rec, `No reliable match for doctype "IETF" (2 matches).`)

	if got := flashCookieValue(t, rec); got != `No reliable match for doctype "IETF" (2 matches).` {
		t.Fatalf("got %q", got)
	}

	// The next request carries the cookie; popping returns the message and
	// expires the cookie.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec2 := httptest.NewRecorder()
	msg := popFlash(rec2, req)
	if msg != `No reliable match for doctype "IETF" (2 matches).` {
		t.Fatalf("got %q", msg)
	}

	var cleared bool
	for _, c := range rec2.Result().Cookies() {
		if c.Name == flashCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("flash cookie not cleared")
	}
}

func TestPopFlashWithoutCookie(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	if msg := popFlash(rec, req); msg != "" {
		t.Fatalf("got %q", msg)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("no cookie should be written")
	}
}
