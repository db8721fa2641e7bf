package relaton

import "testing"

func TestFromJSON_DocIDArray(t *testing.T) {
	t.Parallel()

	body := []byte(`{
		"docid": [
			{"type": "IETF", "id": "RFC 8446", "primary": true},
			{"type": "DOI", "id": "10.17487/RFC8446"}
		],
		"title": [{"type": "main", "content": "TLS 1.3"}],
		"doctype": "rfc",
		"language": "en"
	}`)

	item := FromJSON(body)
	if len(item.DocIDs) != 2 {
		t.Fatalf("docids=%d", len(item.DocIDs))
	}
	if item.DocIDs[0].Type != "IETF" || item.DocIDs[0].ID != "RFC 8446" || !item.DocIDs[0].Primary {
		t.Fatalf("docid[0]=%+v", item.DocIDs[0])
	}
	if item.Title != "TLS 1.3" {
		t.Fatalf("title=%q", item.Title)
	}
	if item.Doctype != "rfc" || item.Language != "en" {
		t.Fatalf("doctype=%q language=%q", item.Doctype, item.Language)
	}
}

func TestFromJSON_DocIDObject(t *testing.T) {
	t.Parallel()

	body := []byte(`{"docid": {"type": "DOI", "id": "10.1000/182"}, "title": "Plain title"}`)

	item := FromJSON(body)
	if len(item.DocIDs) != 1 || item.DocIDs[0].ID != "10.1000/182" {
		t.Fatalf("docids=%+v", item.DocIDs)
	}
	if item.Title != "Plain title" {
		t.Fatalf("title=%q", item.Title)
	}
}

func TestFromJSON_TitleShapes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
		want string
	}{
		{name: "object", body: `{"title": {"content": "Obj title"}}`, want: "Obj title"},
		{name: "array without main", body: `{"title": [{"content": "First"}, {"content": "Second"}]}`, want: "First"},
		{name: "array prefers main", body: `{"title": [{"content": "Alt"}, {"type": "main", "content": "Main"}]}`, want: "Main"},
		{name: "missing", body: `{}`, want: ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := FromJSON([]byte(tc.body)).Title; got != tc.want {
				t.Fatalf("title=%q want %q", got, tc.want)
			}
		})
	}
}

func TestHasDocID(t *testing.T) {
	t.Parallel()

	body := []byte(`{"docid": [{"type": "IETF", "id": "RFC 8446"}]}`)

	if !HasDocID(body, "IETF", "RFC 8446") {
		t.Fatal("expected match")
	}
	if HasDocID(body, "ietf", "RFC 8446") {
		t.Fatal("expected exact type comparison")
	}
	if HasDocID(body, "IETF", "rfc 8446") {
		t.Fatal("expected exact id comparison")
	}
	if HasDocID(body, "DOI", "RFC 8446") {
		t.Fatal("expected type mismatch")
	}
	if HasDocID([]byte(`{}`), "IETF", "RFC 8446") {
		t.Fatal("expected no match without docid")
	}

	obj := []byte(`{"docid": {"type": "DOI", "id": "10.1000/182"}}`)
	if !HasDocID(obj, "DOI", "10.1000/182") {
		t.Fatal("expected object-shape match")
	}
}
