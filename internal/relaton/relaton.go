// Package relaton holds the subset of the Relaton bibliographic model the
// browse GUI needs: document identifiers, titles and dates. Citation bodies
// are stored and rendered as raw Relaton JSON; this package only extracts the
// fields list and detail pages display.
package relaton

import "github.com/tidwall/gjson"

// DocID is a typed document identifier, e.g. {Type: "DOI", ID: "10.1000/182"}
// or {Type: "IETF", ID: "RFC 8446"}.
type DocID struct {
	Type    string `json:"type" yaml:"type"`
	ID      string `json:"id" yaml:"id"`
	Primary bool   `json:"primary,omitempty" yaml:"primary,omitempty"`
}

// Bibitem is the part of a Relaton citation the GUI renders outside the raw
// JSON view.
type Bibitem struct {
	DocIDs   []DocID
	Title    string
	Doctype  string
	Language string
}

// FromJSON extracts display fields from a Relaton JSON body. Unknown or
// missing fields are left zero; the raw body remains the source of truth.
func FromJSON(body []byte) Bibitem {
	doc := gjson.ParseBytes(body)

	var item Bibitem
	item.Doctype = doc.Get("doctype").String()
	item.Language = doc.Get("language").String()
	item.Title = titleFrom(doc)
	item.DocIDs = docIDsFrom(doc)
	return item
}

// titleFrom handles the title shapes Relaton sources produce: a plain string,
// an object with content, or an array of typed titles (prefer "main").
func titleFrom(doc gjson.Result) string {
	t := doc.Get("title")
	switch {
	case t.Type == gjson.String:
		return t.String()
	case t.IsObject():
		return t.Get("content").String()
	case t.IsArray():
		var first string
		for _, el := range t.Array() {
			content := el.Get("content").String()
			if content == "" {
				continue
			}
			if first == "" {
				first = content
			}
			if el.Get("type").String() == "main" {
				return content
			}
		}
		return first
	}
	return ""
}

// docIDsFrom handles both docid shapes: an array of typed identifiers and a
// single identifier object.
func docIDsFrom(doc gjson.Result) []DocID {
	d := doc.Get("docid")
	if !d.Exists() {
		return nil
	}

	parse := func(el gjson.Result) (DocID, bool) {
		id := DocID{
			Type:    el.Get("type").String(),
			ID:      el.Get("id").String(),
			Primary: el.Get("primary").Bool(),
		}
		if id.ID == "" {
			return DocID{}, false
		}
		return id, true
	}

	if d.IsArray() {
		var out []DocID
		for _, el := range d.Array() {
			if id, ok := parse(el); ok {
				out = append(out, id)
			}
		}
		return out
	}
	if id, ok := parse(d); ok {
		return []DocID{id}
	}
	return nil
}

// HasDocID reports whether the JSON body carries the given identifier, in
// either docid shape. Both type and identifier must match exactly, mirroring
// jsonb containment in the Postgres store.
func HasDocID(body []byte, doctype, docid string) bool {
	for _, id := range docIDsFrom(gjson.ParseBytes(body)) {
		if id.Type == doctype && id.ID == docid {
			return true
		}
	}
	return false
}
