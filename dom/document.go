package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a parsed HTML page.
type Document struct {
	doc *goquery.Document
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{doc: doc}, nil
}

// ParseString is Parse for in-memory markup.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the whole document as a Selection.
func (d *Document) Root() Selection {
	return Wrap(d.doc.Selection)
}

// Select resolves selector against the document. An empty selector is the
// whole document.
func (d *Document) Select(selector string) Selection {
	if strings.TrimSpace(selector) == "" {
		return d.Root()
	}
	return Wrap(d.doc.Find(selector))
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	for _, n := range d.doc.Nodes {
		if err := html.Render(w, n); err != nil {
			return fmt.Errorf("render html: %w", err)
		}
	}
	return nil
}

// OuterHTML renders the first element of sel, or "" for an empty selection.
func OuterHTML(sel Selection) string {
	s := Unwrap(sel)
	if s == nil || s.Length() == 0 {
		return ""
	}
	out, err := goquery.OuterHtml(s.First())
	if err != nil {
		return ""
	}
	return out
}
