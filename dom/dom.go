// Package dom is the host DOM collaborator of the spread engine.
//
// The engine only ever talks to a Selection: a group of elements that can be
// searched, mutated, cloned and removed. The default implementation wraps
// goquery, so the "document" is a server-side HTML tree parsed with
// golang.org/x/net/html.
package dom

import (
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// ErrUnknownMethod is returned by Invoke for method names outside the allowlist.
var ErrUnknownMethod = errors.New("unknown dom method")

// Methods lists the method names accepted by Invoke. Called without
// arguments, text, html and val read rather than write, so Invoke leaves the
// element alone. show and hide only toggle the hidden attribute; an inline
// display:none style is not touched.
var Methods = []string{
	"text", "html", "val",
	"addClass", "removeClass", "toggleClass",
	"show", "hide", "empty", "remove",
}

// Selection is a group of elements.
type Selection interface {
	Len() int
	// At returns the i-th element as a single-element Selection.
	At(i int) Selection
	Find(selector string) Selection
	Children() Selection
	Parent() Selection

	Attr(name string) (string, bool)
	SetAttr(name, value string)
	RemoveAttr(name string)
	SetText(text string)
	AddClass(name string)
	RemoveClass(name string)
	HasClass(name string) bool

	// Clone copies the elements. The copies are detached until inserted with After.
	Clone(deep bool) Selection
	// After inserts other directly after the (last) element of the selection.
	After(other Selection)
	Remove()

	// Invoke calls one of Methods by name.
	Invoke(method string, args ...string) error
}

type selection struct {
	s *goquery.Selection
}

// Wrap adapts a goquery selection.
func Wrap(s *goquery.Selection) Selection {
	return &selection{s: s}
}

// Unwrap returns the goquery selection behind sel, or nil when sel was not
// produced by this package.
func Unwrap(sel Selection) *goquery.Selection {
	if w, ok := sel.(*selection); ok {
		return w.s
	}
	return nil
}

func (w *selection) Len() int                        { return w.s.Length() }
func (w *selection) At(i int) Selection              { return &selection{s: w.s.Eq(i)} }
func (w *selection) Find(selector string) Selection  { return &selection{s: w.s.Find(selector)} }
func (w *selection) Children() Selection             { return &selection{s: w.s.Children()} }
func (w *selection) Parent() Selection               { return &selection{s: w.s.Parent()} }
func (w *selection) Attr(name string) (string, bool) { return w.s.Attr(name) }
func (w *selection) SetAttr(name, value string)      { w.s.SetAttr(name, value) }
func (w *selection) RemoveAttr(name string)          { w.s.RemoveAttr(name) }
func (w *selection) SetText(text string)             { w.s.SetText(text) }
func (w *selection) AddClass(name string)            { w.s.AddClass(name) }
func (w *selection) RemoveClass(name string)         { w.s.RemoveClass(name) }
func (w *selection) HasClass(name string) bool       { return w.s.HasClass(name) }
func (w *selection) Remove()                         { w.s.Remove() }

// Clone always copies the whole subtree: parsed HTML carries no listeners or
// attached data, so a shallow and a deep clone are the same markup.
func (w *selection) Clone(deep bool) Selection {
	return &selection{s: w.s.Clone()}
}

func (w *selection) After(other Selection) {
	o := Unwrap(other)
	if o == nil || w.s.Length() == 0 {
		return
	}
	w.s.Last().AfterSelection(o)
}

func (w *selection) Invoke(method string, args ...string) error {
	switch method {
	case "text", "html", "val":
		if len(args) == 0 {
			return nil
		}
	}
	switch method {
	case "text":
		w.s.SetText(args[0])
	case "html":
		w.s.SetHtml(args[0])
	case "val":
		w.s.SetAttr("value", args[0])
	case "addClass":
		w.s.AddClass(args...)
	case "removeClass":
		w.s.RemoveClass(args...)
	case "toggleClass":
		w.s.ToggleClass(args...)
	case "show":
		w.s.RemoveAttr("hidden")
	case "hide":
		w.s.SetAttr("hidden", "")
	case "empty":
		w.s.Empty()
	case "remove":
		w.s.Remove()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	return nil
}
