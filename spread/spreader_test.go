package spread

import (
	"bytes"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/spreadjson/dom"
)

func parseDoc(t *testing.T, markup string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(markup)
	require.NoError(t, err)
	return doc
}

func find(doc *dom.Document, selector string) *goquery.Selection {
	return dom.Unwrap(doc.Select(selector))
}

func texts(doc *dom.Document, selector string) []string {
	var out []string
	find(doc, selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, s.Text())
	})
	return out
}

func render(t *testing.T, doc *dom.Document) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, doc.Render(&buf))
	return buf.String()
}

const listPage = `<div id="app">
<h1 class="name"></h1>
<ul><li class="item"><span class="label"></span></li></ul>
</div>`

func listRules() any {
	return M(
		"name", ".name",
		"items[]", M(
			"template", ".item",
			"spread", M(".label", ".label"),
		),
	)
}

func TestSpread_EndToEnd(t *testing.T) {
	doc := parseDoc(t, listPage)
	data := map[string]any{
		"name":  "Ann",
		"items": []any{map[string]any{"label": "a"}, map[string]any{"label": "b"}},
	}

	Compile(listRules()).SpreadDocument(data, doc, "#app")

	assert.Equal(t, []string{"Ann"}, texts(doc, ".name"))
	assert.Equal(t, 2, find(doc, ".item").Length())
	assert.Equal(t, []string{"a", "b"}, texts(doc, ".item .label"))
}

func TestSpread_Reconcile(t *testing.T) {
	item := func(label string) any { return map[string]any{"label": label} }
	s := Compile(listRules())

	t.Run("grow keeps the original node first", func(t *testing.T) {
		doc := parseDoc(t, listPage)
		original := find(doc, ".item").Nodes[0]

		s.Spread(map[string]any{"items": []any{item("a"), item("b"), item("c")}}, doc.Root())

		items := find(doc, ".item")
		require.Equal(t, 3, items.Length())
		assert.Same(t, original, items.Nodes[0])
		assert.Equal(t, []string{"a", "b", "c"}, texts(doc, ".label"))
	})

	t.Run("shrink removes from the tail", func(t *testing.T) {
		doc := parseDoc(t, listPage)
		s.Spread(map[string]any{"items": []any{item("a"), item("b"), item("c")}}, doc.Root())
		first := find(doc, ".item").Nodes[0]

		s.Spread(map[string]any{"items": []any{item("z")}}, doc.Root())

		items := find(doc, ".item")
		require.Equal(t, 1, items.Length())
		assert.Same(t, first, items.Nodes[0])
		assert.Equal(t, []string{"z"}, texts(doc, ".label"))
	})

	t.Run("empty list leaves a marked placeholder", func(t *testing.T) {
		doc := parseDoc(t, listPage)
		s.Spread(map[string]any{"items": []any{item("a"), item("b")}}, doc.Root())

		s.Spread(map[string]any{"items": []any{}}, doc.Root())

		items := find(doc, ".item")
		require.Equal(t, 1, items.Length())
		assert.True(t, items.HasClass(EmptyClass))
		assert.Equal(t, []string{"a"}, texts(doc, ".label"), "placeholder is not spread")

		s.Spread(map[string]any{"items": []any{item("x")}}, doc.Root())
		assert.False(t, find(doc, ".item").HasClass(EmptyClass))
		assert.Equal(t, []string{"x"}, texts(doc, ".label"))
	})

	t.Run("missing list counts as empty", func(t *testing.T) {
		doc := parseDoc(t, listPage)
		s.Spread(map[string]any{"name": "x"}, doc.Root())
		assert.True(t, find(doc, ".item").HasClass(EmptyClass))
	})

	t.Run("no template is a no-op", func(t *testing.T) {
		doc := parseDoc(t, `<div><p class="name"></p></div>`)
		before := render(t, doc)
		s.Spread(map[string]any{"items": []any{item("a")}}, doc.Root())
		assert.Equal(t, before, render(t, doc))
	})

	t.Run("nil nested spreader is dropped", func(t *testing.T) {
		var nested *Spreader
		assert.Equal(t, 0, Compile(M("items[]", &ListSpec{Template: ".item", Spread: nested})).Len())
	})

	t.Run("fallback fills an empty list", func(t *testing.T) {
		doc := parseDoc(t, listPage)
		Compile(M("items[]", M(
			"template", ".item",
			"spread", M("label", ".label"),
			"fallback", map[string]any{"label": "none"},
		))).Spread(map[string]any{"items": []any{}}, doc.Root())

		assert.Equal(t, []string{"none"}, texts(doc, ".label"))
		assert.False(t, find(doc, ".item").HasClass(EmptyClass))
	})
}

func TestSpread_Idempotent(t *testing.T) {
	data := map[string]any{
		"name":  "Ann",
		"items": []any{map[string]any{"label": "a"}, map[string]any{"label": "b"}, map[string]any{"label": "c"}},
	}
	s := Compile(listRules())

	once := parseDoc(t, listPage)
	s.Spread(data, once.Root())

	twice := parseDoc(t, listPage)
	s.Spread(data, twice.Root()).Spread(data, twice.Root())

	assert.Equal(t, render(t, once), render(t, twice))
}

func TestSpread_Hooks(t *testing.T) {
	var events []string
	hook := func(name string) Hook {
		return func(el dom.Selection, item any) {
			if item == nil {
				events = append(events, name+":nil")
				return
			}
			events = append(events, name+":"+toText(item))
		}
	}
	spec := &ListSpec{
		Template:     "li",
		Spread:       New().Add("", Callback(func(v any, c dom.Selection) {})),
		BeforeUpdate: hook("before"),
		AfterUpdate:  hook("after"),
		AfterCreate:  hook("create"),
		BeforeDelete: func(el dom.Selection) { events = append(events, "delete") },
	}
	s := New().Add("xs[]", spec)
	doc := parseDoc(t, `<ul><li></li><li></li><li></li></ul>`)

	s.Spread(map[string]any{"xs": []any{"a"}}, doc.Root())
	assert.Equal(t, []string{
		"before:nil", "delete",
		"before:nil", "delete",
		"before:a", "after:a",
	}, events)

	events = nil
	s.Spread(map[string]any{"xs": []any{"a", "b"}}, doc.Root())
	assert.Equal(t, []string{"before:a", "after:a", "create:b", "after:b"}, events)
}

func TestSpread_JoinMode(t *testing.T) {
	tests := []struct {
		name  string
		rules any
		value []any
		want  string
	}{
		{"fallback", M("tags[]", M("target", ".x", "join", "-", "fallback", "none")), []any{}, "none"},
		{"joined", M("tags[]", M("target", ".x", "join", "-", "fallback", "none")), []any{"a", "b"}, "a-b"},
		{"between", M("tags[]", M("target", ".x", "join", "-", "between", []any{"(", ")"})), []any{"a", "b"}, "(a-b)"},
		{"single between", M("tags[]", M("target", ".x", "between", "|")), []any{"a", "b"}, "|a, b|"},
		{"default separator", M("tags[]", ".x"), []any{"a", int64(2)}, "a, 2"},
		{"default fallback", M("tags[]", ".x"), nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseDoc(t, `<p class="x">old</p>`)
			Compile(tt.rules).Spread(map[string]any{"tags": tt.value}, doc.Root())
			assert.Equal(t, []string{tt.want}, texts(doc, ".x"))
		})
	}
}

func TestSpread_Attributes(t *testing.T) {
	page := `<a class="link" href="old">x</a>`
	rules := M("url", M(".link@href", []any{nil}))

	t.Run("set", func(t *testing.T) {
		doc := parseDoc(t, page)
		Compile(rules).Spread(map[string]any{"url": "/new"}, doc.Root())
		href, _ := find(doc, ".link").Attr("href")
		assert.Equal(t, "/new", href)
	})

	t.Run("null removes", func(t *testing.T) {
		doc := parseDoc(t, page)
		Compile(rules).Spread(map[string]any{"url": ""}, doc.Root())
		_, ok := find(doc, ".link").Attr("href")
		assert.False(t, ok)
	})

	t.Run("undefined leaves untouched", func(t *testing.T) {
		doc := parseDoc(t, page)
		Compile(M("url", M(".link@href", []any{Undefined}))).Spread(map[string]any{}, doc.Root())
		href, _ := find(doc, ".link").Attr("href")
		assert.Equal(t, "old", href)
	})

	t.Run("undefined skips a method", func(t *testing.T) {
		doc := parseDoc(t, page)
		Compile(M("url", M(".link::text", []any{Undefined}))).Spread(map[string]any{}, doc.Root())
		assert.Equal(t, []string{"x"}, texts(doc, ".link"))
	})

	t.Run("method without arguments keeps content", func(t *testing.T) {
		doc := parseDoc(t, `<p class="a">keep</p><p class="b"><i>inner</i></p>`)
		Compile(M("x", []any{".a::text()", ".b::html()"})).Spread(map[string]any{"x": "new"}, doc.Root())
		assert.Equal(t, []string{"keep"}, texts(doc, ".a"))
		assert.Equal(t, `<p class="b"><i>inner</i></p>`, dom.OuterHTML(doc.Select(".b")))
	})

	t.Run("numbers are rendered", func(t *testing.T) {
		doc := parseDoc(t, page)
		Compile(M("n", ".link@data-n")).Spread(map[string]any{"n": 2.5}, doc.Root())
		n, _ := find(doc, ".link").Attr("data-n")
		assert.Equal(t, "2.5", n)
	})
}

func TestSpread_ClassToggle(t *testing.T) {
	rules := M(
		"active", ".row@class(on/off)",
		"selected", ".row@class(sel)",
	)
	doc := parseDoc(t, `<div class="row"></div>`)
	s := Compile(rules)

	s.Spread(map[string]any{"active": true, "selected": 1}, doc.Root())
	row := find(doc, ".row")
	assert.True(t, row.HasClass("on"))
	assert.False(t, row.HasClass("off"))
	assert.True(t, row.HasClass("sel"))

	s.Spread(map[string]any{"active": false}, doc.Root())
	assert.False(t, row.HasClass("on"))
	assert.True(t, row.HasClass("off"))
	assert.False(t, row.HasClass("sel"))
}

func TestSpread_SuffixGates(t *testing.T) {
	rules := M(
		"warning?", ".warning::show()",
		"warning!", M(".warning::hide", Undefined, ".state", "ok"),
		"note?!", ".note",
	)
	s := Compile(rules)
	page := `<div><p class="warning"></p><p class="state"></p><p class="note">stale</p></div>`

	doc := parseDoc(t, page)
	s.Spread(map[string]any{"warning": "careful"}, doc.Root())
	_, hidden := find(doc, ".warning").Attr("hidden")
	assert.False(t, hidden)
	assert.Equal(t, []string{""}, texts(doc, ".state"))
	assert.Equal(t, []string{""}, texts(doc, ".note"))

	doc = parseDoc(t, page)
	s.Spread(map[string]any{"note": "n"}, doc.Root())
	_, hidden = find(doc, ".warning").Attr("hidden")
	assert.True(t, hidden)
	assert.Equal(t, []string{"ok"}, texts(doc, ".state"))
	assert.Equal(t, []string{"n"}, texts(doc, ".note"))
}

func TestSpread_DefaultSelectors(t *testing.T) {
	doc := parseDoc(t, `<div><span class="user-name"></span><a class="user-email"></a></div>`)
	s := New().
		Add("user.name").
		Add("user.email", "@href", "::text")

	s.Spread(map[string]any{"user": map[string]any{"name": "Ann", "email": "ann@x"}}, doc.Root())

	assert.Equal(t, []string{"Ann"}, texts(doc, ".user-name"))
	href, _ := find(doc, ".user-email").Attr("href")
	assert.Equal(t, "ann@x", href)
	assert.Equal(t, []string{"ann@x"}, texts(doc, ".user-email"))
}

func TestSpread_CallbacksAndOrder(t *testing.T) {
	var seen []string
	record := func(tag string) Callback {
		return func(v any, c dom.Selection) { seen = append(seen, tag+"="+toText(v)) }
	}
	s := New().Add([]any{
		M("b", record("b")),
		M("a", []any{record("a1"), record("a2")}),
	})
	s.Spread(map[string]any{"a": "1", "b": "2"}, parseDoc(t, `<p></p>`).Root())
	assert.Equal(t, []string{"b=2", "a1=1", "a2=1"}, seen)
}

func TestSpread_IgnoresScalarsAndNilContainer(t *testing.T) {
	called := 0
	s := New().Add("", Callback(func(any, dom.Selection) { called++ }))
	doc := parseDoc(t, `<p></p>`)

	s.Spread("text", doc.Root())
	s.Spread(nil, doc.Root())
	s.Spread(map[string]any{}, nil)
	assert.Equal(t, 0, called)

	s.Spread([]any{1}, doc.Root())
	assert.Equal(t, 1, called)
}

func TestSpread_FirstContainerOnly(t *testing.T) {
	doc := parseDoc(t, `<div class="c"><b class="v"></b></div><div class="c"><b class="v"></b></div>`)
	Compile(M("v", ".v")).SpreadDocument(map[string]any{"v": "x"}, doc, ".c")
	assert.Equal(t, []string{"x", ""}, texts(doc, ".v"))
}

func TestReceiver(t *testing.T) {
	doc := parseDoc(t, `<p class="v"></p>`)
	var rejected []any
	recv := Compile(M("v", ".v")).Receiver(doc.Root(), func(v any) { rejected = append(rejected, v) })

	recv(map[string]any{"v": "ok"})
	recv("not an object")

	assert.Equal(t, []string{"ok"}, texts(doc, ".v"))
	assert.Equal(t, []any{"not an object"}, rejected)
}
