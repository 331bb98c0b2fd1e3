// Package render drives a binding end to end: load the page, pick the data,
// spread it and write the result.
package render

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/agentic-research/spreadjson/api"
	"github.com/agentic-research/spreadjson/dom"
	"github.com/agentic-research/spreadjson/internal/rulefile"
	"github.com/agentic-research/spreadjson/internal/source"
	"github.com/agentic-research/spreadjson/spread"
)

// Engine renders pages for one binding. The rule set is compiled once, on
// construction, unless it is derived from each value (Binding.Auto without
// rules).
type Engine struct {
	Binding *api.Binding
	Logger  *slog.Logger

	spreader *spread.Spreader
	opts     []spread.Option
}

// NewEngine compiles the binding's rules.
func NewEngine(b *api.Binding, cache *spread.BindingCache, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e := &Engine{
		Binding: b,
		Logger:  logger,
		opts:    []spread.Option{spread.WithLogger(logger)},
	}
	if b.Attributes {
		if cache == nil {
			return nil, fmt.Errorf("attribute bindings need a binding cache")
		}
		e.opts = append(e.opts, spread.WithAttributeBindings(cache))
	}

	if !rulefile.HasRules(b) {
		if b.Auto || b.Attributes {
			return e, nil
		}
		return nil, rulefile.ErrNoRules
	}

	var filters rulefile.FilterLookup
	if cache != nil {
		filters = cache.Filter
	} else {
		defaults := spread.DefaultFilters()
		filters = func(name string) (spread.Filter, bool) {
			f, ok := defaults[name]
			return f, ok
		}
	}
	rules, err := rulefile.Rules(b, filters)
	if err != nil {
		return nil, err
	}
	e.spreader = spread.Compile(rules, e.opts...)
	logger.Debug("compiled binding", "actions", e.spreader.Len(), "container", b.Container)
	return e, nil
}

// spreaderFor returns the compiled spreader, or one derived from value.
func (e *Engine) spreaderFor(value any) *spread.Spreader {
	if e.spreader != nil {
		return e.spreader
	}
	s := spread.New(e.opts...)
	if e.Binding.Auto {
		s.Add(spread.AutoRules(value))
	}
	return s
}

// Render spreads data into page and writes the resulting HTML to w.
func (e *Engine) Render(data any, page []byte, w io.Writer) error {
	value, err := source.Select(data, e.Binding.Select)
	if err != nil {
		return err
	}
	doc, err := dom.Parse(bytes.NewReader(page))
	if err != nil {
		return err
	}
	container := doc.Select(e.Binding.Container)
	if container.Len() == 0 {
		e.Logger.Warn("container matched nothing", "container", e.Binding.Container)
	}
	e.spreaderFor(value).Spread(value, container)
	return doc.Render(w)
}

// RenderSQLite renders one page per record of a SQLite table into outDir,
// named <id>.html. It returns the number of pages written.
func (e *Engine) RenderSQLite(dbPath, table string, page []byte, fs billy.Filesystem, outDir string) (int, error) {
	if err := fs.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("create %s: %w", outDir, err)
	}
	written := 0
	err := source.StreamSQLite(dbPath, table, func(id string, record any) error {
		var buf bytes.Buffer
		if err := e.Render(record, page, &buf); err != nil {
			return fmt.Errorf("record %s: %w", id, err)
		}
		name := path.Join(outDir, fileName(id)+".html")
		if err := util.WriteFile(fs, name, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		written++
		e.Logger.Debug("rendered record", "id", id, "file", name)
		return nil
	})
	return written, err
}

// fileName keeps record ids from escaping the output directory.
func fileName(id string) string {
	r := strings.NewReplacer("/", "_", `\`, "_", "..", "_")
	if id = r.Replace(id); id == "" {
		return "_"
	}
	return id
}
