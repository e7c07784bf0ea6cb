// Package apigen generates the control API catalog from a TypeScript
// declaration file.
package apigen

import (
	"bytes"
	"context"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/cmmoran/controlapigen/internal/extractor"
	"github.com/cmmoran/controlapigen/internal/model"
	"github.com/cmmoran/controlapigen/internal/printer"
	"github.com/cmmoran/controlapigen/internal/tsdecl"
)

// Generator runs the pipeline for one set of options.
type Generator struct {
	Opts     Options
	provider tsdecl.Provider
}

// New builds a Generator from the built-in configuration plus opts.
func New(opts ...Option) *Generator {
	o := NewOptions()
	for _, fn := range opts {
		fn(o)
	}
	return NewWithOpts(o)
}

func NewWithOpts(opts *Options) *Generator {
	opts.Normalize()
	return &Generator{
		Opts: *opts,
		provider: tsdecl.New(
			tsdecl.WithAllowUnresolved(opts.AllowUnresolved),
			tsdecl.WithLogger(opts.Logger),
		),
	}
}

// Catalog loads the declaration sources and extracts the catalog.
func (g *Generator) Catalog(ctx context.Context, sources ...tsdecl.Source) (model.Catalog, error) {
	env, err := g.provider.Load(ctx, sources...)
	if err != nil {
		return nil, err
	}
	x := extractor.New(extractor.Options{
		Root:          g.Opts.Root,
		ElementSuffix: g.Opts.ElementSuffix,
		Exclude:       g.Opts.Exclude,
		Events:        g.Opts.Events,
		Logger:        g.Opts.Logger,
	})
	return x.Extract(env)
}

// CatalogFile extracts the catalog of the declaration file at path.
func (g *Generator) CatalogFile(ctx context.Context, path string) (model.Catalog, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read declarations")
	}
	return g.Catalog(ctx, tsdecl.Source{Name: path, Text: text})
}

// Render formats a catalog in the configured output format.
func (g *Generator) Render(cat model.Catalog) (string, error) {
	switch g.Opts.Format {
	case FormatJS:
		return printer.Statement(g.Opts.Variable, cat)
	case FormatGo:
		var buf bytes.Buffer
		if err := printer.GoFile(g.Opts.Package, g.Opts.Variable, cat).Render(&buf); err != nil {
			return "", errors.Wrap(err, "render go source")
		}
		return buf.String(), nil
	}
	return "", errors.Newf("unknown output format %q", g.Opts.Format)
}

// GenerateSource renders the catalog of a single declaration text.
func (g *Generator) GenerateSource(ctx context.Context, name string, text []byte) (string, error) {
	cat, err := g.Catalog(ctx, tsdecl.Source{Name: name, Text: text})
	if err != nil {
		return "", err
	}
	out, err := g.Render(cat)
	if err != nil {
		return "", err
	}
	g.Opts.Logger.Info("catalog generated", "source", name, "controls", len(cat), "properties", cat.PropertyCount())
	return out, nil
}

// GenerateFile renders the catalog of the declaration file at path.
func (g *Generator) GenerateFile(ctx context.Context, path string) (string, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "read declarations")
	}
	return g.GenerateSource(ctx, path, text)
}

// Generate renders the catalog of the declaration file at path.
func Generate(ctx context.Context, path string, opts ...Option) (string, error) {
	return New(opts...).GenerateFile(ctx, path)
}
