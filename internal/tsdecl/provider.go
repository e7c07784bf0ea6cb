// Package tsdecl is the type environment provider: it parses TypeScript
// declaration text with tree-sitter and resolves it into a model.Environment.
//
// Only the declaration vocabulary control APIs use is modeled: namespaces,
// classes, interfaces, enums, type aliases, module variables and functions.
// Type expressions outside that vocabulary (unions, tuples, literals, ...)
// keep their own kinds so consumers can reject them.
package tsdecl

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jinzhu/inflection"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/cmmoran/controlapigen/internal/model"
)

var (
	ErrSyntax     = errors.New("syntax error")
	ErrUnresolved = errors.New("unresolved type reference")
	ErrConflict   = errors.New("conflicting declarations")
)

//go:embed lib.d.ts
var baseline []byte

// BaselineName identifies the embedded ambient baseline source.
const BaselineName = "lib.d.ts"

// Source is one declaration text.
type Source struct {
	Name string
	Text []byte
}

// Baseline returns the embedded ambient declarations.
func Baseline() Source {
	return Source{Name: BaselineName, Text: baseline}
}

// Provider turns declaration sources into a declaration graph.
type Provider interface {
	Load(ctx context.Context, sources ...Source) (*model.Environment, error)
}

// Option configures a Loader.
type Option func(*Loader)

// WithAllowUnresolved keeps references to unknown names as plain references
// instead of failing the load.
func WithAllowUnresolved(allow bool) Option {
	return func(l *Loader) { l.allowUnresolved = allow }
}

// WithoutBaseline stops Load from prepending the embedded baseline.
func WithoutBaseline() Option {
	return func(l *Loader) { l.baseline = false }
}

func WithLogger(log *slog.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// Loader is the tree-sitter backed Provider.
type Loader struct {
	allowUnresolved bool
	baseline        bool
	log             *slog.Logger
}

var _ Provider = (*Loader)(nil)

func New(opts ...Option) *Loader {
	l := &Loader{
		baseline: true,
		log:      slog.Default(),
	}
	for _, fn := range opts {
		fn(l)
	}
	return l
}

// parsed is one source with its syntax tree kept alive until resolution
// has finished.
type parsed struct {
	name string
	src  []byte
	tree *sitter.Tree
}

// Load parses every source, baseline first, and resolves all declarations.
// Any syntax error, unresolved reference or conflicting declaration fails
// the whole load.
func (l *Loader) Load(ctx context.Context, sources ...Source) (*model.Environment, error) {
	if l.baseline {
		sources = append([]Source{Baseline()}, sources...)
	}

	files := make([]*parsed, 0, len(sources))
	defer func() {
		for _, f := range files {
			f.tree.Close()
		}
	}()

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(typescript.GetLanguage())

	for _, s := range sources {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "load canceled")
		}
		tree, err := parser.ParseCtx(ctx, nil, s.Text)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", s.Name)
		}
		files = append(files, &parsed{name: s.Name, src: s.Text, tree: tree})
		if err = syntaxError(s.Name, tree.RootNode()); err != nil {
			return nil, err
		}
		l.log.Debug("parsed declaration source", "source", s.Name, "bytes", len(s.Text))
	}

	r := newResolver()
	for _, f := range files {
		if err := r.walk(phaseDeclare, f); err != nil {
			return nil, err
		}
	}
	for _, f := range files {
		if err := r.walk(phaseDefine, f); err != nil {
			return nil, err
		}
	}
	r.finishAliases()
	r.inheritMembers()

	if len(r.unresolved) > 0 {
		if !l.allowUnresolved {
			return nil, unresolvedError(r.unresolved)
		}
		l.log.Warn("unresolved type references kept as references", "count", len(r.unresolved))
	}

	l.log.Debug("declaration graph loaded", "declarations", len(r.env.Decls), "enums", len(r.env.Enums))
	return r.env, nil
}

func syntaxError(name string, root *sitter.Node) error {
	if root == nil {
		return errors.Wrapf(ErrSyntax, "%s: empty syntax tree", name)
	}
	if !root.HasError() {
		return nil
	}
	bad := firstErrorNode(root)
	if bad == nil {
		return errors.Wrapf(ErrSyntax, "%s", name)
	}
	p := bad.StartPoint()
	what := "unexpected input"
	if bad.IsMissing() {
		what = fmt.Sprintf("missing %s", bad.Type())
	}
	return errors.Wrapf(ErrSyntax, "%s:%d:%d: %s", name, p.Row+1, p.Column+1, what)
}

func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil || (!c.HasError() && !c.IsMissing()) {
			continue
		}
		if bad := firstErrorNode(c); bad != nil {
			return bad
		}
	}
	return nil
}

func unresolvedError(refs map[string]string) error {
	lines := make([]string, 0, len(refs))
	for where, name := range refs {
		lines = append(lines, fmt.Sprintf("  %s: cannot find name %q", where, name))
	}
	sort.Strings(lines)
	noun := "unresolved type reference"
	if len(lines) > 1 {
		noun = inflection.Plural(noun)
	}
	err := errors.Newf("%d %s:\n%s", len(lines), noun, strings.Join(lines, "\n"))
	return errors.WithHint(errors.Mark(err, ErrUnresolved), "declare the missing names or set allow_unresolved")
}
