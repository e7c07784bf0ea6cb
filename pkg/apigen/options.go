package apigen

import (
	"log/slog"
	"strings"

	"github.com/cmmoran/controlapigen/internal/config"
)

// Output formats.
const (
	FormatJS = "js" // var <Variable> = {...};
	FormatGo = "go" // Go source declaring the catalog as a map literal
)

// Options control extraction and rendering.
//
// Root            – qualified name prefix of controls, e.g. "WinJS.UI.".
// ElementSuffix   – properties whose lowercased name ends with it are skipped.
// Variable        – name of the generated variable.
// Exclude         – qualified class names never exported as controls.
// Events          – lowercase event property name → canonical name.
// Format          – FormatJS or FormatGo.
// Package         – Go package name for FormatGo.
// AllowUnresolved – keep unknown type names as plain references.
type Options struct {
	Root            string            `json:"root,omitempty" yaml:"root,omitempty" mapstructure:"root,omitempty"`
	ElementSuffix   string            `json:"element_suffix,omitempty" yaml:"element_suffix,omitempty" mapstructure:"element_suffix,omitempty"`
	Variable        string            `json:"variable,omitempty" yaml:"variable,omitempty" mapstructure:"variable,omitempty"`
	Exclude         []string          `json:"exclude,omitempty" yaml:"exclude,omitempty" mapstructure:"exclude,omitempty"`
	Events          map[string]string `json:"events,omitempty" yaml:"events,omitempty" mapstructure:"events,omitempty"`
	Format          string            `json:"format,omitempty" yaml:"format,omitempty" mapstructure:"format,omitempty"`
	Package         string            `json:"package,omitempty" yaml:"package,omitempty" mapstructure:"package,omitempty"`
	AllowUnresolved bool              `json:"allow_unresolved,omitempty" yaml:"allow_unresolved,omitempty" mapstructure:"allow_unresolved,omitempty"`

	Logger *slog.Logger `json:"-" yaml:"-" mapstructure:"-"`
}

// NewOptions returns the built-in configuration.
func NewOptions() *Options {
	return FromConfig(config.Default())
}

// FromConfig builds options from a loaded configuration.
func FromConfig(c *config.Config) *Options {
	c = c.Clone()
	return &Options{
		Root:            c.Root,
		ElementSuffix:   c.ElementSuffix,
		Variable:        c.Variable,
		Exclude:         c.Exclude,
		Events:          c.Events,
		Format:          FormatJS,
		Package:         "controls",
		AllowUnresolved: c.AllowUnresolved,
	}
}

func (o *Options) Normalize() {
	if o.Root != "" && !strings.HasSuffix(o.Root, ".") {
		o.Root += "."
	}
	if o.Variable == "" {
		o.Variable = "RawControlApis"
	}
	o.Format = strings.ToLower(strings.TrimSpace(o.Format))
	if o.Format == "" {
		o.Format = FormatJS
	}
	if o.Package == "" {
		o.Package = "controls"
	}
	events := make(map[string]string, len(o.Events))
	for k, v := range o.Events {
		events[strings.ToLower(k)] = v
	}
	o.Events = events
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// functional option pattern ---------------------------------------------------

type Option func(*Options)

func WithRoot(root string) Option       { return func(o *Options) { o.Root = root } }
func WithElementSuffix(s string) Option { return func(o *Options) { o.ElementSuffix = s } }
func WithVariable(name string) Option   { return func(o *Options) { o.Variable = name } }
func WithFormat(f string) Option        { return func(o *Options) { o.Format = f } }
func WithPackage(p string) Option       { return func(o *Options) { o.Package = p } }
func WithLogger(l *slog.Logger) Option  { return func(o *Options) { o.Logger = l } }
func WithAllowUnresolved(a bool) Option { return func(o *Options) { o.AllowUnresolved = a } }
func WithExclusions(names ...string) Option {
	return func(o *Options) {
		for _, n := range names {
			o.Exclude = append(o.Exclude, strings.TrimSpace(n))
		}
	}
}

// WithEvents adds entries to the capitalization table.
func WithEvents(table map[string]string) Option {
	return func(o *Options) {
		if o.Events == nil {
			o.Events = make(map[string]string, len(table))
		}
		for k, v := range table {
			o.Events[strings.ToLower(k)] = v
		}
	}
}

// WithEventTable replaces the capitalization table.
func WithEventTable(table map[string]string) Option {
	return func(o *Options) {
		o.Events = make(map[string]string, len(table))
		for k, v := range table {
			o.Events[strings.ToLower(k)] = v
		}
	}
}
