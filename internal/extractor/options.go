package extractor

import (
	"log/slog"
	"strings"
)

// Options are the fixed rules of one extraction run.
//
// Root          – qualified name prefix of every control, e.g. "WinJS.UI.".
// ElementSuffix – lowercased property names with this suffix are skipped.
// Exclude       – qualified names never treated as controls.
// Events        – lowercase event property name → canonical name.
type Options struct {
	Root          string
	ElementSuffix string
	Exclude       []string
	Events        map[string]string
	Logger        *slog.Logger
}

type rules struct {
	root          string
	elementSuffix string
	exclude       map[string]struct{}
	events        map[string]string
}

// freeze copies the options into lookup structures the extractor never
// mutates.
func (o Options) freeze() rules {
	r := rules{
		root:          o.Root,
		elementSuffix: strings.ToLower(o.ElementSuffix),
		exclude:       make(map[string]struct{}, len(o.Exclude)),
		events:        make(map[string]string, len(o.Events)),
	}
	if r.root != "" && !strings.HasSuffix(r.root, ".") {
		r.root += "."
	}
	for _, name := range o.Exclude {
		r.exclude[strings.TrimSpace(name)] = struct{}{}
	}
	for k, v := range o.Events {
		r.events[k] = v
	}
	return r
}
