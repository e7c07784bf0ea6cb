// Package extractor builds the control catalog from a declaration graph:
// it selects controls under the namespace root, classifies their properties,
// resolves enum values and normalizes event names.
package extractor

import (
	"log/slog"

	"github.com/cmmoran/controlapigen/internal/model"
)

// Extractor holds the rules of a run. It keeps no state between Extract
// calls.
type Extractor struct {
	rules rules
	log   *slog.Logger
}

func New(opts Options) *Extractor {
	l := opts.Logger
	if l == nil {
		l = slog.Default()
	}
	return &Extractor{
		rules: opts.freeze(),
		log:   l,
	}
}

// Extract returns the catalog of env. Classification failures abort at once;
// unknown event names are collected over the whole run and reported together
// as ErrUnknownEvents.
func (x *Extractor) Extract(env *model.Environment) (model.Catalog, error) {
	events := NewEventNormalizer(x.rules.events)
	cat := make(model.Catalog)
	owners := make(map[string]string)

	for _, c := range x.selectControls(env) {
		ctl, err := x.extractControl(env, c, events)
		if err != nil {
			return nil, err
		}
		if prev, dup := owners[c.Name]; dup {
			x.log.Warn("control short name collision", "name", c.Name, "previous", prev, "current", c.Qualified)
		}
		owners[c.Name] = c.Qualified
		cat[c.Name] = ctl
	}

	if err := events.Err(); err != nil {
		return nil, err
	}

	x.log.Debug("catalog extracted", "controls", len(cat), "properties", cat.PropertyCount())
	return cat, nil
}

func (x *Extractor) extractControl(env *model.Environment, c candidate, events *EventNormalizer) (model.Control, error) {
	ctl := make(model.Control, len(c.Decl.Properties))
	for _, prop := range c.Decl.Properties {
		cl, err := x.classify(env, c, prop, events)
		if err != nil {
			return nil, err
		}
		if cl.Metadata == nil {
			x.log.Debug("property skipped", "control", c.Name, "property", prop.Name, "reason", cl.Reason)
			continue
		}
		ctl[cl.Name] = cl.Metadata
	}
	return ctl, nil
}
