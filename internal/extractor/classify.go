package extractor

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/cmmoran/controlapigen/internal/model"
	"github.com/cmmoran/controlapigen/internal/printer"
)

var (
	ErrUnknownTypeShape = errors.New("unknown type shape")
	ErrUnknownEvents    = errors.New("unknown events")
)

// classification is the outcome for a single property. A nil Metadata means
// the property is not part of the catalog.
type classification struct {
	Name     string
	Metadata model.Metadata
	Reason   string
}

func skipped(name, reason string) classification {
	return classification{Name: name, Reason: reason}
}

// classify decides whether and how prop of control appears in the catalog.
func (x *Extractor) classify(env *model.Environment, control candidate, prop *model.Property, events *EventNormalizer) (classification, error) {
	t := prop.Type
	if t == nil {
		return classification{}, errors.Wrapf(ErrUnknownTypeShape, "%s.%s has no type", control.Qualified, prop.Name)
	}

	// named callable interfaces classify like inline function types
	if t.Kind == model.KindReference {
		if target, ok := env.Lookup(t.Name); ok && target.IsFunction() {
			t = target
		}
	}

	switch {
	case t.Kind == model.KindEnum:
		values, err := DirectEnum(env, t)
		if err != nil {
			return classification{}, errors.Wrapf(err, "%s.%s", control.Qualified, prop.Name)
		}
		return classification{Name: prop.Name, Metadata: values}, nil

	case t.IsFunction():
		if !isEventName(prop.Name) {
			return skipped(prop.Name, "method"), nil
		}
		canonical, ok := events.Normalize(prop.Name)
		if !ok {
			return skipped(prop.Name, "unknown event"), nil
		}
		return classification{Name: canonical, Metadata: model.EventSignature{}}, nil

	case t.Kind == model.KindBuiltin || t.Kind == model.KindReference:
		if x.isElementProperty(prop.Name) {
			return skipped(prop.Name, "element"), nil
		}
		if t.Kind == model.KindBuiltin && t.Name == "string" {
			values, outcome := LookupStringEnum(env, control.Qualified, prop.Name)
			if outcome == ConventionResolved {
				return classification{Name: prop.Name, Metadata: model.EnumValues(values)}, nil
			}
			x.log.Debug("string enum convention not applied",
				"control", control.Name, "property", prop.Name, "outcome", outcome.String())
		}
		return classification{Name: prop.Name, Metadata: model.TypeName(t.Name)}, nil
	}

	return classification{}, shapeError(control.Qualified+"."+prop.Name, t)
}

// shapeError reports a declaration the classifier does not model, with the
// descriptor dump in the message.
func shapeError(where string, t *model.Declaration) error {
	err := errors.Newf("cannot classify %s of kind %s:\n%s", where, t.Kind, printer.MustRender(t.Describe()))
	return errors.Mark(err, ErrUnknownTypeShape)
}

func (x *Extractor) isElementProperty(name string) bool {
	return x.rules.elementSuffix != "" && strings.HasSuffix(strings.ToLower(name), x.rules.elementSuffix)
}
