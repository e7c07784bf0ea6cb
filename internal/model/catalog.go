package model

// EventMarker is the rendered value of every event property. The catalog
// does not model callback parameters.
const EventMarker = "function"

// Metadata describes one output property of a control.
type Metadata interface {
	// Value returns the serializable form of the metadata.
	Value() any
	isMetadata()
}

// TypeName passes a builtin primitive name or a reference type name through.
type TypeName string

// EnumValues is the set of short member names a property accepts.
type EnumValues []string

// EventSignature marks a callback property of unspecified arity.
type EventSignature struct{}

func (t TypeName) Value() any { return string(t) }
func (TypeName) isMetadata()  {}

func (e EnumValues) Value() any {
	out := make([]any, len(e))
	for i, v := range e {
		out[i] = v
	}
	return out
}
func (EnumValues) isMetadata() {}

func (EventSignature) Value() any  { return EventMarker }
func (EventSignature) isMetadata() {}

// Control maps output property names to their metadata.
type Control map[string]Metadata

func (c Control) Value() any {
	out := make(map[string]any, len(c))
	for name, md := range c {
		out[name] = md.Value()
	}
	return out
}

// Catalog maps control short names to their properties.
type Catalog map[string]Control

func (c Catalog) Value() any {
	out := make(map[string]any, len(c))
	for name, ctl := range c {
		out[name] = ctl.Value()
	}
	return out
}

// PropertyCount returns the number of properties across all controls.
func (c Catalog) PropertyCount() int {
	n := 0
	for _, ctl := range c {
		n += len(ctl)
	}
	return n
}
