package model

import (
	"strings"
)

type Kind int

const (
	KindInvalid       Kind = iota
	KindBuiltin            // number, string, boolean, void, any, ...
	KindReference          // named interface/class/alias, Array<T>, Promise<T>
	KindEnum               // reference to an enum declaration
	KindObject             // module, interface, class, object literal, function type
	KindTypeParameter      // T inside a generic class or interface
	KindUnion              // A | B
	KindIntersection       // A & B
	KindTuple              // [A, B]
	KindLiteral            // "a", 1, true
)

var kindNames = map[Kind]string{
	KindInvalid:       "invalid",
	KindBuiltin:       "builtin",
	KindReference:     "reference",
	KindEnum:          "enum",
	KindObject:        "object",
	KindTypeParameter: "type-parameter",
	KindUnion:         "union",
	KindIntersection:  "intersection",
	KindTuple:         "tuple",
	KindLiteral:       "literal",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Role further tags object declarations.
type Role int

const (
	RoleNone Role = iota
	RoleModule
	RoleInterface
	RoleClass
)

func (r Role) String() string {
	switch r {
	case RoleModule:
		return "module"
	case RoleInterface:
		return "interface"
	case RoleClass:
		return "class"
	}
	return "none"
}

// Declaration is a node of the declaration graph produced by a type
// environment provider.
type Declaration struct {
	// Identity -------------------------------------------------------------
	Kind Kind
	// Name holds the builtin primitive name, the referenced qualified name,
	// the enum qualified name, the qualified name of a named object, the
	// type parameter name, or the literal text, depending on Kind.
	Name string
	Role Role

	// Structure ------------------------------------------------------------
	Properties     []*Property    // declaration order; only for KindObject
	CallSignatures []*Signature   // non-empty marks a function-shaped object
	Statics        *Declaration   // static side of a class, RoleModule
	Bases          []*Declaration // extends targets, as references
	Elems          []*Declaration
	TypeArgs       []*Declaration
}

type Property struct {
	Name string
	Type *Declaration
}

type Signature struct {
	Params  []*Property
	Returns *Declaration
}

// IsFunction reports whether d is an object declaration with at least one
// call signature.
func (d *Declaration) IsFunction() bool {
	return d != nil && d.Kind == KindObject && len(d.CallSignatures) > 0
}

// IsClass reports whether d is a class-role object declaration.
func (d *Declaration) IsClass() bool {
	return d != nil && d.Kind == KindObject && d.Role == RoleClass
}

// Property returns the first property named name, or nil.
func (d *Declaration) Property(name string) *Property {
	if d == nil {
		return nil
	}
	for _, p := range d.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// AddProperty appends p unless a property of the same name already exists,
// in which case call signatures of function-shaped duplicates (overloads)
// are merged into the existing one. It reports whether p was added.
func (d *Declaration) AddProperty(p *Property) bool {
	if existing := d.Property(p.Name); existing != nil {
		if existing.Type.IsFunction() && p.Type.IsFunction() {
			existing.Type.CallSignatures = append(existing.Type.CallSignatures, p.Type.CallSignatures...)
		}
		return false
	}
	d.Properties = append(d.Properties, p)
	return true
}

// ShortName returns the last dot separated segment of a qualified name.
func ShortName(qualified string) string {
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}

const describeDepth = 4

// Describe returns a nested map/slice/scalar view of d, used for diagnostics.
func (d *Declaration) Describe() map[string]any {
	return d.describe(describeDepth)
}

func (d *Declaration) describe(depth int) map[string]any {
	if d == nil {
		return map[string]any{"kind": KindInvalid.String()}
	}
	out := map[string]any{"kind": d.Kind.String()}
	if d.Name != "" {
		out["name"] = d.Name
	}
	if d.Kind == KindObject {
		out["role"] = d.Role.String()
		out["callSignatures"] = len(d.CallSignatures)
		if depth > 0 {
			props := make(map[string]any, len(d.Properties))
			for _, p := range d.Properties {
				props[p.Name] = p.Type.describe(depth - 1)
			}
			out["properties"] = props
		} else {
			out["properties"] = len(d.Properties)
		}
	}
	if len(d.Elems) > 0 && depth > 0 {
		elems := make([]any, 0, len(d.Elems))
		for _, e := range d.Elems {
			elems = append(elems, e.describe(depth-1))
		}
		out["elems"] = elems
	}
	if len(d.TypeArgs) > 0 && depth > 0 {
		args := make([]any, 0, len(d.TypeArgs))
		for _, a := range d.TypeArgs {
			args = append(args, a.describe(depth-1))
		}
		out["typeArgs"] = args
	}
	return out
}

// Environment is the declaration graph of one run. It is read-only once a
// provider has returned it.
type Environment struct {
	Decls map[string]*Declaration // fully qualified name -> declaration
	Enums map[string][]string     // enum qualified name -> qualified member names
}

func NewEnvironment() *Environment {
	return &Environment{
		Decls: make(map[string]*Declaration),
		Enums: make(map[string][]string),
	}
}

func (e *Environment) Lookup(qualified string) (*Declaration, bool) {
	if e == nil {
		return nil, false
	}
	d, ok := e.Decls[qualified]
	return d, ok
}
