package tsdecl

import (
	"strconv"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/cmmoran/controlapigen/internal/model"
)

func builtin(name string) *model.Declaration {
	return &model.Declaration{Kind: model.KindBuiltin, Name: name}
}

// annotation converts a type_annotation node. A missing annotation is any.
func (r *resolver) annotation(n *sitter.Node, sc scope) *model.Declaration {
	if n == nil {
		return builtin("any")
	}
	if n.Type() != "type_annotation" {
		return r.typeNode(n, sc)
	}
	if n.NamedChildCount() == 0 {
		return builtin("any")
	}
	return r.typeNode(n.NamedChild(0), sc)
}

func (r *resolver) typeNode(n *sitter.Node, sc scope) *model.Declaration {
	src := r.file.src
	switch n.Type() {
	case "predefined_type":
		return builtin(compact(n.Content(src)))

	case "type_identifier", "identifier":
		name := n.Content(src)
		if sc.params[name] {
			return &model.Declaration{Kind: model.KindTypeParameter, Name: name}
		}
		return r.resolve(n, name, sc)

	case "nested_type_identifier":
		return r.resolve(n, compact(n.Content(src)), sc)

	case "generic_type":
		base := n.ChildByFieldName("name")
		if base == nil {
			break
		}
		d := r.typeNode(base, sc)
		if d.Kind != model.KindReference {
			return d
		}
		ref := &model.Declaration{Kind: model.KindReference, Name: d.Name}
		if args := n.ChildByFieldName("type_arguments"); args != nil {
			for i := 0; i < int(args.NamedChildCount()); i++ {
				ref.TypeArgs = append(ref.TypeArgs, r.typeNode(args.NamedChild(i), sc))
			}
		}
		return ref

	case "array_type", "readonly_type", "parenthesized_type":
		if n.NamedChildCount() == 0 {
			break
		}
		inner := r.typeNode(n.NamedChild(0), sc)
		if n.Type() == "array_type" {
			return &model.Declaration{Kind: model.KindReference, Name: "Array", TypeArgs: []*model.Declaration{inner}}
		}
		return inner

	case "function_type":
		return r.callable(n, sc)

	case "object_type":
		obj := &model.Declaration{Kind: model.KindObject, Role: model.RoleInterface}
		r.members(obj, n, sc)
		return obj

	case "union_type", "intersection_type", "tuple_type":
		kind := model.KindUnion
		switch n.Type() {
		case "intersection_type":
			kind = model.KindIntersection
		case "tuple_type":
			kind = model.KindTuple
		}
		d := &model.Declaration{Kind: kind}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			d.Elems = append(d.Elems, r.typeNode(n.NamedChild(i), sc))
		}
		return d

	case "literal_type":
		return &model.Declaration{Kind: model.KindLiteral, Name: n.Content(src)}

	case "this_type":
		return &model.Declaration{Kind: model.KindReference, Name: "this"}
	}
	return &model.Declaration{Kind: model.KindInvalid, Name: n.Type()}
}

// resolve finds the declaration a (possibly dotted) name refers to from sc,
// innermost namespace first. Enums resolve to enum kind, aliases to their
// target, everything else to a reference by qualified name.
func (r *resolver) resolve(n *sitter.Node, name string, sc scope) *model.Declaration {
	for i := len(sc.path); i >= 0; i-- {
		candidate := name
		if i > 0 {
			candidate = strings.Join(sc.path[:i], ".") + "." + name
		}
		if _, ok := r.aliases[candidate]; ok {
			return r.aliasTarget(candidate)
		}
		if d, ok := r.env.Decls[candidate]; ok {
			if d.Kind == model.KindEnum {
				return &model.Declaration{Kind: model.KindEnum, Name: candidate}
			}
			return &model.Declaration{Kind: model.KindReference, Name: candidate}
		}
	}
	r.unresolved[r.position(n)] = name
	return &model.Declaration{Kind: model.KindReference, Name: name}
}

// propertyName returns the text of a property name node; computed and
// private (#x) names yield "".
func propertyName(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "property_identifier", "identifier", "type_identifier", "number":
		return n.Content(src)
	case "string":
		s, err := strconv.Unquote(n.Content(src))
		if err != nil {
			return strings.Trim(n.Content(src), `"'`)
		}
		return s
	}
	return ""
}

// hasToken reports whether n has a direct anonymous child of the given type.
func hasToken(n *sitter.Node, token string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		if c.Type() == "property_identifier" {
			// tokens after the name belong to the signature
			return false
		}
		if !c.IsNamed() && c.Type() == token {
			return true
		}
	}
	return false
}

func isPublic(n *sitter.Node, src []byte) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "accessibility_modifier" {
			continue
		}
		switch c.Content(src) {
		case "private", "protected":
			return false
		}
	}
	return true
}

// compact strips all whitespace, e.g. from dotted names split over lines.
func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
