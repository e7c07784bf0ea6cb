package tsdecl

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/cmmoran/controlapigen/internal/model"
)

type phase int

const (
	// phaseDeclare registers every named declaration so references can be
	// resolved regardless of source order.
	phaseDeclare phase = iota
	// phaseDefine fills members and resolves type expressions.
	phaseDefine
)

// alias is a type alias whose target is converted lazily.
type alias struct {
	file   *parsed
	node   *sitter.Node
	scope  []string
	params map[string]bool
	done   *model.Declaration
	busy   bool
}

type resolver struct {
	env        *model.Environment
	aliases    map[string]*alias
	unresolved map[string]string // position -> name

	phase phase
	file  *parsed
}

func newResolver() *resolver {
	return &resolver{
		env:        model.NewEnvironment(),
		aliases:    make(map[string]*alias),
		unresolved: make(map[string]string),
	}
}

// scope is the lexical context of a node: the enclosing namespace path and
// the type parameters in effect.
type scope struct {
	path   []string
	params map[string]bool
}

func (s scope) qualify(name string) string {
	if len(s.path) == 0 {
		return name
	}
	return strings.Join(s.path, ".") + "." + name
}

func (s scope) enter(segments ...string) scope {
	path := make([]string, 0, len(s.path)+len(segments))
	path = append(path, s.path...)
	path = append(path, segments...)
	return scope{path: path, params: s.params}
}

func (s scope) withParams(n *sitter.Node, src []byte) scope {
	if n == nil {
		return s
	}
	params := make(map[string]bool, len(s.params)+int(n.NamedChildCount()))
	for k := range s.params {
		params[k] = true
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		tp := n.NamedChild(i)
		if tp.Type() != "type_parameter" {
			continue
		}
		if name := tp.ChildByFieldName("name"); name != nil {
			params[name.Content(src)] = true
		}
	}
	return scope{path: s.path, params: params}
}

func (r *resolver) walk(p phase, f *parsed) error {
	r.phase = p
	r.file = f
	return r.statements(f.tree.RootNode(), scope{})
}

func (r *resolver) statements(n *sitter.Node, sc scope) error {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if err := r.statement(n.NamedChild(i), sc); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) statement(n *sitter.Node, sc scope) error {
	switch n.Type() {
	case "ambient_declaration", "expression_statement":
		return r.statements(n, sc)
	case "statement_block":
		// declare global { ... }
		return r.statements(n, sc)
	case "export_statement":
		if d := n.ChildByFieldName("declaration"); d != nil {
			return r.statement(d, sc)
		}
		return nil
	case "module", "internal_module":
		return r.module(n, sc)
	case "class_declaration", "abstract_class_declaration":
		return r.class(n, sc)
	case "interface_declaration":
		return r.iface(n, sc)
	case "enum_declaration":
		return r.enum(n, sc)
	case "type_alias_declaration":
		return r.typeAlias(n, sc)
	case "variable_declaration", "lexical_declaration":
		if r.phase == phaseDefine {
			r.variables(n, sc)
		}
		return nil
	case "function_signature", "function_declaration":
		if r.phase == phaseDefine {
			r.function(n, sc)
		}
		return nil
	}
	return nil
}

func (r *resolver) module(n *sitter.Node, sc scope) error {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil || nameNode.Type() == "string" {
		// external module declarations ("foo") carry no namespace path
		return nil
	}
	segments := strings.Split(compact(nameNode.Content(r.file.src)), ".")
	inner := sc
	for _, seg := range segments {
		inner = inner.enter(seg)
		if r.phase == phaseDeclare {
			if _, err := r.ensureModule(strings.Join(inner.path, ".")); err != nil {
				return err
			}
		}
	}
	if body := n.ChildByFieldName("body"); body != nil {
		return r.statements(body, inner)
	}
	return nil
}

// ensureModule returns the object holding the module-level members of
// qualified. A module merged with a class contributes to the class statics.
func (r *resolver) ensureModule(qualified string) (*model.Declaration, error) {
	existing, ok := r.env.Decls[qualified]
	if !ok {
		d := &model.Declaration{Kind: model.KindObject, Role: model.RoleModule, Name: qualified}
		r.env.Decls[qualified] = d
		return d, nil
	}
	switch {
	case existing.IsClass():
		return existing.Statics, nil
	case existing.Kind == model.KindObject:
		return existing, nil
	case existing.Kind == model.KindEnum:
		// enum and namespace merge; namespace members are not tracked
		return &model.Declaration{Kind: model.KindObject, Role: model.RoleModule, Name: qualified}, nil
	}
	return nil, r.conflict(qualified, "module", existing)
}

func (r *resolver) class(n *sitter.Node, sc scope) error {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	qualified := sc.qualify(nameNode.Content(r.file.src))

	if r.phase == phaseDeclare {
		existing, ok := r.env.Decls[qualified]
		switch {
		case !ok:
			r.env.Decls[qualified] = newClass(qualified, nil)
		case existing.IsClass():
		case existing.Kind == model.KindObject && existing.Role == model.RoleModule:
			r.env.Decls[qualified] = newClass(qualified, existing)
		case existing.Kind == model.KindObject && existing.Role == model.RoleInterface:
			// class and interface merge; the class keeps the interface members
			c := newClass(qualified, nil)
			c.Properties = existing.Properties
			c.CallSignatures = existing.CallSignatures
			r.env.Decls[qualified] = c
		default:
			return r.conflict(qualified, "class", existing)
		}
		return nil
	}

	decl := r.env.Decls[qualified]
	inner := sc.withParams(n.ChildByFieldName("type_parameters"), r.file.src)
	decl.Bases = append(decl.Bases, r.heritage(n, inner)...)
	body := n.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		m := body.NamedChild(i)
		prop, static := r.classMember(m, inner)
		if prop == nil {
			continue
		}
		if static {
			decl.Statics.AddProperty(prop)
		} else {
			decl.AddProperty(prop)
		}
	}
	return nil
}

func newClass(qualified string, statics *model.Declaration) *model.Declaration {
	if statics == nil {
		statics = &model.Declaration{Kind: model.KindObject, Role: model.RoleModule, Name: qualified}
	}
	return &model.Declaration{Kind: model.KindObject, Role: model.RoleClass, Name: qualified, Statics: statics}
}

// classMember converts one class body member. Private and protected members,
// constructors and index signatures yield nil.
func (r *resolver) classMember(m *sitter.Node, sc scope) (*model.Property, bool) {
	switch m.Type() {
	case "public_field_definition", "method_signature", "method_definition", "abstract_method_signature":
	default:
		return nil, false
	}
	if !isPublic(m, r.file.src) {
		return nil, false
	}
	name := propertyName(m.ChildByFieldName("name"), r.file.src)
	if name == "" || name == "constructor" {
		return nil, false
	}
	static := hasToken(m, "static")

	if m.Type() == "public_field_definition" {
		return &model.Property{Name: name, Type: r.annotation(m.ChildByFieldName("type"), sc)}, static
	}
	return &model.Property{Name: name, Type: r.method(m, sc)}, static
}

// method converts a method or accessor. Accessors are data properties.
func (r *resolver) method(m *sitter.Node, sc scope) *model.Declaration {
	switch {
	case hasToken(m, "get"):
		return r.annotation(m.ChildByFieldName("return_type"), sc)
	case hasToken(m, "set"):
		params := r.parameters(m.ChildByFieldName("parameters"), sc)
		if len(params) > 0 {
			return params[0].Type
		}
		return builtin("any")
	}
	return r.callable(m, sc)
}

// callable builds a function-shaped object from a node carrying parameters
// and return_type fields.
func (r *resolver) callable(n *sitter.Node, sc scope) *model.Declaration {
	inner := sc.withParams(n.ChildByFieldName("type_parameters"), r.file.src)
	return &model.Declaration{
		Kind: model.KindObject,
		Role: model.RoleInterface,
		CallSignatures: []*model.Signature{{
			Params:  r.parameters(n.ChildByFieldName("parameters"), inner),
			Returns: r.annotation(n.ChildByFieldName("return_type"), inner),
		}},
	}
}

func (r *resolver) parameters(n *sitter.Node, sc scope) []*model.Property {
	if n == nil {
		return nil
	}
	out := make([]*model.Property, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		p := n.NamedChild(i)
		switch p.Type() {
		case "required_parameter", "optional_parameter":
		default:
			continue
		}
		name := ""
		if pat := p.ChildByFieldName("pattern"); pat != nil {
			name = strings.TrimPrefix(compact(pat.Content(r.file.src)), "...")
		}
		out = append(out, &model.Property{Name: name, Type: r.annotation(p.ChildByFieldName("type"), sc)})
	}
	return out
}

func (r *resolver) iface(n *sitter.Node, sc scope) error {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	qualified := sc.qualify(nameNode.Content(r.file.src))

	if r.phase == phaseDeclare {
		existing, ok := r.env.Decls[qualified]
		switch {
		case !ok:
			r.env.Decls[qualified] = &model.Declaration{Kind: model.KindObject, Role: model.RoleInterface, Name: qualified}
		case existing.Kind == model.KindObject:
		default:
			return r.conflict(qualified, "interface", existing)
		}
		return nil
	}

	decl := r.env.Decls[qualified]
	inner := sc.withParams(n.ChildByFieldName("type_parameters"), r.file.src)
	decl.Bases = append(decl.Bases, r.heritage(n, inner)...)
	r.members(decl, n.ChildByFieldName("body"), inner)
	return nil
}

// heritage resolves the extends targets of a class or interface declaration.
// Implemented interfaces contribute no members.
func (r *resolver) heritage(n *sitter.Node, sc scope) []*model.Declaration {
	var out []*model.Declaration
	add := func(d *model.Declaration) {
		if d != nil && d.Kind == model.KindReference {
			out = append(out, d)
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "class_heritage":
			for j := 0; j < int(c.NamedChildCount()); j++ {
				if ext := c.NamedChild(j); ext.Type() == "extends_clause" {
					for k := 0; k < int(ext.NamedChildCount()); k++ {
						add(r.extendsTarget(ext.NamedChild(k), sc))
					}
				}
			}
		case "extends_type_clause":
			for j := 0; j < int(c.NamedChildCount()); j++ {
				add(r.typeNode(c.NamedChild(j), sc))
			}
		}
	}
	return out
}

// extendsTarget resolves one class extends expression. Only plain and dotted
// names are followed; mixin calls and type arguments yield nil.
func (r *resolver) extendsTarget(n *sitter.Node, sc scope) *model.Declaration {
	switch n.Type() {
	case "identifier", "member_expression", "nested_identifier":
		return r.resolve(n, compact(n.Content(r.file.src)), sc)
	}
	return nil
}

// members fills decl from an interface body or object type literal.
func (r *resolver) members(decl *model.Declaration, body *sitter.Node, sc scope) {
	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		m := body.NamedChild(i)
		switch m.Type() {
		case "property_signature":
			name := propertyName(m.ChildByFieldName("name"), r.file.src)
			if name == "" {
				continue
			}
			decl.AddProperty(&model.Property{Name: name, Type: r.annotation(m.ChildByFieldName("type"), sc)})
		case "method_signature":
			name := propertyName(m.ChildByFieldName("name"), r.file.src)
			if name == "" {
				continue
			}
			decl.AddProperty(&model.Property{Name: name, Type: r.method(m, sc)})
		case "call_signature":
			decl.CallSignatures = append(decl.CallSignatures, r.callable(m, sc).CallSignatures...)
		}
	}
}

func (r *resolver) enum(n *sitter.Node, sc scope) error {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(r.file.src)
	qualified := sc.qualify(name)

	if r.phase == phaseDefine {
		// the enclosing module (or class statics) exposes the enum as a member
		if len(sc.path) > 0 {
			if mod, err := r.ensureModule(strings.Join(sc.path, ".")); err == nil && mod != nil {
				mod.AddProperty(&model.Property{Name: name, Type: &model.Declaration{Kind: model.KindEnum, Name: qualified}})
			}
		}
		return nil
	}
	if existing, ok := r.env.Decls[qualified]; ok && existing.Kind != model.KindEnum {
		return r.conflict(qualified, "enum", existing)
	}
	r.env.Decls[qualified] = &model.Declaration{Kind: model.KindEnum, Name: qualified}

	members := r.env.Enums[qualified]
	if body := n.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			m := body.NamedChild(i)
			if m.Type() == "enum_assignment" {
				m = m.ChildByFieldName("name")
			}
			member := propertyName(m, r.file.src)
			if member == "" {
				continue
			}
			members = append(members, qualified+"."+member)
		}
	}
	r.env.Enums[qualified] = members
	return nil
}

func (r *resolver) typeAlias(n *sitter.Node, sc scope) error {
	if r.phase != phaseDeclare {
		return nil
	}
	nameNode := n.ChildByFieldName("name")
	value := n.ChildByFieldName("value")
	if nameNode == nil || value == nil {
		return nil
	}
	qualified := sc.qualify(nameNode.Content(r.file.src))
	if existing, ok := r.env.Decls[qualified]; ok {
		return r.conflict(qualified, "type alias", existing)
	}
	inner := sc.withParams(n.ChildByFieldName("type_parameters"), r.file.src)
	r.aliases[qualified] = &alias{file: r.file, node: value, scope: inner.path, params: inner.params}
	return nil
}

// variables adds module-level variables to the enclosing module.
func (r *resolver) variables(n *sitter.Node, sc scope) {
	if len(sc.path) == 0 {
		return
	}
	mod, err := r.ensureModule(strings.Join(sc.path, "."))
	if err != nil || mod == nil {
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		v := n.NamedChild(i)
		if v.Type() != "variable_declarator" {
			continue
		}
		nameNode := v.ChildByFieldName("name")
		if nameNode == nil || nameNode.Type() != "identifier" {
			continue
		}
		mod.AddProperty(&model.Property{
			Name: nameNode.Content(r.file.src),
			Type: r.annotation(v.ChildByFieldName("type"), sc),
		})
	}
}

func (r *resolver) function(n *sitter.Node, sc scope) {
	if len(sc.path) == 0 {
		return
	}
	mod, err := r.ensureModule(strings.Join(sc.path, "."))
	if err != nil || mod == nil {
		return
	}
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	mod.AddProperty(&model.Property{Name: nameNode.Content(r.file.src), Type: r.callable(n, sc)})
}

// inheritMembers copies the members of extended declarations into the
// declarations extending them. Own members win over inherited ones.
func (r *resolver) inheritMembers() {
	done := make(map[*model.Declaration]bool)
	for _, d := range r.env.Decls {
		r.inherit(d, done, make(map[*model.Declaration]bool))
	}
}

func (r *resolver) inherit(d *model.Declaration, done, visiting map[*model.Declaration]bool) {
	if done[d] || visiting[d] {
		return
	}
	visiting[d] = true
	for _, b := range d.Bases {
		base, ok := r.env.Decls[b.Name]
		if !ok || base == d || base.Kind != model.KindObject {
			continue
		}
		r.inherit(base, done, visiting)
		inheritInto(d, base)
		if d.Statics != nil && base.Statics != nil {
			inheritInto(d.Statics, base.Statics)
		}
	}
	delete(visiting, d)
	done[d] = true
}

func inheritInto(dst, src *model.Declaration) {
	for _, p := range src.Properties {
		if dst.Property(p.Name) == nil {
			dst.Properties = append(dst.Properties, p)
		}
	}
	if len(dst.CallSignatures) == 0 {
		dst.CallSignatures = src.CallSignatures
	}
}

// finishAliases publishes every alias target in the environment.
func (r *resolver) finishAliases() {
	for qualified := range r.aliases {
		r.env.Decls[qualified] = r.aliasTarget(qualified)
	}
}

func (r *resolver) aliasTarget(qualified string) *model.Declaration {
	a := r.aliases[qualified]
	if a.done != nil {
		return a.done
	}
	if a.busy {
		// self-referencing alias; stop at a named reference
		return &model.Declaration{Kind: model.KindReference, Name: qualified}
	}
	a.busy = true
	saved := r.file
	r.file = a.file
	a.done = r.typeNode(a.node, scope{path: a.scope, params: a.params})
	r.file = saved
	a.busy = false
	return a.done
}

func (r *resolver) conflict(qualified, kind string, existing *model.Declaration) error {
	return errors.Wrapf(ErrConflict, "%s: %s %s already declared as %s", r.file.name, kind, qualified, describeKind(existing))
}

func describeKind(d *model.Declaration) string {
	if d.Kind == model.KindObject {
		return d.Role.String()
	}
	return d.Kind.String()
}

func (r *resolver) position(n *sitter.Node) string {
	p := n.StartPoint()
	return fmt.Sprintf("%s:%d:%d", r.file.name, p.Row+1, p.Column+1)
}
