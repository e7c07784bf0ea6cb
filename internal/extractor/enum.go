package extractor

import (
	"unicode"
	"unicode/utf8"

	"github.com/cmmoran/controlapigen/internal/model"
)

// DirectEnum returns the short member names of the enum decl refers to, in
// declaration order.
func DirectEnum(env *model.Environment, decl *model.Declaration) (model.EnumValues, error) {
	members, ok := env.Enums[decl.Name]
	if !ok {
		return nil, shapeError("enum "+decl.Name+" without members", decl)
	}
	out := make(model.EnumValues, 0, len(members))
	for _, m := range members {
		out = append(out, model.ShortName(m))
	}
	return out, nil
}

// ConventionOutcome tells how a string-enum convention lookup ended.
type ConventionOutcome int

const (
	// ConventionResolved: the helper member exists and lists the values.
	ConventionResolved ConventionOutcome = iota
	// ConventionNoHelper: nothing static lives at the control's qualified name.
	ConventionNoHelper
	// ConventionNoMember: the helper has no member named after the property.
	ConventionNoMember
	// ConventionNotObject: the member exists but does not hold named values.
	ConventionNotObject
)

func (o ConventionOutcome) String() string {
	switch o {
	case ConventionResolved:
		return "resolved"
	case ConventionNoHelper:
		return "no-helper"
	case ConventionNoMember:
		return "no-member"
	case ConventionNotObject:
		return "not-object"
	}
	return "unknown"
}

// LookupStringEnum resolves the legal values of a string-typed property by
// convention: the static side of <control> holds a member named after the
// property with its first letter upper-cased, and that member's own
// property names (or enum members) are the values. The helper is looked up
// at the control's full qualified name.
//
//	class SplitView {
//	    static ClosedDisplayMode: { none: string; inline: string; };
//	    closedDisplayMode: string;
//	}
func LookupStringEnum(env *model.Environment, control, property string) ([]string, ConventionOutcome) {
	helper := staticHelper(env, control)
	if helper == nil {
		return nil, ConventionNoHelper
	}
	member := helper.Property(upperFirst(property))
	if member == nil {
		return nil, ConventionNoMember
	}
	holder := member.Type
	if holder != nil && holder.Kind == model.KindEnum {
		values, err := DirectEnum(env, holder)
		if err != nil || len(values) == 0 {
			return nil, ConventionNotObject
		}
		return values, ConventionResolved
	}
	if holder != nil && holder.Kind == model.KindReference {
		holder, _ = env.Lookup(holder.Name)
	}
	if holder == nil || holder.Kind != model.KindObject || holder.IsFunction() || len(holder.Properties) == 0 {
		return nil, ConventionNotObject
	}
	values := make([]string, 0, len(holder.Properties))
	for _, p := range holder.Properties {
		values = append(values, p.Name)
	}
	return values, ConventionResolved
}

func staticHelper(env *model.Environment, control string) *model.Declaration {
	decl, ok := env.Lookup(control)
	if !ok || decl == nil || decl.Kind != model.KindObject {
		return nil
	}
	switch decl.Role {
	case model.RoleClass:
		return decl.Statics
	case model.RoleModule:
		return decl
	}
	return nil
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
