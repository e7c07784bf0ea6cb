package printer

import (
	"sort"

	"github.com/dave/jennifer/jen"

	"github.com/cmmoran/controlapigen/internal/model"
)

// GoFile renders the catalog as a Go source file declaring
//
//	var <name> = map[string]map[string]interface{}{ ... }
//
// Controls, properties and enum values are emitted in the same sorted order
// as the text form.
func GoFile(pkgName, varName string, cat model.Catalog) *jen.File {
	f := jen.NewFile(pkgName)
	f.HeaderComment("Code generated by controlapigen. DO NOT EDIT.")

	f.Var().Id(varName).Op("=").
		Map(jen.String()).Map(jen.String()).Interface().
		Values(jen.DictFunc(func(d jen.Dict) {
			for _, name := range sortedKeys(cat) {
				d[jen.Lit(name)] = controlValues(cat[name])
			}
		}))

	return f
}

func controlValues(ctl model.Control) *jen.Statement {
	return jen.Values(jen.DictFunc(func(d jen.Dict) {
		for _, name := range sortedKeys(ctl) {
			d[jen.Lit(name)] = metadataValue(ctl[name])
		}
	}))
}

func metadataValue(md model.Metadata) jen.Code {
	switch t := md.(type) {
	case model.EnumValues:
		values := append([]string(nil), t...)
		sort.Strings(values)
		return jen.Index().String().ValuesFunc(func(g *jen.Group) {
			for _, v := range values {
				g.Lit(v)
			}
		})
	case model.TypeName:
		return jen.Lit(string(t))
	default:
		return jen.Lit(model.EventMarker)
	}
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
