package extractor

import (
	"sort"
	"strings"

	"github.com/cmmoran/controlapigen/internal/model"
)

// candidate is a declaration selected as a control.
type candidate struct {
	Qualified string
	Name      string
	Decl      *model.Declaration
}

// selectControls returns the class declarations under the root prefix that
// are not excluded, ordered by qualified name.
func (x *Extractor) selectControls(env *model.Environment) []candidate {
	out := make([]candidate, 0)
	for qualified, decl := range env.Decls {
		if !x.isControl(qualified, decl) {
			continue
		}
		out = append(out, candidate{
			Qualified: qualified,
			Name:      model.ShortName(qualified),
			Decl:      decl,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Qualified < out[j].Qualified
	})
	return out
}

func (x *Extractor) isControl(qualified string, decl *model.Declaration) bool {
	if !decl.IsClass() {
		return false
	}
	if !strings.HasPrefix(qualified, x.rules.root) {
		return false
	}
	if _, excluded := x.rules.exclude[qualified]; excluded {
		x.log.Debug("control excluded", "control", qualified)
		return false
	}
	return true
}
