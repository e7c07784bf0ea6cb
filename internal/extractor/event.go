package extractor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jinzhu/inflection"
	"gopkg.in/yaml.v3"
)

// EventPrefix marks event properties.
const EventPrefix = "on"

func isEventName(name string) bool {
	return strings.HasPrefix(name, EventPrefix)
}

// EventNormalizer maps event property names to their canonical names and
// remembers every name missing from the table so all of them can be
// reported at once.
type EventNormalizer struct {
	table   map[string]string
	unknown map[string]struct{}
}

func NewEventNormalizer(table map[string]string) *EventNormalizer {
	return &EventNormalizer{
		table:   table,
		unknown: make(map[string]struct{}),
	}
}

// Normalize returns the canonical name for name. A miss is recorded and
// reported by Err.
func (n *EventNormalizer) Normalize(name string) (string, bool) {
	key := strings.ToLower(name)
	if canonical, ok := n.table[key]; ok {
		return canonical, true
	}
	n.unknown[key] = struct{}{}
	return "", false
}

// Unknown returns the recorded misses, sorted.
func (n *EventNormalizer) Unknown() []string {
	out := make([]string, 0, len(n.unknown))
	for k := range n.unknown {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Err returns ErrUnknownEvents listing every recorded miss, or nil. The
// message carries a config snippet with a guessed entry per miss.
func (n *EventNormalizer) Err() error {
	names := n.Unknown()
	if len(names) == 0 {
		return nil
	}
	noun := "event name"
	if len(names) > 1 {
		noun = inflection.Plural(noun)
	}
	err := errors.Newf("%d unknown %s, add to the events table:\n%s", len(names), noun, suggestEntries(names))
	return errors.WithHint(errors.Mark(err, ErrUnknownEvents), "extend the `events` map in the config file; verify each capitalization before committing")
}

func suggestEntries(names []string) string {
	entries := make(map[string]string, len(names))
	for _, name := range names {
		entries[name] = guessCanonical(name)
	}
	out, err := yaml.Marshal(map[string]map[string]string{"events": entries})
	if err != nil {
		var b strings.Builder
		for _, name := range names {
			fmt.Fprintf(&b, "  %s: %s\n", name, entries[name])
		}
		return strings.TrimRight(b.String(), "\n")
	}
	return strings.TrimRight(string(out), "\n")
}

// guessCanonical upper-cases the letter after the prefix. The result is a
// starting point for the table entry, not a reliable canonical name.
func guessCanonical(name string) string {
	rest := strings.TrimPrefix(name, EventPrefix)
	return EventPrefix + upperFirst(rest)
}
