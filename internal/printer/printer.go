// Package printer renders nested values as deterministic, indented source
// text. Mapping keys and sequence elements are always sorted, so the same
// logical value renders byte-for-byte identically regardless of the order it
// was built in.
package printer

import (
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

var ErrUnsupportedValue = errors.New("unsupported value")

// Indent is the text added per nesting level.
const Indent = "    "

// Valuer is implemented by values that render through another value, such
// as catalog metadata.
type Valuer interface {
	Value() any
}

// Render returns the textual form of v.
func Render(v any) (string, error) {
	var b strings.Builder
	if err := render(&b, v, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Statement renders v as the right-hand side of a variable assignment.
func Statement(name string, v any) (string, error) {
	lit, err := Render(v)
	if err != nil {
		return "", err
	}
	return "var " + name + " = " + lit + ";\n", nil
}

// Fprint writes the statement form of v to w.
func Fprint(w io.Writer, name string, v any) error {
	s, err := Statement(name, v)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s)
	return err
}

// MustRender is Render for diagnostic dumps. Unsupported values render as
// the error text in angle brackets.
func MustRender(v any) string {
	s, err := Render(v)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return s
}

func render(b *strings.Builder, v any, depth int) error {
	if vv, ok := v.(Valuer); ok {
		return render(b, vv.Value(), depth)
	}
	switch t := v.(type) {
	case nil:
		return errors.Wrap(ErrUnsupportedValue, "nil")
	case string:
		b.WriteString(strconv.Quote(t))
		return nil
	case bool:
		b.WriteString(strconv.FormatBool(t))
		return nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		b.WriteString(strconv.Quote(rv.String()))
	case reflect.Bool:
		b.WriteString(strconv.FormatBool(rv.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteString(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		b.WriteString(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		b.WriteString(strconv.FormatFloat(rv.Float(), 'g', -1, rv.Type().Bits()))
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			b.WriteString("[]")
			return nil
		}
		return renderSequence(b, rv, depth)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return errors.Wrapf(ErrUnsupportedValue, "map with %s keys", rv.Type().Key())
		}
		return renderMapping(b, rv, depth)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return errors.Wrapf(ErrUnsupportedValue, "nil %s", rv.Type())
		}
		return render(b, rv.Elem().Interface(), depth)
	default:
		return errors.Wrapf(ErrUnsupportedValue, "%T", v)
	}
	return nil
}

func renderSequence(b *strings.Builder, rv reflect.Value, depth int) error {
	n := rv.Len()
	if n == 0 {
		b.WriteString("[]")
		return nil
	}
	items := make([]string, 0, n)
	for i := 0; i < n; i++ {
		var ib strings.Builder
		if err := render(&ib, rv.Index(i).Interface(), depth+1); err != nil {
			return errors.Wrapf(err, "[%d]", i)
		}
		items = append(items, ib.String())
	}
	sort.Strings(items)

	inner := strings.Repeat(Indent, depth+1)
	b.WriteString("[\n")
	for i, item := range items {
		b.WriteString(inner)
		b.WriteString(item)
		if i < len(items)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat(Indent, depth))
	b.WriteString("]")
	return nil
}

func renderMapping(b *strings.Builder, rv reflect.Value, depth int) error {
	if rv.Len() == 0 {
		b.WriteString("{}")
		return nil
	}
	keys := make([]string, 0, rv.Len())
	byKey := make(map[string]reflect.Value, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key().String()
		keys = append(keys, k)
		byKey[k] = iter.Value()
	}
	sort.Strings(keys)

	inner := strings.Repeat(Indent, depth+1)
	b.WriteString("{\n")
	for i, k := range keys {
		b.WriteString(inner)
		b.WriteString(renderKey(k))
		b.WriteString(": ")
		if err := render(b, byKey[k].Interface(), depth+1); err != nil {
			return errors.Wrapf(err, "%s", k)
		}
		if i < len(keys)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat(Indent, depth))
	b.WriteString("}")
	return nil
}

// renderKey leaves identifier-like keys bare and quotes everything else.
func renderKey(k string) string {
	if k == "" {
		return `""`
	}
	for i, r := range k {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return strconv.Quote(k)
		}
	}
	return k
}
