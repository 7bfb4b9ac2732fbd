package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	// ErrNoFields is returned when a template contains no `{name}` placeholder.
	ErrNoFields = errors.New("template has no variable fields")
	// ErrDuplicateField is returned when a placeholder name appears twice.
	ErrDuplicateField = errors.New("template repeats a field name")
	// ErrAmbiguousFields is returned when two placeholders touch, e.g. "{a}{b}".
	ErrAmbiguousFields = errors.New("template has adjacent fields with no literal between them")
	// ErrMalformedTemplate is returned for unbalanced braces or empty field names.
	ErrMalformedTemplate = errors.New("malformed template")
	// ErrMissingField is returned by Format when a field has no value.
	ErrMissingField = errors.New("missing value for field")
	// ErrUnknownField is returned by Bind for a name the template does not have.
	ErrUnknownField = errors.New("template has no field")
)

// segment is either a literal run of text or a single placeholder.
type segment struct {
	literal string
	field   string
	isField bool
}

// Pattern is a compiled path template.
// It is immutable and safe for concurrent use.
type Pattern struct {
	template  string
	recursive bool
	segments  []segment
	fields    []string
	glob      string
	re        *regexp.Regexp
}

// Compile parses a brace-templated path and derives its glob expression and
// reverse-matching expression. When recursive is true every placeholder
// becomes "**" in the glob and may capture path separators.
func Compile(template string, recursive bool) (*Pattern, error) {
	segments, err := parse(template)
	if err != nil {
		return nil, err
	}

	p := &Pattern{
		template:  template,
		recursive: recursive,
		segments:  segments,
	}

	seen := make(map[string]struct{})
	var glob, expr strings.Builder
	expr.WriteString("^")
	for i, seg := range segments {
		if !seg.isField {
			glob.WriteString(EscapeGlob(seg.literal))
			expr.WriteString(regexp.QuoteMeta(seg.literal))
			continue
		}

		if _, dup := seen[seg.field]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, seg.field)
		}
		if i > 0 && segments[i-1].isField {
			return nil, fmt.Errorf("%w: {%s}{%s}", ErrAmbiguousFields, segments[i-1].field, seg.field)
		}
		seen[seg.field] = struct{}{}
		p.fields = append(p.fields, seg.field)

		if recursive {
			glob.WriteString("**")
			expr.WriteString("(.*)")
		} else {
			glob.WriteString("*")
			expr.WriteString("([^/]*)")
		}
	}
	expr.WriteString("$")

	if len(p.fields) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoFields, template)
	}

	p.glob = glob.String()
	re, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, fmt.Errorf("failed to compile reverse matcher for %q: %w", template, err)
	}
	p.re = re

	return p, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(template string, recursive bool) *Pattern {
	p, err := Compile(template, recursive)
	if err != nil {
		panic(err)
	}
	return p
}

// parse splits a template into literal and placeholder segments.
// "{{" and "}}" stand for literal braces.
func parse(template string) ([]segment, error) {
	var segments []segment
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			segments = append(segments, segment{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(template); i++ {
		switch c := template[i]; c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				lit.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexAny(template[i+1:], "{}")
			if end < 0 || template[i+1+end] != '}' {
				return nil, fmt.Errorf("%w: unclosed '{' at offset %d", ErrMalformedTemplate, i)
			}
			name := template[i+1 : i+1+end]
			if strings.TrimSpace(name) == "" {
				return nil, fmt.Errorf("%w: empty field name at offset %d", ErrMalformedTemplate, i)
			}
			flush()
			segments = append(segments, segment{field: name, isField: true})
			i += end + 1
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				lit.WriteByte('}')
				i++
				continue
			}
			return nil, fmt.Errorf("%w: unmatched '}' at offset %d", ErrMalformedTemplate, i)
		default:
			lit.WriteByte(c)
		}
	}
	flush()

	return segments, nil
}

// Template returns the source template.
func (p *Pattern) Template() string { return p.template }

// Recursive reports whether fields may span path separators.
func (p *Pattern) Recursive() bool { return p.recursive }

// Glob returns the wildcard expression used to list candidate paths.
func (p *Pattern) Glob() string { return p.glob }

// Fields returns the placeholder names in order of appearance.
func (p *Pattern) Fields() []string {
	out := make([]string, len(p.fields))
	copy(out, p.fields)
	return out
}

// HasField reports whether name is one of the template's placeholders.
func (p *Pattern) HasField(name string) bool {
	for _, f := range p.fields {
		if f == name {
			return true
		}
	}
	return false
}

// Format substitutes values into the template. It performs no I/O.
func (p *Pattern) Format(values Values) (string, error) {
	var b strings.Builder
	for _, seg := range p.segments {
		if !seg.isField {
			b.WriteString(seg.literal)
			continue
		}
		v, ok := values.Get(seg.field)
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrMissingField, seg.field)
		}
		b.WriteString(v)
	}
	return b.String(), nil
}

// Bind orders m by the template's fields. Names the template does not
// declare are rejected; absent fields are marked missing.
func (p *Pattern) Bind(m map[string]string) (Values, error) {
	var unknown []string
	for name := range m {
		if !p.HasField(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(unknown, ", "))
	}
	return FromMap(m, p.fields), nil
}

// MatchOne recovers the field values from a single concrete path.
// The match is anchored to the whole path.
func (p *Pattern) MatchOne(path string) (Values, bool) {
	m := p.re.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}
	values := make(Values, 0, len(p.fields))
	for i, name := range p.fields {
		values = append(values, FieldValue{Name: name, Value: m[i+1]})
	}
	return values, true
}

// Match reverse-matches every path against the template. Paths that do not
// fit the template shape are dropped; the output keeps the input order.
func (p *Pattern) Match(paths []string) []Values {
	out := make([]Values, 0, len(paths))
	for _, path := range paths {
		if values, ok := p.MatchOne(path); ok {
			out = append(out, values)
		}
	}
	return out
}

// String implements fmt.Stringer.
func (p *Pattern) String() string {
	return p.template
}
