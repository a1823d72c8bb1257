package object

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// CompileRegexp compiles source with ECMAScript semantics. flags is any
// combination of g, i and m, each at most once.
func CompileRegexp(source, flags string) (*regexp2.Regexp, error) {
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	seen := ""
	for _, f := range flags {
		if strings.ContainsRune(seen, f) {
			return nil, fmt.Errorf("invalid regular expression flags %q", flags)
		}
		seen += string(f)
		switch f {
		case 'g':
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		default:
			return nil, fmt.Errorf("invalid regular expression flags %q", flags)
		}
	}
	re, err := regexp2.Compile(source, opts)
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression /%s/: %w", source, err)
	}
	return re, nil
}

// NewRegexp is the RegExp(source, flags) constructor.
func NewRegexp(source, flags string) (*Regexp, error) {
	re, err := CompileRegexp(source, flags)
	if err != nil {
		return nil, err
	}
	return &Regexp{Source: source, Flags: flags, Re: re}, nil
}

// Exec runs the expression on s starting at LastIndex for global
// expressions (and updates it), from 0 otherwise. Returns the match array
// (groups that didn't participate are undefined) with "index" and "input"
// properties, or null.
func (r *Regexp) Exec(s string) (Object, error) {
	runes := []rune(s)
	start := 0
	if r.Global() {
		start = r.LastIndex
		if start > len(runes) {
			r.LastIndex = 0
			return NULL, nil
		}
	}
	m, err := r.Re.FindRunesMatchStartingAt(runes, start)
	if err != nil {
		return nil, err
	}
	if m == nil {
		if r.Global() {
			r.LastIndex = 0
		}
		return NULL, nil
	}
	if r.Global() {
		r.LastIndex = m.Index + m.Length
	}
	return matchResult(m, s), nil
}

func matchResult(m *regexp2.Match, input string) Object {
	groups := m.Groups()
	elements := make([]Object, 0, len(groups))
	for _, g := range groups {
		if len(g.Captures) == 0 {
			elements = append(elements, UNDEFINED)
			continue
		}
		elements = append(elements, String{Value: g.String()})
	}
	res := NewArray(elements)
	res.Extra = map[string]Object{
		"index": Number{Value: float64(m.Index)},
		"input": String{Value: input},
	}
	return res
}
