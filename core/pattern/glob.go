package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

const globMeta = "*?[\\"

// EscapeGlob quotes the glob metacharacters of a literal with a backslash.
func EscapeGlob(literal string) string {
	if !strings.ContainsAny(literal, globMeta) {
		return literal
	}
	var b strings.Builder
	for i := 0; i < len(literal); i++ {
		if strings.IndexByte(globMeta, literal[i]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(literal[i])
	}
	return b.String()
}

// CompileGlob converts a glob expression into an anchored regular expression.
// "*" and "?" stay within one path segment; "**" crosses separators, both as
// a whole segment ("a/**/b") and inside one ("**.csv"). A backslash makes the
// next character literal.
func CompileGlob(glob string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			if i+1 < len(glob) && glob[i+1] == '*' {
				i++
				// "**/" also matches zero directories
				if i+1 < len(glob) && glob[i+1] == '/' && (i < 2 || glob[i-2] == '/') {
					i++
					b.WriteString("(?:.*/)?")
					continue
				}
				b.WriteString(".*")
				continue
			}
			b.WriteString("[^/]*")
		case '?':
			b.WriteString("[^/]")
		case '\\':
			if i+1 < len(glob) {
				i++
			}
			b.WriteString(regexp.QuoteMeta(glob[i : i+1]))
		case '[':
			end := strings.IndexByte(glob[i+1:], ']')
			if end < 0 {
				return nil, fmt.Errorf("glob %q: unterminated character class", glob)
			}
			class := glob[i+1 : i+1+end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			b.WriteString("[" + class + "]")
			i += end + 1
		default:
			b.WriteString(regexp.QuoteMeta(glob[i : i+1]))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

// MatchGlob reports whether path matches glob.
func MatchGlob(glob, path string) (bool, error) {
	re, err := CompileGlob(glob)
	if err != nil {
		return false, err
	}
	return re.MatchString(path), nil
}

// GlobPrefix returns the unescaped literal text preceding the first wildcard.
// Object stores use it as a listing prefix.
func GlobPrefix(glob string) string {
	if !strings.Contains(glob, "\\") {
		if i := strings.IndexAny(glob, globMeta); i >= 0 {
			return glob[:i]
		}
		return glob
	}

	var b strings.Builder
	for i := 0; i < len(glob); i++ {
		switch glob[i] {
		case '*', '?', '[':
			return b.String()
		case '\\':
			if i+1 < len(glob) {
				i++
			}
		}
		b.WriteByte(glob[i])
	}
	return b.String()
}

// GlobRoot returns the deepest directory that contains every match of glob,
// or "" when matches may start at the root.
func GlobRoot(glob string) string {
	prefix := GlobPrefix(glob)
	if i := strings.LastIndexByte(prefix, '/'); i >= 0 {
		return prefix[:i]
	}
	return ""
}
