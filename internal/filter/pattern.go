package filter

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// Pattern is a compiled glob.
//
// A pattern without a slash is matched against the base name of a path with
// path.Match rules. A pattern containing a slash is matched against the whole
// slash-separated path, where:
//   - * matches any characters including /
//   - ? matches exactly one character including /
//   - [...] and [!...] match one character from (or outside) the set
//   - \ escapes the next character
type Pattern struct {
	raw  string
	base bool
	re   *regexp.Regexp
}

// Compile parses a glob pattern. A leading "./" is ignored.
func Compile(pattern string) (Pattern, error) {
	pattern = strings.TrimPrefix(pattern, "./")

	if pattern == "" {
		return Pattern{}, fmt.Errorf("%w: empty pattern", ErrPattern)
	}

	if !strings.Contains(pattern, "/") {
		if _, err := path.Match(pattern, ""); err != nil {
			return Pattern{}, fmt.Errorf("%w: %q: %w", ErrPattern, pattern, err)
		}

		return Pattern{raw: pattern, base: true}, nil
	}

	expr, err := translate(pattern)
	if err != nil {
		return Pattern{}, err
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("%w: %q: %w", ErrPattern, pattern, err)
	}

	return Pattern{raw: pattern, re: re}, nil
}

// Match reports whether the slash-separated path matches.
func (p Pattern) Match(name string) bool {
	if p.base {
		ok, _ := path.Match(p.raw, path.Base(name)) //nolint:errcheck // validated in Compile

		return ok
	}

	return p.re.MatchString(name)
}

// String returns the pattern as given.
func (p Pattern) String() string {
	return p.raw
}

// Patterns is a set of compiled globs.
type Patterns []Pattern

// CompileAll compiles every pattern, stopping at the first invalid one.
func CompileAll(patterns []string) (Patterns, error) {
	compiled := make(Patterns, 0, len(patterns))

	for _, p := range patterns {
		pattern, err := Compile(p)
		if err != nil {
			return nil, err
		}

		compiled = append(compiled, pattern)
	}

	return compiled, nil
}

// Any reports whether any pattern matches name.
func (ps Patterns) Any(name string) bool {
	for _, p := range ps {
		if p.Match(name) {
			return true
		}
	}

	return false
}

// translate turns a slash pattern into an anchored regular expression.
func translate(pattern string) (string, error) {
	var b strings.Builder

	b.WriteString("^")

	for i := 0; i < len(pattern); {
		switch c := pattern[i]; c {
		case '*':
			b.WriteString(".*")

			i++
		case '?':
			b.WriteString(".")

			i++
		case '[':
			end := closing(pattern, i)
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed character class in %q", ErrPattern, pattern)
			}

			class := pattern[i : end+1]
			if strings.HasPrefix(class, "[!") && len(class) > 3 {
				class = "[^" + class[2:]
			}

			b.WriteString(class)

			i = end + 1
		case '\\':
			if i+1 == len(pattern) {
				return "", fmt.Errorf("%w: trailing backslash in %q", ErrPattern, pattern)
			}

			b.WriteString(regexp.QuoteMeta(pattern[i+1 : i+2]))

			i += 2
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))

			i++
		}
	}

	b.WriteString("$")

	return b.String(), nil
}

// closing returns the index of the ] ending the class opened at start, or -1.
// A ] directly after [ or [! is literal.
func closing(pattern string, start int) int {
	i := start + 1

	if i < len(pattern) && pattern[i] == '!' {
		i++
	}

	if i < len(pattern) && pattern[i] == ']' {
		i++
	}

	if end := strings.IndexByte(pattern[i:], ']'); end >= 0 {
		return i + end
	}

	return -1
}
