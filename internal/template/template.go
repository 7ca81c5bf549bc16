// Package template renders scheduler script headers from line-oriented
// patterns with {name} placeholders.
//
// A header pattern lists every directive a scheduler understands. Lines whose
// placeholders have no value are dropped, so a job only gets the directives it
// actually sets.
package template

import (
	"regexp"
	"strings"
)

// MissingTag stands in for placeholders that have no value. It contains NUL
// bytes, which cannot come from a YAML file or a command line argument.
const MissingTag = "\x00--missing--\x00"

// Passes is the number of substitution rounds. The second round resolves
// values built from other placeholders, e.g. log_file = "{log_dir}/run.log".
const Passes = 2

var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Template is an immutable parsed header pattern.
type Template struct {
	text  string
	names []string
}

// Parse scans text once and records the placeholder names it references.
func Parse(text string) *Template {
	return &Template{
		text:  text,
		names: Placeholders(text),
	}
}

// Text returns the raw pattern.
func (t *Template) Text() string {
	return t.text
}

// Placeholders returns the referenced names in order of first use.
func (t *Template) Placeholders() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Render fills the pattern with params. Missing names are replaced by
// MissingTag before substitution, then every line still carrying the tag is
// removed together with empty lines. Each kept line ends in a single newline.
func (t *Template) Render(params map[string]string) string {
	working := make(map[string]string, len(params)+len(t.names))
	for k, v := range params {
		working[k] = v
	}
	for _, name := range t.names {
		v, ok := working[name]
		if !ok {
			working[name] = MissingTag
			continue
		}
		// Names inside a value are filled by the second pass, so they must
		// be marked too or the line keeps a literal {name}.
		for _, nested := range valuePlaceholders(v) {
			if _, ok := working[nested]; !ok {
				working[nested] = MissingTag
			}
		}
	}

	content := Substitute(t.text, working)

	var b strings.Builder
	for _, line := range strings.Split(content, "\n") {
		if line == "" || strings.Contains(line, MissingTag) {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// Substitute replaces placeholders in text exactly Passes times. Each pass
// replaces all known names at once; unknown names stay as written so shell
// constructs like ${HOME} survive.
func Substitute(text string, params map[string]string) string {
	for i := 0; i < Passes; i++ {
		text = substituteOnce(text, params)
	}
	return text
}

func substituteOnce(text string, params map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(text, func(m string) string {
		if v, ok := params[m[1:len(m)-1]]; ok {
			return v
		}
		return m
	})
}

// valuePlaceholders lists the names referenced in a parameter value. Shell
// expansions like ${SCRATCH} are not placeholders of the value.
func valuePlaceholders(value string) []string {
	var names []string
	for _, m := range placeholderRe.FindAllStringSubmatchIndex(value, -1) {
		if m[0] > 0 && value[m[0]-1] == '$' {
			continue
		}
		names = append(names, value[m[2]:m[3]])
	}
	return names
}

// Placeholders lists the distinct names referenced in text, in order of first use.
func Placeholders(text string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
