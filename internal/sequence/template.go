// internal/sequence/template.go
package sequence

import (
	"strconv"
	"strings"
)

// DefaultTemplate is the conventional dynamic-text shape: a fixed prefix,
// the unit number, a fixed suffix.
const DefaultTemplate = "{prefix} {number} {suffix}"

// TemplateVars holds the values a dynamic-text template can reference.
// Prefix and Suffix are fixed for a run; Number changes per unit.
type TemplateVars struct {
	Number int
	Prefix string
	Suffix string
}

// WithNumber returns a copy of the vars bound to the given unit number.
func (v TemplateVars) WithNumber(number int) TemplateVars {
	v.Number = number
	return v
}

// Expand substitutes {number}, {prefix} and {suffix} in template. Unknown
// placeholders pass through untouched.
func (v TemplateVars) Expand(template string) string {
	r := strings.NewReplacer(
		"{number}", strconv.Itoa(v.Number),
		"{prefix}", v.Prefix,
		"{suffix}", v.Suffix,
	)
	return r.Replace(template)
}
