package suffixlist

import "strings"

const privateSectionMarker = "// ===BEGIN PRIVATE DOMAINS==="

// Conversion is the result of converting a list in the publicsuffix.org format.
type Conversion struct {
	// Suffixes are the plain rules in source order.
	Suffixes []string

	// Wildcards is the number of dropped wildcard rules, such as "*.ck".
	Wildcards int

	// Exceptions is the number of dropped exception rules, such as "!www.ck".
	Exceptions int

	// Private is the number of rules skipped in the private section.
	Private int
}

// ConvertPSL extracts plain suffix rules from a list in the publicsuffix.org format.
//
// Wildcard and exception rules cannot be expressed in the plain format and are dropped.
// If icannOnly is true, rules in the private section are skipped.
func ConvertPSL(text string, icannOnly bool) (c Conversion) {
	var (
		line    string
		private bool
	)

	for {
		line, text = nextNonEmptyLine(text)
		if len(line) == 0 {
			return
		}

		if strings.HasPrefix(line, privateSectionMarker) {
			private = true
			continue
		}

		rule := firstField(line)
		if rule == "" || isComment(rule) {
			continue
		}

		switch {
		case icannOnly && private:
			c.Private++
		case rule[0] == '!':
			c.Exceptions++
		case strings.HasPrefix(rule, "*."):
			c.Wildcards++
		default:
			c.Suffixes = append(c.Suffixes, rule)
		}
	}
}
