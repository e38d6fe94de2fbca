package shape

import (
	"regexp"
	"strconv"
	"strings"
)

var flagPattern = regexp.MustCompile(`\{([a-zA-Z0-9]+)\}`)

// Flags returns the names of the {name} placeholders of a text template, in
// order of appearance, without duplicates.
func Flags(expr string) []string {
	var flags []string
	seen := map[string]bool{}
	for _, m := range flagPattern.FindAllStringSubmatch(expr, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			flags = append(flags, m[1])
		}
	}
	return flags
}

// ReplaceFlags substitutes the quantification values in a text template.
// Values are written with 4 significant digits followed by their unit;
// placeholders without a value are left as is.
func ReplaceFlags(expr string, q Quantification) string {
	return flagPattern.ReplaceAllStringFunc(expr, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := q[name]
		if !ok {
			return m
		}
		text := FormatPrecision(v.Value, 4)
		if v.Unit != "" {
			text += " " + v.Unit
		}
		return text
	})
}

// FormatPrecision writes v with at most digits significant digits and no
// trailing zeros.
func FormatPrecision(v float64, digits int) string {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', digits, 64), 64)
	if err != nil {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	s := strconv.FormatFloat(rounded, 'f', -1, 64)
	if strings.HasPrefix(s, "-") && strings.Trim(s, "-0.") == "" {
		return "0"
	}
	return s
}
