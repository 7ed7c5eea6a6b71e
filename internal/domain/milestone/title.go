package milestone

import "strings"

// cycleTypePrefixes are stripped from raw milestone types before display.
// Longer prefixes come first so "ivf-frozen-" wins over "ivf-".
var cycleTypePrefixes = []string{
	"egg-freezing-",
	"ivf-frozen-",
	"frozen-ivf-",
	"fresh-ivf-",
	"ivf-fresh-",
	"ivf-",
	"iui-",
	"fet-",
}

// BaseType normalizes a milestone type for matching: lowercase, hyphen
// separated, with any cycle-type prefix removed.
func BaseType(raw string) string {
	k := normalizeKey(raw)
	for _, p := range cycleTypePrefixes {
		if strings.HasPrefix(k, p) && len(k) > len(p) {
			return k[len(p):]
		}
	}
	return k
}

// FormatTitle turns a milestone type such as "ivf-frozen-embryo-transfer" into
// "Embryo Transfer". A value that already contains a space is treated as
// formatted and only trimmed.
func FormatTitle(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || strings.Contains(s, " ") {
		return s
	}
	lower := strings.ToLower(s)
	for _, p := range cycleTypePrefixes {
		if strings.HasPrefix(lower, p) && len(lower) > len(p) {
			s = s[len(p):]
			break
		}
	}

	words := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
	}
	return strings.Join(words, " ")
}
