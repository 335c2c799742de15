package timestamp

import "regexp"

// Permissive ISO 8601 pattern, applied only after a strict parse fails.
// Fields are fixed width, so each internal separator can be dropped
// without ambiguity; surrounding whitespace is ignored; a missing zone
// means Zulu. The zone sign may be the ASCII hyphen or the Unicode minus
// U+2212. Hour 24 is deliberately not matched, so end-of-day midnight is
// rejected; second 60 is matched to admit leap seconds. Compiled once per
// process and safe for concurrent use.
var permissivePattern = regexp.MustCompile(
	`^\s*` +
		`(?P<Y>\d{4})` +
		`(?:-?(?P<M>0[1-9]|1[012])?` +
		`(?:-?(?P<D>0[1-9]|[12][0-9]|3[01])?)?)?` +
		`(?:(?:[Tt]|\s+)(?P<h>[01][0-9]|2[0-3])` +
		`(?::?(?P<m>[0-5][0-9])` +
		`(?::?(?P<s>[0-5][0-9]|60)` +
		`(?:[.,](?P<ss>\d+))?)?)?)?` +
		`\s*` +
		`(?P<Z>[Zz]|(?P<Zsgn>[+\-−])(?P<Zhrs>\d{2})(?::?(?P<Zmin>\d{2}))?)?` +
		`\s*$`)

// extractCandidate rebuilds a fully-specified RFC 3339 string from a
// permissive match, filling every omitted field with its default: first
// month, first day, midnight, Zulu. The subsecond separator is normalized
// to "." and the zone sign to the ASCII hyphen. The result has not been
// validated; the caller must re-parse it strictly.
func extractCandidate(text string) (string, bool) {
	m := permissivePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	pick := func(name, def string) string {
		if v := group(m, name); v != "" {
			return v
		}
		return def
	}
	var frac string
	if ss := group(m, "ss"); ss != "" {
		frac = "." + ss
	}
	zone := "Z"
	switch group(m, "Z") {
	case "", "Z", "z":
	default:
		sign := "-"
		if group(m, "Zsgn") == "+" {
			sign = "+"
		}
		zone = sign + group(m, "Zhrs") + ":" + pick("Zmin", "00")
	}
	return group(m, "Y") + "-" + pick("M", "01") + "-" + pick("D", "01") +
		"T" + pick("h", "00") + ":" + pick("m", "00") + ":" + pick("s", "00") +
		frac + zone, true
}

// group returns the text captured by a named group, or "" when the group
// did not participate in the match.
func group(m []string, name string) string {
	return m[permissivePattern.SubexpIndex(name)]
}
