package timestamp

import (
	"fmt"
	"strings"
	"time"
)

// Instant is a fully-specified calendar date, time of day and fixed UTC
// offset, the result of validating a Timestamp. It is recomputed on demand
// and never stored on the value.
//
// A leap second keeps Sec == 60 so canonical rendering preserves it. For
// ordering it counts as the overflow of the minute it extends: after
// ...:59 of the same minute, before ...:00 of the next.
type Instant struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Min    int
	Sec    int // 0-60, 60 during a leap second
	Nsec   int
	Offset int // seconds east of UTC
}

// Equal reports whether two instants denote the same absolute time,
// independent of their offsets.
func (in Instant) Equal(u Instant) bool {
	return in.Compare(u) == 0
}

// Before reports whether in is earlier than u in absolute time.
func (in Instant) Before(u Instant) bool {
	return in.Compare(u) < 0
}

// After reports whether in is later than u in absolute time.
func (in Instant) After(u Instant) bool {
	return in.Compare(u) > 0
}

// Compare orders two instants by absolute time, offset-independent. The
// result is -1, 0 or 1, matching the shape of time.Time.Compare.
func (in Instant) Compare(u Instant) int {
	as, an := in.utcKey()
	bs, bn := u.utcKey()
	switch {
	case as < bs, as == bs && an < bn:
		return -1
	case as > bs, as == bs && an > bn:
		return 1
	default:
		return 0
	}
}

// utcKey flattens the instant to (seconds, nanoseconds) since the Unix
// epoch in UTC. A leap second folds into the nanosecond component, which
// keeps 23:59:60 strictly between 23:59:59 and the following midnight and
// distinct from both.
func (in Instant) utcKey() (int64, int64) {
	sec, extra := in.Sec, int64(0)
	if sec == 60 {
		sec, extra = 59, int64(time.Second)
	}
	naive := time.Date(in.Year, time.Month(in.Month), in.Day, in.Hour, in.Min, sec, 0, time.UTC)
	return naive.Unix() - int64(in.Offset), extra + int64(in.Nsec)
}

// RFC3339 renders the canonical form. The offset is always numeric, so UTC
// renders as "+00:00" rather than "Z"; the fraction, when present, uses
// the shortest of 3, 6 or 9 digits that loses nothing.
func (in Instant) RFC3339() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%04d-%02d-%02dT%02d:%02d:%02d", in.Year, in.Month, in.Day, in.Hour, in.Min, in.Sec)
	switch {
	case in.Nsec == 0:
	case in.Nsec%1e6 == 0:
		fmt.Fprintf(&b, ".%03d", in.Nsec/1e6)
	case in.Nsec%1e3 == 0:
		fmt.Fprintf(&b, ".%06d", in.Nsec/1e3)
	default:
		fmt.Fprintf(&b, ".%09d", in.Nsec)
	}
	off, sign := in.Offset, byte('+')
	if off < 0 {
		off, sign = -off, '-'
	}
	fmt.Fprintf(&b, "%c%02d:%02d", sign, off/3600, off%3600/60)
	return b.String()
}

// parseStrict parses a fully-specified RFC 3339 timestamp. It is called
// from exactly two places: first on the raw text, and again on the
// candidate assembled from a permissive match, where it has the final say.
//
// Beyond the letter of the RFC it accepts a lowercase "t"/"z", a space as
// the date/time separator, and the leap-second value 60. Hour 24 is not
// accepted, so end-of-day midnight must be written as 00 of the next day.
func parseStrict(s string) (Instant, bool) {
	// Shortest acceptable form is "YYYY-MM-DDThh:mm:ssZ".
	if len(s) < 20 {
		return Instant{}, false
	}
	if s[4] != '-' || s[7] != '-' || s[13] != ':' || s[16] != ':' {
		return Instant{}, false
	}
	if c := s[10]; c != 'T' && c != 't' && c != ' ' {
		return Instant{}, false
	}
	year, ok1 := atoiFixed(s[0:4])
	month, ok2 := atoiFixed(s[5:7])
	day, ok3 := atoiFixed(s[8:10])
	hour, ok4 := atoiFixed(s[11:13])
	min, ok5 := atoiFixed(s[14:16])
	sec, ok6 := atoiFixed(s[17:19])
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
		return Instant{}, false
	}
	i := 19
	nsec := 0
	if s[i] == '.' {
		i++
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == start {
			return Instant{}, false
		}
		nsec = fracNsec(s[start:i])
	}
	offset, n, ok := parseOffset(s[i:])
	if !ok || i+n != len(s) {
		return Instant{}, false
	}
	in := Instant{Year: year, Month: month, Day: day, Hour: hour, Min: min, Sec: sec, Nsec: nsec, Offset: offset}
	if month < 1 || month > 12 || day < 1 || day > daysIn(year, month) {
		return Instant{}, false
	}
	if hour > 23 || min > 59 || sec > 60 {
		return Instant{}, false
	}
	return in, true
}

// parseOffset reads a zone designator at the start of s, returning the
// offset in seconds east of UTC and the number of bytes consumed. Offsets
// are limited to +-23:59, which rules out candidates like "+25:00".
func parseOffset(s string) (int, int, bool) {
	if len(s) == 0 {
		return 0, 0, false
	}
	if s[0] == 'Z' || s[0] == 'z' {
		return 0, 1, true
	}
	sign := 0
	switch s[0] {
	case '+':
		sign = 1
	case '-':
		sign = -1
	default:
		return 0, 0, false
	}
	if len(s) < 6 || s[3] != ':' {
		return 0, 0, false
	}
	hrs, ok1 := atoiFixed(s[1:3])
	min, ok2 := atoiFixed(s[4:6])
	if !ok1 || !ok2 || hrs > 23 || min > 59 {
		return 0, 0, false
	}
	return sign * (hrs*3600 + min*60), 6, true
}

// atoiFixed converts a fixed-width run of ASCII digits.
func atoiFixed(s string) (int, bool) {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// fracNsec converts a fractional-second digit string to nanoseconds,
// truncating anything beyond nanosecond precision.
func fracNsec(digits string) int {
	n, k := 0, 0
	for ; k < len(digits) && k < 9; k++ {
		n = n*10 + int(digits[k]-'0')
	}
	for ; k < 9; k++ {
		n *= 10
	}
	return n
}

func daysIn(year, month int) int {
	switch month {
	case 4, 6, 9, 11:
		return 30
	case 2:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	default:
		return 31
	}
}
