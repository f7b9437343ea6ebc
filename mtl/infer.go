package mtl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chryss/pygaarst/util"
)

// Patterns and exact layouts for typing metadata values
var (
	intPattern   = regexp.MustCompile(`^"?\-?\d+"?$`)
	floatPattern = regexp.MustCompile(`^"?\-?\d+\.\d+(E[+-]?\d\d+)?"?$`)
	timePattern  = regexp.MustCompile(`^"?(\d{2}):(\d{2}):(\d{2})(\.\d{1,6})?`)
)

const (
	dateLayout     = "2006-01-02"
	datetimeLayout = "2006-01-02T15:04:05Z"
)

// inferValue takes a raw value string and returns the most specific applicable
// type: string, int64, float64, Date, time.Time, or TimeOfDay. It never fails;
// values that cannot be typed are logged and returned as uninterpreted strings.
func inferValue(raw string, diag util.LogContext) interface{} {
	teststr := strings.TrimSpace(strings.NewReplacer(`'`, "", `"`, "").Replace(raw))

	if intPattern.MatchString(raw) || intPattern.MatchString(teststr) {
		if i, err := strconv.ParseInt(teststr, 10, 64); err == nil {
			return i
		}
	}
	if floatPattern.MatchString(raw) || floatPattern.MatchString(teststr) {
		if f, err := strconv.ParseFloat(teststr, 64); err == nil {
			return f
		}
	}
	if t, err := time.Parse(dateLayout, teststr); err == nil {
		return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
	}
	if t, err := time.Parse(datetimeLayout, teststr); err == nil {
		return t
	}
	if m := timePattern.FindStringSubmatch(teststr); m != nil {
		if t, ok := timeOfDayFromMatch(m); ok {
			return t
		}
	}
	if strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`) && len(raw) >= 2 {
		return raw[1 : len(raw)-1]
	}

	util.LogInfo(diag, fmt.Sprintf(
		"The value %s couldn't be parsed as int, float, date, time, datetime. Returning it as string.", raw))
	return raw
}

func timeOfDayFromMatch(m []string) (TimeOfDay, bool) {
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	second, _ := strconv.Atoi(m[3])
	if hour > 23 || minute > 59 || second > 60 {
		return TimeOfDay{}, false
	}
	nanos := 0
	if m[4] != "" {
		// fractional part, at most 6 digits; pad to nanoseconds
		frac := m[4][1:]
		for len(frac) < 9 {
			frac += "0"
		}
		nanos, _ = strconv.Atoi(frac)
	}
	return TimeOfDay{Hour: hour, Minute: minute, Second: second, Nanosecond: nanos}, true
}
