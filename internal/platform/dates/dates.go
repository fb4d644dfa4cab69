package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoDateRegex    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dottedDateRegex = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})$`)
)

// ToISO normalizes a provider date to YYYY-MM-DD. ISO inputs pass through,
// D.M.YYYY and DD.MM.YYYY are converted with zero padding. ok is false for
// anything else; callers treat such dates as not yet played.
func ToISO(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}

	if isoDateRegex.MatchString(value) {
		return value, true
	}

	match := dottedDateRegex.FindStringSubmatch(value)
	if match == nil {
		return "", false
	}

	day, _ := strconv.Atoi(match[1])
	month, _ := strconv.Atoi(match[2])
	year, _ := strconv.Atoi(match[3])
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return "", false
	}

	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// BeforeDay reports whether isoDate falls strictly before the day of ref.
func BeforeDay(isoDate string, ref time.Time) bool {
	return isoDate < ref.UTC().Format("2006-01-02")
}
