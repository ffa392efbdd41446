// Package attribution maps check-in days to revenue attribution source tags.
package attribution

import (
	"strconv"
	"strings"

	"github.com/popeskul/spinecheck/internal/models"
)

const sourcePrefix = "checkin_d"

// SourceTag returns the source tag for a check-in day, e.g. checkin_d7.
func SourceTag(day models.Day) string {
	return sourcePrefix + strconv.Itoa(int(day))
}

// ParseSourceTag returns the day encoded in tag. ok is false for malformed tags and for days
// outside the check-in schedule.
func ParseSourceTag(tag string) (day models.Day, ok bool) {
	rest, found := strings.CutPrefix(tag, sourcePrefix)
	if !found || rest == "" {
		return 0, false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	d := models.Day(n)
	if !d.IsValid() {
		return 0, false
	}
	return d, true
}
