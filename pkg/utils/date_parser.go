package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layouts used across the dashboard
const (
	DISPLAY_DATE_LAYOUT = "02/01/2006 15:04"
)

// isoLayouts are tried in order for values carrying a "T" separator. Layouts
// without an offset are read in the parser's location.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-07",
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// DateParser parses the date representations produced by the import collaborator
type DateParser struct {
	location *time.Location
}

// NewDateParser creates a parser that builds local civil times in loc.
// A nil location falls back to time.Local.
func NewDateParser(loc *time.Location) *DateParser {
	if loc == nil {
		loc = time.Local
	}
	return &DateParser{location: loc}
}

// Location returns the civil time location used by the parser
func (p *DateParser) Location() *time.Location {
	return p.location
}

// Parse accepts ISO-8601 strings and "dd/mm/yyyy HH:mm" strings.
// Anything else, including the empty string, yields ok == false.
func (p *DateParser) Parse(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	if strings.Contains(value, "T") {
		return p.parseISO(value)
	}
	return p.parseLocal(value)
}

// ParseNullable is Parse for nullable columns
func (p *DateParser) ParseNullable(value *string) (time.Time, bool) {
	if value == nil {
		return time.Time{}, false
	}
	return p.Parse(*value)
}

// ParsePtr returns nil when the value does not parse
func (p *DateParser) ParsePtr(value *string) *time.Time {
	t, ok := p.ParseNullable(value)
	if !ok {
		return nil
	}
	return &t
}

func (p *DateParser) parseISO(value string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, value, p.location); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (p *DateParser) parseLocal(value string) (time.Time, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return time.Time{}, false
	}

	dateParts := strings.Split(parts[0], "/")
	timeParts := strings.Split(parts[1], ":")
	if len(dateParts) != 3 || len(timeParts) < 2 || len(timeParts) > 3 {
		return time.Time{}, false
	}

	day, ok := atoi(dateParts[0])
	if !ok {
		return time.Time{}, false
	}
	month, ok := atoi(dateParts[1])
	if !ok {
		return time.Time{}, false
	}
	year, ok := atoi(dateParts[2])
	if !ok {
		return time.Time{}, false
	}
	hour, ok := atoi(timeParts[0])
	if !ok {
		return time.Time{}, false
	}
	minute, ok := atoi(timeParts[1])
	if !ok {
		return time.Time{}, false
	}
	// seconds are accepted but dropped
	if len(timeParts) == 3 {
		if sec, ok := atoi(timeParts[2]); !ok || sec > 59 {
			return time.Time{}, false
		}
	}

	if month < 1 || month > 12 || day < 1 || hour > 23 || minute > 59 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, p.location)

	// time.Date normalizes overflow (31/02 becomes 03/03); reject instead
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}

// atoi accepts ASCII digits only; signs and spaces are rejected
func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatDisplay renders t as "dd/mm/yyyy HH:mm" in the parser's location
func (p *DateParser) FormatDisplay(t time.Time) string {
	return t.In(p.location).Format(DISPLAY_DATE_LAYOUT)
}

// FormatDisplayPtr renders "-" for a missing value
func (p *DateParser) FormatDisplayPtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return p.FormatDisplay(*t)
}

// FormatMinutes renders a minute count as HH:MM without rolling over into days.
// 1500 renders as "25:00".
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
