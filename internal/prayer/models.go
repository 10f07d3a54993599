package prayer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Name identifies one of the six daily prayer times.
type Name string

const (
	Imsak     Name = "imsak"
	Sunrise   Name = "sunrise"
	Noon      Name = "noon"
	Afternoon Name = "afternoon"
	Sunset    Name = "sunset"
	Night     Name = "night"
)

// Names lists the prayers in chronological order within a day.
var Names = []Name{Imsak, Sunrise, Noon, Afternoon, Sunset, Night}

var labels = map[Name]string{
	Imsak:     "İmsak",
	Sunrise:   "Güneş",
	Noon:      "Öğle",
	Afternoon: "İkindi",
	Sunset:    "Akşam",
	Night:     "Yatsı",
}

// Label returns the Turkish display name of the prayer.
func (n Name) Label() string {
	if l, ok := labels[n]; ok {
		return l
	}
	return string(n)
}

// PrayerTime is one day's schedule. JSON keys match the format the UI consumes.
type PrayerTime struct {
	GregorianDate string `json:"MiladiTarih"`
	HijriDate     string `json:"HicriTarih,omitempty"`

	Imsak     string `json:"Imsak"`
	Sunrise   string `json:"Gunes"`
	Noon      string `json:"Ogle"`
	Afternoon string `json:"Ikindi"`
	Sunset    string `json:"Aksam"`
	Night     string `json:"Yatsi"`
}

// ProviderResult is an ordered run of consecutive days from one provider.
type ProviderResult []PrayerTime

// Time returns the HH:MM value stored for the given prayer.
func (p PrayerTime) Time(n Name) string {
	switch n {
	case Imsak:
		return p.Imsak
	case Sunrise:
		return p.Sunrise
	case Noon:
		return p.Noon
	case Afternoon:
		return p.Afternoon
	case Sunset:
		return p.Sunset
	case Night:
		return p.Night
	}
	return ""
}

// Validate checks that all six times are present and parse as HH:MM.
func (p PrayerTime) Validate() error {
	for _, n := range Names {
		if _, _, err := ParseClock(p.Time(n)); err != nil {
			return fmt.Errorf("%s: %w", n, err)
		}
	}
	return nil
}

// Normalize cleans every time field with NormalizeClock.
func (p PrayerTime) Normalize() PrayerTime {
	p.GregorianDate = strings.TrimSpace(p.GregorianDate)
	p.HijriDate = strings.TrimSpace(p.HijriDate)
	p.Imsak = NormalizeClock(p.Imsak)
	p.Sunrise = NormalizeClock(p.Sunrise)
	p.Noon = NormalizeClock(p.Noon)
	p.Afternoon = NormalizeClock(p.Afternoon)
	p.Sunset = NormalizeClock(p.Sunset)
	p.Night = NormalizeClock(p.Night)
	return p
}

var zoneSuffix = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

// NormalizeClock trims whitespace, drops a trailing zone suffix such as
// " (+03)" and zero-pads a single-digit hour.
func NormalizeClock(s string) string {
	s = strings.TrimSpace(zoneSuffix.ReplaceAllString(s, ""))
	if len(s) == 4 && s[1] == ':' {
		s = "0" + s
	}
	return s
}

// ParseClock parses a strict "HH:MM" value in 00:00-23:59.
func ParseClock(s string) (hour, minute int, err error) {
	if len(s) != 5 || s[2] != ':' || !isDigits(s[:2]) || !isDigits(s[3:]) {
		return 0, 0, fmt.Errorf("invalid time %q", s)
	}
	hour, err = strconv.Atoi(s[:2])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(s[3:])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// TurkishDate formats t as DD.MM.YYYY, the short form used by Turkish sources.
func TurkishDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// Resolution is the outcome of a successful Resolve call.
type Resolution struct {
	Provider string         `json:"provider"`
	Cached   bool           `json:"cached"`
	Days     ProviderResult `json:"days"`

	// Failures holds providers tried, in order, before the one that served.
	Failures []Attempt `json:"failures,omitempty"`
}
