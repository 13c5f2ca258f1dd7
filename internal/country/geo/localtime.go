package geo

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/lk2023060901/world-explorer/internal/country/types"
)

// LocalTimeLayout is how local times are rendered for display
const LocalTimeLayout = "Jan 2, 2006, 3:04 PM"

// capital time zones for countries whose first listed UTC offset is a poor
// proxy for the capital
var capitalZones = map[string]string{
	"GB": "Europe/London",
	"IE": "Europe/Dublin",
	"PT": "Europe/Lisbon",
	"ES": "Europe/Madrid",
	"FR": "Europe/Paris",
	"BE": "Europe/Brussels",
	"NL": "Europe/Amsterdam",
	"DE": "Europe/Berlin",
	"IT": "Europe/Rome",
	"AT": "Europe/Vienna",
	"CH": "Europe/Zurich",
	"DK": "Europe/Copenhagen",
	"NO": "Europe/Oslo",
	"SE": "Europe/Stockholm",
	"FI": "Europe/Helsinki",
	"IS": "Atlantic/Reykjavik",
	"PL": "Europe/Warsaw",
	"CZ": "Europe/Prague",
	"SK": "Europe/Bratislava",
	"HU": "Europe/Budapest",
	"RO": "Europe/Bucharest",
	"BG": "Europe/Sofia",
	"GR": "Europe/Athens",
	"EE": "Europe/Tallinn",
	"LV": "Europe/Riga",
	"LT": "Europe/Vilnius",
	"UA": "Europe/Kyiv",
	"TR": "Europe/Istanbul",
	"US": "America/New_York",
	"CA": "America/Toronto",
	"MX": "America/Mexico_City",
	"BR": "America/Sao_Paulo",
	"AR": "America/Argentina/Buenos_Aires",
	"EG": "Africa/Cairo",
	"ZA": "Africa/Johannesburg",
	"IN": "Asia/Kolkata",
	"CN": "Asia/Shanghai",
	"JP": "Asia/Tokyo",
	"PH": "Asia/Manila",
	"AU": "Australia/Sydney",
	"NZ": "Pacific/Auckland",
}

var utcOffset = regexp.MustCompile(`^UTC(?:([+\-−])(\d{1,2})(?::?(\d{2}))?)?$`)

// ParseUTCOffset reads strings like "UTC", "UTC+01:00" or "UTC-03:30" and
// returns the offset in minutes.
func ParseUTCOffset(s string) (int, bool) {
	m := utcOffset.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return 0, false
	}
	if m[1] == "" {
		return 0, true
	}

	hours, err := strconv.Atoi(m[2])
	if err != nil || hours > 14 {
		return 0, false
	}
	minutes := 0
	if m[3] != "" {
		if minutes, err = strconv.Atoi(m[3]); err != nil || minutes >= 60 {
			return 0, false
		}
	}

	total := hours*60 + minutes
	if m[1] != "+" {
		total = -total
	}
	return total, true
}

// Location picks a time zone for the country's capital: a known IANA zone
// when there is one, else a fixed zone from the first UTC offset listed.
func Location(c *types.Country) (*time.Location, bool) {
	if c == nil {
		return nil, false
	}
	if name, ok := capitalZones[strings.ToUpper(c.CCA2)]; ok {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc, true
		}
	}
	if len(c.Timezones) == 0 {
		return nil, false
	}
	mins, ok := ParseUTCOffset(c.Timezones[0])
	if !ok {
		return nil, false
	}
	return time.FixedZone(c.Timezones[0], mins*60), true
}

// LocalTime formats now in the country's capital time zone, or returns ""
// when no zone can be determined.
func LocalTime(c *types.Country, now time.Time) string {
	loc, ok := Location(c)
	if !ok {
		return ""
	}
	return now.In(loc).Format(LocalTimeLayout)
}
