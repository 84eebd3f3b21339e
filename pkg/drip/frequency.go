package drip

import (
	"strconv"
	"strings"
	"time"
)

// Frequency selects how long a delivery period lasts.
type Frequency uint8

const (
	// FrequencyMinute is the zero value because unknown master values fall back to it.
	FrequencyMinute Frequency = iota
	FrequencyDaily
	FrequencyHourly
	// FrequencyTenSecond yields a fresh period every second and exists for demos and smoke tests.
	FrequencyTenSecond
)

// ParseFrequency maps a master record value to a Frequency.
// Unknown values resolve to FrequencyMinute and report ok=false.
func ParseFrequency(s string) (Frequency, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily":
		return FrequencyDaily, true
	case "hourly":
		return FrequencyHourly, true
	case "minute":
		return FrequencyMinute, true
	case "10sec", "tensecond":
		return FrequencyTenSecond, true
	default:
		return FrequencyMinute, false
	}
}

func (f Frequency) String() string {
	switch f {
	case FrequencyDaily:
		return "daily"
	case FrequencyHourly:
		return "hourly"
	case FrequencyTenSecond:
		return "10sec"
	default:
		return "minute"
	}
}

// PeriodKey returns the identifier of the period that contains now.
// The caller is responsible for converting now into the queue's location first.
//
//	daily      2024-03-07
//	hourly     2024-03-07-9
//	minute     2024-03-07-9-5
//	10sec      2024-03-07-9-5-42
func PeriodKey(f Frequency, now time.Time) string {
	var b strings.Builder
	b.Grow(24)
	b.WriteString(now.Format(time.DateOnly))
	if f == FrequencyDaily {
		return b.String()
	}

	b.WriteByte('-')
	b.WriteString(strconv.Itoa(now.Hour()))
	if f == FrequencyHourly {
		return b.String()
	}

	b.WriteByte('-')
	b.WriteString(strconv.Itoa(now.Minute()))
	if f == FrequencyMinute {
		return b.String()
	}

	b.WriteByte('-')
	b.WriteString(strconv.Itoa(now.Second()))
	return b.String()
}
