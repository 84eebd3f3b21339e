package drip

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// DeliveryMethod is the external channel used to dispatch a queue's messages.
type DeliveryMethod string

const (
	DeliveryText  DeliveryMethod = "txt"
	DeliveryEmail DeliveryMethod = "email"
)

// ParseDeliveryMethod accepts "txt" (or "text") and "email".
func ParseDeliveryMethod(s string) (DeliveryMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "txt", "text", "sms":
		return DeliveryText, nil
	case "email":
		return DeliveryEmail, nil
	default:
		return "", ErrUnknownDeliveryMethod
	}
}

// MasterRecord is a queue definition as it is stored in the master collection.
// Numeric fields are kept as text and parsed by ParseQueueConfig.
type MasterRecord struct {
	RandomLevel    string `json:"randomlevel" yaml:"randomlevel"`
	Target         string `json:"target" yaml:"target"`
	TimeZone       string `json:"timezone" yaml:"timezone"`
	StartHour      string `json:"starthour" yaml:"starthour"`
	StartMinute    string `json:"startminute" yaml:"startminute"`
	CollectionName string `json:"collectionname" yaml:"collectionname"`
	DeliveryMethod string `json:"deliverymethod" yaml:"deliverymethod"`
	Frequency      string `json:"frequency" yaml:"frequency"`
}

// QueueConfig is the parsed, immutable form of a MasterRecord.
type QueueConfig struct {
	RandomLevel    int
	Target         []string
	Location       *time.Location
	StartHour      int
	StartMinute    int
	CollectionName string
	DeliveryMethod DeliveryMethod
	Frequency      Frequency
}

// TimeZone returns the IANA name of the queue's location.
func (c QueueConfig) TimeZone() string {
	if c.Location == nil {
		return ""
	}
	return c.Location.String()
}

// ParseQueueConfig validates a master record. Every failure is a *ConfigError
// matching ErrConfiguration. An unrecognised frequency is not an error: it
// resolves to FrequencyMinute, see ParseFrequency.
func ParseQueueConfig(rec MasterRecord) (QueueConfig, error) {
	name := strings.TrimSpace(rec.CollectionName)
	if name == "" {
		return QueueConfig{}, configErr("", "collectionname", errRequired)
	}

	cfg := QueueConfig{CollectionName: name}

	var err error
	if cfg.RandomLevel, err = parseBoundedInt(rec.RandomLevel, 0, maxRandomLevel); err != nil {
		return QueueConfig{}, configErr(name, "randomlevel", err)
	}
	if cfg.StartHour, err = parseBoundedInt(rec.StartHour, 0, 23); err != nil {
		return QueueConfig{}, configErr(name, "starthour", err)
	}
	if cfg.StartMinute, err = parseBoundedInt(rec.StartMinute, 0, 59); err != nil {
		return QueueConfig{}, configErr(name, "startminute", err)
	}

	tz := strings.TrimSpace(rec.TimeZone)
	if tz == "" {
		return QueueConfig{}, configErr(name, "timezone", errRequired)
	}
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return QueueConfig{}, configErr(name, "timezone", err)
	}

	cfg.Target = SplitTargets(rec.Target)
	if len(cfg.Target) == 0 {
		return QueueConfig{}, configErr(name, "target", ErrNoRecipients)
	}

	if cfg.DeliveryMethod, err = ParseDeliveryMethod(rec.DeliveryMethod); err != nil {
		return QueueConfig{}, configErr(name, "deliverymethod", err)
	}

	cfg.Frequency, _ = ParseFrequency(rec.Frequency)
	return cfg, nil
}

// SplitTargets splits a comma separated recipient list, dropping blanks.
func SplitTargets(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// maxRandomLevel keeps RandomLevel+1 well inside int range on every platform.
const maxRandomLevel = 1 << 30

var (
	errRequired   = errors.New("required")
	errOutOfRange = errors.New("out of range")
)

func parseBoundedInt(s string, lo, hi int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errRequired
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < lo || n > hi {
		return 0, errOutOfRange
	}
	return n, nil
}
