package sms

// Config holds Twilio credentials and pacing.
type Config struct {
	AccountSID string  `env:"TWILIO_ACCOUNT_SID"`
	AuthToken  string  `env:"TWILIO_AUTH_TOKEN"`
	From       string  `env:"TWILIO_FROM"`
	RatePerSec float64 `env:"TWILIO_RATE_PER_SEC" envDefault:"1"`
	Burst      int     `env:"TWILIO_BURST" envDefault:"1"`
}

// Enabled reports whether Twilio credentials are present.
func (c Config) Enabled() bool {
	return c.AccountSID != ""
}
