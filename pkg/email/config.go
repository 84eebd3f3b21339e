package email

// Config holds email service configuration.
// Postmark tokens are optional so development builds can run with the DevSender.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL"`
	ReplyTo              string `env:"REPLY_TO_EMAIL"`
}

// Enabled reports whether Postmark credentials are present.
func (c Config) Enabled() bool {
	return c.PostmarkServerToken != ""
}
