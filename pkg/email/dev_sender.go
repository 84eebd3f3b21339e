package email

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DevSender implements EmailSender for local development.
// Each email becomes an .html file plus a .json metadata file in dir.
type DevSender struct {
	dir string
	now func() time.Time
}

// NewDevSender creates a development email sender that saves emails to disk.
// The directory is created on first send.
func NewDevSender(dir string) *DevSender {
	return &DevSender{dir: dir, now: time.Now}
}

type emailMetadata struct {
	Timestamp string   `json:"timestamp"`
	SendTo    []string `json:"send_to"`
	Subject   string   `json:"subject"`
	Tag       string   `json:"tag,omitempty"`
}

// SendEmail writes the email to the configured directory.
func (d *DevSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToSendEmail, err)
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create directory: %w", ErrFailedToSendEmail, err)
	}

	now := d.now()
	base := fmt.Sprintf("%s_%s", now.Format("2006_01_02_150405.000000"), sanitizeFilename(params.Subject))

	if err := os.WriteFile(filepath.Join(d.dir, base+".html"), []byte(params.BodyHTML), 0o644); err != nil {
		return fmt.Errorf("%w: write html: %w", ErrFailedToSendEmail, err)
	}

	meta, err := json.MarshalIndent(emailMetadata{
		Timestamp: now.Format(time.RFC3339),
		SendTo:    params.SendTo,
		Subject:   params.Subject,
		Tag:       params.Tag,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal metadata: %w", ErrFailedToSendEmail, err)
	}
	if err := os.WriteFile(filepath.Join(d.dir, base+".json"), meta, 0o644); err != nil {
		return fmt.Errorf("%w: write metadata: %w", ErrFailedToSendEmail, err)
	}
	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// sanitizeFilename keeps [a-z0-9-_.], lowercases, and caps the length at 60.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = unsafeFilenameChars.ReplaceAllString(s, "")
	if len(s) > 60 {
		s = s[:60]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
