package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DevSender implements Sender for local development by appending each
// message as a JSON line to a file.
type DevSender struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewDevSender writes messages to path, creating parent directories as needed.
func NewDevSender(path string) *DevSender {
	return &DevSender{path: path, now: time.Now}
}

type devRecord struct {
	Timestamp string `json:"timestamp"`
	SendParams
}

func (d *DevSender) SendSMS(ctx context.Context, params SendParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToSend, err)
	}

	line, err := json.Marshal(devRecord{Timestamp: d.now().Format(time.RFC3339), SendParams: params})
	if err != nil {
		return fmt.Errorf("%w: marshal: %w", ErrFailedToSend, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return fmt.Errorf("%w: create directory: %w", ErrFailedToSend, err)
	}
	f, err := os.OpenFile(d.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open outbox: %w", ErrFailedToSend, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("%w: write outbox: %w", ErrFailedToSend, err)
	}
	return nil
}
