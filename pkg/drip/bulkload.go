package drip

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ParseBulk reads pipe delimited "text|mediaUrl" lines. Each message takes its
// 1-based line number as OrderID; lines before startLine are skipped but still
// counted. A line without a media part maps to a message without media, and
// a line with neither text nor media is skipped.
func ParseBulk(r io.Reader, startLine int) ([]Message, error) {
	if startLine < 1 {
		return nil, ErrInvalidBulkStartLine
	}

	var msgs []Message
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if line < startLine {
			continue
		}
		text, media, _ := strings.Cut(strings.TrimRight(sc.Text(), "\r"), "|")
		if i := strings.IndexByte(media, '|'); i >= 0 {
			media = media[:i]
		}
		media = strings.TrimSpace(media)
		if strings.TrimSpace(text) == "" && media == "" {
			// Nothing to deliver; the line still counts for OrderID.
			continue
		}
		msgs = append(msgs, Message{
			OrderID:  int64(line),
			ID:       uuid.NewString(),
			Text:     text,
			MediaURL: media,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read bulk input at line %d: %w", line+1, err)
	}
	return msgs, nil
}

// LoadBulk parses r and inserts the messages into store.
// It returns the number of inserted messages.
func LoadBulk(ctx context.Context, store MessageStore, r io.Reader, startLine int) (int, error) {
	msgs, err := ParseBulk(r, startLine)
	if err != nil {
		return 0, err
	}
	if len(msgs) == 0 {
		return 0, nil
	}
	if err := store.Insert(ctx, msgs...); err != nil {
		return 0, storageErr(err)
	}
	return len(msgs), nil
}

// MasterFile is the YAML document accepted by ParseMasterYAML.
//
//	queues:
//	  - collectionname: annie
//	    deliverymethod: txt
//	    target: "+15550001,+15550002"
//	    timezone: America/New_York
//	    starthour: "9"
//	    startminute: "0"
//	    randomlevel: "0"
//	    frequency: daily
type MasterFile struct {
	Queues []MasterRecord `yaml:"queues"`
}

// ParseMasterYAML decodes queue definitions and validates each of them.
func ParseMasterYAML(r io.Reader) ([]MasterRecord, error) {
	var f MasterFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode master file: %w", err)
	}
	seen := make(map[string]struct{}, len(f.Queues))
	for _, rec := range f.Queues {
		cfg, err := ParseQueueConfig(rec)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[cfg.CollectionName]; dup {
			return nil, configErr(cfg.CollectionName, "collectionname", ErrDuplicateCollection)
		}
		seen[cfg.CollectionName] = struct{}{}
	}
	return f.Queues, nil
}
