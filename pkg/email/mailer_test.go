package email_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/dripfeed/pkg/email"
)

func TestSendEmailParams_Validate(t *testing.T) {
	t.Parallel()

	many := make([]string, 51)
	for i := range many {
		many[i] = "user@example.com"
	}

	tests := []struct {
		name   string
		params email.SendEmailParams
		errMsg string
	}{
		{
			name: "valid single recipient",
			params: email.SendEmailParams{
				SendTo:   []string{"user@example.com"},
				Subject:  "Subject",
				BodyHTML: "<p>body</p>",
			},
		},
		{
			name: "valid several recipients",
			params: email.SendEmailParams{
				SendTo:   []string{"a@example.com", "test.user+tag@sub.example.com"},
				Subject:  "Subject",
				BodyHTML: "<p>body</p>",
				Tag:      "drip",
			},
		},
		{
			name:   "no recipients",
			params: email.SendEmailParams{Subject: "Subject", BodyHTML: "<p>body</p>"},
			errMsg: "SendTo is required",
		},
		{
			name:   "too many recipients",
			params: email.SendEmailParams{SendTo: many, Subject: "Subject", BodyHTML: "<p>body</p>"},
			errMsg: "at most 50",
		},
		{
			name: "invalid address in list",
			params: email.SendEmailParams{
				SendTo:   []string{"a@example.com", "not-an-email"},
				Subject:  "Subject",
				BodyHTML: "<p>body</p>",
			},
			errMsg: "not-an-email",
		},
		{
			name: "blank subject",
			params: email.SendEmailParams{
				SendTo:   []string{"a@example.com"},
				Subject:  "   ",
				BodyHTML: "<p>body</p>",
			},
			errMsg: "Subject is required",
		},
		{
			name: "empty body",
			params: email.SendEmailParams{
				SendTo:  []string{"a@example.com"},
				Subject: "Subject",
			},
			errMsg: "BodyHTML is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.params.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, email.ErrInvalidParams)
			assert.True(t, strings.Contains(err.Error(), tt.errMsg), err.Error())
		})
	}
}

func TestConfig_Enabled(t *testing.T) {
	t.Parallel()
	assert.False(t, email.Config{}.Enabled())
	assert.True(t, email.Config{PostmarkServerToken: "x"}.Enabled())
}
