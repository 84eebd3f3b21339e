// Package sms sends text (and MMS) messages through Twilio.
//
// TwilioClient performs one API call per recipient and paces calls with a
// token bucket so bursts stay under the account's messaging rate. DevSender
// appends messages to a JSON lines file instead of sending them.
//
// The Twilio SDK calls are not context aware; SendSMS still returns as soon
// as ctx is done and reports context.DeadlineExceeded or context.Canceled
// joined with ErrFailedToSend.
package sms
