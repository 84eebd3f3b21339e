// Package email sends HTML emails through Postmark, or writes them to disk
// during local development.
//
// Both implementations satisfy EmailSender. A single SendEmail call addresses
// every recipient in SendEmailParams.SendTo at once.
//
//	sender, err := email.NewPostmarkClient(email.Config{
//		PostmarkServerToken:  os.Getenv("POSTMARK_SERVER_TOKEN"),
//		PostmarkAccountToken: os.Getenv("POSTMARK_ACCOUNT_TOKEN"),
//		SenderEmail:          "drip@example.com",
//	})
//	if err != nil {
//		return err
//	}
//	err = sender.SendEmail(ctx, email.SendEmailParams{
//		SendTo:   []string{"a@example.com", "b@example.com"},
//		Subject:  "hello",
//		BodyHTML: "<p>hi</p>",
//	})
//
// Delivery failures are joined with ErrFailedToSendEmail, invalid input with
// ErrInvalidParams and ErrInvalidConfig.
package email
