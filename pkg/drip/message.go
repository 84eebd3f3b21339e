package drip

// Message is one deliverable item of a queue.
//
// Sent is empty while the message is pending and holds the period key of its
// delivery afterwards. Once set it is never cleared.
type Message struct {
	OrderID  int64  `json:"orderid"`
	ID       string `json:"id"`
	Text     string `json:"text"`
	MediaURL string `json:"mediaurl,omitempty"`
	Sent     string `json:"sent,omitempty"`
}

// Pending reports whether the message has not been delivered yet.
func (m Message) Pending() bool {
	return m.Sent == ""
}

// HasMedia reports whether the message carries a media attachment.
func (m Message) HasMedia() bool {
	return m.MediaURL != ""
}
