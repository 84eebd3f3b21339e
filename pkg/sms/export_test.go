package sms

// NewTwilioClientWithAPI exposes the constructor used with a fake API.
var NewTwilioClientWithAPI = newTwilioClient

// MessageCreator exposes the Twilio API subset for test doubles.
type MessageCreator = messageCreator
