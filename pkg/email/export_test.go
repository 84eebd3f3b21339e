package email

// NewPostmarkClientWithAPI exposes the constructor used with a fake API.
var NewPostmarkClientWithAPI = newPostmarkClient

// PostmarkAPI exposes the client interface for test doubles.
type PostmarkAPI = postmarkAPI
