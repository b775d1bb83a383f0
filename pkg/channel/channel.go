// Package channel implements the delivery mediums behind notification
// dispatch. Each sender is an external collaborator: failures are reported
// to the caller, which logs them and carries on with the remaining
// channels.
package channel

import "context"

// Message is the payload handed to a sender. Recipient is channel-specific:
// an email address, a device token or a phone number.
type Message struct {
	Recipient string
	Title     string
	Body      string
}

// Sender dispatches a message through one delivery medium.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}
