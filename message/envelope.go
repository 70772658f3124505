package message

import (
	"errors"
	"fmt"
	"time"
)

// ID identifies a user or a group, e.g. "moki@4WDfe3zZ4T7opFSi3iDAKiuTnUHjxmXekk".
type ID string

// IsEmpty reports whether the identifier is unset.
func (id ID) IsEmpty() bool {
	return id == ""
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return string(id)
}

// ErrMalformedMessage indicates a message is missing a field its state
// requires, carries an ill-typed field, or carries mutually exclusive
// fields together.
var ErrMalformedMessage = errors.New("malformed message")

// Envelope is the sender/receiver/time triple shared by every message state.
type Envelope struct {
	Sender   ID `json:"sender"`
	Receiver ID `json:"receiver"`
	// Time is in Unix seconds, not milliseconds. Peers that stamp
	// milliseconds must convert before encoding.
	Time int64 `json:"time"`
}

// NewEnvelope creates an envelope stamped with t, truncated to whole Unix
// seconds.
func NewEnvelope(sender, receiver ID, t time.Time) Envelope {
	return Envelope{
		Sender:   sender,
		Receiver: receiver,
		Time:     t.Unix(),
	}
}

// Timestamp returns the envelope time as a time.Time.
func (e Envelope) Timestamp() time.Time {
	return time.Unix(e.Time, 0)
}

// Validate checks that both parties are set.
func (e Envelope) Validate() error {
	if e.Sender.IsEmpty() {
		return fmt.Errorf("%w: sender not set", ErrMalformedMessage)
	}
	if e.Receiver.IsEmpty() {
		return fmt.Errorf("%w: receiver not set", ErrMalformedMessage)
	}
	return nil
}
