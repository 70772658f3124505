package message

import (
	"encoding/json"
	"fmt"
)

// Decode parses a wire message and returns it as the state its populated
// fields describe: content means Instant, signature means Reliable, data
// means Secure. The decoded message is validated before it is returned.
func Decode(raw []byte) (Message, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: message is null", ErrMalformedMessage)
	}

	has := func(key string) bool {
		v, ok := fields[key]
		return ok && !isNullJSON(v)
	}

	var msg Message
	switch {
	case has("content") && has("data"):
		return nil, fmt.Errorf("%w: both content and data present", ErrMalformedMessage)
	case has("content"):
		msg = &InstantMessage{}
	case has("signature"):
		msg = &ReliableMessage{}
	case has("data"):
		msg = &SecureMessage{}
	default:
		return nil, fmt.Errorf("%w: neither content nor data present", ErrMalformedMessage)
	}

	if err := json.Unmarshal(raw, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return msg, nil
}

// Encode validates msg and writes its wire form.
func Encode(msg Message) ([]byte, error) {
	if msg == nil {
		return nil, fmt.Errorf("%w: nil message", ErrMalformedMessage)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s message: %w", msg.State(), err)
	}
	return raw, nil
}
