package message

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// State names the representation a message is in.
type State uint8

const (
	// StateInstant is plaintext: envelope plus content.
	StateInstant State = iota
	// StateSecure is encrypted: envelope plus data and key material.
	StateSecure
	// StateReliable is encrypted and signed.
	StateReliable
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateInstant:
		return "Instant"
	case StateSecure:
		return "Secure"
	case StateReliable:
		return "Reliable"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Message is implemented by the three message states.
type Message interface {
	// State reports which representation the message is in.
	State() State
	// Validate checks that every field the state requires is present.
	Validate() error
}

// Keys maps a group member to the symmetric key encrypted for that member,
// base64 encoded.
type Keys map[ID]string

// Clone returns a copy of the map. A nil map clones to nil.
func (k Keys) Clone() Keys {
	if k == nil {
		return nil
	}
	clone := make(Keys, len(k))
	for member, key := range k {
		clone[member] = key
	}
	return clone
}

// InstantMessage is a plaintext message.
//
//	{
//	    "sender"   : "moki@xxx",
//	    "receiver" : "hulk@yyy",
//	    "time"     : 123,
//	    "content"  : {...}
//	}
type InstantMessage struct {
	Envelope
	Content *Content `json:"content"`
}

// NewInstantMessage creates an instant message carrying content.
func NewInstantMessage(env Envelope, content *Content) *InstantMessage {
	return &InstantMessage{
		Envelope: env,
		Content:  content,
	}
}

// State implements Message.
func (m *InstantMessage) State() State {
	return StateInstant
}

// Validate implements Message.
func (m *InstantMessage) Validate() error {
	if err := m.Envelope.Validate(); err != nil {
		return err
	}
	if m.Content == nil {
		return fmt.Errorf("%w: instant message has no content", ErrMalformedMessage)
	}
	return nil
}

// Clone returns a deep copy.
func (m *InstantMessage) Clone() *InstantMessage {
	return &InstantMessage{
		Envelope: m.Envelope,
		Content:  m.Content.Clone(),
	}
}

// SecureMessage is an instant message whose content has been encrypted with
// a symmetric key. Key and Keys are mutually exclusive: Key is used for a
// single receiver, Keys for a group.
//
// Group is set when a group message has been narrowed to a single member.
//
//	{
//	    "sender"   : "moki@xxx",
//	    "receiver" : "hulk@yyy",
//	    "time"     : 123,
//	    "data"     : "...",  // base64(symmetric ciphertext)
//	    "key"      : "...",  // base64(asymmetric ciphertext)
//	    "keys"     : {
//	        "ID1": "key1",   // base64(asymmetric ciphertext)
//	    }
//	}
type SecureMessage struct {
	Envelope
	Data  string `json:"data"`
	Key   string `json:"key,omitempty"`
	Keys  Keys   `json:"keys,omitempty"`
	Group ID     `json:"group,omitempty"`
}

// State implements Message.
func (m *SecureMessage) State() State {
	return StateSecure
}

// Validate implements Message.
func (m *SecureMessage) Validate() error {
	if err := m.Envelope.Validate(); err != nil {
		return err
	}
	if m.Data == "" {
		return fmt.Errorf("%w: secure message has no data", ErrMalformedMessage)
	}
	if m.Key != "" && m.Keys != nil {
		return fmt.Errorf("%w: key and keys are mutually exclusive", ErrMalformedMessage)
	}
	return nil
}

// IsGroup reports whether the message still carries per-member keys.
func (m *SecureMessage) IsGroup() bool {
	return m.Keys != nil
}

// Clone returns a deep copy.
func (m *SecureMessage) Clone() *SecureMessage {
	clone := *m
	clone.Keys = m.Keys.Clone()
	return &clone
}

// secureWire is the encoded form of a SecureMessage. Keys is a pointer so
// that a group message whose keys were all reused still encodes "keys": {}
// and decodes back into a group message.
type secureWire struct {
	Envelope
	Data  string `json:"data"`
	Key   string `json:"key,omitempty"`
	Keys  *Keys  `json:"keys,omitempty"`
	Group ID     `json:"group,omitempty"`
}

func (m SecureMessage) wire() secureWire {
	w := secureWire{
		Envelope: m.Envelope,
		Data:     m.Data,
		Key:      m.Key,
		Group:    m.Group,
	}
	if m.Keys != nil {
		keys := m.Keys
		w.Keys = &keys
	}
	return w
}

// MarshalJSON encodes the message. Keys is omitted only when nil.
func (m SecureMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.wire())
}

// ReliableMessage is a secure message signed by its sender. The signature
// covers the decoded Data only. Meta is opaque identity metadata passed
// through unchanged.
type ReliableMessage struct {
	SecureMessage
	Signature string          `json:"signature"`
	Meta      json.RawMessage `json:"meta"`
}

// State implements Message.
func (m *ReliableMessage) State() State {
	return StateReliable
}

// Validate implements Message.
func (m *ReliableMessage) Validate() error {
	if err := m.SecureMessage.Validate(); err != nil {
		return err
	}
	if m.Signature == "" {
		return fmt.Errorf("%w: reliable message has no signature", ErrMalformedMessage)
	}
	return nil
}

// Clone returns a deep copy.
func (m *ReliableMessage) Clone() *ReliableMessage {
	return &ReliableMessage{
		SecureMessage: *m.SecureMessage.Clone(),
		Signature:     m.Signature,
		Meta:          cloneMeta(m.Meta),
	}
}

// MarshalJSON encodes the message with the same keys handling as
// SecureMessage.
func (m ReliableMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		secureWire
		Signature string          `json:"signature"`
		Meta      json.RawMessage `json:"meta"`
	}{
		secureWire: m.SecureMessage.wire(),
		Signature:  m.Signature,
		Meta:       m.Meta,
	})
}

// UnmarshalJSON decodes a reliable message. A JSON null meta decodes to a
// nil Meta.
func (m *ReliableMessage) UnmarshalJSON(data []byte) error {
	type plain ReliableMessage
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if isNullJSON(p.Meta) {
		p.Meta = nil
	}
	*m = ReliableMessage(p)
	return nil
}

func cloneMeta(meta json.RawMessage) json.RawMessage {
	if meta == nil {
		return nil
	}
	return append(json.RawMessage(nil), meta...)
}

func isNullJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
