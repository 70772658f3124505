// Package message defines the three representations a message moves through
// on its way between two users, and their wire encoding.
//
//	Instant Message <-> Secure Message <-> Reliable Message
//	+-------------+     +------------+     +--------------+
//	|  sender     |     |  sender    |     |  sender      |
//	|  receiver   |     |  receiver  |     |  receiver    |
//	|  time       |     |  time      |     |  time        |
//	|             |     |            |     |              |
//	|  content    |     |  data      |     |  data        |
//	+-------------+     |  key/keys  |     |  key/keys    |
//	                    +------------+     |  signature   |
//	                                       +--------------+
//
// # Envelope
//
// Every state carries the same [Envelope]: sender, receiver and time. The
// envelope is a plain value and is copied, never shared, between states.
//
// # Content
//
// [Content] is the plaintext payload of an [InstantMessage]. It is tagged by
// a [MessageType] and a serial number; any other fields are kept as raw JSON
// in [Content.Extra] so that unknown payload kinds and unknown type codes
// round-trip unchanged:
//
//	c := message.NewTextContent(1, "hi")
//	c.Group = "group@example"
//	raw, _ := json.Marshal(c) // {"type":1,"sn":1,"group":"group@example","text":"hi"}
//
// # Secure and Reliable messages
//
// A [SecureMessage] holds base64 ciphertext in Data plus exactly one of Key
// (single recipient) or Keys (group, one encrypted key per member). A
// [ReliableMessage] adds a base64 Signature over Data and an opaque Meta
// value.
//
// # Decoding
//
// [Decode] inspects which fields are populated to decide the state:
//
//	msg, err := message.Decode(raw)
//	switch m := msg.(type) {
//	case *message.InstantMessage:
//	case *message.SecureMessage:
//	case *message.ReliableMessage:
//	}
//
// # Thread Safety
//
// Message values carry no locks. The transform engine never mutates a
// message it is given; callers that share a message between goroutines
// must not mutate it either.
package message
