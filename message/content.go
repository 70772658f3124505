package message

import (
	"encoding/json"
	"fmt"
)

// MessageType tags the kind of payload a Content carries.
type MessageType uint8

const (
	// MessageTypeText is a plain text message.
	MessageTypeText MessageType = 0x01

	// MessageTypeFile is a file attachment.
	MessageTypeFile MessageType = 0x10
	// MessageTypeImage is an image attachment.
	MessageTypeImage MessageType = 0x12
	// MessageTypeAudio is an audio clip.
	MessageTypeAudio MessageType = 0x14
	// MessageTypeVideo is a video clip.
	MessageTypeVideo MessageType = 0x16

	// MessageTypePage is a web page share.
	MessageTypePage MessageType = 0x20

	// MessageTypeCommand is a system command.
	MessageTypeCommand MessageType = 0x88
	// MessageTypeHistory is an entity history command.
	MessageTypeHistory MessageType = 0x89

	// MessageTypeForward wraps a top-secret message forwarded by a proxy.
	MessageTypeForward MessageType = 0xFF
)

var messageTypeNames = map[MessageType]string{
	MessageTypeText:    "Text",
	MessageTypeFile:    "File",
	MessageTypeImage:   "Image",
	MessageTypeAudio:   "Audio",
	MessageTypeVideo:   "Video",
	MessageTypePage:    "Page",
	MessageTypeCommand: "Command",
	MessageTypeHistory: "History",
	MessageTypeForward: "Forward",
}

// String returns the type name, or "Unknown(0xNN)" for codes outside the
// known set. Unknown codes are still valid content types.
func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(0x%02X)", uint8(t))
}

// IsKnown reports whether t is one of the predefined message types.
func (t MessageType) IsKnown() bool {
	_, ok := messageTypeNames[t]
	return ok
}

// Reserved wire keys of a content object.
const (
	contentKeyType  = "type"
	contentKeySN    = "sn"
	contentKeyGroup = "group"
	contentKeyText  = "text"
	contentKeyCmd   = "command"
	contentKeyTime  = "time"
	contentKeyFwd   = "forward"
)

// Content is the plaintext payload of an InstantMessage.
//
// Fields other than type, serial number and group live in Extra as raw JSON
// and are written back verbatim on encode.
type Content struct {
	Type         MessageType
	SerialNumber uint64
	Group        ID
	Extra        map[string]json.RawMessage
}

// NewContent creates an empty content of the given type.
func NewContent(t MessageType, sn uint64) *Content {
	return &Content{
		Type:         t,
		SerialNumber: sn,
	}
}

// NewTextContent creates a text content.
func NewTextContent(sn uint64, text string) *Content {
	c := NewContent(MessageTypeText, sn)
	c.mustSet(contentKeyText, text)
	return c
}

// NewCommandContent creates a command content. Extra command arguments can
// be attached with Set.
func NewCommandContent(sn uint64, command string) *Content {
	c := NewContent(MessageTypeCommand, sn)
	c.mustSet(contentKeyCmd, command)
	return c
}

// NewHistoryContent creates a history command stamped with Unix time t.
func NewHistoryContent(sn uint64, command string, t int64) *Content {
	c := NewContent(MessageTypeHistory, sn)
	c.mustSet(contentKeyCmd, command)
	c.mustSet(contentKeyTime, t)
	return c
}

// NewForwardContent wraps a reliable message for forwarding.
func NewForwardContent(sn uint64, forward *ReliableMessage) (*Content, error) {
	if forward == nil {
		return nil, fmt.Errorf("%w: nil forward message", ErrMalformedMessage)
	}
	c := NewContent(MessageTypeForward, sn)
	if err := c.Set(contentKeyFwd, forward); err != nil {
		return nil, err
	}
	return c, nil
}

// Get decodes the extra field key into v. It reports false if the field is
// absent.
func (c *Content) Get(key string, v interface{}) (bool, error) {
	raw, ok := c.Extra[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("%w: content field %q: %v", ErrMalformedMessage, key, err)
	}
	return true, nil
}

// Set encodes v as JSON and stores it under key. The reserved keys type, sn
// and group must be set through their struct fields instead.
func (c *Content) Set(key string, v interface{}) error {
	switch key {
	case contentKeyType, contentKeySN, contentKeyGroup:
		return fmt.Errorf("content field %q is reserved", key)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode content field %q: %w", key, err)
	}
	if c.Extra == nil {
		c.Extra = make(map[string]json.RawMessage)
	}
	c.Extra[key] = raw
	return nil
}

func (c *Content) mustSet(key string, v interface{}) {
	if err := c.Set(key, v); err != nil {
		panic(err)
	}
}

// Delete removes an extra field.
func (c *Content) Delete(key string) {
	delete(c.Extra, key)
}

// Text returns the text field, or "" if absent or not a string.
func (c *Content) Text() string {
	var s string
	if ok, err := c.Get(contentKeyText, &s); !ok || err != nil {
		return ""
	}
	return s
}

// Command returns the command name, or "" if absent or not a string.
func (c *Content) Command() string {
	var s string
	if ok, err := c.Get(contentKeyCmd, &s); !ok || err != nil {
		return ""
	}
	return s
}

// HistoryTime returns the time field of a history command.
func (c *Content) HistoryTime() (int64, bool) {
	var t int64
	if ok, err := c.Get(contentKeyTime, &t); !ok || err != nil {
		return 0, false
	}
	return t, true
}

// Forward decodes the forwarded reliable message.
func (c *Content) Forward() (*ReliableMessage, error) {
	var r ReliableMessage
	ok, err := c.Get(contentKeyFwd, &r)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: content has no forward field", ErrMalformedMessage)
	}
	return &r, nil
}

// Clone returns a deep copy of the content.
func (c *Content) Clone() *Content {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Extra != nil {
		clone.Extra = make(map[string]json.RawMessage, len(c.Extra))
		for k, v := range c.Extra {
			clone.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return &clone
}

// MarshalJSON writes the content as a flat JSON object.
func (c Content) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(c.Extra)+3)
	for k, v := range c.Extra {
		fields[k] = v
	}

	var err error
	if fields[contentKeyType], err = json.Marshal(uint8(c.Type)); err != nil {
		return nil, err
	}
	if fields[contentKeySN], err = json.Marshal(c.SerialNumber); err != nil {
		return nil, err
	}
	if c.Group.IsEmpty() {
		delete(fields, contentKeyGroup)
	} else if fields[contentKeyGroup], err = json.Marshal(c.Group); err != nil {
		return nil, err
	}

	return json.Marshal(fields)
}

// UnmarshalJSON reads a flat JSON object. The type field is required;
// unrecognized fields are kept in Extra.
func (c *Content) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: content: %v", ErrMalformedMessage, err)
	}
	if fields == nil {
		return fmt.Errorf("%w: content is null", ErrMalformedMessage)
	}

	rawType, ok := fields[contentKeyType]
	if !ok {
		return fmt.Errorf("%w: content type not set", ErrMalformedMessage)
	}
	var t uint8
	if err := json.Unmarshal(rawType, &t); err != nil {
		return fmt.Errorf("%w: content type: %v", ErrMalformedMessage, err)
	}
	delete(fields, contentKeyType)

	var sn uint64
	if raw, ok := fields[contentKeySN]; ok {
		if err := json.Unmarshal(raw, &sn); err != nil {
			return fmt.Errorf("%w: content sn: %v", ErrMalformedMessage, err)
		}
		delete(fields, contentKeySN)
	}

	var group ID
	if raw, ok := fields[contentKeyGroup]; ok {
		if err := json.Unmarshal(raw, &group); err != nil {
			return fmt.Errorf("%w: content group: %v", ErrMalformedMessage, err)
		}
		delete(fields, contentKeyGroup)
	}

	if len(fields) == 0 {
		fields = nil
	}

	*c = Content{
		Type:         MessageType(t),
		SerialNumber: sn,
		Group:        group,
		Extra:        fields,
	}
	return nil
}
