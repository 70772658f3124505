package transform

import (
	"github.com/opd-ai/dkd/message"
	"github.com/sirupsen/logrus"
)

// Split fans a group message out into one message per member, in the order
// of members. Each result carries Key = Keys[member] and no Keys; a member
// without an entry gets an empty Key, meaning its key is not available yet.
// Group is set to sMsg.Group, or sMsg.Receiver if unset. sMsg is not
// modified.
func (t *Transformer) Split(sMsg *message.SecureMessage, members []message.ID) ([]*message.SecureMessage, error) {
	if sMsg == nil {
		return nil, &TransformError{Op: OpSplit, Err: malformed("nil secure message")}
	}
	if err := checkGroup(sMsg); err != nil {
		return nil, newTransformError(OpSplit, sMsg.Envelope, err)
	}

	out := make([]*message.SecureMessage, 0, len(members))
	for _, member := range members {
		narrowed := narrow(sMsg, member)
		out = append(out, &narrowed)
	}

	t.logSplit(sMsg, len(members))
	return out, nil
}

// Trim narrows a group message to the view of a single member: Key is set
// to Keys[member] (empty if absent), Keys is cleared and Group is recorded.
// A message without Keys is returned as an unchanged copy, so trimming twice
// for the same member gives the same result as trimming once.
func (t *Transformer) Trim(sMsg *message.SecureMessage, member message.ID) (*message.SecureMessage, error) {
	if sMsg == nil {
		return nil, &TransformError{Op: OpTrim, Err: malformed("nil secure message")}
	}
	if err := sMsg.Validate(); err != nil {
		return nil, newTransformError(OpTrim, sMsg.Envelope, err)
	}
	if !sMsg.IsGroup() {
		return sMsg.Clone(), nil
	}
	narrowed := narrow(sMsg, member)
	return &narrowed, nil
}

// SplitReliable is Split for signed group messages. The signature covers
// the data only, so every result still verifies against the sender.
func (t *Transformer) SplitReliable(rMsg *message.ReliableMessage, members []message.ID) ([]*message.ReliableMessage, error) {
	if rMsg == nil {
		return nil, &TransformError{Op: OpSplit, Err: malformed("nil reliable message")}
	}
	if err := rMsg.Validate(); err != nil {
		return nil, newTransformError(OpSplit, rMsg.Envelope, err)
	}
	if err := checkGroup(&rMsg.SecureMessage); err != nil {
		return nil, newTransformError(OpSplit, rMsg.Envelope, err)
	}

	out := make([]*message.ReliableMessage, 0, len(members))
	for _, member := range members {
		out = append(out, &message.ReliableMessage{
			SecureMessage: narrow(&rMsg.SecureMessage, member),
			Signature:     rMsg.Signature,
			Meta:          cloneRaw(rMsg.Meta),
		})
	}

	t.logSplit(&rMsg.SecureMessage, len(members))
	return out, nil
}

// TrimReliable is Trim for signed group messages.
func (t *Transformer) TrimReliable(rMsg *message.ReliableMessage, member message.ID) (*message.ReliableMessage, error) {
	if rMsg == nil {
		return nil, &TransformError{Op: OpTrim, Err: malformed("nil reliable message")}
	}
	if err := rMsg.Validate(); err != nil {
		return nil, newTransformError(OpTrim, rMsg.Envelope, err)
	}
	if !rMsg.IsGroup() {
		return rMsg.Clone(), nil
	}
	return &message.ReliableMessage{
		SecureMessage: narrow(&rMsg.SecureMessage, member),
		Signature:     rMsg.Signature,
		Meta:          cloneRaw(rMsg.Meta),
	}, nil
}

func checkGroup(sMsg *message.SecureMessage) error {
	if err := sMsg.Validate(); err != nil {
		return err
	}
	if !sMsg.IsGroup() {
		return malformed("split requires a group message with keys")
	}
	return nil
}

// narrow copies sMsg into a single-member view. sMsg must carry Keys.
func narrow(sMsg *message.SecureMessage, member message.ID) message.SecureMessage {
	out := *sMsg
	out.Keys = nil
	out.Key = sMsg.Keys[member]
	if out.Group.IsEmpty() {
		out.Group = sMsg.Receiver
	}
	return out
}

func cloneRaw(raw []byte) []byte {
	if raw == nil {
		return nil
	}
	return append([]byte(nil), raw...)
}

func (t *Transformer) logSplit(sMsg *message.SecureMessage, members int) {
	t.log.WithFields(logrus.Fields{
		"function": "Split",
		"sender":   sMsg.Sender,
		"group":    sMsg.Receiver,
		"members":  members,
		"keys":     len(sMsg.Keys),
	}).Debug("Split group message")
}
