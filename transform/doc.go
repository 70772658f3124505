// Package transform moves messages between their plaintext, encrypted and
// signed representations.
//
//	InstantMessage --Encrypt--> SecureMessage --Sign--> ReliableMessage
//	InstantMessage <--Decrypt-- SecureMessage <--Verify-- ReliableMessage
//
// Algorithm:
//
//	data      = password.encrypt(content)
//	key       = receiver.public_key.encrypt(password)
//	signature = sender.private_key.sign(data)
//
// The package does not implement any cipher. The primitives are supplied by
// the caller as a [Crypto] capability when the [Transformer] is built; the
// crypto package of this module provides a NaCl based one. The Transformer
// owns base64 encoding of the data, key, keys and signature fields: the
// capability only ever sees raw bytes.
//
// # Single and group messages
//
// Encrypt without members produces a single-recipient message carrying Key.
// With members it produces a group message carrying Keys, one entry per
// member, each encrypted for that member:
//
//	sMsg, err := tf.Encrypt(iMsg, password, []message.ID{"bob", "carol"})
//
// A group message can be fanned out with Split, one message per member, or
// narrowed to one member with Trim. Both leave Key set and Keys cleared, and
// record the group in the Group field:
//
//	perMember, err := tf.Split(sMsg, members)
//	forBob, err := tf.Trim(sMsg, "bob")
//
// # Errors
//
// Every failure is returned to the caller as a [*TransformError] naming the
// operation. Classify failures with errors.Is against [ErrMissingKey],
// [ErrKeyDecryption], [ErrContentDecryption], [ErrSignatureVerification] and
// [ErrMalformedMessage]. No operation retries or produces a partial result.
//
// # Thread Safety
//
// A Transformer holds no mutable state. Its methods may be called
// concurrently; they never modify the messages passed in and always return
// fresh values. Concurrency safety of the Crypto capability is the
// responsibility of its implementation.
package transform
