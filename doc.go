// Package dkd is the root of the message transform module. It contains no
// code of its own; the functionality lives in the subpackages:
//
//   - message: Envelope, Content and the Instant, Secure and Reliable
//     message states, with their JSON wire encoding
//   - transform: the Transformer that encrypts, decrypts, signs, verifies,
//     splits and trims messages through a pluggable Crypto capability
//   - crypto: a NaCl and Ed25519 based capability, identities, a public key
//     directory and an encrypted identity store
//   - limits: size limits for content, keys and encoded fields
//
// # Getting Started
//
//	alice, _ := crypto.GenerateIdentity("alice")
//	dir := crypto.NewMemoryDirectory()
//	_ = dir.Register(alice.Profile())
//	_ = dir.Register(bobProfile)
//
//	suite, _ := crypto.NewSuite(alice, dir, nil)
//	tf, _ := transform.NewTransformer(suite, nil)
//
//	iMsg := message.NewInstantMessage(
//	    message.NewEnvelope("alice", "bob", time.Now()),
//	    message.NewTextContent(1, "hi"))
//
//	password, _ := crypto.GeneratePassword()
//	sMsg, _ := tf.Encrypt(iMsg, password, nil)
//	rMsg, _ := tf.Sign(sMsg)
//	wire, _ := message.Encode(rMsg)
//
// See examples/transform_demo for a complete walkthrough including group
// messages.
package dkd
