// Package crypto provides a NaCl based implementation of the transform.Crypto
// capability, together with the identity and key material it needs.
//
// # Core Types
//
//   - [KeyPair]: Curve25519 key pair that receives sealed symmetric keys
//   - [Identity]: a local user's private keys (encryption key pair + Ed25519 seed)
//   - [Profile]: the public half of an identity, as published to peers
//   - [MemoryDirectory]: a concurrent-safe map from ID to Profile
//   - [Suite]: the transform.Crypto implementation
//   - [IdentityStore]: identities persisted on disk, encrypted with a passphrase
//
// # Algorithm
//
//	data      = ContentCipher(HKDF-SHA256(password)).Seal(json(content))
//	key       = box.SealAnonymous(password, receiver.EncryptionKey)
//	signature = ed25519.Sign(sender.SigningSeed, data)
//
// The content cipher is selectable: NaCl secretbox (XSalsa20-Poly1305, the
// default) or the ChaChaPoly and AESGCM ciphers of the Noise framework.
// Both ends must be configured with the same cipher.
//
// # Usage
//
//	alice, _ := crypto.GenerateIdentity("alice")
//	dir := crypto.NewMemoryDirectory()
//	_ = dir.Register(alice.Profile())
//	_ = dir.Register(bobProfile)
//
//	suite, _ := crypto.NewSuite(alice, dir, nil)
//	tf, _ := transform.NewTransformer(suite, nil)
//
//	password, _ := crypto.GeneratePassword()
//	sMsg, _ := tf.Encrypt(iMsg, password, nil)
//	rMsg, _ := tf.Sign(sMsg)
//
// # Secure Memory Handling
//
// Private keys should be wiped once an identity is retired:
//
//	defer crypto.WipeIdentity(alice)
//
// Derived content keys and serialized plaintext are wiped by the Suite
// after each call.
//
// # Thread Safety
//
// Suite holds no mutable state; MemoryDirectory uses a sync.RWMutex and
// IdentityStore a sync.Mutex. All are safe for concurrent use.
package crypto
