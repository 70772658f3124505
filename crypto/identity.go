package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/opd-ai/dkd/message"
)

// Identity holds the private keys of a local user: a Curve25519 key pair
// for receiving symmetric keys and an Ed25519 seed for signing.
type Identity struct {
	ID          message.ID
	Encryption  *KeyPair
	SigningSeed [32]byte
}

// Profile is the public half of an Identity, as published to peers.
type Profile struct {
	ID            message.ID
	EncryptionKey [32]byte
	VerifyKey     [32]byte
}

// GenerateIdentity creates an identity with fresh random keys.
func GenerateIdentity(id message.ID) (*Identity, error) {
	if id.IsEmpty() {
		return nil, errors.New("identity ID cannot be empty")
	}

	kp, err := GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("failed to generate encryption keys: %w", err)
	}

	identity := &Identity{ID: id, Encryption: kp}
	if _, err := rand.Read(identity.SigningSeed[:]); err != nil {
		ZeroBytes(kp.Private[:])
		return nil, fmt.Errorf("failed to generate signing seed: %w", err)
	}
	return identity, nil
}

// Profile returns the public keys of the identity.
func (i *Identity) Profile() Profile {
	return Profile{
		ID:            i.ID,
		EncryptionKey: i.Encryption.Public,
		VerifyKey:     SigningPublicKey(i.SigningSeed),
	}
}

// Validate checks that the profile is complete.
func (p Profile) Validate() error {
	if p.ID.IsEmpty() {
		return errors.New("profile ID cannot be empty")
	}
	if isZeroKey(p.EncryptionKey) {
		return fmt.Errorf("profile %s: encryption key not set", p.ID)
	}
	if isZeroKey(p.VerifyKey) {
		return fmt.Errorf("profile %s: verify key not set", p.ID)
	}
	return nil
}
