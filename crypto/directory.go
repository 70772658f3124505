package crypto

import (
	"errors"
	"fmt"
	"sync"

	"github.com/opd-ai/dkd/message"
)

// ErrUnknownIdentity indicates no profile is registered for an ID.
var ErrUnknownIdentity = errors.New("unknown identity")

// Directory resolves the public keys of a user.
type Directory interface {
	Lookup(id message.ID) (Profile, error)
}

// MemoryDirectory is a Directory kept in memory. It is safe for concurrent
// use.
type MemoryDirectory struct {
	mu       sync.RWMutex
	profiles map[message.ID]Profile
}

// NewMemoryDirectory creates an empty directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		profiles: make(map[message.ID]Profile),
	}
}

// Register adds or replaces a profile.
func (d *MemoryDirectory) Register(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.profiles[p.ID] = p
	return nil
}

// Remove deletes the profile for id, if any.
func (d *MemoryDirectory) Remove(id message.ID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.profiles, id)
}

// Lookup implements Directory.
func (d *MemoryDirectory) Lookup(id message.ID) (Profile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrUnknownIdentity, id)
	}
	return p, nil
}

// Len returns the number of registered profiles.
func (d *MemoryDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.profiles)
}
