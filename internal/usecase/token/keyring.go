package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Key ring errors. They only ever disable signing; callers log and continue.
var (
	ErrNoKeys          = errors.New("no signing keys configured")
	ErrMalformedKeys   = errors.New("signing keys are not a JSON object of strings")
	ErrNoActiveKey     = errors.New("no active key id configured")
	ErrUnknownActiveID = errors.New("active key id not in key ring")
	ErrEmptySecret     = errors.New("active key secret is empty")
	ErrSharedSecret    = errors.New("key ring reuses the session secret")
)

// KeyRing holds the backend signing secrets by key id plus the one used
// for new tokens. Older ids stay in the ring so the backend can keep
// verifying tokens during rotation.
type KeyRing struct {
	keys   map[string]string
	active string
}

// ParseKeyRing parses raw as {"kid": "secret", ...} and selects activeKID.
func ParseKeyRing(raw, activeKID string) (KeyRing, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return KeyRing{}, ErrNoKeys
	}
	var keys map[string]string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return KeyRing{}, fmt.Errorf("%w: %w", ErrMalformedKeys, err)
	}
	if len(keys) == 0 {
		return KeyRing{}, ErrNoKeys
	}
	activeKID = strings.TrimSpace(activeKID)
	if activeKID == "" {
		return KeyRing{}, ErrNoActiveKey
	}
	secret, ok := keys[activeKID]
	if !ok {
		return KeyRing{}, fmt.Errorf("%w: %q", ErrUnknownActiveID, activeKID)
	}
	if secret == "" {
		return KeyRing{}, fmt.Errorf("%w: %q", ErrEmptySecret, activeKID)
	}
	return KeyRing{keys: keys, active: activeKID}, nil
}

// ActiveKID returns the id of the signing key.
func (k *KeyRing) ActiveKID() string { return k.active }

// Secret returns the secret for kid.
func (k *KeyRing) Secret(kid string) (string, bool) {
	s, ok := k.keys[kid]
	return s, ok && s != ""
}

// Contains reports whether any key in the ring uses secret.
func (k *KeyRing) Contains(secret string) bool {
	for _, s := range k.keys {
		if s == secret {
			return true
		}
	}
	return false
}
