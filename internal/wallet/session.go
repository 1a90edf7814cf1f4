package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// ErrWatchOnly is returned when a key is requested for a watch-only wallet.
var ErrWatchOnly = errors.New("wallet is watch-only and cannot sign")

// SessionCache keeps unlocked keys in a 0600 file so that consecutive
// commands do not prompt the keychain again. `byfin wallet lock` deletes it.
type SessionCache struct {
	path string
}

// NewSessionCache returns a cache stored at path.
func NewSessionCache(path string) *SessionCache {
	return &SessionCache{path: path}
}

// DefaultSessionCache returns the per-user session cache:
//
//	macOS:   ~/Library/Caches/byfin/session.json
//	Linux:   ~/.cache/byfin/session.json
//	Windows: %LocalAppData%\byfin\session.json
func DefaultSessionCache() *SessionCache {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return NewSessionCache(filepath.Join(dir, "byfin", "session.json"))
}

// load returns an empty map (never nil) on any error.
func (c *SessionCache) load() map[string]string {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return make(map[string]string)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return make(map[string]string)
	}
	return m
}

func (c *SessionCache) save(m map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return err
	}
	_ = os.Chmod(c.path, 0o600)
	return nil
}

// Get returns a cached key for ref.
func (c *SessionCache) Get(ref string) (string, bool) {
	v, ok := c.load()[ref]
	return v, ok
}

// Put caches a key for ref.
func (c *SessionCache) Put(ref, hexKey string) error {
	m := c.load()
	m[ref] = hexKey
	return c.save(m)
}

// Remove evicts a single key.
func (c *SessionCache) Remove(ref string) error {
	m := c.load()
	if _, ok := m[ref]; !ok {
		return nil
	}
	delete(m, ref)
	return c.save(m)
}

// Clear removes all cached keys by deleting the session file.
func (c *SessionCache) Clear() error {
	err := os.Remove(c.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Active reports whether any key is cached.
func (c *SessionCache) Active() bool {
	return len(c.load()) > 0
}

// Session is the account a command acts for. It is connected once a signing
// key has been unlocked; a watch-only session only carries an address for
// read-only views.
type Session struct {
	mu      sync.RWMutex
	address common.Address
	signer  *Signer
}

// WatchSession returns a disconnected session for addr.
func WatchSession(addr common.Address) *Session {
	return &Session{address: addr}
}

// Connect unlocks the key of w, preferring the session cache over the
// keystore, and returns a connected session.
func Connect(w *Wallet, ks KeystoreBackend, cache *SessionCache) (*Session, error) {
	if !w.CanSign() {
		return nil, fmt.Errorf("%w: %q", ErrWatchOnly, w.Name)
	}

	hexKey, ok := "", false
	if cache != nil {
		hexKey, ok = cache.Get(w.KeyRef)
	}
	if !ok {
		var err error
		hexKey, err = ks.Retrieve(w.KeyRef)
		if err != nil {
			return nil, fmt.Errorf("retrieving key: %w", err)
		}
	}

	signer, err := NewSigner(hexKey)
	if err != nil {
		return nil, err
	}
	if want := common.HexToAddress(w.Address); signer.Address() != want {
		return nil, fmt.Errorf("%w: key for %q derives %s, expected %s",
			ErrInvalidKey, w.Name, signer.Address().Hex(), want.Hex())
	}
	return &Session{address: signer.Address(), signer: signer}, nil
}

// Account returns the session address and whether a signer is connected.
func (s *Session) Account() (common.Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.address, s.signer != nil
}

// Signer returns the connected signer, or nil.
func (s *Session) Signer() *Signer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signer
}

// Disconnect drops the signer; the address stays readable.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signer = nil
}
