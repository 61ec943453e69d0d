package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/99designs/keyring"

	"github.com/nhle/ourspace/internal/model"
)

const (
	serviceName = "ourspace"
	sessionKey  = "session"
)

// ErrNoSession is returned when nobody is logged in on this machine.
var ErrNoSession = errors.New("no saved session")

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	fileDir := "~/.config/ourspace/credentials"
	if home, err := os.UserHomeDir(); err == nil {
		fileDir = filepath.Join(home, ".config", "ourspace", "credentials")
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt("ourspace-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Sessions remembers who is logged in so the next launch can skip the
// login form.
type Sessions struct {
	ring keyring.Keyring
}

// OpenSessions opens the system keyring.
func OpenSessions() (*Sessions, error) {
	ring, err := openKeyring()
	if err != nil {
		return nil, err
	}
	return NewSessions(ring), nil
}

// NewSessions wraps an already opened keyring.
func NewSessions(ring keyring.Keyring) *Sessions {
	return &Sessions{ring: ring}
}

// Current returns the participant of the saved session.
func (s *Sessions) Current() (model.Participant, error) {
	item, err := s.ring.Get(sessionKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, fmt.Errorf("getting session: %w", err)
	}

	p, err := model.ParseParticipant(string(item.Data))
	if err != nil {
		return 0, fmt.Errorf("reading session: %w", err)
	}
	return p, nil
}

// Save records p as the logged in participant.
func (s *Sessions) Save(p model.Participant) error {
	if !p.Valid() {
		return model.ErrUnknownParticipant
	}

	err := s.ring.Set(keyring.Item{
		Key:   sessionKey,
		Data:  []byte(p.Key()),
		Label: "ourspace session",
	})
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Clear forgets the saved session. Clearing when nobody is logged in is
// not an error.
func (s *Sessions) Clear() error {
	err := s.ring.Remove(sessionKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
