// Package auth checks the fixed per-participant passwords.
package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/nhle/ourspace/internal/model"
)

// ErrInvalidCredentials is returned for an unknown name or a wrong password.
// The two cases are not distinguished.
var ErrInvalidCredentials = errors.New("invalid credentials: this space is only for Victor and Mimi")

// Authenticator validates a name and password against a fixed table.
type Authenticator struct {
	passwords map[model.Participant]string
}

// New builds an Authenticator from passwords keyed by participant name.
// Entries for names that are not participants are ignored.
func New(passwords map[string]string) *Authenticator {
	a := &Authenticator{passwords: make(map[model.Participant]string, len(passwords))}
	for name, pw := range passwords {
		p, err := model.ParseParticipant(name)
		if err != nil || pw == "" {
			continue
		}
		a.passwords[p] = pw
	}
	return a
}

// FromConfig builds an Authenticator from the auth section of cfg.
func FromConfig(cfg *model.AppConfig) *Authenticator {
	return New(cfg.Auth.Passwords)
}

// Login returns the participant for name if password matches. Names are
// matched case-insensitively; passwords are not.
func (a *Authenticator) Login(name, password string) (model.Participant, error) {
	p, err := model.ParseParticipant(strings.TrimSpace(name))
	if err != nil {
		return 0, ErrInvalidCredentials
	}
	want, ok := a.passwords[p]
	if !ok || subtle.ConstantTimeCompare([]byte(want), []byte(password)) != 1 {
		return 0, ErrInvalidCredentials
	}
	return p, nil
}
