package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownParticipant is returned when a name does not match either of
// the two people who share this space.
var ErrUnknownParticipant = errors.New("unknown participant")

// Participant identifies one of the two people who share the journal.
// The zero value is not a valid participant.
type Participant int

const (
	Victor Participant = iota + 1
	Mimi
)

// Participants returns both participants in a stable order.
func Participants() []Participant {
	return []Participant{Victor, Mimi}
}

// ParseParticipant resolves a case-insensitive name to a Participant.
func ParseParticipant(name string) (Participant, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "victor":
		return Victor, nil
	case "mimi":
		return Mimi, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownParticipant, name)
	}
}

// PartnerOf returns the other participant.
func PartnerOf(p Participant) (Participant, error) {
	switch p {
	case Victor:
		return Mimi, nil
	case Mimi:
		return Victor, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownParticipant, int(p))
	}
}

// Partner is PartnerOf for a participant already known to be valid.
// It returns the zero value for an invalid receiver.
func (p Participant) Partner() Participant {
	partner, _ := PartnerOf(p)
	return partner
}

// Valid reports whether p is one of the two known participants.
func (p Participant) Valid() bool {
	return p == Victor || p == Mimi
}

// Key is the lowercase identity used for storage keys.
func (p Participant) Key() string {
	return strings.ToLower(p.String())
}

// String returns the display name.
func (p Participant) String() string {
	switch p {
	case Victor:
		return "Victor"
	case Mimi:
		return "Mimi"
	default:
		return ""
	}
}
