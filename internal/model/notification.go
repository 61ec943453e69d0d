package model

import (
	"fmt"
	"time"
)

// Category identifies which part of the app produced a notification.
type Category string

const (
	CategoryJournal      Category = "journal"
	CategoryMood         Category = "mood"
	CategoryCheckin      Category = "checkin"
	CategoryGoals        Category = "goals"
	CategoryVoice        Category = "voice"
	CategoryLetters      Category = "letters"
	CategoryAffirmations Category = "affirmations"
	CategoryEmergency    Category = "emergency"
	CategoryAdmin        Category = "admin"
)

// DefaultIcon is shown for categories without a dedicated glyph.
const DefaultIcon = "💙"

var categoryIcons = map[Category]string{
	CategoryJournal:      "📝",
	CategoryMood:         "😊",
	CategoryCheckin:      "✅",
	CategoryGoals:        "🎯",
	CategoryVoice:        "🎤",
	CategoryLetters:      "💌",
	CategoryAffirmations: "💕",
	CategoryEmergency:    "📞",
	CategoryAdmin:        "⚙️",
}

// Categories returns the known categories in display order.
func Categories() []Category {
	return []Category{
		CategoryJournal, CategoryMood, CategoryCheckin, CategoryGoals,
		CategoryVoice, CategoryLetters, CategoryAffirmations,
		CategoryEmergency, CategoryAdmin,
	}
}

// Icon returns the glyph for the category.
func (c Category) Icon() string {
	if icon, ok := categoryIcons[c]; ok {
		return icon
	}
	return DefaultIcon
}

// DefaultAction is the verb used when an event is raised without one.
func (c Category) DefaultAction() string {
	switch c {
	case CategoryGoals, CategoryJournal:
		return "created"
	case CategoryVoice, CategoryLetters:
		return "sent"
	case CategoryCheckin:
		return "completed"
	case CategoryAffirmations:
		return "viewed"
	case CategoryEmergency:
		return "used"
	default:
		return "updated"
	}
}

// Message renders the default sentence for an action by from.
func (c Category) Message(from, action string) string {
	switch c {
	case CategoryJournal:
		return fmt.Sprintf("%s wrote a new journal entry", from)
	case CategoryMood:
		return fmt.Sprintf("%s updated their mood", from)
	case CategoryCheckin:
		return fmt.Sprintf("%s completed their daily check-in", from)
	case CategoryGoals:
		return fmt.Sprintf("%s %s a goal", from, action)
	case CategoryVoice:
		return fmt.Sprintf("%s %s a voice message", from, action)
	case CategoryLetters:
		return fmt.Sprintf("%s %s a love letter", from, action)
	case CategoryAffirmations:
		return fmt.Sprintf("%s viewed affirmations", from)
	case CategoryEmergency:
		return fmt.Sprintf("%s used emergency contact", from)
	case CategoryAdmin:
		return fmt.Sprintf("%s updated admin settings", from)
	default:
		return fmt.Sprintf("%s used %s", from, c)
	}
}

// Notification is an event one participant's activity produced for the
// other. Only Read ever changes after creation.
type Notification struct {
	// ID is unique and time ordered.
	ID string `json:"id" yaml:"id"`

	// Category identifies the feature that produced the event.
	Category Category `json:"category" yaml:"category"`

	// Message is the human-readable notification text.
	Message string `json:"message" yaml:"message"`

	// From and To hold participant display names.
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`

	// Timestamp is when the event was dispatched.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Read indicates whether the recipient has seen this notification.
	Read bool `json:"is_read" yaml:"is_read"`

	Icon string `json:"icon" yaml:"icon"`
}
