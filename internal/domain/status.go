package domain

import (
	"encoding"
	"fmt"
)

// CardStatus is the lifecycle state of a card.
type CardStatus int

// Card lifecycle states. The zero value is deliberately invalid.
const (
	CardStatusNew CardStatus = iota + 1
	CardStatusLearning
	CardStatusReviewing
	CardStatusMastered
	CardStatusSuspended
	CardStatusArchived
)

var (
	cardStatusNames = [...]string{
		CardStatusNew:       "new",
		CardStatusLearning:  "learning",
		CardStatusReviewing: "reviewing",
		CardStatusMastered:  "mastered",
		CardStatusSuspended: "suspended",
		CardStatusArchived:  "archived",
	}
	cardStatusByName = map[string]CardStatus{
		"new":       CardStatusNew,
		"learning":  CardStatusLearning,
		"reviewing": CardStatusReviewing,
		"mastered":  CardStatusMastered,
		"suspended": CardStatusSuspended,
		"archived":  CardStatusArchived,
	}
)

var (
	_ fmt.Stringer             = CardStatus(0)
	_ encoding.TextMarshaler   = CardStatus(0)
	_ encoding.TextUnmarshaler = (*CardStatus)(nil)
)

// IsValid reports whether s is one of the declared states.
func (s CardStatus) IsValid() bool {
	return s >= CardStatusNew && s <= CardStatusArchived
}

// IsSchedulable reports whether the scheduler may act on a card in this state.
func (s CardStatus) IsSchedulable() bool {
	return s.IsValid() && s != CardStatusSuspended && s != CardStatusArchived
}

// String returns the storage name of the status, or "CardStatus(n)" for invalid values.
func (s CardStatus) String() string {
	if s.IsValid() {
		return cardStatusNames[s]
	}
	return fmt.Sprintf("CardStatus(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s CardStatus) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: card status %d", ErrValidation, int(s))
	}
	return []byte(cardStatusNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *CardStatus) UnmarshalText(text []byte) error {
	v, err := ParseCardStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseCardStatus converts a storage name into a CardStatus.
func ParseCardStatus(name string) (CardStatus, error) {
	v, ok := cardStatusByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown card status %q", ErrValidation, name)
	}
	return v, nil
}

// CardType is the review modality a card exercises.
type CardType int

// Review modalities. The zero value is deliberately invalid.
const (
	CardTypeRecognition CardType = iota + 1
	CardTypeRecall
	CardTypeProduction
	CardTypeListening
)

var (
	cardTypeNames = [...]string{
		CardTypeRecognition: "recognition",
		CardTypeRecall:      "recall",
		CardTypeProduction:  "production",
		CardTypeListening:   "listening",
	}
	cardTypeByName = map[string]CardType{
		"recognition": CardTypeRecognition,
		"recall":      CardTypeRecall,
		"production":  CardTypeProduction,
		"listening":   CardTypeListening,
	}
)

var (
	_ fmt.Stringer             = CardType(0)
	_ encoding.TextMarshaler   = CardType(0)
	_ encoding.TextUnmarshaler = (*CardType)(nil)
)

// CardTypes lists every modality in declaration order.
func CardTypes() []CardType {
	return []CardType{CardTypeRecognition, CardTypeRecall, CardTypeProduction, CardTypeListening}
}

// IsValid reports whether t is one of the declared modalities.
func (t CardType) IsValid() bool {
	return t >= CardTypeRecognition && t <= CardTypeListening
}

// String returns the storage name of the card type, or "CardType(n)" for invalid values.
func (t CardType) String() string {
	if t.IsValid() {
		return cardTypeNames[t]
	}
	return fmt.Sprintf("CardType(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t CardType) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: card type %d", ErrValidation, int(t))
	}
	return []byte(cardTypeNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *CardType) UnmarshalText(text []byte) error {
	v, err := ParseCardType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseCardType converts a storage name into a CardType.
func ParseCardType(name string) (CardType, error) {
	v, ok := cardTypeByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown card type %q", ErrValidation, name)
	}
	return v, nil
}
