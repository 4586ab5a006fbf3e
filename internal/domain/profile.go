package domain

import (
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
)

// Profile-specific validation errors
var (
	// ErrProfileIDEmpty is returned when a profile ID is empty or nil.
	ErrProfileIDEmpty = errors.New("profile ID cannot be empty")

	// ErrProfileOwnerHashEmpty is returned when a profile's owner hash is empty.
	ErrProfileOwnerHashEmpty = errors.New("profile owner hash cannot be empty")
)

// Profile is an anonymized identity keyed by a one-way hash of a contact
// identifier. The raw identifier is hashed before it reaches this type, so
// nothing recoverable is ever stored.
type Profile struct {
	ID             uuid.UUID `json:"id"`
	OwnerHash      string    `json:"owner_hash"`
	DisplayName    string    `json:"display_name,omitempty"`
	BirthYearMonth string    `json:"birth_year_month,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HashOwnerKey derives the one-way profile key from a contact identifier
// (e.g. a phone number). SHA3-256 keeps the mapping deterministic so
// repeat visitors upsert onto the same profile.
func HashOwnerKey(ownerKey string) string {
	sum := sha3.Sum256([]byte(ownerKey))
	return hex.EncodeToString(sum[:])
}

// NewProfile creates a profile for the given pre-hashed owner key.
// Returns an error if validation fails.
func NewProfile(ownerHash, displayName, birthYearMonth string) (*Profile, error) {
	now := time.Now().UTC()
	profile := &Profile{
		ID:             uuid.New(),
		OwnerHash:      ownerHash,
		DisplayName:    displayName,
		BirthYearMonth: birthYearMonth,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}

	return profile, nil
}

// Validate checks if the Profile has valid data.
func (p *Profile) Validate() error {
	if p.ID == uuid.Nil {
		return ErrProfileIDEmpty
	}

	if p.OwnerHash == "" {
		return ErrProfileOwnerHashEmpty
	}

	return nil
}
