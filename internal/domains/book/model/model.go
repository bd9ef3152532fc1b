package model

import (
	"time"

	"github.com/google/uuid"
)

// ============ ENTITIES ============

// Rating - one grade given by one user. A user appears at most once
// in a book's ratings.
type Rating struct {
	UserID uuid.UUID `json:"userId"`
	Grade  float64   `json:"grade"`
}

// Book - Domain Entity (from database)
// Ratings is stored as a JSONB column; AverageRating is derived from it
// but persisted redundantly so reads never aggregate.
type Book struct {
	ID      uuid.UUID `json:"id" db:"id"`
	OwnerID uuid.UUID `json:"userId" db:"owner_id"` // immutable after creation

	// Descriptive metadata, opaque pass-through
	Title  string `json:"title" db:"title"`
	Author string `json:"author" db:"author"`
	Year   int    `json:"year" db:"year"`
	Genre  string `json:"genre" db:"genre"`

	// Cover image, replaced on update when a new file is supplied
	ImageURL string `json:"imageUrl" db:"image_url"`

	// Append-only after creation; always holds at least the seed rating
	Ratings       []Rating `json:"ratings" db:"ratings"`
	AverageRating float64  `json:"averageRating" db:"average_rating"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RatedBy reports whether the user already has an entry in Ratings.
func (b *Book) RatedBy(userID uuid.UUID) bool {
	for _, r := range b.Ratings {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// ImageUpload carries an uploaded cover image into the service layer.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}
