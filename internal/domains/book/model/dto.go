package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ============ DTOs ============

// RatingPayload mirrors the rating object the frontend embeds in the
// create payload. The userId field is accepted but never trusted; the
// service re-stamps it with the authenticated caller.
type RatingPayload struct {
	UserID string  `json:"userId"`
	Grade  float64 `json:"grade"`
}

// CreateBookRequest - the "book" part of the multipart create request.
// Client-supplied id/userId fields are deliberately not bound.
type CreateBookRequest struct {
	Title   string          `json:"title"`
	Author  string          `json:"author"`
	Year    int             `json:"year"`
	Genre   string          `json:"genre"`
	Ratings []RatingPayload `json:"ratings"`
}

func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(1, 255),
		),
		validation.Field(&r.Author,
			validation.Required.Error("author is required"),
			validation.Length(1, 255),
		),
		validation.Field(&r.Year,
			validation.Min(0).Error("year must not be negative"),
		),
		validation.Field(&r.Ratings,
			validation.Required.Error("a seed rating is required"),
			validation.Length(1, 1).Error("exactly one seed rating is expected"),
		),
	)
}

// UpdateBookRequest - partial metadata update. Pointer fields
// distinguish "not provided" from zero values; only provided fields are
// merged into the stored book.
type UpdateBookRequest struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	Year   *int    `json:"year"`
	Genre  *string `json:"genre"`
}

func (r UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.NilOrNotEmpty.Error("title must not be empty"),
			validation.Length(1, 255),
		),
		validation.Field(&r.Author,
			validation.NilOrNotEmpty.Error("author must not be empty"),
			validation.Length(1, 255),
		),
	)
}

// ApplyTo merges the provided fields into b, leaving everything else
// (owner, image, ratings, average) untouched.
func (r UpdateBookRequest) ApplyTo(b *Book) {
	if r.Title != nil {
		b.Title = *r.Title
	}
	if r.Author != nil {
		b.Author = *r.Author
	}
	if r.Year != nil {
		b.Year = *r.Year
	}
	if r.Genre != nil {
		b.Genre = *r.Genre
	}
}

// RateBookRequest - body of POST /books/:id/rating.
type RateBookRequest struct {
	Rating float64 `json:"rating"`
}
