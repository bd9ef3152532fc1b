package repository

import (
	"context"

	"github.com/google/uuid"

	"grimoire-backend/internal/domains/book/model"
)

// BookRepository abstracts persistence of Book entities. Every
// operation is a single-row statement; atomicity per book is the
// database's job, not ours.
type BookRepository interface {
	// Create persists a new book and fills in its generated id and
	// timestamps.
	Create(ctx context.Context, book *model.Book) error

	// GetByID returns model.ErrBookNotFound when no row matches.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)

	// List returns every book in insertion order.
	List(ctx context.Context) ([]model.Book, error)

	// ListTopRated returns up to limit books ordered by average rating
	// descending, ties broken by insertion order.
	ListTopRated(ctx context.Context, limit int) ([]model.Book, error)

	// Update rewrites the stored book under its existing id.
	Update(ctx context.Context, book *model.Book) error

	// Delete removes the row; model.ErrBookNotFound when nothing matched.
	Delete(ctx context.Context, id uuid.UUID) error
}
