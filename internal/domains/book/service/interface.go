package service

import (
	"context"

	"github.com/google/uuid"

	"grimoire-backend/internal/domains/book/model"
)

// ServiceInterface is the book business logic contract. Caller identity
// always arrives as an explicit parameter, resolved by the auth
// middleware before the handler runs.
type ServiceInterface interface {
	CreateBook(ctx context.Context, callerID uuid.UUID, req model.CreateBookRequest, image *model.ImageUpload) (*model.Book, error)
	AddRating(ctx context.Context, callerID uuid.UUID, bookID uuid.UUID, grade float64) (*model.Book, error)
	ListBooks(ctx context.Context) ([]model.Book, error)
	TopRatedBooks(ctx context.Context) ([]model.Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error)
	UpdateBook(ctx context.Context, callerID uuid.UUID, id uuid.UUID, req model.UpdateBookRequest, image *model.ImageUpload) error
	DeleteBook(ctx context.Context, callerID uuid.UUID, id uuid.UUID) error
}

// ImageStore saves uploaded covers and maps stored URLs back to object
// keys. Satisfied by storage.MinIOStorage.
type ImageStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	KeyFromURL(rawURL string) string
}

// ImageCleaner schedules best-effort deletion of a stored cover.
// Satisfied by queue.Client.
type ImageCleaner interface {
	EnqueueImageDelete(ctx context.Context, key string) error
}
