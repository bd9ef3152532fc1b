package service

import (
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"

	"grimoire-backend/internal/domains/book/model"
	"grimoire-backend/internal/domains/book/repository"
	"grimoire-backend/pkg/logger"
)

// =====================================================
// SERVICE IMPLEMENTATION
// =====================================================

type bookService struct {
	repo    repository.BookRepository
	images  ImageStore
	cleaner ImageCleaner
}

func NewBookService(
	repo repository.BookRepository,
	images ImageStore,
	cleaner ImageCleaner,
) ServiceInterface {
	return &bookService{
		repo:    repo,
		images:  images,
		cleaner: cleaner,
	}
}

// =====================================================
// CREATE BOOK
// =====================================================

// CreateBook stores the cover, then persists a book owned by the caller
// and seeded with the single rating from the payload.
func (s *bookService) CreateBook(
	ctx context.Context,
	callerID uuid.UUID,
	req model.CreateBookRequest,
	image *model.ImageUpload,
) (*model.Book, error) {
	// Step 1: The cover image is mandatory
	if image == nil || len(image.Data) == 0 {
		return nil, model.ErrMissingFile
	}

	// Step 2: Validate metadata and the seed rating
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if len(req.Ratings) == 0 {
		return nil, model.ErrMissingSeed
	}

	seed := req.Ratings[0]
	if !model.ValidGrade(seed.Grade) {
		return nil, model.ErrInvalidGrade
	}

	// Step 3: Store the cover and derive its public URL
	key := fmt.Sprintf("covers/%s%s", uuid.New().String(), path.Ext(image.Filename))
	imageURL, err := s.images.Upload(ctx, key, image.Data, image.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store cover image: %w", err)
	}

	// Step 4: Build the entity. Any id/owner the client put in the
	// payload is gone by now: ownership comes from the verified token
	// and the seed rating is re-stamped with the caller.
	book := &model.Book{
		OwnerID:  callerID,
		Title:    req.Title,
		Author:   req.Author,
		Year:     req.Year,
		Genre:    req.Genre,
		ImageURL: imageURL,
		Ratings: []model.Rating{
			{UserID: callerID, Grade: seed.Grade},
		},
		// The seed grade is the average, stored exactly as given
		AverageRating: seed.Grade,
	}

	// Step 5: Persist
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}

	return book, nil
}

// =====================================================
// ADD RATING
// =====================================================

// AddRating appends one grade for the caller and rolls it into the
// stored average with the incremental formula.
func (s *bookService) AddRating(
	ctx context.Context,
	callerID uuid.UUID,
	bookID uuid.UUID,
	grade float64,
) (*model.Book, error) {
	// Step 1: Bounds check before touching storage
	if !model.ValidGrade(grade) {
		return nil, model.ErrInvalidGrade
	}

	// Step 2: Load the book
	book, err := s.repo.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	// Step 3: One rating per user
	if book.RatedBy(callerID) {
		return nil, model.ErrAlreadyRated
	}

	// Step 4: Append and recompute
	book.Ratings = append(book.Ratings, model.Rating{UserID: callerID, Grade: grade})
	book.AverageRating = model.NextAverage(book.AverageRating, len(book.Ratings), grade)

	// Step 5: Persist and return the updated book
	if err := s.repo.Update(ctx, book); err != nil {
		return nil, err
	}

	return book, nil
}

// =====================================================
// READS
// =====================================================

func (s *bookService) ListBooks(ctx context.Context) ([]model.Book, error) {
	return s.repo.List(ctx)
}

// TopRatedBooks returns the best three books; an empty catalog is an
// error on this route, not an empty array.
func (s *bookService) TopRatedBooks(ctx context.Context) ([]model.Book, error) {
	books, err := s.repo.ListTopRated(ctx, 3)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, model.ErrNoBooks
	}
	return books, nil
}

func (s *bookService) GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return s.repo.GetByID(ctx, id)
}

// =====================================================
// UPDATE BOOK
// =====================================================

// UpdateBook merges the provided metadata into the caller's book. When
// a new cover arrives it replaces the stored one and the old object's
// deletion is scheduled; that cleanup failing never fails the update.
func (s *bookService) UpdateBook(
	ctx context.Context,
	callerID uuid.UUID,
	id uuid.UUID,
	req model.UpdateBookRequest,
	image *model.ImageUpload,
) error {
	// Step 1: Validate the partial payload
	if err := req.Validate(); err != nil {
		return err
	}

	// Step 2: Load and authorize
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if book.OwnerID != callerID {
		return model.ErrNotOwner
	}

	// Step 3: Merge metadata; owner, ratings and average stay untouched
	req.ApplyTo(book)

	// Step 4: Swap the cover when a new one was uploaded
	if image != nil && len(image.Data) > 0 {
		key := fmt.Sprintf("covers/%s%s", uuid.New().String(), path.Ext(image.Filename))
		imageURL, err := s.images.Upload(ctx, key, image.Data, image.ContentType)
		if err != nil {
			return fmt.Errorf("failed to store cover image: %w", err)
		}

		oldKey := s.images.KeyFromURL(book.ImageURL)
		book.ImageURL = imageURL
		s.scheduleImageDelete(ctx, oldKey)
	}

	// Step 5: Persist under the same id
	return s.repo.Update(ctx, book)
}

// =====================================================
// DELETE BOOK
// =====================================================

// DeleteBook removes the caller's book and schedules removal of its
// cover image.
func (s *bookService) DeleteBook(ctx context.Context, callerID uuid.UUID, id uuid.UUID) error {
	// Step 1: Load and authorize
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if book.OwnerID != callerID {
		return model.ErrNotOwner
	}

	// Step 2: Best-effort cover cleanup, then the authoritative delete
	s.scheduleImageDelete(ctx, s.images.KeyFromURL(book.ImageURL))

	return s.repo.Delete(ctx, id)
}

// scheduleImageDelete enqueues cover removal. Errors are logged and
// swallowed: cleanup must never block a book mutation.
func (s *bookService) scheduleImageDelete(ctx context.Context, key string) {
	if key == "" {
		return
	}

	if err := s.cleaner.EnqueueImageDelete(ctx, key); err != nil {
		logger.Warn("failed to schedule cover image deletion", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}
