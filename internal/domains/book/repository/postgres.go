package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"grimoire-backend/internal/domains/book/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates the pgx-backed book repository.
func NewPostgresRepository(pool *pgxpool.Pool) BookRepository {
	return &postgresRepository{pool: pool}
}

const bookColumns = `
	id, owner_id, title, author, year, genre,
	image_url, ratings, average_rating,
	created_at, updated_at
`

// Create inserts the book; id and timestamps come back from the database.
func (r *postgresRepository) Create(ctx context.Context, book *model.Book) error {
	ratings, err := json.Marshal(book.Ratings)
	if err != nil {
		return fmt.Errorf("marshal ratings: %w", err)
	}

	query := `
        INSERT INTO books (
            owner_id, title, author, year, genre,
            image_url, ratings, average_rating
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at
    `

	err = r.pool.QueryRow(
		ctx, query,
		book.OwnerID,
		book.Title,
		book.Author,
		book.Year,
		book.Genre,
		book.ImageURL,
		ratings,
		book.AverageRating,
	).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	book, err := scanBook(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	return book, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	return collectBooks(rows)
}

func (r *postgresRepository) ListTopRated(ctx context.Context, limit int) ([]model.Book, error) {
	query := `
        SELECT ` + bookColumns + `
        FROM books
        ORDER BY average_rating DESC, created_at ASC
        LIMIT $1
    `

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top rated books: %w", err)
	}
	defer rows.Close()

	return collectBooks(rows)
}

// Update rewrites every mutable column; owner_id and created_at stay as
// they were at creation.
func (r *postgresRepository) Update(ctx context.Context, book *model.Book) error {
	ratings, err := json.Marshal(book.Ratings)
	if err != nil {
		return fmt.Errorf("marshal ratings: %w", err)
	}

	query := `
        UPDATE books SET
            title = $1,
            author = $2,
            year = $3,
            genre = $4,
            image_url = $5,
            ratings = $6,
            average_rating = $7,
            updated_at = NOW()
        WHERE id = $8
    `

	tag, err := r.pool.Exec(
		ctx, query,
		book.Title,
		book.Author,
		book.Year,
		book.Genre,
		book.ImageURL,
		ratings,
		book.AverageRating,
		book.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM books WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}

	return nil
}

// scanBook reads one row into a Book, unpacking the ratings JSONB column.
func scanBook(row pgx.Row) (*model.Book, error) {
	book := &model.Book{}
	var ratings []byte

	err := row.Scan(
		&book.ID,
		&book.OwnerID,
		&book.Title,
		&book.Author,
		&book.Year,
		&book.Genre,
		&book.ImageURL,
		&ratings,
		&book.AverageRating,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(ratings, &book.Ratings); err != nil {
		return nil, fmt.Errorf("unmarshal ratings: %w", err)
	}

	return book, nil
}

func collectBooks(rows pgx.Rows) ([]model.Book, error) {
	books := []model.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, *book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}

	return books, nil
}
