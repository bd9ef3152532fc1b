package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimoire-backend/internal/domains/book/model"
	"grimoire-backend/internal/shared/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// =====================================================
// FAKES
// =====================================================

type fakeService struct {
	book *model.Book
	list []model.Book
	err  error

	createdWith *model.ImageUpload
	ratedWith   float64
	deletedID   uuid.UUID
}

func (f *fakeService) CreateBook(ctx context.Context, callerID uuid.UUID, req model.CreateBookRequest, image *model.ImageUpload) (*model.Book, error) {
	f.createdWith = image
	return f.book, f.err
}

func (f *fakeService) AddRating(ctx context.Context, callerID uuid.UUID, bookID uuid.UUID, grade float64) (*model.Book, error) {
	f.ratedWith = grade
	return f.book, f.err
}

func (f *fakeService) ListBooks(ctx context.Context) ([]model.Book, error) {
	return f.list, f.err
}

func (f *fakeService) TopRatedBooks(ctx context.Context) ([]model.Book, error) {
	return f.list, f.err
}

func (f *fakeService) GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return f.book, f.err
}

func (f *fakeService) UpdateBook(ctx context.Context, callerID uuid.UUID, id uuid.UUID, req model.UpdateBookRequest, image *model.ImageUpload) error {
	return f.err
}

func (f *fakeService) DeleteBook(ctx context.Context, callerID uuid.UUID, id uuid.UUID) error {
	f.deletedID = id
	return f.err
}

// fakeCache is a pass-through cache: always a miss, records deletes.
type fakeCache struct {
	deleted []string
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, keys ...string) error {
	f.deleted = append(f.deleted, keys...)
	return nil
}

func (f *fakeCache) Ping(ctx context.Context) error { return nil }

// =====================================================
// HELPERS
// =====================================================

func setupRouter(svc *fakeService, caller uuid.UUID) (*gin.Engine, *fakeCache) {
	cache := &fakeCache{}
	h := NewHandler(svc, cache)

	router := gin.New()
	books := router.Group("/api/books")
	{
		books.GET("", h.ListBooks)
		books.GET("/bestrating", h.BestRating)
		books.GET("/:id", h.GetBook)

		authed := books.Group("")
		authed.Use(func(c *gin.Context) {
			if caller != uuid.Nil {
				middleware.SetUserID(c, caller)
			}
			c.Next()
		})
		{
			authed.POST("", h.CreateBook)
			authed.POST("/:id/rating", h.AddRating)
			authed.PUT("/:id", h.UpdateBook)
			authed.DELETE("/:id", h.DeleteBook)
		}
	}

	return router, cache
}

func sampleBook(owner uuid.UUID) *model.Book {
	return &model.Book{
		ID:            uuid.New(),
		OwnerID:       owner,
		Title:         "Milwaukee Mission",
		Author:        "Elder Cooper",
		Year:          2021,
		Genre:         "Policier",
		ImageURL:      "http://localhost:9000/grimoire/covers/a.jpg",
		Ratings:       []model.Rating{{UserID: owner, Grade: 4}},
		AverageRating: 4.0,
	}
}

// multipartBody builds a "book" JSON field plus an optional "image" file.
func multipartBody(t *testing.T, payload interface{}, withImage bool) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("book", string(raw)))

	if withImage {
		part, err := writer.CreateFormFile("image", "cover.jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte("jpegdata"))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

// =====================================================
// READS
// =====================================================

func TestListBooks(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		owner := uuid.New()
		svc := &fakeService{list: []model.Book{*sampleBook(owner)}}
		router, _ := setupRouter(svc, uuid.Nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Milwaukee Mission")
	})

	t.Run("storage error answers 400", func(t *testing.T) {
		svc := &fakeService{err: errors.New("connection refused")}
		router, _ := setupRouter(svc, uuid.Nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBestRating(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeService{list: []model.Book{*sampleBook(uuid.New())}}
		router, _ := setupRouter(svc, uuid.Nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/books/bestrating", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("empty catalog answers 404", func(t *testing.T) {
		svc := &fakeService{err: model.ErrNoBooks}
		router, _ := setupRouter(svc, uuid.Nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/books/bestrating", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("storage error answers 500", func(t *testing.T) {
		svc := &fakeService{err: errors.New("connection refused")}
		router, _ := setupRouter(svc, uuid.Nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/books/bestrating", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestGetBook(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		owner := uuid.New()
		book := sampleBook(owner)
		svc := &fakeService{book: book}
		router, _ := setupRouter(svc, uuid.Nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/books/"+book.ID.String(), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), book.ID.String())
	})

	t.Run("unknown id answers 404", func(t *testing.T) {
		svc := &fakeService{err: model.ErrBookNotFound}
		router, _ := setupRouter(svc, uuid.Nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/books/"+uuid.NewString(), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unparsable id answers 404", func(t *testing.T) {
		svc := &fakeService{}
		router, _ := setupRouter(svc, uuid.Nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/books/not-a-uuid", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

// =====================================================
// CREATE
// =====================================================

func TestCreateBook(t *testing.T) {
	caller := uuid.New()

	payload := map[string]interface{}{
		"title":   "Milwaukee Mission",
		"author":  "Elder Cooper",
		"year":    2021,
		"genre":   "Policier",
		"ratings": []map[string]interface{}{{"grade": 4}},
	}

	t.Run("success", func(t *testing.T) {
		svc := &fakeService{book: sampleBook(caller)}
		router, cache := setupRouter(svc, caller)

		body, contentType := multipartBody(t, payload, true)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/books", body)
		req.Header.Set("Content-Type", contentType)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		require.NotNil(t, svc.createdWith)
		assert.Equal(t, "cover.jpg", svc.createdWith.Filename)

		// A successful create invalidates the top-rated cache
		assert.Contains(t, cache.deleted, "books:bestrating")
	})

	t.Run("missing file answers 404", func(t *testing.T) {
		svc := &fakeService{err: model.ErrMissingFile}
		router, _ := setupRouter(svc, caller)

		body, contentType := multipartBody(t, payload, false)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/books", body)
		req.Header.Set("Content-Type", contentType)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("validation failure answers 400 naming the field", func(t *testing.T) {
		svc := &fakeService{err: model.CreateBookRequest{}.Validate()}
		router, _ := setupRouter(svc, caller)

		body, contentType := multipartBody(t, map[string]interface{}{"year": 2021}, true)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/books", body)
		req.Header.Set("Content-Type", contentType)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "title")
		assert.NotContains(t, w.Body.String(), "could not be persisted")
	})

	t.Run("malformed book field answers 400", func(t *testing.T) {
		svc := &fakeService{}
		router, _ := setupRouter(svc, caller)

		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		require.NoError(t, writer.WriteField("book", "{not json"))
		require.NoError(t, writer.Close())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/books", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unauthenticated answers 401", func(t *testing.T) {
		svc := &fakeService{}
		router, _ := setupRouter(svc, uuid.Nil)

		body, contentType := multipartBody(t, payload, true)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/books", body)
		req.Header.Set("Content-Type", contentType)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

// =====================================================
// RATE
// =====================================================

func TestAddRating(t *testing.T) {
	caller := uuid.New()
	book := sampleBook(uuid.New())

	postRating := func(router *gin.Engine, id string, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/books/"+id+"/rating", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("success answers 201 with the updated book", func(t *testing.T) {
		svc := &fakeService{book: book}
		router, cache := setupRouter(svc, caller)

		w := postRating(router, book.ID.String(), `{"rating": 4}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 4.0, svc.ratedWith)
		assert.Contains(t, w.Body.String(), book.ID.String())
		assert.Contains(t, cache.deleted, "book:"+book.ID.String())
	})

	t.Run("duplicate rating answers 400", func(t *testing.T) {
		svc := &fakeService{err: model.ErrAlreadyRated}
		router, _ := setupRouter(svc, caller)

		w := postRating(router, book.ID.String(), `{"rating": 4}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("grade out of bounds answers 400", func(t *testing.T) {
		svc := &fakeService{err: model.ErrInvalidGrade}
		router, _ := setupRouter(svc, caller)

		w := postRating(router, book.ID.String(), `{"rating": 7}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown book answers 404", func(t *testing.T) {
		svc := &fakeService{err: model.ErrBookNotFound}
		router, _ := setupRouter(svc, caller)

		w := postRating(router, uuid.NewString(), `{"rating": 4}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

// =====================================================
// UPDATE / DELETE
// =====================================================

func TestUpdateBook(t *testing.T) {
	caller := uuid.New()
	book := sampleBook(caller)

	t.Run("json body", func(t *testing.T) {
		svc := &fakeService{}
		router, cache := setupRouter(svc, caller)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/books/"+book.ID.String(),
			bytes.NewBufferString(`{"title": "Revised"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, cache.deleted, "book:"+book.ID.String())
	})

	t.Run("multipart body with new cover", func(t *testing.T) {
		svc := &fakeService{}
		router, _ := setupRouter(svc, caller)

		body, contentType := multipartBody(t, map[string]string{"title": "Revised"}, true)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/books/"+book.ID.String(), body)
		req.Header.Set("Content-Type", contentType)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("non-owner answers 403", func(t *testing.T) {
		svc := &fakeService{err: model.ErrNotOwner}
		router, _ := setupRouter(svc, caller)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/books/"+book.ID.String(),
			bytes.NewBufferString(`{"title": "Revised"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestDeleteBook(t *testing.T) {
	caller := uuid.New()
	book := sampleBook(caller)

	deleteBook := func(svc *fakeService, id string) (*httptest.ResponseRecorder, *fakeCache) {
		router, cache := setupRouter(svc, caller)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/books/"+id, nil)
		router.ServeHTTP(w, req)
		return w, cache
	}

	t.Run("success", func(t *testing.T) {
		svc := &fakeService{}
		w, cache := deleteBook(svc, book.ID.String())

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, book.ID, svc.deletedID)
		assert.Contains(t, cache.deleted, "books:bestrating")
	})

	t.Run("non-owner answers 403", func(t *testing.T) {
		svc := &fakeService{err: model.ErrNotOwner}
		w, _ := deleteBook(svc, book.ID.String())

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown book answers 404", func(t *testing.T) {
		svc := &fakeService{err: model.ErrBookNotFound}
		w, _ := deleteBook(svc, uuid.NewString())

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
