package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"grimoire-backend/internal/domains/book/model"
	"grimoire-backend/internal/domains/book/service"
	"grimoire-backend/internal/shared/middleware"
	"grimoire-backend/internal/shared/response"
	"grimoire-backend/pkg/cache"
)

// Cache keys and TTLs for the read-heavy routes.
const (
	bestRatingCacheKey = "books:bestrating"
	bookCachePrefix    = "book:"
	readCacheTTL       = 5 * time.Minute
)

// Handler - HTTP layer for the book domain
type Handler struct {
	service service.ServiceInterface
	cache   cache.Cache
}

// NewHandler - Constructor with DI
func NewHandler(service service.ServiceInterface, cache cache.Cache) *Handler {
	return &Handler{
		service: service,
		cache:   cache,
	}
}

// ListBooks - GET /books
func (h *Handler) ListBooks(c *gin.Context) {
	books, err := h.service.ListBooks(c.Request.Context())
	if err != nil {
		// Storage failures on the list route answer 400
		model.HandleBookError(c, err)
		return
	}

	response.Success(c, http.StatusOK, books)
}

// BestRating - GET /books/bestrating
// Returns the top 3 books by average rating. Unlike the other reads,
// a storage failure here answers 500.
func (h *Handler) BestRating(c *gin.Context) {
	ctx := c.Request.Context()

	var cached []model.Book
	if found, err := h.cache.Get(ctx, bestRatingCacheKey, &cached); found {
		response.Success(c, http.StatusOK, cached)
		return
	} else if err != nil {
		log.Warn().Err(err).Str("key", bestRatingCacheKey).Msg("[BookHandler] cache read failed")
	}

	books, err := h.service.TopRatedBooks(ctx)
	if err != nil {
		if err == model.ErrNoBooks {
			response.NotFound(c, "No books found")
			return
		}
		log.Error().Err(err).Msg("[BookHandler] failed to load top rated books")
		response.InternalServerError(c, "Failed to load top rated books")
		return
	}

	if err := h.cache.Set(ctx, bestRatingCacheKey, books, readCacheTTL); err != nil {
		log.Warn().Err(err).Str("key", bestRatingCacheKey).Msg("[BookHandler] cache write failed")
	}

	response.Success(c, http.StatusOK, books)
}

// GetBook - GET /books/:id
func (h *Handler) GetBook(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		// An unparsable id cannot match any book
		response.NotFound(c, "The specified book does not exist")
		return
	}

	cacheKey := bookCachePrefix + id.String()
	var cached model.Book
	if found, err := h.cache.Get(ctx, cacheKey, &cached); found {
		response.Success(c, http.StatusOK, &cached)
		return
	} else if err != nil {
		log.Warn().Err(err).Str("key", cacheKey).Msg("[BookHandler] cache read failed")
	}

	book, err := h.service.GetBook(ctx, id)
	if model.HandleBookError(c, err) {
		return
	}

	if err := h.cache.Set(ctx, cacheKey, book, readCacheTTL); err != nil {
		log.Warn().Err(err).Str("key", cacheKey).Msg("[BookHandler] cache write failed")
	}

	response.Success(c, http.StatusOK, book)
}

// CreateBook - POST /books (auth, multipart)
// Form fields: "book" = JSON metadata, "image" = cover file.
func (h *Handler) CreateBook(c *gin.Context) {
	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "Missing caller identity")
		return
	}

	// 1. Decode the JSON part
	var req model.CreateBookRequest
	if err := json.Unmarshal([]byte(c.PostForm("book")), &req); err != nil {
		response.BadRequest(c, "The book field must be valid JSON")
		return
	}

	// 2. Read the uploaded cover, if any; the service decides whether
	// its absence is an error
	image, err := readUpload(c)
	if err != nil {
		response.BadRequest(c, "Could not read the uploaded file")
		return
	}

	// 3. Create
	if _, err := h.service.CreateBook(c.Request.Context(), callerID, req, image); err != nil {
		model.HandleBookError(c, err)
		return
	}

	h.invalidate(c, bestRatingCacheKey)

	response.Message(c, http.StatusCreated, "Book recorded successfully")
}

// AddRating - POST /books/:id/rating (auth, JSON {rating})
func (h *Handler) AddRating(c *gin.Context) {
	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "Missing caller identity")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, "The specified book does not exist")
		return
	}

	var req model.RateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request data")
		return
	}

	book, err := h.service.AddRating(c.Request.Context(), callerID, id, req.Rating)
	if err != nil {
		model.HandleBookError(c, err)
		return
	}

	h.invalidate(c, bookCachePrefix+id.String(), bestRatingCacheKey)

	response.Success(c, http.StatusCreated, book)
}

// UpdateBook - PUT /books/:id (auth, multipart with new cover or plain JSON)
func (h *Handler) UpdateBook(c *gin.Context) {
	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "Missing caller identity")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, "The specified book does not exist")
		return
	}

	// With a new cover the metadata rides in the "book" form field,
	// otherwise the body is the JSON payload itself.
	var req model.UpdateBookRequest
	var image *model.ImageUpload

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := json.Unmarshal([]byte(c.PostForm("book")), &req); err != nil {
			response.BadRequest(c, "The book field must be valid JSON")
			return
		}
		image, err = readUpload(c)
		if err != nil {
			response.BadRequest(c, "Could not read the uploaded file")
			return
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request data")
			return
		}
	}

	if err := h.service.UpdateBook(c.Request.Context(), callerID, id, req, image); err != nil {
		model.HandleBookError(c, err)
		return
	}

	h.invalidate(c, bookCachePrefix+id.String(), bestRatingCacheKey)

	response.Message(c, http.StatusOK, "Book updated successfully")
}

// DeleteBook - DELETE /books/:id (auth)
func (h *Handler) DeleteBook(c *gin.Context) {
	callerID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.Unauthorized(c, "Missing caller identity")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, "The specified book does not exist")
		return
	}

	if err := h.service.DeleteBook(c.Request.Context(), callerID, id); err != nil {
		model.HandleBookError(c, err)
		return
	}

	h.invalidate(c, bookCachePrefix+id.String(), bestRatingCacheKey)

	response.Message(c, http.StatusOK, "Book deleted successfully")
}

// readUpload pulls the "image" file out of the multipart form.
// A missing file is not an error here; (nil, nil) lets the service
// apply its own rules.
func readUpload(c *gin.Context) (*model.ImageUpload, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return nil, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &model.ImageUpload{
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// invalidate drops cached reads after a mutation; cache trouble is
// logged, never surfaced.
func (h *Handler) invalidate(c *gin.Context, keys ...string) {
	if err := h.cache.Delete(c.Request.Context(), keys...); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("[BookHandler] cache invalidation failed")
	}
}
