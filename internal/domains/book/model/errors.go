package model

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"grimoire-backend/internal/shared/response"
)

var (
	ErrMissingFile  = errors.New("missing cover image file")
	ErrMissingSeed  = errors.New("a book must be created with exactly one seed rating")
	ErrInvalidGrade = errors.New("grade must be between 0 and 5")
	ErrAlreadyRated = errors.New("user already rated this book")
	ErrBookNotFound = errors.New("book not found")
	ErrNotOwner     = errors.New("only the owner may modify this book")
	ErrNoBooks      = errors.New("no books found")
)

// bookErrorMap translates domain errors into HTTP responses. Anything
// not listed here is treated as a storage failure and surfaces as 400,
// matching the API contract.
var bookErrorMap = map[error]struct {
	Status  int
	Title   string
	Message string
}{
	ErrMissingFile: {
		// The create route answers 404 when the upload is absent.
		Status:  http.StatusNotFound,
		Title:   "Missing file",
		Message: "A cover image file is required",
	},
	ErrMissingSeed: {
		Status:  http.StatusBadRequest,
		Title:   "Missing seed rating",
		Message: "A book must be created with exactly one rating",
	},
	ErrInvalidGrade: {
		Status:  http.StatusBadRequest,
		Title:   "Invalid grade",
		Message: "The grade must be between 0 and 5",
	},
	ErrAlreadyRated: {
		Status:  http.StatusBadRequest,
		Title:   "Already rated",
		Message: "You have already rated this book",
	},
	ErrBookNotFound: {
		Status:  http.StatusNotFound,
		Title:   "Book not found",
		Message: "The specified book does not exist",
	},
	ErrNotOwner: {
		Status:  http.StatusForbidden,
		Title:   "Forbidden",
		Message: "Only the owner may modify this book",
	},
}

// HandleBookError writes the response for a failed operation.
// Returns true when err was non-nil and a response has been written.
func HandleBookError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	for sentinel, cfg := range bookErrorMap {
		if errors.Is(err, sentinel) {
			response.ErrorResponse(c, cfg.Status, cfg.Title, cfg.Message)
			return true
		}
	}

	// Payload validation failures echo the field problems back
	var vErrs validation.Errors
	if errors.As(err, &vErrs) {
		response.BadRequest(c, err.Error())
		return true
	}

	log.Error().Err(err).Msg("[BookHandler] storage error")
	response.BadRequest(c, "The operation could not be persisted")
	return true
}
