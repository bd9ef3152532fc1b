package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"grimoire-backend/internal/domains/user"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUserService struct {
	signupErr error
	loginResp *user.LoginResponse
	loginErr  error
}

func (f *fakeUserService) Signup(ctx context.Context, req user.SignupRequest) error {
	return f.signupErr
}

func (f *fakeUserService) Login(ctx context.Context, req user.LoginRequest) (*user.LoginResponse, error) {
	return f.loginResp, f.loginErr
}

func setupRouter(svc user.Service) *gin.Engine {
	h := NewUserHandler(svc)

	router := gin.New()
	auth := router.Group("/api/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
	}
	return router
}

func post(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestSignup(t *testing.T) {
	t.Run("success answers 201", func(t *testing.T) {
		router := setupRouter(&fakeUserService{})

		w := post(router, "/api/auth/signup", `{"email": "reader@example.com", "password": "s3cretpass"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("duplicate email answers 409", func(t *testing.T) {
		router := setupRouter(&fakeUserService{signupErr: user.ErrEmailAlreadyExists})

		w := post(router, "/api/auth/signup", `{"email": "reader@example.com", "password": "s3cretpass"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("validation failure answers 400", func(t *testing.T) {
		router := setupRouter(&fakeUserService{signupErr: user.SignupRequest{}.Validate()})

		w := post(router, "/api/auth/signup", `{"email": "", "password": ""}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body answers 400", func(t *testing.T) {
		router := setupRouter(&fakeUserService{})

		w := post(router, "/api/auth/signup", `{not json`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLogin(t *testing.T) {
	t.Run("success answers 200 with userId and token", func(t *testing.T) {
		router := setupRouter(&fakeUserService{
			loginResp: &user.LoginResponse{UserID: "42", Token: "signed-token"},
		})

		w := post(router, "/api/auth/login", `{"email": "reader@example.com", "password": "s3cretpass"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"userId":"42"`)
		assert.Contains(t, w.Body.String(), `"token":"signed-token"`)
	})

	t.Run("bad credentials answer 401", func(t *testing.T) {
		router := setupRouter(&fakeUserService{loginErr: user.ErrInvalidCredentials})

		w := post(router, "/api/auth/login", `{"email": "reader@example.com", "password": "wrongpass1"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
