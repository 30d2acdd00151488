package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/uni-scheduler/timetable-api/internal/dto"
	"github.com/uni-scheduler/timetable-api/internal/middleware"
	"github.com/uni-scheduler/timetable-api/internal/models"
	"github.com/uni-scheduler/timetable-api/internal/service"
)

type userRepoStub struct {
	byEmail map[string]*models.User
}

func (s *userRepoStub) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) FindByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) Create(_ context.Context, user *models.User) error { return nil }

func (s *userRepoStub) UpdatePassword(_ context.Context, _, _ string) error { return nil }

func newAuthHandlerFixture(t *testing.T) *AuthHandler {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &userRepoStub{byEmail: map[string]*models.User{
		"ada@example.com": {
			ID:           "u1",
			Email:        "ada@example.com",
			PasswordHash: string(hash),
			FullName:     "Ada Lovelace",
			Role:         models.RoleScheduler,
			Active:       true,
		},
	}}
	svc := service.NewAuthService(repo, nil, nil, service.AuthConfig{Secret: "test-secret", Expiry: time.Hour})
	return NewAuthHandler(svc)
}

func TestAuthHandlerLoginSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandlerFixture(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.LoginRequest{Email: "ada@example.com", Password: "correct-horse"})
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Login(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.Equal(t, "Bearer", envelope.Data.TokenType)
	assert.Equal(t, "ada@example.com", envelope.Data.User.Email)
}

func TestAuthHandlerLoginInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandlerFixture(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Login(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerLoginWrongPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandlerFixture(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.LoginRequest{Email: "ada@example.com", Password: "wrong-password"})
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandlerFixture(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/auth/me", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Email: "ada@example.com", Role: models.RoleScheduler})

	handler.Me(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.UserResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "u1", envelope.Data.ID)
}

func TestAuthHandlerMeWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAuthHandlerFixture(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/auth/me", nil)
	c.Request = req

	handler.Me(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
