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
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/giron-dev/giron-api/internal/models"
	"github.com/giron-dev/giron-api/internal/repository"
	"github.com/giron-dev/giron-api/internal/service"
	"github.com/giron-dev/giron-api/pkg/response"
	"github.com/giron-dev/giron-api/pkg/token"
)

type fakeUserRepo struct {
	user *models.User
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.user == nil || f.user.Username != username {
		return nil, sql.ErrNoRows
	}
	return f.user, nil
}

func (f *fakeUserRepo) ConsumeRecoveryCode(ctx context.Context, userID, codeHash string) (bool, error) {
	return false, nil
}

func newTestSessionHandler(t *testing.T) *SessionHandler {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ngPass!"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &fakeUserRepo{user: &models.User{ID: "u1", Username: "alice", PasswordHash: string(hash), Role: models.RoleUser}}

	keys, err := token.NewKeyring("handler-access-secret", "handler-refresh-secret")
	require.NoError(t, err)

	svc := service.NewSessionService(
		service.NewCredentialValidator(repo, zap.NewNop()),
		repo,
		repository.NewMemoryRevocationLog(),
		token.NewCodec("giron-test", "giron-test"),
		keys,
		validator.New(),
		zap.NewNop(),
		nil,
		service.SessionConfig{AccessTokenExpiry: 15 * time.Minute, RefreshTokenExpiry: 4 * time.Hour},
	)
	return NewSessionHandler(svc)
}

func doJSON(t *testing.T, fn gin.HandlerFunc, method string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, "/sessions", bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	fn(c)
	// Flush gin's buffered status; the engine normally does this after the
	// handler chain, but we invoke the handler directly.
	c.Writer.WriteHeaderNow()
	return rec
}

func decodeTokenPair(t *testing.T, rec *httptest.ResponseRecorder) models.TokenPair {
	t.Helper()
	var envelope struct {
		Data models.TokenPair `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestSessionHandlerCreate(t *testing.T) {
	h := newTestSessionHandler(t)

	rec := doJSON(t, h.Create, http.MethodPost, models.SessionCreateRequest{Username: "alice", Password: "Str0ngPass!"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	pair := decodeTokenPair(t, rec)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestSessionHandlerCreateBadCredentials(t *testing.T) {
	h := newTestSessionHandler(t)

	rec := doJSON(t, h.Create, http.MethodPost, models.SessionCreateRequest{Username: "alice", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INVALID_CREDENTIALS", envelope.Error.Code)
}

func TestSessionHandlerRefresh(t *testing.T) {
	h := newTestSessionHandler(t)

	created := doJSON(t, h.Create, http.MethodPost, models.SessionCreateRequest{Username: "alice", Password: "Str0ngPass!"})
	require.Equal(t, http.StatusCreated, created.Code)
	pair := decodeTokenPair(t, created)

	rec := doJSON(t, h.Refresh, http.MethodPatch, models.RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.Equal(t, http.StatusOK, rec.Code)

	refreshed := decodeTokenPair(t, rec)
	assert.Equal(t, pair.RefreshToken, refreshed.RefreshToken)
	assert.NotEmpty(t, refreshed.AccessToken)
}

func TestSessionHandlerEndThenRefreshFails(t *testing.T) {
	h := newTestSessionHandler(t)

	created := doJSON(t, h.Create, http.MethodPost, models.SessionCreateRequest{Username: "alice", Password: "Str0ngPass!"})
	require.Equal(t, http.StatusCreated, created.Code)
	pair := decodeTokenPair(t, created)

	ended := doJSON(t, h.End, http.MethodDelete, models.RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.Equal(t, http.StatusNoContent, ended.Code)

	rec := doJSON(t, h.Refresh, http.MethodPatch, models.RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionHandlerRejectsMissingBody(t *testing.T) {
	h := newTestSessionHandler(t)

	rec := doJSON(t, h.Refresh, http.MethodPatch, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
