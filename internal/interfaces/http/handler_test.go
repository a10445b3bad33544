package http

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"infobot/internal/repository"
	"infobot/internal/usecases"
)

func newTestServer(t *testing.T) (*gin.Engine, *repository.CreditLedger) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	stmts := []string{
		`CREATE TABLE users (user_id INTEGER PRIMARY KEY, credits INTEGER DEFAULT 5)`,
		`CREATE TABLE history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER, query TEXT, category TEXT,
			ts DATETIME DEFAULT CURRENT_TIMESTAMP)`,
		`CREATE TABLE daily_credits (user_id INTEGER PRIMARY KEY, last_credit_date DATE)`,
		`CREATE TABLE blocked_users (
			user_id INTEGER PRIMARY KEY, blocked_by INTEGER, reason TEXT,
			blocked_at DATETIME DEFAULT CURRENT_TIMESTAMP)`,
		`CREATE TABLE special_users (user_id INTEGER PRIMARY KEY, label TEXT)`,
	}
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	special, err := repository.NewSpecialUsers(db)
	require.NoError(t, err)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ledger := repository.NewCreditLedger(db, special, log)

	auth, err := usecases.NewAuthUsecase(1, "secret-pass", "test-jwt-secret")
	require.NoError(t, err)

	r := gin.New()
	SetupRoutes(r, ledger, auth, NewMiddleware(auth))
	return r, ledger
}

func login(t *testing.T, r *gin.Engine) string {
	t.Helper()

	body, _ := json.Marshal(gin.H{"password": "secret-pass"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestKeepalive(t *testing.T) {
	r, _ := newTestServer(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bot is running!", w.Body.String())
}

func TestLoginWrongPassword(t *testing.T) {
	r, _ := newTestServer(t)

	body, _ := json.Marshal(gin.H{"password": "wrong"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r, _ := newTestServer(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNonAdminRoleRejected(t *testing.T) {
	r, _ := newTestServer(t)

	// Well-formed and correctly signed, but not an admin token.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": int64(2),
		"role":    "viewer",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-jwt-secret"))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetAllUsers(t *testing.T) {
	r, ledger := newTestServer(t)
	require.NoError(t, ledger.EnsureUser(10))
	require.NoError(t, ledger.EnsureUser(20))

	token := login(t, r)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Total int `json:"total"`
		Users []struct {
			UserID  int64 `json:"user_id"`
			Credits int   `json:"credits"`
		} `json:"users"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Users, 2)
	assert.Equal(t, int64(10), resp.Users[0].UserID)
	assert.Equal(t, 5, resp.Users[0].Credits)
}

func TestAdjustCreditsEndpoint(t *testing.T) {
	r, ledger := newTestServer(t)
	token := login(t, r)

	body, _ := json.Marshal(gin.H{"delta": 10})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/users/42/credits", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Credits int `json:"credits"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 15, resp.Credits, "default 5 plus 10")

	balance, err := ledger.GetBalance(42)
	require.NoError(t, err)
	assert.Equal(t, 15, balance)
}

func TestGetUserHistoryEndpoint(t *testing.T) {
	r, ledger := newTestServer(t)
	ledger.RecordHistory(7, "110001", "PINCODE")
	ledger.RecordHistory(7, "MH01AB1234", "VEHICLE")

	token := login(t, r)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users/7/history?limit=1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		History []struct {
			Query    string `json:"query"`
			Category string `json:"category"`
		} `json:"history"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.History, 1)
	assert.Equal(t, "MH01AB1234", resp.History[0].Query, "most recent first")
}

func TestGetBlockedUsersEndpoint(t *testing.T) {
	r, ledger := newTestServer(t)
	require.NoError(t, ledger.EnsureUser(99))
	ok, err := ledger.Block(99, 1, "abuse")
	require.NoError(t, err)
	require.True(t, ok)

	token := login(t, r)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/blocked", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Total   int `json:"total"`
		Blocked []struct {
			UserID int64  `json:"user_id"`
			Reason string `json:"reason"`
		} `json:"blocked"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Blocked, 1)
	assert.Equal(t, int64(99), resp.Blocked[0].UserID)
	assert.Equal(t, "abuse", resp.Blocked[0].Reason)
}
