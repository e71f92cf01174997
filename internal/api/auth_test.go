package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signSession(t *testing.T, secret string, clinicID, userID uuid.UUID, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		ClinicID: clinicID.String(),
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestSessionMiddlewarePassesSession(t *testing.T) {
	clinicID := uuid.New()
	userID := uuid.New()

	var seen *Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionFrom(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/professionals", nil)
	req.Header.Set("Authorization", "Bearer "+signSession(t, "s3cret", clinicID, userID, "receptionist"))
	rec := httptest.NewRecorder()

	SessionMiddleware("s3cret")(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, clinicID, seen.ClinicID)
	assert.Equal(t, userID, seen.UserID)
	assert.Equal(t, "receptionist", seen.Role)
}

func TestSessionMiddlewareRejectsMissingToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})

	rec := httptest.NewRecorder()
	SessionMiddleware("s3cret")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/professionals", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionMiddlewareRejectsWrongSecret(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/professionals", nil)
	req.Header.Set("Authorization", "Bearer "+signSession(t, "other-secret", uuid.New(), uuid.New(), "admin"))
	rec := httptest.NewRecorder()

	SessionMiddleware("s3cret")(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJobTokenMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mw := JobTokenMiddleware("job-token")(next)

	req := httptest.NewRequest(http.MethodPost, "/jobs/reminders/24h", nil)
	req.Header.Set("Authorization", "Bearer job-token")
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/jobs/reminders/24h", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	mw.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// An empty configured token never matches, even an empty bearer.
	rec = httptest.NewRecorder()
	JobTokenMiddleware("")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/jobs/reminders/24h", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
