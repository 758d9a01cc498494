package services

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/e-learning-backend/models"
)

func newSessionFixture() (*SessionService, *clock) {
	clk := newClock()
	svc := NewSessionService(SessionConfig{Secret: []byte("test-secret"), TTL: time.Hour, Issuer: "e-learning"})
	svc.now = clk.now
	return svc, clk
}

func testUser() *models.User {
	return &models.User{
		ID:    uuid.MustParse("7c1d0a38-5a5e-4c66-8f43-6a0c3b0f6f11"),
		Email: "alice@x.com",
		Role:  models.RoleStudent,
	}
}

func TestSessionService_RoundTrip(t *testing.T) {
	svc, clk := newSessionFixture()
	user := testUser()

	token, err := svc.Issue(user)
	require.NoError(t, err)

	clk.advance(59 * time.Minute)
	claims, err := svc.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, "alice@x.com", claims.Email)
	assert.Equal(t, "student", claims.Role)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestSessionService_Expired(t *testing.T) {
	svc, clk := newSessionFixture()

	token, err := svc.Issue(testUser())
	require.NoError(t, err)

	clk.advance(time.Hour + time.Second)
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestSessionService_Tampered(t *testing.T) {
	svc, _ := newSessionFixture()

	token, err := svc.Issue(testUser())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	_, err = svc.Verify(parts[0] + "." + parts[1] + "." + string(sig))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionService_OtherSecret(t *testing.T) {
	svc, clk := newSessionFixture()
	other := NewSessionService(SessionConfig{Secret: []byte("other-secret"), TTL: time.Hour, Issuer: "e-learning"})
	other.now = clk.now

	token, err := other.Issue(testUser())
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionService_RejectsNoneAlg(t *testing.T) {
	svc, clk := newSessionFixture()

	claims := Claims{
		UserID: "x",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "e-learning",
			ExpiresAt: jwt.NewNumericDate(clk.t.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionService_Empty(t *testing.T) {
	svc, _ := newSessionFixture()

	_, err := svc.Verify("")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
