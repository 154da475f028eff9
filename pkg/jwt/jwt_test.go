package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestManager_GenerateAndParse(t *testing.T) {
	m := NewManager("test-secret", 5*time.Minute)

	token, expiresAt, err := m.GenerateToken(42, "staff")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if time.Until(expiresAt) > 5*time.Minute {
		t.Fatalf("unexpected expiry %v", expiresAt)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	id, err := claims.UserID()
	if err != nil || id != 42 {
		t.Fatalf("UserID = %d, %v", id, err)
	}
	if claims.Role != "staff" {
		t.Fatalf("Role = %q", claims.Role)
	}
}

func TestManager_RejectsForeignAndExpiredTokens(t *testing.T) {
	m := NewManager("test-secret", time.Minute)

	other := NewManager("other-secret", time.Minute)
	token, _, _ := other.GenerateToken(1, "member")
	if _, err := m.ParseToken(token); err == nil {
		t.Fatal("token signed with another secret must be rejected")
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, _ := expired.SignedString([]byte("test-secret"))
	if _, err := m.ParseToken(signed); err == nil {
		t.Fatal("expired token must be rejected")
	}

	if _, err := m.ParseToken("not-a-token"); err == nil {
		t.Fatal("garbage must be rejected")
	}
}

func TestClaims_UserIDRejectsBadSubject(t *testing.T) {
	for _, sub := range []string{"", "0", "abc"} {
		c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: sub}}
		if _, err := c.UserID(); err == nil {
			t.Fatalf("subject %q should be rejected", sub)
		}
	}
}
