package auth

import (
	"errors"
	"testing"
	"time"

	apperrors "homeservice-booking/pkg/errors"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, err := m.Issue("user-1", "customer")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Sub != "user-1" || claims.Role != "customer" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestVerifyRejects(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	expired := NewTokenManager("secret", -time.Minute)
	other := NewTokenManager("other", time.Hour)

	expiredToken, _ := expired.Issue("user-1", "worker")
	foreignToken, _ := other.Issue("user-1", "worker")

	tests := map[string]string{
		"garbage":      "not-a-token",
		"expired":      expiredToken,
		"wrong secret": foreignToken,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.Verify(token)
			if !errors.Is(err, apperrors.ErrUnauthorized) {
				t.Fatalf("Verify() error = %v, want ErrUnauthorized", err)
			}
		})
	}
}
