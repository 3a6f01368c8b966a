package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestTokenPairRoundTrip проверяет выпуск и разбор пары токенов.
func TestTokenPairRoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret", "household-finance", time.Minute, time.Hour)
	userID := uuid.New()
	refreshID := uuid.New()

	pair, err := manager.NewTokenPair(userID, refreshID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	claims, err := manager.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("expected valid access token, got %v", err)
	}
	if claims.Subject != userID.String() {
		t.Fatalf("expected subject %s, got %s", userID, claims.Subject)
	}

	refreshClaims, err := manager.ParseRefreshToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("expected valid refresh token, got %v", err)
	}
	if refreshClaims.ID != refreshID.String() {
		t.Fatalf("expected token id %s, got %s", refreshID, refreshClaims.ID)
	}
}

// TestTokenTypeMismatch проверяет отказ при подмене типа токена.
func TestTokenTypeMismatch(t *testing.T) {
	manager := NewTokenManager("test-secret", "household-finance", time.Minute, time.Hour)

	pair, err := manager.NewTokenPair(uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := manager.ParseAccessToken(pair.RefreshToken); err == nil {
		t.Fatal("expected error when parsing refresh token as access")
	}
}

// TestCompareTokenHash проверяет сравнение хэша токена.
func TestCompareTokenHash(t *testing.T) {
	hash := HashToken("some-token")

	if !CompareTokenHash(hash, "some-token") {
		t.Fatal("expected hash to match")
	}
	if CompareTokenHash(hash, "other-token") {
		t.Fatal("expected hash mismatch")
	}
}
