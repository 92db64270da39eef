package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
)

func writeKeyFile(t *testing.T, pub *ecdsa.PublicKey) string {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	path := filepath.Join(t.TempDir(), "jwt.pem")
	if err := os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	return path
}

func signToken(t *testing.T, key *ecdsa.PrivateKey, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestValidateToken(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cfg := testConfig(t, `
jwt:
  enabled: true
  issuer: login
  public_key_file: `+writeKeyFile(t, &priv.PublicKey)+`
redis:
  blacklist_prefix: "blacklist:"
`)
	v, err := NewJWTValidator(context.Background(), cfg, client)
	if err != nil {
		t.Fatalf("validator error: %v", err)
	}

	base := Claims{
		UserID:      42,
		Username:    "ada",
		Permissions: 1,
		Activated:   1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "login",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	editor, err := v.ValidateToken(signToken(t, priv, base))
	if err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
	if editor.ID != "42" || editor.Username != "ada" || !editor.CanEdit() {
		t.Fatalf("unexpected editor %+v", editor)
	}

	wrongIssuer := base
	wrongIssuer.Issuer = "elsewhere"
	if _, err := v.ValidateToken(signToken(t, priv, wrongIssuer)); err == nil {
		t.Fatalf("expected issuer mismatch to fail")
	}

	banned := base
	banned.Activated = -1
	if _, err := v.ValidateToken(signToken(t, priv, banned)); err == nil {
		t.Fatalf("expected banned user to fail")
	}

	expired := base
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	if _, err := v.ValidateToken(signToken(t, priv, expired)); err == nil {
		t.Fatalf("expected expired token to fail")
	}

	mr.Set("blacklist:42", "1")
	if _, err := v.ValidateToken(signToken(t, priv, base)); err == nil {
		t.Fatalf("expected blacklisted user to fail")
	}
}

func TestParsePublicKeyRejectsGarbage(t *testing.T) {
	if _, err := parsePublicKey([]byte("not a key")); err == nil {
		t.Fatalf("expected PEM decode error")
	}
}
