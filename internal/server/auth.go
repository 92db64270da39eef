package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gravitas-games/domino/internal/config"
	"github.com/gravitas-games/domino/pkg/models"
)

var errMissingToken = errors.New("missing token")

// JWTValidator handles JWT token validation
type JWTValidator struct {
	config    *config.Config
	publicKey *ecdsa.PublicKey
	keyMu     sync.RWMutex
	redis     *redis.Client
	ctx       context.Context
}

// Claims represents JWT token claims from the login server
type Claims struct {
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	AuthMethod  string `json:"auth_method"`
	Permissions int64  `json:"permissions"`
	Activated   int64  `json:"activated"`
	jwt.RegisteredClaims
}

// NewJWTValidator creates a new JWT validator. The key is read from
// PublicKeyFile when set, otherwise fetched from PublicKeyURL and refreshed
// until ctx is cancelled. redisClient may be nil, which skips the blacklist.
func NewJWTValidator(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (*JWTValidator, error) {
	validator := &JWTValidator{
		config: cfg,
		redis:  redisClient,
		ctx:    ctx,
	}

	if cfg.JWT.PublicKeyFile != "" {
		data, err := os.ReadFile(cfg.JWT.PublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read public key: %w", err)
		}
		key, err := parsePublicKey(data)
		if err != nil {
			return nil, err
		}
		validator.setKey(key)
	} else {
		if err := validator.RefreshPublicKey(); err != nil {
			return nil, fmt.Errorf("failed to fetch public key: %w", err)
		}
		go validator.periodicKeyRefresh()
	}

	log.Println("JWT validator initialized")
	return validator, nil
}

func (v *JWTValidator) setKey(key *ecdsa.PublicKey) {
	v.keyMu.Lock()
	v.publicKey = key
	v.keyMu.Unlock()
}

// RefreshPublicKey fetches the public key from the login server
func (v *JWTValidator) RefreshPublicKey() error {
	log.Printf("Fetching public key from %s", v.config.JWT.PublicKeyURL)

	req, err := http.NewRequestWithContext(v.ctx, http.MethodGet, v.config.JWT.PublicKeyURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build key request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch public key: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("public key endpoint returned status %d", resp.StatusCode)
	}

	keyData, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read public key: %w", err)
	}

	key, err := parsePublicKey(keyData)
	if err != nil {
		return err
	}
	v.setKey(key)

	log.Println("Public key refreshed successfully")
	return nil
}

// parsePublicKey decodes a PEM-encoded ECDSA public key
func parsePublicKey(data []byte) (*ecdsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	pubKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	ecdsaKey, ok := pubKey.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key is not ECDSA")
	}
	return ecdsaKey, nil
}

// periodicKeyRefresh refreshes the public key until the validator's context ends
func (v *JWTValidator) periodicKeyRefresh() {
	ticker := time.NewTicker(time.Duration(v.config.JWT.PublicKeyRefreshHrs) * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := v.RefreshPublicKey(); err != nil {
				log.Printf("Failed to refresh public key: %v", err)
			}
		case <-v.ctx.Done():
			return
		}
	}
}

// ValidateToken validates a JWT token and returns the editor it identifies
func (v *JWTValidator) ValidateToken(tokenString string) (*models.Editor, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		v.keyMu.RLock()
		defer v.keyMu.RUnlock()
		return v.publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.Issuer != v.config.JWT.Issuer {
		return nil, fmt.Errorf("invalid issuer: expected %s, got %s", v.config.JWT.Issuer, claims.Issuer)
	}

	if claims.Activated == 0 {
		return nil, fmt.Errorf("user not activated")
	}
	userID := strconv.FormatInt(claims.UserID, 10)
	editor := &models.Editor{
		ID:          userID,
		Username:    claims.Username,
		Email:       claims.Email,
		Permissions: claims.Permissions,
		Activated:   claims.Activated,
		AuthMethod:  claims.AuthMethod,
	}
	if editor.IsBanned() {
		return nil, fmt.Errorf("user is banned")
	}

	if v.redis != nil && v.config.Redis.BlacklistPrefix != "" {
		isBlacklisted, err := v.redis.Exists(v.ctx, v.config.Redis.BlacklistPrefix+userID).Result()
		if err != nil {
			// Don't fail authentication if Redis is down
			log.Printf("Warning: Failed to check blacklist: %v", err)
		} else if isBlacklisted > 0 {
			return nil, fmt.Errorf("token is blacklisted")
		}
	}

	return editor, nil
}

// authenticate resolves the editor for a request. Without a validator every
// request is an anonymous editor.
func (s *Server) authenticate(r *http.Request) (*models.Editor, error) {
	if s.jwtValidator == nil {
		return models.Anonymous(uuid.NewString()), nil
	}
	token := extractTokenFromHeader(r)
	if token == "" {
		return nil, errMissingToken
	}
	return s.jwtValidator.ValidateToken(token)
}

// extractTokenFromHeader extracts the JWT token from a request
func extractTokenFromHeader(r *http.Request) string {
	// Sec-WebSocket-Protocol: "access_token, <token>"
	if protocols := r.Header.Get("Sec-WebSocket-Protocol"); protocols != "" {
		parts := strings.Split(protocols, ",")
		if len(parts) == 2 && strings.TrimSpace(parts[0]) == "access_token" {
			return strings.TrimSpace(parts[1])
		}
	}

	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}

	// Query parameter (less secure, but browsers can't set headers on WebSocket)
	return r.URL.Query().Get("token")
}
