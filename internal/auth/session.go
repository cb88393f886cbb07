// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kozyri-game/kozyri-server/internal/models"
)

// Seat tokens carry the verified identity the core consumes: an opaque seat id ("sub")
// and a display name ("name"). The game core itself never inspects credentials.

var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// tokenTTL is how long issued seat tokens live (0 => no expiry claim).
	tokenTTL time.Duration
)

// Init generates a fresh ed25519 key pair at runtime and reads TOKEN_EXPIRE_TIME.
// Tokens issued before a restart do not survive it; seats are ephemeral anyway.
func Init() {
	var err error
	publicKey, privateKey, err = ed25519.GenerateKey(nil)
	if err != nil {
		fmt.Printf("failed to generate ed25519 key pair: %v\n", err)
		os.Exit(1)
	}
	parseTokenTTL()
}

// InitFromPath reads ed25519 private/public keys from files instead.
func InitFromPath(privatePath, publicPath string) error {
	priv, err := os.ReadFile(privatePath)
	if err != nil {
		return fmt.Errorf("failed to read private key file: %w", err)
	}
	pub, err := os.ReadFile(publicPath)
	if err != nil {
		return fmt.Errorf("failed to read public key file: %w", err)
	}
	privateKey = ed25519.PrivateKey(priv)
	publicKey = ed25519.PublicKey(pub)
	parseTokenTTL()
	return nil
}

func parseTokenTTL() {
	raw := os.Getenv("TOKEN_EXPIRE_TIME")
	if raw == "" || raw == "never" || raw == "0" {
		tokenTTL = 0
		return
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		fmt.Printf("failed to parse token expire time: %v\n", err)
		os.Exit(1)
	}
	tokenTTL = d
}

// CreateSeatToken signs a token for the given seat identity.
func CreateSeatToken(seat models.SeatIdentity) (string, error) {
	claims := jwt.MapClaims{
		"sub":  seat.ID.String(),
		"name": seat.Name,
	}
	if tokenTTL > 0 {
		claims["exp"] = time.Now().Add(tokenTTL).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// AuthenticateSeatToken verifies a token string and returns the seat identity in it.
func AuthenticateSeatToken(tokenString string) (models.SeatIdentity, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return models.SeatIdentity{}, fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return models.SeatIdentity{}, fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return models.SeatIdentity{}, fmt.Errorf("invalid jwt claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return models.SeatIdentity{}, fmt.Errorf("missing sub in jwt")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return models.SeatIdentity{}, fmt.Errorf("malformed seat id in jwt: %w", err)
	}
	name, _ := claims["name"].(string)
	return models.SeatIdentity{ID: id, Name: name}, nil
}
