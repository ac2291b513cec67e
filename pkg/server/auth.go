package server

import (
	"crypto/rsa"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"podcast-rag/pkg/logger"
)

// Token claims expected from clients.
const (
	TokenIssuer   = "urn:notpatrick:client"
	TokenAudience = "urn:notpatrick:server"
)

// LoadPublicKey reads an RSA public key in PEM form. A missing file returns
// (nil, nil): the server then runs without authentication, which is the
// expected state in local development.
func LoadPublicKey(path string, log *logger.Logger) (*rsa.PublicKey, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.WithField("path", path).Warn("public key not found, running without authentication")
			return nil, nil
		}
		return nil, fmt.Errorf("read public key: %w", err)
	}

	key, err := jwt.ParseRSAPublicKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	log.WithField("path", path).Info("bearer token authentication enabled")
	return key, nil
}

// AuthBearer validates RS256 bearer tokens signed for this server.
func AuthBearer(key *rsa.PublicKey) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization scheme"})
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(header, prefix))
		_, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			return key, nil
		},
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(TokenIssuer),
			jwt.WithAudience(TokenAudience),
		)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Next()
	}
}
