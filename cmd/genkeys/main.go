package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"podcast-rag/pkg/logger"
	"podcast-rag/pkg/server"
)

// Generates the RSA key pair for the query server's bearer authentication
// and prints a signed token a client can use right away.
func main() {
	var (
		privatePath = flag.String("private", "private_key.pem", "Where to write the private key")
		publicPath  = flag.String("public", "public_key.pem", "Where to write the public key")
		tokenTTL    = flag.Duration("ttl", 24*time.Hour, "Lifetime of the sample token")
	)
	flag.Parse()

	log := logger.New()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		log.Fatalf("Failed to generate key pair: %v", err)
	}

	privateDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		log.Fatalf("Failed to encode private key: %v", err)
	}
	privatePEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privateDER})
	if err := os.WriteFile(*privatePath, privatePEM, 0o600); err != nil {
		log.Fatalf("Failed to write %s: %v", *privatePath, err)
	}

	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		log.Fatalf("Failed to encode public key: %v", err)
	}
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER})
	if err := os.WriteFile(*publicPath, publicPEM, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", *publicPath, err)
	}

	log.WithField("private", *privatePath).WithField("public", *publicPath).Info("key pair written")

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Issuer:    server.TokenIssuer,
		Audience:  jwt.ClaimStrings{server.TokenAudience},
		Subject:   "query-client",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(*tokenTTL)),
	})
	signed, err := token.SignedString(key)
	if err != nil {
		log.Fatalf("Failed to sign sample token: %v", err)
	}

	fmt.Println("Sample bearer token:")
	fmt.Println(signed)
}
