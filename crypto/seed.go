package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const (
	ServerSeedBytes = 32
	ClientSeedBytes = 16
)

// GenerateServerSeed returns a fresh hex encoded server seed and its
// commitment hash.
func GenerateServerSeed() (seed string, hash string, err error) {
	seed, err = randomHex(ServerSeedBytes)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate server seed: %w", err)
	}
	return seed, HashSeed(seed), nil
}

// GenerateClientSeed returns a hex encoded client seed.
func GenerateClientSeed() (string, error) {
	seed, err := randomHex(ClientSeedBytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate client seed: %w", err)
	}
	return seed, nil
}

// HashSeed is the public commitment published before a seed is used.
func HashSeed(seed string) string {
	h := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(h[:])
}

func VerifySeed(seed, hash string) bool {
	return HashSeed(seed) == hash
}

func randomHex(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
