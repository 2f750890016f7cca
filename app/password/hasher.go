// Package password turns plaintext passwords into stored digests and compares them.
package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	AlgorithmBcrypt = "bcrypt"
	AlgorithmSHA256 = "sha256"
)

type Hasher interface {
	Hash(plaintext string) (string, error)
	Matches(digest, plaintext string) bool
}

// New returns the hasher registered for algorithm.
func New(algorithm string) (Hasher, error) {
	switch algorithm {
	case AlgorithmBcrypt, "":
		return NewBcrypt(bcrypt.DefaultCost), nil
	case AlgorithmSHA256:
		return SHA256{}, nil
	default:
		return nil, fmt.Errorf("unsupported password hash algorithm %q", algorithm)
	}
}

type Bcrypt struct {
	cost int
}

func NewBcrypt(cost int) *Bcrypt {
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (b *Bcrypt) Matches(digest, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// SHA256 produces a deterministic 64-character lowercase hex digest.
type SHA256 struct{}

func (SHA256) Hash(plaintext string) (string, error) {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:]), nil
}

func (s SHA256) Matches(digest, plaintext string) bool {
	hashed, _ := s.Hash(plaintext)
	return subtle.ConstantTimeCompare([]byte(hashed), []byte(digest)) == 1
}
