// Package password hashes and verifies user passwords. New digests use the
// configured scheme; Verify accepts digests of any supported scheme, which it
// recognizes by prefix.
package password

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/cakelibrary/internal/common"
)

// Supported schemes.
const (
	SchemeBcrypt   = "bcrypt"
	SchemeArgon2id = "argon2id"
)

// Hasher produces salted one-way digests and verifies plaintexts against them.
type Hasher interface {
	// Hash returns a new digest of plaintext with a fresh salt.
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches digest. A digest that cannot
	// be parsed yields common.ErrHashFormat.
	Verify(plaintext, digest string) (bool, error)
}

type scheme interface {
	Hasher
	owns(digest string) bool
}

// Service hashes with one scheme and verifies with all of them.
type Service struct {
	primary scheme
	all     []scheme
}

// New returns a Service hashing with the named scheme. bcryptCost is ignored
// for argon2id; zero means bcrypt's default cost.
func New(name string, bcryptCost int) (*Service, error) {
	b, err := newBcrypt(bcryptCost)
	if err != nil {
		return nil, err
	}
	a := newArgon2id()

	s := &Service{all: []scheme{b, a}}
	switch strings.ToLower(name) {
	case SchemeBcrypt, "":
		s.primary = b
	case SchemeArgon2id:
		s.primary = a
	default:
		return nil, fmt.Errorf("unknown password scheme %q", name)
	}
	return s, nil
}

func (s *Service) Hash(plaintext string) (string, error) {
	return s.primary.Hash(plaintext)
}

func (s *Service) Verify(plaintext, digest string) (bool, error) {
	for _, sc := range s.all {
		if sc.owns(digest) {
			return sc.Verify(plaintext, digest)
		}
	}
	return false, fmt.Errorf("%w: unknown scheme", common.ErrHashFormat)
}
