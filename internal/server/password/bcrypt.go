package password

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/cakelibrary/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt only looks at the first 72 bytes; longer passwords are rejected.
const bcryptMaxPassword = 72

type bcryptScheme struct {
	cost int
}

func newBcrypt(cost int) (*bcryptScheme, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &bcryptScheme{cost: cost}, nil
}

func (b *bcryptScheme) owns(digest string) bool {
	return strings.HasPrefix(digest, "$2")
}

func (b *bcryptScheme) Hash(plaintext string) (string, error) {
	if len(plaintext) > bcryptMaxPassword {
		return "", fmt.Errorf("password longer than %d bytes", bcryptMaxPassword)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b *bcryptScheme) Verify(plaintext, digest string) (bool, error) {
	// Cost parses the digest without running the hash.
	if _, err := bcrypt.Cost([]byte(digest)); err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrHashFormat, err)
	}
	if len(plaintext) > bcryptMaxPassword {
		return false, nil
	}

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", common.ErrHashFormat, err)
	}
}
