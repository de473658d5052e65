package password

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/cakelibrary/internal/common"
	"golang.org/x/crypto/argon2"
)

const argon2Prefix = "$argon2id$"

// argon2id parameters, encoded in every digest so they can change later.
type argon2Scheme struct {
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
	saltLen int
}

func newArgon2id() *argon2Scheme {
	return &argon2Scheme{time: 1, memory: 64 * 1024, threads: 4, keyLen: 32, saltLen: 16}
}

func (a *argon2Scheme) owns(digest string) bool {
	return strings.HasPrefix(digest, argon2Prefix)
}

// Hash returns a PHC string: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>.
func (a *argon2Scheme) Hash(plaintext string) (string, error) {
	salt := common.GenerateRandByteArray(a.saltLen)
	key := argon2.IDKey([]byte(plaintext), salt, a.time, a.memory, a.threads, a.keyLen)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Prefix, argon2.Version, a.memory, a.time, a.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (a *argon2Scheme) Verify(plaintext, digest string) (bool, error) {
	parts := strings.Split(digest, "$")
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, fmt.Errorf("%w: expected 6 fields", common.ErrHashFormat)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, fmt.Errorf("%w: version: %v", common.ErrHashFormat, err)
	}
	if version != argon2.Version {
		return false, fmt.Errorf("%w: unsupported version %d", common.ErrHashFormat, version)
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, fmt.Errorf("%w: params: %v", common.ErrHashFormat, err)
	}
	if memory == 0 || time == 0 || threads == 0 {
		return false, fmt.Errorf("%w: zero cost parameter", common.ErrHashFormat)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return false, fmt.Errorf("%w: salt", common.ErrHashFormat)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false, fmt.Errorf("%w: key", common.ErrHashFormat)
	}

	got := argon2.IDKey([]byte(plaintext), salt, time, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
