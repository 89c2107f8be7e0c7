package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Hashing parameters tuned for a single-user self-hosted box: 64 MiB,
// three passes, four lanes.
type hashParams struct {
	memory  uint32
	passes  uint32
	lanes   uint8
	saltLen uint32
	keyLen  uint32
}

var defaultHashParams = hashParams{
	memory:  64 * 1024,
	passes:  3,
	lanes:   4,
	saltLen: 16,
	keyLen:  32,
}

// Oversized inputs are rejected before hashing so a request body can't
// burn CPU and memory.
const maxPasswordLength = 1024

// HashPassword derives an Argon2id hash and returns it in the standard
// $argon2id$v=..$m=..,t=..,p=..$salt$hash encoding.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	if len(password) > maxPasswordLength {
		return "", errors.New("password exceeds maximum length")
	}

	p := defaultHashParams
	salt := make([]byte, p.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, p.passes, p.memory, p.lanes, p.keyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.passes, p.lanes,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword reports whether password matches the encoded hash.
// Parameters are read from the hash itself, so stored credentials survive
// future tuning of defaultHashParams. A malformed hash verifies as false
// rather than erroring, to avoid leaking anything about the stored value.
func VerifyPassword(encodedHash, password string) (bool, error) {
	if len(password) > maxPasswordLength {
		return false, nil
	}

	salt, key, p, err := parseEncodedHash(encodedHash)
	if err != nil {
		return false, nil //nolint:nilerr
	}

	candidate := argon2.IDKey([]byte(password), salt, p.passes, p.memory, p.lanes, p.keyLen)

	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

func parseEncodedHash(encoded string) (salt, key []byte, p hashParams, err error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 {
		return nil, nil, p, errors.New("malformed hash")
	}
	if fields[1] != "argon2id" {
		return nil, nil, p, fmt.Errorf("unsupported algorithm %q", fields[1])
	}

	var version int
	if _, err = fmt.Sscanf(fields[2], "v=%d", &version); err != nil {
		return nil, nil, p, fmt.Errorf("parse version: %w", err)
	}
	if version != argon2.Version {
		return nil, nil, p, fmt.Errorf("incompatible argon2 version %d", version)
	}

	if _, err = fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.memory, &p.passes, &p.lanes); err != nil {
		return nil, nil, p, fmt.Errorf("parse parameters: %w", err)
	}

	if salt, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil {
		return nil, nil, p, fmt.Errorf("decode salt: %w", err)
	}
	if key, err = base64.RawStdEncoding.DecodeString(fields[5]); err != nil {
		return nil, nil, p, fmt.Errorf("decode key: %w", err)
	}
	p.keyLen = uint32(len(key)) //nolint:gosec

	return salt, key, p, nil
}
