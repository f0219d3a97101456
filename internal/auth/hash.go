package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"

	"github.com/joestump/linkhub/internal/metrics"
)

// Argon2id parameters for new hashes. Verification always uses the
// parameters recorded in the stored string.
const (
	argonMemory      uint32 = 19456 // KiB
	argonIterations  uint32 = 2
	argonParallelism uint8  = 1
	argonSaltLength         = 16
	argonKeyLength   uint32 = 32
)

// ErrCorruptHash is returned when a stored password hash cannot be parsed.
var ErrCorruptHash = errors.New("corrupt password hash")

// HashPassword derives an Argon2id hash of password keyed by secret and
// returns it as a PHC string:
//
//	$argon2id$v=19$m=<memory>,t=<iterations>,p=<parallelism>$<salt>$<hash>
//
// A fresh random salt is used on every call.
func HashPassword(secret, password []byte) (string, error) {
	defer observeHash(time.Now())

	salt := make([]byte, argonSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey(pepper(secret, password), salt, argonIterations, argonMemory, argonParallelism, argonKeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonIterations, argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// VerifyPassword reports whether password, keyed by secret, matches encoded.
// A wrong password or wrong secret yields false with a nil error;
// ErrCorruptHash is returned only when encoded is malformed.
func VerifyPassword(secret, password []byte, encoded string) (bool, error) {
	defer observeHash(time.Now())

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return false, ErrCorruptHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, ErrCorruptHash
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false, ErrCorruptHash
	}
	if memory == 0 || iterations == 0 || parallelism == 0 {
		return false, ErrCorruptHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return false, ErrCorruptHash
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false, ErrCorruptHash
	}

	got := argon2.IDKey(pepper(secret, password), salt, iterations, memory, parallelism, uint32(len(want)))
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

// pepper binds the server secret into the Argon2 input.
func pepper(secret, password []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(password)
	return mac.Sum(nil)
}

func observeHash(start time.Time) {
	metrics.PasswordHashDuration.Observe(time.Since(start).Seconds())
}
