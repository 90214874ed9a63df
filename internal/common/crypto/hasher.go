package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/AlibekovAA/authd/internal/common/constants"
)

// ErrPasswordMismatch is returned by Compare when the password does not
// produce the stored hash.
var ErrPasswordMismatch = errors.New("password does not match hash")

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

type BcryptHasher struct {
	cost int
}

// NewBcryptHasher accepts any cost bcrypt itself accepts. Lower bounds for
// production use are enforced by config.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, oops.Code("HASHER_INVALID_COST").
			With("cost", cost).
			Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{cost: cost}, nil
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", oops.Code("HASHER_BCRYPT_FAILED").Wrap(err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Compare(hash string, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	if err != nil {
		return oops.Code("HASHER_INVALID_HASH").Wrap(err)
	}
	return nil
}

type Argon2Params struct {
	Memory  uint32
	Time    uint32
	Threads uint8
}

func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Memory:  constants.DefaultArgon2Memory,
		Time:    constants.DefaultArgon2Time,
		Threads: constants.DefaultArgon2Threads,
	}
}

// Argon2idHasher encodes hashes in PHC form:
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
type Argon2idHasher struct {
	params Argon2Params
}

func NewArgon2idHasher(params Argon2Params) (*Argon2idHasher, error) {
	if params.Memory == 0 || params.Time == 0 || params.Threads == 0 {
		return nil, oops.Code("HASHER_INVALID_PARAMS").
			With("memory", params.Memory).
			With("time", params.Time).
			With("threads", params.Threads).
			Errorf("argon2id parameters must be positive")
	}
	return &Argon2idHasher{params: params}, nil
}

func (h *Argon2idHasher) Hash(password string) (string, error) {
	salt := make([]byte, constants.Argon2SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("HASHER_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Threads, constants.Argon2KeyLength)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2idHasher) Compare(encodedHash string, password string) error {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return oops.Code("HASHER_INVALID_HASH").Errorf("invalid argon2id hash format")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return oops.Code("HASHER_INVALID_HASH").Wrap(err)
	}
	if version != argon2.Version {
		return oops.Code("HASHER_INVALID_HASH").Errorf("unsupported argon2 version %d", version)
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return oops.Code("HASHER_INVALID_HASH").Wrap(err)
	}
	if threads == 0 || threads > 255 {
		return oops.Code("HASHER_INVALID_HASH").Errorf("threads value %d out of range", threads)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return oops.Code("HASHER_INVALID_HASH").Wrap(err)
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return oops.Code("HASHER_INVALID_HASH").Wrap(err)
	}

	keyLen := len(expected)
	if keyLen == 0 || keyLen > 1<<10 {
		return oops.Code("HASHER_INVALID_HASH").Errorf("invalid hash key length: %d", keyLen)
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, uint8(threads), uint32(keyLen))
	if subtle.ConstantTimeCompare(computed, expected) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

// MultiHasher hashes with its primary hasher and verifies any hash format
// it knows, so switching algorithms keeps existing accounts working.
type MultiHasher struct {
	primary PasswordHasher
	bcrypt  PasswordHasher
	argon2  PasswordHasher
}

func NewMultiHasher(primary PasswordHasher, bcryptHasher PasswordHasher, argon2Hasher PasswordHasher) *MultiHasher {
	return &MultiHasher{
		primary: primary,
		bcrypt:  bcryptHasher,
		argon2:  argon2Hasher,
	}
}

func (h *MultiHasher) Hash(password string) (string, error) {
	return h.primary.Hash(password)
}

func (h *MultiHasher) Compare(hash string, password string) error {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		if h.argon2 == nil {
			return oops.Code("HASHER_UNSUPPORTED").Errorf("argon2id hashes are not supported")
		}
		return h.argon2.Compare(hash, password)
	case strings.HasPrefix(hash, "$2"):
		if h.bcrypt == nil {
			return oops.Code("HASHER_UNSUPPORTED").Errorf("bcrypt hashes are not supported")
		}
		return h.bcrypt.Compare(hash, password)
	default:
		return oops.Code("HASHER_INVALID_HASH").Errorf("unrecognised hash format")
	}
}

// NewHasher builds the hasher for the configured algorithm.
func NewHasher(algorithm string, bcryptCost int, params Argon2Params) (PasswordHasher, error) {
	bcryptHasher, err := NewBcryptHasher(bcryptCost)
	if err != nil {
		return nil, err
	}
	argon2Hasher, err := NewArgon2idHasher(params)
	if err != nil {
		return nil, err
	}

	switch algorithm {
	case "", AlgorithmBcrypt:
		return NewMultiHasher(bcryptHasher, bcryptHasher, argon2Hasher), nil
	case AlgorithmArgon2id:
		return NewMultiHasher(argon2Hasher, bcryptHasher, argon2Hasher), nil
	default:
		return nil, oops.Code("HASHER_UNKNOWN_ALGORITHM").
			With("algorithm", algorithm).
			Errorf("unknown hash algorithm %q", algorithm)
	}
}

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)
