package pep1

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// KeyProvider derives a KeySize-byte Twofish key from a passphrase and a
// salt (SPEC_FULL.md §4.6). PEP1's wire format never specifies how
// key_common/key_priv come to exist — that is explicitly out of scope
// (§1) — this is one pluggable way to get from a human-managed secret to
// the two 128-bit keys EncoderInit/DecodeHeader need.
type KeyProvider interface {
	// DeriveKey derives a KeySize-byte key from the given salt.
	DeriveKey(salt []byte) ([]byte, error)
	// GenerateSalt generates a new random salt sized for this provider.
	GenerateSalt() ([]byte, error)
}

// Argon2Params configures Argon2idProvider. Zero values are replaced with
// sensible defaults by NewArgon2idProvider.
type Argon2Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltSize    int
}

// Argon2idProvider implements KeyProvider using Argon2id, the preferred
// derivation strategy (SPEC_FULL.md §4.6).
type Argon2idProvider struct {
	passphrase []byte
	params     Argon2Params
}

// NewArgon2idProvider creates an Argon2id-backed KeyProvider for passphrase.
func NewArgon2idProvider(passphrase []byte, params Argon2Params) *Argon2idProvider {
	if params.Memory == 0 {
		params.Memory = 64 * 1024
	}
	if params.Iterations == 0 {
		params.Iterations = 3
	}
	if params.Parallelism == 0 {
		params.Parallelism = 4
	}
	if params.SaltSize == 0 {
		params.SaltSize = 32
	}
	return &Argon2idProvider{passphrase: passphrase, params: params}
}

// DeriveKey derives a KeySize-byte key from passphrase and salt using Argon2id.
func (p *Argon2idProvider) DeriveKey(salt []byte) ([]byte, error) {
	if len(p.passphrase) == 0 {
		return nil, newValidationError("passphrase", "cannot be empty")
	}
	if len(salt) == 0 {
		return nil, newValidationError("salt", "cannot be empty")
	}
	key := argon2.IDKey(p.passphrase, salt, p.params.Iterations, p.params.Memory, p.params.Parallelism, KeySize)
	return key, nil
}

// GenerateSalt generates a new random salt of the configured size.
func (p *Argon2idProvider) GenerateSalt() ([]byte, error) {
	return randomSalt(p.params.SaltSize)
}

// PBKDF2Params configures PBKDF2Provider.
type PBKDF2Params struct {
	Iterations int
	SaltSize   int
}

// PBKDF2Provider implements KeyProvider using PBKDF2-HMAC-SHA256, kept for
// compatibility with deployments that cannot adopt Argon2id.
type PBKDF2Provider struct {
	passphrase []byte
	params     PBKDF2Params
}

// NewPBKDF2Provider creates a PBKDF2-backed KeyProvider for passphrase.
func NewPBKDF2Provider(passphrase []byte, params PBKDF2Params) *PBKDF2Provider {
	if params.Iterations == 0 {
		params.Iterations = 210000
	}
	if params.SaltSize == 0 {
		params.SaltSize = 32
	}
	return &PBKDF2Provider{passphrase: passphrase, params: params}
}

// DeriveKey derives a KeySize-byte key from passphrase and salt using PBKDF2-HMAC-SHA256.
func (p *PBKDF2Provider) DeriveKey(salt []byte) ([]byte, error) {
	if len(p.passphrase) == 0 {
		return nil, newValidationError("passphrase", "cannot be empty")
	}
	if len(salt) == 0 {
		return nil, newValidationError("salt", "cannot be empty")
	}
	return pbkdf2.Key(p.passphrase, salt, p.params.Iterations, KeySize, sha256.New), nil
}

// GenerateSalt generates a new random salt of the configured size.
func (p *PBKDF2Provider) GenerateSalt() ([]byte, error) {
	return randomSalt(p.params.SaltSize)
}

func randomSalt(size int) ([]byte, error) {
	salt := make([]byte, size)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("pep1: generating salt: %w", err)
	}
	return salt, nil
}

// KeyMaterial holds a derived session key pair. It is never serialized onto
// the wire and exists only for the lifetime of a session.
type KeyMaterial struct {
	Common     []byte
	Priv       []byte
	CommonSalt []byte
	PrivSalt   []byte
}

// DeriveSessionKeys derives key_common from commonProvider and key_priv
// from privProvider, each with a freshly generated salt, and returns both
// ready to pass to EncoderInit/DecodeHeader (SPEC_FULL.md §4.6).
func DeriveSessionKeys(commonProvider, privProvider KeyProvider) (KeyMaterial, error) {
	if commonProvider == nil || privProvider == nil {
		return KeyMaterial{}, ErrNilKeyProvider
	}

	commonSalt, err := commonProvider.GenerateSalt()
	if err != nil {
		return KeyMaterial{}, err
	}
	common, err := commonProvider.DeriveKey(commonSalt)
	if err != nil {
		return KeyMaterial{}, err
	}

	privSalt, err := privProvider.GenerateSalt()
	if err != nil {
		return KeyMaterial{}, err
	}
	priv, err := privProvider.DeriveKey(privSalt)
	if err != nil {
		return KeyMaterial{}, err
	}

	return KeyMaterial{Common: common, Priv: priv, CommonSalt: commonSalt, PrivSalt: privSalt}, nil
}
