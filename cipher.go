package pep1

import (
	"fmt"

	"golang.org/x/crypto/twofish"
)

// blockCipher is the BlockCipher collaborator from SPEC_FULL.md §6: a
// fixed-key 128-bit block cipher exposing key-schedule plus in-place
// encrypt/decrypt over 16-byte blocks. Twofish-128 is the only supported
// primitive; PEP1 does not negotiate algorithms.
type blockCipher struct {
	c *twofish.Cipher
}

// newBlockCipher installs a key schedule for the given 16-byte key.
func newBlockCipher(key []byte) (*blockCipher, error) {
	if len(key) != KeySize {
		return nil, newValidationError("key", fmt.Sprintf("must be %d bytes, got %d", KeySize, len(key)))
	}
	c, err := twofish.NewCipher(key)
	if err != nil {
		return nil, newValidationError("key", fmt.Sprintf("invalid twofish key: %v", err))
	}
	return &blockCipher{c: c}, nil
}

// encryptBlock encrypts exactly one 16-byte block in place.
func (b *blockCipher) encryptBlock(buf []byte) {
	b.c.Encrypt(buf, buf)
}

// decryptBlock decrypts exactly one 16-byte block in place.
func (b *blockCipher) decryptBlock(buf []byte) {
	b.c.Decrypt(buf, buf)
}

// xorBlock XORs src into dst in place, dst and src both BlockSize bytes.
func xorBlock(dst, src []byte) {
	for i := 0; i < BlockSize; i++ {
		dst[i] ^= src[i]
	}
}
