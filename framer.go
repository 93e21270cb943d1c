package pep1

import (
	"crypto/rand"
	"encoding/binary"
)

// plaintextMetaBlock builds the 16 unencrypted bytes of the meta block
// (SPEC_FULL.md §4.1, offsets [4..20) before encryption): auth_id,
// payload_size, a 31-bit nonce with its MSB cleared, and the CRC over the
// first 12 of those bytes.
func plaintextMetaBlock(authID, payloadSize uint32) ([BlockSize]byte, error) {
	var blk [BlockSize]byte

	nonce, err := randomUint32()
	if err != nil {
		return blk, err
	}
	nonce &^= 1 << 31 // clear reserved MSB

	binary.LittleEndian.PutUint32(blk[0:4], authID)
	binary.LittleEndian.PutUint32(blk[4:8], payloadSize)
	binary.LittleEndian.PutUint32(blk[8:12], nonce)

	var crc crc32Accumulator
	crc.append(blk[0:12])
	binary.LittleEndian.PutUint32(blk[12:16], crc.finalize())

	return blk, nil
}

// plaintextIvBlock builds the 16 unencrypted bytes of the IV block
// (SPEC_FULL.md §4.1, offsets [20..36) before encryption): the pad length
// followed by 15 random bytes.
func plaintextIvBlock(pad uint8) ([BlockSize]byte, error) {
	var blk [BlockSize]byte
	blk[0] = pad
	if _, err := rand.Read(blk[1:]); err != nil {
		return blk, err
	}
	return blk, nil
}

// binary32LE writes v into buf (which must be 4 bytes) in little-endian order.
func binary32LE(buf []byte, v uint32) {
	binary.LittleEndian.PutUint32(buf, v)
}

func randomUint32() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// decodedMetaBlock is the parsed, decrypted contents of the meta block.
type decodedMetaBlock struct {
	AuthID      uint32
	PayloadSize uint32
	Nonce       uint32
}

// parseMetaBlock extracts fields from a decrypted 16-byte meta block without
// validating the CRC or the nonce's reserved bit; callers validate those
// separately per SPEC_FULL.md §4.3.
func parseMetaBlock(blk []byte) decodedMetaBlock {
	return decodedMetaBlock{
		AuthID:      binary.LittleEndian.Uint32(blk[0:4]),
		PayloadSize: binary.LittleEndian.Uint32(blk[4:8]),
		Nonce:       binary.LittleEndian.Uint32(blk[8:12]),
	}
}
