package pep1

import "hash/crc32"

// crc32Accumulator is the Crc32 collaborator from SPEC_FULL.md §6: an
// incremental CRC-32/IEEE accumulator over a byte stream. Both the encoder
// and decoder sides must use the same polynomial; the wire format names
// ANSI/IEEE 802.3 CRC-32 explicitly, so this wraps hash/crc32's IEEE table
// rather than pulling in a third-party CRC implementation (see DESIGN.md).
type crc32Accumulator struct {
	acc uint32
}

func newCrc32Accumulator() crc32Accumulator {
	return crc32Accumulator{}
}

func (c *crc32Accumulator) append(b []byte) {
	c.acc = crc32.Update(c.acc, crc32.IEEETable, b)
}

func (c *crc32Accumulator) finalize() uint32 {
	return c.acc
}
