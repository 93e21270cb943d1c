package pep1

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// DecoderState drives a single PEP1 decode session: header verification
// under the common key, followed by payload decryption under the
// per-auth_id private key with a running CRC check at the terminal block
// (SPEC_FULL.md §4.3). As with EncoderState, a single instance must not be
// mutated concurrently, but disjoint instances share no state.
type DecoderState struct {
	AuthID      uint32
	PayloadSize uint32

	pad      uint8
	consumed uint32
	chain    [BlockSize]byte
	crc      crc32Accumulator
	phase    DecoderPhase
	priv     *blockCipher

	// SessionID identifies this session for SessionRegistry bookkeeping; it
	// is not part of the wire format.
	SessionID uuid.UUID
	registry  *SessionRegistry
}

// Phase reports the session's current state.
func (d *DecoderState) Phase() DecoderPhase { return d.phase }

// DecodeHeader is the decode_header operation. dat must hold at least the
// 36-byte prologue of a frame (HeaderSize); only the magic and the encrypted
// meta block, offsets [0..20), are read and checked. On success it
// returns a DecoderState in PhaseNeedIv, with AuthID and PayloadSize
// already populated so the caller can look up key_priv before calling
// DecodeIV. registry may be nil.
func DecodeHeader(dat []byte, keyCommon []byte, registry *SessionRegistry) (*DecoderState, error) {
	if len(dat) < PayloadOffset {
		return nil, ErrShortBuffer
	}
	if string(dat[0:4]) != MagicBytes {
		return nil, newProtocolError(CodeUnknownMagic, "header", "magic bytes do not match \"Pep1\"")
	}

	common, err := newBlockCipher(keyCommon)
	if err != nil {
		return nil, err
	}

	var meta [BlockSize]byte
	copy(meta[:], dat[MetaBlockOffset:MetaBlockOffset+BlockSize])
	common.decryptBlock(meta[:])

	var crc crc32Accumulator
	crc.append(meta[0:12])
	gotCRC := crc.finalize()
	wantCRC := binary.LittleEndian.Uint32(meta[12:16])
	if gotCRC != wantCRC {
		return nil, newProtocolError(CodeCrcMismatch, "header", "header CRC does not match")
	}

	fields := parseMetaBlock(meta[:])
	if fields.Nonce&(1<<31) != 0 {
		return nil, newProtocolError(CodeReservedBitSet, "header", "nonce reserved bit is set")
	}

	st := &DecoderState{
		AuthID:      fields.AuthID,
		PayloadSize: fields.PayloadSize,
		phase:       PhaseNeedIv,
		SessionID:   uuid.New(),
		registry:    registry,
	}
	st.report()
	return st, nil
}

// DecodeIV is the decode_iv operation. dat must hold exactly the 16-byte
// encrypted IV block (offsets [20..36) of the frame).
//
// Per SPEC_FULL.md §4.3, the IV block's 16 decrypted bytes are folded into
// the running CRC accumulator, matching EncoderInit: the CRC trailer covers
// the IV block plus the payload and pad, not the payload and pad alone.
func (d *DecoderState) DecodeIV(dat []byte, keyPriv []byte) error {
	if d.phase != PhaseNeedIv {
		return newValidationError("phase", "DecodeIV called out of order")
	}
	if len(dat) != BlockSize {
		return ErrShortBuffer
	}

	priv, err := newBlockCipher(keyPriv)
	if err != nil {
		d.fail()
		return err
	}

	copy(d.chain[:], dat) // ciphertext, saved before decrypting

	var iv [BlockSize]byte
	copy(iv[:], dat)
	priv.decryptBlock(iv[:])

	pad := iv[0]
	if pad > 15 {
		d.fail()
		return newProtocolError(CodePadOutOfRange, "payload", "pad byte out of range")
	}

	d.pad = pad
	d.priv = priv
	d.consumed = 0
	d.crc = newCrc32Accumulator()
	d.crc.append(iv[:])
	d.phase = PhaseDecodingPayload
	d.report()
	return nil
}

// remainingBeforeCrc is payload_size + pad - consumed: the number of plain
// payload/pad bytes still expected before the CRC trailer begins.
func (d *DecoderState) remainingBeforeCrc() int64 {
	return int64(d.PayloadSize) + int64(d.pad) - int64(d.consumed)
}

// Next is the decode_block operation. dat must be exactly the next 16-byte
// ciphertext block. It returns this block's plaintext contribution (of
// which only the first min(BlockSize, PayloadSize-offset) bytes, for the
// block's offset into the plaintext, are semantically plaintext — the
// remainder is pad or CRC trailer and must be discarded by the caller) and
// the block's decode status.
func (d *DecoderState) Next(dat []byte) ([]byte, DecodeStatus, error) {
	if d.phase != PhaseDecodingPayload {
		return nil, StatusInvalid, newValidationError("phase", "Next called out of order")
	}
	if len(dat) != BlockSize {
		return nil, StatusInvalid, ErrShortBuffer
	}
	if int64(d.consumed) > int64(d.PayloadSize)+int64(d.pad) {
		d.fail()
		return nil, StatusInvalid, newProtocolError(CodeDecodeVerificationFail, "payload", "decoder overrun")
	}

	remaining := d.remainingBeforeCrc()

	prevChain := d.chain
	var ciphertext [BlockSize]byte
	copy(ciphertext[:], dat)
	copy(d.chain[:], dat)

	plain := ciphertext
	d.priv.decryptBlock(plain[:])
	xorBlock(plain[:], prevChain[:])

	if remaining == 12 {
		d.crc.append(plain[0:12])
		got := d.crc.finalize()
		want := binary.LittleEndian.Uint32(plain[12:16])
		d.consumed += BlockSize
		if got != want {
			d.fail()
			return nil, StatusInvalid, newProtocolError(CodeDecodeVerificationFail, "payload", "payload CRC mismatch")
		}
		d.phase = PhaseVerified
		d.report()
		out := make([]byte, BlockSize)
		copy(out, plain[:])
		return out, StatusVerified, nil
	}

	d.crc.append(plain[:])
	d.consumed += BlockSize
	d.report()

	out := make([]byte, BlockSize)
	copy(out, plain[:])
	return out, StatusNeedMore, nil
}

func (d *DecoderState) fail() {
	d.phase = PhaseFailed
	d.report()
}

func (d *DecoderState) report() {
	if d.registry == nil {
		return
	}
	d.registry.update(d.SessionID, SessionRecord{
		ID:             d.SessionID,
		Role:           RoleDecoder,
		Phase:          d.phase.String(),
		AuthID:         d.AuthID,
		BytesProcessed: int(d.consumed),
	})
}
