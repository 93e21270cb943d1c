package pep1

import (
	"fmt"

	"github.com/google/uuid"
)

// EncoderState drives a single PEP1 encode session one 16-byte plaintext
// block at a time (SPEC_FULL.md §4.2). It owns no borrowed memory beyond the
// private-key schedule it caches for the life of the session, and it is
// only ever safe to mutate from a single goroutine at a time; disjoint
// EncoderState values may be driven concurrently with no shared state
// (SPEC_FULL.md §5).
type EncoderState struct {
	authID      uint32
	payloadSize uint32
	pad         uint8
	chain       [BlockSize]byte
	crc         crc32Accumulator
	emitted     uint32
	phase       EncoderPhase
	priv        *blockCipher

	// SessionID identifies this session for SessionRegistry bookkeeping; it
	// is not part of the wire format.
	SessionID uuid.UUID
	registry  *SessionRegistry
}

// EncoderInit is the encode_init operation: it validates the keys, builds
// and encrypts the 36-byte prologue (meta block under keyCommon, IV block
// under keyPriv), and returns a ready-to-drive EncoderState alongside that
// prologue. registry may be nil; when non-nil, phase transitions are
// reported to it under SessionID (SPEC_FULL.md §4.8).
func EncoderInit(authID, payloadSize uint32, keyCommon, keyPriv []byte, registry *SessionRegistry) (*EncoderState, []byte, error) {
	common, err := newBlockCipher(keyCommon)
	if err != nil {
		return nil, nil, err
	}
	priv, err := newBlockCipher(keyPriv)
	if err != nil {
		return nil, nil, err
	}

	meta, err := plaintextMetaBlock(authID, payloadSize)
	if err != nil {
		return nil, nil, fmt.Errorf("pep1: generating meta block: %w", err)
	}
	common.encryptBlock(meta[:])

	pad := Pad(payloadSize)
	iv, err := plaintextIvBlock(pad)
	if err != nil {
		return nil, nil, fmt.Errorf("pep1: generating iv block: %w", err)
	}

	crc := newCrc32Accumulator()
	crc.append(iv[:])

	priv.encryptBlock(iv[:])

	header := make([]byte, HeaderSize)
	copy(header[0:4], MagicBytes)
	copy(header[MetaBlockOffset:MetaBlockOffset+BlockSize], meta[:])
	copy(header[IvBlockOffset:IvBlockOffset+BlockSize], iv[:])

	st := &EncoderState{
		authID:      authID,
		payloadSize: payloadSize,
		pad:         pad,
		crc:         crc,
		emitted:     0,
		phase:       PhasePayload,
		priv:        priv,
		SessionID:   uuid.New(),
		registry:    registry,
	}
	copy(st.chain[:], iv[:])

	st.report()
	return st, header, nil
}

// Phase reports the session's current state.
func (s *EncoderState) Phase() EncoderPhase { return s.phase }

// need is the total number of virtual bytes (plaintext || pad || crc) the
// session must ingest before it is done.
func (s *EncoderState) need() uint32 {
	return s.payloadSize + uint32(s.pad) + 4
}

// Next is the encode_block operation. in supplies the next chunk of
// plaintext; only the first max(payloadSize-emitted, 0) bytes of in are
// read, so a caller may pass a short or empty slice once plaintext is
// exhausted. It returns the next 16-byte ciphertext block and whether
// further calls are expected (false once the final block has been
// returned).
func (s *EncoderState) Next(in []byte) ([]byte, bool, error) {
	if s.phase == PhaseDone {
		return nil, false, ErrSessionDone
	}

	r := int64(s.payloadSize) - int64(s.emitted)
	var working [BlockSize]byte

	if r >= BlockSize {
		// Non-terminal case: a full 16-byte plaintext block.
		if len(in) < BlockSize {
			return nil, false, ErrShortBuffer
		}
		copy(working[:], in[:BlockSize])
		s.crc.append(working[:])
	} else {
		// Terminal case: plaintext, 0xFF pad and/or the CRC trailer share
		// this block. See SPEC_FULL.md §4.2 / §9 for the uniform fill rule
		// that resolves the spec's stepwise description.
		take := int(r)
		if take < 0 {
			take = 0
		}
		if len(in) < take {
			return nil, false, ErrShortBuffer
		}
		for i := 0; i < BlockSize; i++ {
			if i < take {
				working[i] = in[i]
			} else {
				working[i] = 0xFF
			}
		}

		s.crc.append(working[0:12])
		if r <= 12 {
			binary32LE(working[12:16], s.crc.finalize())
		} else {
			s.crc.append(working[12:16])
		}
	}

	xorBlock(working[:], s.chain[:])
	s.priv.encryptBlock(working[:])
	copy(s.chain[:], working[:])
	s.emitted += BlockSize

	out := make([]byte, BlockSize)
	copy(out, working[:])

	more := s.emitted < s.need()
	if !more {
		s.phase = PhaseDone
	}
	s.report()

	return out, more, nil
}

func (s *EncoderState) report() {
	if s.registry == nil {
		return
	}
	s.registry.update(s.SessionID, SessionRecord{
		ID:             s.SessionID,
		Role:           RoleEncoder,
		Phase:          s.phase.String(),
		AuthID:         s.authID,
		BytesProcessed: int(s.emitted),
	})
}
