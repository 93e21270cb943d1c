package pep1

// SimpleEncode is the simple_encode convenience wrapper (SPEC_FULL.md §4.4):
// it drives EncoderState to completion over a whole in-memory payload and
// writes the complete frame into dst, returning the number of bytes
// written. dst must be at least EncodedSize(len(payload)) bytes long.
//
// Payloads longer than SimpleMaxPlaintext are rejected by returning 0 and a
// nil error, matching the legacy simple API's "no output, no error code"
// contract for this one oversize-on-encode case (the six numbered error
// codes in SPEC_FULL.md §6 are all decode-side outcomes).
func SimpleEncode(dst []byte, authID uint32, payload []byte, keyCommon, keyPriv []byte) (int, error) {
	if len(payload) > SimpleMaxPlaintext {
		return 0, nil
	}

	st, header, err := EncoderInit(authID, uint32(len(payload)), keyCommon, keyPriv, nil)
	if err != nil {
		return 0, err
	}

	total := EncodedSize(len(payload))
	if len(dst) < total {
		return 0, ErrShortBuffer
	}

	copy(dst, header)
	off := len(header)

	for {
		var chunk []byte
		if st.emitted < st.payloadSize {
			end := st.emitted + BlockSize
			if end > st.payloadSize {
				end = st.payloadSize
			}
			chunk = payload[st.emitted:end]
		}

		blk, more, err := st.Next(chunk)
		if err != nil {
			return 0, err
		}
		copy(dst[off:off+BlockSize], blk)
		off += BlockSize
		if !more {
			break
		}
	}

	return off, nil
}

// SimpleDecodeStage1 is the simple_decode_stage1 convenience wrapper: it
// runs DecodeHeader and additionally enforces SimpleMaxPlaintext, returning
// ErrOversizeDecoded-wrapping ProtocolError when the frame's declared
// payload_size exceeds the cap. The returned DecoderState is ready for
// SimpleDecodeStage2 once the caller has looked up key_priv by AuthID.
func SimpleDecodeStage1(dat []byte, keyCommon []byte, registry *SessionRegistry) (*DecoderState, error) {
	st, err := DecodeHeader(dat, keyCommon, registry)
	if err != nil {
		return nil, err
	}
	if st.PayloadSize > SimpleMaxPlaintext {
		st.fail()
		return nil, newProtocolError(CodeOversizeDecoded, "header", "declared payload_size exceeds SimpleMaxPlaintext")
	}
	return st, nil
}

// SimpleDecodeStage2 is the simple_decode_stage2 convenience wrapper: given
// a DecoderState produced by SimpleDecodeStage1 and the caller-selected
// key_priv, it runs DecodeIV followed by the full payload block loop,
// copying only the plaintext portion of each block into dst. dst must be
// at least st.PayloadSize bytes long.
func SimpleDecodeStage2(dst []byte, dat []byte, keyPriv []byte, st *DecoderState) error {
	if uint32(len(dst)) < st.PayloadSize {
		return ErrShortBuffer
	}
	if len(dat) < PayloadOffset+BlockSize {
		return ErrShortBuffer
	}

	// total is the full frame length the header declares; the loop below must
	// never read past it. Running out of declared blocks before reaching
	// StatusVerified means the key_priv in use did not decode a coherent pad
	// and CRC trailer — that is a verification failure, not a short buffer
	// (see DESIGN.md, wrong-key overrun).
	total := EncodedSize(int(st.PayloadSize))
	if len(dat) < total {
		return ErrShortBuffer
	}

	if err := st.DecodeIV(dat[IvBlockOffset:IvBlockOffset+BlockSize], keyPriv); err != nil {
		return err
	}

	off := PayloadOffset
	var delivered uint32
	for off+BlockSize <= total {
		blk, status, err := st.Next(dat[off : off+BlockSize])
		if err != nil {
			return err
		}

		n := st.PayloadSize - delivered
		if n > BlockSize {
			n = BlockSize
		}
		copy(dst[delivered:delivered+n], blk[:n])
		delivered += n
		off += BlockSize

		switch status {
		case StatusVerified:
			return nil
		case StatusInvalid:
			return newProtocolError(CodeDecodeVerificationFail, "payload", "payload verification failed")
		}
	}

	st.fail()
	return newProtocolError(CodeDecodeVerificationFail, "payload", "declared payload blocks exhausted without verification")
}

// SimpleDecode is simple_decode: stage1 followed by stage2 against the same
// buffers. It returns the frame's auth_id and payload_size alongside any
// error; dst must be at least as long as the frame's declared payload_size.
func SimpleDecode(dst []byte, dat []byte, keyCommon, keyPriv []byte, registry *SessionRegistry) (authID uint32, payloadSize uint32, err error) {
	st, err := SimpleDecodeStage1(dat, keyCommon, registry)
	if err != nil {
		return 0, 0, err
	}
	if err := SimpleDecodeStage2(dst, dat, keyPriv, st); err != nil {
		return st.AuthID, st.PayloadSize, err
	}
	return st.AuthID, st.PayloadSize, nil
}
