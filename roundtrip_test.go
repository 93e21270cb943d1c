package pep1

import (
	"bytes"
	"testing"
)

var (
	keyCommon = []byte("0123456789ABCDEF")
	keyPriv   = []byte("abcdef0123456789")
)

func init() {
	Init()
}

func encodeAll(t *testing.T, authID uint32, payload []byte, kc, kp []byte) []byte {
	t.Helper()
	out := make([]byte, EncodedSize(len(payload)))
	n, err := SimpleEncode(out, authID, payload, kc, kp)
	if err != nil {
		t.Fatalf("SimpleEncode: %v", err)
	}
	if n != len(out) {
		t.Fatalf("SimpleEncode wrote %d bytes, want %d", n, len(out))
	}
	return out[:n]
}

func TestRoundTripScenarios(t *testing.T) {
	cases := []struct {
		name    string
		authID  uint32
		payload []byte
		kc, kp  []byte
	}{
		{"S1-empty", 0, []byte{}, keyCommon, keyPriv},
		{"S2-16byte", 0, []byte("Hello, Pep1!!!!\x00"), keyCommon, keyPriv},
		{"S3-42byte", 0x12345678, []byte("This is a Test! This data will be crypted!"), keyCommon, keyPriv},
		{"one-byte", 7, []byte("x"), keyCommon, keyPriv},
		{"exact-multiple-minus-four", 1, bytes.Repeat([]byte{'a'}, 12), keyCommon, keyPriv},
		{"large", 99, bytes.Repeat([]byte{'z'}, 5000), keyCommon, keyPriv},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			frame := encodeAll(t, c.authID, c.payload, c.kc, c.kp)

			if !bytes.Equal(frame[0:4], []byte(MagicBytes)) {
				t.Fatalf("magic mismatch: %q", frame[0:4])
			}
			if len(frame) != EncodedSize(len(c.payload)) {
				t.Fatalf("frame length = %d, want %d", len(frame), EncodedSize(len(c.payload)))
			}

			out := make([]byte, len(c.payload))
			authID, payloadSize, err := SimpleDecode(out, frame, c.kc, c.kp, nil)
			if err != nil {
				t.Fatalf("SimpleDecode: %v", err)
			}
			if authID != c.authID {
				t.Errorf("authID = %#x, want %#x", authID, c.authID)
			}
			if int(payloadSize) != len(c.payload) {
				t.Errorf("payloadSize = %d, want %d", payloadSize, len(c.payload))
			}
			if !bytes.Equal(out, c.payload) {
				t.Errorf("decoded payload mismatch:\n got  %q\n want %q", out, c.payload)
			}
		})
	}
}

func TestS3FrameLengthAndPad(t *testing.T) {
	payload := []byte("This is a Test! This data will be crypted!")
	if len(payload) != 42 {
		t.Fatalf("payload length is %d bytes, want 42", len(payload))
	}
	pad := Pad(uint32(len(payload)))
	if pad != 2 {
		t.Errorf("pad = %d, want 2", pad)
	}
	frame := encodeAll(t, 0x12345678, payload, keyCommon, keyPriv)
	wantLen := HeaderSize + int(PayloadBlockCount(uint32(len(payload))))*BlockSize
	if len(frame) != wantLen {
		t.Errorf("frame length = %d, want %d (pad=%d)", len(frame), wantLen, pad)
	}
}

func TestEmptyPayloadProducesMinimumFrame(t *testing.T) {
	frame := encodeAll(t, 0, nil, keyCommon, keyPriv)
	if len(frame) != EncodedMinSize {
		t.Fatalf("empty payload frame length = %d, want %d", len(frame), EncodedMinSize)
	}

	st, err := SimpleDecodeStage1(frame, keyCommon, nil)
	if err != nil {
		t.Fatalf("SimpleDecodeStage1: %v", err)
	}
	if st.AuthID != 0 || st.PayloadSize != 0 {
		t.Fatalf("got authID=%d payloadSize=%d, want 0,0", st.AuthID, st.PayloadSize)
	}

	var out []byte
	if err := SimpleDecodeStage2(out, frame, keyPriv, st); err != nil {
		t.Fatalf("SimpleDecodeStage2: %v", err)
	}
}

func TestS4CorruptedHeaderCrc(t *testing.T) {
	frame := encodeAll(t, 1, []byte("payload"), keyCommon, keyPriv)
	frame[16] ^= 0x01 // flip a bit inside the header CRC field

	_, err := SimpleDecodeStage1(frame, keyCommon, nil)
	if err == nil {
		t.Fatal("expected an error decoding a frame with a corrupted header CRC")
	}
	if !IsProtocolError(err) {
		t.Fatalf("expected a *ProtocolError, got %T: %v", err, err)
	}
}

func TestS4BitFlipsAcrossHeaderRegions(t *testing.T) {
	// Flips in the magic or meta block are caught by stage 1; flips in the IV
	// block [20..36) only surface once stage 2 decrypts it, so the sweep runs
	// the full SimpleDecode.
	for i := 0; i < PayloadOffset; i++ {
		frame := encodeAll(t, 1, []byte("payload data"), keyCommon, keyPriv)
		frame[i] ^= 0x01
		out := make([]byte, len("payload data"))
		_, _, err := SimpleDecode(out, frame, keyCommon, keyPriv, nil)
		if err == nil {
			t.Errorf("bit flip at offset %d: expected an error, got none", i)
		}
	}
}

func TestS5WrongPrivateKey(t *testing.T) {
	frame := encodeAll(t, 1, []byte("some secret payload"), keyCommon, keyPriv)

	st, err := SimpleDecodeStage1(frame, keyCommon, nil)
	if err != nil {
		t.Fatalf("SimpleDecodeStage1: %v", err)
	}

	wrongPriv := []byte("zzzzzzzzzzzzzzzz")
	out := make([]byte, st.PayloadSize)
	err = SimpleDecodeStage2(out, frame, wrongPriv, st)
	if err == nil {
		t.Fatal("expected decoding with the wrong private key to fail")
	}
	if !IsProtocolError(err) {
		t.Fatalf("expected a *ProtocolError, got %T: %v", err, err)
	}
}

func TestS6OversizeSimpleEncode(t *testing.T) {
	payload := make([]byte, SimpleMaxPlaintext+1)
	dst := make([]byte, EncodedSize(len(payload)))
	n, err := SimpleEncode(dst, 1, payload, keyCommon, keyPriv)
	if err != nil {
		t.Fatalf("SimpleEncode: %v", err)
	}
	if n != 0 {
		t.Fatalf("SimpleEncode wrote %d bytes for an oversize payload, want 0", n)
	}
}

func TestS6OversizeSimpleDecodeStage1(t *testing.T) {
	// Build a frame whose header honestly declares an oversize payload_size
	// without actually materializing that much ciphertext: SimpleDecodeStage1
	// must reject based on the header alone.
	st, header, err := EncoderInit(1, SimpleMaxPlaintext+1, keyCommon, keyPriv, nil)
	if err != nil {
		t.Fatalf("EncoderInit: %v", err)
	}
	_ = st

	_, err = SimpleDecodeStage1(header, keyCommon, nil)
	if err == nil {
		t.Fatal("expected OversizeDecoded error")
	}
	if Code(err) != CodeOversizeDecoded {
		t.Fatalf("Code(err) = %d, want %d", Code(err), CodeOversizeDecoded)
	}
}

func TestNonceReservedBitAlwaysClear(t *testing.T) {
	for i := 0; i < 50; i++ {
		_, header, err := EncoderInit(uint32(i), 10, keyCommon, keyPriv, nil)
		if err != nil {
			t.Fatalf("EncoderInit: %v", err)
		}
		var meta [BlockSize]byte
		copy(meta[:], header[MetaBlockOffset:MetaBlockOffset+BlockSize])
		cipher, _ := newBlockCipher(keyCommon)
		cipher.decryptBlock(meta[:])
		fields := parseMetaBlock(meta[:])
		if fields.Nonce&(1<<31) != 0 {
			t.Fatalf("nonce reserved bit set on iteration %d", i)
		}
	}
}

func TestRandomizedFraming(t *testing.T) {
	a := encodeAll(t, 1, []byte("same payload"), keyCommon, keyPriv)
	b := encodeAll(t, 1, []byte("same payload"), keyCommon, keyPriv)
	if bytes.Equal(a, b) {
		t.Fatal("two encodings of the same (auth_id, payload, keys) produced identical ciphertext")
	}
}

func TestKeySeparationWrongCommonKey(t *testing.T) {
	frame := encodeAll(t, 1, []byte("payload"), keyCommon, keyPriv)
	wrongCommon := []byte("ZYXWVUTSRQPONMLK")
	_, err := SimpleDecodeStage1(frame, wrongCommon, nil)
	if err == nil {
		t.Fatal("expected an error decoding header with the wrong common key")
	}
}
