// Package pep1 implements the PEP1 symmetric-key encapsulation protocol: a
// small framing and cryptographic pipeline that wraps a plaintext payload of
// arbitrary size (bounded by a 32-bit length field) into an authenticated,
// encrypted byte stream suitable for transmission over an untrusted channel.
// It targets constrained environments where full TLS is unavailable.
//
// # Wire format
//
// An encoded frame is:
//
//	Magic(4) || EncMeta(16) || EncIv(16) || PayloadBlocks(16*K)
//
// where K = ceil((payload_size+4)/16). EncMeta is encrypted under a shared
// "common" key and carries auth_id, payload_size, a 31-bit nonce and a
// header CRC. EncIv is encrypted under a per-auth_id "private" key and
// carries the pad length and random bytes; its ciphertext seeds CBC-style
// chaining for the payload blocks. The final 4 bytes of the payload region
// are a CRC-32 over the decrypted IV block, the plaintext and the 0xFF pad
// bytes, in that order.
//
// # Cipher and integrity primitives
//
// The block cipher is Twofish-128 (golang.org/x/crypto/twofish); integrity
// is CRC-32/IEEE, a checksum against transmission errors, not a MAC against
// active tampering. PEP1 provides confidentiality and accidental-corruption
// detection, not forward secrecy, replay protection, or authenticated
// encryption in the AEAD sense.
//
// # Basic usage
//
//	keys, err := pep1.DeriveSessionKeys(commonProvider, privProvider)
//	frame := make([]byte, pep1.EncodedSize(len(payload)))
//	n, err := pep1.SimpleEncode(frame, authID, payload, keys.Common, keys.Priv)
//
//	st, err := pep1.SimpleDecodeStage1(frame[:n], keys.Common, nil)
//	out := make([]byte, st.PayloadSize)
//	err = pep1.SimpleDecodeStage2(out, frame[:n], keys.Priv, st)
//
// # Streaming usage
//
// For payloads too large to buffer, or where the 16384-byte SimpleCodec cap
// does not apply, drive EncoderState/DecoderState directly one 16-byte block
// at a time; see EncoderState and DecoderState.
package pep1
