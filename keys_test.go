package pep1

import (
	"bytes"
	"testing"
)

func TestArgon2idProviderDeriveKeyDeterministic(t *testing.T) {
	p := NewArgon2idProvider([]byte("correct horse battery staple"), Argon2Params{})
	salt, err := p.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt: %v", err)
	}

	k1, err := p.DeriveKey(salt)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	k2, err := p.DeriveKey(salt)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	if !bytes.Equal(k1, k2) {
		t.Fatal("DeriveKey is not deterministic for the same passphrase and salt")
	}
	if len(k1) != KeySize {
		t.Fatalf("DeriveKey returned %d bytes, want %d", len(k1), KeySize)
	}
}

func TestArgon2idProviderDifferentSaltsDifferentKeys(t *testing.T) {
	p := NewArgon2idProvider([]byte("correct horse battery staple"), Argon2Params{})
	s1, _ := p.GenerateSalt()
	s2, _ := p.GenerateSalt()
	if bytes.Equal(s1, s2) {
		t.Fatal("two GenerateSalt calls produced the same salt")
	}

	k1, _ := p.DeriveKey(s1)
	k2, _ := p.DeriveKey(s2)
	if bytes.Equal(k1, k2) {
		t.Fatal("different salts produced the same derived key")
	}
}

func TestArgon2idProviderRejectsEmptyPassphrase(t *testing.T) {
	p := NewArgon2idProvider(nil, Argon2Params{})
	salt, _ := p.GenerateSalt()
	if _, err := p.DeriveKey(salt); err == nil {
		t.Fatal("expected an error deriving a key from an empty passphrase")
	}
}

func TestPBKDF2ProviderDeriveKeyDeterministic(t *testing.T) {
	p := NewPBKDF2Provider([]byte("another passphrase"), PBKDF2Params{})
	salt, err := p.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt: %v", err)
	}

	k1, err := p.DeriveKey(salt)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	k2, err := p.DeriveKey(salt)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	if !bytes.Equal(k1, k2) {
		t.Fatal("PBKDF2Provider.DeriveKey is not deterministic")
	}
	if len(k1) != KeySize {
		t.Fatalf("DeriveKey returned %d bytes, want %d", len(k1), KeySize)
	}
}

func TestDeriveSessionKeysRejectsNilProviders(t *testing.T) {
	p := NewArgon2idProvider([]byte("x"), Argon2Params{})
	if _, err := DeriveSessionKeys(nil, p); err != ErrNilKeyProvider {
		t.Errorf("DeriveSessionKeys(nil, p) error = %v, want %v", err, ErrNilKeyProvider)
	}
	if _, err := DeriveSessionKeys(p, nil); err != ErrNilKeyProvider {
		t.Errorf("DeriveSessionKeys(p, nil) error = %v, want %v", err, ErrNilKeyProvider)
	}
}

// TestS7PassphraseDerivedKeysRoundTrip is SPEC_FULL.md scenario S7: two keys
// derived from passphrases via KeyProvider feed a full encode/decode
// round trip just like any other 16-byte keys.
func TestS7PassphraseDerivedKeysRoundTrip(t *testing.T) {
	commonProvider := NewArgon2idProvider([]byte("shared secret one"), Argon2Params{})
	privProvider := NewArgon2idProvider([]byte("shared secret two"), Argon2Params{})

	km, err := DeriveSessionKeys(commonProvider, privProvider)
	if err != nil {
		t.Fatalf("DeriveSessionKeys: %v", err)
	}

	payload := []byte("a message protected by derived keys")
	frame := make([]byte, EncodedSize(len(payload)))
	n, err := SimpleEncode(frame, 42, payload, km.Common, km.Priv)
	if err != nil {
		t.Fatalf("SimpleEncode: %v", err)
	}
	frame = frame[:n]

	out := make([]byte, len(payload))
	authID, payloadSize, err := SimpleDecode(out, frame, km.Common, km.Priv, nil)
	if err != nil {
		t.Fatalf("SimpleDecode: %v", err)
	}
	if authID != 42 {
		t.Errorf("authID = %d, want 42", authID)
	}
	if int(payloadSize) != len(payload) {
		t.Errorf("payloadSize = %d, want %d", payloadSize, len(payload))
	}
	if !bytes.Equal(out, payload) {
		t.Errorf("decoded payload = %q, want %q", out, payload)
	}
}
