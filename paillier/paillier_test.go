package paillier

import (
	"bytes"
	"math/big"
	"testing"
)

const testKeyBits = 1024

func TestEncryptDecryptRoundTrip(t *testing.T) {
	sk, err := GenerateKeypair(testKeyBits)
	if err != nil {
		t.Fatalf("generate keypair: %s", err)
	}

	m := big.NewInt(424242)
	c, _, err := sk.Encrypt(m)
	if err != nil {
		t.Fatalf("encrypt: %s", err)
	}

	got, err := sk.Decrypt(c)
	if err != nil {
		t.Fatalf("decrypt: %s", err)
	}
	if got.Cmp(m) != 0 {
		t.Fatalf("got %s, want %s", got, m)
	}
}

func TestAddCiphertextsIsHomomorphic(t *testing.T) {
	sk, err := GenerateKeypair(testKeyBits)
	if err != nil {
		t.Fatalf("generate keypair: %s", err)
	}

	m1 := big.NewInt(111)
	m2 := big.NewInt(222)

	c1, _, err := sk.Encrypt(m1)
	if err != nil {
		t.Fatalf("encrypt m1: %s", err)
	}
	c2, _, err := sk.Encrypt(m2)
	if err != nil {
		t.Fatalf("encrypt m2: %s", err)
	}

	sum := sk.AddCiphertexts(c1, c2)
	got, err := sk.Decrypt(sum)
	if err != nil {
		t.Fatalf("decrypt sum: %s", err)
	}

	want := new(big.Int).Add(m1, m2)
	if got.Cmp(want) != 0 {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestMulByScalarIsHomomorphic(t *testing.T) {
	sk, err := GenerateKeypair(testKeyBits)
	if err != nil {
		t.Fatalf("generate keypair: %s", err)
	}

	m := big.NewInt(17)
	k := big.NewInt(9)

	c, _, err := sk.Encrypt(m)
	if err != nil {
		t.Fatalf("encrypt: %s", err)
	}

	scaled := sk.MulByScalar(c, k)
	got, err := sk.Decrypt(scaled)
	if err != nil {
		t.Fatalf("decrypt: %s", err)
	}

	want := new(big.Int).Mul(m, k)
	if got.Cmp(want) != 0 {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestPublicKeySerializeRoundTrip(t *testing.T) {
	sk, err := GenerateKeypair(testKeyBits)
	if err != nil {
		t.Fatalf("generate keypair: %s", err)
	}

	buf := &bytes.Buffer{}
	if err := sk.PublicKey.Serialize(buf); err != nil {
		t.Fatalf("serialize: %s", err)
	}

	got, err := DeserializePublicKey(buf)
	if err != nil {
		t.Fatalf("deserialize: %s", err)
	}

	if got.N.Cmp(sk.N) != 0 {
		t.Fatalf("modulus mismatch after round trip")
	}
}
