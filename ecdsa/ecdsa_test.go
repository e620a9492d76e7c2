package ecdsa

import (
	"crypto/rand"
	"crypto/sha256"
	"testing"

	"github.com/tokenized/ssecdsa/curve"
)

func TestVerifyRoundTrip(t *testing.T) {
	sk, err := curve.RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("random key: %s", err)
	}
	pub := curve.BaseMul(sk)

	digest := sha256.Sum256([]byte("hello world"))
	m := HashToScalar(digest[:])

	k, err := curve.RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("random nonce: %s", err)
	}
	r := curve.BaseMul(k)
	rx := curve.NewScalar(r.XCoord())

	s := k.Invert().Mul(m.Add(rx.Mul(sk)))

	rx2, sNorm, ok := NormalizeAndVerify(m, pub, s, r)
	if !ok {
		t.Fatalf("signature failed to verify")
	}
	if !rx2.Equal(rx) {
		t.Fatalf("rx mismatch")
	}
	_ = sNorm
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	sk, err := curve.RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("random key: %s", err)
	}
	wrongSk, err := curve.RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("random wrong key: %s", err)
	}
	wrongPub := curve.BaseMul(wrongSk)

	digest := sha256.Sum256([]byte("hello world"))
	m := HashToScalar(digest[:])

	k, err := curve.RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("random nonce: %s", err)
	}
	r := curve.BaseMul(k)
	rx := curve.NewScalar(r.XCoord())
	s := k.Invert().Mul(m.Add(rx.Mul(sk)))

	if _, _, ok := NormalizeAndVerify(m, wrongPub, s, r); ok {
		t.Fatalf("signature verified against the wrong public key")
	}
}
