package paillier

import (
	"crypto/rand"
	"testing"

	"github.com/tokenized/ssecdsa/curve"
)

func TestPDLExchangeAccepted(t *testing.T) {
	sk, err := GenerateKeypair(testKeyBits)
	if err != nil {
		t.Fatalf("generate keypair: %s", err)
	}

	x1, err := curve.RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("random x1: %s", err)
	}
	x1Point := curve.BaseMul(x1)

	c, _, err := sk.Encrypt(x1.Big())
	if err != nil {
		t.Fatalf("encrypt x1: %s", err)
	}

	challenge, secret, err := GeneratePDLChallenge(&sk.PublicKey, c)
	if err != nil {
		t.Fatalf("generate challenge: %s", err)
	}

	commitment, bobState, err := PDLFirstStage(sk, x1, challenge)
	if err != nil {
		t.Fatalf("first stage: %s", err)
	}

	opening := OpenPDLChallenge(secret)

	final, err := PDLSecondStage(bobState, x1, opening)
	if err != nil {
		t.Fatalf("second stage: %s", err)
	}

	if err := VerifyPDLCommitment(commitment, final); err != nil {
		t.Fatalf("verify commitment: %s", err)
	}
	if err := VerifyPDLFinal(x1Point, secret, final); err != nil {
		t.Fatalf("verify final: %s", err)
	}
}

func TestPDLExchangeRejectsInconsistentKey(t *testing.T) {
	sk, err := GenerateKeypair(testKeyBits)
	if err != nil {
		t.Fatalf("generate keypair: %s", err)
	}

	x1, err := curve.RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("random x1: %s", err)
	}

	wrongX1, err := curve.RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("random wrong x1: %s", err)
	}
	wrongX1Point := curve.BaseMul(wrongX1)

	c, _, err := sk.Encrypt(x1.Big())
	if err != nil {
		t.Fatalf("encrypt x1: %s", err)
	}

	challenge, secret, err := GeneratePDLChallenge(&sk.PublicKey, c)
	if err != nil {
		t.Fatalf("generate challenge: %s", err)
	}

	_, bobState, err := PDLFirstStage(sk, x1, challenge)
	if err != nil {
		t.Fatalf("first stage: %s", err)
	}

	opening := OpenPDLChallenge(secret)

	final, err := PDLSecondStage(bobState, x1, opening)
	if err != nil {
		t.Fatalf("second stage: %s", err)
	}

	if err := VerifyPDLFinal(wrongX1Point, secret, final); err == nil {
		t.Fatalf("expected pdl check against mismatched public point to fail")
	}
}
