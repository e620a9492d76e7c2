package paillier

import "testing"

func TestCorrectKeyProofAccepted(t *testing.T) {
	sk, err := GenerateKeypair(testKeyBits)
	if err != nil {
		t.Fatalf("generate keypair: %s", err)
	}

	proof, err := GenerateCorrectKeyProof(sk)
	if err != nil {
		t.Fatalf("generate proof: %s", err)
	}

	if err := VerifyCorrectKeyProof(&sk.PublicKey, proof); err != nil {
		t.Fatalf("verify: %s", err)
	}
}

func TestCorrectKeyProofRejectsTamperedRoot(t *testing.T) {
	sk, err := GenerateKeypair(testKeyBits)
	if err != nil {
		t.Fatalf("generate keypair: %s", err)
	}

	proof, err := GenerateCorrectKeyProof(sk)
	if err != nil {
		t.Fatalf("generate proof: %s", err)
	}

	proof.Roots[0].Add(proof.Roots[0], bigOne)

	if err := VerifyCorrectKeyProof(&sk.PublicKey, proof); err == nil {
		t.Fatalf("expected tampered root to be rejected")
	}
}
