package paillier

import (
	"math/big"
	"testing"

	"github.com/tokenized/ssecdsa/curve"
)

func TestRangeProofAcceptsValueBelowBound(t *testing.T) {
	sk, err := GenerateKeypair(testKeyBits)
	if err != nil {
		t.Fatalf("generate keypair: %s", err)
	}

	bound := new(big.Int).Div(curve.Q, big.NewInt(3))
	x := big.NewInt(12345)

	c, r, err := sk.Encrypt(x)
	if err != nil {
		t.Fatalf("encrypt: %s", err)
	}

	proof, err := GenerateRangeProof(sk, x, r, c, bound)
	if err != nil {
		t.Fatalf("generate range proof: %s", err)
	}

	if err := VerifyRangeProof(&sk.PublicKey, c, bound, proof); err != nil {
		t.Fatalf("verify range proof: %s", err)
	}
}

func TestRangeProofRejectsTamperedBitCiphertext(t *testing.T) {
	sk, err := GenerateKeypair(testKeyBits)
	if err != nil {
		t.Fatalf("generate keypair: %s", err)
	}

	bound := new(big.Int).Div(curve.Q, big.NewInt(3))
	x := big.NewInt(99)

	c, r, err := sk.Encrypt(x)
	if err != nil {
		t.Fatalf("encrypt: %s", err)
	}

	proof, err := GenerateRangeProof(sk, x, r, c, bound)
	if err != nil {
		t.Fatalf("generate range proof: %s", err)
	}

	proof.BitCipher[0].Add(proof.BitCipher[0], bigOne)

	if err := VerifyRangeProof(&sk.PublicKey, c, bound, proof); err == nil {
		t.Fatalf("expected tampered bit ciphertext to be rejected")
	}
}

// TestGenerateRangeProofRejectsValueAtOrAboveBound confirms the honest
// prover path itself refuses to build a proof for a value outside
// [0, bound), not merely a value outside [0, 2^bound.BitLen()).
func TestGenerateRangeProofRejectsValueAtOrAboveBound(t *testing.T) {
	sk, err := GenerateKeypair(testKeyBits)
	if err != nil {
		t.Fatalf("generate keypair: %s", err)
	}

	bound := new(big.Int).Div(curve.Q, big.NewInt(3))
	x := bound // x == bound is already out of range; valid range is [0, bound)

	c, r, err := sk.Encrypt(x)
	if err != nil {
		t.Fatalf("encrypt: %s", err)
	}

	if _, err := GenerateRangeProof(sk, x, r, c, bound); err == nil {
		t.Fatalf("expected GenerateRangeProof to reject a value equal to bound")
	}
}

// TestVerifyRangeProofRejectsValueInUncheckedGap is the regression test for
// the bound-vs-2^bitLen gap: bound = q/3 is not a power of two, so a bit
// decomposition alone only proves x < 2^bound.BitLen(), which runs up to
// nearly 2*bound. This builds a proof whose primary half genuinely
// decomposes a value in that gap (bound < x < 2^bound.BitLen()) and splices
// in an unrelated, individually well-formed complement half, confirming
// VerifyRangeProof's complement-consistency check — not just the primary
// bit decomposition — is what actually pins x below bound.
func TestVerifyRangeProofRejectsValueInUncheckedGap(t *testing.T) {
	sk, err := GenerateKeypair(testKeyBits)
	if err != nil {
		t.Fatalf("generate keypair: %s", err)
	}

	bound := new(big.Int).Div(curve.Q, big.NewInt(3))
	bitLen := bound.BitLen()

	xGap := new(big.Int).Add(bound, big.NewInt(1000))
	if xGap.Cmp(new(big.Int).Lsh(bigOne, uint(bitLen))) >= 0 {
		t.Fatalf("test fixture bug: xGap does not fit in bound.BitLen() bits")
	}

	cGap, rGap, err := sk.Encrypt(xGap)
	if err != nil {
		t.Fatalf("encrypt xGap: %s", err)
	}

	gapBitCipher, gapBitProofs, gapAggR, err := decomposeBits(sk, xGap, bitLen)
	if err != nil {
		t.Fatalf("decompose xGap: %s", err)
	}
	gapAggRInv := new(big.Int).ModInverse(gapAggR, sk.N)
	if gapAggRInv == nil {
		t.Fatalf("aggregate randomness not invertible")
	}
	gapS := new(big.Int).Mul(rGap, gapAggRInv)
	gapS.Mod(gapS, sk.N)
	gapCAgg := aggregateBitCipher(&sk.PublicKey, gapBitCipher)
	gapD := new(big.Int).Mul(cGap, new(big.Int).ModInverse(gapCAgg, sk.N2))
	gapD.Mod(gapD, sk.N2)
	gapConsistency, err := proveRoot(&sk.PublicKey, "range-consistency", gapD, gapS)
	if err != nil {
		t.Fatalf("prove gap consistency: %s", err)
	}

	// A genuine, independently valid proof for an in-range value, whose
	// complement half we splice in — individually well-formed, but tied to
	// the wrong ciphertext.
	smallX := big.NewInt(42)
	cSmall, rSmall, err := sk.Encrypt(smallX)
	if err != nil {
		t.Fatalf("encrypt smallX: %s", err)
	}
	smallProof, err := GenerateRangeProof(sk, smallX, rSmall, cSmall, bound)
	if err != nil {
		t.Fatalf("generate small proof: %s", err)
	}

	forged := &RangeProofNi{
		BitLen:                bitLen,
		BitCipher:             gapBitCipher,
		BitProof:              gapBitProofs,
		Consistency:           gapConsistency,
		ComplementCipher:      smallProof.ComplementCipher,
		ComplementProof:       smallProof.ComplementProof,
		ComplementConsistency: smallProof.ComplementConsistency,
	}

	if err := VerifyRangeProof(&sk.PublicKey, cGap, bound, forged); err == nil {
		t.Fatalf("expected a value in the bound..2^bitLen gap to be rejected")
	}
}
