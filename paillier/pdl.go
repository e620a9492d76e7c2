// This file implements the "proof of discrete log correspondence" (PDL)
// exchange of spec.md §4.4 messages 4-7 and §4.5: it binds Bob's Paillier
// ciphertext c = Enc(x_beta_bob) to his public point X_beta_bob = x_beta_bob
// * G, so that a malicious Bob cannot submit an (c, X) pair encrypting two
// different values and later exploit the mismatch during signing. This is
// the Lindell-2017 two-party ECDSA key-setup check; no library in the
// example corpus implements it, so it is built directly here alongside the
// rest of this package's math/big primitives.
package paillier

import (
	"crypto/rand"
	"crypto/sha256"
	"math/big"

	"github.com/pkg/errors"

	"github.com/tokenized/ssecdsa/curve"
)

// ErrPDLFailed is returned by VerifyPDLFinal, mapped onto spec.md §7's
// PdlFailed.
var ErrPDLFailed = errors.New("paillier: pdl verification failed")

// pdlMaskBits sizes the additive mask b used below; it needs to be large
// enough relative to q (curve.Q) that a*x1+b statistically hides x1, while
// staying well under N so the Paillier ciphertext never wraps.
const pdlMaskBits = 256 + 128

// PDLChallenge is Alice's first PDL message (spec.md §4.4 message 4): a
// Paillier ciphertext that rerandomizes Bob's c = Enc(x1) under a random
// affine mask (a, b) only Alice knows.
type PDLChallenge struct {
	CTag *big.Int
}

// PDLSecret is Alice's private state between sending PDLChallenge and
// receiving Bob's final opening.
type PDLSecret struct {
	A, B *big.Int
}

// GeneratePDLChallenge implements Alice's side of spec.md message 4: pick
// random (a, b), compute c' = c^a * Enc(b), and keep (a, b) to reveal later.
func GeneratePDLChallenge(pk *PublicKey, c *big.Int) (*PDLChallenge, *PDLSecret, error) {
	a, err := rand.Int(rand.Reader, curve.Q)
	if err != nil {
		return nil, nil, errors.Wrap(err, "sample a")
	}

	bBound := new(big.Int).Lsh(bigOne, pdlMaskBits)
	b, err := rand.Int(rand.Reader, bBound)
	if err != nil {
		return nil, nil, errors.Wrap(err, "sample b")
	}

	cToA := pk.MulByScalar(c, a)
	encB, _, err := pk.Encrypt(b)
	if err != nil {
		return nil, nil, errors.Wrap(err, "encrypt b")
	}

	cTag := pk.AddCiphertexts(cToA, encB)

	return &PDLChallenge{CTag: cTag}, &PDLSecret{A: a, B: b}, nil
}

// PDLCommitment is Bob's first PDL response (spec.md §4.4 message 5): a hash
// commitment to Q_hat = (a*x1+b) * G, computed by decrypting Alice's
// challenge under his own Paillier key. Bob commits before learning (a, b)
// so that he cannot pick Q_hat to match an (a, b) he has not yet seen.
type PDLCommitment struct {
	Digest [32]byte
}

// PDLBobState is Bob's private state between committing and opening.
type PDLBobState struct {
	QHat  curve.Point
	Nonce [32]byte
}

func hashQHat(qHat curve.Point, nonce [32]byte) [32]byte {
	b := qHat.Bytes()
	h := sha256.New()
	h.Write(b[:])
	h.Write(nonce[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// PDLFirstStage implements Bob's side of spec.md message 5: decrypt the
// challenge to get q_hat = a*x1+b mod N (Bob works directly over the
// integers here, reducing mod the curve order only when mapping into a
// scalar, matching how the statistical mask keeps a*x1+b far below N), derive
// Q_hat = q_hat * G, and commit to it.
func PDLFirstStage(sk *PrivateKey, x1 curve.Scalar, challenge *PDLChallenge) (*PDLCommitment, *PDLBobState, error) {
	qHatInt, err := sk.Decrypt(challenge.CTag)
	if err != nil {
		return nil, nil, errors.Wrap(err, "decrypt challenge")
	}

	qHatScalar := curve.NewScalar(new(big.Int).Mod(qHatInt, curve.Q))
	qHat := curve.BaseMul(qHatScalar)

	var nonce [32]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, nil, errors.Wrap(err, "sample nonce")
	}

	digest := hashQHat(qHat, nonce)

	return &PDLCommitment{Digest: digest}, &PDLBobState{QHat: qHat, Nonce: nonce}, nil
}

// PDLOpening is Alice's second PDL message (spec.md §4.4 message 6): the
// plain reveal of (a, b).
type PDLOpening struct {
	A, B *big.Int
}

// OpenPDLChallenge implements Alice's side of spec.md message 6.
func OpenPDLChallenge(secret *PDLSecret) *PDLOpening {
	return &PDLOpening{A: secret.A, B: secret.B}
}

// PDLFinal is Bob's final PDL message (spec.md §4.4 message 7): the
// decommitment of Q_hat.
type PDLFinal struct {
	QHat  curve.Point
	Nonce [32]byte
}

// PDLSecondStage implements Bob's side of spec.md message 7: recompute
// q_hat from x1 directly (rather than trusting the earlier decryption) and
// open the commitment, so that a dishonest Alice revealing a mismatched
// (a, b) is caught locally before Bob leaks anything.
func PDLSecondStage(state *PDLBobState, x1 curve.Scalar, opening *PDLOpening) (*PDLFinal, error) {
	expected := new(big.Int).Mul(opening.A, x1.Big())
	expected.Add(expected, opening.B)
	expectedScalar := curve.NewScalar(new(big.Int).Mod(expected, curve.Q))
	expectedQHat := curve.BaseMul(expectedScalar)

	if !expectedQHat.Equal(state.QHat) {
		return nil, errors.Wrap(ErrPDLFailed, "bob's own recomputation disagrees with his committed value")
	}

	return &PDLFinal{QHat: state.QHat, Nonce: state.Nonce}, nil
}

// VerifyPDLFinal implements Alice's final PDL check (closing spec.md
// messages 4-7): Q_hat must equal a*X1 + b*G for the (a, b) Alice
// originally chose. It does not check the opened commitment against its
// digest; VerifyPDLCommitment does that.
func VerifyPDLFinal(x1 curve.Point, secret *PDLSecret, final *PDLFinal) error {
	aScalar := curve.NewScalar(new(big.Int).Mod(secret.A, curve.Q))
	bScalar := curve.NewScalar(new(big.Int).Mod(secret.B, curve.Q))

	expected := x1.Mul(aScalar).Add(curve.BaseMul(bScalar))
	if !expected.Equal(final.QHat) {
		return ErrPDLFailed
	}
	return nil
}

// VerifyPDLCommitment checks final.Nonce/QHat actually open the commitment
// Bob sent in PDLCommitment, the half of the check VerifyPDLFinal leaves to
// the caller that still holds the original PDLCommitment value.
func VerifyPDLCommitment(commitment *PDLCommitment, final *PDLFinal) error {
	digest := hashQHat(final.QHat, final.Nonce)
	if digest != commitment.Digest {
		return errors.Wrap(ErrPDLFailed, "commitment does not open to the revealed point")
	}
	return nil
}
