package protocol

import (
	"math/big"

	"github.com/tokenized/ssecdsa/committed"
	"github.com/tokenized/ssecdsa/curve"
	"github.com/tokenized/ssecdsa/paillier"
	"github.com/tokenized/ssecdsa/sigma"
)

// Msg1 is Bob's commitment to his NIZK over BP (spec.md §4.4 message 1).
type Msg1 = committed.Commitment

// Msg2 is Alice's compact NIZK over AP: three Schnorr statements plus one
// DDH statement (spec.md §4.4 message 2).
type Msg2 = sigma.CompactProof

// Msg3 is Bob's NIZK opening together with his Paillier share, key and
// proofs (spec.md §4.4 message 3).
type Msg3 struct {
	Opening         committed.Opening
	EK              *paillier.PublicKey
	C               *big.Int
	CorrectKeyProof *paillier.NICorrectKeyProof
	RangeProof      *paillier.RangeProofNi
}

// Msg4 is Alice's PDL challenge (spec.md §4.4 message 4).
type Msg4 = paillier.PDLChallenge

// Msg5 is Bob's PDL commitment (spec.md §4.4 message 5).
type Msg5 = paillier.PDLCommitment

// Msg6 is Alice's PDL challenge opening (spec.md §4.4 message 6).
type Msg6 = paillier.PDLOpening

// Msg7 is Bob's PDL response decommit (spec.md §4.4 message 7).
type Msg7 = paillier.PDLFinal

// Msg8 carries Alice's two Paillier partial-signature ciphertexts
// (spec.md §4.4 message 8).
type Msg8 struct {
	CRedeem *big.Int
	CRefund *big.Int
}

// Msg9 carries Bob's redeem half-signature, still missing the y^-1 factor
// only Alice can supply (spec.md §4.4 message 9).
type Msg9 struct {
	SRedeemDoublePrime curve.Scalar
}

// PublishedSignature is the completed redeem signature Alice broadcasts
// (spec.md §4.4 message 10).
type PublishedSignature struct {
	Rx curve.Scalar
	S  curve.Scalar
}

// bobWitnessLabels fixes the order Bob's four Schnorr witnesses are built
// and later recovered in, per spec.md §9's "dynamic label lookup" redesign
// flag: callers index proof.Responses positionally rather than searching by
// label.
var bobWitnessLabels = [...]string{"X_alpha", "X_beta", "R_beta_redeem", "R_beta_refund"}

func buildBobWitnesses(keys BobKeys) []sigma.Witness {
	return []sigma.Witness{
		sigma.NewSchnorrWitness(keys.XAlpha.Sk, curve.G, []byte(bobWitnessLabels[0])),
		sigma.NewSchnorrWitness(keys.XBeta.Sk, curve.G, []byte(bobWitnessLabels[1])),
		sigma.NewSchnorrWitness(keys.RBetaRedeem.Sk, curve.G, []byte(bobWitnessLabels[2])),
		sigma.NewSchnorrWitness(keys.RBetaRefund.Sk, curve.G, []byte(bobWitnessLabels[3])),
	}
}

// extractBobPoints positionally recovers BP from a verified Σ-proof,
// rejecting a malformed shape as ErrProofRejected rather than panicking
// (spec.md §9 open question (b)).
func extractBobPoints(proof *sigma.CompactProof) (BobPoints, error) {
	if len(proof.Responses) != 4 {
		return BobPoints{}, ErrProofRejected
	}
	return BobPoints{
		XAlpha:      proof.Responses[0].Statement.Statement.Gx,
		XBeta:       proof.Responses[1].Statement.Statement.Gx,
		RBetaRedeem: proof.Responses[2].Statement.Statement.Gx,
		RBetaRefund: proof.Responses[3].Statement.Statement.Gx,
	}, nil
}

// alice DDH witness uses h = R_beta_redeem_alice, so that R3 = y*h, per
// spec.md §4.5's Alice1.new.
func buildAliceWitnesses(keys AliceKeys) []sigma.Witness {
	return []sigma.Witness{
		sigma.NewSchnorrWitness(keys.XBeta.Sk, curve.G, []byte("X_beta")),
		sigma.NewSchnorrWitness(keys.RBetaRedeem.Sk, curve.G, []byte("R_beta_redeem")),
		sigma.NewSchnorrWitness(keys.RBetaRefund.Sk, curve.G, []byte("R_beta_refund")),
		sigma.NewDDHWitness(keys.Y.Sk, curve.G, keys.RBetaRedeem.Pk, []byte("Y")),
	}
}

// extractAlicePoints positionally recovers AP from a verified Σ-proof.
func extractAlicePoints(proof *sigma.CompactProof) (AlicePoints, error) {
	if len(proof.Responses) != 4 {
		return AlicePoints{}, ErrProofRejected
	}
	ddh := proof.Responses[3].Statement.Statement
	return AlicePoints{
		XBeta:       proof.Responses[0].Statement.Statement.Gx,
		RBetaRedeem: proof.Responses[1].Statement.Statement.Gx,
		RBetaRefund: proof.Responses[2].Statement.Statement.Gx,
		Y:           ddh.Gx,
		R3:          ddh.Hx,
	}, nil
}
