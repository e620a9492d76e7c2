package protocol

import (
	"context"
	"math/big"

	"github.com/pkg/errors"
	"github.com/tokenized/logger"

	"github.com/tokenized/ssecdsa/committed"
	"github.com/tokenized/ssecdsa/curve"
	"github.com/tokenized/ssecdsa/ecdsa"
	"github.com/tokenized/ssecdsa/paillier"
	"github.com/tokenized/ssecdsa/sigma"
	"github.com/tokenized/ssecdsa/transcript"
)

// Alice2 is Alice's state after Alice1.new absorbed Bob's commitment and
// produced Msg2.
type Alice2 struct {
	t         *transcript.Transcript
	keys      AliceKeys
	bobOpener committed.Opener
	consumed  bool
}

// NewAlice implements Alice1.new of spec.md §4.5: absorb Bob's commitment,
// sample the four key pairs with a transcript-seeded RNG, build the three
// Schnorr witnesses plus the Y/R_beta_redeem DDH witness, and produce the
// compact proof Bob verifies directly (no commit-then-reveal on Alice's
// side; only Bob's BP proof needs the extra round).
func NewAlice(ctx context.Context, t *transcript.Transcript, msg1 Msg1) (*Alice2, *Msg2, error) {
	logger.Verbose(ctx, "alice1.new: entering")

	opener := committed.Receive(t, msg1, bobProofLabel)

	rng, err := t.BuildRng().FinalizeWithOSRand()
	if err != nil {
		logger.Error(ctx, "alice1.new: %s", err)
		return nil, nil, errors.Wrap(err, "build keygen rng")
	}

	keys, err := NewAliceKeys(rng)
	if err != nil {
		logger.Error(ctx, "alice1.new: %s", err)
		return nil, nil, errors.Wrap(err, "sample alice keys")
	}

	witnesses := buildAliceWitnesses(keys)
	proof, err := sigma.Prove(t, aliceProofLabel, witnesses)
	if err != nil {
		logger.Error(ctx, "alice1.new: %s", err)
		return nil, nil, errors.Wrap(err, "prove ap")
	}

	logger.Verbose(ctx, "alice1.new: exiting")
	return &Alice2{t: t, keys: keys, bobOpener: opener}, proof, nil
}

// Alice3 is Alice's state after opening Bob's BP commitment, validating his
// Paillier share, and issuing the PDL challenge.
type Alice3 struct {
	t          *transcript.Transcript
	keys       AliceKeys
	bobPoints  BobPoints
	bobPK      *paillier.PublicKey
	cXBeta     *big.Int
	pdlSecret  *paillier.PDLSecret
	consumed   bool
}

// ReceiveMsg3 implements Alice2.receive of spec.md §4.5: open Bob's
// commitment, extract BP, verify his correct-key and range proofs against
// the q/3 bound, and issue the PDL challenge. The joint X_beta is computed
// later, in ReceiveMsg7.
func (a *Alice2) ReceiveMsg3(ctx context.Context, msg3 *Msg3) (*Alice3, *Msg4, error) {
	logger.Verbose(ctx, "alice2.receive(msg3): entering")

	if a.consumed {
		logger.Error(ctx, "alice2.receive(msg3): %s", ErrStateConsumed)
		return nil, nil, ErrStateConsumed
	}
	a.consumed = true

	proof, err := a.bobOpener.Open(msg3.Opening)
	if err != nil {
		if errors.Is(err, committed.ErrCommitmentMismatch) {
			logger.Error(ctx, "alice2.receive(msg3): %s", ErrCommitmentMismatch)
			return nil, nil, ErrCommitmentMismatch
		}
		logger.Error(ctx, "alice2.receive(msg3): %s", err)
		return nil, nil, errors.Wrap(ErrProofRejected, err.Error())
	}

	bobPoints, err := extractBobPoints(proof)
	if err != nil {
		logger.Error(ctx, "alice2.receive(msg3): %s", err)
		return nil, nil, err
	}

	if err := paillier.VerifyCorrectKeyProof(msg3.EK, msg3.CorrectKeyProof); err != nil {
		logger.Error(ctx, "alice2.receive(msg3): %s", err)
		return nil, nil, errors.Wrap(ErrPaillierCorrectKeyFailed, err.Error())
	}

	bound := new(big.Int).Div(curve.Q, big.NewInt(3))
	if msg3.RangeProof == nil {
		logger.Error(ctx, "alice2.receive(msg3): missing range proof")
		return nil, nil, errors.Wrap(ErrPaillierRangeFailed, "missing range proof")
	}
	if err := paillier.VerifyRangeProof(msg3.EK, msg3.C, bound, msg3.RangeProof); err != nil {
		logger.Error(ctx, "alice2.receive(msg3): %s", err)
		return nil, nil, errors.Wrap(ErrPaillierRangeFailed, err.Error())
	}

	challenge, secret, err := paillier.GeneratePDLChallenge(msg3.EK, msg3.C)
	if err != nil {
		logger.Error(ctx, "alice2.receive(msg3): %s", err)
		return nil, nil, errors.Wrap(err, "generate pdl challenge")
	}

	next := &Alice3{
		t: a.t, keys: a.keys, bobPoints: bobPoints,
		bobPK: msg3.EK, cXBeta: msg3.C, pdlSecret: secret,
	}
	logger.Verbose(ctx, "alice2.receive(msg3): exiting")
	return next, challenge, nil
}

// Alice4 is Alice's state after receiving Bob's PDL commitment.
type Alice4 struct {
	t             *transcript.Transcript
	keys          AliceKeys
	bobPoints     BobPoints
	bobPK         *paillier.PublicKey
	cXBeta        *big.Int
	pdlSecret     *paillier.PDLSecret
	pdlCommitment *paillier.PDLCommitment
	consumed      bool
}

// ReceiveMsg5 opens Alice's PDL challenge (spec.md §4.4 message 6).
func (a *Alice3) ReceiveMsg5(ctx context.Context, msg5 *Msg5) (*Alice4, *Msg6, error) {
	logger.Verbose(ctx, "alice3.receive(msg5): entering")

	if a.consumed {
		logger.Error(ctx, "alice3.receive(msg5): %s", ErrStateConsumed)
		return nil, nil, ErrStateConsumed
	}
	a.consumed = true

	opening := paillier.OpenPDLChallenge(a.pdlSecret)

	next := &Alice4{
		t: a.t, keys: a.keys, bobPoints: a.bobPoints,
		bobPK: a.bobPK, cXBeta: a.cXBeta,
		pdlSecret: a.pdlSecret, pdlCommitment: msg5,
	}
	logger.Verbose(ctx, "alice3.receive(msg5): exiting")
	return next, opening, nil
}

// Alice5 is Alice's state after building both partial-signature
// ciphertexts: she holds everything she needs to assemble and verify the
// completed redeem signature once Bob answers with Msg9.
type Alice5 struct {
	jointXBeta  curve.Point
	rBetaRedeem curve.Point
	mRedeem     curve.Scalar
	y           curve.Scalar
	consumed    bool
}

// ReceiveMsg7 implements Alice3.receive of spec.md §4.5: verify Bob's PDL
// decommitment and final response, then build both partial-signature
// ciphertexts — the redeem half over the contrived nonce point
// y·R_beta_redeem_bob (spec.md §9), the refund half plain over
// R_beta_refund_bob. Neither ciphertext carries an explicit y-blind; the
// y-dependence lives entirely in the contrived nonce point, and Alice
// removes it herself in ReceiveMsg9 once Bob answers with Msg 9.
func (a *Alice4) ReceiveMsg7(ctx context.Context, msg7 *Msg7) (*Alice5, *Msg8, error) {
	logger.Verbose(ctx, "alice4.receive(msg7): entering")

	if a.consumed {
		logger.Error(ctx, "alice4.receive(msg7): %s", ErrStateConsumed)
		return nil, nil, ErrStateConsumed
	}
	a.consumed = true

	if err := paillier.VerifyPDLCommitment(a.pdlCommitment, msg7); err != nil {
		logger.Error(ctx, "alice4.receive(msg7): %s", err)
		return nil, nil, errors.Wrap(ErrPdlFailed, err.Error())
	}
	if err := paillier.VerifyPDLFinal(a.bobPoints.XBeta, a.pdlSecret, msg7); err != nil {
		logger.Error(ctx, "alice4.receive(msg7): %s", err)
		return nil, nil, errors.Wrap(ErrPdlFailed, err.Error())
	}

	mRedeem, mRefund := FixedMessageHashes()

	jointXBeta := a.bobPoints.XBeta.Mul(a.keys.XBeta.Sk)

	rContrived := a.bobPoints.RBetaRedeem.Mul(a.keys.Y.Sk)
	cRedeem, _, err := paillier.ComputePartialSig(
		a.bobPK, a.cXBeta, a.keys.XBeta.Sk, a.keys.RBetaRedeem.Sk,
		rContrived, mRedeem,
	)
	if err != nil {
		logger.Error(ctx, "alice4.receive(msg7): %s", err)
		return nil, nil, errors.Wrap(err, "compute redeem partial sig")
	}

	cRefund, _, err := paillier.ComputePartialSig(
		a.bobPK, a.cXBeta, a.keys.XBeta.Sk, a.keys.RBetaRefund.Sk,
		a.bobPoints.RBetaRefund, mRefund,
	)
	if err != nil {
		logger.Error(ctx, "alice4.receive(msg7): %s", err)
		return nil, nil, errors.Wrap(err, "compute refund partial sig")
	}

	rBetaRedeem := rContrived.Mul(a.keys.RBetaRedeem.Sk)

	next := &Alice5{
		jointXBeta:  jointXBeta,
		rBetaRedeem: rBetaRedeem,
		mRedeem:     mRedeem,
		y:           a.keys.Y.Sk,
	}
	logger.Verbose(ctx, "alice4.receive(msg7): exiting")
	return next, &Msg8{CRedeem: cRedeem, CRefund: cRefund}, nil
}

// ReceiveMsg9 implements Alice4.receive of spec.md §4.5's final step:
// multiply Bob's redeem scalar by y^-1 to remove the factor the contrived
// nonce point introduced, normalise to low-s, and locally verify before
// returning the signature Alice is willing to publish. Alice never
// broadcasts a signature she cannot verify herself — this is what makes E3
// (a tampered Msg 8 ciphertext) surface as a local verify failure here
// rather than an invalid on-chain broadcast.
func (a *Alice5) ReceiveMsg9(ctx context.Context, msg9 *Msg9) (PublishedSignature, error) {
	logger.Verbose(ctx, "alice5.receive(msg9): entering")

	if a.consumed {
		logger.Error(ctx, "alice5.receive(msg9): %s", ErrStateConsumed)
		return PublishedSignature{}, ErrStateConsumed
	}
	a.consumed = true

	yInv := a.y.Invert()
	sRedeem := yInv.Mul(msg9.SRedeemDoublePrime)

	rx, s, ok := ecdsa.NormalizeAndVerify(a.mRedeem, a.jointXBeta, sRedeem, a.rBetaRedeem)
	if !ok {
		logger.Error(ctx, "alice5.receive(msg9): %s", ErrEcdsaVerifyFailed)
		return PublishedSignature{}, ErrEcdsaVerifyFailed
	}

	logger.Verbose(ctx, "alice5.receive(msg9): exiting")
	return PublishedSignature{Rx: rx, S: s}, nil
}
