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
	"github.com/tokenized/ssecdsa/transcript"
)

// Bob2 is Bob's state after Bob1.New produced Msg1; it owns the committed
// opening it will reveal in Msg3.
type Bob2 struct {
	t        *transcript.Transcript
	keys     BobKeys
	opening  committed.Opening
	consumed bool
}

// NewBob implements Bob1.new of spec.md §4.5: sample the four key pairs with
// a transcript-seeded RNG, build four labelled Schnorr witnesses, and commit
// to the resulting proof.
func NewBob(ctx context.Context, t *transcript.Transcript) (*Bob2, Msg1, error) {
	logger.Verbose(ctx, "bob1.new: entering")

	rng, err := t.BuildRng().FinalizeWithOSRand()
	if err != nil {
		logger.Error(ctx, "bob1.new: %s", err)
		return nil, Msg1{}, errors.Wrap(err, "build keygen rng")
	}

	keys, err := NewBobKeys(rng)
	if err != nil {
		logger.Error(ctx, "bob1.new: %s", err)
		return nil, Msg1{}, errors.Wrap(err, "sample bob keys")
	}

	witnesses := buildBobWitnesses(keys)
	commitment, opening, err := committed.Commit(t, bobProofLabel, witnesses)
	if err != nil {
		logger.Error(ctx, "bob1.new: %s", err)
		return nil, Msg1{}, errors.Wrap(err, "commit to bp proof")
	}

	logger.Verbose(ctx, "bob1.new: exiting")
	return &Bob2{t: t, keys: keys, opening: opening}, commitment, nil
}

// Bob3 is Bob's state after verifying Alice's AP proof and publishing his
// Paillier share.
type Bob3 struct {
	t           *transcript.Transcript
	keys        BobKeys
	alicePoints AlicePoints
	paillierSk  *paillier.PrivateKey
	cXBeta      *big.Int
	consumed    bool
}

// ReceiveMsg2 implements Bob2.receive of spec.md §4.5: verify Alice's proof,
// generate a Paillier key pair, encrypt x_beta, and produce the correct-key
// and range proofs.
func (b *Bob2) ReceiveMsg2(ctx context.Context, msg2 *Msg2) (*Bob3, *Msg3, error) {
	logger.Verbose(ctx, "bob2.receive(msg2): entering")

	if b.consumed {
		logger.Error(ctx, "bob2.receive(msg2): %s", ErrStateConsumed)
		return nil, nil, ErrStateConsumed
	}
	b.consumed = true

	if !msg2.Verify(b.t, aliceProofLabel) {
		logger.Error(ctx, "bob2.receive(msg2): %s", ErrProofRejected)
		return nil, nil, ErrProofRejected
	}

	alicePoints, err := extractAlicePoints(msg2)
	if err != nil {
		logger.Error(ctx, "bob2.receive(msg2): %s", err)
		return nil, nil, err
	}

	sk, err := paillier.GenerateKeypair(paillier.KeyBits)
	if err != nil {
		logger.Error(ctx, "bob2.receive(msg2): %s", err)
		return nil, nil, errors.Wrap(err, "generate paillier keypair")
	}

	c, r, err := sk.Encrypt(b.keys.XBeta.Sk.Big())
	if err != nil {
		logger.Error(ctx, "bob2.receive(msg2): %s", err)
		return nil, nil, errors.Wrap(err, "encrypt x_beta")
	}

	correctKeyProof, err := paillier.GenerateCorrectKeyProof(sk)
	if err != nil {
		logger.Error(ctx, "bob2.receive(msg2): %s", err)
		return nil, nil, errors.Wrap(err, "generate correct-key proof")
	}

	bound := new(big.Int).Div(curve.Q, big.NewInt(3))
	rangeProof, err := paillier.GenerateRangeProof(sk, b.keys.XBeta.Sk.Big(), r, c, bound)
	if err != nil {
		logger.Error(ctx, "bob2.receive(msg2): %s", err)
		return nil, nil, errors.Wrap(err, "generate range proof")
	}

	msg3 := &Msg3{
		Opening:         b.opening,
		EK:              &sk.PublicKey,
		C:               c,
		CorrectKeyProof: correctKeyProof,
		RangeProof:      rangeProof,
	}

	next := &Bob3{t: b.t, keys: b.keys, alicePoints: alicePoints, paillierSk: sk, cXBeta: c}
	logger.Verbose(ctx, "bob2.receive(msg2): exiting")
	return next, msg3, nil
}

// Bob4 is Bob's state after answering Alice's PDL challenge.
type Bob4 struct {
	t           *transcript.Transcript
	keys        BobKeys
	alicePoints AlicePoints
	paillierSk  *paillier.PrivateKey
	cXBeta      *big.Int
	pdlCommit   *paillier.PDLCommitment
	pdlState    *paillier.PDLBobState
	consumed    bool
}

// ReceiveMsg4 answers Alice's PDL first message (spec.md §4.4 message 5 /
// §4.5's PDL first-stage).
func (b *Bob3) ReceiveMsg4(ctx context.Context, msg4 *Msg4) (*Bob4, *Msg5, error) {
	logger.Verbose(ctx, "bob3.receive(msg4): entering")

	if b.consumed {
		logger.Error(ctx, "bob3.receive(msg4): %s", ErrStateConsumed)
		return nil, nil, ErrStateConsumed
	}
	b.consumed = true

	commitment, state, err := paillier.PDLFirstStage(b.paillierSk, b.keys.XBeta.Sk, msg4)
	if err != nil {
		logger.Error(ctx, "bob3.receive(msg4): %s", err)
		return nil, nil, errors.Wrap(ErrPdlFailed, err.Error())
	}

	next := &Bob4{
		t: b.t, keys: b.keys, alicePoints: b.alicePoints,
		paillierSk: b.paillierSk, cXBeta: b.cXBeta,
		pdlCommit: commitment, pdlState: state,
	}
	logger.Verbose(ctx, "bob3.receive(msg4): exiting")
	return next, commitment, nil
}

// Bob5 is Bob's state after opening the PDL commitment.
type Bob5 struct {
	t           *transcript.Transcript
	keys        BobKeys
	alicePoints AlicePoints
	paillierSk  *paillier.PrivateKey
	cXBeta      *big.Int
	consumed    bool
}

// ReceiveMsg6 opens Bob's PDL commitment (spec.md §4.4 message 7 / §4.5's
// PDL second-stage).
func (b *Bob4) ReceiveMsg6(ctx context.Context, msg6 *Msg6) (*Bob5, *Msg7, error) {
	logger.Verbose(ctx, "bob4.receive(msg6): entering")

	if b.consumed {
		logger.Error(ctx, "bob4.receive(msg6): %s", ErrStateConsumed)
		return nil, nil, ErrStateConsumed
	}
	b.consumed = true

	final, err := paillier.PDLSecondStage(b.pdlState, b.keys.XBeta.Sk, msg6)
	if err != nil {
		logger.Error(ctx, "bob4.receive(msg6): %s", err)
		return nil, nil, errors.Wrap(ErrPdlFailed, err.Error())
	}

	next := &Bob5{t: b.t, keys: b.keys, alicePoints: b.alicePoints, paillierSk: b.paillierSk, cXBeta: b.cXBeta}
	logger.Verbose(ctx, "bob4.receive(msg6): exiting")
	return next, final, nil
}

// Bob6 is Bob's final state: he holds the redeem scalar s'' (still missing
// Alice's y^-1 factor, which only she can supply) and his own locally
// verified refund signature, per spec.md §9 open question (c) — Bob always
// verifies the refund signature himself, but only publishes it if Alice
// never completes the redeem.
type Bob6 struct {
	sRedeemDoublePrime curve.Scalar
	refundSig          PublishedSignature
	y                  curve.Point
	consumed           bool
}

// ReceiveMsg8 implements Bob4.receive(Msg 8) of spec.md §4.5: decrypt both
// partial-signature ciphertexts, verify the refund half against the joint
// point equation, normalise and locally verify the refund signature, and
// emit the redeem half still missing Alice's y^-1 factor.
func (b *Bob5) ReceiveMsg8(ctx context.Context, msg8 *Msg8) (*Bob6, *Msg9, error) {
	logger.Verbose(ctx, "bob5.receive(msg8): entering")

	if b.consumed {
		logger.Error(ctx, "bob5.receive(msg8): %s", ErrStateConsumed)
		return nil, nil, ErrStateConsumed
	}
	b.consumed = true

	jointXBeta := b.alicePoints.XBeta.Mul(b.keys.XBeta.Sk)

	_, mRefund := FixedMessageHashes()

	sRedeem, err := paillier.ExtractSignatureScalar(b.paillierSk, msg8.CRedeem)
	if err != nil {
		logger.Error(ctx, "bob5.receive(msg8): %s", err)
		return nil, nil, errors.Wrap(ErrPartialSigMalformed, err.Error())
	}
	if sRedeem.Big().Sign() == 0 {
		logger.Error(ctx, "bob5.receive(msg8): %s", ErrPartialSigMalformed)
		return nil, nil, ErrPartialSigMalformed
	}

	sRefundFull, err := paillier.ExtractSignatureScalar(b.paillierSk, msg8.CRefund)
	if err != nil {
		logger.Error(ctx, "bob5.receive(msg8): %s", err)
		return nil, nil, errors.Wrap(ErrPartialSigMalformed, err.Error())
	}
	rFullRefund := b.alicePoints.RBetaRefund.Mul(b.keys.RBetaRefund.Sk)
	rxFull := curve.NewScalar(rFullRefund.XCoord())
	if err := verifyPartialSigEquation(b.alicePoints.RBetaRefund, sRefundFull, jointXBeta, mRefund, rxFull); err != nil {
		logger.Error(ctx, "bob5.receive(msg8): %s", err)
		return nil, nil, err
	}

	sRefund := sRefundFull.Mul(b.keys.RBetaRefund.Sk.Invert())
	rxRefund, normalizedSRefund, ok := ecdsa.NormalizeAndVerify(mRefund, jointXBeta, sRefund, rFullRefund)
	if !ok {
		logger.Error(ctx, "bob5.receive(msg8): %s", ErrEcdsaVerifyFailed)
		return nil, nil, ErrEcdsaVerifyFailed
	}

	sRedeemDoublePrime := sRedeem.Mul(b.keys.RBetaRedeem.Sk.Invert())

	next := &Bob6{
		sRedeemDoublePrime: sRedeemDoublePrime,
		refundSig:          PublishedSignature{Rx: rxRefund, S: normalizedSRefund},
		y:                  b.alicePoints.Y,
	}
	logger.Verbose(ctx, "bob5.receive(msg8): exiting")
	return next, &Msg9{SRedeemDoublePrime: sRedeemDoublePrime}, nil
}

// verifyPartialSigEquation checks rPartial*s' == X_beta*rx + G*m, where
// rPartial is the counterparty's own unscaled nonce point (R_beta_refund_alice
// here) and rx is the x-coordinate of the full joint nonce point. ReceiveMsg8
// applies this check to the refund half only; the redeem half is not checked
// by Bob, and an invalid redeem scalar surfaces as Alice's final verify
// failure in ReceiveMsg9.
func verifyPartialSigEquation(rPartial curve.Point, s curve.Scalar, xBeta curve.Point, m curve.Scalar, rx curve.Scalar) error {
	lhs := rPartial.Mul(s)
	rhs := xBeta.Mul(rx).Add(curve.BaseMul(m))
	if !lhs.Equal(rhs) {
		return ErrPartialSigMalformed
	}
	return nil
}

// RefundSignature returns Bob's locally verified refund signature. Bob
// publishes it only if Alice never completes the redeem path.
func (b *Bob6) RefundSignature() PublishedSignature {
	return b.refundSig
}

// ObserveRedeem implements Bob5's extraction step of spec.md §4.5: given the
// published redeem signature, recover the swap secret y, detecting and
// correcting for a low-s sign flip via spec.md §9's scenario E6.
func (b *Bob6) ObserveRedeem(ctx context.Context, sig PublishedSignature) (curve.Scalar, error) {
	logger.Verbose(ctx, "bob6.observe_redeem: entering")

	if b.consumed {
		logger.Error(ctx, "bob6.observe_redeem: %s", ErrStateConsumed)
		return curve.Scalar{}, ErrStateConsumed
	}
	b.consumed = true

	sInv := sig.S.Invert()
	yCand := sInv.Mul(b.sRedeemDoublePrime)

	candPoint := curve.BaseMul(yCand)
	if candPoint.Equal(b.y) {
		logger.Verbose(ctx, "bob6.observe_redeem: exiting")
		return yCand, nil
	}

	negCand := curve.NewScalar(new(big.Int).Sub(curve.Q, yCand.Big()))
	negPoint := curve.BaseMul(negCand)
	if negPoint.XCoord().Cmp(b.y.XCoord()) == 0 {
		logger.Verbose(ctx, "bob6.observe_redeem: exiting")
		return negCand, nil
	}

	logger.Error(ctx, "bob6.observe_redeem: %s", ErrYExtractionFailed)
	return curve.Scalar{}, ErrYExtractionFailed
}
