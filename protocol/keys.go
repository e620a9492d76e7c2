// Package protocol implements spec.md §4.4-§4.6: the nine-message,
// two-party scriptless-swap ECDSA protocol built on top of curve, sigma,
// committed, transcript, ecdsa and paillier. Bob and Alice are each a chain
// of linear typestates; every receive_message transition marks the previous
// state consumed (a second call returns ErrStateConsumed) and returns the
// next state plus the outbound message.
package protocol

import (
	"io"
	"math/big"

	"github.com/pkg/errors"

	"github.com/tokenized/ssecdsa/curve"
)

// KeyPair is a secp256k1 scalar with its public point, the "scalar sk with
// public point pk = sk*G" data model of spec.md §3.
type KeyPair struct {
	Sk curve.Scalar
	Pk curve.Point
}

// NewKeyPair samples sk uniformly from rng and derives its public point.
// The caller supplies a transcript-seeded RNG per spec.md §3's "created by
// sampling sk uniformly ... via a transcript-seeded RNG".
func NewKeyPair(rng io.Reader) (KeyPair, error) {
	sk, err := curve.RandomScalar(rng)
	if err != nil {
		return KeyPair{}, errors.Wrap(err, "sample key")
	}
	return KeyPair{Sk: sk, Pk: curve.BaseMul(sk)}, nil
}

// BobKeys holds Bob's four session key pairs, spec.md §3's "Bob holds:
// x_alpha, x_beta, r_beta_redeem, r_beta_refund".
type BobKeys struct {
	XAlpha       KeyPair
	XBeta        KeyPair
	RBetaRedeem  KeyPair
	RBetaRefund  KeyPair
}

// AliceKeys holds Alice's four session values, spec.md §3's "Alice holds:
// y, x_beta, r_beta_redeem, r_beta_refund". Y.Pk is the point Y = y*G.
type AliceKeys struct {
	Y            KeyPair
	XBeta        KeyPair
	RBetaRedeem  KeyPair
	RBetaRefund  KeyPair
}

// NewBobKeys samples all four of Bob's key pairs.
func NewBobKeys(rng io.Reader) (BobKeys, error) {
	xAlpha, err := NewKeyPair(rng)
	if err != nil {
		return BobKeys{}, errors.Wrap(err, "x_alpha")
	}
	// x_beta is resampled until it lies below q/3, the bound Bob's range
	// proof in Msg 3 covers.
	xBetaBound := new(big.Int).Div(curve.Q, big.NewInt(3))
	var xBeta KeyPair
	for {
		xBeta, err = NewKeyPair(rng)
		if err != nil {
			return BobKeys{}, errors.Wrap(err, "x_beta")
		}
		if xBeta.Sk.Big().Cmp(xBetaBound) < 0 {
			break
		}
	}
	rRedeem, err := NewKeyPair(rng)
	if err != nil {
		return BobKeys{}, errors.Wrap(err, "r_beta_redeem")
	}
	rRefund, err := NewKeyPair(rng)
	if err != nil {
		return BobKeys{}, errors.Wrap(err, "r_beta_refund")
	}
	return BobKeys{XAlpha: xAlpha, XBeta: xBeta, RBetaRedeem: rRedeem, RBetaRefund: rRefund}, nil
}

// NewAliceKeys samples all four of Alice's session values.
func NewAliceKeys(rng io.Reader) (AliceKeys, error) {
	y, err := NewKeyPair(rng)
	if err != nil {
		return AliceKeys{}, errors.Wrap(err, "y")
	}
	xBeta, err := NewKeyPair(rng)
	if err != nil {
		return AliceKeys{}, errors.Wrap(err, "x_beta")
	}
	rRedeem, err := NewKeyPair(rng)
	if err != nil {
		return AliceKeys{}, errors.Wrap(err, "r_beta_redeem")
	}
	rRefund, err := NewKeyPair(rng)
	if err != nil {
		return AliceKeys{}, errors.Wrap(err, "r_beta_refund")
	}
	return AliceKeys{Y: y, XBeta: xBeta, RBetaRedeem: rRedeem, RBetaRefund: rRefund}, nil
}

// BobPoints is the four public points Alice recovers once Bob opens his
// commitment (spec.md §4.4's "BP").
type BobPoints struct {
	XAlpha      curve.Point
	XBeta       curve.Point
	RBetaRedeem curve.Point
	RBetaRefund curve.Point
}

// AlicePoints is the five public points Bob recovers from Alice's Msg 2
// proof (spec.md §4.4's "AP"), with Y and R3 the DDH statement's pair of
// public images.
type AlicePoints struct {
	XBeta       curve.Point
	RBetaRedeem curve.Point
	RBetaRefund curve.Point
	Y           curve.Point
	R3          curve.Point
}
