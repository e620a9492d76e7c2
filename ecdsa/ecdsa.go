// Package ecdsa implements the two external ECDSA helpers of spec.md §4.6:
// a standard secp256k1 verify over a compact (rx || s) encoding, and a
// low-s-normalising verify used when constructing the final signature. It
// is a separate package from crypto/ecdsa so call sites read as the
// domain-specific "standard secp256k1 verify" spec.md treats as an external
// collaborator, in the same spirit as the teacher's bitcoin.Signature.Verify
// wrapping crypto/ecdsa.Verify.
package ecdsa

import (
	"crypto/ecdsa"

	"github.com/btcsuite/btcd/btcec"

	"github.com/tokenized/ssecdsa/curve"
)

var curveS256 = btcec.S256()

// Verify checks a compact (rx, s) signature of message m against public
// point X, per spec.md §4.6's verify(m, rx, s, X).
func Verify(m curve.Scalar, rx, s curve.Scalar, x curve.Point) bool {
	pub := &ecdsa.PublicKey{
		Curve: curveS256,
		X:     x.XCoord(),
		Y:     x.YCoord(),
	}

	hash := m.Bytes()
	return ecdsa.Verify(pub, hash[:], rx.Big(), s.Big())
}

// NormalizeAndVerify implements spec.md §4.6's normalize_and_verify: set
// s <- min(s, q-s) (low-s form), set Rx = x-coord(R), verify, and return the
// (Rx, s) pair used for the canonical, Bitcoin-style signature on success.
func NormalizeAndVerify(m curve.Scalar, x curve.Point, s curve.Scalar, r curve.Point) (rx curve.Scalar, normalizedS curve.Scalar, ok bool) {
	normalizedS = s
	if s.IsOverHalfOrder() {
		normalizedS = s.Negate()
	}

	rx = curve.NewScalar(r.XCoord())

	return rx, normalizedS, Verify(m, rx, normalizedS, x)
}

// HashToScalar reduces an arbitrary-length message digest (e.g. a
// double-SHA-256 transaction hash) to a scalar mod q, the conversion
// spec.md §4.5 calls out for m_redeem / m_refund.
func HashToScalar(digest []byte) curve.Scalar {
	return curve.ScalarFromBytes(digest)
}
