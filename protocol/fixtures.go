package protocol

import (
	"crypto/sha256"

	"github.com/tokenized/ssecdsa/curve"
	"github.com/tokenized/ssecdsa/ecdsa"
)

// sha256d computes the double-SHA-256 digest spec.md §8's fixed test
// transactions use.
func sha256d(b []byte) [32]byte {
	first := sha256.Sum256(b)
	return sha256.Sum256(first[:])
}

// FixedMessageHashes returns the two fixed message scalars spec.md §8's
// end-to-end scenarios sign: m_redeem pays the joint output to Alice,
// m_refund pays it back to Bob.
func FixedMessageHashes() (mRedeem, mRefund curve.Scalar) {
	redeemDigest := sha256d([]byte("Pay from joint output X to Alice 10 BTC"))
	refundDigest := sha256d([]byte("Pay from joint output X to Bob 10 BTC"))
	return ecdsa.HashToScalar(redeemDigest[:]), ecdsa.HashToScalar(refundDigest[:])
}
