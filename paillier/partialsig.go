package paillier

import (
	"crypto/rand"
	"math/big"

	"github.com/pkg/errors"

	"github.com/tokenized/ssecdsa/curve"
)

// partialSigMaskBits sizes the statistical mask rho added before
// multiplying by the curve order q, keeping the masked term far below N so
// the ciphertext never wraps while still hiding k2^-1*m modulo q.
const partialSigMaskBits = 256 + 256

// ComputePartialSig implements the homomorphic half of spec.md §4.5's
// partial-signature step (messages 8/9): given Bob's encrypted key share
// (encX1, the Paillier ciphertext of x1 under Bob's key), Alice's own share
// x2, her nonce share k2, and the counterparty's nonce point (Bob's
// R_beta_refund for the refund path or, for the redeem path, R_contrived = y·R_beta_redeem_bob
// per spec.md §9's "contrived nonce" trick), it forms the joint nonce point
// R = k2·counterpartyPoint, sets rx = x-coord(R), and returns a ciphertext
// that decrypts (under Bob's Paillier key) to k2^-1*(m + rx*x1*x2) mod q —
// the partial-sig scalar for nonce point R. For the redeem path this value
// is still missing the y^-1 factor that only Alice can supply, since Bob's
// own unblinding step (dividing by his local r_beta_redeem_bob) can only
// account for his half of R_contrived's discrete log; Alice applies the
// remaining y^-1 herself once Bob answers with Msg 9, rather than this
// routine blinding the ciphertext by y up front — spec.md §9's note that a
// clean reimplementation should "write this formula directly" rather than
// reproduce the original library-abusing blind.
func ComputePartialSig(pk *PublicKey, encX1 *big.Int, x2, k2 curve.Scalar, counterpartyPoint curve.Point, m curve.Scalar) (ciphertext *big.Int, rx curve.Scalar, err error) {
	r := counterpartyPoint.Mul(k2)
	rx = curve.NewScalar(r.XCoord())

	k2Inv := k2.Invert()
	v := k2Inv.Mul(rx).Mul(x2)

	rho, err := rand.Int(rand.Reader, new(big.Int).Lsh(bigOne, partialSigMaskBits))
	if err != nil {
		return nil, curve.Scalar{}, errors.Wrap(err, "sample rho")
	}

	maskedM := k2Inv.Mul(m).Big()
	rhoQ := new(big.Int).Mul(rho, curve.Q)
	plain1 := new(big.Int).Add(maskedM, rhoQ)

	c1, _, err := pk.Encrypt(plain1)
	if err != nil {
		return nil, curve.Scalar{}, errors.Wrap(err, "encrypt masked message term")
	}

	c2 := pk.MulByScalar(encX1, v.Big())
	combined := pk.AddCiphertexts(c2, c1)

	return combined, rx, nil
}

// ExtractSignatureScalar recovers s = Dec(ciphertext) mod q, the step Bob
// performs with his Paillier private key after receiving Alice's partial
// signature ciphertext (spec.md §4.5 message 9, and message 8 for the
// refund path Bob computes unblinded).
func ExtractSignatureScalar(sk *PrivateKey, ciphertext *big.Int) (curve.Scalar, error) {
	plain, err := sk.Decrypt(ciphertext)
	if err != nil {
		return curve.Scalar{}, errors.Wrap(err, "decrypt partial signature")
	}
	return curve.NewScalar(new(big.Int).Mod(plain, curve.Q)), nil
}
