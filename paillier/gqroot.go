package paillier

import (
	"math/big"

	"github.com/tokenized/ssecdsa/transcript"
)

// challengeBits bounds the Fiat-Shamir challenges used by the Guillou-
// Quisquard-style N-th-root proofs below to 128 bits, giving each round the
// usual 2^-128 soundness error.
const challengeBits = 128

var challengeModulus = new(big.Int).Lsh(big.NewInt(1), challengeBits)

// gqRootProof is a non-interactive proof of knowledge of r such that
// stmt = r^N mod N^2, the building block both the bit-is-0-or-1 proof and
// the bit-decomposition consistency proof of rangeproof.go compose.
type gqRootProof struct {
	A *big.Int // commitment r0^N mod N^2
	Z *big.Int // response r0 * root^e mod N
}

func gqChallenge(label string, pkN, stmt, a *big.Int) *big.Int {
	t := transcript.New([]byte("paillier/gq-root-proof/1.0"))
	t.AppendMessage([]byte("label"), []byte(label))
	t.AppendMessage([]byte("N"), pkN.Bytes())
	t.AppendMessage([]byte("stmt"), stmt.Bytes())
	t.AppendMessage([]byte("a"), a.Bytes())

	buf := make([]byte, challengeBits/8+8)
	t.ChallengeBytes("e", buf)
	e := new(big.Int).SetBytes(buf)
	return e.Mod(e, challengeModulus)
}

// proveRoot proves knowledge of root such that stmt = root^N mod N^2.
func proveRoot(pk *PublicKey, label string, stmt, root *big.Int) (*gqRootProof, error) {
	r0, err := randomCoprimeToN(pk.N)
	if err != nil {
		return nil, err
	}
	a := new(big.Int).Exp(r0, pk.N, pk.N2)

	e := gqChallenge(label, pk.N, stmt, a)

	rootToE := new(big.Int).Exp(root, e, pk.N)
	z := new(big.Int).Mul(r0, rootToE)
	z.Mod(z, pk.N)

	return &gqRootProof{A: a, Z: z}, nil
}

// verifyRoot checks z^N == a * stmt^e (mod N^2).
func verifyRoot(pk *PublicKey, label string, stmt *big.Int, proof *gqRootProof) bool {
	if proof == nil || proof.A == nil || proof.Z == nil {
		return false
	}

	e := gqChallenge(label, pk.N, stmt, proof.A)

	lhs := new(big.Int).Exp(proof.Z, pk.N, pk.N2)

	stmtToE := new(big.Int).Exp(stmt, e, pk.N2)
	rhs := new(big.Int).Mul(proof.A, stmtToE)
	rhs.Mod(rhs, pk.N2)

	return lhs.Cmp(rhs) == 0
}

// simulateRoot fabricates a transcript (a, z) for a statement whose
// root is unknown, for a freely-chosen challenge e — the simulator half of
// the bit OR-proof's false branch.
func simulateRoot(pk *PublicKey, stmt, e, z *big.Int) *big.Int {
	stmtToE := new(big.Int).Exp(stmt, e, pk.N2)
	inv := new(big.Int).ModInverse(stmtToE, pk.N2)

	zToN := new(big.Int).Exp(z, pk.N, pk.N2)

	a := new(big.Int).Mul(zToN, inv)
	a.Mod(a, pk.N2)
	return a
}
