package sigma

import (
	"crypto/rand"
	"io"

	"github.com/pkg/errors"

	"github.com/tokenized/ssecdsa/curve"
	"github.com/tokenized/ssecdsa/transcript"
)

// ErrVerifyFailed is returned by Verify when the recomputed challenge does
// not match the one carried in the proof.
var ErrVerifyFailed = errors.New("sigma: proof verification failed")

// Response pairs one per-witness response scalar with the labelled
// statement it answers, in the fixed order the witnesses were supplied to
// Prove.
type Response struct {
	S         curve.Scalar
	Statement LabelledStatement
}

// CompactProof is spec.md §4.1's "compact proof": a single shared challenge
// plus one response per witness.
type CompactProof struct {
	Challenge curve.Scalar
	Responses []Response
}

// genRngFromWitnesses builds the witness-seeded commitment RNG of spec.md
// §4.1 step 3: a transcript-rekeyed RNG re-keyed with each witness scalar,
// finalized with fresh OS randomness.
func genRngFromWitnesses(t *transcript.Transcript, witnesses []Witness) (io.Reader, error) {
	builder := t.BuildRng()
	for _, w := range witnesses {
		b := w.X.Bytes()
		builder = builder.RekeyWithWitnessBytes([]byte(""), b[:])
	}
	return builder.Finalize(rand.Reader)
}

// produceCommitments draws one fresh blinding scalar r per witness, absorbs
// R = r·g (and r·h for DDH) into t, and returns the blinding scalars for use
// in the response computation. This is spec.md §4.1 steps 3-4.
func produceCommitments(t *transcript.Transcript, witnesses []Witness) ([]curve.Scalar, error) {
	rng, err := genRngFromWitnesses(t, witnesses)
	if err != nil {
		return nil, errors.Wrap(err, "build witness-seeded rng")
	}

	rs := make([]curve.Scalar, len(witnesses))
	for i, w := range witnesses {
		var blinding [32]byte
		if _, err := io.ReadFull(rng, blinding[:]); err != nil {
			return nil, errors.Wrap(err, "draw blinding scalar")
		}
		r := curve.ScalarFromBytes(blinding[:])
		rs[i] = r

		c := w.Kind.genCommitment(r)
		appendCommitment(t, w.Label, w.Kind.Kind, c)
	}
	return rs, nil
}

// Prove implements spec.md §4.1's Prove algorithm: domain-separate, absorb
// each witness's statement, draw witness-seeded blinding scalars, absorb
// their commitments, derive one shared challenge, and emit one response per
// witness.
func Prove(t *transcript.Transcript, proofLabel []byte, witnesses []Witness) (*CompactProof, error) {
	startProof(t, proofLabel)

	statements := make([]LabelledStatement, len(witnesses))
	for i, w := range witnesses {
		ls := w.toStatement()
		appendStatement(t, ls)
		statements[i] = ls
	}

	rs, err := produceCommitments(t, witnesses)
	if err != nil {
		return nil, err
	}

	c := getChallenge(t, "chal")

	responses := make([]Response, len(witnesses))
	for i, w := range witnesses {
		s := rs[i].Add(c.Mul(w.X))
		responses[i] = Response{S: s, Statement: statements[i]}
	}

	return &CompactProof{Challenge: c, Responses: responses}, nil
}

// Verify implements spec.md §4.1's Verify algorithm: domain-separate,
// absorb each labelled statement in proof order, recover each commitment
// algebraically from (s, c), absorb it, and accept iff the recomputed
// challenge matches the one carried in the proof.
func (p *CompactProof) Verify(t *transcript.Transcript, proofLabel []byte) bool {
	startProof(t, proofLabel)

	for _, r := range p.Responses {
		appendStatement(t, r.Statement)
	}

	minusC := p.Challenge.Negate()

	for _, r := range p.Responses {
		c := r.Statement.Statement.recoverCommitment(minusC, r.S)
		appendCommitment(t, r.Statement.Label, r.Statement.Statement.Kind.Kind, c)
	}

	recomputed := getChallenge(t, "chal")
	return recomputed.Equal(p.Challenge)
}

// ResponseFor returns the response for the witness statement labelled
// label, or ok=false if no such label is present in the proof. The protocol
// layer uses a fixed, compile-time witness order instead of relying on this
// for anything security-critical (spec.md §9's "dynamic label lookup"
// REDESIGN FLAG); it exists for tests and diagnostics.
func (p *CompactProof) ResponseFor(label []byte) (Response, bool) {
	for _, r := range p.Responses {
		if string(r.Statement.Label) == string(label) {
			return r, true
		}
	}
	return Response{}, false
}
