// Package committed implements the commit-then-reveal wrapper of spec.md
// §4.2: hide-then-reveal semantics for any sigma.CompactProof, using the
// live transcript itself as the random oracle that both binds and hides the
// commitment.
package committed

import (
	"crypto/rand"
	"io"

	"github.com/pkg/errors"

	"github.com/tokenized/ssecdsa/sigma"
	"github.com/tokenized/ssecdsa/transcript"
)

// ErrCommitmentMismatch is returned by Open when the revealed proof and
// nonce do not hash to the stored commitment (spec.md §7's
// CommitmentMismatch).
var ErrCommitmentMismatch = errors.New("committed: commitment mismatch")

// Commitment is the 32-byte opaque value the prover sends first.
type Commitment [32]byte

// Opening is what the prover reveals afterward: the nonce used to blind the
// commitment, and the underlying Σ-proof.
type Opening struct {
	Nonce [32]byte
	Proof *sigma.CompactProof
}

// addCommitedNizkNonce absorbs nonce under label with the domain separator
// of spec.md §4.3 ("commited-nizk/commited-transcript/1.0").
func addCommitedNizkNonce(t *transcript.Transcript, label []byte, nonce [32]byte) {
	t.AppendMessage([]byte("commited-nizk/commited-transcript/1.0"), label)
	t.AppendMessage([]byte("nonce"), nonce[:])
}

// getCommitment extracts the 32-byte commitment value from t.
func getCommitment(t *transcript.Transcript) Commitment {
	var out Commitment
	t.ChallengeBytes("commitment", out[:])
	return out
}

// addCommitment absorbs a commitment on the live transcript under label,
// per spec.md §4.3's "commited-nizk/commitment/1.0" domain separator.
func addCommitment(t *transcript.Transcript, label []byte, c Commitment) {
	t.AppendMessage([]byte("commited-nizk/commitment/1.0"), label)
	t.AppendMessage([]byte("commitment"), c[:])
}

// Commit implements spec.md §4.2's Commit algorithm: fork the live
// transcript, produce the Σ-proof on the fork, sample a witness-seeded
// 32-byte nonce, absorb it into the fork, extract the commitment value, and
// finally absorb the commitment itself (not the proof) onto the live
// transcript.
func Commit(t *transcript.Transcript, label []byte, witnesses []sigma.Witness) (Commitment, Opening, error) {
	fork := t.Clone()

	proof, err := sigma.Prove(fork, label, witnesses)
	if err != nil {
		return Commitment{}, Opening{}, errors.Wrap(err, "prove")
	}

	nonce, err := sampleNonce(fork, witnesses)
	if err != nil {
		return Commitment{}, Opening{}, errors.Wrap(err, "sample nonce")
	}

	addCommitedNizkNonce(fork, label, nonce)
	commitment := getCommitment(fork)

	addCommitment(t, label, commitment)

	return commitment, Opening{Nonce: nonce, Proof: proof}, nil
}

func sampleNonce(fork *transcript.Transcript, witnesses []sigma.Witness) ([32]byte, error) {
	builder := fork.BuildRng()
	for _, w := range witnesses {
		b := w.X.Bytes()
		builder = builder.RekeyWithWitnessBytes([]byte(""), b[:])
	}

	rng, err := builder.Finalize(rand.Reader)
	if err != nil {
		return [32]byte{}, err
	}

	var nonce [32]byte
	if _, err := io.ReadFull(rng, nonce[:]); err != nil {
		return [32]byte{}, err
	}
	return nonce, nil
}

// Opener is returned by Commitment.Receive: it captures the transcript
// snapshot from before the commitment was absorbed, so that Open can
// rebuild the committed-to fork once the opening arrives.
type Opener struct {
	snapshot   *transcript.Transcript
	commitment Commitment
	label      []byte
}

// Receive absorbs a received commitment onto t exactly as Commit's prover
// side did, and returns an Opener capturing the pre-absorb snapshot, per
// spec.md §4.2's Receive algorithm.
func Receive(t *transcript.Transcript, commitment Commitment, label []byte) Opener {
	snapshot := t.Clone()
	addCommitment(t, label, commitment)
	return Opener{snapshot: snapshot, commitment: commitment, label: label}
}

// Open implements spec.md §4.2's Open algorithm: fork the captured
// snapshot, verify the proof against the fork, absorb the revealed nonce
// identically, extract 32 bytes, and accept iff they match the stored
// commitment.
func (o Opener) Open(opening Opening) (*sigma.CompactProof, error) {
	fork := o.snapshot.Clone()

	if !opening.Proof.Verify(fork, o.label) {
		return nil, errors.Wrap(sigma.ErrVerifyFailed, "committed: revealed proof failed to verify")
	}

	addCommitedNizkNonce(fork, o.label, opening.Nonce)
	recomputed := getCommitment(fork)

	if recomputed != o.commitment {
		return nil, ErrCommitmentMismatch
	}

	return opening.Proof, nil
}
