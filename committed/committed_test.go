package committed

import (
	"crypto/rand"
	"testing"

	"github.com/tokenized/ssecdsa/curve"
	"github.com/tokenized/ssecdsa/sigma"
	"github.com/tokenized/ssecdsa/transcript"
)

func testWitnesses(t *testing.T) []sigma.Witness {
	t.Helper()
	x1, err := curve.RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("random scalar x1: %s", err)
	}
	x2, err := curve.RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("random scalar x2: %s", err)
	}

	return []sigma.Witness{
		sigma.NewSchnorrWitness(x1, curve.G, []byte("x1")),
		sigma.NewDDHWitness(x2, curve.G, curve.H, []byte("x2")),
	}
}

func TestCommitThenOpen(t *testing.T) {
	witnesses := testWitnesses(t)

	proverT := transcript.New([]byte("commit-test"))
	verifierT := transcript.New([]byte("commit-test"))

	commitment, opening, err := Commit(proverT, []byte("proof_name"), witnesses)
	if err != nil {
		t.Fatalf("commit: %s", err)
	}

	opener := Receive(verifierT, commitment, []byte("proof_name"))

	var proverOut, verifierOut [8]byte
	proverT.ChallengeBytes("debug", proverOut[:])
	verifierT.ChallengeBytes("debug", verifierOut[:])
	if proverOut != verifierOut {
		t.Fatalf("prover and verifier transcripts diverged before opening")
	}

	if _, err := opener.Open(opening); err != nil {
		t.Fatalf("open: %s", err)
	}
}

// TestHidingProducesDistinctCommitments implements spec.md §8's "committed
// NIZK hiding" invariant.
func TestHidingProducesDistinctCommitments(t *testing.T) {
	witnesses := testWitnesses(t)

	t1 := transcript.New([]byte("hiding"))
	t2 := transcript.New([]byte("hiding"))

	c1, _, err := Commit(t1, []byte("proof"), witnesses)
	if err != nil {
		t.Fatalf("commit 1: %s", err)
	}
	c2, _, err := Commit(t2, []byte("proof"), witnesses)
	if err != nil {
		t.Fatalf("commit 2: %s", err)
	}

	if c1 == c2 {
		t.Fatalf("two fresh commitments to the same witnesses were identical")
	}
}

// TestBindingRejectsMutation implements spec.md §8's "committed NIZK
// binding" invariant: mutating any byte of the revealed proof, the nonce,
// or the commitment causes Open to fail.
func TestBindingRejectsMutation(t *testing.T) {
	witnesses := testWitnesses(t)

	t.Run("mutated nonce", func(t *testing.T) {
		proverT := transcript.New([]byte("binding"))
		verifierT := transcript.New([]byte("binding"))

		commitment, opening, err := Commit(proverT, []byte("proof"), witnesses)
		if err != nil {
			t.Fatalf("commit: %s", err)
		}
		opener := Receive(verifierT, commitment, []byte("proof"))

		opening.Nonce[0] ^= 0xFF
		if _, err := opener.Open(opening); err == nil {
			t.Fatalf("expected mutated nonce to be rejected")
		}
	})

	t.Run("mutated proof response", func(t *testing.T) {
		proverT := transcript.New([]byte("binding"))
		verifierT := transcript.New([]byte("binding"))

		commitment, opening, err := Commit(proverT, []byte("proof"), witnesses)
		if err != nil {
			t.Fatalf("commit: %s", err)
		}
		opener := Receive(verifierT, commitment, []byte("proof"))

		opening.Proof.Responses[0].S = opening.Proof.Responses[0].S.Add(curve.ScalarFromBytes([]byte{1}))
		if _, err := opener.Open(opening); err == nil {
			t.Fatalf("expected mutated proof response to be rejected")
		}
	})

	t.Run("mutated commitment", func(t *testing.T) {
		proverT := transcript.New([]byte("binding"))
		verifierT := transcript.New([]byte("binding"))

		commitment, opening, err := Commit(proverT, []byte("proof"), witnesses)
		if err != nil {
			t.Fatalf("commit: %s", err)
		}
		commitment[0] ^= 0xFF
		opener := Receive(verifierT, commitment, []byte("proof"))

		if _, err := opener.Open(opening); err == nil {
			t.Fatalf("expected mutated commitment to be rejected")
		}
	})
}
