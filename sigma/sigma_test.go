package sigma

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/tokenized/ssecdsa/curve"
	"github.com/tokenized/ssecdsa/transcript"
)

func randomScalar(t *testing.T) curve.Scalar {
	t.Helper()
	s, err := curve.RandomScalar(rand.Reader)
	if err != nil {
		t.Fatalf("random scalar: %s", err)
	}
	return s
}

func TestSchnorrSoundnessAndCompleteness(t *testing.T) {
	x := randomScalar(t)
	w := NewSchnorrWitness(x, curve.G, []byte("x"))

	proverT := transcript.New([]byte("sigma-test"))
	proof, err := Prove(proverT, []byte("proof"), []Witness{w})
	if err != nil {
		t.Fatalf("prove: %s", err)
	}

	verifierT := transcript.New([]byte("sigma-test"))
	if !proof.Verify(verifierT, []byte("proof")) {
		t.Fatalf("honest schnorr proof failed to verify")
	}
}

func TestDDHSoundnessAndCompleteness(t *testing.T) {
	x := randomScalar(t)
	w := NewDDHWitness(x, curve.G, curve.H, []byte("x"))

	proverT := transcript.New([]byte("sigma-test"))
	proof, err := Prove(proverT, []byte("proof"), []Witness{w})
	if err != nil {
		t.Fatalf("prove: %s", err)
	}

	verifierT := transcript.New([]byte("sigma-test"))
	if !proof.Verify(verifierT, []byte("proof")) {
		t.Fatalf("honest ddh proof failed to verify")
	}
}

func TestMultiWitnessProof(t *testing.T) {
	x1 := randomScalar(t)
	x2 := randomScalar(t)
	witnesses := []Witness{
		NewSchnorrWitness(x1, curve.G, []byte("x1")),
		NewDDHWitness(x2, curve.G, curve.H, []byte("x2")),
	}

	proverT := transcript.New([]byte("multi"))
	proof, err := Prove(proverT, []byte("proof"), witnesses)
	if err != nil {
		t.Fatalf("prove: %s", err)
	}
	if len(proof.Responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(proof.Responses))
	}

	verifierT := transcript.New([]byte("multi"))
	if !proof.Verify(verifierT, []byte("proof")) {
		t.Fatalf("multi-witness proof failed to verify")
	}
}

func TestReorderingResponsesBreaksVerification(t *testing.T) {
	x1 := randomScalar(t)
	x2 := randomScalar(t)
	witnesses := []Witness{
		NewSchnorrWitness(x1, curve.G, []byte("x1")),
		NewSchnorrWitness(x2, curve.G, []byte("x2")),
	}

	proverT := transcript.New([]byte("reorder"))
	proof, err := Prove(proverT, []byte("proof"), witnesses)
	if err != nil {
		t.Fatalf("prove: %s", err)
	}

	proof.Responses[0], proof.Responses[1] = proof.Responses[1], proof.Responses[0]

	verifierT := transcript.New([]byte("reorder"))
	if proof.Verify(verifierT, []byte("proof")) {
		t.Fatalf("reordered responses should not verify")
	}
}

func TestMutatingChallengeBreaksVerification(t *testing.T) {
	x := randomScalar(t)
	w := NewSchnorrWitness(x, curve.G, []byte("x"))

	proverT := transcript.New([]byte("mutate"))
	proof, err := Prove(proverT, []byte("proof"), []Witness{w})
	if err != nil {
		t.Fatalf("prove: %s", err)
	}

	proof.Challenge = proof.Challenge.Add(curve.NewScalar(big.NewInt(1)))

	verifierT := transcript.New([]byte("mutate"))
	if proof.Verify(verifierT, []byte("proof")) {
		t.Fatalf("mutated challenge should not verify")
	}
}

// TestTranscriptDivergence implements spec.md §8's "transcript divergence"
// invariant: Prove and Verify, run on two transcripts initialised with the
// same domain, leave both transcripts in byte-identical states.
func TestTranscriptDivergence(t *testing.T) {
	x := randomScalar(t)
	w := NewSchnorrWitness(x, curve.G, []byte("x"))

	proverT := transcript.New([]byte("divergence"))
	proof, err := Prove(proverT, []byte("proof"), []Witness{w})
	if err != nil {
		t.Fatalf("prove: %s", err)
	}

	verifierT := transcript.New([]byte("divergence"))
	if !proof.Verify(verifierT, []byte("proof")) {
		t.Fatalf("proof failed to verify")
	}

	var proverOut, verifierOut [32]byte
	proverT.ChallengeBytes("test", proverOut[:])
	verifierT.ChallengeBytes("test", verifierOut[:])

	if proverOut != verifierOut {
		t.Fatalf("prover and verifier transcripts diverged after a successful run")
	}
}
