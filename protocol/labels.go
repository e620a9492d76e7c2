package protocol

// Fixed domain-separation labels for the two top-level Σ-proofs exchanged
// in messages 1-3, kept distinct from every statement label of messages.go
// so Bob's and Alice's proofs can never be replayed against each other.
var (
	bobProofLabel   = []byte("ssecdsa/bob-bp-proof/1.0")
	aliceProofLabel = []byte("ssecdsa/alice-ap-proof/1.0")
)
