package protocol

import "github.com/pkg/errors"

// Sentinel errors, one per failure class, per spec.md §7's error handling
// table. Every verification failure in this package surfaces as exactly one
// of these; none are retried, matching §7's "surface-and-abort" rule.
var (
	// ErrProofRejected signals a sigma-proof verify equation failed, or a
	// proof response was shaped in a way the protocol layer did not expect
	// (spec.md §9 open question (b): missing/malformed labels report this
	// instead of panicking).
	ErrProofRejected = errors.New("protocol: sigma proof rejected")

	// ErrCommitmentMismatch signals a revealed commitment did not match its
	// stored hash.
	ErrCommitmentMismatch = errors.New("protocol: commitment mismatch")

	// ErrPaillierCorrectKeyFailed signals Bob's correct-key proof was
	// rejected.
	ErrPaillierCorrectKeyFailed = errors.New("protocol: paillier correct-key proof rejected")

	// ErrPaillierRangeFailed signals Bob's range proof was rejected.
	ErrPaillierRangeFailed = errors.New("protocol: paillier range proof rejected")

	// ErrPdlFailed signals the PDL sub-protocol's final check failed.
	ErrPdlFailed = errors.New("protocol: pdl verification failed")

	// ErrPartialSigMalformed signals a partial-signature verification
	// equation did not hold over the decrypted value.
	ErrPartialSigMalformed = errors.New("protocol: partial signature malformed")

	// ErrEcdsaVerifyFailed signals the final normalised signature failed
	// standard verification.
	ErrEcdsaVerifyFailed = errors.New("protocol: ecdsa verify failed")

	// ErrYExtractionFailed signals the candidate y did not match Y by
	// x-coordinate.
	ErrYExtractionFailed = errors.New("protocol: y extraction failed")

	// ErrStateConsumed signals an attempt to drive a typestate a second
	// time, the dynamic fallback spec.md §9 calls for in GC'd languages
	// lacking move semantics. It wraps ErrProofRejected per spec.md §9 open
	// question (b): a replayed state is an invariant violation, so callers
	// checking errors.Is(err, ErrProofRejected) catch it too.
	ErrStateConsumed = errors.Wrap(ErrProofRejected, "protocol: state already consumed")
)
