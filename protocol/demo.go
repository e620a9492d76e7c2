package protocol

import (
	"context"

	"github.com/pkg/errors"
	"github.com/tokenized/logger"

	"github.com/tokenized/ssecdsa/curve"
	"github.com/tokenized/ssecdsa/transcript"
)

// DemoResult reports the outcome of a single RunDemo pass: the signature
// published on-chain and, if Bob watched it go by, the y he recovered.
type DemoResult struct {
	RefundPublished bool
	Published       PublishedSignature
	RecoveredY      curve.Scalar
}

// RunDemo drives Bob and Alice through all nine protocol messages over the
// fixed test message hashes of FixedMessageHashes, narrating each hop via
// logger.Verbose (not fmt.Println) the way spec.md §8's end-to-end
// scenarios describe; the state machines underneath log their own
// entry/exit/error lines at the same level. When publishRedeem is false
// Alice never broadcasts, and Bob instead publishes his own refund
// signature, exercising spec.md §8 scenario E2.
func RunDemo(ctx context.Context, publishRedeem bool) (DemoResult, error) {
	bobTranscript := transcript.New([]byte("ssecdsa/demo-session/1.0"))
	aliceTranscript := transcript.New([]byte("ssecdsa/demo-session/1.0"))

	logger.Verbose(ctx, "Bob: sampling session keys and committing to BP")
	bob2, msg1, err := NewBob(ctx, bobTranscript)
	if err != nil {
		return DemoResult{}, errors.Wrap(err, "bob1.new")
	}

	logger.Verbose(ctx, "Alice: absorbing Bob's commitment and proving AP")
	alice2, msg2, err := NewAlice(ctx, aliceTranscript, msg1)
	if err != nil {
		return DemoResult{}, errors.Wrap(err, "alice1.new")
	}

	logger.Verbose(ctx, "Bob: verifying AP, generating Paillier key and proofs")
	bob3, msg3, err := bob2.ReceiveMsg2(ctx, msg2)
	if err != nil {
		return DemoResult{}, errors.Wrap(err, "bob2.receive(msg2)")
	}

	logger.Verbose(ctx, "Alice: opening BP, verifying Paillier proofs, issuing PDL challenge")
	alice3, msg4, err := alice2.ReceiveMsg3(ctx, msg3)
	if err != nil {
		return DemoResult{}, errors.Wrap(err, "alice2.receive(msg3)")
	}

	logger.Verbose(ctx, "Bob: answering PDL challenge")
	bob4, msg5, err := bob3.ReceiveMsg4(ctx, msg4)
	if err != nil {
		return DemoResult{}, errors.Wrap(err, "bob3.receive(msg4)")
	}

	logger.Verbose(ctx, "Alice: opening PDL challenge")
	alice4, msg6, err := alice3.ReceiveMsg5(ctx, msg5)
	if err != nil {
		return DemoResult{}, errors.Wrap(err, "alice3.receive(msg5)")
	}

	logger.Verbose(ctx, "Bob: decommitting PDL response")
	bob5, msg7, err := bob4.ReceiveMsg6(ctx, msg6)
	if err != nil {
		return DemoResult{}, errors.Wrap(err, "bob4.receive(msg6)")
	}

	logger.Verbose(ctx, "Alice: verifying PDL, building both partial signatures")
	alice5, msg8, err := alice4.ReceiveMsg7(ctx, msg7)
	if err != nil {
		return DemoResult{}, errors.Wrap(err, "alice4.receive(msg7)")
	}

	logger.Verbose(ctx, "Bob: extracting and verifying refund signature")
	bob6, msg9, err := bob5.ReceiveMsg8(ctx, msg8)
	if err != nil {
		return DemoResult{}, errors.Wrap(err, "bob5.receive(msg8)")
	}

	if !publishRedeem {
		logger.Verbose(ctx, "Alice never publishes: Bob broadcasts his refund signature")
		return DemoResult{RefundPublished: true, Published: bob6.RefundSignature()}, nil
	}

	logger.Verbose(ctx, "Alice: unblinding and verifying the redeem signature")
	published, err := alice5.ReceiveMsg9(ctx, msg9)
	if err != nil {
		return DemoResult{}, errors.Wrap(err, "alice4.receive(msg9)")
	}

	logger.Verbose(ctx, "Bob: observing the published redeem signature and recovering y")
	recoveredY, err := bob6.ObserveRedeem(ctx, published)
	if err != nil {
		return DemoResult{}, errors.Wrap(err, "bob5.observe_redeem")
	}

	return DemoResult{
		Published:  published,
		RecoveredY: recoveredY,
	}, nil
}
