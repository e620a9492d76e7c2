package main

import (
	"context"
	"os"

	"github.com/tokenized/config"
	"github.com/tokenized/logger"

	"github.com/tokenized/ssecdsa/protocol"
)

// Config holds the demo binary's tunable knobs, loaded via
// github.com/tokenized/config the way the teacher's cmd binaries do.
type Config struct {
	PublishRedeem bool `default:"true" envconfig:"PUBLISH_REDEEM" json:"publish_redeem"`
}

func main() {
	ctx := logger.ContextWithLogConfig(context.Background(), logger.NewDevelopmentTextConfig())

	cfg := &Config{}
	if err := config.LoadConfig(ctx, cfg); err != nil {
		logger.Fatal(ctx, "Failed to load config : %s", err)
		os.Exit(1)
	}

	logger.Info(ctx, "Running scriptless-swap ECDSA demo (publish_redeem=%t)", cfg.PublishRedeem)

	result, err := protocol.RunDemo(ctx, cfg.PublishRedeem)
	if err != nil {
		logger.Fatal(ctx, "Demo run failed : %s", err)
		os.Exit(1)
	}

	if result.RefundPublished {
		logger.Info(ctx, "Bob published his refund signature : rx=%s s=%s",
			result.Published.Rx.Big().String(), result.Published.S.Big().String())
		return
	}

	logger.Info(ctx, "Alice published the redeem signature : rx=%s s=%s",
		result.Published.Rx.Big().String(), result.Published.S.Big().String())
	logger.Info(ctx, "Bob recovered the swap secret y=%s", result.RecoveredY.Big().String())
}
