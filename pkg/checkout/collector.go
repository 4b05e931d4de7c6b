package checkout

import (
	"context"
	"errors"
)

var ErrNonceUnavailable = errors.New("no payment method nonce collected")

// MethodCollector turns a client token into a single-use payment method
// nonce. In a real client this wraps the gateway's drop-in UI; tests and
// headless flows use StaticCollector.
type MethodCollector interface {
	CollectNonce(ctx context.Context, clientToken string) (string, error)
}

// StaticCollector returns a fixed nonce, such as one of the gateway's
// scripted sandbox nonces.
type StaticCollector struct {
	Nonce string
}

func (c StaticCollector) CollectNonce(context.Context, string) (string, error) {
	if c.Nonce == "" {
		return "", ErrNonceUnavailable
	}
	return c.Nonce, nil
}
