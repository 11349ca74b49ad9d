package ports

import "context"

// Runner drives the tracking pipeline. Run blocks: a one-shot runner
// returns after a single pass, a scheduled runner loops until the
// context is canceled.
type Runner interface {
	Run(ctx context.Context) error
}
