// Package ctxutil provides small context helpers shared across remedy.
package ctxutil

import "context"

// Canceled reports whether ctx is done, returning its error when it is.
// Exported entry points of blocking collaborators call this first so a
// canceled run stops before any external command or store write starts.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}
