package hosting

import "context"

// Host uploads image bytes and returns a publicly reachable link.
type Host interface {
	Upload(ctx context.Context, image []byte, title string) (string, error)
}
