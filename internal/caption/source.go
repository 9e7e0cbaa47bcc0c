package caption

import "context"

// Source produces a caption for a published post. Implementations must not
// mutate remote state.
type Source interface {
	Caption(ctx context.Context, title, body, link string) (string, error)
}

// StaticSource derives captions deterministically with Build.
type StaticSource struct{}

// Caption implements Source.
func (StaticSource) Caption(_ context.Context, title, body, link string) (string, error) {
	return Build(title, body, link), nil
}
