package trip

import "context"

// CatalogRepository stores named, pre-ranked candidate sets so generation
// requests may reference a set instead of inlining every list.
type CatalogRepository interface {
	GetSet(ctx context.Context, name string) (Resources, bool, error)
	SaveSet(ctx context.Context, name string, res Resources) error
}
