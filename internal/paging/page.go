package paging

import "context"

// Page is one fetched window of a cursor-paginated collection. A non-empty
// ResumeToken means more data follows it. TotalCount carries the backend's
// overall count when it reports one, zero otherwise.
type Page[T any] struct {
	Items       []T
	ResumeToken string
	TotalCount  int64
}

// FetchFunc retrieves up to limit items starting after resumeToken. An
// empty resumeToken requests the start of the collection.
type FetchFunc[T any] func(ctx context.Context, resumeToken string, limit int) (Page[T], error)
