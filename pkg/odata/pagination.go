package odata

import (
	"context"
	"fmt"
)

// DefaultMaxPages bounds FetchAllPages against services that keep handing
// out next links.
const DefaultMaxPages = 1000

// PageLister fetches one page of a collection at a path.
type PageLister[T any] interface {
	ListPage(ctx context.Context, path string, params *QueryParams) (*ListResponse[T], error)
}

// PaginationOptions configures FetchAllPages.
type PaginationOptions struct {
	// MaxPages limits how many pages are fetched; 0 means no limit.
	MaxPages int
}

// DefaultPaginationOptions returns the recommended defaults.
func DefaultPaginationOptions() PaginationOptions {
	return PaginationOptions{MaxPages: DefaultMaxPages}
}

// PaginationIterator walks a collection item by item, following
// @odata.nextLink between pages.
type PaginationIterator[T any] struct {
	ctx    context.Context
	lister PageLister[T]
	path   string
	params *QueryParams
	buffer []T
	done   bool
	err    error
}

// NewPaginationIterator creates an iterator over the collection at path.
func NewPaginationIterator[T any](ctx context.Context, lister PageLister[T], path string, params *QueryParams) *PaginationIterator[T] {
	return &PaginationIterator[T]{ctx: ctx, lister: lister, path: path, params: params}
}

// HasNext reports whether another item is available, fetching pages as
// needed.
func (it *PaginationIterator[T]) HasNext() bool {
	for len(it.buffer) == 0 && !it.done && it.err == nil {
		it.fetch()
	}

	return it.err == nil && len(it.buffer) > 0
}

// Next returns the next item. After the last item it returns ErrNoMoreItems,
// or the fetch error that ended the iteration.
func (it *PaginationIterator[T]) Next() (T, error) {
	var zero T

	if !it.HasNext() {
		if it.err != nil {
			return zero, it.err
		}

		return zero, ErrNoMoreItems
	}

	item := it.buffer[0]
	it.buffer = it.buffer[1:]

	return item, nil
}

func (it *PaginationIterator[T]) fetch() {
	resp, err := it.lister.ListPage(it.ctx, it.path, it.params)
	if err != nil {
		it.err = err
		it.done = true

		return
	}

	it.buffer = append(it.buffer, resp.Value...)

	if resp.NextLink == "" {
		it.done = true

		return
	}

	// The next link already carries the query.
	it.path = resp.NextLink
	it.params = nil
}

// FetchAllPages collects every item of the collection at path, following
// next links up to opts.MaxPages.
func FetchAllPages[T any](ctx context.Context, lister PageLister[T], path string, params *QueryParams, opts PaginationOptions) ([]T, error) {
	var all []T

	pages := 0

	for {
		resp, err := lister.ListPage(ctx, path, params)
		if err != nil {
			return nil, err
		}

		all = append(all, resp.Value...)
		pages++

		if resp.NextLink == "" {
			return all, nil
		}

		if opts.MaxPages > 0 && pages >= opts.MaxPages {
			return all, fmt.Errorf("%w: fetched %d pages", ErrPageLimitExceeded, pages)
		}

		path = resp.NextLink
		params = nil
	}
}
