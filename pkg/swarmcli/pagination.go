package swarmcli

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"slices"

	"github.com/swarmnode-ai/swarmnode-go/pkg/swarmnode"
)

// Page is one page of a page-paginated result set. It is immutable: Next and
// Previous return new pages that follow the continuation URLs returned by the
// API and keep the resource kind.
type Page[T any] struct {
	kind        string
	results     []T
	nextURL     string
	previousURL string
	totalCount  uint32
	currentPage uint32

	requester Requester
}

// NewPage wraps a decoded page envelope
func NewPage[T any](r Requester, kind string, resp *swarmnode.PageResponse[T]) *Page[T] {
	return &Page[T]{
		kind:        kind,
		results:     slices.Clone(resp.Results),
		nextURL:     deref(resp.Next),
		previousURL: deref(resp.Previous),
		totalCount:  resp.TotalCount,
		currentPage: resp.CurrentPage,
		requester:   r,
	}
}

// ListPage fetches the first page of a page-paginated list
func ListPage[T any](ctx context.Context, r Requester, kind string, req Request) (*Page[T], error) {
	resp, err := Fetch[swarmnode.PageResponse[T]](ctx, r, req)
	if err != nil {
		return nil, err
	}
	return NewPage(r, kind, resp), nil
}

// Kind returns the resource kind tag of the items
func (p *Page[T]) Kind() string { return p.kind }

// Results returns a copy of the items on this page
func (p *Page[T]) Results() []T { return slices.Clone(p.results) }

// NextURL returns the continuation URL of the following page, or ""
func (p *Page[T]) NextURL() string { return p.nextURL }

// PreviousURL returns the continuation URL of the preceding page, or ""
func (p *Page[T]) PreviousURL() string { return p.previousURL }

// TotalCount returns the number of items across all pages
func (p *Page[T]) TotalCount() uint32 { return p.totalCount }

// CurrentPage returns the 1-based position of this page
func (p *Page[T]) CurrentPage() uint32 { return p.currentPage }

// HasNext reports whether a later page exists
func (p *Page[T]) HasNext() bool { return p.nextURL != "" }

// HasPrevious reports whether an earlier page exists
func (p *Page[T]) HasPrevious() bool { return p.previousURL != "" }

// Next fetches the following page. It returns nil, nil on the last page.
func (p *Page[T]) Next(ctx context.Context) (*Page[T], error) {
	return p.follow(ctx, p.nextURL)
}

// Previous fetches the preceding page. It returns nil, nil on the first page.
func (p *Page[T]) Previous(ctx context.Context) (*Page[T], error) {
	return p.follow(ctx, p.previousURL)
}

func (p *Page[T]) follow(ctx context.Context, url string) (*Page[T], error) {
	if url == "" {
		return nil, nil
	}
	resp, err := Fetch[swarmnode.PageResponse[T]](ctx, p.requester, continuation(url))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s page: %w", p.kind, err)
	}
	return NewPage(p.requester, p.kind, resp), nil
}

// All yields every item from this page onwards, fetching pages lazily.
// A failed fetch is yielded once and ends the sequence.
func (p *Page[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for page := p; page != nil; {
			for _, item := range page.results {
				if !yield(item, nil) {
					return
				}
			}
			next, err := page.Next(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			page = next
		}
	}
}

func (p *Page[T]) String() string {
	return fmt.Sprintf("Page[%s](total_count=%d, current_page=%d, results=%d)",
		p.kind, p.totalCount, p.currentPage, len(p.results))
}

// Cursor is one page of a cursor-paginated result set. It is immutable and
// carries no count or position; the continuation URLs are opaque.
type Cursor[T any] struct {
	kind        string
	results     []T
	nextURL     string
	previousURL string

	requester Requester
}

// NewCursor wraps a decoded cursor envelope
func NewCursor[T any](r Requester, kind string, resp *swarmnode.CursorResponse[T]) *Cursor[T] {
	return &Cursor[T]{
		kind:        kind,
		results:     slices.Clone(resp.Results),
		nextURL:     deref(resp.Next),
		previousURL: deref(resp.Previous),
		requester:   r,
	}
}

// ListCursor fetches the first page of a cursor-paginated list
func ListCursor[T any](ctx context.Context, r Requester, kind string, req Request) (*Cursor[T], error) {
	resp, err := Fetch[swarmnode.CursorResponse[T]](ctx, r, req)
	if err != nil {
		return nil, err
	}
	return NewCursor(r, kind, resp), nil
}

// Kind returns the resource kind tag of the items
func (c *Cursor[T]) Kind() string { return c.kind }

// Results returns a copy of the items on this page
func (c *Cursor[T]) Results() []T { return slices.Clone(c.results) }

// NextURL returns the continuation URL of the following page, or ""
func (c *Cursor[T]) NextURL() string { return c.nextURL }

// PreviousURL returns the continuation URL of the preceding page, or ""
func (c *Cursor[T]) PreviousURL() string { return c.previousURL }

// HasNext reports whether a later page exists
func (c *Cursor[T]) HasNext() bool { return c.nextURL != "" }

// HasPrevious reports whether an earlier page exists
func (c *Cursor[T]) HasPrevious() bool { return c.previousURL != "" }

// Next fetches the following page. It returns nil, nil on the last page.
func (c *Cursor[T]) Next(ctx context.Context) (*Cursor[T], error) {
	return c.follow(ctx, c.nextURL)
}

// Previous fetches the preceding page. It returns nil, nil on the first page.
func (c *Cursor[T]) Previous(ctx context.Context) (*Cursor[T], error) {
	return c.follow(ctx, c.previousURL)
}

func (c *Cursor[T]) follow(ctx context.Context, url string) (*Cursor[T], error) {
	if url == "" {
		return nil, nil
	}
	resp, err := Fetch[swarmnode.CursorResponse[T]](ctx, c.requester, continuation(url))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s page: %w", c.kind, err)
	}
	return NewCursor(c.requester, c.kind, resp), nil
}

// All yields every item from this page onwards, fetching pages lazily.
// A failed fetch is yielded once and ends the sequence.
func (c *Cursor[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for page := c; page != nil; {
			for _, item := range page.results {
				if !yield(item, nil) {
					return
				}
			}
			next, err := page.Next(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			page = next
		}
	}
}

func (c *Cursor[T]) String() string {
	return fmt.Sprintf("Cursor[%s](results=%d)", c.kind, len(c.results))
}

// continuation is a GET against a self-describing URL; no query is added
func continuation(url string) Request {
	return Request{Method: http.MethodGet, Path: url}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
