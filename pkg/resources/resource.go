package resources

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"strconv"

	"github.com/swarmnode-ai/swarmnode-go/pkg/swarmcli"
	"github.com/swarmnode-ai/swarmnode-go/pkg/swarmnode"
)

// LiveChannels opens the live endpoints of an execution
type LiveChannels interface {
	ListenExecution(ctx context.Context, address string) (string, error)
	StreamExecution(ctx context.Context, address string) iter.Seq2[string, error]
}

// Transport is everything the resource services need from the API client
type Transport interface {
	swarmcli.Requester
	LiveChannels
}

// Meta describes where a resource lives in the API
type Meta struct {
	Kind string
	Path string
}

// Resource implements the operations shared by every resource kind. Each call
// is a single request.
type Resource[T any] struct {
	meta      Meta
	requester swarmcli.Requester
}

// NewResource returns the operations for the resource described by meta
func NewResource[T any](r swarmcli.Requester, meta Meta) *Resource[T] {
	return &Resource[T]{meta: meta, requester: r}
}

// Kind returns the resource kind tag
func (r *Resource[T]) Kind() string {
	return r.meta.Kind
}

// Retrieve fetches one record by ID
func (r *Resource[T]) Retrieve(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, swarmnode.MissingFieldError("id")
	}

	item, err := swarmcli.Fetch[T](ctx, r.requester, swarmcli.Request{
		Method: http.MethodGet,
		Path:   r.itemPath(id, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve %s: %w", r.meta.Kind, err)
	}
	return item, nil
}

func (r *Resource[T]) listPage(ctx context.Context, opts swarmnode.PageOptions, filters map[string]string) (*swarmcli.Page[T], error) {
	query := pageQuery(opts)
	for key, value := range filters {
		if value != "" {
			query[key] = value
		}
	}

	page, err := swarmcli.ListPage[T](ctx, r.requester, r.meta.Kind, swarmcli.Request{
		Method: http.MethodGet,
		Path:   r.meta.Path + "/",
		Query:  query,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.meta.Kind, err)
	}
	return page, nil
}

func (r *Resource[T]) listCursor(ctx context.Context, filters map[string]string) (*swarmcli.Cursor[T], error) {
	query := map[string]string{}
	for key, value := range filters {
		if value != "" {
			query[key] = value
		}
	}

	cursor, err := swarmcli.ListCursor[T](ctx, r.requester, r.meta.Kind, swarmcli.Request{
		Method: http.MethodGet,
		Path:   r.meta.Path + "/",
		Query:  query,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.meta.Kind, err)
	}
	return cursor, nil
}

func (r *Resource[T]) create(ctx context.Context, body any) (*T, error) {
	item, err := swarmcli.Fetch[T](ctx, r.requester, swarmcli.Request{
		Method: http.MethodPost,
		Path:   r.meta.Path + "/create/",
		Body:   body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", r.meta.Kind, err)
	}
	return item, nil
}

func (r *Resource[T]) update(ctx context.Context, id string, fields swarmnode.Fields) (*T, error) {
	if id == "" {
		return nil, swarmnode.MissingFieldError("id")
	}
	if fields == nil {
		fields = swarmnode.Fields{}
	}

	item, err := swarmcli.Fetch[T](ctx, r.requester, swarmcli.Request{
		Method: http.MethodPatch,
		Path:   r.itemPath(id, "update"),
		Body:   fields,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", r.meta.Kind, err)
	}
	return item, nil
}

func (r *Resource[T]) delete(ctx context.Context, id string) error {
	if id == "" {
		return swarmnode.MissingFieldError("id")
	}

	err := r.requester.Do(ctx, swarmcli.Request{
		Method: http.MethodDelete,
		Path:   r.itemPath(id, "delete"),
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", r.meta.Kind, err)
	}
	return nil
}

func (r *Resource[T]) itemPath(id, action string) string {
	if action == "" {
		return fmt.Sprintf("%s/%s/", r.meta.Path, id)
	}
	return fmt.Sprintf("%s/%s/%s/", r.meta.Path, id, action)
}

// Mutable adds update and delete to a resource
type Mutable[T any] struct {
	*Resource[T]
}

// Update sends only the supplied fields, each serialized with its JSON type
func (m Mutable[T]) Update(ctx context.Context, id string, fields swarmnode.Fields) (*T, error) {
	return m.update(ctx, id, fields)
}

// Delete removes the record
func (m Mutable[T]) Delete(ctx context.Context, id string) error {
	return m.delete(ctx, id)
}

func pageQuery(opts swarmnode.PageOptions) map[string]string {
	page := opts.Page
	if page <= 0 {
		page = swarmnode.DefaultPage
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = swarmnode.DefaultPageSize
	}
	return map[string]string{
		"page":      strconv.Itoa(page),
		"page_size": strconv.Itoa(pageSize),
	}
}
