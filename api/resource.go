package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Entity is implemented by every API record type.
type Entity interface {
	EntityID() string
}

// Descriptor identifies one REST collection. Name doubles as the URL path
// segment and the base of the cache-tag type.
type Descriptor struct {
	Name string

	// NoPlural keeps the name as-is when deriving the list accessor.
	// Compound singleton names like companyDetails never take an `s`.
	NoPlural bool
}

// TagType is the cache-tag category, the capitalized entity name.
func (d Descriptor) TagType() string {
	return capitalize(d.Name)
}

// Plural derives the collection word by naive `s` concatenation.
func (d Descriptor) Plural() string {
	if d.NoPlural {
		return d.Name
	}
	return d.Name + "s"
}

func (d Descriptor) basePath() string {
	return "/" + d.Name
}

// ListResult is the page returned by a list operation.
type ListResult[T Entity] struct {
	Items       []T   `json:"items"`
	Total       int64 `json:"total"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
}

// Resource is the full set of typed CRUD operations for one entity. One
// implementation, instantiated per entity; all instances share the owning
// Client's tag cache.
type Resource[T Entity] struct {
	client *Client
	desc   Descriptor
}

func NewResource[T Entity](c *Client, d Descriptor) *Resource[T] {
	return &Resource[T]{client: c, desc: d}
}

// Descriptor returns the entity descriptor the resource was built from.
func (r *Resource[T]) Descriptor() Descriptor {
	return r.desc
}

// List fetches one page. Successful responses are cached under the exact
// query and tagged with one tag per returned item plus the LIST tag, so a
// later mutation anywhere staleness-marks this page.
func (r *Resource[T]) List(ctx context.Context, q ListQuery) (*ListResult[T], error) {
	query := q.Values().Encode()
	key := r.desc.Name + ":list:" + query
	if cached, ok := r.client.cache.Lookup(key); ok {
		if result, ok := cached.(*ListResult[T]); ok {
			recordCacheLookup(r.desc.Name, true)
			return result, nil
		}
	}
	recordCacheLookup(r.desc.Name, false)

	var result ListResult[T]
	err := r.timed(ctx, "listAll", requestSpec{
		method: http.MethodGet,
		path:   r.desc.basePath(),
		query:  query,
	}, &result)
	if err != nil {
		return nil, err
	}

	tags := make([]Tag, 0, len(result.Items)+1)
	tags = append(tags, ListTag(r.desc.TagType()))
	for _, item := range result.Items {
		tags = append(tags, Tag{Type: r.desc.TagType(), ID: item.EntityID()})
	}
	r.client.cache.Register(key, &result, tags...)
	return &result, nil
}

// Get fetches a single record by id and caches it under its id tag.
func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	key := r.desc.Name + ":id:" + id
	if cached, ok := r.client.cache.Lookup(key); ok {
		if record, ok := cached.(*T); ok {
			recordCacheLookup(r.desc.Name, true)
			return record, nil
		}
	}
	recordCacheLookup(r.desc.Name, false)

	var record T
	err := r.timed(ctx, "getById", requestSpec{
		method: http.MethodGet,
		path:   r.desc.basePath() + "/" + id,
	}, &record)
	if err != nil {
		return nil, err
	}
	r.client.cache.Register(key, &record, Tag{Type: r.desc.TagType(), ID: id})
	return &record, nil
}

// Create posts a new record. A *Form payload goes out as multipart form
// data, anything else as JSON. On success the LIST tag is invalidated so
// active list views refetch; on failure the cache is left untouched.
func (r *Resource[T]) Create(ctx context.Context, payload any) (*T, error) {
	body, err := encodeBody(payload)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("Idempotency-Key", uuid.NewString())

	var record T
	err = r.timed(ctx, "create", requestSpec{
		method: http.MethodPost,
		path:   r.desc.basePath(),
		header: header,
		body:   body,
	}, &record)
	if err != nil {
		return nil, err
	}
	r.invalidate(ListTag(r.desc.TagType()))
	return &record, nil
}

// Update replaces the record. On success both the record's own tag and the
// LIST tag are invalidated.
func (r *Resource[T]) Update(ctx context.Context, id string, payload any) (*T, error) {
	body, err := encodeBody(payload)
	if err != nil {
		return nil, err
	}

	var record T
	err = r.timed(ctx, "update", requestSpec{
		method: http.MethodPut,
		path:   r.desc.basePath() + "/" + id,
		body:   body,
	}, &record)
	if err != nil {
		return nil, err
	}
	r.invalidate(Tag{Type: r.desc.TagType(), ID: id}, ListTag(r.desc.TagType()))
	return &record, nil
}

// Delete removes the record. On success both the record's own tag and the
// LIST tag are invalidated; on failure cached lists still show the record.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	err := r.timed(ctx, "delete", requestSpec{
		method: http.MethodDelete,
		path:   r.desc.basePath() + "/" + id,
	}, nil)
	if err != nil {
		return err
	}
	r.invalidate(Tag{Type: r.desc.TagType(), ID: id}, ListTag(r.desc.TagType()))
	return nil
}

func (r *Resource[T]) timed(ctx context.Context, operation string, spec requestSpec, out any) error {
	start := time.Now()
	err := r.client.do(ctx, spec, out)
	recordRequest(r.desc.Name, operation, err, time.Since(start).Seconds())
	return err
}

func (r *Resource[T]) invalidate(tags ...Tag) {
	affected := r.client.cache.Invalidate(tags...)
	recordInvalidations(r.desc.TagType(), affected)
}

func encodeBody(payload any) (func() (io.Reader, string, error), error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case *Form:
		data, contentType, err := p.encode()
		if err != nil {
			return nil, err
		}
		return func() (io.Reader, string, error) {
			return bytes.NewReader(data), contentType, nil
		}, nil
	default:
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		return func() (io.Reader, string, error) {
			return bytes.NewReader(data), "application/json", nil
		}, nil
	}
}
