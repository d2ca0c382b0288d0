package domain

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// OrderFilter has AND semantics across fields, OR semantics within each field slice.
// An empty filter matches every order.
type OrderFilter struct {
	IDs        []uuid.UUID
	UserIDs    []string
	MerchantID *int64
	Statuses   []OrderStatus
	CreatedAt  *TimeRange
}

func (f OrderFilter) Validate() error {
	for _, status := range f.Statuses {
		if !status.Valid() {
			return fmt.Errorf("statuses: %w: %q", ErrInvalidOrderStatus, status)
		}
	}

	if f.CreatedAt != nil {
		if err := f.CreatedAt.Validate(); err != nil {
			return fmt.Errorf("createdAt: %w", err)
		}
	}

	return nil
}

// TimeRange is half-open: After is inclusive, Before is exclusive.
type TimeRange struct {
	Before *time.Time
	After  *time.Time
}

func (t TimeRange) Validate() error {
	if t.Before == nil && t.After == nil {
		return errors.New("both Before and After are nil")
	}

	if t.Before != nil && t.After != nil {
		if t.Before.Before(*t.After) {
			return fmt.Errorf("before is before After")
		}
	}

	return nil
}

func (t TimeRange) Contains(ts time.Time) bool {
	if t.After != nil && ts.Before(*t.After) {
		return false
	}
	if t.Before != nil && !ts.Before(*t.Before) {
		return false
	}
	return true
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest is 1-based.
type PageRequest struct {
	Page int
	Size int
}

// Normalize clamps the request into [1, maxSize] and page >= 1.
func (p PageRequest) Normalize(maxSize int) PageRequest {
	if maxSize <= 0 {
		maxSize = MaxPageSize
	}
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.Size <= 0:
		p.Size = DefaultPageSize
	case p.Size > maxSize:
		p.Size = maxSize
	}
	// the offset is sent to postgres as int4
	if maxPage := math.MaxInt32 / p.Size; p.Page > maxPage {
		p.Page = maxPage
	}
	return p
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Size
}

type Page[T any] struct {
	Items []T
	Total int64
	Page  int
	Size  int
	Pages int64
}

func NewPage[T any](items []T, total int64, req PageRequest) Page[T] {
	var pages int64
	if req.Size > 0 {
		pages = (total + int64(req.Size) - 1) / int64(req.Size)
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items: items,
		Total: total,
		Page:  req.Page,
		Size:  req.Size,
		Pages: pages,
	}
}
