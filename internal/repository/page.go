package repository

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest selects a zero-based page of rows in a fixed order.
type PageRequest struct {
	Page      int
	Size      int
	SortField string
	SortDesc  bool
}

type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
	Empty         bool  `json:"empty"`
}

// ParsePageRequest reads page, size and sort ("field" or "field,asc|desc")
// query values. Empty values take defaults; sortable lists the permitted
// sort columns.
func ParsePageRequest(page, size, sort string, sortable ...string) (PageRequest, error) {
	req := PageRequest{Size: DefaultPageSize, SortField: "id"}

	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 0 {
			return req, fmt.Errorf("invalid page %q", page)
		}
		req.Page = n
	}
	if size != "" {
		n, err := strconv.Atoi(size)
		if err != nil || n < 1 || n > MaxPageSize {
			return req, fmt.Errorf("invalid size %q: must be between 1 and %d", size, MaxPageSize)
		}
		req.Size = n
	}
	if req.Page > math.MaxInt/req.Size {
		return req, fmt.Errorf("invalid page %q: too large", page)
	}
	if sort != "" {
		field, dir, _ := strings.Cut(sort, ",")
		field = strings.TrimSpace(field)
		allowed := field == "id"
		for _, s := range sortable {
			if s == field {
				allowed = true
			}
		}
		if !allowed {
			return req, fmt.Errorf("invalid sort field %q", field)
		}
		req.SortField = field
		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc":
		case "desc":
			req.SortDesc = true
		default:
			return req, fmt.Errorf("invalid sort direction %q", dir)
		}
	}
	return req, nil
}

func (r PageRequest) offset() int { return r.Page * r.Size }

func (r PageRequest) apply(q *gorm.DB) *gorm.DB {
	return q.Order(clause.OrderByColumn{Column: clause.Column{Name: r.SortField}, Desc: r.SortDesc}).
		Offset(r.offset()).
		Limit(r.Size)
}

// NewPage wraps one page of content with its paging metadata.
func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         req.Page == 0,
		Last:          req.Page >= totalPages-1,
		Empty:         len(content) == 0,
	}
}
