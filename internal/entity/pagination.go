package entity

// MaxPageSize caps every listing page.
const MaxPageSize = 100

// PaginationInput selects a window of a listing in repository order.
type PaginationInput struct {
	Limit  int
	Offset int
}

// NewPaginationInput clamps limit into (0, MaxPageSize] and offset to >= 0.
func NewPaginationInput(limit int, offset int) *PaginationInput {
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return &PaginationInput{Limit: limit, Offset: offset}
}
