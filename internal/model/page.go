package model

// Pagination describes the position of a page within a full result set.
//
// The invariants, for any total and limit:
//
//	TotalPages = ceil(Total / Limit)
//	HasNext    = Page < TotalPages
//	HasPrev    = Page > 1
//
// A page past the end is legal — it carries an empty item list and
// HasNext=false, it is not an error.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewPagination computes the derived fields from page, limit, and total.
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}
