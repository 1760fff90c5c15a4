package types

// PageMeta is the pagination envelope every list endpoint returns.
type PageMeta struct {
	Total       int64 `json:"total"`
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

func NewPageMeta(total int64, page int, limit int) PageMeta {
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return PageMeta{
		Total:       total,
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}
