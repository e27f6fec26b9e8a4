package common

type SuccessResponse struct {
	Data interface{} `json:"data"`
}

func NewSuccessResponse(data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Data: data,
	}
}

type Pagination struct {
	Total int64 `json:"total"`
	Limit int   `json:"limit,omitempty"`
}

// SearchResponse wraps list endpoints. Data is never null.
type SearchResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

func NewListResponse[T any](rows []T) *SearchResponse {
	if rows == nil {
		rows = []T{}
	}
	return &SearchResponse{
		Data:       rows,
		Pagination: Pagination{Total: int64(len(rows))},
	}
}

// WithLimit records the page size the rows were cut to.
func (r *SearchResponse) WithLimit(limit int) *SearchResponse {
	r.Pagination.Limit = limit
	return r
}
