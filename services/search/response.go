package search

type Result struct {
	Data       []Record   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int64 `json:"totalPages"`
}

func assemble(records []Record, page int, limit int, totalCount int64) *Result {
	if records == nil {
		records = []Record{}
	}

	var totalPages int64
	if limit > 0 {
		totalPages = (totalCount + int64(limit) - 1) / int64(limit)
	}

	return &Result{
		Data: records,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			TotalCount: totalCount,
			TotalPages: totalPages,
		},
	}
}
