package response

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int64 `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
	HasMore    bool  `json:"has_more"`
	From       int   `json:"from"`
	To         int   `json:"to"`
}

// NewPagination describes the window [From, To] (1-based, inclusive) of
// page out of total items. From and To are zero for an empty page, and a
// page past the end is reported as totalPages+1.
func NewPagination(page, pageSize int, total int64) *Pagination {
	if pageSize < 1 {
		pageSize = 1
	}
	if page < 1 {
		page = 1
	}
	size := int64(pageSize)
	totalPages := total / size
	if total%size != 0 {
		totalPages++
	}
	if int64(page) > totalPages+1 {
		page = int(totalPages + 1)
	}
	p := &Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalItems: total,
		HasMore:    int64(page) < totalPages,
	}
	start := int64(page-1) * size
	if start < total {
		p.From = int(start) + 1
		end := total
		if total-start > size {
			end = start + size
		}
		p.To = int(end)
	}
	return p
}

// Bounds returns the slice indexes for this page.
func (p *Pagination) Bounds() (int, int) {
	if p.From == 0 {
		return 0, 0
	}
	return p.From - 1, p.To
}
