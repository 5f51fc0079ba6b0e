package pagination

// Pagination carries offset/limit paging for the listing endpoints.
type Pagination struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset"`
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Normalize applies the default page size and the hard cap. The cap holds
// regardless of the requested limit.
func (p Pagination) Normalize() Pagination {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// PageInfo reports the window a listing response covers.
type PageInfo struct {
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"has_more"`
}

func BuildPageInfo(p Pagination, total int64) PageInfo {
	return PageInfo{
		Limit:   p.Limit,
		Offset:  p.Offset,
		Total:   total,
		HasMore: int64(p.Offset+p.Limit) < total,
	}
}
