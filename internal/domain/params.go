package domain

// List defaults and sort whitelist.
const (
	DefaultPage  = 1
	DefaultLimit = 10

	SortBySubscribedAt = "subscribedAt"
	SortByEmail        = "email"
	SortByIsActive     = "isActive"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// ListParams describes one request against the subscriber list: an
// offset-based page of a filtered, sorted result set.
type ListParams struct {
	Page      int
	Limit     int
	Search    string
	SortField string
	SortOrder string
}

// Normalize coerces the params into their valid range: page and limit fall
// back to defaults when missing or below 1, unknown sort fields fall back to
// subscribedAt, and anything that is not "asc" orders descending.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	switch p.SortField {
	case SortBySubscribedAt, SortByEmail, SortByIsActive:
	default:
		p.SortField = SortBySubscribedAt
	}
	if p.SortOrder != OrderAsc {
		p.SortOrder = OrderDesc
	}
	return p
}

// Offset returns the number of records to skip for the requested page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PageCount returns ceil(total/limit) for the given total match count.
func (p ListParams) PageCount(total int) int {
	if total == 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}
