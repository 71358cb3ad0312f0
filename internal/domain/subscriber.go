package domain

import (
	"time"
)

// SourceWebsite is the default origin tag for signups coming through the
// public form.
const SourceWebsite = "website"

type Subscriber struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribedAt"`
	IsActive     bool      `json:"isActive"`
	Source       string    `json:"source,omitempty"`
}

type SubscribeRequest struct {
	Email string `json:"email"`
}

type SetStatusRequest struct {
	ID       string `json:"id"`
	IsActive *bool  `json:"isActive"`
}

// Stats holds the aggregate counters shown on the admin dashboard. They are
// computed over the whole table, independent of any search filter.
type Stats struct {
	TotalSubscribers int     `json:"totalSubscribers"`
	RecentSignups    int     `json:"recentSignups"`
	ActiveRate       float64 `json:"activeRate"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// SubscriberPage is one page of the filtered, sorted subscriber list plus the
// filter-independent stats.
type SubscriberPage struct {
	Subscribers []Subscriber `json:"subscribers"`
	Pagination  Pagination   `json:"pagination"`
	Stats       Stats        `json:"stats"`
}
