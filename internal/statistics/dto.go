package statistics

import "time"

// Summary is the headline admin dashboard document.
type Summary struct {
	Users    UsersSummary    `json:"users"`
	Cards    CardsSummary    `json:"cards"`
	Profiles ProfilesSummary `json:"profiles"`
}

// UsersSummary counts users by state.
type UsersSummary struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
}

// CardsSummary counts cards by lifecycle state.
type CardsSummary struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
	Expired  int64 `json:"expired"`
	Assigned int64 `json:"assigned"`
}

// ProfilesSummary counts profiles and their aggregate traffic.
type ProfilesSummary struct {
	Total  int64 `json:"total"`
	Public int64 `json:"public"`
	Linked int64 `json:"linked"`
	Visits int64 `json:"visits"`
}

// TimeBucket is one aggregation slot in a time series.
type TimeBucket struct {
	Period string `json:"period"`
	Count  int64  `json:"count"`
}

// CardsOverTimeRequest scopes the card creation series.
type CardsOverTimeRequest struct {
	Period string     `json:"period"`
	From   *time.Time `json:"from,omitempty"`
	To     *time.Time `json:"to,omitempty"`
}

// ProfileVisitsEntry is one row of the most-visited ranking.
type ProfileVisitsEntry struct {
	ProfileID uint64 `json:"profile_id"`
	Name      string `json:"name"`
	UserID    uint64 `json:"user_id"`
	Visits    int64  `json:"visits"`
}

// CardTypeDistributionEntry counts cards per catalog entry. Cards without a
// type land in the untyped bucket.
type CardTypeDistributionEntry struct {
	CardTypeID *uint64 `json:"card_type_id,omitempty"`
	Name       string  `json:"name"`
	Count      int64   `json:"count"`
}
