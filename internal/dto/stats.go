package dto

// SoldEntry 售出号码公示条目
type SoldEntry struct {
	Number     string `json:"number"`
	BuyerName  string `json:"buyer_name"`
	BuyerEmail string `json:"buyer_email"`
	BuyerPhone string `json:"buyer_phone"`
	Paid       bool   `json:"paid"`
}

// StatsResponse 管理端统计响应
type StatsResponse struct {
	TotalLinks         int64   `json:"total_links"`
	ActiveLinks        int64   `json:"active_links"`
	InactiveLinks      int64   `json:"inactive_links"`
	TotalOpportunities int64   `json:"total_opportunities"`
	UsedOpportunities  int64   `json:"used_opportunities"`
	SoldNumbers        int64   `json:"sold_numbers"`
	AvailableNumbers   int64   `json:"available_numbers"`
	SoldPercent        float64 `json:"sold_percent"`
}

// ProgressResponse 公开售卖进度响应
type ProgressResponse struct {
	TotalNumbers   int     `json:"total_numbers"`
	SoldCount      int     `json:"sold_count"`
	Percent        float64 `json:"percent"`
	MinimumPercent int     `json:"minimum_percent"`
	MinimumReached bool    `json:"minimum_reached"`
	RaffleDate     string  `json:"raffle_date"`
	DaysRemaining  int     `json:"days_remaining"`
}
