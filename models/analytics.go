package models

type TopPage struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
	Title string `json:"title"`
}

type TopBlogPost struct {
	Slug  string `json:"slug"`
	Count int    `json:"count"`
	Title string `json:"title"`
}

type DailyStat struct {
	Date      string `json:"date"`
	PageViews int    `json:"pageViews"`
	BlogViews int    `json:"blogViews"`
}

// AnalyticsSummary is computed on demand from the raw event tables and never persisted.
type AnalyticsSummary struct {
	TotalPageViews int           `json:"totalPageViews"`
	TotalBlogViews int           `json:"totalBlogViews"`
	UniqueVisitors int           `json:"uniqueVisitors"`
	TopPages       []TopPage     `json:"topPages"`
	TopBlogPosts   []TopBlogPost `json:"topBlogPosts"`
	DailyStats     []DailyStat   `json:"dailyStats"`
	Period         string        `json:"period"`
}
