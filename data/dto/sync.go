package dto

// SyncReport 一次同步运行的汇总结果
type SyncReport struct {
	Processed         int      `json:"processed"`
	EmailsFetched     int      `json:"emails_fetched"`
	Actionable        int      `json:"actionable"`
	InboxItemsCreated int      `json:"inbox_items_created"`
	Errors            []string `json:"errors,omitempty"`
}
