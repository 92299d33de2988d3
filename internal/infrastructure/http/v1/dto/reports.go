package dto

// ReportQuery selects the sales report period.
type ReportQuery struct {
	// Period: day, week, month, year
	Period string `form:"period"`
	// Date is any shop date inside the period
	Date   string `form:"date"`
	Status string `form:"status"`
}
