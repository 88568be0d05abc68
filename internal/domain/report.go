package domain

import "time"

// ReportSummary holds company-wide simulation totals and rates. Rates are
// percentages rounded half-up to two decimals, 0 when there were no
// simulations.
type ReportSummary struct {
	TotalSimulations int     `json:"totalSimulations"`
	OpenedCount      int     `json:"openedCount"`
	OpenRate         float64 `json:"openRate"`
	ClickRate        float64 `json:"clickRate"`
	TotalScamClicks  int     `json:"totalScamClicks"`
}

// LeaderboardRow is one employee in the per-company risk ranking.
type LeaderboardRow struct {
	EmployeeID   string `json:"employeeId"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	SentEmails   int    `json:"sentEmails"`
	OpenedEmails int    `json:"openedEmails"`
	ClickedScams int    `json:"clickedScams"`
	AddedAt      string `json:"addedAt,omitempty"`
}

// ScamTypeCount is one row of the scam-type frequency table.
type ScamTypeCount struct {
	ScamType   string `json:"scamType"`
	ClickCount int    `json:"clickCount"`
}

// TemplatePerformance summarizes one template's results for a company.
type TemplatePerformance struct {
	TemplateID string  `json:"templateId"`
	Total      int     `json:"total"`
	OpenRate   float64 `json:"openRate"`
	ClickRate  float64 `json:"clickRate"`
}

// CompanyReport is the derived analytics document for one company.
type CompanyReport struct {
	CompanyID           string                `json:"companyId"`
	Summary             ReportSummary         `json:"summary"`
	EmployeeRanking     []LeaderboardRow      `json:"employeeRanking"`
	MostClickedScams    []ScamTypeCount       `json:"mostClickedScams"`
	TemplatePerformance []TemplatePerformance `json:"templatePerformance"`
	GeneratedAt         string                `json:"generatedAt"`
}

// ReportObject describes one stored PDF report artifact.
type ReportObject struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}
