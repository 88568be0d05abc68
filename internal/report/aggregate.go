// Package report derives company analytics from tracking, click and
// employee records. Everything here is recomputed from the raw records on
// each request; nothing is cached or stored.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/thinkbeforeclick/platform/internal/domain"
)

// roundRate converts a count ratio to a percentage rounded half-up to two
// decimals.
func roundRate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	pct := float64(part) / float64(total) * 100
	return math.Floor(pct*100+0.5) / 100
}

// BuildCompanyReport aggregates raw records into the company analytics
// document.
func BuildCompanyReport(companyID string, tracking []domain.EmailTracking, clicks []domain.ScamClick, employees []domain.Employee, generatedAt time.Time) *domain.CompanyReport {
	totalSimulations := len(tracking)

	openedCount := 0
	clickedRecords := 0
	type templateStat struct {
		total   int
		opened  int
		clicked int
	}
	templateStats := make(map[string]*templateStat)
	var templateOrder []string

	for _, record := range tracking {
		stat, ok := templateStats[record.TemplateID]
		if !ok {
			stat = &templateStat{}
			templateStats[record.TemplateID] = stat
			templateOrder = append(templateOrder, record.TemplateID)
		}
		stat.total++
		if record.IsOpened {
			openedCount++
			stat.opened++
		}
		if len(record.ScamClicks) > 0 {
			clickedRecords++
			stat.clicked++
		}
	}

	ranking := make([]domain.LeaderboardRow, 0, len(employees))
	for _, emp := range employees {
		name := emp.Name
		if name == "" {
			name = "Unknown"
		}
		email := emp.Email
		if email == "" {
			email = "Unknown"
		}
		ranking = append(ranking, domain.LeaderboardRow{
			EmployeeID:   emp.EmployeeID,
			Name:         name,
			Email:        email,
			SentEmails:   emp.SentEmails,
			OpenedEmails: emp.OpenedEmails,
			ClickedScams: emp.ClickedScams,
			AddedAt:      emp.AddedAt,
		})
	}
	// Riskiest first: clicks outrank opens outrank sends. Stable so ties
	// keep their input order.
	sort.SliceStable(ranking, func(i, j int) bool {
		a, b := ranking[i], ranking[j]
		if a.ClickedScams != b.ClickedScams {
			return a.ClickedScams > b.ClickedScams
		}
		if a.OpenedEmails != b.OpenedEmails {
			return a.OpenedEmails > b.OpenedEmails
		}
		return a.SentEmails > b.SentEmails
	})

	scamCounts := make(map[string]int)
	var scamOrder []string
	for _, click := range clicks {
		if _, ok := scamCounts[click.ScamType]; !ok {
			scamOrder = append(scamOrder, click.ScamType)
		}
		scamCounts[click.ScamType]++
	}
	mostClicked := make([]domain.ScamTypeCount, 0, len(scamOrder))
	for _, scamType := range scamOrder {
		mostClicked = append(mostClicked, domain.ScamTypeCount{
			ScamType:   scamType,
			ClickCount: scamCounts[scamType],
		})
	}
	sort.SliceStable(mostClicked, func(i, j int) bool {
		return mostClicked[i].ClickCount > mostClicked[j].ClickCount
	})

	performance := make([]domain.TemplatePerformance, 0, len(templateOrder))
	for _, templateID := range templateOrder {
		stat := templateStats[templateID]
		performance = append(performance, domain.TemplatePerformance{
			TemplateID: templateID,
			Total:      stat.total,
			OpenRate:   roundRate(stat.opened, stat.total),
			ClickRate:  roundRate(stat.clicked, stat.total),
		})
	}

	return &domain.CompanyReport{
		CompanyID: companyID,
		Summary: domain.ReportSummary{
			TotalSimulations: totalSimulations,
			OpenedCount:      openedCount,
			OpenRate:         roundRate(openedCount, totalSimulations),
			ClickRate:        roundRate(clickedRecords, totalSimulations),
			TotalScamClicks:  len(clicks),
		},
		EmployeeRanking:     ranking,
		MostClickedScams:    mostClicked,
		TemplatePerformance: performance,
		GeneratedAt:         generatedAt.UTC().Format(time.RFC3339),
	}
}
