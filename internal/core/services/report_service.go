package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"stockwise-decd/internal/adapters/persistence/models"
	"stockwise-decd/internal/adapters/persistence/repositories"
)

// StockLine is one product entry in a report section
type StockLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// LoanLine is one active loan entry in a report
type LoanLine struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Requester string `json:"requester"`
}

// StockAlerts groups products needing attention
type StockAlerts struct {
	Critical []StockLine `json:"critical"`
	Low      []StockLine `json:"low"`
}

// InventoryReport is the narrative report over the current inventory and
// loan snapshots
type InventoryReport struct {
	GeneralSummary string      `json:"general_summary"`
	StockAlerts    StockAlerts `json:"stock_alerts"`
	InStock        []StockLine `json:"in_stock"`
	ActiveLoans    []LoanLine  `json:"active_loans"`
}

// ReportFilters narrows a report to a category or stock status
type ReportFilters struct {
	Category string
	Status   string
}

// Report status filter values
const (
	ReportStatusCritical = "critical"
	ReportStatusLow      = "low"
	ReportStatusInStock  = "in_stock"
)

// ReportService assembles inventory reports from committed snapshots.
// When a narrator collaborator is configured, its prose replaces the
// rule-based summary; narrator failures fall back to the local text.
type ReportService struct {
	productRepo repositories.ProductRepository
	loanRepo    repositories.LoanRepository
	narrator    *NarratorService
}

// NewReportService creates a new report service
func NewReportService(
	productRepo repositories.ProductRepository,
	loanRepo repositories.LoanRepository,
	narrator *NarratorService,
) *ReportService {
	return &ReportService{
		productRepo: productRepo,
		loanRepo:    loanRepo,
		narrator:    narrator,
	}
}

// GenerateInventoryReport builds the report from current product and
// active-loan snapshots, optionally filtered by category or stock status.
func (s *ReportService) GenerateInventoryReport(ctx context.Context, filters ReportFilters) (*InventoryReport, error) {
	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	activeLoans, err := s.loanRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	products = filterProducts(products, filters)
	loans := filterLoans(activeLoans, products)

	report := classify(products, loans)
	report.GeneralSummary = localSummary(len(products), report, filters)

	if s.narrator != nil && s.narrator.IsEnabled() {
		prose, err := s.narrate(ctx, products, loans)
		if err != nil {
			log.Printf("⚠️ Narrator unavailable, using local summary: %v", err)
		} else if prose != "" {
			report.GeneralSummary = prose
		}
	}
	return report, nil
}

// narrate feeds the snapshots as JSON strings to the external
// prompt/completion service and returns its prose.
func (s *ReportService) narrate(ctx context.Context, products []*models.Product, loans []*models.Loan) (string, error) {
	productsJSON, err := json.Marshal(products)
	if err != nil {
		return "", err
	}
	loansJSON, err := json.Marshal(loans)
	if err != nil {
		return "", err
	}
	return s.narrator.GenerateSummary(ctx, string(productsJSON), string(loansJSON))
}

func filterProducts(products []*models.Product, filters ReportFilters) []*models.Product {
	if filters.Category == "" && filters.Status == "" {
		return products
	}
	out := make([]*models.Product, 0, len(products))
	for _, p := range products {
		if filters.Category != "" && !strings.EqualFold(p.Category, filters.Category) {
			continue
		}
		if filters.Status != "" && stockStatus(p) != filters.Status {
			continue
		}
		out = append(out, p)
	}
	return out
}

func stockStatus(p *models.Product) string {
	dp := p.ToDomain()
	switch {
	case dp.IsOutOfStock():
		return ReportStatusCritical
	case dp.IsLowStock():
		return ReportStatusLow
	default:
		return ReportStatusInStock
	}
}

func filterLoans(loans []*models.Loan, products []*models.Product) []*models.Loan {
	ids := make(map[string]bool, len(products))
	for _, p := range products {
		ids[p.ID] = true
	}
	out := make([]*models.Loan, 0, len(loans))
	for _, l := range loans {
		if ids[l.ProductID] {
			out = append(out, l)
		}
	}
	return out
}

func classify(products []*models.Product, loans []*models.Loan) *InventoryReport {
	report := &InventoryReport{
		StockAlerts: StockAlerts{Critical: []StockLine{}, Low: []StockLine{}},
		InStock:     []StockLine{},
		ActiveLoans: []LoanLine{},
	}
	for _, p := range products {
		line := StockLine{Name: p.Name, Quantity: p.Quantity}
		switch stockStatus(p) {
		case ReportStatusCritical:
			report.StockAlerts.Critical = append(report.StockAlerts.Critical, line)
		case ReportStatusLow:
			report.StockAlerts.Low = append(report.StockAlerts.Low, line)
		default:
			report.InStock = append(report.InStock, line)
		}
	}
	for _, l := range loans {
		report.ActiveLoans = append(report.ActiveLoans, LoanLine{
			ID:        l.ID,
			Name:      l.ProductName,
			Quantity:  l.Quantity,
			Requester: l.Requester,
		})
	}
	return report
}

// localSummary builds the rule-based executive summary used when no
// narrator is configured
func localSummary(productCount int, report *InventoryReport, filters ReportFilters) string {
	intro := "El reporte"
	if filters.Category != "" {
		intro += fmt.Sprintf(" para la categoría %q", filters.Category)
	}
	if filters.Status != "" {
		intro += fmt.Sprintf(" con productos en estado %q", filters.Status)
	}

	summary := fmt.Sprintf("%s muestra un total de %d tipo(s) de producto(s). ", intro, productCount)
	critical := len(report.StockAlerts.Critical)
	low := len(report.StockAlerts.Low)
	if critical > 0 || low > 0 {
		summary += fmt.Sprintf("De estos, hay %d producto(s) agotados y %d con stock bajo, requiriendo atención. ", critical, low)
	} else {
		summary += "Los niveles de stock son saludables. "
	}
	summary += fmt.Sprintf("Actualmente existen %d préstamos activos.", len(report.ActiveLoans))
	return summary
}
