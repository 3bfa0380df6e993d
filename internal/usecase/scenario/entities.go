package scenario

import (
	"time"

	"github.com/shopspring/decimal"

	"dealdesk/internal/domain/sba"
)

type RunInput struct {
	Label  string         `json:"label"`
	Inputs sba.LoanInputs `json:"inputs"`
}

type ScenarioDTO struct {
	ScenarioID string          `json:"scenario_id"`
	DealID     string          `json:"deal_id"`
	Label      string          `json:"label,omitempty"`
	Inputs     sba.LoanInputs  `json:"inputs"`
	Results    sba.LoanOutputs `json:"results"`
	CreatedAt  time.Time       `json:"created_at"`
}

// SummaryDTO is the list row; full inputs and results come from Get.
type SummaryDTO struct {
	ScenarioID        string              `json:"scenario_id"`
	Label             string              `json:"label,omitempty"`
	PrimaryLoanAmount decimal.Decimal     `json:"primary_loan_amount"`
	DSCR              decimal.NullDecimal `json:"dscr"`
	Eligible          bool                `json:"eligible"`
	IssueCount        int                 `json:"issue_count"`
	WarningCount      int                 `json:"warning_count"`
	CreatedAt         time.Time           `json:"created_at"`
}
