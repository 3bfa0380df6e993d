package scenario

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"dealdesk/internal/domain/deal"
	"dealdesk/internal/domain/sba"
)

var ErrNotFound = errors.New("scenario not found")

// Scenario is one saved calculator run against a deal. Inputs and Results
// are stored whole; the scalar columns exist for listing and sorting.
type Scenario struct {
	ID         uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	ScenarioID string `gorm:"column:scenario_id;type:char(32);not null;uniqueIndex:ux_scenarios_scenario_id"`
	// FK to deals.id (numeric)
	DealID     uint64     `gorm:"column:deal_id;not null;index:idx_scenarios_deal_created"`
	Deal       *deal.Deal `gorm:"foreignKey:DealID"`
	OperatorID string     `gorm:"column:operator_id;type:char(32);not null"`
	Label      string     `gorm:"column:label;size:120"`

	Inputs  sba.LoanInputs  `gorm:"column:inputs;type:text;serializer:json"`
	Results sba.LoanOutputs `gorm:"column:results;type:text;serializer:json"`

	PrimaryLoanAmount decimal.Decimal     `gorm:"column:primary_loan_amount;type:decimal(18,2)"`
	DSCR              decimal.NullDecimal `gorm:"column:dscr;type:decimal(10,4)"`
	Eligible          bool                `gorm:"column:eligible"`
	IssueCount        int                 `gorm:"column:issue_count"`
	WarningCount      int                 `gorm:"column:warning_count"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index:idx_scenarios_deal_created"`
}

func (Scenario) TableName() string { return "scenarios" }
