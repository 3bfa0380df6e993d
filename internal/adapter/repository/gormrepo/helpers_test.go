package gormrepo

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dealdesk/internal/domain/deal"
	"dealdesk/internal/domain/sba"
	"dealdesk/internal/domain/scenario"
	"dealdesk/pkg/id"
)

// openTestDB creates an in-memory sqlite DB with both tables migrated.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// every pooled connection would otherwise get its own empty :memory: db
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

const operatorA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

func makeDeal(operatorID, name string) *deal.Deal {
	return &deal.Deal{
		DealID:         id.NewID32(),
		OperatorID:     operatorID,
		Name:           name,
		Industry:       "home_services",
		NAICSCode:      "238220",
		AskingPrice:    decimal.NewFromInt(1_000_000),
		Stage:          deal.StageSourced,
		StageUpdatedAt: time.Now().UTC(),
	}
}

func makeScenario(dealNumericID uint64, label string) *scenario.Scenario {
	in := sba.LoanInputs{
		PurchasePrice:                   decimal.NewFromInt(1_000_000),
		EBITDA:                          decimal.NewFromInt(250_000),
		Revenue:                         decimal.NewFromInt(2_000_000),
		AllInvestorsAreDomesticCitizens: true,
	}
	out, err := sba.ComputeLoanStructure(sba.DefaultProgram(), in)
	if err != nil {
		panic(err)
	}
	r := out.Rounded()
	return &scenario.Scenario{
		ScenarioID:        id.NewID32(),
		DealID:            dealNumericID,
		OperatorID:        operatorA,
		Label:             label,
		Inputs:            in,
		Results:           r,
		PrimaryLoanAmount: r.PrimaryLoanAmount,
		DSCR:              r.DebtServiceCoverageRatio,
		Eligible:          r.Eligible,
		IssueCount:        len(r.Issues),
		WarningCount:      len(r.Warnings),
	}
}
