package deal

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateDealInput struct {
	Name        string          `json:"name"`
	Industry    string          `json:"industry"`
	NAICSCode   string          `json:"naics_code"`
	AskingPrice decimal.Decimal `json:"asking_price"`
}

type ListInput struct {
	Stage  string
	Limit  int
	Offset int
}

type DealDTO struct {
	DealID           string              `json:"deal_id"`
	OperatorID       string              `json:"operator_id"`
	Name             string              `json:"name"`
	Industry         string              `json:"industry,omitempty"`
	NAICSCode        string              `json:"naics_code,omitempty"`
	AskingPrice      decimal.Decimal     `json:"asking_price"`
	Stage            string              `json:"stage"`
	StageUpdatedAt   time.Time           `json:"stage_updated_at"`
	LatestScenarioID *string             `json:"latest_scenario_id"`
	LatestDSCR       decimal.NullDecimal `json:"latest_dscr"`
	LatestEligible   *bool               `json:"latest_eligible"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}
