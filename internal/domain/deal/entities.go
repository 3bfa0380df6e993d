package deal

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("deal not found")
	ErrInvalidTransition = errors.New("invalid stage transition")
	// ErrArchived is returned for writes against a closed or passed deal.
	ErrArchived = errors.New("deal is archived")
)

type Stage string

const (
	StageSourced   Stage = "sourced"
	StageScreening Stage = "screening"
	StageLOI       Stage = "loi"
	StageDiligence Stage = "diligence"
	StageClosed    Stage = "closed"
	StagePassed    Stage = "passed"
)

// pipeline order; passed is reachable from any non-terminal stage
var next = map[Stage]Stage{
	StageSourced:   StageScreening,
	StageScreening: StageLOI,
	StageLOI:       StageDiligence,
	StageDiligence: StageClosed,
}

func (s Stage) Valid() bool {
	switch s {
	case StageSourced, StageScreening, StageLOI, StageDiligence, StageClosed, StagePassed:
		return true
	}
	return false
}

func (s Stage) Terminal() bool { return s == StageClosed || s == StagePassed }

// CanTransition reports whether a deal may move from one stage to another.
func CanTransition(from, to Stage) bool {
	if from.Terminal() || !to.Valid() {
		return false
	}
	if to == StagePassed {
		return true
	}
	return next[from] == to
}

type Deal struct {
	ID         uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	DealID     string `gorm:"column:deal_id;type:char(32);not null;uniqueIndex:ux_deals_deal_id" json:"deal_id"`
	OperatorID string `gorm:"column:operator_id;type:char(32);not null;index:idx_deals_operator_stage" json:"operator_id"`

	Name        string          `gorm:"column:name;size:200;not null" json:"name"`
	Industry    string          `gorm:"column:industry;size:64" json:"industry"`
	NAICSCode   string          `gorm:"column:naics_code;size:6" json:"naics_code"`
	AskingPrice decimal.Decimal `gorm:"column:asking_price;type:decimal(18,2)" json:"asking_price"`

	Stage          Stage     `gorm:"column:stage;size:16;not null;default:'sourced';index:idx_deals_operator_stage" json:"stage"`
	StageUpdatedAt time.Time `gorm:"column:stage_updated_at" json:"stage_updated_at"`

	// Denormalized from the most recent scenario run.
	LatestScenarioID *string             `gorm:"column:latest_scenario_id;type:char(32)" json:"latest_scenario_id"`
	LatestDSCR       decimal.NullDecimal `gorm:"column:latest_dscr;type:decimal(10,4)" json:"latest_dscr"`
	LatestEligible   *bool               `gorm:"column:latest_eligible" json:"latest_eligible"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Deal) TableName() string { return "deals" }
