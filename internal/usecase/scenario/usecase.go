package scenario

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	dealDomain "dealdesk/internal/domain/deal"
	domain "dealdesk/internal/domain/scenario"
	"dealdesk/internal/domain/uow"
	"dealdesk/internal/infrastructure/logger"
	"dealdesk/internal/infrastructure/metrics"
	"dealdesk/internal/usecase/calculator"
	"dealdesk/pkg/id"
)

const defaultListLimit = 50

// ErrNotConfigured means the usecase was built without a calculator or unit
// of work.
var ErrNotConfigured = errors.New("scenario usecase not configured")

type Usecase struct {
	calc      *calculator.Service
	deals     dealDomain.Repository
	scenarios domain.Repository
	uow       uow.UnitOfWork
	log       *zap.Logger
}

func NewUsecase(calc *calculator.Service, deals dealDomain.Repository, scenarios domain.Repository, tx uow.UnitOfWork, log *zap.Logger) *Usecase {
	return &Usecase{calc: calc, deals: deals, scenarios: scenarios, uow: tx, log: logger.OrNop(log)}
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// Run structures the loan for a deal and saves the result as a scenario.
// The deal row stays locked while the scenario is written and the deal's
// latest-run columns are updated, so concurrent runs serialize.
func (u *Usecase) Run(ctx context.Context, operatorID, dealID string, in RunInput) (*ScenarioDTO, error) {
	if u.uow == nil || u.calc == nil {
		return nil, ErrNotConfigured
	}
	var dto *ScenarioDTO

	err := u.uow.WithinDealTx(ctx, dealID, func(r uow.Repos, d *dealDomain.Deal) error {
		if d.OperatorID != operatorID {
			return dealDomain.ErrNotFound
		}
		if d.Stage.Terminal() {
			return dealDomain.ErrArchived
		}

		inputs := in.Inputs
		if (inputs.NAICSCode == nil || strings.TrimSpace(*inputs.NAICSCode) == "") && d.NAICSCode != "" {
			naics := d.NAICSCode
			inputs.NAICSCode = &naics
		}

		out, err := u.calc.LoanStructure(ctx, inputs)
		if err != nil {
			return err
		}

		s := &domain.Scenario{
			ScenarioID:        id.NewID32(),
			DealID:            d.ID,
			OperatorID:        operatorID,
			Label:             strings.TrimSpace(in.Label),
			Inputs:            inputs,
			Results:           *out,
			PrimaryLoanAmount: out.PrimaryLoanAmount,
			DSCR:              out.DebtServiceCoverageRatio,
			Eligible:          out.Eligible,
			IssueCount:        len(out.Issues),
			WarningCount:      len(out.Warnings),
		}
		if err := r.Scenarios.Create(ctx, s); err != nil {
			return err
		}

		eligible := out.Eligible
		d.LatestScenarioID = &s.ScenarioID
		d.LatestDSCR = out.DebtServiceCoverageRatio
		d.LatestEligible = &eligible
		if err := r.Deals.Save(ctx, d); err != nil {
			return err
		}

		dto = &ScenarioDTO{
			ScenarioID: s.ScenarioID,
			DealID:     d.DealID,
			Label:      s.Label,
			Inputs:     s.Inputs,
			Results:    s.Results,
			CreatedAt:  s.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, notFound(err, dealDomain.ErrNotFound)
	}

	metrics.ScenariosSaved.Inc()
	u.log.Info("scenario saved",
		zap.String("scenario_id", dto.ScenarioID),
		zap.String("deal_id", dto.DealID),
		zap.Bool("eligible", dto.Results.Eligible),
	)
	return dto, nil
}

func (u *Usecase) Get(ctx context.Context, operatorID, scenarioID string) (*ScenarioDTO, error) {
	s, err := u.scenarios.GetByScenarioID(ctx, scenarioID)
	if err != nil {
		return nil, notFound(err, domain.ErrNotFound)
	}
	if s.OperatorID != operatorID {
		return nil, domain.ErrNotFound
	}
	dto := &ScenarioDTO{
		ScenarioID: s.ScenarioID,
		Label:      s.Label,
		Inputs:     s.Inputs,
		Results:    s.Results,
		CreatedAt:  s.CreatedAt,
	}
	if s.Deal != nil {
		dto.DealID = s.Deal.DealID
	}
	return dto, nil
}

// ListByDeal returns summaries newest first.
func (u *Usecase) ListByDeal(ctx context.Context, operatorID, dealID string, limit int) ([]SummaryDTO, error) {
	d, err := u.deals.GetByDealID(ctx, dealID)
	if err != nil {
		return nil, notFound(err, dealDomain.ErrNotFound)
	}
	if d.OperatorID != operatorID {
		return nil, dealDomain.ErrNotFound
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	ss, err := u.scenarios.ListByDeal(ctx, d.ID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]SummaryDTO, 0, len(ss))
	for _, s := range ss {
		out = append(out, SummaryDTO{
			ScenarioID:        s.ScenarioID,
			Label:             s.Label,
			PrimaryLoanAmount: s.PrimaryLoanAmount,
			DSCR:              s.DSCR,
			Eligible:          s.Eligible,
			IssueCount:        s.IssueCount,
			WarningCount:      s.WarningCount,
			CreatedAt:         s.CreatedAt,
		})
	}
	return out, nil
}
