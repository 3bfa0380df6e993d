package calculator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"dealdesk/internal/domain/sba"
	"dealdesk/internal/infrastructure/logger"
	"dealdesk/internal/infrastructure/metrics"
)

const (
	KindLoanStructure  = "loan_structure"
	KindWorkingCapital = "working_capital"
)

// Service runs the calculator against one configured program and records
// every run. It holds no state between calls.
type Service struct {
	program sba.Program
	log     *zap.Logger
}

func NewService(p sba.Program, log *zap.Logger) *Service {
	return &Service{program: p, log: logger.OrNop(log)}
}

func (s *Service) Program() sba.Program { return s.program }

// LoanStructure returns rounded outputs. A *sba.ValidationError means the
// inputs were rejected; an ineligible deal is not an error.
func (s *Service) LoanStructure(ctx context.Context, in sba.LoanInputs) (*sba.LoanOutputs, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	started := time.Now()
	out, err := sba.ComputeLoanStructure(s.program, in)
	if err != nil {
		metrics.ObserveCalculation(KindLoanStructure, metrics.OutcomeInvalid, started)
		s.log.Debug("loan structure rejected", zap.Error(err))
		return nil, err
	}

	outcome := metrics.OutcomeIneligible
	if out.Eligible {
		outcome = metrics.OutcomeEligible
	}
	metrics.ObserveCalculation(KindLoanStructure, outcome, started)
	recordFindings(out.Issues)
	recordFindings(out.Warnings)

	s.log.Debug("loan structure computed",
		zap.Stringer("purchase_price", in.PurchasePrice),
		zap.Stringer("primary_loan", out.PrimaryLoanAmount),
		zap.Bool("eligible", out.Eligible),
		zap.Int("issues", len(out.Issues)),
		zap.Int("warnings", len(out.Warnings)),
	)

	r := out.Rounded()
	return &r, nil
}

func (s *Service) WorkingCapital(ctx context.Context, in sba.WorkingCapitalInputs) (*sba.WorkingCapitalEstimate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	started := time.Now()
	est, err := sba.EstimateWorkingCapital(s.program, in)
	if err != nil {
		metrics.ObserveCalculation(KindWorkingCapital, metrics.OutcomeInvalid, started)
		s.log.Debug("working capital rejected", zap.Error(err))
		return nil, err
	}
	metrics.ObserveCalculation(KindWorkingCapital, metrics.OutcomeOK, started)
	s.log.Debug("working capital estimated",
		zap.Stringer("recommended", est.RecommendedWorkingCapital),
		zap.String("source", string(est.Source)),
	)

	r := est.Rounded()
	return &r, nil
}

func recordFindings(fs []sba.Finding) {
	for _, f := range fs {
		metrics.Findings.WithLabelValues(string(f.Kind), string(f.Category)).Inc()
	}
}
