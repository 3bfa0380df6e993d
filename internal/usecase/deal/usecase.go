package deal

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	domain "dealdesk/internal/domain/deal"
	"dealdesk/internal/domain/uow"
	"dealdesk/internal/infrastructure/logger"
	"dealdesk/pkg/id"
)

const maxListLimit = 200

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotConfigured means the usecase was built without a unit of work.
	ErrNotConfigured = errors.New("deal usecase not configured")
)

type Usecase struct {
	repo domain.Repository
	uow  uow.UnitOfWork
	log  *zap.Logger
}

func NewUsecase(r domain.Repository, tx uow.UnitOfWork, log *zap.Logger) *Usecase {
	return &Usecase{repo: r, uow: tx, log: logger.OrNop(log)}
}

func toDTO(d *domain.Deal) *DealDTO {
	return &DealDTO{
		DealID:           d.DealID,
		OperatorID:       d.OperatorID,
		Name:             d.Name,
		Industry:         d.Industry,
		NAICSCode:        d.NAICSCode,
		AskingPrice:      d.AskingPrice,
		Stage:            string(d.Stage),
		StageUpdatedAt:   d.StageUpdatedAt,
		LatestScenarioID: d.LatestScenarioID,
		LatestDSCR:       d.LatestDSCR,
		LatestEligible:   d.LatestEligible,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func (u *Usecase) Create(ctx context.Context, operatorID string, in CreateDealInput) (*DealDTO, error) {
	name := strings.TrimSpace(in.Name)
	if !id.Valid(operatorID) || name == "" || in.AskingPrice.IsNegative() {
		return nil, ErrInvalidInput
	}

	d := &domain.Deal{
		DealID:         id.NewID32(),
		OperatorID:     operatorID,
		Name:           name,
		Industry:       strings.TrimSpace(in.Industry),
		NAICSCode:      strings.TrimSpace(in.NAICSCode),
		AskingPrice:    in.AskingPrice,
		Stage:          domain.StageSourced,
		StageUpdatedAt: time.Now().UTC(),
	}
	if err := u.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	u.log.Info("deal created", zap.String("deal_id", d.DealID), zap.String("operator_id", operatorID))
	return toDTO(d), nil
}

// Get returns ErrNotFound for deals owned by another operator.
func (u *Usecase) Get(ctx context.Context, operatorID, dealID string) (*DealDTO, error) {
	d, err := u.repo.GetByDealID(ctx, dealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if d.OperatorID != operatorID {
		return nil, domain.ErrNotFound
	}
	return toDTO(d), nil
}

func (u *Usecase) List(ctx context.Context, operatorID string, in ListInput) ([]DealDTO, error) {
	f := domain.ListFilter{Limit: in.Limit, Offset: in.Offset}
	if in.Stage != "" {
		f.Stage = domain.Stage(in.Stage)
		if !f.Stage.Valid() {
			return nil, ErrInvalidInput
		}
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	ds, err := u.repo.ListByOperator(ctx, operatorID, f)
	if err != nil {
		return nil, err
	}
	out := make([]DealDTO, 0, len(ds))
	for i := range ds {
		out = append(out, *toDTO(&ds[i]))
	}
	return out, nil
}

// AdvanceStage moves a deal along the pipeline under a row lock.
func (u *Usecase) AdvanceStage(ctx context.Context, operatorID, dealID, stage string) (*DealDTO, error) {
	if u.uow == nil {
		return nil, ErrNotConfigured
	}
	to := domain.Stage(stage)
	var dto *DealDTO

	err := u.uow.WithinDealTx(ctx, dealID, func(r uow.Repos, d *domain.Deal) error {
		if d.OperatorID != operatorID {
			return domain.ErrNotFound
		}
		if !domain.CanTransition(d.Stage, to) {
			return domain.ErrInvalidTransition
		}
		from := d.Stage
		d.Stage = to
		d.StageUpdatedAt = time.Now().UTC()
		if err := r.Deals.Save(ctx, d); err != nil {
			return err
		}
		u.log.Info("deal stage changed",
			zap.String("deal_id", d.DealID),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		dto = toDTO(d)
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return dto, nil
}
