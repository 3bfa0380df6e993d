package gormrepo

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dealDomain "dealdesk/internal/domain/deal"
	"dealdesk/internal/domain/uow"
)

func TestGormUoW_WithinTx_Commit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	deals := NewDealRepository(db)
	scenarios := NewScenarioRepository(db)

	d := makeDeal(operatorA, "commit")
	var sid string
	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Deals.Create(ctx, d); err != nil {
			return err
		}
		if d.ID == 0 {
			t.Fatalf("deal auto ID not set")
		}
		s := makeScenario(d.ID, "in tx")
		sid = s.ScenarioID
		return r.Scenarios.Create(ctx, s)
	})
	if err != nil {
		t.Fatalf("WithinTx commit err: %v", err)
	}

	if _, err := deals.GetByDealID(ctx, d.DealID); err != nil {
		t.Fatalf("deal not visible after commit: %v", err)
	}
	if _, err := scenarios.GetByScenarioID(ctx, sid); err != nil {
		t.Fatalf("scenario not visible after commit: %v", err)
	}
}

func TestGormUoW_WithinTx_Rollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	deals := NewDealRepository(db)
	scenarios := NewScenarioRepository(db)

	sentinel := errors.New("boom")
	d := makeDeal(operatorA, "rollback")
	var sid string

	_ = guow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Deals.Create(ctx, d); err != nil {
			return err
		}
		s := makeScenario(d.ID, "in tx")
		sid = s.ScenarioID
		if err := r.Scenarios.Create(ctx, s); err != nil {
			return err
		}
		return sentinel // force rollback
	})

	if _, err := deals.GetByDealID(ctx, d.DealID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected deal not found after rollback, got %v", err)
	}
	if _, err := scenarios.GetByScenarioID(ctx, sid); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected scenario not found after rollback, got %v", err)
	}
}

func TestGormUoW_WithinDealTx_Commit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	deals := NewDealRepository(db)
	scenarios := NewScenarioRepository(db)

	seed := makeDeal(operatorA, "target")
	if err := deals.Create(ctx, seed); err != nil {
		t.Fatalf("seed deal: %v", err)
	}

	var sid string
	if err := guow.WithinDealTx(ctx, seed.DealID, func(r uow.Repos, d *dealDomain.Deal) error {
		if d == nil || d.DealID != seed.DealID || d.Stage != dealDomain.StageSourced {
			t.Fatalf("unexpected deal passed to fn: %+v", d)
		}

		s := makeScenario(d.ID, "locked")
		if err := r.Scenarios.Create(ctx, s); err != nil {
			return err
		}
		sid = s.ScenarioID

		d.LatestScenarioID = &sid
		d.LatestDSCR = s.DSCR
		return r.Deals.Save(ctx, d)
	}); err != nil {
		t.Fatalf("WithinDealTx commit err: %v", err)
	}

	got, err := deals.GetByDealID(ctx, seed.DealID)
	if err != nil {
		t.Fatalf("GetByDealID post-commit: %v", err)
	}
	if got.LatestScenarioID == nil || *got.LatestScenarioID != sid {
		t.Fatalf("latest scenario not updated: %v", got.LatestScenarioID)
	}
	if !got.LatestDSCR.Valid || got.LatestDSCR.Decimal.LessThanOrEqual(decimal.Zero) {
		t.Fatalf("latest dscr not updated: %+v", got.LatestDSCR)
	}
	if _, err := scenarios.GetByScenarioID(ctx, sid); err != nil {
		t.Fatalf("scenario not visible after commit: %v", err)
	}
}

func TestGormUoW_WithinDealTx_Rollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	deals := NewDealRepository(db)
	scenarios := NewScenarioRepository(db)

	seed := makeDeal(operatorA, "rollback target")
	if err := deals.Create(ctx, seed); err != nil {
		t.Fatalf("seed deal: %v", err)
	}

	sentinel := errors.New("stop")
	var sid string

	_ = guow.WithinDealTx(ctx, seed.DealID, func(r uow.Repos, d *dealDomain.Deal) error {
		s := makeScenario(d.ID, "discarded")
		sid = s.ScenarioID
		if err := r.Scenarios.Create(ctx, s); err != nil {
			return err
		}
		d.Stage = dealDomain.StageScreening
		if err := r.Deals.Save(ctx, d); err != nil {
			return err
		}
		return sentinel // force rollback
	})

	got, err := deals.GetByDealID(ctx, seed.DealID)
	if err != nil {
		t.Fatalf("post-rollback GetByDealID: %v", err)
	}
	if got.Stage != dealDomain.StageSourced {
		t.Fatalf("expected sourced after rollback, got %s", got.Stage)
	}
	if _, err := scenarios.GetByScenarioID(ctx, sid); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected scenario absent after rollback, got %v", err)
	}
}

func TestGormUoW_WithinDealTx_DealNotFound(t *testing.T) {
	db := openTestDB(t)
	guow := NewGormUoW(db)

	err := guow.WithinDealTx(context.Background(), "ffffffffffffffffffffffffffffffff", func(uow.Repos, *dealDomain.Deal) error {
		t.Fatalf("callback should not be called when deal missing")
		return nil
	})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}
