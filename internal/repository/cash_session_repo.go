package repository

import (
	"context"
	"errors"

	"clinicpanel/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CashSessionRepository interface {
	Create(ctx context.Context, session *model.CashSession) error
	Update(ctx context.Context, session *model.CashSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error)
	// FindOpen returns the currently open session or nil. It must be called
	// fresh inside each transaction that depends on it — never cached.
	FindOpen(ctx context.Context) (*model.CashSession, error)
	// FindOpenForUpdate is FindOpen with the row locked until the surrounding
	// transaction ends, serializing concurrent open/close attempts.
	FindOpenForUpdate(ctx context.Context) (*model.CashSession, error)
	History(ctx context.Context, limit int) ([]model.CashSession, error)
}

type cashSessionRepository struct {
	db *gorm.DB
}

func NewCashSessionRepository(db *gorm.DB) CashSessionRepository {
	return &cashSessionRepository{db: db}
}

func (r *cashSessionRepository) Create(ctx context.Context, session *model.CashSession) error {
	return GetDB(ctx, r.db).Create(session).Error
}

func (r *cashSessionRepository) Update(ctx context.Context, session *model.CashSession) error {
	return GetDB(ctx, r.db).Save(session).Error
}

func (r *cashSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error) {
	var session model.CashSession
	if err := GetDB(ctx, r.db).First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *cashSessionRepository) FindOpen(ctx context.Context) (*model.CashSession, error) {
	return r.findOpen(GetDB(ctx, r.db))
}

func (r *cashSessionRepository) FindOpenForUpdate(ctx context.Context) (*model.CashSession, error) {
	return r.findOpen(GetDB(ctx, r.db).Clauses(forUpdate()))
}

func (r *cashSessionRepository) findOpen(db *gorm.DB) (*model.CashSession, error) {
	var session model.CashSession
	err := db.Where("closed_at IS NULL").Order("opened_at DESC").First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *cashSessionRepository) History(ctx context.Context, limit int) ([]model.CashSession, error) {
	var sessions []model.CashSession
	err := GetDB(ctx, r.db).
		Order("opened_at DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
