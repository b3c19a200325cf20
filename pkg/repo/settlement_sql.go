package repo

import (
	"context"

	"gorm.io/gorm"
)

type SettlementSQLRepo struct {
	db *gorm.DB
}

func NewSettlementSQLRepo(db *gorm.DB) *SettlementSQLRepo {
	return &SettlementSQLRepo{db: db}
}

func (s *SettlementSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *SettlementSQLRepo) Create(ctx context.Context, record *SettlementRecord) (*SettlementRecord, error) {
	if err := s.dbWithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (s *SettlementSQLRepo) BulkCreate(ctx context.Context, records []*SettlementRecord) ([]*SettlementRecord, error) {
	if len(records) == 0 {
		return records, nil
	}
	if err := s.dbWithContext(ctx).Create(records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *SettlementSQLRepo) ListAfter(ctx context.Context, afterID int64, limit int) ([]*SettlementRecord, error) {
	var out []*SettlementRecord
	q := s.dbWithContext(ctx).Where("id > ?", afterID).Order("id asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
