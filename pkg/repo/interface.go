package repo

import "context"

type ISettlement interface {
	Create(ctx context.Context, record *SettlementRecord) (*SettlementRecord, error)
	BulkCreate(ctx context.Context, records []*SettlementRecord) ([]*SettlementRecord, error)
	ListAfter(ctx context.Context, afterID int64, limit int) ([]*SettlementRecord, error)
}
