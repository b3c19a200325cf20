package repo

import "time"

// SettlementRecord is a settlement instruction persisted by the settler
// worker for audit and replay by the ledger side.
type SettlementRecord struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement"`
	LogIndex      int       `gorm:"column:log_index"`
	Counterparty1 string    `gorm:"column:counterparty_1"`
	Amount1       int64     `gorm:"column:amount_1"`
	Asset1        string    `gorm:"column:asset_1"`
	Counterparty2 string    `gorm:"column:counterparty_2"`
	Amount2       int64     `gorm:"column:amount_2"`
	Asset2        string    `gorm:"column:asset_2"`
	Price         int64     `gorm:"column:price"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (SettlementRecord) TableName() string {
	return "settlements"
}
