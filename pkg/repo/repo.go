package repo

import (
	"gorm.io/gorm"
)

type IRepo interface {
	Settlement() ISettlement
}

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) IRepo {
	return &Repo{db: db}
}

func (r *Repo) Settlement() ISettlement {
	return NewSettlementSQLRepo(r.db)
}
