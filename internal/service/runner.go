package service

import (
	"context"

	"gorm.io/gorm"
)

// txRunner wraps transaction start so tests can run service logic against
// fake repositories without a live store.
type txRunner interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
