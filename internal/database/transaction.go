// internal/database/transaction.go
package database

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WithTransaction runs fn in a transaction bound to ctx, rolling back on
// error or panic.
func WithTransaction(ctx context.Context, db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// ForUpdate adds a row lock where the dialect supports one. sqlite
// serializes writers already and rejects the clause.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
