package db

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ForUpdate is a GORM scope that takes a row lock on the selected rows.
// Dialects without row locks (SQLite) drop the clause and rely on their
// database-level write lock instead.
//
//	tx.Scopes(db.ForUpdate()).First(&model, id)
func ForUpdate() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
}

// OrderByName orders rows by the qualified name column.
func OrderByName(table string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(table + ".name ASC")
	}
}
