// Package testdb opens throwaway in-memory databases for package tests.
package testdb

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/storefront/internal/models"
)

// New returns a migrated sqlite database limited to one connection, so
// every query inside a transaction must go through the tx handle.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func SeedCategory(t testing.TB, db *gorm.DB, name string) models.Category {
	t.Helper()
	c := models.Category{Name: name}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func SeedProduct(t testing.TB, db *gorm.DB, categoryID uint, name string, price int64) models.Product {
	t.Helper()
	p := models.Product{Name: name, Price: price, CategoryID: categoryID, Stock: 10}
	require.NoError(t, db.Omit("Category", "Images").Create(&p).Error)
	return p
}

func SeedUser(t testing.TB, db *gorm.DB, username string, staff bool) models.User {
	t.Helper()
	u := models.User{
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    "Test",
		LastName:     username,
		PasswordHash: "x",
		IsActive:     true,
		IsStaff:      staff,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}
