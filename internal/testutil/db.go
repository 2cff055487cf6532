// Package testutil 提供测试用的内存数据库与种子数据
package testutil

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/socialfeed/internal/model"
	"github.com/d60-Lab/socialfeed/pkg/database"
)

// NewDB 打开已迁移的 sqlite 内存库；连接数固定为 1，保证所有查询落在同一个内存库上
func NewDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		tb.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// SeedUser 直接写入 user 与 profile，不经过注册流程
func SeedUser(tb testing.TB, db *gorm.DB, username string) (*model.User, *model.Profile) {
	tb.Helper()
	u := &model.User{Username: username, Password: "x"}
	if err := db.WithContext(context.Background()).Create(u).Error; err != nil {
		tb.Fatalf("seed user %s: %v", username, err)
	}
	p := &model.Profile{UserID: u.ID}
	if err := db.Create(p).Error; err != nil {
		tb.Fatalf("seed profile %s: %v", username, err)
	}
	return u, p
}
