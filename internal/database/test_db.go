package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OpenTest 内存数据库，用于测试。每次调用互相隔离。
func OpenTest() *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		panic("failed to connect test database")
	}

	if err := Migrate(db); err != nil {
		panic("failed to migrate test database")
	}
	return db
}

// CloseTest 关闭测试数据库连接
func CloseTest(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	sqlDB.Close()
}
