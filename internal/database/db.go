package database

import (
	"os"
	"path/filepath"
	"time"

	"store-subscription-system/internal/model"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Open 打开数据库并完成迁移
func Open(dbPath string) (*gorm.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	// 写锁等待有上限，超时返回可重试的错误而不是无限阻塞；
	// 唯一索引冲突翻译成 gorm.ErrDuplicatedKey
	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=busy_timeout(5000)"), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate 自动迁移全部模型
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Store{},
		&model.SerialKey{},
		&model.PaymentRequest{},
		&model.RevenueEntry{},
		&model.AuditLog{},
		&model.LoginLog{},
	)
}

// BootstrapOperator 确保存在初始管理员账号
func BootstrapOperator(db *gorm.DB, username, password string) error {
	var count int64
	if err := db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	operator := &model.User{
		Username:  username,
		Password:  string(hashed),
		Role:      model.RoleOperator,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	return db.Create(operator).Error
}
