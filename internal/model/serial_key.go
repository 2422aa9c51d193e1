package model

import (
	"time"

	"gorm.io/gorm"
)

// 序列号状态
const (
	KeyStatusAvailable = "available"
	KeyStatusAssigned  = "assigned"
	KeyStatusExpired   = "expired"
)

type SerialKey struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Code         string         `json:"code" gorm:"uniqueIndex;not null"`
	DurationDays int            `json:"duration_days" gorm:"not null"`
	DurationText string         `json:"duration_text"`
	PackageType  string         `json:"package_type"` // 为空表示不限套餐
	Status       string         `json:"status" gorm:"default:'available';index"`
	StoreID      *uint          `json:"store_id"`
	CreatedBy    uint           `json:"created_by"`
	AssignedAt   *time.Time     `json:"assigned_at"`
	ExpiryDate   *time.Time     `json:"expiry_date"` // 分配时固定
	Notes        string         `json:"notes"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// MatchesPackage 序列号是否允许用于指定套餐
func (k *SerialKey) MatchesPackage(packageType string) bool {
	return k.PackageType == "" || k.PackageType == packageType
}
