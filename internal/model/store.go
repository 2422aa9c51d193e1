package model

import (
	"time"
)

// 店铺生命周期状态
const (
	StoreStatusPending     = "pending"
	StoreStatusApproved    = "approved"
	StoreStatusAwaitingKey = "awaiting_key"
	StoreStatusActive      = "active"
	StoreStatusLocked      = "locked"
	StoreStatusExpired     = "expired"
	StoreStatusRejected    = "rejected"
)

// 套餐类型
const (
	PackageStandard = "standard"
	PackagePremium  = "premium"
)

type Store struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	ShopName       string     `json:"shop_name" gorm:"not null"`
	ShopLink       string     `json:"shop_link" gorm:"not null"`
	ContactInfo    string     `json:"contact_info" gorm:"not null"` // JSON: email/phone/line/facebook
	BusinessType   string     `json:"business_type"`
	ExpectedOrders int        `json:"expected_orders"`
	PackageType    string     `json:"package_type" gorm:"default:'standard'"`
	Status         string     `json:"status" gorm:"default:'pending';index"`
	CurrentKeyID   *uint      `json:"current_key_id"`
	ExpiryDate     *time.Time `json:"expiry_date"`
	Online         bool       `json:"online" gorm:"default:false"`
	LastHeartbeat  *time.Time `json:"last_heartbeat"`
	RejectReason   string     `json:"reject_reason"`
	LastPaymentAt  *time.Time `json:"last_payment_at"`
	RegisteredAt   time.Time  `json:"registered_at"`
	ApprovedAt     *time.Time `json:"approved_at"`
	ApprovedBy     *uint      `json:"approved_by"`
	ActivatedAt    *time.Time `json:"activated_at"`
	ActivatedBy    *uint      `json:"activated_by"`
	RejectedAt     *time.Time `json:"rejected_at"`
	RejectedBy     *uint      `json:"rejected_by"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// HasBoundKey 店铺当前是否绑定了序列号
func (s *Store) HasBoundKey() bool {
	return s.CurrentKeyID != nil
}

// CanActivate 店铺当前状态是否允许激活
func (s *Store) CanActivate() bool {
	return s.Status == StoreStatusApproved || s.Status == StoreStatusAwaitingKey
}
