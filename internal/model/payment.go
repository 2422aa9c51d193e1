package model

import "time"

// 付款申请状态
const (
	PaymentStatusPending  = "pending"
	PaymentStatusApproved = "approved"
	PaymentStatusRejected = "rejected"
)

type PaymentRequest struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	StoreID     uint       `json:"store_id" gorm:"not null;index"`
	Amount      float64    `json:"amount" gorm:"not null"`
	ProofRef    string     `json:"proof_ref"` // 付款凭证引用，内容不在本系统校验
	Note        string     `json:"note"`
	Status      string     `json:"status" gorm:"default:'pending';index"`
	ProcessedBy *uint      `json:"processed_by"`
	ProcessedAt *time.Time `json:"processed_at"`
	AdminNotes  string     `json:"admin_notes"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// RevenueEntry 收入流水，只追加不修改
type RevenueEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StoreID   uint      `json:"store_id" gorm:"index"`
	PaymentID uint      `json:"payment_id"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}
