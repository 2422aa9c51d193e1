package model

import "time"

// 审计动作类型
const (
	ActionApproveStore  = "approve_store"
	ActionRejectStore   = "reject_store"
	ActionActivateStore = "activate_store"
	ActionUpdateStatus  = "update_status"
	ActionDeleteStore   = "delete_store"
	ActionCreateKey     = "create_key"
	ActionReleaseKey    = "release_key"
	ActionDeleteKey     = "delete_key"
	ActionSubmitPayment = "submit_payment"
	ActionReviewPayment = "review_payment"
	ActionExpireStore   = "expire_store"
)

// SystemActorID 后台自动任务使用的操作者ID
const SystemActorID uint = 0

type AuditLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ActorID   uint      `json:"actor_id" gorm:"index"`
	Action    string    `json:"action" gorm:"not null;index"`
	Target    string    `json:"target" gorm:"not null"`
	TargetID  string    `json:"target_id" gorm:"index"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}
