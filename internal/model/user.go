package model

import (
	"time"
)

// 用户角色
const (
	RoleOperator   = "operator"
	RoleStoreOwner = "store_owner"
)

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Role      string    `json:"role" gorm:"default:'store_owner'"`
	StoreID   *uint     `json:"store_id"` // operator 账号不绑定店铺
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LastLogin time.Time `json:"last_login"`
}

// IsOperator 是否平台管理员
func (u *User) IsOperator() bool {
	return u.Role == RoleOperator
}

// OwnsStore 是否该店铺的店主
func (u *User) OwnsStore(storeID uint) bool {
	return u.StoreID != nil && *u.StoreID == storeID
}
