package service

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"store-subscription-system/internal/apperr"
	"store-subscription-system/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// StoreService 店铺登记处，唯一写入店铺状态和到期时间
type StoreService struct {
	db      *gorm.DB
	keyPool *KeyPoolService
	audit   *AuditService
}

func NewStoreService(db *gorm.DB, keyPool *KeyPoolService, audit *AuditService) *StoreService {
	return &StoreService{db: db, keyPool: keyPool, audit: audit}
}

type ContactInfo struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Line     string `json:"line"`
	Facebook string `json:"facebook"`
}

func (c ContactInfo) empty() bool {
	return c.Email == "" && c.Phone == "" && c.Line == "" && c.Facebook == ""
}

type RegisterInput struct {
	ShopName       string      `json:"shop_name"`
	ShopLink       string      `json:"shop_link"`
	Contact        ContactInfo `json:"contact"`
	BusinessType   string      `json:"business_type"`
	ExpectedOrders int         `json:"expected_orders"`
	PackageType    string      `json:"package_type"`
	Username       string      `json:"username"`
	Password       string      `json:"password"`
}

// Register 登记新店铺，同时创建店主账号，整体在一个事务内
func (s *StoreService) Register(input RegisterInput) (*model.Store, error) {
	input.ShopName = strings.TrimSpace(input.ShopName)
	input.ShopLink = strings.TrimSpace(input.ShopLink)
	input.Username = strings.TrimSpace(input.Username)

	if input.ShopName == "" {
		return nil, apperr.Validation("店铺名称不能为空")
	}
	if input.ShopLink == "" {
		return nil, apperr.Validation("店铺链接不能为空")
	}
	if input.Contact.empty() {
		return nil, apperr.Validation("至少填写一种联系方式")
	}
	if input.Username == "" || input.Password == "" {
		return nil, apperr.Validation("用户名和密码不能为空")
	}
	if input.PackageType == "" {
		input.PackageType = model.PackageStandard
	}
	if input.PackageType != model.PackageStandard && input.PackageType != model.PackagePremium {
		return nil, apperr.Validation("无效的套餐类型")
	}

	// 检查用户名是否已被占用
	var count int64
	if err := s.db.Model(&model.User{}).Where("username = ?", input.Username).Count(&count).Error; err != nil {
		return nil, apperr.Persistence(err)
	}
	if count > 0 {
		return nil, apperr.Conflict("用户名已被使用")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Persistence(err)
	}

	contactJSON, err := json.Marshal(input.Contact)
	if err != nil {
		return nil, apperr.Validation("联系方式格式错误")
	}

	now := time.Now()
	store := &model.Store{
		ShopName:       input.ShopName,
		ShopLink:       input.ShopLink,
		ContactInfo:    string(contactJSON),
		BusinessType:   input.BusinessType,
		ExpectedOrders: input.ExpectedOrders,
		PackageType:    input.PackageType,
		Status:         model.StoreStatusPending,
		RegisteredAt:   now,
		UpdatedAt:      now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(store).Error; err != nil {
			return err
		}

		owner := &model.User{
			Username:  input.Username,
			Password:  string(hashedPassword),
			Role:      model.RoleStoreOwner,
			StoreID:   &store.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return tx.Create(owner).Error
	})
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return store, nil
}

// Get 获取单个店铺
func (s *StoreService) Get(storeID uint) (*model.Store, error) {
	var store model.Store
	if err := s.db.First(&store, storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("店铺不存在")
		}
		return nil, apperr.Persistence(err)
	}
	return &store, nil
}

// Approve 审批通过：pending -> approved
func (s *StoreService) Approve(storeID, actorID uint) (*model.Store, error) {
	store, err := s.Get(storeID)
	if err != nil {
		return nil, err
	}
	if store.Status != model.StoreStatusPending {
		return nil, apperr.InvalidState("只有待审核的店铺才能审批", store.Status)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":      model.StoreStatusApproved,
		"approved_at": now,
		"approved_by": actorID,
		"updated_at":  now,
	}
	if err := s.db.Model(store).Updates(updates).Error; err != nil {
		return nil, apperr.Persistence(err)
	}

	_ = s.audit.Record(actorID, model.ActionApproveStore, "store", strconv.Itoa(int(storeID)), auditDetails{
		"shop_name": store.ShopName,
	})

	store.Status = model.StoreStatusApproved
	store.ApprovedAt = &now
	store.ApprovedBy = &actorID
	return store, nil
}

// Reject 审批拒绝：pending -> rejected，保留拒绝原因
func (s *StoreService) Reject(storeID, actorID uint, reason string) (*model.Store, error) {
	store, err := s.Get(storeID)
	if err != nil {
		return nil, err
	}
	if store.Status != model.StoreStatusPending {
		return nil, apperr.InvalidState("只有待审核的店铺才能拒绝", store.Status)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":        model.StoreStatusRejected,
		"reject_reason": reason,
		"rejected_at":   now,
		"rejected_by":   actorID,
		"updated_at":    now,
	}
	if err := s.db.Model(store).Updates(updates).Error; err != nil {
		return nil, apperr.Persistence(err)
	}

	_ = s.audit.Record(actorID, model.ActionRejectStore, "store", strconv.Itoa(int(storeID)), auditDetails{
		"shop_name": store.ShopName, "reason": reason,
	})

	store.Status = model.StoreStatusRejected
	store.RejectReason = reason
	return store, nil
}

// SetStatus 管理员手工调整状态，如人工停用。目标状态与当前相同视为非法。
func (s *StoreService) SetStatus(storeID uint, target string, actorID uint, reason string) (*model.Store, error) {
	if target != model.StoreStatusActive && target != model.StoreStatusLocked && target != model.StoreStatusExpired {
		return nil, apperr.Validation("无效的目标状态")
	}

	store, err := s.Get(storeID)
	if err != nil {
		return nil, err
	}
	if store.Status == target {
		return nil, apperr.InvalidState("店铺已处于该状态", store.Status)
	}
	// active 店铺必须有到期时间，没激活过的店铺只能走激活流程
	if target == model.StoreStatusActive && store.ExpiryDate == nil {
		return nil, apperr.InvalidState("店铺尚未激活，不能直接置为活跃", store.Status)
	}

	if err := s.db.Model(store).Updates(map[string]interface{}{
		"status":     target,
		"updated_at": time.Now(),
	}).Error; err != nil {
		return nil, apperr.Persistence(err)
	}

	_ = s.audit.Record(actorID, model.ActionUpdateStatus, "store", strconv.Itoa(int(storeID)), auditDetails{
		"from": store.Status, "to": target, "reason": reason,
	})

	store.Status = target
	return store, nil
}

// Heartbeat 店铺会话心跳。只更新在线标记，不影响生命周期状态。
func (s *StoreService) Heartbeat(storeID uint) error {
	now := time.Now()
	result := s.db.Model(&model.Store{}).Where("id = ?", storeID).Updates(map[string]interface{}{
		"online":         true,
		"last_heartbeat": now,
	})
	if result.Error != nil {
		return apperr.Persistence(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("店铺不存在")
	}
	return nil
}

// Delete 硬删除店铺；绑定的序列号释放回可用池。不可恢复。
func (s *StoreService) Delete(storeID, actorID uint) error {
	store, err := s.Get(storeID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if store.CurrentKeyID != nil {
			if err := s.keyPool.releaseTx(tx, *store.CurrentKeyID, actorID); err != nil {
				// 序列号已不存在时继续删除店铺
				if !apperr.IsKind(err, apperr.KindNotFound) {
					return err
				}
			}
		}

		if err := tx.Where("store_id = ?", storeID).Delete(&model.User{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Store{}, storeID).Error; err != nil {
			return err
		}

		return s.audit.recordTx(tx, actorID, model.ActionDeleteStore, "store", strconv.Itoa(int(storeID)), auditDetails{
			"shop_name": store.ShopName, "released_key_id": store.CurrentKeyID,
		})
	})
	if err != nil {
		var e *apperr.Error
		if errors.As(err, &e) {
			return err
		}
		return apperr.Persistence(err)
	}
	return nil
}

type StoreSearchQuery struct {
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
	Status   string `query:"status"`
	Package  string `query:"package"`
	Keyword  string `query:"keyword"`
}

// Search 分页查询店铺
func (s *StoreService) Search(query StoreSearchQuery) ([]model.Store, int64, error) {
	db := s.db.Model(&model.Store{})

	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.Package != "" {
		db = db.Where("package_type = ?", query.Package)
	}
	if query.Keyword != "" {
		db = db.Where("shop_name LIKE ? OR shop_link LIKE ?",
			"%"+query.Keyword+"%", "%"+query.Keyword+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, apperr.Persistence(err)
	}

	var stores []model.Store
	offset := (query.Page - 1) * query.PageSize
	if err := db.Order("registered_at DESC").Offset(offset).Limit(query.PageSize).Find(&stores).Error; err != nil {
		return nil, 0, apperr.Persistence(err)
	}
	return stores, total, nil
}
