package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"store-subscription-system/internal/apperr"
	"store-subscription-system/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// KeyPoolService 序列号池，唯一写入序列号状态和绑定关系
type KeyPoolService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewKeyPoolService(db *gorm.DB, audit *AuditService) *KeyPoolService {
	return &KeyPoolService{db: db, audit: audit}
}

type CreateKeyInput struct {
	Code         string `json:"code"`
	DurationDays int    `json:"duration_days"`
	DurationText string `json:"duration_text"`
	PackageType  string `json:"package_type"`
	Notes        string `json:"notes"`
}

// Create 创建新序列号。code 为空时自动生成。
func (s *KeyPoolService) Create(input CreateKeyInput, actorID uint) (*model.SerialKey, error) {
	if input.DurationDays <= 0 {
		return nil, apperr.Validation("有效天数必须大于0")
	}
	if input.PackageType != "" && input.PackageType != model.PackageStandard && input.PackageType != model.PackagePremium {
		return nil, apperr.Validation("无效的套餐类型")
	}

	code := strings.TrimSpace(input.Code)
	if code == "" {
		code = generateKeyCode()
	}

	key := &model.SerialKey{
		Code:         code,
		DurationDays: input.DurationDays,
		DurationText: input.DurationText,
		PackageType:  input.PackageType,
		Status:       model.KeyStatusAvailable,
		CreatedBy:    actorID,
		Notes:        input.Notes,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	// 码在全系统生命周期内唯一，由唯一索引保证；
	// 软删除的行保留在索引里，墓碑码同样占用，并发创建也只会有一个成功
	if err := s.db.Create(key).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("序列号已存在")
		}
		return nil, apperr.Persistence(err)
	}

	_ = s.audit.Record(actorID, model.ActionCreateKey, "serial_key", strconv.Itoa(int(key.ID)), auditDetails{
		"code": code, "duration_days": input.DurationDays, "package_type": input.PackageType,
	})
	return key, nil
}

// Get 获取单个序列号
func (s *KeyPoolService) Get(keyID uint) (*model.SerialKey, error) {
	var key model.SerialKey
	if err := s.db.First(&key, keyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("序列号不存在")
		}
		return nil, apperr.Persistence(err)
	}
	return &key, nil
}

// ListAvailable 列出可用序列号，可按套餐过滤
func (s *KeyPoolService) ListAvailable(tierFilter string) ([]model.SerialKey, error) {
	db := s.db.Where("status = ?", model.KeyStatusAvailable)
	if tierFilter != "" {
		db = db.Where("package_type = '' OR package_type = ?", tierFilter)
	}

	var keys []model.SerialKey
	if err := db.Order("created_at ASC").Find(&keys).Error; err != nil {
		return nil, apperr.Persistence(err)
	}
	return keys, nil
}

type KeySearchQuery struct {
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
	Status   string `query:"status"`
	Package  string `query:"package"`
	Keyword  string `query:"keyword"`
}

// Search 分页查询序列号
func (s *KeyPoolService) Search(query KeySearchQuery) ([]model.SerialKey, int64, error) {
	db := s.db.Model(&model.SerialKey{})

	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.Package != "" {
		db = db.Where("package_type = ?", query.Package)
	}
	if query.Keyword != "" {
		db = db.Where("code LIKE ? OR notes LIKE ?",
			"%"+query.Keyword+"%", "%"+query.Keyword+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, apperr.Persistence(err)
	}

	var keys []model.SerialKey
	offset := (query.Page - 1) * query.PageSize
	if err := db.Order("created_at DESC").Offset(offset).Limit(query.PageSize).Find(&keys).Error; err != nil {
		return nil, 0, apperr.Persistence(err)
	}
	return keys, total, nil
}

// Release 释放序列号回可用池。对已可用的序列号是幂等空操作。
func (s *KeyPoolService) Release(keyID uint, actorID uint) error {
	return s.releaseTx(s.db, keyID, actorID)
}

func (s *KeyPoolService) releaseTx(tx *gorm.DB, keyID uint, actorID uint) error {
	var key model.SerialKey
	if err := tx.First(&key, keyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("序列号不存在")
		}
		return apperr.Persistence(err)
	}

	if key.Status == model.KeyStatusAvailable {
		return nil
	}

	updates := map[string]interface{}{
		"status":      model.KeyStatusAvailable,
		"store_id":    nil,
		"assigned_at": nil,
		"expiry_date": nil,
		"updated_at":  time.Now(),
	}
	if err := tx.Model(&key).Updates(updates).Error; err != nil {
		return apperr.Persistence(err)
	}

	_ = s.audit.recordTx(tx, actorID, model.ActionReleaseKey, "serial_key", strconv.Itoa(int(keyID)), auditDetails{
		"code": key.Code,
	})
	return nil
}

// Delete 软删除序列号。已分配的序列号不允许删除。
func (s *KeyPoolService) Delete(keyID uint, actorID uint) error {
	var key model.SerialKey
	if err := s.db.First(&key, keyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("序列号不存在")
		}
		return apperr.Persistence(err)
	}

	if key.Status == model.KeyStatusAssigned {
		return apperr.InvalidState("序列号已分配给店铺，不能删除", key.Status)
	}

	if err := s.db.Delete(&key).Error; err != nil {
		return apperr.Persistence(err)
	}

	_ = s.audit.Record(actorID, model.ActionDeleteKey, "serial_key", strconv.Itoa(int(keyID)), auditDetails{
		"code": key.Code,
	})
	return nil
}

// reserveForAssignment 把序列号从 available 原子地置为 assigned，
// 返回按当前时间计算的到期时间。条件更新保证并发激活只有一个成功。
func (s *KeyPoolService) reserveForAssignment(tx *gorm.DB, keyID, storeID uint, now time.Time) (*model.SerialKey, time.Time, error) {
	var key model.SerialKey
	if err := tx.First(&key, keyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, time.Time{}, apperr.NotFound("序列号不存在")
		}
		return nil, time.Time{}, apperr.Persistence(err)
	}

	expiry := now.AddDate(0, 0, key.DurationDays)

	result := tx.Model(&model.SerialKey{}).
		Where("id = ? AND status = ?", keyID, model.KeyStatusAvailable).
		Updates(map[string]interface{}{
			"status":      model.KeyStatusAssigned,
			"store_id":    storeID,
			"assigned_at": now,
			"expiry_date": expiry,
			"updated_at":  now,
		})
	if result.Error != nil {
		return nil, time.Time{}, apperr.Persistence(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, time.Time{}, apperr.Conflict("序列号已被使用或不可用")
	}

	key.Status = model.KeyStatusAssigned
	key.StoreID = &storeID
	key.AssignedAt = &now
	key.ExpiryDate = &expiry
	return &key, expiry, nil
}

// 生成序列号：SK-XXXX-XXXX-XXXX
func generateKeyCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("SK-%s-%s-%s", raw[0:4], raw[4:8], raw[8:12])
}

// auditDetails 审计详情的简写类型
type auditDetails map[string]interface{}
