package service

import (
	"errors"
	"log"
	"strconv"
	"time"

	"store-subscription-system/internal/apperr"
	"store-subscription-system/internal/model"

	"gorm.io/gorm"
)

// ActivationService 激活引擎：把序列号绑定到店铺并促成 active，
// 是系统里唯一的跨实体事务
type ActivationService struct {
	db      *gorm.DB
	keyPool *KeyPoolService
	audit   *AuditService
}

func NewActivationService(db *gorm.DB, keyPool *KeyPoolService, audit *AuditService) *ActivationService {
	return &ActivationService{db: db, keyPool: keyPool, audit: audit}
}

// Activate 激活流程，全部成功或全部回滚：
//  1. 条件更新抢占序列号（available -> assigned）
//  2. 计算到期时间 now + durationDays
//  3. 店铺置为 active 并绑定序列号
//  4. 写入一条覆盖两侧变更的审计记录
func (s *ActivationService) Activate(storeID, keyID, actorID uint) (*model.Store, error) {
	now := time.Now()
	var store model.Store

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&store, storeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("店铺不存在")
			}
			return apperr.Persistence(err)
		}

		if !store.CanActivate() {
			return apperr.InvalidState("店铺当前状态不允许激活", store.Status)
		}
		if store.HasBoundKey() {
			return apperr.InvalidState("店铺已绑定序列号", store.Status)
		}

		key, expiry, err := s.keyPool.reserveForAssignment(tx, keyID, storeID, now)
		if err != nil {
			return err
		}

		if !key.MatchesPackage(store.PackageType) {
			return apperr.Validation("序列号套餐与店铺套餐不匹配")
		}

		updates := map[string]interface{}{
			"status":         model.StoreStatusActive,
			"current_key_id": keyID,
			"expiry_date":    expiry,
			"activated_at":   now,
			"activated_by":   actorID,
			"updated_at":     now,
		}
		if err := tx.Model(&model.Store{}).Where("id = ?", storeID).Updates(updates).Error; err != nil {
			return apperr.Persistence(err)
		}

		if err := s.audit.recordTx(tx, actorID, model.ActionActivateStore, "store", strconv.Itoa(int(storeID)), auditDetails{
			"key_id": keyID, "key_code": key.Code, "expiry_date": expiry,
		}); err != nil {
			return apperr.Persistence(err)
		}

		store.Status = model.StoreStatusActive
		store.CurrentKeyID = &keyID
		store.ExpiryDate = &expiry
		store.ActivatedAt = &now
		store.ActivatedBy = &actorID
		return nil
	})
	if err != nil {
		var e *apperr.Error
		if errors.As(err, &e) {
			return nil, err
		}
		// 事务回滚自身失败属于需要人工对账的异常，必须留痕
		log.Printf("激活事务失败，店铺=%d 序列号=%d: %v", storeID, keyID, err)
		return nil, apperr.Persistence(err)
	}
	return &store, nil
}
