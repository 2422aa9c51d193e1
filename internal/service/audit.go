package service

import (
	"encoding/json"
	"time"

	"store-subscription-system/internal/apperr"
	"store-subscription-system/internal/model"

	"gorm.io/gorm"
)

// AuditService 审计日志，只追加不修改
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Record 记录一条管理操作
func (s *AuditService) Record(actorID uint, action, target, targetID string, details interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return err
	}

	entry := &model.AuditLog{
		ActorID:   actorID,
		Action:    action,
		Target:    target,
		TargetID:  targetID,
		Details:   string(detailsJSON),
		CreatedAt: time.Now(),
	}
	return s.db.Create(entry).Error
}

// recordTx 在事务内记录，供跨实体操作使用
func (s *AuditService) recordTx(tx *gorm.DB, actorID uint, action, target, targetID string, details interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return err
	}

	entry := &model.AuditLog{
		ActorID:   actorID,
		Action:    action,
		Target:    target,
		TargetID:  targetID,
		Details:   string(detailsJSON),
		CreatedAt: time.Now(),
	}
	return tx.Create(entry).Error
}

// List 获取审计日志列表
func (s *AuditService) List(page, pageSize int) ([]model.AuditLog, int64, error) {
	var logs []model.AuditLog
	var total int64

	if err := s.db.Model(&model.AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, apperr.Persistence(err)
	}

	offset := (page - 1) * pageSize
	if err := s.db.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&logs).Error; err != nil {
		return nil, 0, apperr.Persistence(err)
	}
	return logs, total, nil
}

// ListForTarget 获取指定对象的审计日志
func (s *AuditService) ListForTarget(target, targetID string, page, pageSize int) ([]model.AuditLog, int64, error) {
	var logs []model.AuditLog
	var total int64

	db := s.db.Model(&model.AuditLog{}).Where("target = ? AND target_id = ?", target, targetID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, apperr.Persistence(err)
	}

	offset := (page - 1) * pageSize
	if err := db.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&logs).Error; err != nil {
		return nil, 0, apperr.Persistence(err)
	}
	return logs, total, nil
}
