package service

import (
	"errors"
	"strconv"
	"time"

	"store-subscription-system/internal/apperr"
	"store-subscription-system/internal/model"

	"gorm.io/gorm"
)

// PaymentService 续费工作流：收付款凭证、审批、延长店铺有效期、记收入流水
type PaymentService struct {
	db          *gorm.DB
	audit       *AuditService
	renewalDays int
	sheetSync   RevenueExporter
}

// RevenueExporter 收入流水的外部导出端，生产实现是 RevenueSheetSync
type RevenueExporter interface {
	AppendRevenue(entry *model.RevenueEntry) error
}

func NewPaymentService(db *gorm.DB, audit *AuditService, renewalDays int, sheetSync RevenueExporter) *PaymentService {
	return &PaymentService{db: db, audit: audit, renewalDays: renewalDays, sheetSync: sheetSync}
}

type SubmitPaymentInput struct {
	Amount   float64 `json:"amount"`
	ProofRef string  `json:"proof_ref"`
	Note     string  `json:"note"`
}

// Submit 店主提交付款凭证，不改变店铺状态
func (s *PaymentService) Submit(storeID uint, input SubmitPaymentInput, actorID uint) (*model.PaymentRequest, error) {
	if input.Amount <= 0 {
		return nil, apperr.Validation("金额必须大于0")
	}

	var store model.Store
	if err := s.db.First(&store, storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("店铺不存在")
		}
		return nil, apperr.Persistence(err)
	}

	now := time.Now()
	request := &model.PaymentRequest{
		StoreID:   storeID,
		Amount:    input.Amount,
		ProofRef:  input.ProofRef,
		Note:      input.Note,
		Status:    model.PaymentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.Create(request).Error; err != nil {
		return nil, apperr.Persistence(err)
	}

	_ = s.audit.Record(actorID, model.ActionSubmitPayment, "payment", strconv.Itoa(int(request.ID)), auditDetails{
		"store_id": storeID, "amount": input.Amount,
	})
	return request, nil
}

// Review 审批付款申请，终态操作。
// 通过时：到期时间 = 审批时刻 + 续费天数（不叠加旧的到期时间），
// 因到期而 expired 的店铺恢复 active，并追加一条收入流水。
// 店铺有效期更新和状态恢复在同一事务内完成，与到期巡检可交换。
func (s *PaymentService) Review(requestID uint, decision string, actorID uint, notes string) (*model.PaymentRequest, error) {
	if decision != model.PaymentStatusApproved && decision != model.PaymentStatusRejected {
		return nil, apperr.Validation("无效的审批决定")
	}

	var request model.PaymentRequest
	var ledger *model.RevenueEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("付款申请不存在")
			}
			return apperr.Persistence(err)
		}

		if request.Status != model.PaymentStatusPending {
			return apperr.InvalidState("付款申请已处理过", request.Status)
		}

		now := time.Now()
		if err := tx.Model(&request).Updates(map[string]interface{}{
			"status":       decision,
			"processed_by": actorID,
			"processed_at": now,
			"admin_notes":  notes,
			"updated_at":   now,
		}).Error; err != nil {
			return apperr.Persistence(err)
		}

		if decision == model.PaymentStatusApproved {
			newExpiry := now.AddDate(0, 0, s.renewalDays)

			if err := tx.Model(&model.Store{}).Where("id = ?", request.StoreID).Updates(map[string]interface{}{
				"expiry_date":     newExpiry,
				"last_payment_at": now,
				"updated_at":      now,
			}).Error; err != nil {
				return apperr.Persistence(err)
			}

			// 仅因时间到期的店铺恢复 active；人工停用（locked）不自动解除
			if err := tx.Model(&model.Store{}).
				Where("id = ? AND status = ?", request.StoreID, model.StoreStatusExpired).
				Update("status", model.StoreStatusActive).Error; err != nil {
				return apperr.Persistence(err)
			}

			ledger = &model.RevenueEntry{
				StoreID:   request.StoreID,
				PaymentID: request.ID,
				Amount:    request.Amount,
				CreatedAt: now,
			}
			if err := tx.Create(ledger).Error; err != nil {
				return apperr.Persistence(err)
			}
		}

		request.Status = decision
		request.ProcessedBy = &actorID
		request.ProcessedAt = &now
		request.AdminNotes = notes

		return s.audit.recordTx(tx, actorID, model.ActionReviewPayment, "payment", strconv.Itoa(int(requestID)), auditDetails{
			"store_id": request.StoreID, "decision": decision, "amount": request.Amount,
		})
	})
	if err != nil {
		var e *apperr.Error
		if errors.As(err, &e) {
			return nil, err
		}
		return nil, apperr.Persistence(err)
	}

	// 导出必须在事务提交之后，回滚掉的流水不能流出到外部表
	if ledger != nil && s.sheetSync != nil {
		go s.sheetSync.AppendRevenue(ledger)
	}
	return &request, nil
}

type PaymentSearchQuery struct {
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
	Status   string `query:"status"`
	StoreID  uint   `query:"store_id"`
}

// Search 分页查询付款申请
func (s *PaymentService) Search(query PaymentSearchQuery) ([]model.PaymentRequest, int64, error) {
	db := s.db.Model(&model.PaymentRequest{})

	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.StoreID != 0 {
		db = db.Where("store_id = ?", query.StoreID)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, apperr.Persistence(err)
	}

	var requests []model.PaymentRequest
	offset := (query.Page - 1) * query.PageSize
	if err := db.Order("created_at DESC").Offset(offset).Limit(query.PageSize).Find(&requests).Error; err != nil {
		return nil, 0, apperr.Persistence(err)
	}
	return requests, total, nil
}

// RevenueTotal 收入流水合计，since 为零值时统计全部
func (s *PaymentService) RevenueTotal(since time.Time) (float64, error) {
	db := s.db.Model(&model.RevenueEntry{})
	if !since.IsZero() {
		db = db.Where("created_at >= ?", since)
	}

	var total float64
	if err := db.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return 0, apperr.Persistence(err)
	}
	return total, nil
}
