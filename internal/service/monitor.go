package service

import (
	"log"
	"strconv"
	"time"

	"store-subscription-system/internal/model"

	"gorm.io/gorm"
)

// Monitor 周期巡检：active 且过期的店铺置为 expired，
// 心跳超时的店铺下线。幂等，可与人工操作并发执行。
type Monitor struct {
	db               *gorm.DB
	audit            *AuditService
	interval         time.Duration
	heartbeatTimeout time.Duration
	stop             chan struct{}
	done             chan struct{}
}

func NewMonitor(db *gorm.DB, audit *AuditService, interval, heartbeatTimeout time.Duration) *Monitor {
	return &Monitor{
		db:               db,
		audit:            audit,
		interval:         interval,
		heartbeatTimeout: heartbeatTimeout,
		stop:             make(chan struct{}),
		done:             make(chan struct{}),
	}
}

// Start 启动后台巡检循环
func (m *Monitor) Start() {
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.Sweep(time.Now())
			case <-m.stop:
				return
			}
		}
	}()
}

// Stop 停止巡检并等待退出
func (m *Monitor) Stop() {
	close(m.stop)
	<-m.done
}

// Sweep 执行一轮巡检。到期转换只走 active -> expired，单条失败跳过不中断。
func (m *Monitor) Sweep(now time.Time) {
	m.sweepExpired(now)
	m.sweepOffline(now)
}

func (m *Monitor) sweepExpired(now time.Time) {
	var stores []model.Store
	if err := m.db.Where("status = ? AND expiry_date IS NOT NULL AND expiry_date < ?",
		model.StoreStatusActive, now).Find(&stores).Error; err != nil {
		log.Printf("到期巡检查询失败: %v", err)
		return
	}

	for _, store := range stores {
		// 条件更新：期间被人工改过状态的店铺不再处理
		result := m.db.Model(&model.Store{}).
			Where("id = ? AND status = ?", store.ID, model.StoreStatusActive).
			Updates(map[string]interface{}{
				"status":     model.StoreStatusExpired,
				"updated_at": now,
			})
		if result.Error != nil {
			log.Printf("店铺 %d 到期转换失败: %v", store.ID, result.Error)
			continue
		}
		if result.RowsAffected == 0 {
			continue
		}

		_ = m.audit.Record(model.SystemActorID, model.ActionExpireStore, "store",
			strconv.Itoa(int(store.ID)), auditDetails{
				"shop_name": store.ShopName, "expiry_date": store.ExpiryDate,
			})
	}
}

// 心跳超时只是展示层的在线标记，不是生命周期转换，不写审计
func (m *Monitor) sweepOffline(now time.Time) {
	cutoff := now.Add(-m.heartbeatTimeout)
	if err := m.db.Model(&model.Store{}).
		Where("online = ? AND (last_heartbeat IS NULL OR last_heartbeat < ?)", true, cutoff).
		Update("online", false).Error; err != nil {
		log.Printf("心跳巡检失败: %v", err)
	}
}
