package model

import "time"

// DailyRevenue 每日收入统计
type DailyRevenue struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// DashboardStatistics 运营概览统计
type DashboardStatistics struct {
	TotalStores     int64            `json:"total_stores"`
	StoresByStatus  map[string]int64 `json:"stores_by_status"`
	OnlineStores    int64            `json:"online_stores"`
	OfflineStores   int64            `json:"offline_stores"`
	ExpiringStores  int64            `json:"expiring_stores"` // 7天内到期
	TotalKeys       int64            `json:"total_keys"`
	AvailableKeys   int64            `json:"available_keys"`
	AssignedKeys    int64            `json:"assigned_keys"`
	PendingPayments int64            `json:"pending_payments"`
	TotalRevenue    float64          `json:"total_revenue"`
	MonthlyRevenue  float64          `json:"monthly_revenue"` // 近30天
	DailyRevenue    []DailyRevenue   `json:"daily_revenue"`
	GeneratedAt     time.Time        `json:"generated_at"`
}
