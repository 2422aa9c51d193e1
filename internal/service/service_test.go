package service

import (
	"testing"
	"time"

	"store-subscription-system/internal/database"
	"store-subscription-system/internal/model"

	"gorm.io/gorm"
)

type testEnv struct {
	db         *gorm.DB
	audit      *AuditService
	keyPool    *KeyPoolService
	stores     *StoreService
	activation *ActivationService
	payments   *PaymentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := database.OpenTest()
	t.Cleanup(func() { database.CloseTest(db) })

	audit := NewAuditService(db)
	keyPool := NewKeyPoolService(db, audit)
	stores := NewStoreService(db, keyPool, audit)
	activation := NewActivationService(db, keyPool, audit)
	payments := NewPaymentService(db, audit, 30, nil)

	return &testEnv{
		db:         db,
		audit:      audit,
		keyPool:    keyPool,
		stores:     stores,
		activation: activation,
		payments:   payments,
	}
}

// 创建一个已审批通过的测试店铺
func (e *testEnv) approvedStore(t *testing.T, username string) *model.Store {
	t.Helper()

	store, err := e.stores.Register(RegisterInput{
		ShopName:    "测试店铺-" + username,
		ShopLink:    "https://shop.example.com/" + username,
		Contact:     ContactInfo{Email: username + "@example.com"},
		PackageType: model.PackageStandard,
		Username:    username,
		Password:    "password123",
	})
	if err != nil {
		t.Fatalf("register store: %v", err)
	}

	store, err = e.stores.Approve(store.ID, 1)
	if err != nil {
		t.Fatalf("approve store: %v", err)
	}
	return store
}

// 创建一个可用序列号
func (e *testEnv) availableKey(t *testing.T, code string, days int, packageType string) *model.SerialKey {
	t.Helper()

	key, err := e.keyPool.Create(CreateKeyInput{
		Code:         code,
		DurationDays: days,
		PackageType:  packageType,
	}, 1)
	if err != nil {
		t.Fatalf("create key: %v", err)
	}
	return key
}

// 到期时间允许的偏差
func closeTo(a, b time.Time, d time.Duration) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= d
}
