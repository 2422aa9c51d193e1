package service

import (
	"sync"
	"testing"
	"time"

	"store-subscription-system/internal/apperr"
	"store-subscription-system/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 注册到激活的完整链路
func TestActivateFlow(t *testing.T) {
	env := newTestEnv(t)

	store, err := env.stores.Register(RegisterInput{
		ShopName:    "Acme",
		ShopLink:    "https://shop.example.com/acme",
		Contact:     ContactInfo{Email: "acme@example.com"},
		PackageType: model.PackageStandard,
		Username:    "acme1",
		Password:    "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StoreStatusPending, store.Status)

	store, err = env.stores.Approve(store.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, model.StoreStatusApproved, store.Status)

	key := env.availableKey(t, "AAAA-BBBB", 30, model.PackageStandard)
	assert.Equal(t, model.KeyStatusAvailable, key.Status)

	store, err = env.activation.Activate(store.ID, key.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, model.StoreStatusActive, store.Status)
	require.NotNil(t, store.CurrentKeyID)
	assert.Equal(t, key.ID, *store.CurrentKeyID)
	require.NotNil(t, store.ExpiryDate)
	assert.True(t, closeTo(*store.ExpiryDate, time.Now().AddDate(0, 0, 30), time.Minute))

	// 序列号侧同步更新
	var got model.SerialKey
	require.NoError(t, env.db.First(&got, key.ID).Error)
	assert.Equal(t, model.KeyStatusAssigned, got.Status)
	require.NotNil(t, got.StoreID)
	assert.Equal(t, store.ID, *got.StoreID)

	// 激活留下一条审计记录
	var count int64
	env.db.Model(&model.AuditLog{}).Where("action = ?", model.ActionActivateStore).Count(&count)
	assert.EqualValues(t, 1, count)
}

// 已分配的序列号不能再次激活，另一家店铺不受影响
func TestActivateAssignedKeyRejected(t *testing.T) {
	env := newTestEnv(t)

	storeA := env.approvedStore(t, "owner_a")
	storeB := env.approvedStore(t, "owner_b")
	key := env.availableKey(t, "CCCC-DDDD", 30, "")

	_, err := env.activation.Activate(storeA.ID, key.ID, 1)
	require.NoError(t, err)

	_, err = env.activation.Activate(storeB.ID, key.ID, 1)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	// 店铺B保持 approved 且没有绑定
	got, err := env.stores.Get(storeB.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StoreStatusApproved, got.Status)
	assert.Nil(t, got.CurrentKeyID)
	assert.Nil(t, got.ExpiryDate)
}

// 套餐不匹配时整个激活回滚，序列号留在可用池
func TestActivatePackageMismatchRollsBack(t *testing.T) {
	env := newTestEnv(t)

	store := env.approvedStore(t, "owner_std")
	key := env.availableKey(t, "PREM-ONLY", 30, model.PackagePremium)

	_, err := env.activation.Activate(store.ID, key.ID, 1)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	var got model.SerialKey
	require.NoError(t, env.db.First(&got, key.ID).Error)
	assert.Equal(t, model.KeyStatusAvailable, got.Status)
	assert.Nil(t, got.StoreID)

	gotStore, err := env.stores.Get(store.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StoreStatusApproved, gotStore.Status)
}

// 未审批的店铺不能激活
func TestActivatePendingStoreRejected(t *testing.T) {
	env := newTestEnv(t)

	store, err := env.stores.Register(RegisterInput{
		ShopName: "未审核店",
		ShopLink: "https://shop.example.com/p",
		Contact:  ContactInfo{Phone: "0812345678"},
		Username: "pending_owner",
		Password: "password123",
	})
	require.NoError(t, err)

	key := env.availableKey(t, "EEEE-FFFF", 7, "")

	_, err = env.activation.Activate(store.ID, key.ID, 1)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

// 并发争抢同一序列号：只有一家成功，序列号只绑定一家
func TestActivateConcurrentSingleWinner(t *testing.T) {
	env := newTestEnv(t)

	storeA := env.approvedStore(t, "race_a")
	storeB := env.approvedStore(t, "race_b")
	key := env.availableKey(t, "RACE-KEY", 30, "")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	ids := []uint{storeA.ID, storeB.ID}
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.activation.Activate(ids[i], key.ID, 1)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		}
	}
	assert.Equal(t, 1, successes)

	// 序列号只绑定一家店铺
	var boundCount int64
	env.db.Model(&model.Store{}).Where("current_key_id = ?", key.ID).Count(&boundCount)
	assert.EqualValues(t, 1, boundCount)

	var got model.SerialKey
	require.NoError(t, env.db.First(&got, key.ID).Error)
	assert.Equal(t, model.KeyStatusAssigned, got.Status)
	require.NotNil(t, got.StoreID)
}
