package service

import (
	"testing"

	"store-subscription-system/internal/apperr"
	"store-subscription-system/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		input RegisterInput
		kind  apperr.Kind
	}{
		{
			name: "missing_shop_name",
			input: RegisterInput{
				ShopLink: "https://shop.example.com/x",
				Contact:  ContactInfo{Email: "x@example.com"},
				Username: "x1", Password: "p",
			},
			kind: apperr.KindValidation,
		},
		{
			name: "missing_contact",
			input: RegisterInput{
				ShopName: "X", ShopLink: "https://shop.example.com/x",
				Username: "x2", Password: "p",
			},
			kind: apperr.KindValidation,
		},
		{
			name: "missing_username",
			input: RegisterInput{
				ShopName: "X", ShopLink: "https://shop.example.com/x",
				Contact: ContactInfo{Email: "x@example.com"},
			},
			kind: apperr.KindValidation,
		},
		{
			name: "bad_package",
			input: RegisterInput{
				ShopName: "X", ShopLink: "https://shop.example.com/x",
				Contact:     ContactInfo{Email: "x@example.com"},
				PackageType: "platinum",
				Username:    "x3", Password: "p",
			},
			kind: apperr.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.stores.Register(tt.input)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, tt.kind))
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)

	env.approvedStore(t, "taken")

	_, err := env.stores.Register(RegisterInput{
		ShopName: "另一家店",
		ShopLink: "https://shop.example.com/other",
		Contact:  ContactInfo{Email: "other@example.com"},
		Username: "taken",
		Password: "password123",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestApproveRejectStateMachine(t *testing.T) {
	env := newTestEnv(t)

	store, err := env.stores.Register(RegisterInput{
		ShopName: "状态机店",
		ShopLink: "https://shop.example.com/sm",
		Contact:  ContactInfo{Line: "@smshop"},
		Username: "sm_owner",
		Password: "password123",
	})
	require.NoError(t, err)

	// 审批通过后不能再拒绝
	store, err = env.stores.Approve(store.ID, 1)
	require.NoError(t, err)

	_, err = env.stores.Reject(store.ID, 1, "too late")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))

	// 也不能重复审批
	_, err = env.stores.Approve(store.ID, 1)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))

	// 审批动作留痕
	var count int64
	env.db.Model(&model.AuditLog{}).Where("action = ?", model.ActionApproveStore).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestRejectKeepsReason(t *testing.T) {
	env := newTestEnv(t)

	store, err := env.stores.Register(RegisterInput{
		ShopName: "被拒店",
		ShopLink: "https://shop.example.com/rej",
		Contact:  ContactInfo{Phone: "0899999999"},
		Username: "rej_owner",
		Password: "password123",
	})
	require.NoError(t, err)

	store, err = env.stores.Reject(store.ID, 1, "资料不全")
	require.NoError(t, err)
	assert.Equal(t, model.StoreStatusRejected, store.Status)
	assert.Equal(t, "资料不全", store.RejectReason)
}

func TestSetStatusSameTargetRejected(t *testing.T) {
	env := newTestEnv(t)

	store := env.approvedStore(t, "st_owner")

	store, err := env.stores.SetStatus(store.ID, model.StoreStatusLocked, 1, "人工停用")
	require.NoError(t, err)
	assert.Equal(t, model.StoreStatusLocked, store.Status)

	_, err = env.stores.SetStatus(store.ID, model.StoreStatusLocked, 1, "again")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

// 没激活过的店铺不能直接置为活跃，解锁已激活的店铺可以
func TestSetStatusActiveRequiresExpiry(t *testing.T) {
	env := newTestEnv(t)

	store := env.approvedStore(t, "noexp_owner")

	_, err := env.stores.SetStatus(store.ID, model.StoreStatusActive, 1, "")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))

	// 激活后锁定再解锁：有到期时间，允许置回 active
	key := env.availableKey(t, "NOEXP-KEY", 30, "")
	_, err = env.activation.Activate(store.ID, key.ID, 1)
	require.NoError(t, err)
	_, err = env.stores.SetStatus(store.ID, model.StoreStatusLocked, 1, "违规")
	require.NoError(t, err)

	got, err := env.stores.SetStatus(store.ID, model.StoreStatusActive, 1, "解除停用")
	require.NoError(t, err)
	assert.Equal(t, model.StoreStatusActive, got.Status)
	require.NotNil(t, got.ExpiryDate)
}

func TestHeartbeat(t *testing.T) {
	env := newTestEnv(t)

	store := env.approvedStore(t, "hb_owner")
	require.NoError(t, env.stores.Heartbeat(store.ID))

	got, err := env.stores.Get(store.ID)
	require.NoError(t, err)
	assert.True(t, got.Online)
	require.NotNil(t, got.LastHeartbeat)
	// 心跳不改变生命周期状态
	assert.Equal(t, model.StoreStatusApproved, got.Status)

	err = env.stores.Heartbeat(99999)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

// 删除店铺时绑定的序列号释放回可用池
func TestDeleteReleasesBoundKey(t *testing.T) {
	env := newTestEnv(t)

	store := env.approvedStore(t, "delstore_owner")
	key := env.availableKey(t, "DELSTORE-KEY", 30, "")

	_, err := env.activation.Activate(store.ID, key.ID, 1)
	require.NoError(t, err)

	require.NoError(t, env.stores.Delete(store.ID, 1))

	_, err = env.stores.Get(store.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	var got model.SerialKey
	require.NoError(t, env.db.First(&got, key.ID).Error)
	assert.Equal(t, model.KeyStatusAvailable, got.Status)
	assert.Nil(t, got.StoreID)

	// 店主账号一并删除
	var userCount int64
	env.db.Model(&model.User{}).Where("username = ?", "delstore_owner").Count(&userCount)
	assert.EqualValues(t, 0, userCount)
}

func TestSearchStores(t *testing.T) {
	env := newTestEnv(t)

	env.approvedStore(t, "search_a")
	env.approvedStore(t, "search_b")

	stores, total, err := env.stores.Search(StoreSearchQuery{
		Page: 1, PageSize: 10, Status: model.StoreStatusApproved,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, stores, 2)

	// 关键词过滤
	stores, total, err = env.stores.Search(StoreSearchQuery{
		Page: 1, PageSize: 10, Keyword: "search_a",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, stores, 1)
	assert.Contains(t, stores[0].ShopName, "search_a")
}
