package service

import (
	"testing"

	"store-subscription-system/internal/apperr"
	"store-subscription-system/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateKeyDuplicateCode(t *testing.T) {
	env := newTestEnv(t)

	env.availableKey(t, "DUP-CODE", 30, "")

	_, err := env.keyPool.Create(CreateKeyInput{Code: "DUP-CODE", DurationDays: 7}, 1)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	// 大小写敏感：不同大小写不算重复
	_, err = env.keyPool.Create(CreateKeyInput{Code: "dup-code", DurationDays: 7}, 1)
	assert.NoError(t, err)
}

// 墓碑：删除后的序列号码依然占用，不能重新创建
func TestCreateKeyTombstonedCodeBlocked(t *testing.T) {
	env := newTestEnv(t)

	key := env.availableKey(t, "TOMB-CODE", 30, "")
	require.NoError(t, env.keyPool.Delete(key.ID, 1))

	_, err := env.keyPool.Create(CreateKeyInput{Code: "TOMB-CODE", DurationDays: 7}, 1)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestCreateKeyInvalidDuration(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.keyPool.Create(CreateKeyInput{Code: "BAD-DAYS", DurationDays: 0}, 1)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestCreateKeyGeneratedCode(t *testing.T) {
	env := newTestEnv(t)

	key, err := env.keyPool.Create(CreateKeyInput{DurationDays: 30}, 1)
	require.NoError(t, err)
	assert.Regexp(t, `^SK-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}$`, key.Code)
}

func TestListAvailableTierFilter(t *testing.T) {
	env := newTestEnv(t)

	env.availableKey(t, "ANY-TIER", 30, "")
	env.availableKey(t, "STD-TIER", 30, model.PackageStandard)
	env.availableKey(t, "PRM-TIER", 30, model.PackagePremium)

	keys, err := env.keyPool.ListAvailable(model.PackageStandard)
	require.NoError(t, err)

	codes := make([]string, 0, len(keys))
	for _, k := range keys {
		codes = append(codes, k.Code)
	}
	assert.ElementsMatch(t, []string{"ANY-TIER", "STD-TIER"}, codes)
}

// 释放幂等：对可用序列号重复释放不是错误，也不改动任何字段
func TestReleaseIdempotent(t *testing.T) {
	env := newTestEnv(t)

	store := env.approvedStore(t, "rel_owner")
	key := env.availableKey(t, "REL-KEY", 30, "")

	_, err := env.activation.Activate(store.ID, key.ID, 1)
	require.NoError(t, err)

	require.NoError(t, env.keyPool.Release(key.ID, 1))

	var after model.SerialKey
	require.NoError(t, env.db.First(&after, key.ID).Error)
	assert.Equal(t, model.KeyStatusAvailable, after.Status)
	assert.Nil(t, after.StoreID)
	assert.Nil(t, after.AssignedAt)

	// 再次释放是空操作
	require.NoError(t, env.keyPool.Release(key.ID, 1))

	var again model.SerialKey
	require.NoError(t, env.db.First(&again, key.ID).Error)
	assert.Equal(t, after.Code, again.Code)
	assert.True(t, after.CreatedAt.Equal(again.CreatedAt))
}

func TestDeleteAssignedKeyRefused(t *testing.T) {
	env := newTestEnv(t)

	store := env.approvedStore(t, "del_owner")
	key := env.availableKey(t, "DEL-KEY", 30, "")

	_, err := env.activation.Activate(store.ID, key.ID, 1)
	require.NoError(t, err)

	err = env.keyPool.Delete(key.ID, 1)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}
