package dao

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	datamodel "inbox-pilot/data/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&datamodel.Connection{}, &datamodel.Email{}, &datamodel.InboxItem{}))
	return db
}

func TestEmailAddIgnoreDuplicate(t *testing.T) {
	db := newTestDB(t)
	emailDao := NewEmailDao(db)
	ctx := context.Background()

	first := &datamodel.Email{ID: 1, UserID: "u1", MessageID: "<m1@example.com>", Subject: "a"}
	inserted, err := emailDao.AddIgnoreDuplicate(ctx, first)
	require.NoError(t, err)
	assert.True(t, inserted)

	// 同 message_id 再插（甚至换用户）按已存在处理
	dup := &datamodel.Email{ID: 2, UserID: "u2", MessageID: "<m1@example.com>", Subject: "b"}
	inserted, err = emailDao.AddIgnoreDuplicate(ctx, dup)
	require.NoError(t, err)
	assert.False(t, inserted)

	stored, err := emailDao.GetByMessageID(ctx, "<m1@example.com>")
	require.NoError(t, err)
	require.NotNil(t, stored)
	// 原行不被覆盖
	assert.Equal(t, "u1", stored.UserID)
	assert.Equal(t, "a", stored.Subject)
}

func TestInboxItemAddIgnoreDuplicate(t *testing.T) {
	db := newTestDB(t)
	itemDao := NewInboxItemDao(db)
	ctx := context.Background()

	item := &datamodel.InboxItem{ID: 1, UserID: "u1", Source: datamodel.SourceEmail, SourceID: 100, Status: datamodel.ItemStatusPending}
	inserted, err := itemDao.AddIgnoreDuplicate(ctx, item)
	require.NoError(t, err)
	assert.True(t, inserted)

	dup := &datamodel.InboxItem{ID: 2, UserID: "u1", Source: datamodel.SourceEmail, SourceID: 100, Status: datamodel.ItemStatusPending}
	inserted, err = itemDao.AddIgnoreDuplicate(ctx, dup)
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestInboxItemMarkReviewedGate(t *testing.T) {
	db := newTestDB(t)
	itemDao := NewInboxItemDao(db)
	ctx := context.Background()

	item := &datamodel.InboxItem{ID: 1, UserID: "u1", Source: datamodel.SourceEmail, SourceID: 1, Status: datamodel.ItemStatusPending, NeedsReview: true}
	require.NoError(t, db.Create(item).Error)

	updated, err := itemDao.MarkReviewed(ctx, 1, datamodel.ItemStatusApproved, time.Now())
	require.NoError(t, err)
	assert.True(t, updated)

	// 第二次状态迁移拿不到行
	updated, err = itemDao.MarkReviewed(ctx, 1, datamodel.ItemStatusRejected, time.Now())
	require.NoError(t, err)
	assert.False(t, updated)

	stored, err := itemDao.GetByUserAndID(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Equal(t, datamodel.ItemStatusApproved, stored.Status)
	assert.False(t, stored.NeedsReview)
}

func TestConnectionUpsert(t *testing.T) {
	db := newTestDB(t)
	connDao := NewConnectionDao(db)
	ctx := context.Background()

	first := &datamodel.Connection{
		ID: 1, UserID: "u1", Provider: datamodel.ProviderGmail, ProviderAccountID: "a@example.com",
		ConnStatus: datamodel.ConnStatusActive, SyncStatus: datamodel.SyncStatusPending, Credentials: "blob-1",
	}
	require.NoError(t, connDao.Upsert(ctx, first))

	second := &datamodel.Connection{
		ID: 2, UserID: "u1", Provider: datamodel.ProviderGmail, ProviderAccountID: "a@example.com",
		ConnStatus: datamodel.ConnStatusActive, SyncStatus: datamodel.SyncStatusPending, Credentials: "blob-2",
	}
	require.NoError(t, connDao.Upsert(ctx, second))

	var count int64
	require.NoError(t, db.Model(&datamodel.Connection{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stored, err := connDao.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, stored)
	// 凭证被覆盖，id 保留
	assert.Equal(t, "blob-2", stored.Credentials)
}

func TestConnectionUpdateSyncStatus(t *testing.T) {
	db := newTestDB(t)
	connDao := NewConnectionDao(db)
	ctx := context.Background()

	conn := &datamodel.Connection{
		ID: 1, UserID: "u1", Provider: datamodel.ProviderGmail, ProviderAccountID: "a@example.com",
		ConnStatus: datamodel.ConnStatusActive, SyncStatus: datamodel.SyncStatusPending,
	}
	require.NoError(t, db.Create(conn).Error)

	now := time.Now()
	require.NoError(t, connDao.UpdateSyncStatus(ctx, 1, datamodel.SyncStatusCompleted, &now))

	stored, err := connDao.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, datamodel.SyncStatusCompleted, stored.SyncStatus)
	require.NotNil(t, stored.LastSync)
}

func TestGetMissingReturnsNil(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	email, err := NewEmailDao(db).Get(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, email)

	conn, err := NewConnectionDao(db).GetByUserAndID(ctx, "u1", 999)
	require.NoError(t, err)
	assert.Nil(t, conn)

	item, err := NewInboxItemDao(db).GetByUserAndID(ctx, "u1", 999)
	require.NoError(t, err)
	assert.Nil(t, item)
}
