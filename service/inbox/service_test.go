package inbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"inbox-pilot/dao"
	datamodel "inbox-pilot/data/model"
	"inbox-pilot/service/credential"
	"inbox-pilot/service/mailsource"
)

type fakeMailSource struct {
	sent    []*mailsource.OutgoingMessage
	sendErr error
}

func (f *fakeMailSource) ListUnread(ctx context.Context, creds *credential.Credentials, max int) ([]*mailsource.RawMessage, error) {
	return nil, nil
}

func (f *fakeMailSource) Send(ctx context.Context, creds *credential.Credentials, msg *mailsource.OutgoingMessage) (*mailsource.Receipt, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, msg)
	return &mailsource.Receipt{MessageID: "sent-1", ThreadID: msg.ThreadID}, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&datamodel.Connection{}, &datamodel.InboxItem{}))
	return db
}

func newTestService(t *testing.T, db *gorm.DB, mail mailsource.MailSource) *InboxService {
	t.Helper()
	return NewInboxService(
		dao.NewInboxItemDao(db),
		dao.NewConnectionDao(db),
		credential.New(credential.Config{}),
		mail,
	)
}

func seedActiveConnection(t *testing.T, db *gorm.DB, userID string) {
	t.Helper()
	blob, err := credential.EncodeBlob(&credential.Credentials{AccessToken: "token"})
	require.NoError(t, err)
	require.NoError(t, db.Create(&datamodel.Connection{
		ID:                1,
		UserID:            userID,
		Provider:          datamodel.ProviderGmail,
		ProviderAccountID: "acct@example.com",
		ConnStatus:        datamodel.ConnStatusActive,
		SyncStatus:        datamodel.SyncStatusCompleted,
		Credentials:       blob,
	}).Error)
}

func seedItem(t *testing.T, db *gorm.DB, id int64, userID, status string, draft *datamodel.DraftReply) *datamodel.InboxItem {
	t.Helper()
	item := &datamodel.InboxItem{
		ID:       id,
		UserID:   userID,
		Source:   datamodel.SourceEmail,
		SourceID: id,
		SourceData: &datamodel.SourceData{
			EmailID:   id,
			MessageID: fmt.Sprintf("<m%d@example.com>", id),
			ThreadID:  fmt.Sprintf("thread-%d", id),
			From:      "sender@example.com",
			Subject:   "Original subject",
			Suggestion: datamodel.Suggestion{
				Category:   datamodel.CategoryQuestion,
				Summary:    "Asks a question",
				Urgency:    datamodel.UrgencyMedium,
				DraftReply: draft,
			},
		},
		AISuggestionType:    datamodel.CategoryQuestion,
		AISuggestionContent: "Asks a question",
		Status:              status,
		NeedsReview:         status == datamodel.ItemStatusPending,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestApproveWithDraftReplySendsEmail(t *testing.T) {
	db := newTestDB(t)
	seedActiveConnection(t, db, "user-1")
	draft := &datamodel.DraftReply{Subject: "Re: Original subject", Body: "Here is the answer."}
	seedItem(t, db, 10, "user-1", datamodel.ItemStatusPending, draft)
	mail := &fakeMailSource{}
	svc := newTestService(t, db, mail)

	result, err := svc.Approve(context.Background(), "user-1", 10)
	require.NoError(t, err)

	assert.True(t, result.EmailSent)
	assert.Equal(t, datamodel.ItemStatusApproved, result.Status)
	require.Len(t, mail.sent, 1)
	assert.Equal(t, "sender@example.com", mail.sent[0].To)
	assert.Equal(t, "Here is the answer.", mail.sent[0].Body)
	assert.Equal(t, "thread-10", mail.sent[0].ThreadID)

	var stored datamodel.InboxItem
	require.NoError(t, db.First(&stored, 10).Error)
	assert.Equal(t, datamodel.ItemStatusApproved, stored.Status)
	assert.False(t, stored.NeedsReview)
	assert.NotNil(t, stored.ReviewedAt)
}

func TestApproveWithoutDraftReplySkipsSend(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 11, "user-1", datamodel.ItemStatusPending, nil)
	mail := &fakeMailSource{}
	svc := newTestService(t, db, mail)

	result, err := svc.Approve(context.Background(), "user-1", 11)
	require.NoError(t, err)

	assert.False(t, result.EmailSent)
	assert.Empty(t, mail.sent)
}

func TestApproveSendFailureKeepsItemPending(t *testing.T) {
	db := newTestDB(t)
	seedActiveConnection(t, db, "user-1")
	draft := &datamodel.DraftReply{Subject: "Re: x", Body: "b"}
	seedItem(t, db, 12, "user-1", datamodel.ItemStatusPending, draft)
	mail := &fakeMailSource{sendErr: errors.New("smtp timeout")}
	svc := newTestService(t, db, mail)

	_, err := svc.Approve(context.Background(), "user-1", 12)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSendFailed)

	// 发送失败状态必须停留在 pending，可修复后重试
	var stored datamodel.InboxItem
	require.NoError(t, db.First(&stored, 12).Error)
	assert.Equal(t, datamodel.ItemStatusPending, stored.Status)
}

func TestApproveWithoutConnection(t *testing.T) {
	db := newTestDB(t)
	draft := &datamodel.DraftReply{Subject: "Re: x", Body: "b"}
	seedItem(t, db, 13, "user-1", datamodel.ItemStatusPending, draft)
	svc := newTestService(t, db, &fakeMailSource{})

	_, err := svc.Approve(context.Background(), "user-1", 13)
	assert.ErrorIs(t, err, ErrConnectionMissing)
}

func TestApproveAlreadyProcessed(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 14, "user-1", datamodel.ItemStatusApproved, nil)
	svc := newTestService(t, db, &fakeMailSource{})

	_, err := svc.Approve(context.Background(), "user-1", 14)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestApproveWrongUser(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 15, "user-1", datamodel.ItemStatusPending, nil)
	svc := newTestService(t, db, &fakeMailSource{})

	// 归属校验失败与不存在同样返回 not found，不泄露他人条目
	_, err := svc.Approve(context.Background(), "user-2", 15)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestApproveConcurrentSecondLoses(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 16, "user-1", datamodel.ItemStatusPending, nil)
	svc := newTestService(t, db, &fakeMailSource{})

	_, err := svc.Approve(context.Background(), "user-1", 16)
	require.NoError(t, err)

	// 第二次审批撞上终态
	_, err = svc.Approve(context.Background(), "user-1", 16)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestReject(t *testing.T) {
	db := newTestDB(t)
	draft := &datamodel.DraftReply{Subject: "Re: x", Body: "b"}
	seedItem(t, db, 17, "user-1", datamodel.ItemStatusPending, draft)
	mail := &fakeMailSource{}
	svc := newTestService(t, db, mail)

	result, err := svc.Reject(context.Background(), "user-1", 17)
	require.NoError(t, err)

	assert.Equal(t, datamodel.ItemStatusRejected, result.Status)
	// 驳回不执行任何外部动作
	assert.Empty(t, mail.sent)

	var stored datamodel.InboxItem
	require.NoError(t, db.First(&stored, 17).Error)
	assert.Equal(t, datamodel.ItemStatusRejected, stored.Status)
}

func TestListFiltersByStatus(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, 20, "user-1", datamodel.ItemStatusPending, nil)
	item := seedItem(t, db, 21, "user-1", datamodel.ItemStatusPending, nil)
	now := time.Now()
	require.NoError(t, db.Model(item).Updates(map[string]any{
		"status": datamodel.ItemStatusApproved, "reviewed_at": now,
	}).Error)
	seedItem(t, db, 22, "user-2", datamodel.ItemStatusPending, nil)
	svc := newTestService(t, db, &fakeMailSource{})

	pending, err := svc.List(context.Background(), "user-1", datamodel.ItemStatusPending, 50)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(20), pending[0].ID)

	all, err := svc.List(context.Background(), "user-1", "", 50)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, &fakeMailSource{})

	_, err := svc.Get(context.Background(), "user-1", 999)
	assert.ErrorIs(t, err, ErrItemNotFound)
}
