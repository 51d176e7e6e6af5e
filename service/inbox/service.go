package inbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Plaud-AI/plaud-go-scaffold/pkg/logger"
	"github.com/Plaud-AI/plaud-go-scaffold/pkg/svc"

	"inbox-pilot/dao"
	"inbox-pilot/data/dto"
	datamodel "inbox-pilot/data/model"
	"inbox-pilot/service/credential"
	"inbox-pilot/service/mailsource"
)

var (
	// ErrItemNotFound 条目不存在或不属于该用户
	ErrItemNotFound = errors.New("inbox item not found")
	// ErrAlreadyProcessed 条目已不在 pending 态
	ErrAlreadyProcessed = errors.New("inbox item already processed")
	// ErrConnectionMissing 审批需要发信但用户没有 active 连接
	ErrConnectionMissing = errors.New("no active connection for user")
	// ErrSendFailed 回信发送失败，条目保持 pending 可重试
	ErrSendFailed = errors.New("send reply failed")
)

// InboxService 收件箱审批服务。
// 审批的顺序约束：先执行外部动作（发信），成功后才落终态。
// 发送失败时条目停留在 pending，用户可修复后重试；
// 绝不允许状态已是 approved 而邮件没发出去。
type InboxService struct {
	svc.BaseService

	itemDao *dao.InboxItemDao
	connDao *dao.ConnectionDao

	creds *credential.Service
	mail  mailsource.MailSource
}

// NewInboxService 创建收件箱服务
func NewInboxService(itemDao *dao.InboxItemDao, connDao *dao.ConnectionDao,
	creds *credential.Service, mail mailsource.MailSource) *InboxService {
	return &InboxService{
		itemDao: itemDao,
		connDao: connDao,
		creds:   creds,
		mail:    mail,
	}
}

// List 查询用户的收件箱条目
func (s *InboxService) List(ctx context.Context, userID, status string, limit int) ([]*dto.InboxItem, error) {
	items, err := s.itemDao.ListByUser(ctx, userID, status, limit)
	if err != nil {
		return nil, err
	}
	result := make([]*dto.InboxItem, 0, len(items))
	for _, item := range items {
		result = append(result, dto.NewInboxItemFromModel(item))
	}
	return result, nil
}

// Get 查询单个条目
func (s *InboxService) Get(ctx context.Context, userID string, itemID int64) (*dto.InboxItem, error) {
	item, err := s.itemDao.GetByUserAndID(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	return dto.NewInboxItemFromModel(item), nil
}

// Approve 审批通过。带草稿回信的条目先把回信发出去，发送成功才落 approved。
func (s *InboxService) Approve(ctx context.Context, userID string, itemID int64) (*dto.ApproveResult, error) {
	item, err := s.itemDao.GetByUserAndID(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	if !item.IsPending() {
		return nil, ErrAlreadyProcessed
	}

	emailSent := false
	if item.SourceData != nil && item.SourceData.DraftReply != nil {
		if err := s.sendDraftReply(ctx, userID, item); err != nil {
			return nil, err
		}
		emailSent = true
	}

	updated, err := s.itemDao.MarkReviewed(ctx, item.ID, datamodel.ItemStatusApproved, time.Now())
	if err != nil {
		return nil, err
	}
	if !updated {
		// 发信与状态写入之间被并发审批抢先
		if emailSent {
			logger.WarnfCtx(ctx, "item %d approved concurrently after reply was sent", item.ID)
		}
		return nil, ErrAlreadyProcessed
	}

	return &dto.ApproveResult{
		ID:        item.ID,
		Status:    datamodel.ItemStatusApproved,
		EmailSent: emailSent,
	}, nil
}

// Reject 驳回条目。无外部动作，仅状态迁移。
func (s *InboxService) Reject(ctx context.Context, userID string, itemID int64) (*dto.ApproveResult, error) {
	item, err := s.itemDao.GetByUserAndID(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	if !item.IsPending() {
		return nil, ErrAlreadyProcessed
	}

	updated, err := s.itemDao.MarkReviewed(ctx, item.ID, datamodel.ItemStatusRejected, time.Now())
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrAlreadyProcessed
	}

	return &dto.ApproveResult{
		ID:     item.ID,
		Status: datamodel.ItemStatusRejected,
	}, nil
}

// sendDraftReply 用用户的 active 连接把草稿回信发到原会话
func (s *InboxService) sendDraftReply(ctx context.Context, userID string, item *datamodel.InboxItem) error {
	conn, err := s.connDao.GetActiveByUserProvider(ctx, userID, datamodel.ProviderGmail)
	if err != nil {
		return err
	}
	if conn == nil {
		return ErrConnectionMissing
	}

	creds, err := s.freshCredentials(ctx, conn)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	draft := item.SourceData.DraftReply
	msg := &mailsource.OutgoingMessage{
		To:       item.SourceData.From,
		Subject:  draft.Subject,
		Body:     draft.Body,
		ThreadID: item.SourceData.ThreadID,
	}
	if msg.Subject == "" {
		msg.Subject = "Re: " + item.SourceData.Subject
	}

	receipt, err := s.mail.Send(ctx, creds, msg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	logger.InfofCtx(ctx, "reply sent for item %d, provider message %s", item.ID, receipt.MessageID)
	return nil
}

// freshCredentials 解码连接凭证，过期则刷新并写回
func (s *InboxService) freshCredentials(ctx context.Context, conn *datamodel.Connection) (*credential.Credentials, error) {
	creds, err := credential.DecodeBlob(conn.Credentials)
	if err != nil {
		return nil, err
	}
	if !creds.Expired() {
		return creds, nil
	}
	refreshed, err := s.creds.Refresh(ctx, creds)
	if err != nil {
		return nil, err
	}
	blob, err := credential.EncodeBlob(refreshed)
	if err != nil {
		return nil, err
	}
	if err := s.connDao.UpdateCredentials(ctx, conn.ID, blob); err != nil {
		return nil, err
	}
	return refreshed, nil
}
