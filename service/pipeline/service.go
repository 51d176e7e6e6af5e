package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Plaud-AI/plaud-go-scaffold/pkg/logger"
	"github.com/Plaud-AI/plaud-go-scaffold/pkg/rdb"
	"github.com/Plaud-AI/plaud-go-scaffold/pkg/snowflake"
	"github.com/Plaud-AI/plaud-go-scaffold/pkg/svc"

	"inbox-pilot/dao"
	"inbox-pilot/data/dto"
	datamodel "inbox-pilot/data/model"
	"inbox-pilot/service/credential"
	"inbox-pilot/service/mailsource"
)

// syncLockKey 同步运行互斥锁的 redis key
const syncLockKey = "inbox-pilot:sync:lock"

// DefaultSyncLockTTL 锁默认过期时间，防止运行中进程崩溃后锁悬挂
const DefaultSyncLockTTL = 10 * time.Minute

// ErrSyncInProgress 已有同步在运行
var ErrSyncInProgress = errors.New("sync already in progress")

// SyncService 同步管道：遍历 active 连接，拉取未读邮件，
// 去重入库后经分诊与准备两级模型处理，可行动邮件派生收件箱条目。
type SyncService struct {
	svc.BaseService

	connDao  *dao.ConnectionDao
	emailDao *dao.EmailDao
	itemDao  *dao.InboxItemDao

	creds    *credential.Service
	mail     mailsource.MailSource
	triage   *Triage
	preparer *Preparer

	redisClient *rdb.Client
	idGenerator *snowflake.Generator
	lockTTL     time.Duration
}

// NewSyncService 创建同步服务。redisClient 为空时不做跨实例互斥。
func NewSyncService(
	connDao *dao.ConnectionDao,
	emailDao *dao.EmailDao,
	itemDao *dao.InboxItemDao,
	creds *credential.Service,
	mail mailsource.MailSource,
	triage *Triage,
	preparer *Preparer,
	redisClient *rdb.Client,
	idGenerator *snowflake.Generator,
	lockTTL time.Duration,
) *SyncService {
	if lockTTL <= 0 {
		lockTTL = DefaultSyncLockTTL
	}
	return &SyncService{
		connDao:     connDao,
		emailDao:    emailDao,
		itemDao:     itemDao,
		creds:       creds,
		mail:        mail,
		triage:      triage,
		preparer:    preparer,
		redisClient: redisClient,
		idGenerator: idGenerator,
		lockTTL:     lockTTL,
	}
}

// RunSync 执行一轮同步。同一时刻只允许一轮在跑，重入返回 ErrSyncInProgress。
// 单个连接或单封邮件失败只记录，不中断整轮。
func (s *SyncService) RunSync(ctx context.Context) (*dto.SyncReport, error) {
	if s.redisClient != nil {
		locked, err := s.redisClient.TryLock(ctx, syncLockKey, s.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire sync lock: %w", err)
		}
		if !locked {
			return nil, ErrSyncInProgress
		}
		defer func() {
			if err := s.redisClient.UnLock(ctx, syncLockKey); err != nil {
				logger.WarnfCtx(ctx, "release sync lock failed: %v", err)
			}
		}()
	}

	conns, err := s.connDao.ListActiveByProvider(ctx, datamodel.ProviderGmail)
	if err != nil {
		return nil, fmt.Errorf("list active connections: %w", err)
	}

	report := &dto.SyncReport{}
	for _, conn := range conns {
		report.Processed++
		if err := s.syncConnection(ctx, conn, report); err != nil {
			logger.ErrorfCtx(ctx, "sync connection %d failed: %v", conn.ID, err)
			report.Errors = append(report.Errors, fmt.Sprintf("connection %d: %v", conn.ID, err))
			if statusErr := s.connDao.UpdateSyncStatus(ctx, conn.ID, datamodel.SyncStatusFailed, nil); statusErr != nil {
				logger.ErrorfCtx(ctx, "mark connection %d sync failed: %v", conn.ID, statusErr)
			}
		}
	}

	logger.InfofCtx(ctx, "sync run finished: connections=%d fetched=%d actionable=%d created=%d errors=%d",
		report.Processed, report.EmailsFetched, report.Actionable, report.InboxItemsCreated, len(report.Errors))
	return report, nil
}

// syncConnection 同步单个连接：刷新凭证、拉取未读邮件、逐封处理。
// 单封邮件的失败记入 report 后继续处理下一封。
func (s *SyncService) syncConnection(ctx context.Context, conn *datamodel.Connection, report *dto.SyncReport) error {
	if err := s.connDao.UpdateSyncStatus(ctx, conn.ID, datamodel.SyncStatusSyncing, nil); err != nil {
		return fmt.Errorf("mark syncing: %w", err)
	}

	creds, err := s.freshCredentials(ctx, conn)
	if err != nil {
		return err
	}

	messages, err := s.mail.ListUnread(ctx, creds, conn.EffectiveMaxEmails())
	if err != nil {
		return fmt.Errorf("list unread: %w", err)
	}

	for _, raw := range messages {
		if err := s.processMessage(ctx, conn.UserID, raw, report); err != nil {
			logger.WarnfCtx(ctx, "process message %s failed: %v", raw.ID, err)
			report.Errors = append(report.Errors, fmt.Sprintf("message %s: %v", raw.ID, err))
		}
	}

	now := time.Now()
	if err := s.connDao.UpdateSyncStatus(ctx, conn.ID, datamodel.SyncStatusCompleted, &now); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

// freshCredentials 解码连接凭证，过期则刷新并把新凭证写回连接
func (s *SyncService) freshCredentials(ctx context.Context, conn *datamodel.Connection) (*credential.Credentials, error) {
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
		return nil, fmt.Errorf("persist refreshed credentials: %w", err)
	}
	return refreshed, nil
}

// processMessage 单封邮件的完整流程：规整、去重入库、分诊、准备、建条目。
// message_id 已存在时整封跳过，保证重复运行零新增。
func (s *SyncService) processMessage(ctx context.Context, userID string, raw *mailsource.RawMessage, report *dto.SyncReport) error {
	email := Normalize(raw, userID)
	email.ID = s.idGenerator.NextID()

	inserted, err := s.emailDao.AddIgnoreDuplicate(ctx, email)
	if err != nil {
		return fmt.Errorf("store email: %w", err)
	}
	if !inserted {
		return nil
	}
	report.EmailsFetched++

	triage := s.triage.Classify(ctx, email)
	if !triage.IsActionable {
		logger.InfofCtx(ctx, "message %s not actionable: %s", email.MessageID, triage.Reasoning)
		return nil
	}
	report.Actionable++

	suggestion, err := s.preparer.Prepare(ctx, email)
	if err != nil {
		return err
	}

	item := BuildInboxItem(email, suggestion)
	item.ID = s.idGenerator.NextID()
	created, err := s.itemDao.AddIgnoreDuplicate(ctx, item)
	if err != nil {
		return fmt.Errorf("store inbox item: %w", err)
	}
	if created {
		report.InboxItemsCreated++
	}
	return nil
}
