package connection

import (
	"context"
	"errors"
	"fmt"

	"github.com/Plaud-AI/plaud-go-scaffold/pkg/logger"
	"github.com/Plaud-AI/plaud-go-scaffold/pkg/snowflake"
	"github.com/Plaud-AI/plaud-go-scaffold/pkg/svc"

	"inbox-pilot/dao"
	"inbox-pilot/data/dto"
	datamodel "inbox-pilot/data/model"
	"inbox-pilot/service/credential"
)

var (
	// ErrConnectionNotFound 连接不存在或不属于该用户
	ErrConnectionNotFound = errors.New("connection not found")
	// ErrInvalidMaxEmails 单次拉取上限超出允许区间
	ErrInvalidMaxEmails = fmt.Errorf("max emails per sync must be between %d and %d",
		datamodel.MinEmailsPerSync, datamodel.MaxEmailsPerSync)
)

// ConnectionService 邮箱连接管理
type ConnectionService struct {
	svc.BaseService

	connDao     *dao.ConnectionDao
	creds       *credential.Service
	idGenerator *snowflake.Generator
}

// NewConnectionService 创建连接服务
func NewConnectionService(connDao *dao.ConnectionDao, creds *credential.Service,
	idGenerator *snowflake.Generator) *ConnectionService {
	return &ConnectionService{
		connDao:     connDao,
		creds:       creds,
		idGenerator: idGenerator,
	}
}

// Connect 用授权码建立连接：换取凭证、拉取账号资料，
// 按 (user_id, provider, provider_account_id) upsert。
// 同一账号重连只覆盖凭证，不产生第二条连接。
func (s *ConnectionService) Connect(ctx context.Context, userID, code string) (*dto.Connection, error) {
	creds, err := s.creds.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	profile, err := s.creds.Profile(ctx, creds)
	if err != nil {
		return nil, err
	}
	blob, err := credential.EncodeBlob(creds)
	if err != nil {
		return nil, err
	}

	conn := &datamodel.Connection{
		ID:                s.idGenerator.NextID(),
		UserID:            userID,
		Provider:          datamodel.ProviderGmail,
		ProviderAccountID: profile.Email,
		ConnStatus:        datamodel.ConnStatusActive,
		SyncStatus:        datamodel.SyncStatusPending,
		Credentials:       blob,
		MaxEmailsPerSync:  datamodel.DefaultMaxEmailsPerSync,
		Metadata: &datamodel.ConnectionMetadata{
			Email:   profile.Email,
			Name:    profile.Name,
			Picture: profile.Picture,
		},
	}
	if err := s.connDao.Upsert(ctx, conn); err != nil {
		return nil, err
	}

	// upsert 命中已有行时保留原 id，重查拿到实际落库的记录
	stored, err := s.connDao.GetByUserProviderAccount(ctx, userID, datamodel.ProviderGmail, profile.Email)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		stored = conn
	}
	logger.InfofCtx(ctx, "user %s connected %s account %s", userID, stored.Provider, profile.Email)
	return dto.NewConnectionFromModel(stored), nil
}

// Disconnect 断开连接，置 inactive。保留记录与历史邮件。
func (s *ConnectionService) Disconnect(ctx context.Context, userID string, connID int64) error {
	conn, err := s.connDao.GetByUserAndID(ctx, userID, connID)
	if err != nil {
		return err
	}
	if conn == nil {
		return ErrConnectionNotFound
	}
	return s.connDao.UpdateConnStatus(ctx, conn.ID, datamodel.ConnStatusInactive)
}

// UpdateSyncSettings 更新单次同步拉取上限，区间外直接拒绝
func (s *ConnectionService) UpdateSyncSettings(ctx context.Context, userID string, connID int64, maxEmails int) error {
	if maxEmails < datamodel.MinEmailsPerSync || maxEmails > datamodel.MaxEmailsPerSync {
		return ErrInvalidMaxEmails
	}
	conn, err := s.connDao.GetByUserAndID(ctx, userID, connID)
	if err != nil {
		return err
	}
	if conn == nil {
		return ErrConnectionNotFound
	}
	updated, err := s.connDao.UpdateMaxEmailsPerSync(ctx, conn.ID, maxEmails)
	if err != nil {
		return err
	}
	if !updated {
		return ErrConnectionNotFound
	}
	return nil
}

// ListByUser 查询用户的全部连接
func (s *ConnectionService) ListByUser(ctx context.Context, userID string) ([]*dto.Connection, error) {
	conns, err := s.connDao.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := make([]*dto.Connection, 0, len(conns))
	for _, conn := range conns {
		result = append(result, dto.NewConnectionFromModel(conn))
	}
	return result, nil
}
