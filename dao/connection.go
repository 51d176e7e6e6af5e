package dao

import (
	"context"
	"errors"
	"time"

	datamodel "inbox-pilot/data/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConnectionDao 邮箱连接 DAO
type ConnectionDao struct {
	db *gorm.DB
}

// NewConnectionDao 创建 ConnectionDao
func NewConnectionDao(db *gorm.DB) *ConnectionDao {
	return &ConnectionDao{db: db}
}

// GetDB 获取数据库连接
func (d *ConnectionDao) GetDB() *gorm.DB {
	return d.db
}

// Upsert 按 (user_id, provider, provider_account_id) 唯一键插入或更新连接。
// 重连同一账号时覆盖凭证与状态，保留原 id。
func (d *ConnectionDao) Upsert(ctx context.Context, conn *datamodel.Connection) error {
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "provider"}, {Name: "provider_account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"conn_status", "sync_status", "credentials", "metadata", "updated_at",
		}),
	}).Create(conn).Error
}

// Get 按主键查询
func (d *ConnectionDao) Get(ctx context.Context, id int64) (*datamodel.Connection, error) {
	var conn datamodel.Connection
	err := d.db.WithContext(ctx).Where("id = ?", id).Take(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conn, nil
}

// GetByUserAndID 按主键查询并校验归属
func (d *ConnectionDao) GetByUserAndID(ctx context.Context, userID string, id int64) (*datamodel.Connection, error) {
	var conn datamodel.Connection
	err := d.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Take(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conn, nil
}

// GetByUserProviderAccount 按唯一键查询连接
func (d *ConnectionDao) GetByUserProviderAccount(ctx context.Context, userID, provider, providerAccountID string) (*datamodel.Connection, error) {
	var conn datamodel.Connection
	err := d.db.WithContext(ctx).
		Where("user_id = ? AND provider = ? AND provider_account_id = ?", userID, provider, providerAccountID).
		Take(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conn, nil
}

// GetActiveByUserProvider 查询用户在指定 provider 下的 active 连接
func (d *ConnectionDao) GetActiveByUserProvider(ctx context.Context, userID, provider string) (*datamodel.Connection, error) {
	var conn datamodel.Connection
	err := d.db.WithContext(ctx).
		Where("user_id = ? AND provider = ? AND conn_status = ?", userID, provider, datamodel.ConnStatusActive).
		Take(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conn, nil
}

// ListByUser 查询用户的全部连接
func (d *ConnectionDao) ListByUser(ctx context.Context, userID string) ([]*datamodel.Connection, error) {
	var conns []*datamodel.Connection
	err := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&conns).Error
	return conns, err
}

// ListActiveByProvider 查询指定 provider 下所有 active 连接，供同步任务遍历
func (d *ConnectionDao) ListActiveByProvider(ctx context.Context, provider string) ([]*datamodel.Connection, error) {
	var conns []*datamodel.Connection
	err := d.db.WithContext(ctx).
		Where("provider = ? AND conn_status = ?", provider, datamodel.ConnStatusActive).
		Order("id").
		Find(&conns).Error
	return conns, err
}

// UpdateSyncStatus 更新同步状态，lastSync 非空时一并写入
func (d *ConnectionDao) UpdateSyncStatus(ctx context.Context, id int64, syncStatus string, lastSync *time.Time) error {
	updates := map[string]any{"sync_status": syncStatus}
	if lastSync != nil {
		updates["last_sync"] = *lastSync
	}
	return d.db.WithContext(ctx).Model(&datamodel.Connection{}).Where("id = ?", id).Updates(updates).Error
}

// UpdateCredentials 持久化刷新后的凭证块
func (d *ConnectionDao) UpdateCredentials(ctx context.Context, id int64, credentials string) error {
	return d.db.WithContext(ctx).Model(&datamodel.Connection{}).
		Where("id = ?", id).
		Update("credentials", credentials).Error
}

// UpdateConnStatus 更新连接状态（断开时置 inactive）
func (d *ConnectionDao) UpdateConnStatus(ctx context.Context, id int64, connStatus string) error {
	return d.db.WithContext(ctx).Model(&datamodel.Connection{}).
		Where("id = ?", id).
		Update("conn_status", connStatus).Error
}

// UpdateMaxEmailsPerSync 更新单次同步拉取上限
func (d *ConnectionDao) UpdateMaxEmailsPerSync(ctx context.Context, id int64, maxEmails int) (bool, error) {
	tx := d.db.WithContext(ctx).Model(&datamodel.Connection{}).
		Where("id = ?", id).
		Update("max_emails_per_sync", maxEmails)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
