package dao

import (
	"context"
	"errors"
	"time"

	datamodel "inbox-pilot/data/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InboxItemDao 收件箱条目 DAO
type InboxItemDao struct {
	db *gorm.DB
}

// NewInboxItemDao 创建 InboxItemDao
func NewInboxItemDao(db *gorm.DB) *InboxItemDao {
	return &InboxItemDao{db: db}
}

// GetDB 获取数据库连接
func (d *InboxItemDao) GetDB() *gorm.DB {
	return d.db
}

// AddIgnoreDuplicate 插入条目，(source, source_id) 冲突时静默跳过，
// 保证每封邮件至多派生一条。返回是否真正插入了新行。
func (d *InboxItemDao) AddIgnoreDuplicate(ctx context.Context, item *datamodel.InboxItem) (inserted bool, err error) {
	tx := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source"}, {Name: "source_id"}},
		DoNothing: true,
	}).Create(item)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// GetByUserAndID 按主键查询并校验归属
func (d *InboxItemDao) GetByUserAndID(ctx context.Context, userID string, id int64) (*datamodel.InboxItem, error) {
	var item datamodel.InboxItem
	err := d.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Take(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListByUser 查询用户条目，status 非空时过滤状态，按优先级与时间倒序
func (d *InboxItemDao) ListByUser(ctx context.Context, userID, status string, limit int) ([]*datamodel.InboxItem, error) {
	query := d.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var items []*datamodel.InboxItem
	err := query.Order("priority DESC, created_at DESC").Find(&items).Error
	return items, err
}

// MarkReviewed 把 pending 条目迁移到终态。WHERE status='pending' 使
// 状态检查与写入成为单条原子更新：并发的第二次审批拿到 0 行受影响，
// 由调用方视为已处理。
func (d *InboxItemDao) MarkReviewed(ctx context.Context, id int64, status string, reviewedAt time.Time) (updated bool, err error) {
	tx := d.db.WithContext(ctx).Model(&datamodel.InboxItem{}).
		Where("id = ? AND status = ?", id, datamodel.ItemStatusPending).
		Updates(map[string]any{
			"status":       status,
			"needs_review": false,
			"reviewed_at":  reviewedAt,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
