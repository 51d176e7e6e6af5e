package dao

import (
	"context"
	"errors"

	datamodel "inbox-pilot/data/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EmailDao 邮件 DAO
type EmailDao struct {
	db *gorm.DB
}

// NewEmailDao 创建 EmailDao
func NewEmailDao(db *gorm.DB) *EmailDao {
	return &EmailDao{db: db}
}

// GetDB 获取数据库连接
func (d *EmailDao) GetDB() *gorm.DB {
	return d.db
}

// AddIgnoreDuplicate 插入邮件，message_id 冲突时静默跳过。
// 去重判断与插入必须是同一个原子操作，依赖 uk_message_id 唯一约束，
// 不做先查后插。返回是否真正插入了新行。
func (d *EmailDao) AddIgnoreDuplicate(ctx context.Context, email *datamodel.Email) (inserted bool, err error) {
	tx := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}},
		DoNothing: true,
	}).Create(email)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// Get 按主键查询
func (d *EmailDao) Get(ctx context.Context, id int64) (*datamodel.Email, error) {
	var email datamodel.Email
	err := d.db.WithContext(ctx).Where("id = ?", id).Take(&email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &email, nil
}

// GetByMessageID 按全局去重键查询
func (d *EmailDao) GetByMessageID(ctx context.Context, messageID string) (*datamodel.Email, error) {
	var email datamodel.Email
	err := d.db.WithContext(ctx).Where("message_id = ?", messageID).Take(&email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &email, nil
}

// CountByUser 统计用户邮件数
func (d *EmailDao) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&datamodel.Email{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
