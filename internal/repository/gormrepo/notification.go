package gormrepo

import (
	"context"

	"github.com/zemenay/techpulse-api/internal/model"
	"github.com/zemenay/techpulse-api/internal/repository"
	"gorm.io/gorm"
)

// NotificationRepo 通知仓储
type NotificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepo 创建通知仓储
func NewNotificationRepo(db *gorm.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	return translate(r.db.WithContext(ctx).Omit("Actor").Create(n).Error, "create notification")
}

// List 用户通知，按时间倒序
func (r *NotificationRepo) List(ctx context.Context, userID uint, offset, limit int) ([]model.Notification, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count notifications")
	}
	list := make([]model.Notification, 0, limit)
	if err := query.Preload("Actor").Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, 0, translate(err, "list notifications")
	}
	return list, total, nil
}

func (r *NotificationRepo) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, translate(err, "count unread notifications")
	}
	return count, nil
}

func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint) error {
	db := r.db.WithContext(ctx)

	var count int64
	if err := db.Model(&model.Notification{}).Where("id = ? AND user_id = ?", id, userID).Count(&count).Error; err != nil {
		return translate(err, "check notification")
	}
	if count == 0 {
		return repository.ErrNotFound
	}
	err := db.Model(&model.Notification{}).Where("id = ? AND user_id = ?", id, userID).Update("is_read", true).Error
	return translate(err, "mark notification read")
}
