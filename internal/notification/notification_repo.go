package notification

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=notification_repo.go -destination=mock/notification_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	FindForStaff(ctx context.Context, staffID string, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, staffID string, id string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *repository) FindForStaff(ctx context.Context, staffID string, unreadOnly bool) ([]Notification, error) {
	var ns []Notification
	db := r.db.WithContext(ctx).
		Where("staff_id = ? OR staff_id IS NULL", staffID).
		Order("created_at DESC")
	if unreadOnly {
		db = db.Where("read_at IS NULL")
	}
	err := db.Find(&ns).Error
	return ns, err
}

func (r *repository) MarkRead(ctx context.Context, staffID string, id string) error {
	return r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ? AND (staff_id = ? OR staff_id IS NULL)", id, staffID).
		Update("read_at", gorm.Expr("now()")).Error
}
