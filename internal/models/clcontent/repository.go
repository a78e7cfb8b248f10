package clcontent

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("élément non trouvé")

// Repository regroupe le CRUD commun aux contenus du portfolio
type Repository[T any] struct {
	db    *gorm.DB
	order string
}

func NewRepository[T any](db *gorm.DB, order string) *Repository[T] {
	return &Repository[T]{db: db, order: order}
}

// List retourne tous les éléments, jamais nil
func (r *Repository[T]) List(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) ([]T, error) {
	items := make([]T, 0)
	if err := r.db.WithContext(ctx).Scopes(scopes...).Order(r.order).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("lecture liste: %w", err)
	}
	return items, nil
}

func (r *Repository[T]) Get(ctx context.Context, id uint) (*T, error) {
	var item T
	err := r.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lecture %d: %w", id, err)
	}
	return &item, nil
}

func (r *Repository[T]) Create(ctx context.Context, item *T) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("création: %w", err)
	}
	return nil
}

func (r *Repository[T]) Save(ctx context.Context, item *T) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return fmt.Errorf("mise à jour: %w", err)
	}
	return nil
}

func (r *Repository[T]) Delete(ctx context.Context, id uint) error {
	var item T
	result := r.db.WithContext(ctx).Delete(&item, id)
	if result.Error != nil {
		return fmt.Errorf("suppression %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
