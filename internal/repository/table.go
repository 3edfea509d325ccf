package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when an update or lookup targets a missing id
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateID is returned when inserting a record whose id already exists
	ErrDuplicateID = errors.New("duplicate record id")
)

// Record is any persisted row addressable by an opaque string id
type Record interface {
	GetID() string
}

// Table defines the persistence operations the core needs for one record type
type Table[T Record] interface {
	Insert(ctx context.Context, rec *T) error
	SelectAll(ctx context.Context) ([]T, error)
	Update(ctx context.Context, rec *T) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) error
}

type gormTable[T Record] struct {
	db    *gorm.DB
	order string
}

// NewTable returns a GORM-backed Table. order is the ORDER BY clause used by
// SelectAll so rows come back in insertion order.
func NewTable[T Record](db *gorm.DB, order string) Table[T] {
	if order == "" {
		order = "created_at asc"
	}
	return &gormTable[T]{db: db, order: order}
}

func (t *gormTable[T]) Insert(ctx context.Context, rec *T) error {
	return GetDB(ctx, t.db).Create(rec).Error
}

func (t *gormTable[T]) SelectAll(ctx context.Context) ([]T, error) {
	var rows []T
	if err := GetDB(ctx, t.db).Order(t.order).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (t *gormTable[T]) Update(ctx context.Context, rec *T) error {
	// Select("*") so zero values (active=false, empty strings) are written too
	res := GetDB(ctx, t.db).Model(rec).Select("*").Omit("created_at").Updates(rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *gormTable[T]) Delete(ctx context.Context, id string) error {
	return GetDB(ctx, t.db).Where("id = ?", id).Delete(new(T)).Error
}

func (t *gormTable[T]) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return GetDB(ctx, t.db).Where("id IN ?", ids).Delete(new(T)).Error
}
