// Package services is the gorm-backed data store: the list operations the
// camp store and report loader consume, and validated CRUD mutators.
package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lojf/campreg/internal/models"
)

type Registry struct {
	db      *gorm.DB
	log     *zap.Logger
	phoneCC string
}

func NewRegistry(d *gorm.DB, log *zap.Logger, phoneCC string) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	if phoneCC == "" {
		phoneCC = DefaultCountryCode
	}
	return &Registry{db: d, log: log, phoneCC: phoneCC}
}

// Reachable pings the underlying database handle.
func (r *Registry) Reachable(ctx context.Context) bool {
	sqlDB, err := r.db.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil
}

func (r *Registry) ListCamps(ctx context.Context) ([]models.Camp, error) {
	var out []models.Camp
	if err := r.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list camps: %w", err)
	}
	return out, nil
}

func (r *Registry) ListFamilies(ctx context.Context, campID uint) ([]models.Family, error) {
	var out []models.Family
	if err := r.db.WithContext(ctx).
		Where("camp_id = ?", campID).
		Order("id").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list families for camp %d: %w", campID, err)
	}
	return out, nil
}

// ListIndividuals returns every member of every family in campID.
func (r *Registry) ListIndividuals(ctx context.Context, campID uint) ([]models.Individual, error) {
	var out []models.Individual
	if err := r.db.WithContext(ctx).
		Joins("JOIN families ON families.id = individuals.family_id").
		Where("families.camp_id = ?", campID).
		Order("individuals.family_id, individuals.id").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list individuals for camp %d: %w", campID, err)
	}
	return out, nil
}

// ListDelegates returns delegates of campID, or all delegates when campID is nil.
func (r *Registry) ListDelegates(ctx context.Context, campID *uint) ([]models.Delegate, error) {
	q := r.db.WithContext(ctx).Order("id")
	if campID != nil {
		q = q.Where("camp_id = ?", *campID)
	}
	var out []models.Delegate
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list delegates: %w", err)
	}
	return out, nil
}

func (r *Registry) ListAidDeliveries(ctx context.Context) ([]models.AidDelivery, error) {
	var out []models.AidDelivery
	if err := r.db.WithContext(ctx).Order("family_id, date").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list aid deliveries: %w", err)
	}
	return out, nil
}

func (r *Registry) GetCamp(ctx context.Context, id uint) (models.Camp, error) {
	var c models.Camp
	err := r.db.WithContext(ctx).First(&c, id).Error
	return c, notFound(err)
}

// GetFamily loads a family with its members.
func (r *Registry) GetFamily(ctx context.Context, id uint) (models.Family, error) {
	var f models.Family
	err := r.db.WithContext(ctx).
		Preload("Members", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		First(&f, id).Error
	return f, notFound(err)
}

func (r *Registry) GetUser(ctx context.Context, id uint) (models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	return u, notFound(err)
}

func (r *Registry) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := r.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (r *Registry) GetIndividual(ctx context.Context, id uint) (models.Individual, error) {
	var m models.Individual
	err := r.db.WithContext(ctx).First(&m, id).Error
	return m, notFound(err)
}

func (r *Registry) GetDelegate(ctx context.Context, id uint) (models.Delegate, error) {
	var d models.Delegate
	err := r.db.WithContext(ctx).First(&d, id).Error
	return d, notFound(err)
}
