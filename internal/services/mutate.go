package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lojf/campreg/internal/models"
	"github.com/lojf/campreg/internal/roles"
)

// ---------- camps ----------

func (r *Registry) CreateCamp(ctx context.Context, c *models.Camp) error {
	if err := r.cleanCamp(c); err != nil {
		return err
	}
	c.ID = 0
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return r.failed("create camp", err)
	}
	return nil
}

func (r *Registry) UpdateCamp(ctx context.Context, c *models.Camp) error {
	if err := r.cleanCamp(c); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.Camp
		if err := tx.First(&cur, c.ID).Error; err != nil {
			return notFound(err)
		}
		c.CreatedAt = cur.CreatedAt
		if err := tx.Save(c).Error; err != nil {
			return r.failed("update camp", err)
		}
		return nil
	})
}

// DeleteCamp refuses to drop a camp that still has families.
func (r *Registry) DeleteCamp(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Family{}).Where("camp_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return invalid("camp_id", fmt.Sprintf("camp still has %d families", n))
		}
		res := tx.Delete(&models.Camp{}, id)
		if res.Error != nil {
			return r.failed("delete camp", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *Registry) cleanCamp(c *models.Camp) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return invalid("name", "camp name is required")
	}
	phone, err := normOptional("manager_phone", c.ManagerPhone, r.phoneCC)
	if err != nil {
		return err
	}
	c.ManagerPhone = phone
	c.ManagerNID = strings.TrimSpace(c.ManagerNID)
	return nil
}

// ---------- families ----------

func (r *Registry) CreateFamily(ctx context.Context, f *models.Family) error {
	f.ID = 0
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.cleanFamily(tx, f); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(f).Error; err != nil {
			return r.failed("create family", err)
		}
		return nil
	})
}

func (r *Registry) UpdateFamily(ctx context.Context, f *models.Family) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.Family
		if err := tx.First(&cur, f.ID).Error; err != nil {
			return notFound(err)
		}
		if err := r.cleanFamily(tx, f); err != nil {
			return err
		}
		f.CreatedAt = cur.CreatedAt
		if err := tx.Omit(clause.Associations).Save(f).Error; err != nil {
			return r.failed("update family", err)
		}
		return nil
	})
}

// SetFamilyDeparted flips the soft departure status.
func (r *Registry) SetFamilyDeparted(ctx context.Context, id uint, departed bool) error {
	res := r.db.WithContext(ctx).Model(&models.Family{}).Where("id = ?", id).Update("is_departed", departed)
	if res.Error != nil {
		return r.failed("set family departed", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteFamily removes the family together with its members and aid history.
func (r *Registry) DeleteFamily(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("family_id = ?", id).Delete(&models.Individual{}).Error; err != nil {
			return r.failed("delete family members", err)
		}
		if err := tx.Where("family_id = ?", id).Delete(&models.AidDelivery{}).Error; err != nil {
			return r.failed("delete family aid", err)
		}
		res := tx.Delete(&models.Family{}, id)
		if res.Error != nil {
			return r.failed("delete family", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *Registry) cleanFamily(tx *gorm.DB, f *models.Family) error {
	if f.CampID == 0 {
		return invalid("camp_id", "camp is required")
	}
	if err := exists(tx, &models.Camp{}, f.CampID); err != nil {
		return invalid("camp_id", "camp does not exist")
	}
	f.FamilyNumber = strings.TrimSpace(f.FamilyNumber)
	if f.FamilyNumber != "" {
		var n int64
		if err := tx.Model(&models.Family{}).
			Where("camp_id = ? AND family_number = ? AND id <> ?", f.CampID, f.FamilyNumber, f.ID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return invalid("family_number", "family number "+f.FamilyNumber+" is already used in this camp")
		}
	}
	var err error
	if f.Contact, err = normOptional("contact", f.Contact, r.phoneCC); err != nil {
		return err
	}
	if f.AlternativeMobile, err = normOptional("alternative_mobile", f.AlternativeMobile, r.phoneCC); err != nil {
		return err
	}
	f.Members = nil
	return nil
}

// ---------- individuals ----------

func (r *Registry) CreateIndividual(ctx context.Context, m *models.Individual) error {
	m.ID = 0
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := cleanIndividual(tx, m); err != nil {
			return err
		}
		if err := tx.Create(m).Error; err != nil {
			return r.failed("create individual", err)
		}
		return nil
	})
}

func (r *Registry) UpdateIndividual(ctx context.Context, m *models.Individual) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.Individual
		if err := tx.First(&cur, m.ID).Error; err != nil {
			return notFound(err)
		}
		if err := cleanIndividual(tx, m); err != nil {
			return err
		}
		m.CreatedAt = cur.CreatedAt
		if err := tx.Save(m).Error; err != nil {
			return r.failed("update individual", err)
		}
		return nil
	})
}

func (r *Registry) DeleteIndividual(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Individual{}, id)
	if res.Error != nil {
		return r.failed("delete individual", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// cleanIndividual stores the canonical role code; unknown roles never reach
// the table through this path.
func cleanIndividual(tx *gorm.DB, m *models.Individual) error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return invalid("name", "name is required")
	}
	if m.FamilyID == 0 {
		return invalid("family_id", "family is required")
	}
	if err := exists(tx, &models.Family{}, m.FamilyID); err != nil {
		return invalid("family_id", "family does not exist")
	}
	role, err := roles.Parse(m.Role)
	if err != nil {
		return invalid("role", "unknown role: "+m.Role)
	}
	m.Role = string(role)
	m.RoleDescription = strings.TrimSpace(m.RoleDescription)
	if role != roles.Other {
		m.RoleDescription = ""
	}
	m.NID = strings.TrimSpace(m.NID)
	m.DOB = strings.TrimSpace(m.DOB)
	return nil
}

// ---------- delegates ----------

func (r *Registry) CreateDelegate(ctx context.Context, d *models.Delegate) error {
	d.ID = 0
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.cleanDelegate(tx, d); err != nil {
			return err
		}
		if err := tx.Create(d).Error; err != nil {
			return r.failed("create delegate", err)
		}
		return nil
	})
}

func (r *Registry) UpdateDelegate(ctx context.Context, d *models.Delegate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.Delegate
		if err := tx.First(&cur, d.ID).Error; err != nil {
			return notFound(err)
		}
		if err := r.cleanDelegate(tx, d); err != nil {
			return err
		}
		d.CreatedAt = cur.CreatedAt
		if err := tx.Save(d).Error; err != nil {
			return r.failed("update delegate", err)
		}
		return nil
	})
}

func (r *Registry) DeleteDelegate(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Delegate{}, id)
	if res.Error != nil {
		return r.failed("delete delegate", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MigrateDelegates assigns every delegate without a camp to campID and
// returns how many rows moved.
func (r *Registry) MigrateDelegates(ctx context.Context, campID uint) (int64, error) {
	if err := exists(r.db.WithContext(ctx), &models.Camp{}, campID); err != nil {
		return 0, invalid("camp_id", "camp does not exist")
	}
	res := r.db.WithContext(ctx).Model(&models.Delegate{}).
		Where("camp_id IS NULL").
		Update("camp_id", campID)
	if res.Error != nil {
		return 0, r.failed("migrate delegates", res.Error)
	}
	r.log.Info("delegates migrated", zap.Uint("camp_id", campID), zap.Int64("count", res.RowsAffected))
	return res.RowsAffected, nil
}

func (r *Registry) cleanDelegate(tx *gorm.DB, d *models.Delegate) error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return invalid("name", "delegate name is required")
	}
	if d.CampID != nil {
		if err := exists(tx, &models.Camp{}, *d.CampID); err != nil {
			return invalid("camp_id", "camp does not exist")
		}
	}
	phone, err := normOptional("phone", d.Phone, r.phoneCC)
	if err != nil {
		return err
	}
	d.Phone = phone
	return nil
}

// ---------- users ----------

func (r *Registry) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = 0
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := cleanUser(tx, u); err != nil {
			return err
		}
		if err := tx.Create(u).Error; err != nil {
			return r.failed("create user", err)
		}
		return nil
	})
}

func (r *Registry) UpdateUser(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.User
		if err := tx.First(&cur, u.ID).Error; err != nil {
			return notFound(err)
		}
		if err := cleanUser(tx, u); err != nil {
			return err
		}
		u.CreatedAt = cur.CreatedAt
		if err := tx.Save(u).Error; err != nil {
			return r.failed("update user", err)
		}
		return nil
	})
}

func (r *Registry) DeleteUser(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return r.failed("delete user", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// cleanUser enforces the role/camp pairing: single-camp roles carry camp_id,
// supervisors carry assigned_camps, admins carry neither.
func cleanUser(tx *gorm.DB, u *models.User) error {
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" {
		return invalid("username", "username is required")
	}
	var n int64
	if err := tx.Model(&models.User{}).Where("username = ? AND id <> ?", u.Username, u.ID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return invalid("username", "username "+u.Username+" is taken")
	}

	switch u.Role {
	case models.RoleManager, models.RoleUser:
		if u.CampID == nil {
			return invalid("camp_id", "a camp is required for role "+u.Role)
		}
		if err := exists(tx, &models.Camp{}, *u.CampID); err != nil {
			return invalid("camp_id", "camp does not exist")
		}
		u.AssignedCamps = nil
	case models.RoleSupervisor:
		seen := map[uint]bool{}
		var ids []uint
		for _, id := range u.AssignedCamps {
			if seen[id] {
				continue
			}
			seen[id] = true
			if err := exists(tx, &models.Camp{}, id); err != nil {
				return invalid("assigned_camps", fmt.Sprintf("camp %d does not exist", id))
			}
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			return invalid("assigned_camps", "a supervisor needs at least one assigned camp")
		}
		u.AssignedCamps = ids
		u.CampID = nil
	case models.RoleAdmin, models.RoleSystemAdmin:
		u.CampID = nil
		u.AssignedCamps = nil
	default:
		return invalid("role", "unknown role: "+u.Role)
	}
	return nil
}

// ---------- aid ----------

func (r *Registry) CreateAidDelivery(ctx context.Context, a *models.AidDelivery) error {
	a.ID = 0
	a.Items = strings.TrimSpace(a.Items)
	if a.Items == "" {
		return invalid("items", "at least one item is required")
	}
	if a.Date.IsZero() {
		a.Date = time.Now()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Family{}, a.FamilyID); err != nil {
			return invalid("family_id", "family does not exist")
		}
		if err := tx.Create(a).Error; err != nil {
			return r.failed("create aid delivery", err)
		}
		return nil
	})
}

// ---------- helpers ----------

func exists(tx *gorm.DB, model any, id uint) error {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Registry) failed(op string, err error) error {
	r.log.Warn("store mutation failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}
