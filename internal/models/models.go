package models

import "time"

// User roles as stored on users.role.
const (
	RoleSystemAdmin = "system_admin"
	RoleAdmin       = "admin"
	RoleManager     = "manager"
	RoleSupervisor  = "supervisor"
	RoleUser        = "user"
)

type Camp struct {
	ID        uint      `gorm:"primaryKey" json:"camp_id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Name         string `gorm:"not null" json:"name"`
	ManagerName  string `json:"manager_name"`
	ManagerPhone string `json:"manager_phone"`
	ManagerNID   string `gorm:"column:manager_nid" json:"manager_nid"`
}

// User is an operator account. CampID is only set for single-camp roles
// (manager, user); AssignedCamps only for supervisors.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"user_id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Username      string `gorm:"uniqueIndex;not null" json:"username"`
	Role          string `gorm:"not null" json:"role"`
	CampID        *uint  `json:"camp_id,omitempty"`
	AssignedCamps []uint `gorm:"serializer:json" json:"assigned_camps,omitempty"`
}

type Family struct {
	ID        uint      `gorm:"primaryKey" json:"family_id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	CampID            uint   `gorm:"index:idx_family_camp_number,priority:1;not null" json:"camp_id"`
	FamilyNumber      string `gorm:"index:idx_family_camp_number,priority:2" json:"family_number"`
	Address           string `json:"address"`
	Contact           string `json:"contact"`
	AlternativeMobile string `json:"alternative_mobile"`
	HousingStatus     string `json:"housing_status"`
	Delegate          string `json:"delegate"`
	FamilyNeeds       string `json:"family_needs"`
	ShelterType       string `json:"shelter_type"`
	ShelterTypeOther  string `json:"shelter_type_other"`
	IsDeparted        bool   `gorm:"default:false" json:"is_departed"`

	Members []Individual `json:"members,omitempty"`
}

// Individual is one household member. DOB is kept as text: legacy rows carry
// values that do not parse as dates.
type Individual struct {
	ID        uint      `gorm:"primaryKey" json:"individual_id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	FamilyID        uint   `gorm:"index;not null" json:"family_id"`
	Name            string `json:"name"`
	NID             string `gorm:"column:nid" json:"nid,omitempty"`
	DOB             string `gorm:"column:dob" json:"dob,omitempty"`
	Gender          string `json:"gender,omitempty"`
	Role            string `json:"role"`
	RoleDescription string `json:"role_description,omitempty"`
	IsPregnant      bool   `json:"is_pregnant,omitempty"`
	IsNursing       bool   `json:"is_nursing,omitempty"`
	HealthNotes     string `json:"health_notes,omitempty"`
	Notes           string `json:"notes,omitempty"`
	ShoeSize        string `json:"shoe_size,omitempty"`
	ClothesSize     string `json:"clothes_size,omitempty"`
}

// Delegate is field personnel. CampID is nil for legacy rows that predate
// camp partitioning.
type Delegate struct {
	ID        uint      `gorm:"primaryKey" json:"delegate_id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	CampID *uint  `gorm:"index" json:"camp_id,omitempty"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	NID    string `gorm:"column:nid" json:"nid"`
	DOB    string `gorm:"column:dob" json:"dob"`
	Notes  string `json:"notes"`
}

// AidDelivery records items handed to a family. Items is free text separated
// by Arabic or Latin commas.
type AidDelivery struct {
	ID        uint      `gorm:"primaryKey" json:"aid_id"`
	CreatedAt time.Time `json:"-"`

	FamilyID uint      `gorm:"index:idx_aid_family_date,priority:1;not null" json:"family_id"`
	Date     time.Time `gorm:"index:idx_aid_family_date,priority:2" json:"date"`
	Items    string    `json:"items"`
}
