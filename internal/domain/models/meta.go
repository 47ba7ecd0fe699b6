package models

import (
	"time"
)

// Audit holds the identity and audit columns every persisted entity carries.
// Dates are epoch milliseconds.
type Audit struct {
	ID               int64 `json:"id" db:"id" bson:"_id" gorm:"column:id;primary_key"`
	Version          int64 `json:"version" db:"version" bson:"version" gorm:"column:version"`
	CreatedBy        int64 `json:"createdBy" db:"created_by" bson:"createdBy" gorm:"column:created_by"`
	CreateDate       int64 `json:"createDate" db:"create_date" bson:"createDate" gorm:"column:create_date"`
	LastModifiedBy   int64 `json:"lastModifiedBy" db:"last_modified_by" bson:"lastModifiedBy" gorm:"column:last_modified_by"`
	LastModifiedDate int64 `json:"lastModifiedDate" db:"last_modified_date" bson:"lastModifiedDate" gorm:"column:last_modified_date"`
}

// GetID returns the identifier
func (a *Audit) GetID() int64 {
	return a.ID
}

// SetID sets the identifier
func (a *Audit) SetID(id int64) {
	a.ID = id
}

// GetAudit returns the audit block
func (a *Audit) GetAudit() *Audit {
	return a
}

// TouchOnCreate initializes fields set exactly once when the entity is created
func (a *Audit) TouchOnCreate(principal int64, now time.Time) {
	if a == nil {
		return
	}
	ms := now.UnixMilli()
	a.CreatedBy = principal
	a.CreateDate = ms
	a.LastModifiedBy = principal
	a.LastModifiedDate = ms
	a.Version = 1
}

// TouchOnWrite updates fields that change on every update
func (a *Audit) TouchOnWrite(principal int64, now time.Time) {
	if a == nil {
		return
	}
	a.LastModifiedBy = principal
	a.LastModifiedDate = now.UnixMilli()
	a.Version++
}

// Properties returns audit fields keyed by their filter names
func (a *Audit) Properties() map[string]any {
	return map[string]any{
		"id":               a.ID,
		"version":          a.Version,
		"createdBy":        a.CreatedBy,
		"createDate":       a.CreateDate,
		"lastModifiedBy":   a.LastModifiedBy,
		"lastModifiedDate": a.LastModifiedDate,
	}
}

// SetProperties loads audit fields from a property map, missing keys are left untouched
func (a *Audit) SetProperties(props map[string]any) {
	for key, dst := range map[string]*int64{
		"id":               &a.ID,
		"version":          &a.Version,
		"createdBy":        &a.CreatedBy,
		"createDate":       &a.CreateDate,
		"lastModifiedBy":   &a.LastModifiedBy,
		"lastModifiedDate": &a.LastModifiedDate,
	} {
		if v, ok := props[key]; ok {
			*dst = AsInt64(v)
		}
	}
}

// AsInt64 converts numeric driver values to int64, anything else yields zero
func AsInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
