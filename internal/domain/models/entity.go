package models

import (
	"strings"
)

// Entity defines what every persisted domain record must implement
type Entity interface {
	// GetID returns the unique identifier, zero before the first insert
	GetID() int64

	// SetID assigns the identifier generated by the backend
	SetID(id int64)

	// GetAudit returns the audit block
	GetAudit() *Audit

	// Properties returns every persisted field keyed by its filter name, audit fields included
	Properties() map[string]any
}

// FieldValue looks a field up by filter name, ignoring case
func FieldValue(e Entity, key string) (any, bool) {
	props := e.Properties()
	if v, ok := props[key]; ok {
		return v, true
	}
	for k, v := range props {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}
