package models

import "strings"

// Operations a permission can grant
const (
	OperationRead   = "read"
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// Permission grants an operation on a resource. A non-empty Filter narrows the
// rows the holder can read, written as k1=v1&k2=v2.
type Permission struct {
	Resource  string `yaml:"resource" json:"resource"`
	Operation string `yaml:"operation" json:"operation"`
	Filter    string `yaml:"filter" json:"filter,omitempty"`
}

// Role is a named set of permissions
type Role struct {
	Name        string       `yaml:"name" json:"name"`
	Permissions []Permission `yaml:"permissions" json:"permissions"`
}

// Permission finds the permission for resource and operation, names compared ignoring case
func (r Role) Permission(resource, operation string) (Permission, bool) {
	for _, p := range r.Permissions {
		if strings.EqualFold(p.Resource, resource) && strings.EqualFold(p.Operation, operation) {
			return p, true
		}
	}
	return Permission{}, false
}

// Principal is the caller a request runs on behalf of
type Principal struct {
	UserID int64
	Role   string
}
