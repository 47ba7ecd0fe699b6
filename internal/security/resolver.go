// Package security resolves what the caller of a request may do.
package security

import (
	"context"
	"fmt"
	"strings"

	"k8s.io/klog/v2"

	"dataaccess-backend/internal/application/validation"
	"dataaccess-backend/internal/domain/models"
	"dataaccess-backend/internal/domain/ports"
)

type principalKey struct{}

// WithPrincipal returns ctx carrying p
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal of ctx
func PrincipalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(models.Principal)
	return p, ok
}

// Resolver grants operations by role. Callers without a principal act in the default role.
type Resolver struct {
	roles       map[string]models.Role
	defaultRole string
}

// NewResolver creates a resolver over roles; role names are matched ignoring case
func NewResolver(roles []models.Role, defaultRole string) *Resolver {
	r := &Resolver{
		roles:       make(map[string]models.Role, len(roles)),
		defaultRole: defaultRole,
	}
	for _, role := range roles {
		r.roles[strings.ToLower(role.Name)] = role
	}
	return r
}

// ResolveFilterClause returns the filter the role attaches to resource and operation.
// A role without that permission gets a *validation.SecurityError.
func (r *Resolver) ResolveFilterClause(ctx context.Context, resource, operation string) (string, error) {
	roleName := r.defaultRole
	if p, ok := PrincipalFrom(ctx); ok && p.Role != "" {
		roleName = p.Role
	}

	role, ok := r.roles[strings.ToLower(roleName)]
	if !ok {
		return "", validation.NewSecurityError(validation.CodeUnknownRole, resource, operation,
			fmt.Sprintf("role %q is not defined", roleName))
	}

	perm, ok := role.Permission(resource, operation)
	if !ok {
		klog.V(2).Infof("security: role %s denied %s on %s", role.Name, operation, resource)
		return "", validation.NewSecurityError(validation.CodeAccessDenied, resource, operation,
			fmt.Sprintf("role %s may not %s %s", role.Name, operation, resource))
	}
	return perm.Filter, nil
}

// DefaultRoles grants every operation on todos to admin and read access to guest
func DefaultRoles() []models.Role {
	all := []string{models.OperationRead, models.OperationCreate, models.OperationUpdate, models.OperationDelete}
	admin := models.Role{Name: "admin"}
	for _, op := range all {
		admin.Permissions = append(admin.Permissions, models.Permission{Resource: models.TodoResource, Operation: op})
	}
	guest := models.Role{
		Name:        "guest",
		Permissions: []models.Permission{{Resource: models.TodoResource, Operation: models.OperationRead}},
	}
	return []models.Role{admin, guest}
}

var _ ports.PermissionResolver = (*Resolver)(nil)
