package authz

import "fmt"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds 系统预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "readonly_auditor",
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     "catalog_editor",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/categories", Action: "*"},
				{Object: "/admin/categories/:id", Action: "*"},
				{Object: "/admin/products", Action: "*"},
				{Object: "/admin/products/:id", Action: "*"},
				{Object: "/admin/upload", Action: "POST"},
			},
			Immutable: true,
		},
		{
			Role: "inquiry_agent",
			Policies: []Policy{
				{Object: "/admin/dashboard", Action: "GET"},
				{Object: "/admin/inquiries", Action: "GET"},
				{Object: "/admin/inquiries/:id", Action: "GET"},
				{Object: "/admin/inquiries/:id/status", Action: "PATCH"},
			},
			Immutable: true,
		},
	}
}

// IsImmutableRole 预置角色不允许删除或改动策略
func IsImmutableRole(role string) bool {
	normalized, err := NormalizeRole(role)
	if err != nil {
		return false
	}
	_, ok := immutableRoles()[normalized]
	return ok
}

func immutableRoles() map[string]struct{} {
	roles := make(map[string]struct{})
	for _, seed := range BuiltinRoleSeeds() {
		if !seed.Immutable {
			continue
		}
		if name, err := NormalizeRole(seed.Role); err == nil {
			roles[name] = struct{}{}
		}
	}
	return roles
}

// BootstrapBuiltinRoles 写入预置角色、继承关系与默认策略，重复执行无副作用
func (s *Service) BootstrapBuiltinRoles() error {
	return s.mutate(func() (bool, error) {
		changed := false
		for _, seed := range BuiltinRoleSeeds() {
			seeded, err := s.applyRoleSeed(seed)
			if err != nil {
				return false, fmt.Errorf("seed role %s failed: %w", seed.Role, err)
			}
			changed = changed || seeded
		}
		return changed, nil
	})
}

func (s *Service) applyRoleSeed(seed RoleSeed) (bool, error) {
	role, err := NormalizeRole(seed.Role)
	if err != nil {
		return false, err
	}
	links := []string{roleAnchor}
	for _, parent := range seed.Inherits {
		parentRole, err := NormalizeRole(parent)
		if err != nil {
			return false, err
		}
		links = append(links, parentRole)
	}

	changed := false
	for _, target := range links {
		added, err := s.enforcer.AddNamedGroupingPolicy("g", role, target)
		if err != nil {
			return false, err
		}
		changed = changed || added
	}
	for _, policy := range seed.Policies {
		action := NormalizeAction(policy.Action)
		if action == "" {
			return false, ErrActionRequired
		}
		added, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action)
		if err != nil {
			return false, err
		}
		changed = changed || added
	}
	return changed, nil
}
