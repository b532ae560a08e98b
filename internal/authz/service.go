package authz

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

const (
	apiV1Prefix     = "/api/v1"
	casbinTableName = "casbin_rule"
	adminSubjectFmt = "admin:%d"
	rolePrefix      = "role:"
	roleAnchor      = "role:__anchor__"
	adminObjectRoot = "/admin"
)

const defaultRBACModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (g(r.sub, p.sub) || r.sub == p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

var (
	ErrUnavailable    = errors.New("authz service unavailable")
	ErrRoleRequired   = errors.New("role is required")
	ErrReservedRole   = errors.New("reserved role is not allowed")
	ErrActionRequired = errors.New("action is required")
	ErrAdminRequired  = errors.New("admin id is required")
	ErrRoleNotFound   = errors.New("role not found")
	ErrObjectInvalid  = errors.New("policy object must be an admin api path")
)

// Policy 权限策略
type Policy struct {
	Subject string `json:"subject"`
	Object  string `json:"object"`
	Action  string `json:"action"`
}

// Service Casbin 授权服务
// 统一封装策略加载、授权判定与策略管理逻辑
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService 创建授权服务
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("authz db is nil")
	}

	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter failed: %w", err)
	}

	m, err := model.NewModelFromString(defaultRBACModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model failed: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer failed: %w", err)
	}
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)
	enforcer.EnableAutoSave(true)

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy failed: %w", err)
	}

	return &Service{enforcer: enforcer}, nil
}

// Enforce 执行授权判断
func (s *Service) Enforce(sub, obj, act string) (bool, error) {
	if !s.ready() {
		return false, ErrUnavailable
	}
	return s.enforcer.Enforce(strings.TrimSpace(sub), NormalizeObject(obj), NormalizeAction(act))
}

// EnforceAdmin 按管理员 ID 判定授权
func (s *Service) EnforceAdmin(adminID uint, obj, act string) (bool, error) {
	return s.Enforce(SubjectForAdmin(adminID), obj, act)
}

// EnsureRole 确保角色存在
func (s *Service) EnsureRole(role string) (string, error) {
	normalized, err := s.managedRole(role)
	if err != nil {
		return "", err
	}
	exists, err := s.roleExists(normalized)
	if err != nil {
		return "", err
	}
	if exists {
		return normalized, nil
	}
	err = s.mutate(func() (bool, error) {
		added, err := s.enforcer.AddNamedGroupingPolicy("g", normalized, roleAnchor)
		if err != nil {
			return false, fmt.Errorf("create role failed: %w", err)
		}
		return added, nil
	})
	if err != nil {
		return "", err
	}
	return normalized, nil
}

// ListRoles 列出角色（含继承链上出现的角色）
func (s *Service) ListRoles() ([]string, error) {
	if !s.ready() {
		return nil, ErrUnavailable
	}
	rules, err := s.enforcer.GetFilteredNamedGroupingPolicy("g", 0)
	if err != nil {
		return nil, fmt.Errorf("list roles failed: %w", err)
	}
	seen := make(map[string]struct{})
	for _, rule := range rules {
		for _, name := range rule {
			if isRoleName(name) {
				seen[name] = struct{}{}
			}
		}
	}
	return sortedKeys(seen), nil
}

// DeleteRole 删除角色、角色策略以及指向它的分配关系
func (s *Service) DeleteRole(role string) error {
	normalized, err := s.managedRole(role)
	if err != nil {
		return err
	}
	exists, err := s.roleExists(normalized)
	if err != nil {
		return err
	}
	if !exists {
		return ErrRoleNotFound
	}
	return s.mutate(func() (bool, error) {
		changed := false
		steps := []struct {
			label string
			run   func() (bool, error)
		}{
			{"remove role policy", func() (bool, error) { return s.enforcer.RemoveFilteredPolicy(0, normalized) }},
			{"remove role link", func() (bool, error) { return s.enforcer.RemoveFilteredNamedGroupingPolicy("g", 0, normalized) }},
			{"remove role assignment", func() (bool, error) { return s.enforcer.RemoveFilteredNamedGroupingPolicy("g", 1, normalized) }},
		}
		for _, step := range steps {
			removed, err := step.run()
			if err != nil {
				return false, fmt.Errorf("%s failed: %w", step.label, err)
			}
			changed = changed || removed
		}
		return changed, nil
	})
}

// GrantRolePolicy 为角色授予后台接口策略
func (s *Service) GrantRolePolicy(role, object, action string) error {
	rule, err := s.rolePolicy(role, object, action)
	if err != nil {
		return err
	}
	if _, err := s.EnsureRole(rule.Subject); err != nil {
		return err
	}
	return s.mutate(func() (bool, error) {
		added, err := s.enforcer.AddPolicy(rule.Subject, rule.Object, rule.Action)
		if err != nil {
			return false, fmt.Errorf("grant policy failed: %w", err)
		}
		return added, nil
	})
}

// RevokeRolePolicy 撤销角色策略，策略不存在时视为成功
func (s *Service) RevokeRolePolicy(role, object, action string) error {
	rule, err := s.rolePolicy(role, object, action)
	if err != nil {
		return err
	}
	return s.mutate(func() (bool, error) {
		removed, err := s.enforcer.RemovePolicy(rule.Subject, rule.Object, rule.Action)
		if err != nil {
			return false, fmt.Errorf("revoke policy failed: %w", err)
		}
		return removed, nil
	})
}

// GetRolePolicies 查询角色自身策略（不展开继承）
func (s *Service) GetRolePolicies(role string) ([]Policy, error) {
	normalized, err := s.managedRole(role)
	if err != nil {
		return nil, err
	}
	rules, err := s.enforcer.GetFilteredPolicy(0, normalized)
	if err != nil {
		return nil, fmt.Errorf("get role policies failed: %w", err)
	}
	policies := convertPolicies(rules)
	sortPolicies(policies)
	return policies, nil
}

// SetAdminRoles 覆盖设置管理员角色，空列表即清空
func (s *Service) SetAdminRoles(adminID uint, roles []string) error {
	if adminID == 0 {
		return ErrAdminRequired
	}
	if !s.ready() {
		return ErrUnavailable
	}
	// 先统一校验，避免清空后中途失败
	normalized := make([]string, 0, len(roles))
	for _, role := range roles {
		name, err := s.EnsureRole(role)
		if err != nil {
			return err
		}
		normalized = append(normalized, name)
	}

	subject := SubjectForAdmin(adminID)
	if _, err := s.enforcer.RemoveFilteredNamedGroupingPolicy("g", 0, subject); err != nil {
		return fmt.Errorf("clear admin roles failed: %w", err)
	}
	for _, role := range normalized {
		if _, err := s.enforcer.AddNamedGroupingPolicy("g", subject, role); err != nil {
			return fmt.Errorf("assign admin role failed: %w", err)
		}
	}
	return s.saveAndReload()
}

// GetAdminRoles 查询管理员直接分配的角色
func (s *Service) GetAdminRoles(adminID uint) ([]string, error) {
	if adminID == 0 {
		return nil, ErrAdminRequired
	}
	if !s.ready() {
		return nil, ErrUnavailable
	}
	roles, err := s.enforcer.GetRolesForUser(SubjectForAdmin(adminID))
	if err != nil {
		return nil, fmt.Errorf("get admin roles failed: %w", err)
	}
	seen := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if isRoleName(role) {
			seen[role] = struct{}{}
		}
	}
	return sortedKeys(seen), nil
}

// GetAdminPolicies 查询管理员生效策略（直连 + 所分配角色）
func (s *Service) GetAdminPolicies(adminID uint) ([]Policy, error) {
	roles, err := s.GetAdminRoles(adminID)
	if err != nil {
		return nil, err
	}
	subjects := append([]string{SubjectForAdmin(adminID)}, roles...)

	merged := make(map[Policy]struct{})
	for _, subject := range subjects {
		rules, err := s.enforcer.GetFilteredPolicy(0, subject)
		if err != nil {
			return nil, fmt.Errorf("get policies for %s failed: %w", subject, err)
		}
		for _, item := range convertPolicies(rules) {
			merged[item] = struct{}{}
		}
	}

	result := make([]Policy, 0, len(merged))
	for item := range merged {
		result = append(result, item)
	}
	sortPolicies(result)
	return result, nil
}

// managedRole 规范化角色名并拒绝锚点角色
func (s *Service) managedRole(role string) (string, error) {
	normalized, err := NormalizeRole(role)
	if err != nil {
		return "", err
	}
	if normalized == roleAnchor {
		return "", ErrReservedRole
	}
	if !s.ready() {
		return "", ErrUnavailable
	}
	return normalized, nil
}

// rolePolicy 组装角色策略，资源只能落在后台接口下
func (s *Service) rolePolicy(role, object, action string) (Policy, error) {
	normalized, err := s.managedRole(role)
	if err != nil {
		return Policy{}, err
	}
	rule := Policy{Subject: normalized, Object: NormalizeObject(object), Action: NormalizeAction(action)}
	if rule.Action == "" {
		return Policy{}, ErrActionRequired
	}
	if rule.Object != adminObjectRoot && !strings.HasPrefix(rule.Object, adminObjectRoot+"/") {
		return Policy{}, ErrObjectInvalid
	}
	return rule, nil
}

func (s *Service) roleExists(role string) (bool, error) {
	exists, err := s.enforcer.HasNamedGroupingPolicy("g", role, roleAnchor)
	if err != nil {
		return false, fmt.Errorf("check role failed: %w", err)
	}
	return exists, nil
}

// mutate 执行策略变更，有实际变化时重新加载
func (s *Service) mutate(change func() (bool, error)) error {
	if !s.ready() {
		return ErrUnavailable
	}
	changed, err := change()
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.saveAndReload()
}

// saveAndReload 开启 AutoSave 后策略已落库，这里只重新加载
func (s *Service) saveAndReload() error {
	if !s.ready() {
		return ErrUnavailable
	}
	return s.enforcer.LoadPolicy()
}

func (s *Service) ready() bool {
	return s != nil && s.enforcer != nil
}

func isRoleName(name string) bool {
	return strings.HasPrefix(name, rolePrefix) && name != roleAnchor
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortPolicies(policies []Policy) {
	sort.Slice(policies, func(i, j int) bool {
		a, b := policies[i], policies[j]
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		if a.Object != b.Object {
			return a.Object < b.Object
		}
		return a.Action < b.Action
	})
}

func convertPolicies(rules [][]string) []Policy {
	policies := make([]Policy, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		policies = append(policies, Policy{
			Subject: strings.TrimSpace(rule[0]),
			Object:  NormalizeObject(rule[1]),
			Action:  NormalizeAction(rule[2]),
		})
	}
	return policies
}

// SubjectForAdmin 生成管理员主体标识
func SubjectForAdmin(adminID uint) string {
	return fmt.Sprintf(adminSubjectFmt, adminID)
}

// NormalizeRole 统一角色名称
func NormalizeRole(role string) (string, error) {
	normalized := strings.TrimSpace(role)
	if normalized == "" {
		return "", ErrRoleRequired
	}
	normalized = strings.ReplaceAll(normalized, " ", "_")
	if !strings.HasPrefix(normalized, rolePrefix) {
		normalized = rolePrefix + normalized
	}
	if len(normalized) <= len(rolePrefix) {
		return "", ErrRoleRequired
	}
	return normalized, nil
}

// NormalizeObject 统一授权资源路径
func NormalizeObject(object string) string {
	normalized := strings.TrimSpace(object)
	if normalized == "" {
		return "/"
	}
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	if strings.HasPrefix(normalized, apiV1Prefix+"/") {
		return strings.TrimPrefix(normalized, apiV1Prefix)
	}
	if normalized == apiV1Prefix {
		return "/"
	}
	return normalized
}

// NormalizeAction 统一授权动作
func NormalizeAction(action string) string {
	return strings.ToUpper(strings.TrimSpace(action))
}
