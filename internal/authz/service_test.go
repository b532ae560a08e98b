package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func mustEnforce(t *testing.T, svc *Service, adminID uint, obj, act string) bool {
	t.Helper()
	allow, err := svc.EnforceAdmin(adminID, obj, act)
	if err != nil {
		t.Fatalf("enforce %s %s failed: %v", act, obj, err)
	}
	return allow
}

func TestEnforceAdminWithRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("merch", "/admin/products/:id", "GET"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}
	if err := svc.SetAdminRoles(1, []string{"merch"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}

	if !mustEnforce(t, svc, 1, "/api/v1/admin/products/3f2a", "get") {
		t.Fatalf("expected allow=true")
	}
	if mustEnforce(t, svc, 1, "/api/v1/admin/products/3f2a", "DELETE") {
		t.Fatalf("expected allow=false")
	}
}

func TestSetAdminRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("catalog", "/admin/categories", "GET"); err != nil {
		t.Fatalf("grant catalog policy failed: %v", err)
	}
	if err := svc.GrantRolePolicy("support", "/admin/inquiries", "GET"); err != nil {
		t.Fatalf("grant support policy failed: %v", err)
	}

	if err := svc.SetAdminRoles(2, []string{"catalog"}); err != nil {
		t.Fatalf("set first role failed: %v", err)
	}
	if err := svc.SetAdminRoles(2, []string{"support"}); err != nil {
		t.Fatalf("set second role failed: %v", err)
	}
	roles, err := svc.GetAdminRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:support" {
		t.Fatalf("roles want [role:support], got=%v", roles)
	}
	if mustEnforce(t, svc, 2, "/admin/categories", "GET") {
		t.Fatalf("expected old role permission removed")
	}
	if !mustEnforce(t, svc, 2, "/admin/inquiries", "GET") {
		t.Fatalf("expected new role permission granted")
	}
}

func TestRevokeAndDeleteRole(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("temp", "/admin/products", "POST"); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if err := svc.SetAdminRoles(4, []string{"temp"}); err != nil {
		t.Fatalf("set roles failed: %v", err)
	}
	if err := svc.RevokeRolePolicy("temp", "/admin/products", "POST"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if mustEnforce(t, svc, 4, "/admin/products", "POST") {
		t.Fatalf("revoked policy should deny")
	}
	if err := svc.DeleteRole("temp"); err != nil {
		t.Fatalf("delete role failed: %v", err)
	}
	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	for _, role := range roles {
		if role == "role:temp" {
			t.Fatalf("deleted role still listed")
		}
	}
	if err := svc.DeleteRole("__anchor__"); err != ErrReservedRole {
		t.Fatalf("anchor role delete want ErrReservedRole, got %v", err)
	}
	if err := svc.DeleteRole("temp"); err != ErrRoleNotFound {
		t.Fatalf("second delete want ErrRoleNotFound, got %v", err)
	}
}

func TestGrantRolePolicyScope(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("merch", "/public/products", "GET"); err != ErrObjectInvalid {
		t.Fatalf("public object want ErrObjectInvalid, got %v", err)
	}
	if err := svc.GrantRolePolicy("merch", "/administrator", "GET"); err != ErrObjectInvalid {
		t.Fatalf("lookalike prefix want ErrObjectInvalid, got %v", err)
	}
	if err := svc.GrantRolePolicy("merch", "/api/v1/admin/products", " get "); err != nil {
		t.Fatalf("prefixed admin object should be accepted: %v", err)
	}
	policies, err := svc.GetRolePolicies("merch")
	if err != nil {
		t.Fatalf("get role policies failed: %v", err)
	}
	if len(policies) != 1 || policies[0].Object != "/admin/products" || policies[0].Action != "GET" {
		t.Fatalf("unexpected policies: %+v", policies)
	}
	if err := svc.SetAdminRoles(9, []string{"merch", " "}); err != ErrRoleRequired {
		t.Fatalf("blank role want ErrRoleRequired, got %v", err)
	}
	roles, err := svc.GetAdminRoles(9)
	if err != nil {
		t.Fatalf("get admin roles failed: %v", err)
	}
	if len(roles) != 0 {
		t.Fatalf("failed assignment must not partially apply: %v", roles)
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/admin/inquiries/:id/status", want: "/admin/inquiries/:id/status"},
		{in: "/admin/products/:id", want: "/admin/products/:id"},
		{in: "admin/categories", want: "/admin/categories"},
		{in: "/api/v1", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		got := NormalizeObject(item.in)
		if got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	// 重复执行应当幂等
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	wantRoles := map[string]bool{
		"role:readonly_auditor": true,
		"role:catalog_editor":   true,
		"role:inquiry_agent":    true,
	}
	for _, role := range roles {
		delete(wantRoles, role)
	}
	if len(wantRoles) != 0 {
		t.Fatalf("builtin roles missing: %v", wantRoles)
	}

	if err := svc.SetAdminRoles(3, []string{"catalog_editor"}); err != nil {
		t.Fatalf("set admin roles failed: %v", err)
	}
	if !mustEnforce(t, svc, 3, "/admin/inquiries", "GET") {
		t.Fatalf("expected inherited readonly permission")
	}
	if !mustEnforce(t, svc, 3, "/admin/products/abc", "PUT") {
		t.Fatalf("catalog editor should edit products")
	}
	if mustEnforce(t, svc, 3, "/admin/inquiries/abc/status", "PATCH") {
		t.Fatalf("catalog editor should not update inquiry status")
	}

	if err := svc.SetAdminRoles(5, []string{"inquiry_agent"}); err != nil {
		t.Fatalf("set agent roles failed: %v", err)
	}
	if !mustEnforce(t, svc, 5, "/admin/inquiries/abc/status", "PATCH") {
		t.Fatalf("inquiry agent should update status")
	}
	if mustEnforce(t, svc, 5, "/admin/products", "POST") {
		t.Fatalf("inquiry agent should not create products")
	}
}

func TestIsImmutableRole(t *testing.T) {
	if !IsImmutableRole("catalog_editor") || !IsImmutableRole("role:inquiry_agent") {
		t.Fatalf("builtin roles should be immutable")
	}
	if IsImmutableRole("custom") {
		t.Fatalf("custom role should be mutable")
	}
}
