package user

import "testing"

func TestPasswordHashAndCheck(t *testing.T) {
	hash, err := HashPassword("p@ssw0rd")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "" || hash == "p@ssw0rd" {
		t.Fatalf("expected non-empty hash distinct from input")
	}
	if !CheckPassword(hash, "p@ssw0rd") {
		t.Fatalf("expected check ok")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("expected check fail")
	}
}

func TestRolesJoinAndHasRole(t *testing.T) {
	joined := RolesJoin([]string{" buyer ", "", "seller"})
	if joined != "buyer,seller" {
		t.Fatalf("unexpected join: %q", joined)
	}

	u := User{Roles: joined}
	if !u.HasRole("seller") || !u.HasRole("BUYER") {
		t.Fatalf("expected roles present: %q", u.Roles)
	}
	if u.HasRole("admin") {
		t.Fatalf("did not expect admin role")
	}

	joined = AddRole(joined, "seller")
	if joined != "buyer,seller" {
		t.Fatalf("AddRole duplicated: %q", joined)
	}
	joined = AddRole(joined, "admin")
	if joined != "buyer,seller,admin" {
		t.Fatalf("AddRole failed: %q", joined)
	}
}
