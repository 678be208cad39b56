package auth

import (
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	t.Setenv("SCANID_AUTH_SECRET", "test-secret")
	ResetSecretForTests()

	token, err := GenerateToken("u1", "Company_Admin", "e1", "c1", time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ParseAndValidate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != "u1" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.Role != "company_admin" {
		t.Fatalf("role not normalized: %s", claims.Role)
	}
	if claims.SystemEditionID != "e1" || claims.CompanyID != "c1" {
		t.Fatalf("scope claims lost: %+v", claims)
	}
}

func TestGenerateTokenRequiresInputs(t *testing.T) {
	t.Setenv("SCANID_AUTH_SECRET", "test-secret")
	ResetSecretForTests()

	if _, err := GenerateToken("", "user", "", "", time.Minute); err == nil {
		t.Fatalf("expected error for empty user")
	}
	if _, err := GenerateToken("u1", "", "", "", time.Minute); err == nil {
		t.Fatalf("expected error for empty role")
	}
	if _, err := GenerateToken("u1", "user", "", "", 0); err == nil {
		t.Fatalf("expected error for zero ttl")
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	t.Setenv("SCANID_AUTH_SECRET", "test-secret")
	ResetSecretForTests()

	token, err := GenerateToken("u1", "user", "e1", "", time.Millisecond)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := ParseAndValidate(token); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	t.Setenv("SCANID_AUTH_SECRET", "test-secret")
	ResetSecretForTests()

	if _, err := ParseAndValidate("not-a-token"); err == nil {
		t.Fatalf("expected parse failure")
	}
	if _, err := ParseAndValidate(""); err == nil {
		t.Fatalf("expected empty token failure")
	}
}

func TestMissingSecret(t *testing.T) {
	t.Setenv("SCANID_AUTH_SECRET", "")
	ResetSecretForTests()
	t.Cleanup(ResetSecretForTests)

	if _, err := GenerateToken("u1", "user", "", "", time.Minute); err == nil {
		t.Fatalf("expected missing secret error")
	}
}

func TestPasswordAndPinHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := VerifyPassword(hash, "s3cret"); err != nil {
		t.Fatalf("verify password: %v", err)
	}
	if err := VerifyPassword(hash, "wrong"); err == nil {
		t.Fatalf("wrong password accepted")
	}

	if _, err := HashPin("12a4"); err == nil {
		t.Fatalf("non-numeric pin accepted")
	}
	if _, err := HashPin("123"); err == nil {
		t.Fatalf("short pin accepted")
	}
	pinHash, err := HashPin("4812")
	if err != nil {
		t.Fatalf("hash pin: %v", err)
	}
	if err := VerifyPin(pinHash, "4812"); err != nil {
		t.Fatalf("verify pin: %v", err)
	}
	if err := VerifyPin("", "4812"); err == nil {
		t.Fatalf("unconfigured pin accepted")
	}
}
