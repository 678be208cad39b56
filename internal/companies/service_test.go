package companies

import (
	"context"
	"errors"
	"testing"
)

func TestCreateDefaultsPinConfigOff(t *testing.T) {
	svc, err := NewService(NewInMemory())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	company, err := svc.Create(context.Background(), "e1", "  Acme GmbH  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if company.Name != "Acme GmbH" {
		t.Fatalf("name not trimmed: %q", company.Name)
	}
	if company.PinOptions != (PinOptions{}) {
		t.Fatalf("pin options must default to all-disabled: %+v", company.PinOptions)
	}
	if company.PinSettings != (PinSettings{}) {
		t.Fatalf("pin settings must default to all-disabled: %+v", company.PinSettings)
	}
	if company.HasMasterPin() {
		t.Fatalf("new company must not have a master pin")
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := NewService(NewInMemory())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "", "Acme"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected edition requirement, got %v", err)
	}
	if _, err := svc.Create(ctx, "e1", "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected name requirement, got %v", err)
	}
	if _, err := svc.Create(ctx, "e1", "Acme"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, "e1", "Acme"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected duplicate name conflict, got %v", err)
	}
}

func TestConfigureAndVerifyPin(t *testing.T) {
	svc, _ := NewService(NewInMemory())
	ctx := context.Background()
	company, _ := svc.Create(ctx, "e1", "Acme")

	pin := "2468"
	updated, err := svc.ConfigurePin(ctx, company.ID, PinConfig{
		MasterPin:   &pin,
		PinOptions:  &PinOptions{Documents: true, Certificates: true},
		PinSettings: &PinSettings{RequireToView: true},
	})
	if err != nil {
		t.Fatalf("configure pin: %v", err)
	}
	if !updated.PinOptions.Documents || !updated.PinOptions.Certificates || updated.PinOptions.Notes {
		t.Fatalf("pin options not applied: %+v", updated.PinOptions)
	}
	if !updated.PinSettings.RequireToView || updated.PinSettings.RequireToEdit {
		t.Fatalf("pin settings not applied: %+v", updated.PinSettings)
	}

	if err := svc.VerifyPin(ctx, company.ID, "2468"); err != nil {
		t.Fatalf("verify pin: %v", err)
	}
	if err := svc.VerifyPin(ctx, company.ID, "0000"); !errors.Is(err, ErrPinMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}

	bad := "12ab"
	if _, err := svc.ConfigurePin(ctx, company.ID, PinConfig{MasterPin: &bad}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected pin validation, got %v", err)
	}
}

func TestVerifyPinUnconfigured(t *testing.T) {
	svc, _ := NewService(NewInMemory())
	ctx := context.Background()
	company, _ := svc.Create(ctx, "e1", "Acme")

	if err := svc.VerifyPin(ctx, company.ID, "1234"); !errors.Is(err, ErrPinMismatch) {
		t.Fatalf("expected mismatch for unconfigured pin, got %v", err)
	}
}
