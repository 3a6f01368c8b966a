package handlers

import (
	"testing"

	"example.com/household-finance/internal/models"
)

// TestValidateRule проверяет допустимые и ошибочные правила распределения.
func TestValidateRule(t *testing.T) {
	if _, err := validateRule("percentage", 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := validateRule("fixed", 5000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ruleType, err := validateRule(" percentage ", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ruleType != models.RuleTypePercentage {
		t.Fatalf("expected percentage, got %s", ruleType)
	}

	if _, err := validateRule("percentage", 101); err == nil {
		t.Fatal("expected error for percentage above 100")
	}
	if _, err := validateRule("fixed", -1); err == nil {
		t.Fatal("expected error for negative fixed value")
	}
	if _, err := validateRule("weekly", 10); err == nil {
		t.Fatal("expected error for unknown rule type")
	}
	if _, err := validateRule("", 10); err == nil {
		t.Fatal("expected error for empty rule type")
	}
}

func TestIsHexColor(t *testing.T) {
	valid := []string{"#FFFFFF", "#4a90d9", "#000000"}
	for _, value := range valid {
		if !isHexColor(value) {
			t.Errorf("expected %s to be valid", value)
		}
	}

	invalid := []string{"", "#FFF", "4A90D9", "#GGGGGG", "#4A90D9A"}
	for _, value := range invalid {
		if isHexColor(value) {
			t.Errorf("expected %s to be invalid", value)
		}
	}
}
