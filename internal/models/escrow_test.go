package models

import "testing"

func TestIsValidEscrowTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		// Happy path
		{EscrowStatusPending, EscrowStatusHeld, true},
		{EscrowStatusHeld, EscrowStatusReleased, true},
		{EscrowStatusHeld, EscrowStatusRefunded, true},

		// Backward or skipping moves
		{EscrowStatusHeld, EscrowStatusPending, false},
		{EscrowStatusPending, EscrowStatusReleased, false},
		{EscrowStatusPending, EscrowStatusRefunded, false},
		{EscrowStatusReleased, EscrowStatusHeld, false},
		{EscrowStatusRefunded, EscrowStatusHeld, false},

		// Terminal states reject everything
		{EscrowStatusReleased, EscrowStatusRefunded, false},
		{EscrowStatusRefunded, EscrowStatusReleased, false},
		{EscrowStatusReleased, EscrowStatusPending, false},

		// Unknown statuses
		{"nonexistent", EscrowStatusHeld, false},
		{EscrowStatusPending, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidEscrowTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidEscrowTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestDisputedIsUnreachable(t *testing.T) {
	all := []string{
		EscrowStatusPending, EscrowStatusHeld, EscrowStatusReleased,
		EscrowStatusRefunded, EscrowStatusDisputed,
	}
	for _, from := range all {
		if IsValidEscrowTransition(from, EscrowStatusDisputed) {
			t.Errorf("no transition should produce disputed, but %q -> disputed is allowed", from)
		}
	}
	if len(ValidEscrowTransitions[EscrowStatusDisputed]) != 0 {
		t.Errorf("disputed should have no outbound transitions, got %v", ValidEscrowTransitions[EscrowStatusDisputed])
	}
}

func TestTerminalEscrowStatuses(t *testing.T) {
	for _, status := range []string{EscrowStatusReleased, EscrowStatusRefunded} {
		if !IsTerminalEscrowStatus(status) {
			t.Errorf("%q should be terminal", status)
		}
		if len(ValidEscrowTransitions[status]) != 0 {
			t.Errorf("terminal status %q should have no transitions, got %v", status, ValidEscrowTransitions[status])
		}
	}
	for _, status := range []string{EscrowStatusPending, EscrowStatusHeld} {
		if IsTerminalEscrowStatus(status) {
			t.Errorf("%q should not be terminal", status)
		}
	}
}

func TestIsValidPaymentToken(t *testing.T) {
	for _, tok := range []string{TokenETH, TokenUSDT, TokenUSDC, TokenDAI} {
		if !IsValidPaymentToken(tok) {
			t.Errorf("token %q should be valid", tok)
		}
	}
	for _, tok := range []string{"", "eth", "BTC", "TON"} {
		if IsValidPaymentToken(tok) {
			t.Errorf("token %q should be invalid", tok)
		}
	}
}

func TestIsValidCategory(t *testing.T) {
	for _, c := range ProductCategories {
		if !IsValidCategory(c) {
			t.Errorf("category %q should be valid", c)
		}
	}
	if IsValidCategory("Groceries") {
		t.Error("unknown category accepted")
	}
}
