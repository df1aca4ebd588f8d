package cosmetics

import "testing"

func TestRequiredSlots(t *testing.T) {
	c := DefaultCatalog()

	tests := []struct {
		colors int
		want   int
	}{
		{colors: 2, want: 0},
		{colors: 3, want: 0},
		{colors: 4, want: 1},
		{colors: 5, want: 2},
		{colors: 8, want: 5},
	}

	for _, tt := range tests {
		if got := c.RequiredSlots(tt.colors); got != tt.want {
			t.Fatalf("RequiredSlots(%d) = %d, want %d", tt.colors, got, tt.want)
		}
	}
}

func TestGradientPrice(t *testing.T) {
	c := DefaultCatalog()

	tests := []struct {
		colors     int
		ownedSlots int
		want       int64
	}{
		{colors: 2, ownedSlots: 0, want: 500},
		{colors: 3, ownedSlots: 0, want: 500},
		{colors: 4, ownedSlots: 0, want: 525},
		{colors: 5, ownedSlots: 0, want: 550},
		// Owned slots are reused for free.
		{colors: 5, ownedSlots: 2, want: 500},
		{colors: 4, ownedSlots: 2, want: 500},
		{colors: 6, ownedSlots: 2, want: 525},
		// Owning more slots than needed never discounts below base.
		{colors: 2, ownedSlots: 10, want: 500},
	}

	for _, tt := range tests {
		if got := c.GradientPrice(tt.colors, tt.ownedSlots); got != tt.want {
			t.Fatalf("GradientPrice(%d colors, %d slots) = %d, want %d", tt.colors, tt.ownedSlots, got, tt.want)
		}
	}
}

func TestValidHexColor(t *testing.T) {
	valid := []string{"#fff", "#FFF", "#a1b2c3", "#000000", "#AbCdEf"}
	for _, s := range valid {
		if !ValidHexColor(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}

	invalid := []string{"", "fff", "#ff", "#ffff", "#fffff", "#fffffff", "#ggg", "red", "#12 45"}
	for _, s := range invalid {
		if ValidHexColor(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

func TestValidateGradient(t *testing.T) {
	if err := ValidateGradient([]string{"#fff", "#000"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateGradient([]string{"#fff"}); err == nil {
		t.Fatal("expected single-color gradient to be rejected")
	}
	if err := ValidateGradient(nil); err == nil {
		t.Fatal("expected empty gradient to be rejected")
	}
	if err := ValidateGradient([]string{"#fff", "nope"}); err == nil {
		t.Fatal("expected gradient with invalid color to be rejected")
	}
}

func TestValidateAnonymousUsername(t *testing.T) {
	valid := []string{"anon_abc", "anon_user_42", "ANON_SHOUTER"}
	for _, s := range valid {
		if err := ValidateAnonymousUsername(s); err != nil {
			t.Fatalf("expected %q to be valid, got %v", s, err)
		}
	}

	invalid := []string{"", "abc", "anon_", "anon_ab", "anon_has space", "anon_ümlaut", "prefix_anon_abc"}
	for _, s := range invalid {
		if err := ValidateAnonymousUsername(s); err == nil {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}
