package services

import "testing"

func TestGenerateReferralCode_Shape(t *testing.T) {
	code, err := GenerateReferralCode()
	if err != nil {
		t.Fatalf("GenerateReferralCode: %v", err)
	}
	if len(code) != 8 {
		t.Fatalf("code length = %d, want 8", len(code))
	}
	for _, ch := range code {
		valid := (ch >= '0' && ch <= '9') || (ch >= 'A' && ch <= 'F')
		if !valid {
			t.Errorf("code %q contains non-uppercase-hex character %q", code, ch)
		}
	}
}

func TestGenerateReferralCode_Varies(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenerateReferralCode()
		if err != nil {
			t.Fatalf("GenerateReferralCode: %v", err)
		}
		seen[code] = true
	}
	// 50 draws from a 32-bit space should essentially never collide.
	if len(seen) < 49 {
		t.Errorf("only %d distinct codes out of 50", len(seen))
	}
}
