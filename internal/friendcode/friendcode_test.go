package friendcode

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain lowercase",
			input: "abcd1234wxyz",
			want:  "ABCD1234WXYZ",
		},
		{
			name:  "dashed without prefix",
			input: "ABCD-1234-WXYZ",
			want:  "ABCD1234WXYZ",
		},
		{
			name:  "formatted with display prefix",
			input: "SW-ABCD-1234-WXYZ",
			want:  "ABCD1234WXYZ",
		},
		{
			name:  "whitespace and mixed case",
			input: " sw-abcd-1234-wxyz ",
			want:  "ABCD1234WXYZ",
		},
		{
			name:  "code legitimately starting with SW keeps its characters",
			input: "SWAB12CD34EF",
			want:  "SWAB12CD34EF",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := Validate("SW-ABCD-1234-WXYZ"); err != nil {
		t.Errorf("expected formatted code to validate, got %v", err)
	}
	if err := Validate("abcd1234wxyz"); err != nil {
		t.Errorf("expected raw code to validate, got %v", err)
	}
	if err := Validate("SHORT"); err == nil {
		t.Error("expected short code to fail validation")
	}
	if err := Validate("ABCD-1234-WXYZ-0000"); err == nil {
		t.Error("expected long code to fail validation")
	}
	if err := Validate(""); err == nil {
		t.Error("expected empty code to fail validation")
	}
}

func TestFormat(t *testing.T) {
	got, err := Format("abcd1234wxyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "SW-ABCD-1234-WXYZ" {
		t.Errorf("Format = %q, want SW-ABCD-1234-WXYZ", got)
	}

	if _, err := Format("nope"); err == nil {
		t.Error("expected error for invalid code")
	}
}

func TestFormatIdempotent(t *testing.T) {
	formatted, err := Format("SW-ABCD-1234-WXYZ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if formatted != "SW-ABCD-1234-WXYZ" {
		t.Errorf("formatting a formatted code changed it: %q", formatted)
	}

	again, err := Format(formatted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != formatted {
		t.Errorf("Format not idempotent: %q != %q", again, formatted)
	}
}
