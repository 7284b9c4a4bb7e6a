package language

import (
	"slices"
	"testing"
)

func TestToISO2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hi", "hi"},
		{"HI", "hi"},
		{"hin", "hi"},
		{"tam", "ta"},
		{"Telugu", "te"},
		{"kannada", "kn"},
		{"MALAYALAM", "ml"},
		{"fre", "fr"},
		{"bangla", "bn"},
		{"cantonese", "cn"},
		{"xy", "xy"},
		{"xyz", ""},
		{"", ""},
		{" ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToISO2(tt.input); got != tt.expected {
				t.Errorf("ToISO2(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"ml":  "Malayalam",
		"hin": "Hindi",
		"en":  "English",
		"xx":  "XX",
		"":    "Unknown",
	}
	for input, want := range tests {
		if got := DisplayName(input); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeList(t *testing.T) {
	got := NormalizeList([]string{"Tamil", "ta", " tel ", "", "kan", "marathi", "klingon"})
	want := []string{"ta", "te", "kn", "mr", "klingon"}
	if !slices.Equal(got, want) {
		t.Fatalf("NormalizeList = %v, want %v", got, want)
	}
	if NormalizeList(nil) != nil {
		t.Fatal("expected nil for empty input")
	}
}
