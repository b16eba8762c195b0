package models

import "testing"

func TestNormalizeTravelDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "iso form", input: "2025-03-14", want: "250314"},
		{name: "slash form", input: "14/03/2025", want: "250314"},
		{name: "compact form", input: "250314", want: "250314"},
		{name: "surrounding spaces", input: "  2025-03-14 ", want: "250314"},
		{name: "impossible calendar date", input: "2025-02-30", wantErr: true},
		{name: "wrong slash order", input: "2025/03/14", wantErr: true},
		{name: "too short compact", input: "2503", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "tomorrow", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeTravelDate(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %q", tc.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNormalizeTravelDateFormsAgree(t *testing.T) {
	forms := []string{"2026-11-02", "02/11/2026", "261102"}

	var first string
	for i, form := range forms {
		got, err := NormalizeTravelDate(form)
		if err != nil {
			t.Fatalf("form %q: unexpected error: %v", form, err)
		}
		if i == 0 {
			first = got
			continue
		}
		if got != first {
			t.Fatalf("form %q normalized to %q, expected %q", form, got, first)
		}
	}
}

func TestFormatClockTime(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "0830", want: "08:30"},
		{input: "2359", want: "23:59"},
		{input: "830", want: ""},
		{input: "08300", want: ""},
		{input: "8:30", want: ""},
		{input: "", want: ""},
		{input: "ab30", want: ""},
	}

	for _, tc := range tests {
		if got := FormatClockTime(tc.input); got != tc.want {
			t.Fatalf("FormatClockTime(%q): expected %q, got %q", tc.input, tc.want, got)
		}
	}
}
