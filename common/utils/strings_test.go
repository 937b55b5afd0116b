package utils

import "testing"

func TestTrim(t *testing.T) {
	if got := Trim("\x00\tvalue\n"); got != "value" {
		t.Fatalf("Trim = %q", got)
	}
}

func TestLeftJust(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"abc", 6, "abc   "},
		{"abcdef", 3, "abcdef"},
		{"", 2, "  "},
	}
	for _, tt := range tests {
		if got := LeftJust(tt.in, tt.width); got != tt.want {
			t.Errorf("LeftJust(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestTrimPackage(t *testing.T) {
	tests := map[string]string{
		"/usr/lib/system/libdyld.dylib":    "libdyld",
		"/System/Library/Frameworks/UIKit": "UIKit",
		`C:\Windows\System32\kernel32.dll`: "kernel32",
		"/opt/app/bin/":                    "bin",
		"libc.so":                          "libc",
	}
	for in, want := range tests {
		if got := TrimPackage(in); got != want {
			t.Errorf("TrimPackage(%q) = %q, want %q", in, got, want)
		}
	}
}
