package fs

import "testing"

func TestIsUnsafePath(t *testing.T) {
	tests := []struct {
		path   string
		unsafe bool
	}{
		{".", true},                 // original dot
		{"..", true},                // original double dot
		{"./", true},                // dot with slash
		{"./.", true},               // multiple dots
		{"./../../foo/../..", true}, // complex path to root
		{"/", true},                 // root
		{"//", true},                // double slash
		{"//foo", true},             // path with double slash
		{"/foo", false},             // normal absolute path
		{"foo", false},              // normal relative path
		{"foo/bar", false},          // normal nested path
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsUnsafePath(tt.path); got != tt.unsafe {
				t.Errorf("IsUnsafePath(%q) = %v, want %v", tt.path, got, tt.unsafe)
			}
		})
	}
}

func TestIsWithin(t *testing.T) {
	tests := []struct {
		path, root string
		want       bool
	}{
		{"/home/u/.trash", "/home/u/.trash", true},
		{"/home/u/.trash/a", "/home/u/.trash", true},
		{"/home/u", "/home/u/.trash", false},
		{"/home/u/.trashcan", "/home/u/.trash", false},
		{"/home/u/..foo", "/home/u", true},
	}

	for _, tt := range tests {
		t.Run(tt.path+"_"+tt.root, func(t *testing.T) {
			if got := IsWithin(tt.path, tt.root); got != tt.want {
				t.Errorf("IsWithin(%q, %q) = %v, want %v", tt.path, tt.root, got, tt.want)
			}
		})
	}
}
