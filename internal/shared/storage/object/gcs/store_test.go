package gcs

import "testing"

func TestPrefixRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		key    string
		object string
	}{
		{name: "no prefix", prefix: "", key: "user/shot.png", object: "user/shot.png"},
		{name: "prefix", prefix: "uploads", key: "user/shot.png", object: "uploads/user/shot.png"},
		{name: "slashy prefix", prefix: "/uploads/", key: "/user/shot.png", object: "uploads/user/shot.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applyPrefix(tt.prefix, tt.key)
			if got != tt.object {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.object)
			}
			back, ok := trimPrefix(tt.prefix, got)
			if !ok {
				t.Fatalf("trimPrefix(%q, %q) reported outside prefix", tt.prefix, got)
			}
			if want := applyPrefix("", tt.key); back != want {
				t.Fatalf("trimPrefix = %q, want %q", back, want)
			}
		})
	}
}

func TestKeyForObjectRejectsForeignObjects(t *testing.T) {
	s := &Store{bucket: "journey-uploads", prefix: "uploads"}
	if _, ok := s.KeyForObject("other-bucket", "uploads/a.pdf"); ok {
		t.Fatal("expected other bucket to be rejected")
	}
	if _, ok := s.KeyForObject("journey-uploads", "exports/a.pdf"); ok {
		t.Fatal("expected object outside prefix to be rejected")
	}
	key, ok := s.KeyForObject("journey-uploads", "uploads/u/a.pdf")
	if !ok || key != "u/a.pdf" {
		t.Fatalf("unexpected key %q ok=%v", key, ok)
	}
}
