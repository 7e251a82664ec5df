package profile

import "testing"

func TestIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want bool
	}{
		{"url only", Record{URL: "https://www.linkedin.com/in/a"}, true},
		{"url and website", Record{URL: "https://www.linkedin.com/in/a", Website: "https://www.linkedin.com/in/a"}, true},
		{"whitespace name", Record{URL: "u", Name: "   "}, true},
		{"name", Record{URL: "u", Name: "Ada Lovelace"}, false},
		{"city only", Record{URL: "u", City: "London"}, false},
		{"additional info only", Record{URL: "u", AdditionalInfo: "About:\nx"}, false},
		{"company photo only", Record{CompanyPhotoURL: "https://img"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.IsEmpty(); got != tt.want {
				t.Fatalf("IsEmpty() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://www.linkedin.com/in/ada/?trk=abc", "https://www.linkedin.com/in/ada"},
		{"https://www.linkedin.com/in/ada/overlay/contact-info/", "https://www.linkedin.com/in/ada"},
		{"https://www.linkedin.com/in/ada/overlay/contact-info/?x=1#top", "https://www.linkedin.com/in/ada"},
		{"https://x/in/a/clean", "https://x/in/a/clean"},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := CanonicalURL(tt.in); got != tt.want {
			t.Fatalf("CanonicalURL(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestSetAndGet(t *testing.T) {
	var r Record
	for _, f := range EditableFields {
		if err := r.Set(f, "v-"+f); err != nil {
			t.Fatalf("Set(%q) error = %v", f, err)
		}
		got, err := r.Get(f)
		if err != nil {
			t.Fatalf("Get(%q) error = %v", f, err)
		}
		if got != "v-"+f {
			t.Fatalf("Get(%q) = %q", f, got)
		}
	}
	if err := r.Set("url", "x"); err == nil {
		t.Fatalf("Set(url) = nil; want error")
	}
}
