package profile

import (
	"strings"
	"testing"
)

func TestMergeOverlayWinsForContactFields(t *testing.T) {
	main := Record{URL: "https://x/in/a", Website: "https://x/in/a", Email: "", Name: "Ada", Phone: "111"}
	overlay := Record{Website: "https://x/in/a/clean", Email: "e@x.com", Name: "ignored"}

	got := Merge(main, overlay)
	if got.Website != "https://x/in/a/clean" {
		t.Fatalf("Website = %q; want %q", got.Website, "https://x/in/a/clean")
	}
	if got.Email != "e@x.com" {
		t.Fatalf("Email = %q; want %q", got.Email, "e@x.com")
	}
	if got.Phone != "111" {
		t.Fatalf("Phone = %q; want main value", got.Phone)
	}
	if got.Name != "Ada" {
		t.Fatalf("Name = %q; overlay must not override main-only fields", got.Name)
	}
}

func TestMergeWebsiteFallsBackToCanonicalMain(t *testing.T) {
	main := Record{URL: "https://x/in/a/?trk=1", Website: "https://x/in/a/overlay/contact-info/?trk=1"}
	got := Merge(main, Record{Website: "https://x/in/a"})
	if got.Website != "https://x/in/a" {
		t.Fatalf("Website = %q", got.Website)
	}
	if got.URL != "https://x/in/a" {
		t.Fatalf("URL = %q", got.URL)
	}
}

func TestMergeAdditionalInfoStrictlyLonger(t *testing.T) {
	main := Record{AdditionalInfo: "About:\nabc"}
	same := Record{AdditionalInfo: "About:\nxyz"}
	if got := Merge(main, same); got.AdditionalInfo != main.AdditionalInfo {
		t.Fatalf("equal length overlay replaced main: %q", got.AdditionalInfo)
	}
	longer := Record{AdditionalInfo: "Websites:\n- https://a\n\nAbout:\nabc"}
	if got := Merge(main, longer); got.AdditionalInfo != longer.AdditionalInfo {
		t.Fatalf("longer overlay not used: %q", got.AdditionalInfo)
	}
}

func TestDedupeWebsites(t *testing.T) {
	got := DedupeWebsites([]Website{{URL: "a"}, {URL: "a"}, {URL: "b"}})
	if len(got) != 2 || got[0].URL != "a" || got[1].URL != "b" {
		t.Fatalf("DedupeWebsites() = %+v; want [a b]", got)
	}
}

func TestDedupeWebsitesUnwrapsRedirects(t *testing.T) {
	got := DedupeWebsites([]Website{
		{URL: "https://www.linkedin.com/redir/redirect?url=https%3A%2F%2Fexample.com%2Fblog&urlhash=x", Label: "Blog"},
		{URL: "https://example.com/blog"},
		{URL: "https://other.dev"},
	})
	if len(got) != 2 {
		t.Fatalf("DedupeWebsites() = %+v; want 2 entries", got)
	}
	if got[0].URL != "https://example.com/blog" || got[0].Label != "Blog" {
		t.Fatalf("first entry = %+v", got[0])
	}
}

func TestComposeAdditionalInfoOrder(t *testing.T) {
	got := ComposeAdditionalInfo([]Website{{URL: "https://a.dev", Label: "Portfolio"}, {URL: "https://a.dev"}}, "May 3", "Builds engines.")
	iw := strings.Index(got, "Websites:")
	ib := strings.Index(got, "Birthday: May 3")
	ia := strings.Index(got, "About:\nBuilds engines.")
	if iw < 0 || ib < 0 || ia < 0 || !(iw < ib && ib < ia) {
		t.Fatalf("ComposeAdditionalInfo() order wrong: %q", got)
	}
	if strings.Count(got, "https://a.dev") != 1 {
		t.Fatalf("website not deduplicated: %q", got)
	}
	if ComposeAdditionalInfo(nil, "", "") != "" {
		t.Fatalf("empty compose should be empty")
	}
}
