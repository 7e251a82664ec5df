package profile

import (
	"net/url"
	"strings"
)

// Website is an external link listed on a profile.
type Website struct {
	URL   string `json:"url"`
	Label string `json:"label,omitempty"`
}

var redirectParams = []string{"url", "u", "target", "dest"}

// UnwrapRedirect returns the destination encoded in a redirect-style wrapper
// link (e.g. https://www.linkedin.com/redir/redirect?url=...). Other links are
// returned trimmed and otherwise unchanged.
func UnwrapRedirect(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	if !strings.Contains(u.Path, "redir") && !strings.HasSuffix(u.Host, "linkedin.com") {
		return raw
	}
	q := u.Query()
	for _, key := range redirectParams {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
				return v
			}
		}
	}
	return raw
}

// DedupeWebsites drops entries whose resolved URL was already seen, keeping
// first-seen order. Returned URLs are the resolved ones.
func DedupeWebsites(in []Website) []Website {
	seen := make(map[string]struct{}, len(in))
	out := make([]Website, 0, len(in))
	for _, w := range in {
		resolved := UnwrapRedirect(w.URL)
		if resolved == "" {
			continue
		}
		if _, ok := seen[resolved]; ok {
			continue
		}
		seen[resolved] = struct{}{}
		out = append(out, Website{URL: resolved, Label: strings.TrimSpace(w.Label)})
	}
	return out
}

// ComposeAdditionalInfo joins, in order, the deduplicated website list, the
// birthday line and the about text. Missing parts are skipped.
func ComposeAdditionalInfo(websites []Website, birthday, about string) string {
	var parts []string
	if sites := DedupeWebsites(websites); len(sites) > 0 {
		lines := []string{"Websites:"}
		for _, w := range sites {
			if w.Label != "" {
				lines = append(lines, "- "+w.URL+" ("+w.Label+")")
			} else {
				lines = append(lines, "- "+w.URL)
			}
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}
	if b := strings.TrimSpace(birthday); b != "" {
		parts = append(parts, "Birthday: "+b)
	}
	if a := strings.TrimSpace(about); a != "" {
		parts = append(parts, "About:\n"+a)
	}
	return strings.Join(parts, "\n\n")
}
