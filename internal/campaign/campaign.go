package campaign

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Campaign is a named tag bundle applied to contacts while it is active.
type Campaign struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	PersonTags  []string  `json:"person_tags"`
	CompanyTags []string  `json:"company_tags"`
	CreatedAt   time.Time `json:"created_at"`
}

// Normalize trims the name and deduplicates both tag lists (sorted, blanks dropped).
func (c Campaign) Normalize() Campaign {
	c.Name = strings.TrimSpace(c.Name)
	c.PersonTags = UniqueTags(c.PersonTags)
	c.CompanyTags = UniqueTags(c.CompanyTags)
	return c
}

// Validate checks a normalized campaign. Tag lists travel comma-joined, so a
// comma in the name or a tag is rejected.
func (c Campaign) Validate() error {
	if c.Name == "" {
		return errors.New("campaign name is required")
	}
	if strings.Contains(c.Name, ",") {
		return fmt.Errorf("campaign name must not contain a comma: %q", c.Name)
	}
	for _, t := range append(append([]string{}, c.PersonTags...), c.CompanyTags...) {
		if strings.Contains(t, ",") {
			return fmt.Errorf("campaign tag must not contain a comma: %q", t)
		}
	}
	return nil
}

// UniqueTags trims, drops blanks and deduplicates case-sensitively.
func UniqueTags(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Find returns the campaign with the given id, or nil. A dangling id is not an error.
func Find(list []Campaign, id string) *Campaign {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	for i := range list {
		if list[i].ID == id {
			c := list[i]
			return &c
		}
	}
	return nil
}
