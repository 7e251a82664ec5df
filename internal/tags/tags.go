// Package tags computes the person and company tag sets sent to the CRM from
// manual tags and the active campaign.
package tags

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/campaign"
)

// Set is an unordered set of case-sensitive tag names.
type Set map[string]struct{}

// NewSet builds a set from values, trimming and dropping blanks.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	s.Add(values...)
	return s
}

func (s Set) Add(values ...string) {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			s[v] = struct{}{}
		}
	}
}

func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Union returns a new set with the members of s and o.
func (s Set) Union(o Set) Set {
	out := make(Set, len(s)+len(o))
	for v := range s {
		out[v] = struct{}{}
	}
	for v := range o {
		out[v] = struct{}{}
	}
	return out
}

// Minus returns a new set with the members of s that are not in o.
func (s Set) Minus(o Set) Set {
	out := make(Set, len(s))
	for v := range s {
		if !o.Has(v) {
			out[v] = struct{}{}
		}
	}
	return out
}

func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for v := range s {
		if !o.Has(v) {
			return false
		}
	}
	return true
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (s Set) MarshalJSON() ([]byte, error) { return json.Marshal(s.Sorted()) }

func (s *Set) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*s = NewSet(list...)
	return nil
}

// Schema documents a Set the way it is encoded: a list of unique strings.
func (Set) Schema(huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type:        huma.TypeArray,
		Items:       &huma.Schema{Type: huma.TypeString},
		UniqueItems: true,
	}
}

// TagSet holds the person and company partitions.
type TagSet struct {
	Person  Set `json:"person_tags"`
	Company Set `json:"company_tags"`
}

// Contribution is what a campaign adds to each partition: its declared tags
// plus its own name. A nil campaign contributes nothing.
func Contribution(c *campaign.Campaign) TagSet {
	if c == nil {
		return TagSet{Person: Set{}, Company: Set{}}
	}
	ts := TagSet{Person: NewSet(c.PersonTags...), Company: NewSet(c.CompanyTags...)}
	ts.Person.Add(c.Name)
	ts.Company.Add(c.Name)
	return ts
}

// Compute is manual ∪ campaign contribution, per partition.
func Compute(manualPerson, manualCompany []string, active *campaign.Campaign) TagSet {
	contrib := Contribution(active)
	return TagSet{
		Person:  NewSet(manualPerson...).Union(contrib.Person),
		Company: NewSet(manualCompany...).Union(contrib.Company),
	}
}

// Apply adds a campaign's contribution to an existing tag set. Applying the
// same campaign again is a no-op.
func Apply(ts TagSet, active *campaign.Campaign) TagSet {
	return Compute(ts.Person.Sorted(), ts.Company.Sorted(), active)
}

// Transition moves a tag set from campaign from to campaign to (either may be
// nil). Values contributed by from and not by to are removed, then to's
// contribution is added. Removal is by text: a manual tag equal to a
// departing campaign tag is removed as well.
func Transition(ts TagSet, from, to *campaign.Campaign) TagSet {
	leaving := Contribution(from)
	arriving := Contribution(to)
	return TagSet{
		Person:  orEmpty(ts.Person).Minus(leaving.Person.Minus(arriving.Person)).Union(arriving.Person),
		Company: orEmpty(ts.Company).Minus(leaving.Company.Minus(arriving.Company)).Union(arriving.Company),
	}
}

func orEmpty(s Set) Set {
	if s == nil {
		return Set{}
	}
	return s
}

// JoinCSV renders a set for the gateway wire format. The set is already
// deduplicated, so the remote side never sees repeats.
func JoinCSV(s Set) string {
	return strings.Join(s.Sorted(), ",")
}

// SplitCSV parses a comma-joined tag list into a set.
func SplitCSV(csv string) Set {
	return NewSet(strings.Split(csv, ",")...)
}
