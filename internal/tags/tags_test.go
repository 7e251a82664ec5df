package tags

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/campaign"
)

func TestComputeUnion(t *testing.T) {
	c := &campaign.Campaign{Name: "Q4", PersonTags: []string{"Lead", "Manual"}, CompanyTags: []string{"Prospect"}}
	got := Compute([]string{"Manual", " "}, []string{"Vendor"}, c)

	if want := NewSet("Manual", "Lead", "Q4"); !got.Person.Equal(want) {
		t.Fatalf("Person = %v; want %v", got.Person.Sorted(), want.Sorted())
	}
	if want := NewSet("Vendor", "Prospect", "Q4"); !got.Company.Equal(want) {
		t.Fatalf("Company = %v; want %v", got.Company.Sorted(), want.Sorted())
	}
}

func TestComputeWithoutCampaign(t *testing.T) {
	got := Compute([]string{"a", "a"}, nil, nil)
	if !got.Person.Equal(NewSet("a")) || len(got.Company) != 0 {
		t.Fatalf("Compute() = %+v", got)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	c := &campaign.Campaign{Name: "Q4", PersonTags: []string{"Lead"}, CompanyTags: []string{"Target"}}
	manual := []string{"Manual", "Lead"}

	once := Compute(manual, []string{"Acme"}, c)
	twice := Apply(once, c)
	if !once.Person.Equal(twice.Person) || !once.Company.Equal(twice.Company) {
		t.Fatalf("Apply twice changed the set: %+v vs %+v", once, twice)
	}
}

func TestTransitionBetweenCampaigns(t *testing.T) {
	a := &campaign.Campaign{Name: "Q4", PersonTags: []string{"Lead"}}
	b := &campaign.Campaign{Name: "Q1", PersonTags: []string{"Hot"}}
	start := TagSet{Person: NewSet("Manual", "Lead", "Q4"), Company: NewSet("Q4")}

	got := Transition(start, a, b)
	if want := NewSet("Manual", "Hot", "Q1"); !got.Person.Equal(want) {
		t.Fatalf("Person = %v; want %v", got.Person.Sorted(), want.Sorted())
	}
	if want := NewSet("Q1"); !got.Company.Equal(want) {
		t.Fatalf("Company = %v; want %v", got.Company.Sorted(), want.Sorted())
	}
}

func TestTransitionToNone(t *testing.T) {
	a := &campaign.Campaign{Name: "Q4", PersonTags: []string{"Lead"}, CompanyTags: []string{"Target"}}
	start := Compute([]string{"Manual"}, []string{"Acme"}, a)

	got := Transition(start, a, nil)
	if want := NewSet("Manual"); !got.Person.Equal(want) {
		t.Fatalf("Person = %v; want %v", got.Person.Sorted(), want.Sorted())
	}
	if want := NewSet("Acme"); !got.Company.Equal(want) {
		t.Fatalf("Company = %v; want %v", got.Company.Sorted(), want.Sorted())
	}
}

func TestTransitionKeepsSharedTags(t *testing.T) {
	a := &campaign.Campaign{Name: "Q4", PersonTags: []string{"Lead", "Shared"}}
	b := &campaign.Campaign{Name: "Q1", PersonTags: []string{"Shared"}}
	got := Transition(Compute(nil, nil, a), a, b)
	if want := NewSet("Shared", "Q1"); !got.Person.Equal(want) {
		t.Fatalf("Person = %v; want %v", got.Person.Sorted(), want.Sorted())
	}
}

func TestTransitionSameCampaignIsIdempotent(t *testing.T) {
	a := &campaign.Campaign{Name: "Q4", PersonTags: []string{"Lead"}}
	start := Compute([]string{"Manual"}, nil, a)
	got := Transition(Transition(start, a, a), a, a)
	if !got.Person.Equal(start.Person) {
		t.Fatalf("Person = %v; want %v", got.Person.Sorted(), start.Person.Sorted())
	}
}

func TestCSVRoundTrip(t *testing.T) {
	s := NewSet("b", "a", "b")
	if got := JoinCSV(s); got != "a,b" {
		t.Fatalf("JoinCSV() = %q; want %q", got, "a,b")
	}
	if got := SplitCSV(" a, b,,a "); !got.Equal(NewSet("a", "b")) {
		t.Fatalf("SplitCSV() = %v", got.Sorted())
	}
	if JoinCSV(Set{}) != "" {
		t.Fatalf("JoinCSV(empty) should be empty")
	}
}

func TestSetJSON(t *testing.T) {
	data, err := json.Marshal(TagSet{Person: NewSet("b", "a"), Company: NewSet()})
	if err != nil {
		t.Fatalf("json.Marshal() failed: %v", err)
	}
	if string(data) != `{"person_tags":["a","b"],"company_tags":[]}` {
		t.Fatalf("json = %s", data)
	}
	var ts TagSet
	if err := json.Unmarshal(data, &ts); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if !ts.Person.Equal(NewSet("a", "b")) {
		t.Fatalf("Person = %v", ts.Person.Sorted())
	}
}

func TestSetSchemaIsUniqueStringArray(t *testing.T) {
	registry := huma.NewMapRegistry("#/components/schemas/", huma.DefaultSchemaNamer)
	s := huma.SchemaFromType(registry, reflect.TypeOf(TagSet{}))
	person := s.Properties["person_tags"]
	if person == nil {
		t.Fatalf("no person_tags property in %+v", s.Properties)
	}
	if person.Type != huma.TypeArray || !person.UniqueItems {
		t.Fatalf("person_tags schema = %+v; want unique array", person)
	}
	if person.Items == nil || person.Items.Type != huma.TypeString {
		t.Fatalf("person_tags items = %+v; want string", person.Items)
	}
}
