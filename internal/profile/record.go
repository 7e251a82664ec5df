package profile

import (
	"fmt"
	"net/url"
	"strings"
)

// Record is the canonical contact extracted from a profile page. Empty and
// absent fields are equivalent.
type Record struct {
	URL             string `json:"url"`
	Name            string `json:"name,omitempty"`
	JobPosition     string `json:"job_position,omitempty"`
	Company         string `json:"company,omitempty"`
	City            string `json:"city,omitempty"`
	Email           string `json:"email,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Birthday        string `json:"birthday,omitempty"`
	PhotoURL        string `json:"photo_url,omitempty"`
	CompanyPhotoURL string `json:"company_photo_url,omitempty"`
	CompanyURL      string `json:"company_url,omitempty"`
	Website         string `json:"website,omitempty"`
	AdditionalInfo  string `json:"additional_info,omitempty"`
}

// IsEmpty reports whether every field except URL and Website is blank.
// Empty records are never sent to the CRM.
func (r Record) IsEmpty() bool {
	for _, v := range []string{
		r.Name, r.JobPosition, r.Company, r.City, r.Email, r.Phone,
		r.Birthday, r.PhotoURL, r.CompanyPhotoURL, r.CompanyURL, r.AdditionalInfo,
	} {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// EditableFields lists the field names accepted by Set, in display order.
var EditableFields = []string{
	"name", "job_position", "company", "city", "email", "phone", "birthday",
	"photo_url", "company_photo_url", "company_url", "website", "additional_info",
}

func (r *Record) fieldPtr(name string) *string {
	switch name {
	case "name":
		return &r.Name
	case "job_position":
		return &r.JobPosition
	case "company":
		return &r.Company
	case "city":
		return &r.City
	case "email":
		return &r.Email
	case "phone":
		return &r.Phone
	case "birthday":
		return &r.Birthday
	case "photo_url":
		return &r.PhotoURL
	case "company_photo_url":
		return &r.CompanyPhotoURL
	case "company_url":
		return &r.CompanyURL
	case "website":
		return &r.Website
	case "additional_info":
		return &r.AdditionalInfo
	}
	return nil
}

// Get returns the value of a named field.
func (r Record) Get(name string) (string, error) {
	p := r.fieldPtr(name)
	if p == nil {
		return "", fmt.Errorf("unknown profile field %q", name)
	}
	return *p, nil
}

// Set assigns a named field. The url field is the cache key and cannot be edited.
func (r *Record) Set(name, value string) error {
	p := r.fieldPtr(name)
	if p == nil {
		return fmt.Errorf("unknown profile field %q", name)
	}
	*p = value
	return nil
}

// CanonicalURL strips the query string, fragment, trailing slash and any
// "/overlay/..." suffix from a profile URL.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		if i := strings.IndexAny(raw, "?#"); i >= 0 {
			raw = raw[:i]
		}
		return strings.TrimRight(stripOverlay(raw), "/")
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	u.Path = strings.TrimRight(stripOverlay(u.Path), "/")
	u.RawPath = ""
	return u.String()
}

func stripOverlay(p string) string {
	if i := strings.Index(p, "/overlay/"); i >= 0 {
		return p[:i]
	}
	return strings.TrimSuffix(p, "/overlay")
}
