// Package reconcile finds, creates and updates Odoo partners for an uploaded
// LinkedIn profile.
package reconcile

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/apperr"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/odoo"
)

// CRM is the partner surface of an authenticated Odoo session.
type CRM interface {
	UID() int64
	FindCompany(ctx context.Context, name string) (int64, error)
	FindPersons(ctx context.Context, name, email string, limit int) ([]int64, error)
	ParentID(ctx context.Context, id int64) (int64, error)
	CreatePartner(ctx context.Context, vals odoo.Values) (int64, error)
	WritePartner(ctx context.Context, id int64, vals odoo.Values) error
	EnsureTags(ctx context.Context, names []string) ([]int64, error)
}

// Connector authenticates credentials into a CRM session.
type Connector interface {
	Connect(ctx context.Context, creds odoo.Credentials) (CRM, error)
}

// ConnectorFunc adapts a function to Connector.
type ConnectorFunc func(ctx context.Context, creds odoo.Credentials) (CRM, error)

func (f ConnectorFunc) Connect(ctx context.Context, creds odoo.Credentials) (CRM, error) {
	return f(ctx, creds)
}

// OdooConnector wraps an *odoo.Connector.
func OdooConnector(c *odoo.Connector) Connector {
	return ConnectorFunc(func(ctx context.Context, creds odoo.Credentials) (CRM, error) {
		sess, err := c.Connect(ctx, creds)
		if err != nil {
			return nil, err
		}
		return sess, nil
	})
}

// Images downloads pictures as base64.
type Images interface {
	FetchBase64(ctx context.Context, url string) (string, error)
}

// Contact is the server-side view of one upload.
type Contact struct {
	Name                  string
	Company               string
	JobPosition           string
	Email                 string
	Phone                 string
	Website               string
	City                  string
	PhotoURL              string
	AdditionalInfo        string
	ContactType           string
	CompanyPhotoURL       string
	CompanyURL            string
	CompanyAdditionalInfo string
	PersonTags            []string
	CompanyTags           []string
}

// Empty reports whether nothing but the profile website was supplied. The
// field list matches profile.Record.IsEmpty on the uploader side.
func (c Contact) Empty() bool {
	for _, v := range []string{
		c.Name, c.Company, c.JobPosition, c.Email, c.Phone, c.City,
		c.PhotoURL, c.CompanyPhotoURL, c.CompanyURL, c.AdditionalInfo,
	} {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Result identifies the partners an upsert touched.
type Result struct {
	PersonID      int64
	CompanyID     int64
	PersonCreated bool
}

// Existence is the answer of CheckExists.
type Existence struct {
	Exists bool
	ID     int64
}

type Service struct {
	connector Connector
	images    Images
}

func NewService(connector Connector, images Images) *Service {
	return &Service{connector: connector, images: images}
}

// TestConnection authenticates and returns the uid.
func (s *Service) TestConnection(ctx context.Context, creds odoo.Credentials) (int64, error) {
	crm, err := s.connector.Connect(ctx, creds)
	if err != nil {
		return 0, err
	}
	return crm.UID(), nil
}

// CheckExists looks for an individual contact by name, then by email.
func (s *Service) CheckExists(ctx context.Context, creds odoo.Credentials, name, email string) (Existence, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" && email == "" {
		return Existence{}, nil
	}
	crm, err := s.connector.Connect(ctx, creds)
	if err != nil {
		return Existence{}, err
	}
	id, err := findPerson(ctx, crm, name, email)
	if err != nil {
		return Existence{}, err
	}
	return Existence{Exists: id != 0, ID: id}, nil
}

// findPerson resolves a person by name; several matches are narrowed by
// email, no match falls back to email alone. Lowest id wins ties.
func findPerson(ctx context.Context, crm CRM, name, email string) (int64, error) {
	if name != "" {
		ids, err := crm.FindPersons(ctx, name, "", 2)
		if err != nil {
			return 0, err
		}
		switch {
		case len(ids) == 1:
			return ids[0], nil
		case len(ids) > 1:
			if email != "" {
				narrowed, err := crm.FindPersons(ctx, name, email, 1)
				if err != nil {
					return 0, err
				}
				if len(narrowed) > 0 {
					return narrowed[0], nil
				}
			}
			return lowest(ids), nil
		}
	}
	if email == "" {
		return 0, nil
	}
	ids, err := crm.FindPersons(ctx, "", email, 1)
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	return ids[0], nil
}

func lowest(ids []int64) int64 {
	low := ids[0]
	for _, id := range ids[1:] {
		if id < low {
			low = id
		}
	}
	return low
}

// Upsert finds or creates the company, then finds, updates or creates the
// person and links it. Tags are only ever added. Repeating the call with the
// same contact converges on the same partners.
func (s *Service) Upsert(ctx context.Context, creds odoo.Credentials, c Contact) (Result, error) {
	c = trimContact(c)
	if c.Empty() {
		return Result{}, apperr.New(apperr.CodeEmptyProfile, "profile is empty, reload the page and extract again", nil)
	}
	if c.Name == "" {
		return Result{}, apperr.Validation("name is required")
	}
	crm, err := s.connector.Connect(ctx, creds)
	if err != nil {
		return Result{}, err
	}

	var res Result
	if c.Company != "" {
		res.CompanyID, err = s.upsertCompany(ctx, crm, c)
		if err != nil {
			return Result{}, err
		}
	}

	res.PersonID, res.PersonCreated, err = s.upsertPerson(ctx, crm, c, res.CompanyID)
	if err != nil {
		if res.CompanyID != 0 {
			slog.Warn("person upsert failed after company resolved; company left for next attempt",
				"company_id", res.CompanyID, "company", c.Company, "error", err)
		}
		return Result{}, err
	}
	slog.Info("contact upserted", "person_id", res.PersonID, "company_id", res.CompanyID, "created", res.PersonCreated)
	return res, nil
}

func (s *Service) upsertCompany(ctx context.Context, crm CRM, c Contact) (int64, error) {
	id, err := crm.FindCompany(ctx, c.Company)
	if err != nil {
		return 0, err
	}

	vals := odoo.Values{}
	if c.CompanyURL != "" {
		vals["website"] = c.CompanyURL
	}
	if c.CompanyAdditionalInfo != "" {
		vals["comment"] = c.CompanyAdditionalInfo
	}
	if img := s.image(ctx, c.CompanyPhotoURL); img != "" {
		vals["image_1920"] = img
	}
	tagIDs, err := crm.EnsureTags(ctx, c.CompanyTags)
	if err != nil {
		return 0, err
	}
	if len(tagIDs) > 0 {
		vals["category_id"] = odoo.LinkTags(tagIDs)
	}

	if id != 0 {
		if err := crm.WritePartner(ctx, id, vals); err != nil {
			return 0, err
		}
		slog.Debug("company updated", "company_id", id, "company", c.Company)
		return id, nil
	}

	vals["name"] = c.Company
	vals["is_company"] = true
	// a company city would propagate to its children
	vals["city"] = false
	id, err = crm.CreatePartner(ctx, vals)
	if err != nil {
		return 0, err
	}
	slog.Info("company created", "company_id", id, "company", c.Company)
	return id, nil
}

func (s *Service) upsertPerson(ctx context.Context, crm CRM, c Contact, companyID int64) (int64, bool, error) {
	id, err := findPerson(ctx, crm, c.Name, c.Email)
	if err != nil {
		return 0, false, err
	}

	vals := odoo.Values{}
	for field, v := range map[string]string{
		"function": c.JobPosition,
		"email":    c.Email,
		"phone":    c.Phone,
		"website":  c.Website,
		"city":     c.City,
		"comment":  c.AdditionalInfo,
	} {
		if v != "" {
			vals[field] = v
		}
	}
	if img := s.image(ctx, c.PhotoURL); img != "" {
		vals["image_1920"] = img
	}
	tagIDs, err := crm.EnsureTags(ctx, c.PersonTags)
	if err != nil {
		return 0, false, err
	}
	if len(tagIDs) > 0 {
		vals["category_id"] = odoo.LinkTags(tagIDs)
	}

	created := false
	if id != 0 {
		if err := crm.WritePartner(ctx, id, vals); err != nil {
			return 0, false, err
		}
	} else {
		vals["name"] = c.Name
		vals["is_company"] = false
		if id, err = crm.CreatePartner(ctx, vals); err != nil {
			return 0, false, err
		}
		created = true
	}

	if companyID == 0 {
		return id, created, nil
	}
	if !created {
		parent, err := crm.ParentID(ctx, id)
		if err != nil {
			return 0, false, err
		}
		if parent == companyID {
			return id, created, nil
		}
	}
	// parent_id goes in its own write so Odoo's onchange does not clobber city
	if err := crm.WritePartner(ctx, id, odoo.Values{"parent_id": companyID}); err != nil {
		return 0, false, err
	}
	return id, created, nil
}

func (s *Service) image(ctx context.Context, url string) string {
	if s.images == nil || url == "" {
		return ""
	}
	img, err := s.images.FetchBase64(ctx, url)
	if err != nil {
		slog.Warn("image download failed", "url", url, "error", err)
		return ""
	}
	return img
}

func trimContact(c Contact) Contact {
	for _, f := range []*string{
		&c.Name, &c.Company, &c.JobPosition, &c.Email, &c.Phone, &c.Website, &c.City,
		&c.PhotoURL, &c.AdditionalInfo, &c.ContactType, &c.CompanyPhotoURL, &c.CompanyURL, &c.CompanyAdditionalInfo,
	} {
		*f = strings.TrimSpace(*f)
	}
	return c
}
