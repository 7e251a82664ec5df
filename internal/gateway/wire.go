// Package gateway holds the HTTP wire contract of the CRM gateway and a client for it.
package gateway

import (
	"strings"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/profile"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/tags"
)

// Credentials are the connection settings kept by the browser session.
type Credentials struct {
	ServerURL  string `json:"server_url" yaml:"server_url"`
	DBName     string `json:"db_name" yaml:"db_name"`
	Username   string `json:"username" yaml:"username"`
	APIToken   string `json:"api_token" yaml:"api_token"`
	BackendURL string `json:"backend_url" yaml:"backend_url"`
}

// Complete reports whether every value needed to reach the CRM is set.
func (c Credentials) Complete() bool {
	for _, v := range []string{c.ServerURL, c.DBName, c.Username, c.APIToken, c.BackendURL} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// Odoo is the credentials block embedded in every CRM request.
type Odoo struct {
	Server   string `json:"odoo_server" doc:"Odoo base URL"`
	DBName   string `json:"odoo_db_name" doc:"Odoo database name"`
	Username string `json:"username" doc:"Odoo login"`
	APIToken string `json:"api_token" doc:"Odoo API key or password"`
}

func (c Credentials) Odoo() Odoo {
	return Odoo{Server: c.ServerURL, DBName: c.DBName, Username: c.Username, APIToken: c.APIToken}
}

type ConnectionStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	UID     int64  `json:"uid"`
}

type CheckRequest struct {
	Odoo
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type CheckResponse struct {
	Exists bool   `json:"exists"`
	ID     *int64 `json:"id"`
}

// ContactRequest is the /create_contact body. Tag lists are comma-joined.
type ContactRequest struct {
	Odoo
	Name                  string `json:"name"`
	Company               string `json:"company,omitempty"`
	JobPosition           string `json:"job_position,omitempty"`
	Email                 string `json:"email,omitempty"`
	Phone                 string `json:"phone,omitempty"`
	Website               string `json:"website,omitempty"`
	City                  string `json:"city,omitempty"`
	Tags                  string `json:"tags,omitempty"`
	Photo                 string `json:"photo,omitempty"`
	AdditionalInfo        string `json:"additional_info,omitempty"`
	ContactType           string `json:"contact_type"`
	CompanyPhoto          string `json:"company_photo,omitempty"`
	CompanyLinkedInURL    string `json:"company_linkedin_url,omitempty"`
	CompanyTags           string `json:"company_tags,omitempty"`
	CompanyAdditionalInfo string `json:"company_additional_info,omitempty"`
}

const ContactTypeIndividual = "individual"

// NewContactRequest builds the upload body for a record and its computed tags.
func NewContactRequest(creds Credentials, rec profile.Record, ts tags.TagSet) ContactRequest {
	return ContactRequest{
		Odoo:               creds.Odoo(),
		Name:               rec.Name,
		Company:            rec.Company,
		JobPosition:        rec.JobPosition,
		Email:              rec.Email,
		Phone:              rec.Phone,
		Website:            rec.Website,
		City:               rec.City,
		Tags:               tags.JoinCSV(ts.Person),
		Photo:              rec.PhotoURL,
		AdditionalInfo:     withBirthday(rec.AdditionalInfo, rec.Birthday),
		ContactType:        ContactTypeIndividual,
		CompanyPhoto:       rec.CompanyPhotoURL,
		CompanyLinkedInURL: rec.CompanyURL,
		CompanyTags:        tags.JoinCSV(ts.Company),
	}
}

// withBirthday appends the birthday line when an edit left it out of info.
func withBirthday(info, birthday string) string {
	b := strings.TrimSpace(birthday)
	if b == "" || strings.Contains(info, b) {
		return info
	}
	line := "Birthday: " + b
	if strings.TrimSpace(info) == "" {
		return line
	}
	return info + "\n\n" + line
}

type ContactResponse struct {
	Status    string `json:"status"`
	PersonID  int64  `json:"person_id"`
	CompanyID *int64 `json:"company_id"`
}

// CampaignInput is the body of campaign create and update.
type CampaignInput struct {
	Name        string   `json:"name" minLength:"1"`
	PersonTags  []string `json:"person_tags,omitempty"`
	CompanyTags []string `json:"company_tags,omitempty"`
}

type DeleteResponse struct {
	Status     string `json:"status"`
	CampaignID string `json:"campaign_id"`
}
