package gatewayapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/apperr"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/campaign"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/campaign/store"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/gateway"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/odoo"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/profile"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/reconcile"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/tags"
)

type fakeReconciler struct {
	uid       int64
	err       error
	existence reconcile.Existence
	result    reconcile.Result

	creds    odoo.Credentials
	contact  reconcile.Contact
	name     string
	email    string
	upserted int
}

func (f *fakeReconciler) TestConnection(ctx context.Context, creds odoo.Credentials) (int64, error) {
	f.creds = creds
	return f.uid, f.err
}

func (f *fakeReconciler) CheckExists(ctx context.Context, creds odoo.Credentials, name, email string) (reconcile.Existence, error) {
	f.creds, f.name, f.email = creds, name, email
	return f.existence, f.err
}

func (f *fakeReconciler) Upsert(ctx context.Context, creds odoo.Credentials, c reconcile.Contact) (reconcile.Result, error) {
	f.creds, f.contact = creds, c
	f.upserted++
	return f.result, f.err
}

var odooCreds = gateway.Odoo{Server: "https://crm.example.com", DBName: "prod", Username: "bot@example.com", APIToken: "secret"}

type problem struct {
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &v), resp.Body.String())
	return v
}

func TestTestConnection(t *testing.T) {
	_, api := humatest.New(t)
	rec := &fakeReconciler{uid: 7}
	registerContactHandlers(api, rec)

	resp := api.Post("/test_connection", odooCreds)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	got := decode[gateway.ConnectionStatus](t, resp)
	assert.Equal(t, "success", got.Status)
	assert.Equal(t, int64(7), got.UID)
	assert.Equal(t, odoo.Credentials{Server: "https://crm.example.com", DB: "prod", Username: "bot@example.com", APIToken: "secret"}, rec.creds)
}

func TestTestConnectionRejected(t *testing.T) {
	_, api := humatest.New(t)
	registerContactHandlers(api, &fakeReconciler{err: apperr.New(apperr.CodeAuth, "Authentication failed", nil)})

	resp := api.Post("/test_connection", odooCreds)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Authentication failed", decode[problem](t, resp).Detail)
}

func TestCheckContact(t *testing.T) {
	_, api := humatest.New(t)
	rec := &fakeReconciler{existence: reconcile.Existence{Exists: true, ID: 42}}
	registerContactHandlers(api, rec)

	resp := api.Post("/check_contact", gateway.CheckRequest{Odoo: odooCreds, Name: "Ada Lovelace"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	got := decode[gateway.CheckResponse](t, resp)
	assert.True(t, got.Exists)
	require.NotNil(t, got.ID)
	assert.Equal(t, int64(42), *got.ID)
	assert.Equal(t, "Ada Lovelace", rec.name)

	rec.existence = reconcile.Existence{}
	resp = api.Post("/check_contact", gateway.CheckRequest{Odoo: odooCreds, Email: "ada@example.com"})
	require.Equal(t, http.StatusOK, resp.Code)
	got = decode[gateway.CheckResponse](t, resp)
	assert.False(t, got.Exists)
	assert.Nil(t, got.ID)
}

func TestCreateContact(t *testing.T) {
	_, api := humatest.New(t)
	rec := &fakeReconciler{result: reconcile.Result{PersonID: 11, CompanyID: 5, PersonCreated: true}}
	registerContactHandlers(api, rec)

	resp := api.Post("/create_contact", gateway.ContactRequest{
		Odoo:               odooCreds,
		Name:               "Ada Lovelace",
		Company:            "Analytical Engines",
		Tags:               "Lead, Q4,Lead",
		CompanyTags:        "Prospect",
		Photo:              "https://media.example.com/ada.jpg",
		CompanyLinkedInURL: "https://www.linkedin.com/company/ae/",
		ContactType:        gateway.ContactTypeIndividual,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	got := decode[gateway.ContactResponse](t, resp)
	assert.Equal(t, "success", got.Status)
	assert.Equal(t, int64(11), got.PersonID)
	require.NotNil(t, got.CompanyID)
	assert.Equal(t, int64(5), *got.CompanyID)

	assert.Equal(t, []string{"Lead", "Q4"}, rec.contact.PersonTags)
	assert.Equal(t, []string{"Prospect"}, rec.contact.CompanyTags)
	assert.Equal(t, "https://media.example.com/ada.jpg", rec.contact.PhotoURL)
	assert.Equal(t, "https://www.linkedin.com/company/ae/", rec.contact.CompanyURL)
}

func TestCreateContactWithoutCompany(t *testing.T) {
	_, api := humatest.New(t)
	registerContactHandlers(api, &fakeReconciler{result: reconcile.Result{PersonID: 3}})

	resp := api.Post("/create_contact", gateway.ContactRequest{Odoo: odooCreds, Name: "Solo", ContactType: gateway.ContactTypeIndividual})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Nil(t, decode[gateway.ContactResponse](t, resp).CompanyID)
}

func TestCreateContactErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"remote fault", apperr.New(apperr.CodeRemote, "Odoo Error: duplicate email", nil), http.StatusInternalServerError, "Odoo Error: duplicate email"},
		{"empty profile", apperr.New(apperr.CodeEmptyProfile, "profile has no data", nil), http.StatusUnprocessableEntity, "profile has no data"},
		{"unreachable", apperr.New(apperr.CodeConnection, "could not reach Odoo", nil), http.StatusBadGateway, "could not reach Odoo"},
		{"validation", apperr.Validation("name is required"), http.StatusBadRequest, "name is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, api := humatest.New(t)
			registerContactHandlers(api, &fakeReconciler{err: tc.err})

			resp := api.Post("/create_contact", gateway.ContactRequest{Odoo: odooCreds, Name: "Ada", ContactType: gateway.ContactTypeIndividual})
			require.Equal(t, tc.status, resp.Code, resp.Body.String())
			assert.Equal(t, tc.detail, decode[problem](t, resp).Detail)
		})
	}
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "campaigns.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCampaignCRUD(t *testing.T) {
	_, api := humatest.New(t)
	registerCampaignHandlers(api, openStore(t))

	resp := api.Get("/campaigns")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decode[[]campaign.Campaign](t, resp))

	resp = api.Post("/campaigns", gateway.CampaignInput{Name: "Q4", PersonTags: []string{"Target", "Lead", "Lead"}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	created := decode[campaign.Campaign](t, resp)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, []string{"Lead", "Target"}, created.PersonTags)

	resp = api.Put("/campaigns/"+created.ID, gateway.CampaignInput{Name: "Q4 Outreach", CompanyTags: []string{"Prospect"}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decode[campaign.Campaign](t, resp)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Q4 Outreach", updated.Name)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))

	resp = api.Get("/campaigns")
	require.Equal(t, http.StatusOK, resp.Code)
	list := decode[[]campaign.Campaign](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "Q4 Outreach", list[0].Name)

	resp = api.Delete("/campaigns/" + created.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, gateway.DeleteResponse{Status: "success", CampaignID: created.ID}, decode[gateway.DeleteResponse](t, resp))
}

func TestCampaignErrors(t *testing.T) {
	_, api := humatest.New(t)
	registerCampaignHandlers(api, openStore(t))

	resp := api.Put("/campaigns/missing", gateway.CampaignInput{Name: "X"})
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Campaign not found", decode[problem](t, resp).Detail)

	require.Equal(t, http.StatusOK, api.Post("/campaigns", gateway.CampaignInput{Name: "Q4"}).Code)
	resp = api.Post("/campaigns", gateway.CampaignInput{Name: "Q4"})
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

	resp = api.Post("/campaigns", map[string]any{"name": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code, resp.Body.String())
}

func TestCORS(t *testing.T) {
	h := NewServer(&fakeReconciler{}, openStore(t), Options{AllowedOrigins: []string{"https://www.linkedin.com", "chrome-extension://abc"}})

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/create_contact", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	rr := preflight("chrome-extension://abc")
	assert.Equal(t, "chrome-extension://abc", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))

	rr = preflight("https://evil.example.com")
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthAndDocs(t *testing.T) {
	h := NewServer(&fakeReconciler{}, openStore(t), Options{})

	for path, want := range map[string]string{"/health": `"ok"`, "/docs": "elements-api"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rr.Code, path)
		assert.Contains(t, rr.Body.String(), want, path)
	}
}

func TestEmptyProfileAgreesAcrossWire(t *testing.T) {
	for _, field := range profile.EditableFields {
		t.Run(field, func(t *testing.T) {
			rec := profile.Record{URL: "https://www.linkedin.com/in/x"}
			require.NoError(t, rec.Set(field, "value"))

			req := gateway.NewContactRequest(gateway.Credentials{}, rec, tags.TagSet{})
			assert.Equal(t, rec.IsEmpty(), contactFrom(req).Empty())
		})
	}

	blank := gateway.NewContactRequest(gateway.Credentials{}, profile.Record{Website: "https://www.linkedin.com/in/x"}, tags.TagSet{})
	assert.True(t, contactFrom(blank).Empty())
}
