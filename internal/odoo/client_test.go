package odoo

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/apperr"
)

var (
	methodNameRe = regexp.MustCompile(`<methodName>([^<]+)</methodName>`)
	stringRe     = regexp.MustCompile(`<string>([^<]*)</string>`)
)

// rpcCall is a decoded view of an XML-RPC request: the method name and every
// string parameter in document order.
type rpcCall struct {
	Path    string
	Method  string
	Strings []string
	Body    string
}

// Model and Op are only meaningful for execute_kw calls.
func (c rpcCall) Model() string { return c.at(2) }
func (c rpcCall) Op() string    { return c.at(3) }

func (c rpcCall) at(i int) string {
	if i < len(c.Strings) {
		return c.Strings[i]
	}
	return ""
}

type fakeOdoo struct {
	mu     sync.Mutex
	calls  []rpcCall
	handle func(rpcCall) string
}

func (f *fakeOdoo) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	body := string(raw)
	call := rpcCall{Path: r.URL.Path, Body: body}
	if m := methodNameRe.FindStringSubmatch(body); m != nil {
		call.Method = m[1]
	}
	for _, m := range stringRe.FindAllStringSubmatch(body, -1) {
		call.Strings = append(call.Strings, m[1])
	}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "text/xml")
	_, _ = io.WriteString(w, `<?xml version="1.0"?>`+f.handle(call))
}

func (f *fakeOdoo) executed(model, op string) []rpcCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []rpcCall
	for _, c := range f.calls {
		if c.Method == "execute_kw" && c.Model() == model && c.Op() == op {
			out = append(out, c)
		}
	}
	return out
}

func respond(value string) string {
	return `<methodResponse><params><param><value>` + value + `</value></param></params></methodResponse>`
}

func intValue(n int) string { return fmt.Sprintf("<int>%d</int>", n) }

func intArray(ns ...int) string {
	var b strings.Builder
	b.WriteString("<array><data>")
	for _, n := range ns {
		b.WriteString("<value>" + intValue(n) + "</value>")
	}
	b.WriteString("</data></array>")
	return b.String()
}

func fault(code int, msg string) string {
	return fmt.Sprintf(`<methodResponse><fault><value><struct>`+
		`<member><name>faultCode</name><value><int>%d</int></value></member>`+
		`<member><name>faultString</name><value><string>%s</string></value></member>`+
		`</struct></value></fault></methodResponse>`, code, msg)
}

func startOdoo(t *testing.T, handle func(rpcCall) string) (*fakeOdoo, Credentials) {
	t.Helper()
	f := &fakeOdoo{handle: func(c rpcCall) string {
		if c.Method == "authenticate" {
			return respond(intValue(7))
		}
		return handle(c)
	}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, Credentials{Server: srv.URL + "/", DB: "crm", Username: "bot@example.com", APIToken: "secret"}
}

func TestConnectAuthenticates(t *testing.T) {
	f, creds := startOdoo(t, func(rpcCall) string { return respond("<boolean>1</boolean>") })

	sess, err := NewConnector().Connect(context.Background(), creds)
	require.NoError(t, err)
	assert.Equal(t, int64(7), sess.UID())

	require.NotEmpty(t, f.calls)
	assert.Equal(t, "/xmlrpc/2/common", f.calls[0].Path)
	assert.Equal(t, []string{"crm", "bot@example.com", "secret"}, f.calls[0].Strings)
}

func TestConnectRejected(t *testing.T) {
	srv := httptest.NewServer(&fakeOdoo{handle: func(rpcCall) string {
		return respond("<boolean>0</boolean>")
	}})
	defer srv.Close()

	_, err := NewConnector().Connect(context.Background(), Credentials{Server: srv.URL, DB: "crm", Username: "u", APIToken: "bad"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeAuth))
	assert.Contains(t, err.Error(), "Authentication failed")
}

func TestConnectUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewConnector().Connect(context.Background(), Credentials{Server: url, DB: "crm", Username: "u"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeConnection))
}

func TestConnectValidatesCredentials(t *testing.T) {
	_, err := NewConnector().Connect(context.Background(), Credentials{DB: "crm", Username: "u"})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

func TestFindCompanyUsesCaseInsensitiveMatch(t *testing.T) {
	f, creds := startOdoo(t, func(c rpcCall) string {
		return respond(intArray(42))
	})
	sess, err := NewConnector(WithRateLimit(100)).Connect(context.Background(), creds)
	require.NoError(t, err)

	id, err := sess.FindCompany(context.Background(), "  Acme  ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	searches := f.executed("res.partner", "search")
	require.Len(t, searches, 1)
	assert.Contains(t, searches[0].Strings, "=ilike")
	assert.Contains(t, searches[0].Strings, "Acme")
	assert.Contains(t, searches[0].Body, "<name>limit</name>")

	_, err = sess.FindCompany(context.Background(), `50%_Co\Ltd`)
	require.NoError(t, err)
	searches = f.executed("res.partner", "search")
	require.Len(t, searches, 2)
	assert.Contains(t, searches[1].Strings, `50\%\_Co\\Ltd`)
	assert.NotContains(t, searches[1].Strings, `50%_Co\Ltd`)
}

func TestFindPersonsRequiresACriterion(t *testing.T) {
	f, creds := startOdoo(t, func(rpcCall) string { return respond(intArray()) })
	sess, err := NewConnector().Connect(context.Background(), creds)
	require.NoError(t, err)

	ids, err := sess.FindPersons(context.Background(), " ", "", 2)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Empty(t, f.executed("res.partner", "search"))
}

func TestFaultIsRemoteError(t *testing.T) {
	_, creds := startOdoo(t, func(rpcCall) string { return fault(2, "duplicate email") })
	sess, err := NewConnector().Connect(context.Background(), creds)
	require.NoError(t, err)

	_, err = sess.CreatePartner(context.Background(), Values{"name": "Ada"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeRemote))
	assert.Contains(t, err.Error(), "duplicate email")
}

func TestEnsureTagsFindsOrCreates(t *testing.T) {
	f, creds := startOdoo(t, func(c rpcCall) string {
		switch c.Op() {
		case "search":
			if c.at(6) == "Existing" {
				return respond(intArray(5))
			}
			return respond(intArray())
		case "create":
			return respond(intValue(9))
		}
		return fault(1, "unexpected")
	})
	sess, err := NewConnector().Connect(context.Background(), creds)
	require.NoError(t, err)

	ids, err := sess.EnsureTags(context.Background(), []string{"Existing", " ", "New", "Existing"})
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 9}, ids)
	assert.Len(t, f.executed("res.partner.category", "search"), 2)
	assert.Len(t, f.executed("res.partner.category", "create"), 1)
}

func TestParentID(t *testing.T) {
	_, creds := startOdoo(t, func(c rpcCall) string {
		return respond(`<array><data><value><struct>` +
			`<member><name>id</name><value><int>11</int></value></member>` +
			`<member><name>parent_id</name><value><array><data>` +
			`<value><int>3</int></value><value><string>Acme</string></value>` +
			`</data></array></value></member>` +
			`</struct></value></data></array>`)
	})
	sess, err := NewConnector().Connect(context.Background(), creds)
	require.NoError(t, err)

	parent, err := sess.ParentID(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, int64(3), parent)
}

func TestParentIDUnlinked(t *testing.T) {
	_, creds := startOdoo(t, func(c rpcCall) string {
		return respond(`<array><data><value><struct>` +
			`<member><name>parent_id</name><value><boolean>0</boolean></value></member>` +
			`</struct></value></data></array>`)
	})
	sess, err := NewConnector().Connect(context.Background(), creds)
	require.NoError(t, err)

	parent, err := sess.ParentID(context.Background(), 11)
	require.NoError(t, err)
	assert.Zero(t, parent)
}

func TestLinkTags(t *testing.T) {
	assert.Equal(t, []any{[]any{4, int64(1)}, []any{4, int64(2)}}, LinkTags([]int64{1, 2}))
	assert.Empty(t, LinkTags(nil))
}

func TestFetchBase64(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.UserAgent(), "Mozilla/5.0") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("PNGDATA"))
	}))
	defer srv.Close()

	f := NewImageFetcher(0)
	got, err := f.FetchBase64(context.Background(), srv.URL+"/avatar.png")
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("PNGDATA")), got)

	_, err = f.FetchBase64(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)

	got, err = f.FetchBase64(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, got)
}
