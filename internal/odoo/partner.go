package odoo

import (
	"context"
	"log/slog"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/apperr"
)

// Values is a field map sent to create/write.
type Values map[string]any

// Session is an authenticated handle on /xmlrpc/2/object.
type Session struct {
	object  Caller
	creds   Credentials
	uid     int64
	limiter *rate.Limiter
}

func (s *Session) UID() int64 { return s.uid }

// Execute runs execute_kw for model.method and decodes the result into reply.
func (s *Session) Execute(ctx context.Context, model, method string, args []any, kwargs map[string]any, reply any) error {
	if err := wait(ctx, s.limiter); err != nil {
		return apperr.New(apperr.CodeTimeout, "rate limit wait cancelled", err)
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	params := []any{s.creds.DB, s.uid, s.creds.APIToken, model, method, args, kwargs}
	if err := s.object.Call("execute_kw", params, reply); err != nil {
		slog.Error("odoo call failed", "model", model, "method", method, "error", err)
		return classify(err, "Odoo call "+model+"."+method+" failed")
	}
	return nil
}

func (s *Session) search(ctx context.Context, model string, domain []any, limit int) ([]int64, error) {
	var raw []any
	kwargs := map[string]any{}
	if limit > 0 {
		kwargs["limit"] = limit
	}
	if err := s.Execute(ctx, model, "search", []any{domain}, kwargs, &raw); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(raw))
	for _, v := range raw {
		if id, ok := toInt64(v); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func cond(field, op string, value any) []any {
	return []any{field, op, value}
}

// likeEscaper quotes the ILIKE wildcards so =ilike compares the whole value.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// FindCompany returns the id of the company whose name matches case-insensitively, or 0.
func (s *Session) FindCompany(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, nil
	}
	ids, err := s.search(ctx, partnerModel, []any{
		cond("is_company", "=", true),
		cond("name", "=ilike", likeEscaper.Replace(name)),
	}, 1)
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	return ids[0], nil
}

// FindPersons searches individual contacts. A non-empty name and email are
// ANDed; an empty one is ignored. Both empty yields no ids.
func (s *Session) FindPersons(ctx context.Context, name, email string, limit int) ([]int64, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	domain := []any{cond("is_company", "=", false)}
	if name != "" {
		domain = append(domain, cond("name", "=", name))
	}
	if email != "" {
		domain = append(domain, cond("email", "=", email))
	}
	if len(domain) == 1 {
		return nil, nil
	}
	return s.search(ctx, partnerModel, domain, limit)
}

// ParentID returns the partner's parent company id, or 0 when unlinked.
func (s *Session) ParentID(ctx context.Context, id int64) (int64, error) {
	var rows []map[string]any
	err := s.Execute(ctx, partnerModel, "read", []any{[]any{id}}, map[string]any{"fields": []any{"parent_id"}}, &rows)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, apperr.New(apperr.CodeNotFound, "partner not found", eris.Errorf("odoo: partner %d missing", id))
	}
	// many2one comes back as [id, display_name] or false
	if pair, ok := rows[0]["parent_id"].([]any); ok && len(pair) > 0 {
		parent, _ := toInt64(pair[0])
		return parent, nil
	}
	return 0, nil
}

// CreatePartner creates a res.partner and returns its id.
func (s *Session) CreatePartner(ctx context.Context, vals Values) (int64, error) {
	var reply any
	if err := s.Execute(ctx, partnerModel, "create", []any{map[string]any(vals)}, nil, &reply); err != nil {
		return 0, err
	}
	id, ok := toInt64(reply)
	if !ok {
		return 0, apperr.New(apperr.CodeRemote, "unexpected create reply", eris.Errorf("odoo: create returned %T", reply))
	}
	return id, nil
}

// WritePartner updates the given fields on one partner.
func (s *Session) WritePartner(ctx context.Context, id int64, vals Values) error {
	if len(vals) == 0 {
		return nil
	}
	var ok bool
	return s.Execute(ctx, partnerModel, "write", []any{[]any{id}, map[string]any(vals)}, nil, &ok)
}

// EnsureTags finds or creates a res.partner.category per name and returns
// their ids in input order. Blank and repeated names are skipped.
func (s *Session) EnsureTags(ctx context.Context, names []string) ([]int64, error) {
	seen := make(map[string]struct{}, len(names))
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		found, err := s.search(ctx, categoryModel, []any{cond("name", "=", name)}, 1)
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			ids = append(ids, found[0])
			continue
		}
		var reply any
		if err := s.Execute(ctx, categoryModel, "create", []any{map[string]any{"name": name}}, nil, &reply); err != nil {
			return nil, err
		}
		id, ok := toInt64(reply)
		if !ok {
			return nil, apperr.New(apperr.CodeRemote, "unexpected tag create reply", eris.Errorf("odoo: tag create returned %T", reply))
		}
		slog.Info("odoo tag created", "tag", name, "tag_id", id)
		ids = append(ids, id)
	}
	return ids, nil
}

// LinkTags builds many2many "link" commands, which add without removing.
func LinkTags(ids []int64) []any {
	cmds := make([]any, 0, len(ids))
	for _, id := range ids {
		cmds = append(cmds, []any{4, id})
	}
	return cmds
}
