package extract

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/profile"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Field groups resolved independently by the Resolver.
const (
	GroupName       = "name"
	GroupCity       = "city"
	GroupPhoto      = "photo"
	GroupAbout      = "about"
	GroupExperience = "experience"
)

var groups = []string{GroupName, GroupCity, GroupPhoto, GroupAbout, GroupExperience}

// Trace records which strategy supplied each field group.
type Trace map[string]string

// Resolver runs layout strategies in priority order. The first strategy that
// yields a value for a field group wins that group; later strategies only fill
// groups that are still empty.
type Resolver struct {
	strategies []Strategy
}

// NewResolver builds a resolver. With no strategies it uses DefaultStrategies.
func NewResolver(strategies ...Strategy) *Resolver {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Resolver{strategies: strategies}
}

// Resolve merges strategy results per field group.
func (r *Resolver) Resolve(doc *Document) (Partial, Trace, error) {
	if doc == nil || doc.Root == nil {
		return Partial{}, nil, ErrNoDocument
	}

	var out Partial
	trace := make(Trace, len(groups))
	for _, s := range r.strategies {
		if len(trace) == len(groups) {
			break
		}
		p := safeExtract(s, doc)
		fill := func(group string, ok bool, apply func()) {
			if _, done := trace[group]; done || !ok {
				return
			}
			apply()
			trace[group] = s.Name()
		}
		fill(GroupName, p.Name != "", func() { out.Name = p.Name })
		fill(GroupCity, p.City != "", func() { out.City = p.City })
		fill(GroupPhoto, p.PhotoURL != "", func() { out.PhotoURL = p.PhotoURL })
		fill(GroupAbout, p.About != "", func() { out.About = p.About })
		fill(GroupExperience, !p.Experience.empty(), func() { out.Experience = p.Experience })
	}
	return out, trace, nil
}

// ExtractMain runs the main-page pass and returns a profile record.
func (r *Resolver) ExtractMain(doc *Document) (profile.Record, Trace, error) {
	p, trace, err := r.Resolve(doc)
	if err != nil {
		return profile.Record{}, nil, err
	}
	pageURL := profile.CanonicalURL(doc.URL)
	if pageURL == "" {
		pageURL = profile.CanonicalURL(attrOr(find(doc.Root, all(tag(atom.Link), attrIs("rel", "canonical"))), "href"))
	}
	rec := profile.Record{
		URL:             pageURL,
		Name:            p.Name,
		JobPosition:     p.Experience.Title,
		Company:         p.Experience.Company,
		City:            p.City,
		PhotoURL:        p.PhotoURL,
		CompanyPhotoURL: p.Experience.CompanyPhotoURL,
		CompanyURL:      p.Experience.CompanyURL,
		Website:         pageURL,
		AdditionalInfo:  profile.ComposeAdditionalInfo(nil, "", p.About),
	}
	slog.Debug("extract main pass", "url", rec.URL, "trace", trace)
	return rec, trace, nil
}

// Contact holds what the contact-info overlay lists.
type Contact struct {
	ProfileURL string
	Email      string
	Phone      string
	Birthday   string
	Websites   []profile.Website
}

// HasOverlay reports whether the contact-info overlay is rendered in doc.
func HasOverlay(doc *Document) bool {
	if doc == nil || doc.Root == nil {
		return false
	}
	return overlayRoot(doc) != nil
}

func overlayRoot(doc *Document) *html.Node {
	if n := find(doc.Root, anyOf(class("pv-contact-info"), id("pv-contact-info"), attrIs("data-view-name", "profile-contact-info"))); n != nil {
		if m := closest(n, anyOf(class("artdeco-modal"), attrIs("role", "dialog"))); m != nil {
			return m
		}
		return n
	}
	return nil
}

// ReadContact parses the sections of the contact-info overlay.
func ReadContact(doc *Document) (Contact, bool) {
	if doc == nil || doc.Root == nil {
		return Contact{}, false
	}
	root := overlayRoot(doc)
	if root == nil {
		return Contact{}, false
	}

	var c Contact
	sections := findAll(root, class("pv-contact-info__contact-type"))
	if len(sections) == 0 {
		sections = findAll(root, tag(atom.Section))
	}
	for _, sec := range sections {
		header := strings.ToLower(text(find(sec, anyOf(tag(atom.H3), class("pv-contact-info__header")))))
		switch {
		case header == "":
			continue
		case strings.Contains(header, "profile"):
			if c.ProfileURL == "" {
				c.ProfileURL = profile.CanonicalURL(absURL(doc, attrOr(find(sec, tag(atom.A)), "href")))
			}
		case strings.Contains(header, "website"):
			for _, a := range findAll(sec, all(tag(atom.A), attrHas("href", "http"))) {
				label := ""
				if li := closest(a, tag(atom.Li)); li != nil {
					label = strings.Trim(text(find(li, class("t-black--light"))), "() ")
				}
				c.Websites = append(c.Websites, profile.Website{URL: attrOr(a, "href"), Label: label})
			}
		case strings.Contains(header, "phone"):
			if c.Phone == "" {
				c.Phone = firstLineAfterHeader(sec)
			}
		case strings.Contains(header, "email"):
			if a := find(sec, all(tag(atom.A), attrHas("href", "mailto:"))); a != nil {
				c.Email = strings.TrimPrefix(attrOr(a, "href"), "mailto:")
			} else if c.Email == "" {
				c.Email = firstLineAfterHeader(sec)
			}
		case strings.Contains(header, "birthday"):
			if c.Birthday == "" {
				c.Birthday = firstLineAfterHeader(sec)
			}
		}
	}
	c.Websites = profile.DedupeWebsites(c.Websites)
	return c, true
}

// firstLineAfterHeader returns the first non-heading text in a contact section.
func firstLineAfterHeader(sec *html.Node) string {
	for _, n := range findAll(sec, anyOf(tag(atom.Span), tag(atom.A))) {
		if closest(n, anyOf(tag(atom.H3), class("pv-contact-info__header"))) != nil {
			continue
		}
		if t := text(n); t != "" {
			return strings.Split(t, "\n")[0]
		}
	}
	return ""
}

// ExtractOverlay runs the overlay pass: contact fields from the overlay plus
// an additional-info composite (websites, birthday, about). It returns an
// error when the overlay is not rendered.
func (r *Resolver) ExtractOverlay(doc *Document) (profile.Record, error) {
	c, ok := ReadContact(doc)
	if !ok {
		return profile.Record{}, fmt.Errorf("contact info overlay not present")
	}
	p, _, err := r.Resolve(doc)
	if err != nil {
		return profile.Record{}, err
	}
	website := c.ProfileURL
	return profile.Record{
		URL:            profile.CanonicalURL(doc.URL),
		Email:          c.Email,
		Phone:          c.Phone,
		Birthday:       c.Birthday,
		Website:        website,
		AdditionalInfo: profile.ComposeAdditionalInfo(c.Websites, c.Birthday, p.About),
	}, nil
}

func safeExtract(s Strategy, doc *Document) (p Partial) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Warn("extract strategy panicked; treating as miss", "strategy", s.Name(), "panic", rec)
			p = Partial{}
		}
	}()
	return s.TryExtract(doc)
}
