package extract

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Experience is the first entry of the experience section.
type Experience struct {
	Company         string `json:"company,omitempty"`
	Title           string `json:"title,omitempty"`
	CompanyPhotoURL string `json:"company_photo_url,omitempty"`
	CompanyURL      string `json:"company_url,omitempty"`
}

func (e Experience) empty() bool { return e.Company == "" && e.Title == "" }

// Partial is whatever a single layout strategy managed to read.
type Partial struct {
	Name       string
	City       string
	PhotoURL   string
	About      string
	Experience Experience
}

// Strategy reads one known profile layout. Misses leave fields empty.
type Strategy interface {
	Name() string
	TryExtract(doc *Document) Partial
}

// DefaultStrategies returns the known layouts, oldest/most specific first and
// the generic meta-tag fallback last.
func DefaultStrategies() []Strategy {
	return []Strategy{
		legacyTopCard{},
		cardLayout2022{},
		viewNameLayout2024{},
		metaFallback{},
	}
}

// --- legacy (pv-top-card / pv-entity) ---

type legacyTopCard struct{}

func (legacyTopCard) Name() string { return "legacy-top-card" }

func (legacyTopCard) TryExtract(doc *Document) Partial {
	var p Partial
	card := find(doc.Root, class("pv-top-card"))
	if card != nil {
		if list := find(card, class("pv-top-card--list")); list != nil {
			if li := find(list, tag(atom.Li)); li != nil {
				p.Name = text(li)
			}
		}
		if p.Name == "" {
			p.Name = text(find(card, all(tag(atom.H1), class("text-heading-xlarge"))))
		}
		if bullets := find(card, class("pv-top-card--list-bullet")); bullets != nil {
			p.City = text(find(bullets, tag(atom.Li)))
		}
		p.PhotoURL = imgSrc(find(card, anyOf(class("pv-top-card__photo"), class("pv-top-card-profile-picture__image"))))
	}

	if about := find(doc.Root, class("pv-about-section")); about != nil {
		p.About = text(find(about, anyOf(class("pv-about__summary-text"), tag(atom.P))))
	}

	section := find(doc.Root, id("experience-section"))
	if section == nil {
		return p
	}
	item := find(section, class("pv-profile-section__list-item"))
	if item == nil {
		item = find(section, tag(atom.Li))
	}
	if item == nil {
		return p
	}

	exp := Experience{
		CompanyURL:      absURL(doc, attrOr(find(item, all(tag(atom.A), anyOf(attrIs("data-control-name", "background_details_company"), attrHas("href", "/company/")))), "href")),
		CompanyPhotoURL: imgSrc(find(item, class("pv-entity__logo-img"))),
	}
	if roles := find(item, class("pv-entity__position-group")); roles != nil {
		// Several stacked roles at one company: the header names the company.
		exp.Company = text(findPath(item, class("pv-entity__company-summary-info"), tag(atom.H3)))
		if exp.Company == "" {
			exp.Company = text(find(item, tag(atom.H3)))
		}
		if role := find(roles, class("pv-entity__position-group-role-item")); role != nil {
			exp.Title = text(find(role, tag(atom.H3)))
		}
	} else {
		exp.Title = text(find(item, tag(atom.H3)))
		exp.Company = text(find(item, class("pv-entity__secondary-title")))
	}
	exp.Company = stripEmploymentType(exp.Company)
	exp.Title = stripEmploymentType(exp.Title)
	p.Experience = exp
	return p
}

// --- 2022 artdeco cards ---

type cardLayout2022 struct{}

func (cardLayout2022) Name() string { return "artdeco-card-2022" }

func (cardLayout2022) TryExtract(doc *Document) Partial {
	var p Partial
	if top := find(doc.Root, all(tag(atom.Div), class("ph5"))); top != nil {
		p.Name = text(find(top, all(tag(atom.H1), class("text-heading-xlarge"))))
		p.City = text(find(top, all(tag(atom.Span), class("text-body-small", "inline"))))
		card := closest(top, tag(atom.Section))
		if card == nil {
			card = top
		}
		p.PhotoURL = imgSrc(find(card, attrHas("class", "pv-top-card-profile-picture__image")))
	}

	if about := sectionByAnchor(doc, id("about")); about != nil {
		p.About = text(find(about, class("inline-show-more-text")))
		if spans := visibleSpans(about); p.About == "" && len(spans) > 1 {
			p.About = spans[1]
		}
		p.About = stripSeeMore(p.About)
	}

	if exp := sectionByAnchor(doc, id("experience")); exp != nil {
		if li := find(exp, class("artdeco-list__item")); li != nil {
			p.Experience = parseEntity(doc, li)
		}
	}
	return p
}

// --- 2024 data-view-name layout ---

type viewNameLayout2024 struct{}

func (viewNameLayout2024) Name() string { return "view-name-2024" }

func (viewNameLayout2024) TryExtract(doc *Document) Partial {
	var p Partial
	top := find(doc.Root, attrIs("data-view-name", "profile-top-card"))
	if top == nil {
		top = find(doc.Root, attrHas("class", "pv-top-card"))
	}
	if top != nil {
		p.Name = text(find(top, tag(atom.H1)))
		p.City = text(find(top, all(tag(atom.Span), class("text-body-small"), class("inline"))))
		if p.PhotoURL = imgSrc(find(top, attrHas("class", "pv-top-card-profile-picture__image"))); p.PhotoURL == "" {
			p.PhotoURL = imgSrc(find(top, all(tag(atom.Img), attrHas("class", "profile-photo"))))
		}
	}

	for _, card := range findAll(doc.Root, attrIs("data-view-name", "profile-card")) {
		switch {
		case find(card, id("about")) != nil && p.About == "":
			spans := visibleSpans(card)
			if len(spans) > 1 {
				p.About = stripSeeMore(spans[1])
			}
		case find(card, id("experience")) != nil && p.Experience.empty():
			if ent := find(card, attrIs("data-view-name", "profile-component-entity")); ent != nil {
				p.Experience = parseEntity(doc, ent)
			}
		}
	}
	return p
}

// --- generic meta fallback ---

type metaFallback struct{}

func (metaFallback) Name() string { return "meta-fallback" }

func (metaFallback) TryExtract(doc *Document) Partial {
	var p Partial
	title := metaContent(doc, "og:title")
	if title == "" {
		title = text(find(doc.Root, tag(atom.Title)))
	}
	title = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(title), "| LinkedIn"))
	if i := strings.Index(title, " - "); i > 0 {
		title = title[:i]
	}
	if i := strings.Index(title, " | "); i > 0 {
		title = title[:i]
	}
	p.Name = strings.TrimSpace(title)
	p.PhotoURL = metaContent(doc, "og:image")
	p.About = metaContent(doc, "og:description")
	if p.About == "" {
		p.About = metaContent(doc, "description")
	}
	return p
}

// parseEntity reads a pvs entity (2022/2024 experience row). A row with nested
// role rows is a multi-role entry: the header is the company and the first
// nested bold line is the current title.
func parseEntity(doc *Document, entity *html.Node) Experience {
	logo := find(entity, all(tag(atom.A), anyOf(attrIs("data-field", "experience_company_logo"), attrHas("href", "/company/"))))
	exp := Experience{
		CompanyURL:      absURL(doc, attrOr(logo, "href")),
		CompanyPhotoURL: imgSrc(find(logo, tag(atom.Img))),
	}

	sub := find(entity, class("pvs-entity__sub-components"))
	var nestedRole *html.Node
	if sub != nil {
		for _, li := range findAll(sub, tag(atom.Li)) {
			if find(li, class("t-bold")) != nil {
				nestedRole = li
				break
			}
		}
	}

	header := entity
	if sub != nil {
		// Keep header lookups out of the nested rows.
		header = headerScope(entity, sub)
	}
	bold := firstVisible(find(header, class("t-bold")))

	if nestedRole != nil {
		exp.Company = bold
		exp.Title = firstVisible(find(nestedRole, class("t-bold")))
	} else {
		exp.Title = bold
		for _, s := range findAll(header, all(tag(atom.Span), class("t-14", "t-normal"))) {
			if hasClass(s, "t-black--light") {
				continue
			}
			exp.Company = firstVisible(s)
			break
		}
	}
	exp.Company = stripEmploymentType(exp.Company)
	exp.Title = stripEmploymentType(exp.Title)
	return exp
}

// headerScope returns a shallow copy of entity without the sub-components
// subtree so descendant lookups only see the entry header.
func headerScope(entity, sub *html.Node) *html.Node {
	clone := &html.Node{Type: html.ElementNode, Data: entity.Data, DataAtom: entity.DataAtom}
	var copyTree func(dst, src *html.Node)
	copyTree = func(dst, src *html.Node) {
		for c := src.FirstChild; c != nil; c = c.NextSibling {
			if c == sub {
				continue
			}
			n := &html.Node{Type: c.Type, Data: c.Data, DataAtom: c.DataAtom, Attr: c.Attr}
			dst.AppendChild(n)
			copyTree(n, c)
		}
	}
	copyTree(clone, entity)
	return clone
}

func firstVisible(n *html.Node) string {
	if n == nil {
		return ""
	}
	if spans := visibleSpans(n); len(spans) > 0 {
		return spans[0]
	}
	return text(n)
}

// sectionByAnchor finds the <section> that contains the anchor element
// LinkedIn places at the top of each profile card.
func sectionByAnchor(doc *Document, anchor matcher) *html.Node {
	a := find(doc.Root, anchor)
	if a == nil {
		return nil
	}
	return closest(a, tag(atom.Section))
}

// stripEmploymentType truncates "Acme · Full-time" to "Acme".
func stripEmploymentType(s string) string {
	if i := strings.Index(s, "·"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func stripSeeMore(s string) string {
	s = strings.TrimSpace(s)
	for _, suffix := range []string{"…see more", "... see more", "…more", "see more"} {
		s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
	}
	return s
}

func imgSrc(n *html.Node) string {
	if n == nil {
		return ""
	}
	for _, key := range []string{"src", "data-delayed-url", "data-ghost-url"} {
		if v := attrOr(n, key); strings.HasPrefix(v, "http") {
			return v
		}
	}
	return ""
}

// absURL resolves href against the page and drops tracking parameters.
func absURL(doc *Document, href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if !u.IsAbs() && doc.URL != "" {
		if base, err := url.Parse(doc.URL); err == nil {
			u = base.ResolveReference(u)
		}
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
