package report

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"archivesys/internal/i18n"
	"archivesys/internal/model"
)

const (
	// DisplayDateLayout is how dates appear inside reports.
	DisplayDateLayout = "02.01.2006"
	displayTimeLayout = "02.01.2006 15:04"
	monthLayout       = "01.2006"
)

// Builder projects domain records onto report tables with localized labels.
type Builder struct {
	labels *i18n.Bundle
	loc    *time.Location
}

// NewBuilder returns a Builder that renders timestamps in loc.
func NewBuilder(labels *i18n.Bundle, loc *time.Location) *Builder {
	if loc == nil {
		loc = time.UTC
	}
	return &Builder{labels: labels, loc: loc}
}

// Content assembles the title block, sections and a total line.
// from and to are the optional period bounds in model.DateLayout.
func (b *Builder) Content(lang, title string, generatedAt time.Time, from, to *string, sections []Section) *Content {
	c := &Content{
		Title:    title,
		Sections: sections,
	}
	c.Subtitle = append(c.Subtitle, b.labels.Tf(lang, "report.generated", generatedAt.In(b.loc).Format(displayTimeLayout)))
	if from != nil || to != nil {
		c.Subtitle = append(c.Subtitle, b.labels.Tf(lang, "report.period", displayDate(from), displayDate(to)))
	}
	if n := c.RowCount(); n > 0 {
		c.Footer = b.labels.Tf(lang, "report.total", n)
	} else {
		c.Footer = b.labels.T(lang, "report.empty")
	}
	return c
}

// Documents builds the sections of a document-based report type.
func (b *Builder) Documents(lang string, t model.ReportType, docs []model.Document) []Section {
	switch t {
	case model.ReportDocumentByCategory:
		return b.grouped(lang, docs, "group.no_category", func(d model.Document) (string, string) {
			if d.CategoryID == nil {
				return "", ""
			}
			return *d.CategoryID, d.CategoryName
		})
	case model.ReportDocumentByLocation:
		return b.grouped(lang, docs, "group.no_location", func(d model.Document) (string, string) {
			if d.StorageLocationID == nil {
				return "", ""
			}
			return *d.StorageLocationID, d.StorageLocationName
		})
	case model.ReportDocumentByDate:
		return b.byMonth(lang, docs)
	default:
		return []Section{{Table: b.documentTable(lang, docs)}}
	}
}

// Activity builds the single section of an activity log report.
func (b *Builder) Activity(lang string, hist []model.DocumentHistory) []Section {
	t := Table{Columns: []string{
		b.labels.T(lang, "col.number"),
		b.labels.T(lang, "col.time"),
		b.labels.T(lang, "col.action"),
		b.labels.T(lang, "col.document"),
		b.labels.T(lang, "col.user"),
		b.labels.T(lang, "col.details"),
	}}
	for i, h := range hist {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1),
			h.Timestamp.In(b.loc).Format(displayTimeLayout),
			b.labels.Action(lang, h.Action),
			h.DocumentTitle,
			h.Username,
			h.Details,
		})
	}
	return []Section{{Table: t}}
}

// Export builds the flat document export used by the CSV and XLSX downloads.
func (b *Builder) Export(lang string, docs []model.Document) Table {
	t := Table{Columns: []string{
		b.labels.T(lang, "col.title"),
		b.labels.T(lang, "col.type"),
		b.labels.T(lang, "col.document_number"),
		b.labels.T(lang, "col.issue_date"),
		b.labels.T(lang, "col.category"),
		b.labels.T(lang, "col.storage_location"),
		b.labels.T(lang, "col.description"),
	}}
	for _, d := range docs {
		t.Rows = append(t.Rows, []string{
			d.Title,
			b.labels.DocumentType(lang, d.DocumentType),
			d.DocumentNumber,
			d.IssueDate.Format(DisplayDateLayout),
			d.CategoryName,
			d.StorageLocationName,
			d.Description,
		})
	}
	return t
}

func (b *Builder) documentTable(lang string, docs []model.Document) Table {
	t := Table{Columns: []string{
		b.labels.T(lang, "col.number"),
		b.labels.T(lang, "col.title"),
		b.labels.T(lang, "col.type"),
		b.labels.T(lang, "col.document_number"),
		b.labels.T(lang, "col.issue_date"),
		b.labels.T(lang, "col.category"),
		b.labels.T(lang, "col.storage_location"),
	}}
	for i, d := range docs {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1),
			d.Title,
			b.labels.DocumentType(lang, d.DocumentType),
			d.DocumentNumber,
			d.IssueDate.Format(DisplayDateLayout),
			d.CategoryName,
			d.StorageLocationName,
		})
	}
	return t
}

type group struct {
	key  string
	name string
	docs []model.Document
}

// grouped splits docs by keyOf, keeping the incoming order inside each group.
// Groups are sorted by name; the group without a key comes last.
func (b *Builder) grouped(lang string, docs []model.Document, emptyKey string, keyOf func(model.Document) (string, string)) []Section {
	index := make(map[string]*group)
	var groups []*group
	for _, d := range docs {
		key, name := keyOf(d)
		g, ok := index[key]
		if !ok {
			g = &group{key: key, name: name}
			index[key] = g
			groups = append(groups, g)
		}
		g.docs = append(g.docs, d)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		gi, gj := groups[i], groups[j]
		if (gi.key == "") != (gj.key == "") {
			return gj.key == ""
		}
		ni, nj := strings.ToLower(gi.name), strings.ToLower(gj.name)
		if ni != nj {
			return ni < nj
		}
		return gi.key < gj.key
	})

	sections := make([]Section, 0, len(groups))
	for _, g := range groups {
		heading := g.name
		if g.key == "" {
			heading = b.labels.T(lang, emptyKey)
		}
		sections = append(sections, Section{Heading: heading, Table: b.documentTable(lang, g.docs)})
	}
	return sections
}

// byMonth groups docs by issue month, newest month first.
func (b *Builder) byMonth(lang string, docs []model.Document) []Section {
	index := make(map[time.Time]*group)
	var months []time.Time
	for _, d := range docs {
		m := time.Date(d.IssueDate.Year(), d.IssueDate.Month(), 1, 0, 0, 0, 0, time.UTC)
		g, ok := index[m]
		if !ok {
			g = &group{name: m.Format(monthLayout)}
			index[m] = g
			months = append(months, m)
		}
		g.docs = append(g.docs, d)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].After(months[j]) })

	sections := make([]Section, 0, len(months))
	for _, m := range months {
		g := index[m]
		sections = append(sections, Section{Heading: g.name, Table: b.documentTable(lang, g.docs)})
	}
	return sections
}

func displayDate(s *string) string {
	if s == nil || *s == "" {
		return "…"
	}
	t, err := time.Parse(model.DateLayout, *s)
	if err != nil {
		return *s
	}
	return t.Format(DisplayDateLayout)
}
