package render

import (
	"bytes"
	"context"
	"encoding/xml"
	"net/url"
	"strings"

	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
)

const (
	sitemapFile  = "sitemap.xml"
	sitemapXMLNS = "http://www.sitemaps.org/schemas/sitemap/0.9"
)

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

func (r *Renderer) renderSitemap(_ context.Context, w *siteWriter) error {
	st := w.site
	base := strings.TrimRight(r.opts.BaseURL, "/") + "/"
	lastMod := st.today.String()

	set := urlSet{XMLNS: sitemapXMLNS}
	add := func(rel, freq, priority string) {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        base + escapePath(rel),
			LastMod:    lastMod,
			ChangeFreq: freq,
			Priority:   priority,
		})
	}

	add("", "daily", "1.0")
	for _, p := range []string{"privacy.html", "disclaimer.html", "contact.html"} {
		add(p, "monthly", "0.5")
	}
	add("search_results.html", "daily", "0.5")
	add("ai_search.html", "weekly", "0.7")

	for _, rec := range st.records {
		add(st.pagePaths[rec.ID], "daily", "0.6")
	}
	for p := 2; p <= pageCount(len(st.records), r.opts.ProductsPerPage); p++ {
		add(indexPath(p), "daily", "0.8")
	}

	for _, main := range st.categoryNames() {
		add(categoryPath(main), "daily", "0.8")
	}
	for _, sp := range []string{SpecialCheapest, SpecialSale, SpecialPoints} {
		add(categoryPath(sp), "daily", "0.8")
	}

	add(tagsIndexPath(1), "weekly", "0.7")
	for _, g := range st.tags {
		add("tags/"+g.file, "daily", "0.6")
	}
	for p := 2; p <= pageCount(len(st.tags), r.opts.TagsPerPage); p++ {
		add(tagsIndexPath(p), "daily", "0.6")
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return apperrors.Wrap(err, apperrors.Internal, "사이트맵을 만들 수 없습니다")
	}
	buf.WriteByte('\n')

	return w.write(sitemapFile, buf.Bytes())
}

// escapePath 경로의 각 구간을 URL 인코딩합니다.
func escapePath(rel string) string {
	if rel == "" {
		return ""
	}
	parts := strings.Split(rel, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
