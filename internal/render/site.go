package render

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/darkkaiser/kaidoki-navi/internal/catalog"
	"github.com/darkkaiser/kaidoki-navi/pkg/strutil"
)

// 화면에만 표시하는 준비 중 문구 (저장하지 않습니다)
const (
	fallbackHeadline = "AI分析準備中"
	fallbackAnalysis = "詳細なAI分析は現在準備中です。"
	fallbackSummary  = "この商品の詳しい説明は準備中です。"

	defaultRakutenURL = "https://www.rakuten.co.jp/"
	tagline           = "お得な買い時を見つけよう！"

	shortNameRunes = 20
)

// 특집 카테고리
const (
	SpecialCheapest = "最安値"
	SpecialSale     = "期間限定セール"
	SpecialPoints   = "ポイント特化"
)

var (
	saleTags     = []string{"セール", "期間限定", "タイムセール", "特価"}
	pointMatcher = strutil.NewKeywordMatcher([]string{"ポイント|還元率|お得|UP"}, nil)
)

type link struct {
	Text  string
	Href  string
	Class string
}

type card struct {
	Href      string
	ImageURL  string
	Name      string
	ShortName string
	Price     string
	Headline  string
}

type layoutData struct {
	Title         string
	SiteName      string
	Tagline       string
	Root          string
	Year          int
	UtilityLinks  []link
	CategoryLinks []link
	Chart         bool
	Content       any
}

type listContent struct {
	Heading     string
	Description string
	Cards       []card
	Pagination  []link
}

type tagsContent struct {
	Heading    string
	Tags       []link
	Pagination []link
}

type productContent struct {
	Name         string
	ImageURL     string
	Category     string
	CategoryHref string
	SubCategory  string
	Price        string
	LowestPrice  string
	Headline     string
	Analysis     string
	Summary      string
	Description  string
	RakutenURL   string
	AmazonURL    string
	YahooURL     string
	HistoryJSON  string
	Tags         []link
}

type placeholderContent struct {
	Heading     string
	Description string
}

type tagGroup struct {
	tag     string
	file    string
	records []*catalog.ProductRecord
}

// site 렌더링 한 번에 필요한 정렬/분류 결과입니다.
type site struct {
	records    []*catalog.ProductRecord
	pagePaths  map[string]string
	mains      []string
	byCategory map[string][]*catalog.ProductRecord
	tags       []*tagGroup
	tagFiles   map[string]string
	today      catalog.Date
}

func (r *Renderer) newSite(s catalog.Store) *site {
	st := &site{
		pagePaths:  make(map[string]string, len(s)),
		byCategory: make(map[string][]*catalog.ProductRecord),
		today:      catalog.DateOf(r.now().In(r.opts.Location)),
	}

	st.records = make([]*catalog.ProductRecord, 0, len(s))
	for _, rec := range s {
		st.records = append(st.records, rec)
	}
	// 등록일 최신순, 같은 날이면 ID순
	sort.Slice(st.records, func(i, j int) bool {
		a, b := st.records[i], st.records[j]
		if a.CreatedOn != b.CreatedOn {
			return a.CreatedOn > b.CreatedOn
		}
		return a.ID < b.ID
	})

	st.mains = append(r.opts.Taxonomy.Mains(), catalog.UncategorizedMain)
	tagIndex := make(map[string]*tagGroup)
	used := make(map[string]bool, len(st.records))

	for _, rec := range st.records {
		p := pagePath(rec)
		if used[p] {
			p = catalog.PageURL(rec.ID)
		}
		used[p] = true
		st.pagePaths[rec.ID] = p

		main := rec.Category.Main
		if !slices.Contains(st.mains, main) {
			main = catalog.UncategorizedMain
		}
		st.byCategory[main] = append(st.byCategory[main], rec)

		for _, tag := range rec.Tags {
			g, ok := tagIndex[tag]
			if !ok {
				g = &tagGroup{tag: tag}
				tagIndex[tag] = g
				st.tags = append(st.tags, g)
			}
			if !slices.Contains(g.records, rec) {
				g.records = append(g.records, rec)
			}
		}
	}

	sort.Slice(st.tags, func(i, j int) bool { return st.tags[i].tag < st.tags[j].tag })

	// 파일 이름이 겹치는 태그(예: "a/b"와 "a_b")는 태그 전체의 해시를 붙여 구분합니다.
	// 대소문자를 구분하지 않는 파일 시스템도 고려합니다.
	st.tagFiles = make(map[string]string, len(st.tags))
	taken := make(map[string]bool, len(st.tags))
	for _, g := range st.tags {
		g.file = tagFile(g.tag)
		if taken[strings.ToLower(g.file)] {
			g.file = hashedTagFile(g.tag)
		}
		taken[strings.ToLower(g.file)] = true
		st.tagFiles[g.tag] = g.file
	}

	return st
}

// categoryNames 상품이 하나 이상 있는 메인 카테고리 목록입니다.
func (st *site) categoryNames() []string {
	var out []string
	for _, m := range st.mains {
		if len(st.byCategory[m]) > 0 {
			out = append(out, m)
		}
	}
	return out
}

func (r *Renderer) layout(st *site, rel, title string, content any) layoutData {
	utility := []link{
		{Text: "AIで探す", Href: relLink(rel, "ai_search.html")},
		{Text: "タグで探す", Href: relLink(rel, "tags/index.html")},
		{Text: SpecialPoints, Href: relLink(rel, categoryPath(SpecialPoints))},
		{Text: SpecialSale, Href: relLink(rel, categoryPath(SpecialSale))},
		{Text: SpecialCheapest, Href: relLink(rel, categoryPath(SpecialCheapest))},
	}

	var categories []link
	for _, m := range st.categoryNames() {
		categories = append(categories, link{Text: m, Href: relLink(rel, categoryPath(m))})
	}

	return layoutData{
		Title:         title,
		SiteName:      r.opts.SiteName,
		Tagline:       tagline,
		Root:          rootPrefix(rel),
		Year:          r.now().In(r.opts.Location).Year(),
		UtilityLinks:  utility,
		CategoryLinks: categories,
		Content:       content,
	}
}

func (st *site) card(from string, rec *catalog.ProductRecord) card {
	return card{
		Href:      relLink(from, st.pagePaths[rec.ID]),
		ImageURL:  rec.ImageURL,
		Name:      rec.Name,
		ShortName: strutil.TruncateRunes(rec.Name, shortNameRunes, "..."),
		Price:     strutil.FormatCommas(rec.Price),
		Headline:  orDefault(rec.Headline, fallbackHeadline),
	}
}

func (st *site) cards(from string, recs []*catalog.ProductRecord) []card {
	out := make([]card, 0, len(recs))
	for _, rec := range recs {
		out = append(out, st.card(from, rec))
	}
	return out
}

func (st *site) product(rel string, rec *catalog.ProductRecord) productContent {
	history := rec.PriceHistory
	if len(history) == 0 {
		history = []catalog.PricePoint{{Date: st.today, Price: rec.Price}}
	}
	historyJSON, _ := json.Marshal(history)

	main := rec.Category.Main
	if !slices.Contains(st.mains, main) {
		main = catalog.UncategorizedMain
	}

	var lowest string
	if l := rec.LowestPrice(); l < rec.Price {
		lowest = strutil.FormatCommas(l)
	}

	var tags []link
	for _, tag := range rec.Tags {
		tags = append(tags, link{Text: tag, Href: relLink(rel, "tags/"+st.tagFiles[tag])})
	}

	return productContent{
		Name:         rec.Name,
		ImageURL:     rec.ImageURL,
		Category:     main,
		CategoryHref: relLink(rel, categoryPath(main)),
		SubCategory:  rec.Category.Sub,
		Price:        strutil.FormatCommas(rec.Price),
		LowestPrice:  lowest,
		Headline:     orDefault(rec.Headline, fallbackHeadline),
		Analysis:     orDefault(rec.Analysis, fallbackAnalysis),
		Summary:      orDefault(rec.Summary, fallbackSummary),
		Description:  rec.Description,
		RakutenURL:   orDefault(rec.RakutenURL, defaultRakutenURL),
		AmazonURL:    rec.AmazonURL,
		YahooURL:     rec.YahooURL,
		HistoryJSON:  string(historyJSON),
		Tags:         tags,
	}
}

// pagination 1..total 페이지 링크를 만듭니다. 페이지가 하나뿐이면 nil입니다.
func pagination(from string, current, total int, pathOf func(int) string) []link {
	if total <= 1 {
		return nil
	}

	var out []link
	if current > 1 {
		out = append(out, link{Text: "前へ", Href: relLink(from, pathOf(current-1)), Class: "prev"})
	}
	for p := 1; p <= total; p++ {
		l := link{Text: strconv.Itoa(p), Href: relLink(from, pathOf(p))}
		if p == current {
			l.Class = "active"
		}
		out = append(out, l)
	}
	if current < total {
		out = append(out, link{Text: "次へ", Href: relLink(from, pathOf(current+1)), Class: "next"})
	}
	return out
}

func isSale(rec *catalog.ProductRecord) bool {
	for _, t := range rec.Tags {
		if slices.Contains(saleTags, t) {
			return true
		}
	}
	return false
}

func isPointDeal(rec *catalog.ProductRecord) bool {
	return pointMatcher.MatchAny(rec.Headline, rec.Analysis)
}

var tagFileReplacer = strings.NewReplacer("/", "_", "\\", "_")

// tagFile 태그 페이지의 파일 이름입니다.
func tagFile(tag string) string {
	name := tagFileReplacer.Replace(tag)
	if name == "." || name == ".." {
		name = strings.Repeat("_", len(name))
	}
	return name + ".html"
}

func hashedTagFile(tag string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(tag))
	return fmt.Sprintf("%s-%08x.html", strings.TrimSuffix(tagFile(tag), ".html"), h.Sum32())
}

func categoryPath(main string) string {
	return "category/" + strings.TrimSuffix(tagFile(main), ".html") + "/index.html"
}

// pagePath 상세 페이지 경로입니다. 저장된 page_url이 출력 디렉터리를 벗어나면 ID로 다시 만듭니다.
func pagePath(rec *catalog.ProductRecord) string {
	p := rec.PageURL
	if p != "" {
		p = path.Clean(strings.ReplaceAll(p, "\\", "/"))
	}
	if p == "" || p == "." || path.IsAbs(p) || strings.HasPrefix(p, "../") || p == ".." ||
		!strings.HasSuffix(p, ".html") || isReservedPage(p) {
		return catalog.PageURL(rec.ID)
	}
	return p
}

// isReservedPage 렌더러가 직접 생성하는 페이지와 겹치는 경로인지 확인합니다.
func isReservedPage(p string) bool {
	switch p {
	case "index.html", "ai_search.html", "search_results.html", "privacy.html", "disclaimer.html", "contact.html":
		return true
	}
	if strings.HasPrefix(p, "category/") || strings.HasPrefix(p, "tags/") {
		return true
	}
	if strings.HasPrefix(p, "pages/page") {
		n := strings.TrimSuffix(strings.TrimPrefix(p, "pages/page"), ".html")
		return n != "" && strings.Trim(n, "0123456789") == ""
	}
	return false
}

// relLink from 페이지에서 to로 가는 상대 링크입니다. 두 경로 모두 출력 디렉터리 기준이며
// 결과는 구간별로 URL 인코딩되어 "#", "?", "%"가 들어간 파일 이름도 그대로 가리킵니다.
func relLink(from, to string) string {
	rel, err := filepath.Rel(filepath.Dir(filepath.FromSlash(from)), filepath.FromSlash(to))
	if err != nil {
		return escapePath(to)
	}
	return escapePath(filepath.ToSlash(rel))
}

// rootPrefix from 페이지에서 출력 디렉터리 루트로 가는 접두사입니다 ("./", "../", "../../").
func rootPrefix(from string) string {
	depth := strings.Count(path.Clean(from), "/")
	if depth == 0 {
		return "./"
	}
	return strings.Repeat("../", depth)
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func pageCount(n, per int) int {
	if n == 0 {
		return 1
	}
	return (n + per - 1) / per
}

func chunk[T any](items []T, page, per int) []T {
	start := (page - 1) * per
	if start >= len(items) {
		return nil
	}
	return items[start:min(start+per, len(items))]
}
