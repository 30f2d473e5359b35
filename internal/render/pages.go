package render

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/darkkaiser/kaidoki-navi/internal/catalog"
)

func indexPath(page int) string {
	if page == 1 {
		return "index.html"
	}
	return fmt.Sprintf("pages/page%d.html", page)
}

func tagsIndexPath(page int) string {
	if page == 1 {
		return "tags/index.html"
	}
	return fmt.Sprintf("tags/page%d.html", page)
}

func (r *Renderer) renderIndex(_ context.Context, w *siteWriter) error {
	st := w.site
	per := r.opts.ProductsPerPage
	total := pageCount(len(st.records), per)

	for p := 1; p <= total; p++ {
		rel := indexPath(p)
		content := listContent{
			Heading:    "今が買い時！お得な注目アイテム",
			Cards:      st.cards(rel, chunk(st.records, p, per)),
			Pagination: pagination(rel, p, total, indexPath),
		}
		if err := w.page(rel, "list", tagline, content); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderCategories(_ context.Context, w *siteWriter) error {
	st := w.site
	for _, main := range st.categoryNames() {
		rel := categoryPath(main)
		content := listContent{
			Heading:     main + "の商品一覧",
			Description: "詳細な絞り込みは、ページ下部のタグをご利用ください。",
			Cards:       st.cards(rel, st.byCategory[main]),
		}
		if err := w.page(rel, "list", main+"の商品一覧", content); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderSpecials(_ context.Context, w *siteWriter) error {
	st := w.site

	cheapest := slices.Clone(st.records)
	sort.SliceStable(cheapest, func(i, j int) bool { return cheapest[i].Price < cheapest[j].Price })

	var sale, points []*catalog.ProductRecord
	for _, rec := range st.records {
		if isSale(rec) {
			sale = append(sale, rec)
		}
		if isPointDeal(rec) {
			points = append(points, rec)
		}
	}

	specials := []struct {
		name, title, description string
		records                  []*catalog.ProductRecord
	}{
		{SpecialCheapest, SpecialCheapest + "のお得な商品一覧", "価格の安い順に商品を一覧で表示しています。", cheapest},
		{SpecialSale, "🔥限定価格！今すぐ買いたいセール商品", "AIがタグや価格変動を分析し、現在セール中・タイムセール中の商品をリストアップしています。", sale},
		{SpecialPoints, "✨AIが選んだポイント高還元商品", "AIが価格分析の結果、「ポイント還元率が高い」「ポイントがお得」と判断した商品をピックアップしています。", points},
	}

	for _, sp := range specials {
		rel := categoryPath(sp.name)
		content := listContent{
			Heading:     sp.title,
			Description: sp.description,
			Cards:       st.cards(rel, sp.records),
		}
		if err := w.page(rel, "list", sp.title, content); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderTags(_ context.Context, w *siteWriter) error {
	st := w.site

	for _, g := range st.tags {
		rel := "tags/" + g.file
		content := listContent{
			Heading: "#" + g.tag + "の注目商品",
			Cards:   st.cards(rel, g.records),
		}
		if err := w.page(rel, "list", "タグ：#"+g.tag, content); err != nil {
			return err
		}
	}

	per := r.opts.TagsPerPage
	total := pageCount(len(st.tags), per)
	for p := 1; p <= total; p++ {
		rel := tagsIndexPath(p)

		var links []link
		for _, g := range chunk(st.tags, p, per) {
			links = append(links, link{Text: g.tag, Href: relLink(rel, "tags/"+g.file)})
		}

		content := tagsContent{
			Heading:    "タグから探す",
			Tags:       links,
			Pagination: pagination(rel, p, total, tagsIndexPath),
		}
		if err := w.page(rel, "tags", "タグから探す", content); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderProducts(ctx context.Context, w *siteWriter) error {
	st := w.site
	for _, rec := range st.records {
		if err := ctx.Err(); err != nil {
			return err
		}

		rel := st.pagePaths[rec.ID]
		if err := w.page(rel, "product", rec.Name+"の買い時情報", st.product(rel, rec)); err != nil {
			return err
		}
	}
	return nil
}

// renderPlaceholders 검색 결과 페이지와 준비 중 페이지를 만듭니다.
// 직접 관리하는 안내 페이지(개인정보 처리방침 등)는 이미 있으면 덮어쓰지 않습니다.
func (r *Renderer) renderPlaceholders(_ context.Context, w *siteWriter) error {
	if err := w.page("search_results.html", "search", "検索結果", placeholderContent{Heading: "検索結果"}); err != nil {
		return err
	}

	pages := []struct {
		rel, title, description string
		keep                    bool
	}{
		{"ai_search.html", "AIで探す", "AIがおすすめする商品を見つけよう！", false},
		{"privacy.html", "プライバシーポリシー", "個人情報の取り扱いについて", true},
		{"disclaimer.html", "免責事項", "掲載情報についての注意事項", true},
		{"contact.html", "お問い合わせ", "ご意見・ご要望はこちら", true},
	}
	for _, p := range pages {
		if p.keep && w.exists(p.rel) {
			continue
		}
		if err := w.page(p.rel, "placeholder", p.title, placeholderContent{Heading: p.title, Description: p.description}); err != nil {
			return err
		}
	}
	return nil
}
