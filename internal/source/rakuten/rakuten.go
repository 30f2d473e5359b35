// Package rakuten 楽天市場 상품 검색 API 수집처입니다.
package rakuten

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/darkkaiser/kaidoki-navi/internal/catalog"
	"github.com/darkkaiser/kaidoki-navi/internal/config"
	"github.com/darkkaiser/kaidoki-navi/internal/fetcher"
	"github.com/darkkaiser/kaidoki-navi/internal/source"
	applog "github.com/darkkaiser/kaidoki-navi/pkg/log"
	"github.com/darkkaiser/kaidoki-navi/pkg/strutil"
)

const (
	// TypeName 설정 파일의 sources[].type 값
	TypeName = "rakuten"

	component = "source.rakuten"

	mainECSite = "楽天"

	// defaultSort 리뷰 수 내림차순
	defaultSort = "-reviewCount"
)

func init() {
	source.MustRegister(TypeName, New)
}

// searchResponse 상품 검색 API 응답 중 사용하는 부분입니다.
type searchResponse struct {
	Items []struct {
		Item searchItem `json:"Item"`
	} `json:"Items"`
}

type searchItem struct {
	ItemCode        string `json:"itemCode"`
	ItemName        string `json:"itemName"`
	ItemPrice       int    `json:"itemPrice"`
	ItemCaption     string `json:"itemCaption"`
	ItemURL         string `json:"itemUrl"`
	AffiliateURL    string `json:"affiliateUrl"`
	MediumImageURLs []struct {
		ImageURL string `json:"imageUrl"`
	} `json:"mediumImageUrls"`
}

type rakutenSource struct {
	id       string
	settings *settings
	endpoint *url.URL
	fetcher  fetcher.Fetcher
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ source.Source = (*rakutenSource)(nil)

// New 설정으로부터 楽天 수집처를 생성합니다.
func New(cfg config.SourceConfig, f fetcher.Fetcher) (source.Source, error) {
	s, err := source.DecodeSettings[settings](cfg)
	if err != nil {
		return nil, err
	}

	endpoint, err := url.Parse(s.Endpoint)
	if err != nil {
		return nil, err
	}

	return &rakutenSource{id: cfg.ID, settings: s, endpoint: endpoint, fetcher: f}, nil
}

func (s *rakutenSource) ID() string { return s.id }

// Fetch 설정된 키워드마다 한 번씩 검색하여 결과를 합칩니다.
// 일부 키워드가 실패해도 나머지 결과는 반환하며, 모든 키워드가 실패한 경우에만 에러를 반환합니다.
func (s *rakutenSource) Fetch(ctx context.Context) ([]catalog.RawItem, error) {
	var (
		items []catalog.RawItem
		errs  []error
	)

	for _, kw := range s.settings.Keywords {
		if err := ctx.Err(); err != nil {
			return items, err
		}

		found, err := s.search(ctx, kw)
		if err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"source_id": s.id,
				"keyword":   kw.Keyword,
				"error":     err,
			}).Warn("키워드 검색 실패: 다음 키워드로 넘어갑니다")

			errs = append(errs, err)
			continue
		}

		applog.WithComponentAndFields(component, applog.Fields{
			"source_id": s.id,
			"keyword":   kw.Keyword,
			"items":     len(found),
		}).Debug("키워드 검색 완료")

		items = append(items, found...)
	}

	if len(errs) == len(s.settings.Keywords) && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return items, nil
}

func (s *rakutenSource) search(ctx context.Context, kw keywordSettings) ([]catalog.RawItem, error) {
	var resp searchResponse
	if err := fetcher.FetchJSON(ctx, s.fetcher, http.MethodGet, s.searchURL(kw.Keyword), nil, nil, &resp); err != nil {
		return nil, err
	}

	items := make([]catalog.RawItem, 0, len(resp.Items))
	for _, it := range resp.Items {
		items = append(items, s.toRawItem(it.Item, kw.Category))
	}
	return items, nil
}

func (s *rakutenSource) searchURL(keyword string) string {
	u := *s.endpoint

	q := u.Query()
	q.Set("applicationId", s.settings.ApplicationID)
	if s.settings.AffiliateID != "" {
		q.Set("affiliateId", s.settings.AffiliateID)
	}
	q.Set("keyword", keyword)
	q.Set("format", "json")
	q.Set("sort", defaultSort)
	q.Set("hits", strconv.Itoa(s.settings.Hits))
	u.RawQuery = q.Encode()

	return u.String()
}

func (s *rakutenSource) toRawItem(it searchItem, categoryHint string) catalog.RawItem {
	var imageURL string
	if len(it.MediumImageURLs) > 0 {
		imageURL = it.MediumImageURLs[0].ImageURL
	}

	itemURL := it.ItemURL
	if it.AffiliateURL != "" {
		itemURL = it.AffiliateURL
	}

	return catalog.RawItem{
		ID:           it.ItemCode,
		Name:         strutil.NormalizeSpaces(it.ItemName),
		Price:        strconv.Itoa(it.ItemPrice),
		Description:  plainText(it.ItemCaption),
		CategoryHint: categoryHint,
		SourceFields: catalog.SourceFields{
			ImageURL:   imageURL,
			RakutenURL: itemURL,
			YahooURL:   s.settings.YahooURL,
			AmazonURL:  s.settings.AmazonURL,
			MainECSite: mainECSite,
			Source:     TypeName,
		},
	}
}

var lineBreakTags = []string{"br", "p", "div", "li"}

// plainText 상품 설명에 섞인 HTML 태그를 제거하고 줄바꿈을 보존한 텍스트를 반환합니다.
func plainText(caption string) string {
	if !strings.ContainsAny(caption, "<&") {
		return strings.TrimSpace(caption)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(caption))
	if err != nil {
		return strings.TrimSpace(caption)
	}

	doc.Find(strings.Join(lineBreakTags, ",")).Each(func(_ int, sel *goquery.Selection) {
		sel.AfterHtml("\n")
	})

	lines := strings.Split(doc.Text(), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strutil.NormalizeSpaces(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
