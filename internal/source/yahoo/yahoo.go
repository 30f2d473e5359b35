// Package yahoo Yahoo!ショッピング 상품 검색 API(v3) 수집처입니다.
package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/darkkaiser/kaidoki-navi/internal/catalog"
	"github.com/darkkaiser/kaidoki-navi/internal/config"
	"github.com/darkkaiser/kaidoki-navi/internal/fetcher"
	"github.com/darkkaiser/kaidoki-navi/internal/source"
	applog "github.com/darkkaiser/kaidoki-navi/pkg/log"
	"github.com/darkkaiser/kaidoki-navi/pkg/strutil"
	"github.com/tidwall/gjson"
)

const (
	// TypeName 설정 파일의 sources[].type 값
	TypeName = "yahoo"

	component = "source.yahoo"

	mainECSite = "Yahoo!ショッピング"

	// idPrefix 楽天 상품 코드와 겹치지 않도록 붙이는 접두사
	idPrefix = "yahoo_"
)

func init() {
	source.MustRegister(TypeName, New)
}

type yahooSource struct {
	id       string
	settings *settings
	endpoint *url.URL
	fetcher  fetcher.Fetcher
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ source.Source = (*yahooSource)(nil)

// New 설정으로부터 Yahoo!ショッピング 수집처를 생성합니다.
func New(cfg config.SourceConfig, f fetcher.Fetcher) (source.Source, error) {
	s, err := source.DecodeSettings[settings](cfg)
	if err != nil {
		return nil, err
	}

	endpoint, err := url.Parse(s.Endpoint)
	if err != nil {
		return nil, err
	}

	return &yahooSource{id: cfg.ID, settings: s, endpoint: endpoint, fetcher: f}, nil
}

func (s *yahooSource) ID() string { return s.id }

func (s *yahooSource) Fetch(ctx context.Context) ([]catalog.RawItem, error) {
	var (
		items []catalog.RawItem
		errs  []error
	)

	for _, q := range s.settings.Queries {
		if err := ctx.Err(); err != nil {
			return items, err
		}

		found, err := s.search(ctx, q)
		if err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"source_id": s.id,
				"query":     q.Query,
				"error":     err,
			}).Warn("상품 검색 실패: 다음 검색어로 넘어갑니다")

			errs = append(errs, err)
			continue
		}

		items = append(items, found...)
	}

	if len(errs) == len(s.settings.Queries) && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return items, nil
}

func (s *yahooSource) search(ctx context.Context, q querySettings) ([]catalog.RawItem, error) {
	data, err := fetcher.FetchBytes(ctx, s.fetcher, http.MethodGet, s.searchURL(q.Query), nil, nil)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, ErrUnexpectedResponse
	}

	hits := gjson.GetBytes(data, "hits")
	if !hits.IsArray() {
		return nil, ErrUnexpectedResponse
	}

	var items []catalog.RawItem
	hits.ForEach(func(_, hit gjson.Result) bool {
		// 코드가 없는 항목은 Reconcile 단계에서 MalformedRecord로 걸러지도록 빈 ID로 넘깁니다.
		var id string
		if code := strings.TrimSpace(hit.Get("code").String()); code != "" {
			id = idPrefix + code
		}

		imageURL := hit.Get("image.medium").String()
		if imageURL == "" {
			imageURL = hit.Get("image.small").String()
		}

		items = append(items, catalog.RawItem{
			ID:           id,
			Name:         strutil.NormalizeSpaces(hit.Get("name").String()),
			Price:        priceOf(hit),
			Description:  strings.TrimSpace(hit.Get("description").String()),
			CategoryHint: q.Category,
			SourceFields: catalog.SourceFields{
				ImageURL:   imageURL,
				YahooURL:   hit.Get("url").String(),
				AmazonURL:  s.settings.AmazonURL,
				MainECSite: mainECSite,
				Source:     TypeName,
			},
		})
		return true
	})

	return items, nil
}

// priceOf 가격 필드를 문자열로 반환합니다. 숫자가 아니면 원문 그대로 넘겨 Reconcile 단계에서 판단합니다.
func priceOf(hit gjson.Result) string {
	p := hit.Get("price")
	if p.Type == gjson.Number {
		return strconv.FormatInt(p.Int(), 10)
	}
	return p.String()
}

func (s *yahooSource) searchURL(query string) string {
	u := *s.endpoint

	q := u.Query()
	q.Set("appid", s.settings.AppID)
	q.Set("query", query)
	q.Set("results", strconv.Itoa(s.settings.Results))
	q.Set("sort", s.settings.Sort)
	u.RawQuery = q.Encode()

	return u.String()
}
