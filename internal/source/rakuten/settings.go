package rakuten

import (
	"net/url"
	"os"
	"strings"

	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
	"github.com/darkkaiser/kaidoki-navi/internal/source"
)

const (
	// defaultEndpoint 楽天市場 상품 검색 API (버전 2017-07-06)
	defaultEndpoint = "https://app.rakuten.co.jp/services/api/IchibaItem/Search/20170706"

	// defaultHits 키워드당 가져올 상품 수 (API 허용 범위 1~30)
	defaultHits = 1
	maxHits     = 30
)

// 설정에 application_id가 없을 때 차례로 확인하는 환경 변수입니다.
var applicationIDEnvKeys = []string{"RAKUTEN_APP_ID", "RAKUTEN_API_KEY"}

type keywordSettings struct {
	Keyword string `json:"keyword"`

	// Category 이 키워드로 찾은 상품의 메인 카테고리
	Category string `json:"category"`
}

type settings struct {
	ApplicationID string            `json:"application_id"`
	AffiliateID   string            `json:"affiliate_id"`
	Endpoint      string            `json:"endpoint"`
	Hits          int               `json:"hits"`
	Keywords      []keywordSettings `json:"keywords"`

	// 모든 상품에 공통으로 붙는 다른 쇼핑몰의 제휴 링크
	AmazonURL string `json:"amazon_url"`
	YahooURL  string `json:"yahoo_url"`
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ source.Validator = (*settings)(nil)

func (s *settings) Validate() error {
	s.ApplicationID = strings.TrimSpace(s.ApplicationID)
	if s.ApplicationID == "" {
		for _, key := range applicationIDEnvKeys {
			if v := strings.TrimSpace(os.Getenv(key)); v != "" {
				s.ApplicationID = v
				break
			}
		}
	}
	if s.ApplicationID == "" {
		return ErrApplicationIDMissing
	}

	s.Endpoint = strings.TrimSpace(s.Endpoint)
	if s.Endpoint == "" {
		s.Endpoint = defaultEndpoint
	}
	if u, err := url.Parse(s.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		return apperrors.Newf(apperrors.InvalidInput, "endpoint가 올바른 URL이 아닙니다 (입력값: %s)", s.Endpoint)
	}

	if s.Hits == 0 {
		s.Hits = defaultHits
	}
	if s.Hits < 1 || s.Hits > maxHits {
		return apperrors.Newf(apperrors.InvalidInput, "hits는 1~%d 사이여야 합니다 (입력값: %d)", maxHits, s.Hits)
	}

	if len(s.Keywords) == 0 {
		s.Keywords = defaultKeywords()
	}
	for i := range s.Keywords {
		s.Keywords[i].Keyword = strings.TrimSpace(s.Keywords[i].Keyword)
		s.Keywords[i].Category = strings.TrimSpace(s.Keywords[i].Category)
		if s.Keywords[i].Keyword == "" {
			return apperrors.Newf(apperrors.InvalidInput, "keywords[%d]의 keyword가 비어 있습니다", i)
		}
	}

	return nil
}

func defaultKeywords() []keywordSettings {
	return []keywordSettings{
		{Keyword: "ノートパソコン", Category: "パソコン・周辺機器"},
		{Keyword: "冷蔵庫", Category: "家電"},
		{Keyword: "ダイエットサプリ", Category: "美容・健康"},
		{Keyword: "マッサージ機", Category: "美容・健康"},
	}
}
