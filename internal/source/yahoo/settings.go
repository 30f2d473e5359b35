package yahoo

import (
	"net/url"
	"os"
	"strings"

	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
	"github.com/darkkaiser/kaidoki-navi/internal/source"
)

const (
	// defaultEndpoint Yahoo!ショッピング 상품 검색 API v3
	defaultEndpoint = "https://shopping.yahooapis.jp/ShoppingWebService/V3/itemSearch"

	defaultResults = 10
	maxResults     = 100

	// defaultSort 리뷰 수 내림차순
	defaultSort = "-review_count"
)

const appIDEnvKey = "YAHOO_APP_ID"

var allowedSorts = []string{"-score", "+price", "-price", "-review_count"}

type querySettings struct {
	Query    string `json:"query"`
	Category string `json:"category"`
}

type settings struct {
	AppID    string          `json:"app_id"`
	Endpoint string          `json:"endpoint"`
	Results  int             `json:"results"`
	Sort     string          `json:"sort"`
	Queries  []querySettings `json:"queries"`

	AmazonURL string `json:"amazon_url"`
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ source.Validator = (*settings)(nil)

func (s *settings) Validate() error {
	s.AppID = strings.TrimSpace(s.AppID)
	if s.AppID == "" {
		s.AppID = strings.TrimSpace(os.Getenv(appIDEnvKey))
	}
	if s.AppID == "" {
		return ErrAppIDMissing
	}

	s.Endpoint = strings.TrimSpace(s.Endpoint)
	if s.Endpoint == "" {
		s.Endpoint = defaultEndpoint
	}
	if u, err := url.Parse(s.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		return apperrors.Newf(apperrors.InvalidInput, "endpoint가 올바른 URL이 아닙니다 (입력값: %s)", s.Endpoint)
	}

	if s.Results == 0 {
		s.Results = defaultResults
	}
	if s.Results < 1 || s.Results > maxResults {
		return apperrors.Newf(apperrors.InvalidInput, "results는 1~%d 사이여야 합니다 (입력값: %d)", maxResults, s.Results)
	}

	if s.Sort == "" {
		s.Sort = defaultSort
	}
	valid := false
	for _, v := range allowedSorts {
		if s.Sort == v {
			valid = true
			break
		}
	}
	if !valid {
		return apperrors.Newf(apperrors.InvalidInput, "sort는 %s 중 하나여야 합니다 (입력값: %s)", strings.Join(allowedSorts, ", "), s.Sort)
	}

	if len(s.Queries) == 0 {
		return apperrors.New(apperrors.InvalidInput, "queries가 비어 있습니다")
	}
	for i := range s.Queries {
		s.Queries[i].Query = strings.TrimSpace(s.Queries[i].Query)
		s.Queries[i].Category = strings.TrimSpace(s.Queries[i].Category)
		if s.Queries[i].Query == "" {
			return apperrors.Newf(apperrors.InvalidInput, "queries[%d]의 query가 비어 있습니다", i)
		}
	}

	return nil
}
