package server

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/darkkaiser/kaidoki-navi/internal/catalog"
	"github.com/darkkaiser/kaidoki-navi/internal/pkg/version"
	"github.com/labstack/echo/v4"
)

const (
	defaultPerPage = 24
	maxPerPage     = 100
)

// Loader 저장된 상품 레코드 집합을 읽습니다.
type Loader interface {
	Load(ctx context.Context) (catalog.Store, error)
}

type handler struct {
	loader    Loader
	buildInfo version.Info
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type productListResponse struct {
	Total   int                      `json:"total"`
	Page    int                      `json:"page"`
	PerPage int                      `json:"per_page"`
	Items   []*catalog.ProductRecord `json:"items"`
}

// listQuery GET /api/v1/products 의 쿼리 파라미터입니다.
type listQuery struct {
	Category string
	Tag      string
	Query    string
	Sort     string
	Page     int
	PerPage  int
}

func (h *handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "UP", Version: h.buildInfo.Version})
}

func (h *handler) version(c echo.Context) error {
	return c.JSON(http.StatusOK, h.buildInfo)
}

// listProducts 조건에 맞는 상품을 정렬하여 페이지 단위로 반환합니다.
//
//	category: 메인 카테고리, tag: 태그, q: 이름/설명 검색어
//	sort: new(기본) | price_asc | price_desc
func (h *handler) listProducts(c echo.Context) error {
	q := listQuery{Sort: "new", Page: 1, PerPage: defaultPerPage}
	err := echo.QueryParamsBinder(c).
		String("category", &q.Category).
		String("tag", &q.Tag).
		String("q", &q.Query).
		String("sort", &q.Sort).
		Int("page", &q.Page).
		Int("per_page", &q.PerPage).
		BindError()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "쿼리 파라미터 형식이 올바르지 않습니다")
	}
	if q.Page < 1 || q.PerPage < 1 || q.PerPage > maxPerPage {
		return echo.NewHTTPError(http.StatusBadRequest, "page는 1 이상, per_page는 1~100 범위여야 합니다")
	}

	cmp, ok := sorters[q.Sort]
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "지원하지 않는 정렬 방식입니다: "+q.Sort)
	}

	s, err := h.loader.Load(c.Request().Context())
	if err != nil {
		return err
	}

	items := filterRecords(s.Records(), q)
	slices.SortStableFunc(items, cmp)

	resp := productListResponse{Total: len(items), Page: q.Page, PerPage: q.PerPage, Items: []*catalog.ProductRecord{}}
	if start := (q.Page - 1) * q.PerPage; start < len(items) {
		resp.Items = items[start:min(start+q.PerPage, len(items))]
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *handler) getProduct(c echo.Context) error {
	s, err := h.loader.Load(c.Request().Context())
	if err != nil {
		return err
	}

	rec, ok := s[c.Param("id")]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "상품을 찾을 수 없습니다")
	}
	return c.JSON(http.StatusOK, rec)
}

var sorters = map[string]func(a, b *catalog.ProductRecord) int{
	"new": func(a, b *catalog.ProductRecord) int {
		if c := strings.Compare(string(b.CreatedOn), string(a.CreatedOn)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	},
	"price_asc": func(a, b *catalog.ProductRecord) int {
		if a.Price != b.Price {
			return a.Price - b.Price
		}
		return strings.Compare(a.ID, b.ID)
	},
	"price_desc": func(a, b *catalog.ProductRecord) int {
		if a.Price != b.Price {
			return b.Price - a.Price
		}
		return strings.Compare(a.ID, b.ID)
	},
}

func filterRecords(records []*catalog.ProductRecord, q listQuery) []*catalog.ProductRecord {
	keyword := strings.ToLower(strings.TrimSpace(q.Query))

	var out []*catalog.ProductRecord
	for _, r := range records {
		if q.Category != "" && r.Category.Main != q.Category {
			continue
		}
		if q.Tag != "" && !slices.Contains(r.Tags, q.Tag) {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(r.Name+" "+r.Description), keyword) {
			continue
		}
		out = append(out, r)
	}
	return out
}
