// Package catalog 상품 레코드 모델과 수집 결과 병합(reconcile) 로직을 제공합니다.
//
// 이 패키지는 순수 함수로만 구성되며 네트워크나 파일에 접근하지 않습니다.
// 수집(source), AI 생성(enrich), 저장(store), 렌더링(render)은 모두 이 패키지의
// 타입을 주고받는 바깥쪽 협력자입니다.
package catalog

import (
	"fmt"
	"hash/fnv"
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/iancoleman/strcase"
	"golang.org/x/text/width"
)

// UncategorizedMain 분류할 수 없는 상품의 메인 카테고리입니다.
const UncategorizedMain = "その他"

// Category 상품 분류입니다. Sub는 AI 생성 단계가 채우기 전까지 비어 있습니다.
type Category struct {
	Main string `json:"main"`
	Sub  string `json:"sub"`
}

// PricePoint 특정 날짜에 관측된 가격입니다.
type PricePoint struct {
	Date  Date `json:"date"`
	Price int  `json:"price"`
}

// SourceFields 수집처에서 그대로 전달되는 부가 정보입니다. 수집할 때마다 최신 값으로 덮어씁니다.
type SourceFields struct {
	ImageURL   string `json:"image_url"`
	RakutenURL string `json:"rakuten_url"`
	YahooURL   string `json:"yahoo_url"`
	AmazonURL  string `json:"amazon_url"`
	MainECSite string `json:"main_ec_site"`
	Source     string `json:"source"`
}

// ProductRecord 여러 실행에 걸쳐 추적되는 상품 하나입니다.
//
// Headline, Analysis, Summary, Tags, Category.Sub 는 AI 생성 필드이며
// 빈 값은 "아직 생성되지 않음"을 뜻합니다. Tags는 nil 이거나 비어 있지 않은 슬라이스입니다.
type ProductRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"`

	Category Category `json:"category"`
	Tags     []string `json:"tags"`
	Headline string   `json:"ai_headline"`
	Analysis string   `json:"ai_analysis"`
	Summary  string   `json:"ai_summary"`

	PriceHistory []PricePoint `json:"price_history"`

	PageURL   string `json:"page_url"`
	CreatedOn Date   `json:"date"`

	SourceFields
}

// RawItem 수집처에서 받은 가공 전 상품입니다.
// ID와 Price는 필수이며 Price는 "1,280", "１２８０円", "¥1280" 같은 표기를 허용합니다.
type RawItem struct {
	ID           string
	Name         string
	Price        string
	Description  string
	CategoryHint string

	SourceFields
}

// NewRecord 처음 관측된 상품으로 새 레코드를 생성합니다.
//
// 가격 이력은 오늘 날짜의 가격 하나로 시작하고 AI 생성 필드는 모두 비어 있습니다.
// ID가 비어 있거나 가격을 0 이상의 정수로 해석할 수 없으면 MalformedRecord 에러를 반환합니다.
func NewRecord(item RawItem, today Date) (*ProductRecord, error) {
	id := strings.TrimSpace(item.ID)
	if id == "" {
		return nil, NewErrMalformedRecord("", "상품 식별자가 비어 있습니다")
	}

	price, err := ParsePrice(item.Price)
	if err != nil {
		return nil, NewErrMalformedRecord(id, err.Error())
	}

	main := strings.TrimSpace(item.CategoryHint)
	if main == "" {
		main = UncategorizedMain
	}

	return &ProductRecord{
		ID:           id,
		Name:         CleanText(item.Name),
		Description:  CleanText(item.Description),
		Price:        price,
		Category:     Category{Main: main},
		PriceHistory: []PricePoint{{Date: today, Price: price}},
		PageURL:      PageURL(id),
		CreatedOn:    today,
		SourceFields: item.SourceFields,
	}, nil
}

// CleanText 앞뒤 공백을 제거하고 줄바꿈을 "\n"으로 통일합니다.
// 레코드의 텍스트 필드는 "\r\n"을 담지 않으므로 CSV로 저장했다가 읽어도 값이 달라지지 않습니다.
func CleanText(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
}

// ParsePrice 가격 문자열을 0 이상의 정수(엔)로 변환합니다.
// 전각 숫자, 천 단위 구분 기호, 앞쪽의 "¥", 뒤쪽의 "円"을 허용합니다.
func ParsePrice(s string) (int, error) {
	v := strings.TrimSpace(width.Fold.String(s))
	v = strings.TrimPrefix(v, "¥")
	v = strings.TrimSuffix(v, "円")
	v = strings.TrimSpace(strings.ReplaceAll(v, ",", ""))

	if v == "" {
		return 0, fmt.Errorf("가격이 비어 있습니다")
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("가격(%q)을 정수로 해석할 수 없습니다", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("가격(%q)이 음수입니다", s)
	}
	return n, nil
}

const pageNameMaxBytes = 60

var pageNameReplacer = strings.NewReplacer(
	"..", "--",
	"/", "-",
	"\\", "-",
	":", "-",
	"|", "-",
	"<", "-",
	">", "-",
	"\"", "-",
	"'", "-",
	"?", "-",
	"*", "-",
	"#", "-",
	"%", "-",
	"&", "-",
)

// PageURL 상품 ID로부터 상세 페이지의 상대 경로를 만듭니다.
//
// 사람이 읽을 수 있는 부분은 ID를 파일명으로 안전하게 바꾼 것이고, 뒤에 붙는 64비트 해시는
// 원래 ID 전체로 계산하므로 치환 결과가 같아지는 서로 다른 ID도 다른 경로를 갖습니다.
// 레코드 생성 시 한 번만 호출하며 이후에는 저장된 값을 그대로 사용합니다.
func PageURL(id string) string {
	name := strcase.ToKebab(id)
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7F {
			return '-'
		}
		return r
	}, name)
	name = truncateBytes(pageNameReplacer.Replace(name), pageNameMaxBytes)
	name = strings.Trim(name, "-.")

	h := fnv.New64a()
	_, _ = h.Write([]byte(id))

	if name == "" {
		return fmt.Sprintf("pages/item-%016x.html", h.Sum64())
	}
	return fmt.Sprintf("pages/%s-%016x.html", name, h.Sum64())
}

func truncateBytes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	n := 0
	for n < len(s) {
		_, size := utf8.DecodeRuneInString(s[n:])
		if n+size > limit {
			break
		}
		n += size
	}
	return s[:n]
}

// NormalizeTags 태그의 공백을 정리하고 빈 값과 중복을 제거합니다. 남는 태그가 없으면 nil을 반환합니다.
func NormalizeTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		t = CleanText(strings.TrimPrefix(CleanText(t), "#"))
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// LastPrice 가격 이력의 마지막 가격을 반환합니다. 이력이 없으면 현재 가격입니다.
func (r *ProductRecord) LastPrice() int {
	if n := len(r.PriceHistory); n > 0 {
		return r.PriceHistory[n-1].Price
	}
	return r.Price
}

// LowestPrice 가격 이력상의 최저가를 반환합니다.
func (r *ProductRecord) LowestPrice() int {
	lowest := r.Price
	for _, p := range r.PriceHistory {
		if p.Price < lowest {
			lowest = p.Price
		}
	}
	return lowest
}

// Clone 슬라이스까지 복사한 독립적인 사본을 반환합니다.
func (r *ProductRecord) Clone() *ProductRecord {
	c := *r
	c.Tags = slices.Clone(r.Tags)
	c.PriceHistory = slices.Clone(r.PriceHistory)
	return &c
}

// Store 상품 ID를 키로 하는 전체 레코드 집합입니다.
type Store map[string]*ProductRecord

// Clone 모든 레코드를 깊은 복사한 Store를 반환합니다.
func (s Store) Clone() Store {
	c := make(Store, len(s))
	for id, r := range s {
		c[id] = r.Clone()
	}
	return c
}

// IDs 정렬된 상품 ID 목록을 반환합니다.
func (s Store) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Records ID 순으로 정렬된 레코드 목록을 반환합니다.
func (s Store) Records() []*ProductRecord {
	out := make([]*ProductRecord, 0, len(s))
	for _, id := range s.IDs() {
		out = append(out, s[id])
	}
	return out
}
