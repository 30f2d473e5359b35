package catalog

import "strings"

// FieldKind AI가 생성하는 필드의 종류입니다.
type FieldKind uint8

const (
	// Summary 상품 요약 (ai_summary)
	Summary FieldKind = 1 << iota

	// Analysis 가격 분석 헤드라인과 본문 (ai_headline, ai_analysis)
	Analysis

	// CategoryField 카테고리 (category.main / category.sub)
	CategoryField

	// Tags 키워드 태그
	Tags
)

// AllFields 정의된 모든 FieldKind를 고정된 순서로 나열합니다.
var AllFields = []FieldKind{Summary, Analysis, CategoryField, Tags}

func (f FieldKind) String() string {
	switch f {
	case Summary:
		return "Summary"
	case Analysis:
		return "Analysis"
	case CategoryField:
		return "Category"
	case Tags:
		return "Tags"
	}
	return "FieldKind(?)"
}

// FieldSet FieldKind의 집합입니다.
type FieldSet uint8

// NewFieldSet 주어진 필드로 구성된 집합을 만듭니다.
func NewFieldSet(fields ...FieldKind) FieldSet {
	var s FieldSet
	for _, f := range fields {
		s = s.With(f)
	}
	return s
}

// With f를 추가한 집합을 반환합니다.
func (s FieldSet) With(f FieldKind) FieldSet { return s | FieldSet(f) }

// Has f가 포함되어 있는지 확인합니다.
func (s FieldSet) Has(f FieldKind) bool { return s&FieldSet(f) != 0 }

// Empty 집합이 비어 있는지 확인합니다.
func (s FieldSet) Empty() bool { return s == 0 }

// Fields 포함된 필드를 AllFields 순서로 반환합니다.
func (s FieldSet) Fields() []FieldKind {
	var out []FieldKind
	for _, f := range AllFields {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

func (s FieldSet) String() string {
	names := make([]string, 0, len(AllFields))
	for _, f := range s.Fields() {
		names = append(names, f.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}

// IsFieldEmpty 레코드의 해당 AI 필드가 아직 생성되지 않은 상태인지 확인합니다.
func IsFieldEmpty(r *ProductRecord, f FieldKind) bool {
	switch f {
	case Summary:
		return r.Summary == ""
	case Analysis:
		return r.Headline == "" || r.Analysis == ""
	case CategoryField:
		return r.Category.Main == "" || r.Category.Sub == ""
	case Tags:
		return len(r.Tags) == 0
	}
	return false
}

// NeedsRecompute 해당 필드를 지금 (다시) 생성해야 하는지 판단합니다.
//
//	조건                         | Summary/Tags/Category | Analysis
//	기존 레코드 없음              | true                  | true
//	필드가 비어 있음              | true                  | true
//	값 있음, 가격 변동 없음        | false                 | false
//	값 있음, 가격 변동 있음        | false                 | true
func NeedsRecompute(existing *ProductRecord, priceChanged bool, f FieldKind) bool {
	if existing == nil || IsFieldEmpty(existing, f) {
		return true
	}
	return f == Analysis && priceChanged
}

// StaleFields 레코드에서 다시 생성해야 하는 필드 집합을 반환합니다.
func StaleFields(existing *ProductRecord, priceChanged bool) FieldSet {
	var s FieldSet
	for _, f := range AllFields {
		if NeedsRecompute(existing, priceChanged, f) {
			s = s.With(f)
		}
	}
	return s
}
