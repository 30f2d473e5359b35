// Package enrich 상품의 AI 생성 필드(요약, 태그, 카테고리, 가격 분석)를 만들어 레코드에 반영합니다.
//
// 실제 문장 생성은 Generator 구현(openai 패키지)이 담당하며, Processor는 병합 단계가 고른
// 작업 목록(catalog.Work)을 동시에 처리한 뒤 결과를 catalog.ApplyDerived로 한 번에 반영합니다.
package enrich

import (
	"context"

	"github.com/darkkaiser/kaidoki-navi/internal/catalog"
)

const component = "enrich"

// MetadataInput 요약/태그/서브 카테고리 생성에 필요한 상품 정보입니다.
type MetadataInput struct {
	ID          string
	Name        string
	Description string
}

// Metadata 생성된 요약, 태그, 서브 카테고리입니다.
type Metadata struct {
	Summary     string
	Tags        []string
	SubCategory string
}

// AnalysisInput 가격 분석 생성에 필요한 상품 정보입니다.
type AnalysisInput struct {
	ID      string
	Name    string
	Price   int
	History []catalog.PricePoint
}

// Analysis 생성된 가격 분석 헤드라인과 본문입니다.
type Analysis struct {
	Headline string
	Analysis string
}

// Generator AI 생성 필드를 만드는 외부 협력자입니다.
type Generator interface {
	Metadata(ctx context.Context, in MetadataInput) (Metadata, error)
	Analysis(ctx context.Context, in AnalysisInput) (Analysis, error)
}

// Disabled API 키가 없을 때 사용하는 Generator입니다. 네트워크 호출 없이 항상 실패합니다.
type Disabled struct{}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Generator = Disabled{}

func (Disabled) Metadata(context.Context, MetadataInput) (Metadata, error) {
	return Metadata{}, ErrGeneratorDisabled
}

func (Disabled) Analysis(context.Context, AnalysisInput) (Analysis, error) {
	return Analysis{}, ErrGeneratorDisabled
}
