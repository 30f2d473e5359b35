package enrich

import (
	"errors"

	"github.com/darkkaiser/kaidoki-navi/internal/catalog"
	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
)

var (
	// ErrDerivedContent AI 생성 필드 하나를 만들지 못했을 때의 기준 에러입니다.
	// 해당 필드는 이전 값(또는 빈 값)을 유지하고 다음 실행에서 다시 시도됩니다.
	ErrDerivedContent = apperrors.New(apperrors.ExecutionFailed, "AI 생성 실패")

	// ErrGeneratorDisabled AI 생성이 비활성화되어 있습니다.
	ErrGeneratorDisabled = apperrors.New(apperrors.Unavailable, "AI 생성이 비활성화되어 있습니다 (API 키 없음)")

	// ErrEmptyContent 응답은 받았지만 필요한 값이 비어 있습니다.
	ErrEmptyContent = apperrors.New(apperrors.ParsingFailed, "생성된 내용이 비어 있습니다")
)

// NewErrDerivedContent 상품 ID와 필드를 포함한 DerivedContentFailure 에러를 생성합니다.
func NewErrDerivedContent(id string, field catalog.FieldKind, cause error) error {
	return apperrors.Wrapf(errors.Join(ErrDerivedContent, cause), apperrors.ExecutionFailed, "상품(%s)의 %s 생성에 실패했습니다", id, field)
}

// IsDerivedContent err이 DerivedContentFailure 에러인지 확인합니다.
func IsDerivedContent(err error) bool {
	return errors.Is(err, ErrDerivedContent)
}
