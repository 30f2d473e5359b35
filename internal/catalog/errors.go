package catalog

import (
	"errors"

	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
)

// ErrMalformedRecord 수집된 상품 하나를 레코드로 만들 수 없을 때의 기준 에러입니다.
// 해당 상품만 건너뛰고 나머지 배치는 계속 처리합니다.
var ErrMalformedRecord = apperrors.New(apperrors.InvalidInput, "상품 데이터 형식 오류")

// NewErrMalformedRecord 식별자와 사유를 포함한 MalformedRecord 에러를 생성합니다.
func NewErrMalformedRecord(id, reason string) error {
	if id == "" {
		id = "(empty)"
	}
	return apperrors.Wrapf(ErrMalformedRecord, apperrors.InvalidInput, "상품(%s)을 건너뜁니다: %s", id, reason)
}

// IsMalformedRecord err이 MalformedRecord 에러인지 확인합니다.
func IsMalformedRecord(err error) bool {
	return errors.Is(err, ErrMalformedRecord)
}
