package source

import (
	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
)

var (
	// ErrUnknownSourceType 등록되지 않은 수집처 유형입니다.
	ErrUnknownSourceType = apperrors.New(apperrors.InvalidInput, "지원하지 않는 수집처 유형입니다")

	// ErrAlreadyRegistered 같은 유형의 Factory가 이미 등록되어 있습니다.
	ErrAlreadyRegistered = apperrors.New(apperrors.Conflict, "이미 등록된 수집처 유형입니다")
)

func newErrInvalidSettings(sourceID string, err error) error {
	return apperrors.Wrapf(err, apperrors.InvalidInput, "수집처(%s)의 설정이 올바르지 않습니다", sourceID)
}
