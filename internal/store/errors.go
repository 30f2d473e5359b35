package store

import (
	"errors"

	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
)

var (
	// ErrCorruptStore 저장 파일을 해석할 수 없을 때의 기준 에러입니다.
	ErrCorruptStore = apperrors.New(apperrors.ParsingFailed, "저장소 파일 손상")

	// ErrStoreWriteFailed 저장소 기록에 실패했을 때의 기준 에러입니다. 실행을 중단해야 하는 치명적 오류입니다.
	ErrStoreWriteFailed = apperrors.New(apperrors.System, "저장소 기록 실패")

	// ErrReadOnly 읽기 전용으로 연 저장소에 기록하려 할 때의 에러입니다.
	ErrReadOnly = apperrors.New(apperrors.InvalidInput, "읽기 전용 저장소에는 기록할 수 없습니다")
)

// NewErrCorruptStore 손상 위치와 원인을 포함한 CorruptStore 에러를 생성합니다.
func NewErrCorruptStore(path string, cause error) error {
	return apperrors.Wrapf(errors.Join(ErrCorruptStore, cause), apperrors.ParsingFailed, "저장소 파일(%s)을 해석할 수 없습니다", path)
}

// NewErrStoreWriteFailed 기록 단계와 원인을 포함한 StoreWriteFailure 에러를 생성합니다.
func NewErrStoreWriteFailed(path, stage string, cause error) error {
	return apperrors.Wrapf(errors.Join(ErrStoreWriteFailed, cause), apperrors.System, "저장소 파일(%s) 기록 실패: %s", path, stage)
}

// IsCorruptStore err가 CorruptStore 에러인지 확인합니다.
func IsCorruptStore(err error) bool { return errors.Is(err, ErrCorruptStore) }

// IsStoreWriteFailed err가 StoreWriteFailure 에러인지 확인합니다.
func IsStoreWriteFailed(err error) bool { return errors.Is(err, ErrStoreWriteFailed) }
