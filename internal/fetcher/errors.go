package fetcher

import (
	"fmt"

	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
)

var (
	// ErrMaxRetriesExceeded 재시도 횟수를 모두 소진했을 때의 원인 에러입니다.
	ErrMaxRetriesExceeded = apperrors.New(apperrors.Unavailable, "최대 재시도 횟수를 초과했습니다")
)

func newErrMaxRetriesExceeded(err error) error {
	return apperrors.Wrap(err, apperrors.Unavailable, "최대 재시도 횟수를 초과했습니다")
}

func newErrRetryAfterExceeded(retryAfter, maxDelay string) error {
	return apperrors.New(apperrors.Unavailable, fmt.Sprintf("서버가 요구한 대기 시간(%s)이 최대 재시도 대기 시간(%s)을 초과하여 재시도하지 않습니다", retryAfter, maxDelay))
}

func newErrGetBodyFailed(err error) error {
	return apperrors.Wrap(err, apperrors.Internal, "재시도를 위한 요청 본문 재생성에 실패했습니다")
}

func newErrResponseBodyTooLarge(limit int64) error {
	return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("응답 본문이 허용 크기(%d bytes)를 초과했습니다", limit))
}
