package rakuten

import (
	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
)

// ErrApplicationIDMissing 설정과 환경 변수 어디에도 楽天 API의 applicationId가 없습니다.
var ErrApplicationIDMissing = apperrors.New(apperrors.InvalidInput, "application_id는 필수 설정값입니다 (환경 변수 RAKUTEN_APP_ID 또는 RAKUTEN_API_KEY로도 지정할 수 있습니다)")
