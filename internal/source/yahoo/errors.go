package yahoo

import (
	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
)

var (
	// ErrAppIDMissing 설정과 환경 변수 YAHOO_APP_ID 어디에도 Client ID(appid)가 없습니다.
	ErrAppIDMissing = apperrors.New(apperrors.InvalidInput, "app_id는 필수 설정값입니다")

	// ErrUnexpectedResponse 응답에 hits 배열이 없습니다.
	ErrUnexpectedResponse = apperrors.New(apperrors.ParsingFailed, "Yahoo!ショッピング API 응답 형식이 올바르지 않습니다")
)
