package server

import (
	"errors"
	"net/http"

	applog "github.com/darkkaiser/kaidoki-navi/pkg/log"
	"github.com/labstack/echo/v4"
)

// errorResponse API 에러 응답 본문입니다.
type errorResponse struct {
	ResultCode int    `json:"result_code"`
	Message    string `json:"message"`
}

// errorHandler 모든 에러를 errorResponse JSON으로 변환합니다.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "내부 서버 오류가 발생하였습니다"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	}
	if code == http.StatusNotFound && message == http.StatusText(http.StatusNotFound) {
		message = "페이지를 찾을 수 없습니다"
	}

	fields := applog.Fields{
		"path":        c.Request().URL.Path,
		"method":      c.Request().Method,
		"status_code": code,
		"error":       err,
		"remote_ip":   c.RealIP(),
		"request_id":  c.Response().Header().Get(echo.HeaderXRequestID),
	}
	if code >= http.StatusInternalServerError {
		applog.WithComponentAndFields(component, fields).Error("HTTP 요청 처리 실패: 서버 오류")
	} else if code >= http.StatusBadRequest {
		applog.WithComponentAndFields(component, fields).Warn("HTTP 요청 처리 실패: 클라이언트 오류")
	}

	var respErr error
	if c.Request().Method == http.MethodHead {
		respErr = c.NoContent(code)
	} else {
		respErr = c.JSON(code, errorResponse{ResultCode: code, Message: message})
	}
	if respErr != nil {
		applog.WithComponentAndFields(component, applog.Fields{"error": respErr}).Error("에러 응답 전송 실패")
	}
}
