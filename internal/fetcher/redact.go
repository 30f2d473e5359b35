package fetcher

import (
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/darkkaiser/kaidoki-navi/pkg/strutil"
)

// sensitiveQueryKeys 값이 마스킹되는 쿼리 파라미터 이름 (소문자, 완전 일치)
var sensitiveQueryKeys = []string{
	"token", "key", "secret", "password", "signature",
	"api_key", "apikey", "access_token", "client_secret",
	"appid", "app_id", "applicationid", "affiliateid",
}

// sensitiveHeaders 값이 마스킹되는 헤더
var sensitiveHeaders = []string{"Authorization", "Proxy-Authorization", "Cookie", "Set-Cookie"}

// RedactURL 로그와 에러 메시지에 남겨도 안전하도록 사용자 정보와 민감한 쿼리 값을 마스킹합니다.
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	c := *u
	if c.User != nil {
		if _, hasPassword := c.User.Password(); hasPassword {
			c.User = url.UserPassword(c.User.Username(), "xxxxx")
		}
	}

	if c.RawQuery != "" {
		q := c.Query()
		for key, values := range q {
			if !slices.Contains(sensitiveQueryKeys, strings.ToLower(key)) {
				continue
			}
			for i, v := range values {
				values[i] = strutil.MaskSensitiveData(v)
			}
		}
		c.RawQuery = q.Encode()
	}

	return c.String()
}

func redactHeaders(h http.Header) http.Header {
	if h == nil {
		return nil
	}

	masked := h.Clone()
	for _, key := range sensitiveHeaders {
		if masked.Get(key) != "" {
			masked.Set(key, "***")
		}
	}
	return masked
}
