// Package strutil 문자열 처리 유틸리티를 제공합니다.
package strutil

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// NormalizeSpaces 앞뒤 공백을 제거하고 연속된 공백(개행 포함)을 하나로 축약합니다.
func NormalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Integer 모든 정수 타입
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// FormatCommas 정수를 천 단위 구분 기호가 포함된 문자열로 변환합니다.
// 예: 1234567 -> "1,234,567"
func FormatCommas[T Integer](n T) string {
	s := strconv.FormatInt(int64(n), 10)
	if n > 0 && int64(n) < 0 {
		// int64 범위를 넘는 부호 없는 값
		s = strconv.FormatUint(uint64(n), 10)
	}

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}

	var b strings.Builder
	b.Grow(len(sign) + len(s) + (len(s)-1)/3)
	b.WriteString(sign)

	head := len(s) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(s[:head])
	for i := head; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// SplitAndTrim 구분자로 나눈 뒤 각 항목을 TrimSpace 하고 빈 항목은 제외합니다.
// 결과가 없으면 nil을 반환합니다.
func SplitAndTrim(s, sep string) []string {
	var out []string
	for _, tok := range strings.Split(s, sep) {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// TruncateRunes 문자열을 최대 n개의 문자(rune)로 자르고, 잘린 경우 suffix를 붙입니다.
func TruncateRunes(s string, n int, suffix string) string {
	if n < 0 || utf8.RuneCountInString(s) <= n {
		return s
	}

	i := 0
	for pos := range s {
		if i == n {
			return s[:pos] + suffix
		}
		i++
	}
	return s
}

// MaskSensitiveData API 키나 토큰을 로그에 남길 때 앞뒤 일부만 노출합니다.
func MaskSensitiveData(data string) string {
	switch {
	case data == "":
		return ""
	case len(data) <= 3:
		return "***"
	case len(data) <= 12:
		return data[:4] + "***"
	default:
		return data[:4] + "***" + data[len(data)-4:]
	}
}
