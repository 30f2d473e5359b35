package catalog

import (
	"time"

	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
)

// DateLayout 가격 이력과 저장 파일에서 사용하는 ISO-8601 날짜 형식입니다.
const DateLayout = "2006-01-02"

// Date ISO-8601 형식("2006-01-02")의 달력 날짜입니다.
// 같은 형식끼리는 문자열 비교 순서가 날짜 순서와 일치합니다.
type Date string

// DateOf t가 속한 달력 날짜를 반환합니다. 시간대는 호출 측에서 t에 반영되어 있어야 합니다.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// ParseDate 문자열을 Date로 변환합니다.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", apperrors.Wrapf(err, apperrors.ParsingFailed, "날짜 형식(%q)이 올바르지 않습니다", s)
	}
	return DateOf(t), nil
}

// Time 해당 날짜의 UTC 자정 시각을 반환합니다.
func (d Date) Time() time.Time {
	t, _ := time.Parse(DateLayout, string(d))
	return t
}

func (d Date) String() string { return string(d) }
