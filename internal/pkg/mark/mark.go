// Package mark 알림 메시지에서 사용하는 이모지 상수를 모아 둔 패키지입니다.
package mark

import (
	"fmt"
	"slices"
)

// Mark 이모지 상수를 위한 타입입니다.
type Mark string

const (
	// 신규 상품
	New Mark = "🆕"

	// 가격 하락
	PriceDown Mark = "📉"

	// 가격 상승
	PriceUp Mark = "📈"

	// 역대 최저가
	BestPrice Mark = "🔥"

	// 실행 완료
	Done Mark = "✅"

	// 긴급/오류
	Alert Mark = "🚨"
)

var all = []Mark{New, PriceDown, PriceUp, BestPrice, Done, Alert}

// Values 정의된 모든 마크를 반환합니다. 반환된 슬라이스는 복사본입니다.
func Values() []Mark {
	return slices.Clone(all)
}

// Parse 문자열을 Mark로 변환합니다. 정의되지 않은 값이면 에러를 반환합니다.
func Parse(s string) (Mark, error) {
	if m := Mark(s); slices.Contains(all, m) {
		return m, nil
	}
	return "", fmt.Errorf("정의되지 않은 마크입니다: %q", s)
}

// WithSpace 마크(이모지) 앞에 구분용 공백을 추가하여 반환합니다.
func (m Mark) WithSpace() string {
	if m == "" {
		return ""
	}
	return " " + string(m)
}

// String 마크의 순수 이모지 값을 문자열로 반환합니다.
func (m Mark) String() string {
	return string(m)
}
