package catalog

import "slices"

// AppendObservation 오늘 관측한 가격을 이력에 반영하고, 직전 날짜 대비 가격 변동 여부를 반환합니다.
//
//   - 이력이 비어 있으면 항목을 추가하고 changed는 false 입니다. (비교 기준 없음)
//   - 마지막 항목이 오늘이면 새 항목을 추가하지 않고 오늘 항목의 가격을 최신 관측값으로 갱신합니다.
//     changed는 그 이전 날짜 항목과 비교하며, 이전 항목이 없으면 false 입니다.
//   - 그 외에는 항목을 추가하고 changed는 마지막 항목의 가격과 비교합니다.
//
// 같은 인자로 여러 번 호출해도 결과가 같으며, 입력 슬라이스는 수정하지 않습니다.
func AppendObservation(history []PricePoint, today Date, price int) ([]PricePoint, bool) {
	next := slices.Clone(history)

	n := len(next)
	switch {
	case n == 0:
		return append(next, PricePoint{Date: today, Price: price}), false

	case next[n-1].Date == today:
		next[n-1].Price = price
		if n < 2 {
			return next, false
		}
		return next, price != next[n-2].Price

	case next[n-1].Date > today:
		// 시계가 되돌아간 경우: 날짜 순서를 지키기 위해 기존 이력을 유지합니다.
		return next, false

	default:
		prev := next[n-1].Price
		return append(next, PricePoint{Date: today, Price: price}), price != prev
	}
}
