package catalog

import "strings"

// DerivedValue AI가 생성한 필드 값입니다. Field에 해당하는 값만 사용합니다.
type DerivedValue struct {
	Summary  string
	Headline string
	Analysis string
	Category Category
	Tags     []string
}

// DerivedResult 상품 하나의 필드 하나에 대한 생성 결과입니다.
// Err가 nil이 아니면 생성에 실패한 것이며 Value는 무시됩니다.
type DerivedResult struct {
	ID    string
	Field FieldKind
	Value DerivedValue
	Err   error
}

// Failed 생성에 실패했는지 여부입니다.
func (r DerivedResult) Failed() bool { return r.Err != nil }

// ApplyReport ApplyDerived의 처리 결과입니다.
type ApplyReport struct {
	Applied int
	Failed  []DerivedResult

	// Unknown Store에 없는 ID를 가리킨 결과 수
	Unknown int
}

// ApplyDerived 성공한 생성 결과만 레코드에 필드 단위로 반영합니다.
//
// 실패한 필드는 기존 값(또는 빈 값)을 그대로 유지하므로, 같은 레코드의 다른 필드나
// 다른 레코드의 결과 반영에는 영향을 주지 않습니다.
func ApplyDerived(s Store, results []DerivedResult) ApplyReport {
	var rep ApplyReport

	for _, res := range results {
		if res.Failed() {
			rep.Failed = append(rep.Failed, res)
			continue
		}

		rec, ok := s[res.ID]
		if !ok {
			rep.Unknown++
			continue
		}

		v := res.Value
		switch res.Field {
		case Summary:
			rec.Summary = CleanText(v.Summary)
		case Analysis:
			rec.Headline = CleanText(v.Headline)
			rec.Analysis = CleanText(v.Analysis)
		case CategoryField:
			if main := strings.TrimSpace(v.Category.Main); main != "" {
				rec.Category.Main = main
			}
			rec.Category.Sub = strings.TrimSpace(v.Category.Sub)
		case Tags:
			rec.Tags = NormalizeTags(v.Tags)
		default:
			continue
		}
		rep.Applied++
	}

	return rep
}
