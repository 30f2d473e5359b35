package catalog

// Work 한 상품에 대해 다시 생성해야 하는 AI 필드 목록입니다.
type Work struct {
	ID     string
	Fields FieldSet
}

// PriceChange 기존 상품의 가격이 직전 관측일 대비 달라진 내역입니다.
type PriceChange struct {
	ID       string
	Name     string
	Previous int
	Current  int
}

// Dropped 가격이 내려갔는지 여부입니다.
func (c PriceChange) Dropped() bool { return c.Current < c.Previous }

// ReconcileResult Reconcile의 결과입니다.
type ReconcileResult struct {
	// Store 다음에 저장할 전체 레코드 집합 (기존 레코드를 모두 포함)
	Store Store

	// Work AI 필드 재생성 대상. 배치에서 처음 등장한 순서이며 상품당 하나입니다.
	Work []Work

	Created      []string
	Updated      []string
	PriceChanges []PriceChange

	// Skipped 형식 오류로 건너뛴 항목의 MalformedRecord 에러
	Skipped []error
}

// Reconcile 저장된 레코드 집합에 새로 수집한 배치를 병합합니다.
//
// 배치의 각 항목에 대해
//   - 처음 보는 ID이면 NewRecord로 생성하고 모든 AI 필드를 재생성 대상으로 표시합니다.
//   - 이미 있는 ID이면 이름, 설명, 가격, 수집처 정보를 덮어쓰고 가격 이력을 갱신한 뒤
//     NeedsRecompute 규칙으로 재생성 대상 필드를 고릅니다.
//   - 형식 오류인 항목은 Skipped에 기록하고 건너뜁니다.
//
// 배치에 없는 기존 레코드는 그대로 유지되므로 결과 Store는 항상 기존 Store의 상위 집합입니다.
// existing은 수정하지 않으며 AI 생성은 호출 측이 Work를 보고 별도로 수행합니다.
func Reconcile(existing Store, batch []RawItem, today Date) ReconcileResult {
	res := ReconcileResult{Store: existing.Clone()}

	workIndex := make(map[string]int)
	seen := make(map[string]bool)

	addWork := func(id string, fields FieldSet) {
		if fields.Empty() {
			return
		}
		if i, ok := workIndex[id]; ok {
			res.Work[i].Fields |= fields
			return
		}
		workIndex[id] = len(res.Work)
		res.Work = append(res.Work, Work{ID: id, Fields: fields})
	}

	for _, item := range batch {
		fresh, err := NewRecord(item, today)
		if err != nil {
			res.Skipped = append(res.Skipped, err)
			continue
		}

		rec, ok := res.Store[fresh.ID]
		if !ok {
			res.Store[fresh.ID] = fresh
			res.Created = append(res.Created, fresh.ID)
			seen[fresh.ID] = true
			addWork(fresh.ID, StaleFields(nil, false))
			continue
		}

		rec.Name = fresh.Name
		rec.Description = fresh.Description
		rec.Price = fresh.Price
		rec.SourceFields = fresh.SourceFields
		if rec.Category.Main == "" {
			rec.Category.Main = fresh.Category.Main
		}
		if rec.PageURL == "" {
			rec.PageURL = fresh.PageURL
		}
		if rec.CreatedOn == "" {
			rec.CreatedOn = today
		}

		var previous int
		if n := len(rec.PriceHistory); n > 0 {
			previous = rec.PriceHistory[n-1].Price
			if rec.PriceHistory[n-1].Date == today && n > 1 {
				previous = rec.PriceHistory[n-2].Price
			}
		}

		var changed bool
		rec.PriceHistory, changed = AppendObservation(rec.PriceHistory, today, fresh.Price)
		if changed {
			res.PriceChanges = upsertPriceChange(res.PriceChanges, PriceChange{
				ID:       rec.ID,
				Name:     rec.Name,
				Previous: previous,
				Current:  fresh.Price,
			})
		}

		if !seen[rec.ID] {
			res.Updated = append(res.Updated, rec.ID)
			seen[rec.ID] = true
		}
		addWork(rec.ID, StaleFields(rec, changed))
	}

	return res
}

func upsertPriceChange(changes []PriceChange, c PriceChange) []PriceChange {
	for i := range changes {
		if changes[i].ID == c.ID {
			changes[i] = c
			return changes
		}
	}
	return append(changes, c)
}
