package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/darkkaiser/kaidoki-navi/internal/catalog"
	applog "github.com/darkkaiser/kaidoki-navi/pkg/log"
)

// codec Store를 파일 내용으로 직렬화합니다.
type codec interface {
	Encode(w io.Writer, s catalog.Store) error

	// Decode 파일 구조를 해석할 수 없으면 원인을 설명하는 에러를 반환합니다.
	// 셀 하나가 손상된 경우는 기본값으로 복구하고 repairs에 기록합니다.
	Decode(r io.Reader, repairs *repairLog) (catalog.Store, error)
}

// repairLog 읽는 동안 기본값으로 복구한 셀의 수를 셉니다.
type repairLog struct {
	count int
}

func (l *repairLog) note(id, column string, err error) {
	l.count++

	applog.WithComponentAndFields(component, applog.Fields{
		"id":     id,
		"column": column,
		"error":  err,
	}).Warn("손상된 값을 기본값으로 복구했습니다")
}

// marshalCell HTML 이스케이프 없이 한 줄짜리 JSON으로 직렬화합니다.
func marshalCell(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// normalize 빈 슬라이스를 nil로 맞춰 저장 전후의 레코드가 같게 만듭니다.
func normalize(r *catalog.ProductRecord) {
	if len(r.Tags) == 0 {
		r.Tags = nil
	}
	if len(r.PriceHistory) == 0 {
		r.PriceHistory = nil
	}
}

// validateHistory 가격 이력이 올바른 날짜의 오름차순이고 날짜가 중복되지 않는지 확인합니다.
func validateHistory(history []catalog.PricePoint) error {
	for i, p := range history {
		if _, err := catalog.ParseDate(string(p.Date)); err != nil {
			return err
		}
		if p.Price < 0 {
			return fmt.Errorf("%s의 가격이 음수입니다", p.Date)
		}
		if i > 0 && p.Date <= history[i-1].Date {
			return fmt.Errorf("날짜 순서가 올바르지 않습니다 (%s 다음 %s)", history[i-1].Date, p.Date)
		}
	}
	return nil
}

// repairHistory 규칙에 맞지 않는 가격 이력을 고칩니다.
// 날짜나 가격이 잘못된 항목은 버리고 날짜순으로 정렬하며, 같은 날짜는 뒤에 기록된 항목을 남깁니다.
func repairHistory(id string, history []catalog.PricePoint, repairs *repairLog) []catalog.PricePoint {
	err := validateHistory(history)
	if err == nil {
		return history
	}
	repairs.note(id, "price_history", err)

	valid := make([]catalog.PricePoint, 0, len(history))
	for _, p := range history {
		if _, err := catalog.ParseDate(string(p.Date)); err != nil || p.Price < 0 {
			continue
		}
		valid = append(valid, p)
	}
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Date < valid[j].Date })

	out := valid[:0]
	for _, p := range valid {
		if n := len(out); n > 0 && out[n-1].Date == p.Date {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}
