package store

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/darkkaiser/kaidoki-navi/internal/catalog"
)

// csvColumns 기존 캐시 파일과 같은 열 순서입니다.
var csvColumns = []string{
	"id", "name", "price", "image_url", "rakuten_url", "yahoo_url", "amazon_url",
	"page_url", "category", "ai_headline", "ai_analysis", "description",
	"ai_summary", "tags", "date", "main_ec_site", "price_history", "source",
}

// csvCodec 중첩 필드(category, tags, price_history)를 셀 안의 JSON으로 기록하는 CSV 형식입니다.
//
// 읽을 때는 헤더 이름으로 열을 찾으므로 열 순서가 달라도 되고 모르는 열은 무시합니다.
// id가 빈 행은 건너뛰고, 같은 id가 여러 번 나오면 마지막 행을 사용합니다.
type csvCodec struct{}

func (csvCodec) Encode(w io.Writer, s catalog.Store) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return err
	}

	for _, r := range s.Records() {
		row, err := recordToRow(r)
		if err != nil {
			return fmt.Errorf("상품(%s) 직렬화 실패: %w", r.ID, err)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func recordToRow(r *catalog.ProductRecord) ([]string, error) {
	category, err := marshalCell(r.Category)
	if err != nil {
		return nil, err
	}
	tags, err := marshalCell(nonNil(r.Tags))
	if err != nil {
		return nil, err
	}
	history, err := marshalCell(nonNil(r.PriceHistory))
	if err != nil {
		return nil, err
	}

	return []string{
		r.ID,
		r.Name,
		strconv.Itoa(r.Price),
		r.ImageURL,
		r.RakutenURL,
		r.YahooURL,
		r.AmazonURL,
		r.PageURL,
		category,
		r.Headline,
		r.Analysis,
		r.Description,
		r.Summary,
		tags,
		string(r.CreatedOn),
		r.MainECSite,
		history,
		r.Source,
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (csvCodec) Decode(r io.Reader, repairs *repairLog) (catalog.Store, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return catalog.Store{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("헤더 읽기 실패: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")] = i
	}
	if _, ok := index["id"]; !ok {
		return nil, errors.New("헤더에 id 열이 없습니다")
	}

	s := make(catalog.Store)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		rec := rowToRecord(func(name string) string {
			if i, ok := index[name]; ok && i < len(row) {
				return row[i]
			}
			return ""
		}, repairs)
		if rec == nil {
			continue
		}
		s[rec.ID] = rec
	}

	return s, nil
}

// rowToRecord 열 이름으로 값을 읽어 레코드를 만듭니다. id가 비어 있으면 nil을 반환합니다.
//
// 해석할 수 없는 값은 행 전체를 버리지 않고 빈 값(가격은 마지막 이력 가격)으로 바꿉니다.
// 비워진 AI 생성 필드와 카테고리는 다음 실행에서 다시 생성됩니다.
func rowToRecord(cell func(string) string, repairs *repairLog) *catalog.ProductRecord {
	id := strings.TrimSpace(cell("id"))
	if id == "" {
		return nil
	}

	rec := &catalog.ProductRecord{
		ID:          id,
		Name:        cell("name"),
		Description: cell("description"),
		Headline:    cell("ai_headline"),
		Analysis:    cell("ai_analysis"),
		Summary:     cell("ai_summary"),
		PageURL:     cell("page_url"),
		SourceFields: catalog.SourceFields{
			ImageURL:   cell("image_url"),
			RakutenURL: cell("rakuten_url"),
			YahooURL:   cell("yahoo_url"),
			AmazonURL:  cell("amazon_url"),
			MainECSite: cell("main_ec_site"),
			Source:     cell("source"),
		},
	}

	if err := unmarshalCell(cell("category"), &rec.Category); err != nil {
		rec.Category = catalog.Category{}
		repairs.note(id, "category", err)
	}
	if err := unmarshalCell(cell("tags"), &rec.Tags); err != nil {
		rec.Tags = nil
		repairs.note(id, "tags", err)
	}

	var history []catalog.PricePoint
	if err := unmarshalCell(cell("price_history"), &history); err != nil {
		history = nil
		repairs.note(id, "price_history", err)
	}
	rec.PriceHistory = repairHistory(id, history, repairs)

	if price, err := catalog.ParsePrice(cell("price")); err == nil {
		rec.Price = price
	} else {
		rec.Price = rec.LastPrice()
		repairs.note(id, "price", err)
	}

	if d := strings.TrimSpace(cell("date")); d != "" {
		date, err := catalog.ParseDate(d)
		if err != nil {
			if len(rec.PriceHistory) > 0 {
				date = rec.PriceHistory[0].Date
			}
			repairs.note(id, "date", err)
		}
		rec.CreatedOn = date
	}

	normalize(rec)
	return rec
}

// unmarshalCell 빈 셀은 값이 없는 것으로 봅니다.
func unmarshalCell(s string, v any) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), v)
}
