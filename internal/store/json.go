package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/darkkaiser/kaidoki-navi/internal/catalog"
)

// jsonCodec 레코드 배열을 ID 순으로 기록하는 JSON 형식입니다.
type jsonCodec struct{}

func (jsonCodec) Encode(w io.Writer, s catalog.Store) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "\t")
	return enc.Encode(s.Records())
}

func (jsonCodec) Decode(r io.Reader, repairs *repairLog) (catalog.Store, error) {
	var records []*catalog.ProductRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return catalog.Store{}, nil
		}
		return nil, err
	}

	s := make(catalog.Store, len(records))
	for i, rec := range records {
		if rec == nil || rec.ID == "" {
			repairs.note("", "id", fmt.Errorf("%d번째 레코드에 id가 없어 건너뜁니다", i))
			continue
		}
		rec.PriceHistory = repairHistory(rec.ID, rec.PriceHistory, repairs)
		normalize(rec)
		s[rec.ID] = rec
	}
	return s, nil
}
