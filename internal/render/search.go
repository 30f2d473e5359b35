package render

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
)

const searchIndexFile = "search_index.json"

// searchEntry 브라우저 검색 스크립트가 읽는 상품 하나의 항목입니다.
type searchEntry struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	PageURL        string `json:"page_url"`
	ImageURL       string `json:"image_url"`
	Price          int    `json:"price"`
	Headline       string `json:"ai_headline"`
	SearchableText string `json:"searchable_text"`
}

func (r *Renderer) renderSearchIndex(_ context.Context, w *siteWriter) error {
	st := w.site

	entries := make([]searchEntry, 0, len(st.records))
	for _, rec := range st.records {
		text := []string{rec.Name, rec.Description}
		text = append(text, rec.Tags...)
		text = append(text, rec.Category.Main, rec.Category.Sub)

		entries = append(entries, searchEntry{
			ID:             rec.ID,
			Name:           rec.Name,
			PageURL:        st.pagePaths[rec.ID],
			ImageURL:       rec.ImageURL,
			Price:          rec.Price,
			Headline:       rec.Headline,
			SearchableText: strings.ToLower(strings.Join(text, " ")),
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return apperrors.Wrap(err, apperrors.Internal, "검색 인덱스를 만들 수 없습니다")
	}
	return w.write(searchIndexFile, buf.Bytes())
}
