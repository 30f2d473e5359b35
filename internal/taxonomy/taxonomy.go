// Package taxonomy 상품을 사이트에 정의된 메인/서브 카테고리로 분류합니다.
package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/darkkaiser/kaidoki-navi/internal/catalog"
	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
	"gopkg.in/yaml.v3"
)

// OtherSub 정의된 서브 카테고리에 속하지 않을 때의 서브 카테고리입니다.
const OtherSub = "その他"

//go:embed categories.yaml
var defaultCategories []byte

// Group 메인 카테고리 하나와 그 서브 카테고리 목록입니다.
type Group struct {
	Main string   `yaml:"main"`
	Subs []string `yaml:"subs"`
}

// Taxonomy 순서가 있는 카테고리 정의입니다.
type Taxonomy struct {
	groups []Group
}

// Default 내장된 기본 카테고리 정의를 반환합니다.
func Default() *Taxonomy {
	t, err := Parse(defaultCategories)
	if err != nil {
		panic(fmt.Sprintf("내장 카테고리 정의를 읽을 수 없습니다: %v", err))
	}
	return t
}

// Load path의 YAML 파일을 읽습니다. path가 비어 있으면 내장 정의를 사용합니다.
func Load(path string) (*Taxonomy, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.Wrapf(err, apperrors.NotFound, "카테고리 정의 파일을 찾을 수 없습니다: '%s'", path)
		}
		return nil, apperrors.Wrapf(err, apperrors.System, "카테고리 정의 파일을 읽을 수 없습니다: '%s'", path)
	}

	t, err := Parse(data)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.InvalidInput, "카테고리 정의 파일(%s)이 올바르지 않습니다", path)
	}
	return t, nil
}

// Parse YAML 형식의 카테고리 정의를 해석합니다.
func Parse(data []byte) (*Taxonomy, error) {
	var groups []Group
	if err := yaml.Unmarshal(data, &groups); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ParsingFailed, "YAML 형식이 올바르지 않습니다")
	}
	if len(groups) == 0 {
		return nil, apperrors.New(apperrors.InvalidInput, "카테고리가 하나도 정의되지 않았습니다")
	}

	seen := make(map[string]bool)
	for i := range groups {
		g := &groups[i]
		g.Main = strings.TrimSpace(g.Main)
		if g.Main == "" {
			return nil, apperrors.Newf(apperrors.InvalidInput, "%d번째 카테고리의 main이 비어 있습니다", i+1)
		}
		if g.Main == catalog.UncategorizedMain {
			return nil, apperrors.Newf(apperrors.InvalidInput, "'%s'는 예약된 카테고리 이름입니다", g.Main)
		}
		if seen[g.Main] {
			return nil, apperrors.Newf(apperrors.InvalidInput, "중복된 카테고리입니다: '%s'", g.Main)
		}
		seen[g.Main] = true

		subs := g.Subs[:0]
		for _, s := range g.Subs {
			if s = strings.TrimSpace(s); s != "" && !slices.Contains(subs, s) {
				subs = append(subs, s)
			}
		}
		g.Subs = subs
	}

	return &Taxonomy{groups: groups}, nil
}

// Mains 정의 순서대로 메인 카테고리 이름을 반환합니다.
func (t *Taxonomy) Mains() []string {
	mains := make([]string, 0, len(t.groups))
	for _, g := range t.groups {
		mains = append(mains, g.Main)
	}
	return mains
}

// Groups 카테고리 정의의 사본을 반환합니다.
func (t *Taxonomy) Groups() []Group {
	out := make([]Group, len(t.groups))
	for i, g := range t.groups {
		out[i] = Group{Main: g.Main, Subs: slices.Clone(g.Subs)}
	}
	return out
}

// Map AI가 제안한 서브 카테고리와 상품명으로 정의된 카테고리를 결정합니다.
//
// 정의 순서대로 다음 규칙을 적용하며 처음 일치한 결과를 반환합니다.
//  1. sub가 어떤 메인의 서브 카테고리와 정확히 같으면 {그 메인, sub}
//  2. 상품명에 어떤 서브 카테고리 이름이 포함되어 있으면 {그 메인, 그 서브}
//  3. 상품명에 메인 카테고리 이름이 포함되어 있으면 {그 메인, その他}
//  4. 그 외에는 {その他, その他}
func (t *Taxonomy) Map(sub, productName string) catalog.Category {
	sub = strings.TrimSpace(sub)
	name := strings.ToLower(productName)

	for _, g := range t.groups {
		if sub != "" && slices.Contains(g.Subs, sub) {
			return catalog.Category{Main: g.Main, Sub: sub}
		}
	}

	for _, g := range t.groups {
		for _, s := range g.Subs {
			if strings.Contains(name, strings.ToLower(s)) {
				return catalog.Category{Main: g.Main, Sub: s}
			}
		}
	}

	for _, g := range t.groups {
		if strings.Contains(name, strings.ToLower(g.Main)) {
			return catalog.Category{Main: g.Main, Sub: OtherSub}
		}
	}

	return catalog.Category{Main: catalog.UncategorizedMain, Sub: OtherSub}
}
