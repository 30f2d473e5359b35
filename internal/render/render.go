// Package render 최종 상품 레코드 집합으로 정적 사이트(HTML, 검색 인덱스, 사이트맵)를 생성합니다.
//
// 렌더러는 저장이 끝난 Store만 읽으며 레코드를 수정하지 않습니다.
// AI 생성 필드가 아직 비어 있으면 화면에만 준비 중 문구를 표시합니다.
package render

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/darkkaiser/kaidoki-navi/internal/catalog"
	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
	"github.com/darkkaiser/kaidoki-navi/internal/taxonomy"
	applog "github.com/darkkaiser/kaidoki-navi/pkg/log"
)

const component = "render"

const (
	defaultProductsPerPage = 24
	defaultTagsPerPage     = 50
	defaultSiteName        = "カイドキ-ナビ"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// 렌더링할 때마다 지우고 다시 만드는 디렉터리
var generatedDirs = []string{"pages", "category", "tags"}

// Options 렌더러 설정입니다.
type Options struct {
	OutputDir string

	// BaseURL 사이트맵에 쓰는 절대 주소의 접두사. 비어 있으면 사이트맵을 만들지 않습니다.
	BaseURL string

	SiteName        string
	ProductsPerPage int
	TagsPerPage     int

	Taxonomy *taxonomy.Taxonomy
	Location *time.Location
}

// Report Render의 결과 통계입니다.
type Report struct {
	Files      int
	Products   int
	Categories []string
	Tags       int
	Sitemap    bool
}

// Renderer 정적 사이트 생성기입니다.
type Renderer struct {
	opts  Options
	pages map[string]*template.Template
	now   func() time.Time
}

// New 템플릿을 읽어 Renderer를 생성합니다.
func New(opts Options) (*Renderer, error) {
	if opts.OutputDir == "" {
		return nil, apperrors.New(apperrors.InvalidInput, "출력 디렉터리가 지정되지 않았습니다")
	}
	if opts.SiteName == "" {
		opts.SiteName = defaultSiteName
	}
	if opts.ProductsPerPage <= 0 {
		opts.ProductsPerPage = defaultProductsPerPage
	}
	if opts.TagsPerPage <= 0 {
		opts.TagsPerPage = defaultTagsPerPage
	}
	if opts.Taxonomy == nil {
		opts.Taxonomy = taxonomy.Default()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	base, err := template.New("layout").ParseFS(templateFS, "templates/layout.tmpl")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, "레이아웃 템플릿을 읽을 수 없습니다")
	}

	pages := make(map[string]*template.Template)
	for _, name := range []string{"list", "product", "tags", "placeholder", "search"} {
		t, err := template.Must(base.Clone()).ParseFS(templateFS, "templates/"+name+".tmpl")
		if err != nil {
			return nil, apperrors.Wrapf(err, apperrors.Internal, "템플릿(%s)을 읽을 수 없습니다", name)
		}
		pages[name] = t
	}

	return &Renderer{opts: opts, pages: pages, now: time.Now}, nil
}

// Render s의 모든 레코드로 사이트 전체를 다시 생성합니다.
func (r *Renderer) Render(ctx context.Context, s catalog.Store) (Report, error) {
	start := time.Now()

	for _, dir := range generatedDirs {
		if err := os.RemoveAll(filepath.Join(r.opts.OutputDir, dir)); err != nil {
			return Report{}, apperrors.Wrapf(err, apperrors.System, "이전에 생성된 디렉터리(%s)를 지울 수 없습니다", dir)
		}
	}

	site := r.newSite(s)
	w := &siteWriter{r: r, site: site}

	steps := []func(context.Context, *siteWriter) error{
		r.renderIndex,
		r.renderCategories,
		r.renderSpecials,
		r.renderTags,
		r.renderProducts,
		r.renderPlaceholders,
		r.renderSearchIndex,
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		if err := step(ctx, w); err != nil {
			return Report{}, err
		}
	}

	rep := Report{
		Products:   len(site.records),
		Categories: site.categoryNames(),
		Tags:       len(site.tags),
	}

	if r.opts.BaseURL != "" {
		if err := r.renderSitemap(ctx, w); err != nil {
			return Report{}, err
		}
		rep.Sitemap = true
	} else {
		applog.WithComponent(component).Warn("base_url이 설정되지 않아 sitemap.xml을 생성하지 않습니다")
	}
	rep.Files = w.files

	applog.WithComponentAndFields(component, applog.Fields{
		"output_dir":  r.opts.OutputDir,
		"files":       rep.Files,
		"products":    rep.Products,
		"tags":        rep.Tags,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("사이트 생성 완료")

	return rep, nil
}

// siteWriter 출력 디렉터리에 파일을 쓰고 개수를 셉니다.
type siteWriter struct {
	r     *Renderer
	site  *site
	files int
}

func (w *siteWriter) write(rel string, data []byte) error {
	path := filepath.Join(w.r.opts.OutputDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.Wrapf(err, apperrors.System, "디렉터리를 만들 수 없습니다: '%s'", filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperrors.Wrapf(err, apperrors.System, "파일을 쓸 수 없습니다: '%s'", path)
	}
	w.files++
	return nil
}

func (w *siteWriter) exists(rel string) bool {
	_, err := os.Stat(filepath.Join(w.r.opts.OutputDir, filepath.FromSlash(rel)))
	return err == nil
}

// page 레이아웃을 적용한 HTML 페이지 하나를 씁니다.
func (w *siteWriter) page(rel, tmpl, title string, content any) error {
	data := w.r.layout(w.site, rel, title, content)
	data.Chart = tmpl == "product"

	var buf bytes.Buffer
	if err := w.r.pages[tmpl].ExecuteTemplate(&buf, "layout", data); err != nil {
		return apperrors.Wrapf(err, apperrors.Internal, "페이지(%s) 렌더링에 실패했습니다", rel)
	}
	return w.write(rel, buf.Bytes())
}
