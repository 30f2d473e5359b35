package main

import (
	"fmt"
	"io"
	"os"

	"github.com/darkkaiser/kaidoki-navi/internal/config"
	"github.com/darkkaiser/kaidoki-navi/internal/enrich"
	"github.com/darkkaiser/kaidoki-navi/internal/enrich/openai"
	"github.com/darkkaiser/kaidoki-navi/internal/fetcher"
	"github.com/darkkaiser/kaidoki-navi/internal/notify"
	"github.com/darkkaiser/kaidoki-navi/internal/pipeline"
	"github.com/darkkaiser/kaidoki-navi/internal/pkg/version"
	"github.com/darkkaiser/kaidoki-navi/internal/render"
	"github.com/darkkaiser/kaidoki-navi/internal/source"
	"github.com/darkkaiser/kaidoki-navi/internal/store"
	"github.com/darkkaiser/kaidoki-navi/internal/taxonomy"
	applog "github.com/darkkaiser/kaidoki-navi/pkg/log"
)

const component = "main"

// app 명령 하나가 실행되는 동안 공유하는 설정과 리소스입니다.
type app struct {
	cfg       *config.AppConfig
	buildInfo version.Info

	closers []io.Closer
}

// bootstrap 설정을 읽고 로그 시스템을 초기화합니다.
func bootstrap(configFile string) (*app, error) {
	cfg, err := config.LoadWithFile(configFile)
	if err != nil {
		return nil, err
	}

	logOpts := applog.NewProductionOptions(config.AppName)
	if cfg.Debug {
		logOpts = applog.NewDevelopmentOptions(config.AppName)
	}
	logOpts.Dir = cfg.Log.Dir
	if cfg.Log.Level != "" {
		if lvl, err := applog.ParseLevel(cfg.Log.Level); err == nil {
			logOpts.Level = lvl
		}
	}
	if cfg.Log.MaxAge > 0 {
		logOpts.MaxAge = cfg.Log.MaxAge
	}
	if cfg.Log.MaxSizeMB > 0 {
		logOpts.MaxSizeMB = cfg.Log.MaxSizeMB
	}
	if cfg.Log.MaxBackups > 0 {
		logOpts.MaxBackups = cfg.Log.MaxBackups
	}
	logOpts.EnableConsoleLog = logOpts.EnableConsoleLog || cfg.Log.Console

	logCloser, err := applog.Setup(logOpts)
	if err != nil {
		return nil, fmt.Errorf("로그 시스템 초기화 실패: %w", err)
	}

	a := &app{cfg: cfg, buildInfo: version.Get(), closers: []io.Closer{logCloser}}

	applog.WithComponentAndFields(component, applog.Fields{
		"version": a.buildInfo.String(),
		"config":  configFile,
		"env":     map[bool]string{true: "development", false: "production"}[cfg.Debug],
	}).Info("애플리케이션 초기화 완료")

	return a, nil
}

// close 열어 둔 리소스를 역순으로 닫습니다.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			fmt.Fprintf(os.Stderr, "리소스 정리 실패: %v\n", err)
		}
	}
}

// openStore 저장소를 엽니다. 읽기만 하는 명령(render, serve)은 readOnly로 열어 손상된 파일을 건드리지 않습니다.
func (a *app) openStore(readOnly bool) (store.Repository, error) {
	repo, err := store.Open(store.Options{
		Path:      a.cfg.Store.Path,
		Format:    store.Format(a.cfg.Store.Format),
		OnCorrupt: store.CorruptPolicy(a.cfg.Store.OnCorrupt),
		ReadOnly:  readOnly,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, repo)
	return repo, nil
}

func (a *app) newRenderer(tax *taxonomy.Taxonomy) (*render.Renderer, error) {
	return render.New(render.Options{
		OutputDir:       a.cfg.Render.OutputDir,
		BaseURL:         a.cfg.Render.BaseURL,
		SiteName:        a.cfg.Render.SiteName,
		ProductsPerPage: a.cfg.Render.ProductsPerPage,
		TagsPerPage:     a.cfg.Render.TagsPerPage,
		Taxonomy:        tax,
		Location:        a.cfg.Location(),
	})
}

// newGenerator API 키가 없으면 네트워크 호출 없이 실패하는 Generator를 반환합니다.
func (a *app) newGenerator() enrich.Generator {
	if !a.cfg.OpenAI.Enabled() {
		applog.WithComponent(component).Warn("OpenAI API 키가 설정되지 않아 AI 생성 필드는 비어 있는 상태로 남습니다")
		return enrich.Disabled{}
	}

	// 요청 속도는 Processor가 제한하므로 Fetcher에서는 제한하지 않습니다.
	f := fetcher.New(fetcher.Config{
		Timeout:            a.cfg.OpenAI.Timeout,
		UserAgent:          a.cfg.HTTPRetry.UserAgent,
		MaxRetries:         a.cfg.HTTPRetry.MaxRetries,
		RetryDelay:         a.cfg.HTTPRetry.RetryDelay,
		MaxDelay:           a.cfg.HTTPRetry.MaxDelay,
		RetryUnsafeMethods: true,
	})
	return openai.New(a.cfg.OpenAI, f)
}

// newRunner 설정으로 파이프라인 협력자를 모두 구성합니다.
func (a *app) newRunner() (*pipeline.Runner, notify.Notifier, error) {
	tax, err := taxonomy.Load(a.cfg.Taxonomy.File)
	if err != nil {
		return nil, nil, err
	}

	sourceFetcher := fetcher.New(fetcher.Config{
		Timeout:           a.cfg.HTTPRetry.Timeout,
		UserAgent:         a.cfg.HTTPRetry.UserAgent,
		MaxRetries:        a.cfg.HTTPRetry.MaxRetries,
		RetryDelay:        a.cfg.HTTPRetry.RetryDelay,
		MaxDelay:          a.cfg.HTTPRetry.MaxDelay,
		RequestsPerSecond: a.cfg.HTTPRetry.RequestsPerSecond,
	})
	sources, err := source.Default().Build(a.cfg.Sources, sourceFetcher)
	if err != nil {
		return nil, nil, err
	}
	if len(sources) == 0 {
		applog.WithComponent(component).Warn("활성화된 수집처가 없습니다. 저장된 상품만으로 사이트를 생성합니다")
	}

	repo, err := a.openStore(false)
	if err != nil {
		return nil, nil, err
	}

	renderer, err := a.newRenderer(tax)
	if err != nil {
		return nil, nil, err
	}

	notifier, err := notify.New(a.cfg.Telegram, a.cfg.Render.SiteName)
	if err != nil {
		return nil, nil, err
	}

	processor := enrich.NewProcessor(a.newGenerator(),
		enrich.WithConcurrency(a.cfg.OpenAI.Concurrency),
		enrich.WithRateLimit(a.cfg.OpenAI.RequestsPerSecond),
		enrich.WithTaxonomy(tax),
	)

	runner := pipeline.NewRunner(pipeline.Deps{
		Sources:    sources,
		Repository: repo,
		Enricher:   processor,
		Renderer:   renderer,
		Reporter:   notifier,
		Location:   a.cfg.Location(),
	})

	return runner, notifier, nil
}
