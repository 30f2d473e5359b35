// Package server 생성된 정적 사이트와 상품 조회 API를 제공하는 미리보기 웹 서버입니다.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/darkkaiser/kaidoki-navi/internal/pkg/version"
	applog "github.com/darkkaiser/kaidoki-navi/pkg/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// component 웹 서버 로깅용 컴포넌트 이름
const component = "server"

const (
	defaultRequestTimeout = 30 * time.Second

	shutdownTimeout = 5 * time.Second

	defaultRateLimitPerSecond = 20
	defaultRateLimitBurst     = 40
)

// Config 웹 서버 설정입니다.
type Config struct {
	Debug      bool
	ListenPort int

	// OutputDir 정적 파일을 제공할 디렉터리 (렌더링 출력 디렉터리)
	OutputDir string

	RequestTimeout time.Duration
}

// Server 웹 서버의 생명주기를 관리합니다.
type Server struct {
	cfg       Config
	loader    Loader
	buildInfo version.Info

	running   bool
	runningMu sync.Mutex
}

// New 새 Server를 생성합니다.
func New(cfg Config, loader Loader, buildInfo version.Info) *Server {
	if loader == nil {
		panic("Loader는 필수입니다")
	}
	return &Server{cfg: cfg, loader: loader, buildInfo: buildInfo}
}

// Start 서버를 별도 고루틴에서 시작합니다.
// serviceStopCtx가 취소되면 Graceful Shutdown 후 serviceStopWG.Done()을 호출합니다.
func (s *Server) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if s.running {
		serviceStopWG.Done()
		applog.WithComponent(component).Warn("웹 서버가 이미 실행 중입니다 (중복 호출)")
		return nil
	}
	s.running = true

	e := s.Handler()

	go func() {
		defer serviceStopWG.Done()

		done := make(chan struct{})
		go func() {
			defer close(done)

			addr := fmt.Sprintf(":%d", s.cfg.ListenPort)
			applog.WithComponentAndFields(component, applog.Fields{
				"addr":       addr,
				"output_dir": s.cfg.OutputDir,
			}).Info("웹 서버 시작")

			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				applog.WithComponentAndFields(component, applog.Fields{"error": err}).Error("웹 서버가 예기치 않게 종료되었습니다")
			}
		}()

		select {
		case <-serviceStopCtx.Done():
		case <-done:
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(ctx); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{"error": err}).Error("웹 서버 종료 실패")
		}
		<-done

		s.runningMu.Lock()
		s.running = false
		s.runningMu.Unlock()

		applog.WithComponent(component).Info("웹 서버 종료 완료")
	}()

	return nil
}

// Handler 미들웨어와 라우트가 설정된 Echo 인스턴스를 반환합니다.
func (s *Server) Handler() *echo.Echo {
	e := echo.New()
	e.Debug = s.cfg.Debug
	e.HideBanner = true
	e.HidePort = true
	e.Logger = echoLogger{Logger: applog.StandardLogger()}
	e.HTTPErrorHandler = errorHandler

	e.Server.ReadHeaderTimeout = 10 * time.Second
	e.Server.IdleTimeout = 120 * time.Second

	timeout := s.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	e.Use(panicRecovery())
	e.Use(middleware.RequestID())
	e.Use(httpLogger())
	e.Use(rateLimiting(defaultRateLimitPerSecond, defaultRateLimitBurst))
	e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{Timeout: timeout}))
	e.Use(middleware.Secure())

	h := &handler{loader: s.loader, buildInfo: s.buildInfo}

	e.GET("/health", h.health)
	e.GET("/version", h.version)

	v1 := e.Group("/api/v1")
	v1.GET("/products", h.listProducts)
	v1.GET("/products/:id", h.getProduct)

	if s.cfg.OutputDir != "" {
		e.Static("/", s.cfg.OutputDir)
	}

	return e
}
