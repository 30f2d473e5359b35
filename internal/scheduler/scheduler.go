// Package scheduler 데몬 모드에서 파이프라인을 Cron 스케줄에 맞춰 반복 실행합니다.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/darkkaiser/kaidoki-navi/pkg/cronx"
	applog "github.com/darkkaiser/kaidoki-navi/pkg/log"
	"github.com/robfig/cron/v3"
)

// component Scheduler 서비스의 로깅용 컴포넌트 이름
const component = "scheduler"

// reportTimeout 실패 알림 전송에 허용되는 최대 시간
const reportTimeout = 10 * time.Second

// Job 스케줄마다 한 번씩 실행되는 작업입니다.
type Job func(ctx context.Context) error

// ErrorReporter 작업 실패를 관리자에게 알립니다.
type ErrorReporter interface {
	ReportError(ctx context.Context, err error) error
}

// Options 스케줄러 옵션입니다.
type Options struct {
	// Spec 초 단위를 포함한 6필드 Cron 표현식
	Spec string

	Location *time.Location

	// RunTimeout 한 번의 작업에 허용되는 최대 시간. 0이면 제한하지 않습니다.
	RunTimeout time.Duration

	// RunOnStart 시작 직후 스케줄과 무관하게 한 번 실행합니다.
	RunOnStart bool
}

// Scheduler 하나의 Job을 Cron 스케줄에 맞춰 실행하는 서비스입니다.
type Scheduler struct {
	opts Options
	job  Job

	errorReporter ErrorReporter

	cron *cron.Cron

	// startupRuns RunOnStart 실행은 cron이 추적하지 않으므로 따로 기다립니다.
	startupRuns sync.WaitGroup

	running   bool
	runningMu sync.Mutex
}

// New 새로운 Scheduler를 생성합니다. errorReporter는 nil일 수 있습니다.
func New(opts Options, job Job, errorReporter ErrorReporter) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.Local
	}

	return &Scheduler{
		opts: opts,
		job:  job,

		errorReporter: errorReporter,
	}
}

// Start 스케줄러를 시작합니다.
//
// serviceStopCtx가 취소되면 스케줄러를 중지하고, 실행 중인 작업이 끝난 뒤 serviceStopWG.Done()을 호출합니다.
func (s *Scheduler) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("서비스 시작 진입: Scheduler 서비스 초기화 프로세스를 시작합니다")

	if s.job == nil {
		serviceStopWG.Done()
		return ErrJobNotInitialized
	}

	if s.running {
		serviceStopWG.Done()
		applog.WithComponent(component).Warn("Scheduler 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	// - Recover: 작업에서 panic이 발생해도 다음 스케줄은 계속 실행
	// - SkipIfStillRunning: 이전 실행이 끝나지 않았으면 이번 실행은 건너뜀
	logger := cron.VerbosePrintfLogger(applog.StandardLogger())
	c := cron.New(
		cron.WithParser(cronx.StandardParser()),
		cron.WithLocation(s.opts.Location),
		cron.WithLogger(logger),
		cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		),
	)

	entryID, err := c.AddFunc(s.opts.Spec, s.runOnce)
	if err != nil {
		serviceStopWG.Done()
		return newErrInvalidCronSpec(s.opts.Spec, err)
	}

	s.cron = c
	s.cron.Start()
	s.running = true

	applog.WithComponentAndFields(component, applog.Fields{
		"spec":     s.opts.Spec,
		"location": s.opts.Location.String(),
		"next_run": s.cron.Entry(entryID).Next,
	}).Info("서비스 시작 완료: Scheduler 서비스가 정상적으로 초기화되었습니다")

	if s.opts.RunOnStart {
		// 스케줄 실행과 겹치지 않도록 같은 Chain을 거쳐 실행합니다.
		wrapped := s.cron.Entry(entryID).WrappedJob
		s.startupRuns.Add(1)
		go func() {
			defer s.startupRuns.Done()
			wrapped.Run()
		}()
	}

	go func() {
		defer serviceStopWG.Done()

		<-serviceStopCtx.Done()

		s.Stop()
	}()

	return nil
}

// Stop 실행 중인 스케줄러를 중지하고 진행 중인 작업이 끝날 때까지 기다립니다.
func (s *Scheduler) Stop() {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		return
	}

	applog.WithComponent(component).Info("종료 절차 진입: Scheduler 서비스 중지 시그널을 수신했습니다")

	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	s.startupRuns.Wait()

	s.cron = nil
	s.running = false

	applog.WithComponent(component).Info("Scheduler 서비스 종료 완료: 모든 리소스가 정리되었습니다")
}

// runOnce 작업을 한 번 실행합니다.
//
// 작업의 생명주기는 서비스 종료 신호와 분리되어 있어 종료 시에도 진행 중인 실행은 끝까지 완료됩니다.
func (s *Scheduler) runOnce() {
	ctx := context.Background()
	if s.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RunTimeout)
		defer cancel()
	}

	started := time.Now()
	err := s.job(ctx)

	fields := applog.Fields{"elapsed": time.Since(started).String()}
	if err == nil {
		applog.WithComponentAndFields(component, fields).Debug("예약 실행 완료")
		return
	}

	fields["error"] = err
	applog.WithComponentAndFields(component, fields).Error("예약 실행 실패: 파이프라인 실행 중 오류가 발생했습니다")

	if s.errorReporter != nil {
		reportCtx, cancel := context.WithTimeout(context.Background(), reportTimeout)
		defer cancel()

		if rerr := s.errorReporter.ReportError(reportCtx, err); rerr != nil {
			applog.WithComponentAndFields(component, applog.Fields{"error": rerr}).Warn("실패 알림 전송 실패")
		}
	}
}
