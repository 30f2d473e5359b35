package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/darkkaiser/kaidoki-navi/internal/pipeline"
	"github.com/darkkaiser/kaidoki-navi/internal/pkg/version"
	"github.com/darkkaiser/kaidoki-navi/internal/scheduler"
	"github.com/darkkaiser/kaidoki-navi/internal/server"
	"github.com/darkkaiser/kaidoki-navi/internal/taxonomy"
	applog "github.com/darkkaiser/kaidoki-navi/pkg/log"
	"github.com/spf13/cobra"
)

// --- run ---

func newRunCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "수집부터 사이트 생성까지 파이프라인을 한 번 실행합니다",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(opts.configFile)
			if err != nil {
				return err
			}
			defer a.close()

			runner, notifier, err := a.newRunner()
			if err != nil {
				return err
			}

			sum, err := runner.Run(cmd.Context())
			if err != nil {
				if rerr := notifier.ReportError(context.WithoutCancel(cmd.Context()), err); rerr != nil {
					applog.WithComponentAndFields(component, applog.Fields{"error": rerr}).Warn("실패 알림 전송 실패")
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "run %s: 신규 %d, 갱신 %d, 건너뜀 %d, 전체 %d\n",
				sum.RunID, sum.Created, sum.Updated, sum.Skipped, sum.Total)
			return nil
		},
	}
}

// --- schedule ---

func newScheduleCommand(opts *rootOptions) *cobra.Command {
	var (
		runOnStart bool
		withServer bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "설정된 Cron 스케줄에 맞춰 파이프라인을 반복 실행합니다",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(opts.configFile)
			if err != nil {
				return err
			}
			defer a.close()

			runner, notifier, err := a.newRunner()
			if err != nil {
				return err
			}

			job := func(ctx context.Context) error {
				_, err := runner.Run(ctx)
				return err
			}
			sched := scheduler.New(scheduler.Options{
				Spec:       a.cfg.Schedule.Spec,
				Location:   a.cfg.Location(),
				RunOnStart: runOnStart,
			}, job, notifier)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			wg := &sync.WaitGroup{}

			wg.Add(1)
			if err := sched.Start(ctx, wg); err != nil {
				return err
			}

			if withServer {
				repo, err := a.openStore(true)
				if err != nil {
					cancel()
					wg.Wait()
					return err
				}

				wg.Add(1)
				if err := a.newServer(repo).Start(ctx, wg); err != nil {
					cancel()
					wg.Wait()
					return err
				}
			}

			applog.WithComponent(component).Info("데몬 가동 완료")

			<-ctx.Done()

			applog.WithComponent(component).Info("종료 신호 수신: 실행 중인 작업이 끝날 때까지 대기합니다")
			wg.Wait()
			return nil
		},
	}

	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "시작 직후 한 번 실행")
	cmd.Flags().BoolVar(&withServer, "serve", false, "미리보기 웹 서버도 함께 실행")

	return cmd
}

// --- render ---

func newRenderCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "수집 없이 저장된 상품만으로 사이트를 다시 생성합니다",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(opts.configFile)
			if err != nil {
				return err
			}
			defer a.close()

			tax, err := taxonomy.Load(a.cfg.Taxonomy.File)
			if err != nil {
				return err
			}
			repo, err := a.openStore(true)
			if err != nil {
				return err
			}
			renderer, err := a.newRenderer(tax)
			if err != nil {
				return err
			}

			runner := pipeline.NewRunner(pipeline.Deps{
				Repository: repo,
				Renderer:   renderer,
				Location:   a.cfg.Location(),
			})
			rep, err := runner.Render(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "상품 %d개, 파일 %d개를 생성했습니다\n", rep.Products, rep.Files)
			return nil
		},
	}
}

// --- serve ---

func newServeCommand(opts *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "생성된 사이트와 상품 조회 API를 제공하는 웹 서버를 실행합니다",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(opts.configFile)
			if err != nil {
				return err
			}
			defer a.close()

			if port > 0 {
				a.cfg.Server.ListenPort = port
			}

			repo, err := a.openStore(true)
			if err != nil {
				return err
			}

			wg := &sync.WaitGroup{}
			wg.Add(1)
			if err := a.newServer(repo).Start(cmd.Context(), wg); err != nil {
				return err
			}

			wg.Wait()
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "수신 포트 (설정 파일 값보다 우선)")

	return cmd
}

func (a *app) newServer(loader server.Loader) *server.Server {
	return server.New(server.Config{
		Debug:      a.cfg.Debug,
		ListenPort: a.cfg.Server.ListenPort,
		OutputDir:  a.cfg.Render.OutputDir,
	}, loader, a.buildInfo)
}

// --- version ---

func newVersionCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "빌드 정보를 출력합니다",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			fmt.Fprintln(cmd.OutOrStdout(), info.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "JSON 형식으로 출력")

	return cmd
}
