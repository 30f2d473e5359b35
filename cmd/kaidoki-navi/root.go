package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/darkkaiser/kaidoki-navi/internal/config"
	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
	"github.com/darkkaiser/kaidoki-navi/internal/store"
	"github.com/spf13/cobra"
)

// 종료 코드
const (
	exitOK           = 0
	exitFailure      = 1
	exitInvalidInput = 2
	exitCorruptStore = 3
	exitStoreWrite   = 4
)

type rootOptions struct {
	configFile string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           config.AppName,
		Short:         "쇼핑몰 상품 수집 및 가격 비교 사이트 생성기",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", config.DefaultFilename, "설정 파일 경로")

	cmd.AddCommand(
		newRunCommand(opts),
		newScheduleCommand(opts),
		newRenderCommand(opts),
		newServeCommand(opts),
		newVersionCommand(),
	)

	return cmd
}

// execute 명령을 실행하고 프로세스 종료 코드를 반환합니다.
func execute(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

// exitCode 에러 종류에 따른 종료 코드를 결정합니다.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case store.IsStoreWriteFailed(err):
		return exitStoreWrite
	case store.IsCorruptStore(err):
		return exitCorruptStore
	case apperrors.Is(err, apperrors.InvalidInput), apperrors.Is(err, apperrors.NotFound):
		return exitInvalidInput
	default:
		return exitFailure
	}
}
