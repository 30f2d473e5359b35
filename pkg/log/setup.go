package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultDir        = "logs"
	defaultMaxSizeMB  = 100
	defaultMaxBackups = 20
)

var (
	setupOnce sync.Once
	setupErr  error
	setupRes  io.Closer
)

// Setup 전역 로거를 한 번만 초기화합니다. 이후 호출은 최초 결과를 그대로 반환합니다.
// 반환된 Closer는 프로세스 종료 전에 닫아야 버퍼에 남은 로그가 기록됩니다.
func Setup(opts Options) (io.Closer, error) {
	setupOnce.Do(func() {
		setupRes, setupErr = setup(opts)
	})
	return setupRes, setupErr
}

func setup(opts Options) (io.Closer, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("유효하지 않은 로그 설정: %w", err)
	}

	level := opts.Level
	if level == 0 {
		level = InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetReportCaller(opts.ReportCaller)

	// 실제 포맷팅은 hook에서 한 번만 수행합니다.
	logrus.SetFormatter(&silentFormatter{})
	logrus.SetOutput(io.Discard)

	dir := opts.Dir
	if dir == "" {
		dir = defaultDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("로그 디렉토리 생성 실패: %w", err)
	}

	rotating := func(suffix string) *lumberjack.Logger {
		maxSize := opts.MaxSizeMB
		if maxSize == 0 {
			maxSize = defaultMaxSizeMB
		}
		maxBackups := opts.MaxBackups
		if maxBackups == 0 {
			maxBackups = defaultMaxBackups
		}

		name := opts.Name + suffix + ".log"
		return &lumberjack.Logger{
			Filename:   filepath.Join(dir, name),
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
			MaxAge:     opts.MaxAge,
			LocalTime:  true,
		}
	}

	h := &hook{formatter: newTextFormatter(opts.CallerPathPrefix)}
	c := &closer{hook: h}

	mainLog := rotating("")
	h.main = mainLog
	c.writers = append(c.writers, mainLog)

	if opts.EnableCriticalLog {
		l := rotating(".critical")
		h.critical = l
		c.writers = append(c.writers, l)
	}
	if opts.EnableVerboseLog {
		l := rotating(".verbose")
		h.verbose = l
		c.writers = append(c.writers, l)
	}
	if opts.EnableConsoleLog {
		h.console = os.Stdout
	}

	logrus.AddHook(h)

	// Fatal 로그로 os.Exit 되기 직전에 파일을 닫습니다.
	logrus.RegisterExitHandler(func() { _ = c.Close() })

	return c, nil
}

func newTextFormatter(callerPrefix string) *logrus.TextFormatter {
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		CallerPrettyfier: func(frame *runtime.Frame) (string, string) {
			fn := frame.Function + "(line:" + strconv.Itoa(frame.Line) + ")"
			if callerPrefix != "" {
				if cut, ok := strings.CutPrefix(fn, callerPrefix); ok {
					fn = "..." + cut
				}
			}
			return fn, ""
		},
	}
}

// silentFormatter logrus 기본 출력 경로에서 불필요한 포맷팅을 생략하기 위한 포맷터입니다.
type silentFormatter struct{}

func (silentFormatter) Format(*logrus.Entry) ([]byte, error) { return nil, nil }
