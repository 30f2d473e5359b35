package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/darkkaiser/kaidoki-navi/internal/catalog"
	"github.com/darkkaiser/kaidoki-navi/internal/config"
	"github.com/darkkaiser/kaidoki-navi/internal/pipeline"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
	errs []error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return tgbotapi.Message{}, err
	}
	return tgbotapi.Message{}, nil
}

func newTestTelegram(s *fakeSender) *Telegram {
	t := newTelegram(s, 42, "カイドキ-ナビ")
	t.retryDelay = time.Millisecond
	t.rateLimiter = rate.NewLimiter(rate.Inf, 1)
	return t
}

func sampleSummary() pipeline.Summary {
	return pipeline.Summary{
		RunID:            "run-1",
		Fetched:          1234,
		FailedSources:    []string{"yahoo"},
		Created:          3,
		Updated:          10,
		Skipped:          1,
		DerivedRequested: 20,
		DerivedApplied:   18,
		DerivedFailed:    2,
		Total:            500,
		RenderedFiles:    620,
		PriceDrops: []catalog.PriceChange{
			{ID: "A", Name: "小さな値下げ", Previous: 1000, Current: 990},
			{ID: "B", Name: "<大幅>値下げ", Previous: 50000, Current: 39800},
		},
	}
}

func TestNew(t *testing.T) {
	n, err := New(config.TelegramConfig{Enabled: false}, "site")
	require.NoError(t, err)
	assert.IsType(t, Noop{}, n)

	assert.NoError(t, n.Report(context.Background(), pipeline.Summary{}))
	assert.NoError(t, n.ReportError(context.Background(), errors.New("x")))
}

func TestBuildReport(t *testing.T) {
	msg := buildReport("カイドキ-ナビ", sampleSummary())

	assert.Contains(t, msg, "<code>run-1</code>")
	assert.Contains(t, msg, "수집 1,234건 (실패 수집처: yahoo)")
	assert.Contains(t, msg, "신규 3건 / 갱신 10건 / 건너뜀 1건")
	assert.Contains(t, msg, "AI 생성 18/20 (실패 2)")
	assert.Contains(t, msg, "가격 하락</b> (2건)")
	assert.Contains(t, msg, "&lt;大幅&gt;値下げ")
	assert.Contains(t, msg, "50,000円 → <b>39,800円</b> (-10,200円)")

	// 하락 폭이 큰 상품이 먼저 나온다.
	assert.Less(t, strings.Index(msg, "大幅"), strings.Index(msg, "小さな"))
	assert.False(t, strings.HasSuffix(msg, "\n"))
}

func TestBuildReport_LimitsPriceDrops(t *testing.T) {
	sum := pipeline.Summary{}
	for i := range 15 {
		sum.PriceDrops = append(sum.PriceDrops, catalog.PriceChange{ID: "x", Name: "p", Previous: 100 + i, Current: 1})
	}

	msg := buildReport("s", sum)
	assert.Equal(t, maxPriceDrops, strings.Count(msg, "• "))
	assert.Contains(t, msg, "외 5건")
}

func TestBuildError(t *testing.T) {
	msg := buildError("s", errors.New("저장소 기록 실패: <disk>"))
	assert.Contains(t, msg, "갱신 실패")
	assert.Contains(t, msg, "&lt;disk&gt;")
}

func TestTelegram_Report(t *testing.T) {
	s := &fakeSender{}
	require.NoError(t, newTestTelegram(s).Report(context.Background(), sampleSummary()))

	require.Len(t, s.sent, 1)
	assert.Equal(t, int64(42), s.sent[0].ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, s.sent[0].ParseMode)
	assert.True(t, s.sent[0].DisableWebPagePreview)
}

func TestTelegram_Retry(t *testing.T) {
	t.Run("ServerErrorIsRetried", func(t *testing.T) {
		s := &fakeSender{errs: []error{tgbotapi.Error{Code: 500, Message: "oops"}}}
		require.NoError(t, newTestTelegram(s).ReportError(context.Background(), errors.New("x")))
		assert.Len(t, s.sent, 2)
	})

	t.Run("BadRequestFallsBackToPlainText", func(t *testing.T) {
		s := &fakeSender{errs: []error{tgbotapi.Error{Code: 400, Message: "can't parse entities"}}}
		require.NoError(t, newTestTelegram(s).ReportError(context.Background(), errors.New("x")))
		require.Len(t, s.sent, 2)
		assert.Equal(t, tgbotapi.ModeHTML, s.sent[0].ParseMode)
		assert.Empty(t, s.sent[1].ParseMode)
	})

	t.Run("ForbiddenIsNotRetried", func(t *testing.T) {
		s := &fakeSender{errs: []error{tgbotapi.Error{Code: 403, Message: "blocked"}}}
		err := newTestTelegram(s).ReportError(context.Background(), errors.New("x"))
		require.Error(t, err)
		assert.Len(t, s.sent, 1)
	})

	t.Run("GivesUpAfterMaxRetries", func(t *testing.T) {
		netErr := errors.New("connection reset")
		s := &fakeSender{errs: []error{netErr, netErr, netErr}}
		err := newTestTelegram(s).ReportError(context.Background(), errors.New("x"))
		require.Error(t, err)
		assert.ErrorIs(t, err, netErr)
		assert.Len(t, s.sent, maxRetries)
	})

	t.Run("CancelledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		s := &fakeSender{}
		assert.ErrorIs(t, newTestTelegram(s).ReportError(ctx, errors.New("x")), context.Canceled)
		assert.Empty(t, s.sent)
	})
}

func TestParseTelegramError(t *testing.T) {
	code, retryAfter := parseTelegramError(tgbotapi.Error{Code: 429, ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 7}})
	assert.Equal(t, 429, code)
	assert.Equal(t, 7, retryAfter)

	code, retryAfter = parseTelegramError(errors.New("plain"))
	assert.Zero(t, code)
	assert.Zero(t, retryAfter)

	assert.True(t, shouldRetry(429))
	assert.True(t, shouldRetry(502))
	assert.True(t, shouldRetry(0))
	assert.False(t, shouldRetry(401))
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))

	chunks := splitMessage("aaaa\nbbbb\ncccc", 9)
	assert.Equal(t, []string{"aaaa\nbbbb", "cccc"}, chunks)

	long := strings.Repeat("あ", 10) // 30바이트
	chunks = splitMessage("x\n"+long, 8)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 8)
		assert.True(t, strings.ToValidUTF8(c, "?") == c)
	}
	assert.Equal(t, "x\n"+long, chunks[0]+"\n"+strings.Join(chunks[1:], ""))
}

func TestSafeSplit(t *testing.T) {
	chunk, rem := safeSplit("가나다", 4)
	assert.Equal(t, "가", chunk)
	assert.Equal(t, "나다", rem)

	chunk, rem = safeSplit("abc", 5)
	assert.Equal(t, "abc", chunk)
	assert.Empty(t, rem)
}
