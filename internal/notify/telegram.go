package notify

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/darkkaiser/kaidoki-navi/internal/config"
	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
	"github.com/darkkaiser/kaidoki-navi/internal/pipeline"
	applog "github.com/darkkaiser/kaidoki-navi/pkg/log"
	"github.com/darkkaiser/kaidoki-navi/pkg/strutil"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

const (
	// messageMaxLength 텔레그램 메시지 한 건의 최대 바이트 길이입니다. 공식 제한(4096)보다 여유를 둡니다.
	messageMaxLength = 3900

	maxRetries = 3

	defaultRetryDelay = 3 * time.Second

	httpClientTimeout = 30 * time.Second
)

// sender 텔레그램 봇 API의 메시지 전송 부분만 추상화한 인터페이스입니다.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram 텔레그램 채팅방으로 실행 결과를 보고하는 Notifier입니다.
type Telegram struct {
	siteName string
	chatID   int64
	client   sender

	retryDelay time.Duration

	// rateLimiter 채팅방당 초당 1회 전송 정책을 지킵니다.
	rateLimiter *rate.Limiter
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Notifier = (*Telegram)(nil)

// NewTelegram 봇 토큰으로 텔레그램 API 클라이언트를 초기화하여 Notifier를 생성합니다.
func NewTelegram(cfg config.TelegramConfig, siteName string) (*Telegram, error) {
	applog.WithComponentAndFields(component, applog.Fields{
		"bot_token": strutil.MaskSensitiveData(cfg.BotToken),
		"chat_id":   cfg.ChatID,
	}).Debug("텔레그램 봇 API 클라이언트 초기화")

	botAPI, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint, &http.Client{Timeout: httpClientTimeout})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "텔레그램 봇 API 클라이언트 초기화에 실패했습니다. BotToken이 올바른지 확인해주세요")
	}

	return newTelegram(botAPI, cfg.ChatID, siteName), nil
}

func newTelegram(client sender, chatID int64, siteName string) *Telegram {
	return &Telegram{
		siteName:    siteName,
		chatID:      chatID,
		client:      client,
		retryDelay:  defaultRetryDelay,
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Report 실행 결과 요약을 전송합니다.
func (t *Telegram) Report(ctx context.Context, sum pipeline.Summary) error {
	return t.sendMessage(ctx, buildReport(t.siteName, sum))
}

// ReportError 실행 실패를 전송합니다.
func (t *Telegram) ReportError(ctx context.Context, err error) error {
	return t.sendMessage(ctx, buildError(t.siteName, err))
}

// sendMessage 메시지를 줄 단위로 나눠 길이 제한에 맞춰 순서대로 전송합니다.
// 한 줄이 제한보다 길면 UTF-8 문자 경계에서 자릅니다. 한 조각이라도 실패하면 중단합니다.
func (t *Telegram) sendMessage(ctx context.Context, message string) error {
	for _, chunk := range splitMessage(message, messageMaxLength) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.attemptSendWithRetry(ctx, chunk, true); err != nil {
			return err
		}
	}
	return nil
}

// attemptSendWithRetry 한 조각을 최대 maxRetries번까지 전송합니다.
//
// HTML 파싱 오류(400)이면 PlainText 모드로 바꿔 다시 시도하고, 429를 제외한 4xx는 즉시 실패합니다.
// 429 응답의 Retry-After는 그대로 지킵니다.
func (t *Telegram) attemptSendWithRetry(ctx context.Context, message string, useHTML bool) error {
	messageConfig := tgbotapi.NewMessage(t.chatID, message)
	messageConfig.DisableWebPagePreview = true
	if useHTML {
		messageConfig.ParseMode = tgbotapi.ModeHTML
	}

	if err := t.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, err := t.client.Send(messageConfig)
		if err == nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"chat_id":        t.chatID,
				"attempt":        attempt,
				"mode":           formatParseMode(messageConfig.ParseMode),
				"message_length": len(message),
			}).Info("발송 성공: 텔레그램 API로 메시지가 정상 전송되었습니다")
			return nil
		}

		lastErr = err
		errCode, retryAfter := parseTelegramError(err)

		applog.WithComponentAndFields(component, applog.Fields{
			"chat_id": t.chatID,
			"attempt": attempt,
			"code":    errCode,
			"error":   err,
		}).Warn("발송 실패: 텔레그램 API 호출에서 오류가 발생했습니다")

		if useHTML && errCode == 400 {
			return t.attemptSendWithRetry(ctx, message, false)
		}
		if !shouldRetry(errCode) || attempt >= maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(t.delayForRetry(retryAfter)):
		}
	}

	return apperrors.Wrap(lastErr, apperrors.Unavailable, "텔레그램 메시지 전송에 실패했습니다")
}

// shouldRetry 429를 제외한 4xx는 재시도하지 않습니다. 네트워크 오류(코드 0)와 5xx는 재시도합니다.
func shouldRetry(statusCode int) bool {
	if statusCode >= 400 && statusCode < 500 {
		return statusCode == 429
	}
	return true
}

func (t *Telegram) delayForRetry(retryAfter int) time.Duration {
	if retryAfter > 0 {
		return time.Duration(retryAfter) * time.Second
	}
	return t.retryDelay
}

func formatParseMode(mode string) string {
	if mode == tgbotapi.ModeHTML {
		return "HTML"
	}
	return "PlainText"
}

// parseTelegramError 텔레그램 API 에러에서 에러 코드와 Retry-After 값을 추출합니다.
func parseTelegramError(err error) (code int, retryAfter int) {
	var apiErr tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.ResponseParameters.RetryAfter
	}

	var apiErrPtr *tgbotapi.Error
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code, apiErrPtr.ResponseParameters.RetryAfter
	}

	return 0, 0
}

// splitMessage 메시지를 limit 바이트 이하의 조각으로 나눕니다. 가능한 한 줄바꿈 위치에서 자릅니다.
func splitMessage(message string, limit int) []string {
	if len(message) <= limit {
		return []string{message}
	}

	var chunks []string
	var sb strings.Builder

	flush := func() {
		if sb.Len() > 0 {
			chunks = append(chunks, sb.String())
			sb.Reset()
		}
	}

	for line := range strings.SplitSeq(message, "\n") {
		needed := len(line)
		if sb.Len() > 0 {
			needed++
		}

		if sb.Len()+needed > limit {
			flush()
			for len(line) > limit {
				var chunk string
				chunk, line = safeSplit(line, limit)
				chunks = append(chunks, chunk)
			}
		}

		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
	}
	flush()

	return chunks
}

// safeSplit UTF-8 문자열을 limit 바이트 이내에서 문자 경계를 지켜 자릅니다.
func safeSplit(s string, limit int) (chunk, remainder string) {
	if len(s) <= limit {
		return s, ""
	}

	splitIndex := limit
	for splitIndex > 0 && !utf8.RuneStart(s[splitIndex]) {
		splitIndex--
	}
	if splitIndex == 0 {
		return s[:limit], s[limit:]
	}

	return s[:splitIndex], s[splitIndex:]
}
