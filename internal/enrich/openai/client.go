// Package openai OpenAI Chat Completions API로 AI 생성 필드를 만드는 enrich.Generator 구현입니다.
package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/darkkaiser/kaidoki-navi/internal/config"
	"github.com/darkkaiser/kaidoki-navi/internal/enrich"
	"github.com/darkkaiser/kaidoki-navi/internal/fetcher"
	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
	"github.com/darkkaiser/kaidoki-navi/pkg/strutil"
	"github.com/tidwall/gjson"
)

const chatCompletionsPath = "/chat/completions"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

// Client OpenAI 호환 Chat Completions 엔드포인트를 호출합니다.
type Client struct {
	fetcher  fetcher.Fetcher
	endpoint string
	apiKey   string
	model    string
	timeout  time.Duration
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ enrich.Generator = (*Client)(nil)

// New 설정으로부터 Client를 생성합니다. f는 POST 요청도 재시도하도록 구성되어 있어야 합니다.
func New(cfg config.OpenAIConfig, f fetcher.Fetcher) *Client {
	return &Client{
		fetcher:  f,
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + chatCompletionsPath,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		timeout:  cfg.Timeout,
	}
}

// Metadata 상품 요약, 태그, 서브 카테고리를 생성합니다.
func (c *Client) Metadata(ctx context.Context, in enrich.MetadataInput) (enrich.Metadata, error) {
	r, err := c.complete(ctx, metadataPrompt(in))
	if err != nil {
		return enrich.Metadata{}, err
	}

	return enrich.Metadata{
		Summary:     r.Get("summary").String(),
		Tags:        tagsOf(r.Get("tags")),
		SubCategory: strings.TrimSpace(r.Get("sub_category").String()),
	}, nil
}

// Analysis 가격 분석 헤드라인과 본문을 생성합니다.
func (c *Client) Analysis(ctx context.Context, in enrich.AnalysisInput) (enrich.Analysis, error) {
	r, err := c.complete(ctx, analysisPrompt(in))
	if err != nil {
		return enrich.Analysis{}, err
	}

	return enrich.Analysis{
		Headline: r.Get("headline").String(),
		Analysis: r.Get("analysis").String(),
	}, nil
}

// complete 프롬프트를 보내고 응답 메시지 본문(JSON 객체)을 반환합니다.
func (c *Client) complete(ctx context.Context, prompt string) (gjson.Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	}
	req.ResponseFormat.Type = "json_object"

	body, err := json.Marshal(req)
	if err != nil {
		return gjson.Result{}, apperrors.Wrap(err, apperrors.Internal, "요청 본문을 만들 수 없습니다")
	}

	header := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"Content-Type":  "application/json",
	}

	data, err := fetcher.FetchBytes(ctx, c.fetcher, http.MethodPost, c.endpoint, header, body)
	if err != nil {
		return gjson.Result{}, err
	}

	content := gjson.GetBytes(data, "choices.0.message.content")
	if strings.TrimSpace(content.String()) == "" {
		return gjson.Result{}, apperrors.Wrap(enrich.ErrEmptyContent, apperrors.ParsingFailed, "응답에 메시지 본문이 없습니다")
	}

	raw := content.String()
	if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		return gjson.Result{}, apperrors.Newf(apperrors.ParsingFailed, "메시지 본문이 JSON 객체가 아닙니다: %q", strutil.TruncateRunes(raw, 80, "…"))
	}
	return gjson.Parse(raw), nil
}

// tagsOf 태그 배열을 읽습니다. 모델이 쉼표로 구분된 문자열을 돌려준 경우도 허용합니다.
func tagsOf(r gjson.Result) []string {
	if r.IsArray() {
		var tags []string
		for _, t := range r.Array() {
			tags = append(tags, t.String())
		}
		return tags
	}

	s := r.String()
	if s == "" {
		return nil
	}
	return strings.FieldsFunc(s, func(c rune) bool { return c == ',' || c == '、' })
}
