// Package config 애플리케이션 설정을 로드하고 검증합니다.
//
// 설정은 기본값 → JSON 설정 파일 → .env 파일 → 환경 변수 순서로 병합되며,
// 뒤에 오는 값이 앞의 값을 덮어씁니다.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
	"github.com/darkkaiser/kaidoki-navi/pkg/cronx"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// AppName 애플리케이션의 전역 고유 식별자입니다.
	AppName string = "kaidoki-navi"

	// DefaultFilename 실행 인자로 경로가 주어지지 않았을 때 사용하는 설정 파일명입니다.
	DefaultFilename = AppName + ".json"

	// EnvPrefix 설정을 덮어쓰는 환경 변수의 접두사입니다.
	// 예: KAIDOKI_STORE__PATH -> store.path
	EnvPrefix = "KAIDOKI_"

	// DotEnvFilename 설정 파일과 같은 디렉토리에서 읽는 .env 파일 이름입니다.
	DotEnvFilename = ".env"
)

// 외부 API 비밀 값은 관례적인 이름의 환경 변수로도 받을 수 있습니다.
const (
	EnvOpenAIAPIKey     = "OPENAI_API_KEY"
	EnvTelegramBotToken = "TELEGRAM_BOT_TOKEN"
)

// AppConfig 애플리케이션의 모든 설정을 관장하는 최상위 루트 구조체
type AppConfig struct {
	Debug    bool   `json:"debug"`
	Timezone string `json:"timezone"`

	Log       LogConfig       `json:"log"`
	HTTPRetry HTTPRetryConfig `json:"http_retry"`
	Store     StoreConfig     `json:"store"`
	Sources   []SourceConfig  `json:"sources"`
	Taxonomy  TaxonomyConfig  `json:"taxonomy"`
	OpenAI    OpenAIConfig    `json:"openai"`
	Render    RenderConfig    `json:"render"`
	Schedule  ScheduleConfig  `json:"schedule"`
	Telegram  TelegramConfig  `json:"telegram"`
	Server    ServerConfig    `json:"server"`
}

// LogConfig 로그 파일 위치와 보관 정책
type LogConfig struct {
	Dir        string `json:"dir"`
	Level      string `json:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	MaxAge     int    `json:"max_age" validate:"min=0"`
	MaxSizeMB  int    `json:"max_size_mb" validate:"min=0"`
	MaxBackups int    `json:"max_backups" validate:"min=0"`
	Console    bool   `json:"console"`
}

// HTTPRetryConfig 외부 API 호출의 타임아웃, 재시도, 요청 속도 제한 설정
type HTTPRetryConfig struct {
	Timeout    time.Duration `json:"timeout" validate:"gt=0"`
	MaxRetries int           `json:"max_retries" validate:"min=0,max=10"`
	RetryDelay time.Duration `json:"retry_delay" validate:"gt=0"`
	MaxDelay   time.Duration `json:"max_delay" validate:"gtefield=RetryDelay"`

	// RequestsPerSecond 수집처 API에 보내는 초당 요청 수 상한 (0이면 제한 없음)
	RequestsPerSecond float64 `json:"requests_per_second" validate:"min=0"`

	UserAgent string `json:"user_agent"`
}

// StoreConfig 상품 레코드 저장소 설정
type StoreConfig struct {
	Path      string `json:"path" validate:"required"`
	Format    string `json:"format" validate:"oneof=csv json sqlite"`
	OnCorrupt string `json:"on_corrupt" validate:"oneof=reset abort"`
}

// SourceConfig 상품 수집처 하나의 설정입니다.
// Data의 내용은 Type별로 다르며 각 수집처 구현이 해석합니다.
type SourceConfig struct {
	ID      string         `json:"id" validate:"required"`
	Type    string         `json:"type" validate:"required,oneof=rakuten yahoo"`
	Enabled bool           `json:"enabled"`
	Data    map[string]any `json:"data"`
}

// TaxonomyConfig 카테고리 분류 체계 설정입니다. File이 비어 있으면 내장 분류를 사용합니다.
type TaxonomyConfig struct {
	File string `json:"file" validate:"omitempty,file"`
}

// OpenAIConfig AI 생성 필드를 만드는 OpenAI API 설정입니다.
// APIKey가 비어 있으면 AI 생성을 건너뛰고 해당 필드는 비어 있는 상태로 남습니다.
type OpenAIConfig struct {
	APIKey            string        `json:"api_key"`
	BaseURL           string        `json:"base_url" validate:"required,url"`
	Model             string        `json:"model" validate:"required"`
	Timeout           time.Duration `json:"timeout" validate:"gt=0"`
	Concurrency       int           `json:"concurrency" validate:"min=1,max=32"`
	RequestsPerSecond float64       `json:"requests_per_second" validate:"gt=0"`
}

// Enabled API 키가 설정되어 AI 생성을 수행할 수 있는지 여부입니다.
func (c OpenAIConfig) Enabled() bool { return strings.TrimSpace(c.APIKey) != "" }

// RenderConfig 정적 사이트 생성 설정
type RenderConfig struct {
	OutputDir       string `json:"output_dir" validate:"required"`
	BaseURL         string `json:"base_url" validate:"omitempty,url"`
	SiteName        string `json:"site_name" validate:"required"`
	ProductsPerPage int    `json:"products_per_page" validate:"min=1"`
	TagsPerPage     int    `json:"tags_per_page" validate:"min=1"`
}

// ScheduleConfig 데몬 모드에서 파이프라인을 실행하는 주기 (초 단위를 포함한 6필드 Cron 표현식)
type ScheduleConfig struct {
	Spec string `json:"spec" validate:"required"`
}

// TelegramConfig 실행 결과를 보고하는 텔레그램 봇 설정
type TelegramConfig struct {
	Enabled  bool   `json:"enabled"`
	BotToken string `json:"bot_token" validate:"required_if=Enabled true,omitempty,telegram_bot_token"`
	ChatID   int64  `json:"chat_id" validate:"required_if=Enabled true"`
}

// ServerConfig 생성된 사이트를 미리 보는 웹 서버 설정
type ServerConfig struct {
	ListenPort int `json:"listen_port" validate:"min=1,max=65535"`
}

// Location 설정된 시간대를 반환합니다. 날짜 경계(가격 이력의 "오늘")는 이 시간대를 기준으로 합니다.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// newDefaultConfig 설정 파일과 환경 변수가 없을 때 사용하는 기본 설정을 생성합니다.
func newDefaultConfig() *AppConfig {
	return &AppConfig{
		Timezone: "Asia/Tokyo",
		Log: LogConfig{
			Dir:        "logs",
			Level:      "info",
			MaxAge:     30,
			MaxSizeMB:  100,
			MaxBackups: 20,
		},
		HTTPRetry: HTTPRetryConfig{
			Timeout:           30 * time.Second,
			MaxRetries:        3,
			RetryDelay:        2 * time.Second,
			MaxDelay:          30 * time.Second,
			RequestsPerSecond: 1,
			UserAgent:         AppName,
		},
		Store: StoreConfig{
			Path:      "products.csv",
			Format:    "csv",
			OnCorrupt: "reset",
		},
		OpenAI: OpenAIConfig{
			BaseURL:           "https://api.openai.com/v1",
			Model:             "gpt-4o-mini",
			Timeout:           60 * time.Second,
			Concurrency:       4,
			RequestsPerSecond: 2,
		},
		Render: RenderConfig{
			OutputDir:       "public",
			SiteName:        "カイドキ-ナビ",
			ProductsPerPage: 24,
			TagsPerPage:     50,
		},
		Schedule: ScheduleConfig{
			Spec: "0 0 6 * * *",
		},
		Server: ServerConfig{
			ListenPort: 8080,
		},
	}
}

// validate 설정 로드 직후 각 항목의 정합성을 검증합니다.
func (c *AppConfig) validate() error {
	v := newValidator()

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("시간대(timezone) 설정이 올바르지 않습니다: '%s'", c.Timezone))
	}

	sections := []struct {
		value any
		name  string
	}{
		{c.Log, "로그(log)"},
		{c.HTTPRetry, "HTTP 재시도(http_retry)"},
		{c.Store, "저장소(store)"},
		{c.Taxonomy, "카테고리 분류(taxonomy)"},
		{c.OpenAI, "OpenAI(openai)"},
		{c.Render, "사이트 생성(render)"},
		{c.Schedule, "스케줄(schedule)"},
		{c.Telegram, "텔레그램(telegram)"},
		{c.Server, "웹 서버(server)"},
	}
	for _, s := range sections {
		if err := checkStruct(v, s.value, s.name); err != nil {
			return err
		}
	}

	if err := cronx.Validate(c.Schedule.Spec); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("스케줄(schedule.spec) 설정이 유효하지 않습니다: '%s'", c.Schedule.Spec))
	}

	if err := checkUniqueField(v, c.Sources, "ID", "Source"); err != nil {
		return err
	}
	for _, src := range c.Sources {
		if err := checkStruct(v, src, fmt.Sprintf("Source['%s']", src.ID)); err != nil {
			return err
		}
	}

	return nil
}

// EnabledSources 활성화된 수집처 설정만 반환합니다.
func (c *AppConfig) EnabledSources() []SourceConfig {
	var out []SourceConfig
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// Load 기본 설정 파일을 읽어 애플리케이션 설정을 로드합니다.
func Load() (*AppConfig, error) {
	return LoadWithFile(DefaultFilename)
}

// LoadWithFile 지정된 경로의 설정 파일을 읽어 AppConfig 객체를 생성합니다.
func LoadWithFile(filename string) (*AppConfig, error) {
	k := koanf.New(".")

	// 1. 기본값 (가장 낮은 우선순위)
	if err := k.Load(structs.Provider(newDefaultConfig(), "json"), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "애플리케이션 기본 설정 로드에 실패했습니다")
	}

	// 2. JSON 설정 파일
	if err := k.Load(file.Provider(filename), json.Parser()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.Wrap(err, apperrors.NotFound, fmt.Sprintf("설정 파일을 찾을 수 없습니다: '%s'", filename))
		}
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일 로드 중 오류가 발생했습니다: '%s'", filename))
	}

	// 3. .env 파일: 이미 설정된 환경 변수는 덮어쓰지 않습니다.
	if err := loadDotEnv(filepath.Join(filepath.Dir(filename), DotEnvFilename)); err != nil {
		return nil, err
	}

	// 4. 환경 변수 (최우선 순위)
	if err := k.Load(env.Provider(EnvPrefix, ".", normalizeEnvKey), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "환경 변수 로드에 실패했습니다")
	}

	// 5. 구조체 언마샬링: 구조체에 없는 키가 있으면 오타로 보고 에러를 반환합니다.
	var appConfig AppConfig
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			ErrorUnused:      true,
			WeaklyTypedInput: true,
			Result:           &appConfig,
		},
	}
	if err := k.UnmarshalWithConf("", &appConfig, unmarshalConf); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "설정 데이터를 애플리케이션 구조체로 변환하는데 실패했습니다")
	}

	applySecretFallbacks(&appConfig)

	// 6. 유효성 검사
	if err := appConfig.validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일('%s')의 유효성 검증에 실패했습니다", filename))
	}

	return &appConfig, nil
}

// normalizeEnvKey 환경 변수 이름을 설정 키로 변환합니다.
// 이중 언더스코어(__)는 계층 구분자(.)가 됩니다. 예: KAIDOKI_HTTP_RETRY__MAX_RETRIES -> http_retry.max_retries
func normalizeEnvKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf(".env 파일을 읽을 수 없습니다: '%s'", path))
	}
	return nil
}

// applySecretFallbacks 비어 있는 비밀 값을 관례적인 이름의 환경 변수로 채웁니다.
func applySecretFallbacks(c *AppConfig) {
	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = os.Getenv(EnvOpenAIAPIKey)
	}
	if c.Telegram.BotToken == "" {
		c.Telegram.BotToken = os.Getenv(EnvTelegramBotToken)
	}
}
