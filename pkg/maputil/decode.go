// Package maputil 설정 파일의 자유 형식 맵(map[string]any)을 타입이 있는 구조체로 변환합니다.
package maputil

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

type config struct {
	tagName     string
	errorUnused bool
}

// Option Decode 동작을 조정합니다.
type Option func(*config)

// WithTagName 필드 매핑에 사용할 구조체 태그 이름을 지정합니다. 기본값은 "json" 입니다.
func WithTagName(name string) Option {
	return func(c *config) { c.tagName = name }
}

// WithErrorUnused 구조체에 없는 키가 입력에 있으면 에러를 반환하도록 합니다.
func WithErrorUnused(enable bool) Option {
	return func(c *config) { c.errorUnused = enable }
}

// Decode input을 T로 디코딩합니다.
//
// 기본 동작:
//   - json 태그 기준 매핑
//   - "123" -> 123 같은 느슨한 타입 변환
//   - "10s" -> time.Duration
//   - "a, b" -> []string{"a", "b"} (환경 변수로 목록을 덮어쓸 때 사용)
//   - 임베디드 구조체 평탄화
func Decode[T any](input any, opts ...Option) (*T, error) {
	cfg := &config{tagName: "json"}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	out := new(T)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          cfg.tagName,
		WeaklyTypedInput: true,
		ErrorUnused:      cfg.errorUnused,
		Squash:           true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToDurationHook,
			stringToSliceHook,
		),
	})
	if err != nil {
		return nil, err
	}

	if input == nil {
		return out, nil
	}
	if err := dec.Decode(input); err != nil {
		return nil, fmt.Errorf("입력 데이터를 %T(으)로 디코딩하는 데 실패했습니다: %w", out, err)
	}
	return out, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

func stringToDurationHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != durationType {
		return data, nil
	}

	d, err := time.ParseDuration(strings.TrimSpace(reflect.ValueOf(data).String()))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("기간 형식(%q)이 올바르지 않습니다", data), err)
	}
	return d, nil
}

func stringToSliceHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice || to.Elem().Kind() != reflect.String {
		return data, nil
	}

	s := reflect.ValueOf(data).String()
	if strings.TrimSpace(s) == "" {
		return []string{}, nil
	}

	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}
