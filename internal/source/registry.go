package source

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/darkkaiser/kaidoki-navi/internal/config"
	"github.com/darkkaiser/kaidoki-navi/internal/fetcher"
	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
	applog "github.com/darkkaiser/kaidoki-navi/pkg/log"
	"github.com/darkkaiser/kaidoki-navi/pkg/maputil"
)

// Factory 설정으로부터 수집처를 생성합니다.
type Factory func(cfg config.SourceConfig, f fetcher.Fetcher) (Source, error)

// Registry 수집처 유형별 Factory를 관리합니다.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

var defaultRegistry = NewRegistry()

// NewRegistry 빈 Registry를 생성합니다.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Default 하위 패키지들이 init 시점에 등록하는 기본 Registry를 반환합니다.
func Default() *Registry { return defaultRegistry }

// MustRegister 기본 Registry에 Factory를 등록하며, 실패 시 패닉을 발생시킵니다.
func MustRegister(typ string, fn Factory) {
	if err := defaultRegistry.Register(typ, fn); err != nil {
		panic(err)
	}
}

// Register typ 유형의 Factory를 등록합니다.
func (r *Registry) Register(typ string, fn Factory) error {
	if typ == "" || fn == nil {
		return apperrors.New(apperrors.InvalidInput, "수집처 유형과 Factory는 비어 있을 수 없습니다")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[typ]; exists {
		return apperrors.Wrapf(ErrAlreadyRegistered, apperrors.Conflict, "수집처 유형(%s)이 이미 등록되어 있습니다", typ)
	}
	r.factories[typ] = fn
	return nil
}

// Types 등록된 유형 목록을 정렬하여 반환합니다.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for typ := range r.factories {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}

// Build 활성화된 수집처 설정마다 Source를 생성합니다.
// 하나라도 생성할 수 없으면 모든 에러를 모아 반환합니다.
func (r *Registry) Build(cfgs []config.SourceConfig, f fetcher.Fetcher) ([]Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		sources []Source
		errs    []error
	)
	for _, c := range cfgs {
		if !c.Enabled {
			continue
		}

		fn, ok := r.factories[c.Type]
		if !ok {
			errs = append(errs, apperrors.Wrapf(ErrUnknownSourceType, apperrors.InvalidInput, "수집처(%s)의 유형(%s)을 찾을 수 없습니다", c.ID, c.Type))
			continue
		}

		src, err := fn(c, f)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		applog.WithComponentAndFields(component, applog.Fields{
			"source_id": c.ID,
			"type":      c.Type,
		}).Debug("수집처 생성 완료")

		sources = append(sources, src)
	}

	if len(errs) > 0 {
		return nil, apperrors.Wrap(errors.Join(errs...), apperrors.InvalidInput, fmt.Sprintf("수집처 %d개를 생성할 수 없습니다", len(errs)))
	}
	return sources, nil
}

// DecodeSettings 수집처 설정의 Data를 T로 디코딩하고, T가 Validator를 구현하면 검증합니다.
func DecodeSettings[T any](cfg config.SourceConfig) (*T, error) {
	settings, err := maputil.Decode[T](cfg.Data, maputil.WithErrorUnused(true))
	if err != nil {
		return nil, newErrInvalidSettings(cfg.ID, err)
	}

	if v, ok := any(settings).(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, newErrInvalidSettings(cfg.ID, err)
		}
	}
	return settings, nil
}
