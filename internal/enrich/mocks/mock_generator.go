// Package mocks enrich 패키지의 테스트를 위한 Mock 구현체를 제공합니다.
package mocks

import (
	"context"

	"github.com/darkkaiser/kaidoki-navi/internal/enrich"
	"github.com/stretchr/testify/mock"
)

// MockGenerator testify/mock 기반의 enrich.Generator 구현체입니다.
//
//	gen := &mocks.MockGenerator{}
//	gen.On("Metadata", mock.Anything, mock.Anything).Return(enrich.Metadata{Summary: "..."}, nil)
type MockGenerator struct {
	mock.Mock
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ enrich.Generator = (*MockGenerator)(nil)

func (m *MockGenerator) Metadata(ctx context.Context, in enrich.MetadataInput) (enrich.Metadata, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(enrich.Metadata), args.Error(1)
}

func (m *MockGenerator) Analysis(ctx context.Context, in enrich.AnalysisInput) (enrich.Analysis, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(enrich.Analysis), args.Error(1)
}
