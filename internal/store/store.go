// Package store 상품 레코드 집합을 실행 간에 보존하는 저장소를 제공합니다.
//
// 기본 형식은 기존 캐시 파일과 호환되는 CSV(중첩 필드는 셀 안의 JSON)이며
// JSON 파일과 SQLite 데이터베이스도 선택할 수 있습니다.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/darkkaiser/kaidoki-navi/internal/catalog"
	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
)

// component 저장소 로깅용 컴포넌트 이름
const component = "store"

// Format 저장 형식입니다.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatJSON   Format = "json"
	FormatSQLite Format = "sqlite"
)

// CorruptPolicy 저장 파일이 손상되었을 때의 처리 방식입니다.
type CorruptPolicy string

const (
	// CorruptReset 손상된 파일을 백업 이름으로 옮겨 두고 빈 저장소로 계속 진행합니다.
	CorruptReset CorruptPolicy = "reset"

	// CorruptAbort CorruptStore 에러를 반환하여 실행을 중단합니다.
	CorruptAbort CorruptPolicy = "abort"
)

// Repository 상품 레코드 집합을 읽고 쓰는 저장소입니다.
type Repository interface {
	// Load 저장된 전체 레코드를 읽습니다. 저장된 데이터가 아직 없으면 빈 Store를 반환합니다.
	Load(ctx context.Context) (catalog.Store, error)

	// Save 전체 레코드를 기록합니다. 실패하면 기존 데이터는 그대로 남습니다.
	Save(ctx context.Context, s catalog.Store) error

	Close() error
}

// Options 저장소 생성 옵션입니다.
type Options struct {
	Path      string
	Format    Format
	OnCorrupt CorruptPolicy

	// ReadOnly 읽기 전용으로 엽니다. 손상된 파일을 옮기거나 백업하지 않고 CorruptStore 에러를 반환하며 Save는 실패합니다.
	ReadOnly bool

	// now 손상 파일 백업 이름에 쓰는 시각 (테스트용)
	now func() time.Time
}

// Open 옵션에 맞는 저장소를 생성합니다.
func Open(opts Options) (Repository, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return nil, apperrors.New(apperrors.InvalidInput, "저장소 경로가 비어 있습니다")
	}
	if opts.OnCorrupt == "" {
		opts.OnCorrupt = CorruptReset
	}
	if opts.OnCorrupt != CorruptReset && opts.OnCorrupt != CorruptAbort {
		return nil, apperrors.Newf(apperrors.InvalidInput, "지원하지 않는 손상 처리 방식입니다: %q", opts.OnCorrupt)
	}
	if opts.ReadOnly {
		opts.OnCorrupt = CorruptAbort
	}
	if opts.now == nil {
		opts.now = time.Now
	}

	switch opts.Format {
	case "", FormatCSV:
		return newFileStore(opts, csvCodec{}), nil
	case FormatJSON:
		return newFileStore(opts, jsonCodec{}), nil
	case FormatSQLite:
		return openSQLite(opts)
	default:
		return nil, apperrors.New(apperrors.InvalidInput, fmt.Sprintf("지원하지 않는 저장 형식입니다: %q", opts.Format))
	}
}

// corruptBackupPath 손상된 저장소 원본을 남겨 둘 경로입니다.
func corruptBackupPath(path string, now time.Time) string {
	return path + ".corrupt-" + now.Format(corruptSuffixLayout)
}
