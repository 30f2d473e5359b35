package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/darkkaiser/kaidoki-navi/internal/catalog"
	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
	applog "github.com/darkkaiser/kaidoki-navi/pkg/log"
)

// tempFilePattern 원자적 저장 중 생성되는 임시 파일의 이름 패턴입니다.
const tempFilePattern = ".kaidoki-store-*.tmp"

// staleTempFileAge 이보다 오래된 임시 파일은 이전 실행이 남긴 것으로 보고 삭제합니다.
const staleTempFileAge = time.Hour

// corruptSuffixLayout 손상 파일 백업 이름에 붙는 시각 형식입니다.
const corruptSuffixLayout = "20060102T150405"

// fileStore 단일 파일에 전체 Store를 기록하는 저장소입니다.
type fileStore struct {
	path      string
	codec     codec
	onCorrupt CorruptPolicy
	readOnly  bool
	now       func() time.Time

	mu sync.Mutex
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Repository = (*fileStore)(nil)

func newFileStore(opts Options, c codec) *fileStore {
	s := &fileStore{
		path:      opts.Path,
		codec:     c,
		onCorrupt: opts.OnCorrupt,
		readOnly:  opts.ReadOnly,
		now:       opts.now,
	}

	s.cleanupStaleTempFiles()

	return s
}

func (s *fileStore) Load(_ context.Context) (catalog.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applog.WithComponentAndFields(component, applog.Fields{
				"path": s.path,
			}).Info("저장소 파일이 없어 빈 저장소로 시작합니다")

			return catalog.Store{}, nil
		}
		return nil, apperrors.Wrapf(err, apperrors.System, "저장소 파일(%s)을 읽을 수 없습니다", s.path)
	}

	var repairs repairLog
	st, err := s.codec.Decode(bytes.NewReader(data), &repairs)
	if err == nil {
		if repairs.count > 0 && !s.readOnly {
			// 복구된 값은 다음 Save에서 덮어쓰이므로 원본을 먼저 남겨 둡니다.
			backup := corruptBackupPath(s.path, s.now())
			if err := os.WriteFile(backup, data, 0644); err != nil {
				return nil, NewErrStoreWriteFailed(backup, "손상 원본 백업", err)
			}

			applog.WithComponentAndFields(component, applog.Fields{
				"path":     s.path,
				"backup":   backup,
				"repaired": repairs.count,
			}).Warn("저장소 파일의 일부 값이 손상되어 기본값으로 복구했습니다")
		}

		applog.WithComponentAndFields(component, applog.Fields{
			"path":    s.path,
			"records": len(st),
		}).Debug("저장소 로드 완료")

		return st, nil
	}

	corrupt := NewErrCorruptStore(s.path, err)
	if s.onCorrupt == CorruptAbort {
		return nil, corrupt
	}

	backup := corruptBackupPath(s.path, s.now())
	if renameErr := os.Rename(s.path, backup); renameErr != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"path":  s.path,
			"error": renameErr,
		}).Error("손상된 저장소 파일 백업 실패")

		return nil, errors.Join(corrupt, renameErr)
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"path":   s.path,
		"backup": backup,
		"error":  err,
	}).Warn("저장소 파일이 손상되어 빈 저장소로 다시 시작합니다")

	return catalog.Store{}, nil
}

func (s *fileStore) Save(_ context.Context, st catalog.Store) error {
	if s.readOnly {
		return ErrReadOnly
	}

	var buf bytes.Buffer
	if err := s.codec.Encode(&buf, st); err != nil {
		return NewErrStoreWriteFailed(s.path, "직렬화", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeAtomic(s.path, buf.Bytes()); err != nil {
		return err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"path":    s.path,
		"records": len(st),
		"bytes":   buf.Len(),
	}).Info("저장소 기록 완료")

	return nil
}

func (s *fileStore) Close() error { return nil }

// writeAtomic 같은 디렉토리의 임시 파일에 기록하고 fsync한 뒤 이름을 바꿔 교체합니다.
// 도중에 실패하면 기존 파일은 그대로 남습니다.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return NewErrStoreWriteFailed(path, "디렉토리 생성", err)
	}

	tmpFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return NewErrStoreWriteFailed(path, "임시 파일 생성", err)
	}
	tmpPath := tmpFile.Name()

	// Windows에서는 열린 파일을 지울 수 없으므로 Close가 Remove보다 먼저 실행되어야 합니다.
	defer os.Remove(tmpPath)
	defer tmpFile.Close()

	if _, err := tmpFile.Write(data); err != nil {
		return NewErrStoreWriteFailed(path, "파일 쓰기", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return NewErrStoreWriteFailed(path, "파일 동기화", err)
	}
	if err := tmpFile.Close(); err != nil {
		return NewErrStoreWriteFailed(path, "파일 닫기", err)
	}

	if err := renameWithRetry(tmpPath, path); err != nil {
		return NewErrStoreWriteFailed(path, "이름 변경", err)
	}

	// 실패해도 데이터는 이미 교체되었으므로 무시합니다.
	if dirFile, err := os.Open(dir); err == nil {
		_ = dirFile.Sync()
		dirFile.Close()
	}

	return nil
}

// renameWithRetry 백신, 인덱서 등이 파일을 잠시 잡고 있는 경우를 위해 짧게 재시도합니다.
func renameWithRetry(oldPath, newPath string) error {
	const maxRetries = 5
	const retryDelay = 10 * time.Millisecond

	var lastErr error
	for range maxRetries {
		err := os.Rename(oldPath, newPath)
		if err == nil {
			return nil
		}

		lastErr = err
		time.Sleep(retryDelay)
	}

	return lastErr
}

// cleanupStaleTempFiles 비정상 종료로 남은 오래된 임시 파일을 정리합니다.
func (s *fileStore) cleanupStaleTempFiles() {
	dir := filepath.Dir(s.path)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	threshold := s.now().Add(-staleTempFileAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if matched, _ := filepath.Match(tempFilePattern, entry.Name()); !matched {
			continue
		}

		info, err := entry.Info()
		if err != nil || info.ModTime().After(threshold) {
			continue
		}

		fullPath := filepath.Join(dir, entry.Name())
		if err := os.Remove(fullPath); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"file":  fullPath,
				"error": err,
			}).Warn("임시 파일 삭제 실패")

			continue
		}

		applog.WithComponentAndFields(component, applog.Fields{
			"file": fullPath,
		}).Info("이전 실행이 남긴 임시 파일을 삭제했습니다")
	}
}
