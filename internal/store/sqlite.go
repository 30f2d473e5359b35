package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/darkkaiser/kaidoki-navi/internal/catalog"
	apperrors "github.com/darkkaiser/kaidoki-navi/internal/pkg/errors"
	applog "github.com/darkkaiser/kaidoki-navi/pkg/log"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS products (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL DEFAULT '',
	price         INTEGER NOT NULL DEFAULT 0,
	image_url     TEXT NOT NULL DEFAULT '',
	rakuten_url   TEXT NOT NULL DEFAULT '',
	yahoo_url     TEXT NOT NULL DEFAULT '',
	amazon_url    TEXT NOT NULL DEFAULT '',
	page_url      TEXT NOT NULL DEFAULT '',
	category      TEXT NOT NULL DEFAULT '{}',
	ai_headline   TEXT NOT NULL DEFAULT '',
	ai_analysis   TEXT NOT NULL DEFAULT '',
	description   TEXT NOT NULL DEFAULT '',
	ai_summary    TEXT NOT NULL DEFAULT '',
	tags          TEXT NOT NULL DEFAULT '[]',
	date          TEXT NOT NULL DEFAULT '',
	main_ec_site  TEXT NOT NULL DEFAULT '',
	price_history TEXT NOT NULL DEFAULT '[]',
	source        TEXT NOT NULL DEFAULT ''
)`

// sqliteStore 레코드를 SQLite 테이블 한 행씩 기록하는 저장소입니다.
// 중첩 필드는 CSV와 같은 JSON 텍스트로 저장하며 Save는 하나의 트랜잭션으로 전체를 교체합니다.
type sqliteStore struct {
	path      string
	onCorrupt CorruptPolicy
	readOnly  bool
	now       func() time.Time

	mu sync.Mutex
	db *sql.DB
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Repository = (*sqliteStore)(nil)

func openSQLite(opts Options) (*sqliteStore, error) {
	if opts.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
			return nil, NewErrStoreWriteFailed(opts.Path, "디렉토리 생성", err)
		}
	}

	s := &sqliteStore{path: opts.Path, onCorrupt: opts.OnCorrupt, readOnly: opts.ReadOnly, now: opts.now}

	db, err := initSQLite(opts.Path)
	if err == nil {
		s.db = db
		return s, nil
	}
	if !isSQLiteCorrupt(err) {
		return nil, apperrors.Wrapf(err, apperrors.System, "SQLite 데이터베이스(%s)를 열 수 없습니다", opts.Path)
	}
	if s.onCorrupt == CorruptAbort || opts.Path == ":memory:" {
		return nil, NewErrCorruptStore(opts.Path, err)
	}

	if err := s.quarantine(err); err != nil {
		return nil, err
	}
	return s, nil
}

// initSQLite 데이터베이스를 열고 테이블이 없으면 만듭니다.
func initSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// "database is locked" 에러를 피하기 위해 연결을 하나로 제한합니다.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA busy_timeout = 5000", sqliteSchema} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// isSQLiteCorrupt 파일 자체가 손상되었거나 SQLite 데이터베이스가 아닌 경우입니다.
// 잠금 대기 시간 초과나 컨텍스트 취소는 여기에 해당하지 않습니다.
func isSQLiteCorrupt(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB:
		return true
	}
	return false
}

// quarantine 손상된 데이터베이스 파일을 백업 이름으로 옮기고 빈 데이터베이스를 새로 만듭니다.
func (s *sqliteStore) quarantine(cause error) error {
	corrupt := NewErrCorruptStore(s.path, cause)

	if s.db != nil {
		s.db.Close()
		s.db = nil
	}

	backup := corruptBackupPath(s.path, s.now())
	if err := os.Rename(s.path, backup); err != nil {
		return errors.Join(corrupt, err)
	}
	_ = os.Remove(s.path + "-journal")

	db, err := initSQLite(s.path)
	if err != nil {
		return errors.Join(corrupt, err)
	}
	s.db = db

	applog.WithComponentAndFields(component, applog.Fields{
		"path":   s.path,
		"backup": backup,
		"error":  cause,
	}).Warn("SQLite 저장소가 손상되어 빈 저장소로 다시 시작합니다")

	return nil
}

func (s *sqliteStore) Load(ctx context.Context) (catalog.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var repairs repairLog
	st, err := s.load(ctx, &repairs)
	if err != nil {
		if !isSQLiteCorrupt(err) {
			return nil, apperrors.Wrapf(err, apperrors.Unavailable, "SQLite 저장소(%s)를 읽을 수 없습니다", s.path)
		}
		if s.onCorrupt == CorruptAbort || s.path == ":memory:" {
			return nil, NewErrCorruptStore(s.path, err)
		}
		if err := s.quarantine(err); err != nil {
			return nil, err
		}
		return catalog.Store{}, nil
	}

	if repairs.count > 0 && !s.readOnly && s.path != ":memory:" {
		// 복구된 값은 다음 Save에서 덮어쓰이므로 원본을 먼저 남겨 둡니다.
		backup := corruptBackupPath(s.path, s.now())
		if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", backup); err != nil {
			return nil, NewErrStoreWriteFailed(backup, "손상 원본 백업", err)
		}

		applog.WithComponentAndFields(component, applog.Fields{
			"path":     s.path,
			"backup":   backup,
			"repaired": repairs.count,
		}).Warn("SQLite 저장소의 일부 값이 손상되어 기본값으로 복구했습니다")
	}

	return st, nil
}

// load 모든 열을 문자열로 읽어 CSV와 같은 규칙으로 레코드를 만듭니다.
func (s *sqliteStore) load(ctx context.Context, repairs *repairLog) (catalog.Store, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+strings.Join(csvColumns, ", ")+" FROM products")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	index := make(map[string]int, len(csvColumns))
	for i, name := range csvColumns {
		index[name] = i
	}

	values := make([]string, len(csvColumns))
	dest := make([]any, len(values))
	for i := range values {
		dest[i] = &values[i]
	}

	st := make(catalog.Store)
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		rec := rowToRecord(func(name string) string { return values[index[name]] }, repairs)
		if rec == nil {
			continue
		}
		st[rec.ID] = rec
	}

	return st, rows.Err()
}

func (s *sqliteStore) Save(ctx context.Context, st catalog.Store) error {
	if s.readOnly {
		return ErrReadOnly
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	started := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NewErrStoreWriteFailed(s.path, "트랜잭션 시작", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM products"); err != nil {
		return NewErrStoreWriteFailed(s.path, "기존 행 삭제", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO products (id, name, price, image_url, rakuten_url, yahoo_url,
		amazon_url, page_url, category, ai_headline, ai_analysis, description, ai_summary, tags, date,
		main_ec_site, price_history, source) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return NewErrStoreWriteFailed(s.path, "INSERT 준비", err)
	}
	defer stmt.Close()

	for _, r := range st.Records() {
		row, err := recordToRow(r)
		if err != nil {
			return NewErrStoreWriteFailed(s.path, "직렬화", err)
		}

		args := make([]any, len(row))
		for i, v := range row {
			args[i] = v
		}
		args[2] = r.Price

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return NewErrStoreWriteFailed(s.path, fmt.Sprintf("상품(%s) 기록", r.ID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return NewErrStoreWriteFailed(s.path, "커밋", err)
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"path":     s.path,
		"records":  len(st),
		"duration": time.Since(started).String(),
	}).Info("SQLite 저장소 기록 완료")

	return nil
}

func (s *sqliteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
