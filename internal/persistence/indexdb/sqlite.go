package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"voxelgate.io/internal/gate"
)

// SQLiteIndex is a secondary read-model of gateway verdicts: the
// JSONL logs remain the source of truth, this index exists for ad-hoc
// queries (who is getting rejected, for what, how often). Writes go
// through a buffered channel into a single writer goroutine; under
// backpressure entries are dropped rather than stalling validation.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan gate.AuditEntry
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan gate.AuditEntry, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS verdicts (
			id TEXT PRIMARY KEY,
			at TEXT NOT NULL,
			player_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			ok INTEGER NOT NULL,
			code TEXT,
			errors_json TEXT,
			raw_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_verdicts_player_at ON verdicts(player_id, at);`,
		`CREATE INDEX IF NOT EXISTS idx_verdicts_kind_ok ON verdicts(kind, ok);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// WriteVerdict enqueues one entry; it never blocks the caller.
func (s *SQLiteIndex) WriteVerdict(entry gate.AuditEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- entry:
	default:
		// Drop if the indexer falls behind; JSONL logs remain the source of truth.
	}
	return nil
}

// RejectionCounts reports, per action kind, how many rejected verdicts
// the index holds for a player.
func (s *SQLiteIndex) RejectionCounts(ctx context.Context, playerID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, COUNT(*) FROM verdicts WHERE player_id = ? AND ok = 0 GROUP BY kind`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		out[kind] = n
	}
	return out, rows.Err()
}

// Flush blocks until every entry enqueued before the call is
// committed. The sentinel rides the same channel as real entries, so
// its commit implies theirs. Test hook; production relies on the
// commit cadence in loop.
func (s *SQLiteIndex) Flush() {
	if s == nil || s.closed.Load() {
		return
	}
	token := fmt.Sprintf("flush-%d", time.Now().UnixNano())
	s.ch <- gate.AuditEntry{ID: flushSentinel, Code: token}
	for i := 0; i < 400; i++ {
		var v string
		if err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'flush'`).Scan(&v); err == nil && v == token {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
}

const flushSentinel = "__flush__"

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insert, _ := s.db.Prepare(`INSERT OR REPLACE INTO verdicts(id,at,player_id,kind,ok,code,errors_json,raw_json) VALUES(?,?,?,?,?,?,?,?)`)
	defer func() {
		if insert != nil {
			_ = insert.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for e := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		if e.ID == flushSentinel {
			if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('flush',?)`, e.Code); err != nil {
				rollback()
				continue
			}
			commit()
			continue
		}

		errsJSON, _ := json.Marshal(e.Errors)
		raw, _ := json.Marshal(e)
		ok := 0
		if e.OK {
			ok = 1
		}
		if insert != nil {
			if _, err := tx.Stmt(insert).Exec(
				e.ID,
				e.At.UTC().Format(time.RFC3339Nano),
				e.PlayerID,
				e.Kind,
				ok,
				e.Code,
				string(errsJSON),
				string(raw),
			); err != nil {
				rollback()
				continue
			}
			opCount++
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	commit()
}
