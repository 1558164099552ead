// Package db owns the screening database: connection setup, base schema,
// migrations, and the optional admin/debug surface.
package db

import (
	"compress/gzip"
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"
)

// DB wraps the sqlite handle holding screening sessions and live verdict
// logs.
type DB struct {
	*sql.DB
}

// NewDB opens (creating if needed) the screening database at path and
// ensures the base schema. Use ":memory:" for tests.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id        TEXT PRIMARY KEY,
			subject_label     TEXT,
			result_json       TEXT NOT NULL,
			created_at        BIGINT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS live_verdicts (
			verdict_id        TEXT PRIMARY KEY,
			session_id        TEXT,
			view              TEXT NOT NULL,
			aligned           INTEGER NOT NULL,
			message           TEXT NOT NULL,
			confidence        DOUBLE,
			tick_at           BIGINT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_live_verdicts_session
			ON live_verdicts(session_id, tick_at);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// AttachAdminRoutes mounts the debug surface on mux: a tailsql console for
// live SQL against the screening DB and a one-shot gzip backup download.
// Callers gate this behind an operator-only listener; nothing here is
// authenticated.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		log.Fatalf("failed to create tailsql server: %v", err)
	}
	tsql.SetDB("sqlite://screening.db", db.DB, &tailsql.DBOptions{
		Label: "Screening DB",
	})
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("backup", "Create and download a backup of the database now", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backupPath := fmt.Sprintf("backup-%d.db", time.Now().Unix())
		if _, err := db.DB.Exec("VACUUM INTO ?", backupPath); err != nil {
			http.Error(w, fmt.Sprintf("Failed to create backup: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", backupPath))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Encoding", "gzip")

		backupFile, err := os.Open(backupPath)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to open backup file: %v", err), http.StatusInternalServerError)
			return
		}
		defer func() {
			backupFile.Close()
			if err := os.Remove(backupPath); err != nil {
				log.Printf("Failed to remove backup file: %v", err)
			}
		}()

		gzipWriter := gzip.NewWriter(w)
		defer gzipWriter.Close()
		if _, err := io.Copy(gzipWriter, backupFile); err != nil {
			http.Error(w, fmt.Sprintf("Failed to write backup file: %v", err), http.StatusInternalServerError)
			return
		}
	}))
}
