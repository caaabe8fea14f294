// Package store implements the durable project snapshot described as a
// SPEC_FULL supplement: the last ProjectAnalysisResult persisted so
// `symgraph report` can browse it without a project re-scan. It
// is strictly an outer-layer cache of a finished, read-only graph.Table —
// the in-memory table a fresh Analyze call builds is always the source of
// truth during one run. Grounded on the teacher's
// internal/database/schema.go + internal/database/manager.go table-per-
// concern style, re-keyed to this domain's string-id identity instead of
// autoincrement ids, on github.com/mattn/go-sqlite3.
package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/aaamil13/symgraph/internal/graph"
	"github.com/aaamil13/symgraph/internal/symbols"
)

//go:embed schema.sql
var schemaSQL string

// Store wraps a SQLite connection holding the last persisted analysis for
// zero or more projects, keyed by project root path.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at dbPath and applies the schema.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

// SaveAnalysis replaces any previously stored snapshot for projectPath with
// table's current contents, inside a single transaction.
func (s *Store) SaveAnalysis(projectPath string, table *graph.Table) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO projects(path, last_analyzed) VALUES (?, ?)
		ON CONFLICT(path) DO UPDATE SET last_analyzed = excluded.last_analyzed`,
		projectPath, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("store: save project: %w", err)
	}

	for _, q := range []string{
		`DELETE FROM edges WHERE from_id IN (SELECT s.id FROM symbols s JOIN files f ON s.file_key = f.file_key WHERE f.project_path = ?)`,
		`DELETE FROM imports WHERE file_key IN (SELECT file_key FROM files WHERE project_path = ?)`,
		`DELETE FROM symbols WHERE file_key IN (SELECT file_key FROM files WHERE project_path = ?)`,
	} {
		if _, err := tx.Exec(q, projectPath); err != nil {
			return fmt.Errorf("store: clear prior snapshot: %w", err)
		}
	}
	if _, err := tx.Exec(`DELETE FROM files WHERE project_path = ?`, projectPath); err != nil {
		return fmt.Errorf("store: clear prior files: %w", err)
	}

	for _, fileKey := range table.AllFiles() {
		fs, _ := table.File(fileKey)
		if err := saveFile(tx, projectPath, fs); err != nil {
			return err
		}
	}

	for _, sym := range table.AllSymbols() {
		for _, dep := range table.Dependencies(sym.FullyQualifiedID) {
			if _, err := tx.Exec(`INSERT OR IGNORE INTO edges(from_id, to_id) VALUES (?, ?)`,
				sym.FullyQualifiedID, dep); err != nil {
				return fmt.Errorf("store: save edge: %w", err)
			}
		}
	}

	return tx.Commit()
}

func saveFile(tx *sql.Tx, projectPath string, fs *symbols.FileSymbols) error {
	if _, err := tx.Exec(`INSERT INTO files(file_key, project_path, path) VALUES (?, ?, ?)`,
		fs.FileKey, projectPath, fs.FileKey); err != nil {
		return fmt.Errorf("store: save file %s: %w", fs.FileKey, err)
	}

	for _, sym := range fs.AllSymbols() {
		if err := saveSymbol(tx, sym, sym.IsExported); err != nil {
			return err
		}
	}

	for _, imp := range fs.Imports() {
		if _, err := tx.Exec(`INSERT INTO imports(file_key, local_name, from_module, normalized, style, original_name)
			VALUES (?, ?, ?, ?, ?, ?)`,
			fs.FileKey, imp.LocalName, imp.FromModule, imp.Normalized, string(imp.Style), imp.OriginalName); err != nil {
			return fmt.Errorf("store: save import %s: %w", imp.LocalName, err)
		}
	}
	return nil
}

func saveSymbol(tx *sql.Tx, sym *symbols.Symbol, isExported bool) error {
	_, err := tx.Exec(`INSERT INTO symbols(id, file_key, name, kind, type_text, is_exported, documentation, start_line, end_line)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sym.FullyQualifiedID, sym.FileKey, sym.Name, string(sym.Kind), sym.TypeText, isExported,
		sym.Documentation, sym.Location.Start.Line, sym.Location.End.Line)
	if err != nil {
		return fmt.Errorf("store: save symbol %s: %w", sym.FullyQualifiedID, err)
	}
	return nil
}

// LoadAnalysis reconstructs a graph.Table from the snapshot last saved for
// projectPath. A project with no saved snapshot returns an empty table and
// found=false.
func (s *Store) LoadAnalysis(projectPath string) (table *graph.Table, found bool, err error) {
	var exists int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM projects WHERE path = ?`, projectPath).Scan(&exists); err != nil {
		return nil, false, err
	}
	if exists == 0 {
		return graph.New(), false, nil
	}

	fileKeys, err := queryStrings(s.db, `SELECT file_key FROM files WHERE project_path = ?`, projectPath)
	if err != nil {
		return nil, false, err
	}

	table = graph.New()
	for _, fileKey := range fileKeys {
		fs, err := s.loadFile(fileKey)
		if err != nil {
			return nil, false, err
		}
		if err := table.InsertFile(fs); err != nil {
			return nil, false, fmt.Errorf("store: rebuild file %s: %w", fileKey, err)
		}
	}
	return table, true, nil
}

func (s *Store) loadFile(fileKey string) (*symbols.FileSymbols, error) {
	fs := symbols.NewFileSymbols(fileKey)

	rows, err := s.db.Query(`SELECT id, name, kind, type_text, is_exported, documentation, start_line, end_line
		FROM symbols WHERE file_key = ?`, fileKey)
	if err != nil {
		return nil, fmt.Errorf("store: load symbols for %s: %w", fileKey, err)
	}
	defer rows.Close()

	type loadedSymbol struct {
		sym        *symbols.Symbol
		isExported bool
	}
	var loaded []loadedSymbol

	for rows.Next() {
		var id, name, kind, typeText, documentation string
		var isExported bool
		var startLine, endLine int
		if err := rows.Scan(&id, &name, &kind, &typeText, &isExported, &documentation, &startLine, &endLine); err != nil {
			return nil, err
		}
		sym := symbols.NewSymbol(fileKey, name, symbols.Kind(kind))
		sym.TypeText = typeText
		sym.IsExported = isExported
		sym.Documentation = documentation
		sym.Location.Start.Line = startLine
		sym.Location.End.Line = endLine
		loaded = append(loaded, loadedSymbol{sym: sym, isExported: isExported})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, ls := range loaded {
		deps, err := queryStrings(s.db, `SELECT to_id FROM edges WHERE from_id = ?`, ls.sym.FullyQualifiedID)
		if err != nil {
			return nil, err
		}
		for _, dep := range deps {
			ls.sym.AddDependency(dep)
		}
		if ls.isExported {
			fs.AddExport(ls.sym)
		} else {
			fs.AddInternal(ls.sym)
		}
	}

	importRows, err := s.db.Query(`SELECT local_name, from_module, normalized, style, original_name
		FROM imports WHERE file_key = ?`, fileKey)
	if err != nil {
		return nil, fmt.Errorf("store: load imports for %s: %w", fileKey, err)
	}
	defer importRows.Close()

	for importRows.Next() {
		var localName, fromModule, normalized, style, originalName string
		if err := importRows.Scan(&localName, &fromModule, &normalized, &style, &originalName); err != nil {
			return nil, err
		}
		fs.AddImport(&symbols.Import{
			LocalName:    localName,
			FromModule:   fromModule,
			Normalized:   normalized,
			Style:        symbols.ImportStyle(style),
			OriginalName: originalName,
		})
	}
	if err := importRows.Err(); err != nil {
		return nil, err
	}

	return fs, nil
}

func queryStrings(db *sql.DB, query string, args ...interface{}) ([]string, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
