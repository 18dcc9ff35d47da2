package bookmarks

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // Pure Go SQLite driver, registers as "sqlite".
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// walJournalSizeLimit caps the WAL journal at 64 MiB.
const walJournalSizeLimit = 67108864

// SQLiteStore is the local bookmark mirror: a single-table tree store with
// WAL mode and embedded goose migrations. It implements Store with the same
// observable semantics as the live browser store so the reconciliation
// engine cannot tell them apart.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger

	stmts statements
}

type statements struct {
	searchByTitle, children, insert, get, remove, childCount *sql.Stmt
}

// SQL query constants, grouped for readability.
const (
	sqlNodeColumns = `id, parent_id, title, kind, url`

	sqlSearchByTitle = `SELECT ` + sqlNodeColumns +
		` FROM nodes WHERE title = ? ORDER BY created_at, id`

	sqlChildren = `SELECT ` + sqlNodeColumns +
		` FROM nodes WHERE parent_id = ? ORDER BY created_at, id`

	sqlInsertNode = `INSERT INTO nodes (id, parent_id, title, kind, url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	sqlGetNode = `SELECT ` + sqlNodeColumns + ` FROM nodes WHERE id = ?`

	sqlRemoveNode = `DELETE FROM nodes WHERE id = ?`

	sqlChildCount = `SELECT COUNT(*) FROM nodes WHERE parent_id = ?`

	sqlRemoveSubtree = `WITH RECURSIVE subtree(id) AS (
			SELECT id FROM nodes WHERE id = ?
			UNION ALL
			SELECT n.id FROM nodes n JOIN subtree s ON n.parent_id = s.id
		)
		DELETE FROM nodes WHERE id IN (SELECT id FROM subtree)`
)

// NewSQLiteStore opens the database at dbPath, applies migrations, and
// prepares all repeated statements. Use ":memory:" for tests.
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	logger.Info("opening bookmark database", "path", dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := setPragmas(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}

	if err := runMigrations(context.Background(), db, logger); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db, logger: logger}

	if err := s.prepareStatements(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

// setPragmas configures SQLite for WAL mode and safety.
func setPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = FULL",
		"PRAGMA foreign_keys = ON",
		fmt.Sprintf("PRAGMA journal_size_limit = %d", walJournalSizeLimit),
	}

	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("set pragma %q: %w", p, err)
		}
	}

	return nil
}

// runMigrations applies all pending schema migrations using the goose v3
// Provider API (no global state, context-aware).
func runMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	subFS, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("bookmarks: creating migration sub-filesystem: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, subFS)
	if err != nil {
		return fmt.Errorf("bookmarks: creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("bookmarks: running migrations: %w", err)
	}

	for _, r := range results {
		logger.Info("applied migration",
			slog.String("source", r.Source.Path),
			slog.Int64("duration_ms", r.Duration.Milliseconds()),
		)
	}

	return nil
}

// stmtDef maps a SQL string to the prepared statement pointer it populates.
type stmtDef struct {
	dest **sql.Stmt
	sql  string
	name string
}

func (s *SQLiteStore) prepareStatements(ctx context.Context) error {
	defs := []stmtDef{
		{&s.stmts.searchByTitle, sqlSearchByTitle, "searchByTitle"},
		{&s.stmts.children, sqlChildren, "children"},
		{&s.stmts.insert, sqlInsertNode, "insertNode"},
		{&s.stmts.get, sqlGetNode, "getNode"},
		{&s.stmts.remove, sqlRemoveNode, "removeNode"},
		{&s.stmts.childCount, sqlChildCount, "childCount"},
	}

	for i := range defs {
		stmt, err := s.db.PrepareContext(ctx, defs[i].sql)
		if err != nil {
			return fmt.Errorf("prepare %s: %w", defs[i].name, err)
		}

		*defs[i].dest = stmt
	}

	return nil
}

// scanNode scans a full node row into a Node struct.
func scanNode(row interface{ Scan(...any) error }) (*Node, error) {
	n := &Node{}

	var kind string
	if err := row.Scan(&n.ID, &n.ParentID, &n.Title, &kind, &n.URL); err != nil {
		return nil, err
	}

	n.Kind = Kind(kind)

	return n, nil
}

// scanNodeRows iterates over sql.Rows and collects Nodes.
func scanNodeRows(rows *sql.Rows) ([]*Node, error) {
	var nodes []*Node

	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node row: %w", err)
		}

		nodes = append(nodes, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate node rows: %w", err)
	}

	return nodes, nil
}

// SearchByTitle returns every node with an exactly matching title, anywhere
// in the tree, oldest first.
func (s *SQLiteStore) SearchByTitle(ctx context.Context, title string) ([]*Node, error) {
	s.logger.Debug("searching nodes by title", "title", title)

	rows, err := s.stmts.searchByTitle.QueryContext(ctx, title)
	if err != nil {
		return nil, storeErr("search", "", err)
	}
	defer rows.Close()

	nodes, err := scanNodeRows(rows)
	if err != nil {
		return nil, storeErr("search", "", err)
	}

	return nodes, nil
}

// Children lists the direct children of a folder, oldest first.
func (s *SQLiteStore) Children(ctx context.Context, folderID string) ([]*Node, error) {
	s.logger.Debug("listing children", "folder_id", folderID)

	rows, err := s.stmts.children.QueryContext(ctx, folderID)
	if err != nil {
		return nil, storeErr("children", folderID, err)
	}
	defer rows.Close()

	nodes, err := scanNodeRows(rows)
	if err != nil {
		return nil, storeErr("children", folderID, err)
	}

	return nodes, nil
}

// CreateFolder creates a new folder under parentID and returns it.
func (s *SQLiteStore) CreateFolder(ctx context.Context, parentID, title string) (*Node, error) {
	return s.create(ctx, parentID, title, "", KindFolder)
}

// CreateBookmark creates a new leaf bookmark under parentID and returns it.
func (s *SQLiteStore) CreateBookmark(ctx context.Context, parentID, title, url string) (*Node, error) {
	return s.create(ctx, parentID, title, url, KindLeaf)
}

func (s *SQLiteStore) create(ctx context.Context, parentID, title, url string, kind Kind) (*Node, error) {
	s.logger.Debug("creating node",
		"parent_id", parentID, "title", title, "kind", string(kind))

	parent, err := s.Get(ctx, parentID)
	if err != nil {
		return nil, storeErr("create", parentID, err)
	}

	if !parent.IsFolder() {
		return nil, storeErr("create", parentID, fmt.Errorf("parent is not a folder"))
	}

	n := &Node{
		ID:       uuid.NewString(),
		ParentID: parentID,
		Title:    title,
		Kind:     kind,
		URL:      url,
	}

	_, err = s.stmts.insert.ExecContext(ctx,
		n.ID, n.ParentID, n.Title, string(n.Kind), n.URL, time.Now().UnixNano())
	if err != nil {
		return nil, storeErr("create", n.ID, err)
	}

	return n, nil
}

// Remove deletes a single node by id. Folders must be empty.
func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	s.logger.Debug("removing node", "id", id)

	n, err := s.Get(ctx, id)
	if err != nil {
		return storeErr("remove", id, err)
	}

	if n.IsFolder() {
		var count int
		if err := s.stmts.childCount.QueryRowContext(ctx, id).Scan(&count); err != nil {
			return storeErr("remove", id, err)
		}

		if count > 0 {
			return storeErr("remove", id, ErrNotEmpty)
		}
	}

	if _, err := s.stmts.remove.ExecContext(ctx, id); err != nil {
		return storeErr("remove", id, err)
	}

	return nil
}

// RemoveTree deletes a node and every descendant in one statement.
func (s *SQLiteStore) RemoveTree(ctx context.Context, id string) error {
	s.logger.Debug("removing subtree", "id", id)

	result, err := s.db.ExecContext(ctx, sqlRemoveSubtree, id)
	if err != nil {
		return storeErr("remove_tree", id, err)
	}

	affected, rowsErr := result.RowsAffected()
	if rowsErr != nil {
		s.logger.Warn("could not read rows affected", "error", rowsErr)
	}

	if affected == 0 {
		return storeErr("remove_tree", id, ErrNotFound)
	}

	s.logger.Debug("subtree removed", "id", id, "nodes", affected)

	return nil
}

// Get returns a node by id, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Node, error) {
	n, err := scanNode(s.stmts.get.QueryRowContext(ctx, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, storeErr("get", id, err)
	}

	return n, nil
}

// Close closes all prepared statements and the database connection.
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing bookmark database")

	stmts := []*sql.Stmt{
		s.stmts.searchByTitle, s.stmts.children, s.stmts.insert,
		s.stmts.get, s.stmts.remove, s.stmts.childCount,
	}

	for _, stmt := range stmts {
		if stmt != nil {
			if err := stmt.Close(); err != nil {
				s.logger.Error("error closing statement", "error", err)
			}
		}
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	return nil
}

// Compile-time interface check.
var _ Store = (*SQLiteStore)(nil)
