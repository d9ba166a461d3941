// Package sqlite provides a SQLite-backed storage.Store driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lenshub/lenshub/pkg/market"
	"github.com/lenshub/lenshub/pkg/storage"
)

// schema is applied on open. Statements are append-only: new columns and
// tables get added here, existing ones never change shape.
const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id          TEXT PRIMARY KEY,
	username    TEXT NOT NULL UNIQUE,
	email       TEXT NOT NULL DEFAULT '',
	phone       TEXT NOT NULL DEFAULT '',
	avatar_url  TEXT NOT NULL DEFAULT '',
	role        TEXT NOT NULL DEFAULT 'user',
	bio         TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS components (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	category       TEXT NOT NULL DEFAULT '',
	version        TEXT NOT NULL DEFAULT '',
	author_id      TEXT NOT NULL REFERENCES profiles(id),
	file_url       TEXT NOT NULL DEFAULT '',
	image_url      TEXT NOT NULL DEFAULT '',
	download_count INTEGER NOT NULL DEFAULT 0,
	status         TEXT NOT NULL DEFAULT 'pending',
	created_at     TIMESTAMP NOT NULL,
	updated_at     TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS comments (
	id           TEXT PRIMARY KEY,
	component_id TEXT NOT NULL REFERENCES components(id) ON DELETE CASCADE,
	user_id      TEXT NOT NULL REFERENCES profiles(id),
	content      TEXT NOT NULL,
	rating       INTEGER NOT NULL DEFAULT 0,
	created_at   TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS favorites (
	id           TEXT PRIMARY KEY,
	component_id TEXT NOT NULL REFERENCES components(id) ON DELETE CASCADE,
	user_id      TEXT NOT NULL REFERENCES profiles(id),
	created_at   TIMESTAMP NOT NULL,
	UNIQUE (component_id, user_id)
);

CREATE TABLE IF NOT EXISTS announcements (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	priority   TEXT NOT NULL DEFAULT 'normal',
	is_active  INTEGER NOT NULL DEFAULT 1,
	created_by TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_components_status   ON components(status);
CREATE INDEX IF NOT EXISTS idx_components_category ON components(category);
CREATE INDEX IF NOT EXISTS idx_components_author   ON components(author_id);
CREATE INDEX IF NOT EXISTS idx_comments_component  ON comments(component_id);
CREATE INDEX IF NOT EXISTS idx_favorites_user      ON favorites(user_id);
`

// Store implements storage.Store on SQLite via database/sql.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at dbPath and applies the schema.
// dbPath can be ":memory:" for an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite-specific pragmas
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Profiles

const profileCols = "id, username, email, phone, avatar_url, role, bio, created_at"

func scanProfile(row interface{ Scan(...any) error }) (*market.Profile, error) {
	var p market.Profile
	err := row.Scan(&p.ID, &p.Username, &p.Email, &p.Phone, &p.AvatarURL, &p.Role, &p.Bio, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProfile(ctx context.Context, p *market.Profile) error {
	if p == nil {
		return errors.New("cannot store nil profile")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (`+profileCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Username, p.Email, p.Phone, p.AvatarURL, p.Role, p.Bio, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, id string) (*market.Profile, error) {
	p, err := scanProfile(s.db.QueryRowContext(ctx,
		`SELECT `+profileCols+` FROM profiles WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{Kind: "profile", ID: id}
	}
	return p, err
}

func (s *Store) GetProfileByUsername(ctx context.Context, username string) (*market.Profile, error) {
	p, err := scanProfile(s.db.QueryRowContext(ctx,
		`SELECT `+profileCols+` FROM profiles WHERE username = ?`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{Kind: "profile", ID: username}
	}
	return p, err
}

func (s *Store) UpdateProfile(ctx context.Context, id string, upd storage.ProfileUpdate) (*market.Profile, error) {
	sets, args := []string{}, []any{}
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if upd.Username != nil {
		add("username", *upd.Username)
	}
	if upd.Email != nil {
		add("email", *upd.Email)
	}
	if upd.Phone != nil {
		add("phone", *upd.Phone)
	}
	if upd.AvatarURL != nil {
		add("avatar_url", *upd.AvatarURL)
	}
	if upd.Bio != nil {
		add("bio", *upd.Bio)
	}
	if upd.Role != nil {
		add("role", string(*upd.Role))
	}

	if len(sets) > 0 {
		args = append(args, id)
		res, err := s.db.ExecContext(ctx,
			`UPDATE profiles SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return nil, fmt.Errorf("updating profile: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, storage.NotFoundError{Kind: "profile", ID: id}
		}
	}

	return s.GetProfile(ctx, id)
}

func (s *Store) ListProfiles(ctx context.Context) ([]market.Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+profileCols+` FROM profiles ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	result := make([]market.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

// Components

const componentCols = "id, name, description, category, version, author_id, file_url, image_url, download_count, status, created_at, updated_at"

func scanComponent(row interface{ Scan(...any) error }) (*market.Component, error) {
	var c market.Component
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Category, &c.Version, &c.AuthorID,
		&c.FileURL, &c.ImageURL, &c.DownloadCount, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListComponents(ctx context.Context, filter storage.ComponentFilter) ([]market.ComponentWithAuthor, error) {
	filter = filter.Normalize()

	where, args := []string{}, []any{}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Category != "" && filter.Category != "all" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.AuthorID != "" {
		where = append(where, "author_id = ?")
		args = append(args, filter.AuthorID)
	}
	if filter.Search != "" {
		where = append(where, "(name LIKE ? OR description LIKE ?)")
		needle := "%" + filter.Search + "%"
		args = append(args, needle, needle)
	}

	query := `SELECT ` + componentCols + ` FROM components`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing components: %w", err)
	}
	defer rows.Close()

	result := make([]market.ComponentWithAuthor, 0)
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, market.ComponentWithAuthor{Component: *c})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		author, err := s.GetProfile(ctx, result[i].AuthorID)
		if err == nil {
			result[i].Author = author
		}
	}

	return result, nil
}

func (s *Store) GetComponent(ctx context.Context, id string) (*market.ComponentWithAuthor, error) {
	c, err := scanComponent(s.db.QueryRowContext(ctx,
		`SELECT `+componentCols+` FROM components WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{Kind: "component", ID: id}
	}
	if err != nil {
		return nil, err
	}

	cw := &market.ComponentWithAuthor{Component: *c}
	if author, err := s.GetProfile(ctx, c.AuthorID); err == nil {
		cw.Author = author
	}
	return cw, nil
}

func (s *Store) CreateComponent(ctx context.Context, c *market.Component) error {
	if c == nil {
		return errors.New("cannot store nil component")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO components (`+componentCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.Category, c.Version, c.AuthorID,
		c.FileURL, c.ImageURL, c.DownloadCount, c.Status, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting component: %w", err)
	}
	return nil
}

func (s *Store) UpdateComponent(ctx context.Context, id string, upd storage.ComponentUpdate) (*market.Component, error) {
	sets, args := []string{}, []any{}
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Category != nil {
		add("category", *upd.Category)
	}
	if upd.Version != nil {
		add("version", *upd.Version)
	}
	if upd.FileURL != nil {
		add("file_url", *upd.FileURL)
	}
	if upd.ImageURL != nil {
		add("image_url", *upd.ImageURL)
	}
	if upd.Status != nil {
		add("status", string(*upd.Status))
	}

	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE components SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("updating component: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, storage.NotFoundError{Kind: "component", ID: id}
	}

	c, err := scanComponent(s.db.QueryRowContext(ctx,
		`SELECT `+componentCols+` FROM components WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) DeleteComponent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM components WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting component: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.NotFoundError{Kind: "component", ID: id}
	}
	return nil
}

// IncrementDownloadCount bumps the counter in a single UPDATE so concurrent
// downloads never lose increments.
func (s *Store) IncrementDownloadCount(ctx context.Context, componentID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE components SET download_count = download_count + 1 WHERE id = ?`, componentID)
	if err != nil {
		return fmt.Errorf("incrementing download count: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.NotFoundError{Kind: "component", ID: componentID}
	}
	return nil
}

func (s *Store) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM components WHERE category != '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) ComponentStats(ctx context.Context, componentID string) (*market.ComponentStats, error) {
	stats := &market.ComponentStats{}

	err := s.db.QueryRowContext(ctx,
		`SELECT download_count FROM components WHERE id = ?`, componentID).
		Scan(&stats.TotalDownloads)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.NotFoundError{Kind: "component", ID: componentID}
		}
		return nil, fmt.Errorf("loading component stats: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COALESCE(AVG(CASE WHEN rating > 0 THEN rating END), 0)
		   FROM comments WHERE component_id = ?`, componentID).
		Scan(&stats.CommentCount, &stats.AverageRating)
	if err != nil {
		return nil, fmt.Errorf("aggregating comments: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM favorites WHERE component_id = ?`, componentID).
		Scan(&stats.FavoriteCount)
	if err != nil {
		return nil, fmt.Errorf("counting favorites: %w", err)
	}

	return stats, nil
}

// Comments

func (s *Store) ListComments(ctx context.Context, componentID string) ([]market.CommentWithUser, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, component_id, user_id, content, rating, created_at
		   FROM comments WHERE component_id = ? ORDER BY created_at DESC`, componentID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	result := make([]market.CommentWithUser, 0)
	for rows.Next() {
		var c market.Comment
		if err := rows.Scan(&c.ID, &c.ComponentID, &c.UserID, &c.Content, &c.Rating, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, market.CommentWithUser{Comment: c})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		user, err := s.GetProfile(ctx, result[i].UserID)
		if err == nil {
			result[i].User = user
		}
	}

	return result, nil
}

func (s *Store) GetComment(ctx context.Context, id string) (*market.Comment, error) {
	var c market.Comment
	err := s.db.QueryRowContext(ctx,
		`SELECT id, component_id, user_id, content, rating, created_at
		   FROM comments WHERE id = ?`, id).
		Scan(&c.ID, &c.ComponentID, &c.UserID, &c.Content, &c.Rating, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.NotFoundError{Kind: "comment", ID: id}
		}
		return nil, fmt.Errorf("loading comment: %w", err)
	}
	return &c, nil
}

func (s *Store) CreateComment(ctx context.Context, c *market.Comment) error {
	if c == nil {
		return errors.New("cannot store nil comment")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (id, component_id, user_id, content, rating, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.ComponentID, c.UserID, c.Content, c.Rating, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}
	return nil
}

func (s *Store) UpdateComment(ctx context.Context, id string, upd storage.CommentUpdate) (*market.Comment, error) {
	sets, args := []string{}, []any{}
	if upd.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *upd.Content)
	}
	if upd.Rating != nil {
		sets = append(sets, "rating = ?")
		args = append(args, *upd.Rating)
	}

	if len(sets) > 0 {
		args = append(args, id)
		res, err := s.db.ExecContext(ctx,
			`UPDATE comments SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return nil, fmt.Errorf("updating comment: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, storage.NotFoundError{Kind: "comment", ID: id}
		}
	}

	var c market.Comment
	err := s.db.QueryRowContext(ctx,
		`SELECT id, component_id, user_id, content, rating, created_at FROM comments WHERE id = ?`, id).
		Scan(&c.ID, &c.ComponentID, &c.UserID, &c.Content, &c.Rating, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{Kind: "comment", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.NotFoundError{Kind: "comment", ID: id}
	}
	return nil
}

// Favorites

func (s *Store) ListFavorites(ctx context.Context, userID string) ([]market.Favorite, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, component_id, user_id, created_at
		   FROM favorites WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	defer rows.Close()

	result := make([]market.Favorite, 0)
	for rows.Next() {
		var f market.Favorite
		if err := rows.Scan(&f.ID, &f.ComponentID, &f.UserID, &f.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

func (s *Store) AddFavorite(ctx context.Context, f *market.Favorite) error {
	if f == nil {
		return errors.New("cannot store nil favorite")
	}

	// INSERT OR IGNORE keeps the operation idempotent under the
	// (component_id, user_id) unique constraint.
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO favorites (id, component_id, user_id, created_at) VALUES (?, ?, ?, ?)`,
		f.ID, f.ComponentID, f.UserID, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting favorite: %w", err)
	}
	return nil
}

func (s *Store) RemoveFavorite(ctx context.Context, userID, componentID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND component_id = ?`, userID, componentID)
	if err != nil {
		return fmt.Errorf("deleting favorite: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.NotFoundError{Kind: "favorite", ID: componentID}
	}
	return nil
}

func (s *Store) IsFavorite(ctx context.Context, userID, componentID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM favorites WHERE user_id = ? AND component_id = ?`, userID, componentID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Announcements

func (s *Store) ListAnnouncements(ctx context.Context, activeOnly bool) ([]market.Announcement, error) {
	query := `SELECT id, title, content, priority, is_active, created_by, created_at, updated_at FROM announcements`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing announcements: %w", err)
	}
	defer rows.Close()

	result := make([]market.Announcement, 0)
	for rows.Next() {
		var a market.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.Priority, &a.IsActive, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (s *Store) CreateAnnouncement(ctx context.Context, a *market.Announcement) error {
	if a == nil {
		return errors.New("cannot store nil announcement")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO announcements (id, title, content, priority, is_active, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.Content, a.Priority, a.IsActive, a.CreatedBy, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting announcement: %w", err)
	}
	return nil
}

func (s *Store) UpdateAnnouncement(ctx context.Context, id string, upd storage.AnnouncementUpdate) (*market.Announcement, error) {
	sets, args := []string{}, []any{}
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Content != nil {
		add("content", *upd.Content)
	}
	if upd.Priority != nil {
		add("priority", string(*upd.Priority))
	}
	if upd.IsActive != nil {
		add("is_active", *upd.IsActive)
	}

	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE announcements SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("updating announcement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, storage.NotFoundError{Kind: "announcement", ID: id}
	}

	var a market.Announcement
	err = s.db.QueryRowContext(ctx,
		`SELECT id, title, content, priority, is_active, created_by, created_at, updated_at FROM announcements WHERE id = ?`, id).
		Scan(&a.ID, &a.Title, &a.Content, &a.Priority, &a.IsActive, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) DeleteAnnouncement(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting announcement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.NotFoundError{Kind: "announcement", ID: id}
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
