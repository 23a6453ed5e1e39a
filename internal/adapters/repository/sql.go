package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/prospect/internal/domain/model"
)

const athleteColumns = `id, user_id, first_name, last_name, primary_sport, is_public,
	performance_score, physical_score, academic_score, social_score, evaluation_score,
	star_rating, created_at, updated_at,
	date_of_birth, bio, profile_picture_url, hometown, high_school, college,
	graduation_year, positions, height_feet, weight, phone_number, social_media_links`

// likeEscape is the escape character of every LIKE pattern built by listWhere.
const likeEscape = "!"

// SQLStore is a Store backed by sqlite, postgres or mysql. Timestamps are
// kept as unix microseconds so ordering is identical on every backend.
type SQLStore struct {
	db *sql.DB
	d  dialect
}

var _ Store = (*SQLStore)(nil)

// OpenSQL opens the database at dsn, optionally migrating it to the latest
// schema first.
func OpenSQL(ctx context.Context, driver, dsn string, migrateUp bool) (*SQLStore, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	if migrateUp {
		if _, err := Migrate(ctx, driver, dsn, -1); err != nil {
			return nil, err
		}
	}
	db, err := d.open(dsn, false)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return &SQLStore{db: db, d: d}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAthlete(r rowScanner) (model.Athlete, error) {
	var (
		a                model.Athlete
		created, updated int64
		positions, links string
	)
	d := &a.Details
	err := r.Scan(&a.ID, &a.UserID, &a.FirstName, &a.LastName, &a.PrimarySport, &a.IsPublic,
		&a.SubScores.Performance, &a.SubScores.Physical, &a.SubScores.Academic, &a.SubScores.Social, &a.SubScores.Evaluation,
		&a.StarRating, &created, &updated,
		&d.DateOfBirth, &d.Bio, &d.ProfilePictureURL, &d.Hometown, &d.HighSchool, &d.College,
		&d.GraduationYear, &positions, &d.HeightFeet, &d.Weight, &d.PhoneNumber, &links)
	if err != nil {
		return model.Athlete{}, err
	}
	if d.Positions, err = decodeList(positions); err != nil {
		return model.Athlete{}, fmt.Errorf("positions: %w", err)
	}
	if d.SocialMediaLinks, err = decodeList(links); err != nil {
		return model.Athlete{}, fmt.Errorf("social_media_links: %w", err)
	}
	a.CreatedAt = time.UnixMicro(created).UTC()
	a.UpdatedAt = time.UnixMicro(updated).UTC()
	return a, nil
}

// encodeList stores a string list as a JSON array column.
func encodeList(list []string) string {
	if len(list) == 0 {
		return "[]"
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeList(raw string) ([]string, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list, nil
}

// detailArgs returns the Details values in athleteColumns order.
func detailArgs(d model.Details) []any {
	return []any{
		d.DateOfBirth, d.Bio, d.ProfilePictureURL, d.Hometown, d.HighSchool, d.College,
		d.GraduationYear, encodeList(d.Positions), d.HeightFeet, d.Weight, d.PhoneNumber, encodeList(d.SocialMediaLinks),
	}
}

func (s *SQLStore) findOne(ctx context.Context, op, where string, arg any) (model.Athlete, error) {
	defer observe(op, time.Now())
	q := s.d.rebind(`SELECT ` + athleteColumns + ` FROM athletes WHERE ` + where + ` = ?`)
	a, err := scanAthlete(s.db.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Athlete{}, ErrNotFound
	}
	if err != nil {
		return model.Athlete{}, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// FindByID implements Store.
func (s *SQLStore) FindByID(ctx context.Context, id string) (model.Athlete, error) {
	return s.findOne(ctx, "find_by_id", "id", id)
}

// FindByOwner implements Store.
func (s *SQLStore) FindByOwner(ctx context.Context, userID string) (model.Athlete, error) {
	return s.findOne(ctx, "find_by_owner", "user_id", userID)
}

// Create implements Store.
func (s *SQLStore) Create(ctx context.Context, a model.Athlete) error {
	defer observe("create", time.Now())
	q := s.d.rebind(`INSERT INTO athletes (` + athleteColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	args := []any{
		a.ID, a.UserID, a.FirstName, a.LastName, a.PrimarySport, a.IsPublic,
		a.SubScores.Performance, a.SubScores.Physical, a.SubScores.Academic, a.SubScores.Social, a.SubScores.Evaluation,
		a.StarRating, a.CreatedAt.UnixMicro(), a.UpdatedAt.UnixMicro(),
	}
	_, err := s.db.ExecContext(ctx, q, append(args, detailArgs(a.Details)...)...)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	return nil
}

// Save implements Store.
func (s *SQLStore) Save(ctx context.Context, a model.Athlete) error {
	defer observe("save", time.Now())
	q := s.d.rebind(`UPDATE athletes SET
		user_id = ?, first_name = ?, last_name = ?, primary_sport = ?, is_public = ?,
		performance_score = ?, physical_score = ?, academic_score = ?, social_score = ?, evaluation_score = ?,
		star_rating = ?, created_at = ?, updated_at = ?,
		date_of_birth = ?, bio = ?, profile_picture_url = ?, hometown = ?, high_school = ?, college = ?,
		graduation_year = ?, positions = ?, height_feet = ?, weight = ?, phone_number = ?, social_media_links = ?
		WHERE id = ?`)
	args := []any{
		a.UserID, a.FirstName, a.LastName, a.PrimarySport, a.IsPublic,
		a.SubScores.Performance, a.SubScores.Physical, a.SubScores.Academic, a.SubScores.Social, a.SubScores.Evaluation,
		a.StarRating, a.CreatedAt.UnixMicro(), a.UpdatedAt.UnixMicro(),
	}
	args = append(append(args, detailArgs(a.Details)...), a.ID)
	res, err := s.db.ExecContext(ctx, q, args...)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return expectOneRow(res, "save")
}

// Delete implements Store.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	defer observe("delete", time.Now())
	res, err := s.db.ExecContext(ctx, s.d.rebind(`DELETE FROM athletes WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return expectOneRow(res, "delete")
}

func expectOneRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// listWhere builds the shared WHERE clause of List and its count query.
func listWhere(f model.ListFilter) (string, []any) {
	lo, hi := f.Bounds()
	clauses := []string{"star_rating >= ?", "star_rating <= ?"}
	args := []any{lo, hi}
	if f.PublicOnly {
		clauses = append(clauses, "is_public = ?")
		args = append(args, true)
	}
	if f.Sport != "" {
		clauses = append(clauses, like("primary_sport"))
		args = append(args, contains(f.Sport))
	}
	if f.Query != "" {
		clauses = append(clauses, "("+like("first_name")+" OR "+like("last_name")+")")
		args = append(args, contains(f.Query), contains(f.Query))
	}
	if f.Location != "" {
		clauses = append(clauses, "("+like("hometown")+" OR "+like("high_school")+" OR "+like("college")+")")
		p := contains(f.Location)
		args = append(args, p, p, p)
	}
	if f.GraduationYear != 0 {
		clauses = append(clauses, "graduation_year = ?")
		args = append(args, f.GraduationYear)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func like(column string) string {
	return "LOWER(" + column + ") LIKE ? ESCAPE '" + likeEscape + "'"
}

var likeReplacer = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

// contains turns s into a case-folded substring pattern with wildcards escaped.
func contains(s string) string {
	return "%" + likeReplacer.Replace(strings.ToLower(s)) + "%"
}

// List implements Store.
func (s *SQLStore) List(ctx context.Context, f model.ListFilter) ([]model.Athlete, int, error) {
	defer observe("list", time.Now())
	if f.Limit < 1 || f.Offset < 0 {
		return nil, 0, ErrInvalidLimit
	}
	where, args := listWhere(f)

	var total int
	if err := s.db.QueryRowContext(ctx, s.d.rebind(`SELECT COUNT(*) FROM athletes`+where), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("list count: %w", err)
	}

	q := s.d.rebind(`SELECT ` + athleteColumns + ` FROM athletes` + where +
		` ORDER BY star_rating DESC, created_at DESC, id ASC LIMIT ? OFFSET ?`)
	rows, err := s.db.QueryContext(ctx, q, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.Athlete, 0, f.Limit)
	for rows.Next() {
		a, err := scanAthlete(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list: %w", err)
	}
	return out, total, nil
}

// IDs implements Store.
func (s *SQLStore) IDs(ctx context.Context, after string, limit int) ([]string, error) {
	defer observe("ids", time.Now())
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	rows, err := s.db.QueryContext(ctx, s.d.rebind(`SELECT id FROM athletes WHERE id > ? ORDER BY id LIMIT ?`), after, limit)
	if err != nil {
		return nil, fmt.Errorf("ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make([]string, 0, limit)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ids scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count implements Store.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM athletes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Close releases the connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
