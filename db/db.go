package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"donaplus/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrNotFound      = errors.New("row not found")
	ErrConflict      = errors.New("row already exists")
	ErrUnknownColumn = errors.New("unknown column")
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	db.Mapper = models.Mapper
	return &Storage{db: db}
}

// Open открывает пул соединений без проверки сети, проверка через Ping
func Open(dsn string) (*Storage, error) {
	conn, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	return NewStorage(conn), nil
}

// DB отдает пул для миграций
func (s *Storage) DB() *sqlx.DB {
	return s.db
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// where накапливает условия с плейсхолдерами '?', Rebind приводит их к $n
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, args ...any) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

// eq добавляет равенство только для заданного значения
func (w *where) eq(col, value string) {
	if value == "" {
		return
	}
	w.add(col+" = ?", value)
}

func (w *where) boolean(col string, f models.BoolFilter) {
	switch f {
	case models.OnlyTrue:
		w.add(col + " = TRUE")
	case models.OnlyFalse:
		w.add(col + " = FALSE")
	}
}

// search регистронезависимый поиск подстроки по нескольким колонкам через OR
func (w *where) search(q string, cols ...string) {
	q = strings.TrimSpace(q)
	if q == "" || len(cols) == 0 {
		return
	}
	pattern := "%" + escapeLike(q) + "%"
	parts := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		parts[i] = c + " ILIKE ?"
		args[i] = pattern
	}
	w.add("("+strings.Join(parts, " OR ")+")", args...)
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func pageClause(p models.Page) string {
	out := ""
	if p.Limit > 0 {
		out += fmt.Sprintf(" LIMIT %d", p.Limit)
	}
	if p.Offset > 0 {
		out += fmt.Sprintf(" OFFSET %d", p.Offset)
	}
	return out
}

// selectRows фильтр по id неверного формата ничего не находит
func (s *Storage) selectRows(ctx context.Context, dest any, base string, w *where, orderBy string, p models.Page) error {
	query := base + w.String() + " ORDER BY " + orderBy + pageClause(p)
	err := s.db.SelectContext(ctx, dest, s.db.Rebind(query), w.args...)
	if isInvalidText(err) {
		return nil
	}
	return err
}

func (s *Storage) count(ctx context.Context, base string, w *where) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.db.Rebind(base+w.String()), w.args...)
	if isInvalidText(err) {
		return 0, nil
	}
	return n, err
}

func (s *Storage) getRow(ctx context.Context, dest any, base, idCol, id string) error {
	err := s.db.GetContext(ctx, dest, s.db.Rebind(base+" WHERE "+idCol+" = ?"), id)
	return notFound(err)
}

// update пишет только переданные колонки, остальные не трогает (last write wins)
func (s *Storage) update(ctx context.Context, table, id string, fields models.Fields) error {
	allowed := updatable[table]
	cols := fields.Columns()
	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)
	for _, col := range cols {
		if !allowed[col] {
			return fmt.Errorf("%w: %s", ErrUnknownColumn, col)
		}
		sets = append(sets, col+" = ?")
		args = append(args, fields[col])
	}
	if !validUUID(id) {
		return ErrNotFound
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", "))
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Storage) deleteRow(ctx context.Context, table, id string) error {
	if !validUUID(id) {
		return ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM "+table+" WHERE id = ?"), id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// колонки, которые разрешено менять через Update*
var updatable = map[string]map[string]bool{
	"profiles":   profileColumns,
	"centers":    centerColumns,
	"donations":  donationColumns,
	"deliveries": deliveryColumns,
	"messages":   messageColumns,
}

// Updatable проверяет колонку по списку разрешенных для таблицы
func Updatable(table, column string) bool {
	return updatable[table][column]
}

func columnSet(cols ...string) map[string]bool {
	m := make(map[string]bool, len(cols))
	for _, c := range cols {
		m[c] = true
	}
	return m
}

// isUniqueViolation код 23505 в postgres
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// isInvalidText код 22P02: значение не приводится к типу колонки, например uuid
func isInvalidText(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22P02"
}

// notFound строки нет или id не может существовать
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) || isInvalidText(err) {
		return ErrNotFound
	}
	return err
}

func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
