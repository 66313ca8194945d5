package db

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	*sql.DB
}

// Execer is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Query functions in this package take an Execer so callers decide
// whether they run standalone or inside a transaction.
type Execer interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Prepare(query string) (*sql.Stmt, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

func Make(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=1")
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`
		pragma journal_mode = WAL;
		pragma synchronous = normal;
		pragma temp_store = memory;
		pragma busy_timeout = 5000;

		create table if not exists packages (
			id integer primary key autoincrement,
			name text not null unique,
			created text not null default (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		);
		create table if not exists package_owners (
			id integer primary key autoincrement,
			package_id integer not null,
			owner_kind integer not null default 0,
			account text not null,
			unique(package_id, owner_kind, account),
			foreign key (package_id) references packages(id) on delete cascade
		);
		create table if not exists package_downloads (
			package_id integer primary key,
			downloads integer not null default 0,
			foreign key (package_id) references packages(id) on delete cascade
		);
		create table if not exists versions (
			id integer primary key autoincrement,
			package_id integer not null,
			num text not null,
			created text not null default (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			unique(package_id, num),
			foreign key (package_id) references packages(id) on delete cascade
		);
		create table if not exists dependencies (
			id integer primary key autoincrement,
			version_id integer not null,
			package_id integer not null,
			req text not null default '*',
			foreign key (version_id) references versions(id) on delete cascade,
			foreign key (package_id) references packages(id) on delete cascade
		);

		create table if not exists account_emails (
			id integer primary key autoincrement,
			account text not null,
			email text not null,
			is_primary integer not null default 0,
			unique(account, email)
		);

		-- retirement outbox; rows deliberately carry the package name
		-- rather than a foreign key so they outlive the deleted row
		create table if not exists retirement_jobs (
			id integer primary key autoincrement,
			kind text not null,
			payload text not null,
			status integer not null default 0,
			attempts integer not null default 0,
			created text not null default (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &DB{db}, nil
}

type filter struct {
	key string
	arg any
	cmp string
}

func newFilter(key, cmp string, arg any) filter {
	return filter{
		key: key,
		arg: arg,
		cmp: cmp,
	}
}

func FilterEq(key string, arg any) filter  { return newFilter(key, "=", arg) }
func FilterGte(key string, arg any) filter { return newFilter(key, ">=", arg) }
func FilterLte(key string, arg any) filter { return newFilter(key, "<=", arg) }
func FilterIn(key string, arg any) filter  { return newFilter(key, "in", arg) }

func (f filter) Condition() string {
	rv := reflect.ValueOf(f.arg)
	kind := rv.Kind()

	// `FilterIn(k, [1, 2, 3])` compiles down to `k in (?, ?, ?)`
	if (kind == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8) || kind == reflect.Array {
		if rv.Len() == 0 {
			// always false
			return "1 = 0"
		}

		placeholders := make([]string, rv.Len())
		for i := range placeholders {
			placeholders[i] = "?"
		}

		return fmt.Sprintf("%s %s (%s)", f.key, f.cmp, strings.Join(placeholders, ", "))
	}

	return fmt.Sprintf("%s %s ?", f.key, f.cmp)
}

func (f filter) Arg() []any {
	rv := reflect.ValueOf(f.arg)
	kind := rv.Kind()
	if (kind == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8) || kind == reflect.Array {
		if rv.Len() == 0 {
			return nil
		}

		out := make([]any, rv.Len())
		for i := range rv.Len() {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}

	return []any{f.arg}
}

func whereClause(filters []filter) (string, []any) {
	var conditions []string
	var args []any
	for _, f := range filters {
		conditions = append(conditions, f.Condition())
		args = append(args, f.Arg()...)
	}

	if conditions == nil {
		return "", nil
	}
	return " where " + strings.Join(conditions, " and "), args
}
