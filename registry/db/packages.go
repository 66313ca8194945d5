package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stowage.sh/core/registry/models"
)

func AddPackage(e Execer, pkg models.Package) (int64, error) {
	res, err := e.Exec(
		`insert into packages (name, created) values (?, ?)`,
		pkg.Name,
		pkg.Created.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert package: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	// every package carries a downloads aggregate from birth
	_, err = e.Exec(`insert into package_downloads (package_id, downloads) values (?, 0)`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert downloads row: %w", err)
	}

	return id, nil
}

func GetPackages(e Execer, filters ...filter) ([]models.Package, error) {
	where, args := whereClause(filters)

	query := fmt.Sprintf(
		`select id, name, created from packages%s order by created desc`,
		where,
	)

	rows, err := e.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute package query: %w", err)
	}
	defer rows.Close()

	var packages []models.Package
	for rows.Next() {
		var pkg models.Package
		var created string
		if err := rows.Scan(&pkg.ID, &pkg.Name, &created); err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			pkg.Created = t
		}
		packages = append(packages, pkg)
	}

	return packages, rows.Err()
}

// GetPackage returns the single package matching the filters, or
// sql.ErrNoRows when absent.
func GetPackage(e Execer, filters ...filter) (*models.Package, error) {
	packages, err := GetPackages(e, filters...)
	if err != nil {
		return nil, err
	}
	if len(packages) == 0 {
		return nil, sql.ErrNoRows
	}
	return &packages[0], nil
}

// RemovePackage deletes the package row; owner links, versions,
// dependency edges and the downloads aggregate go with it by cascade.
// The returned count is 0 when a concurrent retirement got there first.
func RemovePackage(ctx context.Context, e Execer, packageID int64) (int64, error) {
	res, err := e.ExecContext(ctx, `delete from packages where id = ?`, packageID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete package: %w", err)
	}
	return res.RowsAffected()
}
