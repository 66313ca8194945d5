package db

import (
	"fmt"
	"time"

	"stowage.sh/core/registry/models"
)

func AddVersion(e Execer, version models.Version) (int64, error) {
	res, err := e.Exec(
		`insert into versions (package_id, num, created) values (?, ?, ?)`,
		version.PackageID,
		version.Num,
		version.Created.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert version: %w", err)
	}
	return res.LastInsertId()
}

func AddDependency(e Execer, dep models.Dependency) error {
	req := dep.Req
	if req == "" {
		req = "*"
	}
	_, err := e.Exec(
		`insert into dependencies (version_id, package_id, req) values (?, ?, ?)`,
		dep.VersionID,
		dep.PackageID,
		req,
	)
	if err != nil {
		return fmt.Errorf("failed to insert dependency: %w", err)
	}
	return nil
}

// HasReverseDependency reports whether any version of any other
// package declares a dependency edge onto the given package.
func HasReverseDependency(e Execer, packageID int64) (bool, error) {
	var exists bool
	err := e.QueryRow(
		`select exists (select 1 from dependencies where package_id = ?)`,
		packageID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check reverse dependencies: %w", err)
	}
	return exists, nil
}
