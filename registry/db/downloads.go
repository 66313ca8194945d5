package db

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
)

// GetDownloads reads the aggregate downloads counter for a package. A
// missing row counts as zero; a negative value (which should never be
// written, but the column is a signed integer) saturates to MaxUint64
// the same way an overflowing read would.
func GetDownloads(e Execer, packageID int64) (uint64, error) {
	var downloads int64
	err := e.QueryRow(
		`select downloads from package_downloads where package_id = ?`,
		packageID,
	).Scan(&downloads)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read downloads: %w", err)
	}

	if downloads < 0 {
		return math.MaxUint64, nil
	}
	return uint64(downloads), nil
}

func SetDownloads(e Execer, packageID int64, downloads int64) error {
	_, err := e.Exec(
		`insert into package_downloads (package_id, downloads) values (?, ?)
		 on conflict (package_id) do update set downloads = excluded.downloads`,
		packageID,
		downloads,
	)
	return err
}
