package db

import (
	"fmt"

	"stowage.sh/core/registry/models"
)

func AddOwner(e Execer, packageID int64, owner models.Owner) error {
	_, err := e.Exec(
		`insert into package_owners (package_id, owner_kind, account) values (?, ?, ?)`,
		packageID,
		owner.Kind,
		owner.Account,
	)
	if err != nil {
		return fmt.Errorf("failed to insert owner: %w", err)
	}
	return nil
}

func GetOwners(e Execer, packageID int64) ([]models.Owner, error) {
	rows, err := e.Query(
		`select id, owner_kind, account from package_owners where package_id = ? order by id`,
		packageID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute owner query: %w", err)
	}
	defer rows.Close()

	var owners []models.Owner
	for rows.Next() {
		var owner models.Owner
		if err := rows.Scan(&owner.ID, &owner.Kind, &owner.Account); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, owner)
	}

	return owners, rows.Err()
}

func DeleteOwner(e Execer, filters ...filter) error {
	where, args := whereClause(filters)
	_, err := e.Exec("delete from package_owners"+where, args...)
	return err
}
