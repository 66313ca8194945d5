package db

import (
	"database/sql"
	"errors"
	"fmt"
)

func AddEmail(e Execer, account, email string, primary bool) error {
	_, err := e.Exec(
		`insert into account_emails (account, email, is_primary) values (?, ?, ?)`,
		account,
		email,
		primary,
	)
	if err != nil {
		return fmt.Errorf("failed to insert email: %w", err)
	}
	return nil
}

// GetPrimaryEmail returns the account's primary address, or "" when
// the account has none on file.
func GetPrimaryEmail(e Execer, account string) (string, error) {
	var email string
	err := e.QueryRow(
		`select email from account_emails where account = ? and is_primary = 1 limit 1`,
		account,
	).Scan(&email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read email: %w", err)
	}
	return email, nil
}
