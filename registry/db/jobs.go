package db

import (
	"fmt"
	"time"

	"stowage.sh/core/registry/models"
)

// EnqueueJob appends one row to the retirement outbox. Callers pass
// their transaction as the Execer so the enqueue commits (or rolls
// back) together with the rest of their writes.
func EnqueueJob(e Execer, kind models.JobKind, payload string) error {
	_, err := e.Exec(
		`insert into retirement_jobs (kind, payload) values (?, ?)`,
		kind,
		payload,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s job: %w", kind, err)
	}
	return nil
}

// ClaimJobs flips up to limit pending jobs to running and returns
// them, oldest first. Running jobs belong to the claiming dispatcher
// until it marks them done or failed.
func ClaimJobs(e Execer, limit int) ([]models.Job, error) {
	rows, err := e.Query(
		`update retirement_jobs
		 set status = ?
		 where id in (
			select id from retirement_jobs where status = ? order by id limit ?
		 )
		 returning id, kind, payload, status, attempts, created`,
		models.JobRunning,
		models.JobPending,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to claim jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		var job models.Job
		var created string
		if err := rows.Scan(&job.ID, &job.Kind, &job.Payload, &job.Status, &job.Attempts, &created); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			job.Created = t
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

func MarkJobDone(e Execer, jobID int64) error {
	_, err := e.Exec(`update retirement_jobs set status = ? where id = ?`, models.JobDone, jobID)
	return err
}

// MarkJobFailed returns a job to pending so a later drain picks it up
// again. Attempts is bumped for observability; the dispatcher delivers
// at-least-once and never drops a job.
func MarkJobFailed(e Execer, jobID int64) error {
	_, err := e.Exec(
		`update retirement_jobs set status = ?, attempts = attempts + 1 where id = ?`,
		models.JobPending,
		jobID,
	)
	return err
}

func GetJobs(e Execer, filters ...filter) ([]models.Job, error) {
	where, args := whereClause(filters)

	rows, err := e.Query(
		`select id, kind, payload, status, attempts, created from retirement_jobs`+where+` order by id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute job query: %w", err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		var job models.Job
		var created string
		if err := rows.Scan(&job.ID, &job.Kind, &job.Payload, &job.Status, &job.Attempts, &created); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			job.Created = t
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}
