package repository

const (
	archiveJobQuery = `INSERT INTO video_jobs (job_id, source_url, status, progress, progress_message, current_step,
						video_path, error_message, created_at, started_at, completed_at)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
					ON CONFLICT (job_id) DO UPDATE SET
						status = EXCLUDED.status,
						progress = EXCLUDED.progress,
						progress_message = EXCLUDED.progress_message,
						current_step = EXCLUDED.current_step,
						video_path = EXCLUDED.video_path,
						error_message = EXCLUDED.error_message,
						started_at = EXCLUDED.started_at,
						completed_at = EXCLUDED.completed_at`
	getJobByIDQuery = `SELECT job_id, source_url, status, progress, progress_message, current_step, video_path,
						error_message, created_at, started_at, completed_at
					FROM video_jobs WHERE job_id = $1`
	listJobsQuery = `SELECT job_id, source_url, status, progress, progress_message, current_step, video_path,
						error_message, created_at, started_at, completed_at
					FROM video_jobs ORDER BY created_at DESC OFFSET $1 LIMIT $2`
	countJobsQuery = `SELECT COUNT(job_id) FROM video_jobs`
)
