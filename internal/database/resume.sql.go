package database

import (
	"context"

	"github.com/google/uuid"
)

const listResumeDocumentsBySession = `-- name: ListResumeDocumentsBySession :many
SELECT id, original_filename, mime, size_bytes, object_key, session_id FROM resumes
WHERE session_id=$1 AND upload_status='uploaded'
ORDER BY created_at
`

func (q *Queries) ListResumeDocumentsBySession(ctx context.Context, sessionID uuid.UUID) ([]ResumeDocument, error) {
	rows, err := q.db.QueryContext(ctx, listResumeDocumentsBySession, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ResumeDocument
	for rows.Next() {
		var i ResumeDocument
		if err := rows.Scan(
			&i.ID,
			&i.OriginalFilename,
			&i.Mime,
			&i.SizeBytes,
			&i.ObjectKey,
			&i.SessionID,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
