package database

import (
	"context"

	"github.com/google/uuid"
)

const setSessionStatus = `-- name: SetSessionStatus :exec
UPDATE sessions
SET status=$1
WHERE id=$2
`

type SetSessionStatusParams struct {
	Status string
	ID     uuid.UUID
}

func (q *Queries) SetSessionStatus(ctx context.Context, arg SetSessionStatusParams) error {
	_, err := q.db.ExecContext(ctx, setSessionStatus, arg.Status, arg.ID)
	return err
}
