package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDB struct {
	DBTX
	query string
	args  []interface{}
	err   error
}

func (r *recordingDB) ExecContext(_ context.Context, query string, args ...interface{}) (sql.Result, error) {
	r.query, r.args = query, args
	return nil, r.err
}

func TestSetSessionStatus(t *testing.T) {
	db := &recordingDB{}
	id := uuid.New()

	err := New(db).SetSessionStatus(context.Background(), SetSessionStatusParams{Status: "completed", ID: id})
	require.NoError(t, err)
	assert.Contains(t, db.query, "UPDATE sessions")
	assert.Equal(t, []interface{}{"completed", id}, db.args)

	db.err = errors.New("connection refused")
	err = New(db).SetSessionStatus(context.Background(), SetSessionStatusParams{Status: "failed", ID: id})
	assert.ErrorIs(t, err, db.err)
}
