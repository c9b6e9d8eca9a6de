package compilelog_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gundermanc/gsc/cmd/gscd/compilelog"
)

func openTestDB(t *testing.T) *compilelog.DB {
	t.Helper()
	db, err := compilelog.Open(filepath.Join(t.TempDir(), "compiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecord_GetByID_RoundTrip(t *testing.T) {
	db := openTestDB(t)

	written, err := db.Record(context.Background(), compilelog.Entry{
		PackageName: "Sample",
		Status:      compilelog.StatusOK,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, written.ID)

	read, err := db.GetByID(context.Background(), written.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sample", read.PackageName)
	assert.Equal(t, compilelog.StatusOK, read.Status)
}

func TestRecord_ErrorEntryKeepsPosition(t *testing.T) {
	db := openTestDB(t)

	written, err := db.Record(context.Background(), compilelog.Entry{
		PackageName: "Sample",
		Status:      compilelog.StatusError,
		ErrorCode:   "ParserUnexpectedToken",
		Line:        4,
		Column:      7,
	})
	require.NoError(t, err)

	read, err := db.GetByID(context.Background(), written.ID)
	require.NoError(t, err)
	assert.Equal(t, compilelog.StatusError, read.Status)
	assert.Equal(t, "ParserUnexpectedToken", read.ErrorCode)
	assert.Equal(t, 4, read.Line)
	assert.Equal(t, 7, read.Column)
}

func TestGetByID_UnknownIDReturnsErrNotFound(t *testing.T) {
	db := openTestDB(t)

	id, err := uuid.NewRandom()
	require.NoError(t, err)

	_, err = db.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, compilelog.ErrNotFound)
}
