package filesystem

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFileSystem_Basic(t *testing.T) {
	mfs := NewMemoryFileSystem("/data/parquet")

	mfs.AddFile("sales.orders/data_0.parquet", "PAR1")
	mfs.AddFile("sales.orders/data_1.parquet", "PAR1")
	mfs.AddFile("README.txt", "notes")

	entries, err := mfs.ReadDir("/data/parquet")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "README.txt", entries[0].Name())
	assert.False(t, entries[0].IsDir())
	assert.Equal(t, "sales.orders", entries[1].Name())
	assert.True(t, entries[1].IsDir())

	files, err := mfs.ReadDir("sales.orders")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestMemoryFileSystem_ReadFile(t *testing.T) {
	mfs := NewMemoryFileSystem("/test/project")

	expectedContent := "SELECT 1;"
	mfs.AddFile("query.sql", expectedContent)

	content, err := mfs.ReadFile("/test/project/query.sql")
	require.NoError(t, err)
	require.Equal(t, expectedContent, string(content))

	_, err = mfs.ReadFile("missing.sql")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	_, err = mfs.ReadFile("/test")
	require.Error(t, err)
}

func TestMemoryFileSystem_Stat(t *testing.T) {
	mfs := NewMemoryFileSystem("/test/project")
	mfs.AddFile("query.sql", "SELECT 1;")

	info, err := mfs.Stat("/test/project/query.sql")
	require.NoError(t, err)
	require.False(t, info.IsDir())
	require.Equal(t, "query.sql", info.Name())
	require.Equal(t, int64(9), info.Size())

	info, err = mfs.Stat("/test/project")
	require.NoError(t, err)
	require.True(t, info.IsDir())

	_, err = mfs.Stat("/nope")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestMemoryFileSystem_WriteFile(t *testing.T) {
	mfs := NewMemoryFileSystem("/")

	err := mfs.WriteFile("/out/DuckDB/exec_time.txt", []byte("1.5\n"))
	require.Error(t, err, "parent directory must exist")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	require.NoError(t, mfs.MkdirAll("/out/DuckDB"))
	require.NoError(t, mfs.WriteFile("/out/DuckDB/exec_time.txt", []byte("1.5\n")))

	data, err := mfs.ReadFile("/out/DuckDB/exec_time.txt")
	require.NoError(t, err)
	assert.Equal(t, "1.5\n", string(data))

	require.NoError(t, mfs.WriteFile("/out/DuckDB/exec_time.txt", []byte("2\n")))
	data, _ = mfs.ReadFile("/out/DuckDB/exec_time.txt")
	assert.Equal(t, "2\n", string(data))
}

func TestMemoryFileSystem_MkdirAll_ThroughFile(t *testing.T) {
	mfs := NewMemoryFileSystem("/")
	mfs.AddFile("/out", "not a dir")

	err := mfs.MkdirAll("/out/public.users")
	require.Error(t, err)
}

func TestMemoryFileSystem_RemoveAll(t *testing.T) {
	mfs := NewMemoryFileSystem("/out")
	mfs.AddFile("public.events/data_0.parquet", "x")
	mfs.AddFile("public.eventsx/data_0.parquet", "y")

	require.NoError(t, mfs.RemoveAll("/out/public.events"))
	assert.False(t, mfs.Exists("/out/public.events"))
	assert.False(t, mfs.Exists("/out/public.events/data_0.parquet"))
	assert.True(t, mfs.Exists("/out/public.eventsx/data_0.parquet"), "sibling with shared prefix must survive")

	require.NoError(t, mfs.RemoveAll("/out/never-existed"))
}
