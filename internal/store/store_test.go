package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/publiflow/publiflow-client/internal/errs"
	"github.com/publiflow/publiflow-client/internal/model"
)

func sample() model.UserProfile {
	return model.UserProfile{ID: 12, FullName: "Rui Silva", Email: "rui@example.com", Phone: "555", RoleID: 2}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Save("tok-abc", sample()))

	token, user, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)
	assert.Equal(t, sample(), user)
}

func TestLoadMissingEntries(t *testing.T) {
	s := New(t.TempDir())
	_, _, err := s.Load()
	assert.ErrorIs(t, err, errs.ErrRestoreSkipped)
}

func TestLoadCorruptProfile(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	require.NoError(t, s.Save("tok", sample()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user.json"), []byte("{not json"), 0o600))

	_, _, err := s.Load()
	assert.ErrorIs(t, err, errs.ErrRestoreSkipped)
}

func TestLoadProfileMissing(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	require.NoError(t, s.Save("tok", sample()))
	require.NoError(t, os.Remove(filepath.Join(dir, "user.json")))

	_, _, err := s.Load()
	assert.ErrorIs(t, err, errs.ErrRestoreSkipped)
}

func TestSaveRejectsEmptyToken(t *testing.T) {
	s := New(t.TempDir())
	assert.Error(t, s.Save("", sample()))
}

func TestClearRemovesBothEntries(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Save("tok", sample()))
	require.NoError(t, s.Clear())

	_, _, err := s.Load()
	assert.ErrorIs(t, err, errs.ErrRestoreSkipped)

	// Clearing an already-empty store is fine.
	require.NoError(t, s.Clear())
}
