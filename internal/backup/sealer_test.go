package backup_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-journal/internal/backup"
	"github.com/pkordes/trip-journal/internal/domain"
)

func newSealer(t *testing.T) *backup.Sealer {
	t.Helper()
	hexKey, err := backup.GenerateKey()
	require.NoError(t, err)
	key, err := backup.ParseKey(hexKey)
	require.NoError(t, err)
	s, err := backup.NewSealer(key)
	require.NoError(t, err)
	return s
}

func TestSealer_RoundTrip(t *testing.T) {
	s := newSealer(t)
	plain := []byte("snapshot bytes")

	sealed, err := s.Seal(plain)
	require.NoError(t, err)
	assert.False(t, bytes.Contains(sealed, plain))

	got, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}

func TestSealer_RandomNonce(t *testing.T) {
	s := newSealer(t)

	a, err := s.Seal([]byte("x"))
	require.NoError(t, err)
	b, err := s.Seal([]byte("x"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestSealer_WrongKeyIsCorrupt(t *testing.T) {
	sealed, err := newSealer(t).Seal([]byte("x"))
	require.NoError(t, err)

	_, err = newSealer(t).Open(sealed)
	assert.ErrorIs(t, err, domain.ErrCorruptBackup)

	_, err = newSealer(t).Open([]byte{1, 2})
	assert.ErrorIs(t, err, domain.ErrCorruptBackup)
}

func TestParseKey(t *testing.T) {
	_, err := backup.ParseKey("abcd")
	assert.ErrorIs(t, err, backup.ErrKeySize)

	_, err = backup.ParseKey("zz")
	assert.Error(t, err)

	_, err = backup.NewSealer(make([]byte, 16))
	assert.ErrorIs(t, err, backup.ErrKeySize)
}
