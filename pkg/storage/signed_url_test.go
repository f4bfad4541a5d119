package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("run-1", "timetable_cse-3a_run-1.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	runID, path, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "run-1", runID)
	require.Equal(t, "timetable_cse-3a_run-1.csv", path)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Millisecond*10)
	token, _, err := signer.Generate("run-1", "timetable_cse-3a_run-1.csv")
	require.NoError(t, err)
	time.Sleep(time.Millisecond * 20)

	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	runID, path, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "run-1", runID)
	require.Equal(t, "timetable_cse-3a_run-1.csv", path)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("run-1", "timetable_cse-3a_run-1.csv")
	require.NoError(t, err)

	forged := strings.Replace(token, "run-1", "run-2", 1)
	_, _, _, err = signer.Parse(forged, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "signature")
}
