package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/storage"
)

func newSoundService(t *testing.T) *SoundService {
	t.Helper()
	store, err := storage.NewSoundStore(t.TempDir())
	require.NoError(t, err)
	return NewSoundService(store, 1024, nil)
}

func TestSoundUploadValidation(t *testing.T) {
	t.Parallel()

	svc := newSoundService(t)

	_, err := svc.Upload("", "ding.mp3", []byte("x"))
	assertDomainCode(t, err, "VALIDATION_FAILED")

	_, err = svc.Upload("jvaldez", "", []byte("x"))
	assertDomainCode(t, err, "VALIDATION_FAILED")

	_, err = svc.Upload("jvaldez", "malware.exe", []byte("x"))
	assertDomainCode(t, err, "VALIDATION_FAILED")

	_, err = svc.Upload("jvaldez", "huge.mp3", make([]byte, 2048))
	assertDomainCode(t, err, "VALIDATION_FAILED")
}

func TestSoundUploadReplaceAndLookup(t *testing.T) {
	t.Parallel()

	svc := newSoundService(t)

	first, err := svc.Upload("jvaldez", "ding.MP3", []byte("ding"))
	require.NoError(t, err)
	assert.Contains(t, first, "jvaldez_")

	second, err := svc.Upload("jvaldez", "dong.wav", []byte("dong"))
	require.NoError(t, err)

	name, ok, err := svc.Lookup("jvaldez")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second, name)
}

func TestSoundRemoveRestoresDefault(t *testing.T) {
	t.Parallel()

	svc := newSoundService(t)

	saved, err := svc.Upload("jvaldez", "ding.mp3", []byte("ding"))
	require.NoError(t, err)

	removed, err := svc.Remove("jvaldez")
	require.NoError(t, err)
	assert.Equal(t, []string{saved}, removed)

	_, ok, err := svc.Lookup("jvaldez")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Remove("")
	assertDomainCode(t, err, "VALIDATION_FAILED")
}

func TestSoundResolveRejectsEscapes(t *testing.T) {
	t.Parallel()

	svc := newSoundService(t)

	_, err := svc.Resolve("../../etc/passwd")
	assertDomainCode(t, err, "VALIDATION_FAILED")
}
