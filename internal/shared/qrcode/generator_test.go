package qrcode_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/memberhub/registry-api/internal/shared/qrcode"
	"github.com/memberhub/registry-api/internal/shared/storage"
	"github.com/memberhub/registry-api/internal/shared/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_WritesImageNamedByID(t *testing.T) {
	cfg := testutil.NewTestConfig(t)
	store := storage.New(cfg)
	require.NoError(t, store.Init())

	generator := qrcode.New(cfg, store)

	ref, ok := generator.Generate(context.Background(), 42)

	require.True(t, ok)
	assert.Equal(t, "/uploads/qrcodes/42.png", ref)

	info, err := os.Stat(filepath.Join(store.QRCodePath(), "42.png"))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestGenerate_EncodesVerificationURL(t *testing.T) {
	cfg := testutil.NewTestConfig(t)
	store := storage.New(cfg)
	require.NoError(t, store.Init())

	generator := qrcode.New(cfg, store)

	assert.Equal(t, cfg.Storage.PublicBaseURL+"/verify/7", generator.VerificationURL(7))
}

func TestGenerate_FailureReturnsNotOK(t *testing.T) {
	cfg := testutil.NewTestConfig(t)
	store := storage.New(cfg)
	// No Init: the code-image directory does not exist

	generator := qrcode.New(cfg, store)

	ref, ok := generator.Generate(context.Background(), 42)

	assert.False(t, ok)
	assert.Empty(t, ref)
}
