package qrcode

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/memberhub/registry-api/internal/config"
	"github.com/memberhub/registry-api/internal/shared/logger"
	"github.com/memberhub/registry-api/internal/shared/storage"

	qr "github.com/skip2/go-qrcode"
)

const imageSize = 256

// Generator produces scannable verification-code images. Generation is a
// best-effort enrichment step: it never returns an error so a caller cannot
// accidentally propagate a failure.
type Generator struct {
	baseURL string
	store   *storage.Store
}

// New creates a Generator writing images into the store's code-image
// directory and encoding URLs rooted at the configured public base URL.
func New(cfg *config.Config, store *storage.Store) *Generator {
	return &Generator{
		baseURL: cfg.Storage.PublicBaseURL,
		store:   store,
	}
}

// VerificationURL returns the canonical URL encoded for a member id.
func (g *Generator) VerificationURL(memberID uint32) string {
	return fmt.Sprintf("%s/verify/%d", g.baseURL, memberID)
}

// Generate writes a PNG code image named by the member id and returns its
// public reference. ok is false when generation failed; the failure is
// logged and otherwise swallowed.
func (g *Generator) Generate(ctx context.Context, memberID uint32) (ref string, ok bool) {
	name := fmt.Sprintf("%d.png", memberID)
	file := filepath.Join(g.store.QRCodePath(), name)

	if err := qr.WriteFile(g.VerificationURL(memberID), qr.Medium, imageSize, file); err != nil {
		logger.FromContext(ctx).Warn("verification code generation failed",
			"member_id", memberID,
			"error", err,
		)
		return "", false
	}

	return g.store.QRCodeRef(name), true
}
