package member_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/memberhub/registry-api/internal/member"
	"github.com/memberhub/registry-api/internal/model"
	"github.com/memberhub/registry-api/internal/shared/qrcode"
	"github.com/memberhub/registry-api/internal/shared/storage"
	"github.com/memberhub/registry-api/internal/shared/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupService wires the member service against a test database. When
// initStorage is false the content directories are left missing, which makes
// code-image generation fail.
func setupService(t *testing.T, initStorage bool) (*member.MemberService, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestDB(t, db)
	})

	cfg := testutil.NewTestConfig(t)
	store := storage.New(cfg)
	if initStorage {
		require.NoError(t, store.Init())
	} else {
		// Guarantee the code-image directory is absent
		require.NoError(t, os.RemoveAll(store.QRCodePath()))
	}

	service := member.NewMemberService(db, member.NewMemberRepository(), store, qrcode.New(cfg, store))
	return service, db
}

func TestEnroll_CodeGenerationFailureIsSwallowed(t *testing.T) {
	// Given: A service whose code-image directory does not exist
	service, _ := setupService(t, false)

	// When: Enroll without a photo
	response, err := service.Enroll(context.Background(), &member.EnrollRequest{
		FullName: "Jane Doe",
		Email:    "jane@x.com",
		Phone:    "555-0100",
	}, nil)

	// Then: Enrollment still succeeds, with the code reference absent
	require.NoError(t, err)
	assert.Equal(t, "pending", response.Status)
	assert.Nil(t, response.QRCode)
}

func TestSetStatus_RejectsValuesOutsideEnum(t *testing.T) {
	// Given
	service, _ := setupService(t, true)
	created, err := service.Enroll(context.Background(), &member.EnrollRequest{
		FullName: "Jane Doe",
		Email:    "jane@x.com",
		Phone:    "555-0100",
	}, nil)
	require.NoError(t, err)

	// When: A value outside the enumerated set reaches the service directly
	_, err = service.SetStatus(context.Background(), created.ID, "archived")

	// Then
	assert.ErrorIs(t, err, member.ErrInvalidStatus)

	// And: A valid transition still works
	updated, err := service.SetStatus(context.Background(), created.ID, "rejected")
	require.NoError(t, err)
	assert.Equal(t, "rejected", updated.Status)
}

func TestEnroll_DuplicateKeyFromStorageMapsToEmailTaken(t *testing.T) {
	// Given: A persisted member
	service, db := setupService(t, true)
	_, err := service.Enroll(context.Background(), &member.EnrollRequest{
		FullName: "Jane Doe",
		Email:    "jane@x.com",
		Phone:    "555-0100",
	}, nil)
	require.NoError(t, err)

	// When: A second insert with the same email bypasses the pre-check,
	// simulating the losing side of a duplicate race
	repo := member.NewMemberRepository()
	err = repo.Create(context.Background(), db,
		model.NewMember("Jane Imposter", "jane@x.com", "555-0199", time.Now()))

	// Then: The unique index reports a duplicate-key condition; the
	// coordinator maps exactly this error to the duplicate response
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
