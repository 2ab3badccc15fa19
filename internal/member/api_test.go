package member_test

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/memberhub/registry-api/internal/config"
	"github.com/memberhub/registry-api/internal/member"
	sharedError "github.com/memberhub/registry-api/internal/shared/error"
	"github.com/memberhub/registry-api/internal/shared/qrcode"
	"github.com/memberhub/registry-api/internal/shared/storage"
	"github.com/memberhub/registry-api/internal/shared/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestEnvironment creates all dependencies needed for member handler tests
func setupTestEnvironment(t *testing.T) (*gin.Engine, *config.Config) {
	t.Helper()

	// Setup test database
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestDB(t, db)
	})

	// Setup storage rooted in a temp dir
	cfg := testutil.NewTestConfig(t)
	store := storage.New(cfg)
	require.NoError(t, store.Init())

	// Setup dependencies
	memberRepo := member.NewMemberRepository()
	codeGenerator := qrcode.New(cfg, store)
	memberService := member.NewMemberService(db, memberRepo, store, codeGenerator)
	memberHandler := member.NewMemberHandler(memberService)

	router := testutil.SetupTestRouter()
	router.POST("/api/v1/members", memberHandler.Enroll)
	router.GET("/api/v1/members", memberHandler.List)
	router.GET("/api/v1/members/:id", memberHandler.Get)
	router.DELETE("/api/v1/members/:id", memberHandler.Delete)
	router.GET("/api/v1/members/:id/photo", memberHandler.Photo)
	router.PATCH("/api/v1/members/:id/status", memberHandler.SetStatus)
	router.GET("/verify/:id", memberHandler.Verify)

	return router, cfg
}

func enroll(t *testing.T, router *gin.Engine, fields map[string]string) *member.MemberResponse {
	t.Helper()

	recorder := testutil.ExecuteMultipartRequest(t, router, testutil.MultipartRequest{
		Method: http.MethodPost,
		URL:    "/api/v1/members",
		Fields: fields,
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var response member.MemberResponse
	testutil.ParseResponse(t, recorder, &response)
	return &response
}

func photoFiles(t *testing.T, cfg *config.Config) []string {
	t.Helper()

	entries, err := os.ReadDir(filepath.Join(cfg.Storage.Root, cfg.Storage.PhotoDir))
	require.NoError(t, err)

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}

func TestEnroll_Success_NoPhoto(t *testing.T) {
	// Given: Setup test environment
	router, _ := setupTestEnvironment(t)

	// When: Enroll with the required fields only
	response := enroll(t, router, map[string]string{
		"fullName": "Jane Doe",
		"email":    "jane@x.com",
		"phone":    "555-0100",
	})

	// Then: Record is pending, has a display code, no photo
	assert.Equal(t, "pending", response.Status)
	assert.Regexp(t, regexp.MustCompile(`^MBR-\d{6}$`), response.MemberID)
	assert.Nil(t, response.Photo)

	// Code generation is best-effort; when it succeeds the reference
	// contains the new id
	if response.QRCode != nil {
		assert.Contains(t, *response.QRCode, fmt.Sprintf("%d", response.ID))
	}
}

func TestEnroll_Success_WithPhoto(t *testing.T) {
	// Given: Setup test environment
	router, cfg := setupTestEnvironment(t)

	// When: Enroll with a photo attached
	recorder := testutil.ExecuteMultipartRequest(t, router, testutil.MultipartRequest{
		Method: http.MethodPost,
		URL:    "/api/v1/members",
		Fields: map[string]string{
			"fullName": "John Smith",
			"email":    "john@x.com",
			"phone":    "555-0101",
		},
		FileField:   "photo",
		FileName:    "avatar.JPG",
		FileContent: []byte("fake-image-bytes"),
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var response member.MemberResponse
	testutil.ParseResponse(t, recorder, &response)

	// Then: The photo reference is set and the file exists on disk
	require.NotNil(t, response.Photo)
	assert.Contains(t, *response.Photo, "/uploads/photos/")
	assert.Contains(t, *response.Photo, ".jpg") // extension lower-cased

	files := photoFiles(t, cfg)
	require.Len(t, files, 1)

	// And: The code image exists on disk, named by the id
	require.NotNil(t, response.QRCode)
	_, err := os.Stat(filepath.Join(cfg.Storage.Root, cfg.Storage.QRCodeDir, fmt.Sprintf("%d.png", response.ID)))
	assert.NoError(t, err)
}

func TestEnroll_ValidationError_RemovesStagedPhoto(t *testing.T) {
	// Given: Setup test environment
	router, cfg := setupTestEnvironment(t)

	testCases := []struct {
		name   string
		fields map[string]string
	}{
		{
			name:   "Missing fullName",
			fields: map[string]string{"email": "a@x.com", "phone": "555-0100"},
		},
		{
			name:   "Missing email",
			fields: map[string]string{"fullName": "A", "phone": "555-0100"},
		},
		{
			name:   "Missing phone",
			fields: map[string]string{"fullName": "A", "email": "a@x.com"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// When: Enroll with a missing required field and a photo attached
			recorder := testutil.ExecuteMultipartRequest(t, router, testutil.MultipartRequest{
				Method:      http.MethodPost,
				URL:         "/api/v1/members",
				Fields:      tc.fields,
				FileField:   "photo",
				FileName:    "avatar.png",
				FileContent: []byte("fake-image-bytes"),
			})

			// Then: Request fails and the staged upload is gone
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			assert.Empty(t, photoFiles(t, cfg))

			var errorResponse sharedError.ErrorResponse
			testutil.ParseResponse(t, recorder, &errorResponse)
			assert.Equal(t, "MEMBER-003", errorResponse.Code)
		})
	}
}

func TestEnroll_DuplicateEmail_RemovesStagedPhoto(t *testing.T) {
	// Given: An enrolled member
	router, cfg := setupTestEnvironment(t)
	enroll(t, router, map[string]string{
		"fullName": "Jane Doe",
		"email":    "jane@x.com",
		"phone":    "555-0100",
	})

	// When: Re-enroll with the same email and a photo attached
	recorder := testutil.ExecuteMultipartRequest(t, router, testutil.MultipartRequest{
		Method: http.MethodPost,
		URL:    "/api/v1/members",
		Fields: map[string]string{
			"fullName": "Jane Imposter",
			"email":    "jane@x.com",
			"phone":    "555-0199",
		},
		FileField:   "photo",
		FileName:    "avatar.png",
		FileContent: []byte("fake-image-bytes"),
	})

	// Then: 400 with the duplicate message, staged upload removed
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Empty(t, photoFiles(t, cfg))

	var errorResponse sharedError.ErrorResponse
	testutil.ParseResponse(t, recorder, &errorResponse)
	assert.Equal(t, "MEMBER-002", errorResponse.Code)
	assert.Equal(t, "A member with this email already exists", errorResponse.Message)
}

func TestList_SearchFiltersAcrossFields(t *testing.T) {
	// Given: A mixed set of members
	router, _ := setupTestEnvironment(t)
	enroll(t, router, map[string]string{"fullName": "Alice Cooper", "email": "ac@x.com", "phone": "555-0001"})
	enroll(t, router, map[string]string{"fullName": "Bob Jones", "email": "alice@y.com", "phone": "555-0002"})
	enroll(t, router, map[string]string{"fullName": "Carol White", "email": "cw@x.com", "phone": "555-0003", "idNumber": "ALICE-99"})
	enroll(t, router, map[string]string{"fullName": "Dave Black", "email": "db@x.com", "phone": "555-0004"})

	// When: Search for "alice"
	recorder := testutil.ExecuteRequest(t, router, testutil.TestRequest{
		Method: http.MethodGet,
		URL:    "/api/v1/members?search=alice",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var response member.PlainListResponse
	testutil.ParseResponse(t, recorder, &response)

	// Then: Only members matching on name, email or id number are returned
	assert.Equal(t, 3, response.Count)
	for _, item := range response.Data {
		assert.NotEqual(t, "Dave Black", item.FullName)
	}
}

func TestList_DefaultSortIsCreationTimeDescending(t *testing.T) {
	// Given: Members enrolled in a known order
	router, _ := setupTestEnvironment(t)
	first := enroll(t, router, map[string]string{"fullName": "First", "email": "f@x.com", "phone": "1"})
	second := enroll(t, router, map[string]string{"fullName": "Second", "email": "s@x.com", "phone": "2"})

	// When: List with no parameters
	recorder := testutil.ExecuteRequest(t, router, testutil.TestRequest{
		Method: http.MethodGet,
		URL:    "/api/v1/members",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var response member.PlainListResponse
	testutil.ParseResponse(t, recorder, &response)

	// Then: Newest first
	require.Equal(t, 2, response.Count)
	assert.Equal(t, second.ID, response.Data[0].ID)
	assert.Equal(t, first.ID, response.Data[1].ID)
}

func TestList_SortByNameAscending(t *testing.T) {
	// Given
	router, _ := setupTestEnvironment(t)
	enroll(t, router, map[string]string{"fullName": "Zed", "email": "z@x.com", "phone": "1"})
	enroll(t, router, map[string]string{"fullName": "Amy", "email": "a@x.com", "phone": "2"})

	// When
	recorder := testutil.ExecuteRequest(t, router, testutil.TestRequest{
		Method: http.MethodGet,
		URL:    "/api/v1/members?sortColumn=fullName&sortDir=ascending",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var response member.PlainListResponse
	testutil.ParseResponse(t, recorder, &response)

	// Then
	require.Equal(t, 2, response.Count)
	assert.Equal(t, "Amy", response.Data[0].FullName)
	assert.Equal(t, "Zed", response.Data[1].FullName)
}

func TestList_PaginationHasNoOverlapOrGaps(t *testing.T) {
	// Given: Four members
	router, _ := setupTestEnvironment(t)
	for i := 0; i < 4; i++ {
		enroll(t, router, map[string]string{
			"fullName": fmt.Sprintf("Member %d", i),
			"email":    fmt.Sprintf("m%d@x.com", i),
			"phone":    fmt.Sprintf("555-000%d", i),
		})
	}

	// When: Fetch two pages of size 2
	seen := map[uint32]bool{}
	for _, offset := range []int{0, 2} {
		recorder := testutil.ExecuteRequest(t, router, testutil.TestRequest{
			Method: http.MethodGet,
			URL:    fmt.Sprintf("/api/v1/members?pageOffset=%d&pageSize=2", offset),
		})
		require.Equal(t, http.StatusOK, recorder.Code)

		var response member.PlainListResponse
		testutil.ParseResponse(t, recorder, &response)
		require.Equal(t, 2, response.Count)

		for _, item := range response.Data {
			assert.False(t, seen[item.ID], "member %d returned twice", item.ID)
			seen[item.ID] = true
		}
	}

	// Then: The two halves cover the whole set
	assert.Len(t, seen, 4)
}

func TestList_GridShapeReportsIndependentCounts(t *testing.T) {
	// Given: Three members, one matching the filter
	router, _ := setupTestEnvironment(t)
	enroll(t, router, map[string]string{"fullName": "Alice", "email": "a@x.com", "phone": "1"})
	enroll(t, router, map[string]string{"fullName": "Bob", "email": "b@x.com", "phone": "2"})
	enroll(t, router, map[string]string{"fullName": "Carol", "email": "c@x.com", "phone": "3"})

	// When: Grid mode with a filter and a 1-item page
	recorder := testutil.ExecuteRequest(t, router, testutil.TestRequest{
		Method: http.MethodGet,
		URL:    "/api/v1/members?grid=true&search=alice&pageSize=1",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var response member.GridListResponse
	testutil.ParseResponse(t, recorder, &response)

	// Then: Counts are independent of the page slice
	assert.Equal(t, int64(3), response.RecordsTotal)
	assert.Equal(t, int64(1), response.RecordsFiltered)
	require.Len(t, response.Data, 1)
	assert.Equal(t, "Alice", response.Data[0].FullName)
}

func TestGet_AppliesPlaceholderDefaults(t *testing.T) {
	// Given: A member enrolled without optional fields
	router, _ := setupTestEnvironment(t)
	created := enroll(t, router, map[string]string{
		"fullName": "Jane Doe",
		"email":    "jane@x.com",
		"phone":    "555-0100",
	})

	// When
	recorder := testutil.ExecuteRequest(t, router, testutil.TestRequest{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("/api/v1/members/%d", created.ID),
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var response member.MemberResponse
	testutil.ParseResponse(t, recorder, &response)

	// Then: Absent optional text fields carry the placeholder
	assert.Equal(t, "N/A", response.BirthDate)
	assert.Equal(t, "N/A", response.BirthPlace)
	assert.Equal(t, "N/A", response.Activity)
	assert.Equal(t, "N/A", response.IDNumber)
}

func TestGet_UnknownID(t *testing.T) {
	router, _ := setupTestEnvironment(t)

	recorder := testutil.ExecuteRequest(t, router, testutil.TestRequest{
		Method: http.MethodGet,
		URL:    "/api/v1/members/9999",
	})

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestSetStatus(t *testing.T) {
	// Given
	router, _ := setupTestEnvironment(t)
	created := enroll(t, router, map[string]string{
		"fullName": "Jane Doe",
		"email":    "jane@x.com",
		"phone":    "555-0100",
	})

	t.Run("Approve", func(t *testing.T) {
		recorder := testutil.ExecuteRequest(t, router, testutil.TestRequest{
			Method: http.MethodPatch,
			URL:    fmt.Sprintf("/api/v1/members/%d/status", created.ID),
			Body:   member.UpdateStatusRequest{Status: "approved"},
		})
		require.Equal(t, http.StatusOK, recorder.Code)

		var response member.MemberResponse
		testutil.ParseResponse(t, recorder, &response)
		assert.Equal(t, "approved", response.Status)
		assert.NotNil(t, response.ApprovedAt)
	})

	t.Run("Back to pending", func(t *testing.T) {
		recorder := testutil.ExecuteRequest(t, router, testutil.TestRequest{
			Method: http.MethodPatch,
			URL:    fmt.Sprintf("/api/v1/members/%d/status", created.ID),
			Body:   member.UpdateStatusRequest{Status: "pending"},
		})
		require.Equal(t, http.StatusOK, recorder.Code)

		var response member.MemberResponse
		testutil.ParseResponse(t, recorder, &response)
		assert.Equal(t, "pending", response.Status)
		assert.Nil(t, response.ApprovedAt)
	})

	t.Run("Invalid status value", func(t *testing.T) {
		recorder := testutil.ExecuteRequest(t, router, testutil.TestRequest{
			Method: http.MethodPatch,
			URL:    fmt.Sprintf("/api/v1/members/%d/status", created.ID),
			Body:   map[string]string{"status": "archived"},
		})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("Unknown id", func(t *testing.T) {
		recorder := testutil.ExecuteRequest(t, router, testutil.TestRequest{
			Method: http.MethodPatch,
			URL:    "/api/v1/members/9999/status",
			Body:   member.UpdateStatusRequest{Status: "approved"},
		})
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestDelete_RemovesRecordAndFiles(t *testing.T) {
	// Given: A member with a photo and a code image
	router, cfg := setupTestEnvironment(t)
	recorder := testutil.ExecuteMultipartRequest(t, router, testutil.MultipartRequest{
		Method: http.MethodPost,
		URL:    "/api/v1/members",
		Fields: map[string]string{
			"fullName": "Jane Doe",
			"email":    "jane@x.com",
			"phone":    "555-0100",
		},
		FileField:   "photo",
		FileName:    "avatar.png",
		FileContent: []byte("fake-image-bytes"),
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	var created member.MemberResponse
	testutil.ParseResponse(t, recorder, &created)
	require.Len(t, photoFiles(t, cfg), 1)

	// When: Delete the member
	deleteRecorder := testutil.ExecuteRequest(t, router, testutil.TestRequest{
		Method: http.MethodDelete,
		URL:    fmt.Sprintf("/api/v1/members/%d", created.ID),
	})

	// Then: 200, record and both files are gone
	assert.Equal(t, http.StatusOK, deleteRecorder.Code)
	assert.Empty(t, photoFiles(t, cfg))

	_, err := os.Stat(filepath.Join(cfg.Storage.Root, cfg.Storage.QRCodeDir, fmt.Sprintf("%d.png", created.ID)))
	assert.True(t, os.IsNotExist(err))

	getRecorder := testutil.ExecuteRequest(t, router, testutil.TestRequest{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("/api/v1/members/%d", created.ID),
	})
	assert.Equal(t, http.StatusNotFound, getRecorder.Code)
}

func TestDelete_UnknownID_NoFileOperations(t *testing.T) {
	router, _ := setupTestEnvironment(t)

	recorder := testutil.ExecuteRequest(t, router, testutil.TestRequest{
		Method: http.MethodDelete,
		URL:    "/api/v1/members/9999",
	})

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestDelete_ToleratesExternallyRemovedPhoto(t *testing.T) {
	// Given: A member whose photo file was removed out-of-band
	router, cfg := setupTestEnvironment(t)
	recorder := testutil.ExecuteMultipartRequest(t, router, testutil.MultipartRequest{
		Method: http.MethodPost,
		URL:    "/api/v1/members",
		Fields: map[string]string{
			"fullName": "Jane Doe",
			"email":    "jane@x.com",
			"phone":    "555-0100",
		},
		FileField:   "photo",
		FileName:    "avatar.png",
		FileContent: []byte("fake-image-bytes"),
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	var created member.MemberResponse
	testutil.ParseResponse(t, recorder, &created)

	files := photoFiles(t, cfg)
	require.Len(t, files, 1)
	require.NoError(t, os.Remove(filepath.Join(cfg.Storage.Root, cfg.Storage.PhotoDir, files[0])))

	// When
	deleteRecorder := testutil.ExecuteRequest(t, router, testutil.TestRequest{
		Method: http.MethodDelete,
		URL:    fmt.Sprintf("/api/v1/members/%d", created.ID),
	})

	// Then: Deletion still succeeds
	assert.Equal(t, http.StatusOK, deleteRecorder.Code)
}

func TestPhoto_DownloadNameDerivedFromFullName(t *testing.T) {
	// Given: A member with a photo
	router, _ := setupTestEnvironment(t)
	recorder := testutil.ExecuteMultipartRequest(t, router, testutil.MultipartRequest{
		Method: http.MethodPost,
		URL:    "/api/v1/members",
		Fields: map[string]string{
			"fullName": "Jane O'Doe-Smith",
			"email":    "jane@x.com",
			"phone":    "555-0100",
		},
		FileField:   "photo",
		FileName:    "avatar.JPG",
		FileContent: []byte("fake-image-bytes"),
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	var created member.MemberResponse
	testutil.ParseResponse(t, recorder, &created)

	// When
	photoRecorder := testutil.ExecuteRequest(t, router, testutil.TestRequest{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("/api/v1/members/%d/photo", created.ID),
	})

	// Then: Binary download with the derived filename
	require.Equal(t, http.StatusOK, photoRecorder.Code)
	assert.Contains(t, photoRecorder.Header().Get("Content-Disposition"), `janeodoesmith.jpg`)
	assert.Equal(t, []byte("fake-image-bytes"), photoRecorder.Body.Bytes())
}

func TestPhoto_NotFoundCases(t *testing.T) {
	router, cfg := setupTestEnvironment(t)

	t.Run("Member without photo", func(t *testing.T) {
		created := enroll(t, router, map[string]string{
			"fullName": "No Photo",
			"email":    "np@x.com",
			"phone":    "555-0100",
		})

		recorder := testutil.ExecuteRequest(t, router, testutil.TestRequest{
			Method: http.MethodGet,
			URL:    fmt.Sprintf("/api/v1/members/%d/photo", created.ID),
		})
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("Unknown member", func(t *testing.T) {
		recorder := testutil.ExecuteRequest(t, router, testutil.TestRequest{
			Method: http.MethodGet,
			URL:    "/api/v1/members/9999/photo",
		})
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("Photo file missing from storage", func(t *testing.T) {
		recorder := testutil.ExecuteMultipartRequest(t, router, testutil.MultipartRequest{
			Method: http.MethodPost,
			URL:    "/api/v1/members",
			Fields: map[string]string{
				"fullName": "Gone Photo",
				"email":    "gp@x.com",
				"phone":    "555-0101",
			},
			FileField:   "photo",
			FileName:    "avatar.png",
			FileContent: []byte("fake-image-bytes"),
		})
		require.Equal(t, http.StatusCreated, recorder.Code)

		var created member.MemberResponse
		testutil.ParseResponse(t, recorder, &created)

		for _, name := range photoFiles(t, cfg) {
			require.NoError(t, os.Remove(filepath.Join(cfg.Storage.Root, cfg.Storage.PhotoDir, name)))
		}

		photoRecorder := testutil.ExecuteRequest(t, router, testutil.TestRequest{
			Method: http.MethodGet,
			URL:    fmt.Sprintf("/api/v1/members/%d/photo", created.ID),
		})
		assert.Equal(t, http.StatusNotFound, photoRecorder.Code)
	})
}

func TestVerify_PublicProjection(t *testing.T) {
	// Given
	router, _ := setupTestEnvironment(t)
	created := enroll(t, router, map[string]string{
		"fullName": "Jane Doe",
		"email":    "jane@x.com",
		"phone":    "555-0100",
	})

	// When
	recorder := testutil.ExecuteRequest(t, router, testutil.TestRequest{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("/verify/%d", created.ID),
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var response member.VerifyResponse
	testutil.ParseResponse(t, recorder, &response)

	// Then: Minimal projection only
	assert.Equal(t, created.MemberID, response.MemberID)
	assert.Equal(t, "Jane Doe", response.FullName)
	assert.Equal(t, "pending", response.Status)
	assert.NotContains(t, recorder.Body.String(), "jane@x.com")
}
