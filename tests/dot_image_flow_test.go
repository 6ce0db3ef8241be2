package tests

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	businessflow "github.com/kubousky/dotmap/business_flow"
	"github.com/kubousky/dotmap/repository"
	testingutil "github.com/kubousky/dotmap/testing"
)

// newTestImageFlow wires an image flow against a relative upload directory
// that is removed when the test ends. Stored blob paths are relative, so
// the flow refuses absolute directories like t.TempDir().
func newTestImageFlow(t *testing.T, testDB *testingutil.TestDB) businessflow.DotImageFlow {
	t.Helper()

	uploadDir := filepath.Join("test_uploads", testDB.Name)
	t.Cleanup(func() { _ = os.RemoveAll("test_uploads") })

	dotRepo := repository.NewDotRepository(testDB.DB)
	userRepo := repository.NewUserRepository(testDB.DB)
	return businessflow.NewDotImageFlow(dotRepo, userRepo, uploadDir)
}

// testPNG renders a small valid PNG payload
func testPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAttachImage(t *testing.T) {
	requirePostgres(t)

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		imageFlow := newTestImageFlow(t, testDB)
		dotRepo := repository.NewDotRepository(testDB.DB)
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")
		ctx := context.Background()

		t.Run("SuccessfulUpload", func(t *testing.T) {
			owner, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			dot, err := fixtures.CreateTestDot(owner.ID, "Pictured")
			require.NoError(t, err)

			result, err := imageFlow.AttachImage(ctx, owner.ID, dot.ID, bytes.NewReader(testPNG(t)), "photo.png", metadata)
			require.NoError(t, err)
			assert.Equal(t, dot.ID, result.ID)
			assert.True(t, strings.HasSuffix(result.Image, ".png"))

			// The blob exists on disk and the dot references it
			_, err = os.Stat(filepath.FromSlash(result.Image))
			assert.NoError(t, err)

			loaded, err := dotRepo.ByIDForOwner(ctx, dot.ID, owner.ID)
			require.NoError(t, err)
			require.NotNil(t, loaded.Image)
			assert.Equal(t, result.Image, *loaded.Image)
		})

		t.Run("ReplacementRemovesOldBlob", func(t *testing.T) {
			owner, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			dot, err := fixtures.CreateTestDot(owner.ID, "Swapped")
			require.NoError(t, err)

			first, err := imageFlow.AttachImage(ctx, owner.ID, dot.ID, bytes.NewReader(testPNG(t)), "photo.png", metadata)
			require.NoError(t, err)
			second, err := imageFlow.AttachImage(ctx, owner.ID, dot.ID, bytes.NewReader(testPNG(t)), "photo.png", metadata)
			require.NoError(t, err)
			assert.NotEqual(t, first.Image, second.Image)

			_, err = os.Stat(filepath.FromSlash(first.Image))
			assert.True(t, os.IsNotExist(err))
			_, err = os.Stat(filepath.FromSlash(second.Image))
			assert.NoError(t, err)
		})

		t.Run("OriginalExtensionPreserved", func(t *testing.T) {
			owner, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			dot, err := fixtures.CreateTestDot(owner.ID, "Renamed")
			require.NoError(t, err)

			// The stored blob keeps the uploaded filename's extension,
			// lower-cased, even when the decoded format would suggest
			// a different one.
			result, err := imageFlow.AttachImage(ctx, owner.ID, dot.ID, bytes.NewReader(testPNG(t)), "Holiday Shot.JPEG", metadata)
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(result.Image, ".jpeg"), "stored as %q", result.Image)
		})

		t.Run("MissingExtensionFallsBackToFormat", func(t *testing.T) {
			owner, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			dot, err := fixtures.CreateTestDot(owner.ID, "Bare name")
			require.NoError(t, err)

			result, err := imageFlow.AttachImage(ctx, owner.ID, dot.ID, bytes.NewReader(testPNG(t)), "snapshot", metadata)
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(result.Image, ".png"), "stored as %q", result.Image)
		})

		t.Run("NonImagePayloadRejected", func(t *testing.T) {
			owner, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			dot, err := fixtures.CreateTestDot(owner.ID, "Unchanged")
			require.NoError(t, err)

			_, err = imageFlow.AttachImage(ctx, owner.ID, dot.ID, strings.NewReader("definitely not an image"), "notes.txt", metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidImage(err))

			loaded, err := dotRepo.ByIDForOwner(ctx, dot.ID, owner.ID)
			require.NoError(t, err)
			assert.Nil(t, loaded.Image)
		})

		t.Run("ForeignDotLooksMissing", func(t *testing.T) {
			owner, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			other, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			dot, err := fixtures.CreateTestDot(owner.ID, "Private")
			require.NoError(t, err)

			_, err = imageFlow.AttachImage(ctx, other.ID, dot.ID, bytes.NewReader(testPNG(t)), "photo.png", metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsDotNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestDownloadImage(t *testing.T) {
	requirePostgres(t)

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		imageFlow := newTestImageFlow(t, testDB)
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")
		ctx := context.Background()

		t.Run("RoundTrip", func(t *testing.T) {
			owner, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			dot, err := fixtures.CreateTestDot(owner.ID, "Downloaded")
			require.NoError(t, err)

			payload := testPNG(t)
			_, err = imageFlow.AttachImage(ctx, owner.ID, dot.ID, bytes.NewReader(payload), "photo.png", metadata)
			require.NoError(t, err)

			filename, contentType, data, err := imageFlow.DownloadImage(ctx, owner.ID, dot.ID)
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(filename, ".png"))
			assert.Equal(t, "image/png", contentType)
			assert.Equal(t, payload, data)
		})

		t.Run("DotWithoutImage", func(t *testing.T) {
			owner, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			dot, err := fixtures.CreateTestDot(owner.ID, "Bare")
			require.NoError(t, err)

			_, _, _, err = imageFlow.DownloadImage(ctx, owner.ID, dot.ID)
			require.Error(t, err)
			assert.True(t, businessflow.IsDotNotFound(err))
		})

		t.Run("ForeignDotLooksMissing", func(t *testing.T) {
			owner, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			other, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			dot, err := fixtures.CreateTestDot(owner.ID, "Private")
			require.NoError(t, err)

			payload := testPNG(t)
			_, err = imageFlow.AttachImage(ctx, owner.ID, dot.ID, bytes.NewReader(payload), "photo.png", metadata)
			require.NoError(t, err)

			_, _, _, err = imageFlow.DownloadImage(ctx, other.ID, dot.ID)
			require.Error(t, err)
			assert.True(t, businessflow.IsDotNotFound(err))
		})

		t.Run("StoredPathOutsideUploadDirRejected", func(t *testing.T) {
			owner, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			dot, err := fixtures.CreateTestDot(owner.ID, "Tampered")
			require.NoError(t, err)

			dotRepo := repository.NewDotRepository(testDB.DB)

			// A sibling directory whose name merely shares the upload
			// directory as a string prefix must not pass the path check.
			sibling := "test_uploads/" + testDB.Name + "evil/x.png"
			require.NoError(t, dotRepo.UpdateImage(ctx, dot.ID, &sibling))

			_, _, _, err = imageFlow.DownloadImage(ctx, owner.ID, dot.ID)
			require.Error(t, err)

			traversal := "test_uploads/" + testDB.Name + "/../../etc/passwd"
			require.NoError(t, dotRepo.UpdateImage(ctx, dot.ID, &traversal))

			_, _, _, err = imageFlow.DownloadImage(ctx, owner.ID, dot.ID)
			require.Error(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}
