package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"safebox/internal/db/dbtest"
	"safebox/internal/model"
)

func seedUser(t *testing.T, repo UserRepository, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func seedFile(t *testing.T, repo FileRepository, userID uint, name string, size int64) *model.File {
	t.Helper()
	file := &model.File{
		UserID:   userID,
		Filename: name,
		FilePath: fmt.Sprintf("/uploads/%d/%s", userID, name),
		FileType: "text/plain",
		FileSize: size,
	}
	require.NoError(t, repo.Create(context.Background(), file))
	return file
}

func TestUserRepository_UniqueEmail(t *testing.T) {
	db := dbtest.New(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	alice := seedUser(t, users, "alice@example.com")

	found, err := users.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)

	err = users.Create(ctx, &model.User{Email: "alice@example.com"})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	_, err = users.FindByID(ctx, 999)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestFileRepository_OwnershipScoping(t *testing.T) {
	db := dbtest.New(t)
	users := NewUserRepository(db)
	files := NewFileRepository(db)
	ctx := context.Background()

	alice := seedUser(t, users, "alice@example.com")
	bob := seedUser(t, users, "bob@example.com")
	f := seedFile(t, files, alice.ID, "a.txt", 10)

	_, err := files.FindByIDForUser(ctx, f.ID, bob.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	err = files.UpdateFavorite(ctx, f.ID, bob.ID, true)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	err = files.Delete(ctx, f.ID, bob.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	got, err := files.FindByIDForUser(ctx, f.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, got.Favorite)
}

func TestFileRepository_DuplicateFilenamePerUser(t *testing.T) {
	db := dbtest.New(t)
	users := NewUserRepository(db)
	files := NewFileRepository(db)
	ctx := context.Background()

	alice := seedUser(t, users, "alice@example.com")
	bob := seedUser(t, users, "bob@example.com")
	seedFile(t, files, alice.ID, "report.pdf", 1)

	exists, err := files.ExistsForUser(ctx, alice.ID, "report.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	err = files.Create(ctx, &model.File{UserID: alice.ID, Filename: "report.pdf", FilePath: "x", FileType: "application/pdf"})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	// same name under another owner is fine
	seedFile(t, files, bob.ID, "report.pdf", 1)
}

func TestFileRepository_ListAndFavorites(t *testing.T) {
	db := dbtest.New(t)
	users := NewUserRepository(db)
	files := NewFileRepository(db)
	ctx := context.Background()

	alice := seedUser(t, users, "alice@example.com")
	first := seedFile(t, files, alice.ID, "first.txt", 1)
	second := seedFile(t, files, alice.ID, "second.txt", 2)
	third := seedFile(t, files, alice.ID, "third.txt", 3)

	require.NoError(t, files.UpdateFavorite(ctx, second.ID, alice.ID, true))

	all, err := files.ListByUser(ctx, alice.ID, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uint{third.ID, second.ID, first.ID}, []uint{all[0].ID, all[1].ID, all[2].ID})

	favs, err := files.ListByUser(ctx, alice.ID, true)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, second.ID, favs[0].ID)
	assert.True(t, favs[0].Favorite)

	require.NoError(t, files.UpdateFavorite(ctx, second.ID, alice.ID, false))
	favs, err = files.ListByUser(ctx, alice.ID, true)
	require.NoError(t, err)
	assert.NotNil(t, favs)
	assert.Empty(t, favs)
}

func TestFileRepository_Stats(t *testing.T) {
	db := dbtest.New(t)
	users := NewUserRepository(db)
	files := NewFileRepository(db)
	ctx := context.Background()

	alice := seedUser(t, users, "alice@example.com")

	stats, err := files.Stats(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.FileCount)
	assert.Equal(t, int64(0), stats.TotalBytes)

	a := seedFile(t, files, alice.ID, "a.txt", 100)
	seedFile(t, files, alice.ID, "b.txt", 250)
	require.NoError(t, files.UpdateFavorite(ctx, a.ID, alice.ID, true))

	stats, err = files.Stats(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.FileCount)
	assert.Equal(t, int64(1), stats.FavoriteCount)
	assert.Equal(t, int64(350), stats.TotalBytes)
}

func TestFileRepository_WithTransaction(t *testing.T) {
	db := dbtest.New(t)
	users := NewUserRepository(db)
	files := NewFileRepository(db)
	activity := NewActivityRepository(db)
	ctx := context.Background()

	alice := seedUser(t, users, "alice@example.com")

	t.Run("rollback drops both rows", func(t *testing.T) {
		boom := errors.New("boom")
		err := files.WithTransaction(ctx, func(ctx context.Context, txFiles FileRepository, txActivity ActivityRepository) error {
			require.NoError(t, txFiles.Create(ctx, &model.File{UserID: alice.ID, Filename: "gone.txt", FilePath: "x", FileType: "text/plain"}))
			require.NoError(t, txActivity.Append(ctx, &model.ActivityLog{UserID: alice.ID, Action: "File uploaded: gone.txt"}))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		exists, err := files.ExistsForUser(ctx, alice.ID, "gone.txt")
		require.NoError(t, err)
		assert.False(t, exists)

		recent, err := activity.Recent(ctx, alice.ID, 10)
		require.NoError(t, err)
		assert.Empty(t, recent)
	})

	t.Run("failed activity insert keeps the file row", func(t *testing.T) {
		err := files.WithTransaction(ctx, func(ctx context.Context, txFiles FileRepository, txActivity ActivityRepository) error {
			require.NoError(t, txFiles.Create(ctx, &model.File{UserID: alice.ID, Filename: "kept.txt", FilePath: "x", FileType: "text/plain"}))
			// unknown user violates the foreign key
			assert.Error(t, txActivity.Append(ctx, &model.ActivityLog{UserID: 424242, Action: "orphan"}))
			return nil
		})
		require.NoError(t, err)

		exists, err := files.ExistsForUser(ctx, alice.ID, "kept.txt")
		require.NoError(t, err)
		assert.True(t, exists)
	})
}

func TestActivityRepository_RecentNewestFirstAndBounded(t *testing.T) {
	db := dbtest.New(t)
	users := NewUserRepository(db)
	activity := NewActivityRepository(db)
	ctx := context.Background()

	alice := seedUser(t, users, "alice@example.com")
	bob := seedUser(t, users, "bob@example.com")

	for i := 1; i <= 12; i++ {
		require.NoError(t, activity.Append(ctx, &model.ActivityLog{UserID: alice.ID, Action: fmt.Sprintf("action %d", i)}))
	}
	require.NoError(t, activity.Append(ctx, &model.ActivityLog{UserID: bob.ID, Action: "bob action"}))

	recent, err := activity.Recent(ctx, alice.ID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 10)
	assert.Equal(t, "action 12", recent[0].Action)
	assert.Equal(t, "action 3", recent[9].Action)
	for _, entry := range recent {
		assert.NotEqual(t, "bob action", entry.Action)
		assert.False(t, entry.Timestamp.IsZero())
	}
}
