package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"linguamentor/backend/internal/models"
)

func TestDuplicateKeyError(t *testing.T) {
	cause := errors.New(`E11000 duplicate key error collection: linguamentor.users index: email_unique dup key`)
	err := &DuplicateKeyError{Field: duplicateField(cause), Err: cause}

	assert.Equal(t, "email", err.Field)
	assert.True(t, errors.Is(err, ErrDuplicateKey))
	assert.True(t, errors.Is(fmt.Errorf("wrapped: %w", err), ErrDuplicateKey))
	assert.Equal(t, "duplicate email", err.Error())

	assert.Equal(t, "username", duplicateField(errors.New("index: username_unique dup key")))
	assert.Equal(t, "", duplicateField(errors.New("index: other dup key")))
}

// testDatabase connects to MONGODB_TEST_URL and returns a throwaway database.
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()

	url := os.Getenv("MONGODB_TEST_URL")
	if url == "" {
		t.Skip("MONGODB_TEST_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	require.NoError(t, err)

	db := client.Database(fmt.Sprintf("linguamentor_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	_, err = db.Collection(models.UsersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName(models.UserEmailIndex)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName(models.UserUsernameIndex)},
	})
	require.NoError(t, err)

	return db
}

func TestUserRepositoryIntegration(t *testing.T) {
	db := testDatabase(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Email: "ana@example.com", Username: "ana", FullName: "Ana", HashedPassword: "x", IsActive: true}
	require.NoError(t, repo.Create(ctx, user))
	require.False(t, user.ID.IsZero())

	found, err := repo.FindByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	err = repo.Create(ctx, &models.User{Email: "ana@example.com", Username: "other"})
	var dup *DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)

	require.NoError(t, repo.Delete(ctx, user.ID))
	assert.ErrorIs(t, repo.Delete(ctx, user.ID), ErrNotFound)

	_, err = repo.FindByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEvaluationRepositoryIntegration(t *testing.T) {
	db := testDatabase(t)
	repo := NewEvaluationRepository(db)
	ctx := context.Background()

	msg := models.ResultMessage{OriginalName: "sample.wav", Transcription: "Hello world", Metadata: models.ResultMetadata{Size: 2048}}
	first := &models.Evaluation{ResultMessage: msg, CreatedAt: time.Now().UTC()}
	second := &models.Evaluation{ResultMessage: msg, CreatedAt: time.Now().UTC()}

	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	assert.NotEqual(t, first.ID, second.ID)

	all, err := repo.FindAll(ctx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", got.Transcription)
	assert.Equal(t, int64(2048), got.Metadata.Size)
}
