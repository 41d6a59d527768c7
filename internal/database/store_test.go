package database

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/heinwithsmile/social-media-platform-backend-api/internal/config"
	"github.com/heinwithsmile/social-media-platform-backend-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	cfg := &config.Config{}
	cfg.Database.Type = "sqlite"
	cfg.Database.Path = filepath.Join(t.TempDir(), "test.db")
	cfg.Database.WALMode = true
	cfg.Database.MaxRetries = 1
	cfg.Database.RetryDelay = 0

	store, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestUser(t *testing.T, store *Store, name, email string) *models.User {
	t.Helper()

	user, err := models.NewUser(name, email, "longpass1")
	require.NoError(t, err)
	require.NoError(t, store.CreateUser(user))
	return user
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	store := newTestStore(t)

	first, err := models.NewUser("Ann", "a@x.com", "longpass1")
	require.NoError(t, err)
	require.NoError(t, store.CreateUser(first))
	assert.NotZero(t, first.ID)

	second, err := models.NewUser("Other Ann", "a@x.com", "longpass2")
	require.NoError(t, err)
	assert.ErrorIs(t, store.CreateUser(second), ErrEmailTaken)
}

func TestConcurrentRegistrationSameEmail(t *testing.T) {
	store := newTestStore(t)

	const workers = 8
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user, err := models.NewUser("Ann", "race@x.com", "longpass1")
			if err != nil {
				results <- err
				return
			}
			results <- store.CreateUser(user)
		}()
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case err == ErrEmailTaken:
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// The unique constraint picks exactly one winner
	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)
}

func TestGetUserByEmail(t *testing.T) {
	store := newTestStore(t)
	user := newTestUser(t, store, "Ann", "a@x.com")

	got, err := store.GetUserByEmail("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Ann", got.Name)
	assert.True(t, got.ValidatePassword("longpass1"))

	_, err = store.GetUserByEmail("missing@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostOwnership(t *testing.T) {
	store := newTestStore(t)
	owner := newTestUser(t, store, "Ann", "a@x.com")
	intruder := newTestUser(t, store, "Bob", "b@x.com")

	now := time.Now()
	post := &models.Post{UserID: owner.ID, Content: "hello", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.CreatePost(post))

	// Owner sees the post through the scoped lookup
	got, err := store.GetPostOwned(owner.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)

	// A foreign owner gets the same answer as for a missing post
	_, err = store.GetPostOwned(intruder.ID, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetPostOwned(owner.ID, post.ID+999)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deletes are scoped the same way
	assert.ErrorIs(t, store.DeletePost(intruder.ID, post.ID), ErrNotFound)
	require.NoError(t, store.DeletePost(owner.ID, post.ID))
	_, err = store.GetPost(post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPostsIsGlobal(t *testing.T) {
	store := newTestStore(t)
	ann := newTestUser(t, store, "Ann", "a@x.com")
	bob := newTestUser(t, store, "Bob", "b@x.com")

	now := time.Now()
	require.NoError(t, store.CreatePost(&models.Post{UserID: ann.ID, Content: "from ann", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, store.CreatePost(&models.Post{UserID: bob.ID, Content: "from bob", CreatedAt: now.Add(time.Second), UpdatedAt: now.Add(time.Second)}))

	posts, err := store.ListPosts()
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "from bob", posts[0].Content)
	require.NotNil(t, posts[0].User)
	assert.Equal(t, "Bob", posts[0].User.Name)

	mine, err := store.ListPostsByUser(ann.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "from ann", mine[0].Content)
}

func TestCommentOwnership(t *testing.T) {
	store := newTestStore(t)
	ann := newTestUser(t, store, "Ann", "a@x.com")
	bob := newTestUser(t, store, "Bob", "b@x.com")

	now := time.Now()
	post := &models.Post{UserID: ann.ID, Content: "hello", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.CreatePost(post))

	comment := &models.Comment{UserID: bob.ID, PostID: post.ID, Content: "hi", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.CreateComment(comment))

	// Anyone can read the post's comments
	comments, err := store.ListCommentsByPost(post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)

	// Only the comment's owner can delete it
	assert.ErrorIs(t, store.DeleteComment(ann.ID, comment.ID), ErrNotFound)
	require.NoError(t, store.DeleteComment(bob.ID, comment.ID))
}

func TestUpsertReaction(t *testing.T) {
	store := newTestStore(t)
	ann := newTestUser(t, store, "Ann", "a@x.com")

	now := time.Now()
	post := &models.Post{UserID: ann.ID, Content: "hello", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.CreatePost(post))

	first := &models.Reaction{UserID: ann.ID, PostID: post.ID, Type: "like", CreatedAt: now}
	require.NoError(t, store.UpsertReaction(first))
	assert.NotZero(t, first.ID)

	// Reacting again replaces the type instead of adding a row
	second := &models.Reaction{UserID: ann.ID, PostID: post.ID, Type: "love", CreatedAt: now}
	require.NoError(t, store.UpsertReaction(second))
	assert.Equal(t, first.ID, second.ID)

	reactions, err := store.ListReactionsByPost(post.ID)
	require.NoError(t, err)
	require.Len(t, reactions, 1)
	assert.Equal(t, "love", reactions[0].Type)
}

func TestCountUserActivity(t *testing.T) {
	store := newTestStore(t)
	ann := newTestUser(t, store, "Ann", "a@x.com")
	bob := newTestUser(t, store, "Bob", "b@x.com")

	now := time.Now()
	post := &models.Post{UserID: ann.ID, Content: "hello", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.CreatePost(post))
	require.NoError(t, store.CreateComment(&models.Comment{UserID: ann.ID, PostID: post.ID, Content: "self", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, store.CreateComment(&models.Comment{UserID: bob.ID, PostID: post.ID, Content: "other", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, store.UpsertReaction(&models.Reaction{UserID: bob.ID, PostID: post.ID, Type: "like", CreatedAt: now}))

	activity, err := store.CountUserActivity(ann.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), activity.PostCount)
	assert.Equal(t, int64(1), activity.CommentCount)
	assert.Equal(t, int64(0), activity.ReactionCount)

	activity, err = store.CountUserActivity(bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), activity.PostCount)
	assert.Equal(t, int64(1), activity.CommentCount)
	assert.Equal(t, int64(1), activity.ReactionCount)
}

func TestRevocations(t *testing.T) {
	store := newTestStore(t)

	revoked, err := store.IsTokenRevoked("jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.RevokeToken("jti-1", 1, time.Now().Add(time.Hour)))
	revoked, err = store.IsTokenRevoked("jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Revoking the same JTI twice is a no-op
	require.NoError(t, store.RevokeToken("jti-1", 1, time.Now().Add(time.Hour)))

	// Cleanup prunes only entries past their token's natural expiry
	require.NoError(t, store.RevokeToken("jti-expired", 1, time.Now().Add(-time.Minute)))
	require.NoError(t, store.CleanupExpiredRevocations())

	revoked, err = store.IsTokenRevoked("jti-expired")
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = store.IsTokenRevoked("jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestMigrateIdempotent(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Type = "sqlite"
	cfg.Database.Path = filepath.Join(t.TempDir(), "test.db")
	cfg.Database.WALMode = true
	cfg.Database.MaxRetries = 1

	store, err := Open(cfg)
	require.NoError(t, err)
	newTestUser(t, store, "Ann", "a@x.com")
	require.NoError(t, store.Close())

	// Reopening the same file must not re-run or break migrations
	store, err = Open(cfg)
	require.NoError(t, err)
	defer store.Close()

	user, err := store.GetUserByEmail("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)
}
