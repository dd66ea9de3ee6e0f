package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zemenay/techpulse-api/internal/event"
	"github.com/zemenay/techpulse-api/internal/model"
	"github.com/zemenay/techpulse-api/internal/repository/repotest"
	"github.com/zemenay/techpulse-api/internal/service"
	"go.uber.org/zap"
)

func newNotificationService(store *repotest.Store) *service.NotificationService {
	return service.NewNotificationService(store.Notifications(), store.Articles(), store.Comments(), store.Users(), zap.NewNop().Sugar())
}

func TestNotificationService_HandleEvent(t *testing.T) {
	t.Parallel()
	store := repotest.NewStore()
	svc := newNotificationService(store)
	ctx := context.Background()
	author := store.AddUser("alice", "alice@example.com")
	reader := store.AddUser("bob", "bob@example.com")
	article := store.AddArticle(author.ID, "Go tips", true)
	top := store.AddComment(article.ID, reader.ID, nil, "question")

	require.NoError(t, svc.HandleEvent(ctx, event.New(event.ArticleLiked, article.ID, reader.ID)))

	commented := event.New(event.ArticleCommented, article.ID, reader.ID)
	commented.CommentID = &top.ID
	commented.Excerpt = "question"
	require.NoError(t, svc.HandleEvent(ctx, commented))

	reply := store.AddComment(article.ID, author.ID, &top.ID, "answer")
	replied := event.New(event.ArticleCommented, article.ID, author.ID)
	replied.CommentID = &reply.ID
	replied.ParentID = &top.ID
	replied.Excerpt = "answer"
	require.NoError(t, svc.HandleEvent(ctx, replied))

	forAuthor := store.NotificationsFor(author.ID)
	require.Len(t, forAuthor, 2)
	assert.Equal(t, model.NotificationArticleLike, forAuthor[0].Type)
	assert.Contains(t, forAuthor[0].Content, "bob liked your article")
	assert.Equal(t, model.NotificationComment, forAuthor[1].Type)

	forReader := store.NotificationsFor(reader.ID)
	require.Len(t, forReader, 1)
	assert.Equal(t, model.NotificationReply, forReader[0].Type)
	assert.Equal(t, author.ID, forReader[0].ActorID)
}

func TestNotificationService_SkipsSelfAndDeleted(t *testing.T) {
	t.Parallel()
	store := repotest.NewStore()
	svc := newNotificationService(store)
	ctx := context.Background()
	author := store.AddUser("alice", "alice@example.com")
	article := store.AddArticle(author.ID, "Go tips", true)

	require.NoError(t, svc.HandleEvent(ctx, event.New(event.ArticleCommented, article.ID, author.ID)))
	require.NoError(t, svc.HandleEvent(ctx, event.New(event.ArticleLiked, 999, author.ID)))

	gone := event.New(event.ArticleCommented, article.ID, 42)
	gone.ParentID = ptr(uint(12345))
	require.NoError(t, svc.HandleEvent(ctx, gone))

	assert.Empty(t, store.NotificationsFor(author.ID))
}

func TestNotificationService_ListAndMarkRead(t *testing.T) {
	t.Parallel()
	store := repotest.NewStore()
	svc := newNotificationService(store)
	ctx := context.Background()
	author := store.AddUser("alice", "alice@example.com")
	reader := store.AddUser("bob", "bob@example.com")
	article := store.AddArticle(author.ID, "Go tips", true)
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.HandleEvent(ctx, event.New(event.ArticleLiked, article.ID, reader.ID)))
	}

	list, err := svc.List(ctx, user(author.ID), firstPage)
	require.NoError(t, err)
	require.Len(t, list.Data, 3)
	assert.Equal(t, int64(3), list.UnreadCount)
	assert.Equal(t, "bob", list.Data[0].Actor.Name)

	_, err = svc.MarkRead(ctx, list.Data[0].ID, user(reader.ID))
	assert.ErrorIs(t, err, service.ErrNotificationNotFound)

	resp, err := svc.MarkRead(ctx, list.Data[0].ID, user(author.ID))
	require.NoError(t, err)
	assert.True(t, resp.Success)

	list, err = svc.List(ctx, user(author.ID), firstPage)
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.UnreadCount)

	_, err = svc.List(ctx, nil, firstPage)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}

func TestNotificationService_InlineWithInteractions(t *testing.T) {
	t.Parallel()
	store := repotest.NewStore()
	notifier := newNotificationService(store)
	svc := service.NewInteractionService(store.Articles(), store.Comments(), store.Likes(), nil, event.NewInlinePublisher(notifier), zap.NewNop().Sugar())
	author := store.AddUser("alice", "alice@example.com")
	reader := store.AddUser("bob", "bob@example.com")
	article := store.AddArticle(author.ID, "Go tips", true)

	_, err := svc.PostComment(context.Background(), article.ID, user(reader.ID), "great read", nil)
	require.NoError(t, err)

	got := store.NotificationsFor(author.ID)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Content, "great read")
}
