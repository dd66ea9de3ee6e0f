package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zemenay/techpulse-api/internal/event"
	"github.com/zemenay/techpulse-api/internal/service"
	"github.com/zemenay/techpulse-api/pkg/auth"
	"github.com/zemenay/techpulse-api/pkg/pagination"
)

var firstPage = pagination.Params{Page: 1, Limit: 10}

func TestGetInteractions_EmptyArticle(t *testing.T) {
	t.Parallel()
	env := newInteractionEnv()
	author := env.store.AddUser("alice", "alice@example.com")
	article := env.store.AddArticle(author.ID, "Go tips", true)

	resp, err := env.svc.GetInteractions(context.Background(), article.ID, firstPage, nil)
	require.NoError(t, err)

	assert.NotNil(t, resp.Comments.Data)
	assert.Empty(t, resp.Comments.Data)
	assert.Equal(t, int64(0), resp.Comments.Pagination.Total)
	assert.Equal(t, 0, resp.Comments.Pagination.TotalPages)
	assert.Equal(t, int64(0), resp.Likes.Count)
	assert.False(t, resp.Likes.UserLiked)
}

func TestGetInteractions_ArticleNotFound(t *testing.T) {
	t.Parallel()
	env := newInteractionEnv()

	_, err := env.svc.GetInteractions(context.Background(), 404, firstPage, nil)
	assert.ErrorIs(t, err, service.ErrArticleNotFound)
}

func TestInteractions_UnpublishedVisibleOnlyToAuthor(t *testing.T) {
	t.Parallel()
	env := newInteractionEnv()
	ctx := context.Background()
	author := env.store.AddUser("alice", "alice@example.com")
	reader := env.store.AddUser("bob", "bob@example.com")
	draft := env.store.AddArticle(author.ID, "Draft", false)

	tests := []struct {
		name    string
		caller  *auth.Identity
		wantErr error
	}{
		{name: "匿名访客", caller: nil, wantErr: service.ErrArticleNotFound},
		{name: "其他用户", caller: user(reader.ID), wantErr: service.ErrArticleNotFound},
		{name: "管理员也按不存在处理", caller: admin(reader.ID), wantErr: service.ErrArticleNotFound},
		{name: "作者本人", caller: user(author.ID)},
	}

	for _, tt := range tests {
		_, err := env.svc.GetInteractions(ctx, draft.ID, firstPage, tt.caller)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr, tt.name)
		} else {
			assert.NoError(t, err, tt.name)
		}
	}

	// 非作者无法给草稿点赞
	_, err := env.svc.ToggleLike(ctx, draft.ID, user(reader.ID))
	assert.ErrorIs(t, err, service.ErrArticleNotFound)
	assert.Equal(t, 0, env.store.LikeCount(draft.ID))

	// 作者可以
	resp, err := env.svc.ToggleLike(ctx, draft.ID, user(author.ID))
	require.NoError(t, err)
	assert.True(t, resp.Liked)
	assert.Empty(t, env.publisher.Events())
}

func TestGetInteractions_Pagination(t *testing.T) {
	t.Parallel()
	env := newInteractionEnv()
	author := env.store.AddUser("alice", "alice@example.com")
	article := env.store.AddArticle(author.ID, "Go tips", true)
	for i := 0; i < 7; i++ {
		env.store.AddComment(article.ID, author.ID, nil, "comment")
	}

	tests := []struct {
		limit     int
		page      int
		wantLen   int
		wantPages int
	}{
		{limit: 3, page: 1, wantLen: 3, wantPages: 3},
		{limit: 3, page: 3, wantLen: 1, wantPages: 3},
		{limit: 7, page: 1, wantLen: 7, wantPages: 1},
		{limit: 10, page: 2, wantLen: 0, wantPages: 1},
		{limit: 1, page: 5, wantLen: 1, wantPages: 7},
	}
	for _, tt := range tests {
		resp, err := env.svc.GetInteractions(context.Background(), article.ID, pagination.Params{Page: tt.page, Limit: tt.limit}, nil)
		require.NoError(t, err)
		assert.Len(t, resp.Comments.Data, tt.wantLen, "limit=%d page=%d", tt.limit, tt.page)
		assert.LessOrEqual(t, len(resp.Comments.Data), tt.limit)
		assert.Equal(t, tt.wantPages, resp.Comments.Pagination.TotalPages)
		assert.Equal(t, int64(7), resp.Comments.Pagination.Total)
	}
}

func TestGetInteractions_ReplyCountsAndOrder(t *testing.T) {
	t.Parallel()
	env := newInteractionEnv()
	author := env.store.AddUser("alice", "alice@example.com")
	reader := env.store.AddUser("bob", "bob@example.com")
	article := env.store.AddArticle(author.ID, "Go tips", true)

	older := env.store.AddComment(article.ID, reader.ID, nil, "first")
	newer := env.store.AddComment(article.ID, reader.ID, nil, "second")
	env.store.AddComment(article.ID, author.ID, &older.ID, "reply one")
	env.store.AddComment(article.ID, author.ID, &older.ID, "reply two")

	resp, err := env.svc.GetInteractions(context.Background(), article.ID, firstPage, nil)
	require.NoError(t, err)

	require.Len(t, resp.Comments.Data, 2)
	assert.Equal(t, newer.ID, resp.Comments.Data[0].ID)
	assert.Equal(t, int64(0), resp.Comments.Data[0].Count.Replies)
	assert.Equal(t, older.ID, resp.Comments.Data[1].ID)
	assert.Equal(t, int64(2), resp.Comments.Data[1].Count.Replies)
	assert.Equal(t, reader.ID, resp.Comments.Data[1].Author.ID)
	assert.Equal(t, int64(2), resp.Comments.Pagination.Total)
}

func TestGetInteractions_AnyReadFailureFailsWhole(t *testing.T) {
	t.Parallel()
	for _, op := range []string{"articles.GetByID", "comments.ListTopLevel", "comments.CountTopLevel", "likes.Count", "likes.Exists"} {
		env := newInteractionEnv()
		author := env.store.AddUser("alice", "alice@example.com")
		article := env.store.AddArticle(author.ID, "Go tips", true)
		boom := errors.New("connection reset")
		env.store.FailOn(op, boom)

		_, err := env.svc.GetInteractions(context.Background(), article.ID, firstPage, user(author.ID))
		assert.ErrorIs(t, err, boom, op)
	}
}

func TestToggleLike_TwiceFlipsState(t *testing.T) {
	t.Parallel()
	env := newInteractionEnv()
	ctx := context.Background()
	author := env.store.AddUser("alice", "alice@example.com")
	reader := env.store.AddUser("bob", "bob@example.com")
	article := env.store.AddArticle(author.ID, "Go tips", true)

	resp, err := env.svc.ToggleLike(ctx, article.ID, user(reader.ID))
	require.NoError(t, err)
	assert.True(t, resp.Liked)
	assert.Equal(t, 1, env.store.LikeCount(article.ID))

	resp, err = env.svc.ToggleLike(ctx, article.ID, user(reader.ID))
	require.NoError(t, err)
	assert.False(t, resp.Liked)
	assert.Equal(t, 0, env.store.LikeCount(article.ID))

	// 仅点赞时发布事件
	events := env.publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, event.ArticleLiked, events[0].Type)
	assert.Equal(t, reader.ID, events[0].ActorID)
}

func TestToggleLike_OwnArticleDoesNotNotify(t *testing.T) {
	t.Parallel()
	env := newInteractionEnv()
	author := env.store.AddUser("alice", "alice@example.com")
	article := env.store.AddArticle(author.ID, "Go tips", true)

	resp, err := env.svc.ToggleLike(context.Background(), article.ID, user(author.ID))
	require.NoError(t, err)
	assert.True(t, resp.Liked)
	assert.Empty(t, env.publisher.Events())
}

func TestToggleLike_Errors(t *testing.T) {
	t.Parallel()
	env := newInteractionEnv()
	author := env.store.AddUser("alice", "alice@example.com")
	article := env.store.AddArticle(author.ID, "Go tips", true)

	_, err := env.svc.ToggleLike(context.Background(), article.ID, nil)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)

	_, err = env.svc.ToggleLike(context.Background(), 999, user(author.ID))
	assert.ErrorIs(t, err, service.ErrArticleNotFound)
}

func TestToggleLike_PublishFailureDoesNotFailRequest(t *testing.T) {
	t.Parallel()
	env := newInteractionEnv()
	env.publisher.err = errors.New("broker down")
	author := env.store.AddUser("alice", "alice@example.com")
	reader := env.store.AddUser("bob", "bob@example.com")
	article := env.store.AddArticle(author.ID, "Go tips", true)

	resp, err := env.svc.ToggleLike(context.Background(), article.ID, user(reader.ID))
	require.NoError(t, err)
	assert.True(t, resp.Liked)
}

func TestPostComment_UnpublishedArticle(t *testing.T) {
	t.Parallel()
	env := newInteractionEnv()
	author := env.store.AddUser("alice", "alice@example.com")
	draft := env.store.AddArticle(author.ID, "Draft", false)

	_, err := env.svc.PostComment(context.Background(), draft.ID, user(author.ID), "hello", nil)
	assert.ErrorIs(t, err, service.ErrArticleUnpublished)
	assert.Equal(t, 0, env.store.CommentCount(draft.ID))
	assert.Empty(t, env.publisher.Events())
}

func TestPostComment_ContentValidation(t *testing.T) {
	t.Parallel()
	env := newInteractionEnv()
	author := env.store.AddUser("alice", "alice@example.com")
	article := env.store.AddArticle(author.ID, "Go tips", true)

	tests := map[string]error{
		"":                        service.ErrEmptyContent,
		"   \n\t":                 service.ErrEmptyContent,
		strings.Repeat("a", 2001): service.ErrContentTooLong,
	}
	for content, want := range tests {
		_, err := env.svc.PostComment(context.Background(), article.ID, user(author.ID), content, nil)
		assert.ErrorIs(t, err, want)
	}
	assert.Equal(t, 0, env.store.CommentCount(article.ID))
}

func TestPostComment_StoresRawFilteredText(t *testing.T) {
	t.Parallel()
	env := newInteractionEnv("spam")
	ctx := context.Background()
	author := env.store.AddUser("alice", "alice@example.com")
	article := env.store.AddArticle(author.ID, "Go tips", true)

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "引号与符号原样往返", content: `it's "fine" & x<y`, want: `it's "fine" & x<y`},
		{name: "HTML标签不被剥离", content: "see <script>x</script> here", want: "see <script>x</script> here"},
		{name: "敏感词替换并去除首尾空白", content: "  buy spam now ", want: "buy **** now"},
	}

	for _, tt := range tests {
		resp, err := env.svc.PostComment(ctx, article.ID, user(author.ID), tt.content, nil)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, resp.Content, tt.name)
		assert.Nil(t, resp.ParentID, tt.name)
		assert.Equal(t, author.ID, resp.Author.ID, tt.name)

		// 存储内容与返回一致
		stored, err := env.store.Comments().GetByID(ctx, resp.ID)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, stored.Content, tt.name)
	}
}

func TestPostComment_Replies(t *testing.T) {
	t.Parallel()
	env := newInteractionEnv()
	ctx := context.Background()
	author := env.store.AddUser("alice", "alice@example.com")
	reader := env.store.AddUser("bob", "bob@example.com")
	article := env.store.AddArticle(author.ID, "Go tips", true)
	other := env.store.AddArticle(author.ID, "Other", true)
	top := env.store.AddComment(article.ID, reader.ID, nil, "question")

	reply, err := env.svc.PostComment(ctx, article.ID, user(author.ID), "answer", &top.ID)
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, top.ID, *reply.ParentID)

	// 回复的回复挂到顶级评论下
	nested, err := env.svc.PostComment(ctx, article.ID, user(reader.ID), "thanks", &reply.ID)
	require.NoError(t, err)
	require.NotNil(t, nested.ParentID)
	assert.Equal(t, top.ID, *nested.ParentID)

	_, err = env.svc.PostComment(ctx, other.ID, user(reader.ID), "wrong article", &top.ID)
	assert.ErrorIs(t, err, service.ErrInvalidParent)

	_, err = env.svc.PostComment(ctx, article.ID, user(reader.ID), "missing", ptr(uint(9999)))
	assert.ErrorIs(t, err, service.ErrInvalidParent)

	events := env.publisher.Events()
	require.Len(t, events, 2)
	assert.Equal(t, event.ArticleCommented, events[1].Type)
	require.NotNil(t, events[1].ParentID)
	assert.Equal(t, top.ID, *events[1].ParentID)
	assert.Equal(t, "thanks", events[1].Excerpt)
}

func TestPostComment_RequiresCaller(t *testing.T) {
	t.Parallel()
	env := newInteractionEnv()
	author := env.store.AddUser("alice", "alice@example.com")
	article := env.store.AddArticle(author.ID, "Go tips", true)

	_, err := env.svc.PostComment(context.Background(), article.ID, nil, "hi", nil)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
	_, err = env.svc.PostComment(context.Background(), 999, user(author.ID), "hi", nil)
	assert.ErrorIs(t, err, service.ErrArticleNotFound)
}

func TestDeleteComment_CascadesReplies(t *testing.T) {
	t.Parallel()
	env := newInteractionEnv()
	author := env.store.AddUser("alice", "alice@example.com")
	reader := env.store.AddUser("bob", "bob@example.com")
	article := env.store.AddArticle(author.ID, "Go tips", true)
	top := env.store.AddComment(article.ID, reader.ID, nil, "question")
	env.store.AddComment(article.ID, author.ID, &top.ID, "answer")
	env.store.AddComment(article.ID, reader.ID, &top.ID, "thanks")
	keep := env.store.AddComment(article.ID, author.ID, nil, "unrelated")

	resp, err := env.svc.DeleteComment(context.Background(), article.ID, top.ID, user(reader.ID))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, env.store.CommentCount(article.ID))

	page, err := env.svc.GetInteractions(context.Background(), article.ID, firstPage, nil)
	require.NoError(t, err)
	require.Len(t, page.Comments.Data, 1)
	assert.Equal(t, keep.ID, page.Comments.Data[0].ID)
}

func TestDeleteComment_ForbiddenLeavesStorage(t *testing.T) {
	t.Parallel()
	env := newInteractionEnv()
	author := env.store.AddUser("alice", "alice@example.com")
	reader := env.store.AddUser("bob", "bob@example.com")
	article := env.store.AddArticle(author.ID, "Go tips", true)
	top := env.store.AddComment(article.ID, reader.ID, nil, "question")
	env.store.AddComment(article.ID, reader.ID, &top.ID, "follow-up")

	_, err := env.svc.DeleteComment(context.Background(), article.ID, top.ID, user(author.ID))
	assert.ErrorIs(t, err, service.ErrForbidden)
	assert.Equal(t, 2, env.store.CommentCount(article.ID))
}

func TestDeleteComment_AdminAndNotFound(t *testing.T) {
	t.Parallel()
	env := newInteractionEnv()
	ctx := context.Background()
	author := env.store.AddUser("alice", "alice@example.com")
	mod := env.store.AddUser("mod", "mod@example.com")
	article := env.store.AddArticle(author.ID, "Go tips", true)
	other := env.store.AddArticle(author.ID, "Other", true)
	top := env.store.AddComment(article.ID, author.ID, nil, "question")

	_, err := env.svc.DeleteComment(ctx, other.ID, top.ID, user(author.ID))
	assert.ErrorIs(t, err, service.ErrCommentNotFound)

	_, err = env.svc.DeleteComment(ctx, article.ID, 9999, user(author.ID))
	assert.ErrorIs(t, err, service.ErrCommentNotFound)

	_, err = env.svc.DeleteComment(ctx, article.ID, top.ID, nil)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)

	_, err = env.svc.DeleteComment(ctx, article.ID, top.ID, admin(mod.ID))
	require.NoError(t, err)
	assert.Equal(t, 0, env.store.CommentCount(article.ID))
}

func TestInteractions_EndToEnd(t *testing.T) {
	t.Parallel()
	env := newInteractionEnv()
	ctx := context.Background()
	author := env.store.AddUser("alice", "alice@example.com")
	u := env.store.AddUser("bob", "bob@example.com")
	article := env.store.AddArticle(author.ID, "Go tips", true)

	liked, err := env.svc.ToggleLike(ctx, article.ID, user(u.ID))
	require.NoError(t, err)
	require.True(t, liked.Liked)

	mine, err := env.svc.GetInteractions(ctx, article.ID, firstPage, user(u.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.Likes.Count)
	assert.True(t, mine.Likes.UserLiked)

	anon, err := env.svc.GetInteractions(ctx, article.ID, firstPage, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), anon.Likes.Count)
	assert.False(t, anon.Likes.UserLiked)

	_, err = env.svc.PostComment(ctx, article.ID, user(u.ID), "nice post", nil)
	require.NoError(t, err)

	page, err := env.svc.GetInteractions(ctx, article.ID, firstPage, nil)
	require.NoError(t, err)
	require.Len(t, page.Comments.Data, 1)
	assert.Equal(t, u.ID, page.Comments.Data[0].Author.ID)
	assert.Equal(t, "nice post", page.Comments.Data[0].Content)
	assert.Equal(t, int64(0), page.Comments.Data[0].Count.Replies)
	assert.Equal(t, int64(1), page.Comments.Pagination.Total)
}
