package gormrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zemenay/techpulse-api/internal/repository"
	"github.com/zemenay/techpulse-api/internal/repository/gormrepo"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

/* ─────────────────────────── 辅助函数 ─────────────────────────── */

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

/* ─────────────────────────── 点赞 ─────────────────────────── */

func TestLikeRepo_Toggle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		deleted   int64
		wantLiked bool
	}{
		{name: "existing like is removed", deleted: 1, wantLiked: false},
		{name: "missing like is created", deleted: 0, wantLiked: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			db, mock := newMockDB(t)

			mock.ExpectBegin()
			mock.ExpectExec("DELETE FROM `article_likes`").
				WithArgs(1, 2).
				WillReturnResult(sqlmock.NewResult(0, tt.deleted))
			if tt.deleted == 0 {
				mock.ExpectExec("INSERT INTO `article_likes`").
					WillReturnResult(sqlmock.NewResult(9, 1))
			}
			mock.ExpectCommit()

			liked, err := gormrepo.NewLikeRepo(db).Toggle(context.Background(), 1, 2)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLiked, liked)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLikeRepo_CountAndExists(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	repo := gormrepo.NewLikeRepo(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `article_likes`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `article_likes`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	count, err := repo.Count(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	ok, err := repo.Exists(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

/* ─────────────────────────── 文章 ─────────────────────────── */

func TestArticleRepo_IncrementViews(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "published", affected: 1, want: true},
		{name: "unpublished", affected: 0, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			db, mock := newMockDB(t)

			mock.ExpectExec("UPDATE `articles` SET `views`=views \\+ \\?").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			got, err := gormrepo.NewArticleRepo(db).IncrementViews(context.Background(), 3)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestArticleRepo_GetByID_NotFound(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `articles`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := gormrepo.NewArticleRepo(db).GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepo_Update_FieldsOnly(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `articles` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := gormrepo.NewArticleRepo(db).Update(context.Background(), 5, repository.ArticleUpdate{
		Fields: map[string]interface{}{"title": "new title"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

/* ─────────────────────────── 评论 ─────────────────────────── */

func TestCommentRepo_ListTopLevel(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery("SELECT \\* FROM `comments` WHERE article_id = \\? AND parent_id IS NULL").
		WillReturnRows(sqlmock.NewRows([]string{"id", "content", "article_id", "author_id", "parent_id", "created_at", "updated_at"}).
			AddRow(11, "second", 1, 7, nil, now, now).
			AddRow(10, "first", 1, 7, nil, now.Add(-time.Hour), now))
	mock.ExpectQuery("SELECT \\* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow(7, "Abebe", "abebe@example.com"))
	mock.ExpectQuery("SELECT parent_id, COUNT\\(\\*\\) AS count FROM `comments`").
		WillReturnRows(sqlmock.NewRows([]string{"parent_id", "count"}).AddRow(10, 2))

	comments, err := gormrepo.NewCommentRepo(db).ListTopLevel(context.Background(), 1, 0, 10)
	require.NoError(t, err)
	require.Len(t, comments, 2)

	gotCounts := []int64{comments[0].ReplyCount, comments[1].ReplyCount}
	if diff := cmp.Diff([]int64{0, 2}, gotCounts); diff != "" {
		t.Fatalf("reply counts mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Abebe", comments[0].Author.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepo_ListTopLevel_Empty(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `comments`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	comments, err := gormrepo.NewCommentRepo(db).ListTopLevel(context.Background(), 1, 0, 10)
	require.NoError(t, err)
	assert.NotNil(t, comments)
	assert.Empty(t, comments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepo_CountTopLevel(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `comments` WHERE article_id = \\? AND parent_id IS NULL").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	total, err := gormrepo.NewCommentRepo(db).CountTopLevel(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestCommentRepo_DeleteWithReplies(t *testing.T) {
	t.Parallel()

	t.Run("deletes replies then comment", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM `comments` WHERE parent_id = \\?").
			WithArgs(10).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("DELETE FROM `comments` WHERE `comments`.`id` = \\?").
			WithArgs(10).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		deleted, err := gormrepo.NewCommentRepo(db).DeleteWithReplies(context.Background(), 10)
		require.NoError(t, err)
		assert.Equal(t, int64(3), deleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing comment rolls back", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM `comments` WHERE parent_id").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM `comments` WHERE `comments`.`id`").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := gormrepo.NewCommentRepo(db).DeleteWithReplies(context.Background(), 10)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

/* ─────────────────────────── 通知 ─────────────────────────── */

func TestNotificationRepo_MarkRead_NotOwned(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `notifications`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := gormrepo.NewNotificationRepo(db).MarkRead(context.Background(), 1, 99)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
