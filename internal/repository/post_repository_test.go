package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giron-dev/giron-api/internal/models"
)

func TestCreatePost(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPostRepository(db)

	mock.ExpectExec("INSERT INTO posts").WillReturnResult(sqlmock.NewResult(1, 1))

	post := &models.Post{DomainName: "golang", AuthorID: "u1", Title: "Hello", Body: "World"}
	err := repo.Create(context.Background(), post)
	require.NoError(t, err)
	assert.NotEmpty(t, post.ID)
	assert.False(t, post.ModifiedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPostsWithFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPostRepository(db)

	now := time.Now()
	listRows := sqlmock.NewRows([]string{"id", "domain_name", "author_id", "author", "title", "body", "like_count", "created_at", "modified_at"}).
		AddRow("p1", "golang", "u1", "alice", "Hello", "World", 3, now, now)
	mock.ExpectQuery("SELECT p.id, p.domain_name, .+ ORDER BY like_count DESC").
		WithArgs("alice", "golang").
		WillReturnRows(listRows)

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("alice", "golang").
		WillReturnRows(countRows)

	posts, total, err := repo.List(context.Background(), models.PostFilter{Author: "alice", Domain: "Golang"})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, 3, posts[0].LikeCount)
	assert.Equal(t, "alice", posts[0].Author)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostLikeLifecycle(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPostRepository(db)

	existsRows := sqlmock.NewRows([]string{"exists"}).AddRow(false)
	mock.ExpectQuery("SELECT EXISTS").WithArgs("p1", "u1").WillReturnRows(existsRows)
	mock.ExpectExec("INSERT INTO likes").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM likes").WillReturnResult(sqlmock.NewResult(0, 1))

	exists, err := repo.LikeExists(context.Background(), "p1", "u1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.AddLike(context.Background(), "p1", "u1"))
	require.NoError(t, repo.RemoveLike(context.Background(), "p1", "u1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
