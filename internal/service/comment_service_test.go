package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lovemyfam/common-room-api/internal/dto"
	"github.com/lovemyfam/common-room-api/internal/models"
)

type stubCommentRepo struct {
	comments map[uint]models.Comment
	nextID   uint
}

func newStubCommentRepo() *stubCommentRepo {
	return &stubCommentRepo{comments: make(map[uint]models.Comment), nextID: 1}
}

func (s *stubCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	comment.ID = s.nextID
	s.nextID++
	comment.CreatedAt = time.Now()
	s.comments[comment.ID] = *comment
	return nil
}

func (s *stubCommentRepo) GetByID(ctx context.Context, id uint) (models.Comment, error) {
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, gorm.ErrRecordNotFound
	}
	return comment, nil
}

func (s *stubCommentRepo) Update(ctx context.Context, comment *models.Comment) error {
	s.comments[comment.ID] = *comment
	return nil
}

func (s *stubCommentRepo) DeleteSubtree(ctx context.Context, id uint) error {
	if _, ok := s.comments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	frontier := []uint{id}
	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]
		delete(s.comments, current)
		for childID, child := range s.comments {
			if child.ParentID != nil && *child.ParentID == current {
				frontier = append(frontier, childID)
			}
		}
	}
	return nil
}

func (s *stubCommentRepo) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var out []models.Comment
	for _, comment := range s.comments {
		if comment.PostID == postID {
			out = append(out, comment)
		}
	}
	return out, nil
}

func (s *stubCommentRepo) ToggleLike(ctx context.Context, commentID, userID uint) (bool, error) {
	if _, ok := s.comments[commentID]; !ok {
		return false, gorm.ErrRecordNotFound
	}
	return true, nil
}

func newCommentServiceForTest(repo *stubCommentRepo, posts *stubPostRepo, users *stubUserRepo, notifier *stubNotifier) CommentService {
	return NewCommentService(repo, posts, users, notifier, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
}

func TestCommentServiceRejectsCrossPostReply(t *testing.T) {
	comments := newStubCommentRepo()
	posts := newStubPostRepo()
	users := newStubUserRepo()
	svc := newCommentServiceForTest(comments, posts, users, &stubNotifier{})

	author := models.User{Email: "a@family.test", FirstName: "A", LastName: "B", Position: "Cousin"}
	require.NoError(t, users.Create(context.Background(), &author))

	posts.posts[1] = models.Post{ID: 1, AuthorID: author.ID, Content: "first"}
	posts.posts[2] = models.Post{ID: 2, AuthorID: author.ID, Content: "second"}
	posts.nextID = 3

	comments.comments[10] = models.Comment{ID: 10, PostID: 1, AuthorID: author.ID, Content: "on first"}

	parentID := uint(10)
	_, err := svc.Add(context.Background(), 2, author.ID, dto.CreateCommentRequest{
		Content:  "reply to the wrong post",
		ParentID: &parentID,
	})
	require.ErrorIs(t, err, ErrParentMismatch)
}

func TestCommentServiceNotifiesPostAuthorAndParentAuthor(t *testing.T) {
	comments := newStubCommentRepo()
	posts := newStubPostRepo()
	users := newStubUserRepo()
	notifier := &stubNotifier{}
	svc := newCommentServiceForTest(comments, posts, users, notifier)

	poster := models.User{Email: "poster@family.test", FirstName: "Po", LastName: "Ster", Position: "Cousin"}
	require.NoError(t, users.Create(context.Background(), &poster))
	commenter := models.User{Email: "commenter@family.test", FirstName: "Co", LastName: "Mmenter", Position: "Cousin"}
	require.NoError(t, users.Create(context.Background(), &commenter))
	replier := models.User{Email: "replier@family.test", FirstName: "Re", LastName: "Plier", Position: "Cousin"}
	require.NoError(t, users.Create(context.Background(), &replier))

	posts.posts[1] = models.Post{ID: 1, AuthorID: poster.ID, Content: "post"}
	posts.nextID = 2

	// Top-level comment notifies the post author.
	created, err := svc.Add(context.Background(), 1, commenter.ID, dto.CreateCommentRequest{Content: "nice one"})
	require.NoError(t, err)
	require.Len(t, notifier.calls, 1)
	require.Equal(t, poster.ID, notifier.calls[0].userID)
	require.Equal(t, "post_comment", notifier.calls[0].trigger)

	// A reply notifies the parent author, not the post author.
	parentID := created.ID
	_, err = svc.Add(context.Background(), 1, replier.ID, dto.CreateCommentRequest{Content: "agreed", ParentID: &parentID})
	require.NoError(t, err)
	require.Len(t, notifier.calls, 2)
	require.Equal(t, commenter.ID, notifier.calls[1].userID)
	require.Equal(t, "comment_reply", notifier.calls[1].trigger)
}

func TestCommentServiceEditIsAuthorOnly(t *testing.T) {
	comments := newStubCommentRepo()
	posts := newStubPostRepo()
	svc := newCommentServiceForTest(comments, posts, newStubUserRepo(), &stubNotifier{})

	comments.comments[1] = models.Comment{ID: 1, PostID: 1, AuthorID: 7, Content: "mine"}

	_, err := svc.Edit(context.Background(), 1, 9, dto.EditCommentRequest{Content: "not yours"})
	require.ErrorIs(t, err, ErrCommentForbidden)

	updated, err := svc.Edit(context.Background(), 1, 7, dto.EditCommentRequest{Content: "still mine"})
	require.NoError(t, err)
	require.Equal(t, "still mine", updated.Content)
}

func TestCommentServiceDeleteIsAuthorOnlyAndRemovesSubtree(t *testing.T) {
	comments := newStubCommentRepo()
	posts := newStubPostRepo()
	svc := newCommentServiceForTest(comments, posts, newStubUserRepo(), &stubNotifier{})

	rootID := uint(1)
	comments.comments[1] = models.Comment{ID: 1, PostID: 1, AuthorID: 7, Content: "root"}
	comments.comments[2] = models.Comment{ID: 2, PostID: 1, AuthorID: 9, ParentID: &rootID, Content: "child"}
	comments.nextID = 3

	// Nobody but the author removes a comment, the admin included. The
	// admin's moderation tool is deleting the post.
	require.ErrorIs(t, svc.Delete(context.Background(), 1, 9), ErrCommentForbidden)
	require.NoError(t, svc.Delete(context.Background(), 1, 7))
	require.Empty(t, comments.comments)
}
