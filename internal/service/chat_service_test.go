package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lovemyfam/common-room-api/internal/dto"
)

func newChatServiceForTest(t *testing.T, repo *stubChatRepo) (*chatService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := NewChatService(
		repo,
		client,
		"commonroom",
		nil,
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)
	return svc.(*chatService), mr
}

func TestChatServiceSendSanitizesAndCachesLastMessage(t *testing.T) {
	repo := &stubChatRepo{}
	svc, mr := newChatServiceForTest(t, repo)

	response, err := svc.Send(context.Background(), 7, dto.SendMessageRequest{
		Content: "  <script>alert(1)</script>hello <b>fam</b>  ",
	})
	require.NoError(t, err)
	require.Equal(t, "hello <b>fam</b>", response.Content)
	require.Len(t, repo.messages, 1)

	// The newest message lands in the redis cache for late joiners.
	cached, err := mr.Get("commonroom:chat:last")
	require.NoError(t, err)
	require.Contains(t, cached, "hello")

	last := svc.fetchLastMessage(context.Background())
	require.NotNil(t, last)
	require.Equal(t, response.ID, last.ID)
}

func TestChatServiceSendRejectsEmptyAfterSanitizing(t *testing.T) {
	repo := &stubChatRepo{}
	svc, _ := newChatServiceForTest(t, repo)

	_, err := svc.Send(context.Background(), 7, dto.SendMessageRequest{Content: "<script>only markup</script>"})
	require.ErrorIs(t, err, ErrEmptyContent)
	require.Empty(t, repo.messages)
}

func TestChatServiceSendChecksReplyTarget(t *testing.T) {
	repo := &stubChatRepo{}
	svc, _ := newChatServiceForTest(t, repo)

	missing := uint(404)
	_, err := svc.Send(context.Background(), 7, dto.SendMessageRequest{Content: "hi", ReplyToID: &missing})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestChatServiceHistoryClampsLimit(t *testing.T) {
	repo := &stubChatRepo{}
	svc, _ := newChatServiceForTest(t, repo)

	_, err := svc.History(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Equal(t, chatHistoryLimit, repo.lastLimit)

	_, err = svc.History(context.Background(), 0, 10_000)
	require.NoError(t, err)
	require.Equal(t, chatHistoryLimit, repo.lastLimit)

	_, err = svc.History(context.Background(), 0, 5)
	require.NoError(t, err)
	require.Equal(t, 5, repo.lastLimit)
}
