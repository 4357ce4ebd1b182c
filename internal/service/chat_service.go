package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lovemyfam/common-room-api/internal/dto"
	"github.com/lovemyfam/common-room-api/internal/middleware"
	"github.com/lovemyfam/common-room-api/internal/models"
	"github.com/lovemyfam/common-room-api/internal/observability"
	"github.com/lovemyfam/common-room-api/internal/repository"
)

const (
	chatRedisTTL       = 30 * time.Minute
	chatSendBufferSize = 32
	chatHistoryLimit   = 50
)

// Event kinds fanned out to connected clients.
const (
	chatEventMessage  = "message"
	chatEventReaction = "reaction"
)

// ChatConnectionOptions wraps metadata extracted during the HTTP upgrade.
type ChatConnectionOptions struct {
	UserID        uint
	CorrelationID string
	Context       context.Context
}

// ChatService manages the single family room: websocket delivery, history
// and reactions. Cross-instance fan-out rides redis pub/sub and NATS when
// either is configured.
type ChatService interface {
	ServeConnection(conn *websocket.Conn, opts ChatConnectionOptions)
	History(ctx context.Context, before uint, limit int) ([]dto.MessageResponse, error)
	Send(ctx context.Context, authorID uint, payload dto.SendMessageRequest) (dto.MessageResponse, error)
	ToggleReaction(ctx context.Context, messageID, userID uint, payload dto.ToggleReactionRequest) (dto.MessageResponse, error)
	Start(ctx context.Context)
}

type chatService struct {
	repo        repository.ChatRepository
	redis       *redis.Client
	redisStream string
	redisCache  string
	nats        *nats.Conn
	natsSubject string
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	sanitizer   *bluemonday.Policy
	hub         *chatHub
	nodeID      string
}

// chatHub tracks the clients connected to this instance.
type chatHub struct {
	mu      sync.RWMutex
	clients map[*chatClient]struct{}
	log     zerolog.Logger
}

type chatClient struct {
	conn    *websocket.Conn
	send    chan chatEvent
	options ChatConnectionOptions
	service *chatService
	closed  chan struct{}
	once    sync.Once
	baseCtx context.Context
}

type chatEvent struct {
	Source  string              `json:"source"`
	Kind    string              `json:"kind"`
	Message dto.MessageResponse `json:"message"`
	SentAt  time.Time           `json:"sent_at"`
}

// NewChatService creates the family room chat service.
func NewChatService(repo repository.ChatRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, validate *validator.Validate, logger zerolog.Logger) ChatService {
	sanitizer := bluemonday.UGCPolicy()
	sanitizer.AllowElements("br")

	hub := &chatHub{
		clients: make(map[*chatClient]struct{}),
		log:     logger.With().Str("component", "chat_hub").Logger(),
	}

	streamChannel := ""
	cacheKey := ""
	natsSubject := ""
	if channelBase != "" {
		streamChannel = channelBase + ":chat"
		cacheKey = channelBase + ":chat:last"
		natsSubject = strings.ReplaceAll(channelBase, ":", ".") + ".chat"
	}

	return &chatService{
		repo:        repo,
		redis:       redisClient,
		redisStream: streamChannel,
		redisCache:  cacheKey,
		nats:        natsConn,
		natsSubject: natsSubject,
		validator:   validate,
		logger:      logger.With().Str("component", "chat_service").Logger(),
		tracer:      otel.Tracer("github.com/lovemyfam/common-room-api/internal/service/chat"),
		sanitizer:   sanitizer,
		hub:         hub,
		nodeID:      uuid.NewString(),
	}
}

func (s *chatService) Start(ctx context.Context) {
	if s.redis != nil && s.redisStream != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *chatService) ServeConnection(conn *websocket.Conn, opts ChatConnectionOptions) {
	baseCtx := opts.Context
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	client := &chatClient{
		conn:    conn,
		send:    make(chan chatEvent, chatSendBufferSize),
		options: opts,
		service: s,
		closed:  make(chan struct{}),
		baseCtx: baseCtx,
	}

	s.hub.register(client)
	observability.ChatConnectionsTotal().Inc()

	if last := s.fetchLastMessage(baseCtx); last != nil {
		select {
		case client.send <- chatEvent{Kind: chatEventMessage, Message: *last}:
		default:
			s.logger.Debug().Msg("dropping cached chat message due to slow consumer")
		}
	}

	go client.writer()
	client.reader()
}

func (s *chatService) History(ctx context.Context, before uint, limit int) ([]dto.MessageResponse, error) {
	if limit <= 0 || limit > chatHistoryLimit {
		limit = chatHistoryLimit
	}

	messages, err := s.repo.List(ctx, before, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewMessageResponseSlice(messages), nil
}

func (s *chatService) Send(ctx context.Context, authorID uint, payload dto.SendMessageRequest) (dto.MessageResponse, error) {
	return s.processSend(ctx, authorID, middleware.CorrelationIDFromContext(ctx), payload)
}

func (s *chatService) ToggleReaction(ctx context.Context, messageID, userID uint, payload dto.ToggleReactionRequest) (dto.MessageResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MessageResponse{}, err
	}

	if _, err := s.repo.ToggleReaction(ctx, messageID, userID, payload.Emoji); err != nil {
		return dto.MessageResponse{}, err
	}

	updated, err := s.repo.GetByID(ctx, messageID)
	if err != nil {
		return dto.MessageResponse{}, err
	}

	response := dto.NewMessageResponse(updated)
	s.broadcast(chatEventReaction, response)
	if err := s.publish(ctx, chatEventReaction, response); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish reaction event")
	}

	return response, nil
}

func (s *chatService) processSend(ctx context.Context, authorID uint, correlation string, payload dto.SendMessageRequest) (dto.MessageResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MessageResponse{}, err
	}

	clean := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if clean == "" {
		return dto.MessageResponse{}, ErrEmptyContent
	}

	if payload.ReplyToID != nil {
		if _, err := s.repo.GetByID(ctx, *payload.ReplyToID); err != nil {
			return dto.MessageResponse{}, err
		}
	}

	attrs := []attribute.KeyValue{
		attribute.Int64("chat.author_id", int64(authorID)),
	}
	if correlation != "" {
		attrs = append(attrs, attribute.String("correlation_id", correlation))
	}

	spanCtx, span := s.tracer.Start(ctx, "chat.broadcast", trace.WithAttributes(attrs...))
	defer span.End()

	message := models.ChatMessage{
		AuthorID:  authorID,
		ReplyToID: payload.ReplyToID,
		Content:   clean,
	}

	if err := s.repo.Create(spanCtx, &message); err != nil {
		span.RecordError(err)
		return dto.MessageResponse{}, err
	}

	stored, err := s.repo.GetByID(spanCtx, message.ID)
	if err != nil {
		return dto.MessageResponse{}, err
	}

	response := dto.NewMessageResponse(stored)
	s.cacheLastMessage(spanCtx, response)
	s.broadcast(chatEventMessage, response)
	if err := s.publish(spanCtx, chatEventMessage, response); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish chat event")
	}

	observability.ChatMessagesSent().Inc()

	return response, nil
}

func (s *chatService) cacheLastMessage(ctx context.Context, message dto.MessageResponse) {
	if s.redis == nil || s.redisCache == "" {
		return
	}

	payload, err := json.Marshal(message)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal chat message for cache")
		return
	}

	if err := s.redis.Set(ctx, s.redisCache, payload, chatRedisTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache chat message")
	}
}

func (s *chatService) fetchLastMessage(ctx context.Context) *dto.MessageResponse {
	if s.redis == nil || s.redisCache == "" {
		return nil
	}

	result, err := s.redis.Get(ctx, s.redisCache).Result()
	if err != nil {
		return nil
	}

	var message dto.MessageResponse
	if err := json.Unmarshal([]byte(result), &message); err != nil {
		s.logger.Warn().Err(err).Msg("failed to unmarshal cached chat message")
		return nil
	}

	return &message
}

func (s *chatService) broadcast(kind string, message dto.MessageResponse) {
	s.hub.broadcast(chatEvent{Kind: kind, Message: message, SentAt: time.Now().UTC()})
}

func (s *chatService) publish(ctx context.Context, kind string, message dto.MessageResponse) error {
	event := chatEvent{
		Source:  s.nodeID,
		Kind:    kind,
		Message: message,
		SentAt:  time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *chatService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisStream)
	defer func() {
		_ = pubsub.Close()
	}()
	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("chat redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload))
	}
}

func (s *chatService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "commonroom-chat", func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats chat subject")
		return
	}
	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain chat nats subscription")
		}
	}()
}

func (s *chatService) handleEvent(data []byte) {
	var event chatEvent
	if err := json.Unmarshal(data, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid chat event")
		return
	}

	if event.Source == s.nodeID {
		return
	}

	s.hub.broadcast(event)
}

func (h *chatHub) register(client *chatClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = struct{}{}
	h.log.Debug().Uint("user_id", client.options.UserID).Msg("chat client connected")
}

func (h *chatHub) unregister(client *chatClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, client)
	h.log.Debug().Uint("user_id", client.options.UserID).Msg("chat client disconnected")
}

func (h *chatHub) broadcast(event chatEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- event:
		default:
			h.log.Warn().Uint("user_id", client.options.UserID).Msg("dropping chat event for slow client")
		}
	}
}

func (c *chatClient) reader() {
	defer c.close()

	connCtx := c.baseCtx
	correlation := c.options.CorrelationID
	if correlation == "" {
		correlation = middleware.CorrelationIDFromContext(connCtx)
	}

	for {
		var payload dto.SendMessageRequest
		if err := c.conn.ReadJSON(&payload); err != nil {
			c.service.logger.Debug().Err(err).Msg("chat read loop ended")
			return
		}

		if _, err := c.service.processSend(connCtx, c.options.UserID, correlation, payload); err != nil {
			c.service.logger.Warn().Err(err).Msg("failed to process chat message")
			continue
		}

		select {
		case <-c.closed:
			return
		default:
		}
	}
}

func (c *chatClient) writer() {
	defer c.close()

	for {
		select {
		case event, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				c.service.logger.Debug().Err(err).Msg("chat write loop terminated")
				return
			}
		case <-time.After(30 * time.Second):
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.service.logger.Debug().Err(err).Msg("chat ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *chatClient) close() {
	c.once.Do(func() {
		close(c.closed)
		c.service.hub.unregister(c)
		_ = c.conn.Close()
	})
}
