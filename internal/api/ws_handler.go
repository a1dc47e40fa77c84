package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"resumeBuilder/internal/api/middleware"
	"resumeBuilder/internal/worker"
)

const (
	wsAuthTimeout  = 10 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteWait    = 5 * time.Second
)

// Subscriber 是 Redis 订阅能力，*redis.Client 满足该接口。
type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// WsHandler 把预览生成通知推送给已登录的浏览器。
// 客户端连上后第一条消息必须是 {"type":"auth","token":"..."}。
type WsHandler struct {
	subscriber     Subscriber
	validator      middleware.TokenValidator
	revocations    middleware.RevocationChecker
	logger         *slog.Logger
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewWsHandler 构造 WebSocket 处理器。revocations 可以为 nil。
func NewWsHandler(
	subscriber Subscriber,
	validator middleware.TokenValidator,
	revocations middleware.RevocationChecker,
	logger *slog.Logger,
	allowedOrigins []string,
) *WsHandler {
	h := &WsHandler{
		subscriber:     subscriber,
		validator:      validator,
		revocations:    revocations,
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.originAllowed}
	return h
}

// originAllowed 未配置白名单时只接受同源请求；没有 Origin 头的非浏览器客户端放行。
func (h *WsHandler) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(h.allowedOrigins) > 0 {
		return slices.Contains(h.allowedOrigins, origin)
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

type wsAuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// wsCloseError 携带关闭帧的状态码与原因。
type wsCloseError struct {
	code   int
	reason string
	err    error
}

func (e *wsCloseError) Error() string {
	if e.err == nil {
		return e.reason
	}
	return e.reason + ": " + e.err.Error()
}

func (e *wsCloseError) Unwrap() error { return e.err }

func policyViolation(reason string, err error) error {
	return &wsCloseError{code: websocket.ClosePolicyViolation, reason: reason, err: err}
}

// HandleConnection 升级连接、完成首包鉴权，然后转发该用户的通知直到任一方断开。
func (h *WsHandler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("upgrade websocket failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	log := h.logger.With(slog.String("client_ip", c.ClientIP()))

	userID, err := h.authenticate(c.Request.Context(), conn)
	if err != nil {
		log.Warn("websocket authentication failed", slog.Any("error", err))
		closeWith(conn, err)
		return
	}
	log = log.With(slog.Uint64("user_id", uint64(userID)))
	log.Info("websocket authenticated")

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error { return drainClient(conn) })
	g.Go(func() error { return h.forward(ctx, conn, userID, log) })
	g.Go(func() error {
		// 任一方退出后让阻塞在 NextReader 的 drainClient 立即返回。
		<-ctx.Done()
		_ = conn.SetReadDeadline(time.Now())
		return nil
	})

	err = g.Wait()
	switch {
	case c.Request.Context().Err() != nil:
		log.Info("websocket closed by server shutdown")
		closeWith(conn, &wsCloseError{code: websocket.CloseGoingAway, reason: "server shutting down"})
	case errors.Is(err, errClientGone):
		log.Info("websocket connection closed")
	default:
		log.Info("websocket connection closed", slog.Any("error", err))
		closeWith(conn, err)
	}
}

// authenticate 读取首条消息并校验其中的 access token。
func (h *WsHandler) authenticate(ctx context.Context, conn *websocket.Conn) (uint, error) {
	_ = conn.SetReadDeadline(time.Now().Add(wsAuthTimeout))
	defer conn.SetReadDeadline(time.Time{})

	_, message, err := conn.ReadMessage()
	if err != nil {
		return 0, policyViolation("auth required", err)
	}

	var msg wsAuthMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return 0, policyViolation("invalid auth payload", err)
	}
	if msg.Type != "auth" || strings.TrimSpace(msg.Token) == "" {
		return 0, policyViolation("auth required", nil)
	}

	claims, err := h.validator.ValidateAccessToken(msg.Token)
	if err != nil {
		return 0, policyViolation("unauthorized", err)
	}
	if h.revocations != nil {
		revoked, err := h.revocations.IsRevoked(ctx, claims)
		if err != nil {
			return 0, policyViolation("unauthorized", fmt.Errorf("check revocation: %w", err))
		}
		if revoked {
			return 0, policyViolation("unauthorized", errors.New("token revoked"))
		}
	}
	return claims.UserID, nil
}

var errClientGone = errors.New("client disconnected")

// drainClient 丢弃客户端后续消息，只用来发现断开。
func drainClient(conn *websocket.Conn) error {
	for {
		if _, _, err := conn.NextReader(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return errClientGone
			}
			return fmt.Errorf("read message: %w", err)
		}
	}
}

// forward 订阅 user_notify:<id> 并把合法的通知原样写给客户端，同时定时发送 ping。
func (h *WsHandler) forward(ctx context.Context, conn *websocket.Conn, userID uint, log *slog.Logger) error {
	channel := worker.NotifyChannel(userID)
	pubsub := h.subscriber.Subscribe(ctx, channel)
	defer pubsub.Close()

	messages := pubsub.Channel()
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return errors.New("notify channel closed")
			}
			if !isNotifyPayload(msg.Payload) {
				log.Warn("dropping malformed notification", slog.String("channel", channel))
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return fmt.Errorf("write message: %w", err)
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return fmt.Errorf("write ping: %w", err)
			}
		}
	}
}

func isNotifyPayload(payload string) bool {
	var notify worker.NotifyMessage
	if err := json.Unmarshal([]byte(payload), &notify); err != nil {
		return false
	}
	return notify.Status != ""
}

func closeWith(conn *websocket.Conn, err error) {
	code, reason := websocket.CloseInternalServerErr, "internal error"
	var closeErr *wsCloseError
	if errors.As(err, &closeErr) {
		code, reason = closeErr.code, closeErr.reason
	}
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(wsWriteWait))
}
