package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"npc-server/internal/service"
	"npc-server/shared/models"

	rateli "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Время, разрешенное для записи сообщения клиенту.
	writeWait = 10 * time.Second
	// Время ожидания следующего pong (или кадра) от клиента.
	pongWait = 60 * time.Second
	// Период пингов. Должен быть меньше pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Сообщение до 2000 символов плюс JSON обвязка.
	maxMessageSize = 16 * 1024
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// talkWebSocket открывает сессию разговора с персонажем.
// Кадры обрабатываются строго по одному: следующий читается после отправки ответа на предыдущий.
func (h *NPCHandler) talkWebSocket(c *gin.Context) {
	characterID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.characters.GetCharacter(c.Request.Context(), characterID); err != nil {
		handleServiceError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrader уже ответил клиенту
		h.logger.Error("Failed to upgrade connection", zap.String("characterID", characterID.String()), zap.Error(err))
		return
	}

	log := h.logger.With(zap.String("characterID", characterID.String()))
	log.Info("WebSocket talk session opened")
	wsSessionsActive.Inc()
	defer wsSessionsActive.Dec()

	session := &talkSession{
		characterID:   characterID,
		conn:          conn,
		conversations: h.conversations,
		limiter:       h.llmLimiter,
		ginCtx:        c,
		send:          make(chan interface{}, sendBufferSize),
		writerDone:    make(chan struct{}),
		logger:        log,
	}
	go session.writePump()
	// readPump работает в горутине обработчика, чтобы контекст запроса жил до конца сессии.
	session.readPump(c.Request.Context())
}

type talkSession struct {
	characterID   uuid.UUID
	conn          *websocket.Conn
	conversations service.ConversationService
	// limiter считает каждый кадр как отдельное обращение к модели.
	limiter       rateli.Store
	ginCtx        *gin.Context
	send          chan interface{}
	writerDone    chan struct{}
	logger        *zap.Logger
}

func (s *talkSession) readPump(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		close(s.send)
		<-s.writerDone
		_ = s.conn.Close()
		s.logger.Info("WebSocket talk session closed")
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				s.logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}

		if !s.handleFrame(ctx, message) {
			return
		}
		// Ответ модели может идти дольше pongWait.
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

// handleFrame обрабатывает один входящий кадр. false означает, что сессию нужно закрыть.
func (s *talkSession) handleFrame(ctx context.Context, message []byte) bool {
	var req talkRequest
	if err := json.Unmarshal(message, &req); err != nil {
		wsMessagesTotal.WithLabelValues("invalid").Inc()
		return s.enqueue(wsErrorFrame{Error: badRequest("frame must be a JSON object: " + err.Error())})
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		wsMessagesTotal.WithLabelValues("invalid").Inc()
		return s.enqueue(wsErrorFrame{Error: validationError(err)})
	}
	if s.limiter != nil {
		if info := s.limiter.Limit(rateLimitKey(s.ginCtx), s.ginCtx); info.RateLimited {
			wsMessagesTotal.WithLabelValues("rate_limited").Inc()
			logRateLimited(s.ginCtx, info)
			return s.enqueue(wsErrorFrame{Error: rateLimitedResponse(info)})
		}
	}

	reply, err := s.conversations.Talk(ctx, s.characterID, req.Message, models.BoolValue(req.Persist, true))
	if err != nil {
		wsMessagesTotal.WithLabelValues("error").Inc()
		status, errResp := errorResponseFor(err)
		if !s.enqueue(wsErrorFrame{Error: errResp}) {
			return false
		}
		// Персонаж удален во время сессии.
		return status != http.StatusNotFound
	}

	if reply.Degraded {
		wsMessagesTotal.WithLabelValues("degraded").Inc()
		s.logger.Warn("Sending degraded reply", zap.Error(reply.Cause))
	} else {
		wsMessagesTotal.WithLabelValues("success").Inc()
	}
	return s.enqueue(wsReplyFrame{Response: reply.Text, Degraded: reply.Degraded})
}

func (s *talkSession) enqueue(frame interface{}) bool {
	select {
	case s.send <- frame:
		return true
	case <-s.writerDone:
		return false
	}
}

// writePump единственный пишет в соединение: кадры из send и пинги.
func (s *talkSession) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(s.writerDone)
	}()

	for {
		select {
		case frame, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteJSON(frame); err != nil {
				s.logger.Warn("Failed to write frame", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.logger.Debug("Ping failed", zap.Error(err))
				return
			}
		}
	}
}
