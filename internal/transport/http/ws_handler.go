package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"ctg-quiz-service/internal/app"
)

// WSHandler bridges a candidate's websocket to the quiz session commands.
// Every state change is pushed as a "state" message; the client renders
// snapshots and sends intents, nothing more.
type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWSHandler(service *app.QuizService, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	CandidateName string `json:"candidateName"`
}

type answerPayload struct {
	OptionIndex int `json:"optionIndex"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and runs the command/snapshot loop for one
// candidate session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "missing sessionId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	initial := h.service.Attach(sessionID)
	updates, cancel, err := h.service.Subscribe(sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()
	defer h.service.Leave(sessionID)

	send := make(chan outboundMessage[any], 16)
	send <- outboundMessage[any]{Type: "state", Payload: initial}
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Single writer goroutine; gorilla connections do not allow concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug().Err(err).Str("session", sessionID).Msg("ws write error")
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: snap}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		msg, ok := h.dispatch(r, sessionID, inbound)
		if !ok {
			break
		}
		if msg != nil {
			select {
			case send <- *msg:
			case <-writerDone:
			}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// dispatch applies one inbound command. It returns an optional error message
// to send and false when the connection should stop.
func (h *WSHandler) dispatch(r *http.Request, sessionID string, inbound inboundMessage) (*outboundMessage[any], bool) {
	errMsg := func(text string) *outboundMessage[any] {
		return &outboundMessage[any]{Type: "error", Payload: errorPayload{Message: text}}
	}

	switch inbound.Type {
	case "start":
		var payload startPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errMsg("invalid start payload"), true
		}
		if err := h.service.Start(r.Context(), sessionID, payload.CandidateName); err != nil {
			// bank load failures are retryable from the start screen
			h.log.Error().Err(err).Msg("question bank load failed")
			return errMsg("Could not load quiz questions. Please try again."), true
		}
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errMsg("invalid answer payload"), true
		}
		if err := h.service.SelectAnswer(sessionID, payload.OptionIndex); err != nil {
			return nil, false
		}
	case "advance":
		if err := h.service.Advance(r.Context(), sessionID); err != nil {
			return nil, false
		}
	case "hint":
		if err := h.service.RequestHint(r.Context(), sessionID); err != nil {
			return nil, false
		}
	case "review":
		if err := h.service.EnterReview(sessionID); err != nil {
			return nil, false
		}
	case "result":
		if err := h.service.ExitReview(sessionID); err != nil {
			return nil, false
		}
		if err := h.service.ExitCertificate(sessionID); err != nil {
			return nil, false
		}
	case "certificate":
		if err := h.service.EnterCertificate(sessionID); err != nil {
			return nil, false
		}
	default:
		return errMsg("unsupported message type"), true
	}
	return nil, true
}
