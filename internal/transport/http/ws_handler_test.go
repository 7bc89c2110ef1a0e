package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"ctg-quiz-service/internal/app"
	"ctg-quiz-service/internal/domain"
	"ctg-quiz-service/internal/infra/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	factory := app.NewSessionFactory(app.SessionConfig{
		QuizLength:   2,
		QuestionTime: 60,
	}, nil)
	store := memory.NewSessionStore(factory)
	bankRepo := memory.NewBankRepository(memory.NewStaticBankLoader(sampleBank()), time.Minute)
	service := app.NewQuizService(store, bankRepo, nil, zerolog.Nop())
	wsHandler := NewWSHandler(service, zerolog.Nop())

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestWebSocketQuizFlow(t *testing.T) {
	server := newTestServer(t)

	u := "ws" + server.URL[len("http"):] + "/ws?sessionId=s1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial snapshot arrives before any command.
	state := readState(conn, t)
	if state["phase"] != string(domain.PhaseNotStarted) {
		t.Fatalf("expected not-started, got %v", state["phase"])
	}

	writeCommand(conn, t, "start", map[string]any{"candidateName": "Alice"})
	state = waitForPhase(conn, t, domain.PhaseInProgress)
	if state["candidateName"] != "Alice" {
		t.Fatalf("expected candidate Alice, got %v", state["candidateName"])
	}
	if state["totalQuestions"] != float64(2) {
		t.Fatalf("expected 2 questions, got %v", state["totalQuestions"])
	}

	// Answer both questions correctly; option 0 is correct in the sample bank.
	for i := 0; i < 2; i++ {
		writeCommand(conn, t, "answer", map[string]any{"optionIndex": 0})
		state = waitForPhase(conn, t, domain.PhaseAnswered)
		if state["correctAnswerIndex"] != float64(0) {
			t.Fatalf("answered snapshot should reveal the correct option, got %v", state["correctAnswerIndex"])
		}
		writeCommand(conn, t, "advance", nil)
	}

	state = waitForPhase(conn, t, domain.PhaseCompleted)
	result, ok := state["result"].(map[string]any)
	if !ok {
		t.Fatalf("completed snapshot missing result: %v", state)
	}
	if result["score"] != float64(2) || result["percentage"] != float64(100) {
		t.Fatalf("unexpected result: %v", result)
	}
	if result["passed"] != true {
		t.Fatalf("expected a passing result")
	}
}

func TestWebSocketReviewAndCertificate(t *testing.T) {
	server := newTestServer(t)

	u := "ws" + server.URL[len("http"):] + "/ws?sessionId=s2"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readState(conn, t)
	writeCommand(conn, t, "start", map[string]any{"candidateName": "Bob"})
	waitForPhase(conn, t, domain.PhaseInProgress)
	for i := 0; i < 2; i++ {
		writeCommand(conn, t, "answer", map[string]any{"optionIndex": 0})
		waitForPhase(conn, t, domain.PhaseAnswered)
		writeCommand(conn, t, "advance", nil)
	}
	waitForPhase(conn, t, domain.PhaseCompleted)

	writeCommand(conn, t, "review", nil)
	state := waitForPhase(conn, t, domain.PhaseReview)
	review, ok := state["review"].([]any)
	if !ok || len(review) != 2 {
		t.Fatalf("expected 2 review entries, got %v", state["review"])
	}

	writeCommand(conn, t, "result", nil)
	waitForPhase(conn, t, domain.PhaseCompleted)

	writeCommand(conn, t, "certificate", nil)
	waitForPhase(conn, t, domain.PhaseCertificate)
}

func TestWebSocketRequiresSessionID(t *testing.T) {
	server := newTestServer(t)

	u := "ws" + server.URL[len("http"):] + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected handshake failure without sessionId")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", resp)
	}
}

func writeCommand(conn *websocket.Conn, t *testing.T, msgType string, payload map[string]any) {
	t.Helper()
	msg := map[string]any{"type": msgType}
	if payload != nil {
		msg["payload"] = payload
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

func readState(conn *websocket.Conn, t *testing.T) map[string]any {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type == "error" {
		t.Fatalf("unexpected error message: %v", msg.Payload)
	}
	if msg.Type != "state" {
		t.Fatalf("expected state message, got %s", msg.Type)
	}
	return msg.Payload
}

// waitForPhase drains state broadcasts until the session reaches the wanted
// phase. Intermediate snapshots (ticks, hint updates) are skipped.
func waitForPhase(conn *websocket.Conn, t *testing.T, phase domain.Phase) map[string]any {
	t.Helper()
	for i := 0; i < 20; i++ {
		state := readState(conn, t)
		if state["phase"] == string(phase) {
			return state
		}
	}
	t.Fatalf("session never reached phase %s", phase)
	return nil
}

func sampleBank() []domain.Question {
	return []domain.Question{
		{
			QuestionText:       "What is the main binder in concrete?",
			Options:            []string{"Cement", "Sand", "Gravel"},
			CorrectAnswerIndex: 0,
		},
		{
			QuestionText:       "What does w/c ratio control?",
			Options:            []string{"Strength", "Colour", "Weight"},
			CorrectAnswerIndex: 0,
		},
	}
}
