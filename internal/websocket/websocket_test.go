package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abrezinsky/swipick/internal/game"
	"github.com/abrezinsky/swipick/internal/logger"
	"github.com/abrezinsky/swipick/internal/models"
	"github.com/abrezinsky/swipick/internal/services"
)

var testNow = time.Date(2025, 10, 24, 12, 0, 0, 0, time.UTC)

// mockFixtureService implements services.FixtureServicer for testing
type mockFixtureService struct {
	mu          sync.Mutex
	week        int
	weekErr     error
	next        *models.Fixture
	nextErr     error
	nextKickoff int
}

func (m *mockFixtureService) CurrentWeek(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.week, m.weekErr
}

func (m *mockFixtureService) NextKickoff(ctx context.Context) (*models.Fixture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextKickoff++
	return m.next, m.nextErr
}

func (m *mockFixtureService) setNext(f *models.Fixture) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next = f
}

// Unused interface methods
func (m *mockFixtureService) ImportFixtures(ctx context.Context, f []models.Fixture) (int, error) {
	return 0, nil
}
func (m *mockFixtureService) FixturesForWeek(ctx context.Context, week int) ([]models.Fixture, error) {
	return nil, nil
}
func (m *mockFixtureService) ListWeeks(ctx context.Context) ([]int, error)                 { return nil, nil }
func (m *mockFixtureService) GetFixture(ctx context.Context, id string) (*models.Fixture, error) {
	return nil, nil
}
func (m *mockFixtureService) RecordResult(ctx context.Context, r models.Result) error { return nil }

var _ services.FixtureServicer = (*mockFixtureService)(nil)

func newTestHub(fixtures *mockFixtureService) *Hub {
	hub := New(logger.Discard(), fixtures)
	hub.now = func() time.Time { return testNow }
	return hub
}

// dial connects a client to hub, optionally as user, and consumes the
// initial live_week message
func dial(t *testing.T, hub *Hub, user string) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	t.Cleanup(server.Close)

	url := "ws" + server.URL[4:]
	if user != "" {
		url += "?user=" + user
	}
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { ws.Close() })

	msg := readMessage(t, ws)
	if msg.Type != TypeLiveWeek {
		t.Fatalf("expected initial live_week message, got %s", msg.Type)
	}
	return ws
}

func readMessage(t *testing.T, ws *websocket.Conn) models.WSMessage {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	var msg models.WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("failed to unmarshal message: %v", err)
	}
	return msg
}

func TestNew_CreatesHubWithDependencies(t *testing.T) {
	hub := New(logger.Discard(), &mockFixtureService{})

	if hub.log == nil || hub.fixtures == nil {
		t.Error("expected dependencies to be set")
	}
	if hub.clients == nil || hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("expected channels and client map to be initialized")
	}
}

func TestHub_ImplementsBroadcaster(t *testing.T) {
	var _ services.Broadcaster = New(logger.Discard(), &mockFixtureService{})
}

func TestHub_BroadcastMessage_NoClients(t *testing.T) {
	hub := newTestHub(&mockFixtureService{week: 1})
	hub.Start()

	done := make(chan bool)
	go func() {
		hub.BroadcastMessage("test", map[string]string{"key": "value"})
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Error("BroadcastMessage blocked with no clients")
	}
}

func TestHub_BroadcastDoesNotBlockBeforeStart(t *testing.T) {
	hub := newTestHub(&mockFixtureService{})

	done := make(chan bool)
	go func() {
		for i := 0; i < 300; i++ {
			hub.BroadcastLiveWeek(i)
		}
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("broadcasts blocked while the hub was not running")
	}
}

func TestServeWs_InitialLiveWeek(t *testing.T) {
	hub := newTestHub(&mockFixtureService{week: 6})
	hub.Start()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()
	ws, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[4:], nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer ws.Close()

	msg := readMessage(t, ws)
	payload, _ := msg.Payload.(map[string]interface{})
	if msg.Type != TypeLiveWeek || payload["week"] != float64(6) {
		t.Errorf("expected live_week 6, got %+v", msg)
	}
}

func TestServeWs_ClientRegistrationAndDisconnect(t *testing.T) {
	hub := newTestHub(&mockFixtureService{week: 1})
	hub.Start()

	ws := dial(t, hub, "")
	if hub.ClientCount() != 1 {
		t.Errorf("expected 1 client, got %d", hub.ClientCount())
	}

	ws.Close()
	time.Sleep(200 * time.Millisecond)
	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients after disconnect, got %d", hub.ClientCount())
	}
}

// slowWeekService holds CurrentWeek until release is closed
type slowWeekService struct {
	mockFixtureService
	release  chan struct{}
	returned chan struct{}
	once     sync.Once
}

func (m *slowWeekService) CurrentWeek(ctx context.Context) (int, error) {
	<-m.release
	defer m.once.Do(func() { close(m.returned) })
	return 3, nil
}

func TestHub_LiveWeekAfterClientLeft(t *testing.T) {
	fixtures := &slowWeekService{release: make(chan struct{}), returned: make(chan struct{})}
	hub := New(logger.Discard(), fixtures)
	hub.Start()

	client := &Client{hub: hub, send: make(chan models.WSMessage, 1), userID: "u1"}
	hub.register <- client
	hub.unregister <- client
	close(fixtures.release)

	select {
	case <-fixtures.returned:
	case <-time.After(time.Second):
		t.Fatal("live week lookup never returned")
	}
	time.Sleep(100 * time.Millisecond)

	if msg, ok := <-client.send; ok {
		t.Errorf("expected no message for a departed client, got %+v", msg)
	}

	// hub is still serving
	other := &Client{hub: hub, send: make(chan models.WSMessage, 4), userID: "u2"}
	hub.register <- other
	hub.BroadcastMessage("ping", nil)
	select {
	case msg := <-other.send:
		if msg.Type != TypeLiveWeek && msg.Type != "ping" {
			t.Errorf("unexpected message %+v", msg)
		}
	case <-time.After(time.Second):
		t.Error("hub stopped delivering after a client left mid-lookup")
	}
}

func TestHub_BroadcastSession_TargetsUser(t *testing.T) {
	hub := newTestHub(&mockFixtureService{week: 1})
	hub.Start()

	alice := dial(t, hub, "alice")
	bob := dial(t, hub, "bob")

	hub.BroadcastSession("alice", game.State{UserID: "alice", Week: 3})
	hub.BroadcastLiveWeek(4)

	msg := readMessage(t, alice)
	if msg.Type != TypeSessionState {
		t.Fatalf("expected alice to get session_state first, got %s", msg.Type)
	}
	payload, _ := msg.Payload.(map[string]interface{})
	if payload["user_id"] != "alice" || payload["week"] != float64(3) {
		t.Errorf("unexpected session payload %v", payload)
	}
	if msg := readMessage(t, alice); msg.Type != TypeLiveWeek {
		t.Errorf("expected live_week for alice, got %s", msg.Type)
	}

	// bob only sees the broadcast to everyone
	if msg := readMessage(t, bob); msg.Type != TypeLiveWeek {
		t.Errorf("expected bob to skip alice's session state, got %s", msg.Type)
	}
}

func TestHub_SendToUser_EmptyUserIgnored(t *testing.T) {
	hub := newTestHub(&mockFixtureService{})
	hub.SendToUser("", "anything", nil)
	if len(hub.broadcast) != 0 {
		t.Error("expected nothing queued for an empty user")
	}
}

func TestServeWs_UpgradeError(t *testing.T) {
	hub := newTestHub(&mockFixtureService{})
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	w := httptest.NewRecorder()

	hub.ServeWs(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a plain HTTP request, got %d", w.Code)
	}
}

func TestCheckAndUpdateCountdown_SendsCountdown(t *testing.T) {
	fixtures := &mockFixtureService{week: 1}
	fixtures.setNext(&models.Fixture{ID: "f1", Week: 2, Kickoff: testNow.Add(90 * time.Second)})
	hub := newTestHub(fixtures)
	hub.Start()
	ws := dial(t, hub, "")

	hub.checkAndUpdateCountdown(context.Background())

	msg := readMessage(t, ws)
	if msg.Type != TypeCountdown {
		t.Fatalf("expected countdown, got %s", msg.Type)
	}
	payload, _ := msg.Payload.(map[string]interface{})
	if payload["fixture_id"] != "f1" || payload["seconds_remaining"] != float64(90) || payload["week"] != float64(2) {
		t.Errorf("unexpected countdown payload %v", payload)
	}
}

func TestCheckAndUpdateCountdown_AnnouncesKickoff(t *testing.T) {
	fixtures := &mockFixtureService{week: 1}
	fixtures.setNext(&models.Fixture{ID: "f1", Week: 2, Kickoff: testNow.Add(time.Minute)})
	hub := newTestHub(fixtures)
	hub.Start()
	ws := dial(t, hub, "")

	hub.checkAndUpdateCountdown(context.Background())
	readMessage(t, ws) // countdown for f1

	// f1 has kicked off, nothing else is scheduled
	hub.now = func() time.Time { return testNow.Add(2 * time.Minute) }
	fixtures.setNext(nil)
	hub.checkAndUpdateCountdown(context.Background())

	msg := readMessage(t, ws)
	payload, _ := msg.Payload.(map[string]interface{})
	if msg.Type != TypeKickoff || payload["fixture_id"] != "f1" {
		t.Errorf("expected kickoff for f1, got %+v", msg)
	}
	if hub.lastFixture != nil {
		t.Error("expected tracked fixture cleared")
	}
}

func TestCheckAndUpdateCountdown_NothingScheduled(t *testing.T) {
	hub := newTestHub(&mockFixtureService{})

	hub.checkAndUpdateCountdown(context.Background())

	if len(hub.broadcast) != 0 {
		t.Errorf("expected no messages, got %d", len(hub.broadcast))
	}
}

func TestCheckAndUpdateCountdown_Error(t *testing.T) {
	hub := newTestHub(&mockFixtureService{nextErr: errors.New("database locked")})

	hub.checkAndUpdateCountdown(context.Background())

	if len(hub.broadcast) != 0 {
		t.Errorf("expected no messages on error, got %d", len(hub.broadcast))
	}
}

func TestHub_StartKickoffCountdown_ContextCancellation(t *testing.T) {
	fixtures := &mockFixtureService{}
	hub := newTestHub(fixtures)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool)
	go func() {
		hub.StartKickoffCountdown(ctx, 10*time.Millisecond)
		done <- true
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("countdown did not stop after context cancellation")
	}

	fixtures.mu.Lock()
	calls := fixtures.nextKickoff
	fixtures.mu.Unlock()
	if calls == 0 {
		t.Error("expected the countdown to poll the next kickoff")
	}
}

func TestReadPump_IncomingMessage(t *testing.T) {
	hub := newTestHub(&mockFixtureService{week: 1})
	hub.Start()
	ws := dial(t, hub, "u1")

	if err := ws.WriteJSON(models.WSMessage{Type: "ping", Payload: nil}); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Error("expected client to stay connected after sending a message")
	}
}
