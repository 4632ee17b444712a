package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/simulation"
)

func startHub(t *testing.T) (*Hub, *simulation.Control, *websocket.Conn) {
	t.Helper()
	control := simulation.NewControl(simulation.DefaultConfig().Snapshot())
	hub := NewHub(control, flock.Bounds{Width: 640, Height: 480}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		cancel()
		srv.Close()
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
		cancel()
		srv.Close()
	})
	return hub, control, conn
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return msg
}

func TestHub_SendsConfigOnConnect(t *testing.T) {
	hub, _, conn := startHub(t)

	msg := read(t, conn)
	if msg.Type != TypeConfig || msg.Width != 640 || msg.Height != 480 {
		t.Errorf("unexpected greeting %+v", msg)
	}
	if msg.Snapshot == nil || len(msg.Snapshot.Swarms) != 4 {
		t.Errorf("Expected the current parameters in the greeting, got %+v", msg.Snapshot)
	}
	if hub.Len() != 1 {
		t.Errorf("Expected 1 viewer, got %d", hub.Len())
	}
}

func TestHub_WelcomeOnClosedConnection(t *testing.T) {
	control := simulation.NewControl(simulation.DefaultConfig().Snapshot())
	hub := NewHub(control, flock.Bounds{Width: 640, Height: 480}, nil)

	errs := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := hub.upgrader.Upgrade(w, r, nil)
		if err != nil {
			errs <- err
			return
		}
		conn.Close()
		errs <- hub.welcome(&Client{conn: conn})
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	select {
	case err := <-errs:
		if err == nil {
			t.Error("Expected an error greeting a closed connection")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the greeting")
	}
}

func TestHub_Commands(t *testing.T) {
	_, control, conn := startHub(t)
	read(t, conn) // config

	count := 12
	off := false
	swarm := simulation.DefaultConfig().Swarms[3].SwarmParams
	swarm.Name = "mackerel"

	tests := []struct {
		name     string
		cmd      Command
		wantType string
		check    func(flock.Snapshot) bool
	}{
		{"count", Command{Type: TypeCount, Group: 1, Count: &count}, TypeAck,
			func(s flock.Snapshot) bool { return s.Swarms[1].Count == 12 }},
		{"predators off", Command{Type: TypePredators, Enabled: &off}, TypeAck,
			func(s flock.Snapshot) bool { return !s.Predators.Enabled }},
		{"replace swarm", Command{Type: TypeSwarm, Group: 0, Swarm: &swarm}, TypeAck,
			func(s flock.Snapshot) bool { return s.Swarms[0].Name == "mackerel" }},
		{"params", Command{Type: TypeParams, Snapshot: &flock.Snapshot{Swarms: []flock.SwarmParams{swarm}}}, TypeAck,
			func(s flock.Snapshot) bool { return len(s.Swarms) == 1 }},
		{"count out of range", Command{Type: TypeCount, Group: 9, Count: &count}, TypeError, nil},
		{"count without value", Command{Type: TypeCount}, TypeError, nil},
		{"unknown", Command{Type: "add_food"}, TypeError, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteJSON(tt.cmd); err != nil {
				t.Fatalf("WriteJSON: %v", err)
			}
			reply := read(t, conn)
			if reply.Type != tt.wantType {
				t.Fatalf("reply %+v; want type %s", reply, tt.wantType)
			}
			if tt.check != nil {
				snap, _ := control.Snapshot()
				if !tt.check(snap) {
					t.Errorf("control not updated: %+v", snap)
				}
			}
		})
	}
}

func TestHub_TogglePredators(t *testing.T) {
	_, control, conn := startHub(t)
	read(t, conn)

	if err := conn.WriteJSON(Command{Type: TypeTogglePredators}); err != nil {
		t.Fatal(err)
	}
	reply := read(t, conn)
	if reply.Type != TypeAck || reply.Enabled == nil || *reply.Enabled {
		t.Errorf("Expected an ack reporting predators off, got %+v", reply)
	}
	if snap, _ := control.Snapshot(); snap.Predators.Enabled {
		t.Error("Expected predators disabled in the control store")
	}
}

func TestHub_BroadcastsFrames(t *testing.T) {
	hub, _, conn := startHub(t)
	read(t, conn)

	hub.Publish(&simulation.Frame{Tick: 42, Populations: []int{3, 0}, Items: []flock.Renderable{{Kind: flock.KindShark, Group: -1}}})

	msg := read(t, conn)
	if msg.Type != TypeFrame || msg.Frame == nil {
		t.Fatalf("Expected a frame, got %+v", msg)
	}
	if msg.Frame.Tick != 42 || len(msg.Frame.Populations) != 2 || msg.Frame.Populations[0] != 3 {
		t.Errorf("unexpected frame %+v", msg.Frame)
	}
}

func TestHub_DisconnectRemovesViewer(t *testing.T) {
	hub, _, conn := startHub(t)
	read(t, conn)
	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for hub.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("viewer still registered after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
