package signal_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	router "github.com/dkeye/Estimate/internal/adapters/http"
	"github.com/dkeye/Estimate/internal/app"
	"github.com/dkeye/Estimate/internal/app/orch"
	"github.com/dkeye/Estimate/internal/config"
	"github.com/dkeye/Estimate/internal/core"
	"github.com/dkeye/Estimate/internal/domain"
	"github.com/dkeye/Estimate/internal/id"
)

var _ = Describe("websocket signaling", func() {
	var (
		srv    *httptest.Server
		rooms  core.RoomStore
		o      *orch.Orchestrator
		rid    domain.RoomID
		cfg    *config.Config
		cancel context.CancelFunc
	)

	dial := func() *websocket.Conn {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
		ws, _, err := websocket.DefaultDialer.Dial(url, nil)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { _ = ws.Close() })
		return ws
	}

	read := func(ws *websocket.Conn) map[string]any {
		var m map[string]any
		Expect(ws.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
		Expect(ws.ReadJSON(&m)).To(Succeed())
		return m
	}

	readType := func(ws *websocket.Conn, typ string) map[string]any {
		for {
			m := read(ws)
			if m["type"] == typ {
				return m
			}
		}
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		cfg = &config.Config{
			Mode:           "test",
			Port:           5000,
			Secret:         "test-secret",
			AllowedOrigins: []string{"*"},
			ReadLimit:      32768,
			PingPeriod:     time.Second,
			PongWait:       3 * time.Second,
			WriteWait:      time.Second,
			SendBuffer:     32,
			RateLimit:      100,
			RateInterval:   time.Second,
		}
		rooms = core.NewMemoryStore()
		o = orch.New(app.NewRegistry(), rooms, id.Default(), app.SimplePolicy{})
		room, err := rooms.CreateRoom("Sprint 1", "Alice")
		Expect(err).NotTo(HaveOccurred())
		rid = room.ID

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		srv = httptest.NewServer(router.SetupRouter(ctx, cfg, o))
		DeferCleanup(func() {
			cancel()
			srv.Close()
		})
	})

	It("joins, votes and reveals over the wire", func() {
		alice := dial()
		Expect(alice.WriteJSON(map[string]any{"type": "join", "roomId": rid, "memberId": "alice", "displayName": "Alice"})).To(Succeed())
		ev := readType(alice, orch.EventRoomUpdated)
		Expect(ev["members"]).To(HaveLen(1))

		Expect(alice.WriteJSON(map[string]any{"type": "submit-estimate", "roomId": rid, "memberId": "alice", "value": 8})).To(Succeed())
		ev = readType(alice, orch.EventEstimateSubmitted)
		Expect(ev["estimateCount"]).To(BeEquivalentTo(1))

		Expect(alice.WriteJSON(map[string]any{"type": "reveal", "roomId": rid, "memberId": "alice"})).To(Succeed())
		ev = readType(alice, orch.EventEstimatesRevealed)
		Expect(ev["estimates"]).To(HaveKeyWithValue("alice", 8.0))
		Expect(ev["average"]).To(Equal(8.0))
	})

	It("answers application pings", func() {
		ws := dial()
		Expect(ws.WriteJSON(map[string]any{"type": "ping"})).To(Succeed())
		ev := read(ws)
		Expect(ev["type"]).To(Equal("pong"))
		Expect(ev["serverTime"]).To(BeNumerically(">", 0))
	})

	It("rejects actions over the rate limit", func() {
		cfg.RateLimit = 1
		cfg.RateInterval = time.Minute
		srv.Close()
		srv = httptest.NewServer(router.SetupRouter(context.Background(), cfg, o))

		ws := dial()
		Expect(ws.WriteJSON(map[string]any{"type": "join", "roomId": rid, "memberId": "alice", "displayName": "Alice"})).To(Succeed())
		readType(ws, orch.EventRoomUpdated)
		Expect(ws.WriteJSON(map[string]any{"type": "reveal", "roomId": rid})).To(Succeed())
		ev := readType(ws, orch.EventError)
		Expect(ev["message"]).To(Equal("rate_limited"))
		Expect(ev["action"]).To(Equal("reveal"))
	})

	It("rejects malformed frames without closing", func() {
		ws := dial()
		Expect(ws.WriteMessage(websocket.TextMessage, []byte("{nope"))).To(Succeed())
		ev := read(ws)
		Expect(ev["type"]).To(Equal(orch.EventError))
		Expect(ev["message"]).To(Equal("bad_payload"))

		Expect(ws.WriteJSON(map[string]any{"type": "ping"})).To(Succeed())
		Expect(read(ws)["type"]).To(Equal("pong"))
	})

	It("marks the member offline when the socket closes", func() {
		alice := dial()
		bob := dial()
		Expect(alice.WriteJSON(map[string]any{"type": "join", "roomId": rid, "memberId": "alice", "displayName": "Alice"})).To(Succeed())
		readType(alice, orch.EventRoomUpdated)
		Expect(bob.WriteJSON(map[string]any{"type": "join", "roomId": rid, "memberId": "bob", "displayName": "Bob"})).To(Succeed())
		readType(bob, orch.EventRoomUpdated)
		readType(alice, orch.EventRoomUpdated)

		_ = bob.Close()

		Eventually(func() domain.Status {
			room, err := rooms.GetRoom(rid)
			if err != nil {
				return ""
			}
			m, ok := room.Member("bob")
			if !ok {
				return ""
			}
			return m.Status
		}).WithTimeout(3 * time.Second).Should(Equal(domain.StatusOffline))

		ev := readType(alice, orch.EventRoomUpdated)
		members := ev["members"].([]any)
		Expect(members[1].(map[string]any)["status"]).To(Equal(string(domain.StatusOffline)))
	})
})
