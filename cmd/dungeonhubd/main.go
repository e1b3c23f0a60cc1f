// Command dungeonhubd wires the DungeonHub core (internal/...) to a
// concrete I/O layer: a gorilla/websocket transport carrying the §6 wire
// frames, a single goroutine draining decoded frames through
// dispatcher.Server.HandlePacket, and a gin HTTP surface exposing
// liveness and a read-only metrics snapshot. None of this plumbing is
// part of the core; it is the out-of-scope "OS I/O layer" the spec
// describes as an external collaborator.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"dungeonhub/internal/config"
	"dungeonhub/internal/dispatcher"
	"dungeonhub/internal/ids"
	"dungeonhub/internal/inventory"
	"dungeonhub/internal/inventory/cached"
	"dungeonhub/internal/inventory/mongostore"
	"dungeonhub/internal/inventory/pgstore"
	"dungeonhub/internal/inventory/redisstore"
	"dungeonhub/internal/obslog"
	"dungeonhub/internal/safe"
	"dungeonhub/internal/wire"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	listenAddr = flag.String("listen", ":8080", "http/websocket listen address")
	pgURL      = flag.String("pg-url", "", "postgres dsn, used when inventory.backend=postgres")
	mongoURI   = flag.String("mongo-uri", "", "mongo uri, used when inventory.backend=mongo")
	redisAddr  = flag.String("redis-addr", "", "redis address, used when inventory.backend=redis_cached")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	cfg := config.Default()
	ids.SetNodeID(cfg.NodeID)
	inv, err := buildInventoryStore(ctx, cfg)
	if err != nil {
		obslog.Error("startup_failed", "building inventory store", obslog.Reason(err.Error()))
		return
	}

	srv := dispatcher.New(cfg, inv, *listenAddr)

	safe.Go(func() { tickLoop(srv) }, func(r any) {
		obslog.Error("tick_loop_panicked", "recovered", obslog.Reason(fmt.Sprint(r)))
	})

	r := gin.New()
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", func(c *gin.Context) {
		snap := srv.Metrics()
		c.JSON(http.StatusOK, gin.H{
			"packets_total": snap.PacketsTotal,
			"bytes_total":   snap.BytesTotal,
			"error_total":   snap.ErrorTotal,
		})
	})
	r.GET("/ws", func(c *gin.Context) { handleWS(srv, c) })

	obslog.Info("server_starting", "listening", obslog.Reason(*listenAddr))
	if err := r.Run(*listenAddr); err != nil {
		obslog.Error("server_stopped", "http server exited", obslog.Reason(err.Error()))
	}
}

// buildInventoryStore selects a concrete inventory.Store per
// cfg.Inventory.Backend, matching the SPEC_FULL domain-stack wiring:
// memory, postgres, mongo, or a redis-cached composition over postgres.
func buildInventoryStore(ctx context.Context, cfg *config.AppConfig) (inventory.Store, error) {
	switch cfg.Inventory.Backend {
	case "postgres":
		pool, err := pgxpool.New(ctx, *pgURL)
		if err != nil {
			return nil, err
		}
		st := pgstore.New(pool)
		if err := st.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return st, nil
	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(*mongoURI))
		if err != nil {
			return nil, err
		}
		return mongostore.New(client.Database("dungeonhub")), nil
	case "redis_cached":
		pool, err := pgxpool.New(ctx, *pgURL)
		if err != nil {
			return nil, err
		}
		persistent := pgstore.New(pool)
		if err := persistent.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
		return cached.New(persistent, redisstore.New(rdb)), nil
	default:
		return inventory.NewMemoryStore(), nil
	}
}

// tickLoop drives dispatcher.Server.Tick on a steady cadence, the
// passive-timeout half of §5's concurrency model: the core never sleeps
// internally, so something external has to supply `now`.
func tickLoop(srv *dispatcher.Server) {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for now := range t.C {
		srv.Tick(now)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWS upgrades one HTTP connection to a WebSocket carrying §6 wire
// frames as binary messages, creates a session, and funnels every decoded
// frame through srv.HandlePacket serially on this connection's own
// goroutine — satisfying §5's "frames from one connection are dispatched
// in arrival order" by construction. A second goroutine drains the
// session's send queue (fan-out frames from other connections) onto the
// same socket.
func handleWS(srv *dispatcher.Server, c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		obslog.Warn("ws_upgrade_failed", "upgrade failed", obslog.Reason(err.Error()))
		return
	}
	defer conn.Close()

	now := time.Now()
	sess := srv.NewSession(now)
	defer srv.ForceDisconnect(sess.ID(), "connection closed", "")

	done := make(chan struct{})
	safe.Go(func() { writePump(conn, sess, done) }, func(r any) {
		obslog.Error("write_pump_panicked", "recovered", obslog.SessionID(sess.ID()), obslog.Reason(fmt.Sprint(r)))
	})

	var dec wire.FrameDecoder
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			close(done)
			return
		}
		if mt != websocket.BinaryMessage {
			continue
		}
		dec.Append(data)
		for {
			hdr, payload, ok, err := dec.NextFrame()
			if err != nil {
				close(done)
				return
			}
			if !ok {
				break
			}
			if resp := srv.HandlePacket(sess, hdr, payload, time.Now()); resp != nil {
				sess.EnqueueSend(resp, time.Now())
			}
		}
	}
}

// writePump drains a session's outbound queue onto its socket. It is the
// only goroutine that writes to conn, so concurrent writes from fan-out
// (another connection's handler calling EnqueueSend on this session) stay
// serialized through the send queue rather than the socket itself.
func writePump(conn *websocket.Conn, sess interface {
	DequeueSend() ([]byte, bool)
}, done <-chan struct{}) {
	t := time.NewTicker(50 * time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			for {
				payload, ok := sess.DequeueSend()
				if !ok {
					break
				}
				if err := conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
					return
				}
			}
		}
	}
}
