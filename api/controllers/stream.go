package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/caec/caec-backend/internal/telemetry"
	"github.com/caec/caec-backend/pkg/logger"
	"github.com/caec/caec-backend/pkg/metrics"
)

const (
	defaultStreamInterval = 5 * time.Second
	streamWriteWait       = 10 * time.Second
)

// StreamParams wires the system-data websocket.
type StreamParams struct {
	Service  telemetry.Service
	Interval time.Duration
	Metrics  *metrics.HTTPMetrics
	Logger   *logger.Logger
	// CheckOrigin defaults to same-origin when nil.
	CheckOrigin func(r *http.Request) bool
}

// SystemDataStream upgrades to a websocket and pushes one snapshot right away
// and another every interval until the client goes away.
func SystemDataStream(params StreamParams) http.HandlerFunc {
	interval := params.Interval
	if interval <= 0 {
		interval = defaultStreamInterval
	}
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     params.CheckOrigin,
	}
	logg := params.Logger

	return func(w http.ResponseWriter, r *http.Request) {
		if params.Service == nil {
			http.Error(w, "telemetry service unavailable", http.StatusInternalServerError)
			return
		}
		userID, err := requireUser(r)
		if err != nil {
			http.Error(w, "session required", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the error response.
			logg.Warn(r.Context(), "telemetry.stream.upgrade_failed")
			return
		}
		params.Metrics.StreamOpened()
		defer func() {
			params.Metrics.StreamClosed()
			_ = conn.Close()
		}()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		go readPump(conn, cancel)

		ctx = logg.WithField(ctx, "event", "telemetry.stream")
		logg.Info(ctx, "stream opened")

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if err := pushSnapshot(ctx, conn, params.Service, userID); err != nil {
				logg.Info(logg.WithField(ctx, "reason", err.Error()), "stream closed")
				return
			}
			select {
			case <-ctx.Done():
				logg.Info(ctx, "stream closed by client")
				return
			case <-ticker.C:
			}
		}
	}
}

func pushSnapshot(ctx context.Context, conn *websocket.Conn, svc telemetry.Service, userID int64) error {
	data, err := svc.Snapshot(ctx, userID)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return conn.WriteJSON(data)
}

// readPump drains client frames so control messages are processed, and
// cancels the stream once the peer disconnects.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
