package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"lp-optimizer-go/market"
)

const (
	defaultWSEndpoint = "wss://ws-subscriptions-clob.polymarket.com/ws/market"

	wsReadTimeout     = 60 * time.Second
	wsPingInterval    = 25 * time.Second
	wsReconnectMax    = 30 * time.Second
	defaultMaxSamples = 24 * 14 // two weeks of hourly-grade samples
)

// Feed maintains a live in-memory price series per market from the venue's
// market websocket channel. It supplements the REST history between scans; it
// is not the primary series source.
type Feed struct {
	endpoint string
	dialer   *websocket.Dialer
	log      *zap.Logger

	mu        sync.RWMutex
	histories map[string][]market.PricePoint
	maxPoints int
}

// NewFeed creates a Feed. endpoint "" uses the production websocket.
func NewFeed(endpoint string, log *zap.Logger) *Feed {
	if endpoint == "" {
		endpoint = defaultWSEndpoint
	}
	return &Feed{
		endpoint:  endpoint,
		dialer:    websocket.DefaultDialer,
		log:       log.Named("ws"),
		histories: make(map[string][]market.PricePoint),
		maxPoints: defaultMaxSamples,
	}
}

type wsSubscribe struct {
	Type      string   `json:"type"`
	AssetsIDs []string `json:"assets_ids"`
}

type wsPriceEvent struct {
	EventType string `json:"event_type"`
	Market    string `json:"market"`
	Price     string `json:"price"`
	Timestamp string `json:"timestamp"`
}

// Run connects and consumes price events until ctx is done, reconnecting with
// capped exponential backoff on failure.
func (f *Feed) Run(ctx context.Context, marketIDs []string) error {
	if len(marketIDs) == 0 {
		return fmt.Errorf("gateway: no markets to subscribe")
	}
	backoff := time.Second
	for {
		err := f.consume(ctx, marketIDs)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f.log.Warn("feed disconnected", zap.Error(err), zap.Duration("retry_in", backoff))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > wsReconnectMax {
			backoff = wsReconnectMax
		}
	}
}

func (f *Feed) consume(ctx context.Context, marketIDs []string) error {
	conn, _, err := f.dialer.DialContext(ctx, f.endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(wsSubscribe{Type: "market", AssetsIDs: marketIDs}); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	f.log.Info("feed connected", zap.Int("markets", len(marketIDs)))

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})
	go f.pingLoop(ctx, conn)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(wsReadTimeout)); err != nil {
			return err
		}
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		f.handleMessage(raw)
	}
}

func (f *Feed) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			conn.Close()
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}

func (f *Feed) handleMessage(raw []byte) {
	var events []wsPriceEvent
	if err := json.Unmarshal(raw, &events); err != nil {
		// Single-object frames arrive too.
		var ev wsPriceEvent
		if json.Unmarshal(raw, &ev) != nil {
			return
		}
		events = []wsPriceEvent{ev}
	}
	for _, ev := range events {
		if ev.EventType != "price_change" && ev.EventType != "last_trade_price" {
			continue
		}
		var price float64
		if _, err := fmt.Sscanf(ev.Price, "%f", &price); err != nil || price <= 0 || price >= 1 {
			continue
		}
		f.record(ev.Market, price)
	}
}

func (f *Feed) record(marketID string, price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h := append(f.histories[marketID], market.PricePoint{
		Timestamp: time.Now().UTC(),
		Price:     price,
	})
	if len(h) > f.maxPoints {
		h = h[len(h)-f.maxPoints:]
	}
	f.histories[marketID] = h
}

// History returns a copy of the live series collected for the market, empty
// if none has been seen yet.
func (f *Feed) History(marketID string) []market.PricePoint {
	f.mu.RLock()
	defer f.mu.RUnlock()
	h := f.histories[marketID]
	out := make([]market.PricePoint, len(h))
	copy(out, h)
	return out
}
