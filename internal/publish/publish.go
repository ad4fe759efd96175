package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/lucasnoah/defendercheck/internal/checks"
)

const (
	// DefaultPrefix is the subject prefix results are published under.
	DefaultPrefix = "defender.results"
	// ConnectTimeout bounds the initial connection.
	ConnectTimeout = 10 * time.Second
	// FlushTimeout bounds the wait for the server to acknowledge a publish.
	FlushTimeout = 5 * time.Second
)

// Publisher fans a finished run out to other consumers.
type Publisher interface {
	Publish(ctx context.Context, run *checks.Run) error
	Close() error
}

// Conn is the subset of *nats.Conn the publisher needs.
type Conn interface {
	PublishMsg(m *nats.Msg) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSPublisher publishes runs as JSON to <prefix>.<host>.
type NATSPublisher struct {
	conn   Conn
	prefix string
	logger *zap.Logger
}

// NewNATSPublisher connects to natsURL.
func NewNATSPublisher(natsURL, prefix string, logger *zap.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(natsURL,
		nats.Name("defender-check"),
		nats.Timeout(ConnectTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", natsURL, err)
	}
	logger.Debug("connected to NATS", zap.String("url", natsURL))
	return NewWithConn(conn, prefix, logger), nil
}

// NewWithConn wraps an existing connection.
func NewWithConn(conn Conn, prefix string, logger *zap.Logger) *NATSPublisher {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NATSPublisher{conn: conn, prefix: prefix, logger: logger}
}

// Subject returns the subject a host's results are published to. Characters
// that delimit or wildcard NATS tokens are replaced in the host name.
func Subject(prefix, host string) string {
	if host == "" {
		host = "unknown"
	}
	token := strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			return '_'
		}
		return r
	}, host)
	return prefix + "." + token
}

// Publish sends the run and waits for the server to process it.
func (p *NATSPublisher) Publish(ctx context.Context, run *checks.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	msg := nats.NewMsg(Subject(p.prefix, run.Host))
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, run.ID)
	msg.Header.Set("x-host", run.Host)
	msg.Header.Set("x-evaluated-at", run.EvaluatedAt.UTC().Format(time.RFC3339))
	msg.Header.Set("x-warn", strconv.Itoa(run.Count(checks.StateWarn)))
	msg.Header.Set("x-crit", strconv.Itoa(run.Count(checks.StateCrit)))

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish run: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, FlushTimeout)
	defer cancel()
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush NATS connection: %w", err)
	}

	p.logger.Debug("run published", zap.String("run_id", run.ID), zap.String("subject", msg.Subject))
	return nil
}

// Close closes the connection.
func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}
