package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// CheckinEvent is broadcast after a check-in or extra trip commits.
type CheckinEvent struct {
	Kind        string    `json:"kind"`
	RecordID    int64     `json:"recordId"`
	RecorridoID int64     `json:"recorridoId,omitempty"`
	Direction   string    `json:"direction"`
	Plate       string    `json:"plate"`
	Platform    string    `json:"platform"`
	Outcome     string    `json:"outcome"`
	OperatorID  int64     `json:"operatorId"`
	Timestamp   time.Time `json:"timestamp"`
}

const (
	KindVerification = "verificacion"
	KindExtra        = "extra"
)

type Publisher interface {
	PublishCheckin(ctx context.Context, event CheckinEvent) error
	Close()
}

type ConnectionMetrics interface {
	EventPublished(err error)
	EventsSetConnected(connected bool)
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) PublishCheckin(context.Context, CheckinEvent) error { return nil }

func (Nop) Close() {}

type NATSPublisher struct {
	nc      *nats.Conn
	prefix  string
	log     zerolog.Logger
	metrics ConnectionMetrics
}

func NewNATSPublisher(url, prefix string, log zerolog.Logger, m ConnectionMetrics) (*NATSPublisher, error) {
	log = log.With().Str("component", "nats").Logger()
	nc, err := nats.Connect(url,
		nats.Name("terminal-portal"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if m != nil {
				m.EventsSetConnected(false)
			}
			log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.EventsSetConnected(true)
			}
			log.Info().Msg("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.EventsSetConnected(false)
			}
			log.Info().Msg("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.EventsSetConnected(true)
	}
	return &NATSPublisher{nc: nc, prefix: prefix, log: log, metrics: m}, nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
		p.nc.Close()
	}
}

func (p *NATSPublisher) PublishCheckin(ctx context.Context, event CheckinEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject := Subject(p.prefix, event.Kind, event.Direction)
	b, err := json.Marshal(event)
	if err != nil {
		return err
	}
	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		p.metrics.EventPublished(err)
	}
	if err == nil {
		p.log.Debug().Str("subject", subject).Msg("event published")
	}
	return err
}

// Subject builds <prefix>.checkin.<direction>, with extras under
// <prefix>.checkin.extra.<direction>.
func Subject(prefix, kind, direction string) string {
	if kind == KindExtra {
		return fmt.Sprintf("%s.checkin.extra.%s", subjectToken(prefix), subjectToken(direction))
	}
	return fmt.Sprintf("%s.checkin.%s", subjectToken(prefix), subjectToken(direction))
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
