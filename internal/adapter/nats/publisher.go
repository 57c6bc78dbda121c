package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"artbid-api/internal/common"
	"artbid-api/internal/entity"
	"artbid-api/internal/platform/logger"

	"github.com/nats-io/nats.go"
)

func Connect(url string, log logger.Logger) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("artbid-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warnw("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Infow("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return conn, nil
}

func SubjectFor(event *entity.AuctionEvent) string {
	return common.NatsEventSubjectPrefix + event.AuctionId.String()
}

type Publisher struct {
	conn *nats.Conn
}

func NewPublisher(conn *nats.Conn) *Publisher {
	return &Publisher{conn: conn}
}

func (p *Publisher) Publish(_ context.Context, event *entity.AuctionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal auction event: %w", err)
	}

	msg := nats.NewMsg(SubjectFor(event))
	msg.Data = payload
	msg.Header.Set(nats.MsgIdHdr, event.EventId)
	msg.Header.Set("Event-Type", event.Type)

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}

	return nil
}
