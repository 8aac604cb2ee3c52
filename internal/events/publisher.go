package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/angelmondragon/content-console/pkg/enums"
	"github.com/angelmondragon/content-console/pkg/logger"
	"github.com/google/uuid"
)

const publishTimeout = 10 * time.Second

type topic interface {
	Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error)
}

// ContentChanged is the envelope published after every console write.
type ContentChanged struct {
	EventID    string    `json:"eventId"`
	OccurredAt time.Time `json:"occurredAt"`
	Resource   string    `json:"resource"`
	RecordID   string    `json:"recordId"`
	Action     string    `json:"action"`
}

// Publisher fans console writes out to the content topic so the public site can
// invalidate its caches. Delivery is best-effort; failures are logged.
type Publisher struct {
	topic topic
	logg  *logger.Logger
	now   func() time.Time
}

func NewPublisher(t topic, logg *logger.Logger) (*Publisher, error) {
	if t == nil {
		return nil, errors.New("pubsub topic required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Publisher{topic: t, logg: logg, now: time.Now}, nil
}

func (p *Publisher) ContentChanged(ctx context.Context, resource enums.Resource, id string, action enums.ChangeAction) {
	event := ContentChanged{
		EventID:    uuid.NewString(),
		OccurredAt: p.now().UTC(),
		Resource:   resource.String(),
		RecordID:   id,
		Action:     action.String(),
	}
	logCtx := p.logg.WithFields(ctx, map[string]any{
		"event_id":  event.EventID,
		"resource":  event.Resource,
		"record_id": event.RecordID,
		"action":    event.Action,
	})

	data, err := json.Marshal(event)
	if err != nil {
		p.logg.Error(logCtx, "encode content change failed", err)
		return
	}

	// The request context may be cancelled right after the response is written.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	msgID, err := p.topic.Publish(pubCtx, data, map[string]string{
		"event_id":   event.EventID,
		"event_type": "content." + event.Action,
		"resource":   event.Resource,
	})
	if err != nil {
		p.logg.Warn(logCtx, "publish content change failed: "+err.Error())
		return
	}
	p.logg.Debug(p.logg.WithField(logCtx, "message_id", msgID), "content change published")
}
