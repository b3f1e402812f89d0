package service

import (
	"context"

	mq "github.com/amansoomro062/codesign/internal/infra/queue"
	"github.com/amansoomro062/codesign/internal/modules/model"
	"go.uber.org/zap"
)

// ActivityNotifier publishes committed activity entries. Failures are logged
// and never undo the write that produced the entry.
type ActivityNotifier struct {
	pub      mq.Publisher
	exchange string
	log      *zap.Logger
}

func NewActivityNotifier(pub mq.Publisher, exchange string, log *zap.Logger) *ActivityNotifier {
	if pub == nil {
		pub = mq.NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ActivityNotifier{pub: pub, exchange: exchange, log: log}
}

func (n *ActivityNotifier) Notify(ctx context.Context, ev model.ActivityEvent) {
	if n == nil {
		return
	}
	if err := n.pub.PublishJSON(context.WithoutCancel(ctx), n.exchange, ev.RoutingKey(), ev); err != nil {
		n.log.Warn("publish activity event",
			zap.String("routing_key", ev.RoutingKey()),
			zap.String("entity_id", ev.EntityID.String()),
			zap.Error(err))
	}
}
