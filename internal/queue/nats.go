package queue

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// NewNATS constructs a request/reply queue over an open NATS connection.
// Replicas share group so each request is answered once.
func NewNATS(log *slog.Logger, nc *nats.Conn, group string) Queue {
	return &natsQueue{log: log, nc: nc, group: group}
}

type natsQueue struct {
	log   *slog.Logger
	nc    *nats.Conn
	group string
}

func (q *natsQueue) Serve(ctx context.Context, subject string, handler Handler) error {
	sub, err := q.nc.QueueSubscribe(subject, q.group, func(msg *nats.Msg) {
		q.handleMessage(ctx, msg, handler)
	})
	if err != nil {
		return err
	}
	q.log.Info("serving requests", "subject", subject, "group", q.group)
	<-ctx.Done()
	return sub.Drain()
}

func (q *natsQueue) handleMessage(ctx context.Context, msg *nats.Msg, handler Handler) {
	if msg.Reply == "" {
		q.log.Warn("dropping request without reply subject", "subject", msg.Subject)
		return
	}
	if err := msg.Respond(q.reply(ctx, msg.Data, handler)); err != nil {
		q.log.Error("failed to send reply", "subject", msg.Subject, "err", err)
	}
}

func (q *natsQueue) reply(ctx context.Context, data []byte, handler Handler) []byte {
	body, err := handler(ctx, data)
	if err != nil {
		q.log.Error("request handler failed", "err", err)
		return EncodeError("Internal", err)
	}
	return body
}

func (q *natsQueue) Close() error {
	return q.nc.Drain()
}
