package mq

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/auth/usecase"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/instrument"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/messaging"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/uid"
	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/shared/event"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client  messaging.Publisher
	eventID uid.StringID
	ins     instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, eventID uid.StringID, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, eventID: eventID, ins: ins}
}

func (m *Messaging) PublishCodeIssued(ctx context.Context, msg usecase.CodeIssuedEvent) error {
	return m.publish(ctx, "PublishCodeIssued", event.AuthCodeIssuedDestination, strconv.FormatInt(msg.IssuanceID, 10),
		func(id string) any {
			return event.AuthCodeIssuedMessage{
				EventID:    id,
				IssuanceID: msg.IssuanceID,
				IssuedAt:   msg.IssuedAt.UnixMilli(),
				ExpiresAt:  msg.ExpiresAt.UnixMilli(),
			}
		})
}

func (m *Messaging) PublishSessionCreated(ctx context.Context, msg usecase.SessionCreatedEvent) error {
	return m.publish(ctx, "PublishSessionCreated", event.AuthSessionCreatedDestination, strconv.FormatInt(msg.IssuanceID, 10),
		func(id string) any {
			return event.AuthSessionCreatedMessage{
				EventID:    id,
				IssuanceID: msg.IssuanceID,
				CreatedAt:  msg.CreatedAt.UnixMilli(),
				ExpiresAt:  msg.ExpiresAt.UnixMilli(),
			}
		})
}

func (m *Messaging) PublishSessionRevoked(ctx context.Context, msg usecase.SessionRevokedEvent) error {
	return m.publish(ctx, "PublishSessionRevoked", event.AuthSessionRevokedDestination, "",
		func(id string) any {
			return event.AuthSessionRevokedMessage{EventID: id, RevokedAt: msg.RevokedAt.UnixMilli()}
		})
}

func (m *Messaging) publish(ctx context.Context, name, destination, key string, build func(id string) any) error {
	ctx, span := m.ins.Tracer("auth.outbound.mq").Start(ctx, name)
	defer span.End()

	eventID := m.eventID.Generate()
	span.SetAttributes(attribute.String("messaging.destination.name", destination), attribute.String("event.id", eventID))

	body, err := json.Marshal(build(eventID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, destination, messaging.OutgoingMessage{
		ID:      eventID,
		Body:    body,
		Key:     []byte(key),
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
