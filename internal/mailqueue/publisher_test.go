package mailqueue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaushala-dev/milk-delivery/backend/internal/domain"
)

type fakeChannel struct {
	key  string
	msgs []amqp.Publishing
	err  error
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}
	f.key = key
	f.msgs = append(f.msgs, msg)
	return f.err
}

func TestPublish(t *testing.T) {
	ch := &fakeChannel{}
	p := NewPublisher(ch, "email_queue", time.Second)

	err := p.Publish(context.Background(), domain.MailMessage{
		Type: domain.MailTypeNewAccount,
		To:   "ravi@example.com",
		Data: domain.NewAccountMailData{FullName: "Ravi", Username: "ravi", Password: "secret"},
	})
	require.NoError(t, err)
	require.Len(t, ch.msgs, 1)

	msg := ch.msgs[0]
	assert.Equal(t, "email_queue", ch.key)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, domain.MailTypeNewAccount, msg.Type)
	_, err = uuid.Parse(msg.MessageId)
	assert.NoError(t, err)

	var decoded struct {
		Type string                    `json:"type"`
		To   string                    `json:"to"`
		Data domain.NewAccountMailData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, "ravi@example.com", decoded.To)
	assert.Equal(t, "ravi", decoded.Data.Username)
}

func TestPublishError(t *testing.T) {
	ch := &fakeChannel{err: amqp.ErrClosed}
	p := NewPublisher(ch, "email_queue", time.Second)

	err := p.Publish(context.Background(), domain.MailMessage{Type: domain.MailTypeMonthlyBill})
	assert.ErrorIs(t, err, amqp.ErrClosed)
}
