package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"storefront/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	texts []string
	err   error
}

func (n *recordingNotifier) Notify(_ context.Context, text string) error {
	if n.err != nil {
		return n.err
	}
	n.texts = append(n.texts, text)
	return nil
}

func message(t *testing.T, event any) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: value}
}

func TestOrderPlacedNotification(t *testing.T) {
	n := &recordingNotifier{}
	w := NewNotificationWorker(nil, n)

	err := w.eventHandler.HandleMessage(context.Background(), message(t, models.OrderPlacedEvent{
		BaseEvent:     models.BaseEvent{EventType: models.EventTypeOrderPlaced},
		OrderID:       12,
		CustomerName:  "Ann",
		CustomerPhone: "5551234567",
		Total:         2550,
		Items: []models.OrderItemData{
			{ProductTitle: "Mug", Quantity: 2, Price: 1000},
			{ProductTitle: "Card", Quantity: 1, Price: 550},
		},
	}))
	require.NoError(t, err)
	require.Len(t, n.texts, 1)
	assert.Equal(t, "New order #12\nCustomer: Ann, 5551234567\n- Mug x2 = 20.00\n- Card x1 = 5.50\nTotal: 25.50", n.texts[0])
}

func TestStatusChangeNotification(t *testing.T) {
	n := &recordingNotifier{}
	w := NewNotificationWorker(nil, n)

	err := w.eventHandler.HandleMessage(context.Background(), message(t, models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{EventType: models.EventTypeOrderStatusChanged},
		OrderID:   3,
		From:      "pending",
		To:        "confirmed",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Order #3: pending -> confirmed"}, n.texts)
}

func TestNotifierFailureIsReturned(t *testing.T) {
	w := NewNotificationWorker(nil, &recordingNotifier{err: errors.New("offline")})

	err := w.eventHandler.HandleMessage(context.Background(), message(t, models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{EventType: models.EventTypeOrderStatusChanged},
		OrderID:   3,
	}))
	assert.ErrorContains(t, err, "offline")
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "0.05", FormatPrice(5))
	assert.Equal(t, "12.00", FormatPrice(1200))
	assert.Equal(t, "-1.50", FormatPrice(-150))
}
