package worker

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/broker"
	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// Notifier delivers a message to the shop's admin channel
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// LogNotifier writes notifications to the service log
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: util.GetLogger().Named("notifier")}
}

func (n *LogNotifier) Notify(_ context.Context, text string) error {
	n.logger.Info("Admin notification", zap.String("text", text))
	return nil
}

// NotificationWorker turns order events into admin notifications
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	notifier     Notifier
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer, notifier Notifier) *NotificationWorker {
	w := &NotificationWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		notifier:     notifier,
	}
	w.eventHandler.OnOrderPlaced(w.handleOrderPlaced)
	w.eventHandler.OnOrderStatusChanged(w.handleOrderStatusChanged)
	return w
}

// Start consumes events until ctx is cancelled
func (w *NotificationWorker) Start(ctx context.Context) error {
	util.GetLogger().Info("Starting notification worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	util.GetLogger().Info("Stopping notification worker")
	return w.consumer.Close()
}

func (w *NotificationWorker) handleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	if err := w.notifier.Notify(ctx, FormatOrderPlaced(event)); err != nil {
		return fmt.Errorf("failed to notify order %d: %w", event.OrderID, err)
	}
	util.NotificationsSentTotal.WithLabelValues(event.EventType).Inc()
	return nil
}

func (w *NotificationWorker) handleOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	text := fmt.Sprintf("Order #%d: %s -> %s", event.OrderID, event.From, event.To)
	if err := w.notifier.Notify(ctx, text); err != nil {
		return fmt.Errorf("failed to notify order %d: %w", event.OrderID, err)
	}
	util.NotificationsSentTotal.WithLabelValues(event.EventType).Inc()
	return nil
}

// FormatOrderPlaced renders a new order as a multi-line admin message
func FormatOrderPlaced(event *models.OrderPlacedEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New order #%d\n", event.OrderID)
	fmt.Fprintf(&b, "Customer: %s, %s\n", event.CustomerName, event.CustomerPhone)
	for _, item := range event.Items {
		fmt.Fprintf(&b, "- %s x%d = %s\n", item.ProductTitle, item.Quantity, FormatPrice(item.Price*int64(item.Quantity)))
	}
	fmt.Fprintf(&b, "Total: %s", FormatPrice(event.Total))
	return b.String()
}

// FormatPrice renders minor currency units with two decimals
func FormatPrice(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
