package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/kaumahan/harvest-market-api/internal/model"
	"github.com/kaumahan/harvest-market-api/internal/repository"
)

const (
	orderPlacedQueue = "orders.placed"
	dlxExchange      = "orders.placed.dlx"
	dlqQueueName     = "orders.placed.dlq"
	idempotencyTTL   = 24 * time.Hour
)

// NotificationWorker consumes order-placed messages published after a
// checkout commits and records a notification for each participant.
// Checkout itself never waits on it.
type NotificationWorker struct {
	channel     *amqp.Channel
	orderRepo   repository.OrderRepository
	accountRepo repository.AccountRepository
	redisClient *redis.Client
	log         *slog.Logger
	done        chan struct{}
}

func NewNotificationWorker(
	ch *amqp.Channel,
	orderRepo repository.OrderRepository,
	accountRepo repository.AccountRepository,
	redisClient *redis.Client,
	log *slog.Logger,
) *NotificationWorker {
	return &NotificationWorker{
		channel:     ch,
		orderRepo:   orderRepo,
		accountRepo: accountRepo,
		redisClient: redisClient,
		log:         log,
		done:        make(chan struct{}),
	}
}

// SetupRabbitMQ declares exchanges, queues, and bindings (DLX/DLQ).
func SetupRabbitMQ(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(dlxExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLX: %w", err)
	}
	if _, err := ch.QueueDeclare(dlqQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}
	if err := ch.QueueBind(dlqQueueName, orderPlacedQueue, dlxExchange, false, nil); err != nil {
		return fmt.Errorf("bind DLQ: %w", err)
	}
	if _, err := ch.QueueDeclare(orderPlacedQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    dlxExchange,
		"x-dead-letter-routing-key": orderPlacedQueue,
	}); err != nil {
		return fmt.Errorf("declare order-placed queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set QoS: %w", err)
	}
	return nil
}

func (w *NotificationWorker) Start(ctx context.Context) error {
	msgs, err := w.channel.Consume(orderPlacedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				w.processMessage(ctx, msg)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	w.log.Info("notification worker started")
	return nil
}

func (w *NotificationWorker) Stop() { close(w.done) }

func (w *NotificationWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	var placed model.OrderPlacedMessage
	if err := json.Unmarshal(msg.Body, &placed); err != nil {
		w.log.Error("unmarshal order-placed message", "error", err)
		_ = msg.Nack(false, false)
		return
	}

	log := w.log.With("order_id", placed.OrderID, "buyer_id", placed.BuyerID, "seller_id", placed.SellerID)

	// Idempotency check via Redis
	idempotencyKey := "order_notified:" + placed.OrderID.String()
	exists, err := w.redisClient.Exists(ctx, idempotencyKey).Result()
	if err != nil {
		log.Error("check idempotency key", "error", err)
		_ = msg.Nack(false, true)
		return
	}
	if exists > 0 {
		log.Info("order already notified, skipping")
		_ = msg.Ack(false)
		return
	}

	if err := w.notify(ctx, placed.OrderID); err != nil {
		log.Error("notify order failed", "error", err)
		_ = msg.Nack(false, false) // to DLQ
		return
	}

	if err := w.redisClient.Set(ctx, idempotencyKey, "1", idempotencyTTL).Err(); err != nil {
		log.Error("set idempotency key", "error", err)
	}

	_ = msg.Ack(false)
	log.Info("order notification sent")
}

func (w *NotificationWorker) notify(ctx context.Context, orderID uuid.UUID) error {
	order, err := w.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return fmt.Errorf("order not found: %s", orderID)
	}

	buyer, err := w.accountRepo.GetByID(ctx, order.BuyerID)
	if err != nil {
		return fmt.Errorf("get buyer: %w", err)
	}
	seller, err := w.accountRepo.GetByID(ctx, order.SellerID)
	if err != nil {
		return fmt.Errorf("get seller: %w", err)
	}
	if buyer == nil || seller == nil {
		return fmt.Errorf("order %s references a missing account", orderID)
	}

	// Stands in for outbound email/SMS; downstream channels hang off
	// this log line until one is wired up.
	w.log.Info("order placed",
		"order_id", order.ID,
		"buyer_email", buyer.Email,
		"seller_email", seller.Email,
		"total", order.TotalAmount.StringFixed(2),
		"items", len(order.Items),
	)
	return nil
}
