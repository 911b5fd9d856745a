package availabilitybus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Publisher публикует события инвалидации доступности в канал Redis
type Publisher struct {
	client  *redis.Client
	channel string
	timeout time.Duration
	log     Logger
}

// NewPublisher создает publisher поверх Redis-клиента
func NewPublisher(addr, password string, db int, channel string, timeout time.Duration, log Logger) *Publisher {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		MaxRetries:   1,
	})

	return &Publisher{
		client:  client,
		channel: channel,
		timeout: timeout,
		log:     log,
	}
}

// Ping проверяет соединение с Redis
func (p *Publisher) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: ping: %v", ErrPublish, err)
	}
	return nil
}

// Publish отправляет событие в канал
func (p *Publisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal event: %v", ErrInternal, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("%w: channel=%s: %v", ErrPublish, p.channel, err)
	}
	return nil
}

// NotifyChanged публикует событие для (staffID, date).
// Ошибка публикации только логируется: запись в БД уже зафиксирована.
func (p *Publisher) NotifyChanged(ctx context.Context, staffID int64, date time.Time, reason string) {
	event := Event{StaffID: staffID, Date: date.Format(domain.DateFormat), Reason: reason}

	if err := p.Publish(ctx, event); err != nil {
		p.log.Warn("availabilitybus: staff=%d date=%s reason=%s not published: %v",
			event.StaffID, event.Date, event.Reason, err)
		return
	}
	p.log.Info("availabilitybus: published staff=%d date=%s reason=%s", event.StaffID, event.Date, event.Reason)
}

// Close закрывает соединение с Redis
func (p *Publisher) Close() error {
	return p.client.Close()
}

// Noop используется, когда инвалидация выключена
type Noop struct{}

func (Noop) NotifyChanged(context.Context, int64, time.Time, string) {}
