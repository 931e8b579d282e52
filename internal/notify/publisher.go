package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

const Channel = "booking.events"

type EventType string

const (
	BookingCreated   EventType = "booking.created"
	BookingCancelled EventType = "booking.cancelled"
)

// Event is the fire-and-forget payload handed to the notification
// collaborator. Delivery is someone else's problem; the scheduling core
// only publishes.
type Event struct {
	Type      EventType `json:"type"`
	BookingID string    `json:"booking_id"`
	BarberID  uint      `json:"barber_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Publisher pushes events onto a redis channel through a buffered queue
// and a single worker, so a slow or down broker never blocks a commit.
type Publisher struct {
	rdb   *redis.Client
	queue chan Event
}

func NewPublisher(rdb *redis.Client) *Publisher {
	p := &Publisher{
		rdb:   rdb,
		queue: make(chan Event, 100),
	}

	go p.worker()
	return p
}

func (p *Publisher) worker() {
	for ev := range p.queue {
		payload, err := json.Marshal(ev)
		if err != nil {
			log.Println("notify marshal error:", err)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := p.rdb.Publish(ctx, Channel, payload).Err(); err != nil {
			log.Println("notify publish error:", err)
		}
		cancel()
	}
}

func (p *Publisher) Publish(ev Event) {
	select {
	case p.queue <- ev:
	default:
		log.Println("notify queue full, dropping event")
	}
}
