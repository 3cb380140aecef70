package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Exchange and queue names of the closing-report pipeline.
const (
	ReportsExchange   = "reports"
	ClosingQueue      = "reports.closing"
	ClosingRoutingKey = "closing"
)

// SetupChannel opens a channel and declares the reports exchange, the
// closing queue and its binding. Declarations are idempotent, so both the
// scheduler and the sender call this on startup.
func SetupChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}
	err = ch.ExchangeDeclare(
		ReportsExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	_, err = ch.QueueDeclare(
		ClosingQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	err = ch.QueueBind(ClosingQueue, ClosingRoutingKey, ReportsExchange, false, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ch, err
}
