package queue

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// Message is one in-flight refresh job delivery. Ack and Nack settle the
// delivery on the channel it arrived on; a Message must not outlive that
// channel.
type Message struct {
	job         *Job
	deliveryTag uint64
	channel     *amqp.Channel
}

func newMessage(job *Job, delivery amqp.Delivery, ch *amqp.Channel) *Message {
	return &Message{
		job:         job,
		deliveryTag: delivery.DeliveryTag,
		channel:     ch,
	}
}

// Ack marks the delivery as processed
func (m *Message) Ack() error {
	return m.channel.Ack(m.deliveryTag, false)
}

// Nack rejects the delivery. With requeue=false the broker routes it to the
// dead-letter queue.
func (m *Message) Nack(requeue bool) error {
	return m.channel.Nack(m.deliveryTag, false, requeue)
}

// GetJob returns the carried refresh job
func (m *Message) GetJob() *Job {
	return m.job
}

var _ MessageInterface = (*Message)(nil)
