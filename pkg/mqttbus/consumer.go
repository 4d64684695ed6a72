package mqttbus

import (
	"context"
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// IConsumer defines the consuming side of the bus; T documents the payload
// type the handler is expected to decode.
type IConsumer[T any] interface {
	ConsumeMessage(ctx context.Context)
	SetHandler(handler func(topic string, message mqtt.Message) error)
}

// Consumer subscribes to a single topic filter and dispatches messages to
// its handler.
type Consumer struct {
	client  mqtt.Client
	handler func(topic string, message mqtt.Message) error
	topic   string
}

func NewConsumer(client mqtt.Client, topic string, handler func(topic string, message mqtt.Message) error) *Consumer {
	return &Consumer{
		client:  client,
		topic:   topic,
		handler: handler,
	}
}

func (c *Consumer) SetHandler(handler func(topic string, message mqtt.Message) error) {
	c.handler = handler
}

// qosFor picks QoS 1 for decision/command/result topics, where a lost
// message means a missed pump action. Raw readings stay at QoS 0.
func qosFor(topic string) byte {
	t := strings.TrimSpace(topic)
	if strings.HasPrefix(t, "event/pumpDecision") ||
		strings.HasPrefix(t, "event/pumpResult") ||
		strings.HasPrefix(t, "event/pumpStateChange") ||
		strings.HasPrefix(t, "cmd/pumpState") {
		return 1
	}
	return 0
}

// ConsumeMessage subscribes and blocks until the context is cancelled.
func (c *Consumer) ConsumeMessage(ctx context.Context) {
	token := c.client.Subscribe(
		c.topic,
		qosFor(c.topic),
		func(client mqtt.Client, message mqtt.Message) {
			if c.handler == nil {
				fmt.Printf("No handler set for topic %s\n", c.topic)
				return
			}
			if err := c.handler(c.topic, message); err != nil {
				fmt.Printf("Error handling message: %v\n", err)
			}
		},
	)

	if token.Wait() && token.Error() != nil {
		fmt.Printf("Error subscribing to topic %s: %v\n", c.topic, token.Error())
		return
	}

	fmt.Printf("Successfully subscribed to topic %s\n", c.topic)

	<-ctx.Done()

	unsubToken := c.client.Unsubscribe(c.topic)
	unsubToken.Wait()
}

// MultiConsumer subscribes to several topic filters with one handler.
type MultiConsumer struct {
	client  mqtt.Client
	topics  []string
	handler func(topic string, message mqtt.Message) error
}

func NewMultiConsumer(client mqtt.Client, topics []string, handler func(topic string, message mqtt.Message) error) *MultiConsumer {
	return &MultiConsumer{
		client:  client,
		topics:  topics,
		handler: handler,
	}
}

func (m *MultiConsumer) SetHandler(handler func(topic string, message mqtt.Message) error) {
	m.handler = handler
}

func (m *MultiConsumer) ConsumeMessage(ctx context.Context) {
	for _, topic := range m.topics {
		topic := topic
		token := m.client.Subscribe(
			topic,
			qosFor(topic),
			func(client mqtt.Client, msg mqtt.Message) {
				if m.handler == nil {
					fmt.Printf("No handler set for topic %s\n", topic)
					return
				}
				if err := m.handler(topic, msg); err != nil {
					fmt.Printf("Error handling message on %s: %v\n", topic, err)
				}
			},
		)
		token.Wait()
		if token.Error() != nil {
			fmt.Printf("Error subscribing to topic %s: %v\n", topic, token.Error())
		} else {
			fmt.Printf("Successfully subscribed to topic %s\n", topic)
		}
	}

	<-ctx.Done()

	for _, topic := range m.topics {
		m.client.Unsubscribe(topic)
	}
}
