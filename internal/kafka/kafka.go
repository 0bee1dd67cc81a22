// Package kafka provides task-queue topic bootstrap and a broker readiness-probe
package kafka

import (
	"context"
	"errors"
	"log"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// EnsureTopics - creates the task-queue topics, retrying until the broker accepts them
func EnsureTopics(ctx context.Context, brokerAddr string, delay time.Duration, topics ...string) {
	client := &kafkago.Client{
		Addr:    kafkago.TCP(brokerAddr),
		Timeout: 10 * time.Second,
	}

	req := kafkago.CreateTopicsRequest{
		Topics: make([]kafkago.TopicConfig, 0, len(topics)),
	}
	for _, name := range topics {
		req.Topics = append(req.Topics, kafkago.TopicConfig{
			Topic:             name,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("EnsureTopics canceled or timed out")
			return
		default:
		}

		resp, err := client.CreateTopics(ctx, &req)
		if err != nil {
			log.Printf("Failed to run topics creation request: %v\nWait %v before next try...", err, delay)
			time.Sleep(delay)
			continue
		}

		pending := 0
		for name, topicErr := range resp.Errors {
			switch {
			case topicErr == nil:
			case errors.Is(topicErr, kafkago.TopicAlreadyExists):
			default:
				log.Printf("Topic %q creation error: %v", name, topicErr)
				pending++
			}
		}

		if pending == 0 {
			log.Println("Task-queue topics are in place")
			return
		}
		time.Sleep(delay)
	}
}

// WaitReady blocks until the broker answers a plain TCP dial
func WaitReady(brokerAddr string, delay time.Duration) {
	for {
		conn, err := kafkago.Dial("tcp", brokerAddr)
		if err == nil {
			if errConn := conn.Close(); errConn != nil {
				log.Println("Failed to close connection after probing Kafka readiness:", errConn)
			}
			break
		}
		log.Printf("Kafka not ready, retrying in %v...", delay)
		time.Sleep(delay)
	}
	log.Println("Kafka is ready!")
}
