package messaging

import (
	"fmt"
	"net/url"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ConnectRabbitMQ пытается подключиться к RabbitMQ с несколькими попытками.
func ConnectRabbitMQ(rawURL string, maxRetries int, retryDelay time.Duration, logger *zap.Logger) (*amqp.Connection, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}
	logger.Info("Attempting to connect to RabbitMQ",
		zap.String("url", MaskURL(rawURL)),
		zap.Int("max_retries", maxRetries),
		zap.Duration("retry_delay", retryDelay),
	)

	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		var conn *amqp.Connection
		conn, err = amqp.Dial(rawURL)
		if err == nil {
			logger.Info("Successfully connected to RabbitMQ", zap.Int("attempt", attempt))
			go watchConnection(conn, logger)
			return conn, nil
		}
		logger.Warn("RabbitMQ connection failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxRetries),
			zap.Error(err),
		)
		if attempt < maxRetries {
			time.Sleep(retryDelay)
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, err)
}

func watchConnection(conn *amqp.Connection, logger *zap.Logger) {
	notifyClose := conn.NotifyClose(make(chan *amqp.Error, 1))
	if err := <-notifyClose; err != nil {
		logger.Error("RabbitMQ connection closed unexpectedly", zap.Error(err))
		return
	}
	logger.Info("RabbitMQ connection closed gracefully.")
}

// MaskURL скрывает учетные данные в URL для логирования.
func MaskURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.User == nil {
		return rawURL
	}
	u.User = url.UserPassword("****", "****")
	return u.String()
}
