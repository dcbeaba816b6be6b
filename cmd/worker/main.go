package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/mannsakha/sakha-server/internal/config"
	"github.com/mannsakha/sakha-server/internal/email"
	"github.com/mannsakha/sakha-server/internal/store/rabbitmq"
)

// retryDelay is how long a failed send waits on the retry queue before
// the broker feeds it back to the main queue.
const retryDelay = 30 * time.Second

func workerConcurrency() int {
	v := os.Getenv("WORKER_CONCURRENCY")
	if v == "" {
		return 2
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 2
	}
	if n > 50 {
		return 50
	}
	return n
}

func renderMail(cfg config.Config, job rabbitmq.EmailJob) (subject, body string, err error) {
	switch job.Kind {
	case rabbitmq.EmailWelcome:
		subject = "Welcome to MannSakha — Your account is ready"
		body = "Hello " + job.Name + ",\n\n" +
			"Welcome to MannSakha. Your account has been successfully created.\n\n" +
			"If you did not request this account, please contact our support immediately.\n\n" +
			"Best regards,\nMannSakha\n"
	case rabbitmq.EmailReset:
		resetURL := fmt.Sprintf("%s/reset-password.html?token=%s", cfg.PublicBaseURL, job.Token)
		subject = "Password Reset Request"
		body = "Hello,\n\n" +
			"You requested a password reset for your MannSakha account.\n" +
			"Open the link below to choose a new password. The link is valid for 1 hour.\n\n" +
			resetURL + "\n\n" +
			"If you didn't request this, please ignore this email.\n\n" +
			"Best regards,\nMannSakha\n"
	case rabbitmq.EmailNewsletter:
		subject = "You're subscribed to the MannSakha newsletter"
		body = "Hello,\n\n" +
			"Thanks for subscribing to the MannSakha newsletter. We'll share mental-wellness tips and product updates.\n\n" +
			"Best regards,\nMannSakha\n"
	default:
		return "", "", fmt.Errorf("unknown email kind %q", job.Kind)
	}
	return subject, body, nil
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()
	smtpCfg := email.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		logger.Fatal("rabbit dial", zap.Error(err))
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("rabbit channel", zap.Error(err))
	}
	defer ch.Close()

	if err := rabbitmq.DeclareTopology(ch, cfg.RabbitQueue); err != nil {
		logger.Fatal("queue declare", zap.Error(err))
	}

	concurrency := workerConcurrency()
	if err := ch.Qos(concurrency, 0, false); err != nil {
		logger.Fatal("qos", zap.Error(err))
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.Fatal("consume", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("mail worker started",
		zap.String("queue", cfg.RabbitQueue),
		zap.Int("concurrency", concurrency))

	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				var job rabbitmq.EmailJob
				if err := json.Unmarshal(d.Body, &job); err != nil || job.To == "" {
					logger.Warn("bad message", zap.Int("worker", workerID), zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}

				subject, body, err := renderMail(cfg, job)
				if err != nil {
					logger.Warn("unroutable job", zap.Int("worker", workerID), zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}

				if err := email.SendText(smtpCfg, job.To, subject, body); err != nil {
					attempt := rabbitmq.DeliveryAttempts(d.Headers)
					logger.Error("send failed",
						zap.Int("worker", workerID),
						zap.String("kind", job.Kind),
						zap.Int("attempt", attempt),
						zap.Error(err))

					if attempt >= rabbitmq.MaxDeliveries {
						_ = d.Nack(false, false) // park on the DLQ
						continue
					}
					if err := rabbitmq.ScheduleRetry(ctx, ch, cfg.RabbitQueue, d.Body, attempt+1, retryDelay); err != nil {
						logger.Error("retry publish failed", zap.Int("worker", workerID), zap.Error(err))
						_ = d.Nack(false, false)
						continue
					}
					_ = d.Ack(false)
					continue
				}

				if err := d.Ack(false); err != nil {
					logger.Warn("ack failed", zap.Int("worker", workerID), zap.Error(err))
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				logger.Warn("delivery channel closed")
				close(jobs)
				wg.Wait()
				return
			}
			jobs <- d
		}
	}
}
