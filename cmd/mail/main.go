package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hdclinic/bed-scheduler/backend/internal/config"
	"github.com/hdclinic/bed-scheduler/backend/internal/handler"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"
)

func main() {
	/**********************************************
	 * logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	/**********************************************
	 * configuration
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("gagal membaca konfigurasi", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * SMTP client
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("gagal membuat klien email", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	clientDialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(clientDialCtx); err != nil {
		logger.Error("gagal terhubung ke server email", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("gagal terhubung ke rabbitmq", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("gagal membuka channel", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		handler.MailQueue,
		true,  // durable
		false, // auto-delete off so the queue survives without consumers
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		logger.Error("gagal mendeklarasikan antrean", slog.String("error", err.Error()))
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	msgs, err := ch.Consume(
		q.Name,
		"",    // broker-assigned consumer tag
		false, // manual ack
		false, // exclusive
		false, // no-local, unsupported by RabbitMQ
		false, // no-wait
		nil,
	)
	if err != nil {
		logger.Error("gagal mengonsumsi pesan", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Error("channel rabbitmq tertutup")
					return
				}

				m, err := buildMessage(cfg.Email.SMTP.Username, msg.Body)
				if err != nil {
					logger.Error("pesan email tidak valid", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				if err := client.DialAndSend(m); err != nil {
					logger.Error("gagal mengirim email", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // requeue
					continue
				}

				logger.Info("email terkirim", slog.String("subject", m.GetGenHeader(mail.HeaderSubject)[0]))
				_ = msg.Ack(false)
			}
		}
	}()

	logger.Info("menunggu pesan... (CTRL+C untuk keluar)")
	<-sigChan

	logger.Info("menghentikan mail worker...")
	cancel()
	wg.Wait()
	logger.Info("mail worker berhenti")
}
