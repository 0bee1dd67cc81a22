package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/capyconnect/imagehub/internal/kafka"
	"github.com/capyconnect/imagehub/internal/repository"
	"github.com/capyconnect/imagehub/internal/storage"
	"github.com/capyconnect/imagehub/internal/worker"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
)

func main() {
	// инициализировать конфиг/ считать энвы
	appConfig := config.New()
	appConfig.EnableEnv("")
	if err := appConfig.LoadEnvFiles("./.env"); err != nil {
		log.Fatalf("Failed to load envs: %s\nExiting app...", err)
	}

	// реестр вариантов опционален, как и в api
	var dbConn *dbpg.DB
	var registry worker.VariantRegistry
	if appConfig.GetString("POSTGRES_DSN") != "" {
		dbConn = repository.ConnectWithRetries(appConfig, 5, 10*time.Second)
		registry = repository.NewPostgresImageRegistry(dbConn)
	}

	// подключиться к хранилищу
	strg := storage.NewDurableStorage(appConfig, 10*time.Second)

	// ждем пока кафка раздуплится
	broker := appConfig.GetString("KAFKA_BROKER")
	kafka.WaitReady(broker, 5*time.Second)

	// подключиться к кафке как читатель
	queue := make(chan kafkago.Message)
	retryStrategy := retry.Strategy{
		Attempts: 5,
		Delay:    2 * time.Second,
		Backoff:  1.5,
	}
	topic := appConfig.GetString("KAFKA_TOPIC")
	groupID := appConfig.GetString("KAFKA_GROUPID")
	cons := wbfkafka.NewConsumer([]string{broker}, topic, groupID)

	// Listening to interruptions through context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cons.StartConsuming(ctx, queue, retryStrategy)

	varPrefix := appConfig.GetString("VARIANT_PREFIX")
	if varPrefix == "" {
		varPrefix = "variants/"
	}

	// Собираем воедино все что нужно воркеру и запускаем его
	go worker.NewWorkerInstance(strg, registry, queue, cons, varPrefix, standardizedProfile(appConfig)).StartWorker(ctx)

	// Waiting for interruption to stop context to start Graceful shutdown
	<-ctx.Done()

	shutdown(cons, dbConn)
	log.Println("Exiting worker...")
}

func shutdown(cons *wbfkafka.Consumer, dbConn *dbpg.DB) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	// Closing Kafka connection:
	if err := cons.Close(); err != nil {
		log.Println("Failed to close Kafka-reader:", err)
	}
	log.Println("Kafka-consumer connection closed.")

	// Closing DB connection
	if dbConn != nil {
		if err := dbConn.Master.Close(); err != nil {
			log.Println("Failed to close DB-conn correctly:", err)
			return
		}
		log.Println("DBconn closed")
	}
}
