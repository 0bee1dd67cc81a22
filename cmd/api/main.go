// Package main (in api-subfolder) provides launch of the whole application except worker
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/capyconnect/imagehub/internal/kafka"
	"github.com/capyconnect/imagehub/internal/mwlogger"
	"github.com/capyconnect/imagehub/internal/repository"
	"github.com/capyconnect/imagehub/internal/service"
	"github.com/capyconnect/imagehub/internal/storage"
	"github.com/capyconnect/imagehub/internal/storage/memstore"
	"github.com/capyconnect/imagehub/internal/transport"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/ginext"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	// инициализировать конфиг/ считать энвы
	appConfig := config.New()
	appConfig.EnableEnv("")
	if err := appConfig.LoadEnvFiles("./.env"); err != nil {
		log.Fatalf("Failed to load envs: %s\nExiting app...", err)
	}

	// стартуем логгер
	zlog.InitConsole()
	if err := zlog.SetLevel("info"); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// готовим заранее слушатель прерываний - контекст для всего приложения
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// база нужна только для реестра - без DSN работаем без него
	var dbConn *dbpg.DB
	var registry repository.ImageRegistry
	if appConfig.GetString("POSTGRES_DSN") != "" {
		dbConn = repository.ConnectWithRetries(appConfig, 5, 10*time.Second)
		repository.MigrateWithRetries(dbConn.Master, "./migrations", 10, 15*time.Second)
		registry = repository.NewPostgresImageRegistry(dbConn)
	}

	// эфемерная таблица для simple-загрузок живет прямо в процессе
	ephemeral := memstore.New()

	// durable-хранилище: MinIO по умолчанию, память для локальной разработки
	var durable service.BlobStore
	if appConfig.GetString("STORAGE_BACKEND") == "memory" {
		durable = memstore.New()
	} else {
		durable = storage.NewDurableStorage(appConfig, 10*time.Second)
	}

	// очередь задач опциональна - без брокера просто не заказываем варианты
	var pub service.TaskPublisher = service.NoopPublisher{}
	var producer *wbfkafka.Producer
	broker := appConfig.GetString("KAFKA_BROKER")
	if broker != "" {
		kafka.WaitReady(broker, 5*time.Second)
		topic := appConfig.GetString("KAFKA_TOPIC")
		kafka.EnsureTopics(ctx, broker, 10*time.Second, topic)
		producer = wbfkafka.NewProducer([]string{broker}, topic)
		pub = producer
	}

	// создаем экземпляр сервиса
	var svc ImageAPIService = service.NewImageService(ephemeral, durable, registry, pub)

	// cоздаем экземпляр хендлера HTTP
	marketplace, standardized := buildProfiles(appConfig)
	handlers := transport.NewImageHandler(svc, marketplace, standardized)

	// сетапим сервер
	mode := appConfig.GetString("GIN_MODE")
	engine := ginext.New(mode)

	engine.GET("/ping", handlers.SimplePinger)
	engine.POST("/api/images/upload-simple", handlers.UploadSimple)     // pass-through загрузка
	engine.POST("/api/images/upload", handlers.UploadProcessed)         // загрузка с обработкой под marketplace
	engine.POST("/api/images/upload-standard", handlers.UploadStandard) // загрузка со стандартизацией
	engine.GET("/api/images", handlers.GetAllImages)              // список с пагинацией и сортировкой
	engine.GET("/api/images/:imageId", handlers.GetImage)         // выдача картинки по id
	engine.GET("/objects/*key", handlers.GetObject)               // выдача по внутренней /objects-ссылке
	engine.POST("/api/objects/upload", handlers.CreateUploadTicket) // pre-signed URL для прямой загрузки

	srv := &http.Server{
		Addr:    ":" + appConfig.GetString("APP_PORT"),
		Handler: mwlogger.NewMWLogger(engine),
	}

	// Server launch
	go func() {
		log.Printf("Server running on http://localhost%s\n", srv.Addr)
		err := srv.ListenAndServe()
		if err != nil {
			switch {
			case errors.Is(err, http.ErrServerClosed):
				log.Println("Server gracefully stopping...")
			default:
				log.Printf("Server stopped: %v", err)
				stop()
			}
		}
	}()

	// ждем отмены контекста для запуска грейсфул закрытия соединений бд и кафки
	<-ctx.Done()

	shutdown(producer, dbConn)
	log.Println("Exiting app...")
}

func shutdown(producer *wbfkafka.Producer, dbConn *dbpg.DB) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Println("Failed to close Kafka-producer:", err)
		}
		log.Println("Kafka-producer connection closed.")
	}

	if dbConn != nil {
		if err := dbConn.Master.Close(); err != nil {
			log.Println("Failed to close DB-conn correctly:", err)
			return
		}
		log.Println("DBconn closed")
	}
}
