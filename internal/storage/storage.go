// Package storage wires up the configured blob backend for the app.
package storage

import (
	"log"
	"time"

	"github.com/capyconnect/imagehub/internal/storage/miniostore"
	"github.com/wb-go/wbf/config"
)

// NewDurableStorage connects to MinIO, retrying until it is reachable -
// the container usually comes up later than the app.
func NewDurableStorage(cfg *config.Config, delay time.Duration) *miniostore.MinioBlobStorage {
	for {
		log.Println("Connecting to blob-storage...")
		client, err := miniostore.NewMinioClient(cfg)
		if err != nil {
			log.Printf("Failed to init connection to blob-storage: %v\nNext retry in %v...", err, delay)
			time.Sleep(delay)
			continue
		}
		log.Println("Successfully connected blob-storage!")
		return client
	}
}
