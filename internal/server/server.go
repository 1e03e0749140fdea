package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"

	"JobBridge-backend/internal/database"
	"JobBridge-backend/internal/metrics"
	"JobBridge-backend/internal/model"
	"JobBridge-backend/internal/notify"
	"JobBridge-backend/internal/realtime"
	"JobBridge-backend/internal/storage"
)

// JobBridgeServer holds the shared state behind every route handler.
type JobBridgeServer struct {
	DB         *database.DBinstanceStruct
	Bus        EventBus.Bus
	Hub        *realtime.Hub
	Dispatcher *notify.Dispatcher
	Storage    storage.StorageClient

	cron *cron.Cron
}

// NewServer constructs the database connection, event consumers and
// background jobs, and returns the configured http server.
func NewServer() *http.Server {
	port, _ := strconv.Atoi(os.Getenv("PORT"))

	db, err := database.GetMainDB()
	if err != nil {
		log.Fatalf("Database failed to initialize: %s", err)
	}

	client, err := storage.NewCloudStorageClientFromEnv(context.Background())
	if err != nil {
		log.Fatalf("Cloud storage failed to initialize: %s", err)
	}

	bus := EventBus.New()
	dispatcher, err := notify.NewDispatcher(db, bus)
	if err != nil {
		log.Fatalf("Notification dispatcher failed to initialize: %s", err)
	}
	hub, err := realtime.NewHub(db, bus)
	if err != nil {
		log.Fatalf("Realtime hub failed to initialize: %s", err)
	}

	metrics.Register()

	s := &JobBridgeServer{
		DB:         db,
		Bus:        bus,
		Hub:        hub,
		Dispatcher: dispatcher,
		Storage:    client,
	}
	s.startBackgroundJobs()

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// startBackgroundJobs schedules the post expiry sweep and, when cloud storage
// is enabled, the orphan blob sweep.
func (s *JobBridgeServer) startBackgroundJobs() {
	s.cron = cron.New()

	if _, err := s.cron.AddFunc("@every 10m", s.expirePosts); err != nil {
		log.Fatalf("Failed to schedule expiry sweep: %s", err)
	}

	if s.Storage != nil {
		if _, err := s.cron.AddFunc("@daily", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			if _, err := storage.SweepOrphans(ctx, s.Storage, s.DB); err != nil {
				log.WithError(err).Error("orphan blob sweep failed")
			}
		}); err != nil {
			log.Fatalf("Failed to schedule orphan sweep: %s", err)
		}
	}

	s.cron.Start()
}

// expirePosts marks active posts past their expiry inactive.
func (s *JobBridgeServer) expirePosts() {
	result := s.DB.Model(&model.JobPost{}).
		Where("status = ? AND expiring IS NOT NULL AND expiring < ?", model.JobStatusActive, time.Now()).
		Update("status", model.JobStatusInactive)
	if result.Error != nil {
		log.WithError(result.Error).Error("post expiry sweep failed")
		return
	}
	if result.RowsAffected > 0 {
		log.WithField("expired", result.RowsAffected).Info("marked expired job posts inactive")
	}
}
