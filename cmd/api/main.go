// Command api runs the JobBridge HTTP server.
package main

import (
	"JobBridge-backend/internal/server"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// @title JobBridge API
// @version 1.0
// @description Job application lifecycle and capacity-controlled admission API.
// @BasePath /api/v1
func main() {
	srv := server.NewServer()

	log.WithField("addr", srv.Addr).Info("starting server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server error: %s", err)
	}
}
