// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/kozyri-game/kozyri-server/internal/auth"
	"github.com/kozyri-game/kozyri-server/internal/cache"
	"github.com/kozyri-game/kozyri-server/internal/database"
	"github.com/kozyri-game/kozyri-server/internal/game"
	"github.com/kozyri-game/kozyri-server/internal/handlers"
	"github.com/kozyri-game/kozyri-server/internal/middleware"
	"github.com/kozyri-game/kozyri-server/internal/room"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	// Persistent keys keep seat tokens valid across restarts; without them every
	// restart mints a fresh pair and clients fall back to new guest identities.
	if priv, pub := os.Getenv("AUTH_PRIVATE_KEY_FILE"), os.Getenv("AUTH_PUBLIC_KEY_FILE"); priv != "" && pub != "" {
		if err := auth.InitFromPath(priv, pub); err != nil {
			log.Fatalf("failed to load auth keys: %v", err)
		}
	} else {
		auth.Init()
	}
	database.ConnectDB()

	redisOK := true
	if err := cache.ConnectRedis(); err != nil {
		logger.Warnf("redis unavailable, result queue disabled: %v", err)
		redisOK = false
	}

	reg := room.NewRegistry()
	reg.OnResult = func(res game.Result) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := database.SaveGameResult(ctx, res); err != nil {
			logger.Errorf("failed to persist result for game %s: %v", res.SessionID, err)
		}
		if redisOK {
			if err := cache.PublishGameResult(ctx, res); err != nil {
				logger.Errorf("failed to queue result for game %s: %v", res.SessionID, err)
			}
		}
	}

	// periodic idle-room sweep
	idle := 15 * time.Minute
	if raw := os.Getenv("ROOM_IDLE_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			idle = d
		} else {
			logger.Warnf("bad ROOM_IDLE_TIMEOUT %q: %v", raw, err)
		}
	}
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			reg.Cleanup(idle)
		}
	}()

	cs := handlers.NewCoreServer(reg)

	mux := http.NewServeMux()

	// room endpoints
	mux.Handle("/rooms/create", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.CreateRoomHandler(cs),
	)))
	mux.Handle("/rooms/list", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.ListRoomsHandler(cs),
	)))
	mux.Handle("/rooms/stats", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.StatsHandler(cs),
	)))

	// room websocket
	mux.Handle("/rooms/ws/", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.RoomWSHandler(logger, cs),
	)))

	// room lookup by id or code, keep last: the mux prefers longer patterns above
	mux.Handle("/rooms/", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.GetRoomHandler(cs),
	)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
