package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/turfline/server/api/rest"
	apiws "github.com/turfline/server/api/ws"
	"github.com/turfline/server/audit"
	"github.com/turfline/server/cache"
	"github.com/turfline/server/config"
	dbadapter "github.com/turfline/server/db"
	"github.com/turfline/server/game/enemy"
	"github.com/turfline/server/game/item"
	"github.com/turfline/server/game/progress"
	"github.com/turfline/server/game/session"
	"github.com/turfline/server/game/snapshot"
	"github.com/turfline/server/game/territory"
	"github.com/turfline/server/mapdata"
	mw "github.com/turfline/server/middleware"
	"github.com/turfline/server/model"
	"github.com/turfline/server/resource"
	"github.com/turfline/server/scheduler"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized")

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())

	// ---- Cache ----
	c, err := cache.New(cache.Config{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
	})
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Item catalog ----
	res, err := resource.NewLoader(cfg.Game.ItemCatalogPath)
	if err != nil {
		log.Fatalf("item catalog: %v", err)
	}
	logger.Info("Item catalog loaded", zap.Int("items", len(res.Items())))

	// ---- Game Systems ----
	engine := progress.NewEngine(res, logger)
	engine.OnPowerChange(func(username string, power int) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.ZAdd(ctx, apirest.RankingZKey, float64(power), username); err != nil {
			logger.Warn("ranking update failed", zap.String("username", username), zap.Error(err))
		}
	})
	items := item.NewService(res, engine, logger)
	economy := territory.NewEconomy(cfg.Game, logger)
	snapSvc := snapshot.NewService(db, res, engine, logger)
	sm := session.NewManager(snapSvc.Restore, logger)

	var provider mapdata.Provider
	if cfg.MapData.Endpoint != "" {
		provider = mapdata.NewHTTPProvider(cfg.MapData.Endpoint, cfg.MapData.Timeout)
	} else {
		logger.Warn("mapdata.endpoint is not set; map fetches will return no facilities")
		provider = &mapdata.Static{}
	}

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()

	sched.AddTicker("hp_regen", time.Duration(cfg.Game.RegenIntervalS)*time.Second, func() {
		sm.ForEach(func(s *session.Session) {
			s.Lock()
			engine.RegenTick(s, cfg.Game.RegenAmount)
			s.Unlock()
		})
	})
	sched.AddTicker("enemy_move", time.Duration(cfg.Game.EnemyMoveIntervalS)*time.Second, func() {
		sm.ForEach(func(s *session.Session) {
			s.Lock()
			for _, e := range s.Enemies.MoveAll(enemyStepM) {
				s.Surface().UpsertMarker(enemy.MarkerFor(e))
			}
			s.Unlock()
		})
	})
	sched.AddTicker("auto_save", time.Duration(cfg.Game.AutosaveIntervalS)*time.Second, func() {
		sm.ForEach(func(s *session.Session) {
			s.Lock()
			_ = s.Persist()
			s.Unlock()
		})
	})

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	// Health check
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok", "sessions": sm.Count()})
	})

	// ---- REST API routes ----
	authH := apirest.NewAuthHandler(db, c, cfg.Security, auditSvc)
	playerH := apirest.NewPlayerHandler(sm, economy)
	mapH := apirest.NewMapHandler(sm, economy, provider, logger)
	bizH := apirest.NewBusinessHandler(sm, economy, auditSvc)
	orgH := apirest.NewOrgHandler(sm, economy, auditSvc)
	invH := apirest.NewInventoryHandler(sm, items)
	enemyH := apirest.NewEnemyHandler(sm, cfg.Game, engine, items, logger)
	rankH := apirest.NewRankingHandler(db, c, logger)

	api := r.Group("/api")
	{
		authG := api.Group("/auth")
		authG.POST("/login", authH.Login)
		authG.POST("/logout", mw.Auth(cfg.Security, c), authH.Logout)
		authG.POST("/refresh", mw.Auth(cfg.Security, c), authH.Refresh)

		game := api.Group("")
		game.Use(mw.Auth(cfg.Security, c))

		game.GET("/player", playerH.State)
		game.POST("/player/location", playerH.UpdateLocation)
		game.POST("/player/settings", playerH.UpdateSettings)

		game.POST("/map/bounds", mapH.Bounds)

		game.GET("/businesses", bizH.List)
		game.POST("/businesses/:id/protect", bizH.Protect)
		game.POST("/businesses/:id/collect", bizH.Collect)
		game.POST("/businesses/:id/unprotect", bizH.Unprotect)

		game.POST("/org/join", orgH.Join)
		game.POST("/org/autojoin", orgH.AutoJoin)
		game.POST("/org/leave", orgH.Leave)

		game.GET("/inventory", invH.List)
		game.POST("/inventory/use", invH.Use)
		game.POST("/equipment/equip", invH.Equip)
		game.POST("/equipment/unequip", invH.Unequip)

		game.GET("/enemies", enemyH.List)
		game.POST("/enemies/spawn", enemyH.Spawn)
		game.POST("/enemies/:id/defeat", enemyH.Defeat)

		game.GET("/ranking/power", rankH.TopPower)
	}

	// ---- WebSocket ----
	hub := apiws.NewHub(logger)
	wsH := apiws.NewHandler(c, cfg.Security, sm, hub, logger)
	r.GET("/ws", wsH.ServeWS)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// enemyStepM is the per-tick jitter cap for enemy movement, meters per axis.
const enemyStepM = 25.0
