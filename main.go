package main

import (
	"context"
	"log"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/techagentng/carefront/config"
	"github.com/techagentng/carefront/db"
	"github.com/techagentng/carefront/logger"
	"github.com/techagentng/carefront/mailingservices"
	"github.com/techagentng/carefront/realtime"
	"github.com/techagentng/carefront/server"
	"github.com/techagentng/carefront/services"
	"go.uber.org/zap"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.New(conf.LogLevel, conf.LogFormat, "carefront")
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync()
	zap.ReplaceGlobals(zlog)

	gormDB, err := db.GetDB(conf)
	if err != nil {
		zlog.Fatal("connecting to postgres", zap.Error(err))
	}
	defer gormDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var (
		fanout         *realtime.RedisFanout
		messageOptions []services.MessageServiceOption
		limitStore     ratelimit.Store
	)
	if conf.RedisEnabled() {
		rdb, err := db.NewRedisClient(ctx, conf)
		if err != nil {
			zlog.Fatal("connecting to redis", zap.Error(err))
		}
		defer rdb.Close()
		fanout = realtime.NewRedisFanout(rdb, zlog)
		messageOptions = append(messageOptions, services.WithIdempotencyStore(db.NewIdempotencyStore(rdb, conf.IdempotencyTTL)))
		limitStore = ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: rdb,
			Rate:        conf.SubmitRateWindow,
			Limit:       conf.SubmitRateLimit,
		})
	} else {
		zlog.Warn("redis not configured; realtime fan-out, idempotency keys and shared rate limits are process-local")
		limitStore = ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
			Rate:  conf.SubmitRateWindow,
			Limit: conf.SubmitRateLimit,
		})
	}

	if conf.MailgunEnabled() {
		mailgunClient := &mailingservices.Mailgun{}
		mailgunClient.Init(conf)
		messageOptions = append(messageOptions, services.WithReplyNotifier(mailgunClient))
	}

	var photos services.PhotoStore
	if conf.UploadsEnabled() {
		store, err := services.NewS3PhotoStore(ctx, conf)
		if err != nil {
			zlog.Fatal("configuring photo uploads", zap.Error(err))
		}
		photos = store
	}

	hub := realtime.NewHub(zlog, fanout)

	messageRepo := db.NewMessageRepo(gormDB)
	doctorRepo := db.NewDoctorRepo(gormDB)
	appointmentRepo := db.NewAppointmentRepo(gormDB)

	verifier := services.NewIdentityVerifier(conf)
	messageService := services.NewMessageService(messageRepo, hub, zlog, messageOptions...)
	doctorService := services.NewDoctorService(doctorRepo, photos)
	appointmentService := services.NewAppointmentService(appointmentRepo)

	s := &server.Server{
		Config:             conf,
		Logger:             zlog,
		IdentityVerifier:   verifier,
		MessageService:     messageService,
		DoctorService:      doctorService,
		AppointmentService: appointmentService,
		Hub:                hub,
		Gateway:            realtime.NewGateway(hub, verifier, messageService, conf.AccessControlAllowOrigin, zlog),
		RateLimitStore:     limitStore,
	}

	if err := s.Start(); err != nil {
		zlog.Error("server stopped", zap.Error(err))
	}
}
