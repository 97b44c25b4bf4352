package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/voxmill/article2video/internal/config"
	"github.com/voxmill/article2video/internal/generate"
	jobRepository "github.com/voxmill/article2video/internal/jobs/repository"
	"github.com/voxmill/article2video/internal/pipeline"
	"github.com/voxmill/article2video/internal/worker"
	"github.com/voxmill/article2video/pkg/db/aws"
	"github.com/voxmill/article2video/pkg/db/postgres"
	"github.com/voxmill/article2video/pkg/db/redis"
	"github.com/voxmill/article2video/pkg/logger"
	"github.com/voxmill/article2video/pkg/utils"
)

func main() {
	log.Println("Starting pipeline worker")
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yml"
	}
	cfgFile, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("loadConfig: %v", err)
	}
	cfg, err := config.ParseConfig(cfgFile)
	if err != nil {
		log.Fatalf("parseConfig: %v", err)
	}

	appLogger := logger.NewApiLogger(cfg)
	appLogger.InitLogger()
	appLogger.Infof("AppVersion: %s, LogLevel: %s, Mode: %s", cfg.Server.AppVersion, cfg.Logger.Level, cfg.Server.Mode)

	tuning, err := config.LoadTuning(cfg.Pipeline.ConfigPath)
	if err != nil {
		appLogger.Fatalf("could not load pipeline tuning: %s", err)
	}

	redisClient, err := redis.NewRedisClient(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to redis: %s", err)
	}
	appLogger.Infof("redis connected")
	defer redisClient.Close()

	psqlDB, err := postgres.NewPsqlDB(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to db: %s", err)
	}
	appLogger.Infof("db connected, status: %#v", psqlDB.Stats())
	defer psqlDB.Close()

	redisRepo := jobRepository.NewJobRedisRepo(redisClient)
	jobRepo := jobRepository.NewJobRepo(psqlDB)

	var publisher pipeline.Publisher
	if cfg.S3.OutputBucket != "" {
		s3Client, presignClient, err := aws.NewAWSClient(cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey)
		if err != nil {
			appLogger.Fatalf("could not connect to s3: %s", err)
		}
		publisher = jobRepository.NewAwsRepository(s3Client, presignClient, cfg.S3.OutputBucket)
	}

	store := pipeline.NewStore(cfg.Pipeline.JobDataDir)
	composer := pipeline.NewComposer(tuning.Audio.PlaceholderSec, utils.ProbeDuration, appLogger)

	pl := pipeline.NewPipeline(
		cfg,
		tuning,
		redisRepo,
		generate.NewScriptProvider(cfg, appLogger),
		generate.NewSynthesizer(cfg, appLogger),
		generate.NewSlideGenerator(cfg, appLogger),
		generate.NewRenderer(cfg, appLogger),
		store,
		composer,
		publisher,
		appLogger,
	)

	w := worker.NewWorker(cfg, appLogger, redisRepo, jobRepo, pl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-quit
		appLogger.Infof("received signal %v, shutting down", sig)
		cancel()
	}()

	w.Run(ctx)
	appLogger.Info("worker exited cleanly")
}
