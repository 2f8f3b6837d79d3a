package main

import (
	"context"
	"os"

	firebase "firebase.google.com/go/v4"
	"github.com/hibiken/asynq"
	"github.com/katatrina/chatpush-BE/api"
	"github.com/katatrina/chatpush-BE/internal/db"
	"github.com/katatrina/chatpush-BE/internal/fcm"
	"github.com/katatrina/chatpush-BE/internal/util"
	"github.com/katatrina/chatpush-BE/internal/watcher"
	"github.com/katatrina/chatpush-BE/internal/worker"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configurations
	config, err := util.LoadConfig("./app.env")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config file 😣")
	}

	log.Info().Msg("configurations loaded successfully ✅")

	ctx := context.Background()

	// Initialize the Firebase app once; its clients are shared read-only.
	var clientOpts []option.ClientOption
	if config.FirebaseCredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(config.FirebaseCredentialsFile))
	}

	firebaseApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: config.FirebaseProjectID}, clientOpts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize firebase app 😣")
	}

	firestoreClient, err := firebaseApp.Firestore(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create firestore client 😣")
	}
	defer firestoreClient.Close()
	log.Info().Msg("connected to firestore ✅")

	sender, err := fcm.NewSender(ctx, firebaseApp)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create fcm sender 😣")
	}

	redisDb := redis.NewClient(&redis.Options{
		Addr:     config.RedisServerAddress,
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	if pingErr := redisDb.Ping(ctx).Err(); pingErr != nil {
		log.Fatal().Err(pingErr).Msg("failed to connect to redis 😣")
	}
	log.Info().Msg("connected to redis ✅")

	store := db.NewStore(firestoreClient, config)

	redisOpt := asynq.RedisClientOpt{
		Addr: config.RedisServerAddress,
	}

	taskDistributor := worker.NewTaskDistributor(redisOpt)
	taskInspector := worker.NewTaskInspector(redisOpt)

	go runTaskProcessor(redisOpt, store, sender)

	documentWatcher := watcher.New(firestoreClient, taskDistributor, config)
	documentWatcher.Start(ctx)
	log.Info().Msg("document watchers started ✅")

	runHTTPServer(config, store, taskInspector)
}

func runTaskProcessor(redisOpt asynq.RedisClientOpt, store db.Store, sender fcm.Sender) {
	taskProcessor := worker.NewRedisTaskProcessor(redisOpt, store, sender)

	log.Info().Msg("task processor started ✅")

	if err := taskProcessor.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start task processor 😣")
	}
}

func runHTTPServer(config util.Config, store db.Store, taskInspector worker.TaskInspector) {
	server, err := api.NewServer(store, taskInspector, &config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create HTTP server 😣")
	}

	err = server.Start(config.HTTPServerAddress)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start HTTP server 😣")
	}
}
