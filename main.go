package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/MarcGrol/fpsgateway/lib/myevents"
	"github.com/MarcGrol/fpsgateway/lib/myhttpclient"
	"github.com/MarcGrol/fpsgateway/lib/mylog"
	"github.com/MarcGrol/fpsgateway/lib/mypublisher"
	"github.com/MarcGrol/fpsgateway/lib/mypubsub"
	"github.com/MarcGrol/fpsgateway/lib/myqueue"
	"github.com/MarcGrol/fpsgateway/lib/mystore"
	"github.com/MarcGrol/fpsgateway/lib/mytime"
	"github.com/MarcGrol/fpsgateway/lib/myuuid"
	"github.com/MarcGrol/fpsgateway/lib/myvault"
	"github.com/MarcGrol/fpsgateway/services/amazonfps"
	"github.com/MarcGrol/fpsgateway/services/paymentevents"
	"github.com/MarcGrol/fpsgateway/services/warmup"
)

func main() {
	c := context.Background()
	logger := mylog.New("main")
	nower := mytime.RealNower{}

	cfg, err := amazonfps.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %s", err)
	}

	router := mux.NewRouter()

	publisher, publisherCleanup := createPublisher(c, router, nower)
	defer publisherCleanup()

	tokenVault, vaultCleanup := createTokenVault(c, cfg, nower)
	defer vaultCleanup()

	attemptStore, attemptStoreCleanup, err := mystore.New[amazonfps.CheckoutAttempt](c)
	if err != nil {
		log.Fatalf("Error creating checkout-attempt store: %s", err)
	}
	defer attemptStoreCleanup()

	paymentStore, paymentStoreCleanup, err := mystore.New[amazonfps.Payment](c)
	if err != nil {
		log.Fatalf("Error creating payment store: %s", err)
	}
	defer paymentStoreCleanup()

	completionStore, completionStoreCleanup, err := mystore.New[amazonfps.PurchaseCompletion](c)
	if err != nil {
		log.Fatalf("Error creating purchase-completion store: %s", err)
	}
	defer completionStoreCleanup()

	payer := amazonfps.NewPayer(cfg.AccessKey, cfg.Mode, amazonfps.NewSigner(cfg.SecretKey), myhttpclient.New(myhttpclient.DefaultTimeout), nower)

	amazonService := amazonfps.NewWebService(cfg, nower, myuuid.RealUUIDer{}, amazonfps.NewTokenStore(tokenVault, cfg.TokenTTL), payer,
		attemptStore, paymentStore, completionStore, publisher, amazonfps.NewMetrics(prometheus.DefaultRegisterer))
	err = amazonService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering amazon endpoints: %s", err)
	}

	warmup.NewService(tokenVault).RegisterEndpoints(c, router)

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	logger.Log(c, "", mylog.SeverityInfo, "Amazon FPS gateway in %s mode", cfg.Mode)

	startWebServerBlocking(router, cfg.Port)
}

func createPublisher(c context.Context, router *mux.Router, nower mytime.Nower) (mypublisher.Publisher, func()) {
	outboxStore, outboxCleanup, err := mystore.New[myevents.EventEnvelope](c)
	if err != nil {
		log.Fatalf("Error creating outbox store: %s", err)
	}

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub: %s", err)
	}

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		log.Fatalf("Error creating queue: %s", err)
	}

	publisher := mypublisher.New(outboxStore, pubsub, queue, nower)
	publisher.RegisterEndpoints(c, router)

	err = publisher.CreateTopic(c, paymentevents.TopicName)
	if err != nil {
		log.Fatalf("Error creating topic %s: %s", paymentevents.TopicName, err)
	}

	return publisher, func() {
		queueCleanup()
		pubsubCleanup()
		outboxCleanup()
	}
}

// createTokenVault keeps tokens in redis when configured, in the regular store otherwise
func createTokenVault(c context.Context, cfg amazonfps.Config, nower mytime.Nower) (myvault.VaultReadWriter[string], func()) {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		err := client.Ping(c).Err()
		if err != nil {
			log.Fatalf("Error connecting to redis at %s: %s", cfg.RedisAddr, err)
		}
		return myvault.NewRedisVault[string](client, "fpsgateway:"), func() {
			_ = client.Close()
		}
	}

	secretStore, cleanup, err := mystore.New[myvault.Secret[string]](c)
	if err != nil {
		log.Fatalf("Error creating token store: %s", err)
	}
	return myvault.NewStoreVault[string](secretStore, nower), cleanup
}

func startWebServerBlocking(router *mux.Router, port string) {
	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
