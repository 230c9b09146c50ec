package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MontaguSandwich/axelar-rewards-dashboard/api"
	"github.com/MontaguSandwich/axelar-rewards-dashboard/db"
	"github.com/MontaguSandwich/axelar-rewards-dashboard/domain"
	"github.com/MontaguSandwich/axelar-rewards-dashboard/lcd"
	"github.com/MontaguSandwich/axelar-rewards-dashboard/metrics"
	"github.com/MontaguSandwich/axelar-rewards-dashboard/pricing"
	"github.com/MontaguSandwich/axelar-rewards-dashboard/reconcile"
	"github.com/ardanlabs/conf"
	"github.com/jellydator/ttlcache/v3"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const envPrefix = "REWARDS_DASHBOARD"

func main() {
	log.SetOutput(os.Stdout) // default is stderr
	log.Println("Starting rewards dashboard")
	if err := run(); err != nil {
		log.Fatalf("main: exited with error: %s", err.Error())
	}
}

func run() error {
	if err := godotenv.Load(); err == nil {
		log.Println("main: Loaded .env file.")
	}

	var cfg struct {
		Lcd struct {
			Endpoints      []string      `conf:"default:https://lcd.axelar.dev"`
			RequestTimeout time.Duration `conf:"default:10s"`
		}
		Contracts struct {
			Rewards string `conf:"required"`
			// one entry per chain: name:multisigProver:votingVerifier
			Chains []string `conf:"required"`
		}
		Engine struct {
			MaxLookBack             uint32 `conf:"default:5000"`
			BatchSize               int    `conf:"default:8"`
			ExpectedActiveVerifiers uint32 `conf:"default:30"`
			StoreFolder             string `conf:"default:store"`
			MetricsNamespace        string `conf:"default:rewards_dashboard"`
		}
		Pricing struct {
			BaseUrl string        `conf:"default:https://api.coingecko.com"`
			TokenId string        `conf:"default:axelar"`
			Ttl     time.Duration `conf:"default:5m"`
		}
		Server struct {
			HttpHost        string        `conf:"default:0.0.0.0:8000"`
			MetricsHttpHost string        `conf:"default:0.0.0.0:9999"`
			ReportCacheTtl  time.Duration `conf:"default:30s"`
		}
	}

	// load config
	if err := conf.Parse(os.Args[1:], envPrefix, &cfg); err != nil {
		switch {
		case errors.Is(err, conf.ErrHelpWanted):
			usage, err := conf.Usage(envPrefix, &cfg)
			if err != nil {
				return errors.Wrap(err, "generating config usage")
			}
			fmt.Println(usage)
			return nil
		case errors.Is(err, conf.ErrVersionWanted):
			version, err := conf.VersionString(envPrefix, &cfg)
			if err != nil {
				return errors.Wrap(err, "generating config version")
			}
			fmt.Println(version)
			return nil
		}
		return errors.Wrap(err, "parsing config")
	}

	out, err := conf.String(&cfg)
	if err != nil {
		return errors.Wrap(err, "generating config for output")
	}
	log.Printf("main: Config :\n%v\n", out)

	chains, err := lcd.ParseChainContracts(cfg.Contracts.Chains, cfg.Contracts.Rewards)
	if err != nil {
		return errors.Wrap(err, "parsing chain contracts")
	}

	client, err := lcd.NewClient(cfg.Lcd.Endpoints, cfg.Lcd.RequestTimeout)
	if err != nil {
		return errors.Wrap(err, "creating lcd client")
	}
	reader, err := lcd.NewReader(client, chains)
	if err != nil {
		return errors.Wrap(err, "creating lcd reader")
	}
	log.Printf("main: Serving chains %v.", reader.Chains())

	store, err := db.NewPebbleStore(cfg.Engine.StoreFolder)
	if err != nil {
		return errors.Wrap(err, "creating record cache")
	}
	defer store.Close()
	cachedReader := db.NewCachedReader(reader, store)

	priceClient := pricing.NewClient(cfg.Pricing.BaseUrl, cfg.Pricing.TokenId, cfg.Pricing.Ttl)
	defer priceClient.Close()

	m := metrics.NewMetrics(cfg.Engine.MetricsNamespace)
	engine := reconcile.NewEngine(cachedReader, priceClient, m, reconcile.Config{
		MaxLookBack:             cfg.Engine.MaxLookBack,
		BatchSize:               cfg.Engine.BatchSize,
		ExpectedActiveVerifiers: cfg.Engine.ExpectedActiveVerifiers,
		Progress: func(kind string, scanned uint32, remaining uint64) {
			log.Printf("Scanned [%d] %s records, [%d] ids remaining.", scanned, kind, remaining)
		},
	})

	reportCache := ttlcache.New[string, *domain.ReconciliationReport](
		ttlcache.WithTTL[string, *domain.ReconciliationReport](cfg.Server.ReportCacheTtl),
		ttlcache.WithDisableTouchOnHit[string, *domain.ReconciliationReport](),
	)
	go reportCache.Start()
	defer reportCache.Stop()
	handler := api.NewHandler(engine, reportCache)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverError := make(chan error, 1)
	go func() {
		log.Printf("main: Starting server on addr [%s].", cfg.Server.HttpHost)
		mux := http.NewServeMux()
		mux.HandleFunc("GET /v1/chains/{chain}/verifiers/{address}/rewards", handler.GetVerifierRewards)
		mux.HandleFunc("GET /health", handler.GetHealth)
		serverError <- http.ListenAndServe(cfg.Server.HttpHost, mux)
	}()

	metricsServerError := make(chan error, 1)
	go func() {
		log.Printf("main: Starting metrics server on addr [%s].", cfg.Server.MetricsHttpHost)
		http.Handle("/metrics", promhttp.Handler())
		metricsServerError <- http.ListenAndServe(cfg.Server.MetricsHttpHost, nil)
	}()

	log.Println("main: Service started.")

	for {
		select {
		case <-shutdown:
			log.Println("main: Received shutdown signal, shutting down...")
			return nil
		case err := <-serverError:
			return errors.Wrapf(err, "[ERROR] starting server endpoint.")
		case err := <-metricsServerError:
			return errors.Wrapf(err, "[ERROR] starting metrics endpoint.")
		}
	}
}
