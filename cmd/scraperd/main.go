// Command scraperd exposes the coinmarket scraper as a small HTTP
// service: raw page endpoints, a multi-fetch endpoint, and Prometheus
// metrics.
package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/voramos/coinmarket-client/pkg/cache"
	"github.com/voramos/coinmarket-client/pkg/client"
	"github.com/voramos/coinmarket-client/pkg/logging"
	"github.com/voramos/coinmarket-client/pkg/scraper"
	"github.com/voramos/coinmarket-client/pkg/symbols"
)

type config struct {
	Port         string        `envconfig:"PORT" default:"8080"`
	UserAgent    string        `envconfig:"USER_AGENT" default:"coinmarket-client/0.1.0"`
	RedisURL     string        `envconfig:"REDIS_URL" default:""`
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"15s"`
	Consumers    int           `envconfig:"CONSUMERS" default:"50"`
	QueueSize    int           `envconfig:"QUEUE_SIZE" default:"50"`
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty    bool          `envconfig:"LOG_PRETTY" default:"false"`
}

func main() {
	var cfg config
	if err := envconfig.Process("cmc", &cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse configuration")
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.LogLevel(cfg.LogLevel)
	logCfg.Pretty = cfg.LogPretty
	logging.Setup(logCfg)

	transport, err := client.New(client.Config{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.FetchTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create transport")
	}

	// Redis is optional: without it the symbol table is bootstrapped
	// live on every process start.
	var snapshot *cache.Manager
	if cfg.RedisURL != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisURL).Msg("Failed to connect to Redis")
		}
		snapshot = cache.NewManager(redisClient)
		log.Info().Str("addr", cfg.RedisURL).Msg("Snapshot cache enabled")
	}

	table := symbols.New(transport, symbols.Config{Snapshot: snapshot})

	s, err := scraper.New(transport, scraper.Config{
		QueueSize: cfg.QueueSize,
		Consumers: cfg.Consumers,
		Symbols:   table,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scraper")
	}

	router := newRouter(s)

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("user_agent", cfg.UserAgent).Msg("Starting scraperd")
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func newRouter(s *scraper.Scraper) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/currency/:name", currencyHandler(s))
		api.GET("/currency/:name/historical", historicalHandler(s))
		api.GET("/currencies", currenciesHandler(s))
		api.GET("/ranks", pageHandler(s.Ranks))
		api.GET("/recently", pageHandler(s.Recently))
		api.GET("/symbols", symbolsHandler(s))
	}

	return router
}

func currencyHandler(s *scraper.Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := s.Currency(c.Request.Context(), c.Param("name"))
		if err != nil {
			abortWithFetchError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
	}
}

func historicalHandler(s *scraper.Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		start, err := parseDay(c.Query("start"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start, want YYYYMMDD"})
			return
		}
		end, err := parseDay(c.Query("end"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end, want YYYYMMDD"})
			return
		}

		body, err := s.Historical(c.Request.Context(), c.Param("name"), start, end)
		if err != nil {
			abortWithFetchError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
	}
}

// currenciesHandler fetches many currency pages in one multiget call.
// Without ?symbols= every known currency is fetched.
func currenciesHandler(s *scraper.Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		var currencies []string
		if raw := c.Query("symbols"); raw != "" {
			currencies = strings.Split(raw, ",")
		}

		var report scraper.Report
		pages, err := s.EveryCurrency(c.Request.Context(), currencies,
			scraper.WithReport(&report))
		if err != nil {
			abortWithFetchError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"requested": report.Requested,
			"fetched":   report.Fetched,
			"retried":   report.Retried,
			"dropped":   report.Dropped,
			"pages":     pages,
		})
	}
}

func pageHandler(fetch func(ctx context.Context) (string, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := fetch(c.Request.Context())
		if err != nil {
			abortWithFetchError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
	}
}

func symbolsHandler(s *scraper.Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := s.Correspondences(c.Request.Context())
		if err != nil {
			abortWithFetchError(c, err)
			return
		}
		c.JSON(http.StatusOK, m)
	}
}

func abortWithFetchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, symbols.ErrUnknownSymbol):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case client.IsTimeout(err):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

func parseDay(s string) (time.Time, error) {
	return time.Parse("20060102", s)
}
