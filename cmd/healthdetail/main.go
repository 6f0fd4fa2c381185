package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type options struct {
	configPath    string
	backend       string
	prometheusURL string
	cellMetric    string
	dmsURL        string
	dmsToken      string
	insecure      bool
	timeout       time.Duration
	logLevel      string
	logJSON       bool
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "healthdetail",
		Short:         "Show the passing conditions of a health check result",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", envOr("HCDETAIL_CONFIG", ""), "data source definition (YAML)")
	flags.StringVar(&opts.backend, "backend", envOr("HCDETAIL_BACKEND", backendDMS), "element/table backend: dms or prometheus")
	flags.StringVar(&opts.prometheusURL, "prometheus-url", envOr("HCDETAIL_PROMETHEUS_URL", "http://localhost:9090"), "Prometheus server URL")
	flags.StringVar(&opts.cellMetric, "cell-metric", envOr("HCDETAIL_CELL_METRIC", ""), "metric holding table cells (prometheus backend)")
	flags.StringVar(&opts.dmsURL, "dms-url", envOr("HCDETAIL_DMS_URL", "http://localhost:8080"), "management API base URL")
	flags.StringVar(&opts.dmsToken, "dms-token", envOr("HCDETAIL_DMS_TOKEN", ""), "management API access token")
	flags.BoolVar(&opts.insecure, "insecure", envBool("HCDETAIL_INSECURE", false), "skip TLS verification")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "timeout of each backend call")
	flags.StringVar(&opts.logLevel, "log-level", envOr("HCDETAIL_LOG_LEVEL", "info"), "log level")
	flags.BoolVar(&opts.logJSON, "log-json", envBool("HCDETAIL_LOG_JSON", false), "log in JSON format")

	root.AddCommand(newQueryCmd(opts), newServeCmd(opts), newWatchCmd(opts))
	return root
}

func setupLogging(opts *options) error {
	level, err := log.ParseLevel(opts.logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", opts.logLevel, err)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	if opts.logJSON {
		log.SetFormatter(&log.JSONFormatter{})
	}
	return nil
}

func main() {
	// .env 不存在时忽略
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
