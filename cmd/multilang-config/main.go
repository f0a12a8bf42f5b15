// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command multilang-config resolves a daemon settings file and prints
// the resulting configuration as YAML. It exits non-zero, naming the
// failing setting, if the settings can not be resolved.
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/z5labs/multilang"
	"github.com/z5labs/multilang/config"
	"github.com/z5labs/multilang/credentials"
	"github.com/z5labs/multilang/daemon"
	"github.com/z5labs/multilang/internal/logging"
	"github.com/z5labs/multilang/internal/try"
	"github.com/z5labs/multilang/lease"
	"github.com/z5labs/multilang/metrics"
	"github.com/z5labs/multilang/retrieval"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gopkg.in/yaml.v3"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err := newCommand(os.Stdout, os.Stderr).ExecuteContext(ctx)
	if err != nil {
		cancel()
		os.Exit(1)
	}
}

const envPrefix = "MULTILANG"

func newCommand(stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "multilang-config",
		Short: "Resolve a multi-language daemon settings file",
		Long: `Resolve a multi-language daemon settings file and print the
resolved configuration as YAML.

Settings are read from a .properties, .yaml, .yml or .json file and
then, when --env-prefix is given, from environment variables whose
names start with the prefix. Every flag may also be set through a
MULTILANG_ prefixed environment variable, e.g. MULTILANG_LOG_LEVEL.
Those variables are never read as settings, even when --env-prefix
is MULTILANG_.`,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return v.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			defer try.Recover(&err)

			return run(cmd.Context(), v, stdout, stderr)
		},
	}

	flags := cmd.Flags()
	flags.StringP("properties", "p", "", "Path to the daemon settings file")
	flags.String("env-prefix", "", "Read settings from environment variables with this prefix")
	flags.Bool("template", false, "Render the settings file as a Go text/template before reading it")
	flags.String("unknown-keys", daemon.FailOnUnknownKeys.String(), "What to do with unknown settings: fail or ignore")
	flags.String("log-level", slog.LevelWarn.String(), "Log level (debug, info, warn, error)")
	flags.Bool("trace", false, "Write OpenTelemetry spans to stderr")

	return cmd
}

func run(ctx context.Context, v *viper.Viper, stdout, stderr io.Writer) (err error) {
	var lvl slog.Level
	err = lvl.UnmarshalText([]byte(v.GetString("log-level")))
	if err != nil {
		return err
	}
	logHandler := logging.NewHandler(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: lvl}))
	log := slog.New(logHandler)

	var policy daemon.UnknownKeyPolicy
	err = policy.UnmarshalText([]byte(v.GetString("unknown-keys")))
	if err != nil {
		return err
	}

	if v.GetBool("trace") {
		exp, expErr := stdouttrace.New(stdouttrace.WithWriter(stderr))
		if expErr != nil {
			return expErr
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
		defer shutdown(&err, tp)
		otel.SetTracerProvider(tp)
	}

	srcs, err := sources(v)
	if err != nil {
		return err
	}

	resolved, err := multilang.Load(
		ctx,
		[]daemon.Option{
			daemon.LogHandler(logHandler),
			daemon.UnknownKeys(policy),
		},
		srcs...,
	)
	if err != nil {
		log.ErrorContext(ctx, "failed to resolve configuration", logging.Error(err))
		return err
	}

	enc := yaml.NewEncoder(stdout)
	defer try.Close(&err, enc)
	enc.SetIndent(2)
	return enc.Encode(summarize(resolved))
}

type shutdowner interface {
	Shutdown(context.Context) error
}

// shutdown joins any error from s.Shutdown into err.
func shutdown(err *error, s shutdowner) {
	serr := s.Shutdown(context.Background())
	if serr == nil {
		return
	}
	*err = errors.Join(*err, serr)
}

func sources(v *viper.Viper) ([]config.Source, error) {
	var srcs []config.Source

	if path := v.GetString("properties"); path != "" {
		var r io.Reader = config.NewFileReader(os.DirFS(filepath.Dir(path)), filepath.Base(path))
		if v.GetBool("template") {
			r = config.RenderTextTemplate(r)
		}

		src, err := config.FromFile(path, r)
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, src)
	}

	if prefix := v.GetString("env-prefix"); prefix != "" {
		srcs = append(srcs, config.FromEnv(prefix).Exclude(flagEnvVars(v)...))
	}

	if len(srcs) == 0 {
		return nil, errNoSources
	}
	return srcs, nil
}

// flagEnvVars returns the environment variables viper reads the
// command's own flags from, e.g. MULTILANG_LOG_LEVEL.
func flagEnvVars(v *viper.Viper) []string {
	replacer := strings.NewReplacer("-", "_")
	keys := v.AllKeys()
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, envPrefix+"_"+strings.ToUpper(replacer.Replace(k)))
	}
	return names
}

var errNoSources = errors.New("at least one of --properties or --env-prefix must be set")

type summary struct {
	ApplicationName string                   `yaml:"applicationName"`
	StreamName      string                   `yaml:"streamName"`
	InitialPosition string                   `yaml:"initialPositionInStream"`
	RetrievalMode   retrieval.Mode           `yaml:"retrievalMode"`
	FanOut          *retrieval.FanOutConfig  `yaml:"fanoutConfig,omitempty"`
	Polling         *retrieval.PollingConfig `yaml:"pollingConfig,omitempty"`
	Lease           lease.Config             `yaml:"lease"`
	Metrics         metrics.Config           `yaml:"metrics"`
	Processing      daemon.ProcessingConfig  `yaml:"processing"`
	Clients         clientSummary            `yaml:"clients"`
}

type clientSummary struct {
	Region                string `yaml:"region,omitempty"`
	KinesisEndpoint       string `yaml:"kinesisEndpoint,omitempty"`
	DynamoDBEndpoint      string `yaml:"dynamoDBEndpoint,omitempty"`
	KinesisCredentials    string `yaml:"kinesisCredentialsProvider"`
	DynamoDBCredentials   string `yaml:"dynamoDBCredentialsProvider"`
	CloudWatchCredentials string `yaml:"cloudWatchCredentialsProvider"`
}

func summarize(r daemon.Resolved) summary {
	rc := r.Retrieval()
	clients := r.Clients()

	s := summary{
		ApplicationName: r.ApplicationName(),
		StreamName:      rc.StreamName,
		InitialPosition: string(rc.InitialPosition),
		RetrievalMode:   rc.Strategy.Mode(),
		Lease:           r.Lease(),
		Metrics:         r.Metrics(),
		Processing:      r.Processing(),
		Clients: clientSummary{
			Region:                clients.Region,
			KinesisEndpoint:       clients.KinesisEndpoint,
			DynamoDBEndpoint:      clients.DynamoDBEndpoint,
			KinesisCredentials:    credentials.Name(clients.KinesisCredentials),
			DynamoDBCredentials:   credentials.Name(clients.DynamoDBCredentials),
			CloudWatchCredentials: credentials.Name(clients.CloudWatchCredentials),
		},
	}
	if fc, ok := rc.FanOut(); ok {
		s.FanOut = &fc
	}
	if pc, ok := rc.Polling(); ok {
		s.Polling = &pc
	}
	return s
}
