package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"thumbs3/internal/adapters/converter"
	"thumbs3/internal/adapters/file"
	"thumbs3/internal/adapters/reporter"
	"thumbs3/internal/adapters/storage"
	"thumbs3/internal/core/domain"
	"thumbs3/internal/core/port"
	"thumbs3/internal/core/service"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "THUMBS3"

// Execute runs the command line with the process arguments and returns the exit code.
func Execute() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	return Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// Run executes one invocation. Reports go to stdout, logs and diagnostics to stderr.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	_ = godotenv.Load()

	cmd := NewRootCommand(viper.New(), stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "thumbs3: %v\n", err)
		if errors.Is(err, domain.ErrConfig) {
			fmt.Fprintln(stderr, "Run 'thumbs3 --help' for usage.")
		}
	}

	return domain.ExitCode(err)
}

// NewRootCommand builds the thumbs3 command. Settings are read from flags, THUMBS3_* environment variables and an
// optional TOML config file, in that order of precedence.
func NewRootCommand(v *viper.Viper, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thumbs3 [flags] <file_or_url>",
		Short: "thumbs3 - render thumbnails of an image and publish them to S3",
		Long: "thumbs3 resizes a local or remote image according to WxH:template specs, uploads the results with " +
			"public-read visibility and reports their URLs as text, JSON or an HTTP callback.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("%w: no file or url specified", domain.ErrConfig)
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfigFile(v, cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(v.GetString("log-level"), stderr)

			cfg, err := domain.NewConfig(optionsFrom(v, cmd))
			if err != nil {
				return err
			}

			return run(cmd.Context(), cfg, args[0], stdout)
		},
	}

	flags := cmd.Flags()
	flags.StringP("key", "k", "", "object store access key")
	flags.StringP("secret", "s", "", "object store secret key")
	flags.StringP("bucket", "b", "", "destination bucket name")
	flags.BoolP("upload-original", "u", false, "upload the original file as well")
	flags.StringArrayP("thumb-size", "t", nil,
		"thumbnail spec WxH:template, '$' in template is replaced by the slugified file name (repeatable)")
	flags.StringP("output", "o", string(domain.OutputText), "output format: text, json or post")
	flags.StringP("callback-url", "c", "", "callback url for post output format")
	flags.String("temp-folder", "", "local staging folder (default: a fresh folder under the system temp dir)")
	flags.Bool("keep-temp", false, "keep downloaded and rendered files on disk")
	flags.String("endpoint", domain.DefaultEndpoint, "object store host, optionally with http:// or https://")
	flags.String("region", domain.DefaultRegion, "bucket region")
	flags.Bool("use-ssl", true, "use TLS when talking to the object store")
	flags.String("renderer", string(domain.RendererNative), "thumbnail renderer: native or magick")
	flags.Int("jpeg-quality", domain.DefaultJPEGQuality, "JPEG quality of rendered thumbnails, 1-100")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.String("config", "", "path to a TOML config file (default ./thumbs3.toml if present)")

	_ = v.BindPFlags(flags)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	return cmd
}

func run(ctx context.Context, cfg domain.Config, arg string, stdout io.Writer) error {
	renderer, err := newRenderer(cfg)
	if err != nil {
		return err
	}

	rep, err := reporter.New(cfg, stdout)
	if err != nil {
		return err
	}

	connect := func(ctx context.Context) (port.ObjectStore, error) {
		return storage.NewS3(ctx, storage.S3Config{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.Key,
			SecretKey: cfg.Secret,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
		})
	}

	start := time.Now()
	err = service.NewPipeline(cfg, file.NewResolver(cfg.TempFolder), renderer, connect, rep).Run(ctx, arg)
	log.Debug().Dur("elapsed", time.Since(start)).Err(err).Msg("run finished")

	return err
}

func newRenderer(cfg domain.Config) (port.ImageRenderer, error) {
	if cfg.Renderer == domain.RendererMagick {
		m, err := converter.NewMagickConverter(cfg.JPEGQuality)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrConfig, err)
		}
		return m, nil
	}
	return converter.NewNativeConverter(cfg.JPEGQuality), nil
}

func optionsFrom(v *viper.Viper, cmd *cobra.Command) domain.Options {
	thumbs := v.GetStringSlice("thumb-size")
	if cmd.Flags().Changed("thumb-size") {
		// avoid viper's csv round trip of array flags
		thumbs, _ = cmd.Flags().GetStringArray("thumb-size")
	}

	return domain.Options{
		Key:            v.GetString("key"),
		Secret:         v.GetString("secret"),
		Bucket:         v.GetString("bucket"),
		Endpoint:       v.GetString("endpoint"),
		Region:         v.GetString("region"),
		UseSSL:         v.GetBool("use-ssl"),
		TempFolder:     v.GetString("temp-folder"),
		KeepTemp:       v.GetBool("keep-temp"),
		UploadOriginal: v.GetBool("upload-original"),
		ThumbSizes:     thumbs,
		Output:         v.GetString("output"),
		CallbackURL:    v.GetString("callback-url"),
		Renderer:       v.GetString("renderer"),
		JPEGQuality:    v.GetInt("jpeg-quality"),
	}
}

func loadConfigFile(v *viper.Viper, cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv(envPrefix + "_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("thumbs3")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("%w: could not read config file: %w", domain.ErrConfig, err)
	}

	return nil
}

func setupLogging(level string, w io.Writer) {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05"}).
		With().
		Timestamp().
		Logger()

	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		log.Warn().Str("level", level).Msg("invalid log level, defaulting to warn")
		logLevel = zerolog.WarnLevel
	}

	zerolog.SetGlobalLevel(logLevel)
}
