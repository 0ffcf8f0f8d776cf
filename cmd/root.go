package cmd

import (
	"context"
	"fmt"
	u "net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/tanq16/hanzo/internal/downloader"
	"github.com/tanq16/hanzo/internal/output"
	"github.com/tanq16/hanzo/utils"
)

var (
	outputPath    string
	workers       int
	chunkSizeStr  string
	sha256Digest  string
	retries       int
	stallTimeout  time.Duration
	kaTimeout     time.Duration
	userAgent     string
	proxyURL      string
	proxyUsername string
	proxyPassword string
	headers       []string
	keepParts     bool
	noResume      bool
	configFile    string
	debug         bool
)

var HanzoVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "hanzo <url>",
	Short:   "Hanzo is a concurrent HTTP/HTTPS range downloader",
	Version: HanzoVersion,
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		utils.InitLogger(debug)
		url := args[0]
		if _, err := u.Parse(url); err != nil {
			output.PrintError("Invalid URL format")
			os.Exit(1)
		}
		if configFile != "" {
			applyFileConfig(cmd, configFile)
		}
		if userAgent == "randomize" {
			userAgent = utils.GetRandomUserAgent()
		}
		var chunkSize int64
		if chunkSizeStr != "" {
			parsed, err := humanize.ParseBytes(chunkSizeStr)
			if err != nil {
				output.PrintError(fmt.Sprintf("Invalid chunk size %q", chunkSizeStr))
				os.Exit(1)
			}
			chunkSize = int64(parsed)
		}
		// Check if proxy URL contains auth
		parsedProxy, err := u.Parse(proxyURL)
		if err == nil && parsedProxy.User != nil && proxyUsername == "" {
			proxyUsername = parsedProxy.User.Username()
			if password, set := parsedProxy.User.Password(); set {
				proxyPassword = password
			}
			parsedProxy.User = nil
			proxyURL = parsedProxy.String()
		}
		if outputPath != "" {
			if _, err := os.Stat(outputPath); err == nil {
				outputPath = utils.RenewOutputPath(outputPath)
				output.PrintWarning(fmt.Sprintf("Output file exists, saving as %s", outputPath))
			}
		}

		client := utils.NewHanzoHTTPClient(utils.HTTPClientConfig{
			KATimeout:      kaTimeout,
			ProxyURL:       proxyURL,
			ProxyUsername:  proxyUsername,
			ProxyPassword:  proxyPassword,
			UserAgent:      userAgent,
			Headers:        utils.ParseHeaderArgs(headers),
			HighThreadMode: workers > 8,
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		tracker := output.NewProgressTracker()
		tracker.StartDisplay()
		result, err := downloader.Run(ctx, downloader.Config{
			URL:            url,
			OutputPath:     outputPath,
			Workers:        workers,
			ChunkSize:      chunkSize,
			MaxRetries:     retries,
			ExpectedSHA256: sha256Digest,
			KeepParts:      keepParts,
			NoResume:       noResume,
			StallTimeout:   stallTimeout,
			ProgressFunc:   tracker.Update,
		}, client)
		tracker.Stop()
		if err != nil {
			output.PrintError(fmt.Sprintf("%s Download failed: %v", output.StyleSymbols["fail"], err))
			os.Exit(1)
		}
		output.PrintSuccess(fmt.Sprintf("%s Saved %s (%s)", output.StyleSymbols["pass"], result.OutputPath, humanize.IBytes(uint64(result.Size))))
		if keepParts {
			output.PrintInfo(fmt.Sprintf("Part files kept in %s", utils.TempDir(result.OutputPath)))
		}
	},
}

// applyFileConfig fills in defaults from a YAML file for flags the user did
// not set on the command line.
func applyFileConfig(cmd *cobra.Command, filePath string) {
	cfg, err := utils.ReadFileConfig(filePath)
	if err != nil {
		output.PrintError(fmt.Sprintf("Failed to read config file: %v", err))
		os.Exit(1)
	}
	flags := cmd.Flags()
	if cfg.Workers > 0 && !flags.Changed("workers") {
		workers = cfg.Workers
	}
	if cfg.ChunkSize != "" && !flags.Changed("chunk-size") {
		chunkSizeStr = cfg.ChunkSize
	}
	if cfg.Retries > 0 && !flags.Changed("retries") {
		retries = cfg.Retries
	}
	if cfg.Timeout != "" && !flags.Changed("timeout") {
		if d, err := time.ParseDuration(cfg.Timeout); err == nil {
			stallTimeout = d
		}
	}
	if cfg.UserAgent != "" && !flags.Changed("user-agent") {
		userAgent = cfg.UserAgent
	}
	if cfg.Proxy != "" && !flags.Changed("proxy") {
		proxyURL = cfg.Proxy
	}
	if len(cfg.Headers) > 0 && !flags.Changed("header") {
		headers = append(headers, cfg.Headers...)
	}
	if cfg.KeepParts && !flags.Changed("keep-parts") {
		keepParts = true
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (Hanzo infers file name if not provided)")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 8, "Number of concurrent chunk workers (above 8 enables high-thread-mode)")
	rootCmd.Flags().StringVarP(&chunkSizeStr, "chunk-size", "s", "", "Chunk size (eg. 16MB, 512KiB, 1048576); derived from worker count if not provided")
	rootCmd.Flags().StringVar(&sha256Digest, "sha256", "", "Expected SHA-256 hex digest for integrity verification")
	rootCmd.Flags().IntVarP(&retries, "retries", "r", 3, "Attempts per chunk before it is aborted")
	rootCmd.Flags().DurationVarP(&stallTimeout, "timeout", "t", 60*time.Second, "Inactivity timeout per network read (eg. 30s, 2m)")
	rootCmd.Flags().DurationVarP(&kaTimeout, "keep-alive-timeout", "k", 90*time.Second, "Keep-alive timeout for client (eg. 10s, 1m, 80s)")
	rootCmd.Flags().StringVarP(&userAgent, "user-agent", "a", utils.ToolUserAgent, "User agent ('randomize' picks a browser agent)")
	rootCmd.Flags().StringVarP(&proxyURL, "proxy", "p", "", "HTTP/HTTPS proxy URL (e.g., proxy.example.com:8080)")
	rootCmd.Flags().StringVar(&proxyUsername, "proxy-username", "", "Proxy username (if not provided in proxy URL)")
	rootCmd.Flags().StringVar(&proxyPassword, "proxy-password", "", "Proxy password (if not provided in proxy URL)")
	rootCmd.Flags().StringArrayVarP(&headers, "header", "H", []string{}, "Custom headers (like 'Authorization: Basic dXNlcjpwYXNz'); can be specified multiple times")
	rootCmd.Flags().StringVar(&configFile, "config", "", "Path to YAML file with default options")

	// flags without shorthand
	rootCmd.Flags().BoolVar(&keepParts, "keep-parts", false, "Keep part files after successful assembly")
	rootCmd.Flags().BoolVar(&noResume, "no-resume", false, "Discard part files from prior runs and download everything fresh")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
}
