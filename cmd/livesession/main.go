//go:build cgo

package main

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	session "github.com/klaramir/livesession/core"
	"github.com/klaramir/livesession/core/audio/miniaudio"
	"github.com/klaramir/livesession/core/models"
	"github.com/klaramir/livesession/core/prompts"
	"github.com/klaramir/livesession/core/tokens"
	"github.com/klaramir/livesession/core/tools"
	"github.com/klaramir/livesession/core/transport/gemini"
	"github.com/klaramir/livesession/internal/config"
)

var (
	version = "0.1.0"
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "livesession",
	Short: "Real-time voice and screen session against a live model endpoint",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a live session",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSession(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("livesession v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.livesession/livesession.yaml)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSession() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("no API key configured (set LIVESESSION_API_KEY or GEMINI_API_KEY)")
	}

	audioClient, err := miniaudio.NewClient()
	if err != nil {
		return fmt.Errorf("failed to initialize audio devices: %w", err)
	}
	defer audioClient.Close()

	registry := tools.NewRegistry()
	registry.Register(
		tools.Declare[getFilesArgs]("getFiles", "Find files under the current directory whose name contains the search term."),
		getFiles,
	)

	transportClient := gemini.NewClient(cfg.APIKey,
		gemini.WithVoice(cfg.Voice),
		gemini.WithToolDeclarations(registry.Declarations()...),
	)

	tracker := tokens.NewTracker()

	sessionConfig := session.DefaultConfig()
	sessionConfig.Model = models.ID(cfg.Model)
	sessionConfig.PromptVersion = cfg.PromptVersion
	sessionConfig.PromptCommitRef = cfg.PromptCommit
	sessionConfig.IdleTimeout = time.Duration(cfg.IdleTimeoutSeconds) * time.Second
	sessionConfig.KeepAliveWindow = time.Duration(cfg.KeepAliveSeconds) * time.Second
	sessionConfig.ScreenInterval = time.Duration(cfg.ScreenIntervalSeconds) * time.Second
	sessionConfig.ScreenDisplay = cfg.Display
	sessionConfig.ResumeOnReconnect = cfg.Resume

	opts := []session.Option{
		session.WithTransport(transportClient),
		session.WithAudioInput(audioClient),
		session.WithAudioOutput(audioClient),
		session.WithTranscriptSink(&stdoutSink{}),
		session.WithToolExecutor(registry),
		session.WithTokenTracker(tracker),
		session.WithReconnectCallback(func(freshContext bool) {
			if freshContext {
				fmt.Println("[reconnected; conversation context was not resumed]")
			} else {
				fmt.Println("[reconnected]")
			}
		}),
	}

	if cfg.PromptRegistry != "" {
		opts = append(opts, session.WithPromptProvider(prompts.NewHTTPProvider(cfg.PromptRegistry)))
	}
	if cfg.Resume && cfg.HandlePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.HandlePath), 0o700); err != nil {
			return fmt.Errorf("failed to create handle directory: %w", err)
		}
		opts = append(opts, session.WithHandleStore(session.NewFileHandleStore(cfg.HandlePath)))
	}

	s, err := session.New(sessionConfig, opts...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Typed lines become text turns; "q" ends the session, "stats" prints a
	// liveness snapshot.
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "q" {
				s.Stop()
				return
			}
			if line == "stats" {
				d := s.Diagnostics()
				fmt.Printf("state=%s last_activity=%s captured_audio=%s buffered_playback=%s\n",
					d.State, d.LastActivity.Format(time.TimeOnly), d.CapturedAudio, d.BufferedPlayback)
				continue
			}
			if err := s.SendText(line); err != nil {
				fmt.Fprintf(os.Stderr, "failed to send: %v\n", err)
				return
			}
		}
	}()

	select {
	case <-sigChan:
		fmt.Println("\nshutting down")
		s.Stop()
	case <-s.Wait():
	}

	<-s.Wait()
	fmt.Println(tracker.Summary())

	if err := s.Err(); err != nil {
		return fmt.Errorf("session failed: %w", err)
	}
	if reason := s.CloseReason(); reason != "" {
		fmt.Printf("session closed: %s\n", reason)
	}
	return nil
}

type stdoutSink struct{}

func (s *stdoutSink) OnTranscriptDelta(text string, final bool) {
	fmt.Print(text)
}

func (s *stdoutSink) OnTurnComplete() {
	fmt.Println()
}

type getFilesArgs struct {
	SearchTerm string `json:"search_term" jsonschema:"description=Substring to match against file names"`
}

func getFiles(_ context.Context, args map[string]any) (any, error) {
	term, _ := args["search_term"].(string)
	if term == "" {
		return map[string]any{"success": false, "error": "search_term is required"}, nil
	}

	var matches []string
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && strings.HasPrefix(d.Name(), ".") && path != "." {
			return filepath.SkipDir
		}
		if !d.IsDir() && strings.Contains(strings.ToLower(d.Name()), strings.ToLower(term)) {
			matches = append(matches, path)
		}
		if len(matches) >= 50 {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return map[string]any{"success": false, "error": err.Error()}, nil
	}

	return map[string]any{"success": true, "files": matches}, nil
}
