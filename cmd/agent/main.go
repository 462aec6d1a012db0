// CostCare booking agent.
//
// Binaries:
//
//	agent chat           # interactive REPL against the live services
//	agent serve          # HTTP API on http_addr
//	agent index          # (re)build the knowledge-base index
//	agent version
//
// Configuration comes from agent.yaml (or --config) with COSTCARE_*
// environment overrides.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/costcare-ai/agentcore/coreengine/config"
	"github.com/costcare-ai/agentcore/coreengine/conversation"
	"github.com/costcare-ai/agentcore/coreengine/engine"
	"github.com/costcare-ai/agentcore/coreengine/handlers"
	"github.com/costcare-ai/agentcore/coreengine/observability"
	"github.com/costcare-ai/agentcore/logging"
	"github.com/costcare-ai/agentcore/server"
	"github.com/costcare-ai/agentcore/tools/calendar"
	"github.com/costcare-ai/agentcore/tools/knowledge"
	"github.com/costcare-ai/agentcore/tools/llm"
	"github.com/spf13/cobra"
)

var version = "dev"

var exitWords = map[string]bool{
	"exit": true, "quit": true, "bye": true, "q": true, "выход": true,
}

func main() {
	var cfgPath string

	root := &cobra.Command{
		Use:           "agent",
		Short:         "CostCare conversational booking agent",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to agent.yaml")

	root.AddCommand(
		chatCommand(&cfgPath),
		serveCommand(&cfgPath),
		indexCommand(&cfgPath),
		versionCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the agent version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("agent", version)
		},
	}
}

// =============================================================================
// RUNTIME WIRING
// =============================================================================

// runtime bundles the live services behind the engine.
type runtime struct {
	cfg    *config.Config
	logger *logging.ZapLogger
	gemini *llm.Gemini
	store  *knowledge.Store
	kb     *knowledge.Base
	driver *engine.Driver

	shutdownTracer func(context.Context) error
}

func buildRuntime(ctx context.Context, cfgPath string) (*runtime, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, logger: logger}

	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer("costcare-agent", cfg.OTLPEndpoint)
		if err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
		rt.shutdownTracer = shutdown
	}

	rt.gemini, err = llm.New(ctx, llm.Options{
		APIKey:         cfg.GoogleAPIKey,
		Model:          cfg.ModelName,
		EmbeddingModel: cfg.EmbeddingModel,
		Temperature:    cfg.Temperature,
	}, logger)
	if err != nil {
		return nil, err
	}

	rt.store, err = knowledge.OpenStore(cfg.KnowledgeDBPath)
	if err != nil {
		return nil, err
	}
	rt.kb = knowledge.New(rt.store, rt.gemini, knowledge.Options{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
	}, logger)

	cal, err := calendar.New(ctx, calendar.Options{
		CredentialsFile: cfg.CredentialsFile,
		CalendarID:      cfg.CalendarID,
		Timezone:        cfg.Timezone,
	}, logger)
	if err != nil {
		return nil, err
	}

	svc := &handlers.Services{
		LLM:       rt.gemini,
		Knowledge: rt.kb,
		Calendar:  cal,
		Prompts:   handlers.NewPrompts(cfg.PromptDir, logger),
		Logger:    logger,
		Now:       func() time.Time { return time.Now().In(cal.Location()) },
		MaxSlots:  cfg.MaxSlots,
		TopK:      cfg.TopK,
	}
	rt.driver, err = engine.New(svc)
	if err != nil {
		return nil, err
	}

	logger.Info("agent_ready", "model", cfg.ModelName, "timezone", cfg.Timezone)
	return rt, nil
}

func (rt *runtime) close(ctx context.Context) {
	if rt.gemini != nil {
		_ = rt.gemini.Close()
	}
	if rt.store != nil {
		_ = rt.store.Close()
	}
	if rt.shutdownTracer != nil {
		_ = rt.shutdownTracer(ctx)
	}
	_ = rt.logger.Sync()
}

// =============================================================================
// CHAT
// =============================================================================

func chatCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive conversation in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := buildRuntime(ctx, *cfgPath)
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			if n, err := rt.kb.Count(ctx); err == nil && n == 0 {
				fmt.Println("Note: the knowledge base is empty. Run `agent index` to build it.")
			}

			fmt.Println("CostCare assistant ready. Type 'exit' to leave.")
			state := conversation.New()
			scanner := bufio.NewScanner(os.Stdin)

			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				text := strings.TrimSpace(scanner.Text())
				if text == "" {
					continue
				}
				if exitWords[strings.ToLower(text)] {
					fmt.Println("Goodbye!")
					return nil
				}

				before := len(state.Messages)
				rt.driver.ProcessTurn(ctx, state, text)
				for _, m := range state.Messages[min(before+1, len(state.Messages)):] {
					if m.Role == conversation.RoleAssistant {
						fmt.Println(m.Text)
					}
				}
				if state.ErrorMessage != "" {
					fmt.Println("(something went wrong, please try again)")
				}
			}
		},
	}
}

// =============================================================================
// SERVE
// =============================================================================

func serveCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := buildRuntime(ctx, *cfgPath)
			if err != nil {
				return err
			}
			defer rt.close(context.Background())

			srv := &http.Server{
				Addr:              rt.cfg.HTTPAddr,
				Handler:           server.New(rt.driver, rt.logger).Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				rt.logger.Info("http_server_started", "addr", rt.cfg.HTTPAddr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			rt.logger.Info("shutdown_signal_received")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			rt.logger.Info("http_server_stopped")
			return nil
		},
	}
}

// =============================================================================
// INDEX
// =============================================================================

func indexCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Rebuild the knowledge-base index from the knowledge directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := buildRuntime(ctx, *cfgPath)
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			n, err := rt.kb.Rebuild(ctx, rt.cfg.KnowledgeDir)
			if err != nil {
				return err
			}
			fmt.Printf("Indexed %d chunks from %s\n", n, rt.cfg.KnowledgeDir)
			return nil
		},
	}
}
