package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/mcp-training/parkingnav/api"
	"github.com/wricardo/mcp-training/parkingnav/logging"
	"github.com/wricardo/mcp-training/parkingnav/parking/config"
	"github.com/wricardo/mcp-training/parkingnav/parking/service"
	"github.com/wricardo/mcp-training/parkingnav/transport/mcp"
	"github.com/wricardo/mcp-training/parkingnav/transport/websocket"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"server", "http"},
		Usage:   "run the HTTP server with REST API, WebSocket, and MCP endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			settings, err := settingsFromCommand(cmd)
			if err != nil {
				return err
			}
			logger := logging.New(settings.LogLevel, settings.LogDir, true)

			opts := serveOptions{
				Addr:        fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port")),
				Ngrok:       cmd.Bool("ngrok"),
				NgrokAuth:   cmd.String("ngrok-auth"),
				NgrokDomain: cmd.String("ngrok-domain"),
			}
			return runHTTPServer(ctx, settings, opts, logger)
		},
	}
}

type serveOptions struct {
	Addr        string
	Ngrok       bool
	NgrokAuth   string
	NgrokDomain string
}

// newRouter mounts the REST API at the root and the MCP endpoint at /mcp.
// The MCP tools call back into the API at baseURL.
func newRouter(apiServer http.Handler, baseURL string) *http.ServeMux {
	mcpClient := mcp.NewClient(baseURL)

	router := http.NewServeMux()
	router.Handle("/", apiServer)
	router.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})
	return router
}

// runHTTPServer serves until ctx is cancelled or a signal arrives. The hub,
// the session cleanup loop, the listener and the optional ngrok tunnel run in
// one errgroup so any of them failing stops the rest.
func runHTTPServer(ctx context.Context, settings config.Settings, opts serveOptions, logger *logging.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(logger)
	navService, err := initializeServices(settings, hub, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer navService.Shutdown()

	router := newRouter(api.NewServer(navService, hub, logger), "http://"+opts.Addr)
	httpServer := &http.Server{
		Addr:         opts.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		hub.Run(ctx)
		return nil
	})

	eg.Go(func() error {
		sessionCleanupRoutine(ctx, navService, settings, logger)
		return nil
	})

	eg.Go(func() error {
		logger.Info("HTTP server listening",
			"addr", opts.Addr,
			"api", fmt.Sprintf("http://%s/api", opts.Addr),
			"websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", opts.Addr),
			"mcp", fmt.Sprintf("http://%s/mcp", opts.Addr))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	if opts.Ngrok {
		eg.Go(func() error {
			return runNgrok(ctx, router, opts, logger)
		})
	}

	eg.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		}
		return nil
	})

	err = eg.Wait()
	logger.Info("Server stopped")
	return err
}

// runNgrok serves router through an ngrok tunnel until ctx is cancelled. A
// missing auth token only disables the tunnel.
func runNgrok(ctx context.Context, router http.Handler, opts serveOptions, logger *logging.Logger) error {
	if opts.NgrokAuth == "" {
		logger.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return nil
	}

	var tunnel ngrokConfig.Tunnel
	if opts.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.NgrokDomain))
		logger.Info("Using custom ngrok domain", "domain", opts.NgrokDomain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.NgrokAuth))
	if err != nil {
		logger.Error("Failed to start ngrok tunnel", "error", err)
		return nil
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("Failed to close ngrok tunnel", "error", err)
		}
	}()

	url := tun.URL()
	logger.Info("Ngrok tunnel established",
		"url", url,
		"api", url+"/api",
		"websocket", url+"/ws?session=<session_id>",
		"mcp", url+"/mcp")

	if err := http.Serve(tun, router); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Error("Ngrok server error", "error", err)
	}
	logger.Info("Ngrok tunnel closed")
	return nil
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within the session TTL.
func sessionCleanupRoutine(ctx context.Context, svc service.NavigationService, settings config.Settings, logger *logging.Logger) {
	ticker := time.NewTicker(settings.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := svc.CleanupExpiredSessions(ctx, settings.SessionTTL); removed > 0 {
				logger.Info("Cleaned up expired sessions", "count", removed)
			}
		}
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp", "mcp-stdio"},
		Usage:   "run an MCP stdio server, starting an internal HTTP API if none is reachable",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Value:   "http://localhost:8080",
				Usage:   "existing API server to reuse",
				Sources: cli.EnvVars("PARKINGNAV_API_URL"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			settings, err := settingsFromCommand(cmd)
			if err != nil {
				return err
			}
			// stdout carries the MCP protocol, so logs go to the file only.
			logger := logging.New(settings.LogLevel, settings.LogDir, false)
			return runStdioMCPWithInternalServer(ctx, settings, cmd.String("api-url"), logger)
		},
	}
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at externalURL; if unavailable, it
// starts a minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, settings config.Settings, externalURL string, logger *logging.Logger) error {
	baseURL := externalURL

	testClient := &http.Client{Timeout: 2 * time.Second}
	var resp *http.Response
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, externalURL+"/api/health", nil)
	if err == nil {
		resp, err = testClient.Do(req)
	}
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		logger.Info("External API server found, using it for MCP", "url", externalURL)
	} else {
		if resp != nil {
			resp.Body.Close()
		}
		logger.Info("No external API server found, starting internal HTTP server")

		navService, err := initializeServices(settings, nil, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		defer navService.Shutdown()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		httpServer := &http.Server{Handler: api.NewServer(navService, nil, logger)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Internal HTTP server error", "error", err)
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		logger.Info("Internal HTTP server started for MCP stdio", "url", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info("MCP stdio server ready", "api", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
