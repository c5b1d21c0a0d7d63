// chat-client runs the realtime messaging synchronization layer headless:
// it connects the session socket, routes inbound events into the
// conversation store and tray, and logs cache invalidations so the polling
// surfaces know when to refetch.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"chat-client/internal/api"
	"chat-client/internal/cache"
	"chat-client/internal/chat"
	"chat-client/internal/config"
	"chat-client/internal/realtime"
	"chat-client/internal/session"
	"chat-client/pkg/logger"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	flagServerURL   string
	flagSocketURL   string
	flagToken       string
	flagSessionFile string
)

var rootCmd = &cobra.Command{
	Use:   "chat-client",
	Short: "Realtime messaging sync client",
	Long: `chat-client maintains the duplex connection to the messaging server,
routes inbound events (direct messages, typing, notifications, connection
updates) into local conversation state, and reconciles read/unread status
against the chat tray.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagServerURL, "server", "", "REST API base URL (overrides SERVER_URL)")
	rootCmd.Flags().StringVar(&flagSocketURL, "socket", "", "WebSocket URL (overrides SOCKET_URL)")
	rootCmd.Flags().StringVar(&flagToken, "token", "", "session token (overrides SESSION_TOKEN)")
	rootCmd.Flags().StringVar(&flagSessionFile, "session-file", ".chat-client.yaml", "YAML session file")
}

func run() error {
	cfg := config.Load()
	if err := cfg.ApplySessionFile(flagSessionFile); err != nil {
		return err
	}
	if flagServerURL != "" {
		cfg.Server.BaseURL = flagServerURL
	}
	if flagSocketURL != "" {
		cfg.Socket.URL = flagSocketURL
	}
	if flagToken != "" {
		cfg.Auth.Token = flagToken
	}

	if cfg.Auth.Token == "" {
		token, err := promptToken()
		if err != nil {
			return err
		}
		cfg.Auth.Token = token
	}

	identity, err := session.FromToken(cfg.Auth.Token)
	if err != nil {
		return fmt.Errorf("invalid session token: %w", err)
	}
	logger.Info("Session identity: %s (%s)", identity.Name, identity.UserID)

	bus := cache.NewBus()
	for _, key := range []cache.Key{
		cache.KeyConversations,
		cache.KeyUnreadCount,
		cache.KeyNotifications,
		cache.KeyConnections,
		cache.KeyAcceptedConnections,
	} {
		bus.Subscribe(key, func(k cache.Key) {
			logger.Debug("Cache invalidated: %s", k)
		})
	}

	apiClient := api.NewClient(cfg.Server.BaseURL, cfg.Auth.Token)
	apiClient.SetTimeout(cfg.Server.Timeout)

	conn := realtime.NewConn(cfg.Socket.URL, cfg.Auth.Token, identity)
	conn.SetReconnectDelay(cfg.Socket.ReconnectDelay)

	store := chat.NewStore(identity.UserID, conn, bus)
	tray := chat.NewTray(store, apiClient)
	reconciler := chat.NewReconciler(identity.UserID, tray, apiClient, bus)
	support := chat.NewSupportLog()
	router := realtime.NewRouter(identity.UserID, store, tray, reconciler, support, bus)

	opener := chat.NewOpener()
	opener.Register(tray.Open)
	defer opener.Deregister()

	conn.OnFrame(router.Dispatch)
	conn.OnStateChange(func(s realtime.State) {
		logger.Info("Connection state: %s", s)
	})
	conn.Connect()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	conn.Disconnect()
	reconciler.Wait()
	return nil
}

func promptToken() (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("no session token: set SESSION_TOKEN, --token or the session file")
	}
	fmt.Fprint(os.Stderr, "Session token: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", fmt.Errorf("empty session token")
	}
	return token, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
