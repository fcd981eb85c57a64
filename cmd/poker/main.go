package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pengelbrecht/poker/internal/config"
	"github.com/pengelbrecht/poker/internal/logger"
	"github.com/pengelbrecht/poker/internal/outbound"
	"github.com/pengelbrecht/poker/internal/poker"
	"github.com/pengelbrecht/poker/internal/push"
	"github.com/pengelbrecht/poker/internal/relay"
	"github.com/pengelbrecht/poker/internal/tui"
	"github.com/pengelbrecht/poker/internal/update"
)

var version = "0.1.0"

// cfg is loaded by the root command before any subcommand runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "poker",
	Short: "Planning poker in the terminal",
	Long: `Poker joins a shared planning-poker session from the terminal. Chat with the
other participants, follow the item list as it changes and submit estimates
with the slider.`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

func setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.Path()
	}
	loaded, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	cfg = loaded

	if cmd.Flags().Changed("server") {
		cfg.Server.URL, _ = cmd.Flags().GetString("server")
	}
	if cmd.Flags().Changed("redis") {
		cfg.Push.RedisURL, _ = cmd.Flags().GetString("redis")
	}
	if cmd.Flags().Changed("debug") {
		cfg.Log.Debug, _ = cmd.Flags().GetBool("debug")
	}
	return logger.Init(cfg.Log.Path, cfg.Log.Debug)
}

var joinCmd = &cobra.Command{
	Use:   "join <session-code>",
	Short: "Join a session",
	Long: `Join opens the session view: the item list, the chat log and the estimate
slider. Messages are sent with alt+enter or ctrl+s.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code := args[0]
		if err := poker.ValidateSessionCode(code); err != nil {
			return err
		}
		if name, _ := cmd.Flags().GetString("name"); name != "" {
			cfg.User.Name = name
		}
		input := cfg.Session.Estimates
		if cmd.Flags().Changed("estimates") {
			input, _ = cmd.Flags().GetString("estimates")
		}
		set, err := poker.ResolveEstimates(input)
		if err != nil {
			return fmt.Errorf("estimates: %w", err)
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		rc, err := push.NewClient(cfg.Push.RedisURL)
		if err != nil {
			return err
		}
		defer rc.Close()

		sub := push.NewSubscriber(rc, cfg.Push.ChannelPrefix, code)
		startCtx, startCancel := context.WithTimeout(ctx, 5*time.Second)
		err = sub.Start(startCtx)
		startCancel()
		if err != nil {
			return fmt.Errorf("connect to session updates: %w", err)
		}
		defer sub.Close()

		inbound := make(chan poker.InboundMessage, 64)
		go func() {
			if err := sub.Listen(ctx, inbound); err != nil {
				log.Errorf("push listener stopped: %v", err)
			}
		}()

		clientID := uuid.NewString()
		log.WithFields(log.Fields{"session": code, "client": clientID, "user": cfg.User.Name}).Info("joining session")

		model := tui.New(tui.Config{
			Session:   code,
			Author:    cfg.User.Name,
			ClientID:  clientID,
			Estimates: set,
			Sender:    outbound.NewClient(cfg.Server.URL, clientID, cfg.Send.Timeout),
			Inbound:   inbound,
		})
		if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("run session view: %w", err)
		}

		if notice := update.NewChecker(update.DefaultCacheFile()).Notice(cmd.Context(), version); notice != "" {
			fmt.Fprintln(os.Stderr, notice)
		}
		return nil
	},
}

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Run a development relay server",
	Long: `Relay accepts chat, item and estimate requests over HTTP and broadcasts
them to every joined client through Redis. It keeps no session state.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.Relay.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		rc, err := push.NewClient(cfg.Push.RedisURL)
		if err != nil {
			return err
		}
		defer rc.Close()
		if err := rc.Ping(cmd.Context()).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}

		l := log.New()
		l.SetOutput(os.Stderr)
		if cfg.Log.Debug {
			l.SetLevel(log.DebugLevel)
		}

		e := relay.New(push.NewPublisher(rc, cfg.Push.ChannelPrefix), l)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			l.WithField("addr", addr).Info("relay listening")
			errCh <- e.Start(addr)
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	},
}

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage session items",
}

var itemAddCmd = &cobra.Command{
	Use:   "add <session-code> <title>",
	Short: "Add an item to a session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := poker.ValidateSessionCode(args[0]); err != nil {
			return err
		}
		id, res := newOutbound().AddItem(cmd.Context(), args[0], itemRequest(cmd, args[1]))
		if err := resultError(res); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var itemEditCmd = &cobra.Command{
	Use:   "edit <session-code> <item-id> <title>",
	Short: "Change an item's title and description",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := poker.ValidateSessionCode(args[0]); err != nil {
			return err
		}
		res := newOutbound().EditItem(cmd.Context(), args[0], poker.ItemID(args[1]), itemRequest(cmd, args[2]))
		return resultError(res)
	},
}

var itemRemoveCmd = &cobra.Command{
	Use:     "rm <session-code> <item-id>",
	Aliases: []string{"remove"},
	Short:   "Remove an item from a session",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := poker.ValidateSessionCode(args[0]); err != nil {
			return err
		}
		return resultError(newOutbound().RemoveItem(cmd.Context(), args[0], poker.ItemID(args[1])))
	},
}

func newOutbound() *outbound.Client {
	return outbound.NewClient(cfg.Server.URL, "", cfg.Send.Timeout)
}

func itemRequest(cmd *cobra.Command, title string) outbound.ItemRequest {
	req := outbound.ItemRequest{Title: title}
	if cmd.Flags().Changed("description") {
		desc, _ := cmd.Flags().GetString("description")
		req.Description = poker.StringPtr(desc)
	}
	return req
}

func resultError(res poker.SendResult) error {
	if res.OK() {
		return nil
	}
	if res.Status == 0 {
		return errors.New(res.StatusText)
	}
	return fmt.Errorf("server returned %d %s", res.Status, res.StatusText)
}

var estimatesCmd = &cobra.Command{
	Use:   "estimates [preset | values]",
	Short: "Choose the estimate set",
	Long: `Estimates shows or changes the estimate set used by the slider. With no
argument a picker lists the presets. An argument is either a preset name or a
list of values such as "30m 1h 2h 1d". Durations use m, h, d (8h) and w (5d)
and are normalized, so "90m" becomes "1h30m".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var input string
		if len(args) == 1 {
			input = args[0]
			if p, ok := poker.LookupPreset(input); ok {
				input = p.Input
			}
		} else {
			final, err := tea.NewProgram(tui.NewPicker(poker.Presets, cfg.Session.Estimates)).Run()
			if err != nil {
				return err
			}
			picker := final.(tui.Picker)
			if picker.IsQuitting() {
				return nil
			}
			input = picker.Selected().Input
		}

		set, err := poker.ResolveEstimates(input)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), set.String())

		if save, _ := cmd.Flags().GetBool("save"); save {
			cfg.Session.Estimates = set.String()
			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				path = config.Path()
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved to %s\n", path)
		}
		return nil
	},
}

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade poker to the latest version",
	Long:  `Downloads the latest GitHub release and replaces the running binary.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "Current version: %s\n", version)
		fmt.Fprintln(cmd.OutOrStdout(), "Checking for updates...")
		release, err := update.NewChecker(update.DefaultCacheFile()).Apply(cmd.Context(), version)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Upgraded to %s\n", release.Version)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "poker %s\n", version)
		if check, _ := cmd.Flags().GetBool("check"); !check {
			return nil
		}
		release, available, err := update.NewChecker(update.DefaultCacheFile()).Check(cmd.Context(), version)
		if err != nil {
			return err
		}
		if available {
			fmt.Fprintf(cmd.OutOrStdout(), "Update available: %s (run: poker upgrade)\n", release.Version)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Up to date")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default $POKER_CONFIG or user config dir)")
	rootCmd.PersistentFlags().String("server", "", "Session server URL")
	rootCmd.PersistentFlags().String("redis", "", "Redis URL for session updates")
	rootCmd.PersistentFlags().Bool("debug", false, "Write debug output to the log file")

	joinCmd.Flags().StringP("name", "n", "", "Display name (default from config)")
	joinCmd.Flags().StringP("estimates", "e", "", "Estimate values, e.g. \"30m 1h 2h 1d\"")

	relayCmd.Flags().String("addr", "", "Listen address (default from config)")

	itemAddCmd.Flags().StringP("description", "d", "", "Item description")
	itemEditCmd.Flags().StringP("description", "d", "", "Item description")
	itemCmd.AddCommand(itemAddCmd, itemEditCmd, itemRemoveCmd)

	estimatesCmd.Flags().Bool("save", false, "Save the set as the default in the config file")

	versionCmd.Flags().Bool("check", false, "Check GitHub for a newer release")

	rootCmd.AddCommand(joinCmd, relayCmd, itemCmd, estimatesCmd, upgradeCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
