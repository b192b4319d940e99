package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	liveosc "github.com/dinchak/go-liveosc"
	"github.com/dinchak/go-liveosc/config"
	"github.com/dinchak/go-liveosc/midi"
	"github.com/dinchak/go-liveosc/osc"
	"github.com/dinchak/go-liveosc/tui"
)

type rootOptions struct {
	configPath string
	host       string
	sendPort   int
	listenPort int
	logPath    string
}

func main() {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "liveosc",
		Short: "Mirror and control an Ableton Live set over OSC",
		Long: `liveosc keeps a live mirror of an Ableton Live set by talking OSC to
the LiveOSC remote script, and exposes it as a terminal monitor and a
MIDI control surface.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/go-liveosc/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.host, "host", "", "LiveOSC host")
	rootCmd.PersistentFlags().IntVar(&opts.sendPort, "send-port", 0, "port the remote script listens on")
	rootCmd.PersistentFlags().IntVar(&opts.listenPort, "listen-port", 0, "local port notifications arrive on")
	rootCmd.PersistentFlags().StringVar(&opts.logPath, "log", "", "write debug log to this file")

	rootCmd.AddCommand(newMonitorCommand(opts))
	rootCmd.AddCommand(newBridgeCommand(opts))
	rootCmd.AddCommand(newPortsCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig merges the config file with command-line overrides.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.LoadFrom(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if opts.host != "" {
		cfg.Host = opts.host
	}
	if opts.sendPort != 0 {
		cfg.SendPort = opts.sendPort
	}
	if opts.listenPort != 0 {
		cfg.ListenPort = opts.listenPort
	}
	if opts.logPath != "" {
		cfg.LogPath = opts.logPath
	}
	return cfg, nil
}

// buildLogger writes debug output to the configured file, or swallows it.
func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.LogPath == "" {
		return zap.NewNop(), nil
	}
	zc := zap.NewDevelopmentConfig()
	zc.OutputPaths = []string{cfg.LogPath}
	return zc.Build()
}

// connect builds the UDP transport and the song on top of it.
func connect(cfg *config.Config, log *zap.Logger) (*liveosc.Song, *osc.UDP, error) {
	transport := osc.NewUDP(cfg.Host, cfg.SendPort, cfg.ListenPort, osc.WithUDPLogger(log))

	errCh := make(chan error, 1)
	go func() {
		errCh <- transport.ListenAndServe()
	}()
	// Give the listener a beat to bind before the initial refresh goes out.
	select {
	case err := <-errCh:
		return nil, nil, fmt.Errorf("listen on :%d: %w", cfg.ListenPort, err)
	case <-time.After(50 * time.Millisecond):
	}

	song := liveosc.New(transport,
		liveosc.WithLogger(log),
		liveosc.WithReadyWait(cfg.ReadyWait))
	return song, transport, nil
}

func newMonitorCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Show a live mixer and clip grid in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			log, err := buildLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			song, transport, err := connect(cfg, log)
			if err != nil {
				return err
			}
			defer transport.Close()
			defer song.Destroy()

			p := tea.NewProgram(tui.NewModel(song), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}

func newBridgeCommand(opts *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Drive the Live set from a MIDI controller",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if port == "" {
				port = cfg.MIDIPort
			}
			if port == "" {
				return fmt.Errorf("no MIDI port given (use --port or set midiPort in the config)")
			}
			log, err := buildLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			song, transport, err := connect(cfg, log)
			if err != nil {
				return err
			}
			defer transport.Close()
			defer song.Destroy()

			bridge := midi.NewBridge(song, log)
			if err := bridge.Run(port); err != nil {
				return err
			}
			defer bridge.Stop()

			fmt.Printf("Bridging %q to Live at %s:%d - Ctrl+C to quit\n", port, cfg.Host, cfg.SendPort)
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig
			return nil
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "MIDI input port (substring match)")
	return cmd
}

func newPortsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List available MIDI input ports",
		Run: func(cmd *cobra.Command, args []string) {
			ports := midi.InPorts()
			if len(ports) == 0 {
				fmt.Println("No MIDI input ports found")
				return
			}
			for i, name := range ports {
				fmt.Printf("  %d: %s\n", i, name)
			}
		},
	}
}
