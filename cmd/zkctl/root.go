package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/siwa2904/zkudp"
	"github.com/siwa2904/zkudp/internal/config"
)

var (
	cfgFile string
	verbose bool

	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "zkctl",
	Short: "Command line client for ZK attendance terminals",
	Long: `zkctl talks to ZK biometric attendance terminals over UDP.

Examples:
  # Show device information
  zkctl info -H 192.168.1.201

  # List users of a device defined in a profile file
  zkctl users --profiles devices.toml --profile front-door

  # Upload a fingerprint template
  zkctl template upload --user 1024 --finger 6 --file finger.bin`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := zerolog.InfoLevel
		if viper.GetBool("verbose") {
			level = zerolog.DebugLevel
		}
		output := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
		logger = zerolog.New(output).Level(level).With().Timestamp().Str("app", "zkctl").Logger()
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.zkctl.yaml)")
	flags.String("profiles", "", "TOML file with device profiles")
	flags.String("profile", "", "device profile name")
	flags.StringP("host", "H", "", "device IP address")
	flags.IntP("port", "p", 0, "device UDP port (default 4370)")
	flags.String("comm-key", "", "communication key")
	flags.String("local", "", "local address to bind, e.g. 0.0.0.0:4370")
	flags.String("timezone", "", "time zone of device timestamps")
	flags.DurationP("timeout", "t", 0, "reply timeout (default 3s)")
	flags.Int("retries", -1, "resends of timed out read commands (default 2)")
	flags.Bool("no-probe", false, "skip the ping check before connecting")
	flags.StringP("output", "o", "table", "output format (table, json)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	for _, name := range []string{"profiles", "profile", "host", "port", "comm-key", "local", "timezone", "timeout", "retries", "no-probe", "output", "verbose"} {
		viper.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(attendanceCmd)
	rootCmd.AddCommand(optionCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(timeCmd)
	rootCmd.AddCommand(deviceCmd)
	rootCmd.AddCommand(liveCmd)
	rootCmd.AddCommand(backupCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".zkctl")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("ZKCTL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// resolveProfile merges the selected profile with explicit settings.
func resolveProfile() (config.Profile, error) {
	p := config.DefaultProfile()
	if path := viper.GetString("profiles"); path != "" {
		f, err := config.Load(path)
		if err != nil {
			return p, err
		}
		if p, err = f.Profile(viper.GetString("profile")); err != nil {
			return p, err
		}
	}

	if v := viper.GetString("host"); v != "" {
		p.Host = v
	}
	if v := viper.GetInt("port"); v != 0 {
		p.Port = v
	}
	if v := viper.GetString("comm-key"); v != "" {
		key, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return p, fmt.Errorf("parse comm key: %w", err)
		}
		p.CommKey = uint32(key)
		p.HasCommKey = true
	}
	if v := viper.GetString("local"); v != "" {
		p.LocalAddress = v
	}
	if v := viper.GetString("timezone"); v != "" {
		p.Timezone = v
	}
	if v := viper.GetDuration("timeout"); v != 0 {
		p.Timeout = v
	}
	if v := viper.GetInt("retries"); v >= 0 {
		p.Retries = v
	}

	if p.Host == "" {
		return p, fmt.Errorf("device host is required (--host or --profile)")
	}
	return p, nil
}

func createClient() (*zkudp.ZK, error) {
	p, err := resolveProfile()
	if err != nil {
		return nil, err
	}

	opts := []zkudp.Option{
		zkudp.WithTimeout(p.Timeout),
		zkudp.WithRetries(p.Retries),
		zkudp.WithTimezone(p.Timezone),
		zkudp.WithLogger(zkudp.NewLogger(logger)),
	}
	if p.LocalAddress != "" {
		opts = append(opts, zkudp.WithLocalAddress(p.LocalAddress))
	}
	if p.HasCommKey {
		opts = append(opts, zkudp.WithCommKey(p.CommKey))
	}
	if viper.GetBool("no-probe") {
		opts = append(opts, zkudp.WithProber(nil))
	}
	charset, err := p.Charset()
	if err != nil {
		return nil, err
	}
	if charset != nil {
		opts = append(opts, zkudp.WithNameCharset(charset))
	}

	return zkudp.NewZK(p.Host, p.Port, opts...), nil
}

// withClient connects, runs fn and disconnects.
func withClient(ctx context.Context, fn func(ctx context.Context, zk *zkudp.ZK) error) error {
	zk, err := createClient()
	if err != nil {
		return err
	}
	if err := zk.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		if err := zk.Disconnect(context.Background()); err != nil {
			logger.Debug().Err(err).Msg("disconnect")
		}
	}()
	return fn(ctx, zk)
}

func formatter() *Formatter {
	return NewFormatter(viper.GetString("output"))
}
