package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/danmuck/mllpctl/internal/charset"
	"github.com/danmuck/mllpctl/internal/logging"
	"github.com/danmuck/mllpctl/internal/mllp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	errPortRequired    = errors.New("port required: set --port or the config file")
	errMessageRequired = errors.New("message file required: set --message or the config file")
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "mllpsend: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	host        string
	port        uint16
	messagePath string
	timeoutSecs uint
	charsetName string
	configPath  string
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "mllpsend",
		Short:         "Send one HL7 message over MLLP and print the reply",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.host, "host", "H", "localhost", "server host name or address")
	flags.Uint16VarP(&opts.port, "port", "p", 0, "server TCP port")
	flags.StringVarP(&opts.messagePath, "message", "m", "", "path to the HL7 message file")
	flags.UintVarP(&opts.timeoutSecs, "timeout", "t", 30, "socket timeout in seconds")
	flags.StringVar(&opts.charsetName, "charset", "", "IANA charset of the message file (default UTF-8)")
	flags.StringVarP(&opts.configPath, "config", "c", "", "TOML file with flag defaults")
	return cmd
}

func run(cmd *cobra.Command, opts options) error {
	logging.Configure(logging.Runtime("mllpsend"))

	merged, err := resolveOptions(opts, cmd.Flags().Changed)
	if err != nil {
		return err
	}
	if merged.port == 0 {
		return errPortRequired
	}
	if merged.messagePath == "" {
		return errMessageRequired
	}

	raw, err := os.ReadFile(merged.messagePath)
	if err != nil {
		return fmt.Errorf("read message file: %w", err)
	}
	message, err := charset.Decode(merged.charsetName, raw)
	if err != nil {
		return err
	}

	cfg := mllp.Config{Timeout: time.Duration(merged.timeoutSecs) * time.Second}
	log.Debug().
		Str("host", merged.host).
		Uint16("port", merged.port).
		Dur("timeout", cfg.Timeout).
		Int("message_bytes", len(message)).
		Msg("sending message")

	response, err := mllp.Exchange(merged.host, merged.port, message, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "HL7 Message Sent")
	fmt.Fprintf(out, "Response from server:\n%s\n", response)
	return nil
}
