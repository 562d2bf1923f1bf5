// Command wstomp connects to a STOMP-over-WebSocket endpoint and
// prints every event until interrupted. Useful for poking at brokers
// behind SockJS/WebSocket bridges.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gosuda/wstomp"
)

var rootCmd = &cobra.Command{
	Use:   "wstomp",
	Short: "STOMP-over-WebSocket client session multiplexer",
	RunE:  run,
}

var (
	flagURL       string
	flagTLS       bool
	flagToken     string
	flagLogin     string
	flagPasscode  string
	flagSubscribe string
	flagHeartbeat time.Duration
	flagReconnect bool
	flagVerbose   bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagURL, "url", "", "WebSocket endpoint URL (ws:// or wss://)")
	flags.BoolVar(&flagTLS, "tls", false, "force a TLS (wss) connection")
	flags.StringVar(&flagToken, "token", "", "Authorization token attached to CONNECT")
	flags.StringVar(&flagLogin, "login", "", "STOMP login")
	flags.StringVar(&flagPasscode, "passcode", "", "STOMP passcode")
	flags.StringVar(&flagSubscribe, "subscribe", "", "destination to SUBSCRIBE to after connecting")
	flags.DurationVar(&flagHeartbeat, "heartbeat", 20*time.Second, "WebSocket ping period")
	flags.BoolVar(&flagReconnect, "reconnect", false, "keep reconnecting after failures and closures")
	flags.BoolVar(&flagVerbose, "verbose", false, "debug logging")
	_ = rootCmd.MarkPersistentFlagRequired("url")
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("execute wstomp command")
	}
}

func run(cmd *cobra.Command, args []string) error {
	if flagVerbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("shutting down")
		cancel()
	}()

	cfg := wstomp.NewConfig(flagURL).Heartbeat(flagHeartbeat)
	if flagTLS {
		cfg = cfg.TLS()
	}
	if flagToken != "" {
		cfg = cfg.AuthToken(flagToken)
	}
	if flagLogin != "" {
		cfg = cfg.Login(flagLogin)
	}
	if flagPasscode != "" {
		cfg = cfg.Passcode(flagPasscode)
	}

	if flagReconnect {
		sup := cfg.ConnectWithReconnection(ctx, wstomp.AttemptHandlerFunc(func(client *wstomp.Client, err error) {
			if err != nil {
				return
			}
			go consume(ctx, client)
		}))
		<-sup.Done()
		return nil
	}

	client, err := cfg.Connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()
	consume(ctx, client)
	return nil
}

func consume(ctx context.Context, client *wstomp.Client) {
	if flagSubscribe != "" {
		sub := frame.New(frame.SUBSCRIBE,
			frame.Id, "wstomp-0",
			frame.Destination, flagSubscribe,
			frame.Ack, "auto",
		)
		if err := client.Send(ctx, sub); err != nil {
			log.Warn().Err(err).Str("destination", flagSubscribe).Msg("subscribe failed")
			return
		}
		log.Info().Str("destination", flagSubscribe).Msg("subscribed")
	}

	for {
		ev, ok := client.Recv(ctx)
		if !ok {
			log.Info().Msg("session ended")
			return
		}
		switch ev.Kind {
		case wstomp.EventMessage:
			log.Info().
				Str("command", ev.Frame.Command).
				Str("destination", ev.Frame.Header.Get(frame.Destination)).
				Bytes("body", ev.Frame.Body).
				Msg("message")
		case wstomp.EventClosed:
			if ev.Status != nil {
				log.Info().Stringer("status", ev.Status).Msg("peer closed")
			} else {
				log.Info().Msg("peer closed")
			}
		case wstomp.EventError:
			log.Warn().Err(ev.Err).Msg("session error")
		}
	}
}
