package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/maastricht-university/emotion-feedback/clients"
	cfg "github.com/maastricht-university/emotion-feedback/config"
	"github.com/maastricht-university/emotion-feedback/landmarks"
	"github.com/maastricht-university/emotion-feedback/logging"
	"github.com/maastricht-university/emotion-feedback/orchestrator"
	"github.com/maastricht-university/emotion-feedback/presentation"
)

func newRunCmd(g *globals) *cobra.Command {
	var (
		frames string
		speed  float64
		report bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Replay a landmark recording through the feedback pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := cfg.NewLoader(g.configPath)
			conf, err := loader.Load()
			if err != nil {
				return err
			}
			log := logging.New(g.level(conf.Pipeline.LogLvl), cmd.ErrOrStderr())

			f, err := os.Open(frames)
			if err != nil {
				return err
			}
			defer f.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ch := make(chan landmarks.Frame, 1)
			stream := landmarks.NewStream(ch)
			p := orchestrator.NewPipeline(conf, wire(conf, stream, log))
			log.WithFields(logrus.Fields{
				"session":  p.SessionID(),
				"config":   loader.File(),
				"frames":   frames,
				"detector": conf.DetectorOptions(),
			}).Info("session started")

			loader.Watch(p.Apply, func(err error) {
				log.WithError(err).Warn("config reload rejected")
			})

			runCtx, cancel := context.WithCancel(ctx)
			defer cancel()

			go stream.Run(runCtx)
			replayed := make(chan error, 1)
			go func() {
				replayed <- landmarks.Replay(runCtx, f, ch, landmarks.ReplayOptions{
					Speed:   speed,
					BaseDir: filepath.Dir(frames),
				})
			}()
			done := make(chan error, 1)
			go func() { done <- p.Run(runCtx) }()

			var replayErr error
			select {
			case replayErr = <-replayed:
				if replayErr == nil {
					// give the last frame one full sampling window
					linger := cfg.DurMillis(conf.Sampling.UpdateIntervalMs + 2*conf.Sampling.TickIntervalMs)
					select {
					case <-ctx.Done():
					case <-time.After(linger):
					}
				}
			case <-ctx.Done():
			}
			cancel()
			if err := <-done; err != nil {
				return err
			}
			log.WithField("frames", stream.Frames()).Info("session finished")

			if report {
				if err := orchestrator.WriteReport(cmd.OutOrStdout(), p.Report()); err != nil {
					return err
				}
			}
			if replayErr != nil && !errors.Is(replayErr, context.Canceled) {
				return replayErr
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&frames, "frames", "", "JSONL landmark recording")
	cmd.Flags().Float64Var(&speed, "speed", 1, "replay speed factor, 0 replays without pacing")
	cmd.Flags().BoolVar(&report, "report", false, "print the session report as JSON on exit")
	_ = cmd.MarkFlagRequired("frames")
	return cmd
}

// wire picks remote collaborators for configured services and log-only
// ones for the rest.
func wire(conf *cfg.Root, provider landmarks.Provider, log *logrus.Logger) orchestrator.Deps {
	h := clients.NewHTTPWithTimeout(cfg.DurMillis(conf.Services.TimeoutMs))
	d := orchestrator.Deps{Provider: provider, Log: log}

	sinks := presentation.MultiSink{presentation.NewLogSink(log)}
	if u := conf.Services.Display.URL; u != "" {
		sinks = append(sinks, presentation.NewRemoteSink(h, u))
	}
	d.Sink = sinks

	if u := conf.Services.Classifier.URL; u != "" {
		d.Aux = clients.NewAuxClassifier(h, u)
	}

	if u := conf.Services.Voice.URL; u != "" {
		d.Player = presentation.NewPlayer(presentation.NewRemoteBackend(h, u, log))
		d.Speaker = presentation.NewRemoteSpeaker(h, u, log)
	} else {
		d.Player = presentation.NewPlayer(presentation.NewLogBackend(log))
		d.Speaker = presentation.NewLogSpeaker(log)
	}
	return d
}
