package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

type globals struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd(&globals{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(g *globals) *cobra.Command {
	root := &cobra.Command{
		Use:           "emofeedback",
		Short:         "Webcam emotion feedback: landmarks in, emoji and suggestions out",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "path to config.yaml (default: config/$CONFIG_ENV/config.yaml)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "override pipeline.log_level")

	root.AddCommand(newRunCmd(g), newClassifyCmd(g), newConfigCmd(g))
	return root
}

func (g *globals) level(fromConfig string) string {
	if g.logLevel != "" {
		return g.logLevel
	}
	return fromConfig
}
