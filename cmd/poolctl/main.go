// Package main provides the poolctl CLI entrypoint.
package main

import (
	"os"
	"time"

	_ "github.com/jimmicro/version"
	"github.com/spf13/cobra"
)

// Global flags.
var (
	natsURL     string
	natsSubject string
	httpURL     string
	target      string
	timeout     time.Duration
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "poolctl",
		Short: "Manage libvirt storage pools through a poolagent",
		Long: `poolctl sends archipel:storage IQ stanzas to a poolagent and prints the reply.

The agent is reached either over NATS request/reply (--nats) or over its
HTTP endpoint (--http). Pools are addressed by name or UUID.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&natsURL, "nats", "", "NATS server URL, e.g. nats://127.0.0.1:4222")
	rootCmd.PersistentFlags().StringVar(&natsSubject, "subject", "poolagent.storage.iq", "NATS subject the agent listens on")
	rootCmd.PersistentFlags().StringVar(&httpURL, "http", "http://127.0.0.1:7780", "poolagent HTTP base URL, used when --nats is empty")
	rootCmd.PersistentFlags().StringVar(&target, "to", "", "jid of the target hypervisor, copied into the stanza")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newVolumesCmd())
	rootCmd.AddCommand(newStartCmd())
	rootCmd.AddCommand(newStopCmd())
	rootCmd.AddCommand(newDescribeCmd())
	rootCmd.AddCommand(newDefineCmd())
	rootCmd.AddCommand(newUndefineCmd())
	rootCmd.AddCommand(newAutostartCmd())

	return rootCmd
}
