package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/CaptainPineapple/melsec-gateway/supervisor"
	"github.com/CaptainPineapple/melsec-gateway/tagserver"
)

var statusProbeTimeout time.Duration

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Attempt to connect to every configured device for a short window and report what attached",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sup := supervisor.NewSupervisor(a.configDir, tagserver.NewInMemory())
		done := make(chan error, 1)
		go func() { done <- sup.Run(ctx) }()

		// Snapshot while the fleet is still running: each device goroutine
		// clears its status entry when the context is cancelled.
		finished := false
		select {
		case <-time.After(statusProbeTimeout):
		case <-done:
			finished = true
		}
		statuses := sup.Status()
		cancel()
		if !finished {
			<-done
		}
		if len(statuses) == 0 {
			fmt.Println("no devices configured")
			return nil
		}
		for _, st := range statuses {
			state := "disconnected"
			if st.Attached {
				state = "attached"
			} else if st.Connected {
				state = "connected"
			}
			line := fmt.Sprintf("%-20s %-6s %s", st.Name, st.Type, state)
			if st.LastError != "" {
				line += fmt.Sprintf(" (%s)", st.LastError)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().DurationVar(&statusProbeTimeout, "probe-timeout", 3*time.Second, "how long to wait for devices to connect before reporting")
}
