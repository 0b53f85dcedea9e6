package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/CaptainPineapple/melsec-gateway/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Parse clients.json and both specification documents without connecting to any device",
	RunE: func(cmd *cobra.Command, args []string) error {
		clients, err := config.LoadClients(filepath.Join(a.configDir, "clients.json"))
		if err != nil {
			return err
		}
		fmt.Printf("clients.json: %d client(s)\n", len(clients.Clients))

		var plcCount, robotCount int
		for _, c := range clients.Clients {
			switch {
			case c.IsPLC():
				plcCount++
			case c.IsRobot():
				robotCount++
			default:
				return fmt.Errorf("clients.json: device %q has unknown Type %q", c.Name, c.Type)
			}
		}

		if plcCount > 0 {
			schema, err := config.LoadSchema(filepath.Join(a.configDir, "plc-specification.json"))
			if err != nil {
				return fmt.Errorf("plc-specification.json: %w", err)
			}
			fmt.Printf("plc-specification.json: %d top-level node(s), %d PLC client(s) reference it\n", len(schema.Nodes), plcCount)
		}
		if robotCount > 0 {
			schema, err := config.LoadSchema(filepath.Join(a.configDir, "robot-specification.json"))
			if err != nil {
				return fmt.Errorf("robot-specification.json: %w", err)
			}
			fmt.Printf("robot-specification.json: %d top-level node(s), %d robot client(s) reference it\n", len(schema.Nodes), robotCount)
		}

		fmt.Println("OK")
		return nil
	},
}
