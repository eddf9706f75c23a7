// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/refcheck/internal/oracle"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the selectable language models",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		reg := oracle.NewRegistry(cfg.Oracle.Models)

		fmt.Printf("%-32s %-10s %s\n", "MODEL", "PROVIDER", "KEY")
		for _, m := range reg.Models() {
			key := "missing"
			if _, err := reg.New(m.Name, cfg.Oracle); err == nil {
				key = "ok"
			}
			marker := ""
			if m.Name == cfg.Oracle.DefaultModel {
				marker = " (default)"
			}
			fmt.Printf("%-32s %-10s %s%s\n", m.Name, m.Provider, key, marker)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
