package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/fmuoria/resume-matcher/internal/config"
	"github.com/fmuoria/resume-matcher/internal/gui"
)

func newGUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Open the desktop window",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				log.Printf("Failed to load configuration: %v", err)
				cfg = config.DefaultConfig()
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			gui.NewApp(cfg).Run()
			return nil
		},
	}
}
