package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sachintaksande/cowin-notifier/internal/config"
	"github.com/sachintaksande/cowin-notifier/internal/cowin"
)

func newDistrictsCmd() *cobra.Command {
	var baseURL string
	cmd := &cobra.Command{
		Use:   "districts [state name]",
		Short: "List CoWIN states, or the district ids of one state",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := cowin.New(cowin.Config{BaseURL: baseURL})
			states, err := client.States(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer w.Flush()

			if len(args) == 0 {
				fmt.Fprintln(w, "STATE ID\tSTATE")
				for _, s := range states {
					fmt.Fprintf(w, "%d\t%s\n", s.StateID, s.StateName)
				}
				return nil
			}

			stateID := 0
			for _, s := range states {
				if strings.EqualFold(strings.TrimSpace(s.StateName), strings.TrimSpace(args[0])) {
					stateID = s.StateID
					break
				}
			}
			if stateID == 0 {
				return fmt.Errorf("the value of state %s is invalid. Please provide a valid state name", args[0])
			}
			districts, err := client.Districts(cmd.Context(), stateID)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "DISTRICT ID\tDISTRICT")
			for _, d := range districts {
				fmt.Fprintf(w, "%d\t%s\n", d.DistrictID, d.DistrictName)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", config.Default().Cowin.BaseURL, "CoWIN API base URL")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter config.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "config.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s; set preferences.districtIds before running\n", path)
			return nil
		},
	})
	return cmd
}
