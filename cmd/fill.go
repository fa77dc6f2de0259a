package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/guimove/trainfit/internal/model"
	"github.com/guimove/trainfit/internal/orchestrator"
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Assign every unassigned parcel to the available trains",
	Long: `Takes the unassigned parcels and the trains not yet ready to book from
the configured database, assigns parcels at minimum total train cost,
links them and marks the trains used ready to book.`,
	RunE: runFill,
}

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Book every train that is ready to book",
	RunE:  runBook,
}

func init() {
	fillCmd.Flags().String("output", "table", "output format: table, json")
	bookCmd.Flags().String("output", "table", "output format: table, json")

	rootCmd.AddCommand(fillCmd)
	rootCmd.AddCommand(bookCmd)
}

func runFill(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	outputFmt, _ := cmd.Flags().GetString("output")

	return withService(ctx, func(orch *orchestrator.Orchestrator) error {
		summary, err := orch.Fill(ctx)
		if err != nil {
			return err
		}
		if outputFmt == "json" {
			return writeJSON(os.Stdout, summary)
		}
		fmt.Printf("Assigned %s parcels, total cost %s\n",
			humanize.Comma(int64(summary.AssignedItems)), humanize.Commaf(summary.TotalCost))
		return nil
	})
}

func runBook(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	outputFmt, _ := cmd.Flags().GetString("output")

	return withService(ctx, func(orch *orchestrator.Orchestrator) error {
		booked, err := orch.Book(ctx)
		if err != nil {
			return err
		}
		if outputFmt == "json" {
			return writeJSON(os.Stdout, booked)
		}
		if len(booked) == 0 {
			fmt.Println("No trains ready to book.")
			return nil
		}
		printTrains(booked)
		return nil
	})
}

func printTrains(trains []model.Train) {
	fmt.Printf("%-6s %-20s %10s %10s %10s %-6s %s\n",
		"ID", "NAME", "WEIGHT", "VOLUME", "COST", "READY", "BOOKED")
	for _, t := range trains {
		booked := "-"
		if t.BookedAt != nil {
			booked = t.BookedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("%-6d %-20s %10s %10s %10s %-6t %s\n",
			t.ID,
			truncate(t.Name, 20),
			humanize.Commaf(t.Weight),
			humanize.Commaf(t.Volume),
			humanize.Commaf(t.Cost),
			t.ReadyToBook,
			booked,
		)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
