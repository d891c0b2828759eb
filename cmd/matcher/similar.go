package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var similarCommand = &cobra.Command{
	Use:   "similar <vacancy-id>",
	Short: "Find vacancies similar to the given one",
	Long:  "Lists the vacancies closest to the given one by combined-embedding cosine similarity, best match first.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimilarCmd,
}

var similarLimit int

func init() {
	similarCommand.Flags().IntVarP(&similarLimit, "limit", "l", 5, "Maximum number of similar vacancies to return")
	rootCmd.AddCommand(similarCommand)
}

func runSimilarCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	vacancyID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid vacancy id %q: %w", args[0], err)
	}

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	similar, err := a.database.FindSimilarVacancies(ctx, vacancyID, similarLimit)
	if err != nil {
		return err
	}
	if len(similar) == 0 {
		fmt.Println("No similar vacancies found.")
		return nil
	}

	for i, s := range similar {
		fmt.Printf("%2d. %s  similarity=%.3f  %s\n", i+1, s.VacancyID, s.Similarity, s.Title)
	}
	return nil
}
