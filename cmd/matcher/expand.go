package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/talent-match/internal/expand"
)

var expandCommand = &cobra.Command{
	Use:   "expand <vacancy-id>",
	Short: "Expand a vacancy description into a structured search query",
	Long: `Produces the structured expansion of a vacancy: canonical and alternate titles, core responsibilities, grouped skills and search keywords, plus an enhanced embedding of the combined text.

Expansions are cached per vacancy; repeated runs return the stored result.`,
	Args: cobra.ExactArgs(1),
	RunE: runExpandCmd,
}

func init() {
	rootCmd.AddCommand(expandCommand)
}

func runExpandCmd(cmd *cobra.Command, args []string) error {
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

	vacancy, err := a.database.GetVacancy(ctx, vacancyID)
	if err != nil {
		return err
	}

	svc := expand.NewService(a.client, a.embedder, a.database, a.logger)
	query, err := svc.Expand(ctx, vacancy)
	if err != nil {
		return err
	}

	fmt.Printf("Primary title:    %s\n", query.PrimaryTitle)
	fmt.Printf("Industry:         %s\n", query.Industry)
	if len(query.AlternateTitles) > 0 {
		fmt.Printf("Alternate titles: %s\n", strings.Join(query.AlternateTitles, ", "))
	}
	for _, resp := range query.CoreResponsibilities {
		fmt.Printf("  - %s\n", resp)
	}
	for i, group := range query.SkillGroups {
		fmt.Printf("Skill group %d:    %s\n", i+1, strings.Join(group, ", "))
	}
	if len(query.Keywords) > 0 {
		fmt.Printf("Keywords:         %s\n", strings.Join(query.Keywords, ", "))
	}
	if len(query.EnhancedEmbedding) > 0 {
		fmt.Printf("Enhanced embedding: %d dimensions\n", len(query.EnhancedEmbedding))
	}
	return nil
}
