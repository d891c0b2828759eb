package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/talent-match/internal/cluster"
	"github.com/jonathan/talent-match/internal/fusion"
	"github.com/jonathan/talent-match/internal/llm"
	"github.com/jonathan/talent-match/internal/neuralrank"
	"github.com/jonathan/talent-match/internal/observability"
	"github.com/jonathan/talent-match/internal/pipeline"
	"github.com/jonathan/talent-match/internal/postrank"
	"github.com/jonathan/talent-match/internal/prefilter"
	"github.com/jonathan/talent-match/internal/prescore"
)

var rankCommand = &cobra.Command{
	Use:   "rank <vacancy-id>",
	Short: "Rank all candidates against one vacancy",
	Long: `Runs the full ranking funnel for a vacancy: pre-filter -> vector pre-score -> pairwise neural rank -> batched LLM post-rank -> weighted fusion.

Results print best-first with per-stage scores and a short explanation per candidate.`,
	Args: cobra.ExactArgs(1),
	RunE: runRankCmd,
}

var rankReinforce bool

func init() {
	rankCommand.Flags().BoolVar(&rankReinforce, "reinforce", false, "Apply the cluster reinforcement bonus to final scores")
	rootCmd.AddCommand(rankCommand)
}

func runRankCmd(cmd *cobra.Command, args []string) error {
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

	retry := llm.DefaultRetryPolicy()
	post := postrank.NewRanker(a.client, a.database, retry, a.logger)
	post.SetBatchDelay(a.cfg.BatchDelay())

	opts := pipeline.Options{Timeout: a.cfg.RankTimeout()}
	var printer *observability.Printer
	if a.cfg.Verbose {
		printer = observability.NewPrinter(os.Stdout)
		opts.Printer = printer
	}

	ranker := pipeline.NewRanker(
		a.database,
		prefilter.NewEngine(a.logger),
		prescore.NewScorer(a.logger),
		neuralrank.NewRanker(a.client, a.database, retry, a.logger),
		post,
		fusion.NewFuser(a.database, a.logger),
		opts,
		a.logger,
	)

	result, err := ranker.Rank(ctx, vacancyID)
	if err != nil {
		return err
	}

	final := result.Candidates
	if rankReinforce {
		clusters := cluster.NewService(a.database, a.logger)
		bonus, err := clusters.ReinforcementBonus(ctx, vacancyID)
		if err != nil {
			return fmt.Errorf("failed to compute reinforcement bonus: %w", err)
		}
		final = fusion.WithReinforcement(ctx, vacancyID, final,
			func(context.Context, uuid.UUID, uuid.UUID) float64 { return bonus })
	}

	if len(final) == 0 {
		fmt.Println("No candidates matched this vacancy.")
		return nil
	}

	// Printed after reinforcement so the displayed order is the served one.
	if printer != nil {
		printer.PrintRanking(final)
	} else {
		for i, c := range final {
			fmt.Printf("%2d. %s  final=%.3f  (pre=%.3f neural=%.3f llm=%.3f)\n      %s\n",
				i+1, c.CandidateID, c.FinalScore, c.PreScore, c.NeuralRankScore, c.LLMScore, c.Explanation)
		}
	}
	return nil
}
