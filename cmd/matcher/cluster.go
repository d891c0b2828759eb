package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-match/internal/cluster"
)

var clusterCommand = &cobra.Command{
	Use:   "cluster",
	Short: "Recompute vacancy clusters from stored embeddings",
	Long: `Groups vacancies by combined-embedding similarity and derives representative titles, skills and industries per cluster.

Runs as a full recompute: all prior assignments are replaced.`,
	RunE: runClusterCmd,
}

var (
	clusterMinSize    int
	clusterMinSamples int
)

func init() {
	clusterCommand.Flags().IntVar(&clusterMinSize, "min-cluster-size", 2, "Minimum members for a group to become a cluster")
	clusterCommand.Flags().IntVar(&clusterMinSamples, "min-samples", 0, "Tightens the minimum group size when larger than --min-cluster-size")
	rootCmd.AddCommand(clusterCommand)
}

func runClusterCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	svc := cluster.NewService(a.database, a.logger)
	stats, err := svc.Run(ctx, clusterMinSize, clusterMinSamples)
	if err != nil {
		return err
	}

	fmt.Printf("Clustered %d vacancies into %d clusters (%d noise).\n",
		stats.VacancyCount, stats.ClusterCount, stats.NoiseCount)
	return nil
}
