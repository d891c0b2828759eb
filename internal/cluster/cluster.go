// Package cluster groups vacancies into density-based clusters over their
// combined embeddings and derives representative properties per cluster.
// Clustering runs as a full recompute: every run replaces all assignments
// and prunes properties of clusters that disappeared.
package cluster

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/talent-match/internal/db"
	"github.com/jonathan/talent-match/internal/similarity"
	"github.com/jonathan/talent-match/internal/types"
)

// DistanceThreshold is the maximum cosine distance (1 - cosine similarity)
// between two vacancies for them to land in the same cluster.
const DistanceThreshold = 0.3

// MaxReinforcementBonus caps the score bonus a candidate can earn from
// appearing well-matched across sibling vacancies of one cluster.
const MaxReinforcementBonus = 0.1

// reinforcementPerMember is the bonus contributed by each other cluster
// member beyond the vacancy being ranked.
const reinforcementPerMember = 0.02

// Store is the persistence surface clustering needs.
type Store interface {
	ListVacancyEmbeddings(ctx context.Context) ([]db.VacancyEmbedding, error)
	ListVacancySummaries(ctx context.Context) (map[uuid.UUID]db.VacancySummary, error)
	ReplaceClusterAssignments(ctx context.Context, assignments []types.ClusterAssignment) error
	UpsertClusterProperties(ctx context.Context, props *types.ClusterProperties) error
	DeleteClusterProperties(ctx context.Context, keepClusterIDs []int) error
	GetClusterAssignment(ctx context.Context, vacancyID uuid.UUID) (int, bool, error)
	CountClusterMembers(ctx context.Context, clusterID int) (int, error)
}

// Service runs clustering and answers cluster-membership queries.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a clustering service backed by the given store.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// RunStats summarizes one clustering run.
type RunStats struct {
	VacancyCount int
	ClusterCount int
	NoiseCount   int
}

// Run recomputes all cluster assignments from stored vacancy embeddings.
// A vacancy joins a cluster when it sits within DistanceThreshold of the
// cluster's seed and the resulting group has at least minClusterSize
// members; everything else is noise. minSamples tightens the minimum group
// size when it exceeds minClusterSize.
func (s *Service) Run(ctx context.Context, minClusterSize, minSamples int) (RunStats, error) {
	if minClusterSize < 2 {
		return RunStats{}, fmt.Errorf("min cluster size must be at least 2, got %d", minClusterSize)
	}

	embeddings, err := s.store.ListVacancyEmbeddings(ctx)
	if err != nil {
		return RunStats{}, fmt.Errorf("failed to load vacancy embeddings: %w", err)
	}

	minSize := minClusterSize
	if minSamples > minSize {
		minSize = minSamples
	}

	assignments, clusterCount := s.cluster(embeddings, minSize)

	stats := RunStats{VacancyCount: len(embeddings), ClusterCount: clusterCount}
	for _, a := range assignments {
		if a.ClusterID == types.NoiseCluster {
			stats.NoiseCount++
		}
	}

	if err := s.store.ReplaceClusterAssignments(ctx, assignments); err != nil {
		return RunStats{}, fmt.Errorf("failed to persist cluster assignments: %w", err)
	}

	if err := s.writeProperties(ctx, assignments, clusterCount); err != nil {
		return RunStats{}, err
	}

	s.logger.Info("clustering run complete",
		zap.Int("vacancies", stats.VacancyCount),
		zap.Int("clusters", stats.ClusterCount),
		zap.Int("noise", stats.NoiseCount))

	return stats, nil
}

// cluster performs a single greedy pass: each unvisited vacancy seeds a
// candidate group of all unvisited vacancies within DistanceThreshold.
// Groups that reach minSize become clusters; undersized groups are marked
// noise without revisiting.
func (s *Service) cluster(embeddings []db.VacancyEmbedding, minSize int) ([]types.ClusterAssignment, int) {
	n := len(embeddings)
	assignments := make([]types.ClusterAssignment, n)
	for i, ve := range embeddings {
		assignments[i] = types.ClusterAssignment{VacancyID: ve.VacancyID, ClusterID: types.NoiseCluster}
	}

	if n < minSize {
		return assignments, 0
	}

	distances := pairwiseDistances(embeddings)

	visited := make([]bool, n)
	nextCluster := 0
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}

		group := []int{i}
		for j := 0; j < n; j++ {
			if j == i || visited[j] {
				continue
			}
			if distances[i][j] <= DistanceThreshold {
				group = append(group, j)
			}
		}

		if len(group) >= minSize {
			for _, m := range group {
				visited[m] = true
				assignments[m].ClusterID = nextCluster
			}
			nextCluster++
		} else {
			for _, m := range group {
				visited[m] = true
			}
		}
	}

	return assignments, nextCluster
}

func pairwiseDistances(embeddings []db.VacancyEmbedding) [][]float64 {
	n := len(embeddings)
	distances := make([][]float64, n)
	for i := range distances {
		distances[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := similarity.CosineDistance(embeddings[i].Embedding, embeddings[j].Embedding)
			distances[i][j] = d
			distances[j][i] = d
		}
	}
	return distances
}

// writeProperties derives and persists representative attributes for each
// cluster, then prunes properties of clusters that vanished in this run.
func (s *Service) writeProperties(ctx context.Context, assignments []types.ClusterAssignment, clusterCount int) error {
	summaries, err := s.store.ListVacancySummaries(ctx)
	if err != nil {
		return fmt.Errorf("failed to load vacancy summaries: %w", err)
	}

	members := make(map[int][]db.VacancySummary)
	for _, a := range assignments {
		if a.ClusterID == types.NoiseCluster {
			continue
		}
		if vs, ok := summaries[a.VacancyID]; ok {
			members[a.ClusterID] = append(members[a.ClusterID], vs)
		}
	}

	keep := make([]int, 0, clusterCount)
	now := s.now()
	for clusterID := 0; clusterID < clusterCount; clusterID++ {
		props := deriveProperties(clusterID, members[clusterID], now)
		if err := s.store.UpsertClusterProperties(ctx, props); err != nil {
			return fmt.Errorf("failed to persist properties for cluster %d: %w", clusterID, err)
		}
		keep = append(keep, clusterID)
	}

	if err := s.store.DeleteClusterProperties(ctx, keep); err != nil {
		return fmt.Errorf("failed to prune stale cluster properties: %w", err)
	}
	return nil
}

const (
	topTitleCount    = 3
	topSkillCount    = 5
	topIndustryCount = 3
)

// deriveProperties ranks member titles, skills and industries by frequency.
func deriveProperties(clusterID int, members []db.VacancySummary, now time.Time) *types.ClusterProperties {
	titles := make(map[string]int)
	skills := make(map[string]int)
	industries := make(map[string]int)
	for _, m := range members {
		if m.Title != "" {
			titles[m.Title]++
		}
		if m.Industry != "" {
			industries[m.Industry]++
		}
		for _, sk := range m.Skills {
			norm := similarity.NormalizeSkill(sk)
			if norm != "" {
				skills[norm]++
			}
		}
	}

	return &types.ClusterProperties{
		ClusterID:   clusterID,
		TopTitles:   topByFrequency(titles, topTitleCount),
		TopSkills:   topByFrequency(skills, topSkillCount),
		TopIndustry: topByFrequency(industries, topIndustryCount),
		MemberCount: len(members),
		UpdatedAt:   now,
	}
}

// topByFrequency returns at most k values ordered by descending count,
// breaking ties alphabetically for stable output.
func topByFrequency(counts map[string]int, k int) []string {
	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		if counts[values[i]] != counts[values[j]] {
			return counts[values[i]] > counts[values[j]]
		}
		return values[i] < values[j]
	})
	if len(values) > k {
		values = values[:k]
	}
	return values
}

// ReinforcementBonus returns the score bonus for a candidate ranked against
// a vacancy that belongs to a cluster: 0.02 per other member of the same
// cluster, capped at MaxReinforcementBonus. Noise and unknown vacancies earn
// no bonus.
func (s *Service) ReinforcementBonus(ctx context.Context, vacancyID uuid.UUID) (float64, error) {
	clusterID, ok, err := s.store.GetClusterAssignment(ctx, vacancyID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve cluster for vacancy: %w", err)
	}
	if !ok {
		return 0, nil
	}

	count, err := s.store.CountClusterMembers(ctx, clusterID)
	if err != nil {
		return 0, fmt.Errorf("failed to count cluster members: %w", err)
	}

	others := count - 1
	if others < 0 {
		others = 0
	}
	return math.Min(MaxReinforcementBonus, reinforcementPerMember*float64(others)), nil
}
