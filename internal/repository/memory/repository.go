package memory

import (
	"sync"

	"github.com/kthorson/sidepotbot/internal/models"
)

// Repository caches league data between report runs and bot commands.
// Completed-week scores never change, so they are kept for the life of the
// process; metadata freshness is the caller's concern via LastUpdated.
type Repository struct {
	metadata   *models.LeagueMetadata
	rules      *models.LeagueRules
	teamLabels map[int]string
	weekScores map[int][]models.TeamWeekScore
	mu         sync.RWMutex
}

func NewRepository() *Repository {
	return &Repository{
		weekScores: make(map[int][]models.TeamWeekScore),
	}
}

func (r *Repository) SaveMetadata(metadata *models.LeagueMetadata) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metadata = metadata
}

func (r *Repository) GetMetadata() *models.LeagueMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metadata
}

func (r *Repository) SaveRules(rules *models.LeagueRules) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = rules
}

func (r *Repository) GetRules() *models.LeagueRules {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rules
}

func (r *Repository) SaveTeamLabels(labels map[int]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teamLabels = labels
}

func (r *Repository) GetTeamLabels() map[int]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.teamLabels
}

func (r *Repository) SaveWeekScores(week int, scores []models.TeamWeekScore) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.weekScores[week] = scores
}

func (r *Repository) GetWeekScores(week int) ([]models.TeamWeekScore, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	scores, ok := r.weekScores[week]
	return scores, ok
}
