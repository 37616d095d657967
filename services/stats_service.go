package services

import (
	"context"
	"sort"

	"hangouts-server/models"
	"hangouts-server/utils/errors"
)

const (
	favoritePlacesLimit     = 3
	DefaultCommunityScanCap = 1000
)

type StatsService struct {
	checkins CheckinStore
	// communityScanCap bounds how many recent check-ins are read for the
	// community-wide top place.
	communityScanCap int
}

func NewStatsService(checkins CheckinStore, communityScanCap int) *StatsService {
	if communityScanCap <= 0 {
		communityScanCap = DefaultCommunityScanCap
	}
	return &StatsService{checkins: checkins, communityScanCap: communityScanCap}
}

func (s *StatsService) UserStats(ctx context.Context, userID string) (models.UserStats, error) {
	if userID == "" {
		return models.UserStats{}, errors.ErrUnauthorized
	}

	total, err := s.checkins.CountCheckins(ctx, userID)
	if err != nil {
		return models.UserStats{}, errors.StoreFailure(err)
	}

	own, err := s.checkins.ListLocationNames(ctx, userID, 0)
	if err != nil {
		return models.UserStats{}, errors.StoreFailure(err)
	}

	recent, err := s.checkins.ListLocationNames(ctx, "", s.communityScanCap)
	if err != nil {
		return models.UserStats{}, errors.StoreFailure(err)
	}

	stats := models.UserStats{
		TotalCheckins:  total,
		FavoritePlaces: rankPlaces(own, favoritePlacesLimit),
	}
	if top := rankPlaces(recent, 1); len(top) == 1 {
		stats.CommunityTopPlace = &top[0]
	}
	return stats, nil
}

// rankPlaces counts names and returns the n most frequent. Equal counts are
// ordered by name. Empty names are not counted.
func rankPlaces(names []string, n int) []models.PlaceCount {
	counts := make(map[string]int)
	for _, name := range names {
		if name != "" {
			counts[name]++
		}
	}
	ranked := make([]models.PlaceCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, models.PlaceCount{LocationName: name, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].LocationName < ranked[j].LocationName
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
