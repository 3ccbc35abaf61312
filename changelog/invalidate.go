package changelog

import (
	"github.com/flanksource/commons/logger"

	"github.com/flanksource/changelog/cache"
)

// RepositoryAdded drops the user's cached repository listings.
func (s *Service) RepositoryAdded(userID string) int {
	n := s.caches.Repositories.Invalidate(cache.Params{"userId": userID})
	logger.Debugf("repository added for %s: %d cache entries invalidated", userID, n)
	return n
}

// RepositoryRemoved drops the user's listings and everything cached for the repository.
func (s *Service) RepositoryRemoved(userID, repoID string) int {
	n := s.caches.Repositories.Invalidate(cache.Params{"userId": userID}) +
		s.caches.Commits.Invalidate(cache.Params{"repoId": repoID}) +
		s.caches.Changelogs.Invalidate(cache.Params{"repoId": repoID})
	logger.Debugf("repository %s removed for %s: %d cache entries invalidated", repoID, userID, n)
	return n
}

// TokenUpdated drops the connection's token health and the user's listings.
func (s *Service) TokenUpdated(userID, connectionID string) int {
	n := s.caches.TokenHealth.Invalidate(cache.Params{"connectionId": connectionID}) +
		s.caches.Repositories.Invalidate(cache.Params{"userId": userID})
	logger.Debugf("token updated on %s for %s: %d cache entries invalidated", connectionID, userID, n)
	return n
}

// Invalidate removes matching entries from one named cache.
func (s *Service) Invalidate(cacheName string, params cache.Params) (int, error) {
	c, err := s.caches.Named(cacheName)
	if err != nil {
		return 0, err
	}
	return c.Invalidate(params), nil
}

func (s *Service) CacheStats() []cache.Stats {
	return s.caches.Stats()
}
