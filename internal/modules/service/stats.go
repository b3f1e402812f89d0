package service

import (
	"context"
	"strconv"
	"time"

	"github.com/amansoomro062/codesign/internal/infra/cache"
	"github.com/amansoomro062/codesign/internal/infra/httpclient"
	"github.com/amansoomro062/codesign/internal/modules/repo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const githubStatsKey = "stats:github"

// Served whenever GitHub cannot be reached.
var fallbackRepoStats = httpclient.RepoStats{Stars: 125, Forks: 32, Contributors: 28}

type RepoStatsFetcher interface {
	FetchRepoStats(ctx context.Context) (*httpclient.RepoStats, error)
}

type FormattedStats struct {
	Stars        string `json:"stars"`
	Forks        string `json:"forks"`
	Contributors string `json:"contributors"`
	Users        string `json:"users"`
}

type GitHubStats struct {
	Stars        int            `json:"stars"`
	Forks        int            `json:"forks"`
	Contributors int            `json:"contributors"`
	Users        int64          `json:"users"`
	Formatted    FormattedStats `json:"formatted"`
}

type StatsService interface {
	GitHub(ctx context.Context) (*GitHubStats, error)
}

type statsService struct {
	gh    RepoStatsFetcher
	rdb   redis.Cmdable
	users repo.UserRepo
	ttl   time.Duration
	log   *zap.Logger
}

func NewStatsService(gh RepoStatsFetcher, rdb redis.Cmdable, users repo.UserRepo, ttl time.Duration, log *zap.Logger) StatsService {
	return &statsService{gh: gh, rdb: rdb, users: users, ttl: ttl, log: log}
}

// GitHub never fails: upstream and cache errors degrade to fallback values.
func (s *statsService) GitHub(ctx context.Context) (*GitHubStats, error) {
	rs := s.repoStats(ctx)

	users, err := s.users.Count(ctx)
	if err != nil {
		s.log.Warn("count users", zap.Error(err))
		users = 0
	}

	return &GitHubStats{
		Stars:        rs.Stars,
		Forks:        rs.Forks,
		Contributors: rs.Contributors,
		Users:        users,
		Formatted: FormattedStats{
			Stars:        FormatStat(int64(rs.Stars)),
			Forks:        FormatStat(int64(rs.Forks)),
			Contributors: FormatStat(int64(rs.Contributors)),
			Users:        FormatStat(users),
		},
	}, nil
}

func (s *statsService) repoStats(ctx context.Context) httpclient.RepoStats {
	var cached httpclient.RepoStats
	found, err := cache.GetJSON(ctx, s.rdb, githubStatsKey, &cached)
	if err != nil {
		s.log.Warn("read github stats cache", zap.Error(err))
	}
	if found {
		return cached
	}

	fresh, err := s.gh.FetchRepoStats(ctx)
	if err != nil {
		s.log.Warn("fetch github stats, serving fallback", zap.Error(err))
		return fallbackRepoStats
	}
	if err := cache.SetJSON(ctx, s.rdb, githubStatsKey, fresh, s.ttl); err != nil {
		s.log.Warn("write github stats cache", zap.Error(err))
	}
	return *fresh
}

// FormatStat renders 1234 as "1.2k+" and 2500000 as "2.5M+", truncating
// rather than rounding.
func FormatStat(n int64) string {
	switch {
	case n >= 1_000_000:
		return strconv.FormatFloat(float64(n/100_000)/10, 'f', -1, 64) + "M+"
	case n >= 1_000:
		return strconv.FormatFloat(float64(n/100)/10, 'f', -1, 64) + "k+"
	default:
		return strconv.FormatInt(n, 10)
	}
}
