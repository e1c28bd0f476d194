package service

import (
	"portfolio-analyzer/config"
	"portfolio-analyzer/internal/repository"
	"portfolio-analyzer/pkg/cache"
	"portfolio-analyzer/pkg/logger"
)

type Service struct {
	AnalysisService AnalysisService
}

func NewService(cfg *config.Config, log *logger.Logger, repo *repository.Repository, memCache cache.Cache) *Service {
	return &Service{
		AnalysisService: NewAnalysisService(cfg, log, repo.GeminiAIRepo, memCache),
	}
}
