package repository

import (
	"portfolio-analyzer/config"
	"portfolio-analyzer/pkg/logger"
)

type Repository struct {
	GeminiAIRepo AIRepository
}

func NewRepository(cfg *config.Config, log *logger.Logger) (*Repository, error) {
	geminiAIRepo, err := NewGeminiAIRepository(cfg, log)
	if err != nil {
		return nil, err
	}

	return &Repository{
		GeminiAIRepo: geminiAIRepo,
	}, nil
}
