package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"portfolio-analyzer/config"
	"portfolio-analyzer/internal/dto"
	"portfolio-analyzer/internal/faults"
	"portfolio-analyzer/internal/imaging"
	"portfolio-analyzer/internal/model"
	"portfolio-analyzer/internal/prompt"
	"portfolio-analyzer/internal/repository"
	"portfolio-analyzer/internal/structout"
	"portfolio-analyzer/pkg/cache"
	"portfolio-analyzer/pkg/logger"
)

// AnalysisService runs the portfolio analysis pipeline over uploaded
// screenshots. Markdown mode is a single model call, structured mode is
// a two-step pipeline: a search-grounded free-form analysis followed by
// a deterministic conversion into the four-tab report.
type AnalysisService interface {
	AnalyzeMarkdown(ctx context.Context, images []dto.UploadedImage) (*dto.AnalysisResponse, error)
	AnalyzeStructured(ctx context.Context, images []dto.UploadedImage) (*dto.StructuredAnalysisResponse, error)
	SampleAnalysis() *dto.AnalysisResponse
}

type analysisService struct {
	cfg      *config.Config
	logger   *logger.Logger
	aiRepo   repository.AIRepository
	memCache cache.Cache

	// group collapses concurrent identical requests into one upstream
	// pipeline run. Keys match the cache keys.
	group singleflight.Group
}

func NewAnalysisService(cfg *config.Config, log *logger.Logger, aiRepo repository.AIRepository, memCache cache.Cache) AnalysisService {
	return &analysisService{
		cfg:      cfg,
		logger:   log,
		aiRepo:   aiRepo,
		memCache: memCache,
	}
}

// admitted holds the pipeline inputs derived from one upload batch: the
// cache key computed over the original bytes and the optimized parts
// that actually go to the model.
type admitted struct {
	contentKey string
	parts      []dto.ImagePart
}

// admit validates the batch, fingerprints the original bytes and
// optimizes each image for transmission. All failures are invalid-input
// faults and nothing leaves the process before this succeeds.
func (s *analysisService) admit(images []dto.UploadedImage) (*admitted, error) {
	if len(images) == 0 {
		return nil, faults.New(faults.KindInvalidInput, "no image files provided")
	}
	if len(images) > s.cfg.Image.MaxImages {
		return nil, faults.New(faults.KindInvalidInput,
			fmt.Sprintf("too many images, at most %d are allowed", s.cfg.Image.MaxImages))
	}

	limits := imaging.Limits{
		MaxFileSize:  s.cfg.Image.MaxFileSize,
		MinDimension: s.cfg.Image.MinDimension,
		MaxDimension: s.cfg.Image.MaxDimension,
	}

	raws := make([][]byte, 0, len(images))
	parts := make([]dto.ImagePart, 0, len(images))
	for i, img := range images {
		if err := imaging.Validate(img.Data, limits); err != nil {
			return nil, faults.Wrap(faults.KindInvalidInput,
				fmt.Sprintf("image %d (%s) rejected: %v", i+1, img.Filename, err), err)
		}

		optimized, mime, err := imaging.Optimize(img.Data, imaging.Options{
			MaxDimension: s.cfg.Image.OptimizeMaxDimension,
			JPEGQuality:  s.cfg.Image.JPEGQuality,
		})
		if err != nil {
			return nil, faults.Wrap(faults.KindInvalidInput,
				fmt.Sprintf("image %d (%s) could not be processed", i+1, img.Filename), err)
		}

		raws = append(raws, img.Data)
		parts = append(parts, dto.ImagePart{MIMEType: mime, Data: optimized})
	}

	return &admitted{
		contentKey: cache.MultiImageKey(raws),
		parts:      parts,
	}, nil
}

func (s *analysisService) AnalyzeMarkdown(ctx context.Context, images []dto.UploadedImage) (*dto.AnalysisResponse, error) {
	start := time.Now()

	batch, err := s.admit(images)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Analysis.TotalTimeout)
	defer cancel()

	key := cache.MarkdownKey(batch.contentKey)
	result, err, shared := s.group.Do(key, func() (interface{}, error) {
		if cached, found := cache.GetTyped[string](s.memCache, key); found {
			s.logger.InfoContext(ctx, "markdown cache hit", logger.StringField("key", key))
			return cached, nil
		}
		return s.runMarkdown(ctx, batch)
	})
	if err != nil {
		return nil, s.mapDeadline(ctx, err)
	}
	if shared {
		s.logger.DebugContext(ctx, "markdown request coalesced", logger.StringField("key", key))
	}

	return &dto.AnalysisResponse{
		Content:         result.(string),
		ProcessingTime:  time.Since(start).Seconds(),
		RequestID:       uuid.NewString(),
		ImagesProcessed: len(images),
	}, nil
}

func (s *analysisService) runMarkdown(ctx context.Context, batch *admitted) (string, error) {
	promptText := prompt.SingleImageMarkdown()
	if len(batch.parts) > 1 {
		promptText = prompt.MultiImageMarkdown(len(batch.parts))
	}

	content, err := s.aiRepo.GenerateContent(ctx, dto.GenerateRequest{
		Prompt:          promptText,
		Images:          batch.parts,
		Temperature:     0.3,
		MaxOutputTokens: s.cfg.Gemini.MaxOutputTokens,
		EnableSearch:    true,
	})
	if err != nil {
		return "", err
	}

	if len(content) < s.cfg.Analysis.MarkdownMinChars {
		return "", faults.New(faults.KindEmptyResponse, "analysis came back implausibly short, please retry")
	}
	for _, section := range prompt.MarkdownRequiredSections {
		if !strings.Contains(content, section) {
			// Missing sections degrade the report but do not invalidate it.
			s.logger.WarnContext(ctx, "markdown analysis missing expected section",
				logger.StringField("section", section))
		}
	}

	// Only validated results are cached, content addressing keeps them fresh.
	s.memCache.Set(cache.MarkdownKey(batch.contentKey), content, cache.NoExpiration)
	return content, nil
}

func (s *analysisService) AnalyzeStructured(ctx context.Context, images []dto.UploadedImage) (*dto.StructuredAnalysisResponse, error) {
	start := time.Now()

	batch, err := s.admit(images)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Analysis.TotalTimeout)
	defer cancel()

	grounded, err := s.groundedAnalysis(ctx, batch)
	if err != nil {
		return nil, s.mapDeadline(ctx, err)
	}

	report, err := s.convertToReport(ctx, grounded)
	if err != nil {
		return nil, s.mapDeadline(ctx, err)
	}

	return &dto.StructuredAnalysisResponse{
		PortfolioReport: report,
		ProcessingTime:  time.Since(start).Seconds(),
		RequestID:       uuid.NewString(),
		ImagesProcessed: len(images),
	}, nil
}

// groundedAnalysis runs step one: a search-grounded free-form analysis
// of the screenshots. The intermediate text is cached by image content.
func (s *analysisService) groundedAnalysis(ctx context.Context, batch *admitted) (string, error) {
	key := cache.GroundedKey(batch.contentKey)
	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		if cached, found := cache.GetTyped[string](s.memCache, key); found {
			s.logger.InfoContext(ctx, "grounded analysis cache hit", logger.StringField("key", key))
			return cached, nil
		}

		text, err := s.aiRepo.GenerateContent(ctx, dto.GenerateRequest{
			Prompt:          prompt.StepOneGrounding(),
			Images:          batch.parts,
			Temperature:     0.3,
			MaxOutputTokens: s.cfg.Gemini.MaxOutputTokens,
			EnableSearch:    true,
		})
		if err != nil {
			return nil, err
		}

		if len(text) < s.cfg.Analysis.GroundingMinChars {
			return nil, faults.New(faults.KindEmptyResponse,
				"analysis came back implausibly short, please retry")
		}
		for _, marker := range prompt.GroundingSectionMarkers {
			if !strings.Contains(text, marker) {
				s.logger.WarnContext(ctx, "grounded analysis missing expected section",
					logger.StringField("section", marker))
			}
		}

		s.memCache.Set(key, text, cache.NoExpiration)
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// convertToReport runs step two: the deterministic conversion of the
// grounded text into a validated four-tab report. One corrective retry
// is allowed when the first output fails schema validation; the model
// at temperature zero still occasionally truncates or drifts.
func (s *analysisService) convertToReport(ctx context.Context, grounded string) (*model.PortfolioReport, error) {
	key := cache.StepTwoKey(grounded)
	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		if cached, found := cache.GetTyped[*model.PortfolioReport](s.memCache, key); found {
			s.logger.InfoContext(ctx, "report cache hit", logger.StringField("key", key))
			return cached, nil
		}

		report, err := s.convertOnce(ctx, grounded)
		if faults.Is(err, faults.KindSchemaMismatch) {
			s.logger.WarnContext(ctx, "report failed schema validation, retrying conversion",
				logger.ErrorField(err))
			report, err = s.convertOnce(ctx, grounded)
		}
		if err != nil {
			return nil, err
		}

		s.memCache.Set(key, report, cache.NoExpiration)
		return report, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*model.PortfolioReport), nil
}

func (s *analysisService) convertOnce(ctx context.Context, grounded string) (*model.PortfolioReport, error) {
	raw, err := s.aiRepo.GenerateContent(ctx, dto.GenerateRequest{
		Prompt:           prompt.StepTwoConversion(grounded),
		Temperature:      0,
		MaxOutputTokens:  s.cfg.Gemini.MaxOutputTokens,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, err
	}
	return structout.ParseReport(raw)
}

func (s *analysisService) SampleAnalysis() *dto.AnalysisResponse {
	return &dto.AnalysisResponse{
		Content:         model.SampleMarkdownContent,
		ProcessingTime:  0,
		RequestID:       uuid.NewString(),
		ImagesProcessed: 0,
	}
}

// mapDeadline converts an expired pipeline budget into a timeout fault
// so the transport layer reports it as unavailability, not a crash.
func (s *analysisService) mapDeadline(ctx context.Context, err error) error {
	if faults.KindOf(err) != faults.KindInternal {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return faults.Wrap(faults.KindTimeout,
			fmt.Sprintf("analysis did not finish within %s", s.cfg.Analysis.TotalTimeout), err)
	}
	return err
}
