package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-analyzer/config"
	"portfolio-analyzer/internal/dto"
	"portfolio-analyzer/internal/faults"
	"portfolio-analyzer/internal/model"
	"portfolio-analyzer/pkg/cache"
	"portfolio-analyzer/pkg/logger"
)

const reportJSON = `{
  "version": "1.0",
  "reportDate": "2025-09-30",
  "tabs": [
    {
      "tabId": "dashboard",
      "tabTitle": "Overview",
      "content": {
        "overallScore": {"title": "Overall Portfolio Score", "score": 72, "maxScore": 100},
        "coreCriteriaScores": [
          {"criterion": "Growth Potential", "score": 88, "maxScore": 100},
          {"criterion": "Stability & Defense", "score": 55, "maxScore": 100},
          {"criterion": "Strategic Consistency", "score": 74, "maxScore": 100}
        ],
        "strengths": ["Bold allocation to next-generation technology leaders"],
        "weaknesses": ["Heavy exposure to growth-stock volatility"]
      }
    },
    {
      "tabId": "deepDive",
      "tabTitle": "Deep Dive",
      "content": {
        "inDepthAnalysis": [
          {"title": "Growth Potential", "score": 88, "description": "The portfolio concentrates on companies with very high technical potential, which gives it outstanding growth prospects."},
          {"title": "Stability & Defense", "score": 55, "description": "Most holdings are growth-stage technology companies, leaving the portfolio clearly exposed to market volatility."},
          {"title": "Strategic Consistency", "score": 74, "description": "A clear AI and computing theme runs through the holdings, though sector concentration remains a real risk."}
        ],
        "opportunities": {
          "title": "Opportunities",
          "items": [
            {"summary": "Add stable core assets", "details": "Adding dividend payers would dampen drawdowns during corrections."}
          ]
        }
      }
    },
    {
      "tabId": "allStockScores",
      "tabTitle": "All Stock Scores",
      "content": {
        "scoreTable": {
          "headers": ["Stock Name", "Overall", "Fundamentals", "Technical Potential", "Macro", "Market Sentiment", "Leadership"],
          "rows": [
            {"stockName": "PLTR", "overall": 78, "fundamentals": 70, "technicalPotential": 95, "macroEconomics": 75, "marketSentiment": 85, "leadership": 85}
          ]
        }
      }
    },
    {
      "tabId": "keyStockAnalysis",
      "tabTitle": "Key Stock Analysis",
      "content": {
        "analysisCards": [
          {
            "stockName": "PLTR",
            "overallScore": 78,
            "detailedScores": [
              {"category": "Fundamentals", "score": 70, "analysis": "Steady revenue growth and a recent move to GAAP profitability."},
              {"category": "Technical Potential", "score": 95, "analysis": "A distinctive platform position in big-data analytics and AI."},
              {"category": "Macro", "score": 75, "analysis": "A direct beneficiary of accelerating AI adoption worldwide."},
              {"category": "Market Sentiment", "score": 85, "analysis": "Strong retail and institutional support for the AI growth story."},
              {"category": "Leadership", "score": 85, "analysis": "A singular vision and strong leadership driving product innovation."}
            ]
          }
        ]
      }
    }
  ]
}`

const groundedText = `Overall Portfolio Linia Score: 72 / 100. Three Core Criteria Scores follow, with Individual Stock Linia Scores, Individual Stock Analysis Cards, a Deep Dive Analysis and the portfolio's Strengths, Weaknesses and Opportunities laid out in full detail for the conversion step to consume.`

type fakeAIRepo struct {
	calls     []dto.GenerateRequest
	responses []fakeResponse
}

type fakeResponse struct {
	text string
	err  error
}

func (f *fakeAIRepo) GenerateContent(ctx context.Context, req dto.GenerateRequest) (string, error) {
	idx := len(f.calls)
	f.calls = append(f.calls, req)
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	resp := f.responses[idx]
	return resp.text, resp.err
}

func makeTestJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Gemini.MaxOutputTokens = 8192
	cfg.Image.MaxFileSize = 10 * 1024 * 1024
	cfg.Image.MinDimension = 100
	cfg.Image.MaxDimension = 10000
	cfg.Image.OptimizeMaxDimension = 2048
	cfg.Image.JPEGQuality = 85
	cfg.Image.MaxImages = 5
	cfg.Analysis.TotalTimeout = 5 * time.Second
	cfg.Analysis.GroundingMinChars = 100
	cfg.Analysis.MarkdownMinChars = 20
	return cfg
}

func newTestService(repo *fakeAIRepo) AnalysisService {
	return NewAnalysisService(testConfig(), logger.NewNop(), repo, cache.NewCache(0, 0))
}

func uploads(t *testing.T, n int) []dto.UploadedImage {
	t.Helper()
	out := make([]dto.UploadedImage, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, dto.UploadedImage{
			Filename:    "portfolio.jpg",
			ContentType: "image/jpeg",
			Data:        makeTestJPEG(t),
		})
	}
	return out
}

func TestAnalyzeStructured_TwoStepPipeline(t *testing.T) {
	repo := &fakeAIRepo{responses: []fakeResponse{
		{text: groundedText},
		{text: reportJSON},
	}}
	svc := newTestService(repo)

	resp, err := svc.AnalyzeStructured(context.Background(), uploads(t, 2))

	require.NoError(t, err)
	require.Len(t, repo.calls, 2)

	// Step one carries the images and search, step two carries neither.
	assert.NotEmpty(t, repo.calls[0].Images)
	assert.True(t, repo.calls[0].EnableSearch)
	assert.Empty(t, repo.calls[1].Images)
	assert.False(t, repo.calls[1].EnableSearch)
	assert.Zero(t, repo.calls[1].Temperature)
	assert.Contains(t, repo.calls[1].Prompt, groundedText)

	require.NotNil(t, resp.PortfolioReport)
	assert.Len(t, resp.PortfolioReport.Tabs, 4)
	assert.Equal(t, 2, resp.ImagesProcessed)
	assert.NotEmpty(t, resp.RequestID)
}

func TestAnalyzeStructured_SecondCallServedFromCache(t *testing.T) {
	repo := &fakeAIRepo{responses: []fakeResponse{
		{text: groundedText},
		{text: reportJSON},
	}}
	memCache := cache.NewCache(0, 0)
	svc := NewAnalysisService(testConfig(), logger.NewNop(), repo, memCache)

	imgs := uploads(t, 1)
	first, err := svc.AnalyzeStructured(context.Background(), imgs)
	require.NoError(t, err)
	require.Len(t, repo.calls, 2)

	second, err := svc.AnalyzeStructured(context.Background(), imgs)
	require.NoError(t, err)
	assert.Len(t, repo.calls, 2, "cached result must not hit the model again")
	assert.Equal(t, first.PortfolioReport, second.PortfolioReport)
	assert.NotEqual(t, first.RequestID, second.RequestID, "request ids stay per-request")
}

func TestAnalyzeStructured_SchemaMismatchGetsOneRetry(t *testing.T) {
	repo := &fakeAIRepo{responses: []fakeResponse{
		{text: groundedText},
		{text: "I could not produce JSON, sorry"},
		{text: reportJSON},
	}}
	svc := newTestService(repo)

	resp, err := svc.AnalyzeStructured(context.Background(), uploads(t, 1))

	require.NoError(t, err)
	assert.Len(t, repo.calls, 3, "one grounding call plus two conversion attempts")
	require.NotNil(t, resp.PortfolioReport)
}

func TestAnalyzeStructured_PersistentSchemaMismatchFails(t *testing.T) {
	repo := &fakeAIRepo{responses: []fakeResponse{
		{text: groundedText},
		{text: "not json"},
		{text: "still not json"},
	}}
	svc := newTestService(repo)

	_, err := svc.AnalyzeStructured(context.Background(), uploads(t, 1))

	require.Error(t, err)
	assert.Equal(t, faults.KindSchemaMismatch, faults.KindOf(err))
	assert.Len(t, repo.calls, 3)
}

func TestAnalyzeStructured_UpstreamTimeoutPropagates(t *testing.T) {
	repo := &fakeAIRepo{responses: []fakeResponse{
		{err: faults.New(faults.KindTimeout, "analysis timed out after 2m0s")},
	}}
	memCache := cache.NewCache(0, 0)
	svc := NewAnalysisService(testConfig(), logger.NewNop(), repo, memCache)

	imgs := uploads(t, 1)
	_, err := svc.AnalyzeStructured(context.Background(), imgs)

	require.Error(t, err)
	assert.Equal(t, faults.KindTimeout, faults.KindOf(err))

	// A failed pipeline leaves no cache residue, the next call retries.
	repo.responses = []fakeResponse{{text: groundedText}, {text: reportJSON}}
	repo.calls = nil
	_, err = svc.AnalyzeStructured(context.Background(), imgs)
	require.NoError(t, err)
	assert.Len(t, repo.calls, 2)
}

func TestAnalyzeStructured_ShortGroundingRejected(t *testing.T) {
	repo := &fakeAIRepo{responses: []fakeResponse{
		{text: "too thin"},
	}}
	svc := newTestService(repo)

	_, err := svc.AnalyzeStructured(context.Background(), uploads(t, 1))

	require.Error(t, err)
	assert.Equal(t, faults.KindEmptyResponse, faults.KindOf(err))
	assert.Len(t, repo.calls, 1, "conversion must not run on rejected grounding")
}

func TestAnalyzeStructured_ImageCountBounds(t *testing.T) {
	repo := &fakeAIRepo{responses: []fakeResponse{{text: "unused"}}}
	svc := newTestService(repo)

	_, err := svc.AnalyzeStructured(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, faults.KindInvalidInput, faults.KindOf(err))

	_, err = svc.AnalyzeStructured(context.Background(), uploads(t, 6))
	require.Error(t, err)
	assert.Equal(t, faults.KindInvalidInput, faults.KindOf(err))

	assert.Empty(t, repo.calls, "rejected batches never reach the model")
}

func TestAnalyzeMarkdown_SingleCall(t *testing.T) {
	content := "**AI Summary:** a portfolio analysis long enough to pass the plausibility floor."
	repo := &fakeAIRepo{responses: []fakeResponse{{text: content}}}
	svc := newTestService(repo)

	resp, err := svc.AnalyzeMarkdown(context.Background(), uploads(t, 1))

	require.NoError(t, err)
	require.Len(t, repo.calls, 1)
	assert.True(t, repo.calls[0].EnableSearch)
	assert.NotEmpty(t, repo.calls[0].Images)
	assert.Equal(t, content, resp.Content)
	assert.Equal(t, 1, resp.ImagesProcessed)
}

func TestAnalyzeMarkdown_CachedByContent(t *testing.T) {
	content := "**AI Summary:** a portfolio analysis long enough to pass the plausibility floor."
	repo := &fakeAIRepo{responses: []fakeResponse{{text: content}}}
	svc := newTestService(repo)

	imgs := uploads(t, 1)
	_, err := svc.AnalyzeMarkdown(context.Background(), imgs)
	require.NoError(t, err)

	_, err = svc.AnalyzeMarkdown(context.Background(), imgs)
	require.NoError(t, err)
	assert.Len(t, repo.calls, 1)
}

func TestAnalyzeMarkdown_ShortContentRejected(t *testing.T) {
	repo := &fakeAIRepo{responses: []fakeResponse{{text: "nope"}}}
	svc := newTestService(repo)

	_, err := svc.AnalyzeMarkdown(context.Background(), uploads(t, 1))

	require.Error(t, err)
	assert.Equal(t, faults.KindEmptyResponse, faults.KindOf(err))
}

func TestSampleAnalysis(t *testing.T) {
	svc := newTestService(&fakeAIRepo{responses: []fakeResponse{{text: ""}}})

	resp := svc.SampleAnalysis()

	assert.Equal(t, model.SampleMarkdownContent, resp.Content)
	assert.NotEmpty(t, resp.RequestID)
	assert.Zero(t, resp.ImagesProcessed)
}
