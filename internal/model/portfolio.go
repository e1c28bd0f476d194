package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ReportVersion is the only report shape this service produces.
const ReportVersion = "1.0"

// TabID discriminates the content shape of a report tab.
type TabID string

const (
	TabDashboard        TabID = "dashboard"
	TabDeepDive         TabID = "deepDive"
	TabAllStockScores   TabID = "allStockScores"
	TabKeyStockAnalysis TabID = "keyStockAnalysis"
)

// RequiredTabIDs is the exact tab set of a valid report, in canonical order.
var RequiredTabIDs = []TabID{TabDashboard, TabDeepDive, TabAllStockScores, TabKeyStockAnalysis}

const (
	minDescriptionChars = 50
	minDetailsChars     = 30
	minAnalysisChars    = 30
	detailedScoreCount  = 5
	coreCriteriaCount   = 3
	inDepthCount        = 3
)

// Score is an integer bounded to [0, 100]. The bound is enforced when
// decoding model output, not only documented.
type Score int

func (s *Score) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("score must be a number: %w", err)
	}
	n := int(v)
	if float64(n) != v {
		return fmt.Errorf("score must be an integer, got %v", v)
	}
	if n < 0 || n > 100 {
		return fmt.Errorf("score %d out of range [0, 100]", n)
	}
	*s = Score(n)
	return nil
}

// PortfolioReport is the canonical structured output: a version tag, a
// report date and exactly four tabs with fixed identifiers.
type PortfolioReport struct {
	Version    string `json:"version"`
	ReportDate string `json:"reportDate"`
	Tabs       []Tab  `json:"tabs"`
}

func (r *PortfolioReport) Validate() error {
	if r.Version == "" {
		return fmt.Errorf("missing report version")
	}
	if r.ReportDate == "" {
		return fmt.Errorf("missing report date")
	}
	if len(r.Tabs) != len(RequiredTabIDs) {
		return fmt.Errorf("expected %d tabs, got %d", len(RequiredTabIDs), len(r.Tabs))
	}
	seen := make(map[TabID]bool, len(r.Tabs))
	for i := range r.Tabs {
		tab := &r.Tabs[i]
		if seen[tab.TabID] {
			return fmt.Errorf("duplicate tab %q", tab.TabID)
		}
		seen[tab.TabID] = true
		if err := tab.Validate(); err != nil {
			return fmt.Errorf("tab %q: %w", tab.TabID, err)
		}
	}
	for _, id := range RequiredTabIDs {
		if !seen[id] {
			return fmt.Errorf("missing tab %q", id)
		}
	}
	return nil
}

// Tab pairs an identifier with a content payload whose concrete shape is
// determined by the identifier. Decoding dispatches on tabId and rejects
// content that does not match the claimed variant.
type Tab struct {
	TabID    TabID      `json:"tabId"`
	TabTitle string     `json:"tabTitle"`
	Content  TabContent `json:"content"`
}

// TabContent is a closed union over the four tab content variants.
type TabContent interface {
	Validate() error
	tabContent()
}

func (t *Tab) UnmarshalJSON(data []byte) error {
	var shell struct {
		TabID    TabID           `json:"tabId"`
		TabTitle string          `json:"tabTitle"`
		Content  json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &shell); err != nil {
		return err
	}
	if len(shell.Content) == 0 {
		return fmt.Errorf("tab %q has no content", shell.TabID)
	}

	var content TabContent
	switch shell.TabID {
	case TabDashboard:
		content = &DashboardContent{}
	case TabDeepDive:
		content = &DeepDiveContent{}
	case TabAllStockScores:
		content = &AllStockScoresContent{}
	case TabKeyStockAnalysis:
		content = &KeyStockAnalysisContent{}
	default:
		return fmt.Errorf("unknown tab id %q", shell.TabID)
	}

	// Unknown fields mean the payload carries another variant's shape,
	// which is a mismatch, not something to coerce.
	dec := json.NewDecoder(bytes.NewReader(shell.Content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(content); err != nil {
		return fmt.Errorf("tab %q content does not match its variant: %w", shell.TabID, err)
	}

	t.TabID = shell.TabID
	t.TabTitle = shell.TabTitle
	t.Content = content
	return nil
}

func (t *Tab) Validate() error {
	if t.TabTitle == "" {
		return fmt.Errorf("missing tab title")
	}
	if t.Content == nil {
		return fmt.Errorf("missing content")
	}
	return t.Content.Validate()
}

// ScoreData is a titled score out of a maximum.
type ScoreData struct {
	Title    string `json:"title"`
	Score    Score  `json:"score"`
	MaxScore int    `json:"maxScore"`
}

func (s *ScoreData) Validate() error {
	if s.Title == "" {
		return fmt.Errorf("missing score title")
	}
	return nil
}

// CoreCriteriaScore is one of the three fixed core criteria.
type CoreCriteriaScore struct {
	Criterion string `json:"criterion"`
	Score     Score  `json:"score"`
	MaxScore  int    `json:"maxScore"`
}

// DashboardContent is the overview tab: one overall score, exactly three
// core-criteria scores and at least one strength and weakness each.
type DashboardContent struct {
	OverallScore       ScoreData           `json:"overallScore"`
	CoreCriteriaScores []CoreCriteriaScore `json:"coreCriteriaScores"`
	Strengths          []string            `json:"strengths"`
	Weaknesses         []string            `json:"weaknesses"`
}

func (c *DashboardContent) tabContent() {}

func (c *DashboardContent) Validate() error {
	if err := c.OverallScore.Validate(); err != nil {
		return err
	}
	if len(c.CoreCriteriaScores) != coreCriteriaCount {
		return fmt.Errorf("expected %d core criteria scores, got %d", coreCriteriaCount, len(c.CoreCriteriaScores))
	}
	for i, cs := range c.CoreCriteriaScores {
		if cs.Criterion == "" {
			return fmt.Errorf("core criteria %d: missing criterion name", i)
		}
	}
	if len(c.Strengths) == 0 {
		return fmt.Errorf("at least one strength required")
	}
	if len(c.Weaknesses) == 0 {
		return fmt.Errorf("at least one weakness required")
	}
	return nil
}

// AnalysisItem is one in-depth narrative section of the deep-dive tab.
type AnalysisItem struct {
	Title       string `json:"title"`
	Score       Score  `json:"score"`
	Description string `json:"description"`
}

type OpportunityItem struct {
	Summary string `json:"summary"`
	Details string `json:"details"`
}

type OpportunitiesBlock struct {
	Title string            `json:"title"`
	Items []OpportunityItem `json:"items"`
}

// DeepDiveContent holds exactly three in-depth analysis items and an
// opportunities block with at least one item.
type DeepDiveContent struct {
	InDepthAnalysis []AnalysisItem     `json:"inDepthAnalysis"`
	Opportunities   OpportunitiesBlock `json:"opportunities"`
}

func (c *DeepDiveContent) tabContent() {}

func (c *DeepDiveContent) Validate() error {
	if len(c.InDepthAnalysis) != inDepthCount {
		return fmt.Errorf("expected %d in-depth analysis items, got %d", inDepthCount, len(c.InDepthAnalysis))
	}
	for i, item := range c.InDepthAnalysis {
		if item.Title == "" {
			return fmt.Errorf("in-depth item %d: missing title", i)
		}
		if len(item.Description) < minDescriptionChars {
			return fmt.Errorf("in-depth item %d: description shorter than %d characters", i, minDescriptionChars)
		}
	}
	if c.Opportunities.Title == "" {
		return fmt.Errorf("missing opportunities title")
	}
	if len(c.Opportunities.Items) == 0 {
		return fmt.Errorf("at least one opportunity item required")
	}
	for i, item := range c.Opportunities.Items {
		if item.Summary == "" {
			return fmt.Errorf("opportunity %d: missing summary", i)
		}
		if len(item.Details) < minDetailsChars {
			return fmt.Errorf("opportunity %d: details shorter than %d characters", i, minDetailsChars)
		}
	}
	return nil
}

// StockScoreRow holds one stock's six named sub-scores.
type StockScoreRow struct {
	StockName          string `json:"stockName"`
	Overall            Score  `json:"overall"`
	Fundamentals       Score  `json:"fundamentals"`
	TechnicalPotential Score  `json:"technicalPotential"`
	MacroEconomics     Score  `json:"macroEconomics"`
	MarketSentiment    Score  `json:"marketSentiment"`
	Leadership         Score  `json:"leadership"`
}

type ScoreTable struct {
	Headers []string        `json:"headers"`
	Rows    []StockScoreRow `json:"rows"`
}

// AllStockScoresContent is the score summary table tab.
type AllStockScoresContent struct {
	ScoreTable ScoreTable `json:"scoreTable"`
}

func (c *AllStockScoresContent) tabContent() {}

func (c *AllStockScoresContent) Validate() error {
	if !containsHeader(c.ScoreTable.Headers, "stock name") || !containsHeader(c.ScoreTable.Headers, "overall") {
		return fmt.Errorf(`score table headers must include "Stock Name" and "Overall"`)
	}
	for i, row := range c.ScoreTable.Rows {
		if row.StockName == "" {
			return fmt.Errorf("score table row %d: missing stock name", i)
		}
	}
	return nil
}

// DetailedScore pairs one analysis category with its score and narrative.
type DetailedScore struct {
	Category string `json:"category"`
	Score    Score  `json:"score"`
	Analysis string `json:"analysis"`
}

// AnalysisCard is a per-stock card with exactly five detailed scores.
type AnalysisCard struct {
	StockName      string          `json:"stockName"`
	OverallScore   Score           `json:"overallScore"`
	DetailedScores []DetailedScore `json:"detailedScores"`
}

func (c *AnalysisCard) Validate() error {
	if c.StockName == "" {
		return fmt.Errorf("missing stock name")
	}
	if len(c.DetailedScores) != detailedScoreCount {
		return fmt.Errorf("expected %d detailed scores, got %d", detailedScoreCount, len(c.DetailedScores))
	}
	for i, ds := range c.DetailedScores {
		if ds.Category == "" {
			return fmt.Errorf("detailed score %d: missing category", i)
		}
		if len(ds.Analysis) < minAnalysisChars {
			return fmt.Errorf("detailed score %d: analysis shorter than %d characters", i, minAnalysisChars)
		}
	}
	return nil
}

// KeyStockAnalysisContent is the per-stock analysis card tab.
type KeyStockAnalysisContent struct {
	AnalysisCards []AnalysisCard `json:"analysisCards"`
}

func (c *KeyStockAnalysisContent) tabContent() {}

func (c *KeyStockAnalysisContent) Validate() error {
	if len(c.AnalysisCards) == 0 {
		return fmt.Errorf("at least one analysis card required")
	}
	for i := range c.AnalysisCards {
		if err := c.AnalysisCards[i].Validate(); err != nil {
			return fmt.Errorf("analysis card %d: %w", i, err)
		}
	}
	return nil
}

func containsHeader(headers []string, want string) bool {
	for _, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), want) {
			return true
		}
	}
	return false
}
