package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_UnmarshalBounds(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Score
		wantErr bool
	}{
		{name: "zero", input: "0", want: 0},
		{name: "hundred", input: "100", want: 100},
		{name: "mid", input: "72", want: 72},
		{name: "negative", input: "-1", wantErr: true},
		{name: "over hundred", input: "150", wantErr: true},
		{name: "fractional", input: "72.5", wantErr: true},
		{name: "string", input: `"72"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Score
			err := json.Unmarshal([]byte(tt.input), &s)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s)
		})
	}
}

func TestTab_UnmarshalDispatchesOnTabID(t *testing.T) {
	raw := `{
		"tabId": "dashboard",
		"tabTitle": "Overview",
		"content": {
			"overallScore": {"title": "Overall", "score": 70, "maxScore": 100},
			"coreCriteriaScores": [
				{"criterion": "Growth Potential", "score": 80, "maxScore": 100},
				{"criterion": "Stability & Defense", "score": 60, "maxScore": 100},
				{"criterion": "Strategic Consistency", "score": 75, "maxScore": 100}
			],
			"strengths": ["a strength"],
			"weaknesses": ["a weakness"]
		}
	}`

	var tab Tab
	require.NoError(t, json.Unmarshal([]byte(raw), &tab))

	content, ok := tab.Content.(*DashboardContent)
	require.True(t, ok, "dashboard id must decode into DashboardContent")
	assert.Equal(t, Score(70), content.OverallScore.Score)
	require.NoError(t, tab.Validate())
}

func TestTab_UnknownTabIDRejected(t *testing.T) {
	raw := `{"tabId": "surprise", "tabTitle": "?", "content": {}}`

	var tab Tab
	assert.Error(t, json.Unmarshal([]byte(raw), &tab))
}

func TestTab_ForeignShapeRejected(t *testing.T) {
	// keyStockAnalysis fields inside a tab claiming allStockScores.
	raw := `{
		"tabId": "allStockScores",
		"tabTitle": "Scores",
		"content": {"analysisCards": []}
	}`

	var tab Tab
	assert.Error(t, json.Unmarshal([]byte(raw), &tab))
}

func validDashboard() *DashboardContent {
	return &DashboardContent{
		OverallScore: ScoreData{Title: "Overall", Score: 70, MaxScore: 100},
		CoreCriteriaScores: []CoreCriteriaScore{
			{Criterion: "Growth Potential", Score: 80, MaxScore: 100},
			{Criterion: "Stability & Defense", Score: 60, MaxScore: 100},
			{Criterion: "Strategic Consistency", Score: 75, MaxScore: 100},
		},
		Strengths:  []string{"s"},
		Weaknesses: []string{"w"},
	}
}

func TestDashboardContent_Validate(t *testing.T) {
	content := validDashboard()
	require.NoError(t, content.Validate())

	content.CoreCriteriaScores = content.CoreCriteriaScores[:2]
	assert.Error(t, content.Validate(), "exactly three core criteria required")

	content = validDashboard()
	content.Strengths = nil
	assert.Error(t, content.Validate())
}

func TestAllStockScoresContent_HeaderRequirement(t *testing.T) {
	content := &AllStockScoresContent{
		ScoreTable: ScoreTable{
			Headers: []string{"Stock Name", "Overall", "Fundamentals"},
			Rows:    []StockScoreRow{{StockName: "ABC", Overall: 75}},
		},
	}
	require.NoError(t, content.Validate())

	content.ScoreTable.Headers = []string{"Ticker", "Total"}
	assert.Error(t, content.Validate())

	// Zero data rows are fine, the table may legitimately be empty.
	content.ScoreTable.Headers = []string{"stock name", "OVERALL"}
	content.ScoreTable.Rows = nil
	assert.NoError(t, content.Validate())
}

func TestPortfolioReport_Validate(t *testing.T) {
	buildTabs := func() []Tab {
		return []Tab{
			{TabID: TabDashboard, TabTitle: "Overview", Content: validDashboard()},
			{TabID: TabDeepDive, TabTitle: "Deep Dive", Content: &DeepDiveContent{
				InDepthAnalysis: []AnalysisItem{
					{Title: "Growth", Score: 80, Description: "A sufficiently long growth description of at least fifty characters total."},
					{Title: "Stability", Score: 60, Description: "A sufficiently long stability description of at least fifty characters."},
					{Title: "Consistency", Score: 75, Description: "A sufficiently long consistency description of at least fifty chars."},
				},
				Opportunities: OpportunitiesBlock{
					Title: "Opportunities",
					Items: []OpportunityItem{{Summary: "sum", Details: "details text that is long enough here"}},
				},
			}},
			{TabID: TabAllStockScores, TabTitle: "Scores", Content: &AllStockScoresContent{
				ScoreTable: ScoreTable{Headers: []string{"Stock Name", "Overall"}},
			}},
			{TabID: TabKeyStockAnalysis, TabTitle: "Key Stocks", Content: &KeyStockAnalysisContent{
				AnalysisCards: []AnalysisCard{{
					StockName:    "ABC",
					OverallScore: 75,
					DetailedScores: []DetailedScore{
						{Category: "Fundamentals", Score: 70, Analysis: "analysis text that is long enough here"},
						{Category: "Technical Potential", Score: 80, Analysis: "analysis text that is long enough here"},
						{Category: "Macro", Score: 65, Analysis: "analysis text that is long enough here"},
						{Category: "Market Sentiment", Score: 60, Analysis: "analysis text that is long enough here"},
						{Category: "Leadership", Score: 85, Analysis: "analysis text that is long enough here"},
					},
				}},
			}},
		}
	}

	report := &PortfolioReport{Version: ReportVersion, ReportDate: "2025-09-30", Tabs: buildTabs()}
	require.NoError(t, report.Validate())

	report.Tabs = report.Tabs[:3]
	assert.Error(t, report.Validate(), "four tabs required")

	tabs := buildTabs()
	tabs[1] = tabs[0]
	report = &PortfolioReport{Version: ReportVersion, ReportDate: "2025-09-30", Tabs: tabs}
	assert.Error(t, report.Validate(), "duplicate tab ids rejected")
}

func TestTab_MarshalRoundTrip(t *testing.T) {
	tab := Tab{TabID: TabDashboard, TabTitle: "Overview", Content: validDashboard()}

	data, err := json.Marshal(&tab)
	require.NoError(t, err)

	var decoded Tab
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, tab.TabID, decoded.TabID)
	_, ok := decoded.Content.(*DashboardContent)
	assert.True(t, ok)
}
