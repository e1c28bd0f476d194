// Package prompt holds the fixed instruction texts sent to the model.
// Every function here is pure: same mode in, same string out.
package prompt

import (
	"fmt"
	"strings"
)

// Sentinels demarcate the JSON body in the conversion response so the
// extractor can isolate it from any incidental wrapper text.
const (
	JSONStartMarker = "<<<JSON_START>>>"
	JSONEndMarker   = "<<<JSON_END>>>"
)

// MarkdownRequiredSections are the markers a markdown-mode response is
// checked against. Missing markers are logged, not fatal.
var MarkdownRequiredSections = []string{
	"**AI Summary:**",
	"**Overall Portfolio Linia Score:",
	"**Three Core Criteria Scores:**",
	"**Growth Potential:**",
	"**Stability & Defense:**",
	"**Strategic Consistency:**",
}

// GroundingSectionMarkers are the fixed sections the step-1 skeleton
// asks for. Used for best-effort presence checks on the intermediate.
var GroundingSectionMarkers = []string{
	"Overall Portfolio Linia Score:",
	"Three Core Criteria Scores",
	"Individual Stock Linia Scores",
	"Individual Stock Analysis Cards",
	"Deep Dive Analysis",
	"Strengths, Weaknesses and Opportunities",
}

const markdownSkeleton = `**Important: output exactly the following markdown structure (markdown text only, no JSON):**

**AI Summary:** [2-3 sentences summarizing the portfolio strategy and its main risks]

**Overall Portfolio Linia Score: [integer 0-100] / 100**

**Three Core Criteria Scores:**

- **Growth Potential:** [integer 0-100] / 100
- **Stability & Defense:** [integer 0-100] / 100
- **Strategic Consistency:** [integer 0-100] / 100

**[1] Portfolio Linia Score Deep Dive**

**1.1 Growth Potential Analysis ([score] / 100): [title]**

[3-4 sentences of concrete growth analysis]

**1.2 Stability & Defense Analysis ([score] / 100): [title]**

[3-4 sentences of concrete stability analysis]

**1.3 Strategic Consistency Analysis ([score] / 100): [title]**

[3-4 sentences of concrete consistency analysis]

**[2] Portfolio Strengths, Weaknesses and Opportunities**

**Strengths**

- **[strength title]:** [1-2 sentences, actionable insight]

**Weaknesses**

- **[weakness title]:** [1-2 sentences with a concrete improvement]

**Opportunities**

- **[opportunity title]:** [explanation including a short what-if scenario]

**[3] Individual Stock Linia Scores**

**3.1 Score Summary Table**

| Stock Name | Overall | Fundamentals | Technical Potential | Macro | Market Sentiment | Leadership |
| --- | --- | --- | --- | --- | --- | --- |
| **[stock 1]** | **[score]** | [score] | [score] | [score] | [score] | [score] |

**3.2 Individual Stock Analysis Cards**

**1. [stock name] - Overall: [score] / 100**

- **Fundamentals ([score]/100):** [financial health and earnings analysis]
- **Technical Potential ([score]/100):** [technology and innovation analysis]
- **Macro ([score]/100):** [macroeconomic exposure analysis]
- **Market Sentiment ([score]/100):** [market perception analysis]
- **Leadership ([score]/100):** [management and strategy analysis]

Rules:
1. Every score is an integer between 0 and 100.
2. Provide 3-4 specific, professional sentences per criterion.
3. Strengths/weaknesses/opportunities: 1-2 actionable sentences each.
4. Rate every identified stock on all five categories.
5. Use professional investment-analysis language with concrete data points.

**Output markdown only. Never output JSON or any other format.**`

// SingleImageMarkdown instructs a free-form markdown analysis of one
// portfolio screenshot.
func SingleImageMarkdown() string {
	var sb strings.Builder
	sb.WriteString("You are a professional portfolio analyst. Extract the holdings from the provided brokerage-app screenshot and produce a comprehensive investment analysis.\n\n")
	sb.WriteString(markdownSkeleton)
	return sb.String()
}

// MultiImageMarkdown is the markdown-mode variant for several screenshots
// of the same portfolio (different pages or accounts).
func MultiImageMarkdown(imageCount int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You are a professional portfolio analyst. The %d provided brokerage-app screenshots all belong to one portfolio (multiple pages or accounts). Merge the holdings across all screenshots, deduplicate positions, and produce one comprehensive investment analysis of the combined portfolio.\n\n", imageCount))
	sb.WriteString(markdownSkeleton)
	return sb.String()
}

// StepOneGrounding is the first model call of the two-step pipeline: a
// free-form, search-grounded fact extraction into a fixed-section
// markdown intermediate.
func StepOneGrounding() string {
	return `You are a professional portfolio analyst. Extract the holdings from the provided brokerage-app screenshots and analyze the portfolio. Use Google Search to ground your analysis in current financial facts (recent earnings, price action, analyst sentiment) wherever it helps.

Produce a markdown document with exactly these sections:

### Overall Portfolio Score

* **Overall Portfolio Linia Score: [integer 0-100] / 100**

### Three Core Criteria Scores

* Growth Potential: [integer 0-100] / 100
* Stability & Defense: [integer 0-100] / 100
* Strategic Consistency: [integer 0-100] / 100

### Individual Stock Linia Scores

| Stock Name | Overall | Fundamentals | Technical Potential | Macro | Market Sentiment | Leadership |
| :--- | :--- | :--- | :--- | :--- | :--- | :--- |
| **[stock 1]** | [score] | [score] | [score] | [score] | [score] | [score] |

### Individual Stock Analysis Cards

**1. [stock name] - Overall: [score] / 100**
* **Fundamentals ([score]/100):** [analysis]
* **Technical Potential ([score]/100):** [analysis]
* **Macro ([score]/100):** [analysis]
* **Market Sentiment ([score]/100):** [analysis]
* **Leadership ([score]/100):** [analysis]

### Deep Dive Analysis

* **1.1 Growth Potential Analysis ([score] / 100): [title]**
    [3-4 sentences]
* **1.2 Stability & Defense Analysis ([score] / 100): [title]**
    [3-4 sentences]
* **1.3 Strategic Consistency Analysis ([score] / 100): [title]**
    [3-4 sentences]

### Strengths, Weaknesses and Opportunities

* **Strengths**
    * **[title]:** [1-2 sentences]
* **Weaknesses**
    * **[title]:** [1-2 sentences]
* **Opportunities**
    * **[title]:** [explanation with a short what-if scenario]

Every score is an integer between 0 and 100. Cover every stock visible in the screenshots. Be specific and cite concrete facts.`
}

// StepTwoConversion is the second, text-only call: it reshapes the
// grounded intermediate into schema-exact JSON between sentinel markers.
func StepTwoConversion(groundedText string) string {
	var sb strings.Builder
	sb.WriteString("Convert the portfolio analysis below into JSON. This is a pure reformatting task: use only facts, scores and text already present in the analysis, do not invent new information.\n\n")
	sb.WriteString("--- ANALYSIS START ---\n")
	sb.WriteString(groundedText)
	sb.WriteString("\n--- ANALYSIS END ---\n\n")
	sb.WriteString("Output requirements (all mandatory):\n")
	sb.WriteString(fmt.Sprintf("1. Output the JSON body between the exact markers %s and %s, with nothing else between them.\n", JSONStartMarker, JSONEndMarker))
	sb.WriteString(`2. The JSON must match this shape with these exact field names:
{
  "version": "1.0",
  "reportDate": "YYYY-MM-DD",
  "tabs": [
    {
      "tabId": "dashboard",
      "tabTitle": "Overview",
      "content": {
        "overallScore": {"title": "Overall Portfolio Score", "score": 0, "maxScore": 100},
        "coreCriteriaScores": [
          {"criterion": "Growth Potential", "score": 0, "maxScore": 100},
          {"criterion": "Stability & Defense", "score": 0, "maxScore": 100},
          {"criterion": "Strategic Consistency", "score": 0, "maxScore": 100}
        ],
        "strengths": ["..."],
        "weaknesses": ["..."]
      }
    },
    {
      "tabId": "deepDive",
      "tabTitle": "Deep Dive",
      "content": {
        "inDepthAnalysis": [
          {"title": "...", "score": 0, "description": "at least 50 characters"}
        ],
        "opportunities": {
          "title": "Opportunities",
          "items": [{"summary": "...", "details": "at least 30 characters"}]
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
            {"stockName": "...", "overall": 0, "fundamentals": 0, "technicalPotential": 0, "macroEconomics": 0, "marketSentiment": 0, "leadership": 0}
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
            "stockName": "...",
            "overallScore": 0,
            "detailedScores": [
              {"category": "Fundamentals", "score": 0, "analysis": "at least 30 characters"},
              {"category": "Technical Potential", "score": 0, "analysis": "at least 30 characters"},
              {"category": "Macro", "score": 0, "analysis": "at least 30 characters"},
              {"category": "Market Sentiment", "score": 0, "analysis": "at least 30 characters"},
              {"category": "Leadership", "score": 0, "analysis": "at least 30 characters"}
            ]
          }
        ]
      }
    }
  ]
}
3. "tabs" holds exactly these four entries with these exact tabId values, no more, no fewer.
4. "inDepthAnalysis" holds exactly 3 items. "coreCriteriaScores" holds exactly 3 entries. Every analysis card holds exactly 5 detailed scores.
5. Every score is an integer between 0 and 100. No field may be null or missing. Every "description" is at least 50 characters; every "details" and "analysis" is at least 30 characters.
6. "strengths", "weaknesses", "opportunities.items" and "analysisCards" each hold at least one entry.
`)
	return sb.String()
}

// OneShotJSON is the legacy single-call variant that asks for the full
// report schema directly from the images, without a grounding step.
func OneShotJSON() string {
	var sb strings.Builder
	sb.WriteString("You are a professional portfolio analyst. Extract the holdings from the provided brokerage-app screenshots and produce the complete structured analysis in a single response.\n\n")
	sb.WriteString(StepTwoConversion("[analyze the provided screenshots directly]"))
	return sb.String()
}
