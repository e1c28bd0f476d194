package model

// SampleMarkdownContent is the canned analysis returned by the sample
// endpoint so the HTTP surface can be smoke-tested without a model call.
const SampleMarkdownContent = `**AI Summary:** The sample portfolio follows a **technology-innovation** strategy with strong growth potential, but it is **somewhat exposed to volatility**.

**Overall Portfolio Linia Score: 75 / 100**

**Three Core Criteria Scores:**

- **Growth Potential:** 85 / 100
- **Stability & Defense:** 60 / 100
- **Strategic Consistency:** 80 / 100

**[1] Portfolio Linia Score Deep Dive**

**1.1 Growth Potential Analysis (85 / 100): Strong focus on innovative technology**

The sample portfolio concentrates on leading companies in AI, cloud and semiconductors, sectors expected to drive future growth. Companies leading technological innovation make up a substantial share of the holdings.

**1.2 Stability & Defense Analysis (60 / 100): Volatility typical of technology stocks**

Most holdings are growth-stage technology companies exposed to market swings. Raising the share of companies with stable cash flows would improve defensiveness.

**1.3 Strategic Consistency Analysis (80 / 100): A clear investment theme**

A consistent technology-innovation philosophy runs through the portfolio, giving it high strategic consistency.

**[2] Portfolio Strengths, Weaknesses and Opportunities**

**Strengths**

- **Future technology exposure:** Strategic positions in leaders of next-generation technology.
- **Clear investment philosophy:** A coherent innovation theme shapes the whole portfolio.

**Weaknesses**

- **High volatility:** A technology-heavy mix leaves the portfolio exposed to market swings.
- **Sector concentration:** Dependence on a narrow set of technology segments.

**Opportunities**

- **Reinforce stability:** Add dividend payers or large caps to dampen drawdowns.
- **Geographic diversification:** Spread positions across global technology leaders.

**[3] Individual Stock Linia Scores**

**3.1 Score Summary Table**

| Stock Name | Overall | Fundamentals | Technical Potential | Macro | Market Sentiment | Leadership |
| --- | --- | --- | --- | --- | --- | --- |
| **Sample Tech A** | **80** | 75 | 90 | 75 | 85 | 85 |
| **Sample Tech B** | **78** | 80 | 85 | 70 | 80 | 85 |

**3.2 Individual Stock Analysis Cards**

**1. Sample Tech A - Overall: 80 / 100**

- **Fundamentals (75/100):** Steady revenue growth and improving margins on a solid balance sheet.
- **Technical Potential (90/100):** A distinctive technology and patent portfolio in next-generation computing.
- **Macro (75/100):** A direct beneficiary of accelerating global digital transformation.
- **Market Sentiment (85/100):** High market expectations for continued innovation.
- **Leadership (85/100):** A visionary management team executing an ambitious strategy.`
