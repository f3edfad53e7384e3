package models

// ValuationInput is the full set of company parameters for one valuation run.
// All rates and margins are decimal fractions (0.25 = 25%).
type ValuationInput struct {
	Name   string `json:"name"   yaml:"name"`
	Sector string `json:"sector" yaml:"sector"`

	// Income statement aggregates.
	Revenue      float64 `json:"revenue"       yaml:"revenue"`
	EBITDA       float64 `json:"ebitda"        yaml:"ebitda"`
	Depreciation float64 `json:"depreciation"  yaml:"depreciation"`
	ProfitMargin float64 `json:"profit_margin" yaml:"profit_margin"`

	// Cash flow drivers.
	CapexPct             float64 `json:"capex_pct"              yaml:"capex_pct"`
	WorkingCapitalChange float64 `json:"working_capital_change" yaml:"working_capital_change"` // absolute currency

	// Growth path.
	GrowthRateY1   float64 `json:"growth_rate_y1"  yaml:"growth_rate_y1"`
	GrowthRateY2   float64 `json:"growth_rate_y2"  yaml:"growth_rate_y2"`
	GrowthRateY3   float64 `json:"growth_rate_y3"  yaml:"growth_rate_y3"`
	TerminalGrowth float64 `json:"terminal_growth" yaml:"terminal_growth"`

	// Capital structure.
	TaxRate           float64 `json:"tax_rate"            yaml:"tax_rate"`
	SharesOutstanding float64 `json:"shares_outstanding"  yaml:"shares_outstanding"`
	Debt              float64 `json:"debt"                yaml:"debt"`
	Cash              float64 `json:"cash"                yaml:"cash"`
	MarketCapEstimate float64 `json:"market_cap_estimate" yaml:"market_cap_estimate"`

	// Risk parameters (CAPM).
	Beta               float64 `json:"beta"                 yaml:"beta"`
	RiskFreeRate       float64 `json:"risk_free_rate"       yaml:"risk_free_rate"`
	MarketRiskPremium  float64 `json:"market_risk_premium"  yaml:"market_risk_premium"`
	CountryRiskPremium float64 `json:"country_risk_premium" yaml:"country_risk_premium"`
	SizePremium        float64 `json:"size_premium"         yaml:"size_premium"`

	// Industry benchmark multiples.
	ComparableEVEBITDA float64 `json:"comparable_ev_ebitda" yaml:"comparable_ev_ebitda"`
	ComparablePE       float64 `json:"comparable_pe"        yaml:"comparable_pe"`
	ComparablePEG      float64 `json:"comparable_peg"       yaml:"comparable_peg"`
}

// Profit returns net profit implied by revenue and profit margin.
func (in ValuationInput) Profit() float64 {
	return in.Revenue * in.ProfitMargin
}

// Recommendation is the discrete investment call derived from upside.
type Recommendation string

const (
	StrongBuy   Recommendation = "STRONG BUY"
	Buy         Recommendation = "BUY"
	Hold        Recommendation = "HOLD"
	Underweight Recommendation = "UNDERWEIGHT"
	Sell        Recommendation = "SELL"
)

// ValuationOutput is the primary result of one valuation run. A new run
// always produces a new record; stored outputs are never mutated.
type ValuationOutput struct {
	Name   string `json:"name"`
	Sector string `json:"sector"`

	DCFEquityValue   float64 `json:"dcf_equity_value"`
	DCFPricePerShare float64 `json:"dcf_price_per_share"`

	CompEVValue float64 `json:"comp_ev_value"`
	CompPEValue float64 `json:"comp_pe_value"`

	FinalEquityValue   float64 `json:"final_equity_value"`
	FinalPricePerShare float64 `json:"final_price_per_share"`

	MarketCap    float64 `json:"market_cap"`
	CurrentPrice float64 `json:"current_price"`
	UpsidePct    float64 `json:"upside_pct"`

	Recommendation Recommendation `json:"recommendation"`

	WACC         float64 `json:"wacc"`
	EVEBITDA     float64 `json:"ev_ebitda"`
	PERatio      float64 `json:"pe_ratio"`
	FCFYield     float64 `json:"fcf_yield"`
	ROE          float64 `json:"roe"`
	ROIC         float64 `json:"roic"`
	DebtToEquity float64 `json:"debt_to_equity"`
	ZScore       float64 `json:"z_score"`

	MCP10 float64 `json:"mc_p10"`
	MCP90 float64 `json:"mc_p90"`
}

// CostOfCapital holds the CAPM and WACC breakdown.
type CostOfCapital struct {
	CostOfEquity float64 `json:"cost_of_equity"`
	CostOfDebt   float64 `json:"cost_of_debt"` // pre-tax
	CreditSpread float64 `json:"credit_spread"`
	WeightEquity float64 `json:"weight_equity"`
	WeightDebt   float64 `json:"weight_debt"`
	WACC         float64 `json:"wacc"`
}

// ProjectionYear is one row of the explicit forecast.
type ProjectionYear struct {
	Year           int     `json:"year"`
	Growth         float64 `json:"growth"`
	Revenue        float64 `json:"revenue"`
	EBITDA         float64 `json:"ebitda"`
	DA             float64 `json:"da"`
	EBIT           float64 `json:"ebit"`
	NOPAT          float64 `json:"nopat"`
	Capex          float64 `json:"capex"`
	WorkingCapital float64 `json:"working_capital"`
	FCF            float64 `json:"fcf"`
	DiscountFactor float64 `json:"discount_factor"`
	PVFCF          float64 `json:"pv_fcf"`
}

// TerminalValue describes the Gordon-growth continuation value.
type TerminalValue struct {
	TerminalFCF  float64 `json:"terminal_fcf"`
	Growth       float64 `json:"growth"` // after clamping
	Clamped      bool    `json:"clamped"`
	Value        float64 `json:"value"`
	PresentValue float64 `json:"present_value"`
}

// DCFResult aggregates the projection, terminal value and equity bridge.
type DCFResult struct {
	Years           []ProjectionYear `json:"years"`
	SumPVFCF        float64          `json:"sum_pv_fcf"`
	Terminal        TerminalValue    `json:"terminal"`
	EnterpriseValue float64          `json:"enterprise_value"`
	EquityValue     float64          `json:"equity_value"`
	PricePerShare   float64          `json:"price_per_share"`
}

// ComparablesResult holds the two single-multiple implied values.
type ComparablesResult struct {
	ImpliedEV       float64 `json:"implied_ev"`
	ImpliedEquityEV float64 `json:"implied_equity_ev"`
	Profit          float64 `json:"profit"`
	ImpliedEquityPE float64 `json:"implied_equity_pe"`
	CompanyPE       float64 `json:"company_pe"`  // DCF equity / profit
	ImpliedPEG      float64 `json:"implied_peg"` // company PE / year-1 growth
}

// Ratios is the diagnostic ratio set. Percent fields are already scaled by 100.
type Ratios struct {
	EV               float64 `json:"ev"`
	EVEBITDA         float64 `json:"ev_ebitda"`
	EVRevenue        float64 `json:"ev_revenue"`
	PE               float64 `json:"pe"`
	PricePerShare    float64 `json:"price_per_share"`
	FCFYield         float64 `json:"fcf_yield"`
	DebtToEquity     float64 `json:"debt_to_equity"`
	DebtToEBITDA     float64 `json:"debt_to_ebitda"`
	NetDebt          float64 `json:"net_debt"`
	NetDebtToEBITDA  float64 `json:"net_debt_to_ebitda"`
	EBITDAMargin     float64 `json:"ebitda_margin"`
	ProfitMargin     float64 `json:"profit_margin"`
	ROE              float64 `json:"roe"`
	ROIC             float64 `json:"roic"`
	InterestCoverage float64 `json:"interest_coverage"`
}

// ZZone classifies an Altman Z-score.
type ZZone string

const (
	ZoneSafe     ZZone = "Safe Zone"
	ZoneGrey     ZZone = "Grey Zone"
	ZoneDistress ZZone = "Distress Zone"
)

// ZScore is the bankruptcy-risk proxy and its zone.
type ZScore struct {
	Score float64 `json:"score"`
	Zone  ZZone   `json:"zone"`
}

// SensitivityCell is one grid value. Applicable is false when the discount
// rate does not exceed terminal growth; Value is meaningless then.
type SensitivityCell struct {
	DiscountRate   float64 `json:"discount_rate"`
	TerminalGrowth float64 `json:"terminal_growth"`
	Value          float64 `json:"value"`
	Applicable     bool    `json:"applicable"`
}

// SensitivityGrid is equity value across discount-rate × terminal-growth pairs.
// Cells are indexed [growth][rate].
type SensitivityGrid struct {
	DiscountRates   []float64           `json:"discount_rates"`
	TerminalGrowths []float64           `json:"terminal_growths"`
	Cells           [][]SensitivityCell `json:"cells"`
}

// Cell returns the cell for growth row i and rate column j. Out of range
// indices return a zero, not applicable cell.
func (g SensitivityGrid) Cell(i, j int) SensitivityCell {
	if i < 0 || i >= len(g.Cells) || j < 0 || j >= len(g.Cells[i]) {
		return SensitivityCell{}
	}
	return g.Cells[i][j]
}

// MonteCarloSummary describes the simulated equity value distribution.
type MonteCarloSummary struct {
	Iterations int     `json:"iterations"`
	Seed       uint64  `json:"seed"`
	Mean       float64 `json:"mean"`
	Median     float64 `json:"median"`
	StdDev     float64 `json:"std_dev"`
	P10        float64 `json:"p10"`
	P90        float64 `json:"p90"`
}

// ValuationRange is the bear/base/bull spread around fair value.
type ValuationRange struct {
	Bear         float64 `json:"bear"`
	Base         float64 `json:"base"`
	Bull         float64 `json:"bull"`
	BearPerShare float64 `json:"bear_per_share"`
	BasePerShare float64 `json:"base_per_share"`
	BullPerShare float64 `json:"bull_per_share"`
	TargetPrice  float64 `json:"target_price"`
}

// ValuationAnalysis is the primary output plus every intermediate result,
// for reports and dashboards.
type ValuationAnalysis struct {
	Input       ValuationInput    `json:"input"`
	Output      ValuationOutput   `json:"output"`
	Capital     CostOfCapital     `json:"cost_of_capital"`
	DCF         DCFResult         `json:"dcf"`
	Comparables ComparablesResult `json:"comparables"`
	Ratios      Ratios            `json:"ratios"`
	ZScore      ZScore            `json:"z_score"`
	Sensitivity SensitivityGrid   `json:"sensitivity"`
	MonteCarlo  MonteCarloSummary `json:"monte_carlo"`
	Range       ValuationRange    `json:"range"`
}
