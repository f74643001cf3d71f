package api

// Caps overrides simulation guardrails. Omitted fields keep the server's
// configured values.
type Caps struct {
	ActiveThreshold   *float64 `json:"active_threshold,omitempty"`
	FreezeMaxPct      *float64 `json:"freeze_max_pct,omitempty"`
	FreezeMaxMonths   *int     `json:"freeze_max_months,omitempty"`
	RescueCapPerMonth *float64 `json:"rescue_cap_per_month,omitempty"`
}

type SimulationEvent struct {
	Month       int     `json:"month"`
	Kind        string  `json:"kind"`
	MemberIndex int     `json:"member_index,omitempty"`
	Amount      float64 `json:"amount,omitempty"`
}

type Award struct {
	Position int `json:"position"`
	Month    int `json:"month"`
}

type ScenarioMetrics struct {
	DeficitMonths   int     `json:"deficit_months"`
	RescuesUsed     int     `json:"rescues_used"`
	ActiveShareAvg  float64 `json:"active_share_avg"`
	AwardsMade      int     `json:"awards_made"`
	FirstAwardMonth int     `json:"first_award_month,omitempty"`
	LastAwardMonth  int     `json:"last_award_month,omitempty"`
}

type ScenarioResult struct {
	Name              string          `json:"name"`
	ContributionDelta float64         `json:"contribution_delta"`
	Policy            string          `json:"policy"`
	CashFlows         []float64       `json:"cash_flows"`
	IRRAnnual         float64         `json:"irr_annual"`
	MeetsTarget       bool            `json:"meets_target"`
	// WithinTolerance applies the configured tolerance to the target comparison.
	WithinTolerance   bool            `json:"within_tolerance"`
	Target            float64         `json:"target"`
	Metrics           ScenarioMetrics `json:"metrics"`
	Awards            []Award         `json:"awards"`
	// Schedule is the projected delivery schedule when simulating a stored group.
	Schedule          []ScheduleEntry `json:"schedule,omitempty"`
}

// Snapshot is the group a simulation runs against: either a stored group id,
// or an explicit member count and monthly amount.
type Snapshot struct {
	GroupID       string  `json:"group_id,omitempty"`
	TotalMembers  float64 `json:"total_members,omitempty"`
	MonthlyAmount float64 `json:"monthly_amount,omitempty"`
}

// TargetSpec resolves the annual target. An explicit Target wins over the
// market and ecosystem lookup.
type TargetSpec struct {
	Target      *float64 `json:"target,omitempty"`
	Market      string   `json:"market,omitempty"`
	EcosystemID string   `json:"ecosystem_id,omitempty"`
}

type SimulateScenarioRequest struct {
	Snapshot          Snapshot          `json:"snapshot"`
	Horizon           int               `json:"horizon"`
	Name              string            `json:"name,omitempty"`
	ContributionDelta float64           `json:"contribution_delta"`
	Policy            string            `json:"policy"`
	Target            TargetSpec        `json:"target"`
	Events            []SimulationEvent `json:"events,omitempty"`
	// Caps overrides the server's configured caps.
	Caps *Caps `json:"caps,omitempty"`
}

type SimulateScenarioResponse struct {
	Result ScenarioResult `json:"result"`
}

type SimulateGridRequest struct {
	Snapshot Snapshot   `json:"snapshot"`
	Horizon  int        `json:"horizon"`
	Target   TargetSpec `json:"target"`
	Extended bool       `json:"extended,omitempty"`
	Caps     *Caps      `json:"caps,omitempty"`
}

type SimulateGridResponse struct {
	Results []ScenarioResult `json:"results"`
	Cached  bool             `json:"cached"`
}
