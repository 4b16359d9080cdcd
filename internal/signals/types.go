package signals

import "time"

// DeviceClass is the coarse device category derived from capability facts
// or a parsed user agent.
type DeviceClass string

const (
	DeviceMobile  DeviceClass = "mobile"
	DeviceTablet  DeviceClass = "tablet"
	DeviceDesktop DeviceClass = "desktop"
)

// NetworkQuality buckets the estimated connection quality.
type NetworkQuality string

const (
	NetworkSlow     NetworkQuality = "slow"
	NetworkModerate NetworkQuality = "moderate"
	NetworkFast     NetworkQuality = "fast"
)

// ScrollPattern buckets observed scroll velocity.
type ScrollPattern string

const (
	ScrollSlow   ScrollPattern = "slow"
	ScrollMedium ScrollPattern = "medium"
	ScrollFast   ScrollPattern = "fast"
)

// InteractionStyle buckets how a visitor engages with interactive elements.
type InteractionStyle string

const (
	StyleCautious    InteractionStyle = "cautious"
	StyleExploratory InteractionStyle = "exploratory"
	StyleDecisive    InteractionStyle = "decisive"
)

// Level is a 3-step ordinal used for persona characteristics and device tiers.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// BehaviorSignal carries the per-visit behavioral observations fed into
// persona classification. It is recomputed by the collector for every call
// and never mutated here.
type BehaviorSignal struct {
	ClickSpeed         float64          `json:"click_speed"`          // normalized 0-1
	ScrollPattern      ScrollPattern    `json:"scroll_pattern"`
	NavigationDepth    int              `json:"navigation_depth"`     // pages per visit
	TimeDistribution   []float64        `json:"time_distribution"`    // seconds per page
	InteractionStyle   InteractionStyle `json:"interaction_style"`
	SessionCount       int              `json:"session_count"`
	AvgSessionDuration float64          `json:"avg_session_duration"` // seconds
}

// DeviceCapabilityProfile describes the visitor's device. Supplied fresh per
// call by the collector.
type DeviceCapabilityProfile struct {
	Class        DeviceClass    `json:"class"`
	ScreenWidth  int            `json:"screen_width"`
	ScreenHeight int            `json:"screen_height"`
	PixelRatio   float64        `json:"pixel_ratio"`
	CPUTier      Level          `json:"cpu_tier"`
	MemoryTier   Level          `json:"memory_tier"`
	Network      NetworkQuality `json:"network"`
	Touch        bool           `json:"touch"`
	Mouse        bool           `json:"mouse"`
	Keyboard     bool           `json:"keyboard"`
	ModernImages bool           `json:"modern_images"` // webp/avif support
	GPURendering bool           `json:"gpu_rendering"`
	ModernScript bool           `json:"modern_script"` // es modules etc.
}

// PersonaVariant is the closed set of visitor archetypes.
type PersonaVariant string

const (
	VariantUnknown            PersonaVariant = "unknown"
	VariantTechEarlyAdopter   PersonaVariant = "tech_early_adopter"
	VariantBargainHunter      PersonaVariant = "bargain_hunter"
	VariantThoroughResearcher PersonaVariant = "thorough_researcher"
	VariantDecisiveBuyer      PersonaVariant = "decisive_buyer"
)

// KnownVariants lists the classifiable variants in enumeration order.
// Score ties between variants resolve by this order.
var KnownVariants = []PersonaVariant{
	VariantTechEarlyAdopter,
	VariantBargainHunter,
	VariantThoroughResearcher,
	VariantDecisiveBuyer,
}

// PersonaCharacteristics records the ordinal traits associated with a variant.
type PersonaCharacteristics struct {
	PriceSensitivity Level `json:"price_sensitivity"`
	ResearchDepth    Level `json:"research_depth"`
	PurchaseUrgency  Level `json:"purchase_urgency"`
	TechAffinity     Level `json:"tech_affinity"`
}

// PersonaPreferences records content and navigation affinities for a variant.
type PersonaPreferences struct {
	ContentType     string   `json:"content_type"`
	NavigationStyle string   `json:"navigation_style"`
	TrustFactors    []string `json:"trust_factors"`
}

// PersonaProfile is the classifier output. Confidence 0 always pairs with
// VariantUnknown.
type PersonaProfile struct {
	ID              string                 `json:"id"`
	Variant         PersonaVariant         `json:"variant"`
	Confidence      float64                `json:"confidence"` // 0-100
	Characteristics PersonaCharacteristics `json:"characteristics"`
	Preferences     PersonaPreferences     `json:"preferences"`
	DetectedAt      time.Time              `json:"detected_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// InteractionEvent is a single recorded interaction inside a navigation path.
type InteractionEvent struct {
	Type       string `json:"type"` // click, hover, scroll, form
	Target     string `json:"target"`
	Timestamp  int64  `json:"timestamp"` // unix millis
	DurationMs int64  `json:"duration_ms,omitempty"`
}

// NavigationPath is the ordered page trail for one session. Pages and
// Timestamps are parallel slices of the same length.
type NavigationPath struct {
	Pages        []string           `json:"pages"`
	Timestamps   []int64            `json:"timestamps"` // unix millis
	Interactions []InteractionEvent `json:"interactions"`
	Referrer     string             `json:"referrer"`
	ExitPage     string             `json:"exit_page"`
}

// FunnelStage is one of the four ordered purchase-readiness phases.
type FunnelStage string

const (
	StageAwareness     FunnelStage = "awareness"
	StageConsideration FunnelStage = "consideration"
	StageDecision      FunnelStage = "decision"
	StagePurchase      FunnelStage = "purchase"
)

// IntentIndicators breaks the intent score down into its raw inputs.
type IntentIndicators struct {
	TimeOnPageSec     float64 `json:"time_on_page_sec"` // mean dwell
	PageViews         int     `json:"page_views"`
	CTAInteractions   int     `json:"cta_interactions"`
	PricingPageViews  int     `json:"pricing_page_views"`
	ComparisonActions int     `json:"comparison_actions"`
}

// PurchaseIntentProfile is the intent scorer output. Score and Confidence
// always clamp to [0,100]; Stage is derived from Score alone.
type PurchaseIntentProfile struct {
	Score               float64          `json:"score"`
	Stage               FunnelStage      `json:"stage"`
	Indicators          IntentIndicators `json:"indicators"`
	Urgency             Level            `json:"urgency"`
	Confidence          float64          `json:"confidence"`
	PredictedConversion float64          `json:"predicted_conversion"`
}

// PerformanceMetrics is the load/render portion of a UX metrics snapshot.
type PerformanceMetrics struct {
	LoadTimeMs         float64 `json:"load_time_ms"`
	RenderTimeMs       float64 `json:"render_time_ms"`
	InteractionDelayMs float64 `json:"interaction_delay_ms"`
}

// EngagementMetrics is the engagement portion of a UX metrics snapshot.
type EngagementMetrics struct {
	ScrollDepth      float64 `json:"scroll_depth"` // 0-1
	TimeOnPageSec    float64 `json:"time_on_page_sec"`
	ClickThroughRate float64 `json:"click_through_rate"`
	BounceRate       float64 `json:"bounce_rate"`
}

// ConversionMetrics is the conversion portion of a UX metrics snapshot.
type ConversionMetrics struct {
	ConversionRate  float64 `json:"conversion_rate"`
	AbandonmentRate float64 `json:"abandonment_rate"`
	UpsellRate      float64 `json:"upsell_rate"`
}

// UXMetrics is one live telemetry snapshot consumed per adaptation cycle.
type UXMetrics struct {
	Performance PerformanceMetrics `json:"performance"`
	Engagement  EngagementMetrics  `json:"engagement"`
	Conversion  ConversionMetrics  `json:"conversion"`
}

// PerformanceAdjustments is the corrective bundle for slow pages.
type PerformanceAdjustments struct {
	EnableLazyLoading    bool `json:"enable_lazy_loading"`
	DeferScripts         bool `json:"defer_scripts"`
	ReduceImageQuality   bool `json:"reduce_image_quality"`
	InlineCriticalAssets bool `json:"inline_critical_assets"`
}

// EngagementAdjustments is the corrective bundle for shallow engagement.
type EngagementAdjustments struct {
	RaiseCTAProminence   bool `json:"raise_cta_prominence"`
	AddJumpLinks         bool `json:"add_jump_links"`
	ShowExitIntentPrompt bool `json:"show_exit_intent_prompt"`
}

// ConversionAdjustments is the corrective bundle for weak conversion.
type ConversionAdjustments struct {
	HighlightTrustSignals bool `json:"highlight_trust_signals"`
	ShowSocialProof       bool `json:"show_social_proof"`
	SimplifyCheckout      bool `json:"simplify_checkout"`
	AddUrgencyBanner      bool `json:"add_urgency_banner"`
}

// AdjustmentSet is the adaptation engine output. Every bundle is optional;
// an entirely empty set is a valid result.
type AdjustmentSet struct {
	Performance *PerformanceAdjustments `json:"performance,omitempty"`
	Engagement  *EngagementAdjustments  `json:"engagement,omitempty"`
	Conversion  *ConversionAdjustments  `json:"conversion,omitempty"`
}

// Empty reports whether no bundle was triggered.
func (s AdjustmentSet) Empty() bool {
	return s.Performance == nil && s.Engagement == nil && s.Conversion == nil
}

// LayoutPlan is the base layout selected per device class.
type LayoutPlan struct {
	Columns      int    `json:"columns"`
	Stacking     string `json:"stacking"`
	Navigation   string `json:"navigation"`
	CTAPlacement string `json:"cta_placement"`
}

// ComponentPlan configures individual page components per device class.
type ComponentPlan struct {
	HeroSize      string `json:"hero_size"`
	NavType       string `json:"nav_type"`
	StickyNav     bool   `json:"sticky_nav"`
	BodyFontPx    int    `json:"body_font_px"`
	FooterDensity string `json:"footer_density"`
}

// AssetPlan configures media delivery per device class and network tier.
type AssetPlan struct {
	ImageFormat  string `json:"image_format"`
	ImageQuality int    `json:"image_quality"` // 0-100
	Autoplay     bool   `json:"autoplay"`
	LazyLoad     bool   `json:"lazy_load"`
}

// PerformanceBudget bounds what the rendering layer may ship.
type PerformanceBudget struct {
	MaxLoadTimeMs       float64 `json:"max_load_time_ms"`
	MaxBundleKB         float64 `json:"max_bundle_kb"`
	MaxImageKB          float64 `json:"max_image_kb"`
	LazyLoadThresholdPx int     `json:"lazy_load_threshold_px"`
}

// OptimizedLayout is the device profiler output.
type OptimizedLayout struct {
	Layout     LayoutPlan        `json:"layout"`
	Components ComponentPlan     `json:"components"`
	Assets     AssetPlan         `json:"assets"`
	Budget     PerformanceBudget `json:"budget"`
}

// OptimizationProfile is the composite published for rendering consumption.
// Each recomputation supersedes the previous one; profiles are never merged.
type OptimizationProfile struct {
	ProfileID   string                `json:"profile_id"`
	SessionID   string                `json:"session_id"`
	Persona     PersonaProfile        `json:"persona"`
	Layout      OptimizedLayout       `json:"layout"`
	Intent      PurchaseIntentProfile `json:"intent"`
	Adjustments AdjustmentSet         `json:"adjustments"`
	GeneratedAt time.Time             `json:"generated_at"`
}
