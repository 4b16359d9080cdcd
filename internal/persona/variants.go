package persona

import "github.com/adaptix/adaptix/internal/signals"

// signalRange is an inclusive [Min,Max] reference band for one normalized
// signal. Values inside the band match fully; outside, the match decays
// linearly with distance to the nearer bound.
type signalRange struct {
	Min float64
	Max float64
}

// variantRanges holds the reference bands a variant is matched against, in
// the same normalized 0-1 space as the extracted signals.
type variantRanges struct {
	ClickSpeed       signalRange
	ScrollPattern    signalRange
	NavigationDepth  signalRange
	Temporal         signalRange
	InteractionStyle signalRange
}

// referenceRanges are hand-tuned bands per variant. Their calibration basis
// is unknown; do not "correct" them.
var referenceRanges = map[signals.PersonaVariant]variantRanges{
	signals.VariantTechEarlyAdopter: {
		ClickSpeed:       signalRange{0.6, 1.0},
		ScrollPattern:    signalRange{0.6, 1.0},
		NavigationDepth:  signalRange{0.5, 1.0},
		Temporal:         signalRange{0.3, 1.0},
		InteractionStyle: signalRange{0.4, 1.0},
	},
	signals.VariantBargainHunter: {
		ClickSpeed:       signalRange{0.3, 0.8},
		ScrollPattern:    signalRange{0.3, 0.8},
		NavigationDepth:  signalRange{0.4, 1.0},
		Temporal:         signalRange{0.2, 0.8},
		InteractionStyle: signalRange{0.0, 0.6},
	},
	signals.VariantThoroughResearcher: {
		ClickSpeed:       signalRange{0.0, 0.5},
		ScrollPattern:    signalRange{0.0, 0.45},
		NavigationDepth:  signalRange{0.6, 1.0},
		Temporal:         signalRange{0.4, 1.0},
		InteractionStyle: signalRange{0.0, 0.4},
	},
	signals.VariantDecisiveBuyer: {
		ClickSpeed:       signalRange{0.5, 1.0},
		ScrollPattern:    signalRange{0.3, 0.8},
		NavigationDepth:  signalRange{0.0, 0.4},
		Temporal:         signalRange{0.0, 0.6},
		InteractionStyle: signalRange{0.7, 1.0},
	},
}

var variantCharacteristics = map[signals.PersonaVariant]signals.PersonaCharacteristics{
	signals.VariantTechEarlyAdopter: {
		PriceSensitivity: signals.LevelLow,
		ResearchDepth:    signals.LevelMedium,
		PurchaseUrgency:  signals.LevelHigh,
		TechAffinity:     signals.LevelHigh,
	},
	signals.VariantBargainHunter: {
		PriceSensitivity: signals.LevelHigh,
		ResearchDepth:    signals.LevelMedium,
		PurchaseUrgency:  signals.LevelLow,
		TechAffinity:     signals.LevelMedium,
	},
	signals.VariantThoroughResearcher: {
		PriceSensitivity: signals.LevelMedium,
		ResearchDepth:    signals.LevelHigh,
		PurchaseUrgency:  signals.LevelLow,
		TechAffinity:     signals.LevelMedium,
	},
	signals.VariantDecisiveBuyer: {
		PriceSensitivity: signals.LevelLow,
		ResearchDepth:    signals.LevelLow,
		PurchaseUrgency:  signals.LevelHigh,
		TechAffinity:     signals.LevelMedium,
	},
}

var variantPreferences = map[signals.PersonaVariant]signals.PersonaPreferences{
	signals.VariantTechEarlyAdopter: {
		ContentType:     "feature-deep-dive",
		NavigationStyle: "exploratory",
		TrustFactors:    []string{"benchmarks", "changelog", "community"},
	},
	signals.VariantBargainHunter: {
		ContentType:     "comparison",
		NavigationStyle: "price-first",
		TrustFactors:    []string{"discounts", "price-match", "reviews"},
	},
	signals.VariantThoroughResearcher: {
		ContentType:     "long-form-guide",
		NavigationStyle: "linear",
		TrustFactors:    []string{"documentation", "case-studies", "certifications"},
	},
	signals.VariantDecisiveBuyer: {
		ContentType:     "summary",
		NavigationStyle: "direct",
		TrustFactors:    []string{"guarantees", "testimonials", "support"},
	},
}

func unknownProfile() signals.PersonaProfile {
	return signals.PersonaProfile{
		Variant:    signals.VariantUnknown,
		Confidence: 0,
	}
}
