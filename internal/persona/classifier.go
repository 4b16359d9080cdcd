package persona

import (
	"math"
	"strings"

	"github.com/mssola/useragent"

	"github.com/adaptix/adaptix/internal/config"
	"github.com/adaptix/adaptix/internal/signals"
)

// Normalization references for raw behavior signals.
const (
	depthReference      = 10.0   // page count treated as "deep" navigation
	sessionReference    = 10.0   // session count treated as frequent
	durationReferenceS  = 1800.0 // session duration treated as long
	minRangeWidth       = 0.05   // floor for proximity decay scale
	neutralSignal       = 0.5    // used when a signal cannot be computed
	sophisticatedCutoff = 0.8
)

// Classifier maps a user agent plus behavioral observations to a persona
// profile. Classification is a pure function of its inputs; the caller
// attaches detection timestamps and an identifier.
type Classifier struct {
	weights config.PersonaWeights
}

// NewClassifier builds a classifier with the given signal weights. Zero
// weights fall back to the hand-tuned defaults.
func NewClassifier(w config.PersonaWeights) *Classifier {
	if w.Sum() == 0 {
		w = config.DefaultScoring().Persona
	}
	return &Classifier{weights: w}
}

// extracted is the normalized 0-1 signal vector one behavior observation
// reduces to.
type extracted struct {
	ClickSpeed       float64
	ScrollPattern    float64
	NavigationDepth  float64
	Temporal         float64
	InteractionStyle float64
}

// Classify never fails: inputs that carry no usable signal resolve to
// VariantUnknown with confidence 0.
func (c *Classifier) Classify(userAgent string, b signals.BehaviorSignal) signals.PersonaProfile {
	if isEmptySignal(b) {
		return unknownProfile()
	}

	sig := extract(b)

	bestVariant := signals.VariantUnknown
	bestScore := 0.0

	// Ties resolve by enumeration order: the first variant to reach the top
	// score keeps it. There is deliberately no secondary tie-break.
	for _, v := range signals.KnownVariants {
		score := c.match(sig, referenceRanges[v])
		if score > bestScore {
			bestScore = score
			bestVariant = v
		}
	}

	if bestVariant == signals.VariantUnknown || bestScore <= 0 {
		return unknownProfile()
	}

	profile := signals.PersonaProfile{
		Variant:         bestVariant,
		Confidence:      clamp(bestScore*100, 0, 100),
		Characteristics: variantCharacteristics[bestVariant],
		Preferences:     variantPreferences[bestVariant],
	}

	// A sophisticated browser is weak evidence of tech affinity on top of
	// whatever the variant table says.
	if browserSophistication(userAgent) >= sophisticatedCutoff {
		profile.Characteristics.TechAffinity = raiseLevel(profile.Characteristics.TechAffinity)
	}

	return profile
}

func (c *Classifier) match(sig extracted, ref variantRanges) float64 {
	return c.weights.ClickSpeed*proximity(sig.ClickSpeed, ref.ClickSpeed) +
		c.weights.ScrollPattern*proximity(sig.ScrollPattern, ref.ScrollPattern) +
		c.weights.NavigationDepth*proximity(sig.NavigationDepth, ref.NavigationDepth) +
		c.weights.TimeDistribution*proximity(sig.Temporal, ref.Temporal) +
		c.weights.InteractionStyle*proximity(sig.InteractionStyle, ref.InteractionStyle)
}

// proximity scores 1.0 for containment in [Min,Max] and decays linearly with
// distance to the nearer bound, floored at 0. The decay scale is the band
// width so narrow bands punish misses harder.
func proximity(v float64, r signalRange) float64 {
	if v >= r.Min && v <= r.Max {
		return 1.0
	}
	width := r.Max - r.Min
	if width < minRangeWidth {
		width = minRangeWidth
	}
	var dist float64
	if v < r.Min {
		dist = r.Min - v
	} else {
		dist = v - r.Max
	}
	return math.Max(0, 1-dist/width)
}

func extract(b signals.BehaviorSignal) extracted {
	return extracted{
		ClickSpeed:       clamp(b.ClickSpeed, 0, 1),
		ScrollPattern:    scrollOrdinal(b.ScrollPattern),
		NavigationDepth:  clamp(float64(b.NavigationDepth)/depthReference, 0, 1),
		Temporal:         temporalSignal(b),
		InteractionStyle: styleOrdinal(b.InteractionStyle),
	}
}

// temporalSignal blends session frequency, session-duration ratio and
// time-distribution consistency into one 0-1 value.
func temporalSignal(b signals.BehaviorSignal) float64 {
	frequency := clamp(float64(b.SessionCount)/sessionReference, 0, 1)
	duration := clamp(b.AvgSessionDuration/durationReferenceS, 0, 1)
	return (frequency + duration + consistency(b.TimeDistribution)) / 3
}

// consistency inverts the coefficient of variation of per-page durations:
// evenly spread attention scores high, erratic attention scores low. Too few
// samples yield a neutral value.
func consistency(durations []float64) float64 {
	if len(durations) < 2 {
		return neutralSignal
	}
	var sum float64
	for _, d := range durations {
		sum += d
	}
	mean := sum / float64(len(durations))
	if mean <= 0 {
		return neutralSignal
	}
	var variance float64
	for _, d := range durations {
		variance += (d - mean) * (d - mean)
	}
	variance /= float64(len(durations))
	cv := math.Sqrt(variance) / mean
	return clamp(1-cv, 0, 1)
}

func scrollOrdinal(p signals.ScrollPattern) float64 {
	switch p {
	case signals.ScrollSlow:
		return 0.1
	case signals.ScrollMedium:
		return 0.5
	case signals.ScrollFast:
		return 0.9
	}
	return 0
}

func styleOrdinal(s signals.InteractionStyle) float64 {
	switch s {
	case signals.StyleCautious:
		return 0.1
	case signals.StyleExploratory:
		return 0.5
	case signals.StyleDecisive:
		return 0.9
	}
	return 0
}

// browserSophistication maps the parsed browser family to a rough 0-1
// modernity score. Unparseable agents land in the middle.
func browserSophistication(rawUA string) float64 {
	if rawUA == "" {
		return neutralSignal
	}
	ua := useragent.New(rawUA)
	if ua.Bot() {
		return 0.1
	}
	name, _ := ua.Browser()
	switch strings.ToLower(name) {
	case "chrome", "chromium":
		return 0.9
	case "firefox", "edge":
		return 0.8
	case "safari":
		return 0.7
	case "internet explorer", "msie":
		return 0.2
	}
	return neutralSignal
}

// DeviceClassFromUA derives the coarse device class from a raw user agent.
// Unparseable agents default to desktop.
func DeviceClassFromUA(rawUA string) signals.DeviceClass {
	if rawUA == "" {
		return signals.DeviceDesktop
	}
	ua := useragent.New(rawUA)
	if ua.Mobile() {
		if strings.Contains(strings.ToLower(rawUA), "tablet") ||
			strings.Contains(rawUA, "iPad") {
			return signals.DeviceTablet
		}
		return signals.DeviceMobile
	}
	return signals.DeviceDesktop
}

func isEmptySignal(b signals.BehaviorSignal) bool {
	return b.ClickSpeed == 0 &&
		b.NavigationDepth == 0 &&
		b.SessionCount == 0 &&
		len(b.TimeDistribution) == 0 &&
		b.ScrollPattern == "" &&
		b.InteractionStyle == ""
}

func raiseLevel(l signals.Level) signals.Level {
	switch l {
	case signals.LevelLow:
		return signals.LevelMedium
	case signals.LevelMedium:
		return signals.LevelHigh
	}
	return l
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
