package device

import "github.com/adaptix/adaptix/internal/signals"

// Network scaling multipliers applied to the per-class base budget.
const (
	slowLoadScale   = 1.5
	slowBundleScale = 0.7
	slowImageScale  = 0.6
	fastLoadScale   = 0.8
	fastBundleScale = 1.3
	fastImageScale  = 1.5
)

// baseLayouts is the fixed layout strategy table keyed by device class.
var baseLayouts = map[signals.DeviceClass]signals.LayoutPlan{
	signals.DeviceMobile: {
		Columns:      1,
		Stacking:     "vertical",
		Navigation:   "hamburger",
		CTAPlacement: "sticky-bottom",
	},
	signals.DeviceTablet: {
		Columns:      2,
		Stacking:     "hybrid",
		Navigation:   "collapsed",
		CTAPlacement: "inline",
	},
	signals.DeviceDesktop: {
		Columns:      3,
		Stacking:     "grid",
		Navigation:   "full",
		CTAPlacement: "above-fold",
	},
}

// baseBudgets is the per-class performance budget before network scaling.
var baseBudgets = map[signals.DeviceClass]signals.PerformanceBudget{
	signals.DeviceMobile:  {MaxLoadTimeMs: 3000, MaxBundleKB: 300, MaxImageKB: 200, LazyLoadThresholdPx: 200},
	signals.DeviceTablet:  {MaxLoadTimeMs: 2500, MaxBundleKB: 500, MaxImageKB: 350, LazyLoadThresholdPx: 300},
	signals.DeviceDesktop: {MaxLoadTimeMs: 2000, MaxBundleKB: 800, MaxImageKB: 500, LazyLoadThresholdPx: 400},
}

// Profiler maps device capability facts to a layout, asset and budget plan.
// It is a deterministic table lookup plus budget scaling and cannot fail;
// unrecognized device classes get desktop defaults.
type Profiler struct{}

func NewProfiler() *Profiler {
	return &Profiler{}
}

func (p *Profiler) Optimize(d signals.DeviceCapabilityProfile) signals.OptimizedLayout {
	class := d.Class
	if _, ok := baseLayouts[class]; !ok {
		class = signals.DeviceDesktop
	}

	layout := baseLayouts[class]

	return signals.OptimizedLayout{
		Layout:     layout,
		Components: componentPlan(class, layout),
		Assets:     assetPlan(class, d),
		Budget:     scaleBudget(baseBudgets[class], d.Network),
	}
}

func componentPlan(class signals.DeviceClass, layout signals.LayoutPlan) signals.ComponentPlan {
	plan := signals.ComponentPlan{NavType: layout.Navigation}
	switch class {
	case signals.DeviceMobile:
		plan.HeroSize = "compact"
		plan.StickyNav = true
		plan.BodyFontPx = 16
		plan.FooterDensity = "minimal"
	case signals.DeviceTablet:
		plan.HeroSize = "medium"
		plan.StickyNav = true
		plan.BodyFontPx = 17
		plan.FooterDensity = "condensed"
	default:
		plan.HeroSize = "full-bleed"
		plan.BodyFontPx = 18
		plan.FooterDensity = "expanded"
	}
	return plan
}

func assetPlan(class signals.DeviceClass, d signals.DeviceCapabilityProfile) signals.AssetPlan {
	plan := signals.AssetPlan{ImageFormat: "jpeg"}
	if d.ModernImages {
		plan.ImageFormat = "webp"
	}

	switch class {
	case signals.DeviceMobile:
		plan.ImageQuality = 70
	case signals.DeviceTablet:
		plan.ImageQuality = 80
	default:
		plan.ImageQuality = 85
	}
	switch d.Network {
	case signals.NetworkSlow:
		plan.ImageQuality -= 15
	case signals.NetworkFast:
		plan.ImageQuality += 10
		if plan.ImageQuality > 95 {
			plan.ImageQuality = 95
		}
	}

	plan.Autoplay = class == signals.DeviceDesktop &&
		d.Network == signals.NetworkFast && d.GPURendering
	plan.LazyLoad = class != signals.DeviceDesktop || d.Network == signals.NetworkSlow

	return plan
}

func scaleBudget(b signals.PerformanceBudget, network signals.NetworkQuality) signals.PerformanceBudget {
	switch network {
	case signals.NetworkSlow:
		b.MaxLoadTimeMs *= slowLoadScale
		b.MaxBundleKB *= slowBundleScale
		b.MaxImageKB *= slowImageScale
	case signals.NetworkFast:
		b.MaxLoadTimeMs *= fastLoadScale
		b.MaxBundleKB *= fastBundleScale
		b.MaxImageKB *= fastImageScale
	}
	return b
}
