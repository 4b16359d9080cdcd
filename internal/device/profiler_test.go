package device

import (
	"testing"

	"github.com/adaptix/adaptix/internal/signals"
)

func TestMobileLayout(t *testing.T) {
	p := NewProfiler()

	layout := p.Optimize(signals.DeviceCapabilityProfile{
		Class:        signals.DeviceMobile,
		ScreenWidth:  375,
		ScreenHeight: 667,
	})

	if layout.Layout.Columns != 1 {
		t.Errorf("columns = %d, want 1", layout.Layout.Columns)
	}
	if layout.Layout.Navigation != "hamburger" {
		t.Errorf("navigation = %q, want hamburger", layout.Layout.Navigation)
	}
	if layout.Layout.CTAPlacement != "sticky-bottom" {
		t.Errorf("cta placement = %q, want sticky-bottom", layout.Layout.CTAPlacement)
	}
	if !layout.Components.StickyNav {
		t.Error("mobile nav should be sticky")
	}
	if !layout.Assets.LazyLoad {
		t.Error("mobile assets should lazy load")
	}
}

func TestDesktopLayout(t *testing.T) {
	p := NewProfiler()

	layout := p.Optimize(signals.DeviceCapabilityProfile{
		Class:        signals.DeviceDesktop,
		Network:      signals.NetworkFast,
		GPURendering: true,
		ModernImages: true,
	})

	if layout.Layout.Columns != 3 {
		t.Errorf("columns = %d, want 3", layout.Layout.Columns)
	}
	if !layout.Assets.Autoplay {
		t.Error("fast desktop with GPU should autoplay")
	}
	if layout.Assets.ImageFormat != "webp" {
		t.Errorf("image format = %q, want webp", layout.Assets.ImageFormat)
	}
	if layout.Assets.LazyLoad {
		t.Error("fast desktop should not lazy load")
	}
}

func TestUnknownClassDefaultsToDesktop(t *testing.T) {
	p := NewProfiler()

	layout := p.Optimize(signals.DeviceCapabilityProfile{Class: "smartwatch"})
	if layout.Layout.Columns != 3 || layout.Layout.Navigation != "full" {
		t.Errorf("unknown class got %+v, want desktop layout", layout.Layout)
	}
}

func TestBudgetNetworkScaling(t *testing.T) {
	p := NewProfiler()
	base := p.Optimize(signals.DeviceCapabilityProfile{Class: signals.DeviceMobile}).Budget

	t.Run("slow network", func(t *testing.T) {
		b := p.Optimize(signals.DeviceCapabilityProfile{
			Class:   signals.DeviceMobile,
			Network: signals.NetworkSlow,
		}).Budget

		if b.MaxLoadTimeMs != base.MaxLoadTimeMs*1.5 {
			t.Errorf("load budget = %.0f, want %.0f", b.MaxLoadTimeMs, base.MaxLoadTimeMs*1.5)
		}
		if b.MaxBundleKB != base.MaxBundleKB*0.7 {
			t.Errorf("bundle budget = %.0f, want %.0f", b.MaxBundleKB, base.MaxBundleKB*0.7)
		}
		if b.MaxImageKB != base.MaxImageKB*0.6 {
			t.Errorf("image budget = %.0f, want %.0f", b.MaxImageKB, base.MaxImageKB*0.6)
		}
	})

	t.Run("fast network", func(t *testing.T) {
		b := p.Optimize(signals.DeviceCapabilityProfile{
			Class:   signals.DeviceMobile,
			Network: signals.NetworkFast,
		}).Budget

		if b.MaxLoadTimeMs != base.MaxLoadTimeMs*0.8 {
			t.Errorf("load budget = %.0f, want %.0f", b.MaxLoadTimeMs, base.MaxLoadTimeMs*0.8)
		}
		if b.MaxBundleKB != base.MaxBundleKB*1.3 {
			t.Errorf("bundle budget = %.0f, want %.0f", b.MaxBundleKB, base.MaxBundleKB*1.3)
		}
		if b.MaxImageKB != base.MaxImageKB*1.5 {
			t.Errorf("image budget = %.0f, want %.0f", b.MaxImageKB, base.MaxImageKB*1.5)
		}
	})
}

func TestImageQualityBounds(t *testing.T) {
	p := NewProfiler()

	slow := p.Optimize(signals.DeviceCapabilityProfile{
		Class:   signals.DeviceMobile,
		Network: signals.NetworkSlow,
	})
	if slow.Assets.ImageQuality != 55 {
		t.Errorf("slow mobile quality = %d, want 55", slow.Assets.ImageQuality)
	}

	fast := p.Optimize(signals.DeviceCapabilityProfile{
		Class:   signals.DeviceDesktop,
		Network: signals.NetworkFast,
	})
	if fast.Assets.ImageQuality != 95 {
		t.Errorf("fast desktop quality = %d, want 95", fast.Assets.ImageQuality)
	}
}
