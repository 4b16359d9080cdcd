package enricher

import (
	"net"

	"github.com/mssola/useragent"
	"github.com/oschwald/geoip2-golang"

	"github.com/adaptix/adaptix/internal/signals"
)

// RequestContext is what the enricher can tell about an incoming request
// without any behavioral data: parsed agent facts plus optional geo.
type RequestContext struct {
	Browser        string              `json:"browser"`
	BrowserVersion string              `json:"browser_version"`
	OS             string              `json:"os"`
	DeviceClass    signals.DeviceClass `json:"device_class"`
	Country        string              `json:"country"`
	City           string              `json:"city"`
	ClientIP       string              `json:"client_ip,omitempty"`
}

// Enricher derives request context from user agent and client IP. The GeoIP
// database is optional; when absent, geo fields stay empty.
type Enricher struct {
	geoIP *geoip2.Reader
}

func NewEnricher(geoIPPath string) *Enricher {
	var geoIP *geoip2.Reader
	if geoIPPath != "" {
		geoIP, _ = geoip2.Open(geoIPPath)
	}
	return &Enricher{geoIP: geoIP}
}

func (e *Enricher) Enrich(userAgentString, clientIP string) RequestContext {
	ctx := RequestContext{
		DeviceClass: signals.DeviceDesktop,
		ClientIP:    clientIP,
	}

	if userAgentString != "" {
		ua := useragent.New(userAgentString)
		ctx.Browser, ctx.BrowserVersion = ua.Browser()
		ctx.OS = ua.OS()
		if ua.Mobile() {
			ctx.DeviceClass = signals.DeviceMobile
		}
	}

	if e.geoIP != nil && clientIP != "" {
		ip := net.ParseIP(clientIP)
		if ip != nil {
			record, err := e.geoIP.City(ip)
			if err == nil {
				ctx.Country = record.Country.IsoCode
				if name, ok := record.City.Names["en"]; ok {
					ctx.City = name
				}
			}
		}
	}

	return ctx
}

func (e *Enricher) Close() {
	if e.geoIP != nil {
		e.geoIP.Close()
	}
}
