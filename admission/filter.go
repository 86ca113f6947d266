// Package admission implements the connection admission policy.
// The server core only depends on the allow/deny contract; everything
// here can be swapped without touching session handling.
package admission

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/samber/lo"
)

// AllowAll accepts every connection. Used when admission is disabled.
type AllowAll struct{}

func (AllowAll) Allow(context.Context, string) bool { return true }

// LanFilter accepts loopback and private-range addresses only.
type LanFilter struct {
	Log *slog.Logger
}

func (f LanFilter) Allow(_ context.Context, remoteHost string) bool {
	ip := net.ParseIP(remoteHost)
	if ip == nil {
		f.Log.Warn("Unparseable remote address, denying", "host", remoteHost)
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate()
}

const lookupURL = "https://ipapi.co/%s/json/"

// GeoFilter accepts LAN addresses outright and resolves the country of
// every other address through ipapi.co. Lookup failures deny the
// connection: admission fails closed.
type GeoFilter struct {
	log       *slog.Logger
	lan       LanFilter
	client    *http.Client
	countries []string
}

func NewGeoFilter(log *slog.Logger, countries []string, timeout time.Duration) *GeoFilter {
	return &GeoFilter{
		log:       log,
		lan:       LanFilter{Log: log},
		client:    &http.Client{Timeout: timeout},
		countries: countries,
	}
}

func (f *GeoFilter) Allow(ctx context.Context, remoteHost string) bool {
	if f.lan.Allow(ctx, remoteHost) {
		return true
	}

	country, err := f.lookupCountry(ctx, remoteHost)
	if err != nil {
		f.log.Warn("GeoIP lookup failed, denying", "host", remoteHost, "error", err)
		return false
	}
	if !lo.Contains(f.countries, country) {
		f.log.Info("Blocked foreign address", "host", remoteHost, "country", country)
		return false
	}
	return true
}

func (f *GeoFilter) lookupCountry(ctx context.Context, remoteHost string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(lookupURL, remoteHost), nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lookup status %d", resp.StatusCode)
	}

	var payload struct {
		Country string `json:"country"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	return payload.Country, nil
}
