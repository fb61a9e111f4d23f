package handlers

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"oracle/internal/infra/geoip"
	"oracle/internal/oracle"
)

// App bundles the dependencies the HTTP surface needs. The HTTP layer is a
// thin transport adapter over the dispatcher; no decision logic lives here.
type App struct {
	Dispatcher *oracle.Dispatcher
	Geo        geoip.CountryResolver // nil when unconfigured
	Logger     zerolog.Logger
}

// NewApp creates the handler container.
func NewApp(dispatcher *oracle.Dispatcher, geo geoip.CountryResolver, logger zerolog.Logger) *App {
	return &App{Dispatcher: dispatcher, Geo: geo, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}

// country resolves the requester's country code for audit logging. Best
// effort: any failure yields an empty code.
func (a *App) country(r *http.Request) string {
	if a.Geo == nil {
		return ""
	}
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		host = h
	}
	code, err := a.Geo.CountryCode(host)
	if err != nil {
		return ""
	}
	return code
}
