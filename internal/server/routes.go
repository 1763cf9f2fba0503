package server

import (
	"net/http"
	"strings"

	"github.com/jonathan/services-gateway/internal/store"
)

const rawSuffix = ".json"

// routes builds the router. Every services path is dispatched to
// handleServices, which decides the route shape with matchRoute.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET "+store.RoutePrefix, s.handleServices)
	mux.HandleFunc("GET "+store.RoutePrefix+rawSuffix, s.handleServices)
	mux.HandleFunc("GET "+store.RoutePrefix+"/{subpath...}", s.handleServices)
	return mux
}

// matchRoute maps a request path onto one of the four services route shapes,
// checked in order:
//
//	/services, /services/      root, html-page
//	/services.json             root, raw-download
//	/services/<subpath>.json   raw-download
//	/services/<subpath>        html-page
//
// The .json suffix is tested before trailing slashes are stripped, so
// /services/a.json/ names the node "a.json".
func matchRoute(urlPath string) (subpath string, mode store.Mode, ok bool) {
	switch {
	case urlPath == store.RoutePrefix || urlPath == store.RoutePrefix+"/":
		return ".", store.ModeHTMLPage, true
	case urlPath == store.RoutePrefix+rawSuffix:
		return ".", store.ModeRawDownload, true
	}

	rest, found := strings.CutPrefix(urlPath, store.RoutePrefix+"/")
	if !found {
		return "", store.ModeHTMLPage, false
	}
	if sub, isRaw := strings.CutSuffix(rest, rawSuffix); isRaw && sub != "" {
		return sub, store.ModeRawDownload, true
	}
	return rest, store.ModeHTMLPage, true
}
