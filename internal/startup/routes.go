package startup

import (
	"slices"
	"strings"

	"photo-library/internal/logging"

	"github.com/gorilla/mux"
)

// RouteInfo is one method and path pair registered on the router.
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// GetRoutes lists the router's routes. Routes without a method matcher are
// reported with method "*"; subrouter roots are skipped.
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo
	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}
		for _, m := range methods {
			routes = append(routes, RouteInfo{Method: m, Path: path, Name: route.GetName()})
		}
		return nil
	})
	return routes, err
}

// LogHTTPRoutes reports the request logging switches and, at debug level,
// every route grouped by its leading path segment.
func LogHTTPRoutes(router *mux.Router, logStaticFiles, logHealthChecks bool) {
	section("HTTP SERVER SETUP")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("  Failed to enumerate routes: %v", err)
		}
		groups := make(map[string][]RouteInfo)
		for _, r := range routes {
			g := routeGroup(r.Path)
			groups[g] = append(groups[g], r)
		}
		names := make([]string, 0, len(groups))
		for g := range groups {
			names = append(names, g)
		}
		slices.Sort(names)
		for _, g := range names {
			label := g
			if label == "" {
				label = "root"
			}
			logging.Debug("  [%s]", label)
			for _, r := range groups[g] {
				logging.Debug("    %-6s %s", r.Method, r.Path)
			}
		}
	}

	logging.Info("  Cache file logging:   %s", onOff(logStaticFiles, "LOG_STATIC_FILES"))
	logging.Info("  Health check logging: %s", onOff(logHealthChecks, "LOG_HEALTH_CHECKS"))
}

func onOff(on bool, key string) string {
	if on {
		return "ON"
	}
	return "OFF (set " + key + "=true to enable)"
}

// routeGroup returns the first path segment, or "api/<resource>" for API
// routes.
func routeGroup(path string) string {
	first, rest, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if first == "api" && rest != "" {
		resource, _, _ := strings.Cut(rest, "/")
		return "api/" + resource
	}
	return first
}
