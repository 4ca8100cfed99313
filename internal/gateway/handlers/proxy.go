// Package handlers holds the gateway's HTTP handlers: reverse proxies to the
// cafe and farma services and the aggregated health endpoints.
package handlers

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"kasir-system/internal/api"
	"kasir-system/internal/middleware"
	"kasir-system/internal/pkg/logging"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

const upstreamPrefix = "/api/v1"

// ServiceProxy forwards /api/v1/<service>/* to <target>/api/v1/*.
type ServiceProxy struct {
	name  string
	proxy *httputil.ReverseProxy
}

func NewServiceProxy(name, target string) (*ServiceProxy, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}

	rp := httputil.NewSingleHostReverseProxy(u)
	direct := rp.Director
	rp.Director = func(req *http.Request) {
		direct(req)
		req.Host = u.Host
		otel.GetTextMapPropagator().Inject(req.Context(), propagation.HeaderCarrier(req.Header))
	}
	rp.ErrorHandler = func(w http.ResponseWriter, req *http.Request, err error) {
		logging.FromContext(req.Context()).Error("upstream request failed",
			zap.String("service", name),
			zap.String("path", req.URL.Path),
			zap.Error(err),
		)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"success":false,"message":"` + name + ` service unavailable"}`))
	}

	return &ServiceProxy{name: name, proxy: rp}, nil
}

// Handle expects a *path wildcard named "path".
func (p *ServiceProxy) Handle(c *gin.Context) {
	path := c.Param("path")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if path == "/" {
		api.Abort(c, http.StatusNotFound, "Route not found")
		return
	}

	req := c.Request.Clone(c.Request.Context())
	req.URL.Path = upstreamPrefix + path
	req.URL.RawPath = ""
	if rid := logging.RequestID(c.Request.Context()); rid != "" {
		req.Header.Set(middleware.RequestIDHeader, rid)
	}

	p.proxy.ServeHTTP(c.Writer, req)
}
