// Package router wires the HTTP surface of the book catalog: the GraphQL
// endpoint, the liveness probes and the internal statistics endpoint,
// together with the logging, CORS, gzip and authentication middlewares.
package router

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/bookcatalog/internal/authenticator"
	"github.com/patric-chuzhbe/bookcatalog/internal/gzippedhttp"
	"github.com/patric-chuzhbe/bookcatalog/internal/logger"
	"github.com/patric-chuzhbe/bookcatalog/internal/models"
)

type statusService interface {
	Ping(ctx context.Context) error

	GetInternalStats(ctx context.Context) (models.InternalStatsResponse, error)
}

type executor interface {
	Execute(ctx context.Context, request models.GraphQLRequest) *graphql.Result
}

type trustedSubnetGuard interface {
	TrustedOnly(h http.Handler) http.Handler
}

// Router holds the dependencies of the HTTP handlers.
type Router struct {
	service statusService
	gateway executor
}

// New builds the chi router. allowedOrigins feeds the CORS middleware.
func New(
	svc statusService,
	gateway executor,
	authMiddleware authenticator.Authenticator,
	ipChecker trustedSubnetGuard,
	allowedOrigins []string,
) *chi.Mux {
	theRouter := &Router{
		service: svc,
		gateway: gateway,
	}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Encoding"},
			ExposedHeaders:   []string{logger.RequestIDHeader},
			AllowCredentials: false,
			MaxAge:           300,
		}),
		gzippedhttp.DecompressRequest,
	)

	router.Get(`/health`, theRouter.GetHealth)
	router.Get(`/ping`, theRouter.GetPing)
	router.With(
		gzippedhttp.CompressJSONResponse,
		authMiddleware.AuthenticateUser,
	).Post(`/graphql`, theRouter.PostGraphql)
	router.With(
		ipChecker.TrustedOnly,
	).Get(`/api/internal/stats`, theRouter.GetApiinternalstats)

	return router
}

// PostGraphql decodes a {query, variables, operationName} body and runs it.
// Resolver failures are reported inside the 200 response envelope; only
// an undecodable body is answered with 400.
func (router *Router) PostGraphql(response http.ResponseWriter, request *http.Request) {
	var graphqlRequest models.GraphQLRequest
	if err := json.NewDecoder(request.Body).Decode(&graphqlRequest); err != nil {
		logger.Log.Debugln("Error decoding the graphql request: ", zap.Error(err))
		http.Error(response, "invalid request body", http.StatusBadRequest)
		return
	}
	if graphqlRequest.Query == "" {
		http.Error(response, "query is required", http.StatusBadRequest)
		return
	}

	result := router.gateway.Execute(request.Context(), graphqlRequest)

	writeJSON(response, http.StatusOK, result)
}

// GetHealth is the static liveness probe.
func (router *Router) GetHealth(response http.ResponseWriter, request *http.Request) {
	writeJSON(response, http.StatusOK, models.HealthResponse{Status: "ok"})
}

// GetPing answers 200 when the storage responds.
func (router *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	if err := router.service.Ping(request.Context()); err != nil {
		logger.Log.Debugln("Error calling the `router.service.Ping()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.WriteHeader(http.StatusOK)
}

// GetApiinternalstats returns the number of stored books and users.
func (router *Router) GetApiinternalstats(response http.ResponseWriter, request *http.Request) {
	stats, err := router.service.GetInternalStats(request.Context())
	if err != nil {
		logger.Log.Debugln("Error calling the `router.service.GetInternalStats()`: ", zap.Error(err))
		http.Error(response, "failed to retrieve internal stats", http.StatusInternalServerError)
		return
	}

	writeJSON(response, http.StatusOK, stats)
}

func writeJSON(response http.ResponseWriter, statusCode int, payload interface{}) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(statusCode)

	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Debugln("Error encoding the response: ", zap.Error(err))
	}
}
