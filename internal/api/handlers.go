package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"arc56/internal/arc56"
	"arc56/internal/client"
	"arc56/internal/models"
	"arc56/internal/state"
)

// handleIndex returns basic service information
// GET / - Returns service info and available endpoints
func (s *Server) handleIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":  "arc56",
		"contract": s.client.Contract().Name,
		"app_id":   s.client.AppID(),
		"endpoints": map[string]string{
			"GET /":                       "This page - Service information",
			"GET /health":                 "Health check endpoint",
			"GET /metrics":                "Prometheus metrics for monitoring",
			"GET /contract":               "Contract summary and bound application",
			"GET /methods":                "ABI methods with their allowed actions",
			"POST /methods/{name}/params": "Build call parameters without submitting",
			"POST /methods/{name}/call":   "Submit a method call and decode its return",
			"GET /state":                  "All declared keys (supports ?address=)",
			"GET /state/keys/{name}":      "Read a storage key (supports ?address=)",
			"GET /state/maps/{name}":      "Read a map entry (?key=<json>, ?address=)",
			"GET /deployments":            "Recorded deployments (supports ?limit=, ?offset=)",
			"GET /deployments/{app_id}":   "One recorded deployment",
			"GET /activities":             "Recorded calls (supports ?app_id=, ?method=, ?sender=, ?success_only=)",
		},
	})
}

// handleHealth returns health status
// GET /health - Health check for monitoring systems
func (s *Server) handleHealth(c *gin.Context) {
	if err := s.repository.Ping(c.Request.Context()); err != nil {
		s.log.Errorw("Health check failed", "error", err)
		sendError(c, http.StatusServiceUnavailable, errors.Wrap(err, "database unhealthy"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "arc56",
	})
}

// =============================================================================
// CONTRACT ENDPOINTS
// =============================================================================

// handleContract describes the loaded contract
// GET /contract
func (s *Server) handleContract(c *gin.Context) {
	c.JSON(http.StatusOK, BuildContractResponse(s.client))
}

// handleListMethods lists the ABI methods
// GET /methods
func (s *Server) handleListMethods(c *gin.Context) {
	contract := s.client.Contract()
	methods := make([]models.MethodResponse, len(contract.Methods))
	for i := range contract.Methods {
		methods[i] = BuildMethodResponse(&contract.Methods[i])
	}
	c.JSON(http.StatusOK, gin.H{
		"methods": methods,
		"total":   len(methods),
	})
}

// handleParams builds the parameters of a call without sending it
// POST /methods/{name}/params
func (s *Server) handleParams(c *gin.Context) {
	method, _, opts, ok := s.bindCall(c)
	if !ok {
		return
	}

	call, err := s.client.Params(method.Name, opts)
	if err != nil {
		sendError(c, errorStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, BuildParamsResponse(method, call))
}

// handleCall submits a call with the requested action ( NoOp by default )
// POST /methods/{name}/call
func (s *Server) handleCall(c *gin.Context) {
	method, req, opts, ok := s.bindCall(c)
	if !ok {
		return
	}

	action := arc56.NoOp
	if req.Action != "" {
		parsed, err := arc56.ParseOnComplete(req.Action)
		if err != nil {
			sendError(c, http.StatusBadRequest, err)
			return
		}
		action = parsed
	}

	result, err := s.client.CallWithAction(c.Request.Context(), method.Name, action, opts)
	if err != nil {
		s.log.Errorw("Call failed", "method", method.Name, "action", action, "error", err)
		sendError(c, errorStatus(err), err)
		return
	}

	c.JSON(http.StatusOK, models.CallResponse{
		TxIDs:       result.TxIDs,
		Round:       result.Round,
		ReturnValue: result.ReturnValue,
	})
}

// bindCall resolves the method and decodes the request body into call options
func (s *Server) bindCall(c *gin.Context) (*arc56.Method, callRequest, client.CallOptions, bool) {
	var req callRequest
	method, ok := s.client.Contract().Method(c.Param("name"))
	if !ok {
		sendError(c, http.StatusNotFound, errors.Wrapf(client.ErrMethodNotFound, "%q", c.Param("name")))
		return nil, req, client.CallOptions{}, false
	}

	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			sendError(c, http.StatusBadRequest, errors.Wrap(err, "invalid request body"))
			return nil, req, client.CallOptions{}, false
		}
	}

	opts, err := decodeCallOptions(s.client, method, req)
	if err != nil {
		sendError(c, http.StatusBadRequest, err)
		return nil, req, client.CallOptions{}, false
	}
	return method, req, opts, true
}

// =============================================================================
// STORAGE ENDPOINTS
// =============================================================================

// handleStateKey reads a single declared key
// GET /state/keys/{name}?address=ADDR
func (s *Server) handleStateKey(c *gin.Context) {
	name := c.Param("name")
	ns, _, ok := s.client.Contract().State.Key(name)
	if !ok {
		sendError(c, http.StatusNotFound, errors.Wrapf(state.ErrUnknownStorageName, "%q", name))
		return
	}

	value, err := s.client.State().Key(c.Request.Context(), name, c.Query("address"))
	if err != nil {
		sendError(c, errorStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, models.StateValueResponse{Name: name, Namespace: string(ns), Value: value})
}

// handleStateMap reads one entry of a declared map
// GET /state/maps/{name}?key=<json>&address=ADDR
func (s *Server) handleStateMap(c *gin.Context) {
	name := c.Param("name")
	ns, m, ok := s.client.Contract().State.Map(name)
	if !ok {
		sendError(c, http.StatusNotFound, errors.Wrapf(state.ErrUnknownStorageName, "%q", name))
		return
	}

	rawKey := c.Query("key")
	if rawKey == "" {
		sendError(c, http.StatusBadRequest, errors.New("key query parameter is required"))
		return
	}
	mapKey, err := s.client.Codec().FromJSON(m.KeyType, []byte(rawKey))
	if err != nil {
		sendError(c, http.StatusBadRequest, err)
		return
	}

	value, err := s.client.State().Map(c.Request.Context(), name, mapKey, c.Query("address"))
	if err != nil {
		sendError(c, errorStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, models.StateValueResponse{Name: name, Namespace: string(ns), Value: value})
}

// handleDumpState reads every declared key
// GET /state?address=ADDR
func (s *Server) handleDumpState(c *gin.Context) {
	values, err := s.client.State().Dump(c.Request.Context(), c.Query("address"))
	if err != nil {
		sendError(c, errorStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, values)
}

// =============================================================================
// HISTORY ENDPOINTS
// =============================================================================

// handleListDeployments lists recorded deployments
// GET /deployments?limit=50&offset=0
func (s *Server) handleListDeployments(c *gin.Context) {
	limit, offset := parsePagination(c)

	deployments, err := s.repository.ListDeployments(c.Request.Context(), limit, offset)
	if err != nil {
		s.log.Errorw("Failed to list deployments", "error", err)
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deployments": deployments,
		"pagination":  models.PaginationMeta{Limit: limit, Offset: offset, Count: len(deployments)},
	})
}

// handleGetDeployment returns one recorded deployment
// GET /deployments/{app_id}
func (s *Server) handleGetDeployment(c *gin.Context) {
	appID, err := strconv.ParseUint(c.Param("app_id"), 10, 64)
	if err != nil {
		sendError(c, http.StatusBadRequest, errors.Wrap(err, "invalid app id"))
		return
	}

	deployment, err := s.repository.GetDeployment(c.Request.Context(), appID)
	if err != nil {
		sendError(c, errorStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, deployment)
}

// handleListActivities lists recorded calls
// GET /activities?app_id=1&method=foo&sender=ADDR&success_only=true&limit=50&offset=0
func (s *Server) handleListActivities(c *gin.Context) {
	limit, offset := parsePagination(c)
	filter := models.ActivityFilter{
		Method: c.Query("method"),
		Sender: c.Query("sender"),
		Limit:  limit,
		Offset: offset,
	}
	if raw := c.Query("app_id"); raw != "" {
		appID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			sendError(c, http.StatusBadRequest, errors.Wrap(err, "invalid app id"))
			return
		}
		filter.AppID = appID
	}
	if raw := c.Query("success_only"); raw != "" {
		successOnly, err := strconv.ParseBool(raw)
		if err != nil {
			sendError(c, http.StatusBadRequest, errors.Wrap(err, "invalid success_only"))
			return
		}
		filter.SuccessOnly = successOnly
	}

	activities, err := s.repository.ListActivities(c.Request.Context(), filter)
	if err != nil {
		s.log.Errorw("Failed to list activities", "error", err)
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activities": activities,
		"pagination": models.PaginationMeta{Limit: limit, Offset: offset, Count: len(activities)},
	})
}
