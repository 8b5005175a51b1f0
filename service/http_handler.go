package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ludo-technologies/treedit/domain"
	"github.com/ludo-technologies/treedit/internal/logging"
	"github.com/ludo-technologies/treedit/internal/ted"
	"github.com/ludo-technologies/treedit/internal/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const requestIDHeader = "X-Request-ID"

// MaxRequestBytes bounds the size of an API request body
const MaxRequestBytes = 4 << 20

var apiValidate = validator.New()

// DistanceAPIRequest is the body of POST /v1/distance and /v1/mappings.
// A tree is either a bracket notation string such as "A(B,C)" or a tree
// document object.
type DistanceAPIRequest struct {
	Tree1        json.RawMessage     `json:"tree1" validate:"required"`
	Tree2        json.RawMessage     `json:"tree2" validate:"required"`
	Algorithm    string              `json:"algorithm" validate:"omitempty,max=32"`
	Workers      int                 `json:"workers" validate:"gte=0,lte=256"`
	MaxSteps     int64               `json:"max_steps" validate:"gte=0"`
	MaxSolutions int                 `json:"max_solutions" validate:"gte=0"`
	TimeoutMs    int64               `json:"timeout_ms" validate:"gte=0"`
	Costs        *domain.CostWeights `json:"costs,omitempty"`
}

// Validate checks field bounds
func (r *DistanceAPIRequest) Validate() error {
	return apiValidate.Struct(r)
}

// ErrorBody is the JSON error envelope
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// HTTPHandler serves the tree distance API
type HTTPHandler struct {
	distance *DistanceServiceImpl
	defaults domain.DistanceRequest
	logger   *log.Logger
}

// NewHTTPHandler creates an API handler. defaults supplies the solver
// settings a request leaves unset.
func NewHTTPHandler(distance *DistanceServiceImpl, defaults domain.DistanceRequest, logger *log.Logger) *HTTPHandler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &HTTPHandler{distance: distance, defaults: defaults, logger: logger}
}

// NewRouter builds the gin engine with every API route registered
func NewRouter(h *HTTPHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestContext())
	h.Register(router)
	return router
}

// Register adds the API routes to router
func (h *HTTPHandler) Register(router *gin.Engine) {
	v1 := router.Group("/v1")
	{
		v1.GET("/health", h.HandleHealth)
		v1.GET("/algorithms", h.HandleAlgorithms)
		v1.POST("/distance", h.HandleDistance)
		v1.POST("/mappings", h.HandleMappings)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// requestContext assigns a request ID and stores a request-scoped logger in
// the request context
func (h *HTTPHandler) requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)
		c.Set(requestIDHeader, requestID)

		logger := h.logger.With("request_id", requestID)
		c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), logger))

		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start).Round(time.Microsecond))
	}
}

// HandleHealth handles GET /v1/health
func (h *HTTPHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": version.Version,
	})
}

// HandleAlgorithms handles GET /v1/algorithms
func (h *HTTPHandler) HandleAlgorithms(c *gin.Context) {
	names := make([]string, 0, len(ted.Algorithms()))
	for _, a := range ted.Algorithms() {
		names = append(names, string(a))
	}
	c.JSON(http.StatusOK, gin.H{
		"algorithms": names,
		"default":    h.defaults.Algorithm,
	})
}

// HandleDistance handles POST /v1/distance
func (h *HTTPHandler) HandleDistance(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	resp, err := h.distance.Distance(c.Request.Context(), *req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleMappings handles POST /v1/mappings
func (h *HTTPHandler) HandleMappings(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	resp, err := h.distance.Mappings(c.Request.Context(), *req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// bind decodes and validates the body and converts it into a domain request.
// It writes the error response itself and reports false on failure.
func (h *HTTPHandler) bind(c *gin.Context) (*domain.DistanceRequest, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxRequestBytes)

	var body DistanceAPIRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, domain.NewInvalidInputError("invalid JSON body", err))
		return nil, false
	}
	if err := body.Validate(); err != nil {
		h.fail(c, domain.NewInvalidInputError(validationMessage(err), err))
		return nil, false
	}

	src1, err := treeSource(body.Tree1)
	if err != nil {
		h.fail(c, domain.NewInvalidInputError("tree1 must be a notation string or a tree object", err))
		return nil, false
	}
	src2, err := treeSource(body.Tree2)
	if err != nil {
		h.fail(c, domain.NewInvalidInputError("tree2 must be a notation string or a tree object", err))
		return nil, false
	}

	req := h.defaults
	req.Source1 = src1
	req.Source2 = src2
	req.OutputFormat = domain.OutputFormatJSON
	req.OutputWriter = nil
	req.OutputPath = ""
	if body.Algorithm != "" {
		req.Algorithm = body.Algorithm
	}
	if body.Workers > 0 {
		req.Workers = body.Workers
	}
	if body.MaxSteps > 0 {
		req.MaxSteps = body.MaxSteps
	}
	if body.MaxSolutions > 0 {
		req.MaxSolutions = body.MaxSolutions
	}
	if body.TimeoutMs > 0 {
		timeout := time.Duration(body.TimeoutMs) * time.Millisecond
		if req.Timeout == 0 || timeout < req.Timeout {
			req.Timeout = timeout
		}
	}
	if body.Costs != nil {
		req.Costs = *body.Costs
	}
	return &req, true
}

// treeSource turns a JSON string into notation input and an object into
// inline JSON
func treeSource(raw json.RawMessage) (domain.TreeSource, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return domain.TreeSource{}, errors.New("empty tree")
	}

	switch trimmed[0] {
	case '"':
		var notation string
		if err := json.Unmarshal(trimmed, &notation); err != nil {
			return domain.TreeSource{}, err
		}
		return domain.TreeSource{Inline: notation}, nil
	case '{':
		return domain.TreeSource{Inline: string(trimmed)}, nil
	default:
		return domain.TreeSource{}, errors.New("unexpected JSON value")
	}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return "invalid field " + verrs[0].Field() + ": failed " + verrs[0].Tag()
	}
	return "invalid request"
}

// fail writes the error envelope with the status for the error's code
func (h *HTTPHandler) fail(c *gin.Context, err error) {
	code := domain.ErrorCode(err)
	if code == "" {
		code = domain.ErrCodeAnalysisError
	}
	status := StatusForCode(code)
	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("request failed", "code", code, "err", err)
	}

	requestID, _ := c.Get(requestIDHeader)
	id, _ := requestID.(string)
	c.AbortWithStatusJSON(status, gin.H{
		"error": ErrorBody{Code: code, Message: err.Error(), RequestID: id},
	})
}

// StatusForCode maps a domain error code to an HTTP status
func StatusForCode(code string) int {
	switch code {
	case domain.ErrCodeInvalidInput, domain.ErrCodeUnsupportedFormat, domain.ErrCodeParseError:
		return http.StatusBadRequest
	case domain.ErrCodeFileNotFound:
		return http.StatusNotFound
	case domain.ErrCodeStructure:
		return http.StatusUnprocessableEntity
	case domain.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Serve runs the API on addr until ctx is cancelled, then shuts down
// gracefully
func Serve(ctx context.Context, addr string, handler http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
