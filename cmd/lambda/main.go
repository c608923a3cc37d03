// QuantumX - AWS Lambda handler
// Serves the web chat behind API Gateway. Each request is replayed through
// the same http.Handler the standalone server uses.
//
// Environment variables:
//   QUANTUMX_CONFIG_JSON  - Full config JSON (alternative to config file)
//   QUANTUMX_CONFIG_PATH  - Config file path (default: config.json)
//   OPENAI_API_KEY        - Enables OpenAI text and images
//
// Sessions live in the warm container's memory, so a cold start begins a
// new conversation.

package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/quantumx/quantumx/pkg/app"
	"github.com/quantumx/quantumx/pkg/config"
	"github.com/quantumx/quantumx/pkg/logger"
	"github.com/quantumx/quantumx/pkg/session"
)

// evictInterval spaces idle-session sweeps; there is no background
// janitor between invocations.
var evictInterval = time.Minute

type server struct {
	handler  http.Handler
	sessions *session.Store
}

var (
	srv      *server
	initOnce sync.Once
	initErr  error
)

func initialize() error {
	initOnce.Do(func() {
		initErr = doInit()
	})
	return initErr
}

func doInit() error {
	configPath := os.Getenv("QUANTUMX_CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	// CloudWatch ingests JSON lines.
	logger.Configure(os.Stdout, "json", cfg.Log.Level)

	ch, store, err := app.NewWebChat(cfg)
	if err != nil {
		return err
	}
	srv = &server{handler: ch.Handler(), sessions: store}

	logger.InfoCF("lambda", "Lambda initialized", map[string]interface{}{
		"providers": cfg.TextProviders(),
	})
	return nil
}

// toHTTPRequest rebuilds the original HTTP request from an API Gateway event.
func toHTTPRequest(ctx context.Context, request events.APIGatewayProxyRequest) (*http.Request, error) {
	body := request.Body
	if request.IsBase64Encoded {
		raw, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return nil, fmt.Errorf("decoding body: %w", err)
		}
		body = string(raw)
	}

	query := url.Values{}
	for k, vs := range request.MultiValueQueryStringParameters {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	for k, v := range request.QueryStringParameters {
		if _, ok := query[k]; !ok {
			query.Set(k, v)
		}
	}

	target := request.Path
	if target == "" {
		target = "/"
	}
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}

	method := request.HTTPMethod
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, "https://lambda.local"+target, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, vs := range request.MultiValueHeaders {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for k, v := range request.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	if host := req.Header.Get("Host"); host != "" {
		req.Host = host
	}
	if ip := request.RequestContext.Identity.SourceIP; ip != "" {
		req.RemoteAddr = ip + ":0"
	}
	return req, nil
}

// toProxyResponse converts a recorded response. Headers go out as
// multi-value so every Set-Cookie survives.
func toProxyResponse(rec *httptest.ResponseRecorder) events.APIGatewayProxyResponse {
	res := rec.Result()
	headers := make(map[string][]string, len(res.Header))
	for k, vs := range res.Header {
		headers[k] = vs
	}
	return events.APIGatewayProxyResponse{
		StatusCode:        res.StatusCode,
		MultiValueHeaders: headers,
		Body:              rec.Body.String(),
	}
}

func handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if err := initialize(); err != nil {
		logger.ErrorCF("lambda", "Init error", map[string]interface{}{"error": err.Error()})
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, nil
	}

	return srv.serve(ctx, request), nil
}

func (s *server) serve(ctx context.Context, request events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if n := s.sessions.EvictIfDue(evictInterval); n > 0 {
		logger.InfoCF("lambda", "Evicted idle sessions", map[string]interface{}{
			"evicted": n,
			"active":  s.sessions.Count(),
		})
	}

	req, err := toHTTPRequest(ctx, request)
	if err != nil {
		logger.WarnCF("lambda", "Bad request", map[string]interface{}{"error": err.Error()})
		return events.APIGatewayProxyResponse{StatusCode: http.StatusBadRequest}
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	logger.DebugCF("lambda", "Handled request", map[string]interface{}{
		"method": request.HTTPMethod,
		"path":   request.Path,
		"status": rec.Code,
	})
	return toProxyResponse(rec)
}

func main() {
	lambda.Start(handler)
}
