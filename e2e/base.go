package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	grpcserver "flockr/infrastructure/grpc/server"
	httpserver "flockr/infrastructure/http/server"
	"flockr/observability"
	"flockr/services"
	"flockr/storage"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type BaseHTTPSuite struct {
	suite.Suite
	Config Config
	client *http.Client
	stop   func()
}

// SetupSuite loads the environment configuration and, without a target
// address, boots an in-process platform on loopback listeners.
func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	s.client = &http.Client{Timeout: 10 * time.Second}
	s.stop = func() {}

	if s.Config.HTTPAddr != "" {
		return
	}

	log := slog.New(slog.DiscardHandler)
	store, err := storage.Open(log)
	s.Require().NoError(err)
	platform := services.NewPlatform(store, services.PlatformConfig{
		JWTSecret:            "e2e-secret",
		ResetCodeTTL:         time.Minute,
		PromoteChannelOwners: true,
		MaxMessageLength:     1000,
		MessagesPageSize:     50,
		ArgonMemoryKB:        1024,
		ArgonIterations:      1,
	}, services.NewLogMailer(log), log)
	collector, err := observability.NewCollector(platform, log)
	s.Require().NoError(err)

	ts := httptest.NewServer(httpserver.NewServer(platform, collector, log).Handler())
	s.Config.HTTPAddr = ts.URL

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)
	s.Config.GRPCAddr = lis.Addr().String()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = grpcserver.NewHealthServer(log).Run(ctx, lis)
	}()

	s.stop = func() {
		cancel()
		<-done
		ts.Close()
		_ = store.Close()
	}
}

func (s *BaseHTTPSuite) TearDownSuite() {
	s.stop()
}

// SetupTest starts each scenario from an empty platform.
func (s *BaseHTTPSuite) SetupTest() {
	s.Call("Reset platform", http.MethodDelete, "/clear", nil, nil)
}

func (s *BaseHTTPSuite) header(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Call sends body as JSON and decodes a 200 answer into out. It returns the
// status code, and the error message of a non-200 answer.
func (s *BaseHTTPSuite) Call(name, method, path string, body, out any) (int, string) {
	s.header(name)

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		s.Require().NoError(err)
	}
	req, err := http.NewRequest(method, s.Config.HTTPAddr+path, bytes.NewReader(payload))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	s.Require().NoError(err, "Failed to reach "+s.Config.HTTPAddr)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	logBuilder := strings.Builder{}
	fmt.Fprintf(&logBuilder, "HTTP %s %s [%d] in %v", method, path, resp.StatusCode, time.Since(start))
	// Log full JSON request/response bodies if E2E_DEBUG_JSON is enabled
	if s.Config.DebugJSON {
		fmt.Fprintf(&logBuilder, "\nREQUEST:\n%s\nRESPONSE:\n%s", payload, raw)
	}
	s.T().Log(logBuilder.String())

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Message string `json:"message"`
		}
		s.Require().NoError(json.Unmarshal(raw, &failure))
		return resp.StatusCode, failure.Message
	}
	if out != nil {
		s.Require().NoError(json.Unmarshal(raw, out))
	}
	return resp.StatusCode, ""
}

// WithHealth provides a health client within a contextual test step
func (s *BaseHTTPSuite) WithHealth(name string, fn func(ctx context.Context, client healthpb.HealthClient)) {
	if s.Config.GRPCAddr == "" {
		s.T().Skip("FLOCKR_GRPC_ADDR not set")
	}
	s.header(name)

	conn, err := grpc.NewClient(s.Config.GRPCAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	s.Require().NoError(err, "Failed to connect to gRPC server at "+s.Config.GRPCAddr)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	fn(ctx, healthpb.NewHealthClient(conn))
}
