// Package server exposes the platform as JSON over HTTP.
package server

import (
	"context"
	"encoding/json"
	"flockr/errors"
	"flockr/observability"
	"flockr/services"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// StatsCollector is implemented by observability.Collector.
type StatsCollector interface {
	Collect() (observability.Stats, error)
}

type Server struct {
	platform *services.Platform
	stats    StatsCollector
	log      *slog.Logger
	mux      *http.ServeMux
}

func NewServer(platform *services.Platform, stats StatsCollector, log *slog.Logger) *Server {
	s := &Server{platform: platform, stats: stats, log: log, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /echo", s.echo)

	s.mux.HandleFunc("POST /auth/register", s.register)
	s.mux.HandleFunc("POST /auth/login", s.login)
	s.mux.HandleFunc("POST /auth/logout", s.logout)
	s.mux.HandleFunc("POST /auth/passwordreset/request", s.passwordResetRequest)
	s.mux.HandleFunc("POST /auth/passwordreset/reset", s.passwordReset)

	s.mux.HandleFunc("POST /channel/invite", s.channelInvite)
	s.mux.HandleFunc("GET /channel/details", s.channelDetails)
	s.mux.HandleFunc("GET /channel/messages", s.channelMessages)
	s.mux.HandleFunc("POST /channel/leave", s.channelLeave)
	s.mux.HandleFunc("POST /channel/join", s.channelJoin)
	s.mux.HandleFunc("POST /channel/addowner", s.channelAddOwner)
	s.mux.HandleFunc("POST /channel/removeowner", s.channelRemoveOwner)

	s.mux.HandleFunc("GET /channels/list", s.channelsList)
	s.mux.HandleFunc("GET /channels/listall", s.channelsListAll)
	s.mux.HandleFunc("POST /channels/create", s.channelsCreate)

	s.mux.HandleFunc("POST /message/send", s.messageSend)
	s.mux.HandleFunc("POST /message/sendlater", s.messageSendLater)
	s.mux.HandleFunc("PUT /message/edit", s.messageEdit)
	s.mux.HandleFunc("DELETE /message/remove", s.messageRemove)
	s.mux.HandleFunc("POST /message/react", s.messageReact)
	s.mux.HandleFunc("POST /message/unreact", s.messageUnreact)
	s.mux.HandleFunc("POST /message/pin", s.messagePin)
	s.mux.HandleFunc("POST /message/unpin", s.messageUnpin)

	s.mux.HandleFunc("GET /user/profile", s.userProfile)
	s.mux.HandleFunc("PUT /user/profile/setname", s.userSetName)
	s.mux.HandleFunc("PUT /user/profile/setemail", s.userSetEmail)
	s.mux.HandleFunc("PUT /user/profile/sethandle", s.userSetHandle)
	s.mux.HandleFunc("GET /users/all", s.usersAll)

	s.mux.HandleFunc("POST /admin/userpermission/change", s.adminPermissionChange)
	s.mux.HandleFunc("GET /search", s.search)
	s.mux.HandleFunc("DELETE /clear", s.clear)

	s.mux.HandleFunc("GET /debug/stats", s.debugStats)
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves on lis until ctx is cancelled, then drains in-flight requests
// for at most shutdownTimeout.
func (s *Server) Run(ctx context.Context, lis net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", lis.Addr().String())
		errCh <- srv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		s.log.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown failed: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("Unable to encode response", "err", err)
	}
}

// writeResult answers 200 with body, or the error payload when err is set.
func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, body any, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, body)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		message = http.StatusText(status)
	} else {
		s.log.Debug("Request rejected", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, status, errorResponse{Code: status, Name: "System Error", Message: message})
}

// decode reads a JSON body into v. A malformed body is an input error.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Input("malformed request body: %v", err)
	}
	return nil
}
