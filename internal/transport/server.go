package transport

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/handlers"

	"spacecore/internal/dispatch"
	"spacecore/pkg/dispatcher"
	"spacecore/pkg/logger"
)

// Server :
// Wraps the command dispatcher with an HTTP surface: a single POST
// `/rpc` endpoint for request/response commands, a `/ws` upgrade
// endpoint for the combined command/event stream (§4.3/§4.4), and a
// `/healthz` probe. Route registration and panic recovery reuse the
// teacher's `pkg/dispatcher.Router`/`WithSafetyNet`; the outer mux is
// wrapped with `gorilla/handlers` request logging the same way a
// production deployment would front it.
type Server struct {
	port   int
	dis    *dispatch.Dispatcher
	log    logger.Logger
	router *dispatcher.Router
}

// NewServer :
func NewServer(port int, dis *dispatch.Dispatcher, log logger.Logger) *Server {
	if dis == nil {
		panic(fmt.Errorf("cannot create server with nil dispatcher"))
	}

	s := &Server{port: port, dis: dis, log: log, router: dispatcher.NewRouter(log)}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/healthz", dispatcher.WithSafetyNet(s.log, s.handleHealthz)).Methods("GET")
	s.router.HandleFunc("/rpc", dispatcher.WithSafetyNet(s.log, s.handleRPC)).Methods("POST")
	s.router.HandleFunc("/ws", dispatcher.WithSafetyNet(s.log, s.handleWS)).Methods("GET")
}

// Serve :
// Starts listening and blocks until the server stops or fails.
func (s *Server) Serve() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.log.Trace(logger.Info, "transport", fmt.Sprintf("listening on %s", addr))
	return http.ListenAndServe(addr, handlers.CombinedLoggingHandler(logWriter{s.log}, s.router))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Error: &ErrorBody{Status: 400, Code: "malformed_request", Detail: err.Error()}})
		return
	}

	resp := Handle(s.dis, "", req)
	status := http.StatusOK
	if resp.Error != nil {
		status = resp.Error.Status
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// logWriter :
// Adapts logger.Logger to io.Writer so gorilla/handlers' access-log
// middleware can feed it lines without knowing about our logger.
type logWriter struct {
	log logger.Logger
}

func (lw logWriter) Write(p []byte) (int, error) {
	lw.log.Trace(logger.Info, "access", string(p))
	return len(p), nil
}
