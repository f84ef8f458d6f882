package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/strata-db/strata/pkg/core/connection"
	"github.com/strata-db/strata/pkg/errors"
)

// statementRequest is the body of the query/execute/ddl endpoints.
type statementRequest struct {
	SQL    string        `json:"sql"`
	Params []interface{} `json:"params,omitempty"`
}

// handleQuery runs a read query.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeStatement(w, r)
	if !ok {
		return
	}

	rs, err := s.tools.ReadQuery(r.Context(), req.SQL, req.Params...)
	if err != nil {
		s.jsonError(w, err)
		return
	}
	s.jsonResponse(w, rs)
}

// handleExecute runs a write query.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeStatement(w, r)
	if !ok {
		return
	}

	rs, err := s.tools.WriteQuery(r.Context(), req.SQL, req.Params...)
	if err != nil {
		s.jsonError(w, err)
		return
	}
	s.jsonResponse(w, rs)
}

// handleDDL runs a DDL statement.
func (s *Server) handleDDL(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeStatement(w, r)
	if !ok {
		return
	}

	rs, err := s.tools.ExecuteDDL(r.Context(), req.SQL)
	if err != nil {
		s.jsonError(w, err)
		return
	}
	s.jsonResponse(w, rs)
}

// handleTables returns a list of all tables.
func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tables, err := s.tools.ListTables(r.Context())
	if err != nil {
		s.jsonError(w, err)
		return
	}

	s.jsonResponse(w, map[string]interface{}{
		"tables": tables,
	})
}

// handleTableDetails returns column and index metadata for one table.
func (s *Server) handleTableDetails(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tableName := strings.TrimPrefix(r.URL.Path, "/api/tables/")
	if tableName == "" || strings.Contains(tableName, "/") {
		http.Error(w, "Table name required", http.StatusBadRequest)
		return
	}

	info, err := s.tools.DescribeTable(r.Context(), tableName)
	if err != nil {
		s.jsonError(w, err)
		return
	}
	s.jsonResponse(w, info)
}

// handleStatus returns the pool's sizing and availability snapshot.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.jsonResponse(w, s.pool.Status())
}

// handleHealth reports coarse liveness of the pool.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	healthy := s.pool.HealthCheck(r.Context())
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]bool{"healthy": healthy})
}

// decodeStatement parses a statement request body, writing the error
// response itself on failure.
func (s *Server) decodeStatement(w http.ResponseWriter, r *http.Request) (*statementRequest, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}

	var req statementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return nil, false
	}
	if strings.TrimSpace(req.SQL) == "" {
		http.Error(w, "Field 'sql' is required", http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

// jsonResponse writes a JSON success body.
func (s *Server) jsonResponse(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// jsonError maps an error to a status code and writes a JSON error body
// including the code and suggestion when the error carries them.
func (s *Server) jsonError(w http.ResponseWriter, err error) {
	body := map[string]interface{}{"error": err.Error()}

	status := http.StatusInternalServerError
	var se *errors.StrataError
	switch {
	case stderrors.As(err, &se):
		switch se.Code {
		case errors.ErrQueryRejected, errors.ErrTableUnknown:
			status = http.StatusBadRequest
		case errors.ErrPoolShutdown:
			status = http.StatusServiceUnavailable
		}
		body["code"] = se.Code
		if se.Suggestion != "" {
			body["suggestion"] = se.Suggestion
		}
	case stderrors.Is(err, connection.ErrPoolClosed):
		status = http.StatusServiceUnavailable
	case stderrors.Is(err, connection.ErrAcquireTimeout):
		status = http.StatusGatewayTimeout
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
