// ABOUTME: HTTP API handlers for script execution, streaming, and history
// ABOUTME: Serves SSE event streams plus JSON endpoints for scripts and records

package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/finrobot/script-gateway/internal/execution"
	"github.com/finrobot/script-gateway/internal/script"
	"github.com/finrobot/script-gateway/internal/store"
)

const maxHistoryLimit = 200

// handleRunScriptStream executes a script and streams its events over SSE.
// Each event is written as `event: message` with the JSON-encoded event as
// data; the stream always terminates with an exit event.
func (g *Gateway) handleRunScriptStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	req, err := requestFromQuery(r)
	if err != nil {
		sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Lang == "" {
		req.Lang = g.config.Scripts.DefaultLang
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		sendJSONError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	exec := execution.New(g.registry, g.config.Scripts.OutputDir, req, g.logger)

	// The worker runs under the server lifetime context, not the request's:
	// a client that disconnects mid-stream stops receiving events but the
	// script runs to completion and its record is still saved.
	exec.Start(g.execCtx)

	for ev := range g.recorder.Record(r.Context(), exec) {
		if err := writeSSEEvent(w, "message", ev); err != nil {
			g.logger.Debug("SSE write failed, client gone", "error", err)
			return
		}
		flusher.Flush()
	}
}

// handleRunScript executes a script synchronously and returns its final
// result or error as JSON. Output lines are not returned; use the streaming
// endpoint for those.
func (g *Gateway) handleRunScript(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req execution.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.ScriptPath == "" {
		sendJSONError(w, http.StatusBadRequest, "script_path is required")
		return
	}
	if req.Lang == "" {
		req.Lang = g.config.Scripts.DefaultLang
	}

	// Resolve before running so contract failures map to proper status
	// codes instead of a 200 with an error payload.
	if _, err := g.registry.Resolve(req.ScriptPath); err != nil {
		switch {
		case errors.Is(err, script.ErrNotFound):
			sendJSONError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, script.ErrNoEntryPoint):
			sendJSONError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			sendJSONError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	result := execution.Run(g.execCtx, g.registry, g.config.Scripts.OutputDir, req, g.logger)
	sendJSON(w, http.StatusOK, result)
}

// handleListScripts returns all registered scripts grouped by folder.
func (g *Gateway) handleListScripts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	type scriptInfo struct {
		Name        string             `json:"name"`
		Path        string             `json:"path"`
		Description string             `json:"description,omitempty"`
		Params      []script.ParamSpec `json:"params"`
	}
	type folderInfo struct {
		Folder  string       `json:"folder"`
		Scripts []scriptInfo `json:"scripts"`
	}

	var folders []folderInfo
	for _, sc := range g.registry.List() {
		params := sc.Params
		if params == nil {
			params = []script.ParamSpec{}
		}
		info := scriptInfo{
			Name:        sc.Name(),
			Path:        sc.Path,
			Description: sc.Description,
			Params:      params,
		}
		if n := len(folders); n > 0 && folders[n-1].Folder == sc.Folder() {
			folders[n-1].Scripts = append(folders[n-1].Scripts, info)
		} else {
			folders = append(folders, folderInfo{Folder: sc.Folder(), Scripts: []scriptInfo{info}})
		}
	}
	if folders == nil {
		folders = []folderInfo{}
	}

	sendJSON(w, http.StatusOK, map[string]any{"folders": folders})
}

// handleHistoryOverview returns per-script execution counts with the latest
// record for each script.
func (g *Gateway) handleHistoryOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	overview, err := g.store.ListOverview(r.Context())
	if err != nil {
		g.logger.Error("listing history overview", "error", err)
		sendJSONError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	if overview == nil {
		overview = []*store.ScriptOverview{}
	}
	sendJSON(w, http.StatusOK, map[string]any{"scripts": overview})
}

// handleScriptHistory serves per-script history under /api/history/{script}.
// GET lists records newest-first (clamped by ?limit=); DELETE removes a
// single record by ?id= or the script's entire history when id is absent.
func (g *Gateway) handleScriptHistory(w http.ResponseWriter, r *http.Request) {
	scriptPath := strings.TrimPrefix(r.URL.Path, "/api/history/")
	scriptPath = strings.TrimSuffix(scriptPath, "/")
	if scriptPath == "" {
		sendJSONError(w, http.StatusBadRequest, "script path is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		g.listScriptHistory(w, r, scriptPath)
	case http.MethodDelete:
		g.deleteScriptHistory(w, r, scriptPath)
	default:
		sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (g *Gateway) listScriptHistory(w http.ResponseWriter, r *http.Request, scriptPath string) {
	limit := g.config.History.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			sendJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, err := g.store.ListExecutions(r.Context(), scriptPath, limit)
	if err != nil {
		g.logger.Error("listing executions", "script", scriptPath, "error", err)
		sendJSONError(w, http.StatusInternalServerError, "failed to list executions")
		return
	}
	if records == nil {
		records = []*store.ExecutionRecord{}
	}
	sendJSON(w, http.StatusOK, map[string]any{
		"script":  scriptPath,
		"records": records,
	})
}

func (g *Gateway) deleteScriptHistory(w http.ResponseWriter, r *http.Request, scriptPath string) {
	if id := r.URL.Query().Get("id"); id != "" {
		err := g.store.DeleteExecution(r.Context(), id)
		switch {
		case errors.Is(err, store.ErrNotFound):
			sendJSONError(w, http.StatusNotFound, "execution not found")
		case err != nil:
			g.logger.Error("deleting execution", "id", id, "error", err)
			sendJSONError(w, http.StatusInternalServerError, "failed to delete execution")
		default:
			sendJSON(w, http.StatusOK, map[string]any{"deleted": 1})
		}
		return
	}

	deleted, err := g.store.DeleteScriptHistory(r.Context(), scriptPath)
	if err != nil {
		g.logger.Error("deleting script history", "script", scriptPath, "error", err)
		sendJSONError(w, http.StatusInternalServerError, "failed to delete history")
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (g *Gateway) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := g.store.ListOverview(r.Context()); err != nil {
		sendJSONError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	sendJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// requestFromQuery builds an execution request from stream query parameters.
// params is an optional JSON object; a value that does not parse is treated
// as empty rather than rejected, so a garbled client still gets a stream.
func requestFromQuery(r *http.Request) (execution.Request, error) {
	q := r.URL.Query()
	req := execution.Request{
		ScriptPath: q.Get("script_path"),
		Lang:       q.Get("lang"),
	}
	if req.ScriptPath == "" {
		return req, errors.New("script_path is required")
	}
	if raw := q.Get("params"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Params); err != nil {
			req.Params = nil
		}
	}
	return req, nil
}

func writeSSEEvent(w http.ResponseWriter, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling SSE payload: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, data)
	return err
}

func sendJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func sendJSONError(w http.ResponseWriter, status int, message string) {
	sendJSON(w, status, map[string]string{"error": message})
}
