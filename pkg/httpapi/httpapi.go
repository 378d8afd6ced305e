// Package httpapi is the HTTP deployment mode: a health endpoint, plain
// REST endpoints mirroring the image tools, and the MCP SSE transport
// mounted under /sse, all behind permissive CORS.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/NusratJahanShawon/fal-ai-mcp-server/pkg/fal"
)

// API serves the HTTP surface.
type API struct {
	fal    *fal.Client
	logger *slog.Logger
}

// New creates the API over the image client. sse, when non-nil, is mounted
// under /sse.
func New(falClient *fal.Client, sse http.Handler, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	a := &API{fal: falClient, logger: logger}

	r := mux.NewRouter()
	r.HandleFunc("/health", a.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/edit/flux", a.handleEdit).Methods(http.MethodPost)
	r.HandleFunc("/edit/qwen", a.handleEditQwen).Methods(http.MethodPost)
	r.HandleFunc("/remove-bg", a.handleRemoveBackground).Methods(http.MethodPost)
	r.HandleFunc("/upscale", a.handleUpscale).Methods(http.MethodPost)

	if sse != nil {
		r.PathPrefix("/sse").Handler(sse)
	}

	return cors.AllowAll().Handler(r)
}

// editResponse mirrors the REST response shape of the original service.
type editResponse struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"image_url,omitempty"`
	Model    string `json:"model,omitempty"`
	Prompt   string `json:"prompt,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "fal-ai-mcp-http"})
}

type editBody struct {
	ImageURL string   `json:"image_url"`
	Prompt   string   `json:"prompt"`
	Model    string   `json:"model"`
	Strength *float64 `json:"strength"`
	Scale    int      `json:"scale"`
}

func (a *API) handleEdit(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}

	if body.ImageURL == "" || body.Prompt == "" {
		writeJSON(w, http.StatusBadRequest, editResponse{Error: "image_url and prompt are required"})
		return
	}

	result, err := a.fal.EditImage(r.Context(), fal.EditRequest{
		ImageURL: body.ImageURL,
		Prompt:   body.Prompt,
		Model:    fal.Model(body.Model),
		Strength: body.Strength,
	})
	a.writeResult(w, result, err)
}

func (a *API) handleEditQwen(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}

	if body.ImageURL == "" || body.Prompt == "" {
		writeJSON(w, http.StatusBadRequest, editResponse{Error: "image_url and prompt are required"})
		return
	}

	result, err := a.fal.EditImageQwen(r.Context(), body.ImageURL, body.Prompt)
	a.writeResult(w, result, err)
}

func (a *API) handleRemoveBackground(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}

	if body.ImageURL == "" {
		writeJSON(w, http.StatusBadRequest, editResponse{Error: "image_url is required"})
		return
	}

	result, err := a.fal.RemoveBackground(r.Context(), body.ImageURL)
	a.writeResult(w, result, err)
}

func (a *API) handleUpscale(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}

	if body.ImageURL == "" {
		writeJSON(w, http.StatusBadRequest, editResponse{Error: "image_url is required"})
		return
	}

	result, err := a.fal.Upscale(r.Context(), body.ImageURL, body.Scale)
	a.writeResult(w, result, err)
}

func (a *API) writeResult(w http.ResponseWriter, result *fal.EditResult, err error) {
	if err != nil {
		a.logger.Error("http edit failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, editResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, editResponse{
		Success:  true,
		ImageURL: result.URL,
		Model:    result.ModelLabel,
		Prompt:   result.Prompt,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request) (editBody, bool) {
	var body editBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, editResponse{Error: "invalid JSON body"})
		return editBody{}, false
	}

	return body, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Serve runs the API on addr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	server := &http.Server{Addr: addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return server.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
