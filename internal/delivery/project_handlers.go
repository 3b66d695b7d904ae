package delivery

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"

	"github.com/speechlab/dubkit/internal/ports"
)

type ProjectHandler struct {
	dubService ports.DubService
	log        *logger.ZapLogger
}

func NewProjectHandler(dubService ports.DubService, log *logger.ZapLogger) *ProjectHandler {
	return &ProjectHandler{
		dubService: dubService,
		log:        log,
	}
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string `json:"name"`
		SourceLanguage string `json:"source_language"`
		TargetLanguage string `json:"target_language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	project, err := h.dubService.CreateProject(r.Context(), req.Name, req.SourceLanguage, req.TargetLanguage)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	projects, err := h.dubService.ListProjects(r.Context(), limit, offset)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "list projects failed", Error: err})
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.dubService.GetProject(r.Context(), chi.URLParam(r, "project_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Upload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FilePath string `json:"file_path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	asset, err := h.dubService.UploadMedia(r.Context(), chi.URLParam(r, "project_id"), req.FilePath)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (h *ProjectHandler) Start(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "project_id")
	if err := h.dubService.StartDubbing(r.Context(), projectID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"project_id": projectID, "state": "dubbing_started"})
}

func (h *ProjectHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.dubService.PollStatus(r.Context(), chi.URLParam(r, "project_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *ProjectHandler) Wait(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IntervalSeconds int `json:"interval_seconds"`
		TimeoutSeconds  int `json:"timeout_seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.IntervalSeconds <= 0 {
		req.IntervalSeconds = 15
	}
	if req.TimeoutSeconds <= 0 {
		req.TimeoutSeconds = 600
	}

	status, err := h.dubService.WaitUntilComplete(
		r.Context(),
		chi.URLParam(r, "project_id"),
		time.Duration(req.IntervalSeconds)*time.Second,
		time.Duration(req.TimeoutSeconds)*time.Second,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *ProjectHandler) Download(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OutputDirectory string `json:"output_directory"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.dubService.DownloadResult(r.Context(), chi.URLParam(r, "project_id"), req.OutputDirectory)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "download failed", Error: err})
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ProjectHandler) Share(w http.ResponseWriter, r *http.Request) {
	link, err := h.dubService.GenerateShareLink(r.Context(), chi.URLParam(r, "project_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}
