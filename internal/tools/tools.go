package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/speechlab/dubkit/internal/dubbing"
	"github.com/speechlab/dubkit/internal/ports"
)

const (
	defaultWaitInterval = 15 * time.Second
	defaultWaitTimeout  = 600 * time.Second
)

// NewRegistry binds every workflow operation to a stable tool name.
func NewRegistry(svc ports.DubService) *Registry {
	r := &Registry{tools: make(map[string]Tool)}

	r.register(Tool{
		Name:        "create_project_and_dub",
		Description: "Create a new dubbing project and set it up for dubbing. Optionally uploads a source media file.",
		Params: []Param{
			{Name: "name", Type: "string", Description: "Name of the project", Required: true},
			{Name: "source_language", Type: "string", Description: "Source language code (e.g. 'en')", Required: true},
			{Name: "target_language", Type: "string", Description: "Target language code (e.g. 'es')", Required: true},
			{Name: "source_file", Type: "string", Description: "Path to the source media file to upload"},
		},
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			var in struct {
				Name           string `json:"name"`
				SourceLanguage string `json:"source_language"`
				TargetLanguage string `json:"target_language"`
				SourceFile     string `json:"source_file"`
			}
			if err := decode(args, &in); err != nil {
				return nil, err
			}

			project, err := svc.CreateProject(ctx, in.Name, in.SourceLanguage, in.TargetLanguage)
			if err != nil {
				return nil, err
			}

			out := struct {
				Project *dubbing.Project    `json:"project"`
				Media   *dubbing.MediaAsset `json:"media,omitempty"`
			}{Project: project}

			if in.SourceFile != "" {
				media, err := svc.UploadMedia(ctx, project.ID, in.SourceFile)
				if err != nil {
					return nil, err
				}
				out.Media = media
			}
			return out, nil
		},
	})

	r.register(Tool{
		Name:        "get_projects",
		Description: "List dubbing projects.",
		Params: []Param{
			{Name: "limit", Type: "integer", Description: "Maximum number of projects to retrieve (default 10)"},
			{Name: "offset", Type: "integer", Description: "Number of projects to skip"},
		},
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			var in struct {
				Limit  int `json:"limit"`
				Offset int `json:"offset"`
			}
			if err := decode(args, &in); err != nil {
				return nil, err
			}
			return svc.ListProjects(ctx, in.Limit, in.Offset)
		},
	})

	r.register(Tool{
		Name:        "get_project",
		Description: "Get a dubbing project by id.",
		Params: []Param{
			{Name: "project_id", Type: "string", Description: "ID of the project", Required: true},
		},
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			id, err := projectID(args)
			if err != nil {
				return nil, err
			}
			return svc.GetProject(ctx, id)
		},
	})

	r.register(Tool{
		Name:        "upload_media",
		Description: "Upload a local media file to an existing project.",
		Params: []Param{
			{Name: "project_id", Type: "string", Description: "ID of the project", Required: true},
			{Name: "file_path", Type: "string", Description: "Path to the media file", Required: true},
		},
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			var in struct {
				ProjectID string `json:"project_id"`
				FilePath  string `json:"file_path"`
			}
			if err := decode(args, &in); err != nil {
				return nil, err
			}
			if in.ProjectID == "" {
				return nil, &dubbing.ValidationError{Field: "project_id", Message: "required"}
			}
			if in.FilePath == "" {
				return nil, &dubbing.ValidationError{Field: "file_path", Message: "required"}
			}
			return svc.UploadMedia(ctx, in.ProjectID, in.FilePath)
		},
	})

	r.register(Tool{
		Name:        "start_dubbing",
		Description: "Start the dubbing process for a project.",
		Params: []Param{
			{Name: "project_id", Type: "string", Description: "ID of the project", Required: true},
		},
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			id, err := projectID(args)
			if err != nil {
				return nil, err
			}
			if err := svc.StartDubbing(ctx, id); err != nil {
				return nil, err
			}
			return map[string]string{"project_id": id, "state": "dubbing_started"}, nil
		},
	})

	r.register(Tool{
		Name:        "check_dubbing_status",
		Description: "Check the status of a dubbing job. Single poll, never blocks.",
		Params: []Param{
			{Name: "project_id", Type: "string", Description: "ID of the project", Required: true},
		},
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			id, err := projectID(args)
			if err != nil {
				return nil, err
			}
			return svc.PollStatus(ctx, id)
		},
	})

	r.register(Tool{
		Name:        "wait_for_completion",
		Description: "Poll a dubbing job until it reaches a terminal status or the timeout elapses.",
		Params: []Param{
			{Name: "project_id", Type: "string", Description: "ID of the project", Required: true},
			{Name: "interval_seconds", Type: "integer", Description: "Seconds between polls (default 15)"},
			{Name: "timeout_seconds", Type: "integer", Description: "Overall deadline in seconds (default 600)"},
		},
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			var in struct {
				ProjectID       string `json:"project_id"`
				IntervalSeconds int    `json:"interval_seconds"`
				TimeoutSeconds  int    `json:"timeout_seconds"`
			}
			if err := decode(args, &in); err != nil {
				return nil, err
			}
			if in.ProjectID == "" {
				return nil, &dubbing.ValidationError{Field: "project_id", Message: "required"}
			}

			interval := defaultWaitInterval
			if in.IntervalSeconds > 0 {
				interval = time.Duration(in.IntervalSeconds) * time.Second
			}
			timeout := defaultWaitTimeout
			if in.TimeoutSeconds > 0 {
				timeout = time.Duration(in.TimeoutSeconds) * time.Second
			}
			return svc.WaitUntilComplete(ctx, in.ProjectID, interval, timeout)
		},
	})

	r.register(Tool{
		Name:        "download_dubbing_result",
		Description: "Download the dubbed output of a completed project.",
		Params: []Param{
			{Name: "project_id", Type: "string", Description: "ID of the project", Required: true},
			{Name: "output_directory", Type: "string", Description: "Directory to save the result (defaults to the Desktop)"},
		},
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			var in struct {
				ProjectID       string `json:"project_id"`
				OutputDirectory string `json:"output_directory"`
			}
			if err := decode(args, &in); err != nil {
				return nil, err
			}
			if in.ProjectID == "" {
				return nil, &dubbing.ValidationError{Field: "project_id", Message: "required"}
			}
			return svc.DownloadResult(ctx, in.ProjectID, in.OutputDirectory)
		},
	})

	r.register(Tool{
		Name:        "generate_sharing_link",
		Description: "Generate a link that grants access to a project's result without platform credentials.",
		Params: []Param{
			{Name: "project_id", Type: "string", Description: "ID of the project", Required: true},
		},
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			id, err := projectID(args)
			if err != nil {
				return nil, err
			}
			return svc.GenerateShareLink(ctx, id)
		},
	})

	return r
}

func decode(args json.RawMessage, out any) error {
	if err := json.Unmarshal(args, out); err != nil {
		return &dubbing.ValidationError{Field: "arguments", Message: err.Error()}
	}
	return nil
}

func projectID(args json.RawMessage) (string, error) {
	var in struct {
		ProjectID string `json:"project_id"`
	}
	if err := decode(args, &in); err != nil {
		return "", err
	}
	if in.ProjectID == "" {
		return "", &dubbing.ValidationError{Field: "project_id", Message: "required"}
	}
	return in.ProjectID, nil
}
