package domain

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/speechlab/dubkit/internal/dubbing"
	"github.com/speechlab/dubkit/internal/notificator"
	"github.com/speechlab/dubkit/internal/ports"
)

// Lifecycle of a single project as seen from this client:
// created -> media_uploaded -> dubbing_started -> {queued, processing}* -> {completed | failed}
type projectState struct {
	uploaded bool
	started  bool
	terminal *dubbing.JobStatus
}

func (st *projectState) lifecycle() string {
	switch {
	case st.terminal != nil:
		return string(st.terminal.Status)
	case st.started:
		return "dubbing_started"
	case st.uploaded:
		return "media_uploaded"
	default:
		return "created"
	}
}

type DubService struct {
	client   ports.SpeechlabClient
	archive  ports.ArchiveService    // optional
	notifier notificator.Notificator // optional
	basePath string

	mu     sync.Mutex
	states map[string]*projectState
}

func NewDubService(
	client ports.SpeechlabClient,
	archive ports.ArchiveService,
	notifier notificator.Notificator,
	basePath string,
) *DubService {
	return &DubService{
		client:   client,
		archive:  archive,
		notifier: notifier,
		basePath: basePath,
		states:   make(map[string]*projectState),
	}
}

// ----------------------------------------------------
// Project operations
// ----------------------------------------------------

func (s *DubService) CreateProject(ctx context.Context, name, sourceLang, targetLang string) (*dubbing.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &dubbing.ValidationError{Field: "name", Message: "must not be empty"}
	}
	if !dubbing.SupportedLanguage(sourceLang) {
		return nil, &dubbing.ValidationError{Field: "source_language", Message: fmt.Sprintf("unsupported language code %q", sourceLang)}
	}
	if !dubbing.SupportedLanguage(targetLang) {
		return nil, &dubbing.ValidationError{Field: "target_language", Message: fmt.Sprintf("unsupported language code %q", targetLang)}
	}

	details, err := s.client.CreateProjectAndDub(ctx, dubbing.CreateProjectParams{
		Name:           name,
		SourceLanguage: strings.ToLower(sourceLang),
		TargetLanguage: dubbing.APILanguage(targetLang),
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.states[details.ID] = &projectState{}
	s.mu.Unlock()

	project := details.Project
	project.Status = dubbing.StatusCreated
	return &project, nil
}

func (s *DubService) GetProject(ctx context.Context, projectID string) (*dubbing.Project, error) {
	details, err := s.client.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &details.Project, nil
}

func (s *DubService) ListProjects(ctx context.Context, limit, offset int) ([]dubbing.Project, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	details, err := s.client.ListProjects(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]dubbing.Project, 0, len(details))
	for i := range details {
		out = append(out, details[i].Project)
	}
	return out, nil
}

// ----------------------------------------------------
// Lifecycle operations
// ----------------------------------------------------

func (s *DubService) UploadMedia(ctx context.Context, projectID, path string) (*dubbing.MediaAsset, error) {
	resolved, size, err := s.resolveInputFile(path)
	if err != nil {
		return nil, err
	}

	if err := s.ensureKnown(ctx, projectID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	st := s.states[projectID]
	if st.started || st.terminal != nil {
		state := st.lifecycle()
		s.mu.Unlock()
		return nil, &dubbing.InvalidStateError{ProjectID: projectID, Op: "upload media", State: state}
	}
	s.mu.Unlock()

	asset := &dubbing.MediaAsset{
		ProjectID: projectID,
		Path:      resolved,
		Size:      size,
		State:     dubbing.UploadPending,
	}

	if err := s.client.UploadMedia(ctx, projectID, resolved); err != nil {
		asset.State = dubbing.UploadFailed
		return nil, err
	}
	asset.State = dubbing.UploadDone

	s.mu.Lock()
	s.states[projectID].uploaded = true
	s.mu.Unlock()

	return asset, nil
}

func (s *DubService) StartDubbing(ctx context.Context, projectID string) error {
	if err := s.ensureKnown(ctx, projectID); err != nil {
		return err
	}

	s.mu.Lock()
	st := s.states[projectID]
	if !st.uploaded {
		state := st.lifecycle()
		s.mu.Unlock()
		return &dubbing.InvalidStateError{ProjectID: projectID, Op: "start dubbing", State: state}
	}
	s.mu.Unlock()

	if err := s.client.StartDub(ctx, projectID); err != nil {
		return err
	}

	s.mu.Lock()
	s.states[projectID].started = true
	s.mu.Unlock()

	log.Printf("[dub] dubbing started project=%s", projectID)
	return nil
}

// PollStatus performs a single status poll. Terminal statuses are
// cached: once a project is completed or failed, further polls return
// the same status without a round trip.
func (s *DubService) PollStatus(ctx context.Context, projectID string) (*dubbing.JobStatus, error) {
	s.mu.Lock()
	if st, ok := s.states[projectID]; ok && st.terminal != nil {
		cached := *st.terminal
		s.mu.Unlock()
		return &cached, nil
	}
	s.mu.Unlock()

	details, err := s.client.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	js := &dubbing.JobStatus{
		ProjectID: projectID,
		Status:    details.Status,
		Progress:  progressFor(details.Status),
		Detail:    details.MergeStatus,
	}
	if js.Status == dubbing.StatusFailed && js.Detail == "" {
		js.Detail = "job reported " + details.RawStatus
	}

	s.mu.Lock()
	st, ok := s.states[projectID]
	if !ok {
		st = &projectState{}
		s.states[projectID] = st
	}
	// Remote state implies the earlier lifecycle steps happened,
	// whether or not they went through this instance.
	if js.Status != dubbing.StatusQueued || details.MediaCount > 0 {
		st.uploaded = true
		st.started = true
	}
	if js.Status.Terminal() {
		cached := *js
		st.terminal = &cached
	}
	s.mu.Unlock()

	return js, nil
}

// WaitUntilComplete polls at the given interval until the job reaches a
// terminal status or the timeout elapses. Transient poll failures are
// logged and the loop keeps going; the deadline is the only thing that
// gives up.
func (s *DubService) WaitUntilComplete(ctx context.Context, projectID string, interval, timeout time.Duration) (*dubbing.JobStatus, error) {
	if interval <= 0 {
		return nil, &dubbing.ValidationError{Field: "interval", Message: "must be positive"}
	}
	if timeout <= 0 {
		return nil, &dubbing.ValidationError{Field: "timeout", Message: "must be positive"}
	}

	deadline := time.Now().Add(timeout)

	last, err := s.PollStatus(ctx, projectID)
	if err != nil {
		if !transient(err) {
			return nil, err
		}
		log.Printf("[dub] poll failed project=%s: %v", projectID, err)
		last = &dubbing.JobStatus{ProjectID: projectID, Status: dubbing.StatusQueued}
	} else if last.Status.Terminal() {
		s.notifyDone(ctx, projectID, last)
		return last, nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			if time.Now().After(deadline) {
				return nil, &dubbing.TimeoutError{ProjectID: projectID, LastStatus: *last}
			}

			js, err := s.PollStatus(ctx, projectID)
			if err != nil {
				if !transient(err) {
					return nil, err
				}
				log.Printf("[dub] poll failed project=%s: %v", projectID, err)
				continue
			}

			last = js
			if js.Status.Terminal() {
				s.notifyDone(ctx, projectID, js)
				return js, nil
			}
		}
	}
}

// DownloadResult fetches the dubbed output once the job is completed
// and writes it under destDir.
func (s *DubService) DownloadResult(ctx context.Context, projectID, destDir string) (*dubbing.Result, error) {
	js, err := s.PollStatus(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if js.Status != dubbing.StatusCompleted {
		return nil, &dubbing.InvalidStateError{ProjectID: projectID, Op: "download result", State: string(js.Status)}
	}

	outDir, err := s.resolveOutputDir(destDir)
	if err != nil {
		return nil, err
	}

	srcURL, err := s.client.DownloadURL(ctx, projectID)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("dub_project_%s_%s.mp4", projectID, time.Now().Format("20060102_150405"))
	outPath := filepath.Join(outDir, name)

	f, err := os.Create(outPath)
	if err != nil {
		return nil, &dubbing.ValidationError{Field: "destination_dir", Message: err.Error()}
	}

	n, err := s.client.Download(ctx, srcURL, f)
	closeErr := f.Close()
	if err != nil {
		os.Remove(outPath)
		return nil, err
	}
	if closeErr != nil {
		os.Remove(outPath)
		return nil, fmt.Errorf("write result: %w", closeErr)
	}

	log.Printf("[dub] result downloaded project=%s path=%s bytes=%d", projectID, outPath, n)

	result := &dubbing.Result{
		ProjectID: projectID,
		SourceURL: srcURL,
		Path:      outPath,
		Size:      n,
	}

	// Best effort: a failed archive never fails the download.
	if s.archive != nil {
		archiveURL, err := s.archive.SaveResult(ctx, projectID, outPath)
		if err != nil {
			log.Printf("[dub] archive failed project=%s: %v", projectID, err)
		} else {
			result.ArchiveURL = archiveURL
		}
	}

	return result, nil
}

func (s *DubService) GenerateShareLink(ctx context.Context, projectID string) (*dubbing.ShareLink, error) {
	link, err := s.client.GenerateSharingLink(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &dubbing.ShareLink{ProjectID: projectID, URL: link}, nil
}

// ----------------------------------------------------

// ensureKnown makes sure a lifecycle record exists for the project.
// Projects created outside this instance are confirmed remotely first,
// so an unknown id surfaces as NotFoundError.
func (s *DubService) ensureKnown(ctx context.Context, projectID string) error {
	s.mu.Lock()
	_, ok := s.states[projectID]
	s.mu.Unlock()
	if ok {
		return nil
	}

	if _, err := s.client.GetProject(ctx, projectID); err != nil {
		return err
	}

	s.mu.Lock()
	if _, ok := s.states[projectID]; !ok {
		s.states[projectID] = &projectState{}
	}
	s.mu.Unlock()
	return nil
}

func (s *DubService) notifyDone(ctx context.Context, projectID string, js *dubbing.JobStatus) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.JobDone(ctx, projectID, *js); err != nil {
		log.Printf("[dub] notify failed project=%s: %v", projectID, err)
	}
}

// resolveInputFile validates a local media path. Relative paths need a
// configured base path to resolve against.
func (s *DubService) resolveInputFile(path string) (string, int64, error) {
	if path == "" {
		return "", 0, &dubbing.ValidationError{Field: "path", Message: "must not be empty"}
	}
	if !filepath.IsAbs(path) {
		if s.basePath == "" {
			return "", 0, &dubbing.ValidationError{Field: "path", Message: "must be absolute when no base path is configured"}
		}
		path = filepath.Join(s.basePath, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", 0, &dubbing.ValidationError{Field: "path", Message: fmt.Sprintf("file %s does not exist", path)}
	}
	if info.IsDir() {
		return "", 0, &dubbing.ValidationError{Field: "path", Message: fmt.Sprintf("%s is not a file", path)}
	}
	if !dubbing.RecognizedMedia(path) {
		return "", 0, &dubbing.ValidationError{Field: "path", Message: fmt.Sprintf("%s is not a recognized media file", path)}
	}
	return path, info.Size(), nil
}

// resolveOutputDir: empty means the user's Desktop, relative joins the
// configured base path.
func (s *DubService) resolveOutputDir(dir string) (string, error) {
	switch {
	case dir == "":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, "Desktop")
	case !filepath.IsAbs(dir) && s.basePath != "":
		dir = filepath.Join(s.basePath, dir)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &dubbing.ValidationError{Field: "destination_dir", Message: err.Error()}
	}
	return dir, nil
}

func progressFor(status dubbing.Status) int {
	switch status {
	case dubbing.StatusProcessing:
		return 50
	case dubbing.StatusCompleted:
		return 100
	default:
		return 0
	}
}

// transient — poll failures WaitUntilComplete rides out instead of
// aborting the wait.
func transient(err error) bool {
	var netErr *dubbing.TransientNetworkError
	var srvErr *dubbing.ServerError
	return errors.As(err, &netErr) || errors.As(err, &srvErr)
}
