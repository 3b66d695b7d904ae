package domain

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/speechlab/dubkit/internal/dubbing"
)

type fakeProject struct {
	details  dubbing.ProjectDetails
	statuses []string // raw job statuses handed out per poll; last repeats
	polls    int
}

type fakeClient struct {
	mu        sync.Mutex
	projects  map[string]*fakeProject
	created   []dubbing.CreateProjectParams
	uploads   map[string]int
	starts    map[string]int
	getCalls  int
	uploadErr error
	pollErr   error // returned once per poll while set
	body      string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		projects: make(map[string]*fakeProject),
		uploads:  make(map[string]int),
		starts:   make(map[string]int),
		body:     "dubbed-bytes",
	}
}

func (f *fakeClient) addProject(id string, statuses ...string) *fakeProject {
	p := &fakeProject{
		details: dubbing.ProjectDetails{
			Project: dubbing.Project{ID: id, Name: "Demo", SourceLanguage: "en", TargetLanguage: "es_la"},
		},
		statuses: statuses,
	}
	f.projects[id] = p
	return p
}

func (f *fakeClient) CreateProjectAndDub(_ context.Context, params dubbing.CreateProjectParams) (*dubbing.ProjectDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, params)
	id := "proj-1"
	p := &fakeProject{
		details: dubbing.ProjectDetails{
			Project: dubbing.Project{
				ID:             id,
				Name:           params.Name,
				SourceLanguage: params.SourceLanguage,
				TargetLanguage: params.TargetLanguage,
				Status:         dubbing.StatusQueued,
			},
		},
	}
	f.projects[id] = p
	d := p.details
	return &d, nil
}

func (f *fakeClient) GetProject(_ context.Context, projectID string) (*dubbing.ProjectDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	p, ok := f.projects[projectID]
	if !ok {
		return nil, &dubbing.NotFoundError{Resource: "project " + projectID}
	}

	raw := ""
	if len(p.statuses) > 0 {
		if p.polls < len(p.statuses) {
			raw = p.statuses[p.polls]
		} else {
			raw = p.statuses[len(p.statuses)-1]
		}
	}
	p.polls++

	d := p.details
	d.RawStatus = raw
	d.Status = dubbing.StatusFromAPI(raw)
	if d.Status == dubbing.StatusCompleted {
		d.OutputURL = "https://cdn.example.com/out.mp4"
	}
	return &d, nil
}

func (f *fakeClient) ListProjects(_ context.Context, limit, offset int) ([]dubbing.ProjectDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []dubbing.ProjectDetails
	for _, p := range f.projects {
		out = append(out, p.details)
	}
	return out, nil
}

func (f *fakeClient) UploadMedia(_ context.Context, projectID, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads[projectID]++
	return nil
}

func (f *fakeClient) StartDub(_ context.Context, projectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts[projectID]++
	return nil
}

func (f *fakeClient) DownloadURL(_ context.Context, projectID string) (string, error) {
	return "https://cdn.example.com/out.mp4", nil
}

func (f *fakeClient) Download(_ context.Context, url string, w io.Writer) (int64, error) {
	n, err := io.WriteString(w, f.body)
	return int64(n), err
}

func (f *fakeClient) GenerateSharingLink(_ context.Context, projectID string) (string, error) {
	return "https://share.example.com/" + projectID, nil
}

func writeMediaFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("media"), 0644); err != nil {
		t.Fatalf("write media file: %v", err)
	}
	return path
}

func TestCreateProjectValidation(t *testing.T) {
	svc := NewDubService(newFakeClient(), nil, nil, "")

	cases := []struct {
		name       string
		project    string
		source     string
		target     string
		wantsError bool
	}{
		{"unsupported source", "Demo", "xx", "es", true},
		{"unsupported target", "Demo", "en", "xx", true},
		{"empty name", "  ", "en", "es", true},
		{"valid pair", "Demo", "en", "es", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProject(context.Background(), tc.project, tc.source, tc.target)
			var vErr *dubbing.ValidationError
			if tc.wantsError {
				if !errors.As(err, &vErr) {
					t.Fatalf("want ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCreateProjectMapsSpanishAccent(t *testing.T) {
	client := newFakeClient()
	svc := NewDubService(client, nil, nil, "")

	project, err := svc.CreateProject(context.Background(), "Demo", "en", "es")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if project.Status != dubbing.StatusCreated {
		t.Errorf("status = %q, want %q", project.Status, dubbing.StatusCreated)
	}
	if got := client.created[0].TargetLanguage; got != "es_la" {
		t.Errorf("wire target language = %q, want es_la", got)
	}
}

func TestUploadMediaUnknownProject(t *testing.T) {
	client := newFakeClient()
	svc := NewDubService(client, nil, nil, "")
	path := writeMediaFile(t, t.TempDir(), "video.mp4")

	_, err := svc.UploadMedia(context.Background(), "missing", path)
	var nfErr *dubbing.NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("want NotFoundError, got %v", err)
	}
}

func TestUploadMediaPathValidation(t *testing.T) {
	client := newFakeClient()
	client.addProject("p1")
	svc := NewDubService(client, nil, nil, "")
	dir := t.TempDir()

	cases := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "nope.mp4")},
		{"unsupported type", writeMediaFile(t, dir, "notes.txt")},
		{"directory", dir},
		{"relative without base path", "video.mp4"},
		{"empty", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.UploadMedia(context.Background(), "p1", tc.path)
			var vErr *dubbing.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("want ValidationError, got %v", err)
			}
		})
	}
}

func TestUploadMediaRelativeWithBasePath(t *testing.T) {
	client := newFakeClient()
	client.addProject("p1")
	dir := t.TempDir()
	writeMediaFile(t, dir, "video.mp4")
	svc := NewDubService(client, nil, nil, dir)

	asset, err := svc.UploadMedia(context.Background(), "p1", "video.mp4")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if asset.State != dubbing.UploadDone {
		t.Errorf("state = %q, want %q", asset.State, dubbing.UploadDone)
	}
	if asset.Path != filepath.Join(dir, "video.mp4") {
		t.Errorf("resolved path = %q", asset.Path)
	}
}

func TestStartDubbingWithoutUpload(t *testing.T) {
	client := newFakeClient()
	client.addProject("p1")
	svc := NewDubService(client, nil, nil, "")

	err := svc.StartDubbing(context.Background(), "p1")
	var stErr *dubbing.InvalidStateError
	if !errors.As(err, &stErr) {
		t.Fatalf("want InvalidStateError, got %v", err)
	}
	if stErr.State != "created" {
		t.Errorf("state = %q, want created", stErr.State)
	}
}

func TestPollStatusTerminalIsCached(t *testing.T) {
	client := newFakeClient()
	client.addProject("p1", "PROCESSING", "COMPLETE")
	svc := NewDubService(client, nil, nil, "")
	ctx := context.Background()

	first, err := svc.PollStatus(ctx, "p1")
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if first.Status != dubbing.StatusProcessing || first.Progress != 50 {
		t.Fatalf("first poll = %+v", first)
	}

	second, err := svc.PollStatus(ctx, "p1")
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if second.Status != dubbing.StatusCompleted || second.Progress != 100 {
		t.Fatalf("second poll = %+v", second)
	}

	calls := client.getCalls
	for i := 0; i < 3; i++ {
		again, err := svc.PollStatus(ctx, "p1")
		if err != nil {
			t.Fatalf("poll: %v", err)
		}
		if again.Status != dubbing.StatusCompleted {
			t.Fatalf("terminal poll flipped to %q", again.Status)
		}
	}
	if client.getCalls != calls {
		t.Errorf("terminal polls hit the API %d extra times", client.getCalls-calls)
	}
}

func TestWaitUntilCompleteReachesTerminal(t *testing.T) {
	client := newFakeClient()
	client.addProject("p1", "PROCESSING", "PROCESSING", "COMPLETE")
	svc := NewDubService(client, nil, nil, "")

	js, err := svc.WaitUntilComplete(context.Background(), "p1", 5*time.Millisecond, time.Second)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if js.Status != dubbing.StatusCompleted {
		t.Errorf("status = %q, want completed", js.Status)
	}
}

func TestWaitUntilCompleteImmediateTerminal(t *testing.T) {
	client := newFakeClient()
	client.addProject("p1", "FAILED")
	svc := NewDubService(client, nil, nil, "")

	js, err := svc.WaitUntilComplete(context.Background(), "p1", time.Hour, time.Hour)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if js.Status != dubbing.StatusFailed {
		t.Errorf("status = %q, want failed", js.Status)
	}
}

func TestWaitUntilCompleteTimeout(t *testing.T) {
	client := newFakeClient()
	client.addProject("p1", "PROCESSING")
	svc := NewDubService(client, nil, nil, "")

	_, err := svc.WaitUntilComplete(context.Background(), "p1", 5*time.Millisecond, 25*time.Millisecond)
	var toErr *dubbing.TimeoutError
	if !errors.As(err, &toErr) {
		t.Fatalf("want TimeoutError, got %v", err)
	}
	if toErr.LastStatus.Status != dubbing.StatusProcessing {
		t.Errorf("last status = %q, want processing", toErr.LastStatus.Status)
	}
}

func TestWaitUntilCompleteRidesOutTransientErrors(t *testing.T) {
	client := newFakeClient()
	client.addProject("p1", "COMPLETE")
	client.pollErr = &dubbing.TransientNetworkError{Err: errors.New("connection reset")}
	svc := NewDubService(client, nil, nil, "")

	done := make(chan struct{})
	go func() {
		time.Sleep(15 * time.Millisecond)
		client.mu.Lock()
		client.pollErr = nil
		client.mu.Unlock()
		close(done)
	}()

	js, err := svc.WaitUntilComplete(context.Background(), "p1", 5*time.Millisecond, time.Second)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if js.Status != dubbing.StatusCompleted {
		t.Errorf("status = %q, want completed", js.Status)
	}
	<-done
}

func TestWaitUntilCompleteCancellation(t *testing.T) {
	client := newFakeClient()
	client.addProject("p1", "PROCESSING")
	svc := NewDubService(client, nil, nil, "")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := svc.WaitUntilComplete(ctx, "p1", 5*time.Millisecond, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestDownloadResultBeforeCompletion(t *testing.T) {
	client := newFakeClient()
	client.addProject("p1", "PROCESSING")
	svc := NewDubService(client, nil, nil, "")

	_, err := svc.DownloadResult(context.Background(), "p1", t.TempDir())
	var stErr *dubbing.InvalidStateError
	if !errors.As(err, &stErr) {
		t.Fatalf("want InvalidStateError, got %v", err)
	}
}

func TestFullLifecycle(t *testing.T) {
	client := newFakeClient()
	svc := NewDubService(client, nil, nil, "")
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, "Demo", "en", "es")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	mediaPath := writeMediaFile(t, t.TempDir(), "video.mp4")
	if _, err := svc.UploadMedia(ctx, project.ID, mediaPath); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := svc.StartDubbing(ctx, project.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if client.starts[project.ID] != 1 {
		t.Fatalf("start calls = %d", client.starts[project.ID])
	}

	client.mu.Lock()
	client.projects[project.ID].statuses = []string{"PROCESSING", "PROCESSING", "COMPLETE"}
	client.mu.Unlock()

	js, err := svc.WaitUntilComplete(ctx, project.ID, 5*time.Millisecond, 10*time.Second)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if js.Status != dubbing.StatusCompleted {
		t.Fatalf("status = %q", js.Status)
	}

	outDir := t.TempDir()
	result, err := svc.DownloadResult(ctx, project.ID, outDir)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if !strings.HasPrefix(result.Path, outDir+string(filepath.Separator)) {
		t.Errorf("result path %q not under %q", result.Path, outDir)
	}
	data, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	if string(data) != client.body {
		t.Errorf("result content = %q", data)
	}
	if result.Size != int64(len(client.body)) {
		t.Errorf("result size = %d", result.Size)
	}

	link, err := svc.GenerateShareLink(ctx, project.ID)
	if err != nil {
		t.Fatalf("share: %v", err)
	}
	if link.URL == "" || link.ProjectID != project.ID {
		t.Errorf("share link = %+v", link)
	}
}

func TestUploadAfterStartRejected(t *testing.T) {
	client := newFakeClient()
	client.addProject("p1")
	svc := NewDubService(client, nil, nil, "")
	ctx := context.Background()

	path := writeMediaFile(t, t.TempDir(), "video.mp4")
	if _, err := svc.UploadMedia(ctx, "p1", path); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := svc.StartDubbing(ctx, "p1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err := svc.UploadMedia(ctx, "p1", path)
	var stErr *dubbing.InvalidStateError
	if !errors.As(err, &stErr) {
		t.Fatalf("want InvalidStateError, got %v", err)
	}
}
