package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/speechlab/dubkit/internal/dubbing"
)

const userAgent = "speechlab-go/0.1.0"

type SpeechlabClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewSpeechlabClient(baseURL, apiKey string, timeout time.Duration) *SpeechlabClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SpeechlabClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// ----------------------------------------------------
// Wire types
// ----------------------------------------------------

type projectResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
	Job       struct {
		Name           string `json:"name"`
		Status         string `json:"status"`
		SourceLanguage string `json:"sourceLanguage"`
		TargetLanguage string `json:"targetLanguage"`
	} `json:"job"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
	Translations   []struct {
		Language string `json:"language"`
		Dub      []struct {
			MergeStatus string `json:"mergeStatus"`
			Medias      []struct {
				ID            string `json:"id"`
				URI           string `json:"uri"`
				Category      string `json:"category"`
				ContentType   string `json:"contentType"`
				Format        string `json:"format"`
				OperationType string `json:"operationType"`
				PresignedURL  string `json:"presignedURL"`
			} `json:"medias"`
		} `json:"dub"`
	} `json:"translations"`
}

func (p *projectResponse) details() *dubbing.ProjectDetails {
	name := p.Name
	if p.Job.Name != "" {
		name = p.Job.Name
	}
	rawStatus := p.Job.Status
	if rawStatus == "" {
		rawStatus = p.Status
	}
	srcLang := p.SourceLanguage
	if p.Job.SourceLanguage != "" {
		srcLang = p.Job.SourceLanguage
	}
	tgtLang := p.TargetLanguage
	if p.Job.TargetLanguage != "" {
		tgtLang = p.Job.TargetLanguage
	}

	d := &dubbing.ProjectDetails{
		Project: dubbing.Project{
			ID:             p.ID,
			Name:           name,
			SourceLanguage: srcLang,
			TargetLanguage: tgtLang,
			Status:         dubbing.StatusFromAPI(rawStatus),
			CreatedAt:      parseTime(p.CreatedAt),
			UpdatedAt:      parseTime(p.UpdatedAt),
		},
		RawStatus: rawStatus,
	}

	for _, tr := range p.Translations {
		for _, dub := range tr.Dub {
			if d.MergeStatus == "" {
				d.MergeStatus = dub.MergeStatus
			}
			d.MediaCount += len(dub.Medias)
			for _, m := range dub.Medias {
				if m.OperationType == "OUTPUT" && m.PresignedURL != "" && d.OutputURL == "" {
					d.OutputURL = m.PresignedURL
				}
			}
		}
	}
	return d
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ----------------------------------------------------
// Operations
// ----------------------------------------------------

func (c *SpeechlabClient) CreateProjectAndDub(ctx context.Context, params dubbing.CreateProjectParams) (*dubbing.ProjectDetails, error) {
	body := map[string]any{
		"name":              params.Name,
		"sourceLanguage":    params.SourceLanguage,
		"targetLanguage":    params.TargetLanguage,
		"dubAccent":         params.TargetLanguage,
		"voiceMatchingMode": "source",
		"unitType":          "whiteGlove",
		"thirdPartyID":      "dubkit_" + uuid.NewString(),
	}

	reqBody, _ := json.Marshal(body)
	req, err := c.newRequest(ctx, http.MethodPost, "/projects/createProjectAndDub", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var pr projectResponse
	if err := c.doJSON(req, &pr); err != nil {
		return nil, err
	}

	log.Printf("[speechlab] project created id=%s name=%q", pr.ID, params.Name)
	return pr.details(), nil
}

func (c *SpeechlabClient) GetProject(ctx context.Context, projectID string) (*dubbing.ProjectDetails, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/projects/"+url.PathEscape(projectID)+"?expand=true", nil)
	if err != nil {
		return nil, err
	}

	var pr projectResponse
	if err := c.doJSON(req, &pr); err != nil {
		return nil, err
	}
	return pr.details(), nil
}

func (c *SpeechlabClient) ListProjects(ctx context.Context, limit, offset int) ([]dubbing.ProjectDetails, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	q.Set("expand", "true")

	req, err := c.newRequest(ctx, http.MethodGet, "/projects?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var list struct {
		Results []projectResponse `json:"results"`
	}
	if err := c.doJSON(req, &list); err != nil {
		return nil, err
	}

	out := make([]dubbing.ProjectDetails, 0, len(list.Results))
	for i := range list.Results {
		out = append(out, *list.Results[i].details())
	}
	return out, nil
}

func (c *SpeechlabClient) UploadMedia(ctx context.Context, projectID, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &dubbing.ValidationError{Field: "path", Message: err.Error()}
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("build multipart: %w", err)
	}
	size, err := io.Copy(part, f)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/projects/"+url.PathEscape(projectID)+"/upload", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	log.Printf("[speechlab] uploading %s (%s) to project %s",
		filepath.Base(path), humanize.Bytes(uint64(size)), projectID)

	if err := c.doJSON(req, nil); err != nil {
		return err
	}
	return nil
}

func (c *SpeechlabClient) StartDub(ctx context.Context, projectID string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/projects/"+url.PathEscape(projectID)+"/dub", nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, nil)
}

// DownloadURL resolves the presigned URL of the dubbed output. The
// expanded project view is checked first; the dedicated download
// endpoint is the fallback.
func (c *SpeechlabClient) DownloadURL(ctx context.Context, projectID string) (string, error) {
	details, err := c.GetProject(ctx, projectID)
	if err != nil {
		return "", err
	}
	if details.OutputURL != "" {
		return details.OutputURL, nil
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/projects/"+url.PathEscape(projectID)+"/download", nil)
	if err != nil {
		return "", err
	}

	var dl struct {
		URL string `json:"url"`
	}
	if err := c.doJSON(req, &dl); err != nil {
		return "", err
	}
	if dl.URL == "" {
		return "", &dubbing.NotFoundError{Resource: "download url for project " + projectID}
	}
	return dl.URL, nil
}

// Download fetches a presigned URL. No auth header: the URL is already
// signed and may point at a different host.
func (c *SpeechlabClient) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build download request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &dubbing.TransientNetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return 0, statusError(resp)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &dubbing.TransientNetworkError{Err: err}
	}
	return n, nil
}

func (c *SpeechlabClient) GenerateSharingLink(ctx context.Context, projectID string) (string, error) {
	reqBody, _ := json.Marshal(map[string]string{"projectId": projectID})
	req, err := c.newRequest(ctx, http.MethodPost, "/collaborations/generateSharingLink", bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var link struct {
		Link string `json:"link"`
	}
	if err := c.doJSON(req, &link); err != nil {
		return "", err
	}
	if link.Link == "" {
		return "", &dubbing.NotFoundError{Resource: "sharing link for project " + projectID}
	}
	return link.Link, nil
}

// ----------------------------------------------------

func (c *SpeechlabClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

// doJSON executes the request and decodes the body into out (skipped
// when out is nil). Non-2xx responses come back as typed errors.
func (c *SpeechlabClient) doJSON(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &dubbing.TransientNetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = resp.Status
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &dubbing.AuthError{Message: msg}
	case resp.StatusCode == http.StatusNotFound:
		return &dubbing.NotFoundError{Resource: msg}
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return &dubbing.ValidationError{Message: msg}
	case resp.StatusCode >= 500:
		return &dubbing.ServerError{StatusCode: resp.StatusCode, Message: msg}
	default:
		return fmt.Errorf("speechlab: unexpected status %d: %s", resp.StatusCode, msg)
	}
}
