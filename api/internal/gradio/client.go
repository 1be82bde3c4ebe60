package gradio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"persona-selfie/api/internal/util"
)

var ErrInvalidResponse = errors.New("invalid response from image generation service")

type Options struct {
	Space string // "owner/name" на Hugging Face
	URL   string // явный адрес приложения, важнее Space
	Token string // HF token для приватных spaces

	HTTPClient *http.Client
}

// Client is a minimal Gradio HTTP API client (upload, call + SSE result, file download).
type Client struct {
	base   string
	prefix string
	token  string
	httpc  *http.Client
}

// NewHTTPClient bounds dialing and response headers only; the SSE result stream
// is bounded by the request context.
func NewHTTPClient(headerTimeout time.Duration) *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.DialContext = (&net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}).DialContext
	tr.TLSHandshakeTimeout = 10 * time.Second
	tr.ResponseHeaderTimeout = headerTimeout
	return &http.Client{Transport: tr}
}

// SpaceURL: "multimodalart/Ip-Adapter-FaceID" -> "https://multimodalart-ip-adapter-faceid.hf.space".
func SpaceURL(space string) (string, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(space), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", fmt.Errorf("bad space %q: want owner/name", space)
	}
	host := strings.ToLower(owner + "-" + name)
	host = strings.NewReplacer("_", "-", ".", "-").Replace(host)
	return "https://" + host + ".hf.space", nil
}

// Connect resolves the app URL and reads its config; an error means the backend is unavailable.
func Connect(ctx context.Context, opt Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opt.URL), "/")
	if base == "" {
		u, err := SpaceURL(opt.Space)
		if err != nil {
			return nil, err
		}
		base = u
	}
	httpc := opt.HTTPClient
	if httpc == nil {
		httpc = NewHTTPClient(30 * time.Second)
	}
	c := &Client{base: base, token: strings.TrimSpace(opt.Token), httpc: httpc}

	var cfg struct {
		Version   string `json:"version"`
		APIPrefix string `json:"api_prefix"`
	}
	if err := c.getJSON(ctx, base+"/config", &cfg); err != nil {
		return nil, fmt.Errorf("gradio config: %w", err)
	}
	c.prefix = strings.TrimRight(cfg.APIPrefix, "/")
	return c, nil
}

func (c *Client) BaseURL() string { return c.base }

func (c *Client) endpoint(p string) string { return c.base + c.prefix + p }

func (c *Client) newRequest(ctx context.Context, method, u string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		resp.Body.Close()
		return nil, fmt.Errorf("gradio %s %d: %s", req.URL.Path, resp.StatusCode, strings.TrimSpace(string(x)))
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}

// FileData: ссылка на файл в формате Gradio.
type FileData struct {
	Path     string   `json:"path"`
	URL      string   `json:"url,omitempty"`
	OrigName string   `json:"orig_name,omitempty"`
	MimeType string   `json:"mime_type,omitempty"`
	Meta     fileMeta `json:"meta"`
}

type fileMeta struct {
	Type string `json:"_type"`
}

func newFileData(path, name, mime string) FileData {
	return FileData{Path: path, OrigName: name, MimeType: mime, Meta: fileMeta{Type: "gradio.FileData"}}
}

// Upload sends a local file to the app and returns its server-side reference.
func (c *Client) Upload(ctx context.Context, path string) (FileData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileData{}, err
	}
	name := filepath.Base(path)
	mime := util.MIMEForPath(path)

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, name))
	h.Set("Content-Type", mime)
	part, err := w.CreatePart(h)
	if err != nil {
		return FileData{}, err
	}
	if _, err := part.Write(data); err != nil {
		return FileData{}, err
	}
	if err := w.Close(); err != nil {
		return FileData{}, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint("/upload"), body)
	if err != nil {
		return FileData{}, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := c.do(req)
	if err != nil {
		return FileData{}, err
	}
	defer resp.Body.Close()

	var paths []string
	if err := json.NewDecoder(resp.Body).Decode(&paths); err != nil {
		return FileData{}, fmt.Errorf("gradio upload: %w", err)
	}
	if len(paths) == 0 || paths[0] == "" {
		return FileData{}, fmt.Errorf("gradio upload: empty response")
	}
	return newFileData(paths[0], name, mime), nil
}

// Predict runs an endpoint and waits for the "complete" event.
func (c *Client) Predict(ctx context.Context, apiName string, data []any) ([]json.RawMessage, error) {
	api := strings.TrimPrefix(apiName, "/")
	payload, err := json.Marshal(map[string]any{"data": data})
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint("/call/"+api), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var ev struct {
		EventID string `json:"event_id"`
	}
	err = json.NewDecoder(resp.Body).Decode(&ev)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("gradio call: %w", err)
	}
	if ev.EventID == "" {
		return nil, fmt.Errorf("gradio call: no event_id")
	}

	req, err = c.newRequest(ctx, http.MethodGet, c.endpoint("/call/"+api+"/"+url.PathEscape(ev.EventID)), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err = c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return readResult(resp.Body)
}

// readResult разбирает SSE-поток: ждём event: complete или event: error.
func readResult(r io.Reader) ([]json.RawMessage, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), 8<<20)

	var event string
	var data strings.Builder
	flush := func() (bool, []json.RawMessage, error) {
		defer func() { event = ""; data.Reset() }()
		switch event {
		case "complete":
			var out []json.RawMessage
			if err := json.Unmarshal([]byte(data.String()), &out); err != nil {
				return true, nil, fmt.Errorf("gradio result: %w", err)
			}
			return true, out, nil
		case "error":
			msg := strings.TrimSpace(data.String())
			if msg == "" || msg == "null" {
				msg = "unknown error"
			}
			return true, nil, fmt.Errorf("gradio error: %s", msg)
		}
		return false, nil, nil
	}

	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if done, out, err := flush(); done {
				return out, err
			}
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	// поток закрылся без пустой строки после последнего события
	if done, out, err := flush(); done {
		return out, err
	}
	return nil, fmt.Errorf("gradio: stream ended without result")
}

// Download fetches an output file.
func (c *Client) Download(ctx context.Context, f FileData) ([]byte, error) {
	u := f.URL
	if u == "" {
		if f.Path == "" {
			return nil, fmt.Errorf("gradio download: empty file reference")
		}
		u = c.endpoint("/file=" + f.Path)
	}
	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
