package asr

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/net/http2"

	"github.com/JumpAttacker/JWhisper/internal/audio/wavfile"
	"github.com/JumpAttacker/JWhisper/internal/config"
	"github.com/JumpAttacker/JWhisper/internal/jsonpath"
)

// TempPrefix marks upload files so stale ones can be removed at startup.
const TempPrefix = "RecordTemp_"

const sampleRate = 16000

// HTTPEngine uploads utterances to an OpenAI-style transcription endpoint.
type HTTPEngine struct {
	cfg            config.Config
	httpClient     *http.Client
	extraConfigMap map[string]interface{}
	tempDir        string
	log            *slog.Logger
}

// NewHTTPEngine creates an engine and parses ExtraConfig.
func NewHTTPEngine(cfg config.Config, httpClient *http.Client) (*HTTPEngine, error) {
	if cfg.APIEndpoint == "" {
		return nil, fmt.Errorf("API endpoint is empty")
	}
	e := &HTTPEngine{
		cfg:        cfg,
		httpClient: httpClient,
		tempDir:    config.TempDir(&cfg),
		log:        slog.With("component", "upload"),
	}
	if cfg.ExtraConfig != "" {
		e.extraConfigMap = make(map[string]interface{})
		if err := json.Unmarshal([]byte(cfg.ExtraConfig), &e.extraConfigMap); err != nil {
			return nil, fmt.Errorf("invalid extra-config JSON: %w", err)
		}
	}
	if e.httpClient == nil {
		e.httpClient = NewHTTPClient(cfg)
	}
	return e, nil
}

// NewHTTPClient builds the shared client, with HTTP/2 and TLS verification per config.
func NewHTTPClient(cfg config.Config) *http.Client {
	tr := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if !cfg.VerifySSL {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if cfg.EnableHTTP2 {
		_ = http2.ConfigureTransport(tr)
	}
	return &http.Client{
		Transport: tr,
		Timeout:   time.Duration(cfg.RequestTimeout) * time.Second,
	}
}

// Transcribe encodes samples as WAV, uploads them once and parses the segments.
func (e *HTTPEngine) Transcribe(ctx context.Context, samples []float32, opts Options) (Segments, error) {
	wavPath := filepath.Join(e.tempDir, TempPrefix+strings.ReplaceAll(uuid.NewString(), "-", "")[:16]+".wav")
	if err := wavfile.Write(wavPath, samples, sampleRate); err != nil {
		return nil, err
	}
	defer os.Remove(wavPath)

	body, err := e.upload(ctx, wavPath, opts)
	if err != nil {
		return nil, err
	}
	return parseResponse(body, e.cfg.SegmentsPath, e.cfg.TEXTPath)
}

// Close releases idle connections.
func (e *HTTPEngine) Close() error {
	e.httpClient.CloseIdleConnections()
	return nil
}

func (e *HTTPEngine) upload(ctx context.Context, filePath string, opts Options) ([]byte, error) {
	if e.cfg.UPLOAD_DEBUG {
		e.log.Debug("uploading", "file", filePath, "endpoint", e.cfg.APIEndpoint)
	}
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("copy file: %w", err)
	}
	for k, v := range e.formFields(opts) {
		if err := writer.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.APIEndpoint, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if e.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.Token)
	}
	req.Header.Set("User-Agent", "jwhisper/1.0")

	start := time.Now()
	resp, err := e.httpClient.Do(req)
	if e.cfg.UPLOAD_DEBUG {
		e.log.Debug("request finished", "duration", time.Since(start))
	}
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: formatResponse(respBody)}
	}
	return respBody, nil
}

// formFields merges decoding options with ExtraConfig; ExtraConfig wins.
func (e *HTTPEngine) formFields(opts Options) map[string]string {
	base := make(map[string]interface{})
	if e.cfg.Model != "" {
		base["model"] = e.cfg.Model
	}
	if opts.Language != "" {
		base["language"] = opts.Language
	}
	if opts.Prompt != "" {
		base["prompt"] = opts.Prompt
	}
	base["temperature"] = float64(opts.Temperature)
	for k, v := range e.extraConfigMap {
		base[k] = v
	}

	out := make(map[string]string, len(base))
	for k, v := range base {
		switch val := v.(type) {
		case string:
			out[k] = val
		case bool:
			out[k] = strconv.FormatBool(val)
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			if b, err := json.Marshal(val); err == nil {
				out[k] = string(b)
			} else {
				out[k] = fmt.Sprintf("%v", val)
			}
		}
	}
	return out
}

// StatusError is a non-200 reply from the endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("asr endpoint returned %d: %s", e.Code, e.Body)
}

func parseResponse(body []byte, segmentsPath, textPath string) (Segments, error) {
	var root interface{}
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	lang, _ := jsonpath.ExtractByPath(root, "language")

	if texts, ok := jsonpath.ExtractTexts(root, segmentsPath); ok {
		segs := make([]Segment, len(texts))
		for i, t := range texts {
			segs[i] = Segment{Text: t, Language: lang}
		}
		return SliceSegments(segs), nil
	}
	text := jsonpath.ExtractTextFromResponse(body, textPath)
	return SliceSegments([]Segment{{Text: text, Language: lang}}), nil
}

func formatResponse(b []byte) string {
	if len(b) == 0 {
		return "<empty>"
	}
	const maxText = 1000
	const maxBin = 256

	if utf8.Valid(b) {
		s := string(b)
		if len(s) > maxText {
			return fmt.Sprintf("%s... (truncated, total %d bytes)", s[:maxText], len(b))
		}
		return s
	}

	if len(b) > maxBin {
		return fmt.Sprintf("<binary %d bytes, prefix hex: %s...>", len(b), hex.EncodeToString(b[:maxBin]))
	}
	return fmt.Sprintf("<binary %d bytes, hex: %s>", len(b), hex.EncodeToString(b))
}
