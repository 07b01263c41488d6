// internal/stt/providers/whisper/whisper.go
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/Corphon/WonderBotsMCP/internal/stt"
)

func init() {
	stt.Register("whisper", func() stt.Transcriber {
		return &Transcriber{
			baseURL:      "https://api.groq.com/openai/v1",
			defaultModel: "whisper-large-v3-turbo",
		}
	})
}

// Transcriber Groq托管的Whisper转写后端（OpenAI兼容接口）
type Transcriber struct {
	apiKey       string
	baseURL      string
	defaultModel string
	client       *http.Client
}

func (t *Transcriber) Initialize(config map[string]string) error {
	apiKey, exists := config["api_key"]
	if !exists || apiKey == "" {
		return errors.New("whisper api密钥未提供")
	}

	t.apiKey = apiKey
	t.client = &http.Client{Timeout: 60 * time.Second}

	if model, exists := config["default_model"]; exists && model != "" {
		t.defaultModel = model
	}
	if baseURL, exists := config["base_url"]; exists && baseURL != "" {
		t.baseURL = baseURL
	}

	return nil
}

func (t *Transcriber) GetName() string {
	return "Whisper"
}

// Transcribe 转写音频为纯文本
func (t *Transcriber) Transcribe(ctx context.Context, req stt.TranscriptionRequest) (string, error) {
	if len(req.Audio) == 0 {
		return "", errors.New("音频为空")
	}

	filename := req.Filename
	if filename == "" {
		filename = "audio.webm"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(req.Audio); err != nil {
		return "", err
	}

	writer.WriteField("model", t.defaultModel)
	if req.Language != "" {
		writer.WriteField("language", req.Language)
	}
	if req.Prompt != "" {
		writer.WriteField("prompt", req.Prompt)
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		"POST",
		t.baseURL+"/audio/transcriptions",
		&body,
	)
	if err != nil {
		return "", err
	}

	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+t.apiKey)

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return "", fmt.Errorf("whisper api错误(%d): %s", httpResp.StatusCode, string(respBody))
	}

	var response struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&response); err != nil {
		return "", err
	}

	return response.Text, nil
}
