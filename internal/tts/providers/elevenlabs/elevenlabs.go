// internal/tts/providers/elevenlabs/elevenlabs.go
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Corphon/WonderBotsMCP/internal/tts"
)

func init() {
	tts.Register("elevenlabs", func() tts.Speaker {
		return &Speaker{
			baseURL: "https://api.elevenlabs.io/v1",
			modelID: "eleven_flash_v2_5",
			// flash v2.5单次请求的安全上限（字符数）
			maxTextLen: 2500,
		}
	})
}

// voiceSettings ElevenLabs音色调参
// ElevenLabs不支持显式的情绪指令，靠文本内容和stability调节表现力：
// stability越低越有表现力，越高越稳定。
type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// 情绪到音色参数的映射，键与剧本的8种情绪枚举一致
var emotionSettings = map[string]voiceSettings{
	"excited":    {Stability: 0.3, SimilarityBoost: 0.8},
	"happy":      {Stability: 0.4, SimilarityBoost: 0.75},
	"silly":      {Stability: 0.25, SimilarityBoost: 0.7},
	"surprised":  {Stability: 0.3, SimilarityBoost: 0.75},
	"explaining": {Stability: 0.55, SimilarityBoost: 0.8},
	"thinking":   {Stability: 0.5, SimilarityBoost: 0.8},
	"shy":        {Stability: 0.6, SimilarityBoost: 0.85},
	"neutral":    {Stability: 0.5, SimilarityBoost: 0.75},
}

// Speaker ElevenLabs语音合成后端，输出MP3字节
type Speaker struct {
	apiKey     string
	baseURL    string
	modelID    string
	maxTextLen int
	client     *http.Client
}

func (s *Speaker) Initialize(config map[string]string) error {
	apiKey, exists := config["api_key"]
	if !exists || apiKey == "" {
		return errors.New("elevenlabs api密钥未提供")
	}

	s.apiKey = apiKey
	s.client = &http.Client{Timeout: 30 * time.Second}

	if modelID, exists := config["model_id"]; exists && modelID != "" {
		s.modelID = modelID
	}
	if baseURL, exists := config["base_url"]; exists && baseURL != "" {
		s.baseURL = baseURL
	}

	return nil
}

func (s *Speaker) GetName() string {
	return "ElevenLabs"
}

// Speak 为一段台词合成语音
// 超过单次请求上限的文本会在句末标点处切分后逐段合成再拼接
func (s *Speaker) Speak(ctx context.Context, text, voiceID, emotion string) ([]byte, error) {
	if text == "" {
		return nil, &tts.SynthesisError{Message: "文本为空"}
	}

	settings, ok := emotionSettings[emotion]
	if !ok {
		settings = emotionSettings["neutral"]
	}

	chunks := tts.SplitText(text, s.maxTextLen)
	if len(chunks) == 1 {
		return s.speakChunk(ctx, chunks[0], voiceID, settings)
	}

	var combined bytes.Buffer
	for _, chunk := range chunks {
		audio, err := s.speakChunk(ctx, chunk, voiceID, settings)
		if err != nil {
			return nil, err
		}
		combined.Write(audio)
	}
	return combined.Bytes(), nil
}

func (s *Speaker) speakChunk(ctx context.Context, text, voiceID string, settings voiceSettings) ([]byte, error) {
	payload := map[string]interface{}{
		"text":           text,
		"model_id":       s.modelID,
		"voice_settings": settings,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		"POST",
		s.baseURL+"/text-to-speech/"+voiceID,
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", s.apiKey)

	httpResp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, &tts.SynthesisError{Message: err.Error()}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return nil, &tts.SynthesisError{
			StatusCode: httpResp.StatusCode,
			Message:    string(body),
		}
	}

	audio, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &tts.SynthesisError{Message: err.Error()}
	}
	return audio, nil
}
