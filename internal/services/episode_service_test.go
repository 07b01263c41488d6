// internal/services/episode_service_test.go
package services

import (
	"context"
	"strings"
	"testing"

	apperrors "github.com/Corphon/WonderBotsMCP/internal/errors"
	"github.com/Corphon/WonderBotsMCP/internal/llm"
	"github.com/Corphon/WonderBotsMCP/internal/models"
	"github.com/Corphon/WonderBotsMCP/internal/storage"
)

// scriptedProvider 按调用顺序返回预置响应的LLM替身
type scriptedProvider struct {
	responses []string
	calls     int
	requests  []llm.CompletionRequest
}

func (p *scriptedProvider) Initialize(config map[string]string) error { return nil }

func (p *scriptedProvider) GetName() string { return "scripted" }

func (p *scriptedProvider) GetSupportedModels() []string { return []string{"test-model"} }

func (p *scriptedProvider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.requests = append(p.requests, req)
	if p.calls >= len(p.responses) {
		p.calls++
		return &llm.CompletionResponse{Text: "{}"}, nil
	}
	text := p.responses[p.calls]
	p.calls++
	return &llm.CompletionResponse{Text: text, ModelName: req.Model}, nil
}

const validOutlineJSON = `{
  "question": "Why is the sky blue?",
  "core_answer": "Sunlight scatters off air molecules.",
  "detailed_answer": "Blue light scatters more than red light.",
  "key_concepts": [
    {"concept": "light", "child_explanation": "light is made of colors", "real_terminology": "spectrum", "analogy": "a rainbow in a box", "advanced_detail": "wavelengths", "expert_index": 0},
    {"concept": "scattering", "child_explanation": "air bounces blue light around", "real_terminology": "Rayleigh scattering", "analogy": "pinballs", "advanced_detail": "shorter wavelengths scatter more", "expert_index": 1}
  ],
  "experts": [
    {"id": "dr_ray", "name": "Dr. Ray", "title": "Light Scientist", "personality": "cheerful", "expertise": "optics", "environment": "a light lab"},
    {"id": "prof_sky", "name": "Prof. Sky", "title": "Sky Watcher", "personality": "calm", "expertise": "atmosphere", "environment": "a mountaintop"}
  ],
  "environments": ["a light lab", "a mountaintop"],
  "quizzes": [
    {"after_expert": 0, "question": "What is light made of?", "options": [
      {"text": "Colors", "correct": true, "response": "Yes!"},
      {"text": "Water", "correct": false, "response": "Not quite."},
      {"text": "Sand", "correct": false, "response": "Try again!"}
    ]},
    {"after_expert": 1, "question": "Which color scatters most?", "options": [
      {"text": "Red", "correct": false, "response": "Nope."},
      {"text": "Blue", "correct": true, "response": "Exactly!"},
      {"text": "Green", "correct": false, "response": "Close!"}
    ]},
    {"after_expert": 1, "question": "What scatters the light?", "options": [
      {"text": "Clouds", "correct": false, "response": "Not quite."},
      {"text": "Air molecules", "correct": true, "response": "Right!"},
      {"text": "Birds", "correct": false, "response": "Silly!"}
    ]}
  ],
  "key_visuals": [],
  "episode_arc": "The guides visit two experts to learn why the sky is blue."
}`

const validEpisodeJSON = `{
  "episode_id": "ep-sky",
  "answer_summary": "Sunlight scatters off air molecules.",
  "characters": {
    "nova": {"id": "nova", "name": "Nova", "role": "guide"},
    "bolt": {"id": "bolt", "name": "Bolt", "role": "guide"},
    "pip": {"id": "pip", "name": "Pip", "role": "guide"},
    "dr_ray": {"id": "dr_ray", "name": "Dr. Ray", "role": "expert", "gender": "male"}
  },
  "acts": [
    {"act": 1, "title": "The Question", "scenes": [
      {"type": "dialogue", "character": "nova", "emotion": "excited", "text": "What a great question!"},
      {"type": "transition", "destination": "the light lab", "travel_mode": "rocket"},
      {"type": "explanation", "character": "dr_ray", "emotion": "explaining", "text": "Light is made of colors."},
      {"type": "quiz", "question": "What is light made of?", "options": [
        {"text": "Colors", "correct": true, "response": "Yes!"},
        {"text": "Water", "correct": false, "response": "Not quite."},
        {"text": "Sand", "correct": false, "response": "Try again!"}
      ]},
      {"type": "celebration", "text": "We solved it together!"}
    ]}
  ]
}`

func newTestEpisodeService(t *testing.T, provider llm.Provider) *EpisodeService {
	t.Helper()

	fs, err := storage.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("创建测试存储失败: %v", err)
	}
	llmService := NewLLMServiceWithProvider(provider, "test-model")
	return NewEpisodeService(llmService, NewLibraryService(fs), NewVoiceService())
}

// TestGenerateEpisodeTwoStages 完整两阶段链：大纲 -> 剧本
func TestGenerateEpisodeTwoStages(t *testing.T) {
	provider := &scriptedProvider{responses: []string{validOutlineJSON, validEpisodeJSON}}
	svc := newTestEpisodeService(t, provider)

	episode, err := svc.GenerateEpisode(context.Background(), "Why is the sky blue?")
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}

	if provider.calls != 2 {
		t.Errorf("应恰好发起2次LLM调用，实际%d", provider.calls)
	}
	if episode.Question != "Why is the sky blue?" {
		t.Errorf("问题未被设置: %q", episode.Question)
	}
	if episode.Slug != "why-is-the-sky-blue" {
		t.Errorf("slug错误: %q", episode.Slug)
	}
	if episode.SceneCount() != 5 {
		t.Errorf("场景数错误: %d", episode.SceneCount())
	}

	// 第二阶段的输入应包含第一阶段的大纲
	if !strings.Contains(provider.requests[1].Prompt, "Rayleigh scattering") {
		t.Error("第二阶段提示未包含大纲内容")
	}
	if provider.requests[0].MaxTokens >= provider.requests[1].MaxTokens {
		t.Error("第二阶段的token预算应大于第一阶段")
	}
}

// TestGenerateEpisodeFencedJSON 模型输出包裹markdown围栏时仍能解析
func TestGenerateEpisodeFencedJSON(t *testing.T) {
	fenced := "Here is the outline you asked for:\n```json\n" + validOutlineJSON + "\n```\nHope this helps!"
	provider := &scriptedProvider{responses: []string{fenced, "```json\n" + validEpisodeJSON + "\n```"}}
	svc := newTestEpisodeService(t, provider)

	if _, err := svc.GenerateEpisode(context.Background(), "Why is the sky blue?"); err != nil {
		t.Fatalf("围栏包裹的输出应能解析: %v", err)
	}
}

// TestGenerateEpisodeSchemaErrorNoRetry 不合规输出返回SchemaError且不自动重试
func TestGenerateEpisodeSchemaErrorNoRetry(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"this is not json at all"}}
	svc := newTestEpisodeService(t, provider)

	_, err := svc.GenerateEpisode(context.Background(), "Why is the sky blue?")
	if !apperrors.IsSchemaError(err) {
		t.Fatalf("期望SchemaError，实际%v", err)
	}
	if provider.calls != 1 {
		t.Errorf("SchemaError不应触发自动重试，调用次数%d", provider.calls)
	}
}

// TestGenerateEpisodeOutlineContract 大纲结构违约被拦截，不进入第二阶段
func TestGenerateEpisodeOutlineContract(t *testing.T) {
	// 只有1位专家的大纲
	bad := strings.Replace(validOutlineJSON,
		",\n    {\"id\": \"prof_sky\", \"name\": \"Prof. Sky\", \"title\": \"Sky Watcher\", \"personality\": \"calm\", \"expertise\": \"atmosphere\", \"environment\": \"a mountaintop\"}",
		"", 1)
	if bad == validOutlineJSON {
		t.Fatal("测试数据未被修改，无法构造违约大纲")
	}

	provider := &scriptedProvider{responses: []string{bad}}
	svc := newTestEpisodeService(t, provider)

	_, err := svc.GenerateEpisode(context.Background(), "Why is the sky blue?")
	if !apperrors.IsSchemaError(err) {
		t.Fatalf("专家数量违约应返回SchemaError，实际%v", err)
	}
	if provider.calls != 1 {
		t.Errorf("大纲违约后不应进入第二阶段，调用次数%d", provider.calls)
	}
}

// TestGenerateEpisodeUnknownEmotion 未知情绪是结构违约
func TestGenerateEpisodeUnknownEmotion(t *testing.T) {
	bad := strings.Replace(validEpisodeJSON, `"emotion": "excited"`, `"emotion": "furious"`, 1)
	provider := &scriptedProvider{responses: []string{validOutlineJSON, bad}}
	svc := newTestEpisodeService(t, provider)

	_, err := svc.GenerateEpisode(context.Background(), "Why is the sky blue?")
	if !apperrors.IsSchemaError(err) {
		t.Fatalf("未知情绪应返回SchemaError，实际%v", err)
	}
}

// TestGenerateEpisodeUndeclaredSpeaker 场景引用未声明角色是结构违约
func TestGenerateEpisodeUndeclaredSpeaker(t *testing.T) {
	bad := strings.Replace(validEpisodeJSON, `"character": "dr_ray"`, `"character": "ghost"`, 1)
	provider := &scriptedProvider{responses: []string{validOutlineJSON, bad}}
	svc := newTestEpisodeService(t, provider)

	_, err := svc.GenerateEpisode(context.Background(), "Why is the sky blue?")
	if !apperrors.IsSchemaError(err) {
		t.Fatalf("未声明角色应返回SchemaError，实际%v", err)
	}
}

// TestValidateQuestion 输入校验在任何外部调用之前
func TestValidateQuestion(t *testing.T) {
	provider := &scriptedProvider{}
	svc := newTestEpisodeService(t, provider)

	if _, err := svc.GenerateEpisode(context.Background(), ""); !apperrors.IsValidationError(err) {
		t.Errorf("空问题应返回ValidationError，实际%v", err)
	}
	if _, err := svc.GenerateEpisode(context.Background(), strings.Repeat("w", MaxQuestionLength+1)); !apperrors.IsValidationError(err) {
		t.Errorf("超长问题应返回ValidationError，实际%v", err)
	}
	if provider.calls != 0 {
		t.Errorf("校验失败不应发起LLM调用，调用次数%d", provider.calls)
	}
}

// TestGenerateOrReuseCacheHit 命中缓存直接复用，不发起生成调用
func TestGenerateOrReuseCacheHit(t *testing.T) {
	provider := &scriptedProvider{responses: []string{validOutlineJSON, validEpisodeJSON}}
	svc := newTestEpisodeService(t, provider)

	first, reused, err := svc.GenerateOrReuse(context.Background(), "Why is the sky blue?")
	if err != nil {
		t.Fatalf("首次生成失败: %v", err)
	}
	if reused {
		t.Error("首次生成不应报告复用")
	}
	if len(first.VoiceMap) == 0 {
		t.Error("生成后应补齐音色映射")
	}

	second, reused, err := svc.GenerateOrReuse(context.Background(), "Why is the sky blue?")
	if err != nil {
		t.Fatalf("复用失败: %v", err)
	}
	if !reused {
		t.Error("第二次调用应命中缓存")
	}
	if provider.calls != 2 {
		t.Errorf("复用不应发起额外LLM调用，总次数%d", provider.calls)
	}
	if second.EpisodeID != first.EpisodeID {
		t.Errorf("复用返回的剧集不一致: %q vs %q", second.EpisodeID, first.EpisodeID)
	}
}

// TestGenerateOrReuseInvalidCache 零幕记录视为无效缓存，触发重新生成
func TestGenerateOrReuseInvalidCache(t *testing.T) {
	provider := &scriptedProvider{responses: []string{validOutlineJSON, validEpisodeJSON}}
	svc := newTestEpisodeService(t, provider)

	// 预置一条没有内容的记录
	empty := &models.Episode{EpisodeID: "stale", Question: "Why is the sky blue?"}
	if err := svc.LibraryService.Save("why-is-the-sky-blue", empty); err != nil {
		t.Fatalf("预置失败: %v", err)
	}

	regenerated, reused, err := svc.GenerateOrReuse(context.Background(), "Why is the sky blue?")
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	if reused {
		t.Error("零幕记录不应被复用")
	}
	if provider.calls != 2 {
		t.Errorf("应触发完整生成链，调用次数%d", provider.calls)
	}

	// 无效记录被就地升级，返回和落盘的都是新生成的剧集
	if !regenerated.HasActs() {
		t.Error("返回的剧集应是新生成的完整版本")
	}
	persisted, err := svc.LibraryService.Load("why-is-the-sky-blue")
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if !persisted.HasActs() {
		t.Error("落盘记录应已被升级为完整版本")
	}
}
