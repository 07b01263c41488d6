// internal/services/audio_service_test.go
package services

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	apperrors "github.com/Corphon/WonderBotsMCP/internal/errors"
	"github.com/Corphon/WonderBotsMCP/internal/models"
	"github.com/Corphon/WonderBotsMCP/internal/storage"
	"github.com/Corphon/WonderBotsMCP/internal/tts"
)

// fakeSpeaker 可编程的合成后端替身
type fakeSpeaker struct {
	calls   int
	failAt  int   // 第N次调用返回failErr（从1开始计数，0表示从不失败）
	failErr error
}

func (f *fakeSpeaker) Initialize(config map[string]string) error { return nil }

func (f *fakeSpeaker) GetName() string { return "fake" }

func (f *fakeSpeaker) Speak(ctx context.Context, text, voiceID, emotion string) ([]byte, error) {
	f.calls++
	if f.failAt > 0 && f.calls >= f.failAt {
		return nil, f.failErr
	}
	return []byte("audio:" + text), nil
}

func twoActEpisode() *models.Episode {
	return &models.Episode{
		EpisodeID: "ep-002",
		Question:  "Why do volcanoes erupt?",
		Characters: map[string]models.CharacterProfile{
			"nova":     {ID: "nova", Name: "Nova", Role: models.RoleGuide},
			"dr_magma": {ID: "dr_magma", Name: "Dr. Magma", Role: models.RoleExpert, Gender: "female"},
		},
		Acts: []models.Act{
			{
				Act:   1,
				Title: "The Question",
				Scenes: []models.Scene{
					{Type: models.SceneTypeDialogue, Character: "nova", Emotion: "excited", Text: "Volcanoes!"},
					{Type: models.SceneTypeTransition, Destination: "the volcano lab"},
				},
			},
			{
				Act:   2,
				Title: "The Expert",
				Scenes: []models.Scene{
					{Type: models.SceneTypeQuiz, Question: "What is magma?"},
					{Type: models.SceneTypeExplanation, Character: "dr_magma", Emotion: "explaining", Text: "Magma rises."},
				},
			},
		},
	}
}

func newTestAudioService(t *testing.T, speaker tts.Speaker) (*AudioService, *LibraryService) {
	t.Helper()

	fs, err := storage.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("创建测试存储失败: %v", err)
	}
	library := NewLibraryService(fs)
	return NewAudioService(speaker, library, NewVoiceService(), 0), library
}

// TestSynthesizeMissingFillsEligible 只合成合格场景，键按幕/场景序号寻址
func TestSynthesizeMissingFillsEligible(t *testing.T) {
	speaker := &fakeSpeaker{}
	audioService, library := newTestAudioService(t, speaker)

	episode := twoActEpisode()
	if err := library.Save("volcano", episode); err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	generated, err := audioService.SynthesizeMissing(context.Background(), episode)
	if err != nil {
		t.Fatalf("合成失败: %v", err)
	}
	if generated != 2 {
		t.Fatalf("期望合成2个场景，实际%d", generated)
	}

	// 第一幕第一场和第二幕第二场是仅有的合格场景
	if _, ok := episode.AudioCache["0-0"]; !ok {
		t.Error("缺少场景键0-0的缓存")
	}
	if _, ok := episode.AudioCache["1-1"]; !ok {
		t.Error("缺少场景键1-1的缓存")
	}
	if _, ok := episode.AudioCache["0-1"]; ok {
		t.Error("transition场景不应被合成")
	}
	if _, ok := episode.AudioCache["1-0"]; ok {
		t.Error("quiz场景不应被合成")
	}

	// 进展必须已回写到持久化记录
	persisted, err := library.Load("volcano")
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if len(persisted.AudioCache) != 2 {
		t.Errorf("回写后的缓存条目数错误: %d", len(persisted.AudioCache))
	}
}

// TestSynthesizeIdempotent 缓存已满时第二次运行是报告0的no-op
func TestSynthesizeIdempotent(t *testing.T) {
	speaker := &fakeSpeaker{}
	audioService, library := newTestAudioService(t, speaker)

	episode := twoActEpisode()
	if err := library.Save("volcano", episode); err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	if _, err := audioService.SynthesizeMissing(context.Background(), episode); err != nil {
		t.Fatalf("首次合成失败: %v", err)
	}
	firstCalls := speaker.calls

	generated, err := audioService.SynthesizeMissing(context.Background(), episode)
	if err != nil {
		t.Fatalf("第二次合成失败: %v", err)
	}
	if generated != 0 {
		t.Errorf("第二次运行应报告0，实际%d", generated)
	}
	if speaker.calls != firstCalls {
		t.Errorf("第二次运行不应发起合成调用: %d -> %d", firstCalls, speaker.calls)
	}
}

// TestSynthesizeRateLimitAborts 限流中止遍历，已取得的进展仍然落盘
func TestSynthesizeRateLimitAborts(t *testing.T) {
	speaker := &fakeSpeaker{
		failAt:  2,
		failErr: &tts.SynthesisError{StatusCode: 429, Message: "too many requests"},
	}
	audioService, library := newTestAudioService(t, speaker)

	episode := twoActEpisode()
	if err := library.Save("volcano", episode); err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	generated, err := audioService.SynthesizeMissing(context.Background(), episode)
	if err == nil {
		t.Fatal("限流应作为错误上报")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Type != apperrors.ErrorTypeRateLimited {
		t.Errorf("错误类型应为rate_limited，实际%v", err)
	}
	if generated != 1 {
		t.Errorf("中止前应已合成1个场景，实际%d", generated)
	}

	persisted, err := library.Load("volcano")
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if len(persisted.AudioCache) != 1 {
		t.Errorf("部分进展未落盘: %v", persisted.AudioCache)
	}
}

// TestSynthesizeSkipsTransientFailure 普通失败只跳过当前场景
func TestSynthesizeSkipsTransientFailure(t *testing.T) {
	speaker := &fakeSpeaker{
		failAt:  1,
		failErr: errors.New("connection reset"),
	}
	// 只在第1次失败，之后恢复
	audioService, library := newTestAudioService(t, &recoveringSpeaker{inner: speaker})

	episode := twoActEpisode()
	if err := library.Save("volcano", episode); err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	generated, err := audioService.SynthesizeMissing(context.Background(), episode)
	if err != nil {
		t.Fatalf("普通失败不应中止遍历: %v", err)
	}
	if generated != 1 {
		t.Errorf("应跳过失败场景并合成其余1个，实际%d", generated)
	}
	if _, ok := episode.AudioCache["0-0"]; ok {
		t.Error("失败的场景不应有缓存条目")
	}
	if _, ok := episode.AudioCache["1-1"]; !ok {
		t.Error("失败之后的场景仍应被合成")
	}
}

// recoveringSpeaker 包装fakeSpeaker，failAt之后的调用恢复成功
type recoveringSpeaker struct {
	inner *fakeSpeaker
}

func (r *recoveringSpeaker) Initialize(config map[string]string) error { return nil }

func (r *recoveringSpeaker) GetName() string { return "recovering" }

func (r *recoveringSpeaker) Speak(ctx context.Context, text, voiceID, emotion string) ([]byte, error) {
	r.inner.calls++
	if r.inner.calls == r.inner.failAt {
		return nil, r.inner.failErr
	}
	return []byte("audio:" + text), nil
}

// TestSynthesizeUnconfigured speaker缺失时返回SynthesisError
func TestSynthesizeUnconfigured(t *testing.T) {
	audioService, _ := newTestAudioService(t, nil)

	_, err := audioService.SynthesizeMissing(context.Background(), twoActEpisode())
	if !apperrors.IsSynthesisError(err) {
		t.Errorf("未配置后端应返回SynthesisError，实际%v", err)
	}
}

// TestSynthesizeCachedAudioDecodable 缓存值是base64编码的原始音频
func TestSynthesizeCachedAudioDecodable(t *testing.T) {
	speaker := &fakeSpeaker{}
	audioService, library := newTestAudioService(t, speaker)

	episode := twoActEpisode()
	if err := library.Save("volcano", episode); err != nil {
		t.Fatalf("保存失败: %v", err)
	}
	if _, err := audioService.SynthesizeMissing(context.Background(), episode); err != nil {
		t.Fatalf("合成失败: %v", err)
	}

	decoded, err := base64.StdEncoding.DecodeString(episode.AudioCache["0-0"])
	if err != nil {
		t.Fatalf("缓存值不是合法base64: %v", err)
	}
	if string(decoded) != "audio:Volcanoes!" {
		t.Errorf("解码后的音频内容不一致: %q", decoded)
	}
}
