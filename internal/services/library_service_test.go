// internal/services/library_service_test.go
package services

import (
	"encoding/base64"
	"testing"

	apperrors "github.com/Corphon/WonderBotsMCP/internal/errors"
	"github.com/Corphon/WonderBotsMCP/internal/models"
	"github.com/Corphon/WonderBotsMCP/internal/storage"
)

func newTestLibrary(t *testing.T) *LibraryService {
	t.Helper()

	fs, err := storage.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("创建测试存储失败: %v", err)
	}
	return NewLibraryService(fs)
}

func sampleEpisode(question string) *models.Episode {
	return &models.Episode{
		EpisodeID:     "ep-001",
		Question:      question,
		AnswerSummary: "because of light scattering",
		Characters: map[string]models.CharacterProfile{
			"nova": {ID: "nova", Name: "Nova", Role: models.RoleGuide},
		},
		Acts: []models.Act{
			{
				Act:   1,
				Title: "The Question",
				Scenes: []models.Scene{
					{Type: models.SceneTypeDialogue, Character: "nova", Emotion: "excited", Text: "Great question!"},
					{Type: models.SceneTypeQuiz, Question: "What scatters light?"},
				},
			},
		},
	}
}

// TestSaveAndLoad 保存后读取应得到同一份内容
func TestSaveAndLoad(t *testing.T) {
	lib := newTestLibrary(t)
	episode := sampleEpisode("Why is the sky blue?")

	if err := lib.Save("why-is-the-sky-blue", episode); err != nil {
		t.Fatalf("保存剧集失败: %v", err)
	}

	loaded, err := lib.Load("why-is-the-sky-blue")
	if err != nil {
		t.Fatalf("读取剧集失败: %v", err)
	}
	if loaded.Question != episode.Question {
		t.Errorf("问题不一致: %q vs %q", loaded.Question, episode.Question)
	}
	if loaded.Slug != "why-is-the-sky-blue" {
		t.Errorf("读取的剧集应携带slug，实际%q", loaded.Slug)
	}
	if loaded.SceneCount() != 2 {
		t.Errorf("场景数不一致: 期望2，实际%d", loaded.SceneCount())
	}
}

// TestSaveNonOverwrite Save对已有slug是静默no-op，原记录保持不变
func TestSaveNonOverwrite(t *testing.T) {
	lib := newTestLibrary(t)

	first := sampleEpisode("Why is the sky blue?")
	if err := lib.Save("sky", first); err != nil {
		t.Fatalf("首次保存失败: %v", err)
	}

	second := sampleEpisode("Why is the sky blue?")
	second.AnswerSummary = "a competing answer"
	if err := lib.Save("sky", second); err != nil {
		t.Fatalf("重复保存应静默成功，实际失败: %v", err)
	}

	loaded, err := lib.Load("sky")
	if err != nil {
		t.Fatalf("读取剧集失败: %v", err)
	}
	if loaded.AnswerSummary != first.AnswerSummary {
		t.Errorf("原记录被覆盖: %q", loaded.AnswerSummary)
	}
}

// TestWriteBackOverwrites WriteBack是唯一被允许的覆盖路径
func TestWriteBackOverwrites(t *testing.T) {
	lib := newTestLibrary(t)

	episode := sampleEpisode("Why do volcanoes erupt?")
	if err := lib.Save("volcano", episode); err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	episode.AudioCache = map[string]string{
		"0-0": base64.StdEncoding.EncodeToString([]byte("mp3-bytes")),
	}
	if err := lib.WriteBack("volcano", episode); err != nil {
		t.Fatalf("回写失败: %v", err)
	}

	loaded, err := lib.Load("volcano")
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if len(loaded.AudioCache) != 1 {
		t.Errorf("回写的音频缓存丢失: %v", loaded.AudioCache)
	}
}

// TestLoadMissing 缺失的slug返回NotFoundError
func TestLoadMissing(t *testing.T) {
	lib := newTestLibrary(t)

	_, err := lib.Load("does-not-exist")
	if err == nil {
		t.Fatal("读取不存在的剧集应返回错误")
	}
	if !apperrors.IsNotFoundError(err) {
		t.Errorf("错误类型应为NotFound，实际%v", err)
	}
}

// TestList 列表返回摘要并跳过不可读文件
func TestList(t *testing.T) {
	lib := newTestLibrary(t)

	if err := lib.Save("sky", sampleEpisode("Why is the sky blue?")); err != nil {
		t.Fatalf("保存失败: %v", err)
	}
	if err := lib.Save("volcano", sampleEpisode("Why do volcanoes erupt?")); err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	summaries, err := lib.List()
	if err != nil {
		t.Fatalf("枚举失败: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("期望2条摘要，实际%d", len(summaries))
	}
	for _, summary := range summaries {
		if summary.Slug == "" || summary.Question == "" {
			t.Errorf("摘要缺少字段: %+v", summary)
		}
		if summary.SceneCount != 2 {
			t.Errorf("摘要场景数错误: %+v", summary)
		}
	}
}

// TestFetchAudio 取出缓存音频并解码，缺失键返回NotFoundError
func TestFetchAudio(t *testing.T) {
	lib := newTestLibrary(t)

	episode := sampleEpisode("Why is the sky blue?")
	episode.AudioCache = map[string]string{
		"0-0": base64.StdEncoding.EncodeToString([]byte("fake-mp3")),
	}
	if err := lib.Save("sky", episode); err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	audio, err := lib.FetchAudio("sky", "0-0")
	if err != nil {
		t.Fatalf("取音频失败: %v", err)
	}
	if string(audio) != "fake-mp3" {
		t.Errorf("音频内容不一致: %q", audio)
	}

	if _, err := lib.FetchAudio("sky", "9-9"); !apperrors.IsNotFoundError(err) {
		t.Errorf("缺失场景键应返回NotFound，实际%v", err)
	}
}
