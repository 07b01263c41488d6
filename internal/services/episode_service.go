// internal/services/episode_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/Corphon/WonderBotsMCP/internal/errors"
	"github.com/Corphon/WonderBotsMCP/internal/models"
	"github.com/Corphon/WonderBotsMCP/internal/utils"
)

// MaxQuestionLength 问题文本的长度上限
const MaxQuestionLength = 200

// 生成链各阶段的采样参数
const (
	stageTemperature = 0.7
	stage1MaxTokens  = 4096
	stage2MaxTokens  = 16384
)

// EpisodeService 驱动两阶段生成链：大纲 -> 剧本
// 两个阶段严格串行，第二阶段依赖第一阶段的输出。
// 本服务自身不做持久化，持久化由LibraryService负责。
type EpisodeService struct {
	LLMService     *LLMService
	LibraryService *LibraryService
	VoiceService   *VoiceService
}

// NewEpisodeService 创建剧集生成服务
func NewEpisodeService(llmService *LLMService, libraryService *LibraryService, voiceService *VoiceService) *EpisodeService {
	return &EpisodeService{
		LLMService:     llmService,
		LibraryService: libraryService,
		VoiceService:   voiceService,
	}
}

// ValidateQuestion 在发起任何外部调用之前检查输入
func ValidateQuestion(question string) error {
	if question == "" {
		return apperrors.NewValidationError("问题不能为空", nil)
	}
	if len(question) > MaxQuestionLength {
		return apperrors.NewValidationError(
			fmt.Sprintf("问题过长（上限%d字符）", MaxQuestionLength), nil)
	}
	return nil
}

// GenerateEpisode 运行完整的两阶段生成链并返回校验过的剧集文档
// 任一阶段的解析失败都作为SchemaError直接返回，不自动重试，不落盘。
func (s *EpisodeService) GenerateEpisode(ctx context.Context, question string) (*models.Episode, error) {
	if err := ValidateQuestion(question); err != nil {
		return nil, err
	}

	logger := utils.GetLogger()
	t0 := time.Now()

	// 第一阶段：调研大纲
	logger.Info("第一阶段：生成大纲", map[string]interface{}{"question": question})

	var outline models.EpisodeOutline
	err := s.LLMService.CreateStructuredCompletion(ctx,
		fmt.Sprintf(stage1UserTemplate, question),
		stage1SystemPrompt,
		stageTemperature, stage1MaxTokens,
		&outline)
	if err != nil {
		return nil, err
	}
	if err := ValidateOutline(&outline); err != nil {
		return nil, err
	}

	logger.Info("第一阶段完成", map[string]interface{}{
		"elapsed_s": time.Since(t0).Seconds(),
		"concepts":  len(outline.KeyConcepts),
		"experts":   len(outline.Experts),
	})

	// 第二阶段：完整剧本，大纲重新序列化后作为输入
	t1 := time.Now()
	outlineJSON, err := json.MarshalIndent(&outline, "", "  ")
	if err != nil {
		return nil, apperrors.NewProcessingError("序列化大纲失败", err)
	}

	var episode models.Episode
	err = s.LLMService.CreateStructuredCompletion(ctx,
		fmt.Sprintf(stage2UserTemplate, string(outlineJSON)),
		stage2SystemPrompt,
		stageTemperature, stage2MaxTokens,
		&episode)
	if err != nil {
		return nil, err
	}
	if err := ValidateEpisode(&episode); err != nil {
		return nil, err
	}

	episode.Question = question
	episode.Slug = utils.Slugify(question)

	logger.Info("第二阶段完成", map[string]interface{}{
		"elapsed_s":    time.Since(t1).Seconds(),
		"total_s":      time.Since(t0).Seconds(),
		"total_scenes": episode.SceneCount(),
	})

	return &episode, nil
}

// GenerateOrReuse 先查缓存，命中带内容的记录就直接复用，
// 未命中才付费生成，生成后补齐音色映射并持久化。
// 同一slug的并发生成没有完全串行化：两边都可能先完成生成，
// 第二个Save静默落败——重复的是生成成本，持久化记录仍然只有一份。
func (s *EpisodeService) GenerateOrReuse(ctx context.Context, question string) (*models.Episode, bool, error) {
	if err := ValidateQuestion(question); err != nil {
		return nil, false, err
	}

	slug := utils.Slugify(question)

	// 复用检查：零幕的记录视为无效缓存，不满足复用
	staleRecord := false
	if existing, err := s.LibraryService.Load(slug); err == nil {
		if existing.HasActs() {
			utils.GetLogger().Info("命中剧集缓存", map[string]interface{}{"slug": slug})
			utils.NewPipelineMetrics().RecordGeneration(true, 0)
			return existing, true, nil
		}
		staleRecord = true
	}

	start := time.Now()
	episode, err := s.GenerateEpisode(ctx, question)
	if err != nil {
		return nil, false, err
	}

	utils.NewPipelineMetrics().RecordGeneration(false, time.Since(start))

	// 音色映射是Characters的纯函数，这里只是预先算好作为便利缓存
	episode.VoiceMap = s.VoiceService.AssignVoices(episode.Characters)

	// 正常走非覆盖的Save；slug上残留零幕的无效记录时就地升级，
	// 否则Save会静默落败，无效记录永远无法被替换
	if staleRecord {
		if err := s.LibraryService.WriteBack(slug, episode); err != nil {
			return nil, false, err
		}
	} else if err := s.LibraryService.Save(slug, episode); err != nil {
		return nil, false, err
	}

	// Save对已存在的记录是静默no-op，重新读取保证返回的是落盘的那份
	persisted, err := s.LibraryService.Load(slug)
	if err != nil {
		return episode, false, nil
	}
	return persisted, false, nil
}

// ValidateOutline 校验第一阶段输出的结构契约
func ValidateOutline(outline *models.EpisodeOutline) error {
	if n := len(outline.KeyConcepts); n < 2 || n > 3 {
		return apperrors.NewSchemaError(
			fmt.Sprintf("大纲应包含2-3个知识点，实际%d个", n), nil)
	}
	if n := len(outline.Experts); n != 2 {
		return apperrors.NewSchemaError(
			fmt.Sprintf("大纲应包含2位专家，实际%d位", n), nil)
	}
	if n := len(outline.Quizzes); n != 3 {
		return apperrors.NewSchemaError(
			fmt.Sprintf("大纲应包含3道测验，实际%d道", n), nil)
	}
	for i, quiz := range outline.Quizzes {
		if err := validateQuizOptions(quiz.Options); err != nil {
			return apperrors.NewSchemaError(fmt.Sprintf("第%d道测验不合规", i+1), err)
		}
	}
	return nil
}

// ValidateEpisode 校验第二阶段输出的结构契约
// 显式校验取代对动态字段的投机访问：任何不符合都是SchemaError。
func ValidateEpisode(episode *models.Episode) error {
	if !episode.HasActs() {
		return apperrors.NewSchemaError("剧本没有任何幕", nil)
	}

	guides := 0
	for _, character := range episode.Characters {
		if character.Role == models.RoleGuide {
			guides++
		}
	}
	if guides < 3 {
		return apperrors.NewSchemaError(
			fmt.Sprintf("剧本应包含至少3位向导角色，实际%d位", guides), nil)
	}

	for actIdx, act := range episode.Acts {
		for sceneIdx, scene := range act.Scenes {
			switch scene.Type {
			case models.SceneTypeDialogue, models.SceneTypeExplanation:
				if scene.Character == "" {
					return apperrors.NewSchemaError(
						fmt.Sprintf("场景%s缺少角色", models.SceneKey(actIdx, sceneIdx)), nil)
				}
				if _, declared := episode.Characters[scene.Character]; !declared {
					return apperrors.NewSchemaError(
						fmt.Sprintf("场景%s的角色%q未在characters中声明",
							models.SceneKey(actIdx, sceneIdx), scene.Character), nil)
				}
				if scene.Emotion != "" && !models.ValidEmotions[scene.Emotion] {
					return apperrors.NewSchemaError(
						fmt.Sprintf("场景%s使用了未知情绪%q",
							models.SceneKey(actIdx, sceneIdx), scene.Emotion), nil)
				}
			case models.SceneTypeQuiz:
				if err := validateQuizOptions(scene.Options); err != nil {
					return apperrors.NewSchemaError(
						fmt.Sprintf("场景%s的测验不合规", models.SceneKey(actIdx, sceneIdx)), err)
				}
			}
		}
	}

	return nil
}

// validateQuizOptions 测验必须恰好3个选项且恰好1个正确
func validateQuizOptions(options []models.QuizOption) error {
	if len(options) != 3 {
		return fmt.Errorf("应有3个选项，实际%d个", len(options))
	}
	correct := 0
	for _, option := range options {
		if option.Correct {
			correct++
		}
	}
	if correct != 1 {
		return fmt.Errorf("应恰好1个正确选项，实际%d个", correct)
	}
	return nil
}
