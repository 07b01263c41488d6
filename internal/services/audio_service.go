// internal/services/audio_service.go
package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	apperrors "github.com/Corphon/WonderBotsMCP/internal/errors"
	"github.com/Corphon/WonderBotsMCP/internal/models"
	"github.com/Corphon/WonderBotsMCP/internal/tts"
	"github.com/Corphon/WonderBotsMCP/internal/utils"
)

// 单场景的遍历结果
type sceneOutcome int

const (
	sceneCached sceneOutcome = iota // 已有缓存，跳过
	sceneGenerated                  // 本次合成成功
	sceneSkipped                    // 本次失败，留待下次续跑
)

// 整次遍历的结果
type passOutcome int

const (
	passCompleted passOutcome = iota // 正常走完全部场景
	passAborted                     // 遇到限流提前中止
)

// AudioService 逐场景增量填充的语音缓存层
// 按(幕序号-场景序号)寻址，只追加、写过的键永不覆盖——
// 既防止对合成后端重复计费，也保证回放的确定性。
// 合成严格按幕、场景顺序串行：限流中止策略要求有序遍历。
type AudioService struct {
	speaker tts.Speaker
	library *LibraryService
	voice   *VoiceService
	locks   *LockManager

	// 相邻合成请求之间的最小间隔（节流策略，不是正确性要求）
	pacing time.Duration
}

// NewAudioService 创建语音缓存服务
func NewAudioService(speaker tts.Speaker, library *LibraryService, voice *VoiceService, pacing time.Duration) *AudioService {
	return &AudioService{
		speaker: speaker,
		library: library,
		voice:   voice,
		locks:   NewLockManager(),
		pacing:  pacing,
	}
}

// SynthesizeMissing 为剧集所有缺失音频的合格场景合成语音
// 返回本次新生成的场景数。缓存已满时是一次完整跑完、报告0的no-op。
func (s *AudioService) SynthesizeMissing(ctx context.Context, episode *models.Episode) (int, error) {
	return s.SynthesizeMissingTracked(ctx, episode, nil)
}

// SynthesizeMissingTracked 同SynthesizeMissing，额外向tracker上报逐场景进度
// 同一剧集的并发调用在剧集锁上串行，防止对缺失场景重复计费
func (s *AudioService) SynthesizeMissingTracked(ctx context.Context, episode *models.Episode, tracker *ProgressTracker) (int, error) {
	if s.speaker == nil {
		return 0, apperrors.NewSynthesisError("语音合成后端未配置", nil)
	}

	if episode.Slug != "" {
		var generated int
		err := s.locks.ExecuteWithEpisodeLock(episode.Slug, func() error {
			// 调用方拿到的可能是过期副本，先把已落盘的缓存合并进来，
			// 避免对前一次遍历刚写入的场景重复合成
			if persisted, loadErr := s.library.Load(episode.Slug); loadErr == nil {
				if episode.AudioCache == nil {
					episode.AudioCache = make(map[string]string)
				}
				for key, audio := range persisted.AudioCache {
					if _, exists := episode.AudioCache[key]; !exists {
						episode.AudioCache[key] = audio
					}
				}
			}

			var innerErr error
			generated, innerErr = s.synthesizePass(ctx, episode, tracker)
			return innerErr
		})
		return generated, err
	}
	return s.synthesizePass(ctx, episode, tracker)
}

// synthesizePass 执行一次完整的按序合成遍历
func (s *AudioService) synthesizePass(ctx context.Context, episode *models.Episode, tracker *ProgressTracker) (int, error) {
	logger := utils.GetLogger()

	// 音色映射缺失时从Characters重新计算（它只是便利缓存，不是权威数据）
	if len(episode.VoiceMap) == 0 {
		episode.VoiceMap = s.voice.AssignVoices(episode.Characters)
	}
	if episode.AudioCache == nil {
		episode.AudioCache = make(map[string]string)
	}

	eligible := episode.EligibleSceneCount()
	generated := 0
	cached := 0
	visited := 0
	requested := false
	outcome := passCompleted
	var abortErr error

walk:
	for actIdx, act := range episode.Acts {
		for sceneIdx := range act.Scenes {
			scene := &act.Scenes[sceneIdx]
			if !scene.IsAudioEligible() {
				continue
			}
			visited++

			key := models.SceneKey(actIdx, sceneIdx)
			if _, exists := episode.AudioCache[key]; exists {
				cached++
				logger.Debug("场景已有缓存音频，跳过", map[string]interface{}{
					"slug": episode.Slug,
					"key":  key,
				})
				s.reportProgress(tracker, visited, eligible, "已缓存 "+key)
				continue
			}

			// 节流：与上一次合成请求保持最小间隔
			if requested {
				select {
				case <-time.After(s.pacing):
				case <-ctx.Done():
					outcome = passAborted
					abortErr = ctx.Err()
					break walk
				}
			}

			voice, mapped := episode.VoiceMap[scene.Character]
			if !mapped {
				voice = s.voice.DefaultVoice()
			}
			emotion := scene.Emotion
			if emotion == "" {
				emotion = models.DefaultEmotion
			}

			audio, err := s.speaker.Speak(ctx, scene.Text, voice, emotion)
			requested = true
			if err != nil {
				if tts.IsRateLimited(err) || apperrors.IsRateLimited(err) {
					// 限流升级为整体中止，避免对着被限流的后端继续撞
					logger.Warn("合成被限流，中止本次遍历", map[string]interface{}{
						"slug": episode.Slug, "scene": key,
					})
					outcome = passAborted
					abortErr = apperrors.NewRateLimitedError("合成后端限流，遍历已中止", err)
					break walk
				}

				// 普通失败只跳过当前场景，留给下次续跑
				logger.Warn("场景合成失败，跳过", map[string]interface{}{
					"slug": episode.Slug, "scene": key, "error": err.Error(),
				})
				s.reportProgress(tracker, visited, eligible, "跳过 "+key)
				continue
			}

			// 只追加：键一旦写入永不覆盖
			episode.AudioCache[key] = base64.StdEncoding.EncodeToString(audio)
			generated++
			s.reportProgress(tracker, visited, eligible, "已合成 "+key)
		}
	}

	// 无论完整走完还是提前中止，都把已取得的进展写回既有记录，
	// 留下一个一致、可续跑的状态
	if episode.Slug != "" {
		if err := s.library.WriteBack(episode.Slug, episode); err != nil {
			return generated, err
		}
	}

	logger.Info("语音遍历结束", map[string]interface{}{
		"slug":      episode.Slug,
		"generated": generated,
		"cached":    cached,
		"eligible":  eligible,
		"aborted":   outcome == passAborted,
	})
	utils.NewPipelineMetrics().RecordSynthesis(generated, cached, outcome == passAborted)

	if outcome == passAborted {
		return generated, abortErr
	}
	return generated, nil
}

// reportProgress 向可选的进度跟踪器上报
func (s *AudioService) reportProgress(tracker *ProgressTracker, done, total int, message string) {
	if tracker == nil || total == 0 {
		return
	}
	tracker.UpdateProgress(done*100/total, fmt.Sprintf("%s (%d/%d)", message, done, total))
}
