package game

import (
	"context"
	"math/rand"
	"strings"

	"github.com/wfunc/mister-white/internal/errors"
	"go.uber.org/zap"
)

// Difficulty 词条难度
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// CategoryAll 表示不按分类过滤
const CategoryAll = "all"

// ParseDifficulty 解析难度字符串
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(s)) {
	case DifficultyEasy:
		return DifficultyEasy, nil
	case DifficultyMedium:
		return DifficultyMedium, nil
	case DifficultyHard:
		return DifficultyHard, nil
	default:
		return "", errors.Newf(errors.ErrInvalidDifficulty, "难度: %s", s)
	}
}

// ShowsCategory 只有简单难度向玩家展示分类名
func (d Difficulty) ShowsCategory() bool {
	return d == DifficultyEasy
}

// WordPair 一组平民词/卧底词
type WordPair struct {
	Civilian   string `json:"civilian"`
	Undercover string `json:"undercover"`
	Category   string `json:"category"`
}

// WordSource 远程词库接口（数据库实现见 repository 包）
type WordSource interface {
	// QueryPairs 按难度（和可选分类）查询词对，limit<=0 表示不限
	QueryPairs(ctx context.Context, difficulty Difficulty, category string, limit int) ([]WordPair, error)
	// QueryCategories 查询去重后的分类列表
	QueryCategories(ctx context.Context, difficulty Difficulty) ([]string, error)
}

// WordSelector 词条选择器。
// 优先查询远程词库；查不到或出错时回退到内置词表，
// 回退只记日志，从不作为硬失败上抛。
type WordSelector struct {
	source      WordSource
	useDatabase bool
	log         *zap.Logger
}

// NewWordSelector 创建词条选择器
func NewWordSelector(source WordSource, useDatabase bool, log *zap.Logger) *WordSelector {
	return &WordSelector{
		source:      source,
		useDatabase: useDatabase && source != nil,
		log:         log,
	}
}

// SelectPair 选择一组词对。
// 同一种子总是得到同一回退词对，便于复现和测试。
func (s *WordSelector) SelectPair(ctx context.Context, difficulty Difficulty, category string, seed int64) (WordPair, error) {
	if _, err := ParseDifficulty(string(difficulty)); err != nil {
		return WordPair{}, err
	}

	if s.useDatabase {
		pairs, err := s.source.QueryPairs(ctx, difficulty, category, 0)
		if err == nil && len(pairs) > 0 {
			rng := rand.New(rand.NewSource(seed))
			return pairs[rng.Intn(len(pairs))], nil
		}
		if err != nil {
			s.log.Warn("远程词库查询失败，回退内置词表",
				zap.String("difficulty", string(difficulty)),
				zap.Error(err))
		} else {
			s.log.Warn("远程词库无匹配词条，回退内置词表",
				zap.String("difficulty", string(difficulty)),
				zap.String("category", category))
		}
	}

	return FallbackPair(difficulty, category, seed)
}

// PrefetchBatch 预取 n 组词对，供多轮游戏复用，避免每轮查询远程词库。
// 批内不重复；远程不足时用内置词表补齐。
func (s *WordSelector) PrefetchBatch(ctx context.Context, difficulty Difficulty, category string, n int, seed int64) ([]WordPair, error) {
	if _, err := ParseDifficulty(string(difficulty)); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = 1
	}

	if s.useDatabase {
		pairs, err := s.source.QueryPairs(ctx, difficulty, category, n)
		if err == nil && len(pairs) > 0 {
			rng := rand.New(rand.NewSource(seed))
			rng.Shuffle(len(pairs), func(i, j int) {
				pairs[i], pairs[j] = pairs[j], pairs[i]
			})
			if len(pairs) > n {
				pairs = pairs[:n]
			}
			if len(pairs) < n {
				pairs = topUpBatch(pairs, difficulty, category, n, seed)
			}
			return pairs, nil
		}
		if err != nil {
			s.log.Warn("远程词库批量查询失败，回退内置词表",
				zap.String("difficulty", string(difficulty)),
				zap.Error(err))
		}
	}

	return fallbackBatch(difficulty, category, n, seed)
}

// Categories 查询可用分类，远程失败时回退内置词表
func (s *WordSelector) Categories(ctx context.Context, difficulty Difficulty) ([]string, error) {
	if difficulty != "" {
		if _, err := ParseDifficulty(string(difficulty)); err != nil {
			return nil, err
		}
	}

	if s.useDatabase {
		categories, err := s.source.QueryCategories(ctx, difficulty)
		if err == nil && len(categories) > 0 {
			return categories, nil
		}
		if err != nil {
			s.log.Warn("远程分类查询失败，回退内置词表", zap.Error(err))
		}
	}

	return fallbackCategories(difficulty), nil
}

// FallbackPair 从内置词表确定性地选一组词对
func FallbackPair(difficulty Difficulty, category string, seed int64) (WordPair, error) {
	candidates := fallbackCandidates(difficulty, category)
	if len(candidates) == 0 {
		// 分类过滤后为空时放弃过滤重试
		candidates = fallbackCandidates(difficulty, CategoryAll)
	}
	if len(candidates) == 0 {
		return WordPair{}, errors.Newf(errors.ErrNoWordsAvailable, "难度: %s", difficulty)
	}

	rng := rand.New(rand.NewSource(seed))
	return candidates[rng.Intn(len(candidates))], nil
}

// topUpBatch 远程返回不足 n 组时用内置词表补齐，跳过已有词对
func topUpBatch(pairs []WordPair, difficulty Difficulty, category string, n int, seed int64) []WordPair {
	extra, err := fallbackBatch(difficulty, category, n, seed)
	if err != nil {
		return pairs
	}

	seen := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		seen[p.Civilian] = true
	}
	for _, p := range extra {
		if len(pairs) >= n {
			break
		}
		if seen[p.Civilian] {
			continue
		}
		pairs = append(pairs, p)
		seen[p.Civilian] = true
	}
	return pairs
}

// fallbackBatch 从内置词表组装不重复的一批词对
func fallbackBatch(difficulty Difficulty, category string, n int, seed int64) ([]WordPair, error) {
	candidates := fallbackCandidates(difficulty, category)
	if len(candidates) == 0 {
		candidates = fallbackCandidates(difficulty, CategoryAll)
	}
	if len(candidates) == 0 {
		return nil, errors.Newf(errors.ErrNoWordsAvailable, "难度: %s", difficulty)
	}

	shuffled := make([]WordPair, len(candidates))
	copy(shuffled, candidates)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if len(shuffled) > n {
		shuffled = shuffled[:n]
	}
	return shuffled, nil
}

// fallbackCandidates 按分类过滤内置词表
func fallbackCandidates(difficulty Difficulty, category string) []WordPair {
	table := bundledWordTable[difficulty]
	if category == "" || category == CategoryAll {
		return table
	}

	var filtered []WordPair
	for _, pair := range table {
		if pair.Category == category {
			filtered = append(filtered, pair)
		}
	}
	return filtered
}

// fallbackCategories 内置词表的去重分类列表
func fallbackCategories(difficulty Difficulty) []string {
	seen := make(map[string]bool)
	var categories []string

	appendFrom := func(d Difficulty) {
		for _, pair := range bundledWordTable[d] {
			if !seen[pair.Category] {
				seen[pair.Category] = true
				categories = append(categories, pair.Category)
			}
		}
	}

	if difficulty != "" {
		appendFrom(difficulty)
	} else {
		appendFrom(DifficultyEasy)
		appendFrom(DifficultyMedium)
		appendFrom(DifficultyHard)
	}
	return categories
}
