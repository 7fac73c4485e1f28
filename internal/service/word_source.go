package service

import (
	"context"

	"github.com/wfunc/mister-white/internal/game"
	"github.com/wfunc/mister-white/internal/repository"
)

// repoWordSource 把词库仓储适配成核心层的词条来源
type repoWordSource struct {
	words repository.WordRepository
}

// NewWordSource 创建数据库词条来源
func NewWordSource(words repository.WordRepository) game.WordSource {
	return &repoWordSource{words: words}
}

// QueryPairs 按难度和分类查询词对。
// limit<=0 表示不限，换算成一个足够大的抽样上限
func (s *repoWordSource) QueryPairs(ctx context.Context, difficulty game.Difficulty, category string, limit int) ([]game.WordPair, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.words.FindRandom(ctx, string(difficulty), category, limit)
	if err != nil {
		return nil, err
	}

	pairs := make([]game.WordPair, 0, len(rows))
	for _, row := range rows {
		pairs = append(pairs, game.WordPair{
			Civilian:   row.CivilianWord,
			Undercover: row.UndercoverWord,
			Category:   row.Category,
		})
	}
	return pairs, nil
}

// QueryCategories 查询去重后的分类列表
func (s *repoWordSource) QueryCategories(ctx context.Context, difficulty game.Difficulty) ([]string, error) {
	return s.words.FindCategories(ctx, string(difficulty))
}
