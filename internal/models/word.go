package models

// WordPair 词条表（平民词与卧底词成对出现）
type WordPair struct {
	BaseModel
	Difficulty     string `gorm:"size:10;not null;index" json:"difficulty"` // easy, medium, hard
	Category       string `gorm:"size:50;index" json:"category"`
	CivilianWord   string `gorm:"size:100;not null" json:"civilian_word"`
	UndercoverWord string `gorm:"size:100;not null" json:"undercover_word"`
}

// TableName 指定表名
func (WordPair) TableName() string {
	return "word_pairs"
}
