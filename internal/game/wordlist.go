package game

// bundledWordTable 内置词表，远程词库不可用时的兜底数据源。
// 每组是一对相近但不同的词：平民词在前，卧底词在后。
var bundledWordTable = map[Difficulty][]WordPair{
	DifficultyEasy: {
		{Civilian: "苹果", Undercover: "梨", Category: "食物"},
		{Civilian: "包子", Undercover: "饺子", Category: "食物"},
		{Civilian: "可乐", Undercover: "雪碧", Category: "食物"},
		{Civilian: "猫", Undercover: "狗", Category: "动物"},
		{Civilian: "老虎", Undercover: "狮子", Category: "动物"},
		{Civilian: "牙刷", Undercover: "梳子", Category: "日常"},
		{Civilian: "雨伞", Undercover: "雨衣", Category: "日常"},
		{Civilian: "足球", Undercover: "篮球", Category: "运动"},
		{Civilian: "游泳", Undercover: "跑步", Category: "运动"},
		{Civilian: "火车", Undercover: "地铁", Category: "交通"},
	},
	DifficultyMedium: {
		{Civilian: "医生", Undercover: "护士", Category: "职业"},
		{Civilian: "警察", Undercover: "保安", Category: "职业"},
		{Civilian: "老师", Undercover: "教练", Category: "职业"},
		{Civilian: "电影院", Undercover: "剧院", Category: "地点"},
		{Civilian: "图书馆", Undercover: "书店", Category: "地点"},
		{Civilian: "婚礼", Undercover: "生日宴", Category: "场合"},
		{Civilian: "小提琴", Undercover: "吉他", Category: "乐器"},
		{Civilian: "钢琴", Undercover: "手风琴", Category: "乐器"},
		{Civilian: "面膜", Undercover: "口罩", Category: "日常"},
		{Civilian: "快递", Undercover: "外卖", Category: "日常"},
	},
	DifficultyHard: {
		{Civilian: "回忆", Undercover: "梦境", Category: "抽象"},
		{Civilian: "谣言", Undercover: "秘密", Category: "抽象"},
		{Civilian: "习惯", Undercover: "瘾", Category: "抽象"},
		{Civilian: "沙漏", Undercover: "日晷", Category: "器物"},
		{Civilian: "灯塔", Undercover: "烽火台", Category: "器物"},
		{Civilian: "默契", Undercover: "巧合", Category: "抽象"},
		{Civilian: "影子", Undercover: "倒影", Category: "抽象"},
		{Civilian: "遗嘱", Undercover: "情书", Category: "书信"},
	},
}

// BundledWordPairs 导出内置词表，供数据库初始化播种
func BundledWordPairs() map[Difficulty][]WordPair {
	return bundledWordTable
}
