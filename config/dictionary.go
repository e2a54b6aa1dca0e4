package config

// KeywordRule 触发词到关键词组的映射规则
type KeywordRule struct {
	Trigger  string   `yaml:"trigger"`
	Keywords []string `yaml:"keywords"`
}

// Dictionary 推荐引擎使用的静态词表。
// 在引擎构造时注入，之后只读。
type Dictionary struct {
	AssessmentRules []KeywordRule       `yaml:"assessment_rules"` // 测评结果触发词 -> 关键词组，按顺序匹配
	MoodKeywords    map[string][]string `yaml:"mood_keywords"`    // 情绪类型 -> 关键词组
	NegativeMoods   []string            `yaml:"negative_moods"`   // 需要重点关注的负面情绪类型
	StopWords       []string            `yaml:"stop_words"`
	Suffixes        []string            `yaml:"suffixes"`  // 关键词扩展时剥离的后缀
	Locations       []string            `yaml:"locations"` // 地名表，命中的词不做末尾裁剪
}

// DefaultDictionary 返回默认词表
func DefaultDictionary() Dictionary {
	return Dictionary{
		AssessmentRules: []KeywordRule{
			{Trigger: "焦虑", Keywords: []string{"焦虑", "紧张", "担忧", "恐慌"}},
			{Trigger: "抑郁", Keywords: []string{"抑郁", "情绪低落", "悲伤", "失落"}},
			{Trigger: "失眠", Keywords: []string{"失眠", "睡眠", "入睡困难", "睡眠障碍"}},
			{Trigger: "压力", Keywords: []string{"压力", "疲惫", "倦怠", "应激"}},
			{Trigger: "强迫", Keywords: []string{"强迫", "反复", "重复行为"}},
			{Trigger: "恐惧", Keywords: []string{"恐惧", "害怕", "回避"}},
		},
		MoodKeywords: map[string][]string{
			"Anxious": {"焦虑", "紧张", "担忧", "恐慌"},
			"Sad":     {"抑郁", "情绪低落", "悲伤", "失落"},
			"Angry":   {"愤怒", "情绪管理", "冲动控制"},
			"Tired":   {"压力", "疲惫", "倦怠", "失眠"},
			"Happy":   {"积极心理", "心理健康"},
			"Calm":    {"压力管理", "放松技巧"},
			"Excited": {"情绪管理", "情绪波动"},
		},
		NegativeMoods: []string{"Anxious", "Sad", "Angry", "Tired"},
		StopWords: []string{
			"的", "是", "在", "有", "和", "了", "不", "与", "中", "为", "对", "及",
			"个", "等", "但", "或", "从", "到", "而", "由", "也", "很", "就", "可能",
			"轻度", "中度", "重度", "严重", "明显", "症状", "状态", "情况", "程度",
		},
		Suffixes: []string{"症", "障碍", "问题", "情况", "状态", "情绪", "病", "感"},
		Locations: []string{
			"北京", "上海", "广州", "深圳", "天津", "重庆", "成都", "杭州", "武汉", "西安",
			"南京", "郑州", "长沙", "沈阳", "青岛", "大连", "宁波", "厦门", "济南", "哈尔滨",
			"苏州", "无锡", "福州", "石家庄", "昆明", "兰州", "太原", "合肥", "南昌", "贵阳",
			"南宁", "海口", "银川", "西宁", "呼和浩特", "乌鲁木齐", "拉萨", "线上", "在线",
		},
	}
}

// withDefaults 对未配置的词表使用默认值，配置文件中出现的词表整体替换默认值
func (d Dictionary) withDefaults() Dictionary {
	def := DefaultDictionary()
	if len(d.AssessmentRules) == 0 {
		d.AssessmentRules = def.AssessmentRules
	}
	if len(d.MoodKeywords) == 0 {
		d.MoodKeywords = def.MoodKeywords
	}
	if len(d.NegativeMoods) == 0 {
		d.NegativeMoods = def.NegativeMoods
	}
	if len(d.StopWords) == 0 {
		d.StopWords = def.StopWords
	}
	if len(d.Suffixes) == 0 {
		d.Suffixes = def.Suffixes
	}
	if len(d.Locations) == 0 {
		d.Locations = def.Locations
	}
	return d
}
