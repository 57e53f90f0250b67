package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"sorlens/internal/model"
)

// assessmentTagRe СОР / СОЧ（含拉丁形近字母、字母间空格或点）以及哈萨克语 БЖБ / ТЖБ、拉丁转写 SOR / SOCH
//
// 数字形近字 0/4 只在紧贴字母时接受（С0Ч、СО4），"с 04.10" 之类的日期不算。
var assessmentTagRe = regexp.MustCompile(
	`(?i)(?:^|[^\p{L}])(?:` +
		`[сc](?:[\s._]*[оo][\s._]*[рpч]|[\s._]*[оo]4|0[рpч])` +
		`|s[\s._]*o[\s._]*(?:r|ch)` +
		`|[бb][\s._]*ж[\s._]*[бb]` +
		`|[тt][\s._]*ж[\s._]*[бb]` +
		`)(?:[^\p{L}]|$)`,
)

// Lexicon 多语言关键词表
type Lexicon struct {
	Roles  map[model.ColumnRole][]string
	Levels []string
	// LevelQualifiers 层级词后允许紧跟的词，如 "Высокий уровень"
	LevelQualifiers []string
	HeaderHints     []string
	MissingMarkers  []string
}

// DefaultLexicon 默认词表（俄语 / 哈萨克语 / 英语）
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		Roles: map[model.ColumnRole][]string{
			model.RoleName:         {"фио", "ф.и.о", "фамилия", "аты-жөні", "аты жөні", "оқушы", "ученик", "учащийся", "student", "name"},
			model.RoleClass:        {"класс", "сынып", "группа", "class", "group"},
			model.RoleMark:         {"оценка", "отметка", "баға", "балл", "mark", "grade", "score"},
			model.RoleQualityPct:   {"качеств", "сапа", "quality"},
			model.RolePassPct:      {"успеваем", "үлгерім", "pass"},
			model.RoleCompleted:    {"выполнили", "выполнило", "орындағандар", "орындады", "написали", "completed"},
			model.RoleNotCompleted: {"не выполнили", "не выполнило", "орындамағандар", "орындамады", "не написали", "not completed"},
		},
		Levels:          []string{"низкий", "средний", "высокий", "төмен", "орта", "жоғары", "low", "medium", "high"},
		LevelQualifiers: []string{"уровень", "уровня", "деңгей", "деңгейі", "level"},
		HeaderHints:     []string{"%", "количество учащихся", "кол-во учащихся", "число учащихся", "оқушылар саны", "number of students"},
		MissingMarkers:  []string{"nan", "none", "null"},
	}
}

// Keywords 某角色的关键词
func (l *Lexicon) Keywords(role model.ColumnRole) []string {
	return l.Roles[role]
}

// Extend 追加关键词（来自配置）
func (l *Lexicon) Extend(role model.ColumnRole, words ...string) {
	for _, w := range words {
		if NormalizeLabel(w) == "" {
			continue
		}
		l.Roles[role] = append(l.Roles[role], w)
	}
}

// IsAssessmentLabel 文本是否带有评估标记（СОР/СОЧ 等）
func IsAssessmentLabel(s string) bool {
	return assessmentTagRe.MatchString(s)
}

// IsLevelLabel 单元格是否为层级标签
//
// 规范化后必须以层级词开头，其后为空、非字母字符或限定词（уровень/деңгей/level）。
// "Средний балл"、"Орташа көрсеткіш" 这类列名不算。
func (l *Lexicon) IsLevelLabel(s string) bool {
	t := NormalizeLabel(s)
	for _, lvl := range l.Levels {
		lvl = NormalizeLabel(lvl)
		if lvl == "" || !strings.HasPrefix(t, lvl) {
			continue
		}
		rest := t[len(lvl):]
		if rest == "" {
			return true
		}
		if r, _ := utf8.DecodeRuneInString(rest); r != ' ' {
			if !unicode.IsLetter(r) {
				return true
			}
			continue
		}
		rest = strings.TrimSpace(rest)
		if r, _ := utf8.DecodeRuneInString(rest); !unicode.IsLetter(r) {
			return true
		}
		word := strings.FieldsFunc(rest, func(r rune) bool { return !unicode.IsLetter(r) })[0]
		for _, q := range l.LevelQualifiers {
			if word == NormalizeLabel(q) {
				return true
			}
		}
	}
	return false
}
