package service

import (
	"regexp"
	"strconv"
	"strings"

	"RaceStatSync/internal/model"
)

// 身价行形如 "Kyle Larson, $28" 或 "Martin Truex Jr - $17"，
// 姓名至少两个词，价格取美元整数
var salaryLineRe = regexp.MustCompile(`([A-Z][a-zA-Z]+(?:[\s.\-'][a-zA-Z]+)+)\s*[,\-]?\s*\$(\d+)`)

// SalaryLine 从页面文本提取出的一条身价
type SalaryLine struct {
	Name   string
	Salary int
}

// MatchResult 身份匹配结果：命中的正名车手与相似度
type MatchResult struct {
	DriverID uint64  `json:"driver_id"`
	FullName string  `json:"full_name"`
	Ratio    float64 `json:"ratio"`
}

// IdentityResolver 车手身份解析器：把外部措辞的姓名归一到正名车手。
// 相似度达不到阈值时绝不自动认领，近似候选交由人工核对。
type IdentityResolver struct {
	drivers    []model.Driver
	threshold  float64
	similarity func(a, b string) float64
}

// NewIdentityResolver 基于正名车手清单创建解析器
func NewIdentityResolver(drivers []model.Driver, threshold float64) *IdentityResolver {
	return &IdentityResolver{
		drivers:    drivers,
		threshold:  threshold,
		similarity: ratcliffObershelp,
	}
}

// Match 全量扫描正名清单取最高相似度（同分保留先出现者），
// 返回最佳候选以及是否达到认领阈值
func (r *IdentityResolver) Match(name string) (*MatchResult, bool) {
	target := NormalizeName(name)
	if target == "" || len(r.drivers) == 0 {
		return nil, false
	}

	var best *MatchResult
	for i := range r.drivers {
		ratio := r.similarity(target, r.drivers[i].DisplayName)
		if best == nil || ratio > best.Ratio {
			best = &MatchResult{
				DriverID: r.drivers[i].ID,
				FullName: r.drivers[i].DisplayName,
				Ratio:    ratio,
			}
		}
	}
	return best, best.Ratio >= r.threshold
}

// ExtractSalaryLines 从页面可见文本提取身价行：
// 价格须落在 [minPrice, maxPrice] 内，同名只取首次出现
func ExtractSalaryLines(text string, minPrice, maxPrice int) []SalaryLine {
	matches := salaryLineRe.FindAllStringSubmatch(text, -1)
	seen := make(map[string]struct{}, len(matches))
	lines := make([]SalaryLine, 0, len(matches))
	for _, m := range matches {
		name := NormalizeName(m[1])
		price, err := strconv.Atoi(m[2])
		if err != nil || price < minPrice || price > maxPrice {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		lines = append(lines, SalaryLine{Name: name, Salary: price})
	}
	return lines
}

// NormalizeName 压掉多余空白，姓名统一为单空格分词
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// ratcliffObershelp 格式塔模式匹配相似度：2*M/T，
// M 为递归最长公共子串累计长度，T 为两串长度和，大小写不敏感
func ratcliffObershelp(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))
	total := len(ra) + len(rb)
	if total == 0 {
		return 0
	}
	return 2 * float64(matchingChars(ra, rb)) / float64(total)
}

func matchingChars(a, b []rune) int {
	ai, bi, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingChars(a[:ai], b[:bi]) +
		matchingChars(a[ai+size:], b[bi+size:])
}

// longestCommonBlock 最长公共子串（并列时取 a 中最早、再取 b 中最早的那个）
func longestCommonBlock(a, b []rune) (int, int, int) {
	bestA, bestB, bestSize := 0, 0, 0
	prev := make(map[int]int)
	for i := range a {
		cur := make(map[int]int)
		for j := range b {
			if a[i] != b[j] {
				continue
			}
			k := prev[j-1] + 1
			cur[j] = k
			if k > bestSize {
				bestA, bestB, bestSize = i-k+1, j-k+1, k
			}
		}
		prev = cur
	}
	return bestA, bestB, bestSize
}
