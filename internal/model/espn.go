package model

// APIError ESPN 错误响应体（部分端点对无效资源返回 200 + error 字段）
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RefItem 引用条目：字段不是内联值，而是指向子资源的链接
type RefItem struct {
	Ref string `json:"$ref"`
}

// PagedRefs 分页集合响应（events 等列表端点）
// 翻页规则：持续请求 page = pageIndex + 1，直到 pageIndex == pageCount
type PagedRefs struct {
	Count     int       `json:"count"`
	PageIndex int       `json:"pageIndex"`
	PageSize  int       `json:"pageSize"`
	PageCount int       `json:"pageCount"`
	Items     []RefItem `json:"items"`
	Error     *APIError `json:"error,omitempty"`
}

// EventPayload 单场比赛详情
type EventPayload struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Date         string    `json:"date"` // ISO 格式，如 2020-02-16T19:00Z
	Venues       []RefItem `json:"venues"`
	Competitions []RefItem `json:"competitions"`
	Error        *APIError `json:"error,omitempty"`
}

// VenueAddress 赛道地址
type VenueAddress struct {
	City  string `json:"city"`
	State string `json:"state"`
}

// VenuePayload 赛道/场地详情
type VenuePayload struct {
	ID       string       `json:"id"`
	FullName string       `json:"fullName"`
	Address  VenueAddress `json:"address"`
	Length   float64      `json:"length"`
	Shape    string       `json:"shape"` // oval / road course 等
	Error    *APIError    `json:"error,omitempty"`
}

// VehicleInfo 车手当场的车辆信息
type VehicleInfo struct {
	Number       *string `json:"number"`
	Manufacturer *string `json:"manufacturer"`
	Team         *string `json:"team"`
}

// CompetitorPayload 单个参赛车手（competition 详情内嵌）
type CompetitorPayload struct {
	ID         string      `json:"id"`         // 车手ID（字符串数字）
	Order      *int        `json:"order"`      // 完赛名次，可能缺失
	StartOrder *int        `json:"startOrder"` // 发车名次，可能缺失
	Vehicle    VehicleInfo `json:"vehicle"`
	Statistics RefItem     `json:"statistics"` // 单场统计子资源引用
}

// CompetitionPayload 比赛详情（含全部参赛车手）
type CompetitionPayload struct {
	ID          string              `json:"id"`
	Competitors []CompetitorPayload `json:"competitors"`
	Error       *APIError           `json:"error,omitempty"`
}

// AthletePayload 车手详情
type AthletePayload struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	DisplayName string    `json:"displayName"`
	Error       *APIError `json:"error,omitempty"`
}

// StatValue 单个统计值；Value 缺失时为 nil（下游按“无数据”处理，不报错）
type StatValue struct {
	Name  string   `json:"name"`
	Value *float64 `json:"value"`
}

// StatCategory 统计分类（按 name 在全部分类里查找目标统计项）
type StatCategory struct {
	Name  string      `json:"name"`
	Stats []StatValue `json:"stats"`
}

// StatSplits splits 容器
type StatSplits struct {
	Categories []StatCategory `json:"categories"`
}

// StatsPayload 车手单场统计详情
type StatsPayload struct {
	Splits StatSplits `json:"splits"`
	Error  *APIError  `json:"error,omitempty"`
}

// StandingRecord 积分榜单条记录：$ref 指向车手，stats 为赛季汇总
type StandingRecord struct {
	Ref   string      `json:"$ref"`
	Stats []StatValue `json:"stats"`
}

// StandingEntry 积分榜条目（records[0] 为有效记录）
type StandingEntry struct {
	Records []StandingRecord `json:"records"`
}

// StandingsPayload 赛季积分榜响应
type StandingsPayload struct {
	Standings []StandingEntry `json:"standings"`
	Error     *APIError       `json:"error,omitempty"`
}

// FindStat 在全部分类中按名称查找统计值，取整数；找不到或值缺失返回 nil
func (s *StatsPayload) FindStat(name string) *int {
	for _, cat := range s.Splits.Categories {
		for _, st := range cat.Stats {
			if st.Name == name && st.Value != nil {
				v := int(*st.Value)
				return &v
			}
		}
	}
	return nil
}

// FindStatOrZero 在统计列表中按名称查找，缺失按 0 处理（积分榜语义）
func FindStatOrZero(stats []StatValue, name string) int {
	for _, st := range stats {
		if st.Name == name && st.Value != nil {
			return int(*st.Value)
		}
	}
	return 0
}
