package model

// SourceType 数据源类型枚举
type SourceType string

const (
	SourceESPN SourceType = "espn"
)

// 积分表类型（points_scale.scale_type）
const (
	ScaleRace       = "race"
	ScaleQualifying = "qualifying"
)

// SyncRun.Kind 取值
const (
	RunKindRaces     = "races"
	RunKindStandings = "standings"
	RunKindSalaries  = "salaries"
)

// SyncRun.Status 取值
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// 单场比赛统计项名称（splits.categories 内按 name 查找）
const (
	StatLapsCompleted   = "lapsCompleted"
	StatLapsLead        = "lapsLead"
	StatChampionshipPts = "championshipPts"
	StatBonus           = "bonus"
	StatPenaltyPts      = "penaltyPts"
)

// 赛季积分榜统计项名称
const (
	StatRank   = "rank"
	StatWins   = "wins"
	StatTop5   = "top5"
	StatTop10  = "top10"
	StatPoles  = "poles"
	StatStarts = "starts"
	StatDNF    = "dnf"
)
