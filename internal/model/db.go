package model

import (
	"time"

	"gorm.io/datatypes"
)

// Driver 车手（ID 为外部体育API分配的稳定ID，只增不删）
type Driver struct {
	ID          uint64    `gorm:"column:id;primaryKey;comment:外部车手ID"`
	FirstName   string    `gorm:"column:first_name;type:varchar(64);comment:名"`
	LastName    string    `gorm:"column:last_name;type:varchar(64);comment:姓"`
	DisplayName string    `gorm:"column:display_name;type:varchar(128);index;comment:展示名（身份匹配键）"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt   time.Time `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

// Track 赛道/场地（首次被比赛引用时懒加载，之后进程内缓存）
type Track struct {
	ID        uint64    `gorm:"column:id;primaryKey;comment:外部场地ID"`
	FullName  string    `gorm:"column:full_name;type:varchar(128);comment:全名"`
	City      string    `gorm:"column:city;type:varchar(64);comment:城市"`
	State     string    `gorm:"column:state;type:varchar(64);comment:州"`
	Length    float64   `gorm:"column:length;type:numeric(8,4);default:0;comment:赛道长度（英里）"`
	TrackType string    `gorm:"column:track_type;type:varchar(32);comment:赛道类型：oval/road course等"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

// Race 单场比赛（ID 为外部事件ID，字符串；已存在则跳过，幂等）
type Race struct {
	ID         string    `gorm:"column:id;primaryKey;type:varchar(64);comment:外部事件ID"`
	SeasonYear int       `gorm:"column:season_year;type:int;not null;index;comment:赛季年份"`
	Name       string    `gorm:"column:name;type:varchar(256);comment:比赛名称"`
	Date       time.Time `gorm:"column:date;type:timestamp;index;comment:比赛日期"`
	TrackID    *uint64   `gorm:"column:track_id;type:bigint;index;comment:关联赛道ID（场地解析失败时为空）"`
	RaceNum    int       `gorm:"column:race_num;type:int;comment:赛季内场次序号（从1开始）"`
	CreatedAt  time.Time `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
}

// RaceResult 单场比赛单个车手成绩；统计缺失用空指针表达（下游按0分处理，不报错）
type RaceResult struct {
	ID              uint64  `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	RaceID          string  `gorm:"column:race_id;type:varchar(64);not null;uniqueIndex:uk_result_race_driver;comment:比赛ID"`
	DriverID        uint64  `gorm:"column:driver_id;type:bigint;not null;uniqueIndex:uk_result_race_driver;comment:车手ID"`
	FinishPos       *int    `gorm:"column:finish_pos;type:int;comment:完赛名次"`
	StartPos        *int    `gorm:"column:start_pos;type:int;comment:发车名次"`
	LapsCompleted   *int    `gorm:"column:laps_completed;type:int;comment:完成圈数"`
	LapsLed         *int    `gorm:"column:laps_led;type:int;comment:领先圈数"`
	ChampionshipPts *int    `gorm:"column:championship_pts;type:int;comment:锦标赛积分"`
	BonusPts        *int    `gorm:"column:bonus_pts;type:int;comment:奖励积分"`
	PenaltyPts      *int    `gorm:"column:penalty_pts;type:int;comment:处罚积分"`
	CarNumber       *string `gorm:"column:car_number;type:varchar(8);comment:车号"`
	Manufacturer    *string `gorm:"column:manufacturer;type:varchar(32);comment:制造商"`
	Team            *string `gorm:"column:team;type:varchar(64);comment:车队"`
}

// SeasonStanding 赛季积分榜（独立聚合，来自单独端点；可变，按 driver+year 覆盖）
type SeasonStanding struct {
	ID              uint64 `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	DriverID        uint64 `gorm:"column:driver_id;type:bigint;not null;uniqueIndex:uk_standing_driver_year;comment:车手ID"`
	Year            int    `gorm:"column:year;type:int;not null;uniqueIndex:uk_standing_driver_year;comment:赛季年份"`
	Rank            int    `gorm:"column:rank;type:int;default:0;comment:排名"`
	Wins            int    `gorm:"column:wins;type:int;default:0;comment:胜场"`
	Top5            int    `gorm:"column:top5;type:int;default:0;comment:前五次数"`
	Top10           int    `gorm:"column:top10;type:int;default:0;comment:前十次数"`
	Poles           int    `gorm:"column:poles;type:int;default:0;comment:杆位数"`
	Starts          int    `gorm:"column:starts;type:int;default:0;comment:出赛数"`
	DNF             int    `gorm:"column:dnf;type:int;default:0;comment:未完赛数"`
	LapsLed         int    `gorm:"column:laps_led;type:int;default:0;comment:领先圈数"`
	ChampionshipPts int    `gorm:"column:championship_pts;type:int;default:0;comment:锦标赛积分"`
	BonusPts        int    `gorm:"column:bonus_pts;type:int;default:0;comment:奖励积分"`
	PenaltyPts      int    `gorm:"column:penalty_pts;type:int;default:0;comment:处罚积分"`
}

// PointsScale 幻想积分换算表（启动时播种，对计分运行不可变）
type PointsScale struct {
	Position  int    `gorm:"column:position;primaryKey;type:int;comment:名次"`
	ScaleType string `gorm:"column:scale_type;primaryKey;type:varchar(16);comment:类型：race/qualifying"`
	Points    int    `gorm:"column:points;type:int;not null;comment:积分"`
}

// FantasyScore 车手单场幻想得分；每个 (race, driver) 只写一次，已存在永不覆盖
type FantasyScore struct {
	ID              uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	RaceID          string    `gorm:"column:race_id;type:varchar(64);not null;uniqueIndex:uk_score_race_driver;comment:比赛ID"`
	DriverID        uint64    `gorm:"column:driver_id;type:bigint;not null;uniqueIndex:uk_score_race_driver;comment:车手ID"`
	QualifyingPts   int       `gorm:"column:qualifying_pts;type:int;default:0;comment:排位积分"`
	RacePts         int       `gorm:"column:race_pts;type:int;default:0;comment:正赛积分"`
	QualLeaderBonus int       `gorm:"column:qual_leader_bonus;type:int;default:0;comment:杆位奖励"`
	RaceLeaderBonus int       `gorm:"column:race_leader_bonus;type:int;default:0;comment:领圈王奖励"`
	TotalPts        int       `gorm:"column:total_pts;type:int;default:0;comment:总分"`
	CreatedAt       time.Time `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
}

// DriverSalary 车手身价（外部报价的时点快照；按 year+segment 整体替换）
type DriverSalary struct {
	ID       uint64 `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	DriverID uint64 `gorm:"column:driver_id;type:bigint;not null;uniqueIndex:uk_salary_driver_year_seg;comment:车手ID"`
	Year     int    `gorm:"column:year;type:int;not null;uniqueIndex:uk_salary_driver_year_seg;comment:年份"`
	Segment  int    `gorm:"column:segment;type:int;not null;uniqueIndex:uk_salary_driver_year_seg;comment:赛段编号"`
	Salary   int    `gorm:"column:salary;type:int;not null;comment:身价（美元）"`
}

// SegmentTrack 赛段赛道（每赛段4条有序赛道，用于圈定历史价值查询）
type SegmentTrack struct {
	ID         uint64 `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	Year       int    `gorm:"column:year;type:int;not null;uniqueIndex:uk_segment_year_num_pos;comment:年份"`
	SegmentNum int    `gorm:"column:segment_num;type:int;not null;uniqueIndex:uk_segment_year_num_pos;comment:赛段编号"`
	Position   int    `gorm:"column:position;type:int;not null;uniqueIndex:uk_segment_year_num_pos;comment:赛段内顺序（1-4）"`
	TrackID    uint64 `gorm:"column:track_id;type:bigint;not null;comment:赛道ID"`
	TrackName  string `gorm:"column:track_name;type:varchar(128);comment:赛道名称"`
	Slug       string `gorm:"column:slug;type:varchar(128);comment:赛道标识"`
}

// UnmatchedSalary 未匹配到车手的身价条目（不静默丢弃，留给人工核对）
type UnmatchedSalary struct {
	ID        uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	Name      string         `gorm:"column:name;type:varchar(128);not null;comment:抓取到的车手名"`
	Year      int            `gorm:"column:year;type:int;not null;comment:年份"`
	Segment   int            `gorm:"column:segment;type:int;not null;comment:赛段编号"`
	Salary    int            `gorm:"column:salary;type:int;not null;comment:身价（美元）"`
	Context   datatypes.JSON `gorm:"column:context;type:jsonb;comment:最接近候选与相似度，辅助人工核对"`
	CreatedAt time.Time      `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
}

// SyncRun 一次同步/装载运行的记录
type SyncRun struct {
	ID         uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	RunUUID    string         `gorm:"column:run_uuid;type:varchar(64);uniqueIndex;not null;comment:全局唯一ID"`
	Kind       string         `gorm:"column:kind;type:varchar(16);not null;comment:类型：races/standings/salaries"`
	StartYear  int            `gorm:"column:start_year;type:int;comment:起始年份"`
	EndYear    int            `gorm:"column:end_year;type:int;comment:结束年份"`
	Status     string         `gorm:"column:status;type:varchar(16);default:running;comment:状态：running/completed/failed"`
	Summary    datatypes.JSON `gorm:"column:summary;type:jsonb;comment:运行计数汇总"`
	StartedAt  time.Time      `gorm:"column:started_at;type:timestamp;default:now();comment:开始时间"`
	FinishedAt *time.Time     `gorm:"column:finished_at;type:timestamp;comment:结束时间"`
}

func (Driver) TableName() string          { return "drivers" }
func (Track) TableName() string           { return "tracks" }
func (Race) TableName() string            { return "races" }
func (RaceResult) TableName() string      { return "race_results" }
func (SeasonStanding) TableName() string  { return "season_standings" }
func (PointsScale) TableName() string     { return "points_scale" }
func (FantasyScore) TableName() string    { return "fantasy_scores" }
func (DriverSalary) TableName() string    { return "driver_salaries" }
func (SegmentTrack) TableName() string    { return "segment_tracks" }
func (UnmatchedSalary) TableName() string { return "unmatched_salaries" }
func (SyncRun) TableName() string         { return "sync_runs" }
