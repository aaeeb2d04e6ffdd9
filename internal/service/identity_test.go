package service

import (
	"testing"

	"RaceStatSync/internal/model"

	"github.com/stretchr/testify/require"
)

func TestRatcliffObershelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "完全一致", a: "Kyle Larson", b: "Kyle Larson", want: 1.0},
		{name: "大小写不敏感", a: "KYLE LARSON", b: "kyle larson", want: 1.0},
		{name: "递归匹配", a: "abcd", b: "bcde", want: 0.75},
		{name: "少一个字母", a: "Chase Elliot", b: "Chase Elliott", want: 0.96},
		{name: "少两个字母", a: "Chase Eliot", b: "Chase Elliott", want: 22.0 / 24.0},
		{name: "毫不相干", a: "xyz", b: "abc", want: 0.0},
		{name: "双空串", a: "", b: "", want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.InDelta(t, tt.want, ratcliffObershelp(tt.a, tt.b), 1e-9)
		})
	}
}

func TestMatchPicksBestCandidate(t *testing.T) {
	t.Parallel()

	drivers := []model.Driver{
		{ID: 1, DisplayName: "Kyle Busch"},
		{ID: 2, DisplayName: "Kyle Larson"},
		{ID: 3, DisplayName: "Chase Elliott"},
	}
	r := NewIdentityResolver(drivers, 0.78)

	got, ok := r.Match("Chase  Eliot")
	require.True(t, ok)
	require.Equal(t, uint64(3), got.DriverID)
	require.Equal(t, "Chase Elliott", got.FullName)
	require.InDelta(t, 22.0/24.0, got.Ratio, 1e-9)
}

func TestMatchBelowThresholdStillReturnsCandidate(t *testing.T) {
	t.Parallel()

	drivers := []model.Driver{
		{ID: 1, DisplayName: "Kyle Busch"},
		{ID: 2, DisplayName: "Denny Hamlin"},
	}
	r := NewIdentityResolver(drivers, 0.78)

	got, ok := r.Match("Jimmie Johnson")
	require.False(t, ok)
	require.NotNil(t, got)
	require.Less(t, got.Ratio, 0.78)
}

func TestMatchThresholdIsInclusive(t *testing.T) {
	t.Parallel()

	drivers := []model.Driver{{ID: 7, DisplayName: "Ryan Blaney"}}

	r := NewIdentityResolver(drivers, 0.78)
	r.similarity = func(a, b string) float64 { return 0.78 }
	_, ok := r.Match("whoever")
	require.True(t, ok)

	r.similarity = func(a, b string) float64 { return 0.7799 }
	_, ok = r.Match("whoever")
	require.False(t, ok)
}

func TestMatchTieKeepsFirstDriver(t *testing.T) {
	t.Parallel()

	drivers := []model.Driver{
		{ID: 11, DisplayName: "Austin Dillon"},
		{ID: 12, DisplayName: "Austin Cindric"},
	}
	r := NewIdentityResolver(drivers, 0.5)
	r.similarity = func(a, b string) float64 { return 0.9 }

	got, ok := r.Match("Austin Somebody")
	require.True(t, ok)
	require.Equal(t, uint64(11), got.DriverID)
}

func TestMatchEmptyInput(t *testing.T) {
	t.Parallel()

	r := NewIdentityResolver([]model.Driver{{ID: 1, DisplayName: "Kyle Busch"}}, 0.78)
	got, ok := r.Match("   ")
	require.False(t, ok)
	require.Nil(t, got)
}

func TestExtractSalaryLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []SalaryLine
	}{
		{
			name: "逗号分隔",
			text: "Kyle Larson, $28",
			want: []SalaryLine{{Name: "Kyle Larson", Salary: 28}},
		},
		{
			name: "连字符分隔",
			text: "Martin Truex Jr - $17",
			want: []SalaryLine{{Name: "Martin Truex Jr", Salary: 17}},
		},
		{
			name: "无分隔符",
			text: "Kyle O'Reilly $8",
			want: []SalaryLine{{Name: "Kyle O'Reilly", Salary: 8}},
		},
		{
			name: "姓名带后缀逗号",
			text: "Ricky Stenhouse Jr, $12",
			want: []SalaryLine{{Name: "Ricky Stenhouse Jr", Salary: 12}},
		},
		{
			name: "换行分隔并归一空白",
			text: "Denny Hamlin\n$23",
			want: []SalaryLine{{Name: "Denny Hamlin", Salary: 23}},
		},
		{
			name: "姓名带句点截断后不成行",
			text: "Martin Truex Jr. - $17",
			want: []SalaryLine{},
		},
		{
			name: "姓名内双空格不成行",
			text: "Kyle  Larson, $28",
			want: []SalaryLine{},
		},
		{
			name: "单词名不成行",
			text: "Larson $28",
			want: []SalaryLine{},
		},
		{
			name: "价格越界剔除",
			text: "Kyle Larson $0 Denny Hamlin $61 Chase Elliott $60 Ryan Blaney $1",
			want: []SalaryLine{{Name: "Chase Elliott", Salary: 60}, {Name: "Ryan Blaney", Salary: 1}},
		},
		{
			name: "同名取首次出现",
			text: "Kyle Larson, $28 ... Kyle Larson, $30",
			want: []SalaryLine{{Name: "Kyle Larson", Salary: 28}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ExtractSalaryLines(tt.text, 1, 60)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Kyle Larson", NormalizeName("  Kyle \n Larson "))
	require.Equal(t, "", NormalizeName("   "))
}
