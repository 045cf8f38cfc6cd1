package scorecard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/insights-service/internal/scorecard"
)

func str(s string) *string   { return &s }
func num(f float64) *float64 { return &f }

var testKeywords = scorecard.Keywords{
	Education:       []string{"研修", "教育", "資格取得支援", "学会", "セミナー"},
	WorkLifeBalance: []string{"育児休暇", "育休", "介護休暇", "時短", "フレックス", "リモート", "テレワーク"},
}

func TestParseHolidays(t *testing.T) {
	cases := []struct {
		name   string
		text   *string
		days   int
		status scorecard.TextStatus
	}{
		{"absent", nil, 0, scorecard.TextAbsent},
		{"no digits", str("土日祝休み"), 0, scorecard.TextUnparsed},
		{"empty", str(""), 0, scorecard.TextUnparsed},
		{"annual total", str("年間120日"), 120, scorecard.TextParsed},
		{"max of several", str("週休2日・年間休日120日"), 120, scorecard.TextParsed},
		{"paid leave picks larger", str("有給10日＋特別休暇5日"), 10, scorecard.TextParsed},
		{"full-width digits", str("年間休日１１５日"), 115, scorecard.TextParsed},
	}
	for _, c := range cases {
		got := scorecard.ParseHolidays(c.text)
		assert.Equal(t, c.status, got.Status, c.name)
		assert.Equal(t, c.days, got.Days, c.name)
	}
}

func TestHolidayScore(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"年間125日", 5},
		{"年間120日", 5},
		{"年間119日", 4},
		{"年間110日", 4},
		{"年間105日", 3},
		{"年間95日", 2},
		{"年間80日", 1},
		{"シフト制", 3},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, scorecard.HolidayScore(scorecard.ParseHolidays(str(c.text))), c.text)
	}
	assert.Equal(t, 3, scorecard.HolidayScore(scorecard.ParseHolidays(nil)))
}

func TestParseBenefits(t *testing.T) {
	got := scorecard.ParseBenefits(str("社会保険完備, 交通費支給, 退職金制度, 住宅手当"))
	assert.Equal(t, scorecard.TextParsed, got.Status)
	assert.Equal(t, []string{"社会保険完備", "交通費支給", "退職金制度", "住宅手当"}, got.Items)

	mixed := scorecard.ParseBenefits(str("賞与年2回，昇給あり、制服貸与\n\n 託児所あり ,,"))
	assert.Equal(t, []string{"賞与年2回", "昇給あり", "制服貸与", "託児所あり"}, mixed.Items)

	assert.Equal(t, scorecard.TextAbsent, scorecard.ParseBenefits(nil).Status)
	assert.Equal(t, scorecard.TextUnparsed, scorecard.ParseBenefits(str(" 、 ,\n")).Status)
}

func TestBenefitsScore(t *testing.T) {
	cases := []struct {
		text *string
		want int
	}{
		{str("社会保険完備, 交通費支給, 退職金制度, 住宅手当"), 3},
		{str("a,b,c,d,e,f,g,h"), 5},
		{str("a,b,c,d,e,f,g"), 4},
		{str("a,b,c,d,e,f"), 4},
		{str("a,b,c,d,e"), 3},
		{str("a,b,c"), 2},
		{str("a,b"), 2},
		{str("a"), 1},
		{str("   "), 1},
		{nil, 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, scorecard.BenefitsScore(scorecard.ParseBenefits(c.text)))
	}
}

func TestAccessScore(t *testing.T) {
	assert.Equal(t, 4, scorecard.AccessScore(num(0.8)))
	assert.Equal(t, 4, scorecard.AccessScore(num(5)))
	assert.Equal(t, 3, scorecard.AccessScore(num(5.1)))
	assert.Equal(t, 3, scorecard.AccessScore(num(10)))
	assert.Equal(t, 2, scorecard.AccessScore(num(25)))
	assert.Equal(t, 3, scorecard.AccessScore(nil))
}

func TestKeywordScores(t *testing.T) {
	s := scorecard.NewScorer(testKeywords)

	assert.Equal(t, 4, s.EducationScore(str("新人研修あり、社会保険完備")))
	assert.Equal(t, 4, s.EducationScore(str("学会参加費補助")))
	assert.Equal(t, 3, s.EducationScore(str("社会保険完備")))
	assert.Equal(t, 3, s.EducationScore(nil))

	assert.Equal(t, 4, s.WorkLifeBalanceScore(str("育休取得実績あり")))
	assert.Equal(t, 4, s.WorkLifeBalanceScore(str("フレックスタイム制")))
	assert.Equal(t, 3, s.WorkLifeBalanceScore(str("賞与年2回")))
}

func TestSalaryScore(t *testing.T) {
	pool := []float64{100, 200, 300, 400, 500, 600, 700, 800, 900, 1000}
	cases := []struct {
		midpoints []float64
		want      int
	}{
		{[]float64{1000}, 5}, // 90th
		{[]float64{900}, 5},  // 80th
		{[]float64{800}, 4},  // 70th
		{[]float64{600}, 4},  // 50th
		{[]float64{400}, 3},  // 30th
		{[]float64{300}, 2},  // 20th
		{[]float64{250, 350}, 2},
		{[]float64{100}, 1},
		{nil, 3},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, scorecard.SalaryScore(c.midpoints, pool), "midpoints %v", c.midpoints)
	}
	assert.Equal(t, 3, scorecard.SalaryScore([]float64{500}, nil))
}

func TestMidpoint(t *testing.T) {
	m, ok := scorecard.Midpoint(num(200000), num(300000))
	assert.True(t, ok)
	assert.Equal(t, 250000.0, m)

	m, ok = scorecard.Midpoint(nil, num(300000))
	assert.True(t, ok)
	assert.Equal(t, 300000.0, m)

	_, ok = scorecard.Midpoint(nil, nil)
	assert.False(t, ok)
}

func TestCombineTexts(t *testing.T) {
	assert.Nil(t, scorecard.CombineTexts(nil, nil))

	blank := scorecard.CombineTexts(nil, str("  "))
	require.NotNil(t, blank)
	assert.Equal(t, "", *blank)

	got := scorecard.CombineTexts(str("研修あり"), nil, str("研修あり"), str(" 育休あり "))
	require.NotNil(t, got)
	assert.Equal(t, "研修あり\n育休あり", *got)
}

func TestScore_EndToEnd(t *testing.T) {
	own := scorecard.Organization{
		ID:       "org",
		Benefits: str("社会保険完備, 交通費支給, 退職金制度, 住宅手当, 新人研修"),
		Holidays: str("年間休日120日"),
		Positions: []scorecard.Position{
			{ID: "p1", SalaryMin: num(250000), SalaryMax: num(310000)},
			{ID: "p2", SalaryMin: num(270000), SalaryMax: num(330000)},
		},
	}
	competitors := []scorecard.Competitor{
		{
			ID:         "c1",
			DistanceKm: num(3.2),
			Conditions: []scorecard.Condition{
				{SalaryMin: num(220000), SalaryMax: num(260000), Benefits: str("社会保険完備、育休あり"), Holidays: str("年間休日105日")},
				{HourlyRate: num(1400), Benefits: str("社会保険完備、育休あり")},
			},
		},
		{
			ID:         "c2",
			DistanceKm: num(12),
			Conditions: []scorecard.Condition{
				{SalaryMin: num(320000), SalaryMax: num(360000)},
			},
		},
	}

	pool := scorecard.SalaryPool(own, competitors)
	assert.ElementsMatch(t, []float64{280000, 300000, 240000, 340000}, pool)

	s := scorecard.NewScorer(testKeywords)
	res := s.Score(scorecard.OwnSide(own), scorecard.CompetitorSide(competitors[0]), pool)

	// own avg 290000: 2 of 4 below -> 50th -> 4
	assert.Equal(t, scorecard.Scores{
		Salary: 4, Holidays: 5, Benefits: 3, Access: 3, Education: 4, WorkLifeBalance: 3,
	}, res.OwnScores)
	// competitor avg 240000: none below -> 1
	assert.Equal(t, scorecard.Scores{
		Salary: 1, Holidays: 3, Benefits: 2, Access: 4, Education: 3, WorkLifeBalance: 4,
	}, res.CompetitorScores)

	radar := res.Radar()
	require.Len(t, radar, len(scorecard.Axes))
	assert.Equal(t, scorecard.RadarPoint{Axis: scorecard.AxisAccess, Own: 3, Competitor: 4}, radar[3])
}

func TestScore_NoDataDefaults(t *testing.T) {
	s := scorecard.NewScorer(testKeywords)
	res := s.Score(scorecard.Side{}, scorecard.Side{}, nil)

	want := scorecard.Scores{Salary: 3, Holidays: 3, Benefits: 1, Access: 3, Education: 3, WorkLifeBalance: 3}
	assert.Equal(t, want, res.OwnScores)
	assert.Equal(t, want, res.CompetitorScores)
}
