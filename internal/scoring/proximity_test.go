package scoring

import (
	"math"
	"testing"

	"github.com/aagoldberg/far-mca-sub002/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }

func TestAdamicAdar_TwentyMutualsOfDegreeFifty(t *testing.T) {
	p := DefaultParams()
	degrees := make([]int, 20)
	for i := range degrees {
		degrees[i] = 50
	}

	weight := AdamicAdar(degrees) * AverageQuality(nil, nil, p.DefaultQuality)
	want := 20 * (1 / math.Log(50)) * 0.7
	if math.Abs(weight-want) > 1e-9 {
		t.Fatalf("expected weight %.4f, got %.4f", want, weight)
	}
	if math.Abs(weight-3.58) > 0.01 {
		t.Fatalf("expected weight ~3.58, got %.4f", weight)
	}

	distance := p.SocialDistance(weight, 0, false, false)
	if distance != 20 {
		t.Fatalf("expected base distance 20, got %d", distance)
	}
	if tier := p.RiskTier(weight, distance); tier != domain.RiskMedium {
		t.Fatalf("expected MEDIUM risk, got %s", tier)
	}
}

func TestMutualContribution_NonIncreasingInDegree(t *testing.T) {
	prev := MutualContribution(0)
	for degree := 1; degree <= 5000; degree++ {
		cur := MutualContribution(degree)
		if cur > prev {
			t.Fatalf("contribution increased from %.4f to %.4f at degree %d", prev, cur, degree)
		}
		prev = cur
	}
}

func TestMutualContribution_LowDegreeIsFlat(t *testing.T) {
	for _, degree := range []int{-1, 0, 1} {
		if got := MutualContribution(degree); got != 1.0 {
			t.Fatalf("degree %d: expected 1.0, got %f", degree, got)
		}
	}
}

func TestMutualContribution_CapOnlyAffectsDegreeTwo(t *testing.T) {
	if got := MutualContribution(2); got != 1.0 {
		t.Fatalf("degree 2: expected capped 1.0, got %f", got)
	}
	for _, degree := range []int{3, 50, 1000} {
		if got, want := MutualContribution(degree), 1/math.Log(float64(degree)); got != want {
			t.Fatalf("degree %d: expected 1/ln(d)=%f, got %f", degree, want, got)
		}
	}
}

func TestSocialDistance_Bands(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		name    string
		weight  float64
		overlap float64
		bf, vf  bool
		want    int
	}{
		{"nothing", 0, 0, false, false, 0},
		{"weight 1", 1, 0, false, false, 10},
		{"weight 2.5", 2.5, 0, false, false, 20},
		{"weight 5", 5, 0, false, false, 35},
		{"weight 10", 10, 0, false, false, 50},
		{"weight 20", 20, 0, false, false, 60},
		{"overlap at floor gets no bonus", 0, 10, false, false, 0},
		{"overlap above floor", 0, 10.5, false, false, 30},
		{"one way follow", 0, 0, true, false, 5},
		{"other way follow", 0, 0, false, true, 5},
		{"mutual follow", 0, 0, true, true, 10},
		{"everything is clamped", 50, 100, true, true, 100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.SocialDistance(tc.weight, tc.overlap, tc.bf, tc.vf); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestSocialDistance_AlwaysBounded(t *testing.T) {
	p := DefaultParams()
	for _, w := range []float64{-5, 0, 0.5, 3, 9, 19.9, 100, math.Inf(1)} {
		for _, o := range []float64{-1, 0, 11, 50, 100, 1000} {
			for _, follow := range [][2]bool{{false, false}, {true, false}, {true, true}} {
				d := p.SocialDistance(w, o, follow[0], follow[1])
				if d < 0 || d > 100 {
					t.Fatalf("distance %d out of range for w=%v o=%v", d, w, o)
				}
			}
		}
	}
}

func TestRiskTier(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		weight   float64
		distance int
		want     domain.RiskTier
	}{
		{9, 0, domain.RiskLow},
		{0, 60, domain.RiskLow},
		{2.5, 0, domain.RiskMedium},
		{0, 30, domain.RiskMedium},
		{8.99, 59, domain.RiskMedium},
		{2.49, 29, domain.RiskHigh},
		{0, 0, domain.RiskHigh},
	}
	for _, tc := range tests {
		if got := p.RiskTier(tc.weight, tc.distance); got != tc.want {
			t.Errorf("RiskTier(%v, %d) = %s, want %s", tc.weight, tc.distance, got, tc.want)
		}
	}
}

func TestQualityTierAndAverage(t *testing.T) {
	p := DefaultParams()
	if got := AverageQuality(floatPtr(0.9), nil, p.DefaultQuality); got != 0.7 {
		t.Fatalf("expected default quality when one side unknown, got %f", got)
	}
	if got := AverageQuality(floatPtr(0.2), floatPtr(1.4), p.DefaultQuality); got != 0.6 {
		t.Fatalf("expected clamped average 0.6, got %f", got)
	}
	if got := p.QualityTier(0.7); got != domain.QualityHigh {
		t.Fatalf("expected HIGH, got %s", got)
	}
	if got := p.QualityTier(0.4); got != domain.QualityMedium {
		t.Fatalf("expected MEDIUM, got %s", got)
	}
	if got := p.QualityTier(0.39); got != domain.QualityLow {
		t.Fatalf("expected LOW, got %s", got)
	}
}

func TestNetwork_MutualAndUnionAreSymmetric(t *testing.T) {
	a := NewNetwork([]int64{1, 2, 3, 4}, []int64{4, 5})
	b := NewNetwork([]int64{3, 4, 9}, nil)

	ab, ba := a.Mutual(b), b.Mutual(a)
	if len(ab) != 2 || len(ba) != 2 || ab[0] != 3 || ab[1] != 4 || ba[0] != 3 {
		t.Fatalf("unexpected mutuals %v / %v", ab, ba)
	}
	if a.UnionSize(b) != 6 || b.UnionSize(a) != 6 {
		t.Fatalf("expected union 6, got %d / %d", a.UnionSize(b), b.UnionSize(a))
	}
	if got := OverlapPercent(len(ab), a.UnionSize(b)); math.Abs(got-33.333) > 0.01 {
		t.Fatalf("expected ~33.33%% overlap, got %f", got)
	}
	if OverlapPercent(0, 0) != 0 {
		t.Fatalf("expected zero overlap for empty networks")
	}
}
