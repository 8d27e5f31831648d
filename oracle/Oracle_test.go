package oracle

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// newTestOracle returns an Oracle without smoothing so that advice at
// a step depends only on that step's attainable gain
func newTestOracle(t *testing.T) *Oracle {
	t.Helper()

	oracle, err := New(Config{
		Horizon:     4,
		Margin:      0.01,
		Window:      1,
		Temperature: 0.25,
	})
	if err != nil {
		t.Fatalf("could not create oracle: %v", err)
	}
	return oracle
}

func argMax(dist []float64) int {
	maxIndex := 0
	for i, p := range dist {
		if p > dist[maxIndex] {
			maxIndex = i
		}
	}
	return maxIndex
}

func TestAdviseShape(t *testing.T) {
	oracle := newTestOracle(t)
	prices := []float64{100, 101, 102, 103, 104}

	advice, err := oracle.Advise(prices)
	if err != nil {
		t.Fatalf("could not advise prices: %v", err)
	}

	rows, cols := advice.Dims()
	if rows != len(prices) {
		t.Errorf("unexpected number of advised steps \n\twant(%v)"+
			"\n\thave(%v)", len(prices), rows)
	}
	if cols != NumActions {
		t.Errorf("unexpected number of advised actions \n\twant(%v)"+
			"\n\thave(%v)", NumActions, cols)
	}
}

func TestAdviseRowsAreDistributions(t *testing.T) {
	oracle := newTestOracle(t)
	prices := []float64{100, 104, 96, 101, 99, 103}

	advice, err := oracle.Advise(prices)
	if err != nil {
		t.Fatalf("could not advise prices: %v", err)
	}

	rows, cols := advice.Dims()
	for i := 0; i < rows; i++ {
		total := 0.0
		for j := 0; j < cols; j++ {
			p := advice.At(i, j)
			if p < 0 || p > 1 {
				t.Errorf("advice (%v, %v) is not a probability "+
					"\n\thave(%v)", i, j, p)
			}
			total += p
		}
		if math.Abs(total-1) > 1e-9 {
			t.Errorf("advice row %v does not sum to one \n\thave(%v)", i,
				total)
		}
	}
}

func TestAdviseIsDeterministic(t *testing.T) {
	oracle := newTestOracle(t)
	prices := []float64{100, 104, 96, 101, 99, 103}

	first, err := oracle.Advise(prices)
	if err != nil {
		t.Fatalf("could not advise prices: %v", err)
	}
	second, err := oracle.Advise(prices)
	if err != nil {
		t.Fatalf("could not advise prices: %v", err)
	}

	if !mat.Equal(first, second) {
		t.Error("advising the same prices twice produced different advice")
	}
}

func TestAdviseBuysIntoRisingPrices(t *testing.T) {
	oracle := newTestOracle(t)
	prices := []float64{100, 104, 108, 112, 116, 120}

	advice, err := oracle.Advise(prices)
	if err != nil {
		t.Fatalf("could not advise prices: %v", err)
	}

	row := advice.RawRowView(0)
	if action := argMax(row); action != Buy {
		t.Errorf("unexpected advice for rising prices \n\twant(%v)"+
			"\n\thave(%v)", Buy, action)
	}
	if row[Buy] <= row[Sell] {
		t.Errorf("buying is not preferred over selling \n\thave(%v ≤ %v)",
			row[Buy], row[Sell])
	}

	// The final step has no lookahead data, so the oracle advises
	// standing aside
	last := advice.RawRowView(len(prices) - 1)
	if action := argMax(last); action != Hold {
		t.Errorf("unexpected advice without lookahead \n\twant(%v)"+
			"\n\thave(%v)", Hold, action)
	}
}

func TestAdviseSellsIntoFallingPrices(t *testing.T) {
	oracle := newTestOracle(t)
	prices := []float64{120, 116, 112, 108, 104, 100}

	advice, err := oracle.Advise(prices)
	if err != nil {
		t.Fatalf("could not advise prices: %v", err)
	}

	row := advice.RawRowView(0)
	if action := argMax(row); action != Sell {
		t.Errorf("unexpected advice for falling prices \n\twant(%v)"+
			"\n\thave(%v)", Sell, action)
	}
}

func TestAdviseHoldsFlatPrices(t *testing.T) {
	oracle := newTestOracle(t)
	prices := []float64{100, 100, 100, 100}

	advice, err := oracle.Advise(prices)
	if err != nil {
		t.Fatalf("could not advise prices: %v", err)
	}

	rows, _ := advice.Dims()
	for i := 0; i < rows; i++ {
		if action := argMax(advice.RawRowView(i)); action != Hold {
			t.Errorf("unexpected advice for flat prices at %v \n\twant(%v)"+
				"\n\thave(%v)", i, Hold, action)
		}
	}
}

func TestAdviseErrors(t *testing.T) {
	oracle := newTestOracle(t)

	if _, err := oracle.Advise([]float64{100}); err == nil {
		t.Error("expected an error advising fewer than two prices")
	}
	if _, err := oracle.Advise([]float64{100, 0, 102}); err == nil {
		t.Error("expected an error advising a zero price")
	}
	if _, err := oracle.Advise([]float64{100, -5, 102}); err == nil {
		t.Error("expected an error advising a negative price")
	}
}

func TestAdviseAt(t *testing.T) {
	oracle := newTestOracle(t)
	prices := []float64{100, 104, 96, 101, 99, 103}

	advice, err := oracle.Advise(prices)
	if err != nil {
		t.Fatalf("could not advise prices: %v", err)
	}

	for i := range prices {
		row, err := oracle.AdviseAt(prices, i)
		if err != nil {
			t.Fatalf("could not advise step %v: %v", i, err)
		}
		for j := range row {
			if row[j] != advice.At(i, j) {
				t.Errorf("advice (%v, %v) differs \n\twant(%v)\n\thave(%v)",
					i, j, advice.At(i, j), row[j])
			}
		}
	}

	if _, err := oracle.AdviseAt(prices, -1); err == nil {
		t.Error("expected an error advising a negative step")
	}
	if _, err := oracle.AdviseAt(prices, len(prices)); err == nil {
		t.Error("expected an error advising past the final step")
	}
}

func TestSmooth(t *testing.T) {
	scores := []float64{0, 3, 0}

	want := []float64{1.5, 1, 1.5}
	have := smooth(scores, 3)
	for i := range want {
		if math.Abs(want[i]-have[i]) > 1e-12 {
			t.Errorf("unexpected smoothed score at %v \n\twant(%v)"+
				"\n\thave(%v)", i, want[i], have[i])
		}
	}

	// Widths below two disable smoothing
	unsmoothed := smooth(scores, 1)
	for i := range scores {
		if unsmoothed[i] != scores[i] {
			t.Errorf("unexpected smoothed score at %v \n\twant(%v)"+
				"\n\thave(%v)", i, scores[i], unsmoothed[i])
		}
	}
}

func TestConfigValidate(t *testing.T) {
	valid := Config{Horizon: 8, Margin: 0.01, Window: 3, Temperature: 0.25}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error validating a legal config: %v", err)
	}

	invalid := []Config{
		{Horizon: 0, Margin: 0.01, Window: 3, Temperature: 0.25},
		{Horizon: 8, Margin: -0.01, Window: 3, Temperature: 0.25},
		{Horizon: 8, Margin: 0.01, Window: 3, Temperature: 0},
	}
	for i, config := range invalid {
		if err := config.Validate(); err == nil {
			t.Errorf("expected an error validating config %v", i)
		}
	}
}
