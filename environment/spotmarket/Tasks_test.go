package spotmarket

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	ts "github.com/encrush/btgym/timestep"
)

func newTestTask(t *testing.T) *Profit {
	t.Helper()

	task, err := NewProfit(NewFlatStart(14), 10, 0.05, 0.05, 0)
	if err != nil {
		t.Fatalf("could not create task: %v", err)
	}
	return task
}

func TestNewProfitValidates(t *testing.T) {
	starter := NewFlatStart(14)

	if _, err := NewProfit(starter, 10, 0, 0.05, 0); err == nil {
		t.Error("expected an error for a zero drawdown")
	}
	if _, err := NewProfit(starter, 10, 0.05, 0, 0); err == nil {
		t.Error("expected an error for a zero profit target")
	}
	if _, err := NewProfit(starter, 10, 0.05, 0.05, -1); err == nil {
		t.Error("expected an error for a negative equity index")
	}
}

func TestProfitRewardIsEquityChange(t *testing.T) {
	task, err := NewProfit(NewFlatStart(14), 10, 0.05, 0.05, 2)
	if err != nil {
		t.Fatalf("could not create task: %v", err)
	}

	state := mat.NewVecDense(3, []float64{0, 0, 0.5})
	nextState := mat.NewVecDense(3, []float64{0, 1, 0.75})

	reward := task.GetReward(state, nil, nextState)
	if math.Abs(reward-0.25) > 1e-12 {
		t.Errorf("unexpected reward \n\twant(0.25)\n\thave(%v)", reward)
	}
}

func TestProfitEndsOnEquityBounds(t *testing.T) {
	task := newTestTask(t)

	boundaries := []struct {
		equity float64
		ends   bool
	}{
		{equity: 0.0, ends: false},
		{equity: 0.049, ends: false},
		{equity: -0.049, ends: false},
		{equity: 0.051, ends: true},
		{equity: -0.051, ends: true},
	}
	for _, b := range boundaries {
		obs := mat.NewVecDense(1, []float64{b.equity})
		step := ts.New(ts.Mid, 0, 0.99, obs, 1)

		if ends := task.End(&step); ends != b.ends {
			t.Errorf("unexpected episode end at equity %v \n\twant(%v)"+
				"\n\thave(%v)", b.equity, b.ends, ends)
		}
		if b.ends && !step.TerminalEnd() {
			t.Errorf("equity %v did not end the episode in a terminal state",
				b.equity)
		}
	}
}

func TestProfitEndsAtStepLimit(t *testing.T) {
	task := newTestTask(t)

	obs := mat.NewVecDense(1, []float64{0.0})
	step := ts.New(ts.Mid, 0, 0.99, obs, 10)

	if !task.End(&step) {
		t.Error("episode did not end at the step limit")
	}
	if !step.CutoffEnd() {
		t.Error("step limit did not cut the episode off")
	}
}

func TestProfitAtGoal(t *testing.T) {
	task := newTestTask(t)

	atGoal := mat.NewDense(1, 1, []float64{0.05})
	if !task.AtGoal(atGoal) {
		t.Error("equity at the profit target is not at goal")
	}

	belowGoal := mat.NewDense(1, 1, []float64{0.049})
	if task.AtGoal(belowGoal) {
		t.Error("equity below the profit target is at goal")
	}
}

func TestProfitRewardBounds(t *testing.T) {
	task := newTestTask(t)

	if task.Min() != -0.1 {
		t.Errorf("unexpected minimum reward \n\twant(-0.1)\n\thave(%v)",
			task.Min())
	}
	if task.Max() != 0.1 {
		t.Errorf("unexpected maximum reward \n\twant(0.1)\n\thave(%v)",
			task.Max())
	}
}

func TestStarters(t *testing.T) {
	flat := NewFlatStart(14)
	start := flat.Start()
	if start.Len() != 2 {
		t.Fatalf("unexpected start state length \n\twant(2)\n\thave(%v)",
			start.Len())
	}
	if start.AtVec(0) != 0 || start.AtVec(1) != 0 {
		t.Errorf("flat start is not flat \n\thave(%v, %v)", start.AtVec(0),
			start.AtVec(1))
	}

	random := NewRandomPositionStart(14)
	for i := 0; i < 32; i++ {
		start := random.Start()
		if position := clipPosition(start.AtVec(0)); position < -1 ||
			position > 1 {
			t.Errorf("illegal starting position \n\thave(%v)", position)
		}
		if start.AtVec(1) != 0 {
			t.Errorf("random position start has realized profit \n\thave(%v)",
				start.AtVec(1))
		}
	}
}
