package runner

import (
	"reflect"
	"testing"

	"github.com/vovakirdan/arcade-verifier/internal/config"
	"github.com/vovakirdan/arcade-verifier/internal/core"
	"github.com/vovakirdan/arcade-verifier/internal/prng"
)

func pressed(keys ...string) core.KeyState {
	var ks core.KeyState
	for _, k := range keys {
		ks.Apply(core.InputEvent{Key: k, Pressed: true})
	}
	return ks
}

func TestGameDeterminism(t *testing.T) {
	// Same seed and same inputs must produce identical frames
	cfg := config.DefaultRunner()
	seed := int64(12345)

	run := func() *State {
		sim := New(cfg, seed)
		for i := 0; i < 900 && !sim.State().Dead; i++ {
			var keys core.KeyState
			if i%40 < 3 {
				keys = pressed(core.KeySpace)
			}
			sim.Step(keys)
		}
		return sim.State()
	}

	s1, s2 := run(), run()
	if !reflect.DeepEqual(s1, s2) {
		t.Errorf("Determinism failed: runs diverged\nrun1: tick=%d score=%d x=%d\nrun2: tick=%d score=%d x=%d",
			s1.Tick, s1.Score, s1.X, s2.Tick, s2.Score, s2.X)
	}
}

func TestTrackDependsOnSeed(t *testing.T) {
	cfg := config.DefaultRunner()

	layout := func(seed int64) []Obstacle {
		st := NewState(&cfg)
		diff := config.NewDifficultyManager(cfg.Difficulty)
		spawnAhead(st, prng.New(seed), &cfg, diff)
		return st.Obstacles
	}

	first := layout(1)
	if len(first) == 0 {
		t.Fatal("Expected obstacles ahead of the start")
	}

	differs := false
	for seed := int64(2); seed <= 6; seed++ {
		if !reflect.DeepEqual(first, layout(seed)) {
			differs = true
			break
		}
	}
	if !differs {
		t.Error("Expected different seeds to produce different tracks")
	}
}

func TestStartClearance(t *testing.T) {
	cfg := config.DefaultRunner()
	sim := New(cfg, 99)
	sim.Step(core.KeyState{})

	clearance := core.ToFixed(cfg.Obstacles.StartClearance)
	for _, o := range sim.State().Obstacles {
		if o.X < clearance {
			t.Errorf("Obstacle at %d inside start clearance %d", o.X, clearance)
		}
	}
}

func TestDeadStateIsFinal(t *testing.T) {
	cfg := config.DefaultRunner()
	st := NewState(&cfg)
	st.die(CauseCactus)
	before := *st

	AdvanceTick(st, pressed(core.KeySpace), prng.New(1), &cfg)

	if !reflect.DeepEqual(before, *st) {
		t.Error("Expected AdvanceTick to be a no-op once dead")
	}
	if st.DeathCause != CauseCactus {
		t.Errorf("Expected first death cause to stick, got %q", st.DeathCause)
	}
}

func TestJumpLeavesGround(t *testing.T) {
	cfg := config.DefaultRunner()
	st := NewState(&cfg)

	AdvanceTick(st, pressed(core.KeyArrowUp), prng.New(1), &cfg)

	if st.Grounded {
		t.Error("Expected player to leave the ground")
	}
	want := cfg.Physics.JumpImpulse - cfg.Physics.Gravity
	if st.Y != want {
		t.Errorf("Expected Y=%d after first jump tick, got %d", want, st.Y)
	}

	// Player must come back down on flat ground
	for i := 0; i < 200 && !st.Grounded; i++ {
		AdvanceTick(st, core.KeyState{}, prng.New(1), &cfg)
	}
	if !st.Grounded || st.Y != 0 {
		t.Errorf("Expected player to land, grounded=%v y=%d", st.Grounded, st.Y)
	}
}

func TestDuckOnlyWhenGrounded(t *testing.T) {
	cfg := config.DefaultRunner()
	st := NewState(&cfg)
	rng := prng.New(1)

	AdvanceTick(st, pressed(core.KeyS), rng, &cfg)
	if !st.Ducking {
		t.Error("Expected grounded player to duck")
	}

	AdvanceTick(st, pressed(core.KeySpace), rng, &cfg)
	AdvanceTick(st, pressed(core.KeyS), rng, &cfg)
	if st.Ducking {
		t.Error("Expected airborne player not to duck")
	}
}

func TestCollisions(t *testing.T) {
	cfg := config.DefaultRunner()

	tests := []struct {
		name      string
		obstacle  Obstacle
		keys      core.KeyState
		wantDead  bool
		wantCause string
	}{
		{
			name:      "cactus ahead",
			obstacle:  Obstacle{Kind: KindCactus, X: core.ToFixed(2), Width: core.ToFixed(1), Height: core.ToFixed(3)},
			wantDead:  true,
			wantCause: CauseCactus,
		},
		{
			name:      "bird at head height",
			obstacle:  Obstacle{Kind: KindBird, X: core.ToFixed(1), Width: core.ToFixed(2), Height: core.ToFixed(1), Altitude: core.ToFixed(2)},
			wantDead:  true,
			wantCause: CauseBird,
		},
		{
			name:     "duck under bird",
			obstacle: Obstacle{Kind: KindBird, X: core.ToFixed(1), Width: core.ToFixed(2), Height: core.ToFixed(1), Altitude: core.ToFixed(2)},
			keys:     pressed(core.KeyArrowDown),
			wantDead: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewState(&cfg)
			st.Obstacles = append(st.Obstacles, tt.obstacle)
			rng := prng.New(1)

			// Ten ticks covers five cells at base speed, well short of the
			// first generated obstacle
			for i := 0; i < 10; i++ {
				AdvanceTick(st, tt.keys, rng, &cfg)
			}

			if st.Dead != tt.wantDead {
				t.Fatalf("Expected dead=%v, got %v", tt.wantDead, st.Dead)
			}
			if st.DeathCause != tt.wantCause {
				t.Errorf("Expected cause %q, got %q", tt.wantCause, st.DeathCause)
			}
		})
	}
}

func TestFallIntoPit(t *testing.T) {
	cfg := config.DefaultRunner()
	st := NewState(&cfg)
	st.Obstacles = append(st.Obstacles, Obstacle{Kind: KindPit, X: 0, Width: core.ToFixed(10)})
	rng := prng.New(1)

	for i := 0; i < 50 && !st.Dead; i++ {
		AdvanceTick(st, core.KeyState{}, rng, &cfg)
	}

	if !st.Dead {
		t.Fatal("Expected player to fall into the pit")
	}
	if st.DeathCause != CauseFell {
		t.Errorf("Expected cause %q, got %q", CauseFell, st.DeathCause)
	}
	if st.DeathTick != st.Tick {
		t.Errorf("Expected death tick %d, got %d", st.Tick, st.DeathTick)
	}
}

func TestCoinScoring(t *testing.T) {
	cfg := config.DefaultRunner()
	st := NewState(&cfg)
	st.Coins = append(st.Coins, Coin{X: core.ToFixed(1), Y: 0})

	AdvanceTick(st, core.KeyState{}, prng.New(1), &cfg)

	if st.CoinsCollected != 1 {
		t.Fatalf("Expected 1 coin collected, got %d", st.CoinsCollected)
	}
	want := st.Distance()/cfg.Scoring.CellsPerPoint + cfg.Scoring.CoinValue
	if st.Score != want {
		t.Errorf("Expected score %d, got %d", want, st.Score)
	}

	// A collected coin is not counted twice
	AdvanceTick(st, core.KeyState{}, prng.New(1), &cfg)
	if st.CoinsCollected != 1 {
		t.Errorf("Expected coin to be collected once, got %d", st.CoinsCollected)
	}
}

func TestIdleRunnerEventuallyDies(t *testing.T) {
	cfg := config.DefaultRunner()
	sim := New(cfg, 12345)

	for i := 0; i < 20000 && !sim.State().Dead; i++ {
		sim.Step(core.KeyState{})
	}

	st := sim.State()
	if !st.Dead {
		t.Fatal("Expected a runner that never jumps to die")
	}
	if st.Score < st.Distance()/cfg.Scoring.CellsPerPoint {
		t.Errorf("Score %d below distance score", st.Score)
	}
}

func TestSimReset(t *testing.T) {
	cfg := config.DefaultRunner()
	sim := New(cfg, 7)
	for i := 0; i < 30; i++ {
		sim.Step(core.KeyState{})
	}

	sim.Reset(8)
	st := sim.State()
	if st.Tick != 0 || st.X != 0 || st.Score != 0 {
		t.Errorf("Expected fresh state after reset, got tick=%d x=%d score=%d", st.Tick, st.X, st.Score)
	}
	if sim.Seed() != 8 {
		t.Errorf("Expected seed 8, got %d", sim.Seed())
	}
}

func TestRender(t *testing.T) {
	cfg := config.DefaultRunner()
	st := NewState(&cfg)
	scr := core.NewScreen(80, 24)

	Render(scr, st, &cfg)

	groundY := scr.Height() - 2
	if got := scr.Get(0, groundY); got != GroundChar {
		t.Errorf("Expected ground at row %d, got %q", groundY, got)
	}
	if got := scr.Get(playerColumn, groundY-1); got != PlayerBody {
		t.Errorf("Expected player feet above ground, got %q", got)
	}
	head := groundY - cfg.Player.Height
	if got := scr.Get(playerColumn+cfg.Player.Width-1, head); got != PlayerHead {
		t.Errorf("Expected player head at row %d, got %q", head, got)
	}
}
