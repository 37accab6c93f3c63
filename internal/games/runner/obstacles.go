package runner

import (
	"github.com/vovakirdan/arcade-verifier/internal/config"
	"github.com/vovakirdan/arcade-verifier/internal/core"
	"github.com/vovakirdan/arcade-verifier/internal/prng"
)

// despawnBehind is how far behind the player (in cells) objects are kept
// so the client can still draw them.
const despawnBehind = 20

// spawnAhead places obstacles until the track is generated SpawnAhead cells
// beyond the player. Each obstacle consumes a fixed sequence of draws:
// kind, dimensions, coin chance, spacing.
func spawnAhead(st *State, rng *prng.Rand, cfg *config.Runner, diff *config.DifficultyManager) {
	horizon := st.X + core.ToFixed(cfg.Obstacles.SpawnAhead)
	for st.NextSpawnX < horizon {
		spawnObstacle(st, rng, cfg, diff)
	}
}

// spawnObstacle creates one obstacle at NextSpawnX and advances it.
func spawnObstacle(st *State, rng *prng.Rand, cfg *config.Runner, diff *config.DifficultyManager) {
	oc := cfg.Obstacles
	ob := Obstacle{X: st.NextSpawnX}

	roll := rng.Intn(1000)
	switch {
	case roll < oc.BirdChance:
		ob.Kind = KindBird
		ob.Width = core.ToFixed(2)
		ob.Height = core.ToFixed(1)
		ob.Altitude = core.ToFixed(rng.Range(oc.MinBirdAltitude, oc.MaxBirdAltitude))
	case roll < oc.BirdChance+oc.PitChance:
		ob.Kind = KindPit
		ob.Width = core.ToFixed(rng.Range(oc.MinPitWidth, oc.MaxPitWidth))
	default:
		ob.Kind = KindCactus
		ob.Width = core.ToFixed(rng.Range(oc.MinWidth, oc.MaxWidth))
		ob.Height = core.ToFixed(rng.Range(oc.MinHeight, oc.MaxHeight))
	}
	st.Obstacles = append(st.Obstacles, ob)

	if rng.Chance(oc.CoinChance) {
		st.Coins = append(st.Coins, Coin{
			X: ob.X + ob.Width/2,
			Y: core.ToFixed(oc.CoinAltitude),
		})
	}

	// Spacing tightens with difficulty but never drops below the minimum
	maxSpacing := diff.Spacing(oc.MaxSpacing, oc.MinSpacing, st.Distance(), st.Tick)
	gap := rng.Range(oc.MinSpacing, maxSpacing)

	st.NextSpawnX += ob.Width + core.ToFixed(gap)
}

// despawn drops obstacles and coins that are well behind the player.
func despawn(st *State) {
	limit := st.X - core.ToFixed(despawnBehind)

	obstacles := st.Obstacles[:0]
	for _, o := range st.Obstacles {
		if o.X+o.Width > limit {
			obstacles = append(obstacles, o)
		}
	}
	st.Obstacles = obstacles

	coins := st.Coins[:0]
	for _, c := range st.Coins {
		if c.X+core.ToFixed(1) > limit {
			coins = append(coins, c)
		}
	}
	st.Coins = coins
}

// checkCollisions marks the state dead on contact with a cactus or bird and
// collects any touched coins.
func checkCollisions(st *State, cfg *config.Runner) {
	player := st.playerRect(cfg)

	for _, o := range st.Obstacles {
		if o.Kind == KindPit {
			continue
		}
		if player.Intersects(o.Rect()) {
			st.die(o.Kind.String())
			return
		}
	}

	for i := range st.Coins {
		c := &st.Coins[i]
		if !c.Collected && player.Intersects(c.Rect()) {
			c.Collected = true
			st.CoinsCollected++
		}
	}
}
