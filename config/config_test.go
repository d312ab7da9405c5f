package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Particles.Count != 306 {
		t.Errorf("particles.count = %d, want 306", cfg.Particles.Count)
	}
	if cfg.Particles.Radius != 0.02 {
		t.Errorf("particles.radius = %g, want 0.02", cfg.Particles.Radius)
	}
	if cfg.Physics.Gravity != 9.8 {
		t.Errorf("physics.gravity = %g, want 9.8", cfg.Physics.Gravity)
	}
	if cfg.Physics.Substeps != 8 {
		t.Errorf("physics.substeps = %d, want 8", cfg.Physics.Substeps)
	}
	if cfg.Physics.ResolveCollisions {
		t.Error("physics.resolve_collisions should default to false")
	}
	if cfg.Hand.Radius != 0.1 || cfg.Hand.Strength != 0.5 {
		t.Errorf("hand = %+v, want radius 0.1 strength 0.5", cfg.Hand)
	}
	if cfg.Particles.Color != (ColorConfig{R: 1, G: 1, B: 1, A: 1}) {
		t.Errorf("particles.color = %+v, want white", cfg.Particles.Color)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeFile(t, `
particles:
  count: 50
physics:
  substeps: 4
  resolve_collisions: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Particles.Count != 50 {
		t.Errorf("particles.count = %d, want 50", cfg.Particles.Count)
	}
	if cfg.Physics.Substeps != 4 {
		t.Errorf("physics.substeps = %d, want 4", cfg.Physics.Substeps)
	}
	if !cfg.Physics.ResolveCollisions {
		t.Error("physics.resolve_collisions not overridden")
	}
	// Untouched fields keep their defaults
	if cfg.Particles.Radius != 0.02 {
		t.Errorf("particles.radius = %g, want default 0.02", cfg.Particles.Radius)
	}
	if cfg.Physics.Gravity != 9.8 {
		t.Errorf("physics.gravity = %g, want default 9.8", cfg.Physics.Gravity)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero substeps", "physics:\n  substeps: 0\n"},
		{"zero smoothing radius", "physics:\n  smoothing_radius: 0\n"},
		{"count above capacity", "simulation:\n  capacity: 10\nparticles:\n  count: 11\n"},
		{"negative count", "particles:\n  count: -1\n"},
		{"zero screen", "screen:\n  width: 0\n"},
		{"max frame time below frame time", "simulation:\n  frame_time: 0.1\n  max_frame_time: 0.05\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.yaml))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Load error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeFile(t, "physics: [not, a, map]\n")); err == nil {
		t.Error("expected error for malformed file")
	}
}

func TestDerivedBoundingBox(t *testing.T) {
	cfg, err := Load(writeFile(t, "screen:\n  width: 1600\n  height: 800\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	d := cfg.Derived
	if d.Aspect != 2 {
		t.Errorf("aspect = %g, want 2", d.Aspect)
	}
	if d.BoxLeft != -2 || d.BoxRight != 2 || d.BoxBottom != -1 || d.BoxTop != 1 {
		t.Errorf("box = [%g,%g]x[%g,%g], want [-2,2]x[-1,1]", d.BoxLeft, d.BoxRight, d.BoxBottom, d.BoxTop)
	}
	if d.ScreenW32 != 1600 || d.ScreenH32 != 800 {
		t.Errorf("screen = %gx%g", d.ScreenW32, d.ScreenH32)
	}
	if d.StatsWindowFrames != 60 {
		t.Errorf("stats window frames = %d, want 60", d.StatsWindowFrames)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Particles.Count = 123
	cfg.Physics.PressureConstant = 3.5

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load written file: %v", err)
	}
	if back.Particles.Count != 123 || back.Physics.PressureConstant != 3.5 {
		t.Errorf("round trip lost overrides: count=%d k=%g", back.Particles.Count, back.Physics.PressureConstant)
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	saved := global
	global = nil
	defer func() { global = saved }()

	defer func() {
		if recover() == nil {
			t.Error("Cfg() did not panic before Init")
		}
	}()
	Cfg()
}

func TestInit(t *testing.T) {
	saved := global
	defer func() { global = saved }()

	if err := Init(""); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if Cfg().Particles.Count != 306 {
		t.Errorf("Cfg().Particles.Count = %d", Cfg().Particles.Count)
	}
}
