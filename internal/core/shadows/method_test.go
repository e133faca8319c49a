package shadows

import "testing"

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in   string
		want Method
	}{
		{"basic", MethodBasic},
		{"", MethodBasic},
		{"SDF", MethodSDF},
		{"screen-space", MethodScreenSpace},
		{" screenspace ", MethodScreenSpace},
	}
	for _, tt := range tests {
		got, err := ParseMethod(tt.in)
		if err != nil {
			t.Errorf("ParseMethod(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMethod(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}

	if _, err := ParseMethod("raytrace"); err == nil {
		t.Error("Expected an error for an unknown method")
	}

	for _, m := range []Method{MethodBasic, MethodSDF, MethodScreenSpace} {
		if back, err := ParseMethod(m.String()); err != nil || back != m {
			t.Errorf("Expected %v to survive String/ParseMethod, got %v (%v)", m, back, err)
		}
	}
}

func TestMethodSwitchInvalidatesEverything(t *testing.T) {
	cache := NewCache(0)
	mc := NewMethodController(MethodBasic, cache)

	static := dynamicCaster(1)
	static.IsStatic = true
	dynamic := dynamicCaster(2)
	tr := IdentityTransform()
	for frame := uint64(1); frame <= 3; frame++ {
		cache.Check(static, tr, frame)
		cache.Check(dynamic, tr, frame)
	}

	if mc.SetMethod(MethodBasic) {
		t.Error("Expected selecting the current method to be a no-op")
	}
	if stats := cache.Stats(); stats.Hits == 0 {
		t.Error("Expected no-op switch to keep counters")
	}

	if !mc.SetMethod(MethodSDF) {
		t.Fatal("Expected a transition to SDF")
	}
	if mc.Method() != MethodSDF {
		t.Errorf("Expected active method SDF, got %v", mc.Method())
	}
	if stats := cache.Stats(); stats.Hits != 0 || stats.Misses != 0 {
		t.Errorf("Expected counters reset, got %d hits and %d misses", stats.Hits, stats.Misses)
	}
	if !cache.Check(static, tr, 4) || !cache.Check(dynamic, tr, 4) {
		t.Error("Expected every caster to miss after a method switch")
	}
}
