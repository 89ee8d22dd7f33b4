package entities

import "testing"

func TestCatalogMembership(t *testing.T) {
	for _, name := range []string{"idle", "walkRelaxed", "walkThink", "run", "sitTalk", "spellcast", "relax"} {
		if !IsAnimation(name) {
			t.Errorf("Expected %q to be a known animation", name)
		}
	}
	for _, name := range []string{"neutral", "smile", "laugh", "shocked", "angry", "confused"} {
		if !IsExpression(name) {
			t.Errorf("Expected %q to be a known expression", name)
		}
	}

	if IsAnimation("moonwalk") {
		t.Error("moonwalk should not be in the catalog")
	}
	if IsExpression("smile ") {
		t.Error("membership must be exact")
	}
	if !IsAnimation(DefaultAnimation) || !IsExpression(DefaultExpression) {
		t.Error("defaults must be catalog members")
	}
}

func TestCatalogCopiesAreIndependent(t *testing.T) {
	a := Animations()
	a[0].Name = "mutated"

	if Animations()[0].Name != "idle" {
		t.Error("Animations must return a copy")
	}
}

func TestClampIntensity(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{-1, 0}, {0, 0}, {0.5, 0.5}, {1, 1}, {2, 1},
	}
	for _, c := range cases {
		if got := ClampIntensity(c.in); got != c.want {
			t.Errorf("ClampIntensity(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestAudioPayload_Seconds(t *testing.T) {
	a := NewPCMAudio(make([]byte, 48000), 24000)

	if a.Seconds() != 1 {
		t.Errorf("Expected 1 second, got %v", a.Seconds())
	}
	if a.MIMEType != "audio/L16;codec=pcm;rate=24000" {
		t.Errorf("Unexpected MIME type %q", a.MIMEType)
	}
}
