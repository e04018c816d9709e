package diff

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"cssdiff/css"
	"cssdiff/registry"
)

func build(t *testing.T, input string) *registry.Registry {
	t.Helper()
	p := css.NewParser(zap.NewNop())
	return registry.NewCollector(p, zap.NewNop()).Collect(p.Parse([]byte(input)))
}

func TestMissingKeys(t *testing.T) {
	missing := MissingKeys(build(t, `.a{x:1} .b{y:2}`), build(t, `.a{x:1}`))
	if len(missing) != 1 || missing[0] != ".b" {
		t.Errorf("MissingKeys() = %q, want [.b]", missing)
	}
}

func TestMissingKeys_Sorted(t *testing.T) {
	long := build(t, `.z{} #id{} .a{} @font-face{} a{} .M{}`)
	missing := MissingKeys(long, registry.New())
	want := []string{"#id", ".M", ".a", ".z", "@font-face", "a"}
	if strings.Join(missing, " ") != strings.Join(want, " ") {
		t.Errorf("MissingKeys() = %q, want %q", missing, want)
	}
}

func TestMissingKeys_PresenceOnly(t *testing.T) {
	long := build(t, `.a{x:1} .a{x:2} @media print{.b{y:1}}`)
	short := build(t, `.a{changed:1} .b{y:1}`)
	if missing := MissingKeys(long, short); len(missing) != 0 {
		t.Errorf("keys present in both must not be reported, got %q", missing)
	}
}

func TestMissingKeys_Reformatted(t *testing.T) {
	long := build(t, ".nav   >  li,\n.x{a:1}")
	short := build(t, ".x{a:1}.nav > li{a:1}")
	if missing := MissingKeys(long, short); len(missing) != 0 {
		t.Errorf("reformatted selectors must match, got %q", missing)
	}
}

func TestMissingKeys_Empty(t *testing.T) {
	if missing := MissingKeys(registry.New(), build(t, `.a{}`)); len(missing) != 0 {
		t.Errorf("expected nothing missing, got %q", missing)
	}
}

func TestCompare(t *testing.T) {
	long := build(t, `.kept{a:1} .dropped{b:2}`)
	short := build(t, `.kept{a:1}`)
	res := Compare(long, short)
	if res.Long != long || res.Short != short {
		t.Error("Compare() must keep both registries")
	}
	if len(res.Missing) != 1 || res.Missing[0] != ".dropped" {
		t.Errorf("Missing = %q", res.Missing)
	}
	if got := Summary(res); got != "1 of 2 keys missing" {
		t.Errorf("Summary() = %q", got)
	}
}
