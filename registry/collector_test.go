package registry_test

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"cssdiff/css"
	"cssdiff/registry"
)

func collect(t *testing.T, input string) *registry.Registry {
	t.Helper()
	log := zaptest.NewLogger(t)
	sheet := css.NewParser(log).Parse([]byte(input))
	return registry.NewCollector(css.NewParser(log), log).Collect(sheet)
}

func single(t *testing.T, reg *registry.Registry, key string) registry.Occurrence {
	t.Helper()
	occs := reg.Occurrences(key)
	if len(occs) != 1 {
		t.Fatalf("expected 1 occurrence of %q, got %d (keys %q)", key, len(occs), reg.Keys())
	}
	return occs[0]
}

func TestCollect_SelectorSplitting(t *testing.T) {
	reg := collect(t, `.a, .b { color: red; }`)

	if reg.Len() != 2 {
		t.Fatalf("expected 2 keys, got %d: %q", reg.Len(), reg.Keys())
	}
	for _, key := range []string{".a", ".b"} {
		occ := single(t, reg, key)
		if occ.Body != "color: red;" {
			t.Errorf("%s: body = %q, want %q", key, occ.Body, "color: red;")
		}
		if !occ.TopLevel() {
			t.Errorf("%s: expected no container, got %q", key, occ.Container)
		}
	}
}

func TestCollect_SelectorWhitespaceNormalized(t *testing.T) {
	reg := collect(t, ".nav   >\n  li ,\n.x\t.y { a: 1 }")
	if !reg.Has(".nav > li") {
		t.Errorf("expected normalized key '.nav > li', got %q", reg.Keys())
	}
	if !reg.Has(".x .y") {
		t.Errorf("expected normalized key '.x .y', got %q", reg.Keys())
	}
}

func TestCollect_FunctionalSelectorNotSplit(t *testing.T) {
	reg := collect(t, `:is(.a, .b) span, .c { a: 1 }`)
	if reg.Len() != 2 {
		t.Fatalf("expected 2 keys, got %q", reg.Keys())
	}
	if !reg.Has(":is(.a, .b) span") {
		t.Errorf("expected functional selector kept whole, got %q", reg.Keys())
	}
}

func TestCollect_ContainerAttribution(t *testing.T) {
	reg := collect(t, `@media (min-width: 768px) { .x { color: blue; } }`)

	occ := single(t, reg, ".x")
	if occ.Container != "@media (min-width: 768px)" {
		t.Errorf("container = %q, want %q", occ.Container, "@media (min-width: 768px)")
	}
	if occ.Body != "color: blue;" {
		t.Errorf("body = %q", occ.Body)
	}
	if reg.Has("@media (min-width: 768px)") {
		t.Error("container at-rule must not be registered as a key when it has content")
	}
}

func TestCollect_ContainerKeywords(t *testing.T) {
	reg := collect(t, `
@supports (display: grid) { .g { display: grid } }
@layer base { .l { a: 1 } }
@MEDIA Print { .p { b: 2 } }
`)
	tests := map[string]string{
		".g": "@supports (display: grid)",
		".l": "@layer base",
		".p": "@media Print",
	}
	for key, container := range tests {
		if occ := single(t, reg, key); occ.Container != container {
			t.Errorf("%s: container = %q, want %q", key, occ.Container, container)
		}
	}
}

func TestCollect_NestedContainersUseInnermostHeader(t *testing.T) {
	reg := collect(t, `@media screen { @supports (gap: 1px) { .n { gap: 1px } } .m { a: 1 } }`)

	if occ := single(t, reg, ".n"); occ.Container != "@supports (gap: 1px)" {
		t.Errorf("nested container = %q, want innermost header only", occ.Container)
	}
	if occ := single(t, reg, ".m"); occ.Container != "@media screen" {
		t.Errorf("container = %q, want '@media screen'", occ.Container)
	}
}

func TestCollect_LeafAtRuleAtomicity(t *testing.T) {
	reg := collect(t, `@keyframes spin { from { top: 0; } to { top: 10px; } }`)

	if reg.Len() != 1 {
		t.Fatalf("expected exactly one key, got %q", reg.Keys())
	}
	occ := single(t, reg, "@keyframes spin")
	if occ.Body != "from { top: 0; } to { top: 10px; }" {
		t.Errorf("body = %q", occ.Body)
	}
	if reg.Has("from") || reg.Has("to") {
		t.Error("keyframe steps must not become keys")
	}
}

func TestCollect_LeafAtRules(t *testing.T) {
	reg := collect(t, `
@charset "utf-8";
@import url(base.css);
@font-face { font-family: X; src: url(x.woff2) }
@media print { @page { margin: 1cm } }
@media screen {}
`)
	for _, key := range []string{`@charset "utf-8"`, "@import url(base.css)", "@font-face", "@media screen"} {
		if occ := single(t, reg, key); !occ.TopLevel() {
			t.Errorf("%s: expected top-level, got container %q", key, occ.Container)
		}
	}
	if occ := single(t, reg, "@font-face"); occ.Body != "font-family: X; src: url(x.woff2)" {
		t.Errorf("@font-face body = %q", occ.Body)
	}
	if occ := single(t, reg, "@import url(base.css)"); occ.Body != "" {
		t.Errorf("@import body = %q, want empty", occ.Body)
	}
	if occ := single(t, reg, "@page"); occ.Container != "@media print" {
		t.Errorf("@page container = %q, want '@media print'", occ.Container)
	}
}

func TestCollect_EmptySelectorExcluded(t *testing.T) {
	reg := collect(t, "{ color: red }\n , { x: 1 }\n.ok { y: 2 }")
	if reg.Len() != 1 || !reg.Has(".ok") {
		t.Errorf("expected only '.ok', got %q", reg.Keys())
	}
}

func TestCollect_MultiplicityPreserved(t *testing.T) {
	reg := collect(t, `
.dup { a: 1 }
@media print { .dup { a: 2 } }
.dup, .other { a: 3 }
`)
	occs := reg.Occurrences(".dup")
	if len(occs) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(occs))
	}
	want := []registry.Occurrence{
		{Body: "a: 1", Line: 2},
		{Container: "@media print", Body: "a: 2", Line: 3},
		{Body: "a: 3", Line: 4},
	}
	for i := range want {
		if occs[i] != want[i] {
			t.Errorf("occurrence %d = %+v, want %+v", i, occs[i], want[i])
		}
	}
	if reg.Count() != 4 {
		t.Errorf("Count() = %d, want 4", reg.Count())
	}
}

func TestCollect_NilArguments(t *testing.T) {
	c := registry.NewCollector(nil, nil)
	reg := c.Collect(css.NewParser(nil).Parse([]byte(`a { b: c }`)))
	if !reg.Has("a") {
		t.Errorf("expected key 'a', got %q", reg.Keys())
	}
}

func TestCollect_NULInSelector(t *testing.T) {
	reg := collect(t, "\x00.b { a: 1 }")
	single(t, reg, "\uFFFD.b")
}
