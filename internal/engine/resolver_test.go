package engine

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/civitas/kinship/internal/feed"
)

func refFromJSON(t *testing.T, raw string) feed.TargetRef {
	t.Helper()
	var ref feed.TargetRef
	if err := json.Unmarshal([]byte(raw), &ref); err != nil {
		t.Fatalf("unmarshal %s: %v", raw, err)
	}
	return ref
}

func TestResolveTargetsAllShapesEquivalent(t *testing.T) {
	lookup := func(id string) (string, bool) {
		m := map[string]string{"1": "bob", "2": "carol"}
		name, ok := m[id]
		return name, ok
	}

	shapes := map[string]string{
		"plain":      `"bob"`,
		"serialized": `"[\"bob\"]"`,
		"foreign":    `["1"]`,
	}
	for name, raw := range shapes {
		targets := ResolveTargets("alice", refFromJSON(t, raw), lookup)
		if !reflect.DeepEqual(targets, []string{"bob"}) {
			t.Errorf("%s shape: targets = %v, want [bob]", name, targets)
		}
	}

	multi := ResolveTargets("alice", refFromJSON(t, `[1, 2]`), lookup)
	if !reflect.DeepEqual(multi, []string{"bob", "carol"}) {
		t.Errorf("numeric fk list: targets = %v, want [bob carol]", multi)
	}
}

func TestResolveTargetsExcludesSelf(t *testing.T) {
	targets := ResolveTargets("alice", refFromJSON(t, `"[\"alice\", \"bob\"]"`), nil)
	if !reflect.DeepEqual(targets, []string{"bob"}) {
		t.Errorf("targets = %v, want [bob]", targets)
	}

	if got := ResolveTargets("alice", refFromJSON(t, `"alice"`), nil); len(got) != 0 {
		t.Errorf("self-only target resolved to %v, want nothing", got)
	}
}

func TestResolveTargetsDropsUnresolvable(t *testing.T) {
	lookup := func(id string) (string, bool) {
		if id == "1" {
			return "bob", true
		}
		return "", false
	}
	targets := ResolveTargets("alice", refFromJSON(t, `["1", "999"]`), lookup)
	if !reflect.DeepEqual(targets, []string{"bob"}) {
		t.Errorf("targets = %v, want [bob]", targets)
	}
}

func TestResolveTargetsNilLookup(t *testing.T) {
	if got := ResolveTargets("alice", refFromJSON(t, `["1"]`), nil); len(got) != 0 {
		t.Errorf("fk refs with nil lookup resolved to %v, want nothing", got)
	}
}

func TestResolveTargetsDeduplicates(t *testing.T) {
	targets := ResolveTargets("alice", refFromJSON(t, `"[\"bob\", \"bob\"]"`), nil)
	if !reflect.DeepEqual(targets, []string{"bob"}) {
		t.Errorf("targets = %v, want [bob]", targets)
	}
}
