package bvh

import "testing"

func TestCollectStats(t *testing.T) {
	stats := CollectStats(nil)
	if stats.Nodes != 0 || stats.AvgLeafPrimitives() != 0 {
		t.Fatalf("expected empty stats; got %+v", stats)
	}

	m := randomMesh(256, 3)
	_, nodes := Build(m.vertices, m.triangles, 4, SplitEqualCounts)
	stats = CollectStats(nodes)

	if stats.Primitives != 256 {
		t.Fatalf("expected stats to account for 256 primitives; got %d", stats.Primitives)
	}
	if stats.MaxLeafPrimitives > 4 || stats.MinLeafPrimitives < 1 {
		t.Fatalf("expected leaf primitive counts in [1, 4]; got [%d, %d]", stats.MinLeafPrimitives, stats.MaxLeafPrimitives)
	}
	if stats.Leafs != stats.Interior+1 {
		t.Fatalf("expected a binary tree with %d leafs to have %d interior nodes; got %d", stats.Leafs, stats.Leafs-1, stats.Interior)
	}
	if stats.RelativeArea < 1 {
		t.Fatalf("expected relative area >= 1; got %f", stats.RelativeArea)
	}
}

func TestParseSplitMethod(t *testing.T) {
	type spec struct {
		in     string
		exp    SplitMethod
		expErr bool
	}

	specs := []spec{
		{"", SplitSAH, false},
		{"sah", SplitSAH, false},
		{"equal-counts", SplitEqualCounts, false},
		{"equal", SplitEqualCounts, false},
		{"middle", SplitSAH, true},
	}

	for index, s := range specs {
		got, err := ParseSplitMethod(s.in)
		if s.expErr != (err != nil) {
			t.Fatalf("[spec %d] expected error to be %t; got %v", index, s.expErr, err)
		}
		if got != s.exp {
			t.Fatalf("[spec %d] expected %s; got %s", index, s.exp, got)
		}
	}
}
