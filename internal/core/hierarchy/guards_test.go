package hierarchy

import "testing"

func TestParseEdge(t *testing.T) {
	tests := []struct {
		input   string
		want    Edge
		wantErr bool
	}{
		{"feature->contrib", EdgeFeatureToContrib, false},
		{"feature:contrib", EdgeFeatureToContrib, false},
		{"contrib->develop", EdgeContribToDevelop, false},
		{"develop->main", EdgeDevelopToMain, false},
		{"main->develop", 0, true},
		{"release->main", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseEdge(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEdge(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseEdge(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestEdgeTarget(t *testing.T) {
	target, err := EdgeFeatureToContrib.Target("contrib/main")
	if err != nil || target != "contrib/main" {
		t.Errorf("feature edge target = %q, %v; want contrib/main", target, err)
	}
	if _, err := EdgeFeatureToContrib.Target("develop"); err == nil {
		t.Error("feature edge should reject non-contrib target")
	}
	if target, _ := EdgeContribToDevelop.Target(""); target != BranchDevelop {
		t.Errorf("contrib edge target = %q, want develop", target)
	}
	if target, _ := EdgeDevelopToMain.Target(""); target != BranchMain {
		t.Errorf("develop edge target = %q, want main", target)
	}
}

func TestCanPromote(t *testing.T) {
	tests := []struct {
		name        string
		ctx         PromoteContext
		wantAllowed bool
	}{
		{
			name: "feature edge with feature source",
			ctx: PromoteContext{
				Edge:         EdgeFeatureToContrib,
				SourceBranch: "feature/x",
			},
			wantAllowed: true,
		},
		{
			name: "feature edge with contrib source",
			ctx: PromoteContext{
				Edge:         EdgeFeatureToContrib,
				SourceBranch: "contrib/main",
			},
			wantAllowed: false,
		},
		{
			name: "contrib edge without lineage",
			ctx: PromoteContext{
				Edge:             EdgeContribToDevelop,
				SourceBranch:     "contrib/main",
				LineageSatisfied: false,
			},
			wantAllowed: false,
		},
		{
			name: "contrib edge with lineage",
			ctx: PromoteContext{
				Edge:             EdgeContribToDevelop,
				SourceBranch:     "contrib/main",
				LineageSatisfied: true,
			},
			wantAllowed: true,
		},
		{
			name: "develop edge with lineage",
			ctx: PromoteContext{
				Edge:             EdgeDevelopToMain,
				SourceBranch:     "develop",
				LineageSatisfied: true,
			},
			wantAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanPromote(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v (reason %q), want %v", result.Allowed, result.Reason, tt.wantAllowed)
			}
		})
	}
}

func TestCanBackmerge(t *testing.T) {
	tests := []struct {
		source      string
		wantAllowed bool
	}{
		{"release/1.4.0", true},
		{"main", false},
		{"develop", false},
		{"feature/x", false},
		{"contrib/main", false},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			result := CanBackmerge(tt.source)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("CanBackmerge(%q).Allowed = %v (reason %q), want %v",
					tt.source, result.Allowed, result.Reason, tt.wantAllowed)
			}
		})
	}
}

func TestIsProtected(t *testing.T) {
	for branch, want := range map[string]bool{
		"main":        true,
		"develop":     true,
		"contrib/x":   false,
		"feature/x":   false,
		"release/1.0": false,
	} {
		if got := IsProtected(branch); got != want {
			t.Errorf("IsProtected(%q) = %v, want %v", branch, got, want)
		}
	}
}
