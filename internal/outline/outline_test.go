package outline

// Notes:
// - Trees are compared through a compact string form: "title(child,child)".
//   This keeps expectations readable for deep trees.
// - Build is order dependent by contract; the replay test checks that the
//   same input always yields the same tree.

import (
	"reflect"
	"strings"
	"testing"
)

var headingTags = []string{"h1", "h2", "h3", "h4", "h5", "h6"}

// headings builds a heading list from "tag:title" pairs.
func headings(pairs ...string) []Heading {
	out := make([]Heading, 0, len(pairs))
	for i, p := range pairs {
		tag, title, _ := strings.Cut(p, ":")
		out = append(out, Heading{
			Tag:   tag,
			Rank:  Rank(headingTags, tag),
			Text:  title,
			ID:    strings.ToLower(title),
			Order: i,
		})
	}
	return out
}

// shape renders entries as "A(B(C),D),E".
func shape(entries []Entry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.Title
		if len(e.Children) > 0 {
			parts[i] += "(" + shape(e.Children) + ")"
		}
	}
	return strings.Join(parts, ",")
}

// ---------------------------------------------------------------------------
// TestRank
// ---------------------------------------------------------------------------

func TestRank(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag  string
		want int
	}{
		{tag: "h1", want: 0},
		{tag: "H2", want: 1},
		{tag: "h6", want: 5},
		{tag: "p", want: -1},
		{tag: "", want: -1},
	}

	for _, tt := range tests {
		if got := Rank(headingTags, tt.tag); got != tt.want {
			t.Errorf("Rank(%q) = %d, want %d", tt.tag, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestBuild
// ---------------------------------------------------------------------------

func TestBuild(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []Heading
		want  string
	}{
		{
			name:  "empty input",
			input: nil,
			want:  "",
		},
		{
			name:  "flat siblings",
			input: headings("h1:A", "h1:B", "h1:C"),
			want:  "A,B,C",
		},
		{
			name:  "descending then climbing back",
			input: headings("h1:A", "h2:B", "h3:C", "h2:D", "h1:E"),
			want:  "A(B(C),D),E",
		},
		{
			name:  "lower rank before any higher rank stays top level",
			input: headings("h2:A", "h1:B"),
			want:  "A,B",
		},
		{
			name:  "skipped level nests directly",
			input: headings("h1:A", "h3:B", "h2:C"),
			want:  "A(B,C)",
		},
		{
			name:  "tie with non-immediate ancestor pops to it",
			input: headings("h1:A", "h2:B", "h3:C", "h4:D", "h2:E"),
			want:  "A(B(C(D)),E)",
		},
		{
			name:  "starts deep then opens a new top level",
			input: headings("h3:A", "h3:B", "h2:C", "h3:D", "h1:E", "h2:F"),
			want:  "A,B,C(D),E(F)",
		},
		{
			name: "unranked headings are skipped",
			input: []Heading{
				{Tag: "h1", Rank: 0, Text: "A"},
				{Tag: "p", Rank: -1, Text: "X"},
				{Tag: "h2", Rank: 1, Text: "B"},
			},
			want: "A(B)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Build(tt.input)
			if s := shape(got); s != tt.want {
				t.Errorf("Build() = %q, want %q", s, tt.want)
			}
		})
	}
}

func TestBuild_RootAndChildCounts(t *testing.T) {
	t.Parallel()

	got := Build(headings("h1:A", "h2:B", "h3:C", "h2:D", "h1:E"))

	if len(got) != 2 {
		t.Fatalf("len(roots) = %d, want 2", len(got))
	}
	first := got[0]
	if len(first.Children) == 0 || len(first.Children[0].Children) != 1 {
		t.Errorf("first root child should have one grandchild, got %q", shape(got))
	}
	if len(got[1].Children) != 0 {
		t.Errorf("second root should have no children, got %d", len(got[1].Children))
	}
}

func TestBuild_PreservesTitleAndID(t *testing.T) {
	t.Parallel()

	got := Build([]Heading{
		{Tag: "h1", Rank: 0, Text: "Introduction", ID: "intro"},
		{Tag: "h2", Rank: 1, Text: "Scope", ID: "scope"},
	})

	want := []Entry{{
		Title:    "Introduction",
		ID:       "intro",
		Children: []Entry{{Title: "Scope", ID: "scope"}},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Build() = %+v, want %+v", got, want)
	}
}

func TestBuild_NodeCountMatchesInput(t *testing.T) {
	t.Parallel()

	inputs := [][]Heading{
		headings("h2:A", "h1:B", "h3:C", "h1:D"),
		headings("h6:A", "h5:B", "h4:C", "h3:D", "h2:E", "h1:F"),
		headings("h1:A", "h6:B", "h1:C", "h6:D", "h3:E"),
		headings("h3:A", "h2:B", "h3:C", "h2:D", "h1:E", "h1:F", "h2:G"),
	}

	for i, in := range inputs {
		got := Build(in)
		if n := Count(got); n != len(in) {
			t.Errorf("input %d: Count = %d, want %d (tree %q)", i, n, len(in), shape(got))
		}
	}
}

func TestBuild_Replay(t *testing.T) {
	t.Parallel()

	in := headings("h1:A", "h3:B", "h2:C", "h4:D", "h1:E", "h2:F", "h2:G")
	first := Build(in)
	for i := 0; i < 5; i++ {
		if again := Build(in); !reflect.DeepEqual(first, again) {
			t.Fatalf("replay %d differs: %q vs %q", i, shape(first), shape(again))
		}
	}
}

// ---------------------------------------------------------------------------
// TestAnchors
// ---------------------------------------------------------------------------

func TestAnchors(t *testing.T) {
	t.Parallel()

	in := []Heading{
		{ID: "a", Anchor: &Anchor{Page: 0, Top: 36}},
		{ID: "b", Anchor: &Anchor{Page: 2, Top: 100}},
		{ID: "a", Anchor: &Anchor{Page: 1, Top: 0}},
		{ID: "", Anchor: &Anchor{Page: 3}},
		{ID: "c"},
	}

	got := Anchors(in)

	want := map[string]Anchor{
		"a": {Page: 0, Top: 36},
		"b": {Page: 2, Top: 100},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Anchors() = %v, want %v", got, want)
	}
}
