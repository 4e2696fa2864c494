package diff_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/cptree/pkg/diff"
	cptreeio "github.com/matzehuels/cptree/pkg/io"
)

func run(title, second string) string {
	return `{"title": "` + title + `", "nodes": [
  {"id": 1, "pid": null, "kids": 2, "status": "branch"},
  {"id": 2, "pid": 1, "alt": 0, "status": "failed", "label": "x=1"},
  {"id": 3, "pid": 1, "alt": 1, "status": "` + second + `", "label": "x!=1"}
]}`
}

func ExampleCompare() {
	ctx := context.Background()
	left, _ := cptreeio.ReadJSON(ctx, strings.NewReader(run("run1", "solved")), nil)
	right, _ := cptreeio.ReadJSON(ctx, strings.NewReader(run("run2", "failed")), nil)

	res := diff.Compare(left, right, diff.Options{LabelSensitive: true})
	fmt.Println(res.Merged.Title)
	for _, p := range res.Pentagons {
		fmt.Printf("node %d: left %d, right %d\n", p.Node, p.Left, p.Right)
	}
	// Output:
	// run1 vs run2
	// node 2: left 1, right 1
}
