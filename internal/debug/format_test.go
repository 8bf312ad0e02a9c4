package debug

import (
	"strings"
	"testing"

	"faultline/internal/component"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "my-component", want: "MyComponent"},
		{in: "my_widget", want: "MyWidget"},
		{in: "already", want: "Already"},
		{in: "a-b-c", want: "ABC"},
		{in: "x-1st", want: "X1st"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		if got := Classify(tt.in); got != tt.want {
			t.Fatalf("Classify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatComponentName(t *testing.T) {
	root := component.NewRoot(component.NewKind(component.Options{Name: "app"}))
	tests := []struct {
		name        string
		opts        component.Options
		tag         string
		includeFile bool
		want        string
	}{
		{name: "explicit name", opts: component.Options{Name: "my-widget"}, want: "<MyWidget>"},
		{name: "anonymous", opts: component.Options{}, want: "<Anonymous>"},
		{name: "tag fallback", opts: component.Options{}, tag: "todo-item", want: "<TodoItem>"},
		{
			name:        "file fallback",
			opts:        component.Options{File: "src/components/user_card.vue"},
			includeFile: true,
			want:        "<UserCard> at src/components/user_card.vue",
		},
		{
			name: "file omitted",
			opts: component.Options{Name: "list", File: "src/List.vue"},
			want: "<List>",
		},
		{
			name:        "windows path",
			opts:        component.Options{File: `src\views\Home.vue`},
			includeFile: true,
			want:        `<Home> at src\views\Home.vue`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []component.NodeOption
			if tt.tag != "" {
				opts = append(opts, component.WithComponentTag(tt.tag))
			}
			vm := root.NewChild(component.NewKind(tt.opts), opts...)
			if got := FormatComponentName(vm, tt.includeFile); got != tt.want {
				t.Fatalf("FormatComponentName = %q, want %q", got, tt.want)
			}
		})
	}
	if got := FormatComponentName(root, true); got != "<Root>" {
		t.Fatalf("root = %q, want <Root>", got)
	}
}

func TestGenerateComponentTraceRoot(t *testing.T) {
	root := component.NewRoot(component.NewKind(component.Options{}))
	if got, want := GenerateComponentTrace(root), "\n\n(found in <Root>)"; got != want {
		t.Fatalf("trace = %q, want %q", got, want)
	}
	if GenerateComponentTrace(nil) != "" {
		t.Fatalf("nil instance must render empty trace")
	}
}

func TestGenerateComponentTraceChain(t *testing.T) {
	root := component.NewRoot(component.NewKind(component.Options{}))
	a := root.NewChild(component.NewKind(component.Options{Name: "layout"}))
	b := a.NewChild(component.NewKind(component.Options{Name: "side-bar", File: "src/SideBar.vue"}))

	want := "\n\nfound in\n\n" +
		"---> <SideBar> at src/SideBar.vue\n" +
		"       <Layout>\n" +
		"         <Root>"
	if got := GenerateComponentTrace(b); got != want {
		t.Fatalf("trace mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestGenerateComponentTraceCollapsesRecursion(t *testing.T) {
	root := component.NewRoot(component.NewKind(component.Options{}))
	tree := component.NewKind(component.Options{Name: "tree-node"})
	leafKind := component.NewKind(component.Options{Name: "leaf"})

	n1 := root.NewChild(tree)
	n2 := n1.NewChild(tree)
	n3 := n2.NewChild(tree)
	leaf := n3.NewChild(leafKind)

	got := GenerateComponentTrace(leaf)
	want := "\n\nfound in\n\n" +
		"---> <Leaf>\n" +
		"       <TreeNode>... (3 recursive calls)\n" +
		"         <Root>"
	if got != want {
		t.Fatalf("trace mismatch:\n got %q\nwant %q", got, want)
	}
	if strings.Count(got, "<TreeNode>") != 1 {
		t.Fatalf("recursive chain must render once: %q", got)
	}
}

func TestGenerateComponentTraceFlushesRunAtTop(t *testing.T) {
	kind := component.NewKind(component.Options{Name: "frame"})
	root := component.NewRoot(kind)
	mid := root.NewChild(kind)
	leaf := mid.NewChild(component.NewKind(component.Options{Name: "leaf"}))

	got := GenerateComponentTrace(leaf)
	want := "\n\nfound in\n\n" +
		"---> <Leaf>\n" +
		"       <Frame>... (2 recursive calls)"
	if got != want {
		t.Fatalf("trace mismatch:\n got %q\nwant %q", got, want)
	}
}
