package git

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
	"github.com/flanksource/clicky/api/icons"
	"github.com/samber/lo"

	"github.com/flanksource/changelog/models"
)

type Count struct {
	// Number of lines added
	Adds int `json:"adds,omitempty"`
	// Number of lines deleted
	Dels int `json:"dels,omitempty"`
	// Number of distinct commits
	Commits int `json:"commits,omitempty"`
	// Number of distinct files
	Files int `json:"files,omitempty"`
	// Number of commits per changelog category
	Categories map[models.Category]int `json:"categories,omitempty"`
}

// Add merges another Count into this one
func (c *Count) Add(other Count) {
	c.Adds += other.Adds
	c.Dels += other.Dels
	c.Commits += other.Commits
	c.Files += other.Files

	if c.Categories == nil {
		c.Categories = make(map[models.Category]int)
	}
	for category, count := range other.Categories {
		c.Categories[category] += count
	}
}

// Total returns the total number of line changes (adds + dels)
func (c Count) Total() int {
	return c.Adds + c.Dels
}

func (c Count) Pretty() api.Text {
	t := clicky.Text("")
	if c.Adds > 0 {
		t = t.Append(fmt.Sprintf("+%d", c.Adds), "text-green-600")
	}
	if c.Dels > 0 {
		if c.Adds > 0 {
			t = t.Space()
		}
		t = t.Append(fmt.Sprintf("-%d", c.Dels), "text-red-600")
	}
	if c.Commits > 0 {
		t = t.Append(fmt.Sprintf(" • %d commits", c.Commits), "text-muted")
	}
	if c.Files > 0 {
		t = t.Append(fmt.Sprintf(" • %d files", c.Files), "text-muted")
	}
	return t
}

// topCategories orders categories by commit count, then by changelog order.
func (c Count) topCategories(n int) []models.Category {
	entries := lo.Entries(c.Categories)
	rank := func(cat models.Category) int { return lo.IndexOf(models.Categories, cat) }
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return rank(entries[i].Key) < rank(entries[j].Key)
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return lo.Map(entries, func(e lo.Entry[models.Category, int], _ int) models.Category { return e.Key })
}

// PathSummary is a directory tree of the files touched in a range, with
// line and commit counts rolled up into every parent directory.
type PathSummary struct {
	Path     string `json:"path,omitempty"`
	Count    `json:",inline"`
	Children []PathSummary `json:"children,omitempty"`

	commits map[string]struct{}
	files   map[string]struct{}
}

func (gs PathSummary) GetChildren() []api.TreeNode {
	nodes := make([]api.TreeNode, len(gs.Children))
	for i, child := range gs.Children {
		nodes[i] = child
	}
	return nodes
}

func (gs PathSummary) Pretty() api.Text {
	t := clicky.Text("")

	isDir := len(gs.Children) > 0
	if gs.Path != "" && gs.Path != "." {
		if isDir {
			t = t.Add(icons.Folder).Space().Append(gs.Path+"/", "font-bold")
		} else {
			t = t.Add(getFileIcon(gs.Path)).Space().Append(gs.Path, "font-mono")
		}
		t = t.Space()
	}

	t = t.Append("(", "text-muted")
	if gs.Adds > 0 {
		t = t.Append(fmt.Sprintf("+%d", gs.Adds), "text-green-600")
	}
	if gs.Dels > 0 {
		if gs.Adds > 0 {
			t = t.Space()
		}
		t = t.Append(fmt.Sprintf("-%d", gs.Dels), "text-red-600")
	}
	if gs.Commits > 1 {
		t = t.Append(fmt.Sprintf(" • %d commits", gs.Commits), "text-muted")
	}
	if isDir && gs.Files > 1 {
		t = t.Append(fmt.Sprintf(" • %d files", gs.Files), "text-muted")
	}
	if top := gs.topCategories(3); len(top) > 0 {
		t = t.Append(" • ", "text-muted")
		for i, category := range top {
			if i > 0 {
				t = t.Append(",", "text-muted")
			}
			if isDir {
				t = t.Append(fmt.Sprintf("%s:%d", category, gs.Categories[category]))
			} else {
				t = t.Append(string(category))
			}
		}
	}
	return t.Append(")", "text-muted")
}

func NewPathSummary(path string) *PathSummary {
	return &PathSummary{Path: path}
}

// SummarizePaths builds the file tree of every commit in groups. Commits
// without file details contribute nothing.
func SummarizePaths(groups []models.CommitGroup) *PathSummary {
	root := NewPathSummary(".")
	for _, group := range groups {
		for _, commit := range group.Commits {
			for _, file := range commit.Files {
				root.AddFile(commit.SHA, group.Category, file)
			}
		}
	}
	root.sortChildren()
	root.CollapseChains()
	return root
}

// ensureChild finds or creates a child node with the given path
func (gs *PathSummary) ensureChild(path string) *PathSummary {
	for i := range gs.Children {
		if gs.Children[i].Path == path {
			return &gs.Children[i]
		}
	}
	gs.Children = append(gs.Children, PathSummary{Path: path})
	return &gs.Children[len(gs.Children)-1]
}

// AddFile records one commit's change to a file on the file node and every
// directory above it, including the root.
func (gs *PathSummary) AddFile(sha string, category models.Category, file models.FileChange) {
	path := strings.Trim(filepath.ToSlash(filepath.Clean(file.Filename)), "/")
	if path == "" || path == "." {
		return
	}

	node := gs
	node.record(sha, category, path, file)
	for _, segment := range strings.Split(path, "/") {
		node = node.ensureChild(segment)
		node.record(sha, category, path, file)
	}
}

func (gs *PathSummary) record(sha string, category models.Category, path string, file models.FileChange) {
	if gs.commits == nil {
		gs.commits = make(map[string]struct{})
		gs.files = make(map[string]struct{})
		gs.Categories = make(map[models.Category]int)
	}
	gs.Adds += file.Additions
	gs.Dels += file.Deletions
	if _, seen := gs.commits[sha]; !seen {
		gs.commits[sha] = struct{}{}
		gs.Commits++
		gs.Categories[category]++
	}
	gs.files[path] = struct{}{}
	gs.Files = len(gs.files)
}

// sortChildren sorts children by change volume descending, then by path.
func (gs *PathSummary) sortChildren() {
	sort.SliceStable(gs.Children, func(i, j int) bool {
		if gs.Children[i].Total() != gs.Children[j].Total() {
			return gs.Children[i].Total() > gs.Children[j].Total()
		}
		return gs.Children[i].Path < gs.Children[j].Path
	})
	for i := range gs.Children {
		gs.Children[i].sortChildren()
	}
}

// CollapseChains merges single-child directory chains ("cmd" -> "app") into
// one node ("cmd/app"). Counts are already rolled up so nothing is merged.
func (gs *PathSummary) CollapseChains() {
	for i := range gs.Children {
		gs.Children[i].CollapseChains()
	}
	for i := range gs.Children {
		child := &gs.Children[i]
		for len(child.Children) == 1 && len(child.Children[0].Children) > 0 {
			grandchild := child.Children[0]
			child.Path = child.Path + "/" + grandchild.Path
			child.Children = grandchild.Children
		}
	}
}

func getFileIcon(path string) icons.Icon {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return icons.Golang
	case ".js", ".jsx":
		return icons.JS
	case ".ts", ".tsx":
		return icons.TS
	case ".py":
		return icons.Python
	case ".java":
		return icons.Java
	case ".md":
		return icons.MD
	case ".yaml", ".yml", ".toml", ".tf":
		return icons.Config
	case ".sql":
		return icons.DB
	default:
		return icons.File
	}
}
