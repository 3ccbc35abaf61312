package git_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/flanksource/changelog/git"
	"github.com/flanksource/changelog/models"
)

const multiFilePatch = `diff --git a/main.go b/main.go
index 83db48f..bf269f4 100644
--- a/main.go
+++ b/main.go
@@ -1,4 +1,5 @@
 package main
-import "fmt"
+import (
+	"fmt"
+)
diff --git a/docs/new.md b/docs/new.md
new file mode 100644
index 0000000..e69de29
--- /dev/null
+++ b/docs/new.md
@@ -0,0 +1,2 @@
+# New
+text
diff --git a/old.txt b/old.txt
deleted file mode 100644
index e69de29..0000000
--- a/old.txt
+++ /dev/null
@@ -1 +0,0 @@
-gone
diff --git a/a.go b/b.go
similarity index 90%
rename from a.go
rename to b.go
index 1111111..2222222 100644
--- a/a.go
+++ b/b.go
@@ -1,2 +1,2 @@
-var x = 1
+var x = 2
`

var _ = Describe("ParsePatch", func() {
	It("returns nothing for an empty patch", func() {
		Expect(git.ParsePatch("")).To(BeNil())
	})

	It("splits a patch into files with status and counts", func() {
		files := git.ParsePatch(multiFilePatch)
		Expect(files).To(HaveLen(4))

		Expect(files[0].Filename).To(Equal("main.go"))
		Expect(files[0].Status).To(Equal(models.FileStatusModified))
		Expect(files[0].Additions).To(Equal(3))
		Expect(files[0].Deletions).To(Equal(1))
		Expect(files[0].Changes).To(Equal(4))
		Expect(files[0].Patch).To(HavePrefix("@@ -1,4 +1,5 @@"))
		Expect(files[0].Patch).NotTo(ContainSubstring("diff --git"))

		Expect(files[1].Filename).To(Equal("docs/new.md"))
		Expect(files[1].Status).To(Equal(models.FileStatusAdded))
		Expect(files[1].Additions).To(Equal(2))
		Expect(files[1].Deletions).To(Equal(0))

		Expect(files[2].Filename).To(Equal("old.txt"))
		Expect(files[2].Status).To(Equal(models.FileStatusRemoved))
		Expect(files[2].Deletions).To(Equal(1))

		Expect(files[3].Filename).To(Equal("b.go"))
		Expect(files[3].PreviousFilename).To(Equal("a.go"))
		Expect(files[3].Status).To(Equal(models.FileStatusRenamed))
		Expect(files[3].Changes).To(Equal(2))
	})

	It("keeps hunk lines that look like file headers", func() {
		files := git.ParsePatch("diff --git a/c.sql b/c.sql\n--- a/c.sql\n+++ b/c.sql\n@@ -1,2 +1,2 @@\n--- drop this comment\n+++counter;\n keep\n")
		Expect(files).To(HaveLen(1))
		Expect(files[0].Additions).To(Equal(1))
		Expect(files[0].Deletions).To(Equal(1))
		Expect(files[0].Patch).To(ContainSubstring("--- drop this comment"))
	})

	It("handles quoted paths", func() {
		files := git.ParsePatch("diff --git \"a/with space.go\" \"b/with space.go\"\n@@ -1 +1 @@\n-a\n+b\n")
		Expect(files).To(HaveLen(1))
		Expect(files[0].Filename).To(Equal("with space.go"))
	})
})

var _ = Describe("CountPatchLines", func() {
	It("ignores file headers and context", func() {
		adds, dels := git.CountPatchLines("--- a/x\n+++ b/x\n@@ -1,3 +1,3 @@\n ctx\n-old\n+new\n+more\n")
		Expect(adds).To(Equal(2))
		Expect(dels).To(Equal(1))
	})

	It("counts content lines that start with +++ or --- inside a hunk", func() {
		adds, dels := git.CountPatchLines("@@ -1,2 +1,2 @@\n--- old comment\n+++counter\n context\n")
		Expect(adds).To(Equal(1))
		Expect(dels).To(Equal(1))
	})

	It("skips the headers of every file in a multi-file diff", func() {
		adds, dels := git.CountPatchLines("--- a/x\n+++ b/x\n@@ -1 +1 @@\n-a\n+b\ndiff --git a/y b/y\n--- a/y\n+++ b/y\n@@ -1 +1 @@\n----\n++++\n")
		Expect(adds).To(Equal(2))
		Expect(dels).To(Equal(2))
	})

	It("returns zeros for an empty diff", func() {
		adds, dels := git.CountPatchLines("")
		Expect(adds).To(BeZero())
		Expect(dels).To(BeZero())
	})
})
