package merge

import (
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Summary renders a short human-readable line-count summary of the
// difference between two blobs' content, for display only; the status
// and log commands do not call it. It never feeds back into ThreeWay's
// resolution — the merge outcome is decided purely by blob-hash
// comparison.
func Summary(path string, oldContent, newContent []byte) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(oldContent), string(newContent), false)

	var added, removed int
	for _, d := range diffs {
		lines := strings.Count(d.Text, "\n")
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += lines
			if !strings.HasSuffix(d.Text, "\n") && d.Text != "" {
				added++
			}
		case diffmatchpatch.DiffDelete:
			removed += lines
			if !strings.HasSuffix(d.Text, "\n") && d.Text != "" {
				removed++
			}
		}
	}

	return path + ": +" + strconv.Itoa(added) + " -" + strconv.Itoa(removed)
}
