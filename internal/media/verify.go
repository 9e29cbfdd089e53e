package media

import (
	"context"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var digestRe = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Verify re-hashes every physical file and reports names whose digest no
// longer matches, files that are not content-addressed, and sidecars left
// without a physical file.
func (s *Service) Verify(ctx context.Context) (VerifyReport, error) {
	report := VerifyReport{Issues: []VerifyIssue{}}
	sidecars := map[string]bool{}
	claimed := map[string]bool{}

	err := s.walk(ctx, func(abs string, d fs.DirEntry) error {
		name := d.Name()
		if isSidecar(name) {
			sidecars[abs] = true
			return nil
		}
		claimed[SidecarPathOf(abs)] = true
		report.Checked++

		rel := s.layout.Rel(abs)
		expected := strings.TrimSuffix(name, filepath.Ext(name))
		if !digestRe.MatchString(expected) {
			report.Issues = append(report.Issues, VerifyIssue{Path: rel, Problem: "not content-addressed"})
			return nil
		}

		actual, err := HashFile(abs)
		if err != nil {
			report.Issues = append(report.Issues, VerifyIssue{Path: rel, Problem: "unreadable: " + err.Error()})
			return nil
		}
		if actual != expected {
			report.Issues = append(report.Issues, VerifyIssue{Path: rel, Problem: "hash mismatch", Actual: actual})
		}
		return nil
	})
	if err != nil {
		return report, err
	}

	for p := range sidecars {
		if !claimed[p] {
			report.Issues = append(report.Issues, VerifyIssue{Path: s.layout.Rel(p), Problem: "orphan sidecar"})
		}
	}
	sort.SliceStable(report.Issues, func(i, j int) bool {
		return report.Issues[i].Path < report.Issues[j].Path
	})
	return report, nil
}
