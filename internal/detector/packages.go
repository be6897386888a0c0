package detector

import (
	"os"
	"sort"
	"strings"
)

const (
	distInfoSuffix = ".dist-info"
	eggInfoSuffix  = ".egg-info"
)

func isMetadataName(name string) bool {
	return strings.HasSuffix(name, distInfoSuffix) || strings.HasSuffix(name, eggInfoSuffix)
}

// packageName derives the distribution name from a metadata directory name:
// "requests-2.31.0.dist-info" -> "requests", "mypkg.egg-info" -> "mypkg".
func packageName(entry string) (string, bool) {
	switch {
	case strings.HasSuffix(entry, distInfoSuffix):
		name, _, _ := strings.Cut(entry, "-")
		return name, true
	case strings.HasSuffix(entry, eggInfoSuffix):
		return strings.TrimSuffix(entry, eggInfoSuffix), true
	default:
		return "", false
	}
}

// ListTopPackages returns up to limit installed package names for the
// environment at path, deduplicated and sorted. Environments without a
// readable site-packages directory yield nil.
func ListTopPackages(path string, limit int) []string {
	sitePackages := findSitePackages(path)
	if sitePackages == "" {
		return nil
	}
	entries, err := os.ReadDir(sitePackages)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var names []string
	for _, entry := range entries {
		name, ok := packageName(entry.Name())
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)

	if limit >= 0 && len(names) > limit {
		names = names[:limit]
	}
	return names
}
