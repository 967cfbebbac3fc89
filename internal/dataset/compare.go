package dataset

import (
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// Compare reports linked img files without a counterpart in primary
// (orphans) and primary img files absent from linked (missing). Samples are
// matched by basename, so differing extensions still pair up.
func (s *DatasetService) Compare(primaryRel, linkedRel string) (*CompareResult, error) {
	primary, err := s.Resolve(primaryRel)
	if err != nil {
		return nil, fmt.Errorf("primary: %w", err)
	}
	linked, err := s.Resolve(linkedRel)
	if err != nil {
		return nil, fmt.Errorf("linked: %w", err)
	}

	primaryFiles, err := ListImages(primary)
	if err != nil {
		return nil, fmt.Errorf("primary: %w", err)
	}
	linkedFiles, err := ListImages(linked)
	if err != nil {
		return nil, fmt.Errorf("linked: %w", err)
	}

	primaryStems := stemSet(primaryFiles)
	linkedStems := stemSet(linkedFiles)

	return &CompareResult{
		Orphans: filesOutside(linkedFiles, primaryStems),
		Missing: filesOutside(primaryFiles, linkedStems),
	}, nil
}

func stemSet(files []string) mapset.Set[string] {
	set := mapset.NewThreadUnsafeSetWithSize[string](len(files))
	for _, f := range files {
		set.Add(Stem(f))
	}
	return set
}

func filesOutside(files []string, stems mapset.Set[string]) []string {
	out := []string{}
	for _, f := range files {
		if !stems.Contains(Stem(f)) {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}
